package libgl

import (
	"iblcache/envmap"
	"iblcache/libio"
	"sync"

	"github.com/go-gl/gl/v4.5-core/gl"
	"go.uber.org/zap"
)

// Binding owns the textures of the environment currently used for rendering.
//
// SetEnvMap may be called from any goroutine. The textures are replaced by Sync,
// on the GL thread, once the new environment finished preparing.
type Binding struct {
	logger *zap.Logger

	mu      sync.Mutex
	env     *envmap.EnvMap
	pending *envmap.EnvMap

	prefiltered *Texture
	brdfLut     *Texture
	sh          [27]float32
}

// NewBinding uploads lut and binds the empty environment.
func NewBinding(lut *libio.FloatImage, logger *zap.Logger) (*Binding, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	b := &Binding{logger: logger}

	if lut != nil {
		tex, err := UploadFloatImage(lut)
		if err != nil {
			return nil, err
		}
		tex.SetDebugLabel("brdf lut")
		b.brdfLut = tex
	}

	b.SetEnvMap(nil)
	b.Sync()
	return b, nil
}

// SetEnvMap replaces the bound environment. A nil env binds the empty environment.
func (b *Binding) SetEnvMap(env *envmap.EnvMap) {
	if env == nil {
		env = envmap.Empty()
	}
	b.mu.Lock()
	b.pending = env
	b.mu.Unlock()
}

// EnvMap returns the environment whose textures are bound.
func (b *Binding) EnvMap() *envmap.EnvMap {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.env
}

// ready takes the pending environment if it finished preparing.
func (b *Binding) ready() *envmap.EnvMap {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.pending == nil || !b.pending.Prepared().IsDone() {
		return nil
	}
	env := b.pending
	b.pending = nil
	return env
}

// Sync uploads the pending environment if it is prepared and reports whether the textures changed.
// An environment that failed to prepare is replaced by the empty one.
func (b *Binding) Sync() bool {
	env := b.ready()
	if env == nil {
		return false
	}

	prefiltered := env.Prefiltered()
	if prefiltered == nil {
		b.logger.Warn("binding empty environment instead of failed one",
			zap.String("name", env.Name()),
			zap.Error(env.Prepared().Err()))
		env = envmap.Empty()
		prefiltered = env.Prefiltered()
	}

	tex, err := UploadCubeMap(prefiltered)
	if err != nil {
		b.logger.Error("could not upload prefiltered environment", zap.String("name", env.Name()), zap.Error(err))
		return false
	}
	tex.SetDebugLabel(env.Name() + " prefiltered")

	if b.prefiltered != nil {
		b.prefiltered.Delete()
	}
	b.prefiltered = tex
	sh := env.SHCoefficients()
	b.sh = sh.Floats()

	b.mu.Lock()
	b.env = env
	b.mu.Unlock()

	b.logger.Debug("environment bound", zap.String("name", env.Name()), zap.Int("levels", prefiltered.Levels))
	return true
}

func (b *Binding) Prefiltered() *Texture {
	return b.prefiltered
}

func (b *Binding) BrdfLut() *Texture {
	return b.brdfLut
}

// SH returns the bound irradiance coefficients as 9 rgb triples.
func (b *Binding) SH() [27]float32 {
	return b.sh
}

// Bind binds the prefiltered map and the lut to the given texture units.
func (b *Binding) Bind(prefilteredUnit, lutUnit int) {
	if b.prefiltered != nil {
		b.prefiltered.Bind(prefilteredUnit)
	}
	if b.brdfLut != nil {
		b.brdfLut.Bind(lutUnit)
	}
}

// SHUniform uploads the coefficients to a vec3[9] uniform of program.
func (b *Binding) SHUniform(program uint32, location int32) {
	gl.ProgramUniform3fv(program, location, 9, &b.sh[0])
}

// MaxLod is the roughest level of the bound prefiltered map.
func (b *Binding) MaxLod() float32 {
	if b.prefiltered == nil {
		return 0
	}
	return float32(b.prefiltered.Levels() - 1)
}

func (b *Binding) Delete() {
	if b.prefiltered != nil {
		b.prefiltered.Delete()
		b.prefiltered = nil
	}
	if b.brdfLut != nil {
		b.brdfLut.Delete()
		b.brdfLut = nil
	}
}

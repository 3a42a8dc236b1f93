package envmap

import (
	"errors"
	"fmt"
	"iblcache/ibl"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

type State int32

const (
	StateCreated = State(iota)
	StatePreparing
	StatePrepared
)

func (s State) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StatePreparing:
		return "preparing"
	case StatePrepared:
		return "prepared"
	default:
		return "unknown"
	}
}

// EnvMap owns a source cube map and the lighting derived from it.
// The SH coefficients and the prefiltered cube map are only published once
// the Prepared future resolved without an error.
type EnvMap struct {
	source      *ibl.CubeMap
	sh          ibl.SHCoefficients
	prefiltered *ibl.CubeMap
	opts        options
	state       atomic.Int32
	prepared    *Future
	empty       bool
}

// New creates an environment for source and starts preparing it unless
// WithSkipPrepare is given.
func New(source *ibl.CubeMap, opts ...Option) *EnvMap {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	env := &EnvMap{
		source:   source,
		opts:     o,
		prepared: NewFuture(),
	}
	if !o.skip {
		env.Prepare()
	}
	return env
}

// FromFile loads the source cube map from path and creates an environment for it.
func FromFile(path string, opts ...Option) (*EnvMap, error) {
	source, err := ibl.LoadCubeMap(path)
	if err != nil {
		return nil, err
	}
	return New(source, opts...), nil
}

var empty = sync.OnceValue(func() *EnvMap {
	source := ibl.NewCubeMap(nil, 2, 1)
	source.Name = "empty"
	env := &EnvMap{
		source:      source,
		prefiltered: ibl.NewCubeMap(nil, 2, 1),
		opts:        defaultOptions(),
		prepared:    Resolved(nil),
		empty:       true,
	}
	env.opts.mipmaps = 1
	env.opts.size = 2
	env.state.Store(int32(StatePrepared))
	return env
})

// Empty is the shared environment used when none was requested.
// It is black, has zero SH coefficients and is already prepared.
func Empty() *EnvMap {
	return empty()
}

func (env *EnvMap) IsEmpty() bool {
	return env == nil || env.empty
}

// Prepare starts computing the SH coefficients and the prefiltered cube map.
// Calling it again returns the same future.
func (env *EnvMap) Prepare() *Future {
	if !env.state.CompareAndSwap(int32(StateCreated), int32(StatePreparing)) {
		return env.prepared
	}

	if env.opts.blocking {
		sh, shErr := env.projectIrradiance()
		prefiltered, pfErr := env.filter()
		env.finish(sh, prefiltered, errors.Join(shErr, pfErr))
		return env.prepared
	}

	var wg sync.WaitGroup
	var sh ibl.SHCoefficients
	var prefiltered *ibl.CubeMap
	var shErr, pfErr error

	wg.Add(2)
	go func() {
		defer wg.Done()
		sh, shErr = env.projectIrradiance()
	}()
	go func() {
		defer wg.Done()
		prefiltered, pfErr = env.filter()
	}()
	go func() {
		wg.Wait()
		env.finish(sh, prefiltered, errors.Join(shErr, pfErr))
	}()

	return env.prepared
}

func (env *EnvMap) projectIrradiance() (ibl.SHCoefficients, error) {
	if env.source == nil {
		return ibl.SHCoefficients{}, ibl.ErrNoPixelData
	}
	start := time.Now()
	sh, err := ibl.ProjectIrradiance(env.source)
	if err != nil {
		return sh, fmt.Errorf("could not project irradiance of %s: %w", env.Name(), err)
	}
	env.opts.logger.Info("sh coefficients computed",
		zap.String("name", env.Name()),
		zap.Duration("took", time.Since(start)))
	return sh, nil
}

func (env *EnvMap) filter() (*ibl.CubeMap, error) {
	if env.source == nil {
		return nil, ibl.ErrNoPixelData
	}
	start := time.Now()
	prefiltered, err := ibl.FilterEnvMap(env.source, ibl.PrefilterParams{
		Size:     env.opts.size,
		Mipmaps:  env.opts.mipmaps,
		Samples:  env.opts.samples,
		Dispatch: env.opts.dispatch,
	})
	if err != nil {
		return nil, fmt.Errorf("could not prefilter %s: %w", env.Name(), err)
	}
	prefiltered.Name = env.Name() + "_prefiltered"
	env.opts.logger.Info("prefiltered environment map computed",
		zap.String("name", env.Name()),
		zap.Int("size", env.opts.size),
		zap.Int("mipmaps", env.opts.mipmaps),
		zap.Int("samples", env.opts.samples),
		zap.Duration("took", time.Since(start)))
	return prefiltered, nil
}

// finish publishes the results and fires the future.
func (env *EnvMap) finish(sh ibl.SHCoefficients, prefiltered *ibl.CubeMap, err error) {
	if err == nil {
		env.sh = sh
		env.prefiltered = prefiltered
	} else {
		env.opts.logger.Error("environment preparation failed",
			zap.String("name", env.Name()),
			zap.Error(err))
	}
	env.state.Store(int32(StatePrepared))
	env.prepared.resolve(err)
}

// Prepared resolves once preparation finished.
func (env *EnvMap) Prepared() *Future {
	return env.prepared
}

func (env *EnvMap) State() State {
	return State(env.state.Load())
}

// SHCoefficients returns zero coefficients until preparation succeeded.
func (env *EnvMap) SHCoefficients() ibl.SHCoefficients {
	if !env.prepared.IsDone() {
		return ibl.SHCoefficients{}
	}
	return env.sh
}

// Prefiltered returns nil until preparation succeeded.
func (env *EnvMap) Prefiltered() *ibl.CubeMap {
	if !env.prepared.IsDone() {
		return nil
	}
	return env.prefiltered
}

func (env *EnvMap) Source() *ibl.CubeMap {
	return env.source
}

func (env *EnvMap) Name() string {
	if env.source == nil {
		return ""
	}
	return env.source.Name
}

func (env *EnvMap) PrefilteredSize() int {
	return env.opts.size
}

func (env *EnvMap) PrefilteredSamples() int {
	return env.opts.samples
}

func (env *EnvMap) Mipmaps() int {
	return env.opts.mipmaps
}

// Hash is the cache identity of the environment.
func (env *EnvMap) Hash() string {
	if env.opts.identity != "" {
		return env.opts.identity
	}
	path := ""
	if env.source != nil {
		path = env.source.Path
	}
	return Identity(path, env.opts.size, env.opts.samples)
}

package envpool

import (
	"errors"
	"fmt"
	"iblcache/envmap"
	"iblcache/ibl"
	"iblcache/libio"
	"io/fs"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
	"golang.org/x/exp/slices"
)

// Pool memoizes prepared environments per source path and persists them in the cache directory.
type Pool struct {
	cfg      Config
	logger   *zap.Logger
	encode   []ibl.EncodeOption
	dispatch ibl.Dispatcher

	// stops the owned worker pool, nil for a dispatcher passed with WithDispatcher
	stop func()

	mu      sync.Mutex
	entries map[string]*entry
	writes  sync.WaitGroup
	closed  bool

	brdfOnce sync.Once
	brdfLut  *libio.FloatImage
	brdfErr  error
}

type entry struct {
	once sync.Once
	env  *envmap.EnvMap
	err  error
}

type Option func(p *Pool)

func WithLogger(logger *zap.Logger) Option {
	return func(p *Pool) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithDispatcher replaces the worker pool used for prefiltering.
func WithDispatcher(dispatch ibl.Dispatcher) Option {
	return func(p *Pool) {
		if dispatch != nil {
			p.dispatch = dispatch
		}
	}
}

func New(cfg Config, opts ...Option) (*Pool, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	encode, err := EncodeOptions(cfg.Compression)
	if err != nil {
		return nil, err
	}

	p := &Pool{
		cfg:     cfg,
		logger:  zap.NewNop(),
		encode:  encode,
		entries: map[string]*entry{},
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.dispatch == nil {
		d := newDispatcher(cfg.Workers)
		p.dispatch = d.Dispatch
		p.stop = d.Stop
	}
	return p, nil
}

func (p *Pool) Config() Config {
	return p.cfg
}

// CachePath is the file an environment with the given identity is persisted to.
func (p *Pool) CachePath(identity string) string {
	return filepath.Join(p.cfg.CacheDir, identity+".env")
}

// LoadDefault loads path with the configured prefilter size and sample count.
func (p *Pool) LoadDefault(path string) (*envmap.EnvMap, error) {
	return p.Load(path, p.cfg.PrefilteredSize, p.cfg.PrefilteredSamples)
}

// Load returns the environment for path.
//
// An environment already in memory is returned as is, even if it was prepared with
// a different size or sample count. Otherwise the cache file is read, and if there is
// none the environment is prepared in the background and written to the cache once done.
// Concurrent calls for the same path share one environment.
// An empty path returns the empty environment.
func (p *Pool) Load(path string, size, samples int) (*envmap.EnvMap, error) {
	if path == "" {
		return envmap.Empty(), nil
	}
	if size <= 0 {
		size = p.cfg.PrefilteredSize
	}
	if samples <= 0 {
		samples = p.cfg.PrefilteredSamples
	}

	key := envmap.CanonicalPath(path)

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil, ErrClosed
	}
	e, hit := p.entries[key]
	if !hit {
		e = &entry{}
		p.entries[key] = e
	}
	p.mu.Unlock()

	if hit {
		p.logger.Debug("environment memory cache hit", zap.String("path", key))
	}

	e.once.Do(func() {
		e.env, e.err = p.load(e, key, size, samples)
	})
	if e.err != nil {
		p.evict(key, e)
		return nil, e.err
	}
	return e.env, nil
}

func (p *Pool) evict(key string, e *entry) {
	p.mu.Lock()
	if p.entries[key] == e {
		delete(p.entries, key)
	}
	p.mu.Unlock()
}

func (p *Pool) envOptions(opts ...envmap.Option) []envmap.Option {
	return append([]envmap.Option{
		envmap.WithLogger(p.logger),
		envmap.WithDispatcher(p.dispatch),
		envmap.WithMipmaps(p.cfg.PrefilteredMipmaps),
	}, opts...)
}

func (p *Pool) load(e *entry, path string, size, samples int) (*envmap.EnvMap, error) {
	if strings.EqualFold(filepath.Ext(path), ".env") {
		env, err := envmap.Open(path, p.envOptions()...)
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return env, err
	}

	identity := envmap.Identity(path, size, samples)
	cachePath := p.CachePath(identity)

	env, err := envmap.Open(cachePath, p.envOptions(envmap.WithIdentity(identity))...)
	if err == nil && env.Mipmaps() != p.cfg.PrefilteredMipmaps {
		p.logger.Info("environment cache has a different mip chain",
			zap.String("cache", cachePath),
			zap.Int("mipmaps", env.Mipmaps()),
			zap.Int("expected", p.cfg.PrefilteredMipmaps))
	} else if err == nil {
		p.logger.Info("environment disk cache hit",
			zap.String("path", path),
			zap.String("cache", cachePath))
		return env, nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		p.logger.Warn("ignoring unreadable environment cache",
			zap.String("cache", cachePath),
			zap.Error(err))
	}

	source, err := ibl.LoadCubeMap(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
	} else if err != nil {
		return nil, err
	}

	env = envmap.New(source, p.envOptions(
		envmap.WithPrefilteredSize(size),
		envmap.WithPrefilteredSamples(samples),
		envmap.WithIdentity(identity),
		envmap.WithSkipPrepare(),
	)...)

	if !p.beginWrite() {
		return nil, ErrClosed
	}
	env.Prepared().Then(func(err error) {
		defer p.writes.Done()
		if err != nil {
			p.evict(path, e)
			return
		}
		if err := env.Write(cachePath, p.encode...); err != nil {
			p.logger.Warn("could not write environment cache",
				zap.String("cache", cachePath),
				zap.Error(err))
			return
		}
		p.logger.Debug("environment cache written", zap.String("cache", cachePath))
	})
	env.Prepare()

	return env, nil
}

// beginWrite registers a pending cache write unless the pool is closed.
func (p *Pool) beginWrite() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return false
	}
	p.writes.Add(1)
	return true
}

// Paths lists the canonical source paths held in memory.
func (p *Pool) Paths() []string {
	p.mu.Lock()
	paths := make([]string, 0, len(p.entries))
	for key := range p.entries {
		paths = append(paths, key)
	}
	p.mu.Unlock()
	slices.Sort(paths)
	return paths
}

// Close waits for pending cache writes and stops the worker pool.
// Loading from a closed pool fails.
func (p *Pool) Close() error {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()

	p.writes.Wait()
	if p.stop != nil {
		p.stop()
	}
	return nil
}

var defaultPool atomic.Pointer[Pool]

// Default returns the process wide pool, creating one from DefaultConfig on first use.
func Default() *Pool {
	if p := defaultPool.Load(); p != nil {
		return p
	}
	p, err := New(DefaultConfig())
	if err != nil {
		panic(err)
	}
	if defaultPool.CompareAndSwap(nil, p) {
		return p
	}
	return defaultPool.Load()
}

// SetDefault replaces the process wide pool and returns the previous one.
func SetDefault(p *Pool) *Pool {
	return defaultPool.Swap(p)
}

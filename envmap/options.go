package envmap

import (
	"iblcache/ibl"

	"go.uber.org/zap"
)

const (
	DefaultPrefilteredSize    = 64
	DefaultPrefilteredSamples = 16
	DefaultMipmaps            = 4
)

type options struct {
	size     int
	samples  int
	mipmaps  int
	logger   *zap.Logger
	blocking bool
	skip     bool
	dispatch ibl.Dispatcher
	identity string
}

type Option func(o *options)

func defaultOptions() options {
	return options{
		size:     DefaultPrefilteredSize,
		samples:  DefaultPrefilteredSamples,
		mipmaps:  DefaultMipmaps,
		logger:   zap.NewNop(),
		dispatch: ibl.Sequential,
	}
}

// WithPrefilteredSize sets the face size of the first prefiltered level.
func WithPrefilteredSize(size int) Option {
	return func(o *options) {
		o.size = size
	}
}

func WithPrefilteredSamples(samples int) Option {
	return func(o *options) {
		o.samples = samples
	}
}

func WithMipmaps(mipmaps int) Option {
	return func(o *options) {
		o.mipmaps = mipmaps
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithBlocking makes Prepare run both derivations on the calling goroutine.
func WithBlocking() Option {
	return func(o *options) {
		o.blocking = true
	}
}

// WithSkipPrepare leaves a new environment in the Created state.
func WithSkipPrepare() Option {
	return func(o *options) {
		o.skip = true
	}
}

// WithDispatcher sets how the prefilter jobs are run.
func WithDispatcher(dispatch ibl.Dispatcher) Option {
	return func(o *options) {
		if dispatch != nil {
			o.dispatch = dispatch
		}
	}
}

// WithIdentity overrides the identity derived from the source path.
func WithIdentity(identity string) Option {
	return func(o *options) {
		o.identity = identity
	}
}

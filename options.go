package ggshader

import (
	"log/slog"

	"github.com/gogpu/ggshader/backend"
	"github.com/gogpu/ggshader/backend/wgsl"
)

// DefaultProgramCacheSize is the number of generated programs a Context
// keeps when no WithProgramCacheSize option is given.
const DefaultProgramCacheSize = 256

// ContextOption configures a Context during creation.
//
// Example:
//
//	// Defaults: WGSL emitter, 256 cached programs.
//	ctx := ggshader.NewContext()
//
//	// Larger cache and debug logging.
//	ctx := ggshader.NewContext(
//	    ggshader.WithProgramCacheSize(1024),
//	    ggshader.WithLogger(slog.Default()),
//	)
type ContextOption func(*contextOptions)

// contextOptions holds optional configuration for Context creation.
type contextOptions struct {
	emitter   backend.Emitter
	cacheSize int
	logger    *slog.Logger
}

// defaultOptions returns the default context options.
func defaultOptions() contextOptions {
	return contextOptions{
		emitter:   wgsl.New(),
		cacheSize: DefaultProgramCacheSize,
		logger:    nil, // Will follow the package logger if nil
	}
}

// WithEmitter sets the binding emitter used to declare uniforms and
// textures in generated programs.
//
// Example:
//
//	em, err := backend.Lookup("wgsl")
//	if err != nil {
//	    return err
//	}
//	ctx := ggshader.NewContext(ggshader.WithEmitter(em))
func WithEmitter(e backend.Emitter) ContextOption {
	return func(o *contextOptions) {
		if e != nil {
			o.emitter = e
		}
	}
}

// WithProgramCacheSize sets how many generated programs the Context keeps.
// Values below 1 disable eviction.
func WithProgramCacheSize(n int) ContextOption {
	return func(o *contextOptions) {
		o.cacheSize = n
	}
}

// WithLogger sets a logger for this Context only. The package logger set by
// SetLogger is used otherwise.
func WithLogger(l *slog.Logger) ContextOption {
	return func(o *contextOptions) {
		o.logger = l
	}
}

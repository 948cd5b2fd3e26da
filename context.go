package ggshader

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/ggshader/backend"
	"github.com/gogpu/ggshader/backend/wgsl"
	"github.com/gogpu/ggshader/internal/progcache"
	"github.com/gogpu/ggshader/shaders"
)

// Context interns paints and generates their programs. It owns a
// shaders.Dictionary, so IDs from one Context mean nothing to another.
//
// Context is safe for concurrent use.
type Context struct {
	dict     *shaders.Dictionary
	emitter  backend.Emitter
	programs *progcache.Cache[shaders.UniquePaintParamsID, *Program]
	logger   *slog.Logger

	builders sync.Pool
}

// NewContext creates a Context.
//
//	// Defaults
//	ctx := ggshader.NewContext()
//
//	// Custom emitter (dependency injection)
//	ctx := ggshader.NewContext(ggshader.WithEmitter(myEmitter))
func NewContext(opts ...ContextOption) *Context {
	options := defaultOptions()
	for _, opt := range opts {
		opt(&options)
	}

	c := &Context{
		dict:     shaders.NewDictionary(),
		emitter:  options.emitter,
		programs: progcache.New[shaders.UniquePaintParamsID, *Program](options.cacheSize),
		logger:   options.logger,
	}
	c.builders.New = func() any { return shaders.NewKeyBuilder(c.dict) }
	return c
}

func (c *Context) log() *slog.Logger {
	if c.logger != nil {
		return c.logger
	}
	return Logger()
}

// Dictionary returns the Context's dictionary.
func (c *Context) Dictionary() *shaders.Dictionary { return c.dict }

// PaintParams is the result of adding a paint: the ID of its program and
// the uniform values of this particular paint.
type PaintParams struct {
	ID       shaders.UniquePaintParamsID
	Uniforms *UniformData
	Blend    shaders.BlendInfo
}

// AddPaint encodes p, interns its key and returns its parameters.
func (c *Context) AddPaint(p *Paint) (PaintParams, error) {
	if p == nil {
		return PaintParams{}, fmt.Errorf("ggshader: nil paint")
	}
	b := c.builders.Get().(*shaders.KeyBuilder)
	defer func() {
		b.Reset()
		c.builders.Put(b)
	}()

	u := &UniformData{}
	if err := p.AddToKey(c.dict, b, u); err != nil {
		return PaintParams{}, err
	}
	e, err := c.dict.FindOrCreate(b)
	if err != nil {
		return PaintParams{}, err
	}
	return PaintParams{ID: e.ID(), Uniforms: u, Blend: e.BlendInfo()}, nil
}

// Program is a generated fragment shader with what a pipeline needs to
// run it.
type Program struct {
	ID   shaders.UniquePaintParamsID
	WGSL string

	// Blend is the fixed-function blend state. When Blend.ShaderBlends is
	// set the pipeline must bind a copy of the destination.
	Blend shaders.BlendInfo

	// Layout is the uniform buffer layout; UniformData.Pack fills it.
	Layout wgsl.Layout

	// UniformEntry describes the uniform buffer binding (group 0) and
	// TextureEntries the sampler and texture bindings (group 1).
	UniformEntry   gputypes.BindGroupLayoutEntry
	TextureEntries []gputypes.BindGroupLayoutEntry

	// Info is the decoded key.
	Info *shaders.ShaderInfo
}

// Program returns the program of id, generating it on first use.
func (c *Context) Program(id shaders.UniquePaintParamsID) (*Program, error) {
	return c.programs.GetOrCreate(id, func() (*Program, error) {
		info, err := c.dict.ShaderInfo(id)
		if err != nil {
			return nil, err
		}
		src, err := info.ToWGSL(c.emitter)
		if err != nil {
			c.log().Warn("ggshader: program generation failed", "id", id, "err", err)
			return nil, err
		}
		readers := info.BlockReaders()
		layout := wgsl.UniformLayout(readers, info.NeedsLocalCoords())
		c.log().Debug("ggshader: generated program",
			"id", id,
			"blocks", info.Len(),
			"uniformBytes", layout.Size,
			"wgslBytes", len(src))
		return &Program{
			ID:             id,
			WGSL:           src,
			Blend:          info.BlendInfo(),
			Layout:         layout,
			UniformEntry:   wgsl.UniformEntry(layout),
			TextureEntries: wgsl.LayoutEntries(readers),
			Info:           info,
		}, nil
	})
}

// Stats describes a Context's dictionary and program cache.
type Stats struct {
	Dictionary shaders.Stats   `json:"dictionary"`
	Programs   progcache.Stats `json:"programs"`
}

// Stats returns the Context's statistics.
func (c *Context) Stats() Stats {
	return Stats{
		Dictionary: c.dict.Stats(),
		Programs:   c.programs.Stats(),
	}
}

package ggshader

import (
	"encoding/binary"
	"math"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gogpu/gputypes"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/ggshader/backend/wgsl"
	"github.com/gogpu/ggshader/shaders"
)

func mustProgram(t *testing.T, ctx *Context, id shaders.UniquePaintParamsID) *Program {
	t.Helper()
	prog, err := ctx.Program(id)
	require.NoError(t, err)
	return prog
}

// floatsAt decodes n little-endian float32 values starting at off.
func floatsAt(buf []byte, off, n int) []float32 {
	out := make([]float32, n)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(buf[off+4*i:]))
	}
	return out
}

func int32At(buf []byte, off int) int32 {
	return int32(binary.LittleEndian.Uint32(buf[off:]))
}

func fieldOffset(t *testing.T, prog *Program, name string) int {
	t.Helper()
	for _, f := range prog.Layout.Fields {
		if f.Name == name {
			return f.Offset
		}
	}
	t.Fatalf("layout has no field %s: %+v", name, prog.Layout.Fields)
	return 0
}

func TestProgramSolidColor(t *testing.T) {
	ctx := NewContext()
	params := addPaint(t, ctx, NewPaint(SolidColor(RGBA2(1, 0.5, 0, 0.5))))
	prog := mustProgram(t, ctx, params.ID)

	require.Equal(t, params.ID, prog.ID)
	require.Contains(t, prog.WGSL, "struct FSUniforms {\n    color_0: vec4<f32>,\n}\n")
	require.Contains(t, prog.WGSL, "outColor_0 = sk_solid_shader(fsUniforms.color_0);")
	require.Contains(t, prog.WGSL, "return FSOut(outColor_1);")
	require.False(t, prog.Blend.ShaderBlends)
	require.Equal(t, gputypes.BlendFactorOneMinusSrcAlpha, prog.Blend.State.Color.DstFactor)
	require.Empty(t, prog.TextureEntries)
	require.Equal(t, uint64(16), prog.UniformEntry.Buffer.MinBindingSize)

	buf, err := params.Uniforms.Pack(prog.Layout, Identity())
	require.NoError(t, err)
	require.Equal(t, []float32{0.5, 0.25, 0, 0.5}, floatsAt(buf, 0, 4), "colors are premultiplied")
}

func TestProgramIsCached(t *testing.T) {
	ctx := NewContext()
	params := addPaint(t, ctx, NewPaint(SolidColor(Red)))

	first := mustProgram(t, ctx, params.ID)
	second := mustProgram(t, ctx, params.ID)
	require.Same(t, first, second)

	s := ctx.Stats().Programs
	require.Equal(t, 1, s.Len)
	require.Equal(t, uint64(1), s.Hits)
	require.Equal(t, uint64(1), s.Misses)
}

func TestProgramCacheSize(t *testing.T) {
	ctx := NewContext(WithProgramCacheSize(1))
	a := addPaint(t, ctx, NewPaint(SolidColor(Red)))
	b := addPaint(t, ctx, NewPaint(SolidColor(Red)).SetBlendMode(BlendPlus))

	mustProgram(t, ctx, a.ID)
	mustProgram(t, ctx, b.ID)
	require.Equal(t, 1, ctx.Stats().Programs.Len)
	require.Equal(t, uint64(1), ctx.Stats().Programs.Evictions)
}

func TestProgramInvalidID(t *testing.T) {
	ctx := NewContext()
	_, err := ctx.Program(shaders.InvalidPaintParamsID)
	require.ErrorIs(t, err, shaders.ErrInvalidID)
	_, err = ctx.Program(42)
	require.ErrorIs(t, err, shaders.ErrInvalidID)
}

func TestProgramShaderBlend(t *testing.T) {
	ctx := NewContext()
	params := addPaint(t, ctx, NewPaint(SolidColor(Red)).SetBlendMode(BlendColorBurn))
	prog := mustProgram(t, ctx, params.ID)

	require.True(t, prog.Blend.ShaderBlends)
	require.True(t, prog.Blend.IsReplace())
	require.Contains(t, prog.WGSL, "var dstCopy: texture_2d<f32>;")
	require.Contains(t, prog.WGSL, "sk_blend(fsUniforms.blendMode_1, outColor_0, sk_read_dst())")
	require.Len(t, prog.TextureEntries, 1)

	buf, err := params.Uniforms.Pack(prog.Layout, Identity())
	require.NoError(t, err)
	require.Equal(t, int32(BlendColorBurn), int32At(buf, fieldOffset(t, prog, "blendMode_1")))
}

func TestProgramImageShader(t *testing.T) {
	ctx := NewContext()
	img := NewImageShader(64, 32).SetTileModes(TileRepeat, TileMirror)
	params := addPaint(t, ctx, NewPaint(img))
	prog := mustProgram(t, ctx, params.ID)

	require.Contains(t, prog.WGSL, "textureSample(texture_0_0, sampler_0_0, sk_compute_coords(")
	require.Len(t, prog.TextureEntries, 2)
	require.NotNil(t, prog.TextureEntries[0].Sampler)
	require.NotNil(t, prog.TextureEntries[1].Texture)

	buf, err := params.Uniforms.Pack(prog.Layout, Identity())
	require.NoError(t, err)
	require.Equal(t, []float32{0, 0, 64, 32}, floatsAt(buf, fieldOffset(t, prog, "subset_0"), 4))
	require.Equal(t, int32(TileRepeat), int32At(buf, fieldOffset(t, prog, "tilemodeX_0")))
	require.Equal(t, int32(TileMirror), int32At(buf, fieldOffset(t, prog, "tilemodeY_0")))
	require.Equal(t, int32(64), int32At(buf, fieldOffset(t, prog, "imgWidth_0")))
	require.Equal(t, int32(32), int32At(buf, fieldOffset(t, prog, "imgHeight_0")))
}

func TestContextConcurrentAddPaint(t *testing.T) {
	ctx := NewContext()
	var wg sync.WaitGroup
	ids := make([]shaders.UniquePaintParamsID, 16)
	for i := range ids {
		wg.Add(1)
		go func() {
			defer wg.Done()
			mode := BlendSourceOver
			if i%2 == 1 {
				mode = BlendMultiply
			}
			params, err := ctx.AddPaint(NewPaint(SolidColor(Red)).SetBlendMode(mode))
			if err != nil {
				t.Errorf("AddPaint: %v", err)
				return
			}
			if _, err := ctx.Program(params.ID); err != nil {
				t.Errorf("Program: %v", err)
			}
			ids[i] = params.ID
		}()
	}
	wg.Wait()

	require.Equal(t, 2, ctx.Stats().Dictionary.Entries)
	for i := 2; i < len(ids); i++ {
		require.Equal(t, ids[i%2], ids[i])
	}
}

// upperEmitter wraps the WGSL emitter and renames the uniform block
// variable.
type upperEmitter struct{ *wgsl.Emitter }

func (e upperEmitter) EmitUniforms(readers []*shaders.BlockReader, needsDev2Local bool) string {
	return strings.ReplaceAll(e.Emitter.EmitUniforms(readers, needsDev2Local), wgsl.UniformBlockName, "U")
}

func (upperEmitter) UniformRef(name string) string { return "U." + name }

func TestWithEmitter(t *testing.T) {
	ctx := NewContext(WithEmitter(upperEmitter{wgsl.New()}))
	params := addPaint(t, ctx, NewPaint(SolidColor(Red)))
	prog := mustProgram(t, ctx, params.ID)
	require.Contains(t, prog.WGSL, "var<uniform> U: FSUniforms;")
	require.Contains(t, prog.WGSL, "sk_solid_shader(U.color_0)")

	// A nil emitter keeps the default.
	ctx = NewContext(WithEmitter(nil))
	prog = mustProgram(t, ctx, addPaint(t, ctx, NewPaint(SolidColor(Red))).ID)
	require.Contains(t, prog.WGSL, "fsUniforms.color_0")
}

// slowEmitter delays every program it emits uniforms for.
type slowEmitter struct {
	*wgsl.Emitter
	delay time.Duration
}

func (e slowEmitter) EmitUniforms(readers []*shaders.BlockReader, needsDev2Local bool) string {
	time.Sleep(e.delay)
	return e.Emitter.EmitUniforms(readers, needsDev2Local)
}

func TestProgramsGenerateConcurrently(t *testing.T) {
	const delay = 50 * time.Millisecond
	ctx := NewContext(WithEmitter(slowEmitter{wgsl.New(), delay}))
	paints := []*Paint{
		NewPaint(SolidColor(Red)),
		NewPaint(gradientWithStops(2)),
		NewPaint(gradientWithStops(6)),
		NewPaint(NewImageShader(8, 8)),
	}
	ids := make([]shaders.UniquePaintParamsID, len(paints))
	for i, p := range paints {
		ids[i] = addPaint(t, ctx, p).ID
	}

	var wg sync.WaitGroup
	start := time.Now()
	for _, id := range ids {
		for range 2 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if _, err := ctx.Program(id); err != nil {
					t.Errorf("Program(%v): %v", id, err)
				}
			}()
		}
	}
	wg.Wait()
	elapsed := time.Since(start)

	require.Less(t, elapsed, time.Duration(len(ids))*delay, "programs were generated one at a time")
	s := ctx.Stats().Programs
	require.Equal(t, len(ids), s.Len)
	require.Equal(t, uint64(len(ids)), s.Misses)
}

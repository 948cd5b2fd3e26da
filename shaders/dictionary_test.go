package shaders

import (
	"errors"
	"sync"
	"testing"

	"github.com/gogpu/ggshader/effect"
)

func solidKey(b *KeyBuilder) {
	block(b, BuiltInSolidColorShader)
}

func TestFindOrCreateIsIdempotent(t *testing.T) {
	d := NewDictionary()
	b := NewKeyBuilder(d)

	solidKey(b)
	first := mustEntry(t, d, b)

	b.Reset()
	solidKey(b)
	second := mustEntry(t, d, b)

	if first != second {
		t.Errorf("equal keys interned twice: ids %d and %d", first.ID(), second.ID())
	}
	if n := d.EntryCount(); n != 1 {
		t.Errorf("EntryCount() = %d, want 1", n)
	}
}

func TestEntryOutlivesBuilder(t *testing.T) {
	d := NewDictionary()
	b := NewKeyBuilder(d)
	solidKey(b)
	e := mustEntry(t, d, b)
	want := append([]byte(nil), e.Key().Bytes()...)

	// Overwrite the builder buffer with a different key.
	b.Reset()
	block(b, BuiltInError)
	if _, err := b.LockAsKey(); err != nil {
		t.Fatal(err)
	}
	if !e.Key().Equal(KeyFromBytes(want)) {
		t.Errorf("entry key changed after builder reuse: %v", e.Key())
	}
}

func TestEntryIDsAreMonotonic(t *testing.T) {
	d := NewDictionary()
	b := NewKeyBuilder(d)

	var ids []UniquePaintParamsID
	for mode := range byte(4) {
		b.Reset()
		solidKey(b)
		b.BeginBlock(BuiltInFixedFunctionBlender)
		b.AddBytes(mode)
		b.EndBlock()
		ids = append(ids, mustEntry(t, d, b).ID())
	}
	for i, id := range ids {
		if want := UniquePaintParamsID(i + 1); id != want {
			t.Errorf("entry %d: id = %d, want %d", i, id, want)
		}
	}

	if d.Lookup(InvalidPaintParamsID) != nil {
		t.Error("Lookup(0) returned an entry")
	}
	if d.Lookup(UniquePaintParamsID(len(ids)+1)) != nil {
		t.Error("Lookup past the end returned an entry")
	}
	if e := d.Lookup(ids[2]); e == nil || e.ID() != ids[2] {
		t.Errorf("Lookup(%d) = %v", ids[2], e)
	}
	if _, err := d.ShaderInfo(99); !errors.Is(err, ErrInvalidID) {
		t.Errorf("ShaderInfo(99) error = %v, want ErrInvalidID", err)
	}
}

func TestEntryKeepsBlendInfo(t *testing.T) {
	d := NewDictionary()
	b := NewKeyBuilder(d)
	solidKey(b)
	info := BlendInfo{ShaderBlends: true}
	b.SetBlendInfo(info)
	e := mustEntry(t, d, b)
	if e.BlendInfo() != info {
		t.Errorf("BlendInfo() = %+v, want %+v", e.BlendInfo(), info)
	}
	si, err := d.ShaderInfo(e.ID())
	if err != nil {
		t.Fatal(err)
	}
	if si.BlendInfo() != info {
		t.Errorf("ShaderInfo.BlendInfo() = %+v, want %+v", si.BlendInfo(), info)
	}
}

func TestShaderInfoRoundTrip(t *testing.T) {
	d := NewDictionary()
	b := NewKeyBuilder(d)
	b.BeginBlock(BuiltInBlendShader)
	solidKey(b)
	b.BeginBlock(BuiltInLocalMatrixShader)
	solidKey(b)
	b.EndBlock()
	b.EndBlock()
	b.BeginBlock(BuiltInShaderBasedBlender)
	b.EndBlock()

	e := mustEntry(t, d, b)
	si, err := d.ShaderInfo(e.ID())
	if err != nil {
		t.Fatalf("ShaderInfo: %v", err)
	}

	want := []struct {
		id       SnippetID
		children int
	}{
		{BuiltInBlendShader, 2},
		{BuiltInSolidColorShader, 0},
		{BuiltInLocalMatrixShader, 1},
		{BuiltInSolidColorShader, 0},
		{BuiltInShaderBasedBlender, 0},
	}
	if si.Len() != len(want) {
		t.Fatalf("Len() = %d, want %d:\n%s", si.Len(), len(want), si)
	}
	for i, w := range want {
		r := si.BlockReader(i)
		if r.SnippetID() != w.id || r.NumChildren() != w.children || r.Index() != i {
			t.Errorf("block %d = (%d, %d children, index %d), want (%d, %d children)",
				i, r.SnippetID(), r.NumChildren(), r.Index(), w.id, w.children)
		}
	}
	if !si.NeedsLocalCoords() {
		t.Error("NeedsLocalCoords() = false")
	}
	if !si.NeedsDstRead() {
		t.Error("NeedsDstRead() = false")
	}

	wantOutline := "0: BlendShader\n" +
		"  1: SolidColor\n" +
		"  2: LocalMatrixShader\n" +
		"    3: SolidColor\n" +
		"4: ShaderBasedBlender\n"
	if got := si.String(); got != wantOutline {
		t.Errorf("String() =\n%s\nwant\n%s", got, wantOutline)
	}
}

func TestPayloadRoundTrip(t *testing.T) {
	d := NewDictionary()
	id, err := d.AddPayloadSnippet("my_fn", []PayloadField{
		{Name: "flags", Type: PayloadByte, Count: 2},
		{Name: "n", Type: PayloadInt, Count: 1},
		{Name: "colors", Type: PayloadFloat4, Count: 2},
	})
	if err != nil {
		t.Fatalf("AddPayloadSnippet: %v", err)
	}
	if got := len(d.DataPayloadExpectations(id)); got != 3 {
		t.Fatalf("DataPayloadExpectations: %d fields, want 3", got)
	}

	b := NewKeyBuilder(d)
	b.BeginBlock(id)
	b.AddBytes(7, 9)
	b.AddInts(-42)
	b.AddFloat4s([4]float32{0.5, 1, 2, 3}, [4]float32{-1, 0, 0.25, 8})
	b.EndBlock()
	e := mustEntry(t, d, b)

	si, err := d.ShaderInfo(e.ID())
	if err != nil {
		t.Fatalf("ShaderInfo: %v", err)
	}
	r := si.BlockReader(0)
	if r.NumDataPayloadFields() != 3 {
		t.Fatalf("NumDataPayloadFields() = %d", r.NumDataPayloadFields())
	}
	if got := r.Bytes(0); len(got) != 2 || got[0] != 7 || got[1] != 9 {
		t.Errorf("Bytes(0) = %v", got)
	}
	if got := r.Ints(1); len(got) != 1 || got[0] != -42 {
		t.Errorf("Ints(1) = %v", got)
	}
	got := r.Float4s(2)
	want := [][4]float32{{0.5, 1, 2, 3}, {-1, 0, 0.25, 8}}
	if len(got) != 2 || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("Float4s(2) = %v, want %v", got, want)
	}
	if r.BlockSize() != blockHeaderSize+2+4+32 {
		t.Errorf("BlockSize() = %d", r.BlockSize())
	}
}

func TestBlockReaderFieldTypeMismatchPanics(t *testing.T) {
	d := NewDictionary()
	b := NewKeyBuilder(d)
	b.BeginBlock(BuiltInFixedFunctionBlender)
	b.AddBytes(1)
	b.EndBlock()
	si, err := d.ShaderInfo(mustEntry(t, d, b).ID())
	if err != nil {
		t.Fatal(err)
	}
	defer func() {
		if recover() == nil {
			t.Error("Ints on a byte field did not panic")
		}
	}()
	si.BlockReader(0).Ints(0)
}

func TestAddUserDefinedSnippet(t *testing.T) {
	d := NewDictionary()
	desc := SnippetDesc{
		Name:               "Checker",
		Uniforms:           []Uniform{{Name: "localMatrix", Type: Float4x4}, {Name: "size", Type: Float}},
		Flags:              FlagLocalCoords,
		StaticFunctionName: "checker",
		Kind:               GlueDefault,
		Source:             "fn checker(coords: mat4x4<f32>, size: f32) -> vec4<f32> { return vec4<f32>(size); }",
	}

	first, err := d.AddUserDefinedSnippet(desc)
	if err != nil {
		t.Fatalf("AddUserDefinedSnippet: %v", err)
	}
	second, err := d.AddUserDefinedSnippet(desc)
	if err != nil {
		t.Fatalf("AddUserDefinedSnippet: %v", err)
	}
	if first != BuiltInCodeSnippetIDCount || second != first+1 {
		t.Errorf("ids = %d, %d; want %d, %d", first, second, BuiltInCodeSnippetIDCount, BuiltInCodeSnippetIDCount+1)
	}
	if !d.IsValidID(second) || d.IsValidID(second+1) || d.IsValidID(InvalidSnippetID) {
		t.Error("IsValidID disagrees with registered snippets")
	}
	if s := d.Snippet(first); s == nil || s.Name != "Checker" || len(s.Uniforms) != 2 {
		t.Errorf("Snippet(%d) = %+v", first, s)
	}
	if d.BuiltInUniforms(first) != nil {
		t.Error("BuiltInUniforms returned uniforms for a user snippet")
	}
	if got := d.BuiltInUniforms(BuiltInSolidColorShader); len(got) != 1 || got[0].Name != "color" {
		t.Errorf("BuiltInUniforms(SolidColor) = %+v", got)
	}
	if got := d.Stats().UserSnippets; got != 2 {
		t.Errorf("Stats().UserSnippets = %d, want 2", got)
	}
}

func TestAddUserDefinedSnippetRejects(t *testing.T) {
	tests := []struct {
		name string
		desc SnippetDesc
	}{
		{"empty name", SnippetDesc{StaticFunctionName: "f"}},
		{"bad function name", SnippetDesc{Name: "x", StaticFunctionName: "not a name"}},
		{"local coords without matrix", SnippetDesc{Name: "x", StaticFunctionName: "f", Flags: FlagLocalCoords}},
		{"children on default glue", SnippetDesc{Name: "x", StaticFunctionName: "f", NumChildren: 1}},
		{"no children on child glue", SnippetDesc{Name: "x", StaticFunctionName: "f", Kind: GlueDefaultWithChildren}},
		{"unknown kind", SnippetDesc{Name: "x", StaticFunctionName: "f", Kind: glueKindCount}},
		{"runtime effect kind", SnippetDesc{Name: "x", StaticFunctionName: "f", Kind: GlueRuntimeEffect}},
		{"bad uniform type", SnippetDesc{Name: "x", StaticFunctionName: "f", Uniforms: []Uniform{{Name: "u", Type: slTypeCount}}}},
		{"uniform name not an identifier", SnippetDesc{Name: "x", StaticFunctionName: "f", Uniforms: []Uniform{{Name: "a b", Type: Float}}}},
		{"duplicate uniform", SnippetDesc{Name: "x", StaticFunctionName: "f", Uniforms: []Uniform{{Name: "u", Type: Float}, {Name: "u", Type: Float4}}}},
		{"empty payload field", SnippetDesc{Name: "x", StaticFunctionName: "f", DataPayload: []PayloadField{{Name: "p", Type: PayloadInt}}}},
		{"image glue without sampler", SnippetDesc{Name: "x", StaticFunctionName: "f", Kind: GlueImageShader}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewDictionary()
			id, err := d.AddUserDefinedSnippet(tt.desc)
			if !errors.Is(err, ErrInvalidSnippet) || id != InvalidSnippetID {
				t.Errorf("AddUserDefinedSnippet = %d, %v; want ErrInvalidSnippet", id, err)
			}
		})
	}
}

const tintEffect = `
fn main(coords: vec2<f32>, color: vec4<f32>) -> vec4<f32> {
    return color * tint;
}
`

func TestRuntimeEffectDedup(t *testing.T) {
	d := NewDictionary()
	uniforms := []effect.Uniform{{Name: "tint", Type: effect.Float4}}

	a, err := effect.Make(tintEffect, uniforms)
	if err != nil {
		t.Fatalf("Make: %v", err)
	}
	same, err := effect.Make(tintEffect, uniforms)
	if err != nil {
		t.Fatalf("Make: %v", err)
	}
	other, err := effect.Make(tintEffect+"\n// variant\n", uniforms)
	if err != nil {
		t.Fatalf("Make: %v", err)
	}

	id := d.FindOrCreateRuntimeEffectSnippet(a)
	if id < BuiltInCodeSnippetIDCount {
		t.Fatalf("runtime effect id %d is in the built-in range", id)
	}
	if got := d.FindOrCreateRuntimeEffectSnippet(same); got != id {
		t.Errorf("equal effects registered twice: %d and %d", id, got)
	}
	if got := d.FindOrCreateRuntimeEffectSnippet(other); got == id {
		t.Errorf("different effects share id %d", id)
	}
	if got := d.FindOrCreateRuntimeEffectSnippet(nil); got != InvalidSnippetID {
		t.Errorf("nil effect got id %d", got)
	}
	if got := d.Stats().RuntimeEffects; got != 2 {
		t.Errorf("Stats().RuntimeEffects = %d, want 2", got)
	}

	s := d.Snippet(id)
	if s.Name != RuntimeEffectName || s.Kind != GlueRuntimeEffect || !s.NeedsLocalCoords() || s.RuntimeEffect() != a {
		t.Errorf("runtime snippet = %+v", s.SnippetDesc)
	}
	wantUniforms := []Uniform{{Name: "localMatrix", Type: Float4x4}, {Name: "tint", Type: Float4}}
	if len(s.Uniforms) != len(wantUniforms) {
		t.Fatalf("uniforms = %+v, want %+v", s.Uniforms, wantUniforms)
	}
	for i := range wantUniforms {
		if s.Uniforms[i] != wantUniforms[i] {
			t.Errorf("uniform %d = %+v, want %+v", i, s.Uniforms[i], wantUniforms[i])
		}
	}
}

func TestRuntimeEffectUniformConversion(t *testing.T) {
	in := []effect.Uniform{
		{Name: "a", Type: effect.Float3, Flags: effect.FlagHalfPrecision},
		{Name: "b", Type: effect.Int2},
		{Name: "c", Type: effect.Float4, Flags: effect.FlagArray, Count: 3},
		{Name: "d", Type: effect.Float2x2},
	}
	want := []Uniform{
		{Name: "localMatrix", Type: Float4x4},
		{Name: "a", Type: Half3},
		{Name: "b", Type: Int2},
		{Name: "c", Type: Float4, Count: 3},
		{Name: "d", Type: Float2x2},
	}
	got := convertUniforms(in)
	if len(got) != len(want) {
		t.Fatalf("convertUniforms = %+v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("uniform %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestRuntimeEffectReservedNames(t *testing.T) {
	tests := []struct {
		name     string
		src      string
		uniforms []effect.Uniform
	}{
		{"localMatrix uniform", tintEffect, []effect.Uniform{{Name: "tint", Type: effect.Float4}, {Name: "localMatrix", Type: effect.Float4x4}}},
		{"helper function", "fn RuntimeEffect() -> f32 { return 1.0; }\n" + tintEffect, []effect.Uniform{{Name: "tint", Type: effect.Float4}}},
		{"global", "const RuntimeEffect: f32 = 1.0;\n" + tintEffect, []effect.Uniform{{Name: "tint", Type: effect.Float4}}},
		{"struct", "struct RuntimeEffect {\n    a: f32,\n}\n" + tintEffect, []effect.Uniform{{Name: "tint", Type: effect.Float4}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fx, err := effect.Make(tt.src, tt.uniforms)
			if err != nil {
				t.Fatalf("Make: %v", err)
			}
			d := NewDictionary()
			if id := d.FindOrCreateRuntimeEffectSnippet(fx); id != InvalidSnippetID {
				t.Errorf("FindOrCreateRuntimeEffectSnippet = %d, want InvalidSnippetID", id)
			}
			if got := d.Stats().RuntimeEffects; got != 0 {
				t.Errorf("Stats().RuntimeEffects = %d, want 0", got)
			}
		})
	}
}

func TestConcurrentFindOrCreate(t *testing.T) {
	d := NewDictionary()
	const workers = 8

	ids := make([]UniquePaintParamsID, workers)
	var wg sync.WaitGroup
	for w := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			b := NewKeyBuilder(d)
			for mode := range byte(16) {
				b.Reset()
				solidKey(b)
				b.BeginBlock(BuiltInFixedFunctionBlender)
				b.AddBytes(mode)
				b.EndBlock()
				e, err := d.FindOrCreate(b)
				if err != nil {
					t.Error(err)
					return
				}
				if mode == 5 {
					ids[w] = e.ID()
				}
			}
		}()
	}
	wg.Wait()

	if n := d.EntryCount(); n != 16 {
		t.Errorf("EntryCount() = %d, want 16", n)
	}
	for w := 1; w < workers; w++ {
		if ids[w] != ids[0] {
			t.Errorf("worker %d got id %d, worker 0 got %d", w, ids[w], ids[0])
		}
	}
}

func TestStats(t *testing.T) {
	d := NewDictionary()
	b := NewKeyBuilder(d)
	solidKey(b)
	mustEntry(t, d, b)

	s := d.Stats()
	if s.Entries != 1 || s.ArenaBlocks != 1 || s.ArenaUsedBytes < blockHeaderSize {
		t.Errorf("Stats() = %+v", s)
	}
}

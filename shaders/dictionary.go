// Package shaders interns paint keys and generates WGSL fragment shaders
// for them.
//
// A paint's coloring pipeline is described as a tree of snippets encoded
// into a Key by a KeyBuilder. The Dictionary deduplicates keys into
// Entries with stable IDs. Given an ID, the Dictionary rebuilds a
// ShaderInfo, and ShaderInfo.ToWGSL composes the snippets' functions into
// one WGSL translation unit.
//
// Example:
//
//	dict := shaders.NewDictionary()
//	b := shaders.NewKeyBuilder(dict)
//	b.BeginBlock(shaders.BuiltInSolidColorShader)
//	b.EndBlock()
//	entry, err := dict.FindOrCreate(b)
//	...
//	info, err := dict.ShaderInfo(entry.ID())
//	src, err := info.ToWGSL(emitter)
package shaders

import (
	"fmt"
	"hash/fnv"
	"sync"

	"github.com/gogpu/ggshader/effect"
	"github.com/gogpu/ggshader/internal/arena"
)

// UniquePaintParamsID identifies an Entry. Zero is invalid.
type UniquePaintParamsID uint32

// InvalidPaintParamsID is the zero UniquePaintParamsID.
const InvalidPaintParamsID UniquePaintParamsID = 0

// IsValid reports whether id is not the invalid ID.
func (id UniquePaintParamsID) IsValid() bool { return id != InvalidPaintParamsID }

// Entry is an interned key. Entries are immutable and live as long as
// their Dictionary.
type Entry struct {
	id    UniquePaintParamsID
	key   Key
	blend BlendInfo
}

// ID returns the entry's unique ID.
func (e *Entry) ID() UniquePaintParamsID { return e.id }

// Key returns the entry's durable key.
func (e *Entry) Key() Key { return e.key }

// BlendInfo returns the fixed-function blend state committed with the key.
func (e *Entry) BlendInfo() BlendInfo { return e.blend }

// runtimeEffectKey identifies a runtime effect. Equal keys are assumed to
// be equal effects.
type runtimeEffectKey struct {
	hash        uint64
	uniformSize int
}

// Dictionary interns keys and owns the snippet registry.
//
// All methods are safe for concurrent use.
type Dictionary struct {
	mu sync.Mutex

	arena   *arena.Arena
	buckets map[uint64][]*Entry
	entries []*Entry // entries[0] is nil

	builtIn        [BuiltInCodeSnippetIDCount]*Snippet
	user           []*Snippet
	runtimeEffects map[runtimeEffectKey]SnippetID
}

// NewDictionary creates a Dictionary holding only the built-in snippets.
func NewDictionary() *Dictionary {
	return &Dictionary{
		arena:          arena.New(arena.DefaultBlockSize),
		buckets:        make(map[uint64][]*Entry),
		entries:        []*Entry{nil},
		builtIn:        builtInSnippets(),
		runtimeEffects: make(map[runtimeEffectKey]SnippetID),
	}
}

func hashKey(data []byte) uint64 {
	h := fnv.New64a()
	_, _ = h.Write(data) // fnv.Write never returns an error
	return h.Sum64()
}

// FindOrCreate locks b's key and interns it with b's blend state.
func (d *Dictionary) FindOrCreate(b *KeyBuilder) (*Entry, error) {
	key, err := b.LockAsKey()
	if err != nil {
		return nil, err
	}
	return d.FindOrCreateKey(key, b.BlendInfo()), nil
}

// FindOrCreateKey returns the entry for key, creating it on first use.
// The dictionary copies the key bytes; key may be reused afterwards.
//
// The blend state is part of the entry but not of its identity: keys that
// must differ in blend state have to differ in their bytes.
func (d *Dictionary) FindOrCreateKey(key Key, blend BlendInfo) *Entry {
	h := hashKey(key.Bytes())

	d.mu.Lock()
	defer d.mu.Unlock()

	for _, e := range d.buckets[h] {
		if e.key.Equal(key) {
			return e
		}
	}

	e := &Entry{
		id:    UniquePaintParamsID(len(d.entries)),
		key:   Key{data: d.arena.CopyBytes(key.Bytes())},
		blend: blend,
	}
	d.buckets[h] = append(d.buckets[h], e)
	d.entries = append(d.entries, e)

	slogger().Debug("shaders: new paint entry",
		"id", e.id,
		"keyBytes", key.Len())
	return e
}

// Lookup returns the entry with the given ID, or nil.
func (d *Dictionary) Lookup(id UniquePaintParamsID) *Entry {
	if !id.IsValid() {
		return nil
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if int(id) >= len(d.entries) {
		return nil
	}
	return d.entries[id]
}

// EntryCount returns the number of interned entries.
func (d *Dictionary) EntryCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.entries) - 1
}

// ShaderInfo rebuilds the block list of entry id.
func (d *Dictionary) ShaderInfo(id UniquePaintParamsID) (*ShaderInfo, error) {
	e := d.Lookup(id)
	if e == nil {
		return nil, fmt.Errorf("%w: %d", ErrInvalidID, id)
	}
	return NewShaderInfo(d, e.key, e.blend)
}

// Snippet returns the snippet with the given ID, or nil.
func (d *Dictionary) Snippet(id SnippetID) *Snippet {
	if id == InvalidSnippetID {
		return nil
	}
	if id < BuiltInCodeSnippetIDCount {
		return d.builtIn[id]
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.userSnippetLocked(id)
}

func (d *Dictionary) userSnippetLocked(id SnippetID) *Snippet {
	i := int(id - BuiltInCodeSnippetIDCount)
	if i >= len(d.user) {
		return nil
	}
	return d.user[i]
}

// IsValidID reports whether id names a registered snippet.
func (d *Dictionary) IsValidID(id SnippetID) bool { return d.Snippet(id) != nil }

// BuiltInUniforms returns the uniforms of built-in snippet id.
func (d *Dictionary) BuiltInUniforms(id SnippetID) []Uniform {
	if id == InvalidSnippetID || id >= BuiltInCodeSnippetIDCount {
		return nil
	}
	return d.builtIn[id].Uniforms
}

// DataPayloadExpectations returns the payload fields of snippet id.
func (d *Dictionary) DataPayloadExpectations(id SnippetID) []PayloadField {
	if s := d.Snippet(id); s != nil {
		return s.DataPayload
	}
	return nil
}

// AddUserDefinedSnippet registers a snippet and returns its ID. IDs are
// never reused. Strings in desc are copied into dictionary-owned memory.
func (d *Dictionary) AddUserDefinedSnippet(desc SnippetDesc) (SnippetID, error) {
	if desc.Kind == GlueRuntimeEffect {
		return InvalidSnippetID, fmt.Errorf("%w: %s: runtime effects are registered with FindOrCreateRuntimeEffectSnippet",
			ErrInvalidSnippet, desc.Name)
	}
	if err := desc.validate(); err != nil {
		return InvalidSnippetID, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	return d.addSnippetLocked(desc, nil), nil
}

// AddPayloadSnippet registers a childless, uniform-free snippet that calls
// fn and carries the given payload fields in its key.
func (d *Dictionary) AddPayloadSnippet(fn string, fields []PayloadField) (SnippetID, error) {
	return d.AddUserDefinedSnippet(SnippetDesc{
		Name:               "UserDefined",
		StaticFunctionName: fn,
		Kind:               GlueDefault,
		DataPayload:        fields,
	})
}

// addSnippetLocked copies desc into the arena and appends it.
func (d *Dictionary) addSnippetLocked(desc SnippetDesc, fx *effect.RuntimeEffect) SnippetID {
	a := d.arena
	s := &Snippet{SnippetDesc: SnippetDesc{
		Name:               a.CopyString(desc.Name),
		Flags:              desc.Flags,
		StaticFunctionName: a.CopyString(desc.StaticFunctionName),
		Kind:               desc.Kind,
		NumChildren:        desc.NumChildren,
		Source:             a.CopyString(desc.Source),
	}, effect: fx}
	if len(desc.Uniforms) > 0 {
		s.Uniforms = make([]Uniform, len(desc.Uniforms))
		for i, u := range desc.Uniforms {
			s.Uniforms[i] = Uniform{Name: a.CopyString(u.Name), Type: u.Type, Count: u.Count}
		}
	}
	if len(desc.TexturesAndSamplers) > 0 {
		s.TexturesAndSamplers = make([]TextureAndSampler, len(desc.TexturesAndSamplers))
		for i, t := range desc.TexturesAndSamplers {
			s.TexturesAndSamplers[i] = TextureAndSampler{Name: a.CopyString(t.Name)}
		}
	}
	if len(desc.DataPayload) > 0 {
		s.DataPayload = make([]PayloadField, len(desc.DataPayload))
		for i, f := range desc.DataPayload {
			s.DataPayload[i] = PayloadField{Name: a.CopyString(f.Name), Type: f.Type, Count: f.Count}
		}
	}
	s.generate = glueFuncs[s.Kind]

	d.user = append(d.user, s)
	id := BuiltInCodeSnippetIDCount + SnippetID(len(d.user)-1)
	slogger().Debug("shaders: new snippet",
		"id", id,
		"name", s.Name,
		"kind", s.Kind.String())
	return id
}

// Stats describes a Dictionary's contents.
type Stats struct {
	Entries        int `json:"entries"`
	UserSnippets   int `json:"userSnippets"`
	RuntimeEffects int `json:"runtimeEffects"`
	ArenaBlocks    int `json:"arenaBlocks"`
	ArenaBytes     int `json:"arenaBytes"`
	ArenaUsedBytes int `json:"arenaUsedBytes"`
}

// Stats returns a snapshot of the dictionary's contents.
func (d *Dictionary) Stats() Stats {
	d.mu.Lock()
	defer d.mu.Unlock()
	as := d.arena.Stats()
	return Stats{
		Entries:        len(d.entries) - 1,
		UserSnippets:   len(d.user),
		RuntimeEffects: len(d.runtimeEffects),
		ArenaBlocks:    as.Blocks,
		ArenaBytes:     as.Allocated,
		ArenaUsedBytes: as.Used,
	}
}

package shaders

import (
	"encoding/binary"
	"fmt"
	"math"
)

// openBlock tracks a block between BeginBlock and EndBlock.
type openBlock struct {
	start    int
	id       SnippetID
	snippet  *Snippet
	field    int // next payload field to write
	children int // child blocks written so far
}

// KeyBuilder accumulates blocks into a Key.
//
// Blocks are written in pre-order: BeginBlock, the payload fields in
// declaration order, the child blocks, then EndBlock. Any misuse records a
// sticky error; later calls are ignored and LockAsKey returns the error.
//
// A KeyBuilder is not safe for concurrent use.
type KeyBuilder struct {
	dict   *Dictionary
	data   []byte
	stack  []openBlock
	blend  BlendInfo
	locked bool
	err    error
}

// NewKeyBuilder creates a builder that validates blocks against dict.
func NewKeyBuilder(dict *Dictionary) *KeyBuilder {
	return &KeyBuilder{
		dict:  dict,
		data:  make([]byte, 0, 64),
		blend: ReplaceBlendInfo,
	}
}

// Err returns the first error recorded by the builder, if any.
func (b *KeyBuilder) Err() error { return b.err }

// BlendInfo returns the blend state set with SetBlendInfo.
func (b *KeyBuilder) BlendInfo() BlendInfo { return b.blend }

// SetBlendInfo sets the fixed-function blend state committed with the key.
func (b *KeyBuilder) SetBlendInfo(info BlendInfo) {
	if b.check() {
		b.blend = info
	}
}

// Reset clears the builder for reuse. Keys previously returned by
// LockAsKey become invalid.
func (b *KeyBuilder) Reset() {
	b.data = b.data[:0]
	b.stack = b.stack[:0]
	b.blend = ReplaceBlendInfo
	b.locked = false
	b.err = nil
}

func (b *KeyBuilder) fail(err error) {
	if b.err == nil {
		b.err = err
	}
}

// check reports whether the builder can accept writes.
func (b *KeyBuilder) check() bool {
	if b.err != nil {
		return false
	}
	if b.locked {
		b.fail(ErrLocked)
		return false
	}
	return true
}

// BeginBlock starts a block for snippet id.
func (b *KeyBuilder) BeginBlock(id SnippetID) {
	if !b.check() {
		return
	}
	s := b.dict.Snippet(id)
	if s == nil {
		b.fail(fmt.Errorf("%w: %d", ErrUnknownSnippet, id))
		return
	}
	if n := len(b.stack); n > 0 {
		parent := &b.stack[n-1]
		if parent.field < len(parent.snippet.DataPayload) {
			b.fail(fmt.Errorf("%w: %s: child started before payload field %q",
				ErrPayloadMismatch, parent.snippet.Name, parent.snippet.DataPayload[parent.field].Name))
			return
		}
		if parent.children == parent.snippet.NumChildren {
			b.fail(fmt.Errorf("%w: %s takes %d children", ErrChildCount, parent.snippet.Name, parent.snippet.NumChildren))
			return
		}
		parent.children++
	}
	b.stack = append(b.stack, openBlock{start: len(b.data), id: id, snippet: s})
	b.data = append(b.data, make([]byte, blockHeaderSize)...)
}

// nextField returns the open block and the payload field the next Add call
// must write, recording an error if it does not match typ and count.
func (b *KeyBuilder) nextField(typ PayloadType, count int) *openBlock {
	if !b.check() {
		return nil
	}
	if len(b.stack) == 0 {
		b.fail(fmt.Errorf("%w: payload written outside a block", ErrUnbalanced))
		return nil
	}
	top := &b.stack[len(b.stack)-1]
	fields := top.snippet.DataPayload
	if top.field >= len(fields) {
		b.fail(fmt.Errorf("%w: %s: unexpected %s field", ErrPayloadMismatch, top.snippet.Name, typ))
		return nil
	}
	f := fields[top.field]
	if f.Type != typ || f.Count != count {
		b.fail(fmt.Errorf("%w: %s.%s wants %d %s, got %d %s",
			ErrPayloadMismatch, top.snippet.Name, f.Name, f.Count, f.Type, count, typ))
		return nil
	}
	top.field++
	return top
}

// AddBytes writes a Byte payload field.
func (b *KeyBuilder) AddBytes(v ...byte) {
	if b.nextField(PayloadByte, len(v)) != nil {
		b.data = append(b.data, v...)
	}
}

// AddInts writes an Int payload field.
func (b *KeyBuilder) AddInts(v ...int32) {
	if b.nextField(PayloadInt, len(v)) != nil {
		for _, x := range v {
			b.data = binary.LittleEndian.AppendUint32(b.data, uint32(x))
		}
	}
}

// AddFloat4s writes a Float4 payload field.
func (b *KeyBuilder) AddFloat4s(v ...[4]float32) {
	if b.nextField(PayloadFloat4, len(v)) != nil {
		for _, f := range v {
			for _, x := range f {
				b.data = binary.LittleEndian.AppendUint32(b.data, math.Float32bits(x))
			}
		}
	}
}

// EndBlock closes the innermost open block.
func (b *KeyBuilder) EndBlock() {
	if !b.check() {
		return
	}
	if len(b.stack) == 0 {
		b.fail(fmt.Errorf("%w: EndBlock without BeginBlock", ErrUnbalanced))
		return
	}
	top := b.stack[len(b.stack)-1]
	s := top.snippet
	if top.field != len(s.DataPayload) {
		b.fail(fmt.Errorf("%w: %s: payload field %q missing", ErrPayloadMismatch, s.Name, s.DataPayload[top.field].Name))
		return
	}
	if top.children != s.NumChildren {
		b.fail(fmt.Errorf("%w: %s wants %d children, got %d", ErrChildCount, s.Name, s.NumChildren, top.children))
		return
	}
	size := len(b.data) - top.start
	if uint64(size) > math.MaxUint32 {
		b.fail(fmt.Errorf("%w: %s is %d bytes", ErrBlockTooLarge, s.Name, size))
		return
	}
	putHeader(b.data[top.start:], blockHeader{
		id:          top.id,
		size:        uint32(size),
		payloadSize: uint16(s.PayloadSize()),
		numChildren: uint8(s.NumChildren),
	})
	b.stack = b.stack[:len(b.stack)-1]
}

// LockAsKey finishes the key. The returned Key aliases the builder's buffer
// and is valid until Reset. Once locked, the builder rejects further
// writes; LockAsKey may be called again and returns the same key.
func (b *KeyBuilder) LockAsKey() (Key, error) {
	if b.err != nil {
		return Key{}, b.err
	}
	if b.locked {
		return Key{data: b.data}, nil
	}
	if len(b.stack) != 0 {
		b.fail(fmt.Errorf("%w: %d blocks still open", ErrUnbalanced, len(b.stack)))
		return Key{}, b.err
	}
	if len(b.data) == 0 {
		b.fail(ErrEmptyKey)
		return Key{}, b.err
	}
	b.locked = true
	return Key{data: b.data}, nil
}

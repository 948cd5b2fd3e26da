package shaders

import (
	"encoding/binary"
	"fmt"
	"math"
	"strings"
)

// BlockReader is a read cursor over one block of a Key.
type BlockReader struct {
	data    []byte
	offset  int
	header  blockHeader
	snippet *Snippet
	index   int // pre-order position within its ShaderInfo
}

// SnippetID returns the block's snippet ID.
func (r *BlockReader) SnippetID() SnippetID { return r.header.id }

// Snippet returns the block's snippet schema.
func (r *BlockReader) Snippet() *Snippet { return r.snippet }

// Index returns the block's pre-order position in its ShaderInfo.
func (r *BlockReader) Index() int { return r.index }

// NumChildren returns the number of child blocks.
func (r *BlockReader) NumChildren() int { return int(r.header.numChildren) }

// BlockSize returns the size of the block including its descendants.
func (r *BlockReader) BlockSize() int { return int(r.header.size) }

// NumDataPayloadFields returns the number of payload fields.
func (r *BlockReader) NumDataPayloadFields() int { return len(r.snippet.DataPayload) }

// field returns the raw bytes of payload field i, panicking if its type is
// not typ.
func (r *BlockReader) field(i int, typ PayloadType) []byte {
	fields := r.snippet.DataPayload
	if i < 0 || i >= len(fields) || fields[i].Type != typ {
		panic(fmt.Sprintf("shaders: %s has no %s payload field %d", r.snippet.Name, typ, i))
	}
	off := r.offset + blockHeaderSize
	for _, f := range fields[:i] {
		off += f.Size()
	}
	return r.data[off : off+fields[i].Size()]
}

// Bytes returns Byte payload field i.
func (r *BlockReader) Bytes(i int) []byte { return r.field(i, PayloadByte) }

// Ints returns Int payload field i.
func (r *BlockReader) Ints(i int) []int32 {
	raw := r.field(i, PayloadInt)
	v := make([]int32, len(raw)/4)
	for j := range v {
		v[j] = int32(binary.LittleEndian.Uint32(raw[4*j:]))
	}
	return v
}

// Float4s returns Float4 payload field i.
func (r *BlockReader) Float4s(i int) [][4]float32 {
	raw := r.field(i, PayloadFloat4)
	v := make([][4]float32, len(raw)/16)
	for j := range v {
		for k := range 4 {
			v[j][k] = math.Float32frombits(binary.LittleEndian.Uint32(raw[16*j+4*k:]))
		}
	}
	return v
}

// ShaderInfo is the pre-order list of blocks of one key, ready for code
// generation. It is rebuilt on every request and never cached.
type ShaderInfo struct {
	readers []*BlockReader
	blend   BlendInfo
}

// NewShaderInfo decodes key against dict's snippets.
func NewShaderInfo(dict *Dictionary, key Key, blend BlendInfo) (*ShaderInfo, error) {
	si := &ShaderInfo{blend: blend}
	data := key.Bytes()
	if len(data) == 0 {
		return nil, ErrEmptyKey
	}
	for off := 0; off < len(data); {
		end, err := si.decode(dict, data, off)
		if err != nil {
			return nil, err
		}
		off = end
	}
	return si, nil
}

// decode appends the block at off and its descendants, returning the
// offset just past the block.
func (si *ShaderInfo) decode(dict *Dictionary, data []byte, off int) (int, error) {
	h, err := readHeader(data, off)
	if err != nil {
		return 0, err
	}
	s := dict.Snippet(h.id)
	if s == nil {
		return 0, fmt.Errorf("%w: %d at offset %d", ErrUnknownSnippet, h.id, off)
	}
	if int(h.numChildren) != s.NumChildren {
		return 0, fmt.Errorf("%w: %s encoded with %d children, schema has %d",
			ErrChildCount, s.Name, h.numChildren, s.NumChildren)
	}
	if int(h.payloadSize) != s.PayloadSize() {
		return 0, fmt.Errorf("%w: %s encoded with %d payload bytes, schema has %d",
			ErrPayloadMismatch, s.Name, h.payloadSize, s.PayloadSize())
	}
	si.readers = append(si.readers, &BlockReader{
		data:    data,
		offset:  off,
		header:  h,
		snippet: s,
		index:   len(si.readers),
	})

	end := off + int(h.size)
	child := off + blockHeaderSize + int(h.payloadSize)
	for range int(h.numChildren) {
		if child >= end {
			return 0, fmt.Errorf("%w: %s children overrun the block", ErrMalformedKey, s.Name)
		}
		next, err := si.decode(dict, data[:end], child)
		if err != nil {
			return 0, err
		}
		child = next
	}
	if child != end {
		return 0, fmt.Errorf("%w: %s block size %d does not match its contents", ErrMalformedKey, s.Name, h.size)
	}
	return end, nil
}

// Len returns the number of blocks.
func (si *ShaderInfo) Len() int { return len(si.readers) }

// BlockReader returns block i in pre-order.
func (si *ShaderInfo) BlockReader(i int) *BlockReader { return si.readers[i] }

// BlockReaders returns all blocks in pre-order. The slice must not be modified.
func (si *ShaderInfo) BlockReaders() []*BlockReader { return si.readers }

// BlendInfo returns the fixed-function blend state of the entry.
func (si *ShaderInfo) BlendInfo() BlendInfo { return si.blend }

// NeedsLocalCoords reports whether any block samples in local coordinates.
func (si *ShaderInfo) NeedsLocalCoords() bool {
	for _, r := range si.readers {
		if r.snippet.NeedsLocalCoords() {
			return true
		}
	}
	return false
}

// NeedsDstRead reports whether any block reads the destination color.
func (si *ShaderInfo) NeedsDstRead() bool {
	for _, r := range si.readers {
		if r.snippet.NeedsDstRead() {
			return true
		}
	}
	return false
}

// String returns an indented outline of the blocks.
func (si *ShaderInfo) String() string {
	var sb strings.Builder
	depth := []int{} // remaining children per open level
	for _, r := range si.readers {
		sb.WriteString(strings.Repeat("  ", len(depth)))
		fmt.Fprintf(&sb, "%d: %s\n", r.index, r.snippet.Name)
		if len(depth) > 0 {
			depth[len(depth)-1]--
		}
		if n := r.NumChildren(); n > 0 {
			depth = append(depth, n)
		}
		for len(depth) > 0 && depth[len(depth)-1] == 0 {
			depth = depth[:len(depth)-1]
		}
	}
	return sb.String()
}

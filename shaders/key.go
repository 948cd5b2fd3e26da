package shaders

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
)

// Block layout. All integers are little-endian.
//
//	offset  size  field
//	0       4     snippet ID
//	4       4     block size: header + payload + all descendant blocks
//	8       2     payload size
//	10      1     number of children
//	11      1     reserved, zero
//	12      n     payload fields in declaration order, unpadded
//	12+n          child blocks, pre-order
const (
	blockHeaderSize = 12

	maxChildren    = math.MaxUint8
	maxPayloadSize = math.MaxUint16
)

type blockHeader struct {
	id          SnippetID
	size        uint32
	payloadSize uint16
	numChildren uint8
}

func putHeader(b []byte, h blockHeader) {
	binary.LittleEndian.PutUint32(b[0:], uint32(h.id))
	binary.LittleEndian.PutUint32(b[4:], h.size)
	binary.LittleEndian.PutUint16(b[8:], h.payloadSize)
	b[10] = h.numChildren
	b[11] = 0
}

func readHeader(data []byte, off int) (blockHeader, error) {
	if off < 0 || off+blockHeaderSize > len(data) {
		return blockHeader{}, fmt.Errorf("%w: truncated header at offset %d", ErrMalformedKey, off)
	}
	b := data[off:]
	h := blockHeader{
		id:          SnippetID(binary.LittleEndian.Uint32(b[0:])),
		size:        binary.LittleEndian.Uint32(b[4:]),
		payloadSize: binary.LittleEndian.Uint16(b[8:]),
		numChildren: b[10],
	}
	if b[11] != 0 {
		return blockHeader{}, fmt.Errorf("%w: reserved byte set at offset %d", ErrMalformedKey, off)
	}
	if int(h.size) < blockHeaderSize+int(h.payloadSize) || off+int(h.size) > len(data) {
		return blockHeader{}, fmt.Errorf("%w: block at offset %d has size %d", ErrMalformedKey, off, h.size)
	}
	return h, nil
}

// Key is the binary encoding of a paint's shader description tree.
//
// A Key returned by KeyBuilder.LockAsKey aliases the builder's buffer and
// is only valid until the builder is reset. Keys held by Entries are
// durable.
type Key struct {
	data []byte
}

// KeyFromBytes wraps encoded key bytes. The bytes are not copied.
func KeyFromBytes(b []byte) Key { return Key{data: b} }

// Bytes returns the encoded key. The slice must not be modified.
func (k Key) Bytes() []byte { return k.data }

// Len returns the encoded size in bytes.
func (k Key) Len() int { return len(k.data) }

// IsEmpty reports whether the key has no blocks.
func (k Key) IsEmpty() bool { return len(k.data) == 0 }

// Equal reports whether k and o have identical bytes.
func (k Key) Equal(o Key) bool { return bytes.Equal(k.data, o.data) }

// String returns a hex dump of the key.
func (k Key) String() string { return fmt.Sprintf("Key(%x)", k.data) }

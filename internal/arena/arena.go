// Package arena provides a growth-only bump allocator for byte data.
//
// An Arena hands out slices carved from large blocks. Nothing is ever freed
// individually; all memory is released together when the Arena becomes
// unreachable. Slices returned by the Arena must be treated as immutable once
// they have been published to other goroutines.
//
// Arena is NOT safe for concurrent use. Owners that share an Arena between
// goroutines must serialize every allocation with their own lock.
package arena

import "unsafe"

// DefaultBlockSize is the size of each block allocated by an Arena.
const DefaultBlockSize = 4096

// Arena is a bump allocator for byte slices and strings.
type Arena struct {
	blockSize int
	cur       []byte // Unused tail of the current block.

	blocks    int // Number of blocks allocated (including oversized ones).
	allocated int // Total bytes reserved from the Go heap.
	used      int // Total bytes handed out to callers.
}

// New creates an Arena that allocates blocks of blockSize bytes.
// If blockSize <= 0, DefaultBlockSize is used.
func New(blockSize int) *Arena {
	if blockSize <= 0 {
		blockSize = DefaultBlockSize
	}
	return &Arena{blockSize: blockSize}
}

// Alloc returns a zeroed slice of n bytes owned by the arena.
// The slice has capacity n, so appending to it never writes into
// memory handed out by a later allocation.
func (a *Arena) Alloc(n int) []byte {
	if n <= 0 {
		return nil
	}
	a.used += n

	// Oversized requests get a dedicated block so the current block's
	// tail is not wasted.
	if n > a.blockSize/4 && n > len(a.cur) {
		a.blocks++
		a.allocated += n
		return make([]byte, n)
	}

	if n > len(a.cur) {
		a.cur = make([]byte, a.blockSize)
		a.blocks++
		a.allocated += a.blockSize
	}

	b := a.cur[:n:n]
	a.cur = a.cur[n:]
	return b
}

// CopyBytes copies src into arena memory and returns the copy.
func (a *Arena) CopyBytes(src []byte) []byte {
	dst := a.Alloc(len(src))
	copy(dst, src)
	return dst
}

// CopyString copies s into arena memory and returns a string backed by it.
// The returned string stays valid for the lifetime of the arena.
func (a *Arena) CopyString(s string) string {
	if s == "" {
		return ""
	}
	b := a.Alloc(len(s))
	copy(b, s)
	return unsafe.String(&b[0], len(b))
}

// Stats describes the memory held by an Arena.
type Stats struct {
	Blocks    int // Number of blocks reserved
	Allocated int // Bytes reserved from the Go heap
	Used      int // Bytes handed out to callers
}

// Stats returns the arena's memory statistics.
func (a *Arena) Stats() Stats {
	return Stats{
		Blocks:    a.blocks,
		Allocated: a.allocated,
		Used:      a.used,
	}
}

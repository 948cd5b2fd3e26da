package shaders

import "errors"

// Package errors.
var (
	// ErrUnknownSnippet is returned for snippet IDs the dictionary does not know.
	ErrUnknownSnippet = errors.New("shaders: unknown snippet")

	// ErrInvalidSnippet is returned when a snippet description breaks a
	// structural rule.
	ErrInvalidSnippet = errors.New("shaders: invalid snippet")

	// ErrPayloadMismatch is returned when payload data does not match the
	// snippet's declared payload fields.
	ErrPayloadMismatch = errors.New("shaders: payload mismatch")

	// ErrChildCount is returned when a block has the wrong number of children.
	ErrChildCount = errors.New("shaders: child count mismatch")

	// ErrUnbalanced is returned when BeginBlock and EndBlock calls do not pair up.
	ErrUnbalanced = errors.New("shaders: unbalanced blocks")

	// ErrLocked is returned when a locked builder is written to.
	ErrLocked = errors.New("shaders: builder is locked")

	// ErrEmptyKey is returned when locking a builder with no blocks.
	ErrEmptyKey = errors.New("shaders: empty key")

	// ErrBlockTooLarge is returned when a block exceeds the encodable size.
	ErrBlockTooLarge = errors.New("shaders: block too large")

	// ErrMalformedKey is returned when key bytes cannot be decoded.
	ErrMalformedKey = errors.New("shaders: malformed key")

	// ErrInvalidID is returned for paint IDs the dictionary did not assign.
	ErrInvalidID = errors.New("shaders: invalid paint params ID")
)

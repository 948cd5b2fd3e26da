package ggshader

import "errors"

// Package errors.
var (
	// ErrNoStops is returned for gradients without color stops.
	ErrNoStops = errors.New("ggshader: gradient has no color stops")

	// ErrTooManyStops is returned for gradients with more stops than the
	// largest gradient snippet holds.
	ErrTooManyStops = errors.New("ggshader: too many gradient stops")

	// ErrDegenerateGradient is returned for sweep gradients with an empty
	// angle range.
	ErrDegenerateGradient = errors.New("ggshader: degenerate gradient")

	// ErrSingularMatrix is returned when a local matrix cannot be inverted.
	ErrSingularMatrix = errors.New("ggshader: singular local matrix")

	// ErrNilShader is returned when a composite shader has a nil child.
	ErrNilShader = errors.New("ggshader: nil shader")

	// ErrInvalidImage is returned for image shaders with an empty image.
	ErrInvalidImage = errors.New("ggshader: invalid image")

	// ErrInvalidBlendMode is returned for out of range blend modes.
	ErrInvalidBlendMode = errors.New("ggshader: invalid blend mode")

	// ErrUniformMismatch is returned when uniform data does not match the
	// program's uniform layout.
	ErrUniformMismatch = errors.New("ggshader: uniform data does not match layout")
)

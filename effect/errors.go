package effect

import "errors"

var (
	// ErrSyntax is returned when effect source cannot be tokenized or parsed.
	ErrSyntax = errors.New("effect: syntax error")

	// ErrNoMain is returned when effect source defines no main function.
	ErrNoMain = errors.New("effect: no main function")

	// ErrBadMain is returned when main has an unsupported signature.
	ErrBadMain = errors.New("effect: invalid main signature")

	// ErrBadUniform is returned for malformed uniform declarations.
	ErrBadUniform = errors.New("effect: invalid uniform")
)

package core

import "errors"

// Sentinel errors raised by the builders. They are always wrapped with
// context, so compare with errors.Is.
var (
	ErrInvalidInput        = errors.New("invalid input")
	ErrShapeMismatch       = errors.New("shape mismatch")
	ErrInvalidSystematic   = errors.New("invalid systematic")
	ErrDuplicateName       = errors.New("duplicate name")
	ErrDuplicateSystematic = errors.New("duplicate systematic")
	ErrInvariantViolation  = errors.New("invariant violation")
	ErrChannelConflict     = errors.New("channel conflict")
	ErrUnknownParameter    = errors.New("unknown parameter")
	ErrInvalidRange        = errors.New("invalid range")
)

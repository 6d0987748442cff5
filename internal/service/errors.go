package service

import "errors"

// Validation errors. Handlers map them to 400 with errors.Is; the wrapped
// message carries the detail.
var (
	ErrInvalidLimit   = errors.New("invalid limit")
	ErrInvalidFilter  = errors.New("invalid filter")
	ErrInvalidReading = errors.New("invalid reading")
)

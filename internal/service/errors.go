package service

import "errors"

var (
	// ErrNotFound is returned when no link matches the given id or short code.
	ErrNotFound = errors.New("link not found")
	// ErrAlreadyExists is returned when a preferred or changed short code is taken by another link.
	ErrAlreadyExists = errors.New("short code already in use")
	// ErrGenerationExhausted is returned when every generation attempt produced a taken code.
	ErrGenerationExhausted = errors.New("could not allocate a unique code")
	// ErrValidation is returned for malformed input such as an empty URL.
	ErrValidation = errors.New("validation error")
)

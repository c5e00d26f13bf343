package domain

import "errors"

var (
	ErrNotFound         = errors.New("resource not found")
	ErrInvalidRequest   = errors.New("invalid request")
	ErrMissingYear      = errors.New("anio_gravable is required")
	ErrEmptyModelOutput = errors.New("model returned empty output")
	ErrInvalidModelJSON = errors.New("model did not return valid JSON")
	ErrDecisionRejected = errors.New("structured output validation failed")
)

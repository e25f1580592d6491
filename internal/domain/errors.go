package domain

import "errors"

// Error kinds surfaced by the registry and ledger. Operations wrap these with
// context; callers classify with errors.Is.
var (
	ErrValidation   = errors.New("validation error")
	ErrNotFound     = errors.New("not found")
	ErrForbidden    = errors.New("forbidden")
	ErrUnauthorized = errors.New("unauthorized")
)

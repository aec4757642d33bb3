package dashboard

import "errors"

// Sentinel errors surfaced by the service. Transports map them to HTTP status
// codes with errors.Is.
var (
	ErrNotFound           = errors.New("organizeit: not found")
	ErrValidation         = errors.New("organizeit: validation failed")
	ErrInvalidCredentials = errors.New("organizeit: invalid credentials")
	ErrUnauthorized       = errors.New("organizeit: authentication required")
	ErrForbidden          = errors.New("organizeit: forbidden")
	ErrSessionExpired     = errors.New("organizeit: session expired")
)

package shared

import (
	"errors"

	"github.com/arbor-cms/arbor/internal/platform/httpx"
)

var (
	// ErrNotFound indicates resource not found. It maps to a 404.
	ErrNotFound = httpx.ErrNotFound
	// ErrInvalidCredentials indicates login failure.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrCSRFTokenMissing occurs when CSRF token missing.
	ErrCSRFTokenMissing = errors.New("csrf token missing")
	// ErrCSRFTokenMismatch occurs when CSRF tokens do not match.
	ErrCSRFTokenMismatch = errors.New("csrf token mismatch")
	// ErrSessionMissing occurs when a request carries no loaded session.
	ErrSessionMissing = errors.New("session missing")
)

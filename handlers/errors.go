package handlers

import "errors"

var (
	ErrInvalidFields      = errors.New("invalid-fields")
	ErrInvalidCredentials = errors.New("invalid-credentials")
	ErrNotAuthenticated   = errors.New("not-authenticated")
	ErrForbidden          = errors.New("forbidden")
	ErrRecordLocked       = errors.New("record-locked")
	ErrInvalidPIN         = errors.New("invalid-pin")
	ErrNotFound           = errors.New("not-found")
	ErrServiceUnavailable = errors.New("service-unavailable")
)

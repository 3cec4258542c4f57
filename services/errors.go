package services

import "errors"

var (
	ErrInvalidCredentials = errors.New("invalid-credentials")
	ErrNoActiveStore      = errors.New("no-active-store")
	ErrStoreNotAllowed    = errors.New("store-not-allowed")
	ErrRecordLocked       = errors.New("record-locked")
	ErrInvalidPIN         = errors.New("invalid-pin")
	ErrInvalidStatus      = errors.New("invalid-status")
	ErrSuperseded         = errors.New("superseded")
)

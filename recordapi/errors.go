package recordapi

import "errors"

var (
	ErrUnauthorized = errors.New("record service rejected the credentials")
	ErrNotFound     = errors.New("no matching record found")
	ErrLocked       = errors.New("record is locked")
	ErrUnavailable  = errors.New("record service unavailable")
)

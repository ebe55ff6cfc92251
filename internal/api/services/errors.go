package services

import "errors"

var (
	ErrUnauthenticated   = errors.New("no identity")
	ErrForbidden         = errors.New("forbidden")
	ErrMissingIdentifier = errors.New("missing identifier")
	ErrInvalidPayload    = errors.New("invalid payload")
	ErrNotFound          = errors.New("not found")
	ErrNoSuchDocument    = errors.New("no such document")
	ErrNotOwner          = errors.New("not the owner")
	ErrInvalidName       = errors.New("invalid name")
	ErrArchiveDisabled   = errors.New("content archive not configured")
)

package utils

import "errors"

// Request-level errors surfaced to callers as client errors.
var (
	ErrUnknownAction  = errors.New("UNKNOWN_ACTION")
	ErrMissingStoreID = errors.New("MISSING_STORE_ID")
	ErrInvalidScope   = errors.New("INVALID_SCOPE")
	ErrInvalidToken   = errors.New("INVALID_TOKEN")
)

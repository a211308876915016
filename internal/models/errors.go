package models

import "errors"

// Custom errors
var (
	ErrNotFound      = errors.New("record not found")
	ErrDuplicateKey  = errors.New("duplicate key violation")
	ErrInvalidID     = errors.New("invalid ID format")
	ErrMalformedLog  = errors.New("malformed execution log")
	ErrEmptyLog      = errors.New("execution log contains no entries")
	ErrLabelRequired = errors.New("run label is required")
)

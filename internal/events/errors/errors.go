package errors

import "errors"

var (
	ErrNotFound = errors.New("event not found")
)

package errors

import "errors"

var (
	// ErrNotFound means no user exists for the given id or email.
	ErrNotFound = errors.New("user not found")

	// ErrEmailTaken surfaces the unique email index on registration.
	ErrEmailTaken = errors.New("email address is already registered")
)

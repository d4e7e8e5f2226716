package errors

import "errors"

var (
	// ErrNotFound means no reservation exists for the given id.
	ErrNotFound = errors.New("reservation not found")

	// ErrInvalidDateRange means the requested stay violates
	// check_in < check_out. Raised before any store access.
	ErrInvalidDateRange = errors.New("check-out date must be after check-in date")

	// ErrRoomNotAvailable means a non-cancelled reservation for the same
	// room overlaps the requested date range.
	ErrRoomNotAvailable = errors.New("room is not available for the requested dates")

	// ErrLockHeld means another request currently holds the room's
	// advisory lock. Callers retry until the lock frees up.
	ErrLockHeld = errors.New("room lock held by another request")
)

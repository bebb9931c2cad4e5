package errors

import "errors"

var (
	ErrNotFound = errors.New("booking not found")

	ErrInvalidID = errors.New("invalid booking ID format")

	ErrDuplicateKey = errors.New("idempotency key already used")

	ErrStateChanged = errors.New("booking state changed concurrently")

	ErrLockNotAcquired = errors.New("could not acquire entity lock")
)

package repository

import "errors"

var (
	// ErrNotFound is returned when a requested entity does not exist.
	ErrNotFound = errors.New("entity not found")

	// ErrDuplicate is returned when a uniqueness constraint is violated
	// (phone number, review per reservation, group membership).
	ErrDuplicate = errors.New("entity already exists")

	// ErrInsufficientSeats is returned by the atomic seat decrement when
	// fewer seats are available than requested.
	ErrInsufficientSeats = errors.New("insufficient seats available")

	// ErrStateConflict is returned by guarded status transitions when the
	// row was not in the expected state (lost race or caller bug).
	ErrStateConflict = errors.New("entity not in expected state")
)

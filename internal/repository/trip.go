package repository

import (
	"context"

	"axisride/internal/domain"
)

// TripSearch holds the optional filters for a trip search. Empty fields
// match everything.
type TripSearch struct {
	Origin      string
	Destination string
}

// TripRepository defines the persistence operations for trips.
type TripRepository interface {
	// Create persists a new trip.
	Create(ctx context.Context, trip *domain.Trip) error

	// GetByID retrieves a trip by ID.
	GetByID(ctx context.Context, id string) (*domain.Trip, error)

	// Search returns active trips matching the filters, ordered by
	// departure time ascending (id ascending as tiebreak).
	Search(ctx context.Context, q TripSearch) ([]*domain.Trip, error)

	// ListByDriver retrieves all trips published by a driver.
	ListByDriver(ctx context.Context, driverID string) ([]*domain.Trip, error)

	// Update updates an existing trip.
	Update(ctx context.Context, trip *domain.Trip) error

	// ReserveSeats atomically decrements seats_available by count.
	// Returns ErrInsufficientSeats when fewer than count seats remain at
	// the instant of the check.
	ReserveSeats(ctx context.Context, tripID string, count int) error

	// ReleaseSeats atomically increments seats_available by count,
	// capped at the trip's total seats.
	ReleaseSeats(ctx context.Context, tripID string, count int) error
}

package repository

import (
	"context"

	"axisride/internal/domain"
)

// ReservationRepository defines the persistence operations for
// reservations.
type ReservationRepository interface {
	// Create persists a new reservation.
	Create(ctx context.Context, reservation *domain.Reservation) error

	// GetByID retrieves a reservation by ID.
	GetByID(ctx context.Context, id string) (*domain.Reservation, error)

	// ListByPassenger retrieves a passenger's reservations, newest
	// first.
	ListByPassenger(ctx context.Context, passengerID string) ([]*domain.Reservation, error)

	// ListByTrip retrieves all reservations against a trip.
	ListByTrip(ctx context.Context, tripID string) ([]*domain.Reservation, error)

	// ListAll retrieves all reservations, newest first (admin surface).
	ListAll(ctx context.Context) ([]*domain.Reservation, error)

	// TransitionStatus moves a reservation from one status to another
	// with a guarded write. Returns ErrStateConflict if the row was not
	// in the from status, ErrNotFound if it does not exist.
	TransitionStatus(ctx context.Context, id string, from, to domain.ReservationStatus) error
}

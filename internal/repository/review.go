package repository

import (
	"context"

	"axisride/internal/domain"
)

// ReviewRepository defines the persistence operations for reviews.
type ReviewRepository interface {
	// Create persists a new review. Returns ErrDuplicate if the
	// reservation was already reviewed.
	Create(ctx context.Context, review *domain.Review) error

	// GetByReservationID retrieves the review for a reservation.
	GetByReservationID(ctx context.Context, reservationID string) (*domain.Review, error)

	// ListByDriver retrieves all reviews of a driver, newest first.
	ListByDriver(ctx context.Context, driverID string) ([]*domain.Review, error)
}

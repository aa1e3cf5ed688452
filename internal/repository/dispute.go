package repository

import (
	"context"

	"axisride/internal/domain"
)

// DisputeRepository defines the persistence operations for disputes.
type DisputeRepository interface {
	// Create persists a new dispute. Returns ErrDuplicate if an open
	// dispute already exists for the reservation.
	Create(ctx context.Context, dispute *domain.Dispute) error

	// GetByID retrieves a dispute by ID.
	GetByID(ctx context.Context, id string) (*domain.Dispute, error)

	// GetOpenByReservationID retrieves the open dispute for a
	// reservation. Returns ErrNotFound if there is none.
	GetOpenByReservationID(ctx context.Context, reservationID string) (*domain.Dispute, error)

	// ListAll retrieves all disputes, newest first (admin surface).
	ListAll(ctx context.Context) ([]*domain.Dispute, error)

	// Update updates an existing dispute.
	Update(ctx context.Context, dispute *domain.Dispute) error
}

package repository

import (
	"context"

	"axisride/internal/domain"
)

// PaymentRepository defines the persistence operations for payments.
type PaymentRepository interface {
	// Create persists a new payment. Returns ErrDuplicate on a
	// transaction ref collision.
	Create(ctx context.Context, payment *domain.Payment) error

	// GetByID retrieves a payment by ID.
	GetByID(ctx context.Context, id string) (*domain.Payment, error)

	// GetHeldByReservationID retrieves the succeeded, still-held payment
	// for a reservation. Returns ErrNotFound if there is none.
	GetHeldByReservationID(ctx context.Context, reservationID string) (*domain.Payment, error)

	// ListByReservation retrieves all payment attempts for a
	// reservation, newest first.
	ListByReservation(ctx context.Context, reservationID string) ([]*domain.Payment, error)

	// ListAll retrieves all payments, newest first (admin surface).
	ListAll(ctx context.Context) ([]*domain.Payment, error)

	// UpdateStatus records the charge outcome of an attempt, and the
	// transaction ref and escrow status when it succeeded.
	UpdateStatus(ctx context.Context, payment *domain.Payment) error

	// TransitionEscrow moves a payment's escrow status with a guarded
	// write. Returns ErrStateConflict if the escrow was not in the from
	// status (first writer won).
	TransitionEscrow(ctx context.Context, id string, from, to domain.EscrowStatus) error
}

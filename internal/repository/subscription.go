package repository

import (
	"context"
	"time"

	"axisride/internal/domain"
)

// SubscriptionRepository defines the persistence operations for
// subscriptions.
type SubscriptionRepository interface {
	// Create persists a new subscription row for a user.
	Create(ctx context.Context, sub *domain.Subscription) error

	// GetByUserID retrieves a user's subscription. Returns ErrNotFound
	// if the user never started one.
	GetByUserID(ctx context.Context, userID string) (*domain.Subscription, error)

	// Update updates an existing subscription.
	Update(ctx context.Context, sub *domain.Subscription) error

	// ExtendPaid atomically extends a user's paid period by the given
	// validity, anchored at max(now, current period end), creating the
	// subscription row if the user never had one. Returns the
	// subscription after the extension.
	ExtendPaid(ctx context.Context, userID string, validity time.Duration) (*domain.Subscription, error)
}

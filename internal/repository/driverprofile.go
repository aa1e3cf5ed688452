package repository

import (
	"context"

	"axisride/internal/domain"
)

// DriverProfileRepository defines the persistence operations for driver
// profiles.
type DriverProfileRepository interface {
	// Create persists a new driver profile. Returns ErrDuplicate if the
	// user already has one.
	Create(ctx context.Context, profile *domain.DriverProfile) error

	// GetByUserID retrieves the profile owned by the given user.
	GetByUserID(ctx context.Context, userID string) (*domain.DriverProfile, error)

	// Update updates an existing profile.
	Update(ctx context.Context, profile *domain.DriverProfile) error

	// AddRating folds one rating into the aggregate with a single
	// atomic write, so concurrent reviews never lose a rating.
	AddRating(ctx context.Context, userID string, rating int) error
}

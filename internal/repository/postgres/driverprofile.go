package postgres

import (
	"context"
	"database/sql"
	"errors"

	"axisride/internal/domain"
	"axisride/internal/repository"
)

// DriverProfileRepository is a PostgreSQL implementation of
// repository.DriverProfileRepository.
type DriverProfileRepository struct {
	q Querier
}

// NewDriverProfileRepository creates a new PostgreSQL driver profile repository.
func NewDriverProfileRepository(db *sql.DB) *DriverProfileRepository {
	return &DriverProfileRepository{q: db}
}

// NewDriverProfileRepositoryWithTx creates a driver profile repository using a transaction.
func NewDriverProfileRepositoryWithTx(tx *sql.Tx) *DriverProfileRepository {
	return &DriverProfileRepository{q: tx}
}

// Create persists a new driver profile.
func (r *DriverProfileRepository) Create(ctx context.Context, profile *domain.DriverProfile) error {
	query := `
		INSERT INTO driver_profiles (user_id, license_number, vehicle_brand, vehicle_model,
			vehicle_color, license_plate, default_seats, verified, rating_count, rating_avg,
			created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err := r.q.ExecContext(ctx, query,
		profile.UserID,
		profile.LicenseNumber,
		profile.Vehicle.Brand,
		profile.Vehicle.Model,
		profile.Vehicle.Color,
		profile.Vehicle.LicensePlate,
		profile.DefaultSeats,
		profile.Verified,
		profile.RatingCount,
		profile.RatingAvg,
		profile.CreatedAt,
		profile.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return repository.ErrDuplicate
		}
		return err
	}

	return nil
}

// GetByUserID retrieves the profile owned by the given user.
func (r *DriverProfileRepository) GetByUserID(ctx context.Context, userID string) (*domain.DriverProfile, error) {
	query := `
		SELECT user_id, license_number, vehicle_brand, vehicle_model, vehicle_color,
			license_plate, default_seats, verified, rating_count, rating_avg,
			created_at, updated_at
		FROM driver_profiles WHERE user_id = $1
	`

	var profile domain.DriverProfile

	err := r.q.QueryRowContext(ctx, query, userID).Scan(
		&profile.UserID,
		&profile.LicenseNumber,
		&profile.Vehicle.Brand,
		&profile.Vehicle.Model,
		&profile.Vehicle.Color,
		&profile.Vehicle.LicensePlate,
		&profile.DefaultSeats,
		&profile.Verified,
		&profile.RatingCount,
		&profile.RatingAvg,
		&profile.CreatedAt,
		&profile.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	return &profile, nil
}

// Update updates an existing profile.
func (r *DriverProfileRepository) Update(ctx context.Context, profile *domain.DriverProfile) error {
	query := `
		UPDATE driver_profiles
		SET license_number = $1, vehicle_brand = $2, vehicle_model = $3, vehicle_color = $4,
			license_plate = $5, default_seats = $6, verified = $7, updated_at = $8
		WHERE user_id = $9
	`

	result, err := r.q.ExecContext(ctx, query,
		profile.LicenseNumber,
		profile.Vehicle.Brand,
		profile.Vehicle.Model,
		profile.Vehicle.Color,
		profile.Vehicle.LicensePlate,
		profile.DefaultSeats,
		profile.Verified,
		profile.UpdatedAt,
		profile.UserID,
	)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// AddRating folds one rating into the aggregate inside the UPDATE
// itself, so concurrent reviews of the same driver never overwrite
// each other.
func (r *DriverProfileRepository) AddRating(ctx context.Context, userID string, rating int) error {
	query := `
		UPDATE driver_profiles
		SET rating_avg = (rating_avg * rating_count + $1) / (rating_count + 1),
			rating_count = rating_count + 1,
			updated_at = NOW()
		WHERE user_id = $2
	`

	result, err := r.q.ExecContext(ctx, query, rating, userID)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// Ensure DriverProfileRepository implements repository.DriverProfileRepository.
var _ repository.DriverProfileRepository = (*DriverProfileRepository)(nil)

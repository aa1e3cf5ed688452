package postgres

import (
	"context"
	"database/sql"
	"errors"

	"axisride/internal/domain"
	"axisride/internal/repository"
)

// ReviewRepository is a PostgreSQL implementation of
// repository.ReviewRepository.
type ReviewRepository struct {
	q Querier
}

// NewReviewRepository creates a new PostgreSQL review repository.
func NewReviewRepository(db *sql.DB) *ReviewRepository {
	return &ReviewRepository{q: db}
}

// NewReviewRepositoryWithTx creates a review repository using a transaction.
func NewReviewRepositoryWithTx(tx *sql.Tx) *ReviewRepository {
	return &ReviewRepository{q: tx}
}

// Create persists a new review. reservation_id carries a unique
// constraint: one review per reservation, ever.
func (r *ReviewRepository) Create(ctx context.Context, review *domain.Review) error {
	query := `
		INSERT INTO reviews (id, reservation_id, rater_id, driver_id, rating, comment, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.q.ExecContext(ctx, query,
		review.ID,
		review.ReservationID,
		review.RaterID,
		review.DriverID,
		review.Rating,
		review.Comment,
		review.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return repository.ErrDuplicate
		}
		return err
	}

	return nil
}

// GetByReservationID retrieves the review for a reservation.
func (r *ReviewRepository) GetByReservationID(ctx context.Context, reservationID string) (*domain.Review, error) {
	query := `
		SELECT id, reservation_id, rater_id, driver_id, rating, comment, created_at
		FROM reviews WHERE reservation_id = $1
	`

	var review domain.Review

	err := r.q.QueryRowContext(ctx, query, reservationID).Scan(
		&review.ID,
		&review.ReservationID,
		&review.RaterID,
		&review.DriverID,
		&review.Rating,
		&review.Comment,
		&review.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	return &review, nil
}

// ListByDriver retrieves all reviews of a driver, newest first.
func (r *ReviewRepository) ListByDriver(ctx context.Context, driverID string) ([]*domain.Review, error) {
	query := `
		SELECT id, reservation_id, rater_id, driver_id, rating, comment, created_at
		FROM reviews WHERE driver_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.q.QueryContext(ctx, query, driverID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reviews []*domain.Review
	for rows.Next() {
		var review domain.Review
		if err := rows.Scan(
			&review.ID,
			&review.ReservationID,
			&review.RaterID,
			&review.DriverID,
			&review.Rating,
			&review.Comment,
			&review.CreatedAt,
		); err != nil {
			return nil, err
		}
		reviews = append(reviews, &review)
	}

	return reviews, rows.Err()
}

// Ensure ReviewRepository implements repository.ReviewRepository.
var _ repository.ReviewRepository = (*ReviewRepository)(nil)

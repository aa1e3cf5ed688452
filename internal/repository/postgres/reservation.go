package postgres

import (
	"context"
	"database/sql"
	"errors"

	"axisride/internal/domain"
	"axisride/internal/repository"
)

// ReservationRepository is a PostgreSQL implementation of
// repository.ReservationRepository.
type ReservationRepository struct {
	q Querier
}

// NewReservationRepository creates a new PostgreSQL reservation repository.
func NewReservationRepository(db *sql.DB) *ReservationRepository {
	return &ReservationRepository{q: db}
}

// NewReservationRepositoryWithTx creates a reservation repository using a transaction.
func NewReservationRepositoryWithTx(tx *sql.Tx) *ReservationRepository {
	return &ReservationRepository{q: tx}
}

const reservationColumns = `id, trip_id, passenger_id, seats, amount, code, status,
	created_at, updated_at`

// Create persists a new reservation.
func (r *ReservationRepository) Create(ctx context.Context, reservation *domain.Reservation) error {
	query := `
		INSERT INTO reservations (` + reservationColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.q.ExecContext(ctx, query,
		reservation.ID,
		reservation.TripID,
		reservation.PassengerID,
		reservation.Seats,
		reservation.Amount,
		reservation.Code,
		reservation.Status,
		reservation.CreatedAt,
		reservation.UpdatedAt,
	)

	return err
}

// GetByID retrieves a reservation by ID.
func (r *ReservationRepository) GetByID(ctx context.Context, id string) (*domain.Reservation, error) {
	query := `SELECT ` + reservationColumns + ` FROM reservations WHERE id = $1`

	var reservation domain.Reservation

	err := r.q.QueryRowContext(ctx, query, id).Scan(
		&reservation.ID,
		&reservation.TripID,
		&reservation.PassengerID,
		&reservation.Seats,
		&reservation.Amount,
		&reservation.Code,
		&reservation.Status,
		&reservation.CreatedAt,
		&reservation.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	return &reservation, nil
}

// ListByPassenger retrieves a passenger's reservations, newest first.
func (r *ReservationRepository) ListByPassenger(ctx context.Context, passengerID string) ([]*domain.Reservation, error) {
	query := `
		SELECT ` + reservationColumns + `
		FROM reservations WHERE passenger_id = $1
		ORDER BY created_at DESC
	`

	return r.list(ctx, query, passengerID)
}

// ListByTrip retrieves all reservations against a trip.
func (r *ReservationRepository) ListByTrip(ctx context.Context, tripID string) ([]*domain.Reservation, error) {
	query := `
		SELECT ` + reservationColumns + `
		FROM reservations WHERE trip_id = $1
		ORDER BY created_at ASC
	`

	return r.list(ctx, query, tripID)
}

// ListAll retrieves all reservations, newest first.
func (r *ReservationRepository) ListAll(ctx context.Context) ([]*domain.Reservation, error) {
	query := `
		SELECT ` + reservationColumns + `
		FROM reservations ORDER BY created_at DESC LIMIT 500
	`

	return r.list(ctx, query)
}

// TransitionStatus moves a reservation between statuses with a guarded
// write. The WHERE clause on the expected status makes concurrent
// transitions first-writer-wins.
func (r *ReservationRepository) TransitionStatus(ctx context.Context, id string, from, to domain.ReservationStatus) error {
	query := `
		UPDATE reservations SET status = $1, updated_at = NOW()
		WHERE id = $2 AND status = $3
	`

	result, err := r.q.ExecContext(ctx, query, to, id, from)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
		return repository.ErrStateConflict
	}

	return nil
}

func (r *ReservationRepository) list(ctx context.Context, query string, args ...any) ([]*domain.Reservation, error) {
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reservations []*domain.Reservation
	for rows.Next() {
		var reservation domain.Reservation
		if err := rows.Scan(
			&reservation.ID,
			&reservation.TripID,
			&reservation.PassengerID,
			&reservation.Seats,
			&reservation.Amount,
			&reservation.Code,
			&reservation.Status,
			&reservation.CreatedAt,
			&reservation.UpdatedAt,
		); err != nil {
			return nil, err
		}
		reservations = append(reservations, &reservation)
	}

	return reservations, rows.Err()
}

// Ensure ReservationRepository implements repository.ReservationRepository.
var _ repository.ReservationRepository = (*ReservationRepository)(nil)

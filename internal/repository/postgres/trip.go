package postgres

import (
	"context"
	"database/sql"
	"errors"

	"axisride/internal/domain"
	"axisride/internal/repository"
)

// TripRepository is a PostgreSQL implementation of repository.TripRepository.
type TripRepository struct {
	q Querier
}

// NewTripRepository creates a new PostgreSQL trip repository.
func NewTripRepository(db *sql.DB) *TripRepository {
	return &TripRepository{q: db}
}

// NewTripRepositoryWithTx creates a trip repository using a transaction.
func NewTripRepositoryWithTx(tx *sql.Tx) *TripRepository {
	return &TripRepository{q: tx}
}

const tripColumns = `id, driver_id, origin, destination, departure_time, price_per_seat,
	currency, seats, seats_available, status, description, vehicle_brand, vehicle_model,
	vehicle_color, license_plate, luggage_allowed, pets_allowed, smoking_allowed,
	music_allowed, created_at`

// Create persists a new trip.
func (r *TripRepository) Create(ctx context.Context, trip *domain.Trip) error {
	query := `
		INSERT INTO trips (` + tripColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)
	`

	_, err := r.q.ExecContext(ctx, query,
		trip.ID,
		trip.DriverID,
		trip.Origin,
		trip.Destination,
		trip.DepartureTime,
		trip.PricePerSeat,
		trip.Currency,
		trip.Seats,
		trip.SeatsAvailable,
		trip.Status,
		trip.Description,
		trip.VehicleBrand,
		trip.VehicleModel,
		trip.VehicleColor,
		trip.LicensePlate,
		trip.LuggageAllowed,
		trip.PetsAllowed,
		trip.SmokingAllowed,
		trip.MusicAllowed,
		trip.CreatedAt,
	)

	return err
}

// GetByID retrieves a trip by ID.
func (r *TripRepository) GetByID(ctx context.Context, id string) (*domain.Trip, error) {
	query := `SELECT ` + tripColumns + ` FROM trips WHERE id = $1`

	trip, err := scanTrip(r.q.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	return trip, nil
}

// Search returns active trips matching the filters, soonest departure
// first. Filters are case-insensitive substring matches.
func (r *TripRepository) Search(ctx context.Context, q repository.TripSearch) ([]*domain.Trip, error) {
	query := `
		SELECT ` + tripColumns + `
		FROM trips
		WHERE status = $1
			AND ($2 = '' OR origin ILIKE '%' || $2 || '%')
			AND ($3 = '' OR destination ILIKE '%' || $3 || '%')
		ORDER BY departure_time ASC, id ASC
	`

	rows, err := r.q.QueryContext(ctx, query, domain.TripStatusActive, q.Origin, q.Destination)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanTrips(rows)
}

// ListByDriver retrieves all trips published by a driver.
func (r *TripRepository) ListByDriver(ctx context.Context, driverID string) ([]*domain.Trip, error) {
	query := `
		SELECT ` + tripColumns + `
		FROM trips WHERE driver_id = $1
		ORDER BY departure_time DESC
	`

	rows, err := r.q.QueryContext(ctx, query, driverID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanTrips(rows)
}

// Update updates an existing trip. Seat counts are excluded: those only
// move through ReserveSeats/ReleaseSeats.
func (r *TripRepository) Update(ctx context.Context, trip *domain.Trip) error {
	query := `
		UPDATE trips
		SET origin = $1, destination = $2, departure_time = $3, price_per_seat = $4,
			status = $5, description = $6
		WHERE id = $7
	`

	result, err := r.q.ExecContext(ctx, query,
		trip.Origin,
		trip.Destination,
		trip.DepartureTime,
		trip.PricePerSeat,
		trip.Status,
		trip.Description,
		trip.ID,
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

// ReserveSeats atomically decrements seats_available. The WHERE guard
// makes the check-and-decrement a single statement: two concurrent
// reservations against the last seat cannot both pass.
func (r *TripRepository) ReserveSeats(ctx context.Context, tripID string, count int) error {
	query := `
		UPDATE trips
		SET seats_available = seats_available - $1
		WHERE id = $2 AND seats_available >= $1
	`

	result, err := r.q.ExecContext(ctx, query, count, tripID)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		// Either the trip does not exist or too few seats remain.
		if _, err := r.GetByID(ctx, tripID); err != nil {
			return err
		}
		return repository.ErrInsufficientSeats
	}

	return nil
}

// ReleaseSeats atomically increments seats_available, capped at the
// trip's total.
func (r *TripRepository) ReleaseSeats(ctx context.Context, tripID string, count int) error {
	query := `
		UPDATE trips
		SET seats_available = LEAST(seats_available + $1, seats)
		WHERE id = $2
	`

	result, err := r.q.ExecContext(ctx, query, count, tripID)
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

func scanTrip(row *sql.Row) (*domain.Trip, error) {
	var trip domain.Trip

	err := row.Scan(
		&trip.ID,
		&trip.DriverID,
		&trip.Origin,
		&trip.Destination,
		&trip.DepartureTime,
		&trip.PricePerSeat,
		&trip.Currency,
		&trip.Seats,
		&trip.SeatsAvailable,
		&trip.Status,
		&trip.Description,
		&trip.VehicleBrand,
		&trip.VehicleModel,
		&trip.VehicleColor,
		&trip.LicensePlate,
		&trip.LuggageAllowed,
		&trip.PetsAllowed,
		&trip.SmokingAllowed,
		&trip.MusicAllowed,
		&trip.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &trip, nil
}

func scanTrips(rows *sql.Rows) ([]*domain.Trip, error) {
	var trips []*domain.Trip
	for rows.Next() {
		var trip domain.Trip
		if err := rows.Scan(
			&trip.ID,
			&trip.DriverID,
			&trip.Origin,
			&trip.Destination,
			&trip.DepartureTime,
			&trip.PricePerSeat,
			&trip.Currency,
			&trip.Seats,
			&trip.SeatsAvailable,
			&trip.Status,
			&trip.Description,
			&trip.VehicleBrand,
			&trip.VehicleModel,
			&trip.VehicleColor,
			&trip.LicensePlate,
			&trip.LuggageAllowed,
			&trip.PetsAllowed,
			&trip.SmokingAllowed,
			&trip.MusicAllowed,
			&trip.CreatedAt,
		); err != nil {
			return nil, err
		}
		trips = append(trips, &trip)
	}

	return trips, rows.Err()
}

// Ensure TripRepository implements repository.TripRepository.
var _ repository.TripRepository = (*TripRepository)(nil)

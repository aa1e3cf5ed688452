package postgres

import (
	"context"
	"database/sql"
	"errors"

	"axisride/internal/domain"
	"axisride/internal/repository"
)

// DisputeRepository is a PostgreSQL implementation of
// repository.DisputeRepository.
type DisputeRepository struct {
	q Querier
}

// NewDisputeRepository creates a new PostgreSQL dispute repository.
func NewDisputeRepository(db *sql.DB) *DisputeRepository {
	return &DisputeRepository{q: db}
}

// NewDisputeRepositoryWithTx creates a dispute repository using a transaction.
func NewDisputeRepositoryWithTx(tx *sql.Tx) *DisputeRepository {
	return &DisputeRepository{q: tx}
}

const disputeColumns = `id, reservation_id, raised_by, reason, description, status,
	resolution, outcome, created_at, resolved_at`

// Create persists a new dispute. A partial unique index on
// (reservation_id) WHERE status = 'OPEN' enforces at most one open
// dispute per reservation.
func (r *DisputeRepository) Create(ctx context.Context, dispute *domain.Dispute) error {
	query := `
		INSERT INTO disputes (` + disputeColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.q.ExecContext(ctx, query,
		dispute.ID,
		dispute.ReservationID,
		dispute.RaisedBy,
		dispute.Reason,
		dispute.Description,
		dispute.Status,
		dispute.Resolution,
		nullString(string(dispute.Outcome)),
		dispute.CreatedAt,
		nullTime(dispute.ResolvedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return repository.ErrDuplicate
		}
		return err
	}

	return nil
}

// GetByID retrieves a dispute by ID.
func (r *DisputeRepository) GetByID(ctx context.Context, id string) (*domain.Dispute, error) {
	query := `SELECT ` + disputeColumns + ` FROM disputes WHERE id = $1`

	dispute, err := r.scan(r.q.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	return dispute, nil
}

// GetOpenByReservationID retrieves the open dispute for a reservation.
func (r *DisputeRepository) GetOpenByReservationID(ctx context.Context, reservationID string) (*domain.Dispute, error) {
	query := `
		SELECT ` + disputeColumns + `
		FROM disputes WHERE reservation_id = $1 AND status = $2
		LIMIT 1
	`

	dispute, err := r.scan(r.q.QueryRowContext(ctx, query, reservationID, domain.DisputeStatusOpen))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	return dispute, nil
}

// ListAll retrieves all disputes, newest first.
func (r *DisputeRepository) ListAll(ctx context.Context) ([]*domain.Dispute, error) {
	query := `
		SELECT ` + disputeColumns + `
		FROM disputes ORDER BY created_at DESC LIMIT 500
	`

	rows, err := r.q.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var disputes []*domain.Dispute
	for rows.Next() {
		var dispute domain.Dispute
		var outcome sql.NullString
		var resolvedAt sql.NullTime

		if err := rows.Scan(
			&dispute.ID,
			&dispute.ReservationID,
			&dispute.RaisedBy,
			&dispute.Reason,
			&dispute.Description,
			&dispute.Status,
			&dispute.Resolution,
			&outcome,
			&dispute.CreatedAt,
			&resolvedAt,
		); err != nil {
			return nil, err
		}

		dispute.Outcome = domain.DisputeOutcome(outcome.String)
		if resolvedAt.Valid {
			dispute.ResolvedAt = resolvedAt.Time
		}
		disputes = append(disputes, &dispute)
	}

	return disputes, rows.Err()
}

// Update updates an existing dispute.
func (r *DisputeRepository) Update(ctx context.Context, dispute *domain.Dispute) error {
	query := `
		UPDATE disputes
		SET status = $1, resolution = $2, outcome = $3, resolved_at = $4
		WHERE id = $5
	`

	result, err := r.q.ExecContext(ctx, query,
		dispute.Status,
		dispute.Resolution,
		nullString(string(dispute.Outcome)),
		nullTime(dispute.ResolvedAt),
		dispute.ID,
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

func (r *DisputeRepository) scan(row *sql.Row) (*domain.Dispute, error) {
	var dispute domain.Dispute
	var outcome sql.NullString
	var resolvedAt sql.NullTime

	err := row.Scan(
		&dispute.ID,
		&dispute.ReservationID,
		&dispute.RaisedBy,
		&dispute.Reason,
		&dispute.Description,
		&dispute.Status,
		&dispute.Resolution,
		&outcome,
		&dispute.CreatedAt,
		&resolvedAt,
	)
	if err != nil {
		return nil, err
	}

	dispute.Outcome = domain.DisputeOutcome(outcome.String)
	if resolvedAt.Valid {
		dispute.ResolvedAt = resolvedAt.Time
	}

	return &dispute, nil
}

// Ensure DisputeRepository implements repository.DisputeRepository.
var _ repository.DisputeRepository = (*DisputeRepository)(nil)

package postgres

import (
	"context"
	"database/sql"
	"errors"

	"axisride/internal/domain"
	"axisride/internal/repository"
)

// PaymentRepository is a PostgreSQL implementation of
// repository.PaymentRepository.
type PaymentRepository struct {
	q Querier
}

// NewPaymentRepository creates a new PostgreSQL payment repository.
func NewPaymentRepository(db *sql.DB) *PaymentRepository {
	return &PaymentRepository{q: db}
}

// NewPaymentRepositoryWithTx creates a payment repository using a transaction.
func NewPaymentRepositoryWithTx(tx *sql.Tx) *PaymentRepository {
	return &PaymentRepository{q: tx}
}

const paymentColumns = `id, reservation_id, provider, phone_number, card_token, amount,
	transaction_ref, status, escrow_status, created_at, updated_at`

// Create persists a new payment attempt.
func (r *PaymentRepository) Create(ctx context.Context, payment *domain.Payment) error {
	query := `
		INSERT INTO payments (` + paymentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := r.q.ExecContext(ctx, query,
		payment.ID,
		payment.ReservationID,
		payment.Provider,
		payment.PhoneNumber,
		payment.CardToken,
		payment.Amount,
		nullString(payment.TransactionRef),
		payment.Status,
		nullString(string(payment.EscrowStatus)),
		payment.CreatedAt,
		payment.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return repository.ErrDuplicate
		}
		return err
	}

	return nil
}

// GetByID retrieves a payment by ID.
func (r *PaymentRepository) GetByID(ctx context.Context, id string) (*domain.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE id = $1`

	payment, err := scanPayment(r.q.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	return payment, nil
}

// GetHeldByReservationID retrieves the succeeded, still-held payment
// for a reservation.
func (r *PaymentRepository) GetHeldByReservationID(ctx context.Context, reservationID string) (*domain.Payment, error) {
	query := `
		SELECT ` + paymentColumns + `
		FROM payments
		WHERE reservation_id = $1 AND status = $2 AND escrow_status = $3
		LIMIT 1
	`

	payment, err := scanPayment(r.q.QueryRowContext(ctx, query,
		reservationID, domain.PaymentStatusSucceeded, domain.EscrowStatusHeld))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	return payment, nil
}

// ListByReservation retrieves all payment attempts for a reservation,
// newest first.
func (r *PaymentRepository) ListByReservation(ctx context.Context, reservationID string) ([]*domain.Payment, error) {
	query := `
		SELECT ` + paymentColumns + `
		FROM payments WHERE reservation_id = $1
		ORDER BY created_at DESC
	`

	return r.list(ctx, query, reservationID)
}

// ListAll retrieves all payments, newest first.
func (r *PaymentRepository) ListAll(ctx context.Context) ([]*domain.Payment, error) {
	query := `
		SELECT ` + paymentColumns + `
		FROM payments ORDER BY created_at DESC LIMIT 500
	`

	return r.list(ctx, query)
}

// UpdateStatus records the charge outcome of an attempt.
func (r *PaymentRepository) UpdateStatus(ctx context.Context, payment *domain.Payment) error {
	query := `
		UPDATE payments
		SET status = $1, escrow_status = $2, transaction_ref = $3, updated_at = NOW()
		WHERE id = $4
	`

	result, err := r.q.ExecContext(ctx, query,
		payment.Status,
		nullString(string(payment.EscrowStatus)),
		nullString(payment.TransactionRef),
		payment.ID,
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

// TransitionEscrow moves a payment's escrow status. The guard on the
// from status makes release/refund mutually exclusive: the second
// writer sees zero rows and gets ErrStateConflict.
func (r *PaymentRepository) TransitionEscrow(ctx context.Context, id string, from, to domain.EscrowStatus) error {
	query := `
		UPDATE payments SET escrow_status = $1, updated_at = NOW()
		WHERE id = $2 AND escrow_status = $3
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

func (r *PaymentRepository) list(ctx context.Context, query string, args ...any) ([]*domain.Payment, error) {
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var payments []*domain.Payment
	for rows.Next() {
		payment, err := scanPaymentRows(rows)
		if err != nil {
			return nil, err
		}
		payments = append(payments, payment)
	}

	return payments, rows.Err()
}

func scanPayment(row *sql.Row) (*domain.Payment, error) {
	var payment domain.Payment
	var txRef, escrow sql.NullString

	err := row.Scan(
		&payment.ID,
		&payment.ReservationID,
		&payment.Provider,
		&payment.PhoneNumber,
		&payment.CardToken,
		&payment.Amount,
		&txRef,
		&payment.Status,
		&escrow,
		&payment.CreatedAt,
		&payment.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	payment.TransactionRef = txRef.String
	payment.EscrowStatus = domain.EscrowStatus(escrow.String)

	return &payment, nil
}

func scanPaymentRows(rows *sql.Rows) (*domain.Payment, error) {
	var payment domain.Payment
	var txRef, escrow sql.NullString

	err := rows.Scan(
		&payment.ID,
		&payment.ReservationID,
		&payment.Provider,
		&payment.PhoneNumber,
		&payment.CardToken,
		&payment.Amount,
		&txRef,
		&payment.Status,
		&escrow,
		&payment.CreatedAt,
		&payment.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	payment.TransactionRef = txRef.String
	payment.EscrowStatus = domain.EscrowStatus(escrow.String)

	return &payment, nil
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// Ensure PaymentRepository implements repository.PaymentRepository.
var _ repository.PaymentRepository = (*PaymentRepository)(nil)

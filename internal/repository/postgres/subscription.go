package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"axisride/internal/domain"
	"axisride/internal/repository"
)

// SubscriptionRepository is a PostgreSQL implementation of
// repository.SubscriptionRepository.
type SubscriptionRepository struct {
	q Querier
}

// NewSubscriptionRepository creates a new PostgreSQL subscription repository.
func NewSubscriptionRepository(db *sql.DB) *SubscriptionRepository {
	return &SubscriptionRepository{q: db}
}

// NewSubscriptionRepositoryWithTx creates a subscription repository using a transaction.
func NewSubscriptionRepositoryWithTx(tx *sql.Tx) *SubscriptionRepository {
	return &SubscriptionRepository{q: tx}
}

// Create persists a new subscription row for a user.
func (r *SubscriptionRepository) Create(ctx context.Context, sub *domain.Subscription) error {
	query := `
		INSERT INTO subscriptions (user_id, trial_used, trial_started_at, trial_until,
			paid_until, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.q.ExecContext(ctx, query,
		sub.UserID,
		sub.TrialUsed,
		nullTime(sub.TrialStartedAt),
		nullTime(sub.TrialUntil),
		nullTime(sub.PaidUntil),
		sub.CreatedAt,
		sub.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return repository.ErrDuplicate
		}
		return err
	}

	return nil
}

// GetByUserID retrieves a user's subscription.
func (r *SubscriptionRepository) GetByUserID(ctx context.Context, userID string) (*domain.Subscription, error) {
	query := `
		SELECT user_id, trial_used, trial_started_at, trial_until, paid_until,
			created_at, updated_at
		FROM subscriptions WHERE user_id = $1
	`

	var sub domain.Subscription
	var trialStartedAt, trialUntil, paidUntil sql.NullTime

	err := r.q.QueryRowContext(ctx, query, userID).Scan(
		&sub.UserID,
		&sub.TrialUsed,
		&trialStartedAt,
		&trialUntil,
		&paidUntil,
		&sub.CreatedAt,
		&sub.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	if trialStartedAt.Valid {
		sub.TrialStartedAt = trialStartedAt.Time
	}
	if trialUntil.Valid {
		sub.TrialUntil = trialUntil.Time
	}
	if paidUntil.Valid {
		sub.PaidUntil = paidUntil.Time
	}

	return &sub, nil
}

// Update updates an existing subscription.
func (r *SubscriptionRepository) Update(ctx context.Context, sub *domain.Subscription) error {
	query := `
		UPDATE subscriptions
		SET trial_used = $1, trial_started_at = $2, trial_until = $3, paid_until = $4,
			updated_at = $5
		WHERE user_id = $6
	`

	result, err := r.q.ExecContext(ctx, query,
		sub.TrialUsed,
		nullTime(sub.TrialStartedAt),
		nullTime(sub.TrialUntil),
		nullTime(sub.PaidUntil),
		sub.UpdatedAt,
		sub.UserID,
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

// ExtendPaid extends a user's paid period in a single upsert so two
// concurrent renewals both stack instead of one overwriting the other.
// The new period is anchored at max(now, current period end).
func (r *SubscriptionRepository) ExtendPaid(ctx context.Context, userID string, validity time.Duration) (*domain.Subscription, error) {
	query := `
		INSERT INTO subscriptions (user_id, trial_used, paid_until, created_at, updated_at)
		VALUES ($1, FALSE, NOW() + make_interval(secs => $2), NOW(), NOW())
		ON CONFLICT (user_id) DO UPDATE
		SET paid_until = GREATEST(COALESCE(subscriptions.paid_until, NOW()), NOW())
			+ make_interval(secs => $2),
			updated_at = NOW()
		RETURNING user_id, trial_used, trial_started_at, trial_until, paid_until,
			created_at, updated_at
	`

	var sub domain.Subscription
	var trialStartedAt, trialUntil, paidUntil sql.NullTime

	err := r.q.QueryRowContext(ctx, query, userID, validity.Seconds()).Scan(
		&sub.UserID,
		&sub.TrialUsed,
		&trialStartedAt,
		&trialUntil,
		&paidUntil,
		&sub.CreatedAt,
		&sub.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if trialStartedAt.Valid {
		sub.TrialStartedAt = trialStartedAt.Time
	}
	if trialUntil.Valid {
		sub.TrialUntil = trialUntil.Time
	}
	if paidUntil.Valid {
		sub.PaidUntil = paidUntil.Time
	}

	return &sub, nil
}

func nullTime(t time.Time) sql.NullTime {
	if t.IsZero() {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t, Valid: true}
}

// Ensure SubscriptionRepository implements repository.SubscriptionRepository.
var _ repository.SubscriptionRepository = (*SubscriptionRepository)(nil)

package postgres

import (
	"context"
	"database/sql"
	"errors"

	"axisride/internal/domain"
	"axisride/internal/repository"
)

// GroupRepository is a PostgreSQL implementation of
// repository.GroupRepository.
type GroupRepository struct {
	q Querier
}

// NewGroupRepository creates a new PostgreSQL group repository.
func NewGroupRepository(db *sql.DB) *GroupRepository {
	return &GroupRepository{q: db}
}

// Create persists a new travel group.
func (r *GroupRepository) Create(ctx context.Context, group *domain.TravelGroup) error {
	query := `
		INSERT INTO travel_groups (id, owner_id, name, origin, destination, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.q.ExecContext(ctx, query,
		group.ID,
		group.OwnerID,
		group.Name,
		group.Origin,
		group.Destination,
		group.CreatedAt,
	)

	return err
}

// GetByID retrieves a group by ID.
func (r *GroupRepository) GetByID(ctx context.Context, id string) (*domain.TravelGroup, error) {
	query := `
		SELECT id, owner_id, name, origin, destination, created_at
		FROM travel_groups WHERE id = $1
	`

	var group domain.TravelGroup

	err := r.q.QueryRowContext(ctx, query, id).Scan(
		&group.ID,
		&group.OwnerID,
		&group.Name,
		&group.Origin,
		&group.Destination,
		&group.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	return &group, nil
}

// List retrieves all groups.
func (r *GroupRepository) List(ctx context.Context) ([]*domain.TravelGroup, error) {
	query := `
		SELECT id, owner_id, name, origin, destination, created_at
		FROM travel_groups ORDER BY created_at DESC LIMIT 200
	`

	rows, err := r.q.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var groups []*domain.TravelGroup
	for rows.Next() {
		var group domain.TravelGroup
		if err := rows.Scan(
			&group.ID,
			&group.OwnerID,
			&group.Name,
			&group.Origin,
			&group.Destination,
			&group.CreatedAt,
		); err != nil {
			return nil, err
		}
		groups = append(groups, &group)
	}

	return groups, rows.Err()
}

// AddMember records a user's membership. (group_id, user_id) is the
// primary key, so re-joining surfaces ErrDuplicate.
func (r *GroupRepository) AddMember(ctx context.Context, membership *domain.GroupMembership) error {
	query := `
		INSERT INTO group_memberships (group_id, user_id, joined_at)
		VALUES ($1, $2, $3)
	`

	_, err := r.q.ExecContext(ctx, query,
		membership.GroupID,
		membership.UserID,
		membership.JoinedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return repository.ErrDuplicate
		}
		return err
	}

	return nil
}

// ListMembers retrieves the memberships of a group.
func (r *GroupRepository) ListMembers(ctx context.Context, groupID string) ([]*domain.GroupMembership, error) {
	query := `
		SELECT group_id, user_id, joined_at
		FROM group_memberships WHERE group_id = $1
		ORDER BY joined_at ASC
	`

	rows, err := r.q.QueryContext(ctx, query, groupID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []*domain.GroupMembership
	for rows.Next() {
		var membership domain.GroupMembership
		if err := rows.Scan(
			&membership.GroupID,
			&membership.UserID,
			&membership.JoinedAt,
		); err != nil {
			return nil, err
		}
		members = append(members, &membership)
	}

	return members, rows.Err()
}

// Ensure GroupRepository implements repository.GroupRepository.
var _ repository.GroupRepository = (*GroupRepository)(nil)

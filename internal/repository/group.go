package repository

import (
	"context"

	"axisride/internal/domain"
)

// GroupRepository defines the persistence operations for travel groups.
type GroupRepository interface {
	// Create persists a new travel group.
	Create(ctx context.Context, group *domain.TravelGroup) error

	// GetByID retrieves a group by ID.
	GetByID(ctx context.Context, id string) (*domain.TravelGroup, error)

	// List retrieves all groups.
	List(ctx context.Context) ([]*domain.TravelGroup, error)

	// AddMember records a user's membership. Returns ErrDuplicate if the
	// user is already a member.
	AddMember(ctx context.Context, membership *domain.GroupMembership) error

	// ListMembers retrieves the memberships of a group.
	ListMembers(ctx context.Context, groupID string) ([]*domain.GroupMembership, error)
}

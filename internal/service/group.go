package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"axisride/internal/domain"
	"axisride/internal/repository"
)

// GroupService manages recurring-commute travel groups. Creating and
// joining a group is subscription-gated like reservation creation.
type GroupService struct {
	groupRepo    repository.GroupRepository
	subscription *SubscriptionService
}

// NewGroupService creates a new GroupService.
func NewGroupService(groupRepo repository.GroupRepository, subscription *SubscriptionService) *GroupService {
	return &GroupService{
		groupRepo:    groupRepo,
		subscription: subscription,
	}
}

// CreateGroupRequest carries the input for creating a travel group.
type CreateGroupRequest struct {
	Name        string
	Origin      string
	Destination string
}

// Create opens a new travel group owned by the caller, who becomes its
// first member.
func (s *GroupService) Create(ctx context.Context, owner *domain.User, req CreateGroupRequest) (*domain.TravelGroup, error) {
	if req.Name == "" {
		return nil, ErrInvalidGroupName
	}

	if err := s.subscription.AssertFeatureAllowed(ctx, owner); err != nil {
		return nil, err
	}

	now := time.Now()
	group := &domain.TravelGroup{
		ID:          uuid.New().String(),
		OwnerID:     owner.ID,
		Name:        req.Name,
		Origin:      req.Origin,
		Destination: req.Destination,
		CreatedAt:   now,
	}

	if err := s.groupRepo.Create(ctx, group); err != nil {
		return nil, err
	}

	err := s.groupRepo.AddMember(ctx, &domain.GroupMembership{
		GroupID:  group.ID,
		UserID:   owner.ID,
		JoinedAt: now,
	})
	if err != nil && err != repository.ErrDuplicate {
		return nil, err
	}

	return group, nil
}

// Join adds the caller to a group. Joining a group the caller already
// belongs to is a no-op.
func (s *GroupService) Join(ctx context.Context, user *domain.User, groupID string) error {
	if err := s.subscription.AssertFeatureAllowed(ctx, user); err != nil {
		return err
	}

	if _, err := s.groupRepo.GetByID(ctx, groupID); err != nil {
		return err
	}

	err := s.groupRepo.AddMember(ctx, &domain.GroupMembership{
		GroupID:  groupID,
		UserID:   user.ID,
		JoinedAt: time.Now(),
	})
	if err != nil && err != repository.ErrDuplicate {
		return err
	}

	return nil
}

// Get retrieves a group.
func (s *GroupService) Get(ctx context.Context, groupID string) (*domain.TravelGroup, error) {
	return s.groupRepo.GetByID(ctx, groupID)
}

// List retrieves all groups.
func (s *GroupService) List(ctx context.Context) ([]*domain.TravelGroup, error) {
	return s.groupRepo.List(ctx)
}

// ListMembers retrieves the memberships of a group.
func (s *GroupService) ListMembers(ctx context.Context, groupID string) ([]*domain.GroupMembership, error) {
	if _, err := s.groupRepo.GetByID(ctx, groupID); err != nil {
		return nil, err
	}
	return s.groupRepo.ListMembers(ctx, groupID)
}

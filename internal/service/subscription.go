package service

import (
	"context"
	"time"

	"axisride/internal/domain"
	"axisride/internal/repository"
)

const (
	// TrialDuration is the fixed length of the one-time trial.
	TrialDuration = 30 * 24 * time.Hour

	// PaidValidity is the fixed length of one paid subscription period.
	PaidValidity = 365 * 24 * time.Hour
)

// SubscriptionService tracks per-user subscription state and enforces
// the feature gate on trip creation, reservation creation, and group
// joining. Expiry is computed lazily on read; no background job moves
// subscriptions.
type SubscriptionService struct {
	subRepo repository.SubscriptionRepository
	gateway PaymentGateway
}

// NewSubscriptionService creates a new SubscriptionService.
func NewSubscriptionService(subRepo repository.SubscriptionRepository, gateway PaymentGateway) *SubscriptionService {
	return &SubscriptionService{
		subRepo: subRepo,
		gateway: gateway,
	}
}

// StartTrial begins the user's one-time trial. Fails with
// ErrAlreadyUsedTrial if the user ever had a trial or a paid
// subscription.
func (s *SubscriptionService) StartTrial(ctx context.Context, user *domain.User) (*domain.Subscription, error) {
	now := time.Now()

	sub, err := s.subRepo.GetByUserID(ctx, user.ID)
	if err != nil && err != repository.ErrNotFound {
		return nil, err
	}

	if sub != nil {
		if err := sub.StartTrial(now, TrialDuration); err != nil {
			return nil, ErrAlreadyUsedTrial
		}
		sub.UpdatedAt = now
		if err := s.subRepo.Update(ctx, sub); err != nil {
			return nil, err
		}
		return sub, nil
	}

	sub = &domain.Subscription{
		UserID:    user.ID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := sub.StartTrial(now, TrialDuration); err != nil {
		return nil, ErrAlreadyUsedTrial
	}

	if err := s.subRepo.Create(ctx, sub); err != nil {
		if err == repository.ErrDuplicate {
			// Lost a race with another trial start for the same user.
			return nil, ErrAlreadyUsedTrial
		}
		return nil, err
	}

	return sub, nil
}

// RecordPaymentRequest contains the parameters for paying a
// subscription period.
type RecordPaymentRequest struct {
	Provider     domain.PaymentProvider
	PhoneOrToken string
	Amount       float64
}

// RecordPayment charges the subscription fee through the gateway and,
// on success, extends the paid period. Renewals before expiry extend
// from the current period end rather than restarting.
func (s *SubscriptionService) RecordPayment(ctx context.Context, user *domain.User, req RecordPaymentRequest) (*domain.Subscription, error) {
	if !validProvider(req.Provider) {
		return nil, ErrInvalidProvider
	}
	if req.PhoneOrToken == "" {
		return nil, ErrInvalidPaymentDetails
	}
	if req.Amount <= 0 {
		return nil, ErrInvalidPrice
	}

	err := callGateway(ctx, func(ctx context.Context) error {
		_, err := s.gateway.Charge(ctx, req.Provider, req.PhoneOrToken, req.Amount)
		return err
	})
	if err != nil {
		return nil, err
	}

	// Single atomic upsert: concurrent renewals for the same user both
	// stack onto the period end instead of one overwriting the other.
	return s.subRepo.ExtendPaid(ctx, user.ID, PaidValidity)
}

// StatusOf derives the user's subscription status as of now.
func (s *SubscriptionService) StatusOf(ctx context.Context, user *domain.User) (domain.SubscriptionStatus, *domain.Subscription, error) {
	sub, err := s.subRepo.GetByUserID(ctx, user.ID)
	if err != nil {
		if err == repository.ErrNotFound {
			return domain.SubscriptionStatusNone, nil, nil
		}
		return "", nil, err
	}

	return sub.StatusAt(time.Now()), sub, nil
}

// AssertFeatureAllowed fails with ErrSubscriptionRequired unless the
// user has a running trial or active subscription. Gated operations
// call this before any other side effect.
func (s *SubscriptionService) AssertFeatureAllowed(ctx context.Context, user *domain.User) error {
	sub, err := s.subRepo.GetByUserID(ctx, user.ID)
	if err != nil {
		if err == repository.ErrNotFound {
			return ErrSubscriptionRequired
		}
		return err
	}

	if !sub.AllowsFeatures(time.Now()) {
		return ErrSubscriptionRequired
	}

	return nil
}

func validProvider(p domain.PaymentProvider) bool {
	switch p {
	case domain.ProviderOrangeMoney, domain.ProviderMTNMoMo, domain.ProviderCard:
		return true
	default:
		return false
	}
}

package tests

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"axisride/internal/domain"
	"axisride/internal/service"
)

// ──────────────────────────────────────────────
// TRIAL
// ──────────────────────────────────────────────

func TestSubscription_TrialGrantsThirtyDays(t *testing.T) {
	t.Parallel()

	subs := NewMockSubscriptionRepository()
	svc := service.NewSubscriptionService(subs, service.NewMockGateway())
	user := &domain.User{ID: "user-1", Role: domain.RolePassenger, Status: domain.UserStatusActive}

	sub, err := svc.StartTrial(context.Background(), user)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !sub.TrialUsed {
		t.Error("expected TrialUsed to be set")
	}
	want := time.Now().Add(service.TrialDuration)
	if diff := sub.TrialUntil.Sub(want); diff < -time.Minute || diff > time.Minute {
		t.Errorf("expected trial to end near %v, got %v", want, sub.TrialUntil)
	}

	status, _, err := svc.StatusOf(context.Background(), user)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if status != domain.SubscriptionStatusTrial {
		t.Errorf("expected status %s, got %s", domain.SubscriptionStatusTrial, status)
	}
	if err := svc.AssertFeatureAllowed(context.Background(), user); err != nil {
		t.Errorf("expected trial to pass the feature gate, got %v", err)
	}
}

func TestSubscription_TrialIsOneTimeOnly(t *testing.T) {
	t.Parallel()

	subs := NewMockSubscriptionRepository()
	svc := service.NewSubscriptionService(subs, service.NewMockGateway())
	user := &domain.User{ID: "user-1", Role: domain.RolePassenger, Status: domain.UserStatusActive}

	if _, err := svc.StartTrial(context.Background(), user); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.StartTrial(context.Background(), user); !errors.Is(err, service.ErrAlreadyUsedTrial) {
		t.Fatalf("expected ErrAlreadyUsedTrial, got %v", err)
	}
}

func TestSubscription_TrialAfterExpiryStaysUsed(t *testing.T) {
	t.Parallel()

	subs := NewMockSubscriptionRepository()
	svc := service.NewSubscriptionService(subs, service.NewMockGateway())
	user := &domain.User{ID: "user-1", Role: domain.RolePassenger, Status: domain.UserStatusActive}

	subs.AddSubscription(&domain.Subscription{
		UserID:     "user-1",
		TrialUsed:  true,
		TrialUntil: time.Now().Add(-time.Hour),
	})

	if _, err := svc.StartTrial(context.Background(), user); !errors.Is(err, service.ErrAlreadyUsedTrial) {
		t.Fatalf("expected ErrAlreadyUsedTrial, got %v", err)
	}
}

func TestSubscription_TrialRejectedAfterPaidPeriod(t *testing.T) {
	t.Parallel()

	subs := NewMockSubscriptionRepository()
	svc := service.NewSubscriptionService(subs, service.NewMockGateway())
	user := &domain.User{ID: "user-1", Role: domain.RolePassenger, Status: domain.UserStatusActive}

	subs.AddSubscription(&domain.Subscription{
		UserID:    "user-1",
		PaidUntil: time.Now().Add(-time.Hour),
	})

	if _, err := svc.StartTrial(context.Background(), user); !errors.Is(err, service.ErrAlreadyUsedTrial) {
		t.Fatalf("expected ErrAlreadyUsedTrial, got %v", err)
	}
}

// ──────────────────────────────────────────────
// PAID PERIODS
// ──────────────────────────────────────────────

func TestSubscription_PaymentExtendsFromPeriodEnd(t *testing.T) {
	t.Parallel()

	subs := NewMockSubscriptionRepository()
	svc := service.NewSubscriptionService(subs, service.NewMockGateway())
	user := &domain.User{ID: "user-1", Role: domain.RolePassenger, Status: domain.UserStatusActive}

	req := service.RecordPaymentRequest{
		Provider:     domain.ProviderOrangeMoney,
		PhoneOrToken: "+2250700000001",
		Amount:       5000,
	}

	first, err := svc.RecordPayment(context.Background(), user, req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := svc.RecordPayment(context.Background(), user, req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Early renewal stacks on the current period end.
	want := first.PaidUntil.Add(service.PaidValidity)
	if !second.PaidUntil.Equal(want) {
		t.Errorf("expected paid period to stack to %v, got %v", want, second.PaidUntil)
	}

	status, _, err := svc.StatusOf(context.Background(), user)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if status != domain.SubscriptionStatusActive {
		t.Errorf("expected status %s, got %s", domain.SubscriptionStatusActive, status)
	}
}

func TestSubscription_ConcurrentRenewalsBothStack(t *testing.T) {
	t.Parallel()

	subs := NewMockSubscriptionRepository()
	svc := service.NewSubscriptionService(subs, service.NewMockGateway())
	user := &domain.User{ID: "user-1", Role: domain.RolePassenger, Status: domain.UserStatusActive}

	req := service.RecordPaymentRequest{
		Provider:     domain.ProviderOrangeMoney,
		PhoneOrToken: "+2250700000001",
		Amount:       5000,
	}

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.RecordPayment(context.Background(), user, req)
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Fatalf("renewal %d: unexpected error: %v", i, err)
		}
	}

	sub, err := subs.GetByUserID(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Both payments must count: neither renewal may overwrite the other.
	want := time.Now().Add(2 * service.PaidValidity)
	if diff := sub.PaidUntil.Sub(want); diff < -time.Minute || diff > time.Minute {
		t.Errorf("expected paid period near %v after two renewals, got %v", want, sub.PaidUntil)
	}
}

func TestSubscription_PaymentAfterExpiryRestartsFromNow(t *testing.T) {
	t.Parallel()

	subs := NewMockSubscriptionRepository()
	svc := service.NewSubscriptionService(subs, service.NewMockGateway())
	user := &domain.User{ID: "user-1", Role: domain.RolePassenger, Status: domain.UserStatusActive}

	subs.AddSubscription(&domain.Subscription{
		UserID:    "user-1",
		PaidUntil: time.Now().Add(-30 * 24 * time.Hour),
	})

	sub, err := svc.RecordPayment(context.Background(), user, service.RecordPaymentRequest{
		Provider:     domain.ProviderMTNMoMo,
		PhoneOrToken: "+2250500000001",
		Amount:       5000,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := time.Now().Add(service.PaidValidity)
	if diff := sub.PaidUntil.Sub(want); diff < -time.Minute || diff > time.Minute {
		t.Errorf("expected paid period to restart near %v, got %v", want, sub.PaidUntil)
	}
}

func TestSubscription_DeclinedPaymentExtendsNothing(t *testing.T) {
	t.Parallel()

	subs := NewMockSubscriptionRepository()
	gateway := &FailingGateway{ChargeError: errors.New("insufficient balance")}
	svc := service.NewSubscriptionService(subs, gateway)
	user := &domain.User{ID: "user-1", Role: domain.RolePassenger, Status: domain.UserStatusActive}

	_, err := svc.RecordPayment(context.Background(), user, service.RecordPaymentRequest{
		Provider:     domain.ProviderOrangeMoney,
		PhoneOrToken: "+2250700000001",
		Amount:       5000,
	})
	if err == nil {
		t.Fatal("expected the declined charge to surface")
	}

	status, sub, err := svc.StatusOf(context.Background(), user)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if status != domain.SubscriptionStatusNone || sub != nil {
		t.Errorf("expected no subscription after a decline, got %s %+v", status, sub)
	}
}

func TestSubscription_PaymentValidation(t *testing.T) {
	t.Parallel()

	svc := service.NewSubscriptionService(NewMockSubscriptionRepository(), service.NewMockGateway())
	user := &domain.User{ID: "user-1", Role: domain.RolePassenger, Status: domain.UserStatusActive}

	cases := []struct {
		name string
		req  service.RecordPaymentRequest
		want error
	}{
		{"unknown provider", service.RecordPaymentRequest{Provider: "CASH", PhoneOrToken: "x", Amount: 5000}, service.ErrInvalidProvider},
		{"missing instrument", service.RecordPaymentRequest{Provider: domain.ProviderCard, Amount: 5000}, service.ErrInvalidPaymentDetails},
		{"zero amount", service.RecordPaymentRequest{Provider: domain.ProviderOrangeMoney, PhoneOrToken: "x"}, service.ErrInvalidPrice},
	}

	for _, tc := range cases {
		if _, err := svc.RecordPayment(context.Background(), user, tc.req); !errors.Is(err, tc.want) {
			t.Errorf("%s: expected %v, got %v", tc.name, tc.want, err)
		}
	}
}

// ──────────────────────────────────────────────
// FEATURE GATE
// ──────────────────────────────────────────────

func TestSubscription_ExpiredTrialFailsFeatureGate(t *testing.T) {
	t.Parallel()

	subs := NewMockSubscriptionRepository()
	svc := service.NewSubscriptionService(subs, service.NewMockGateway())
	user := &domain.User{ID: "user-1", Role: domain.RolePassenger, Status: domain.UserStatusActive}

	subs.AddSubscription(&domain.Subscription{
		UserID:     "user-1",
		TrialUsed:  true,
		TrialUntil: time.Now().Add(-time.Hour),
	})

	if err := svc.AssertFeatureAllowed(context.Background(), user); !errors.Is(err, service.ErrSubscriptionRequired) {
		t.Fatalf("expected ErrSubscriptionRequired, got %v", err)
	}

	status, _, err := svc.StatusOf(context.Background(), user)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if status != domain.SubscriptionStatusExpired {
		t.Errorf("expected status %s, got %s", domain.SubscriptionStatusExpired, status)
	}
}

func TestSubscription_NoSubscriptionFailsFeatureGate(t *testing.T) {
	t.Parallel()

	svc := service.NewSubscriptionService(NewMockSubscriptionRepository(), service.NewMockGateway())
	user := &domain.User{ID: "user-1", Role: domain.RolePassenger, Status: domain.UserStatusActive}

	if err := svc.AssertFeatureAllowed(context.Background(), user); !errors.Is(err, service.ErrSubscriptionRequired) {
		t.Fatalf("expected ErrSubscriptionRequired, got %v", err)
	}
}

package tests

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"testing"

	"axisride/internal/domain"
	"axisride/internal/service"
)

// moderationEnv extends the booking environment with disputes and
// reviews.
type moderationEnv struct {
	*bookingEnv
	disputes *MockDisputeRepository
	reviews  *MockReviewRepository

	dispute *service.DisputeService
	review  *service.ReviewService
}

func newModerationEnv() *moderationEnv {
	env := &moderationEnv{
		bookingEnv: newBookingEnv(),
		disputes:   NewMockDisputeRepository(),
		reviews:    NewMockReviewRepository(),
	}
	env.dispute = service.NewDisputeService(env.disputes, env.reservations, env.trips, env.escrow)
	env.review = service.NewReviewService(env.reviews, env.reservations, env.trips, env.profiles, nil)
	return env
}

// validateBoarding runs the driver-side boarding validation for a paid
// reservation.
func validateBoarding(t *testing.T, env *bookingEnv, reservationID string) {
	t.Helper()

	driver, err := env.users.GetByID(context.Background(), "driver-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	code := env.reservations.GetReservation(reservationID).Code
	if _, err := env.engine.ValidateBoarding(context.Background(), driver, reservationID, code); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// ──────────────────────────────────────────────
// OPENING DISPUTES
// ──────────────────────────────────────────────

func TestDispute_EitherPartyCanOpen(t *testing.T) {
	t.Parallel()

	env := newModerationEnv()
	passenger, reservation := paidReservation(t, env.bookingEnv)
	driver, _ := env.users.GetByID(context.Background(), "driver-1")

	dispute, err := env.dispute.Open(context.Background(), driver, service.OpenDisputeRequest{
		ReservationID: reservation.ID,
		Reason:        "no_show",
		Description:   "passenger never arrived at the meeting point",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dispute.Status != domain.DisputeStatusOpen {
		t.Errorf("expected status %s, got %s", domain.DisputeStatusOpen, dispute.Status)
	}
	if dispute.Outcome != domain.OutcomeNone {
		t.Errorf("expected outcome %s, got %s", domain.OutcomeNone, dispute.Outcome)
	}
	if dispute.RaisedBy != driver.ID {
		t.Errorf("expected raiser %s, got %s", driver.ID, dispute.RaisedBy)
	}

	// A second open dispute on the same reservation is rejected, no
	// matter who raises it.
	_, err = env.dispute.Open(context.Background(), passenger, service.OpenDisputeRequest{
		ReservationID: reservation.ID,
		Reason:        "driver_no_show",
	})
	if !errors.Is(err, service.ErrDuplicateOpenDispute) {
		t.Fatalf("expected ErrDuplicateOpenDispute, got %v", err)
	}
}

func TestDispute_OpenRequiresParty(t *testing.T) {
	t.Parallel()

	env := newModerationEnv()
	_, reservation := paidReservation(t, env.bookingEnv)
	stranger := env.addPassenger("passenger-2")

	_, err := env.dispute.Open(context.Background(), stranger, service.OpenDisputeRequest{
		ReservationID: reservation.ID,
		Reason:        "no_show",
	})
	if !errors.Is(err, service.ErrNotDisputeParty) {
		t.Fatalf("expected ErrNotDisputeParty, got %v", err)
	}
}

func TestDispute_OpenRequiresMoneyInPlay(t *testing.T) {
	t.Parallel()

	env := newModerationEnv()
	passenger, reservation := pendingReservation(t, env.bookingEnv)

	_, err := env.dispute.Open(context.Background(), passenger, service.OpenDisputeRequest{
		ReservationID: reservation.ID,
		Reason:        "no_show",
	})
	if !errors.Is(err, service.ErrInvalidStateTransition) {
		t.Fatalf("expected ErrInvalidStateTransition, got %v", err)
	}
}

// ──────────────────────────────────────────────
// RESOLVING DISPUTES
// ──────────────────────────────────────────────

func openDispute(t *testing.T, env *moderationEnv, raiser *domain.User, reservationID string) *domain.Dispute {
	t.Helper()

	dispute, err := env.dispute.Open(context.Background(), raiser, service.OpenDisputeRequest{
		ReservationID: reservationID,
		Reason:        "no_show",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return dispute
}

func TestDispute_ResolveRefundReturnsMoney(t *testing.T) {
	t.Parallel()

	env := newModerationEnv()
	passenger, reservation := paidReservation(t, env.bookingEnv)
	dispute := openDispute(t, env, passenger, reservation.ID)
	admin := &domain.User{ID: "admin-1", Role: domain.RoleAdmin, Status: domain.UserStatusActive}

	resolved, err := env.dispute.Resolve(context.Background(), admin, service.ResolveDisputeRequest{
		DisputeID:  dispute.ID,
		Resolution: "driver did not show up",
		Outcome:    domain.OutcomeRefund,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resolved.Status != domain.DisputeStatusResolved {
		t.Errorf("expected status %s, got %s", domain.DisputeStatusResolved, resolved.Status)
	}
	if resolved.ResolvedAt.IsZero() {
		t.Error("expected ResolvedAt to be set")
	}

	payments, _ := env.payments.ListByReservation(context.Background(), reservation.ID)
	if payments[0].EscrowStatus != domain.EscrowStatusRefunded {
		t.Errorf("expected escrow %s, got %s", domain.EscrowStatusRefunded, payments[0].EscrowStatus)
	}
	if got := env.reservations.GetReservation(reservation.ID).Status; got != domain.ReservationStatusRefunded {
		t.Errorf("expected reservation %s, got %s", domain.ReservationStatusRefunded, got)
	}
	if got := env.trips.GetTrip("trip-1").SeatsAvailable; got != 4 {
		t.Errorf("expected seats released, got %d available", got)
	}
}

func TestDispute_ResolveRefundKeepsValidatedReservation(t *testing.T) {
	t.Parallel()

	env := newModerationEnv()
	passenger, reservation := paidReservation(t, env.bookingEnv)
	validateBoarding(t, env.bookingEnv, reservation.ID)
	dispute := openDispute(t, env, passenger, reservation.ID)
	admin := &domain.User{ID: "admin-1", Role: domain.RoleAdmin, Status: domain.UserStatusActive}

	_, err := env.dispute.Resolve(context.Background(), admin, service.ResolveDisputeRequest{
		DisputeID:  dispute.ID,
		Resolution: "vehicle unsafe, refunding anyway",
		Outcome:    domain.OutcomeRefund,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// The money moved back but the boarding record stands.
	payments, _ := env.payments.ListByReservation(context.Background(), reservation.ID)
	if payments[0].EscrowStatus != domain.EscrowStatusRefunded {
		t.Errorf("expected escrow %s, got %s", domain.EscrowStatusRefunded, payments[0].EscrowStatus)
	}
	if got := env.reservations.GetReservation(reservation.ID).Status; got != domain.ReservationStatusValidated {
		t.Errorf("expected reservation to stay %s, got %s", domain.ReservationStatusValidated, got)
	}
}

func TestDispute_ResolveReleaseRequiresBoardingValidation(t *testing.T) {
	t.Parallel()

	env := newModerationEnv()
	passenger, reservation := paidReservation(t, env.bookingEnv)
	dispute := openDispute(t, env, passenger, reservation.ID)
	admin := &domain.User{ID: "admin-1", Role: domain.RoleAdmin, Status: domain.UserStatusActive}

	req := service.ResolveDisputeRequest{
		DisputeID:  dispute.ID,
		Resolution: "passenger confirmed riding in chat",
		Outcome:    domain.OutcomeRelease,
	}

	// Boarding was never validated: releasing to the driver must fail and
	// leave everything untouched so the admin can retry later.
	if _, err := env.dispute.Resolve(context.Background(), admin, req); !errors.Is(err, service.ErrPrematureRelease) {
		t.Fatalf("expected ErrPrematureRelease, got %v", err)
	}

	if got := env.disputes.GetDispute(dispute.ID).Status; got != domain.DisputeStatusOpen {
		t.Errorf("expected dispute to stay %s, got %s", domain.DisputeStatusOpen, got)
	}
	payments, _ := env.payments.ListByReservation(context.Background(), reservation.ID)
	if payments[0].EscrowStatus != domain.EscrowStatusHeld {
		t.Errorf("expected escrow %s, got %s", domain.EscrowStatusHeld, payments[0].EscrowStatus)
	}

	validateBoarding(t, env.bookingEnv, reservation.ID)

	resolved, err := env.dispute.Resolve(context.Background(), admin, req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resolved.Status != domain.DisputeStatusResolved {
		t.Errorf("expected status %s, got %s", domain.DisputeStatusResolved, resolved.Status)
	}

	payments, _ = env.payments.ListByReservation(context.Background(), reservation.ID)
	if payments[0].EscrowStatus != domain.EscrowStatusReleased {
		t.Errorf("expected escrow %s, got %s", domain.EscrowStatusReleased, payments[0].EscrowStatus)
	}
}

func TestDispute_ResolveNoneLeavesFundsHeld(t *testing.T) {
	t.Parallel()

	env := newModerationEnv()
	passenger, reservation := paidReservation(t, env.bookingEnv)
	dispute := openDispute(t, env, passenger, reservation.ID)
	admin := &domain.User{ID: "admin-1", Role: domain.RoleAdmin, Status: domain.UserStatusActive}

	resolved, err := env.dispute.Resolve(context.Background(), admin, service.ResolveDisputeRequest{
		DisputeID:  dispute.ID,
		Resolution: "no evidence either way",
		Outcome:    domain.OutcomeNone,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resolved.Status != domain.DisputeStatusResolved {
		t.Errorf("expected status %s, got %s", domain.DisputeStatusResolved, resolved.Status)
	}

	payments, _ := env.payments.ListByReservation(context.Background(), reservation.ID)
	if payments[0].EscrowStatus != domain.EscrowStatusHeld {
		t.Errorf("expected escrow still %s, got %s", domain.EscrowStatusHeld, payments[0].EscrowStatus)
	}

	// A resolved dispute cannot be resolved again.
	_, err = env.dispute.Resolve(context.Background(), admin, service.ResolveDisputeRequest{
		DisputeID: dispute.ID,
		Outcome:   domain.OutcomeRefund,
	})
	if !errors.Is(err, service.ErrInvalidStateTransition) {
		t.Fatalf("expected ErrInvalidStateTransition, got %v", err)
	}
}

func TestDispute_ResolveAdminOnlyAndValidatedOutcome(t *testing.T) {
	t.Parallel()

	env := newModerationEnv()
	passenger, reservation := paidReservation(t, env.bookingEnv)
	dispute := openDispute(t, env, passenger, reservation.ID)
	admin := &domain.User{ID: "admin-1", Role: domain.RoleAdmin, Status: domain.UserStatusActive}

	_, err := env.dispute.Resolve(context.Background(), passenger, service.ResolveDisputeRequest{
		DisputeID: dispute.ID,
		Outcome:   domain.OutcomeRefund,
	})
	if !errors.Is(err, service.ErrRoleNotAllowed) {
		t.Fatalf("expected ErrRoleNotAllowed, got %v", err)
	}

	_, err = env.dispute.Resolve(context.Background(), admin, service.ResolveDisputeRequest{
		DisputeID: dispute.ID,
		Outcome:   "SPLIT",
	})
	if !errors.Is(err, service.ErrInvalidOutcome) {
		t.Fatalf("expected ErrInvalidOutcome, got %v", err)
	}
}

func TestDispute_GetRestrictedToParties(t *testing.T) {
	t.Parallel()

	env := newModerationEnv()
	passenger, reservation := paidReservation(t, env.bookingEnv)
	dispute := openDispute(t, env, passenger, reservation.ID)
	driver, _ := env.users.GetByID(context.Background(), "driver-1")
	stranger := env.addPassenger("passenger-2")
	admin := &domain.User{ID: "admin-1", Role: domain.RoleAdmin, Status: domain.UserStatusActive}

	for _, user := range []*domain.User{passenger, driver, admin} {
		if _, err := env.dispute.Get(context.Background(), user, dispute.ID); err != nil {
			t.Errorf("expected %s to read the dispute, got %v", user.ID, err)
		}
	}
	if _, err := env.dispute.Get(context.Background(), stranger, dispute.ID); !errors.Is(err, service.ErrNotDisputeParty) {
		t.Errorf("expected ErrNotDisputeParty, got %v", err)
	}
}

// ──────────────────────────────────────────────
// REVIEWS
// ──────────────────────────────────────────────

// addDriverProfile seeds the rating aggregate for the booking driver.
func addDriverProfile(env *moderationEnv, driverID string) {
	env.profiles.AddProfile(&domain.DriverProfile{
		UserID:        driverID,
		LicenseNumber: "CI-" + driverID,
		Verified:      true,
	})
}

func TestReview_SubmitUpdatesDriverAggregate(t *testing.T) {
	t.Parallel()

	env := newModerationEnv()
	passenger, reservation := paidReservation(t, env.bookingEnv)
	validateBoarding(t, env.bookingEnv, reservation.ID)
	addDriverProfile(env, "driver-1")

	review, err := env.review.Submit(context.Background(), passenger, service.SubmitReviewRequest{
		ReservationID: reservation.ID,
		Rating:        4,
		Comment:       "bonne conduite",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if review.DriverID != "driver-1" {
		t.Errorf("expected driver driver-1, got %s", review.DriverID)
	}

	profile := env.profiles.GetProfile("driver-1")
	if profile.RatingCount != 1 || profile.RatingAvg != 4 {
		t.Errorf("expected aggregate 1/4.0, got %d/%v", profile.RatingCount, profile.RatingAvg)
	}

	// A second validated reservation folds into the running average.
	second := env.addPassenger("passenger-2")
	res2, err := env.engine.Create(context.Background(), second, service.CreateReservationRequest{
		TripID: "trip-1",
		Seats:  1,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := env.escrow.Initiate(context.Background(), second, service.InitiatePaymentRequest{
		ReservationID: res2.ID,
		Provider:      domain.ProviderOrangeMoney,
		PhoneNumber:   "+2250700000002",
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	validateBoarding(t, env.bookingEnv, res2.ID)

	if _, err := env.review.Submit(context.Background(), second, service.SubmitReviewRequest{
		ReservationID: res2.ID,
		Rating:        2,
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	profile = env.profiles.GetProfile("driver-1")
	if profile.RatingCount != 2 || profile.RatingAvg != 3 {
		t.Errorf("expected aggregate 2/3.0, got %d/%v", profile.RatingCount, profile.RatingAvg)
	}
}

func TestReview_ConcurrentSubmitsAllCount(t *testing.T) {
	t.Parallel()

	env := newModerationEnv()
	env.addDriver("driver-1")
	env.addTrip("trip-1", "driver-1", 4, 2500)
	addDriverProfile(env, "driver-1")

	ratings := []int{5, 4, 3, 2}
	passengers := make([]*domain.User, len(ratings))
	reservationIDs := make([]string, len(ratings))
	for i := range ratings {
		passenger := env.addPassenger(fmt.Sprintf("passenger-%d", i+1))
		res, err := env.engine.Create(context.Background(), passenger, service.CreateReservationRequest{
			TripID: "trip-1",
			Seats:  1,
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, err := env.escrow.Initiate(context.Background(), passenger, service.InitiatePaymentRequest{
			ReservationID: res.ID,
			Provider:      domain.ProviderOrangeMoney,
			PhoneNumber:   fmt.Sprintf("+225070000000%d", i+1),
		}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		validateBoarding(t, env.bookingEnv, res.ID)
		passengers[i] = passenger
		reservationIDs[i] = res.ID
	}

	var wg sync.WaitGroup
	errs := make([]error, len(ratings))
	for i := range ratings {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = env.review.Submit(context.Background(), passengers[i], service.SubmitReviewRequest{
				ReservationID: reservationIDs[i],
				Rating:        ratings[i],
			})
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Fatalf("review %d: unexpected error: %v", i, err)
		}
	}

	// Every rating must land in the aggregate even when folds overlap.
	profile := env.profiles.GetProfile("driver-1")
	if profile.RatingCount != 4 {
		t.Errorf("expected 4 ratings counted, got %d", profile.RatingCount)
	}
	if math.Abs(profile.RatingAvg-3.5) > 1e-9 {
		t.Errorf("expected average 3.5, got %v", profile.RatingAvg)
	}
}

func TestReview_OnePerReservation(t *testing.T) {
	t.Parallel()

	env := newModerationEnv()
	passenger, reservation := paidReservation(t, env.bookingEnv)
	validateBoarding(t, env.bookingEnv, reservation.ID)
	addDriverProfile(env, "driver-1")

	if _, err := env.review.Submit(context.Background(), passenger, service.SubmitReviewRequest{
		ReservationID: reservation.ID,
		Rating:        5,
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err := env.review.Submit(context.Background(), passenger, service.SubmitReviewRequest{
		ReservationID: reservation.ID,
		Rating:        1,
	})
	if !errors.Is(err, service.ErrAlreadyReviewed) {
		t.Fatalf("expected ErrAlreadyReviewed, got %v", err)
	}

	// The rejected second review must not touch the aggregate.
	profile := env.profiles.GetProfile("driver-1")
	if profile.RatingCount != 1 || profile.RatingAvg != 5 {
		t.Errorf("expected aggregate 1/5.0, got %d/%v", profile.RatingCount, profile.RatingAvg)
	}
}

func TestReview_RequiresValidatedBoarding(t *testing.T) {
	t.Parallel()

	env := newModerationEnv()
	passenger, reservation := paidReservation(t, env.bookingEnv)
	addDriverProfile(env, "driver-1")

	_, err := env.review.Submit(context.Background(), passenger, service.SubmitReviewRequest{
		ReservationID: reservation.ID,
		Rating:        5,
	})
	if !errors.Is(err, service.ErrInvalidStateTransition) {
		t.Fatalf("expected ErrInvalidStateTransition, got %v", err)
	}
}

func TestReview_RaterMustBePassenger(t *testing.T) {
	t.Parallel()

	env := newModerationEnv()
	_, reservation := paidReservation(t, env.bookingEnv)
	validateBoarding(t, env.bookingEnv, reservation.ID)
	addDriverProfile(env, "driver-1")
	driver, _ := env.users.GetByID(context.Background(), "driver-1")

	_, err := env.review.Submit(context.Background(), driver, service.SubmitReviewRequest{
		ReservationID: reservation.ID,
		Rating:        5,
	})
	if !errors.Is(err, service.ErrNotReservationPassenger) {
		t.Fatalf("expected ErrNotReservationPassenger, got %v", err)
	}
}

func TestReview_RatingBounds(t *testing.T) {
	t.Parallel()

	env := newModerationEnv()
	passenger, reservation := paidReservation(t, env.bookingEnv)
	validateBoarding(t, env.bookingEnv, reservation.ID)
	addDriverProfile(env, "driver-1")

	for _, rating := range []int{0, 6, -1} {
		_, err := env.review.Submit(context.Background(), passenger, service.SubmitReviewRequest{
			ReservationID: reservation.ID,
			Rating:        rating,
		})
		if !errors.Is(err, service.ErrInvalidRating) {
			t.Errorf("rating %d: expected ErrInvalidRating, got %v", rating, err)
		}
	}
}

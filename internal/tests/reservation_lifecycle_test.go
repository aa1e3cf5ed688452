package tests

import (
	"context"
	"errors"
	"testing"
	"time"

	"axisride/internal/domain"
	"axisride/internal/service"
)

// ──────────────────────────────────────────────
// BOOKING TEST ENVIRONMENT
// ──────────────────────────────────────────────

// bookingEnv wires the booking-side services against mocks.
type bookingEnv struct {
	users        *MockUserRepository
	profiles     *MockDriverProfileRepository
	subs         *MockSubscriptionRepository
	trips        *MockTripRepository
	reservations *MockReservationRepository
	payments     *MockPaymentRepository
	locks        *MockLockStore
	events       *RecordingPublisher
	gateway      *service.MockGateway

	subscription *service.SubscriptionService
	engine       *service.ReservationEngine
	escrow       *service.EscrowService
}

func newBookingEnv() *bookingEnv {
	env := &bookingEnv{
		users:        NewMockUserRepository(),
		profiles:     NewMockDriverProfileRepository(),
		subs:         NewMockSubscriptionRepository(),
		trips:        NewMockTripRepository(),
		reservations: NewMockReservationRepository(),
		payments:     NewMockPaymentRepository(),
		locks:        NewMockLockStore(),
		events:       NewRecordingPublisher(),
		gateway:      service.NewMockGateway(),
	}

	env.subscription = service.NewSubscriptionService(env.subs, env.gateway)
	store := NewMockReservationStore(env.trips, env.reservations)
	env.engine = service.NewReservationEngine(store, env.trips, env.reservations, env.subscription, nil, env.events)
	env.escrow = service.NewEscrowService(env.payments, env.engine, env.gateway, env.locks, env.events)

	return env
}

// addPassenger seeds an active passenger with a running trial.
func (env *bookingEnv) addPassenger(id string) *domain.User {
	user := &domain.User{
		ID:     id,
		Phone:  "+225" + id,
		Role:   domain.RolePassenger,
		Status: domain.UserStatusActive,
	}
	env.users.AddUser(user)
	env.subs.AddSubscription(&domain.Subscription{
		UserID:     id,
		TrialUsed:  true,
		TrialUntil: time.Now().Add(24 * time.Hour),
	})
	return user
}

// addDriver seeds an active driver account.
func (env *bookingEnv) addDriver(id string) *domain.User {
	user := &domain.User{
		ID:     id,
		Phone:  "+225" + id,
		Role:   domain.RoleDriver,
		Status: domain.UserStatusActive,
	}
	env.users.AddUser(user)
	return user
}

// addTrip seeds an active future trip.
func (env *bookingEnv) addTrip(id, driverID string, seats int, price float64) *domain.Trip {
	trip := &domain.Trip{
		ID:             id,
		DriverID:       driverID,
		Origin:         "Abidjan",
		Destination:    "Yamoussoukro",
		DepartureTime:  time.Now().Add(6 * time.Hour),
		PricePerSeat:   price,
		Currency:       "XOF",
		Seats:          seats,
		SeatsAvailable: seats,
		Status:         domain.TripStatusActive,
	}
	env.trips.AddTrip(trip)
	return trip
}

// ──────────────────────────────────────────────
// RESERVATION LIFECYCLE
// ──────────────────────────────────────────────

func TestReservation_CreateSnapshotsPriceAndHoldsSeats(t *testing.T) {
	t.Parallel()

	env := newBookingEnv()
	passenger := env.addPassenger("passenger-1")
	env.addDriver("driver-1")
	env.addTrip("trip-1", "driver-1", 4, 2500)

	reservation, err := env.engine.Create(context.Background(), passenger, service.CreateReservationRequest{
		TripID: "trip-1",
		Seats:  2,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if reservation.Status != domain.ReservationStatusPendingPayment {
		t.Errorf("expected status %s, got %s", domain.ReservationStatusPendingPayment, reservation.Status)
	}
	if reservation.Amount != 5000 {
		t.Errorf("expected amount 5000, got %v", reservation.Amount)
	}
	if len(reservation.Code) != 8 {
		t.Errorf("expected 8-character boarding code, got %q", reservation.Code)
	}

	trip := env.trips.GetTrip("trip-1")
	if trip.SeatsAvailable != 2 {
		t.Errorf("expected 2 seats left, got %d", trip.SeatsAvailable)
	}

	topics := env.events.Topics()
	if len(topics) != 1 || topics[0] != service.TopicReservationCreated {
		t.Errorf("expected a single %s event, got %v", service.TopicReservationCreated, topics)
	}

	// Later price changes never touch the snapshotted amount.
	trip.PricePerSeat = 9999
	stored := env.reservations.GetReservation(reservation.ID)
	if stored.Amount != 5000 {
		t.Errorf("expected snapshotted amount 5000, got %v", stored.Amount)
	}
}

func TestReservation_CreateRequiresSubscription(t *testing.T) {
	t.Parallel()

	env := newBookingEnv()
	env.addDriver("driver-1")
	env.addTrip("trip-1", "driver-1", 4, 2500)

	// Passenger without any subscription row.
	passenger := &domain.User{ID: "passenger-1", Role: domain.RolePassenger, Status: domain.UserStatusActive}
	env.users.AddUser(passenger)

	_, err := env.engine.Create(context.Background(), passenger, service.CreateReservationRequest{
		TripID: "trip-1",
		Seats:  1,
	})
	if !errors.Is(err, service.ErrSubscriptionRequired) {
		t.Fatalf("expected ErrSubscriptionRequired, got %v", err)
	}

	// A rejected gate must leave no side effect.
	if env.trips.GetTrip("trip-1").SeatsAvailable != 4 {
		t.Error("seats must not move when the gate rejects")
	}
	if env.reservations.CountReservations() != 0 {
		t.Error("no reservation may exist after a rejected gate")
	}
}

func TestReservation_CreateRejectsUnbookableTrips(t *testing.T) {
	t.Parallel()

	env := newBookingEnv()
	passenger := env.addPassenger("passenger-1")
	env.addDriver("driver-1")

	departed := env.addTrip("trip-departed", "driver-1", 4, 2000)
	departed.DepartureTime = time.Now().Add(-time.Hour)

	cancelled := env.addTrip("trip-cancelled", "driver-1", 4, 2000)
	cancelled.Status = domain.TripStatusCancelled

	for _, tripID := range []string{"trip-departed", "trip-cancelled"} {
		_, err := env.engine.Create(context.Background(), passenger, service.CreateReservationRequest{
			TripID: tripID,
			Seats:  1,
		})
		if !errors.Is(err, service.ErrTripNotBookable) {
			t.Errorf("trip %s: expected ErrTripNotBookable, got %v", tripID, err)
		}
	}
}

func TestReservation_CancelPendingReleasesSeats(t *testing.T) {
	t.Parallel()

	env := newBookingEnv()
	passenger := env.addPassenger("passenger-1")
	env.addDriver("driver-1")
	env.addTrip("trip-1", "driver-1", 4, 2500)

	reservation, err := env.engine.Create(context.Background(), passenger, service.CreateReservationRequest{
		TripID: "trip-1",
		Seats:  3,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cancelled, err := env.engine.Cancel(context.Background(), passenger, reservation.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cancelled.Status != domain.ReservationStatusCancelled {
		t.Errorf("expected status %s, got %s", domain.ReservationStatusCancelled, cancelled.Status)
	}
	if env.trips.GetTrip("trip-1").SeatsAvailable != 4 {
		t.Errorf("expected all seats back, got %d", env.trips.GetTrip("trip-1").SeatsAvailable)
	}

	// Cancelling again is a no-op, and releases nothing twice.
	if _, err := env.engine.Cancel(context.Background(), passenger, reservation.ID); err != nil {
		t.Fatalf("second cancel must be a no-op, got %v", err)
	}
	if env.trips.GetTrip("trip-1").SeatsAvailable != 4 {
		t.Error("idempotent cancel must not release seats twice")
	}
}

func TestReservation_CancelRestrictedToPassenger(t *testing.T) {
	t.Parallel()

	env := newBookingEnv()
	passenger := env.addPassenger("passenger-1")
	other := env.addPassenger("passenger-2")
	env.addDriver("driver-1")
	env.addTrip("trip-1", "driver-1", 4, 2500)

	reservation, err := env.engine.Create(context.Background(), passenger, service.CreateReservationRequest{
		TripID: "trip-1",
		Seats:  1,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := env.engine.Cancel(context.Background(), other, reservation.ID); !errors.Is(err, service.ErrNotReservationPassenger) {
		t.Errorf("expected ErrNotReservationPassenger, got %v", err)
	}

	admin := &domain.User{ID: "admin-1", Role: domain.RoleAdmin, Status: domain.UserStatusActive}
	if _, err := env.engine.Cancel(context.Background(), admin, reservation.ID); err != nil {
		t.Errorf("admin cancel must be allowed, got %v", err)
	}
}

func TestReservation_PaidCannotBeCancelledDirectly(t *testing.T) {
	t.Parallel()

	env := newBookingEnv()
	passenger := env.addPassenger("passenger-1")
	env.addDriver("driver-1")
	env.addTrip("trip-1", "driver-1", 4, 2500)

	reservation, err := env.engine.Create(context.Background(), passenger, service.CreateReservationRequest{
		TripID: "trip-1",
		Seats:  1,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := env.engine.MarkPaid(context.Background(), reservation.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := env.engine.Cancel(context.Background(), passenger, reservation.ID); !errors.Is(err, service.ErrInvalidStateTransition) {
		t.Errorf("expected ErrInvalidStateTransition, got %v", err)
	}
}

func TestReservation_MarkPaidTwiceFails(t *testing.T) {
	t.Parallel()

	env := newBookingEnv()
	passenger := env.addPassenger("passenger-1")
	env.addDriver("driver-1")
	env.addTrip("trip-1", "driver-1", 4, 2500)

	reservation, err := env.engine.Create(context.Background(), passenger, service.CreateReservationRequest{
		TripID: "trip-1",
		Seats:  1,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := env.engine.MarkPaid(context.Background(), reservation.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := env.engine.MarkPaid(context.Background(), reservation.ID); !errors.Is(err, service.ErrInvalidStateTransition) {
		t.Errorf("expected ErrInvalidStateTransition on double payment, got %v", err)
	}
}

// ──────────────────────────────────────────────
// BOARDING VALIDATION
// ──────────────────────────────────────────────

func TestReservation_ValidateBoarding(t *testing.T) {
	t.Parallel()

	env := newBookingEnv()
	passenger := env.addPassenger("passenger-1")
	driver := env.addDriver("driver-1")
	otherDriver := env.addDriver("driver-2")
	env.addTrip("trip-1", "driver-1", 4, 2500)

	reservation, err := env.engine.Create(context.Background(), passenger, service.CreateReservationRequest{
		TripID: "trip-1",
		Seats:  1,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Not paid yet.
	if _, err := env.engine.ValidateBoarding(context.Background(), driver, reservation.ID, reservation.Code); !errors.Is(err, service.ErrInvalidStateTransition) {
		t.Errorf("expected ErrInvalidStateTransition before payment, got %v", err)
	}

	if err := env.engine.MarkPaid(context.Background(), reservation.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Wrong driver.
	if _, err := env.engine.ValidateBoarding(context.Background(), otherDriver, reservation.ID, reservation.Code); !errors.Is(err, service.ErrNotTripDriver) {
		t.Errorf("expected ErrNotTripDriver, got %v", err)
	}

	// Wrong code.
	if _, err := env.engine.ValidateBoarding(context.Background(), driver, reservation.ID, "WRONGCODE"); !errors.Is(err, service.ErrCodeMismatch) {
		t.Errorf("expected ErrCodeMismatch, got %v", err)
	}

	validated, err := env.engine.ValidateBoarding(context.Background(), driver, reservation.ID, reservation.Code)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if validated.Status != domain.ReservationStatusValidated {
		t.Errorf("expected status %s, got %s", domain.ReservationStatusValidated, validated.Status)
	}

	// Validating again is a no-op.
	if _, err := env.engine.ValidateBoarding(context.Background(), driver, reservation.ID, reservation.Code); err != nil {
		t.Errorf("second validation must be a no-op, got %v", err)
	}
}

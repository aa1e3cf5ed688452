package service

import (
	"context"
	"crypto/rand"
	"database/sql"
	"math/big"
	"time"

	"github.com/google/uuid"

	"axisride/internal/domain"
	"axisride/internal/redis"
	"axisride/internal/repository"
	"axisride/internal/repository/postgres"
)

// Boarding codes use an unambiguous uppercase alphabet (no 0/O/1/I) so
// drivers can read them back over a shoulder.
const (
	codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	codeLength   = 8
)

// ReservationStore runs the writes that must commit together: the seat
// movement on the trip and the reservation row change.
type ReservationStore interface {
	// CreateWithSeatHold decrements the trip's seats and inserts the
	// reservation as one atomic unit. Propagates
	// repository.ErrInsufficientSeats.
	CreateWithSeatHold(ctx context.Context, reservation *domain.Reservation) error

	// TransitionWithSeatRelease moves the reservation between statuses
	// and gives the seats back to the trip as one atomic unit. Returns
	// repository.ErrStateConflict if the reservation was not in the
	// from status.
	TransitionWithSeatRelease(ctx context.Context, reservation *domain.Reservation, from, to domain.ReservationStatus) error
}

// TxReservationStore is the PostgreSQL ReservationStore, running both
// writes inside one *sql.Tx.
type TxReservationStore struct {
	db *sql.DB
}

// NewTxReservationStore creates a ReservationStore over the database.
func NewTxReservationStore(db *sql.DB) *TxReservationStore {
	return &TxReservationStore{db: db}
}

// CreateWithSeatHold decrements seats and inserts the reservation in
// one transaction.
func (s *TxReservationStore) CreateWithSeatHold(ctx context.Context, reservation *domain.Reservation) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	txTripRepo := postgres.NewTripRepositoryWithTx(tx)
	txReservationRepo := postgres.NewReservationRepositoryWithTx(tx)

	if err = txTripRepo.ReserveSeats(ctx, reservation.TripID, reservation.Seats); err != nil {
		return err
	}

	if err = txReservationRepo.Create(ctx, reservation); err != nil {
		return err
	}

	return tx.Commit()
}

// TransitionWithSeatRelease moves the reservation status and releases
// seats in one transaction. A lost transition race releases nothing.
func (s *TxReservationStore) TransitionWithSeatRelease(ctx context.Context, reservation *domain.Reservation, from, to domain.ReservationStatus) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	txReservationRepo := postgres.NewReservationRepositoryWithTx(tx)
	txTripRepo := postgres.NewTripRepositoryWithTx(tx)

	if err = txReservationRepo.TransitionStatus(ctx, reservation.ID, from, to); err != nil {
		return err
	}

	if err = txTripRepo.ReleaseSeats(ctx, reservation.TripID, reservation.Seats); err != nil {
		return err
	}

	return tx.Commit()
}

// Ensure TxReservationStore implements ReservationStore.
var _ ReservationStore = (*TxReservationStore)(nil)

// ReservationEngine is the state machine at the center of the booking
// flow. It is the only component allowed to move seat inventory once a
// reservation exists, and the only one that transitions reservation
// status.
type ReservationEngine struct {
	store           ReservationStore
	tripRepo        repository.TripRepository
	reservationRepo repository.ReservationRepository
	subscription    *SubscriptionService
	cacheStore      redis.CacheStoreInterface
	events          EventPublisher
}

// NewReservationEngine creates a new ReservationEngine.
func NewReservationEngine(
	store ReservationStore,
	tripRepo repository.TripRepository,
	reservationRepo repository.ReservationRepository,
	subscription *SubscriptionService,
	cacheStore redis.CacheStoreInterface,
	events EventPublisher,
) *ReservationEngine {
	return &ReservationEngine{
		store:           store,
		tripRepo:        tripRepo,
		reservationRepo: reservationRepo,
		subscription:    subscription,
		cacheStore:      cacheStore,
		events:          events,
	}
}

// CreateReservationRequest contains the parameters for creating a
// reservation.
type CreateReservationRequest struct {
	TripID string
	Seats  int
}

// Create reserves seats on a trip for the passenger. The seat
// decrement and the reservation insert commit as one transaction: two
// concurrent creates against the last seat cannot both succeed. The
// amount is snapshotted from the trip's current price; later price
// changes never touch existing reservations.
func (e *ReservationEngine) Create(ctx context.Context, passenger *domain.User, req CreateReservationRequest) (*domain.Reservation, error) {
	if req.Seats < 1 {
		return nil, ErrInvalidSeatCount
	}

	// Gate first: a rejected gate must leave no side effect.
	if err := e.subscription.AssertFeatureAllowed(ctx, passenger); err != nil {
		return nil, err
	}

	trip, err := e.tripRepo.GetByID(ctx, req.TripID)
	if err != nil {
		return nil, err
	}

	if !trip.Bookable(time.Now()) {
		return nil, ErrTripNotBookable
	}

	code, err := generateBoardingCode()
	if err != nil {
		return nil, err
	}

	now := time.Now()
	reservation := &domain.Reservation{
		ID:          uuid.New().String(),
		TripID:      trip.ID,
		PassengerID: passenger.ID,
		Seats:       req.Seats,
		Amount:      trip.PricePerSeat * float64(req.Seats),
		Code:        code,
		Status:      domain.ReservationStatusPendingPayment,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := e.store.CreateWithSeatHold(ctx, reservation); err != nil {
		return nil, err
	}

	e.invalidateTrip(ctx, trip.ID)
	e.events.Publish(TopicReservationCreated, reservation.ID, map[string]any{
		"reservation_id": reservation.ID,
		"trip_id":        reservation.TripID,
		"passenger_id":   reservation.PassengerID,
		"seats":          reservation.Seats,
		"amount":         reservation.Amount,
	})

	return reservation, nil
}

// MarkPaid transitions a reservation to PAID. Invoked only by the
// escrow processor on gateway success. A reservation that is no longer
// pending (already paid, cancelled) surfaces ErrInvalidStateTransition
// so the caller can unwind the charge.
func (e *ReservationEngine) MarkPaid(ctx context.Context, reservationID string) error {
	err := e.reservationRepo.TransitionStatus(ctx, reservationID,
		domain.ReservationStatusPendingPayment, domain.ReservationStatusPaid)
	if err != nil {
		if err == repository.ErrStateConflict {
			return ErrInvalidStateTransition
		}
		return err
	}

	e.events.Publish(TopicReservationPaid, reservationID, map[string]string{
		"reservation_id": reservationID,
	})

	return nil
}

// ValidateBoarding confirms, driver-side, that the passenger boarded.
// Requires the exact boarding code. Validating an already validated
// reservation is a no-op.
func (e *ReservationEngine) ValidateBoarding(ctx context.Context, driver *domain.User, reservationID, code string) (*domain.Reservation, error) {
	reservation, err := e.reservationRepo.GetByID(ctx, reservationID)
	if err != nil {
		return nil, err
	}

	trip, err := e.tripRepo.GetByID(ctx, reservation.TripID)
	if err != nil {
		return nil, err
	}
	if trip.DriverID != driver.ID {
		return nil, ErrNotTripDriver
	}

	if reservation.Status == domain.ReservationStatusValidated {
		return reservation, nil
	}
	if reservation.Status != domain.ReservationStatusPaid {
		return nil, ErrInvalidStateTransition
	}
	if reservation.Code != code {
		return nil, ErrCodeMismatch
	}

	err = e.reservationRepo.TransitionStatus(ctx, reservationID,
		domain.ReservationStatusPaid, domain.ReservationStatusValidated)
	if err != nil {
		if err == repository.ErrStateConflict {
			return nil, ErrInvalidStateTransition
		}
		return nil, err
	}

	reservation.Status = domain.ReservationStatusValidated
	return reservation, nil
}

// Cancel cancels a pending reservation and releases its seats.
// Cancelling an already cancelled reservation is a no-op; a paid
// reservation must go through refund instead.
func (e *ReservationEngine) Cancel(ctx context.Context, passenger *domain.User, reservationID string) (*domain.Reservation, error) {
	reservation, err := e.reservationRepo.GetByID(ctx, reservationID)
	if err != nil {
		return nil, err
	}

	if passenger.Role != domain.RoleAdmin && reservation.PassengerID != passenger.ID {
		return nil, ErrNotReservationPassenger
	}

	if reservation.Status == domain.ReservationStatusCancelled {
		return reservation, nil
	}
	if reservation.Status != domain.ReservationStatusPendingPayment {
		return nil, ErrInvalidStateTransition
	}

	if err := e.releaseAndTransition(ctx, reservation,
		domain.ReservationStatusPendingPayment, domain.ReservationStatusCancelled); err != nil {
		return nil, err
	}

	reservation.Status = domain.ReservationStatusCancelled
	return reservation, nil
}

// Refund transitions a paid reservation to REFUNDED and releases its
// seats. The money side is driven by the escrow processor, which calls
// this after unwinding the held funds. Refunding an already refunded
// reservation is a no-op.
func (e *ReservationEngine) Refund(ctx context.Context, reservationID string) (*domain.Reservation, error) {
	reservation, err := e.reservationRepo.GetByID(ctx, reservationID)
	if err != nil {
		return nil, err
	}

	if reservation.Status == domain.ReservationStatusRefunded {
		return reservation, nil
	}
	if reservation.Status != domain.ReservationStatusPaid {
		return nil, ErrInvalidStateTransition
	}

	if err := e.releaseAndTransition(ctx, reservation,
		domain.ReservationStatusPaid, domain.ReservationStatusRefunded); err != nil {
		return nil, err
	}

	reservation.Status = domain.ReservationStatusRefunded
	return reservation, nil
}

// Get retrieves a reservation, restricted to its passenger, the trip's
// driver, or an admin.
func (e *ReservationEngine) Get(ctx context.Context, user *domain.User, reservationID string) (*domain.Reservation, error) {
	reservation, err := e.reservationRepo.GetByID(ctx, reservationID)
	if err != nil {
		return nil, err
	}

	if user.Role == domain.RoleAdmin || reservation.PassengerID == user.ID {
		return reservation, nil
	}

	trip, err := e.tripRepo.GetByID(ctx, reservation.TripID)
	if err != nil {
		return nil, err
	}
	if trip.DriverID == user.ID {
		return reservation, nil
	}

	return nil, ErrNotReservationPassenger
}

// List returns the reservations visible to the user: their own for a
// passenger, everything for an admin.
func (e *ReservationEngine) List(ctx context.Context, user *domain.User) ([]*domain.Reservation, error) {
	if user.Role == domain.RoleAdmin {
		return e.reservationRepo.ListAll(ctx)
	}
	return e.reservationRepo.ListByPassenger(ctx, user.ID)
}

// ListByTrip returns the reservations against a trip, restricted to
// the trip's driver or an admin.
func (e *ReservationEngine) ListByTrip(ctx context.Context, user *domain.User, tripID string) ([]*domain.Reservation, error) {
	trip, err := e.tripRepo.GetByID(ctx, tripID)
	if err != nil {
		return nil, err
	}
	if user.Role != domain.RoleAdmin && trip.DriverID != user.ID {
		return nil, ErrNotTripDriver
	}
	return e.reservationRepo.ListByTrip(ctx, tripID)
}

// releaseAndTransition runs the status transition and the seat release
// as one transaction, so a failed transition never leaks seats and a
// lost race releases nothing.
func (e *ReservationEngine) releaseAndTransition(ctx context.Context, reservation *domain.Reservation, from, to domain.ReservationStatus) error {
	if err := e.store.TransitionWithSeatRelease(ctx, reservation, from, to); err != nil {
		if err == repository.ErrStateConflict {
			return ErrInvalidStateTransition
		}
		return err
	}

	e.invalidateTrip(ctx, reservation.TripID)
	return nil
}

func (e *ReservationEngine) invalidateTrip(ctx context.Context, tripID string) {
	if e.cacheStore != nil {
		_ = e.cacheStore.InvalidateTrip(ctx, tripID)
	}
}

// generateBoardingCode returns a random human-readable boarding code.
func generateBoardingCode() (string, error) {
	code := make([]byte, codeLength)
	max := big.NewInt(int64(len(codeAlphabet)))
	for i := range code {
		v, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		code[i] = codeAlphabet[v.Int64()]
	}
	return string(code), nil
}

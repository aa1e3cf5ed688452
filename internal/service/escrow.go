package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"axisride/internal/domain"
	"axisride/internal/redis"
	"axisride/internal/repository"
)

// paymentLockTTL bounds how long a reservation's payment lock can stay
// held if a process dies mid-charge.
const paymentLockTTL = 30 * time.Second

// EscrowService charges passengers through the external gateway and
// holds the captured funds in escrow until boarding is validated. It is
// the only component that talks to the payment gateway and the only one
// that moves escrow status.
type EscrowService struct {
	paymentRepo repository.PaymentRepository
	engine      *ReservationEngine
	gateway     PaymentGateway
	lockStore   redis.LockStoreInterface
	events      EventPublisher
}

// NewEscrowService creates a new EscrowService.
func NewEscrowService(
	paymentRepo repository.PaymentRepository,
	engine *ReservationEngine,
	gateway PaymentGateway,
	lockStore redis.LockStoreInterface,
	events EventPublisher,
) *EscrowService {
	return &EscrowService{
		paymentRepo: paymentRepo,
		engine:      engine,
		gateway:     gateway,
		lockStore:   lockStore,
		events:      events,
	}
}

// InitiatePaymentRequest carries the input for a payment attempt.
type InitiatePaymentRequest struct {
	ReservationID string
	Provider      domain.PaymentProvider
	PhoneNumber   string
	CardToken     string
}

// Initiate charges the reservation amount through the gateway and, on
// success, holds the funds in escrow and marks the reservation paid.
// Concurrent attempts for the same reservation are serialized by a
// redis lock; an attempt that wins the gateway but loses the
// reservation transition refunds its own charge.
func (s *EscrowService) Initiate(ctx context.Context, passenger *domain.User, req InitiatePaymentRequest) (*domain.Payment, error) {
	if err := validatePaymentDetails(req); err != nil {
		return nil, err
	}

	reservation, err := s.engine.reservationRepo.GetByID(ctx, req.ReservationID)
	if err != nil {
		return nil, err
	}

	if passenger.Role != domain.RoleAdmin && reservation.PassengerID != passenger.ID {
		return nil, ErrNotReservationPassenger
	}

	if reservation.Status != domain.ReservationStatusPendingPayment {
		return nil, ErrInvalidStateTransition
	}

	acquired, err := s.lockStore.AcquireReservationLock(ctx, reservation.ID, paymentLockTTL)
	if err != nil {
		return nil, err
	}
	if !acquired {
		return nil, ErrPaymentInProgress
	}
	defer func() {
		_ = s.lockStore.ReleaseReservationLock(context.WithoutCancel(ctx), reservation.ID)
	}()

	now := time.Now()
	payment := &domain.Payment{
		ID:            uuid.New().String(),
		ReservationID: reservation.ID,
		Provider:      req.Provider,
		PhoneNumber:   req.PhoneNumber,
		CardToken:     req.CardToken,
		Amount:        reservation.Amount,
		Status:        domain.PaymentStatusInitiated,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.paymentRepo.Create(ctx, payment); err != nil {
		return nil, err
	}

	var txRef string
	chargeErr := callGateway(ctx, func(ctx context.Context) error {
		ref, err := s.gateway.Charge(ctx, payment.Provider, paymentInstrument(req), payment.Amount)
		if err != nil {
			return err
		}
		txRef = ref
		return nil
	})
	if chargeErr != nil {
		_ = payment.Fail()
		if err := s.paymentRepo.UpdateStatus(ctx, payment); err != nil {
			return nil, err
		}
		if errors.Is(chargeErr, ErrGatewayTimeout) {
			return payment, ErrGatewayTimeout
		}
		return payment, ErrGatewayFailure
	}

	if err := payment.Succeed(txRef); err != nil {
		return nil, err
	}
	if err := s.paymentRepo.UpdateStatus(ctx, payment); err != nil {
		return nil, err
	}

	if err := s.engine.MarkPaid(ctx, reservation.ID); err != nil {
		// The reservation was cancelled or paid by another attempt while
		// the gateway call ran. The money must not stay held.
		s.unwindCharge(ctx, payment)
		return nil, err
	}

	return payment, nil
}

// Release moves held funds for a reservation to the driver. Requires
// the passenger's boarding to have been validated; admin only.
func (s *EscrowService) Release(ctx context.Context, actor *domain.User, reservationID string) (*domain.Payment, error) {
	if actor.Role != domain.RoleAdmin {
		return nil, ErrRoleNotAllowed
	}

	reservation, err := s.engine.reservationRepo.GetByID(ctx, reservationID)
	if err != nil {
		return nil, err
	}

	if reservation.Status != domain.ReservationStatusValidated {
		return nil, ErrPrematureRelease
	}

	payment, err := s.paymentRepo.GetHeldByReservationID(ctx, reservationID)
	if err != nil {
		if err == repository.ErrNotFound {
			return nil, ErrInvalidStateTransition
		}
		return nil, err
	}

	err = s.paymentRepo.TransitionEscrow(ctx, payment.ID, domain.EscrowStatusHeld, domain.EscrowStatusReleased)
	if err != nil {
		if err == repository.ErrStateConflict {
			return nil, ErrInvalidStateTransition
		}
		return nil, err
	}
	payment.EscrowStatus = domain.EscrowStatusReleased

	s.events.Publish(TopicEscrowReleased, reservationID, map[string]any{
		"reservation_id": reservationID,
		"payment_id":     payment.ID,
		"amount":         payment.Amount,
	})

	return payment, nil
}

// Refund returns held funds for a reservation to the passenger and
// moves the reservation to refunded. Admin only; dispute resolution
// goes through RefundReservation directly.
func (s *EscrowService) Refund(ctx context.Context, actor *domain.User, reservationID string) (*domain.Payment, error) {
	if actor.Role != domain.RoleAdmin {
		return nil, ErrRoleNotAllowed
	}
	return s.RefundReservation(ctx, reservationID)
}

// RefundReservation unwinds the held escrow for a reservation: the
// guarded escrow transition claims the refund, the gateway returns the
// money, and the reservation moves to refunded when it was still paid.
// A reservation already validated keeps its status; only the money
// moves.
func (s *EscrowService) RefundReservation(ctx context.Context, reservationID string) (*domain.Payment, error) {
	payment, err := s.paymentRepo.GetHeldByReservationID(ctx, reservationID)
	if err != nil {
		if err == repository.ErrNotFound {
			return nil, ErrInvalidStateTransition
		}
		return nil, err
	}

	err = s.paymentRepo.TransitionEscrow(ctx, payment.ID, domain.EscrowStatusHeld, domain.EscrowStatusRefunded)
	if err != nil {
		if err == repository.ErrStateConflict {
			return nil, ErrInvalidStateTransition
		}
		return nil, err
	}
	payment.EscrowStatus = domain.EscrowStatusRefunded

	refundErr := callGateway(ctx, func(ctx context.Context) error {
		return s.gateway.Refund(ctx, payment.TransactionRef, payment.Amount)
	})
	if refundErr != nil {
		// The gateway declined the transfer: the money never moved, so
		// the claim must not stand. Reverting to HELD keeps the refund
		// retryable.
		_ = s.paymentRepo.TransitionEscrow(context.WithoutCancel(ctx), payment.ID,
			domain.EscrowStatusRefunded, domain.EscrowStatusHeld)
		payment.EscrowStatus = domain.EscrowStatusHeld
		return nil, refundErr
	}

	if _, err := s.engine.Refund(ctx, reservationID); err != nil && err != ErrInvalidStateTransition {
		return nil, err
	}

	s.events.Publish(TopicEscrowRefunded, reservationID, map[string]any{
		"reservation_id": reservationID,
		"payment_id":     payment.ID,
		"amount":         payment.Amount,
	})

	return payment, nil
}

// Get retrieves a payment, restricted to the paying passenger or an
// admin.
func (s *EscrowService) Get(ctx context.Context, user *domain.User, paymentID string) (*domain.Payment, error) {
	payment, err := s.paymentRepo.GetByID(ctx, paymentID)
	if err != nil {
		return nil, err
	}

	if user.Role == domain.RoleAdmin {
		return payment, nil
	}

	reservation, err := s.engine.reservationRepo.GetByID(ctx, payment.ReservationID)
	if err != nil {
		return nil, err
	}
	if reservation.PassengerID != user.ID {
		return nil, ErrNotReservationPassenger
	}

	return payment, nil
}

// ListByReservation returns the payment attempts for a reservation,
// restricted to its passenger or an admin.
func (s *EscrowService) ListByReservation(ctx context.Context, user *domain.User, reservationID string) ([]*domain.Payment, error) {
	if user.Role != domain.RoleAdmin {
		reservation, err := s.engine.reservationRepo.GetByID(ctx, reservationID)
		if err != nil {
			return nil, err
		}
		if reservation.PassengerID != user.ID {
			return nil, ErrNotReservationPassenger
		}
	}
	return s.paymentRepo.ListByReservation(ctx, reservationID)
}

// ListAll returns every payment (admin surface).
func (s *EscrowService) ListAll(ctx context.Context, actor *domain.User) ([]*domain.Payment, error) {
	if actor.Role != domain.RoleAdmin {
		return nil, ErrRoleNotAllowed
	}
	return s.paymentRepo.ListAll(ctx)
}

// unwindCharge refunds a charge whose reservation transition was lost
// and marks the escrow refunded. Runs on a best-effort basis; the
// guarded escrow transition keeps a later manual refund from doubling.
func (s *EscrowService) unwindCharge(ctx context.Context, payment *domain.Payment) {
	ctx = context.WithoutCancel(ctx)

	refundErr := callGateway(ctx, func(ctx context.Context) error {
		return s.gateway.Refund(ctx, payment.TransactionRef, payment.Amount)
	})
	if refundErr != nil {
		return
	}

	_ = s.paymentRepo.TransitionEscrow(ctx, payment.ID,
		domain.EscrowStatusHeld, domain.EscrowStatusRefunded)
}

func validatePaymentDetails(req InitiatePaymentRequest) error {
	switch req.Provider {
	case domain.ProviderOrangeMoney, domain.ProviderMTNMoMo:
		if req.PhoneNumber == "" {
			return ErrInvalidPaymentDetails
		}
	case domain.ProviderCard:
		if req.CardToken == "" {
			return ErrInvalidPaymentDetails
		}
	default:
		return ErrInvalidProvider
	}
	return nil
}

func paymentInstrument(req InitiatePaymentRequest) string {
	if req.Provider == domain.ProviderCard {
		return req.CardToken
	}
	return req.PhoneNumber
}

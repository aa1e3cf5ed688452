package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"axisride/internal/domain"
	"axisride/internal/repository"
)

// DisputeService handles contested reservations. Either party of a
// paid or validated reservation can open a dispute; an admin resolves
// it with an outcome that may move the escrowed funds.
type DisputeService struct {
	disputeRepo     repository.DisputeRepository
	reservationRepo repository.ReservationRepository
	tripRepo        repository.TripRepository
	escrow          *EscrowService
}

// NewDisputeService creates a new DisputeService.
func NewDisputeService(
	disputeRepo repository.DisputeRepository,
	reservationRepo repository.ReservationRepository,
	tripRepo repository.TripRepository,
	escrow *EscrowService,
) *DisputeService {
	return &DisputeService{
		disputeRepo:     disputeRepo,
		reservationRepo: reservationRepo,
		tripRepo:        tripRepo,
		escrow:          escrow,
	}
}

// OpenDisputeRequest carries the input for opening a dispute.
type OpenDisputeRequest struct {
	ReservationID string
	Reason        string
	Description   string
}

// Open raises a dispute against a reservation. The raiser must be the
// reservation's passenger or the trip's driver, the reservation must
// carry money (paid or validated), and the reservation must not have
// another open dispute.
func (s *DisputeService) Open(ctx context.Context, raiser *domain.User, req OpenDisputeRequest) (*domain.Dispute, error) {
	reservation, err := s.reservationRepo.GetByID(ctx, req.ReservationID)
	if err != nil {
		return nil, err
	}

	if reservation.Status != domain.ReservationStatusPaid &&
		reservation.Status != domain.ReservationStatusValidated {
		return nil, ErrInvalidStateTransition
	}

	if reservation.PassengerID != raiser.ID {
		trip, err := s.tripRepo.GetByID(ctx, reservation.TripID)
		if err != nil {
			return nil, err
		}
		if trip.DriverID != raiser.ID {
			return nil, ErrNotDisputeParty
		}
	}

	dispute := &domain.Dispute{
		ID:            uuid.New().String(),
		ReservationID: reservation.ID,
		RaisedBy:      raiser.ID,
		Reason:        req.Reason,
		Description:   req.Description,
		Status:        domain.DisputeStatusOpen,
		Outcome:       domain.OutcomeNone,
		CreatedAt:     time.Now(),
	}

	if err := s.disputeRepo.Create(ctx, dispute); err != nil {
		if err == repository.ErrDuplicate {
			return nil, ErrDuplicateOpenDispute
		}
		return nil, err
	}

	return dispute, nil
}

// ResolveDisputeRequest carries the admin's decision.
type ResolveDisputeRequest struct {
	DisputeID  string
	Resolution string
	Outcome    domain.DisputeOutcome
}

// Resolve closes an open dispute. Outcome REFUND returns the escrowed
// funds to the passenger, RELEASE pays the driver, NONE leaves the
// money where it is. Admin only. RELEASE goes through the escrow
// processor's release, so it still requires a validated boarding.
func (s *DisputeService) Resolve(ctx context.Context, actor *domain.User, req ResolveDisputeRequest) (*domain.Dispute, error) {
	if actor.Role != domain.RoleAdmin {
		return nil, ErrRoleNotAllowed
	}

	switch req.Outcome {
	case domain.OutcomeRefund, domain.OutcomeRelease, domain.OutcomeNone:
	default:
		return nil, ErrInvalidOutcome
	}

	dispute, err := s.disputeRepo.GetByID(ctx, req.DisputeID)
	if err != nil {
		return nil, err
	}

	if err := dispute.Resolve(req.Resolution, req.Outcome, time.Now()); err != nil {
		return nil, ErrInvalidStateTransition
	}

	// Move the money before recording the resolution so a failed
	// transfer leaves the dispute open for a retry.
	switch req.Outcome {
	case domain.OutcomeRefund:
		if _, err := s.escrow.RefundReservation(ctx, dispute.ReservationID); err != nil {
			return nil, err
		}
	case domain.OutcomeRelease:
		if _, err := s.escrow.Release(ctx, actor, dispute.ReservationID); err != nil {
			return nil, err
		}
	}

	if err := s.disputeRepo.Update(ctx, dispute); err != nil {
		return nil, err
	}

	return dispute, nil
}

// Get retrieves a dispute, restricted to its raiser, the parties of
// the reservation, or an admin.
func (s *DisputeService) Get(ctx context.Context, user *domain.User, disputeID string) (*domain.Dispute, error) {
	dispute, err := s.disputeRepo.GetByID(ctx, disputeID)
	if err != nil {
		return nil, err
	}

	if user.Role == domain.RoleAdmin || dispute.RaisedBy == user.ID {
		return dispute, nil
	}

	reservation, err := s.reservationRepo.GetByID(ctx, dispute.ReservationID)
	if err != nil {
		return nil, err
	}
	if reservation.PassengerID == user.ID {
		return dispute, nil
	}

	trip, err := s.tripRepo.GetByID(ctx, reservation.TripID)
	if err != nil {
		return nil, err
	}
	if trip.DriverID == user.ID {
		return dispute, nil
	}

	return nil, ErrNotDisputeParty
}

// ListAll returns every dispute (admin surface).
func (s *DisputeService) ListAll(ctx context.Context, actor *domain.User) ([]*domain.Dispute, error) {
	if actor.Role != domain.RoleAdmin {
		return nil, ErrRoleNotAllowed
	}
	return s.disputeRepo.ListAll(ctx)
}

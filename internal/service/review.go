package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"axisride/internal/domain"
	"axisride/internal/redis"
	"axisride/internal/repository"
)

// ReviewService records post-trip ratings and keeps the driver
// aggregates current. One review per reservation, only after the
// passenger's boarding was validated.
type ReviewService struct {
	reviewRepo      repository.ReviewRepository
	reservationRepo repository.ReservationRepository
	tripRepo        repository.TripRepository
	profileRepo     repository.DriverProfileRepository
	cacheStore      redis.CacheStoreInterface
}

// NewReviewService creates a new ReviewService.
func NewReviewService(
	reviewRepo repository.ReviewRepository,
	reservationRepo repository.ReservationRepository,
	tripRepo repository.TripRepository,
	profileRepo repository.DriverProfileRepository,
	cacheStore redis.CacheStoreInterface,
) *ReviewService {
	return &ReviewService{
		reviewRepo:      reviewRepo,
		reservationRepo: reservationRepo,
		tripRepo:        tripRepo,
		profileRepo:     profileRepo,
		cacheStore:      cacheStore,
	}
}

// SubmitReviewRequest carries the input for a review.
type SubmitReviewRequest struct {
	ReservationID string
	Rating        int
	Comment       string
}

// Submit records the passenger's rating of the driver for a validated
// reservation and folds it into the driver's aggregate.
func (s *ReviewService) Submit(ctx context.Context, rater *domain.User, req SubmitReviewRequest) (*domain.Review, error) {
	if req.Rating < 1 || req.Rating > 5 {
		return nil, ErrInvalidRating
	}

	reservation, err := s.reservationRepo.GetByID(ctx, req.ReservationID)
	if err != nil {
		return nil, err
	}

	if reservation.PassengerID != rater.ID {
		return nil, ErrNotReservationPassenger
	}
	if reservation.Status != domain.ReservationStatusValidated {
		return nil, ErrInvalidStateTransition
	}

	trip, err := s.tripRepo.GetByID(ctx, reservation.TripID)
	if err != nil {
		return nil, err
	}

	review := &domain.Review{
		ID:            uuid.New().String(),
		ReservationID: reservation.ID,
		RaterID:       rater.ID,
		DriverID:      trip.DriverID,
		Rating:        req.Rating,
		Comment:       req.Comment,
		CreatedAt:     time.Now(),
	}

	if err := s.reviewRepo.Create(ctx, review); err != nil {
		if err == repository.ErrDuplicate {
			return nil, ErrAlreadyReviewed
		}
		return nil, err
	}

	if err := s.applyRating(ctx, trip.DriverID, req.Rating); err != nil {
		return nil, err
	}

	return review, nil
}

// GetByReservation retrieves the review for a reservation.
func (s *ReviewService) GetByReservation(ctx context.Context, reservationID string) (*domain.Review, error) {
	return s.reviewRepo.GetByReservationID(ctx, reservationID)
}

// ListByDriver retrieves all reviews of a driver, newest first.
func (s *ReviewService) ListByDriver(ctx context.Context, driverID string) ([]*domain.Review, error) {
	return s.reviewRepo.ListByDriver(ctx, driverID)
}

// applyRating folds a new rating into the driver's aggregate and drops
// the cached value. The fold is one repository write; a concurrent
// review cannot shadow it.
func (s *ReviewService) applyRating(ctx context.Context, driverID string, rating int) error {
	if err := s.profileRepo.AddRating(ctx, driverID, rating); err != nil {
		return err
	}

	if s.cacheStore != nil {
		_ = s.cacheStore.InvalidateRating(ctx, driverID)
	}

	return nil
}

package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"axisride/internal/domain"
	"axisride/internal/redis"
	"axisride/internal/repository"
)

// TripCatalogService manages driver-published trips and their seat
// inventory. Seat counts only move through the repository's atomic
// reserve/release statements.
type TripCatalogService struct {
	tripRepo     repository.TripRepository
	profileRepo  repository.DriverProfileRepository
	subscription *SubscriptionService
	cacheStore   redis.CacheStoreInterface
}

// NewTripCatalogService creates a new TripCatalogService.
func NewTripCatalogService(
	tripRepo repository.TripRepository,
	profileRepo repository.DriverProfileRepository,
	subscription *SubscriptionService,
	cacheStore redis.CacheStoreInterface,
) *TripCatalogService {
	return &TripCatalogService{
		tripRepo:     tripRepo,
		profileRepo:  profileRepo,
		subscription: subscription,
		cacheStore:   cacheStore,
	}
}

// PublishTripRequest contains the parameters for publishing a trip.
type PublishTripRequest struct {
	Origin        string
	Destination   string
	DepartureTime time.Time
	PricePerSeat  float64
	Seats         int
	Description   string

	LuggageAllowed bool
	PetsAllowed    bool
	SmokingAllowed bool
	MusicAllowed   bool
}

// Publish creates a new trip. Requires a verified driver profile and a
// running subscription; validation runs before any side effect.
func (s *TripCatalogService) Publish(ctx context.Context, driver *domain.User, req PublishTripRequest) (*domain.Trip, error) {
	if driver.Role != domain.RoleDriver {
		return nil, ErrRoleNotAllowed
	}
	if req.Seats < 1 {
		return nil, ErrInvalidSeatCount
	}
	if req.PricePerSeat <= 0 {
		return nil, ErrInvalidPrice
	}
	if !req.DepartureTime.After(time.Now()) {
		return nil, ErrDepartureNotFuture
	}

	profile, err := s.profileRepo.GetByUserID(ctx, driver.ID)
	if err != nil {
		if err == repository.ErrNotFound {
			return nil, ErrDriverNotVerified
		}
		return nil, err
	}
	if !profile.Verified {
		return nil, ErrDriverNotVerified
	}

	if err := s.subscription.AssertFeatureAllowed(ctx, driver); err != nil {
		return nil, err
	}

	trip := &domain.Trip{
		ID:             uuid.New().String(),
		DriverID:       driver.ID,
		Origin:         req.Origin,
		Destination:    req.Destination,
		DepartureTime:  req.DepartureTime,
		PricePerSeat:   req.PricePerSeat,
		Currency:       "XOF",
		Seats:          req.Seats,
		SeatsAvailable: req.Seats,
		Status:         domain.TripStatusActive,
		Description:    req.Description,
		VehicleBrand:   profile.Vehicle.Brand,
		VehicleModel:   profile.Vehicle.Model,
		VehicleColor:   profile.Vehicle.Color,
		LicensePlate:   profile.Vehicle.LicensePlate,
		LuggageAllowed: req.LuggageAllowed,
		PetsAllowed:    req.PetsAllowed,
		SmokingAllowed: req.SmokingAllowed,
		MusicAllowed:   req.MusicAllowed,
		CreatedAt:      time.Now(),
	}

	if err := s.tripRepo.Create(ctx, trip); err != nil {
		return nil, err
	}

	return trip, nil
}

// Search returns active trips matching the optional origin/destination
// filters, soonest departure first. Unauthenticated; the one read that
// requires no resolved user.
func (s *TripCatalogService) Search(ctx context.Context, origin, destination string) ([]*domain.Trip, error) {
	return s.tripRepo.Search(ctx, repository.TripSearch{
		Origin:      origin,
		Destination: destination,
	})
}

// Get retrieves a trip by ID, served from cache when fresh. Seat
// movement and status changes invalidate the entry, so a hit is never
// staler than the cache TTL.
func (s *TripCatalogService) Get(ctx context.Context, tripID string) (*domain.Trip, error) {
	if s.cacheStore != nil {
		if cached, err := s.cacheStore.GetTrip(ctx, tripID); err == nil && cached != nil {
			if trip, err := tripFromCached(cached); err == nil {
				return trip, nil
			}
		}
	}

	trip, err := s.tripRepo.GetByID(ctx, tripID)
	if err != nil {
		return nil, err
	}

	if s.cacheStore != nil {
		_ = s.cacheStore.SetTrip(ctx, cachedFromTrip(trip))
	}

	return trip, nil
}

func cachedFromTrip(trip *domain.Trip) *redis.CachedTrip {
	return &redis.CachedTrip{
		ID:             trip.ID,
		DriverID:       trip.DriverID,
		Origin:         trip.Origin,
		Destination:    trip.Destination,
		DepartureTime:  trip.DepartureTime.Format(time.RFC3339Nano),
		PricePerSeat:   trip.PricePerSeat,
		Currency:       trip.Currency,
		Seats:          trip.Seats,
		SeatsAvailable: trip.SeatsAvailable,
		Status:         string(trip.Status),
		Description:    trip.Description,
		VehicleBrand:   trip.VehicleBrand,
		VehicleModel:   trip.VehicleModel,
		VehicleColor:   trip.VehicleColor,
		LicensePlate:   trip.LicensePlate,
		LuggageAllowed: trip.LuggageAllowed,
		PetsAllowed:    trip.PetsAllowed,
		SmokingAllowed: trip.SmokingAllowed,
		MusicAllowed:   trip.MusicAllowed,
		CreatedAt:      trip.CreatedAt.Format(time.RFC3339Nano),
	}
}

func tripFromCached(cached *redis.CachedTrip) (*domain.Trip, error) {
	departure, err := time.Parse(time.RFC3339Nano, cached.DepartureTime)
	if err != nil {
		return nil, err
	}
	createdAt, err := time.Parse(time.RFC3339Nano, cached.CreatedAt)
	if err != nil {
		return nil, err
	}

	return &domain.Trip{
		ID:             cached.ID,
		DriverID:       cached.DriverID,
		Origin:         cached.Origin,
		Destination:    cached.Destination,
		DepartureTime:  departure,
		PricePerSeat:   cached.PricePerSeat,
		Currency:       cached.Currency,
		Seats:          cached.Seats,
		SeatsAvailable: cached.SeatsAvailable,
		Status:         domain.TripStatus(cached.Status),
		Description:    cached.Description,
		VehicleBrand:   cached.VehicleBrand,
		VehicleModel:   cached.VehicleModel,
		VehicleColor:   cached.VehicleColor,
		LicensePlate:   cached.LicensePlate,
		LuggageAllowed: cached.LuggageAllowed,
		PetsAllowed:    cached.PetsAllowed,
		SmokingAllowed: cached.SmokingAllowed,
		MusicAllowed:   cached.MusicAllowed,
		CreatedAt:      createdAt,
	}, nil
}

// Cancel cancels the driver's own active trip. Existing reservations
// keep their own lifecycle.
func (s *TripCatalogService) Cancel(ctx context.Context, driver *domain.User, tripID string) (*domain.Trip, error) {
	return s.transition(ctx, driver, tripID, (*domain.Trip).Cancel)
}

// Complete marks the driver's own active trip completed.
func (s *TripCatalogService) Complete(ctx context.Context, driver *domain.User, tripID string) (*domain.Trip, error) {
	return s.transition(ctx, driver, tripID, (*domain.Trip).Complete)
}

func (s *TripCatalogService) transition(ctx context.Context, driver *domain.User, tripID string, apply func(*domain.Trip) error) (*domain.Trip, error) {
	trip, err := s.tripRepo.GetByID(ctx, tripID)
	if err != nil {
		return nil, err
	}

	if trip.DriverID != driver.ID {
		return nil, ErrNotTripDriver
	}

	if err := apply(trip); err != nil {
		return nil, ErrInvalidStateTransition
	}

	if err := s.tripRepo.Update(ctx, trip); err != nil {
		return nil, err
	}

	if s.cacheStore != nil {
		_ = s.cacheStore.InvalidateTrip(ctx, tripID)
	}

	return trip, nil
}

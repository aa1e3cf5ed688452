package service

import (
	"context"
	"time"

	"axisride/internal/domain"
	"axisride/internal/redis"
	"axisride/internal/repository"
)

// DriverProfileService manages driver credentials and the verification
// flag that gates trip publishing.
type DriverProfileService struct {
	profileRepo repository.DriverProfileRepository
	cacheStore  redis.CacheStoreInterface
}

// NewDriverProfileService creates a new DriverProfileService.
func NewDriverProfileService(profileRepo repository.DriverProfileRepository, cacheStore redis.CacheStoreInterface) *DriverProfileService {
	return &DriverProfileService{
		profileRepo: profileRepo,
		cacheStore:  cacheStore,
	}
}

// SubmitProfileRequest contains the parameters for submitting driver
// credentials.
type SubmitProfileRequest struct {
	LicenseNumber string
	Vehicle       domain.Vehicle
	DefaultSeats  int
}

// Submit creates or replaces the caller's driver profile. Resubmission
// resets the verified flag: changed credentials need a fresh admin
// review.
func (s *DriverProfileService) Submit(ctx context.Context, user *domain.User, req SubmitProfileRequest) (*domain.DriverProfile, error) {
	if user.Role != domain.RoleDriver {
		return nil, ErrRoleNotAllowed
	}
	if req.LicenseNumber == "" || req.Vehicle.LicensePlate == "" {
		return nil, ErrInvalidLicense
	}
	if req.DefaultSeats < 1 {
		return nil, ErrInvalidSeatCount
	}

	now := time.Now()

	existing, err := s.profileRepo.GetByUserID(ctx, user.ID)
	if err != nil && err != repository.ErrNotFound {
		return nil, err
	}

	if existing != nil {
		existing.LicenseNumber = req.LicenseNumber
		existing.Vehicle = req.Vehicle
		existing.DefaultSeats = req.DefaultSeats
		existing.Verified = false
		existing.UpdatedAt = now

		if err := s.profileRepo.Update(ctx, existing); err != nil {
			return nil, err
		}
		return existing, nil
	}

	profile := &domain.DriverProfile{
		UserID:        user.ID,
		LicenseNumber: req.LicenseNumber,
		Vehicle:       req.Vehicle,
		DefaultSeats:  req.DefaultSeats,
		Verified:      false,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.profileRepo.Create(ctx, profile); err != nil {
		return nil, err
	}

	return profile, nil
}

// Verify marks a driver's profile verified. Admin-only.
func (s *DriverProfileService) Verify(ctx context.Context, admin *domain.User, driverID string) (*domain.DriverProfile, error) {
	if admin.Role != domain.RoleAdmin {
		return nil, ErrRoleNotAllowed
	}

	profile, err := s.profileRepo.GetByUserID(ctx, driverID)
	if err != nil {
		return nil, err
	}

	profile.Verified = true
	profile.UpdatedAt = time.Now()

	if err := s.profileRepo.Update(ctx, profile); err != nil {
		return nil, err
	}

	return profile, nil
}

// Get retrieves a driver's profile.
func (s *DriverProfileService) Get(ctx context.Context, driverID string) (*domain.DriverProfile, error) {
	return s.profileRepo.GetByUserID(ctx, driverID)
}

// Rating returns a driver's aggregate rating, served from cache when
// fresh.
func (s *DriverProfileService) Rating(ctx context.Context, driverID string) (count int, avg float64, err error) {
	if s.cacheStore != nil {
		if cached, err := s.cacheStore.GetRating(ctx, driverID); err == nil && cached != nil {
			return cached.Count, cached.Average, nil
		}
	}

	profile, err := s.profileRepo.GetByUserID(ctx, driverID)
	if err != nil {
		return 0, 0, err
	}

	if s.cacheStore != nil {
		_ = s.cacheStore.SetRating(ctx, &redis.CachedRating{
			DriverID: driverID,
			Count:    profile.RatingCount,
			Average:  profile.RatingAvg,
		})
	}

	return profile.RatingCount, profile.RatingAvg, nil
}

package redis

import (
	"context"
	"time"
)

// LockStoreInterface defines the interface for distributed locking.
type LockStoreInterface interface {
	AcquireReservationLock(ctx context.Context, reservationID string, ttl time.Duration) (bool, error)
	ReleaseReservationLock(ctx context.Context, reservationID string) error
}

// OTPStoreInterface defines the interface for one-time code storage.
type OTPStoreInterface interface {
	SetCode(ctx context.Context, phone, code string, ttl time.Duration) error
	GetCode(ctx context.Context, phone string) (string, error)
	IncrementAttempts(ctx context.Context, phone string, ttl time.Duration) (int, error)
	Invalidate(ctx context.Context, phone string) error
}

// CacheStoreInterface defines the interface for entity caching.
type CacheStoreInterface interface {
	GetTrip(ctx context.Context, tripID string) (*CachedTrip, error)
	SetTrip(ctx context.Context, trip *CachedTrip) error
	InvalidateTrip(ctx context.Context, tripID string) error
	GetRating(ctx context.Context, driverID string) (*CachedRating, error)
	SetRating(ctx context.Context, rating *CachedRating) error
	InvalidateRating(ctx context.Context, driverID string) error
}

// Ensure concrete types implement interfaces.
var (
	_ LockStoreInterface  = (*LockStore)(nil)
	_ OTPStoreInterface   = (*OTPStore)(nil)
	_ CacheStoreInterface = (*CacheStore)(nil)
)

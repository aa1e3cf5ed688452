package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// LockStore handles distributed locking in Redis.
type LockStore struct {
	client *redis.Client
}

// NewLockStore creates a new LockStore.
func NewLockStore(client *redis.Client) *LockStore {
	return &LockStore{client: client}
}

// AcquireReservationLock attempts to acquire the per-reservation lock
// that serializes payment attempts. Returns true if the lock was
// acquired, false if already held.
func (s *LockStore) AcquireReservationLock(ctx context.Context, reservationID string, ttl time.Duration) (bool, error) {
	key := fmt.Sprintf("lock:reservation:%s", reservationID)

	ok, err := s.client.SetNX(ctx, key, "1", ttl).Result()
	if err != nil {
		return false, err
	}

	return ok, nil
}

// ReleaseReservationLock releases the lock for the given reservation.
func (s *LockStore) ReleaseReservationLock(ctx context.Context, reservationID string) error {
	key := fmt.Sprintf("lock:reservation:%s", reservationID)

	return s.client.Del(ctx, key).Err()
}

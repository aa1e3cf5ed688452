package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	otpCodePrefix     = "otp:code:"
	otpAttemptsPrefix = "otp:attempts:"
)

// OTPStore keeps one-time codes in Redis with a bounded lifetime and
// attempt budget. Codes never touch the database.
type OTPStore struct {
	client *redis.Client
}

// NewOTPStore creates a new OTPStore.
func NewOTPStore(client *redis.Client) *OTPStore {
	return &OTPStore{client: client}
}

// SetCode stores the code for a phone number, replacing any previous
// one and resetting the attempt counter.
func (s *OTPStore) SetCode(ctx context.Context, phone, code string, ttl time.Duration) error {
	if err := s.client.Set(ctx, otpCodePrefix+phone, code, ttl).Err(); err != nil {
		return err
	}
	return s.client.Del(ctx, otpAttemptsPrefix+phone).Err()
}

// GetCode retrieves the stored code for a phone number. Returns "" if
// no code is pending or it expired.
func (s *OTPStore) GetCode(ctx context.Context, phone string) (string, error) {
	code, err := s.client.Get(ctx, otpCodePrefix+phone).Result()
	if err != nil {
		if err == redis.Nil {
			return "", nil
		}
		return "", err
	}
	return code, nil
}

// IncrementAttempts bumps the failed-verification counter and returns
// the new value. The counter expires with roughly the code's lifetime.
func (s *OTPStore) IncrementAttempts(ctx context.Context, phone string, ttl time.Duration) (int, error) {
	key := otpAttemptsPrefix + phone
	n, err := s.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	if n == 1 {
		if err := s.client.Expire(ctx, key, ttl).Err(); err != nil {
			return int(n), err
		}
	}
	return int(n), nil
}

// Invalidate removes the code and counter for a phone number, either
// after successful verification or after the attempt budget is spent.
func (s *OTPStore) Invalidate(ctx context.Context, phone string) error {
	return s.client.Del(ctx, otpCodePrefix+phone, otpAttemptsPrefix+phone).Err()
}

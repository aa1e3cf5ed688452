package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

// CacheStore handles entity caching in Redis.
type CacheStore struct {
	client *redis.Client
}

// NewCacheStore creates a new CacheStore.
func NewCacheStore(client *redis.Client) *CacheStore {
	return &CacheStore{client: client}
}

// Cache TTL constants
const (
	TripCacheTTL   = 30 * time.Second // seat counts move on every reservation
	RatingCacheTTL = 5 * time.Minute  // aggregate ratings change rarely
)

// Key prefixes
const (
	tripCachePrefix   = "cache:trip:"
	ratingCachePrefix = "cache:rating:"
)

// CachedTrip represents a cached trip entity. It carries the full trip
// so a cache hit can serve the detail read without touching postgres.
type CachedTrip struct {
	ID             string  `json:"id"`
	DriverID       string  `json:"driver_id"`
	Origin         string  `json:"origin"`
	Destination    string  `json:"destination"`
	DepartureTime  string  `json:"departure_time"`
	PricePerSeat   float64 `json:"price_per_seat"`
	Currency       string  `json:"currency"`
	Seats          int     `json:"seats"`
	SeatsAvailable int     `json:"seats_available"`
	Status         string  `json:"status"`
	Description    string  `json:"description"`
	VehicleBrand   string  `json:"vehicle_brand"`
	VehicleModel   string  `json:"vehicle_model"`
	VehicleColor   string  `json:"vehicle_color"`
	LicensePlate   string  `json:"license_plate"`
	LuggageAllowed bool    `json:"luggage_allowed"`
	PetsAllowed    bool    `json:"pets_allowed"`
	SmokingAllowed bool    `json:"smoking_allowed"`
	MusicAllowed   bool    `json:"music_allowed"`
	CreatedAt      string  `json:"created_at"`
}

// CachedRating represents a cached driver aggregate rating.
type CachedRating struct {
	DriverID string  `json:"driver_id"`
	Count    int     `json:"count"`
	Average  float64 `json:"average"`
}

// GetTrip retrieves a trip from cache. Returns nil on a miss.
func (s *CacheStore) GetTrip(ctx context.Context, tripID string) (*CachedTrip, error) {
	data, err := s.client.Get(ctx, tripCachePrefix+tripID).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil // Cache miss
		}
		return nil, err
	}

	var trip CachedTrip
	if err := json.Unmarshal(data, &trip); err != nil {
		return nil, err
	}
	return &trip, nil
}

// SetTrip stores a trip in cache.
func (s *CacheStore) SetTrip(ctx context.Context, trip *CachedTrip) error {
	data, err := json.Marshal(trip)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, tripCachePrefix+trip.ID, data, TripCacheTTL).Err()
}

// InvalidateTrip removes a trip from cache. Called after any seat
// movement or status change.
func (s *CacheStore) InvalidateTrip(ctx context.Context, tripID string) error {
	return s.client.Del(ctx, tripCachePrefix+tripID).Err()
}

// GetRating retrieves a driver's aggregate rating from cache. Returns
// nil on a miss.
func (s *CacheStore) GetRating(ctx context.Context, driverID string) (*CachedRating, error) {
	data, err := s.client.Get(ctx, ratingCachePrefix+driverID).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil // Cache miss
		}
		return nil, err
	}

	var rating CachedRating
	if err := json.Unmarshal(data, &rating); err != nil {
		return nil, err
	}
	return &rating, nil
}

// SetRating stores a driver's aggregate rating in cache.
func (s *CacheStore) SetRating(ctx context.Context, rating *CachedRating) error {
	data, err := json.Marshal(rating)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, ratingCachePrefix+rating.DriverID, data, RatingCacheTTL).Err()
}

// InvalidateRating removes a driver's aggregate rating from cache.
func (s *CacheStore) InvalidateRating(ctx context.Context, driverID string) error {
	return s.client.Del(ctx, ratingCachePrefix+driverID).Err()
}

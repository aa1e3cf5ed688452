package tests

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"axisride/internal/domain"
	"axisride/internal/redis"
	"axisride/internal/repository"
	"axisride/internal/service"
)

// ──────────────────────────────────────────────
// MOCK USER REPOSITORY
// ──────────────────────────────────────────────

// MockUserRepository is a mock implementation of UserRepository.
type MockUserRepository struct {
	mu    sync.RWMutex
	users map[string]*domain.User

	// Counters for verification
	CreateCallCount int32

	// Error injection
	CreateError error
	UpdateError error
}

// NewMockUserRepository creates a new mock user repository.
func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{users: make(map[string]*domain.User)}
}

// AddUser adds a user to the mock repository.
func (m *MockUserRepository) AddUser(user *domain.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[user.ID] = user
}

func (m *MockUserRepository) Create(ctx context.Context, user *domain.User) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Phone == user.Phone {
			return repository.ErrDuplicate
		}
	}
	m.users[user.ID] = user
	return nil
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	user, ok := m.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *user
	return &copy, nil
}

func (m *MockUserRepository) GetByPhone(ctx context.Context, phone string) (*domain.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, u := range m.users {
		if u.Phone == phone {
			copy := *u
			return &copy, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *MockUserRepository) Update(ctx context.Context, user *domain.User) error {
	if m.UpdateError != nil {
		return m.UpdateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[user.ID]; !ok {
		return repository.ErrNotFound
	}
	copy := *user
	m.users[user.ID] = &copy
	return nil
}

// GetUser returns a user for test assertions.
func (m *MockUserRepository) GetUser(id string) *domain.User {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.users[id]
}

// ──────────────────────────────────────────────
// MOCK DRIVER PROFILE REPOSITORY
// ──────────────────────────────────────────────

// MockDriverProfileRepository is a mock implementation of
// DriverProfileRepository.
type MockDriverProfileRepository struct {
	mu       sync.RWMutex
	profiles map[string]*domain.DriverProfile

	AddRatingCallCount int32
}

// NewMockDriverProfileRepository creates a new mock profile repository.
func NewMockDriverProfileRepository() *MockDriverProfileRepository {
	return &MockDriverProfileRepository{profiles: make(map[string]*domain.DriverProfile)}
}

// AddProfile adds a profile to the mock repository.
func (m *MockDriverProfileRepository) AddProfile(profile *domain.DriverProfile) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.profiles[profile.UserID] = profile
}

func (m *MockDriverProfileRepository) Create(ctx context.Context, profile *domain.DriverProfile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.profiles[profile.UserID]; ok {
		return repository.ErrDuplicate
	}
	copy := *profile
	m.profiles[profile.UserID] = &copy
	return nil
}

func (m *MockDriverProfileRepository) GetByUserID(ctx context.Context, userID string) (*domain.DriverProfile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	profile, ok := m.profiles[userID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *profile
	return &copy, nil
}

func (m *MockDriverProfileRepository) Update(ctx context.Context, profile *domain.DriverProfile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.profiles[profile.UserID]; !ok {
		return repository.ErrNotFound
	}
	copy := *profile
	m.profiles[profile.UserID] = &copy
	return nil
}

// AddRating folds the rating under the repository lock, mirroring the
// single-statement SQL fold.
func (m *MockDriverProfileRepository) AddRating(ctx context.Context, userID string, rating int) error {
	atomic.AddInt32(&m.AddRatingCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	profile, ok := m.profiles[userID]
	if !ok {
		return repository.ErrNotFound
	}
	profile.AddRating(rating)
	return nil
}

// GetProfile returns a profile for test assertions.
func (m *MockDriverProfileRepository) GetProfile(userID string) *domain.DriverProfile {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.profiles[userID]
}

// ──────────────────────────────────────────────
// MOCK SUBSCRIPTION REPOSITORY
// ──────────────────────────────────────────────

// MockSubscriptionRepository is a mock implementation of
// SubscriptionRepository.
type MockSubscriptionRepository struct {
	mu   sync.RWMutex
	subs map[string]*domain.Subscription

	CreateError error
}

// NewMockSubscriptionRepository creates a new mock subscription
// repository.
func NewMockSubscriptionRepository() *MockSubscriptionRepository {
	return &MockSubscriptionRepository{subs: make(map[string]*domain.Subscription)}
}

// AddSubscription adds a subscription to the mock repository.
func (m *MockSubscriptionRepository) AddSubscription(sub *domain.Subscription) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subs[sub.UserID] = sub
}

func (m *MockSubscriptionRepository) Create(ctx context.Context, sub *domain.Subscription) error {
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.subs[sub.UserID]; ok {
		return repository.ErrDuplicate
	}
	copy := *sub
	m.subs[sub.UserID] = &copy
	return nil
}

func (m *MockSubscriptionRepository) GetByUserID(ctx context.Context, userID string) (*domain.Subscription, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	sub, ok := m.subs[userID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *sub
	return &copy, nil
}

func (m *MockSubscriptionRepository) Update(ctx context.Context, sub *domain.Subscription) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.subs[sub.UserID]; !ok {
		return repository.ErrNotFound
	}
	copy := *sub
	m.subs[sub.UserID] = &copy
	return nil
}

func (m *MockSubscriptionRepository) ExtendPaid(ctx context.Context, userID string, validity time.Duration) (*domain.Subscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now()
	sub, ok := m.subs[userID]
	if !ok {
		sub = &domain.Subscription{UserID: userID, CreatedAt: now}
		m.subs[userID] = sub
	}
	sub.ExtendPaid(now, validity)
	sub.UpdatedAt = now
	copy := *sub
	return &copy, nil
}

// ──────────────────────────────────────────────
// MOCK TRIP REPOSITORY
// ──────────────────────────────────────────────

// MockTripRepository is a mock implementation of TripRepository. Seat
// movements run under the repository mutex, mirroring the atomic SQL
// compare-and-decrement.
type MockTripRepository struct {
	mu    sync.RWMutex
	trips map[string]*domain.Trip

	ReserveSeatsCallCount int32
	ReleaseSeatsCallCount int32
}

// NewMockTripRepository creates a new mock trip repository.
func NewMockTripRepository() *MockTripRepository {
	return &MockTripRepository{trips: make(map[string]*domain.Trip)}
}

// AddTrip adds a trip to the mock repository.
func (m *MockTripRepository) AddTrip(trip *domain.Trip) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.trips[trip.ID] = trip
}

func (m *MockTripRepository) Create(ctx context.Context, trip *domain.Trip) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copy := *trip
	m.trips[trip.ID] = &copy
	return nil
}

func (m *MockTripRepository) GetByID(ctx context.Context, id string) (*domain.Trip, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	trip, ok := m.trips[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *trip
	return &copy, nil
}

func (m *MockTripRepository) Search(ctx context.Context, q repository.TripSearch) ([]*domain.Trip, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*domain.Trip, 0)
	for _, trip := range m.trips {
		if trip.Status != domain.TripStatusActive {
			continue
		}
		if q.Origin != "" && trip.Origin != q.Origin {
			continue
		}
		if q.Destination != "" && trip.Destination != q.Destination {
			continue
		}
		copy := *trip
		result = append(result, &copy)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].DepartureTime.Equal(result[j].DepartureTime) {
			return result[i].ID < result[j].ID
		}
		return result[i].DepartureTime.Before(result[j].DepartureTime)
	})
	return result, nil
}

func (m *MockTripRepository) ListByDriver(ctx context.Context, driverID string) ([]*domain.Trip, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*domain.Trip, 0)
	for _, trip := range m.trips {
		if trip.DriverID == driverID {
			copy := *trip
			result = append(result, &copy)
		}
	}
	return result, nil
}

func (m *MockTripRepository) Update(ctx context.Context, trip *domain.Trip) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.trips[trip.ID]
	if !ok {
		return repository.ErrNotFound
	}
	// Seat counts only move through ReserveSeats/ReleaseSeats.
	copy := *trip
	copy.Seats = existing.Seats
	copy.SeatsAvailable = existing.SeatsAvailable
	m.trips[trip.ID] = &copy
	return nil
}

func (m *MockTripRepository) ReserveSeats(ctx context.Context, tripID string, count int) error {
	atomic.AddInt32(&m.ReserveSeatsCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	trip, ok := m.trips[tripID]
	if !ok {
		return repository.ErrNotFound
	}
	if trip.SeatsAvailable < count {
		return repository.ErrInsufficientSeats
	}
	trip.SeatsAvailable -= count
	return nil
}

func (m *MockTripRepository) ReleaseSeats(ctx context.Context, tripID string, count int) error {
	atomic.AddInt32(&m.ReleaseSeatsCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	trip, ok := m.trips[tripID]
	if !ok {
		return repository.ErrNotFound
	}
	trip.SeatsAvailable += count
	if trip.SeatsAvailable > trip.Seats {
		trip.SeatsAvailable = trip.Seats
	}
	return nil
}

// GetTrip returns a trip for test assertions.
func (m *MockTripRepository) GetTrip(id string) *domain.Trip {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.trips[id]
}

// ──────────────────────────────────────────────
// MOCK RESERVATION REPOSITORY
// ──────────────────────────────────────────────

// MockReservationRepository is a mock implementation of
// ReservationRepository. TransitionStatus is a guarded write under the
// repository mutex, mirroring the conditional SQL UPDATE.
type MockReservationRepository struct {
	mu           sync.RWMutex
	reservations map[string]*domain.Reservation

	CreateCallCount     int32
	TransitionCallCount int32

	CreateError error
}

// NewMockReservationRepository creates a new mock reservation
// repository.
func NewMockReservationRepository() *MockReservationRepository {
	return &MockReservationRepository{reservations: make(map[string]*domain.Reservation)}
}

// AddReservation adds a reservation to the mock repository.
func (m *MockReservationRepository) AddReservation(reservation *domain.Reservation) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reservations[reservation.ID] = reservation
}

func (m *MockReservationRepository) Create(ctx context.Context, reservation *domain.Reservation) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	copy := *reservation
	m.reservations[reservation.ID] = &copy
	return nil
}

func (m *MockReservationRepository) GetByID(ctx context.Context, id string) (*domain.Reservation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	reservation, ok := m.reservations[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *reservation
	return &copy, nil
}

func (m *MockReservationRepository) ListByPassenger(ctx context.Context, passengerID string) ([]*domain.Reservation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*domain.Reservation, 0)
	for _, r := range m.reservations {
		if r.PassengerID == passengerID {
			copy := *r
			result = append(result, &copy)
		}
	}
	sortReservations(result)
	return result, nil
}

func (m *MockReservationRepository) ListByTrip(ctx context.Context, tripID string) ([]*domain.Reservation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*domain.Reservation, 0)
	for _, r := range m.reservations {
		if r.TripID == tripID {
			copy := *r
			result = append(result, &copy)
		}
	}
	sortReservations(result)
	return result, nil
}

func (m *MockReservationRepository) ListAll(ctx context.Context) ([]*domain.Reservation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*domain.Reservation, 0, len(m.reservations))
	for _, r := range m.reservations {
		copy := *r
		result = append(result, &copy)
	}
	sortReservations(result)
	return result, nil
}

func (m *MockReservationRepository) TransitionStatus(ctx context.Context, id string, from, to domain.ReservationStatus) error {
	atomic.AddInt32(&m.TransitionCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	reservation, ok := m.reservations[id]
	if !ok {
		return repository.ErrNotFound
	}
	if reservation.Status != from {
		return repository.ErrStateConflict
	}
	reservation.Status = to
	reservation.UpdatedAt = time.Now()
	return nil
}

// GetReservation returns a reservation for test assertions.
func (m *MockReservationRepository) GetReservation(id string) *domain.Reservation {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.reservations[id]
}

// CountReservations returns the number of stored reservations.
func (m *MockReservationRepository) CountReservations() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.reservations)
}

func sortReservations(reservations []*domain.Reservation) {
	sort.Slice(reservations, func(i, j int) bool {
		return reservations[i].CreatedAt.After(reservations[j].CreatedAt)
	})
}

// ──────────────────────────────────────────────
// MOCK RESERVATION STORE
// ──────────────────────────────────────────────

// MockReservationStore implements the engine's transactional store over
// the trip and reservation mocks. A mutex makes each pair of writes
// atomic the way the SQL transaction does.
type MockReservationStore struct {
	mu           sync.Mutex
	Trips        *MockTripRepository
	Reservations *MockReservationRepository
}

// NewMockReservationStore creates a store over the given mocks.
func NewMockReservationStore(trips *MockTripRepository, reservations *MockReservationRepository) *MockReservationStore {
	return &MockReservationStore{Trips: trips, Reservations: reservations}
}

func (s *MockReservationStore) CreateWithSeatHold(ctx context.Context, reservation *domain.Reservation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.Trips.ReserveSeats(ctx, reservation.TripID, reservation.Seats); err != nil {
		return err
	}
	if err := s.Reservations.Create(ctx, reservation); err != nil {
		_ = s.Trips.ReleaseSeats(ctx, reservation.TripID, reservation.Seats)
		return err
	}
	return nil
}

func (s *MockReservationStore) TransitionWithSeatRelease(ctx context.Context, reservation *domain.Reservation, from, to domain.ReservationStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.Reservations.TransitionStatus(ctx, reservation.ID, from, to); err != nil {
		return err
	}
	return s.Trips.ReleaseSeats(ctx, reservation.TripID, reservation.Seats)
}

// ──────────────────────────────────────────────
// MOCK PAYMENT REPOSITORY
// ──────────────────────────────────────────────

// MockPaymentRepository is a mock implementation of PaymentRepository.
type MockPaymentRepository struct {
	mu       sync.RWMutex
	payments map[string]*domain.Payment

	TransitionEscrowCallCount int32
}

// NewMockPaymentRepository creates a new mock payment repository.
func NewMockPaymentRepository() *MockPaymentRepository {
	return &MockPaymentRepository{payments: make(map[string]*domain.Payment)}
}

// AddPayment adds a payment to the mock repository.
func (m *MockPaymentRepository) AddPayment(payment *domain.Payment) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.payments[payment.ID] = payment
}

func (m *MockPaymentRepository) Create(ctx context.Context, payment *domain.Payment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copy := *payment
	m.payments[payment.ID] = &copy
	return nil
}

func (m *MockPaymentRepository) GetByID(ctx context.Context, id string) (*domain.Payment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	payment, ok := m.payments[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *payment
	return &copy, nil
}

func (m *MockPaymentRepository) GetHeldByReservationID(ctx context.Context, reservationID string) (*domain.Payment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, p := range m.payments {
		if p.ReservationID == reservationID &&
			p.Status == domain.PaymentStatusSucceeded &&
			p.EscrowStatus == domain.EscrowStatusHeld {
			copy := *p
			return &copy, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *MockPaymentRepository) ListByReservation(ctx context.Context, reservationID string) ([]*domain.Payment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*domain.Payment, 0)
	for _, p := range m.payments {
		if p.ReservationID == reservationID {
			copy := *p
			result = append(result, &copy)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

func (m *MockPaymentRepository) ListAll(ctx context.Context) ([]*domain.Payment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*domain.Payment, 0, len(m.payments))
	for _, p := range m.payments {
		copy := *p
		result = append(result, &copy)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

func (m *MockPaymentRepository) UpdateStatus(ctx context.Context, payment *domain.Payment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.payments[payment.ID]
	if !ok {
		return repository.ErrNotFound
	}
	stored.Status = payment.Status
	stored.EscrowStatus = payment.EscrowStatus
	stored.TransactionRef = payment.TransactionRef
	stored.UpdatedAt = time.Now()
	return nil
}

func (m *MockPaymentRepository) TransitionEscrow(ctx context.Context, id string, from, to domain.EscrowStatus) error {
	atomic.AddInt32(&m.TransitionEscrowCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	payment, ok := m.payments[id]
	if !ok {
		return repository.ErrNotFound
	}
	if payment.EscrowStatus != from {
		return repository.ErrStateConflict
	}
	payment.EscrowStatus = to
	payment.UpdatedAt = time.Now()
	return nil
}

// GetPayment returns a payment for test assertions.
func (m *MockPaymentRepository) GetPayment(id string) *domain.Payment {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.payments[id]
}

// ──────────────────────────────────────────────
// MOCK DISPUTE REPOSITORY
// ──────────────────────────────────────────────

// MockDisputeRepository is a mock implementation of DisputeRepository.
// Create enforces the one-open-dispute rule the way the partial unique
// index does.
type MockDisputeRepository struct {
	mu       sync.RWMutex
	disputes map[string]*domain.Dispute
}

// NewMockDisputeRepository creates a new mock dispute repository.
func NewMockDisputeRepository() *MockDisputeRepository {
	return &MockDisputeRepository{disputes: make(map[string]*domain.Dispute)}
}

func (m *MockDisputeRepository) Create(ctx context.Context, dispute *domain.Dispute) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, d := range m.disputes {
		if d.ReservationID == dispute.ReservationID && d.Status == domain.DisputeStatusOpen {
			return repository.ErrDuplicate
		}
	}
	copy := *dispute
	m.disputes[dispute.ID] = &copy
	return nil
}

func (m *MockDisputeRepository) GetByID(ctx context.Context, id string) (*domain.Dispute, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	dispute, ok := m.disputes[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *dispute
	return &copy, nil
}

func (m *MockDisputeRepository) GetOpenByReservationID(ctx context.Context, reservationID string) (*domain.Dispute, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, d := range m.disputes {
		if d.ReservationID == reservationID && d.Status == domain.DisputeStatusOpen {
			copy := *d
			return &copy, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *MockDisputeRepository) ListAll(ctx context.Context) ([]*domain.Dispute, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*domain.Dispute, 0, len(m.disputes))
	for _, d := range m.disputes {
		copy := *d
		result = append(result, &copy)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

func (m *MockDisputeRepository) Update(ctx context.Context, dispute *domain.Dispute) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.disputes[dispute.ID]; !ok {
		return repository.ErrNotFound
	}
	copy := *dispute
	m.disputes[dispute.ID] = &copy
	return nil
}

// GetDispute returns a dispute for test assertions.
func (m *MockDisputeRepository) GetDispute(id string) *domain.Dispute {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.disputes[id]
}

// ──────────────────────────────────────────────
// MOCK REVIEW REPOSITORY
// ──────────────────────────────────────────────

// MockReviewRepository is a mock implementation of ReviewRepository.
type MockReviewRepository struct {
	mu      sync.RWMutex
	reviews map[string]*domain.Review
}

// NewMockReviewRepository creates a new mock review repository.
func NewMockReviewRepository() *MockReviewRepository {
	return &MockReviewRepository{reviews: make(map[string]*domain.Review)}
}

func (m *MockReviewRepository) Create(ctx context.Context, review *domain.Review) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.reviews {
		if r.ReservationID == review.ReservationID {
			return repository.ErrDuplicate
		}
	}
	copy := *review
	m.reviews[review.ID] = &copy
	return nil
}

func (m *MockReviewRepository) GetByReservationID(ctx context.Context, reservationID string) (*domain.Review, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, r := range m.reviews {
		if r.ReservationID == reservationID {
			copy := *r
			return &copy, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *MockReviewRepository) ListByDriver(ctx context.Context, driverID string) ([]*domain.Review, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*domain.Review, 0)
	for _, r := range m.reviews {
		if r.DriverID == driverID {
			copy := *r
			result = append(result, &copy)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

// ──────────────────────────────────────────────
// MOCK GROUP REPOSITORY
// ──────────────────────────────────────────────

// MockGroupRepository is a mock implementation of GroupRepository.
type MockGroupRepository struct {
	mu      sync.RWMutex
	groups  map[string]*domain.TravelGroup
	members map[string][]*domain.GroupMembership
}

// NewMockGroupRepository creates a new mock group repository.
func NewMockGroupRepository() *MockGroupRepository {
	return &MockGroupRepository{
		groups:  make(map[string]*domain.TravelGroup),
		members: make(map[string][]*domain.GroupMembership),
	}
}

func (m *MockGroupRepository) Create(ctx context.Context, group *domain.TravelGroup) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copy := *group
	m.groups[group.ID] = &copy
	return nil
}

func (m *MockGroupRepository) GetByID(ctx context.Context, id string) (*domain.TravelGroup, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	group, ok := m.groups[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *group
	return &copy, nil
}

func (m *MockGroupRepository) List(ctx context.Context) ([]*domain.TravelGroup, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*domain.TravelGroup, 0, len(m.groups))
	for _, g := range m.groups {
		copy := *g
		result = append(result, &copy)
	}
	return result, nil
}

func (m *MockGroupRepository) AddMember(ctx context.Context, membership *domain.GroupMembership) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.members[membership.GroupID] {
		if existing.UserID == membership.UserID {
			return repository.ErrDuplicate
		}
	}
	copy := *membership
	m.members[membership.GroupID] = append(m.members[membership.GroupID], &copy)
	return nil
}

func (m *MockGroupRepository) ListMembers(ctx context.Context, groupID string) ([]*domain.GroupMembership, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*domain.GroupMembership, 0, len(m.members[groupID]))
	for _, member := range m.members[groupID] {
		copy := *member
		result = append(result, &copy)
	}
	return result, nil
}

// ──────────────────────────────────────────────
// MOCK REDIS STORES
// ──────────────────────────────────────────────

// MockLockStore is an in-memory LockStoreInterface with SetNX
// semantics.
type MockLockStore struct {
	mu    sync.Mutex
	locks map[string]bool

	AcquireError error
}

// NewMockLockStore creates a new mock lock store.
func NewMockLockStore() *MockLockStore {
	return &MockLockStore{locks: make(map[string]bool)}
}

func (m *MockLockStore) AcquireReservationLock(ctx context.Context, reservationID string, ttl time.Duration) (bool, error) {
	if m.AcquireError != nil {
		return false, m.AcquireError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.locks[reservationID] {
		return false, nil
	}
	m.locks[reservationID] = true
	return true, nil
}

func (m *MockLockStore) ReleaseReservationLock(ctx context.Context, reservationID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.locks, reservationID)
	return nil
}

// IsLocked checks if a reservation is locked (for test assertions).
func (m *MockLockStore) IsLocked(reservationID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.locks[reservationID]
}

// MockOTPStore is an in-memory OTPStoreInterface.
type MockOTPStore struct {
	mu       sync.Mutex
	codes    map[string]string
	attempts map[string]int
}

// NewMockOTPStore creates a new mock OTP store.
func NewMockOTPStore() *MockOTPStore {
	return &MockOTPStore{
		codes:    make(map[string]string),
		attempts: make(map[string]int),
	}
}

func (m *MockOTPStore) SetCode(ctx context.Context, phone, code string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.codes[phone] = code
	delete(m.attempts, phone)
	return nil
}

func (m *MockOTPStore) GetCode(ctx context.Context, phone string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.codes[phone], nil
}

func (m *MockOTPStore) IncrementAttempts(ctx context.Context, phone string, ttl time.Duration) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.attempts[phone]++
	return m.attempts[phone], nil
}

func (m *MockOTPStore) Invalidate(ctx context.Context, phone string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.codes, phone)
	delete(m.attempts, phone)
	return nil
}

// ──────────────────────────────────────────────
// MOCK EXTERNAL ADAPTERS
// ──────────────────────────────────────────────

// MockCacheStore is an in-memory stand-in for the redis-backed entity cache.
type MockCacheStore struct {
	mu      sync.Mutex
	trips   map[string]*redis.CachedTrip
	ratings map[string]*redis.CachedRating

	TripHitCount  int32
	TripMissCount int32
}

// NewMockCacheStore creates an empty cache mock.
func NewMockCacheStore() *MockCacheStore {
	return &MockCacheStore{
		trips:   make(map[string]*redis.CachedTrip),
		ratings: make(map[string]*redis.CachedRating),
	}
}

func (c *MockCacheStore) GetTrip(ctx context.Context, tripID string) (*redis.CachedTrip, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	trip, ok := c.trips[tripID]
	if !ok {
		atomic.AddInt32(&c.TripMissCount, 1)
		return nil, nil
	}
	atomic.AddInt32(&c.TripHitCount, 1)
	copied := *trip
	return &copied, nil
}

func (c *MockCacheStore) SetTrip(ctx context.Context, trip *redis.CachedTrip) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	copied := *trip
	c.trips[trip.ID] = &copied
	return nil
}

func (c *MockCacheStore) InvalidateTrip(ctx context.Context, tripID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.trips, tripID)
	return nil
}

func (c *MockCacheStore) GetRating(ctx context.Context, driverID string) (*redis.CachedRating, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	rating, ok := c.ratings[driverID]
	if !ok {
		return nil, nil
	}
	copied := *rating
	return &copied, nil
}

func (c *MockCacheStore) SetRating(ctx context.Context, rating *redis.CachedRating) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	copied := *rating
	c.ratings[rating.DriverID] = &copied
	return nil
}

func (c *MockCacheStore) InvalidateRating(ctx context.Context, driverID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.ratings, driverID)
	return nil
}

// CapturingOTPSender records the last code sent per phone number.
type CapturingOTPSender struct {
	mu    sync.Mutex
	codes map[string]string

	SendCallCount int32
	SendError     error
}

// NewCapturingOTPSender creates a new capturing sender.
func NewCapturingOTPSender() *CapturingOTPSender {
	return &CapturingOTPSender{codes: make(map[string]string)}
}

func (s *CapturingOTPSender) Send(ctx context.Context, phone, code string) error {
	atomic.AddInt32(&s.SendCallCount, 1)
	if s.SendError != nil {
		return s.SendError
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.codes[phone] = code
	return nil
}

// LastCode returns the last code sent to a phone number.
func (s *CapturingOTPSender) LastCode(phone string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.codes[phone]
}

// FailingGateway is a PaymentGateway whose charge outcome is scripted.
type FailingGateway struct {
	ChargeError error
	RefundError error

	ChargeCallCount int32
	RefundCallCount int32
}

func (g *FailingGateway) Charge(ctx context.Context, provider domain.PaymentProvider, phoneOrToken string, amount float64) (string, error) {
	atomic.AddInt32(&g.ChargeCallCount, 1)
	if g.ChargeError != nil {
		return "", g.ChargeError
	}
	return "txref-scripted", nil
}

func (g *FailingGateway) Refund(ctx context.Context, transactionRef string, amount float64) error {
	atomic.AddInt32(&g.RefundCallCount, 1)
	return g.RefundError
}

// RecordingPublisher captures published events for assertions.
type RecordingPublisher struct {
	mu     sync.Mutex
	events []PublishedEvent
}

// PublishedEvent is one captured Publish call.
type PublishedEvent struct {
	Topic string
	Key   string
}

// NewRecordingPublisher creates a new recording publisher.
func NewRecordingPublisher() *RecordingPublisher {
	return &RecordingPublisher{}
}

func (p *RecordingPublisher) Publish(topic, key string, value any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, PublishedEvent{Topic: topic, Key: key})
}

// Topics returns the topics published so far, in order.
func (p *RecordingPublisher) Topics() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Topic)
	}
	return out
}

// Ensure the mocks satisfy the interfaces they stand in for.
var (
	_ repository.UserRepository          = (*MockUserRepository)(nil)
	_ repository.DriverProfileRepository = (*MockDriverProfileRepository)(nil)
	_ repository.SubscriptionRepository  = (*MockSubscriptionRepository)(nil)
	_ repository.TripRepository          = (*MockTripRepository)(nil)
	_ repository.ReservationRepository   = (*MockReservationRepository)(nil)
	_ repository.PaymentRepository       = (*MockPaymentRepository)(nil)
	_ repository.DisputeRepository       = (*MockDisputeRepository)(nil)
	_ repository.ReviewRepository        = (*MockReviewRepository)(nil)
	_ repository.GroupRepository         = (*MockGroupRepository)(nil)
	_ service.ReservationStore           = (*MockReservationStore)(nil)
	_ redis.LockStoreInterface           = (*MockLockStore)(nil)
	_ redis.OTPStoreInterface            = (*MockOTPStore)(nil)
	_ redis.CacheStoreInterface          = (*MockCacheStore)(nil)
	_ service.PaymentGateway             = (*FailingGateway)(nil)
	_ service.OTPSender                  = (*CapturingOTPSender)(nil)
	_ service.EventPublisher             = (*RecordingPublisher)(nil)
)

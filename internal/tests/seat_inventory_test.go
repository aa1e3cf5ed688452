package tests

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"axisride/internal/repository"
	"axisride/internal/service"
)

// ──────────────────────────────────────────────
// SEAT INVENTORY UNDER CONTENTION
// ──────────────────────────────────────────────

func TestSeatInventory_ConcurrentCreatesNeverOversell(t *testing.T) {
	t.Parallel()

	const (
		totalSeats = 3
		attempts   = 10
	)

	env := newBookingEnv()
	env.addDriver("driver-1")
	env.addTrip("trip-1", "driver-1", totalSeats, 1500)

	passengers := make([]string, attempts)
	for i := range passengers {
		id := fmt.Sprintf("passenger-%d", i)
		env.addPassenger(id)
		passengers[i] = id
	}

	var wg sync.WaitGroup
	results := make([]error, attempts)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			user, _ := env.users.GetByID(context.Background(), passengers[i])
			_, results[i] = env.engine.Create(context.Background(), user, service.CreateReservationRequest{
				TripID: "trip-1",
				Seats:  1,
			})
		}(i)
	}
	wg.Wait()

	succeeded, insufficient := 0, 0
	for _, err := range results {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, repository.ErrInsufficientSeats):
			insufficient++
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}

	if succeeded != totalSeats {
		t.Errorf("expected exactly %d successful reservations, got %d", totalSeats, succeeded)
	}
	if insufficient != attempts-totalSeats {
		t.Errorf("expected %d insufficient-seat rejections, got %d", attempts-totalSeats, insufficient)
	}
	if got := env.trips.GetTrip("trip-1").SeatsAvailable; got != 0 {
		t.Errorf("expected 0 seats available, got %d", got)
	}
	if env.reservations.CountReservations() != totalSeats {
		t.Errorf("expected %d reservations, got %d", totalSeats, env.reservations.CountReservations())
	}
}

func TestSeatInventory_MultiSeatRequestIsAllOrNothing(t *testing.T) {
	t.Parallel()

	env := newBookingEnv()
	passenger := env.addPassenger("passenger-1")
	env.addDriver("driver-1")
	env.addTrip("trip-1", "driver-1", 2, 1500)

	_, err := env.engine.Create(context.Background(), passenger, service.CreateReservationRequest{
		TripID: "trip-1",
		Seats:  3,
	})
	if !errors.Is(err, repository.ErrInsufficientSeats) {
		t.Fatalf("expected ErrInsufficientSeats, got %v", err)
	}

	// A failed multi-seat request takes nothing.
	if got := env.trips.GetTrip("trip-1").SeatsAvailable; got != 2 {
		t.Errorf("expected 2 seats available, got %d", got)
	}
}

func TestSeatInventory_CancelFreesSeatsForRebooking(t *testing.T) {
	t.Parallel()

	env := newBookingEnv()
	first := env.addPassenger("passenger-1")
	second := env.addPassenger("passenger-2")
	env.addDriver("driver-1")
	env.addTrip("trip-1", "driver-1", 1, 1500)

	reservation, err := env.engine.Create(context.Background(), first, service.CreateReservationRequest{
		TripID: "trip-1",
		Seats:  1,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Trip is full.
	_, err = env.engine.Create(context.Background(), second, service.CreateReservationRequest{
		TripID: "trip-1",
		Seats:  1,
	})
	if !errors.Is(err, repository.ErrInsufficientSeats) {
		t.Fatalf("expected ErrInsufficientSeats, got %v", err)
	}

	if _, err := env.engine.Cancel(context.Background(), first, reservation.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// The freed seat is bookable again.
	if _, err := env.engine.Create(context.Background(), second, service.CreateReservationRequest{
		TripID: "trip-1",
		Seats:  1,
	}); err != nil {
		t.Fatalf("expected rebooking to succeed, got %v", err)
	}
}

func TestSeatInventory_ReleaseNeverExceedsTotal(t *testing.T) {
	t.Parallel()

	env := newBookingEnv()
	env.addDriver("driver-1")
	env.addTrip("trip-1", "driver-1", 4, 1500)

	// Releasing more than was ever reserved caps at the trip total.
	if err := env.trips.ReleaseSeats(context.Background(), "trip-1", 10); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := env.trips.GetTrip("trip-1").SeatsAvailable; got != 4 {
		t.Errorf("expected seats capped at 4, got %d", got)
	}
}

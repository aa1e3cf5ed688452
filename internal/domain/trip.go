package domain

import "time"

// TripStatus represents the current status of a published trip.
type TripStatus string

const (
	TripStatusActive    TripStatus = "ACTIVE"
	TripStatusCompleted TripStatus = "COMPLETED"
	TripStatusCancelled TripStatus = "CANCELLED"
)

// Trip is a driver-published journey with seat inventory. Seat counts
// are only mutated through the catalog's atomic reserve/release
// operations; the invariant 0 <= SeatsAvailable <= Seats holds at every
// observable instant.
type Trip struct {
	ID             string
	DriverID       string
	Origin         string
	Destination    string
	DepartureTime  time.Time
	PricePerSeat   float64
	Currency       string
	Seats          int
	SeatsAvailable int
	Status         TripStatus
	Description    string

	// Vehicle descriptor snapshotted from the driver profile at
	// publish time.
	VehicleBrand string
	VehicleModel string
	VehicleColor string
	LicensePlate string

	LuggageAllowed bool
	PetsAllowed    bool
	SmokingAllowed bool
	MusicAllowed   bool

	CreatedAt time.Time
}

// Bookable reports whether new reservations may be created against the
// trip as of now.
func (t *Trip) Bookable(now time.Time) bool {
	return t.Status == TripStatusActive && t.DepartureTime.After(now)
}

// Complete marks an active trip as completed.
func (t *Trip) Complete() error {
	if t.Status == TripStatusCompleted {
		return nil
	}
	if t.Status != TripStatusActive {
		return ErrInvalidTransition
	}
	t.Status = TripStatusCompleted
	return nil
}

// Cancel marks an active trip as cancelled. Existing reservations keep
// their own lifecycle; cancelling the trip does not destroy them.
func (t *Trip) Cancel() error {
	if t.Status == TripStatusCancelled {
		return nil
	}
	if t.Status != TripStatusActive {
		return ErrInvalidTransition
	}
	t.Status = TripStatusCancelled
	return nil
}

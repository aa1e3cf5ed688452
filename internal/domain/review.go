package domain

import "time"

// Review is a passenger's post-trip rating, keyed by reservation.
// Exactly one per reservation, only after boarding validation.
type Review struct {
	ID            string
	ReservationID string
	RaterID       string
	DriverID      string
	Rating        int
	Comment       string
	CreatedAt     time.Time
}

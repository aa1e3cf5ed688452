package domain

import "time"

// ReservationStatus represents the current status of a reservation.
type ReservationStatus string

const (
	ReservationStatusPendingPayment ReservationStatus = "PENDING_PAYMENT"
	ReservationStatusPaid           ReservationStatus = "PAID"
	ReservationStatusValidated      ReservationStatus = "VALIDATED"
	ReservationStatusCancelled      ReservationStatus = "CANCELLED"
	ReservationStatusRefunded       ReservationStatus = "REFUNDED"
)

// Reservation is a passenger's seat hold against a trip. Amount is
// snapshotted at creation (price at creation x seats); later trip price
// changes never affect it. Code is the human-readable boarding code the
// driver checks at pickup.
type Reservation struct {
	ID          string
	TripID      string
	PassengerID string
	Seats       int
	Amount      float64
	Code        string
	Status      ReservationStatus
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// MarkPaid transitions PENDING_PAYMENT -> PAID. Any other starting
// state is an error: paying twice, or paying a cancelled reservation,
// is a fault the caller must surface.
func (r *Reservation) MarkPaid() error {
	if r.Status != ReservationStatusPendingPayment {
		return ErrInvalidTransition
	}
	r.Status = ReservationStatusPaid
	return nil
}

// Validate transitions PAID -> VALIDATED on boarding confirmation.
// Validating an already validated reservation is a no-op.
func (r *Reservation) Validate() error {
	if r.Status == ReservationStatusValidated {
		return nil
	}
	if r.Status != ReservationStatusPaid {
		return ErrInvalidTransition
	}
	r.Status = ReservationStatusValidated
	return nil
}

// Cancel transitions PENDING_PAYMENT -> CANCELLED. Cancelling an
// already cancelled reservation is a no-op. Paid reservations must go
// through Refund instead.
func (r *Reservation) Cancel() error {
	if r.Status == ReservationStatusCancelled {
		return nil
	}
	if r.Status != ReservationStatusPendingPayment {
		return ErrInvalidTransition
	}
	r.Status = ReservationStatusCancelled
	return nil
}

// Refund transitions PAID -> REFUNDED. Refunding an already refunded
// reservation is a no-op.
func (r *Reservation) Refund() error {
	if r.Status == ReservationStatusRefunded {
		return nil
	}
	if r.Status != ReservationStatusPaid {
		return ErrInvalidTransition
	}
	r.Status = ReservationStatusRefunded
	return nil
}

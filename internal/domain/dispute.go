package domain

import "time"

// DisputeStatus represents the lifecycle of a dispute.
type DisputeStatus string

const (
	DisputeStatusOpen     DisputeStatus = "OPEN"
	DisputeStatusResolved DisputeStatus = "RESOLVED"
)

// DisputeOutcome is the admin's decision when resolving a dispute.
type DisputeOutcome string

const (
	OutcomeRefund  DisputeOutcome = "REFUND"
	OutcomeRelease DisputeOutcome = "RELEASE"
	OutcomeNone    DisputeOutcome = "NONE"
)

// Dispute is a contested reservation raised by either party. At most
// one open dispute per reservation at a time.
type Dispute struct {
	ID            string
	ReservationID string
	RaisedBy      string
	Reason        string
	Description   string
	Status        DisputeStatus
	Resolution    string
	Outcome       DisputeOutcome
	CreatedAt     time.Time
	ResolvedAt    time.Time
}

// Resolve closes an open dispute with the admin's decision.
func (d *Dispute) Resolve(resolution string, outcome DisputeOutcome, now time.Time) error {
	if d.Status != DisputeStatusOpen {
		return ErrInvalidTransition
	}
	d.Status = DisputeStatusResolved
	d.Resolution = resolution
	d.Outcome = outcome
	d.ResolvedAt = now
	return nil
}

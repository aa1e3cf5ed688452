package domain

import "time"

// PaymentProvider identifies the payment channel used to charge a
// passenger.
type PaymentProvider string

const (
	ProviderOrangeMoney PaymentProvider = "ORANGE_MONEY"
	ProviderMTNMoMo     PaymentProvider = "MTN_MOMO"
	ProviderCard        PaymentProvider = "CARD"
)

// PaymentStatus represents the charge outcome of a payment.
type PaymentStatus string

const (
	PaymentStatusInitiated PaymentStatus = "INITIATED"
	PaymentStatusSucceeded PaymentStatus = "SUCCEEDED"
	PaymentStatusFailed    PaymentStatus = "FAILED"
)

// EscrowStatus tracks where captured funds sit. Only meaningful once
// the payment succeeded. HELD -> {RELEASED | REFUNDED}; both are
// terminal, a payment is never both.
type EscrowStatus string

const (
	EscrowStatusHeld     EscrowStatus = "HELD"
	EscrowStatusReleased EscrowStatus = "RELEASED"
	EscrowStatusRefunded EscrowStatus = "REFUNDED"
)

// Payment is the charge tied to exactly one reservation. Amount must
// equal the reservation amount; TransactionRef is unique per gateway
// charge.
type Payment struct {
	ID             string
	ReservationID  string
	Provider       PaymentProvider
	PhoneNumber    string
	CardToken      string
	Amount         float64
	TransactionRef string
	Status         PaymentStatus
	EscrowStatus   EscrowStatus
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Succeed records a successful gateway charge and places the funds in
// escrow.
func (p *Payment) Succeed(txRef string) error {
	if p.Status != PaymentStatusInitiated {
		return ErrInvalidTransition
	}
	p.Status = PaymentStatusSucceeded
	p.EscrowStatus = EscrowStatusHeld
	p.TransactionRef = txRef
	return nil
}

// Fail records a gateway decline or timeout. Terminal for this attempt;
// the reservation stays pending and a new payment may be initiated.
func (p *Payment) Fail() error {
	if p.Status != PaymentStatusInitiated {
		return ErrInvalidTransition
	}
	p.Status = PaymentStatusFailed
	return nil
}

// ReleaseEscrow moves held funds to the driver. Terminal.
func (p *Payment) ReleaseEscrow() error {
	if p.Status != PaymentStatusSucceeded || p.EscrowStatus != EscrowStatusHeld {
		return ErrInvalidTransition
	}
	p.EscrowStatus = EscrowStatusReleased
	return nil
}

// RefundEscrow returns held funds to the passenger. Terminal.
func (p *Payment) RefundEscrow() error {
	if p.Status != PaymentStatusSucceeded || p.EscrowStatus != EscrowStatusHeld {
		return ErrInvalidTransition
	}
	p.EscrowStatus = EscrowStatusRefunded
	return nil
}

package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"axisride/internal/domain"
)

// PaymentGateway is the interface for the external payment provider
// (Mobile Money aggregator or card processor). Calls are synchronous
// with a bounded timeout enforced by the caller; a timeout is a
// failure, never an assumed success. Charge is idempotent on the
// transaction ref if retried.
type PaymentGateway interface {
	// Charge captures amount through the given provider and returns the
	// provider's transaction reference.
	Charge(ctx context.Context, provider domain.PaymentProvider, phoneOrToken string, amount float64) (string, error)

	// Refund returns a previously captured charge to the payer.
	Refund(ctx context.Context, transactionRef string, amount float64) error
}

// OTPSender is the interface for the external SMS/voice channel that
// delivers one-time codes.
type OTPSender interface {
	Send(ctx context.Context, phone, code string) error
}

// gatewayTimeout bounds every external gateway call.
const gatewayTimeout = 10 * time.Second

// callGateway runs fn under the gateway timeout and folds a deadline
// hit into ErrGatewayTimeout.
func callGateway(ctx context.Context, fn func(ctx context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, gatewayTimeout)
	defer cancel()

	err := fn(ctx)
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrGatewayTimeout
	}
	return err
}

// MockGateway is an in-memory gateway for development and tests. It
// always authorizes charges and remembers refunds by transaction ref.
type MockGateway struct {
	mu       sync.Mutex
	charges  map[string]float64
	refunded map[string]bool
}

// NewMockGateway creates a new MockGateway.
func NewMockGateway() *MockGateway {
	return &MockGateway{
		charges:  make(map[string]float64),
		refunded: make(map[string]bool),
	}
}

// Charge always succeeds and returns a fresh transaction ref.
func (g *MockGateway) Charge(ctx context.Context, provider domain.PaymentProvider, phoneOrToken string, amount float64) (string, error) {
	ref := fmt.Sprintf("mock-%s", uuid.New().String())
	g.mu.Lock()
	g.charges[ref] = amount
	g.mu.Unlock()
	return ref, nil
}

// Refund marks a previous charge refunded.
func (g *MockGateway) Refund(ctx context.Context, transactionRef string, amount float64) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.charges[transactionRef]; !ok {
		return fmt.Errorf("unknown transaction ref %s", transactionRef)
	}
	g.refunded[transactionRef] = true
	return nil
}

// Refunded reports whether a transaction ref was refunded (test hook).
func (g *MockGateway) Refunded(transactionRef string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.refunded[transactionRef]
}

// MockOTPSender is an OTPSender that just logs nothing and succeeds.
type MockOTPSender struct{}

// NewMockOTPSender creates a new MockOTPSender.
func NewMockOTPSender() *MockOTPSender {
	return &MockOTPSender{}
}

// Send always succeeds.
func (s *MockOTPSender) Send(ctx context.Context, phone, code string) error {
	return nil
}

// Ensure mocks implement their interfaces.
var (
	_ PaymentGateway = (*MockGateway)(nil)
	_ OTPSender      = (*MockOTPSender)(nil)
)

package tests

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"axisride/internal/domain"
	"axisride/internal/service"
)

// wrongCode can never collide with a generated numeric code.
const wrongCode = "not-it"

type identityEnv struct {
	users  *MockUserRepository
	otp    *MockOTPStore
	sender *CapturingOTPSender
	events *RecordingPublisher

	identity *service.IdentityService
}

func newIdentityEnv(t *testing.T) *identityEnv {
	t.Helper()

	tokens, err := service.NewTokenIssuer("test-secret", time.Hour)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	env := &identityEnv{
		users:  NewMockUserRepository(),
		otp:    NewMockOTPStore(),
		sender: NewCapturingOTPSender(),
		events: NewRecordingPublisher(),
	}
	env.identity = service.NewIdentityService(env.users, env.otp, env.sender, tokens, env.events)
	return env
}

// registerActive runs the full register-and-verify flow for a phone.
func (env *identityEnv) registerActive(t *testing.T, phone string, role domain.Role) *domain.User {
	t.Helper()

	_, err := env.identity.Register(context.Background(), service.RegisterRequest{
		Phone: phone,
		Role:  role,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	user, _, err := env.identity.VerifyRegistration(context.Background(), phone, env.sender.LastCode(phone))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return user
}

// ──────────────────────────────────────────────
// REGISTRATION
// ──────────────────────────────────────────────

func TestIdentity_RegisterAndVerifyActivatesAccount(t *testing.T) {
	t.Parallel()

	env := newIdentityEnv(t)

	user, err := env.identity.Register(context.Background(), service.RegisterRequest{
		Phone:       "+2250700000001",
		DisplayName: "Awa",
		Role:        domain.RolePassenger,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user.Status != domain.UserStatusPendingOTP {
		t.Errorf("expected status %s, got %s", domain.UserStatusPendingOTP, user.Status)
	}

	code := env.sender.LastCode("+2250700000001")
	if len(code) != 6 {
		t.Fatalf("expected a 6-digit code, got %q", code)
	}

	verified, token, err := env.identity.VerifyRegistration(context.Background(), "+2250700000001", code)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if verified.Status != domain.UserStatusActive {
		t.Errorf("expected status %s, got %s", domain.UserStatusActive, verified.Status)
	}
	if token == "" {
		t.Fatal("expected a session token")
	}

	resolved, err := env.identity.ResolveToken(context.Background(), token)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resolved.ID != user.ID {
		t.Errorf("expected token to resolve to %s, got %s", user.ID, resolved.ID)
	}
}

func TestIdentity_RegisterValidation(t *testing.T) {
	t.Parallel()

	env := newIdentityEnv(t)

	cases := []struct {
		name string
		req  service.RegisterRequest
		want error
	}{
		{"missing phone", service.RegisterRequest{Role: domain.RolePassenger}, service.ErrInvalidPhone},
		{"admin role", service.RegisterRequest{Phone: "+2250700000001", Role: domain.RoleAdmin}, service.ErrInvalidRole},
		{"unknown role", service.RegisterRequest{Phone: "+2250700000001", Role: "SUPERUSER"}, service.ErrInvalidRole},
	}

	for _, tc := range cases {
		if _, err := env.identity.Register(context.Background(), tc.req); !errors.Is(err, tc.want) {
			t.Errorf("%s: expected %v, got %v", tc.name, tc.want, err)
		}
	}
}

func TestIdentity_RegisterActivePhoneRejected(t *testing.T) {
	t.Parallel()

	env := newIdentityEnv(t)
	env.registerActive(t, "+2250700000001", domain.RolePassenger)

	_, err := env.identity.Register(context.Background(), service.RegisterRequest{
		Phone: "+2250700000001",
		Role:  domain.RoleDriver,
	})
	if !errors.Is(err, service.ErrPhoneRegistered) {
		t.Fatalf("expected ErrPhoneRegistered, got %v", err)
	}
}

func TestIdentity_RegisterPendingPhoneResendsCode(t *testing.T) {
	t.Parallel()

	env := newIdentityEnv(t)

	for i := 0; i < 2; i++ {
		_, err := env.identity.Register(context.Background(), service.RegisterRequest{
			Phone: "+2250700000001",
			Role:  domain.RolePassenger,
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	if got := atomic.LoadInt32(&env.users.CreateCallCount); got != 1 {
		t.Errorf("expected 1 account created, got %d", got)
	}
	if got := atomic.LoadInt32(&env.sender.SendCallCount); got != 2 {
		t.Errorf("expected 2 codes sent, got %d", got)
	}

	// The latest code wins.
	user, _, err := env.identity.VerifyRegistration(context.Background(), "+2250700000001", env.sender.LastCode("+2250700000001"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user.Status != domain.UserStatusActive {
		t.Errorf("expected status %s, got %s", domain.UserStatusActive, user.Status)
	}
}

// ──────────────────────────────────────────────
// OTP ATTEMPT BUDGET
// ──────────────────────────────────────────────

func TestIdentity_WrongCodeBudget(t *testing.T) {
	t.Parallel()

	env := newIdentityEnv(t)

	_, err := env.identity.Register(context.Background(), service.RegisterRequest{
		Phone: "+2250700000001",
		Role:  domain.RolePassenger,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for i := 0; i < 4; i++ {
		_, _, err := env.identity.VerifyRegistration(context.Background(), "+2250700000001", wrongCode)
		if !errors.Is(err, service.ErrInvalidOTP) {
			t.Fatalf("attempt %d: expected ErrInvalidOTP, got %v", i+1, err)
		}
	}

	_, _, err = env.identity.VerifyRegistration(context.Background(), "+2250700000001", wrongCode)
	if !errors.Is(err, service.ErrTooManyAttempts) {
		t.Fatalf("expected ErrTooManyAttempts, got %v", err)
	}

	// The exhausted code is dead even when guessed right afterwards.
	_, _, err = env.identity.VerifyRegistration(context.Background(), "+2250700000001", env.sender.LastCode("+2250700000001"))
	if !errors.Is(err, service.ErrInvalidOTP) {
		t.Fatalf("expected ErrInvalidOTP after invalidation, got %v", err)
	}
}

func TestIdentity_CodeIsSingleUse(t *testing.T) {
	t.Parallel()

	env := newIdentityEnv(t)
	env.registerActive(t, "+2250700000001", domain.RolePassenger)

	// The registration code was consumed by the successful verify.
	_, _, err := env.identity.VerifyRegistration(context.Background(), "+2250700000001", env.sender.LastCode("+2250700000001"))
	if !errors.Is(err, service.ErrInvalidOTP) {
		t.Fatalf("expected ErrInvalidOTP, got %v", err)
	}
}

// ──────────────────────────────────────────────
// LOGIN AND SUSPENSION
// ──────────────────────────────────────────────

func TestIdentity_LoginFlow(t *testing.T) {
	t.Parallel()

	env := newIdentityEnv(t)
	registered := env.registerActive(t, "+2250700000001", domain.RoleDriver)

	if err := env.identity.RequestLogin(context.Background(), "+2250700000001"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	user, token, err := env.identity.VerifyLogin(context.Background(), "+2250700000001", env.sender.LastCode("+2250700000001"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user.ID != registered.ID {
		t.Errorf("expected user %s, got %s", registered.ID, user.ID)
	}
	if token == "" {
		t.Fatal("expected a session token")
	}
}

func TestIdentity_LoginRequiresActiveAccount(t *testing.T) {
	t.Parallel()

	env := newIdentityEnv(t)

	// Still pending verification.
	_, err := env.identity.Register(context.Background(), service.RegisterRequest{
		Phone: "+2250700000001",
		Role:  domain.RolePassenger,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := env.identity.RequestLogin(context.Background(), "+2250700000001"); !errors.Is(err, service.ErrInvalidStateTransition) {
		t.Fatalf("expected ErrInvalidStateTransition, got %v", err)
	}
}

func TestIdentity_SuspensionBlocksSessions(t *testing.T) {
	t.Parallel()

	env := newIdentityEnv(t)
	user := env.registerActive(t, "+2250700000001", domain.RolePassenger)
	admin := &domain.User{ID: "admin-1", Role: domain.RoleAdmin, Status: domain.UserStatusActive}
	env.users.AddUser(admin)

	_, token, err := env.identity.VerifyLogin(context.Background(), user.Phone, mustLoginCode(t, env, user.Phone))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	suspended, err := env.identity.Suspend(context.Background(), admin, user.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if suspended.Status != domain.UserStatusSuspended {
		t.Errorf("expected status %s, got %s", domain.UserStatusSuspended, suspended.Status)
	}

	// Existing tokens die with the account.
	if _, err := env.identity.ResolveToken(context.Background(), token); !errors.Is(err, service.ErrAccountSuspended) {
		t.Errorf("expected ErrAccountSuspended on resolve, got %v", err)
	}
	if err := env.identity.RequestLogin(context.Background(), user.Phone); !errors.Is(err, service.ErrAccountSuspended) {
		t.Errorf("expected ErrAccountSuspended on login request, got %v", err)
	}

	// Reinstatement restores access.
	if _, err := env.identity.Reinstate(context.Background(), admin, user.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := env.identity.ResolveToken(context.Background(), token); err != nil {
		t.Errorf("expected token to resolve after reinstatement, got %v", err)
	}
}

func TestIdentity_SuspendAdminOnly(t *testing.T) {
	t.Parallel()

	env := newIdentityEnv(t)
	user := env.registerActive(t, "+2250700000001", domain.RolePassenger)
	other := env.registerActive(t, "+2250700000002", domain.RolePassenger)

	if _, err := env.identity.Suspend(context.Background(), other, user.ID); !errors.Is(err, service.ErrRoleNotAllowed) {
		t.Fatalf("expected ErrRoleNotAllowed, got %v", err)
	}
}

func TestIdentity_ResolveRejectsGarbageToken(t *testing.T) {
	t.Parallel()

	env := newIdentityEnv(t)

	if _, err := env.identity.ResolveToken(context.Background(), "not.a.token"); err == nil {
		t.Fatal("expected an error for a malformed token")
	}
}

// mustLoginCode requests a login code and returns it.
func mustLoginCode(t *testing.T, env *identityEnv, phone string) string {
	t.Helper()
	if err := env.identity.RequestLogin(context.Background(), phone); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return env.sender.LastCode(phone)
}

package service

import (
	"context"
	"crypto/rand"
	"math/big"
	"time"

	"github.com/google/uuid"

	"axisride/internal/domain"
	"axisride/internal/redis"
	"axisride/internal/repository"
)

const (
	otpTTL         = 5 * time.Minute
	otpMaxAttempts = 5
	otpDigits      = 6
)

// IdentityService handles phone-based registration, login, and session
// issuance.
type IdentityService struct {
	userRepo repository.UserRepository
	otpStore redis.OTPStoreInterface
	sender   OTPSender
	tokens   *TokenIssuer
	events   EventPublisher
}

// NewIdentityService creates a new IdentityService.
func NewIdentityService(
	userRepo repository.UserRepository,
	otpStore redis.OTPStoreInterface,
	sender OTPSender,
	tokens *TokenIssuer,
	events EventPublisher,
) *IdentityService {
	return &IdentityService{
		userRepo: userRepo,
		otpStore: otpStore,
		sender:   sender,
		tokens:   tokens,
		events:   events,
	}
}

// RegisterRequest contains the parameters for registering a user.
type RegisterRequest struct {
	Phone       string
	DisplayName string
	Role        domain.Role
}

// Register creates a PENDING_OTP account and sends a verification code.
// Re-registering a phone that is still pending just re-sends a code;
// admin accounts are seeded, never self-registered.
func (s *IdentityService) Register(ctx context.Context, req RegisterRequest) (*domain.User, error) {
	if req.Phone == "" {
		return nil, ErrInvalidPhone
	}
	if req.Role != domain.RolePassenger && req.Role != domain.RoleDriver {
		return nil, ErrInvalidRole
	}

	existing, err := s.userRepo.GetByPhone(ctx, req.Phone)
	if err != nil && err != repository.ErrNotFound {
		return nil, err
	}

	if existing != nil {
		if existing.Status != domain.UserStatusPendingOTP {
			return nil, ErrPhoneRegistered
		}
		if err := s.sendCode(ctx, req.Phone); err != nil {
			return nil, err
		}
		return existing, nil
	}

	user := &domain.User{
		ID:          uuid.New().String(),
		Phone:       req.Phone,
		DisplayName: req.DisplayName,
		Role:        req.Role,
		Status:      domain.UserStatusPendingOTP,
		CreatedAt:   time.Now(),
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if err == repository.ErrDuplicate {
			return nil, ErrPhoneRegistered
		}
		return nil, err
	}

	if err := s.sendCode(ctx, req.Phone); err != nil {
		return nil, err
	}

	s.events.Publish(TopicUserRegistered, user.ID, map[string]string{
		"user_id": user.ID,
		"phone":   user.Phone,
		"role":    string(user.Role),
	})

	return user, nil
}

// VerifyRegistration checks the code sent at registration, activates
// the account, and issues a session token.
func (s *IdentityService) VerifyRegistration(ctx context.Context, phone, code string) (*domain.User, string, error) {
	user, err := s.userRepo.GetByPhone(ctx, phone)
	if err != nil {
		if err == repository.ErrNotFound {
			return nil, "", ErrInvalidOTP
		}
		return nil, "", err
	}

	if err := s.checkCode(ctx, phone, code); err != nil {
		return nil, "", err
	}

	if user.Status == domain.UserStatusPendingOTP {
		if err := user.Activate(); err != nil {
			return nil, "", ErrInvalidStateTransition
		}
		if err := s.userRepo.Update(ctx, user); err != nil {
			return nil, "", err
		}
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return nil, "", err
	}

	return user, token, nil
}

// RequestLogin sends a login code to an existing account's phone.
func (s *IdentityService) RequestLogin(ctx context.Context, phone string) error {
	if phone == "" {
		return ErrInvalidPhone
	}

	user, err := s.userRepo.GetByPhone(ctx, phone)
	if err != nil {
		return err
	}

	if user.Status == domain.UserStatusSuspended {
		return ErrAccountSuspended
	}
	if !user.CanAuthenticate() {
		return ErrInvalidStateTransition
	}

	return s.sendCode(ctx, phone)
}

// VerifyLogin checks a login code and issues a session token.
func (s *IdentityService) VerifyLogin(ctx context.Context, phone, code string) (*domain.User, string, error) {
	user, err := s.userRepo.GetByPhone(ctx, phone)
	if err != nil {
		if err == repository.ErrNotFound {
			return nil, "", ErrInvalidOTP
		}
		return nil, "", err
	}

	if user.Status == domain.UserStatusSuspended {
		return nil, "", ErrAccountSuspended
	}

	if err := s.checkCode(ctx, phone, code); err != nil {
		return nil, "", err
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return nil, "", err
	}

	return user, token, nil
}

// ResolveToken turns a bearer token into the current user record. A
// suspended account fails resolution even with a valid token.
func (s *IdentityService) ResolveToken(ctx context.Context, raw string) (*domain.User, error) {
	claims, err := s.tokens.Verify(raw)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByID(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}

	if user.Status == domain.UserStatusSuspended {
		return nil, ErrAccountSuspended
	}

	return user, nil
}

// Suspend suspends the target account. Admin-only.
func (s *IdentityService) Suspend(ctx context.Context, admin *domain.User, userID string) (*domain.User, error) {
	if admin.Role != domain.RoleAdmin {
		return nil, ErrRoleNotAllowed
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	user.Suspend()
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// Reinstate returns a suspended account to active. Admin-only.
func (s *IdentityService) Reinstate(ctx context.Context, admin *domain.User, userID string) (*domain.User, error) {
	if admin.Role != domain.RoleAdmin {
		return nil, ErrRoleNotAllowed
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := user.Reinstate(); err != nil {
		return nil, ErrInvalidStateTransition
	}
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// sendCode generates a fresh numeric code, stores it, and hands it to
// the delivery channel.
func (s *IdentityService) sendCode(ctx context.Context, phone string) error {
	code, err := generateNumericCode(otpDigits)
	if err != nil {
		return err
	}

	if err := s.otpStore.SetCode(ctx, phone, code, otpTTL); err != nil {
		return err
	}

	return s.sender.Send(ctx, phone, code)
}

// checkCode validates a submitted code against the stored one and
// enforces the attempt budget.
func (s *IdentityService) checkCode(ctx context.Context, phone, code string) error {
	stored, err := s.otpStore.GetCode(ctx, phone)
	if err != nil {
		return err
	}

	if stored == "" {
		return ErrInvalidOTP
	}

	if stored != code {
		attempts, err := s.otpStore.IncrementAttempts(ctx, phone, otpTTL)
		if err != nil {
			return err
		}
		if attempts >= otpMaxAttempts {
			_ = s.otpStore.Invalidate(ctx, phone)
			return ErrTooManyAttempts
		}
		return ErrInvalidOTP
	}

	return s.otpStore.Invalidate(ctx, phone)
}

// generateNumericCode returns a random code of n decimal digits.
func generateNumericCode(n int) (string, error) {
	digits := make([]byte, n)
	for i := range digits {
		v, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", err
		}
		digits[i] = byte('0' + v.Int64())
	}
	return string(digits), nil
}

package domain

import "time"

// Role represents the role of a user on the platform.
type Role string

const (
	RolePassenger Role = "PASSENGER"
	RoleDriver    Role = "DRIVER"
	RoleAdmin     Role = "ADMIN"
)

// UserStatus represents the account status of a user.
type UserStatus string

const (
	UserStatusPendingOTP UserStatus = "PENDING_OTP"
	UserStatusActive     UserStatus = "ACTIVE"
	UserStatusVerified   UserStatus = "VERIFIED"
	UserStatusSuspended  UserStatus = "SUSPENDED"
)

// User represents an account on the platform. Phone numbers are unique.
type User struct {
	ID          string
	Phone       string
	DisplayName string
	Role        Role
	Status      UserStatus
	CreatedAt   time.Time
}

// Activate advances a user from PENDING_OTP to ACTIVE after code verification.
func (u *User) Activate() error {
	if u.Status != UserStatusPendingOTP {
		return ErrInvalidTransition
	}
	u.Status = UserStatusActive
	return nil
}

// Suspend marks the account suspended. Suspending an already suspended
// account is a no-op.
func (u *User) Suspend() {
	u.Status = UserStatusSuspended
}

// Reinstate returns a suspended account to ACTIVE.
func (u *User) Reinstate() error {
	if u.Status != UserStatusSuspended {
		return ErrInvalidTransition
	}
	u.Status = UserStatusActive
	return nil
}

// CanAuthenticate reports whether the account may hold a session.
func (u *User) CanAuthenticate() bool {
	return u.Status == UserStatusActive || u.Status == UserStatusVerified
}

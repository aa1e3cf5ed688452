package domain

import "time"

// SubscriptionStatus is derived from the stored timestamps at read time.
// Nothing transitions a subscription in the background.
type SubscriptionStatus string

const (
	SubscriptionStatusNone    SubscriptionStatus = "NONE"
	SubscriptionStatusTrial   SubscriptionStatus = "TRIAL"
	SubscriptionStatusActive  SubscriptionStatus = "ACTIVE"
	SubscriptionStatusExpired SubscriptionStatus = "EXPIRED"
)

// Subscription tracks a user's access window. A user gets at most one
// trial ever; paid renewals extend the current period instead of
// restarting it.
type Subscription struct {
	UserID         string
	TrialUsed      bool
	TrialStartedAt time.Time
	// PaidUntil is the end of the paid period; zero if never paid.
	PaidUntil time.Time
	// TrialUntil is the end of the trial period; zero if never trialed.
	TrialUntil time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// StatusAt derives the subscription status as of now. A paid period
// wins over a trial period when both are set.
func (s *Subscription) StatusAt(now time.Time) SubscriptionStatus {
	if !s.PaidUntil.IsZero() {
		if now.Before(s.PaidUntil) {
			return SubscriptionStatusActive
		}
		return SubscriptionStatusExpired
	}
	if !s.TrialUntil.IsZero() {
		if now.Before(s.TrialUntil) {
			return SubscriptionStatusTrial
		}
		return SubscriptionStatusExpired
	}
	return SubscriptionStatusNone
}

// AllowsFeatures reports whether the subscription satisfies the feature
// gate (trip creation, reservation creation, group joining) as of now.
func (s *Subscription) AllowsFeatures(now time.Time) bool {
	st := s.StatusAt(now)
	return st == SubscriptionStatusTrial || st == SubscriptionStatusActive
}

// StartTrial begins the one-time trial window.
func (s *Subscription) StartTrial(now time.Time, duration time.Duration) error {
	if s.TrialUsed || !s.PaidUntil.IsZero() {
		return ErrInvalidTransition
	}
	s.TrialUsed = true
	s.TrialStartedAt = now
	s.TrialUntil = now.Add(duration)
	return nil
}

// ExtendPaid extends the paid period by the given validity, anchored at
// max(now, current period end) so early renewals stack.
func (s *Subscription) ExtendPaid(now time.Time, validity time.Duration) {
	start := now
	if s.PaidUntil.After(start) {
		start = s.PaidUntil
	}
	s.PaidUntil = start.Add(validity)
}

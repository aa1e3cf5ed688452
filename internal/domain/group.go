package domain

import "time"

// TravelGroup is a recurring-commute group riders can join. Joining is
// subscription-gated like reservation creation.
type TravelGroup struct {
	ID          string
	OwnerID     string
	Name        string
	Origin      string
	Destination string
	CreatedAt   time.Time
}

// GroupMembership records a user's membership in a travel group.
type GroupMembership struct {
	GroupID  string
	UserID   string
	JoinedAt time.Time
}

package domain

import "time"

// Vehicle describes the car a driver offers seats in.
type Vehicle struct {
	Brand        string
	Model        string
	Color        string
	LicensePlate string
}

// DriverProfile holds the credentials a user needs before publishing
// trips. Owned 1:1 by a user with role DRIVER. Verified is admin-set.
type DriverProfile struct {
	UserID        string
	LicenseNumber string
	Vehicle       Vehicle
	DefaultSeats  int
	Verified      bool

	// Aggregate rating fed by submitted reviews.
	RatingCount int
	RatingAvg   float64

	CreatedAt time.Time
	UpdatedAt time.Time
}

// AddRating folds one more rating into the running average.
func (p *DriverProfile) AddRating(rating int) {
	total := p.RatingAvg*float64(p.RatingCount) + float64(rating)
	p.RatingCount++
	p.RatingAvg = total / float64(p.RatingCount)
}

package models

import "time"

// Route is a serviced origin/destination pair.
type Route struct {
	ID          int64     `json:"id"`
	Origin      string    `json:"origin"`
	Destination string    `json:"destination"`
	DistanceKM  int       `json:"distanceKm"`
	DurationMin int       `json:"durationMin"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Vehicle is a bus in the fleet. Capacity and SeatsPerRow drive the
// deterministic seat-map layout.
type Vehicle struct {
	ID          int64     `json:"id"`
	Code        string    `json:"code"`
	Model       string    `json:"model"`
	Capacity    int       `json:"capacity"`
	SeatsPerRow int       `json:"seatsPerRow"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type Driver struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone"`
	LicenseNo string    `json:"licenseNo"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

package models

import "time"

// Trip is a scheduled vehicle departure on a route. AvailableSeats is the
// aggregate counter owned by the trip; booking_seats rows remain the source
// of truth for which seats are taken.
type Trip struct {
	ID             int64     `json:"id"`
	RouteID        int64     `json:"routeId"`
	VehicleID      int64     `json:"vehicleId"`
	DriverID       int64     `json:"driverId"`
	DepartureAt    time.Time `json:"departureAt"`
	ArrivalAt      time.Time `json:"arrivalAt"`
	TotalSeats     int       `json:"totalSeats"`
	AvailableSeats int       `json:"availableSeats"`
	BasePrice      int64     `json:"basePrice"`
	Active         bool      `json:"active"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`

	// Denormalized context for responses, populated on joins.
	Origin      string `json:"origin,omitempty"`
	Destination string `json:"destination,omitempty"`
	VehicleCode string `json:"vehicleCode,omitempty"`
	SeatsPerRow int    `json:"seatsPerRow,omitempty"`
	DriverName  string `json:"driverName,omitempty"`
}

// RouteLabel renders the human-readable route for tickets and receipts.
func (t Trip) RouteLabel() string {
	if t.Origin == "" && t.Destination == "" {
		return ""
	}
	return t.Origin + " - " + t.Destination
}

// Bookable reports whether the trip can still accept bookings at now.
func (t Trip) Bookable(now time.Time) bool {
	return t.Active && t.DepartureAt.After(now)
}

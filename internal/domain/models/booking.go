package models

import "time"

// Booking statuses.
const (
	BookingPending   = "pending"
	BookingConfirmed = "confirmed"
	BookingCancelled = "cancelled"
	BookingCompleted = "completed"
)

// Payment statuses carried on the booking row.
const (
	PaymentStatusPending   = "pending"
	PaymentStatusCompleted = "completed"
	PaymentStatusFailed    = "failed"
	PaymentStatusRefunded  = "refunded"
)

// Booking reserves named seats on one trip for one passenger. UserID is
// nil for guest bookings.
type Booking struct {
	ID               int64     `json:"id"`
	Reference        string    `json:"reference"`
	TripID           int64     `json:"tripId"`
	UserID           *int64    `json:"userId,omitempty"`
	PassengerName    string    `json:"passengerName"`
	PassengerPhone   string    `json:"passengerPhone"`
	PassengerEmail   string    `json:"passengerEmail"`
	Seats            []string  `json:"seats"`
	SeatCount        int       `json:"seatCount"`
	BaseAmount       int64     `json:"baseAmount"`
	PointsUsed       int64     `json:"pointsUsed"`
	PointsEarned     int64     `json:"pointsEarned"`
	TotalAmount      int64     `json:"totalAmount"`
	Status           string    `json:"status"`
	PaymentStatus    string    `json:"paymentStatus"`
	PaymentMethod    string    `json:"paymentMethod,omitempty"`
	PaymentReference string    `json:"paymentReference,omitempty"`
	QRPayload        string    `json:"-"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`

	// Trip context for responses, populated on joins.
	Trip *Trip `json:"trip,omitempty"`
}

// PaymentRequired reports whether the booking still needs an external charge.
func (b Booking) PaymentRequired() bool {
	return b.TotalAmount > 0 && b.PaymentStatus != PaymentStatusCompleted
}

// BookingSeat binds one seat on one trip to one booking. The UNIQUE
// (trip_id, seat_number) key makes row existence the seat-taken truth;
// rows are deleted when the parent booking is cancelled.
type BookingSeat struct {
	ID         int64  `json:"id"`
	BookingID  int64  `json:"bookingId"`
	TripID     int64  `json:"tripId"`
	SeatNumber string `json:"seatNumber"`
}

package models

import "time"

// Payment gateway transaction states. Success and failed are terminal.
const (
	GatewayPending = "pending"
	GatewaySuccess = "success"
	GatewayFailed  = "failed"
)

// Payment records one external gateway transaction for a booking. The row
// is updated in place as verification results arrive; a booking holds at
// most one successful payment.
type Payment struct {
	ID              int64      `json:"id"`
	BookingID       int64      `json:"bookingId"`
	Reference       string     `json:"reference"`
	Provider        string     `json:"provider"`
	Amount          int64      `json:"amount"`
	Currency        string     `json:"currency"`
	Status          string     `json:"status"`
	GatewayResponse string     `json:"gatewayResponse,omitempty"`
	PaidAt          *time.Time `json:"paidAt,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

// Terminal reports whether the payment already reached success or failed.
func (p Payment) Terminal() bool {
	return p.Status == GatewaySuccess || p.Status == GatewayFailed
}

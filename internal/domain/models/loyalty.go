package models

import "time"

// Loyalty ledger reasons.
const (
	LoyaltyEarned   = "earned"
	LoyaltyRedeemed = "redeemed"
	LoyaltyRefunded = "refunded"
	LoyaltyAdjusted = "adjusted"
)

// LoyaltyTransaction is an append-only ledger entry. Points is signed:
// positive for earn/refund, negative for redemption. The materialized
// users.loyalty_points counter must always equal the sum of a user's
// entries; LoyaltyService.ReconcileBalance audits that invariant.
type LoyaltyTransaction struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"userId"`
	BookingID *int64    `json:"bookingId,omitempty"`
	Points    int64     `json:"points"`
	Reason    string    `json:"reason"`
	CreatedAt time.Time `json:"createdAt"`
}

package services

import (
	"fmt"

	"github.com/Quadco-Consults/Saharam-express-sub001/internal/domain/models"
	"github.com/Quadco-Consults/Saharam-express-sub001/internal/utils"
)

// Notifier dispatches rider-facing messages. Delivery is fire-and-forget:
// implementations must swallow their own failures so a dead SMS provider
// can never fail a booking or a webhook.
type Notifier interface {
	BookingCreated(b models.Booking)
	PaymentConfirmed(b models.Booking)
	BookingCancelled(b models.Booking, reason string)
}

// LogNotifier is the default dispatcher; real channels (email/SMS) hang
// off the same interface.
type LogNotifier struct{}

func (LogNotifier) BookingCreated(b models.Booking) {
	utils.LogEvent("", "notify", "booking_created",
		fmt.Sprintf("reference=%s passenger=%s amount=%s", b.Reference, b.PassengerName, utils.FormatNaira(b.TotalAmount)))
}

func (LogNotifier) PaymentConfirmed(b models.Booking) {
	utils.LogEvent("", "notify", "payment_confirmed",
		fmt.Sprintf("reference=%s passenger=%s", b.Reference, b.PassengerName))
}

func (LogNotifier) BookingCancelled(b models.Booking, reason string) {
	utils.LogEvent("", "notify", "booking_cancelled",
		fmt.Sprintf("reference=%s reason=%s", b.Reference, reason))
}

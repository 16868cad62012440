package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Quadco-Consults/Saharam-express-sub001/internal/cache"
	"github.com/Quadco-Consults/Saharam-express-sub001/internal/db"
	"github.com/Quadco-Consults/Saharam-express-sub001/internal/domain"
	"github.com/Quadco-Consults/Saharam-express-sub001/internal/domain/models"
	"github.com/Quadco-Consults/Saharam-express-sub001/internal/gateway"
	"github.com/Quadco-Consults/Saharam-express-sub001/internal/repositories"
	"github.com/Quadco-Consults/Saharam-express-sub001/internal/utils"
)

type PaymentService struct {
	DB       *sql.DB
	Gateways *gateway.Registry
	Cache    *cache.TripCache
	Ticket   TicketService
	Notifier Notifier
	// EarnRatePercent of the paid amount is credited back as points on a
	// successful payment.
	EarnRatePercent int
	RequestID       string
}

// InitializePayment opens a charge with the chosen provider for a
// pending booking and records the pending payment row before the
// redirect, so an early webhook always finds its reference.
func (s PaymentService) InitializePayment(ctx context.Context, bookingID int64, provider, returnURL string) (gateway.InitResult, error) {
	g, err := s.Gateways.Get(provider)
	if err != nil {
		return gateway.InitResult{}, err
	}

	bookings := repositories.BookingRepository{Q: s.DB}
	booking, err := bookings.GetByID(bookingID)
	if err != nil {
		return gateway.InitResult{}, err
	}
	if booking.PaymentStatus == models.PaymentStatusCompleted {
		return gateway.InitResult{}, domain.AlreadyProcessedError{Reference: booking.Reference, State: booking.PaymentStatus}
	}
	if booking.Status == models.BookingCancelled {
		return gateway.InitResult{}, domain.ValidationError{Field: "bookingId", Msg: "booking has been cancelled"}
	}
	if booking.TotalAmount == 0 {
		return gateway.InitResult{}, domain.ValidationError{Field: "bookingId", Msg: "booking is fully covered by points, no payment required"}
	}

	reference := paymentReference(booking.Reference)
	payments := repositories.PaymentRepository{Q: s.DB}
	if _, err := payments.Insert(models.Payment{
		BookingID: booking.ID,
		Reference: reference,
		Provider:  provider,
		Amount:    booking.TotalAmount,
		Currency:  "NGN",
		Status:    models.GatewayPending,
	}); err != nil {
		return gateway.InitResult{}, err
	}
	if err := bookings.SetPaymentInfo(booking.ID, provider, reference); err != nil {
		return gateway.InitResult{}, err
	}

	result, err := g.Initialize(ctx, gateway.InitRequest{
		BookingID:     booking.ID,
		Reference:     reference,
		Amount:        booking.TotalAmount,
		Currency:      "NGN",
		CustomerEmail: booking.PassengerEmail,
		CustomerName:  booking.PassengerName,
		CustomerPhone: booking.PassengerPhone,
		CallbackURL:   returnURL,
		Metadata: map[string]any{
			"bookingId":        booking.ID,
			"bookingReference": booking.Reference,
		},
	})
	if err != nil {
		utils.LogEvent(s.RequestID, "payment", "initialize", "gateway error: "+err.Error())
		return gateway.InitResult{}, domain.InternalError{Msg: "payment provider unavailable", Err: err}
	}

	utils.LogEvent(s.RequestID, "payment", "initialize",
		fmt.Sprintf("booking=%s reference=%s provider=%s", booking.Reference, result.Reference, provider))
	return result, nil
}

// VerifyAndReconcile asks the provider for the authoritative charge state
// and applies it locally. Webhook bodies are never trusted beyond their
// signature; both the webhook path and client-initiated verification end
// up here, so the compensation logic runs identically for either.
//
// Replays of a terminal reference return AlreadyProcessedError and change
// nothing.
func (s PaymentService) VerifyAndReconcile(ctx context.Context, reference, provider string) (models.Booking, error) {
	g, err := s.Gateways.Get(provider)
	if err != nil {
		return models.Booking{}, err
	}

	result, err := g.Verify(ctx, reference)
	if err != nil {
		return models.Booking{}, domain.InternalError{Msg: "could not verify payment with provider", Err: err}
	}

	var (
		booking models.Booking
		tripID  int64
	)
	txErr := db.WithTx(s.DB, func(tx *sql.Tx) error {
		payments := repositories.PaymentRepository{Q: tx}
		bookings := repositories.BookingRepository{Q: tx}

		payment, err := payments.GetByReferenceForUpdate(reference)
		if err != nil {
			return err
		}
		if payment.Terminal() {
			b, err := bookings.GetByID(payment.BookingID)
			if err == nil {
				booking = b
			}
			return domain.AlreadyProcessedError{Reference: reference, State: payment.Status}
		}

		booking, err = bookings.GetByIDForUpdate(payment.BookingID)
		if err != nil {
			return err
		}
		tripID = booking.TripID

		switch {
		case result.Success:
			return s.applySuccess(tx, payment, &booking, result)
		case isTerminalFailure(result.Status):
			return s.applyFailure(tx, payment, &booking, result)
		default:
			// Still pending at the provider; keep our row pending too.
			utils.LogEvent(s.RequestID, "payment", "verify",
				fmt.Sprintf("reference=%s still %s at provider", reference, result.Status))
			return payments.UpdateResult(payment.ID, models.GatewayPending, result.GatewayResponse, nil)
		}
	})
	if txErr != nil {
		return booking, txErr
	}

	if tripID != 0 {
		s.Cache.Invalidate(ctx, tripID)
	}
	return booking, nil
}

func (s PaymentService) applySuccess(tx *sql.Tx, payment models.Payment, booking *models.Booking, result gateway.VerifyResult) error {
	payments := repositories.PaymentRepository{Q: tx}
	bookings := repositories.BookingRepository{Q: tx}

	paidAt := result.PaidAt
	if paidAt == nil {
		now := time.Now()
		paidAt = &now
	}
	if err := payments.UpdateResult(payment.ID, models.GatewaySuccess, result.GatewayResponse, paidAt); err != nil {
		return err
	}

	if booking.PaymentStatus == models.PaymentStatusCompleted {
		// Another reference already settled this booking.
		utils.LogEvent(s.RequestID, "payment", "reconcile",
			"booking "+booking.Reference+" already completed, ignoring duplicate success")
		return nil
	}

	if err := bookings.UpdateStatus(booking.ID, models.BookingConfirmed, models.PaymentStatusCompleted); err != nil {
		return err
	}
	booking.Status = models.BookingConfirmed
	booking.PaymentStatus = models.PaymentStatusCompleted

	if booking.UserID != nil && s.EarnRatePercent > 0 {
		earned := booking.TotalAmount * int64(s.EarnRatePercent) / 100
		if earned > 0 {
			users := repositories.UserRepository{Q: tx}
			ledger := repositories.LoyaltyRepository{Q: tx}
			bid := booking.ID
			if err := users.AdjustPoints(*booking.UserID, earned); err != nil {
				return err
			}
			if err := ledger.Append(models.LoyaltyTransaction{
				UserID:    *booking.UserID,
				BookingID: &bid,
				Points:    earned,
				Reason:    models.LoyaltyEarned,
			}); err != nil {
				return err
			}
			if err := bookings.SetPointsEarned(booking.ID, earned); err != nil {
				return err
			}
			booking.PointsEarned = earned
		}
	}

	seats, err := bookings.Seats(booking.ID)
	if err != nil {
		return err
	}
	booking.Seats = seats

	trip, err := repositories.TripRepository{Q: tx}.GetByID(booking.TripID)
	if err != nil {
		return err
	}
	payload, err := s.Ticket.Issue(tx, *booking, trip, seats)
	if err != nil {
		return err
	}
	booking.QRPayload = payload
	booking.Trip = &trip

	if s.Notifier != nil {
		s.Notifier.PaymentConfirmed(*booking)
	}
	utils.LogEvent(s.RequestID, "payment", "reconcile",
		fmt.Sprintf("reference=%s success booking=%s", payment.Reference, booking.Reference))
	return nil
}

func (s PaymentService) applyFailure(tx *sql.Tx, payment models.Payment, booking *models.Booking, result gateway.VerifyResult) error {
	payments := repositories.PaymentRepository{Q: tx}

	if err := payments.UpdateResult(payment.ID, models.GatewayFailed, result.GatewayResponse, nil); err != nil {
		return err
	}

	if booking.Status == models.BookingCancelled {
		utils.LogEvent(s.RequestID, "payment", "reconcile",
			"booking "+booking.Reference+" already cancelled, ignoring duplicate failure")
		return nil
	}
	if booking.PaymentStatus == models.PaymentStatusCompleted {
		// A failure event for a booking another charge already settled:
		// record it on the payment row only.
		utils.LogEvent(s.RequestID, "payment", "reconcile",
			"failure event for completed booking "+booking.Reference+", ignored")
		return nil
	}

	if err := releaseBooking(tx, booking, models.PaymentStatusFailed); err != nil {
		return err
	}

	if s.Notifier != nil {
		s.Notifier.BookingCancelled(*booking, "payment failed")
	}
	utils.LogEvent(s.RequestID, "payment", "reconcile",
		fmt.Sprintf("reference=%s failed, seats released for booking=%s", payment.Reference, booking.Reference))
	return nil
}

// releaseBooking is the single compensating action in the system: cancel
// the booking, free its seats back to the trip, and refund any redeemed
// points. Used by payment failure, the hold sweeper and admin cancels.
func releaseBooking(tx *sql.Tx, booking *models.Booking, paymentStatus string) error {
	bookings := repositories.BookingRepository{Q: tx}
	trips := repositories.TripRepository{Q: tx}

	released, err := bookings.DeleteSeats(booking.ID)
	if err != nil {
		return err
	}
	if released > 0 {
		if err := trips.IncrementSeats(booking.TripID, released); err != nil {
			return err
		}
	}
	if err := bookings.UpdateStatus(booking.ID, models.BookingCancelled, paymentStatus); err != nil {
		return err
	}
	booking.Status = models.BookingCancelled
	booking.PaymentStatus = paymentStatus

	if booking.UserID != nil && booking.PointsUsed > 0 {
		users := repositories.UserRepository{Q: tx}
		ledger := repositories.LoyaltyRepository{Q: tx}
		bid := booking.ID
		if err := users.AdjustPoints(*booking.UserID, booking.PointsUsed); err != nil {
			return err
		}
		if err := ledger.Append(models.LoyaltyTransaction{
			UserID:    *booking.UserID,
			BookingID: &bid,
			Points:    booking.PointsUsed,
			Reason:    models.LoyaltyRefunded,
		}); err != nil {
			return err
		}
	}
	return nil
}

// CancelBooking is the administrative cancel; it reuses the same release
// path as payment failure.
func (s PaymentService) CancelBooking(bookingID int64, reason string) (models.Booking, error) {
	var booking models.Booking
	err := db.WithTx(s.DB, func(tx *sql.Tx) error {
		bookings := repositories.BookingRepository{Q: tx}
		b, err := bookings.GetByIDForUpdate(bookingID)
		if err != nil {
			return err
		}
		if b.Status == models.BookingCancelled {
			booking = b
			return domain.AlreadyProcessedError{Reference: b.Reference, State: b.Status}
		}

		paymentStatus := models.PaymentStatusFailed
		if b.PaymentStatus == models.PaymentStatusCompleted {
			paymentStatus = models.PaymentStatusRefunded
		}
		if err := releaseBooking(tx, &b, paymentStatus); err != nil {
			return err
		}
		booking = b
		return nil
	})
	if err != nil {
		return booking, err
	}

	s.Cache.Invalidate(context.Background(), booking.TripID)
	if s.Notifier != nil {
		s.Notifier.BookingCancelled(booking, reason)
	}
	return booking, nil
}

// ListByBooking returns every charge attempt recorded for a booking.
func (s PaymentService) ListByBooking(bookingID int64) ([]models.Payment, error) {
	return repositories.PaymentRepository{Q: s.DB}.ListByBooking(bookingID)
}

func paymentReference(bookingReference string) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	return "PAY-" + bookingReference + "-" + strings.ToUpper(suffix)
}

func isTerminalFailure(status string) bool {
	switch strings.ToLower(status) {
	case "failed", "fail", "reversed", "abandoned", "close", "closed":
		return true
	default:
		return false
	}
}

package services

import (
	"database/sql"
	"fmt"

	qrcode "github.com/skip2/go-qrcode"

	"github.com/Quadco-Consults/Saharam-express-sub001/internal/db"
	"github.com/Quadco-Consults/Saharam-express-sub001/internal/domain"
	"github.com/Quadco-Consults/Saharam-express-sub001/internal/domain/models"
	"github.com/Quadco-Consults/Saharam-express-sub001/internal/repositories"
	"github.com/Quadco-Consults/Saharam-express-sub001/internal/ticket"
	"github.com/Quadco-Consults/Saharam-express-sub001/internal/utils"
)

type TicketService struct {
	DB        *sql.DB
	Codec     *ticket.Codec
	RequestID string
}

// VerifyTicketResult is the gate-scan response.
type VerifyTicketResult struct {
	Valid   bool            `json:"valid"`
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Booking *models.Booking `json:"booking,omitempty"`
	Trip    *models.Trip    `json:"trip,omitempty"`
}

// Issue signs and stores the QR payload for a paid booking. Runs on the
// reconciliation transaction so the payload lands with the confirmation.
func (s TicketService) Issue(q db.Execer, booking models.Booking, trip models.Trip, seats []string) (string, error) {
	_, raw, err := s.Codec.Encode(
		booking.Reference,
		booking.PassengerName,
		trip.ID,
		seats,
		trip.DepartureAt,
		trip.RouteLabel(),
	)
	if err != nil {
		return "", domain.InternalError{Msg: "could not issue ticket", Err: err}
	}
	if err := (repositories.BookingRepository{Q: q}).SetQRPayload(booking.ID, raw); err != nil {
		return "", err
	}
	return raw, nil
}

// Verify authenticates a scanned QR string and cross-checks it against
// the booking on file. The signature only proves the QR was not edited
// after issuance; the stored row decides whether it still matches.
func (s TicketService) Verify(qrData string, expectedTripID int64) (VerifyTicketResult, error) {
	data := s.Codec.Decode(qrData)
	if data == nil {
		return VerifyTicketResult{
			Valid:   false,
			Status:  "invalid",
			Message: "Invalid or tampered QR code",
		}, nil
	}

	if expectedTripID != 0 && expectedTripID != data.TripID {
		return VerifyTicketResult{Valid: false, Status: "mismatch", Message: ticket.ReasonMismatch}, nil
	}

	bookings := repositories.BookingRepository{Q: s.DB}
	booking, err := bookings.GetByReference(data.BookingReference)
	if err != nil {
		if domain.IsNotFound(err) {
			return VerifyTicketResult{Valid: false, Status: "mismatch", Message: ticket.ReasonMismatch}, nil
		}
		return VerifyTicketResult{}, err
	}
	seats, err := bookings.Seats(booking.ID)
	if err != nil {
		return VerifyTicketResult{}, err
	}
	booking.Seats = seats

	if booking.TripID != data.TripID ||
		booking.PassengerName != data.PassengerName ||
		!utils.SameSeatSet(booking.Seats, data.Seats) {
		return VerifyTicketResult{Valid: false, Status: "mismatch", Message: ticket.ReasonMismatch}, nil
	}

	if booking.Status != models.BookingConfirmed || booking.PaymentStatus != models.PaymentStatusCompleted {
		return VerifyTicketResult{
			Valid:   false,
			Status:  booking.Status,
			Message: fmt.Sprintf("Booking is %s, not confirmed", booking.Status),
		}, nil
	}

	if res := s.Codec.Validate(data); !res.Valid {
		return VerifyTicketResult{Valid: false, Status: "expired", Message: res.Reason}, nil
	}

	trip, err := repositories.TripRepository{Q: s.DB}.GetByID(booking.TripID)
	if err != nil {
		return VerifyTicketResult{}, err
	}

	utils.LogEvent(s.RequestID, "ticket", "verify", "reference="+booking.Reference+" ok")
	return VerifyTicketResult{
		Valid:   true,
		Status:  "confirmed",
		Message: "Ticket is valid",
		Booking: &booking,
		Trip:    &trip,
	}, nil
}

// QRImage renders the stored payload as a scannable PNG.
func (s TicketService) QRImage(reference string) ([]byte, error) {
	booking, err := repositories.BookingRepository{Q: s.DB}.GetByReference(reference)
	if err != nil {
		return nil, err
	}
	if booking.QRPayload == "" {
		return nil, domain.NotFoundError{Resource: "ticket"}
	}
	png, err := qrcode.Encode(booking.QRPayload, qrcode.Medium, 256)
	if err != nil {
		return nil, domain.InternalError{Msg: "could not render QR code", Err: err}
	}
	return png, nil
}

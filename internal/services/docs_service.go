package services

import (
	"bytes"
	"database/sql"
	"fmt"

	"github.com/phpdave11/gofpdf"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/Quadco-Consults/Saharam-express-sub001/internal/domain"
	"github.com/Quadco-Consults/Saharam-express-sub001/internal/domain/models"
	"github.com/Quadco-Consults/Saharam-express-sub001/internal/repositories"
	"github.com/Quadco-Consults/Saharam-express-sub001/internal/utils"
)

// DocsService renders the printable e-ticket PDF for a paid booking.
type DocsService struct {
	DB        *sql.DB
	RequestID string
}

func (s DocsService) GenerateETicket(reference string) ([]byte, string, error) {
	bookings := repositories.BookingRepository{Q: s.DB}
	booking, err := bookings.GetByReference(reference)
	if err != nil {
		return nil, "", err
	}
	if booking.Status != models.BookingConfirmed {
		return nil, "", domain.ValidationError{Field: "reference", Msg: "e-ticket is only available for confirmed bookings"}
	}
	seats, err := bookings.Seats(booking.ID)
	if err != nil {
		return nil, "", err
	}
	booking.Seats = seats

	trip, err := repositories.TripRepository{Q: s.DB}.GetByID(booking.TripID)
	if err != nil {
		return nil, "", err
	}

	utils.LogEvent(s.RequestID, "docs", "generate_eticket", "reference="+booking.Reference)
	pdf, err := buildETicketPDF(booking, trip)
	if err != nil {
		return nil, "", err
	}
	return pdf, fmt.Sprintf("eticket-%s.pdf", booking.Reference), nil
}

func buildETicketPDF(b models.Booking, t models.Trip) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A5", "")
	pdf.SetMargins(12, 12, 12)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 9, "SAHARAM EXPRESS", "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 6, "Bus E-Ticket", "", 1, "C", false, 0, "")
	pdf.Ln(4)

	line := func(label, value string) {
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(38, 7, label, "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		pdf.CellFormat(0, 7, value, "", 1, "L", false, 0, "")
	}

	line("Reference", b.Reference)
	line("Passenger", b.PassengerName)
	line("Route", t.RouteLabel())
	line("Departure", utils.FormatDateTime(t.DepartureAt))
	line("Vehicle", t.VehicleCode)
	seatList := ""
	for i, seat := range b.Seats {
		if i > 0 {
			seatList += ", "
		}
		seatList += seat
	}
	line("Seats", seatList)
	line("Amount paid", utils.FormatNaira(b.TotalAmount))
	if b.PointsUsed > 0 {
		line("Points used", fmt.Sprintf("%d", b.PointsUsed))
	}

	if b.QRPayload != "" {
		png, err := qrcode.Encode(b.QRPayload, qrcode.Medium, 512)
		if err == nil {
			opts := gofpdf.ImageOptions{ImageType: "PNG"}
			pdf.RegisterImageOptionsReader("ticket-qr", opts, bytes.NewReader(png))
			pdf.Ln(4)
			x := (148.0 - 45.0) / 2 // centered on A5
			pdf.ImageOptions("ticket-qr", x, pdf.GetY(), 45, 45, false, opts, 0, "")
			pdf.SetY(pdf.GetY() + 48)
			pdf.SetFont("Helvetica", "I", 8)
			pdf.CellFormat(0, 5, "Present this QR code for scanning at boarding.", "", 1, "C", false, 0, "")
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, domain.InternalError{Msg: "could not render e-ticket", Err: err}
	}
	return buf.Bytes(), nil
}

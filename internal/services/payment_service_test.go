package services

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/Quadco-Consults/Saharam-express-sub001/internal/domain"
	"github.com/Quadco-Consults/Saharam-express-sub001/internal/domain/models"
	"github.com/Quadco-Consults/Saharam-express-sub001/internal/gateway"
	"github.com/Quadco-Consults/Saharam-express-sub001/internal/ticket"
)

// stubGateway feeds a canned Verify result into reconciliation without
// touching the network.
type stubGateway struct {
	name   string
	verify gateway.VerifyResult
}

func (g stubGateway) Name() string { return g.name }

func (g stubGateway) Initialize(context.Context, gateway.InitRequest) (gateway.InitResult, error) {
	return gateway.InitResult{}, nil
}

func (g stubGateway) Verify(context.Context, string) (gateway.VerifyResult, error) {
	return g.verify, nil
}

func (g stubGateway) ValidateWebhookSignature([]byte, string) bool { return true }

func newPaymentService(t *testing.T, verify gateway.VerifyResult) (PaymentService, sqlmock.Sqlmock) {
	t.Helper()
	sqldb, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { sqldb.Close() })

	return PaymentService{
		DB:              sqldb,
		Gateways:        gateway.NewRegistry(stubGateway{name: gateway.ProviderPaystack, verify: verify}),
		Ticket:          TicketService{Codec: ticket.NewCodec("test-ticket-secret")},
		EarnRatePercent: 5,
	}, mock
}

func paymentRows(id, bookingID int64, reference, status string, amount int64) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "booking_id", "reference", "provider", "amount", "currency", "status",
		"gateway_response", "paid_at", "created_at", "updated_at",
	}).AddRow(id, bookingID, reference, "paystack", amount, "NGN", status, "", nil, testNow, testNow)
}

func bookingRows(id int64, reference string, tripID int64, userID any, pointsUsed, total int64, status, paymentStatus string) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "reference", "trip_id", "user_id",
		"passenger_name", "passenger_phone", "passenger_email",
		"seat_count", "base_amount", "points_used", "points_earned", "total_amount",
		"status", "payment_status", "payment_method", "payment_reference",
		"qr_payload", "created_at", "updated_at",
	}).AddRow(
		id, reference, tripID, userID,
		"Ngozi Okafor", "+2348012345678", "ngozi@example.com",
		2, total+pointsUsed, pointsUsed, 0, total,
		status, paymentStatus, "paystack", "PAY-"+reference+"-ABC",
		"", testNow, testNow,
	)
}

func TestVerifyAndReconcileSuccess(t *testing.T) {
	paidAt := testNow.Add(2 * time.Minute)
	svc, mock := newPaymentService(t, gateway.VerifyResult{
		Success:         true,
		Status:          "success",
		Amount:          9000,
		PaidAt:          &paidAt,
		GatewayResponse: "Approved",
	})

	mock.ExpectBegin()
	mock.ExpectQuery("FROM payments WHERE reference(.+)FOR UPDATE").
		WithArgs("PAY-SAH123-XY").
		WillReturnRows(paymentRows(9, 31, "PAY-SAH123-XY", models.GatewayPending, 9000))
	mock.ExpectQuery("FROM bookings b WHERE b.id(.+)FOR UPDATE").
		WithArgs(int64(31)).
		WillReturnRows(bookingRows(31, "SAH123", 5, int64(42), 0, 9000, models.BookingPending, models.PaymentStatusPending))
	mock.ExpectExec("UPDATE payments SET status").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE bookings SET status").
		WithArgs(models.BookingConfirmed, models.PaymentStatusCompleted, int64(31)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE users SET loyalty_points = loyalty_points").
		WithArgs(int64(450), int64(42), int64(450)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO loyalty_transactions").
		WithArgs(int64(42), int64(31), int64(450), models.LoyaltyEarned).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("UPDATE bookings SET points_earned").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("SELECT seat_number FROM booking_seats WHERE booking_id").
		WillReturnRows(seatRows("A1", "A2"))
	mock.ExpectQuery("FROM trips t(.+)WHERE t.id").
		WillReturnRows(tripRows(5, 14, 8, 4500, true, testNow.Add(26*time.Hour)))
	mock.ExpectExec("UPDATE bookings SET qr_payload").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	booking, err := svc.VerifyAndReconcile(context.Background(), "PAY-SAH123-XY", gateway.ProviderPaystack)
	if err != nil {
		t.Fatalf("VerifyAndReconcile: %v", err)
	}
	if booking.Status != models.BookingConfirmed || booking.PaymentStatus != models.PaymentStatusCompleted {
		t.Errorf("booking = %s/%s, want confirmed/completed", booking.Status, booking.PaymentStatus)
	}
	if booking.PointsEarned != 450 {
		t.Errorf("points earned = %d, want 450", booking.PointsEarned)
	}
	if booking.QRPayload == "" {
		t.Error("expected QR payload to be issued on confirmation")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestVerifyAndReconcileReplayIsNoOp(t *testing.T) {
	svc, mock := newPaymentService(t, gateway.VerifyResult{Success: true, Status: "success"})

	mock.ExpectBegin()
	mock.ExpectQuery("FROM payments WHERE reference(.+)FOR UPDATE").
		WillReturnRows(paymentRows(9, 31, "PAY-SAH123-XY", models.GatewaySuccess, 9000))
	mock.ExpectQuery("FROM bookings b WHERE b.id").
		WillReturnRows(bookingRows(31, "SAH123", 5, int64(42), 0, 9000, models.BookingConfirmed, models.PaymentStatusCompleted))
	mock.ExpectRollback()

	booking, err := svc.VerifyAndReconcile(context.Background(), "PAY-SAH123-XY", gateway.ProviderPaystack)
	if !domain.IsAlreadyProcessed(err) {
		t.Fatalf("expected AlreadyProcessedError, got %v", err)
	}
	if booking.Status != models.BookingConfirmed {
		t.Errorf("replay should still report the settled booking, got %s", booking.Status)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestVerifyAndReconcileFailureReleasesHold(t *testing.T) {
	svc, mock := newPaymentService(t, gateway.VerifyResult{
		Success:         false,
		Status:          "failed",
		GatewayResponse: "Declined",
	})

	mock.ExpectBegin()
	mock.ExpectQuery("FROM payments WHERE reference(.+)FOR UPDATE").
		WillReturnRows(paymentRows(9, 31, "PAY-SAH123-XY", models.GatewayPending, 8700))
	mock.ExpectQuery("FROM bookings b WHERE b.id(.+)FOR UPDATE").
		WillReturnRows(bookingRows(31, "SAH123", 5, int64(42), 300, 8700, models.BookingPending, models.PaymentStatusPending))
	mock.ExpectExec("UPDATE payments SET status").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM booking_seats WHERE booking_id").
		WithArgs(int64(31)).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec("UPDATE trips SET available_seats = LEAST").
		WithArgs(2, int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE bookings SET status").
		WithArgs(models.BookingCancelled, models.PaymentStatusFailed, int64(31)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE users SET loyalty_points = loyalty_points").
		WithArgs(int64(300), int64(42), int64(300)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO loyalty_transactions").
		WithArgs(int64(42), int64(31), int64(300), models.LoyaltyRefunded).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	booking, err := svc.VerifyAndReconcile(context.Background(), "PAY-SAH123-XY", gateway.ProviderPaystack)
	if err != nil {
		t.Fatalf("VerifyAndReconcile: %v", err)
	}
	if booking.Status != models.BookingCancelled || booking.PaymentStatus != models.PaymentStatusFailed {
		t.Errorf("booking = %s/%s, want cancelled/failed", booking.Status, booking.PaymentStatus)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestVerifyAndReconcilePendingKeepsHold(t *testing.T) {
	svc, mock := newPaymentService(t, gateway.VerifyResult{Success: false, Status: "ongoing"})

	mock.ExpectBegin()
	mock.ExpectQuery("FROM payments WHERE reference(.+)FOR UPDATE").
		WillReturnRows(paymentRows(9, 31, "PAY-SAH123-XY", models.GatewayPending, 9000))
	mock.ExpectQuery("FROM bookings b WHERE b.id(.+)FOR UPDATE").
		WillReturnRows(bookingRows(31, "SAH123", 5, nil, 0, 9000, models.BookingPending, models.PaymentStatusPending))
	mock.ExpectExec("UPDATE payments SET status").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	booking, err := svc.VerifyAndReconcile(context.Background(), "PAY-SAH123-XY", gateway.ProviderPaystack)
	if err != nil {
		t.Fatalf("VerifyAndReconcile: %v", err)
	}
	if booking.Status != models.BookingPending {
		t.Errorf("pending charge must leave the booking pending, got %s", booking.Status)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestCancelBookingRefundsCompletedPayment(t *testing.T) {
	svc, mock := newPaymentService(t, gateway.VerifyResult{})

	mock.ExpectBegin()
	mock.ExpectQuery("FROM bookings b WHERE b.id(.+)FOR UPDATE").
		WillReturnRows(bookingRows(31, "SAH123", 5, nil, 0, 9000, models.BookingConfirmed, models.PaymentStatusCompleted))
	mock.ExpectExec("DELETE FROM booking_seats WHERE booking_id").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec("UPDATE trips SET available_seats = LEAST").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE bookings SET status").
		WithArgs(models.BookingCancelled, models.PaymentStatusRefunded, int64(31)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	booking, err := svc.CancelBooking(31, "vehicle breakdown")
	if err != nil {
		t.Fatalf("CancelBooking: %v", err)
	}
	if booking.PaymentStatus != models.PaymentStatusRefunded {
		t.Errorf("payment status = %s, want refunded", booking.PaymentStatus)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestCancelBookingAlreadyCancelled(t *testing.T) {
	svc, mock := newPaymentService(t, gateway.VerifyResult{})

	mock.ExpectBegin()
	mock.ExpectQuery("FROM bookings b WHERE b.id(.+)FOR UPDATE").
		WillReturnRows(bookingRows(31, "SAH123", 5, nil, 0, 9000, models.BookingCancelled, models.PaymentStatusFailed))
	mock.ExpectRollback()

	_, err := svc.CancelBooking(31, "duplicate request")
	if !domain.IsAlreadyProcessed(err) {
		t.Fatalf("expected AlreadyProcessedError, got %v", err)
	}
}

package services

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/Quadco-Consults/Saharam-express-sub001/internal/domain/models"
)

func newSweeper(t *testing.T) (SweeperService, sqlmock.Sqlmock) {
	t.Helper()
	sqldb, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { sqldb.Close() })
	return SweeperService{
		DB:      sqldb,
		HoldTTL: 30 * time.Minute,
		Now:     func() time.Time { return testNow },
	}, mock
}

func TestSweepOnceReleasesExpiredHold(t *testing.T) {
	svc, mock := newSweeper(t)

	mock.ExpectQuery("FROM bookings b WHERE b.status(.+)b.created_at <").
		WithArgs(models.BookingPending, models.PaymentStatusPending, testNow.Add(-30*time.Minute), 100).
		WillReturnRows(bookingRows(31, "SAH123", 5, nil, 0, 9000, models.BookingPending, models.PaymentStatusPending))

	mock.ExpectBegin()
	mock.ExpectQuery("FROM bookings b WHERE b.id(.+)FOR UPDATE").
		WithArgs(int64(31)).
		WillReturnRows(bookingRows(31, "SAH123", 5, nil, 0, 9000, models.BookingPending, models.PaymentStatusPending))
	mock.ExpectExec("DELETE FROM booking_seats WHERE booking_id").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec("UPDATE trips SET available_seats = LEAST").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE bookings SET status").
		WithArgs(models.BookingCancelled, models.PaymentStatusFailed, int64(31)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	released, err := svc.SweepOnce()
	if err != nil {
		t.Fatalf("SweepOnce: %v", err)
	}
	if released != 1 {
		t.Errorf("released = %d, want 1", released)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestSweepOnceSkipsBookingPaidMidSweep(t *testing.T) {
	svc, mock := newSweeper(t)

	mock.ExpectQuery("FROM bookings b WHERE b.status(.+)b.created_at <").
		WillReturnRows(bookingRows(31, "SAH123", 5, nil, 0, 9000, models.BookingPending, models.PaymentStatusPending))

	// By the time the row lock lands the booking has been paid.
	mock.ExpectBegin()
	mock.ExpectQuery("FROM bookings b WHERE b.id(.+)FOR UPDATE").
		WillReturnRows(bookingRows(31, "SAH123", 5, nil, 0, 9000, models.BookingConfirmed, models.PaymentStatusCompleted))
	mock.ExpectCommit()

	released, err := svc.SweepOnce()
	if err != nil {
		t.Fatalf("SweepOnce: %v", err)
	}
	if released != 0 {
		t.Errorf("released = %d, want 0", released)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestSweepOnceNothingExpired(t *testing.T) {
	svc, mock := newSweeper(t)

	mock.ExpectQuery("FROM bookings b WHERE b.status(.+)b.created_at <").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "reference", "trip_id", "user_id",
			"passenger_name", "passenger_phone", "passenger_email",
			"seat_count", "base_amount", "points_used", "points_earned", "total_amount",
			"status", "payment_status", "payment_method", "payment_reference",
			"qr_payload", "created_at", "updated_at",
		}))

	released, err := svc.SweepOnce()
	if err != nil {
		t.Fatalf("SweepOnce: %v", err)
	}
	if released != 0 {
		t.Errorf("released = %d, want 0", released)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

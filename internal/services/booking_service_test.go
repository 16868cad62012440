package services

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"

	"github.com/Quadco-Consults/Saharam-express-sub001/internal/domain"
	"github.com/Quadco-Consults/Saharam-express-sub001/internal/domain/models"
)

var testNow = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

func newBookingService(t *testing.T) (BookingService, sqlmock.Sqlmock) {
	t.Helper()
	sqldb, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { sqldb.Close() })
	return BookingService{
		DB:        sqldb,
		RefPrefix: "SAH",
		Now:       func() time.Time { return testNow },
	}, mock
}

func tripRows(tripID int64, totalSeats, available int, basePrice int64, active bool, departure time.Time) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "route_id", "vehicle_id", "driver_id", "departure_at", "arrival_at",
		"total_seats", "available_seats", "base_price", "active", "created_at", "updated_at",
		"origin", "destination", "code", "seats_per_row", "name",
	}).AddRow(
		tripID, 1, 1, 1, departure, departure.Add(8*time.Hour),
		totalSeats, available, basePrice, active,
		departure.Add(-72*time.Hour), departure.Add(-72*time.Hour),
		"Lagos", "Abuja", "BUS-014", 4, "Sani Musa",
	)
}

func seatRows(seats ...string) *sqlmock.Rows {
	rows := sqlmock.NewRows([]string{"seat_number"})
	for _, s := range seats {
		rows.AddRow(s)
	}
	return rows
}

func TestCreateBookingGuestSuccess(t *testing.T) {
	svc, mock := newBookingService(t)
	departure := testNow.Add(26 * time.Hour)

	mock.ExpectBegin()
	mock.ExpectQuery("FROM trips t(.+)FOR UPDATE").
		WithArgs(int64(5)).
		WillReturnRows(tripRows(5, 14, 10, 4500, true, departure))
	mock.ExpectQuery("SELECT seat_number FROM booking_seats WHERE trip_id").
		WithArgs(int64(5)).
		WillReturnRows(seatRows("C1", "C2"))
	mock.ExpectExec("INSERT INTO bookings").
		WillReturnResult(sqlmock.NewResult(31, 1))
	mock.ExpectExec("INSERT INTO booking_seats").
		WithArgs(int64(31), int64(5), "A1").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO booking_seats").
		WithArgs(int64(31), int64(5), "A2").
		WillReturnResult(sqlmock.NewResult(2, 1))
	mock.ExpectExec("UPDATE trips SET available_seats = available_seats").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	booking, err := svc.CreateBooking(CreateBookingInput{
		TripID:        5,
		PassengerName: "  Ngozi   Okafor ",
		SeatNumbers:   []string{"a1", "A2", "a2"},
	})
	if err != nil {
		t.Fatalf("CreateBooking: %v", err)
	}
	if booking.PassengerName != "Ngozi Okafor" {
		t.Errorf("passenger name not normalized: %q", booking.PassengerName)
	}
	if !strings.HasPrefix(booking.Reference, "SAH") {
		t.Errorf("reference %q missing prefix", booking.Reference)
	}
	if booking.TotalAmount != 9000 || booking.BaseAmount != 9000 {
		t.Errorf("amounts = %d/%d, want 9000/9000", booking.BaseAmount, booking.TotalAmount)
	}
	if booking.Status != models.BookingPending || booking.PaymentStatus != models.PaymentStatusPending {
		t.Errorf("status = %s/%s, want pending/pending", booking.Status, booking.PaymentStatus)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestCreateBookingSeatConflict(t *testing.T) {
	svc, mock := newBookingService(t)
	departure := testNow.Add(26 * time.Hour)

	mock.ExpectBegin()
	mock.ExpectQuery("FROM trips t(.+)FOR UPDATE").
		WillReturnRows(tripRows(5, 14, 10, 4500, true, departure))
	mock.ExpectQuery("SELECT seat_number FROM booking_seats WHERE trip_id").
		WillReturnRows(seatRows("A1", "B3"))
	mock.ExpectRollback()

	_, err := svc.CreateBooking(CreateBookingInput{
		TripID:        5,
		PassengerName: "Ngozi Okafor",
		SeatNumbers:   []string{"A1", "A2"},
	})
	var conflict domain.SeatConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected SeatConflictError, got %v", err)
	}
	if len(conflict.Seats) != 1 || conflict.Seats[0] != "A1" {
		t.Errorf("conflicting seats = %v, want [A1]", conflict.Seats)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestCreateBookingTripNotBookable(t *testing.T) {
	svc, mock := newBookingService(t)

	mock.ExpectBegin()
	mock.ExpectQuery("FROM trips t(.+)FOR UPDATE").
		WillReturnRows(tripRows(5, 14, 10, 4500, false, testNow.Add(26*time.Hour)))
	mock.ExpectRollback()

	_, err := svc.CreateBooking(CreateBookingInput{
		TripID:        5,
		PassengerName: "Ngozi Okafor",
		SeatNumbers:   []string{"A1"},
	})
	if !domain.IsNotBookable(err) {
		t.Fatalf("expected NotBookableError, got %v", err)
	}
}

func TestCreateBookingDepartedTrip(t *testing.T) {
	svc, mock := newBookingService(t)

	mock.ExpectBegin()
	mock.ExpectQuery("FROM trips t(.+)FOR UPDATE").
		WillReturnRows(tripRows(5, 14, 10, 4500, true, testNow.Add(-time.Hour)))
	mock.ExpectRollback()

	_, err := svc.CreateBooking(CreateBookingInput{
		TripID:        5,
		PassengerName: "Ngozi Okafor",
		SeatNumbers:   []string{"A1"},
	})
	if !domain.IsNotBookable(err) {
		t.Fatalf("expected NotBookableError, got %v", err)
	}
}

func TestCreateBookingRejectsPointsOverBalance(t *testing.T) {
	svc, mock := newBookingService(t)
	departure := testNow.Add(26 * time.Hour)
	caller := &domain.Caller{UserID: 42, Email: "ngozi@example.com", Role: models.RoleUser}

	mock.ExpectBegin()
	mock.ExpectQuery("FROM trips t(.+)FOR UPDATE").
		WillReturnRows(tripRows(5, 14, 10, 4500, true, departure))
	mock.ExpectQuery("SELECT seat_number FROM booking_seats WHERE trip_id").
		WillReturnRows(seatRows())
	mock.ExpectQuery("FROM users WHERE id(.+)FOR UPDATE").
		WithArgs(int64(42)).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "name", "email", "phone", "password_hash", "role", "loyalty_points", "created_at", "updated_at",
		}).AddRow(42, "Ngozi Okafor", "ngozi@example.com", "", "x", models.RoleUser, 200, testNow, testNow))
	mock.ExpectRollback()

	_, err := svc.CreateBooking(CreateBookingInput{
		TripID:             5,
		PassengerName:      "Ngozi Okafor",
		SeatNumbers:        []string{"A1"},
		LoyaltyPointsToUse: 500,
		Caller:             caller,
	})
	if !domain.IsInsufficientPoints(err) {
		t.Fatalf("expected InsufficientPointsError, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestCreateBookingGuestCannotRedeemPoints(t *testing.T) {
	svc, _ := newBookingService(t)

	_, err := svc.CreateBooking(CreateBookingInput{
		TripID:             5,
		PassengerName:      "Ngozi Okafor",
		SeatNumbers:        []string{"A1"},
		LoyaltyPointsToUse: 100,
	})
	if !domain.IsValidation(err) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestCreateBookingFullyCoveredByPoints(t *testing.T) {
	svc, mock := newBookingService(t)
	departure := testNow.Add(26 * time.Hour)
	caller := &domain.Caller{UserID: 42, Email: "ngozi@example.com", Role: models.RoleUser}

	mock.ExpectBegin()
	mock.ExpectQuery("FROM trips t(.+)FOR UPDATE").
		WillReturnRows(tripRows(5, 14, 10, 4500, true, departure))
	mock.ExpectQuery("SELECT seat_number FROM booking_seats WHERE trip_id").
		WillReturnRows(seatRows())
	mock.ExpectQuery("FROM users WHERE id(.+)FOR UPDATE").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "name", "email", "phone", "password_hash", "role", "loyalty_points", "created_at", "updated_at",
		}).AddRow(42, "Ngozi Okafor", "ngozi@example.com", "", "x", models.RoleUser, 10000, testNow, testNow))
	mock.ExpectExec("INSERT INTO bookings").
		WillReturnResult(sqlmock.NewResult(31, 1))
	mock.ExpectExec("INSERT INTO booking_seats").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("UPDATE trips SET available_seats = available_seats").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE users SET loyalty_points = loyalty_points").
		WithArgs(int64(-4500), int64(42), int64(-4500)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO loyalty_transactions").
		WithArgs(int64(42), int64(31), int64(-4500), models.LoyaltyRedeemed).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	booking, err := svc.CreateBooking(CreateBookingInput{
		TripID:             5,
		PassengerName:      "Ngozi Okafor",
		SeatNumbers:        []string{"A1"},
		LoyaltyPointsToUse: 4500,
		Caller:             caller,
	})
	if err != nil {
		t.Fatalf("CreateBooking: %v", err)
	}
	if booking.TotalAmount != 0 || booking.PointsUsed != 4500 {
		t.Errorf("total/points = %d/%d, want 0/4500", booking.TotalAmount, booking.PointsUsed)
	}
	if booking.Status != models.BookingConfirmed || booking.PaymentStatus != models.PaymentStatusCompleted {
		t.Errorf("fully covered booking should auto-confirm, got %s/%s", booking.Status, booking.PaymentStatus)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestCreateBookingRetriesDuplicateReference(t *testing.T) {
	svc, mock := newBookingService(t)
	departure := testNow.Add(26 * time.Hour)

	mock.ExpectBegin()
	mock.ExpectQuery("FROM trips t(.+)FOR UPDATE").
		WillReturnRows(tripRows(5, 14, 10, 4500, true, departure))
	mock.ExpectQuery("SELECT seat_number FROM booking_seats WHERE trip_id").
		WillReturnRows(seatRows())
	mock.ExpectExec("INSERT INTO bookings").
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"})
	mock.ExpectExec("INSERT INTO bookings").
		WillReturnResult(sqlmock.NewResult(32, 1))
	mock.ExpectExec("INSERT INTO booking_seats").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("UPDATE trips SET available_seats = available_seats").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	booking, err := svc.CreateBooking(CreateBookingInput{
		TripID:        5,
		PassengerName: "Ngozi Okafor",
		SeatNumbers:   []string{"A1"},
	})
	if err != nil {
		t.Fatalf("CreateBooking: %v", err)
	}
	if booking.ID != 32 {
		t.Errorf("booking id = %d, want 32", booking.ID)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestCreateBookingInsufficientCapacity(t *testing.T) {
	svc, mock := newBookingService(t)
	departure := testNow.Add(26 * time.Hour)

	mock.ExpectBegin()
	mock.ExpectQuery("FROM trips t(.+)FOR UPDATE").
		WillReturnRows(tripRows(5, 14, 1, 4500, true, departure))
	mock.ExpectQuery("SELECT seat_number FROM booking_seats WHERE trip_id").
		WillReturnRows(seatRows())
	mock.ExpectRollback()

	_, err := svc.CreateBooking(CreateBookingInput{
		TripID:        5,
		PassengerName: "Ngozi Okafor",
		SeatNumbers:   []string{"A1", "A2"},
	})
	if !domain.IsInsufficientCapacity(err) {
		t.Fatalf("expected InsufficientCapacityError, got %v", err)
	}
}

package repositories

import (
	"database/sql"
	"errors"
	"time"

	"github.com/Quadco-Consults/Saharam-express-sub001/internal/db"
	"github.com/Quadco-Consults/Saharam-express-sub001/internal/domain"
	"github.com/Quadco-Consults/Saharam-express-sub001/internal/domain/models"
)

type BookingRepository struct {
	Q db.Execer
}

const bookingSelect = `
	SELECT b.id, b.reference, b.trip_id, b.user_id,
	       b.passenger_name, b.passenger_phone, b.passenger_email,
	       b.seat_count, b.base_amount, b.points_used, b.points_earned, b.total_amount,
	       b.status, b.payment_status, b.payment_method, b.payment_reference,
	       COALESCE(b.qr_payload, ''), b.created_at, b.updated_at
	FROM bookings b`

func scanBooking(row interface{ Scan(...any) error }) (models.Booking, error) {
	var (
		b      models.Booking
		userID sql.NullInt64
	)
	err := row.Scan(
		&b.ID, &b.Reference, &b.TripID, &userID,
		&b.PassengerName, &b.PassengerPhone, &b.PassengerEmail,
		&b.SeatCount, &b.BaseAmount, &b.PointsUsed, &b.PointsEarned, &b.TotalAmount,
		&b.Status, &b.PaymentStatus, &b.PaymentMethod, &b.PaymentReference,
		&b.QRPayload, &b.CreatedAt, &b.UpdatedAt,
	)
	if userID.Valid {
		b.UserID = &userID.Int64
	}
	return b, err
}

// Insert creates the booking row. Duplicate references surface as
// ConflictError so the caller can regenerate and retry.
func (r BookingRepository) Insert(b models.Booking) (int64, error) {
	var userID any
	if b.UserID != nil {
		userID = *b.UserID
	}
	res, err := r.Q.Exec(`
		INSERT INTO bookings (reference, trip_id, user_id,
			passenger_name, passenger_phone, passenger_email,
			seat_count, base_amount, points_used, total_amount,
			status, payment_status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		b.Reference, b.TripID, userID,
		b.PassengerName, b.PassengerPhone, b.PassengerEmail,
		b.SeatCount, b.BaseAmount, b.PointsUsed, b.TotalAmount,
		b.Status, b.PaymentStatus,
	)
	if err != nil {
		if isDuplicateKey(err) {
			return 0, domain.ConflictError{Resource: "booking reference", Err: err}
		}
		return 0, domain.InternalError{Err: err}
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, domain.InternalError{Err: err}
	}
	return id, nil
}

// InsertSeats writes one row per seat. The UNIQUE (trip_id, seat_number)
// key is the final arbiter between two racing bookings.
func (r BookingRepository) InsertSeats(bookingID, tripID int64, seats []string) error {
	for _, seat := range seats {
		_, err := r.Q.Exec(
			`INSERT INTO booking_seats (booking_id, trip_id, seat_number) VALUES (?, ?, ?)`,
			bookingID, tripID, seat,
		)
		if err != nil {
			if isDuplicateKey(err) {
				return domain.SeatConflictError{TripID: tripID, Seats: []string{seat}}
			}
			return domain.InternalError{Err: err}
		}
	}
	return nil
}

// BookedSeats returns the live taken-seat set for a trip. Reading the
// rows, not the counter, is what makes the in-transaction re-check sound.
func (r BookingRepository) BookedSeats(tripID int64) ([]string, error) {
	rows, err := r.Q.Query(`SELECT seat_number FROM booking_seats WHERE trip_id = ?`, tripID)
	if err != nil {
		return nil, domain.InternalError{Err: err}
	}
	defer rows.Close()

	var seats []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, domain.InternalError{Err: err}
		}
		seats = append(seats, s)
	}
	return seats, rows.Err()
}

func (r BookingRepository) Seats(bookingID int64) ([]string, error) {
	rows, err := r.Q.Query(
		`SELECT seat_number FROM booking_seats WHERE booking_id = ? ORDER BY seat_number`, bookingID)
	if err != nil {
		return nil, domain.InternalError{Err: err}
	}
	defer rows.Close()

	var seats []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, domain.InternalError{Err: err}
		}
		seats = append(seats, s)
	}
	return seats, rows.Err()
}

// DeleteSeats releases a cancelled booking's seats; the rows must go so
// the unique key frees up for rebooking.
func (r BookingRepository) DeleteSeats(bookingID int64) (int, error) {
	res, err := r.Q.Exec(`DELETE FROM booking_seats WHERE booking_id = ?`, bookingID)
	if err != nil {
		return 0, domain.InternalError{Err: err}
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, domain.InternalError{Err: err}
	}
	return int(affected), nil
}

func (r BookingRepository) GetByID(id int64) (models.Booking, error) {
	b, err := scanBooking(r.Q.QueryRow(bookingSelect+` WHERE b.id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Booking{}, domain.NotFoundError{Resource: "booking", Err: err}
	}
	if err != nil {
		return models.Booking{}, domain.InternalError{Err: err}
	}
	return b, nil
}

func (r BookingRepository) GetByReference(reference string) (models.Booking, error) {
	b, err := scanBooking(r.Q.QueryRow(bookingSelect+` WHERE b.reference = ?`, reference))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Booking{}, domain.NotFoundError{Resource: "booking", Err: err}
	}
	if err != nil {
		return models.Booking{}, domain.InternalError{Err: err}
	}
	return b, nil
}

// GetByIDForUpdate locks the booking row during reconciliation.
func (r BookingRepository) GetByIDForUpdate(id int64) (models.Booking, error) {
	b, err := scanBooking(r.Q.QueryRow(bookingSelect+` WHERE b.id = ? FOR UPDATE`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Booking{}, domain.NotFoundError{Resource: "booking", Err: err}
	}
	if err != nil {
		return models.Booking{}, domain.InternalError{Err: err}
	}
	return b, nil
}

func (r BookingRepository) UpdateStatus(id int64, status, paymentStatus string) error {
	_, err := r.Q.Exec(
		`UPDATE bookings SET status = ?, payment_status = ? WHERE id = ?`,
		status, paymentStatus, id,
	)
	if err != nil {
		return domain.InternalError{Err: err}
	}
	return nil
}

func (r BookingRepository) SetPaymentInfo(id int64, method, reference string) error {
	_, err := r.Q.Exec(
		`UPDATE bookings SET payment_method = ?, payment_reference = ? WHERE id = ?`,
		method, reference, id,
	)
	if err != nil {
		return domain.InternalError{Err: err}
	}
	return nil
}

func (r BookingRepository) SetPointsEarned(id, points int64) error {
	_, err := r.Q.Exec(`UPDATE bookings SET points_earned = ? WHERE id = ?`, points, id)
	if err != nil {
		return domain.InternalError{Err: err}
	}
	return nil
}

func (r BookingRepository) SetQRPayload(id int64, payload string) error {
	_, err := r.Q.Exec(`UPDATE bookings SET qr_payload = ? WHERE id = ?`, payload, id)
	if err != nil {
		return domain.InternalError{Err: err}
	}
	return nil
}

// ListPendingOlderThan feeds the hold sweeper: pending, unpaid bookings
// created before the cutoff.
func (r BookingRepository) ListPendingOlderThan(cutoff time.Time, limit int) ([]models.Booking, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.Q.Query(
		bookingSelect+` WHERE b.status = ? AND b.payment_status = ? AND b.created_at < ? ORDER BY b.created_at ASC LIMIT ?`,
		models.BookingPending, models.PaymentStatusPending, cutoff, limit,
	)
	if err != nil {
		return nil, domain.InternalError{Err: err}
	}
	defer rows.Close()

	var out []models.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, domain.InternalError{Err: err}
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// List returns bookings for the back office, newest first. When userID is
// non-zero only that user's bookings are returned.
func (r BookingRepository) List(userID int64, status string, limit int) ([]models.Booking, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	query := bookingSelect + ` WHERE 1=1`
	var args []any
	if userID != 0 {
		query += ` AND b.user_id = ?`
		args = append(args, userID)
	}
	if status != "" {
		query += ` AND b.status = ?`
		args = append(args, status)
	}
	query += ` ORDER BY b.created_at DESC LIMIT ?`
	args = append(args, limit)

	rows, err := r.Q.Query(query, args...)
	if err != nil {
		return nil, domain.InternalError{Err: err}
	}
	defer rows.Close()

	var out []models.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, domain.InternalError{Err: err}
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

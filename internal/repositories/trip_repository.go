package repositories

import (
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/Quadco-Consults/Saharam-express-sub001/internal/db"
	"github.com/Quadco-Consults/Saharam-express-sub001/internal/domain"
	"github.com/Quadco-Consults/Saharam-express-sub001/internal/domain/models"
)

// TripRepository reads and mutates trips. Q is the DB pool or an open
// transaction; seat-counter mutations must always run on a transaction.
type TripRepository struct {
	Q db.Execer
}

const tripSelect = `
	SELECT t.id, t.route_id, t.vehicle_id, t.driver_id,
	       t.departure_at, t.arrival_at,
	       t.total_seats, t.available_seats, t.base_price, t.active,
	       t.created_at, t.updated_at,
	       r.origin, r.destination,
	       v.code, v.seats_per_row,
	       d.name
	FROM trips t
	JOIN routes r ON r.id = t.route_id
	JOIN vehicles v ON v.id = t.vehicle_id
	JOIN drivers d ON d.id = t.driver_id`

func scanTrip(row interface{ Scan(...any) error }) (models.Trip, error) {
	var t models.Trip
	err := row.Scan(
		&t.ID, &t.RouteID, &t.VehicleID, &t.DriverID,
		&t.DepartureAt, &t.ArrivalAt,
		&t.TotalSeats, &t.AvailableSeats, &t.BasePrice, &t.Active,
		&t.CreatedAt, &t.UpdatedAt,
		&t.Origin, &t.Destination,
		&t.VehicleCode, &t.SeatsPerRow,
		&t.DriverName,
	)
	return t, err
}

func (r TripRepository) GetByID(id int64) (models.Trip, error) {
	t, err := scanTrip(r.Q.QueryRow(tripSelect+` WHERE t.id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Trip{}, domain.NotFoundError{Resource: "trip", Err: err}
	}
	if err != nil {
		return models.Trip{}, domain.InternalError{Err: err}
	}
	return t, nil
}

// GetByIDForUpdate takes the row lock that serializes concurrent bookings
// for the same trip. Must be called on a transaction.
func (r TripRepository) GetByIDForUpdate(id int64) (models.Trip, error) {
	t, err := scanTrip(r.Q.QueryRow(tripSelect+` WHERE t.id = ? FOR UPDATE`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Trip{}, domain.NotFoundError{Resource: "trip", Err: err}
	}
	if err != nil {
		return models.Trip{}, domain.InternalError{Err: err}
	}
	return t, nil
}

// TripFilter narrows Search results.
type TripFilter struct {
	Origin      string
	Destination string
	Date        *time.Time
	OnlyActive  bool
}

func (r TripRepository) Search(f TripFilter) ([]models.Trip, error) {
	var (
		conds []string
		args  []any
	)
	if f.OnlyActive {
		conds = append(conds, "t.active = 1", "t.departure_at > NOW()")
	}
	if f.Origin != "" {
		conds = append(conds, "LOWER(r.origin) = LOWER(?)")
		args = append(args, f.Origin)
	}
	if f.Destination != "" {
		conds = append(conds, "LOWER(r.destination) = LOWER(?)")
		args = append(args, f.Destination)
	}
	if f.Date != nil {
		conds = append(conds, "DATE(t.departure_at) = DATE(?)")
		args = append(args, f.Date)
	}

	query := tripSelect
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY t.departure_at ASC LIMIT 200"

	rows, err := r.Q.Query(query, args...)
	if err != nil {
		return nil, domain.InternalError{Err: err}
	}
	defer rows.Close()

	var trips []models.Trip
	for rows.Next() {
		t, err := scanTrip(rows)
		if err != nil {
			return nil, domain.InternalError{Err: err}
		}
		trips = append(trips, t)
	}
	return trips, rows.Err()
}

// DecrementSeats takes n seats off the counter. The guard in the WHERE
// clause keeps the counter from ever going negative; zero rows affected
// means capacity ran out under our feet.
func (r TripRepository) DecrementSeats(tripID int64, n int) error {
	res, err := r.Q.Exec(
		`UPDATE trips SET available_seats = available_seats - ? WHERE id = ? AND available_seats >= ?`,
		n, tripID, n,
	)
	if err != nil {
		return domain.InternalError{Err: err}
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return domain.InternalError{Err: err}
	}
	if affected == 0 {
		return domain.InsufficientCapacityError{Requested: n}
	}
	return nil
}

// IncrementSeats releases n seats back, capped at total_seats.
func (r TripRepository) IncrementSeats(tripID int64, n int) error {
	_, err := r.Q.Exec(
		`UPDATE trips SET available_seats = LEAST(available_seats + ?, total_seats) WHERE id = ?`,
		n, tripID,
	)
	if err != nil {
		return domain.InternalError{Err: err}
	}
	return nil
}

func (r TripRepository) Create(t models.Trip) (int64, error) {
	res, err := r.Q.Exec(`
		INSERT INTO trips (route_id, vehicle_id, driver_id, departure_at, arrival_at,
			total_seats, available_seats, base_price, active)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.RouteID, t.VehicleID, t.DriverID, t.DepartureAt, t.ArrivalAt,
		t.TotalSeats, t.TotalSeats, t.BasePrice, t.Active,
	)
	if err != nil {
		return 0, domain.InternalError{Err: err}
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, domain.InternalError{Err: err}
	}
	return id, nil
}

func (r TripRepository) Update(id int64, departureAt, arrivalAt time.Time, basePrice int64, active bool) error {
	res, err := r.Q.Exec(`
		UPDATE trips SET departure_at = ?, arrival_at = ?, base_price = ?, active = ? WHERE id = ?`,
		departureAt, arrivalAt, basePrice, active, id,
	)
	if err != nil {
		return domain.InternalError{Err: err}
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		if _, err := r.GetByID(id); err != nil {
			return err
		}
	}
	return nil
}

// Deactivate soft-deletes; trips are never removed.
func (r TripRepository) Deactivate(id int64) error {
	res, err := r.Q.Exec(`UPDATE trips SET active = 0 WHERE id = ?`, id)
	if err != nil {
		return domain.InternalError{Err: err}
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return domain.NotFoundError{Resource: "trip"}
	}
	return nil
}

package repositories

import (
	"database/sql"
	"errors"

	"github.com/Quadco-Consults/Saharam-express-sub001/internal/db"
	"github.com/Quadco-Consults/Saharam-express-sub001/internal/domain"
	"github.com/Quadco-Consults/Saharam-express-sub001/internal/domain/models"
)

// FleetRepository covers the admin-managed reference data: routes,
// vehicles and drivers.
type FleetRepository struct {
	Q db.Execer
}

func (r FleetRepository) CreateRoute(route models.Route) (int64, error) {
	res, err := r.Q.Exec(`
		INSERT INTO routes (origin, destination, distance_km, duration_min, active)
		VALUES (?, ?, ?, ?, ?)`,
		route.Origin, route.Destination, route.DistanceKM, route.DurationMin, route.Active,
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

func (r FleetRepository) ListRoutes(onlyActive bool) ([]models.Route, error) {
	query := `SELECT id, origin, destination, distance_km, duration_min, active, created_at, updated_at FROM routes`
	if onlyActive {
		query += ` WHERE active = 1`
	}
	query += ` ORDER BY origin, destination`

	rows, err := r.Q.Query(query)
	if err != nil {
		return nil, domain.InternalError{Err: err}
	}
	defer rows.Close()

	var out []models.Route
	for rows.Next() {
		var route models.Route
		if err := rows.Scan(&route.ID, &route.Origin, &route.Destination,
			&route.DistanceKM, &route.DurationMin, &route.Active,
			&route.CreatedAt, &route.UpdatedAt); err != nil {
			return nil, domain.InternalError{Err: err}
		}
		out = append(out, route)
	}
	return out, rows.Err()
}

func (r FleetRepository) GetRoute(id int64) (models.Route, error) {
	var route models.Route
	err := r.Q.QueryRow(
		`SELECT id, origin, destination, distance_km, duration_min, active, created_at, updated_at
		 FROM routes WHERE id = ?`, id,
	).Scan(&route.ID, &route.Origin, &route.Destination,
		&route.DistanceKM, &route.DurationMin, &route.Active,
		&route.CreatedAt, &route.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Route{}, domain.NotFoundError{Resource: "route", Err: err}
	}
	if err != nil {
		return models.Route{}, domain.InternalError{Err: err}
	}
	return route, nil
}

func (r FleetRepository) CreateVehicle(v models.Vehicle) (int64, error) {
	res, err := r.Q.Exec(`
		INSERT INTO vehicles (code, model, capacity, seats_per_row, active)
		VALUES (?, ?, ?, ?, ?)`,
		v.Code, v.Model, v.Capacity, v.SeatsPerRow, v.Active,
	)
	if err != nil {
		if isDuplicateKey(err) {
			return 0, domain.ConflictError{Resource: "vehicle code", Err: err}
		}
		return 0, domain.InternalError{Err: err}
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, domain.InternalError{Err: err}
	}
	return id, nil
}

func (r FleetRepository) ListVehicles(onlyActive bool) ([]models.Vehicle, error) {
	query := `SELECT id, code, model, capacity, seats_per_row, active, created_at, updated_at FROM vehicles`
	if onlyActive {
		query += ` WHERE active = 1`
	}
	query += ` ORDER BY code`

	rows, err := r.Q.Query(query)
	if err != nil {
		return nil, domain.InternalError{Err: err}
	}
	defer rows.Close()

	var out []models.Vehicle
	for rows.Next() {
		var v models.Vehicle
		if err := rows.Scan(&v.ID, &v.Code, &v.Model, &v.Capacity, &v.SeatsPerRow,
			&v.Active, &v.CreatedAt, &v.UpdatedAt); err != nil {
			return nil, domain.InternalError{Err: err}
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func (r FleetRepository) GetVehicle(id int64) (models.Vehicle, error) {
	var v models.Vehicle
	err := r.Q.QueryRow(
		`SELECT id, code, model, capacity, seats_per_row, active, created_at, updated_at
		 FROM vehicles WHERE id = ?`, id,
	).Scan(&v.ID, &v.Code, &v.Model, &v.Capacity, &v.SeatsPerRow,
		&v.Active, &v.CreatedAt, &v.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Vehicle{}, domain.NotFoundError{Resource: "vehicle", Err: err}
	}
	if err != nil {
		return models.Vehicle{}, domain.InternalError{Err: err}
	}
	return v, nil
}

func (r FleetRepository) CreateDriver(d models.Driver) (int64, error) {
	res, err := r.Q.Exec(`
		INSERT INTO drivers (name, phone, license_no, active) VALUES (?, ?, ?, ?)`,
		d.Name, d.Phone, d.LicenseNo, d.Active,
	)
	if err != nil {
		if isDuplicateKey(err) {
			return 0, domain.ConflictError{Resource: "driver license", Err: err}
		}
		return 0, domain.InternalError{Err: err}
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, domain.InternalError{Err: err}
	}
	return id, nil
}

func (r FleetRepository) ListDrivers(onlyActive bool) ([]models.Driver, error) {
	query := `SELECT id, name, phone, license_no, active, created_at, updated_at FROM drivers`
	if onlyActive {
		query += ` WHERE active = 1`
	}
	query += ` ORDER BY name`

	rows, err := r.Q.Query(query)
	if err != nil {
		return nil, domain.InternalError{Err: err}
	}
	defer rows.Close()

	var out []models.Driver
	for rows.Next() {
		var d models.Driver
		if err := rows.Scan(&d.ID, &d.Name, &d.Phone, &d.LicenseNo,
			&d.Active, &d.CreatedAt, &d.UpdatedAt); err != nil {
			return nil, domain.InternalError{Err: err}
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (r FleetRepository) SetVehicleActive(id int64, active bool) error {
	res, err := r.Q.Exec(`UPDATE vehicles SET active = ? WHERE id = ?`, active, id)
	if err != nil {
		return domain.InternalError{Err: err}
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return domain.NotFoundError{Resource: "vehicle"}
	}
	return nil
}

func (r FleetRepository) SetDriverActive(id int64, active bool) error {
	res, err := r.Q.Exec(`UPDATE drivers SET active = ? WHERE id = ?`, active, id)
	if err != nil {
		return domain.InternalError{Err: err}
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return domain.NotFoundError{Resource: "driver"}
	}
	return nil
}

package repositories

import (
	"database/sql"
	"errors"

	"github.com/Quadco-Consults/Saharam-express-sub001/internal/db"
	"github.com/Quadco-Consults/Saharam-express-sub001/internal/domain"
	"github.com/Quadco-Consults/Saharam-express-sub001/internal/domain/models"
)

type UserRepository struct {
	Q db.Execer
}

const userSelect = `
	SELECT id, name, email, phone, password_hash, role, loyalty_points, created_at, updated_at
	FROM users`

func scanUser(row interface{ Scan(...any) error }) (models.User, error) {
	var u models.User
	err := row.Scan(
		&u.ID, &u.Name, &u.Email, &u.Phone, &u.PasswordHash,
		&u.Role, &u.LoyaltyPoints, &u.CreatedAt, &u.UpdatedAt,
	)
	return u, err
}

func (r UserRepository) Create(u models.User) (int64, error) {
	res, err := r.Q.Exec(`
		INSERT INTO users (name, email, phone, password_hash, role)
		VALUES (?, ?, ?, ?, ?)`,
		u.Name, u.Email, u.Phone, u.PasswordHash, u.Role,
	)
	if err != nil {
		if isDuplicateKey(err) {
			return 0, domain.ConflictError{Resource: "email", Msg: "already registered", Err: err}
		}
		return 0, domain.InternalError{Err: err}
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, domain.InternalError{Err: err}
	}
	return id, nil
}

func (r UserRepository) GetByID(id int64) (models.User, error) {
	u, err := scanUser(r.Q.QueryRow(userSelect+` WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, domain.NotFoundError{Resource: "user", Err: err}
	}
	if err != nil {
		return models.User{}, domain.InternalError{Err: err}
	}
	return u, nil
}

func (r UserRepository) GetByEmail(email string) (models.User, error) {
	u, err := scanUser(r.Q.QueryRow(userSelect+` WHERE email = ?`, email))
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, domain.NotFoundError{Resource: "user", Err: err}
	}
	if err != nil {
		return models.User{}, domain.InternalError{Err: err}
	}
	return u, nil
}

// GetByIDForUpdate locks the user row while points move.
func (r UserRepository) GetByIDForUpdate(id int64) (models.User, error) {
	u, err := scanUser(r.Q.QueryRow(userSelect+` WHERE id = ? FOR UPDATE`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, domain.NotFoundError{Resource: "user", Err: err}
	}
	if err != nil {
		return models.User{}, domain.InternalError{Err: err}
	}
	return u, nil
}

// AdjustPoints applies a signed delta to the materialized balance. The
// guard refuses to drive the balance negative; the loyalty ledger entry
// must be written in the same transaction.
func (r UserRepository) AdjustPoints(userID, delta int64) error {
	res, err := r.Q.Exec(
		`UPDATE users SET loyalty_points = loyalty_points + ? WHERE id = ? AND loyalty_points + ? >= 0`,
		delta, userID, delta,
	)
	if err != nil {
		return domain.InternalError{Err: err}
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return domain.InternalError{Err: err}
	}
	if affected == 0 {
		return domain.InsufficientPointsError{Requested: -delta}
	}
	return nil
}

// SetPoints overwrites the materialized balance; used only by the
// loyalty reconciliation repair path.
func (r UserRepository) SetPoints(userID, points int64) error {
	_, err := r.Q.Exec(`UPDATE users SET loyalty_points = ? WHERE id = ?`, points, userID)
	if err != nil {
		return domain.InternalError{Err: err}
	}
	return nil
}

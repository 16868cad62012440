package repositories

import (
	"database/sql"
	"errors"
	"time"

	"github.com/Quadco-Consults/Saharam-express-sub001/internal/db"
	"github.com/Quadco-Consults/Saharam-express-sub001/internal/domain"
	"github.com/Quadco-Consults/Saharam-express-sub001/internal/domain/models"
)

type PaymentRepository struct {
	Q db.Execer
}

const paymentSelect = `
	SELECT id, booking_id, reference, provider, amount, currency, status,
	       COALESCE(gateway_response, ''), paid_at, created_at, updated_at
	FROM payments`

func scanPayment(row interface{ Scan(...any) error }) (models.Payment, error) {
	var (
		p      models.Payment
		paidAt sql.NullTime
	)
	err := row.Scan(
		&p.ID, &p.BookingID, &p.Reference, &p.Provider, &p.Amount, &p.Currency,
		&p.Status, &p.GatewayResponse, &paidAt, &p.CreatedAt, &p.UpdatedAt,
	)
	if paidAt.Valid {
		p.PaidAt = &paidAt.Time
	}
	return p, err
}

func (r PaymentRepository) Insert(p models.Payment) (int64, error) {
	res, err := r.Q.Exec(`
		INSERT INTO payments (booking_id, reference, provider, amount, currency, status)
		VALUES (?, ?, ?, ?, ?, ?)`,
		p.BookingID, p.Reference, p.Provider, p.Amount, p.Currency, p.Status,
	)
	if err != nil {
		if isDuplicateKey(err) {
			return 0, domain.ConflictError{Resource: "payment reference", Err: err}
		}
		return 0, domain.InternalError{Err: err}
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, domain.InternalError{Err: err}
	}
	return id, nil
}

func (r PaymentRepository) GetByReference(reference string) (models.Payment, error) {
	p, err := scanPayment(r.Q.QueryRow(paymentSelect+` WHERE reference = ?`, reference))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Payment{}, domain.NotFoundError{Resource: "payment", Err: err}
	}
	if err != nil {
		return models.Payment{}, domain.InternalError{Err: err}
	}
	return p, nil
}

// GetByReferenceForUpdate locks the payment row so replayed webhook
// deliveries for the same reference serialize behind each other.
func (r PaymentRepository) GetByReferenceForUpdate(reference string) (models.Payment, error) {
	p, err := scanPayment(r.Q.QueryRow(paymentSelect+` WHERE reference = ? FOR UPDATE`, reference))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Payment{}, domain.NotFoundError{Resource: "payment", Err: err}
	}
	if err != nil {
		return models.Payment{}, domain.InternalError{Err: err}
	}
	return p, nil
}

// UpdateResult records the gateway's verdict in place.
func (r PaymentRepository) UpdateResult(id int64, status, gatewayResponse string, paidAt *time.Time) error {
	var paid any
	if paidAt != nil {
		paid = *paidAt
	}
	_, err := r.Q.Exec(
		`UPDATE payments SET status = ?, gateway_response = ?, paid_at = ? WHERE id = ?`,
		status, gatewayResponse, paid, id,
	)
	if err != nil {
		return domain.InternalError{Err: err}
	}
	return nil
}

func (r PaymentRepository) ListByBooking(bookingID int64) ([]models.Payment, error) {
	rows, err := r.Q.Query(paymentSelect+` WHERE booking_id = ? ORDER BY created_at DESC`, bookingID)
	if err != nil {
		return nil, domain.InternalError{Err: err}
	}
	defer rows.Close()

	var out []models.Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, domain.InternalError{Err: err}
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

package repositories

import (
	"github.com/Quadco-Consults/Saharam-express-sub001/internal/db"
	"github.com/Quadco-Consults/Saharam-express-sub001/internal/domain"
	"github.com/Quadco-Consults/Saharam-express-sub001/internal/domain/models"
)

// LoyaltyRepository writes the append-only points ledger.
type LoyaltyRepository struct {
	Q db.Execer
}

func (r LoyaltyRepository) Append(t models.LoyaltyTransaction) error {
	var bookingID any
	if t.BookingID != nil {
		bookingID = *t.BookingID
	}
	_, err := r.Q.Exec(`
		INSERT INTO loyalty_transactions (user_id, booking_id, points, reason)
		VALUES (?, ?, ?, ?)`,
		t.UserID, bookingID, t.Points, t.Reason,
	)
	if err != nil {
		return domain.InternalError{Err: err}
	}
	return nil
}

func (r LoyaltyRepository) ListByUser(userID int64, limit int) ([]models.LoyaltyTransaction, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	rows, err := r.Q.Query(`
		SELECT id, user_id, booking_id, points, reason, created_at
		FROM loyalty_transactions WHERE user_id = ?
		ORDER BY created_at DESC, id DESC LIMIT ?`,
		userID, limit,
	)
	if err != nil {
		return nil, domain.InternalError{Err: err}
	}
	defer rows.Close()

	var out []models.LoyaltyTransaction
	for rows.Next() {
		var (
			t         models.LoyaltyTransaction
			bookingID *int64
		)
		if err := rows.Scan(&t.ID, &t.UserID, &bookingID, &t.Points, &t.Reason, &t.CreatedAt); err != nil {
			return nil, domain.InternalError{Err: err}
		}
		t.BookingID = bookingID
		out = append(out, t)
	}
	return out, rows.Err()
}

// SumByUser folds the ledger; the result is what users.loyalty_points
// must equal.
func (r LoyaltyRepository) SumByUser(userID int64) (int64, error) {
	var sum int64
	err := r.Q.QueryRow(
		`SELECT COALESCE(SUM(points), 0) FROM loyalty_transactions WHERE user_id = ?`, userID,
	).Scan(&sum)
	if err != nil {
		return 0, domain.InternalError{Err: err}
	}
	return sum, nil
}

package services

import (
	"database/sql"
	"fmt"

	"github.com/Quadco-Consults/Saharam-express-sub001/internal/db"
	"github.com/Quadco-Consults/Saharam-express-sub001/internal/domain/models"
	"github.com/Quadco-Consults/Saharam-express-sub001/internal/repositories"
	"github.com/Quadco-Consults/Saharam-express-sub001/internal/utils"
)

type LoyaltyService struct {
	DB        *sql.DB
	RequestID string
}

func (s LoyaltyService) Balance(userID int64) (int64, error) {
	user, err := repositories.UserRepository{Q: s.DB}.GetByID(userID)
	if err != nil {
		return 0, err
	}
	return user.LoyaltyPoints, nil
}

func (s LoyaltyService) History(userID int64, limit int) ([]models.LoyaltyTransaction, error) {
	return repositories.LoyaltyRepository{Q: s.DB}.ListByUser(userID, limit)
}

// AuditResult reports the ledger-vs-counter check for one user.
type AuditResult struct {
	UserID    int64 `json:"userId"`
	Counter   int64 `json:"counter"`
	LedgerSum int64 `json:"ledgerSum"`
	Drift     int64 `json:"drift"`
	Repaired  bool  `json:"repaired"`
}

// ReconcileBalance audits the invariant that users.loyalty_points equals
// the sum of the user's ledger entries, and optionally repairs the
// counter from the ledger (the ledger is the source of truth).
func (s LoyaltyService) ReconcileBalance(userID int64, repair bool) (AuditResult, error) {
	var result AuditResult
	err := db.WithTx(s.DB, func(tx *sql.Tx) error {
		users := repositories.UserRepository{Q: tx}
		ledger := repositories.LoyaltyRepository{Q: tx}

		user, err := users.GetByIDForUpdate(userID)
		if err != nil {
			return err
		}
		sum, err := ledger.SumByUser(userID)
		if err != nil {
			return err
		}

		result = AuditResult{
			UserID:    userID,
			Counter:   user.LoyaltyPoints,
			LedgerSum: sum,
			Drift:     user.LoyaltyPoints - sum,
		}
		if result.Drift != 0 && repair {
			if err := users.SetPoints(userID, sum); err != nil {
				return err
			}
			result.Repaired = true
		}
		return nil
	})
	if err != nil {
		return AuditResult{}, err
	}

	if result.Drift != 0 {
		utils.LogEvent(s.RequestID, "loyalty", "reconcile",
			fmt.Sprintf("user=%d drift=%d repaired=%t", userID, result.Drift, result.Repaired))
	}
	return result, nil
}

package services

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

func newLoyaltyService(t *testing.T) (LoyaltyService, sqlmock.Sqlmock) {
	t.Helper()
	sqldb, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { sqldb.Close() })
	return LoyaltyService{DB: sqldb}, mock
}

func userRowWithPoints(points int64) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "name", "email", "phone", "password_hash", "role", "loyalty_points", "created_at", "updated_at",
	}).AddRow(42, "Ngozi Okafor", "ngozi@example.com", "", "x", "user", points, testNow, testNow)
}

func TestReconcileBalanceNoDrift(t *testing.T) {
	svc, mock := newLoyaltyService(t)

	mock.ExpectBegin()
	mock.ExpectQuery("FROM users WHERE id(.+)FOR UPDATE").
		WillReturnRows(userRowWithPoints(750))
	mock.ExpectQuery("SUM(.+)FROM loyalty_transactions").
		WillReturnRows(sqlmock.NewRows([]string{"sum"}).AddRow(750))
	mock.ExpectCommit()

	result, err := svc.ReconcileBalance(42, true)
	if err != nil {
		t.Fatalf("ReconcileBalance: %v", err)
	}
	if result.Drift != 0 || result.Repaired {
		t.Errorf("result = %+v, want zero drift and no repair", result)
	}
}

func TestReconcileBalanceRepairsDrift(t *testing.T) {
	svc, mock := newLoyaltyService(t)

	mock.ExpectBegin()
	mock.ExpectQuery("FROM users WHERE id(.+)FOR UPDATE").
		WillReturnRows(userRowWithPoints(900))
	mock.ExpectQuery("SUM(.+)FROM loyalty_transactions").
		WillReturnRows(sqlmock.NewRows([]string{"sum"}).AddRow(750))
	mock.ExpectExec("UPDATE users SET loyalty_points = ").
		WithArgs(int64(750), int64(42)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	result, err := svc.ReconcileBalance(42, true)
	if err != nil {
		t.Fatalf("ReconcileBalance: %v", err)
	}
	if result.Drift != 150 || !result.Repaired {
		t.Errorf("result = %+v, want drift 150 repaired", result)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestReconcileBalanceReportOnly(t *testing.T) {
	svc, mock := newLoyaltyService(t)

	mock.ExpectBegin()
	mock.ExpectQuery("FROM users WHERE id(.+)FOR UPDATE").
		WillReturnRows(userRowWithPoints(900))
	mock.ExpectQuery("SUM(.+)FROM loyalty_transactions").
		WillReturnRows(sqlmock.NewRows([]string{"sum"}).AddRow(750))
	mock.ExpectCommit()

	result, err := svc.ReconcileBalance(42, false)
	if err != nil {
		t.Fatalf("ReconcileBalance: %v", err)
	}
	if result.Drift != 150 || result.Repaired {
		t.Errorf("result = %+v, want drift 150 unrepaired", result)
	}
}

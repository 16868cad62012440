package db

import (
	"database/sql"
	"fmt"
)

// Execer is the subset of sql.DB / sql.Tx the repositories need, so the
// same query code runs inside and outside a transaction.
type Execer interface {
	Exec(query string, args ...any) (sql.Result, error)
	Query(query string, args ...any) (*sql.Rows, error)
	QueryRow(query string, args ...any) *sql.Row
}

// WithTx runs fn inside a transaction. Rollback on error or panic,
// commit otherwise.
func WithTx(sqldb *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := sqldb.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// NullIfEmpty helps store optional strings without wiping existing data.
func NullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// NullIfZero stores optional foreign keys as NULL.
func NullIfZero(id int64) any {
	if id == 0 {
		return nil
	}
	return id
}

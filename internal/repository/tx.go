package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrTransactionAborted indicates the database aborted the transaction
	// because of contention (serialization failure or deadlock). Nothing was
	// committed, so the caller may safely retry the whole operation.
	ErrTransactionAborted = errors.New("transaction aborted due to contention, retry the operation")
)

// Querier is the subset of database/sql shared by *sql.DB and *sql.Tx.
// Repository methods that must participate in an enclosing transaction take
// a Querier so the caller decides the transaction boundary.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// TxManager owns the transaction boundary for multi-statement operations.
type TxManager interface {
	WithinTx(ctx context.Context, fn func(tx *sql.Tx) error) error
}

type txManager struct {
	db *sql.DB
}

// NewTxManager creates a TxManager on top of db
func NewTxManager(db *sql.DB) TxManager {
	return &txManager{db: db}
}

func (m *txManager) WithinTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	return WithinTx(ctx, m.db, fn)
}

// WithinTx runs fn inside a transaction, committing on success and rolling
// back on any error or panic. Contention aborts surface as
// ErrTransactionAborted.
func WithinTx(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		if isAbortError(err) {
			return fmt.Errorf("%w: %v", ErrTransactionAborted, err)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		if isAbortError(err) {
			return fmt.Errorf("%w: %v", ErrTransactionAborted, err)
		}
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// isAbortError reports whether err is a Postgres serialization failure
// (40001) or deadlock (40P01).
func isAbortError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "40001" || pgErr.Code == "40P01"
	}
	return false
}

// isUniqueViolation reports whether err is a Postgres unique constraint
// violation (23505), optionally on the named constraint.
func isUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code != "23505" {
			return false
		}
		return constraint == "" || pgErr.ConstraintName == constraint
	}
	return false
}

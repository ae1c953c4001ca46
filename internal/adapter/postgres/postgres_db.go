package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/voltride/rental-service/internal/core/domain"
)

// querier is the subset of database/sql shared by *sql.DB and *sql.Tx, so
// repository methods run the same inside and outside a transaction.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

type txKey struct{}

// conn returns the transaction carried by ctx when the call is part of a
// unit of work, otherwise the plain pool.
func conn(ctx context.Context, db *sql.DB) querier {
	if tx, ok := ctx.Value(txKey{}).(*sql.Tx); ok {
		return tx
	}
	return db
}

// TxManager implements ports.Transactor over database/sql. Each unit of
// work gets a bounded lock wait so contention surfaces as a retryable
// error instead of blocking forever.
type TxManager struct {
	db *sql.DB
}

func NewTxManager(db *sql.DB) *TxManager {
	return &TxManager{db: db}
}

func (m *TxManager) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	// Nested calls join the ambient transaction.
	if _, ok := ctx.Value(txKey{}).(*sql.Tx); ok {
		return fn(ctx)
	}

	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	if _, err := tx.ExecContext(ctx, "SET LOCAL lock_timeout = '3s'"); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("set lock timeout: %w", err)
	}

	if err := fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", mapError(err))
	}
	return nil
}

// mapError translates driver errors into domain error kinds. Anything
// unrecognized passes through untouched.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrNotFound
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "23505": // unique_violation
			return fmt.Errorf("%w: already exists", domain.ErrConflict)
		case "23503": // foreign_key_violation
			return fmt.Errorf("%w: referenced row missing", domain.ErrNotFound)
		case "23502": // not_null_violation
			return fmt.Errorf("%w: required field is missing", domain.ErrInvalidArgument)
		case "23514": // check_violation
			return fmt.Errorf("%w: constraint violated", domain.ErrInvalidArgument)
		case "55P03": // lock_not_available
			return fmt.Errorf("%w: lock timeout", domain.ErrBusy)
		case "40001", "40P01": // serialization_failure, deadlock_detected
			return fmt.Errorf("%w: transaction contention", domain.ErrBusy)
		}
	}
	return err
}

package db

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"log/slog"

	"github.com/lib/pq"
)

// ErrTransient marks failures worth retrying from scratch: serialization
// failures, deadlocks, lock timeouts and dropped connections.
var ErrTransient = errors.New("transient store failure")

// Коды ошибок PostgreSQL, после которых транзакцию можно повторить.
var transientCodes = map[pq.ErrorCode]bool{
	"40001": true, // serialization_failure
	"40P01": true, // deadlock_detected
	"55P03": true, // lock_not_available
	"57014": true, // query_canceled (statement_timeout)
}

// IsTransient reports whether err is a retryable store failure.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrTransient) || errors.Is(err, driver.ErrBadConn) || errors.Is(err, sql.ErrConnDone) {
		return true
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return transientCodes[pqErr.Code]
	}
	return false
}

func classify(err error) error {
	if err == nil || errors.Is(err, ErrTransient) || !IsTransient(err) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrTransient, err)
}

// TxRunner runs a function inside one database transaction.
type TxRunner struct {
	db     *sql.DB
	opts   *sql.TxOptions
	logger *slog.Logger
}

func NewTxRunner(db *sql.DB, logger *slog.Logger) *TxRunner {
	if logger == nil {
		logger = slog.Default()
	}
	return &TxRunner{
		db:     db,
		opts:   &sql.TxOptions{Isolation: sql.LevelRepeatableRead},
		logger: logger,
	}
}

// RunInTx commits when fn returns nil and rolls back otherwise. Retryable
// failures come back wrapped with ErrTransient.
func (r *TxRunner) RunInTx(ctx context.Context, fn func(exec Executor) error) (err error) {
	tx, err := r.db.BeginTx(ctx, r.opts)
	if err != nil {
		return classify(fmt.Errorf("failed to begin transaction: %w", err))
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
				r.logger.Error("transaction rollback failed", slog.Any("error", rbErr), slog.Any("cause", err))
			}
			err = classify(err)
			return
		}
		if cErr := tx.Commit(); cErr != nil {
			err = classify(fmt.Errorf("failed to commit transaction: %w", cErr))
		}
	}()

	return fn(tx)
}

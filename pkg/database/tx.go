package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"go.uber.org/zap"
)

const (
	sqlStateSerializationFailure = "40001"
	sqlStateDeadlockDetected     = "40P01"
)

// Transactor runs units of work inside SERIALIZABLE transactions, retrying
// when PostgreSQL aborts one for serialization reasons.
type Transactor struct {
	db          *sqlx.DB
	maxAttempts int
	logger      *zap.Logger
}

// NewTransactor wraps db. maxAttempts below one means a single attempt.
func NewTransactor(db *sqlx.DB, maxAttempts int, logger *zap.Logger) *Transactor {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Transactor{db: db, maxAttempts: maxAttempts, logger: logger}
}

// WithinTx executes fn in a transaction. fn may be invoked more than once and
// must not have side effects outside of exec.
func (t *Transactor) WithinTx(ctx context.Context, fn func(exec sqlx.ExtContext) error) error {
	var err error
	for attempt := 1; attempt <= t.maxAttempts; attempt++ {
		err = t.run(ctx, fn)
		if err == nil || !IsRetryable(err) {
			return err
		}
		t.logger.Warn("transaction aborted, retrying", zap.Int("attempt", attempt), zap.Error(err))
	}
	return err
}

func (t *Transactor) run(ctx context.Context, fn func(exec sqlx.ExtContext) error) (err error) {
	tx, err := t.db.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = fn(tx); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// IsRetryable reports whether err is a transient serialization or deadlock abort.
func IsRetryable(err error) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}
	code := string(pqErr.Code)
	return code == sqlStateSerializationFailure || code == sqlStateDeadlockDetected
}

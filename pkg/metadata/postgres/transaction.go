package postgres

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/marmos91/hubd/internal/logger"
)

const maxTransactionRetries = 3

// txKey is the context key under which the active pgx.Tx is stashed so
// nested store calls inside a WithTransaction block reuse it instead of
// acquiring a second connection.
type txKey struct{}

// WithTransaction runs fn inside a single serializable Postgres transaction,
// retrying on serialization failure (40001) and deadlock (40P01) with a
// small jittered backoff, up to maxTransactionRetries times.
func (s *Store) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	var lastErr error

	for attempt := 0; attempt <= maxTransactionRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(attempt*attempt) * 10 * time.Millisecond
			backoff += time.Duration(rand.Intn(10)) * time.Millisecond
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return ctx.Err()
			}
			logger.DebugCtx(ctx, "retrying metadata transaction", "attempt", attempt)
		}

		err := s.runOnce(ctx, fn)
		if err == nil {
			return nil
		}
		lastErr = err

		if !isRetryableError(err) {
			return mapPgError(err)
		}
	}

	return mapPgError(lastErr)
}

func (s *Store) runOnce(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	txCtx := context.WithValue(ctx, txKey{}, tx)
	if err = fn(txCtx); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// querier abstracts over *pgxpool.Pool and pgx.Tx so read helpers work both
// inside and outside an explicit transaction.
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

func (s *Store) q(ctx context.Context) querier {
	if tx, ok := ctx.Value(txKey{}).(pgx.Tx); ok {
		return tx
	}
	return s.pool
}

func isRetryableError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "40001", "40P01":
			return true
		}
	}
	return false
}

// mapPgError returns err unchanged: no Postgres error code is translated
// here. Domain errors come from the individual store methods
// (isUniqueViolation, pgx.ErrNoRows), and a serialization failure or
// deadlock that outlasts the retries reaches the caller as the driver's
// *pgconn.PgError.
func mapPgError(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "40001", "40P01":
			return err
		}
	}
	return err
}

package repository

import (
	"context"
	"database/sql"
	"elo-ladder/internal/domain"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// Ledger runs multi-table mutations as a single transaction. Repositories
// join a transaction through their WithTx methods.
type Ledger struct {
	db     *sql.DB
	logger zerolog.Logger
}

func NewLedger(sqlDB *sql.DB, logger zerolog.Logger) *Ledger {
	return &Ledger{db: sqlDB, logger: logger}
}

// RunInTx commits when fn returns nil and rolls back otherwise. Errors from
// fn are returned unchanged; begin and commit failures become StorageError.
func (l *Ledger) RunInTx(ctx context.Context, op string, fn func(tx *sql.Tx) error) error {
	start := time.Now()

	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		l.logger.Error().Err(err).Str("op", op).Msg("failed to begin transaction")
		return domain.NewStorageError(op, fmt.Errorf("failed to begin transaction: %w", err))
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		l.logger.Debug().Err(err).Str("op", op).Msg("transaction rolled back")
		return err
	}

	if err := tx.Commit(); err != nil {
		l.logger.Error().Err(err).Str("op", op).Msg("failed to commit transaction")
		return domain.NewStorageError(op, fmt.Errorf("failed to commit transaction: %w", err))
	}

	l.logger.Debug().Str("op", op).Dur("duration", time.Since(start)).Msg("transaction committed")
	return nil
}

func toUnix(t time.Time) int64 {
	return t.UTC().Unix()
}

func fromUnix(ts int64) time.Time {
	return time.Unix(ts, 0).UTC()
}

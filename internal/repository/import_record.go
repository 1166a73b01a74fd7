package repository

import (
	"context"
	"database/sql"
	"elo-ladder/internal/db"
	"elo-ladder/internal/domain"
	"errors"
	"time"

	"github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
)

type ImportRecordRepository struct {
	queries *db.Queries
	db      *sql.DB
	logger  zerolog.Logger
}

func NewImportRecordRepository(sqlDB *sql.DB, queries *db.Queries, logger zerolog.Logger) *ImportRecordRepository {
	return &ImportRecordRepository{
		queries: queries,
		db:      sqlDB,
		logger:  logger,
	}
}

func (r *ImportRecordRepository) WithTx(tx *sql.Tx) *ImportRecordRepository {
	return &ImportRecordRepository{
		queries: r.queries.WithTx(tx),
		db:      r.db,
		logger:  r.logger,
	}
}

func (r *ImportRecordRepository) Exists(ctx context.Context, externalMatchID string) (bool, error) {
	exists, err := r.queries.ImportRecordExists(ctx, externalMatchID)
	if err != nil {
		return false, domain.NewStorageError("check import record", err)
	}
	return exists, nil
}

// Mark records the external match as applied. A second Mark for the same id
// fails with ErrDuplicateExternalMatch.
func (r *ImportRecordRepository) Mark(ctx context.Context, externalMatchID, sourceID string, at time.Time) error {
	err := r.queries.InsertImportRecord(ctx, db.InsertImportRecordParams{
		ExternalMatchID: externalMatchID,
		SourceID:        sourceID,
		ProcessedAt:     toUnix(at),
	})
	if err == nil {
		return nil
	}

	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey {
		r.logger.Warn().Str("external_match_id", externalMatchID).Msg("external match already marked")
		return domain.ErrDuplicateExternalMatch
	}
	return domain.NewStorageError("mark import record", err)
}

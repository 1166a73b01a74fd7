package repository

import (
	"context"
	"database/sql"
	"elo-ladder/internal/constants"
	"elo-ladder/internal/db"
	"elo-ladder/internal/domain"
	"errors"

	"github.com/rs/zerolog"
)

type SettingsRepository struct {
	queries *db.Queries
	db      *sql.DB
	logger  zerolog.Logger
}

func NewSettingsRepository(sqlDB *sql.DB, queries *db.Queries, logger zerolog.Logger) *SettingsRepository {
	return &SettingsRepository{
		queries: queries,
		db:      sqlDB,
		logger:  logger,
	}
}

func (r *SettingsRepository) WithTx(tx *sql.Tx) *SettingsRepository {
	return &SettingsRepository{
		queries: r.queries.WithTx(tx),
		db:      r.db,
		logger:  r.logger,
	}
}

// Multiplier reports whether winners currently receive double gain. A missing
// setting means off.
func (r *SettingsRepository) Multiplier(ctx context.Context) (bool, error) {
	value, err := r.queries.GetSetting(ctx, constants.MultiplierKey)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, domain.NewStorageError("get multiplier", err)
	}
	return value == constants.MultiplierOn, nil
}

func (r *SettingsRepository) SetMultiplier(ctx context.Context, on bool) error {
	value := constants.MultiplierOff
	if on {
		value = constants.MultiplierOn
	}
	if err := r.queries.UpsertSetting(ctx, constants.MultiplierKey, value); err != nil {
		return domain.NewStorageError("set multiplier", err)
	}
	r.logger.Info().Str("value", value).Msg("multiplier setting updated")
	return nil
}

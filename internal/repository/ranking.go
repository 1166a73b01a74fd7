package repository

import (
	"context"
	"database/sql"
	"elo-ladder/internal/db"
	"elo-ladder/internal/domain"
	"fmt"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog"
)

type RankingRepository struct {
	queries *db.Queries
	db      *sql.DB
	logger  zerolog.Logger
}

func NewRankingRepository(sqlDB *sql.DB, queries *db.Queries, logger zerolog.Logger) *RankingRepository {
	return &RankingRepository{
		queries: queries,
		db:      sqlDB,
		logger:  logger,
	}
}

func (r *RankingRepository) WithTx(tx *sql.Tx) *RankingRepository {
	return &RankingRepository{
		queries: r.queries.WithTx(tx),
		db:      r.db,
		logger:  r.logger,
	}
}

// AppendSnapshot stores one full ordering. players must already be sorted by
// rating descending with ties broken by ascending id; rank is the 1-based
// position in that slice.
func (r *RankingRepository) AppendSnapshot(ctx context.Context, players []domain.Player, at time.Time) (string, error) {
	batchID, err := gonanoid.New()
	if err != nil {
		return "", fmt.Errorf("failed to generate nanoid: %w", err)
	}

	ts := toUnix(at)
	for i, p := range players {
		err := r.queries.InsertRankingSnapshot(ctx, db.InsertRankingSnapshotParams{
			BatchID:   batchID,
			PlayerID:  p.ID,
			Timestamp: ts,
			Rank:      int64(i + 1),
		})
		if err != nil {
			return "", domain.NewStorageError("insert ranking snapshot", err)
		}
	}

	r.logger.Debug().Str("batch_id", batchID).Int("players", len(players)).Msg("ranking snapshot appended")
	return batchID, nil
}

func (r *RankingRepository) GetByPlayer(ctx context.Context, playerID string, limit int) ([]domain.RankingSnapshot, error) {
	rows, err := r.queries.ListRankingSnapshotsByPlayer(ctx, db.ListRankingSnapshotsByPlayerParams{
		PlayerID: playerID,
		Limit:    int64(limit),
	})
	if err != nil {
		return nil, domain.NewStorageError("list ranking snapshots", err)
	}
	return toDomainSnapshots(rows), nil
}

func (r *RankingRepository) Latest(ctx context.Context) ([]domain.RankingSnapshot, error) {
	rows, err := r.queries.ListLatestRankingSnapshot(ctx)
	if err != nil {
		return nil, domain.NewStorageError("latest ranking snapshot", err)
	}
	return toDomainSnapshots(rows), nil
}

func (r *RankingRepository) CountBatches(ctx context.Context) (int, error) {
	n, err := r.queries.CountRankingSnapshotBatches(ctx)
	if err != nil {
		return 0, domain.NewStorageError("count ranking snapshots", err)
	}
	return int(n), nil
}

func toDomainSnapshots(rows []db.RankingSnapshot) []domain.RankingSnapshot {
	result := make([]domain.RankingSnapshot, len(rows))
	for i, row := range rows {
		result[i] = domain.RankingSnapshot{
			BatchID:   row.BatchID,
			PlayerID:  row.PlayerID,
			Timestamp: fromUnix(row.Timestamp),
			Rank:      int(row.Rank),
		}
	}
	return result
}

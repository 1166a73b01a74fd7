package repository

import (
	"context"
	"database/sql"
	"elo-ladder/internal/db"
	"elo-ladder/internal/domain"
	"errors"
	"time"

	"github.com/rs/zerolog"
)

type MatchRepository struct {
	queries *db.Queries
	db      *sql.DB
	logger  zerolog.Logger
}

func NewMatchRepository(sqlDB *sql.DB, queries *db.Queries, logger zerolog.Logger) *MatchRepository {
	return &MatchRepository{
		queries: queries,
		db:      sqlDB,
		logger:  logger,
	}
}

func (r *MatchRepository) WithTx(tx *sql.Tx) *MatchRepository {
	return &MatchRepository{
		queries: r.queries.WithTx(tx),
		db:      r.db,
		logger:  r.logger,
	}
}

// RatingPoint is a player's rating right after one of their matches.
type RatingPoint struct {
	MatchID     int64
	Timestamp   time.Time
	RatingAfter int
}

// Append writes the match and fills in its assigned MatchID.
func (r *MatchRepository) Append(ctx context.Context, match *domain.Match) error {
	id, err := r.queries.InsertMatch(ctx, db.InsertMatchParams{
		Timestamp:         toUnix(match.Timestamp),
		WinnerID:          match.WinnerID,
		LoserID:           match.LoserID,
		RatingDelta:       int64(match.RatingDelta),
		WinnerRatingAfter: int64(match.WinnerRatingAfter),
		LoserRatingAfter:  int64(match.LoserRatingAfter),
		Multiplier:        int64(match.Multiplier),
		Source:            match.Source,
	})
	if err != nil {
		r.logger.Error().Err(err).Str("winner_id", match.WinnerID).Str("loser_id", match.LoserID).Msg("failed to insert match")
		return domain.NewStorageError("insert match", err)
	}
	match.MatchID = id
	return nil
}

func (r *MatchRepository) Get(ctx context.Context, matchID int64) (*domain.Match, error) {
	m, err := r.queries.GetMatch(ctx, matchID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrMatchNotFound
	}
	if err != nil {
		return nil, domain.NewStorageError("get match", err)
	}
	return toDomainMatch(m), nil
}

// Reverse hard-deletes the match and leaves an audit row behind. Ratings are
// restored by the caller inside the same transaction.
func (r *MatchRepository) Reverse(ctx context.Context, match *domain.Match, at time.Time) (*domain.LedgerReversal, error) {
	n, err := r.queries.DeleteMatch(ctx, match.MatchID)
	if err != nil {
		return nil, domain.NewStorageError("delete match", err)
	}
	if n == 0 {
		return nil, domain.ErrMatchNotFound
	}

	id, err := r.queries.InsertLedgerReversal(ctx, db.InsertLedgerReversalParams{
		MatchID:     match.MatchID,
		WinnerID:    match.WinnerID,
		LoserID:     match.LoserID,
		RatingDelta: int64(match.RatingDelta),
		Multiplier:  int64(match.Multiplier),
		ReversedAt:  toUnix(at),
	})
	if err != nil {
		return nil, domain.NewStorageError("insert reversal", err)
	}

	return &domain.LedgerReversal{
		ID:          id,
		MatchID:     match.MatchID,
		WinnerID:    match.WinnerID,
		LoserID:     match.LoserID,
		RatingDelta: match.RatingDelta,
		Multiplier:  match.Multiplier,
		ReversedAt:  at.UTC().Truncate(time.Second),
	}, nil
}

func (r *MatchRepository) ListReversals(ctx context.Context, limit int) ([]domain.LedgerReversal, error) {
	rows, err := r.queries.ListLedgerReversals(ctx, int64(limit))
	if err != nil {
		return nil, domain.NewStorageError("list reversals", err)
	}
	result := make([]domain.LedgerReversal, len(rows))
	for i, row := range rows {
		result[i] = domain.LedgerReversal{
			ID:          row.ID,
			MatchID:     row.MatchID,
			WinnerID:    row.WinnerID,
			LoserID:     row.LoserID,
			RatingDelta: int(row.RatingDelta),
			Multiplier:  int(row.Multiplier),
			ReversedAt:  fromUnix(row.ReversedAt),
		}
	}
	return result, nil
}

func (r *MatchRepository) LastMatchTimes(ctx context.Context) (map[string]time.Time, error) {
	rows, err := r.queries.LastMatchTimes(ctx)
	if err != nil {
		return nil, domain.NewStorageError("last match times", err)
	}
	result := make(map[string]time.Time, len(rows))
	for _, row := range rows {
		result[row.PlayerID] = fromUnix(row.LastAt)
	}
	return result, nil
}

// RatingsSince groups post-match ratings per player, oldest first.
func (r *MatchRepository) RatingsSince(ctx context.Context, since time.Time) (map[string][]RatingPoint, error) {
	rows, err := r.queries.PlayerRatingsSince(ctx, toUnix(since))
	if err != nil {
		return nil, domain.NewStorageError("ratings since", err)
	}
	result := make(map[string][]RatingPoint)
	for _, row := range rows {
		result[row.PlayerID] = append(result[row.PlayerID], RatingPoint{
			MatchID:     row.MatchID,
			Timestamp:   fromUnix(row.Timestamp),
			RatingAfter: int(row.RatingAfter),
		})
	}
	return result, nil
}

// ResultsNewestFirst returns winner/loser pairs of the whole ledger, most
// recent match first.
func (r *MatchRepository) ResultsNewestFirst(ctx context.Context) ([]domain.Match, error) {
	rows, err := r.queries.ListMatchResultsDesc(ctx)
	if err != nil {
		return nil, domain.NewStorageError("list match results", err)
	}
	result := make([]domain.Match, len(rows))
	for i, row := range rows {
		result[i] = domain.Match{
			MatchID:   row.MatchID,
			WinnerID:  row.WinnerID,
			LoserID:   row.LoserID,
			Timestamp: fromUnix(row.Timestamp),
		}
	}
	return result, nil
}

func toDomainMatch(m db.Match) *domain.Match {
	return &domain.Match{
		MatchID:           m.MatchID,
		Timestamp:         fromUnix(m.Timestamp),
		WinnerID:          m.WinnerID,
		LoserID:           m.LoserID,
		RatingDelta:       int(m.RatingDelta),
		WinnerRatingAfter: int(m.WinnerRatingAfter),
		LoserRatingAfter:  int(m.LoserRatingAfter),
		Multiplier:        int(m.Multiplier),
		Source:            m.Source,
	}
}

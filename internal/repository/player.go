package repository

import (
	"context"
	"database/sql"
	"elo-ladder/internal/constants"
	"elo-ladder/internal/db"
	"elo-ladder/internal/domain"
	"errors"
	"time"

	"github.com/rs/zerolog"
)

type PlayerRepository struct {
	queries *db.Queries
	db      *sql.DB
	logger  zerolog.Logger
}

func NewPlayerRepository(sqlDB *sql.DB, queries *db.Queries, logger zerolog.Logger) *PlayerRepository {
	return &PlayerRepository{
		queries: queries,
		db:      sqlDB,
		logger:  logger,
	}
}

func (r *PlayerRepository) WithTx(tx *sql.Tx) *PlayerRepository {
	return &PlayerRepository{
		queries: r.queries.WithTx(tx),
		db:      r.db,
		logger:  r.logger,
	}
}

func (r *PlayerRepository) Get(ctx context.Context, id string) (*domain.Player, error) {
	player, err := r.queries.GetPlayer(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrUnknownPlayer
	}
	if err != nil {
		return nil, domain.NewStorageError("get player", err)
	}
	return toDomainPlayer(player), nil
}

// Register inserts the player at the default rating. It reports false when
// the player already existed, leaving the stored row untouched.
func (r *PlayerRepository) Register(ctx context.Context, id string, at time.Time) (bool, error) {
	n, err := r.queries.InsertPlayer(ctx, db.InsertPlayerParams{
		ID:        id,
		Rating:    constants.DefaultRating,
		CreatedAt: toUnix(at),
		UpdatedAt: toUnix(at),
	})
	if err != nil {
		r.logger.Error().Err(err).Str("player_id", id).Msg("failed to register player")
		return false, domain.NewStorageError("register player", err)
	}
	if n > 0 {
		r.logger.Debug().Str("player_id", id).Msg("player registered")
	}
	return n > 0, nil
}

func (r *PlayerRepository) SetRating(ctx context.Context, id string, rating int, at time.Time) error {
	n, err := r.queries.UpdatePlayerRating(ctx, db.UpdatePlayerRatingParams{
		Rating:    int64(rating),
		UpdatedAt: toUnix(at),
		ID:        id,
	})
	if err != nil {
		return domain.NewStorageError("set rating", err)
	}
	if n == 0 {
		return domain.ErrUnknownPlayer
	}
	return nil
}

// RaisePeak never lowers a stored peak.
func (r *PlayerRepository) RaisePeak(ctx context.Context, id string, rating int) error {
	if err := r.queries.RaisePeakRating(ctx, db.RaisePeakRatingParams{Rating: int64(rating), ID: id}); err != nil {
		return domain.NewStorageError("raise peak rating", err)
	}
	return nil
}

func (r *PlayerRepository) SetActive(ctx context.Context, id string, active bool, at time.Time) error {
	n, err := r.queries.SetPlayerActive(ctx, db.SetPlayerActiveParams{
		Active:    active,
		UpdatedAt: toUnix(at),
		ID:        id,
	})
	if err != nil {
		return domain.NewStorageError("set active", err)
	}
	if n == 0 {
		return domain.ErrUnknownPlayer
	}
	return nil
}

func (r *PlayerRepository) ResetAll(ctx context.Context, at time.Time) (int, error) {
	n, err := r.queries.ResetAllRatings(ctx, constants.DefaultRating, toUnix(at))
	if err != nil {
		return 0, domain.NewStorageError("reset ratings", err)
	}
	return int(n), nil
}

// ListByRating returns every player, active or not, in ranking order.
func (r *PlayerRepository) ListByRating(ctx context.Context) ([]domain.Player, error) {
	players, err := r.queries.ListPlayersByRating(ctx)
	if err != nil {
		return nil, domain.NewStorageError("list players", err)
	}
	return toDomainPlayers(players), nil
}

func (r *PlayerRepository) ListInactive(ctx context.Context) ([]domain.Player, error) {
	players, err := r.queries.ListInactivePlayers(ctx)
	if err != nil {
		return nil, domain.NewStorageError("list inactive players", err)
	}
	return toDomainPlayers(players), nil
}

func (r *PlayerRepository) ListActive(ctx context.Context) ([]domain.Player, error) {
	players, err := r.queries.ListActivePlayersByRating(ctx)
	if err != nil {
		return nil, domain.NewStorageError("list active players", err)
	}
	return toDomainPlayers(players), nil
}

func (r *PlayerRepository) ListActiveSince(ctx context.Context, since time.Time) ([]domain.Player, error) {
	players, err := r.queries.ListActivePlayersSince(ctx, toUnix(since))
	if err != nil {
		return nil, domain.NewStorageError("list players since", err)
	}
	return toDomainPlayers(players), nil
}

func (r *PlayerRepository) ListActiveSinceMatch(ctx context.Context, matchID int64) ([]domain.Player, error) {
	players, err := r.queries.ListActivePlayersSinceMatch(ctx, matchID)
	if err != nil {
		return nil, domain.NewStorageError("list players since match", err)
	}
	return toDomainPlayers(players), nil
}

func toDomainPlayer(p db.Player) *domain.Player {
	player := &domain.Player{
		ID:        p.ID,
		Rating:    int(p.Rating),
		Active:    p.Active,
		CreatedAt: fromUnix(p.CreatedAt),
		UpdatedAt: fromUnix(p.UpdatedAt),
	}
	if p.PeakRating.Valid {
		peak := int(p.PeakRating.Int64)
		player.PeakRating = &peak
	}
	return player
}

func toDomainPlayers(players []db.Player) []domain.Player {
	result := make([]domain.Player, len(players))
	for i, p := range players {
		result[i] = *toDomainPlayer(p)
	}
	return result
}

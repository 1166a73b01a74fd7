package service

import (
	"context"
	"elo-ladder/internal/constants"
	"elo-ladder/internal/domain"
	"elo-ladder/internal/repository"
	"fmt"

	"github.com/rs/zerolog"
)

type PlayerService struct {
	playerRepo  *repository.PlayerRepository
	rankingRepo *repository.RankingRepository
	clock       Clock
	logger      zerolog.Logger
}

func NewPlayerService(playerRepo *repository.PlayerRepository, rankingRepo *repository.RankingRepository, clock Clock, logger zerolog.Logger) *PlayerService {
	return &PlayerService{playerRepo: playerRepo, rankingRepo: rankingRepo, clock: clock, logger: logger}
}

func (s *PlayerService) GetPlayer(ctx context.Context, id string) (*domain.Player, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	return s.playerRepo.Get(ctx, id)
}

// RegisterPlayer creates the player at the default rating if it does not
// exist yet. The bool reports whether a row was created.
func (s *PlayerService) RegisterPlayer(ctx context.Context, id string) (*domain.Player, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	if id == "" {
		return nil, false, fmt.Errorf("%w: player id is empty", domain.ErrInvalidMatch)
	}

	created, err := s.playerRepo.Register(ctx, id, s.clock())
	if err != nil {
		return nil, false, err
	}

	player, err := s.playerRepo.Get(ctx, id)
	if err != nil {
		return nil, false, err
	}

	if created {
		s.logger.Info().Str("player_id", id).Int("rating", player.Rating).Msg("player registered")
	}
	return player, created, nil
}

// SetRating overwrites a rating by hand. Peak rating and snapshots stay
// untouched.
func (s *PlayerService) SetRating(ctx context.Context, id string, rating int) (*domain.Player, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	if err := s.playerRepo.SetRating(ctx, id, rating, s.clock()); err != nil {
		return nil, err
	}

	s.logger.Info().Str("player_id", id).Int("rating", rating).Msg("rating set manually")
	return s.playerRepo.Get(ctx, id)
}

func (s *PlayerService) SetActive(ctx context.Context, id string, active bool) (*domain.Player, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	if err := s.playerRepo.SetActive(ctx, id, active, s.clock()); err != nil {
		return nil, err
	}

	s.logger.Info().Str("player_id", id).Bool("active", active).Msg("player activity changed")
	return s.playerRepo.Get(ctx, id)
}

func (s *PlayerService) ListInactive(ctx context.Context) ([]domain.Player, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	return s.playerRepo.ListInactive(ctx)
}

// ResetAllRatings puts every player back to the default rating and returns
// how many rows changed.
func (s *PlayerService) ResetAllRatings(ctx context.Context) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	n, err := s.playerRepo.ResetAll(ctx, s.clock())
	if err != nil {
		return 0, err
	}

	s.logger.Warn().Int("players", n).Int("rating", constants.DefaultRating).Msg("all ratings reset")
	return n, nil
}

// RankHistory returns the player's most recent snapshot ranks, newest first.
func (s *PlayerService) RankHistory(ctx context.Context, id string, limit int) ([]domain.RankingSnapshot, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	if _, err := s.playerRepo.Get(ctx, id); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = constants.DefaultLBLimit
	}
	return s.rankingRepo.GetByPlayer(ctx, id, limit)
}

package service

import (
	"context"
	"database/sql"
	"elo-ladder/internal/constants"
	"elo-ladder/internal/domain"
	"elo-ladder/internal/metrics"
	"elo-ladder/internal/rating"
	"elo-ladder/internal/repository"
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog"
)

// MatchService records and reverses matches. Every mutation runs as one
// ledger transaction.
type MatchService struct {
	ledger       *repository.Ledger
	playerRepo   *repository.PlayerRepository
	matchRepo    *repository.MatchRepository
	rankingRepo  *repository.RankingRepository
	settingsRepo *repository.SettingsRepository
	metrics      *metrics.Metrics
	clock        Clock
	logger       zerolog.Logger
}

func NewMatchService(
	ledger *repository.Ledger,
	playerRepo *repository.PlayerRepository,
	matchRepo *repository.MatchRepository,
	rankingRepo *repository.RankingRepository,
	settingsRepo *repository.SettingsRepository,
	m *metrics.Metrics,
	clock Clock,
	logger zerolog.Logger,
) *MatchService {
	return &MatchService{
		ledger:       ledger,
		playerRepo:   playerRepo,
		matchRepo:    matchRepo,
		rankingRepo:  rankingRepo,
		settingsRepo: settingsRepo,
		metrics:      m,
		clock:        clock,
		logger:       logger,
	}
}

// RecordMatch applies a reported result. playedAt overrides the match
// timestamp when non-nil.
func (s *MatchService) RecordMatch(ctx context.Context, winnerID, loserID string, playedAt *time.Time) (*domain.MatchResult, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	if err := validatePair(winnerID, loserID); err != nil {
		return nil, err
	}

	now := s.clock()
	at := now
	if playedAt != nil {
		at = *playedAt
	}

	var result *domain.MatchResult
	err := s.ledger.RunInTx(ctx, "record match", func(tx *sql.Tx) error {
		res, err := s.apply(ctx, tx, winnerID, loserID, at, constants.SourceManual)
		if err != nil {
			return err
		}
		if _, err := s.appendSnapshot(ctx, tx, now); err != nil {
			return err
		}
		result = res
		return nil
	})
	if err != nil {
		s.logger.Error().Err(err).Str("winner_id", winnerID).Str("loser_id", loserID).Msg("failed to record match")
		return nil, err
	}

	s.metrics.MatchesRecorded.WithLabelValues(constants.SourceManual, strconv.Itoa(result.Match.Multiplier)).Inc()
	s.logger.Info().
		Int64("match_id", result.Match.MatchID).
		Str("winner_id", winnerID).
		Str("loser_id", loserID).
		Int("winner_old", result.WinnerOld).
		Int("winner_new", result.WinnerNew).
		Int("loser_old", result.LoserOld).
		Int("loser_new", result.LoserNew).
		Int("multiplier", result.Match.Multiplier).
		Msg("match recorded")

	return result, nil
}

// apply registers unknown players, computes the new ratings with the
// multiplier read inside tx, and appends the match row. It does not write a
// ranking snapshot.
func (s *MatchService) apply(ctx context.Context, tx *sql.Tx, winnerID, loserID string, at time.Time, source string) (*domain.MatchResult, error) {
	if err := validatePair(winnerID, loserID); err != nil {
		return nil, err
	}

	players := s.playerRepo.WithTx(tx)
	now := s.clock()

	winnerRegistered, err := players.Register(ctx, winnerID, now)
	if err != nil {
		return nil, err
	}
	loserRegistered, err := players.Register(ctx, loserID, now)
	if err != nil {
		return nil, err
	}

	winner, err := players.Get(ctx, winnerID)
	if err != nil {
		return nil, err
	}
	loser, err := players.Get(ctx, loserID)
	if err != nil {
		return nil, err
	}

	multiplier, err := s.settingsRepo.WithTx(tx).Multiplier(ctx)
	if err != nil {
		return nil, err
	}

	out, err := rating.Compute(winnerID, loserID, winner.Rating, loser.Rating, multiplier)
	if err != nil {
		return nil, err
	}

	if err := players.SetRating(ctx, winnerID, out.WinnerAfter, now); err != nil {
		return nil, err
	}
	if err := players.SetRating(ctx, loserID, out.LoserAfter, now); err != nil {
		return nil, err
	}
	if err := players.RaisePeak(ctx, winnerID, out.WinnerAfter); err != nil {
		return nil, err
	}
	if err := players.RaisePeak(ctx, loserID, out.LoserAfter); err != nil {
		return nil, err
	}

	match := &domain.Match{
		Timestamp:         at.UTC().Truncate(time.Second),
		WinnerID:          winnerID,
		LoserID:           loserID,
		RatingDelta:       out.Delta,
		WinnerRatingAfter: out.WinnerAfter,
		LoserRatingAfter:  out.LoserAfter,
		Multiplier:        out.Multiplier,
		Source:            source,
	}
	if err := s.matchRepo.WithTx(tx).Append(ctx, match); err != nil {
		return nil, err
	}

	return &domain.MatchResult{
		Match:             *match,
		WinnerOld:         out.WinnerBefore,
		WinnerNew:         out.WinnerAfter,
		LoserOld:          out.LoserBefore,
		LoserNew:          out.LoserAfter,
		WinnerRegistered:  winnerRegistered,
		LoserRegistered:   loserRegistered,
		MultiplierApplied: multiplier,
	}, nil
}

// appendSnapshot ranks every player, inactive included, by rating with ties
// broken by ascending player id.
func (s *MatchService) appendSnapshot(ctx context.Context, tx *sql.Tx, at time.Time) (string, error) {
	players, err := s.playerRepo.WithTx(tx).ListByRating(ctx)
	if err != nil {
		return "", err
	}
	return s.rankingRepo.WithTx(tx).AppendSnapshot(ctx, players, at)
}

// UndoMatch reverses a match against the players' current ratings and
// deletes it. Peak ratings and earlier snapshots are left as they are.
func (s *MatchService) UndoMatch(ctx context.Context, matchID int64) (*domain.UndoResult, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	var result *domain.UndoResult
	err := s.ledger.RunInTx(ctx, "undo match", func(tx *sql.Tx) error {
		matches := s.matchRepo.WithTx(tx)
		players := s.playerRepo.WithTx(tx)

		match, err := matches.Get(ctx, matchID)
		if err != nil {
			return err
		}

		winner, err := players.Get(ctx, match.WinnerID)
		if err != nil {
			return fmt.Errorf("winner of match %d: %w", matchID, err)
		}
		loser, err := players.Get(ctx, match.LoserID)
		if err != nil {
			return fmt.Errorf("loser of match %d: %w", matchID, err)
		}

		now := s.clock()
		winnerRating, loserRating := rating.Revert(*match, winner.Rating, loser.Rating)
		if err := players.SetRating(ctx, match.WinnerID, winnerRating, now); err != nil {
			return err
		}
		if err := players.SetRating(ctx, match.LoserID, loserRating, now); err != nil {
			return err
		}
		if _, err := matches.Reverse(ctx, match, now); err != nil {
			return err
		}

		result = &domain.UndoResult{
			Match:        *match,
			WinnerRating: winnerRating,
			LoserRating:  loserRating,
		}
		return nil
	})
	if err != nil {
		s.logger.Warn().Err(err).Int64("match_id", matchID).Msg("failed to undo match")
		return nil, err
	}

	s.metrics.MatchesUndone.Inc()
	s.logger.Info().
		Int64("match_id", matchID).
		Str("winner_id", result.Match.WinnerID).
		Int("winner_rating", result.WinnerRating).
		Str("loser_id", result.Match.LoserID).
		Int("loser_rating", result.LoserRating).
		Msg("match reversed")

	return result, nil
}

func (s *MatchService) GetMatch(ctx context.Context, matchID int64) (*domain.Match, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	return s.matchRepo.Get(ctx, matchID)
}

func (s *MatchService) ListReversals(ctx context.Context, limit int) ([]domain.LedgerReversal, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	if limit <= 0 {
		limit = constants.DefaultLBLimit
	}
	return s.matchRepo.ListReversals(ctx, limit)
}

// ToggleMultiplier flips the global multiplier and returns the new state.
func (s *MatchService) ToggleMultiplier(ctx context.Context) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	var enabled bool
	err := s.ledger.RunInTx(ctx, "toggle multiplier", func(tx *sql.Tx) error {
		settings := s.settingsRepo.WithTx(tx)
		current, err := settings.Multiplier(ctx)
		if err != nil {
			return err
		}
		enabled = !current
		return settings.SetMultiplier(ctx, enabled)
	})
	if err != nil {
		return false, err
	}

	s.logger.Info().Bool("enabled", enabled).Msg("multiplier toggled")
	return enabled, nil
}

func (s *MatchService) Multiplier(ctx context.Context) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	return s.settingsRepo.Multiplier(ctx)
}

func validatePair(winnerID, loserID string) error {
	if winnerID == "" || loserID == "" {
		return fmt.Errorf("%w: player id is empty", domain.ErrInvalidMatch)
	}
	if winnerID == loserID {
		return domain.ErrInvalidMatch
	}
	return nil
}

package service

import (
	"context"
	"elo-ladder/internal/constants"
	"elo-ladder/internal/domain"
	"elo-ladder/internal/metrics"
	"elo-ladder/internal/repository"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// streakBadges is ordered from the highest threshold down.
var streakBadges = []struct {
	wins  int
	badge domain.StreakBadge
}{
	{20, domain.BadgeGoat},
	{14, domain.BadgeMage},
	{10, domain.BadgeCrown},
	{9, domain.BadgeTrophy},
	{8, domain.BadgeRocket},
	{7, domain.BadgeMetal},
	{6, domain.BadgeBoom},
	{3, domain.BadgeFire},
}

// LeaderboardService derives rankings from the ledger. It never writes.
type LeaderboardService struct {
	playerRepo *repository.PlayerRepository
	matchRepo  *repository.MatchRepository
	metrics    *metrics.Metrics
	clock      Clock
	logger     zerolog.Logger
}

func NewLeaderboardService(
	playerRepo *repository.PlayerRepository,
	matchRepo *repository.MatchRepository,
	m *metrics.Metrics,
	clock Clock,
	logger zerolog.Logger,
) *LeaderboardService {
	return &LeaderboardService{
		playerRepo: playerRepo,
		matchRepo:  matchRepo,
		metrics:    m,
		clock:      clock,
		logger:     logger,
	}
}

func (s *LeaderboardService) GetLeaderboard(ctx context.Context, filter domain.LeaderboardFilter, limit int) (*domain.Leaderboard, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	start := time.Now()
	defer func() {
		s.metrics.LeaderboardTime.Observe(time.Since(start).Seconds())
	}()

	if limit <= 0 {
		limit = constants.DefaultLBLimit
	}
	if limit > constants.MaxLBLimit {
		limit = constants.MaxLBLimit
	}

	now := s.clock()
	cutoff := now.Add(-constants.MovementLookback).Truncate(time.Second)

	var (
		standings []domain.Player
		lastMatch map[string]time.Time
		window    map[string][]repository.RatingPoint
		results   []domain.Match
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		standings, err = s.standings(gctx, filter, now)
		return err
	})

	g.Go(func() error {
		var err error
		lastMatch, err = s.matchRepo.LastMatchTimes(gctx)
		return err
	})

	g.Go(func() error {
		var err error
		window, err = s.matchRepo.RatingsSince(gctx, cutoff)
		return err
	})

	g.Go(func() error {
		var err error
		results, err = s.matchRepo.ResultsNewestFirst(gctx)
		return err
	})

	if err := g.Wait(); err != nil {
		s.logger.Error().Err(err).Str("mode", string(filter.Mode)).Msg("failed to build leaderboard")
		return nil, err
	}

	oldRanks := previousRanks(standings, window, cutoff)
	streaks := winStreaks(results)

	n := min(limit, len(standings))
	entries := make([]domain.LeaderboardEntry, n)
	for i := 0; i < n; i++ {
		p := standings[i]
		rank := i + 1
		streak := streaks[p.ID]

		entries[i] = domain.LeaderboardEntry{
			Rank:     rank,
			PlayerID: p.ID,
			Rating:   p.Rating,
			Movement: movement(rank, oldRanks[p.ID], lastMatch[p.ID], now),
			Streak:   streak,
			Badge:    StreakBadge(streak),
		}
	}

	s.logger.Debug().
		Str("mode", string(filter.Mode)).
		Int("standings", len(standings)).
		Int("entries", len(entries)).
		Msg("leaderboard built")

	return &domain.Leaderboard{
		Filter:      filter,
		GeneratedAt: now,
		Entries:     entries,
	}, nil
}

// standings returns the active players the filter admits, rating desc with
// ties broken by ascending id.
func (s *LeaderboardService) standings(ctx context.Context, filter domain.LeaderboardFilter, now time.Time) ([]domain.Player, error) {
	switch filter.Mode {
	case domain.FilterAll, "":
		return s.playerRepo.ListActive(ctx)
	case domain.FilterActivityWindow:
		if filter.Days <= 0 {
			return s.playerRepo.ListActive(ctx)
		}
		since := now.Add(-time.Duration(filter.Days) * 24 * time.Hour)
		return s.playerRepo.ListActiveSince(ctx, since)
	case domain.FilterSinceMatchID:
		if filter.MatchID < 0 {
			return nil, fmt.Errorf("%w: negative match id", domain.ErrInvalidFilter)
		}
		return s.playerRepo.ListActiveSinceMatch(ctx, filter.MatchID)
	default:
		return nil, fmt.Errorf("%w: unknown mode %q", domain.ErrInvalidFilter, filter.Mode)
	}
}

// previousRanks ranks the same players by their rating as of the cutoff.
func previousRanks(standings []domain.Player, window map[string][]repository.RatingPoint, cutoff time.Time) map[string]int {
	type past struct {
		id     string
		rating int
	}

	olds := make([]past, len(standings))
	for i, p := range standings {
		olds[i] = past{id: p.ID, rating: ratingAsOf(p.Rating, window[p.ID], cutoff)}
	}

	sort.SliceStable(olds, func(i, j int) bool {
		if olds[i].rating != olds[j].rating {
			return olds[i].rating > olds[j].rating
		}
		return olds[i].id < olds[j].id
	})

	ranks := make(map[string]int, len(olds))
	for i, o := range olds {
		ranks[o.id] = i + 1
	}
	return ranks
}

// ratingAsOf picks the rating after the first match strictly after cutoff,
// then the oldest match in the window, then the current rating.
func ratingAsOf(current int, points []repository.RatingPoint, cutoff time.Time) int {
	for _, pt := range points {
		if pt.Timestamp.After(cutoff) {
			return pt.RatingAfter
		}
	}
	if len(points) > 0 {
		return points[0].RatingAfter
	}
	return current
}

func movement(rank, oldRank int, lastMatch, now time.Time) domain.Movement {
	if oldRank == 0 || lastMatch.IsZero() || now.Sub(lastMatch) > constants.MovementStaleAge {
		return domain.MovementNone
	}
	switch {
	case oldRank > rank:
		return domain.MovementUp
	case oldRank < rank:
		return domain.MovementDown
	default:
		return domain.MovementNone
	}
}

// winStreaks counts consecutive wins per player from newest results, stopping
// at each player's most recent loss.
func winStreaks(newestFirst []domain.Match) map[string]int {
	streaks := make(map[string]int)
	broken := make(map[string]bool)
	for _, m := range newestFirst {
		if !broken[m.WinnerID] {
			streaks[m.WinnerID]++
		}
		broken[m.LoserID] = true
	}
	return streaks
}

// StreakBadge returns the badge for the highest threshold the streak reaches.
func StreakBadge(streak int) domain.StreakBadge {
	for _, b := range streakBadges {
		if streak >= b.wins {
			return b.badge
		}
	}
	return domain.BadgeNone
}

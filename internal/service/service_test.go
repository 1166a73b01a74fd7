package service

import (
	"context"
	"database/sql"
	"elo-ladder/internal/database"
	"elo-ladder/internal/db"
	"elo-ladder/internal/metrics"
	"elo-ladder/internal/repository"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

var baseTime = time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type testEnv struct {
	sqlDB       *sql.DB
	clock       *fakeClock
	players     *repository.PlayerRepository
	rankings    *repository.RankingRepository
	matches     *MatchService
	playerSvc   *PlayerService
	importer    *ImportService
	leaderboard *LeaderboardService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	logger := zerolog.Nop()
	sqlDB, err := database.Open(filepath.Join(t.TempDir(), "ledger.db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	q := db.New(sqlDB)
	clock := &fakeClock{now: baseTime}
	m := metrics.New(metrics.NewRegistry())

	ledger := repository.NewLedger(sqlDB, logger)
	playerRepo := repository.NewPlayerRepository(sqlDB, q, logger)
	matchRepo := repository.NewMatchRepository(sqlDB, q, logger)
	rankingRepo := repository.NewRankingRepository(sqlDB, q, logger)
	importRepo := repository.NewImportRecordRepository(sqlDB, q, logger)
	settingsRepo := repository.NewSettingsRepository(sqlDB, q, logger)

	matches := NewMatchService(ledger, playerRepo, matchRepo, rankingRepo, settingsRepo, m, clock.Now, logger)

	return &testEnv{
		sqlDB:       sqlDB,
		clock:       clock,
		players:     playerRepo,
		rankings:    rankingRepo,
		matches:     matches,
		playerSvc:   NewPlayerService(playerRepo, rankingRepo, clock.Now, logger),
		importer:    NewImportService(ledger, importRepo, matches, m, clock.Now, logger),
		leaderboard: NewLeaderboardService(playerRepo, matchRepo, m, clock.Now, logger),
	}
}

func (e *testEnv) record(t *testing.T, winner, loser string) {
	t.Helper()
	_, err := e.matches.RecordMatch(context.Background(), winner, loser, nil)
	require.NoError(t, err)
}

func (e *testEnv) rating(t *testing.T, id string) int {
	t.Helper()
	p, err := e.players.Get(context.Background(), id)
	require.NoError(t, err)
	return p.Rating
}

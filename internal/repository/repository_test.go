package repository

import (
	"context"
	"database/sql"
	"elo-ladder/internal/database"
	"elo-ladder/internal/db"
	"elo-ladder/internal/domain"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type repos struct {
	ledger   *Ledger
	players  *PlayerRepository
	matches  *MatchRepository
	rankings *RankingRepository
	imports  *ImportRecordRepository
	settings *SettingsRepository
}

func newRepos(t *testing.T) repos {
	t.Helper()

	sqlDB, err := database.Open(filepath.Join(t.TempDir(), "ledger.db"), zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	q := db.New(sqlDB)
	logger := zerolog.Nop()
	return repos{
		ledger:   NewLedger(sqlDB, logger),
		players:  NewPlayerRepository(sqlDB, q, logger),
		matches:  NewMatchRepository(sqlDB, q, logger),
		rankings: NewRankingRepository(sqlDB, q, logger),
		imports:  NewImportRecordRepository(sqlDB, q, logger),
		settings: NewSettingsRepository(sqlDB, q, logger),
	}
}

var t0 = time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)

func TestPlayerRepository_RegisterAndGet(t *testing.T) {
	r := newRepos(t)
	ctx := context.Background()

	_, err := r.players.Get(ctx, "alice")
	assert.ErrorIs(t, err, domain.ErrUnknownPlayer)

	created, err := r.players.Register(ctx, "alice", t0)
	require.NoError(t, err)
	assert.True(t, created)

	created, err = r.players.Register(ctx, "alice", t0.Add(time.Hour))
	require.NoError(t, err)
	assert.False(t, created)

	p, err := r.players.Get(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, 1200, p.Rating)
	assert.Nil(t, p.PeakRating)
	assert.True(t, p.Active)
	assert.Equal(t, t0, p.CreatedAt)
}

func TestPlayerRepository_SetRatingUnknown(t *testing.T) {
	r := newRepos(t)

	err := r.players.SetRating(context.Background(), "ghost", 1500, t0)
	assert.ErrorIs(t, err, domain.ErrUnknownPlayer)
}

func TestPlayerRepository_RaisePeakNeverLowers(t *testing.T) {
	r := newRepos(t)
	ctx := context.Background()

	_, err := r.players.Register(ctx, "alice", t0)
	require.NoError(t, err)

	require.NoError(t, r.players.RaisePeak(ctx, "alice", 1250))
	require.NoError(t, r.players.RaisePeak(ctx, "alice", 1210))

	p, err := r.players.Get(ctx, "alice")
	require.NoError(t, err)
	require.NotNil(t, p.PeakRating)
	assert.Equal(t, 1250, *p.PeakRating)
}

func TestPlayerRepository_OrderingAndActivity(t *testing.T) {
	r := newRepos(t)
	ctx := context.Background()

	for id, rating := range map[string]int{"carol": 1300, "bob": 1250, "alice": 1250, "dave": 1100} {
		_, err := r.players.Register(ctx, id, t0)
		require.NoError(t, err)
		require.NoError(t, r.players.SetRating(ctx, id, rating, t0))
	}
	require.NoError(t, r.players.SetActive(ctx, "dave", false, t0))

	all, err := r.players.ListByRating(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"carol", "alice", "bob", "dave"}, ids(all))

	active, err := r.players.ListActive(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"carol", "alice", "bob"}, ids(active))

	inactive, err := r.players.ListInactive(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"dave"}, ids(inactive))

	n, err := r.players.ResetAll(ctx, t0)
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	p, err := r.players.Get(ctx, "carol")
	require.NoError(t, err)
	assert.Equal(t, 1200, p.Rating)
}

func TestMatchRepository_AppendGetReverse(t *testing.T) {
	r := newRepos(t)
	ctx := context.Background()

	for _, id := range []string{"alice", "bob"} {
		_, err := r.players.Register(ctx, id, t0)
		require.NoError(t, err)
	}

	m := &domain.Match{
		Timestamp:         t0,
		WinnerID:          "alice",
		LoserID:           "bob",
		RatingDelta:       20,
		WinnerRatingAfter: 1220,
		LoserRatingAfter:  1180,
		Multiplier:        1,
		Source:            "manual",
	}
	require.NoError(t, r.matches.Append(ctx, m))
	assert.NotZero(t, m.MatchID)

	got, err := r.matches.Get(ctx, m.MatchID)
	require.NoError(t, err)
	assert.Equal(t, *m, *got)
	assert.Equal(t, 1200, got.WinnerRatingBefore())
	assert.Equal(t, 1200, got.LoserRatingBefore())

	var reversal *domain.LedgerReversal
	err = r.ledger.RunInTx(ctx, "reverse", func(tx *sql.Tx) error {
		var err error
		reversal, err = r.matches.WithTx(tx).Reverse(ctx, got, t0.Add(time.Minute))
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, m.MatchID, reversal.MatchID)

	_, err = r.matches.Get(ctx, m.MatchID)
	assert.ErrorIs(t, err, domain.ErrMatchNotFound)

	reversals, err := r.matches.ListReversals(ctx, 10)
	require.NoError(t, err)
	require.Len(t, reversals, 1)
	assert.Equal(t, 20, reversals[0].RatingDelta)
}

func TestMatchRepository_SelfPlayRejectedBySchema(t *testing.T) {
	r := newRepos(t)
	ctx := context.Background()

	_, err := r.players.Register(ctx, "alice", t0)
	require.NoError(t, err)

	err = r.matches.Append(ctx, &domain.Match{
		Timestamp: t0, WinnerID: "alice", LoserID: "alice", Multiplier: 1, Source: "manual",
	})
	var storageErr *domain.StorageError
	assert.ErrorAs(t, err, &storageErr)
}

func TestLedger_RollbackLeavesNothing(t *testing.T) {
	r := newRepos(t)
	ctx := context.Background()

	err := r.ledger.RunInTx(ctx, "failing", func(tx *sql.Tx) error {
		if _, err := r.players.WithTx(tx).Register(ctx, "alice", t0); err != nil {
			return err
		}
		return domain.ErrInvalidMatch
	})
	assert.ErrorIs(t, err, domain.ErrInvalidMatch)

	_, err = r.players.Get(ctx, "alice")
	assert.ErrorIs(t, err, domain.ErrUnknownPlayer)
}

func TestImportRecordRepository_MarkTwice(t *testing.T) {
	r := newRepos(t)
	ctx := context.Background()

	exists, err := r.imports.Exists(ctx, "m-1")
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, r.imports.Mark(ctx, "m-1", "cup", t0))

	exists, err = r.imports.Exists(ctx, "m-1")
	require.NoError(t, err)
	assert.True(t, exists)

	err = r.imports.Mark(ctx, "m-1", "cup", t0)
	assert.ErrorIs(t, err, domain.ErrDuplicateExternalMatch)
}

func TestSettingsRepository_Multiplier(t *testing.T) {
	r := newRepos(t)
	ctx := context.Background()

	on, err := r.settings.Multiplier(ctx)
	require.NoError(t, err)
	assert.False(t, on)

	require.NoError(t, r.settings.SetMultiplier(ctx, true))
	on, err = r.settings.Multiplier(ctx)
	require.NoError(t, err)
	assert.True(t, on)

	require.NoError(t, r.settings.SetMultiplier(ctx, false))
	on, err = r.settings.Multiplier(ctx)
	require.NoError(t, err)
	assert.False(t, on)
}

func TestRankingRepository_Snapshots(t *testing.T) {
	r := newRepos(t)
	ctx := context.Background()

	players := []domain.Player{{ID: "carol"}, {ID: "alice"}, {ID: "bob"}}
	first, err := r.rankings.AppendSnapshot(ctx, players, t0)
	require.NoError(t, err)
	second, err := r.rankings.AppendSnapshot(ctx, []domain.Player{{ID: "alice"}, {ID: "carol"}, {ID: "bob"}}, t0.Add(time.Hour))
	require.NoError(t, err)
	assert.NotEqual(t, first, second)

	count, err := r.rankings.CountBatches(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	latest, err := r.rankings.Latest(ctx)
	require.NoError(t, err)
	require.Len(t, latest, 3)
	assert.Equal(t, "alice", latest[0].PlayerID)
	assert.Equal(t, second, latest[0].BatchID)

	history, err := r.rankings.GetByPlayer(ctx, "carol", 10)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, 2, history[0].Rank)
	assert.Equal(t, 1, history[1].Rank)
}

func ids(players []domain.Player) []string {
	result := make([]string, len(players))
	for i, p := range players {
		result[i] = p.ID
	}
	return result
}

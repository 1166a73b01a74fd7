package service

import (
	"context"
	"elo-ladder/internal/domain"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cupBatch() domain.ImportBatch {
	completed := baseTime.Add(-time.Hour)
	return domain.ImportBatch{
		SourceID: "spring-cup",
		Identities: map[string]string{
			"p1": "alice",
			"p2": "bob",
			"p3": "carol",
		},
		Matches: []domain.MatchDescriptor{
			{ExternalMatchID: "m1", ParticipantA: "p1", ParticipantB: "p2", WinnerID: "p1", State: "complete", CompletedAt: &completed, NameA: "Alice", NameB: "Bob"},
			{ExternalMatchID: "m2", ParticipantA: "p2", ParticipantB: "p3", Scores: "3-1,1-2", State: "complete", NameA: "Bob", NameB: "Carol"},
			{ExternalMatchID: "m3", ParticipantA: "p1", ParticipantB: "p3", Scores: "2-2", State: "complete"},
			{ExternalMatchID: "m4", ParticipantA: "p1", ParticipantB: "p4", WinnerID: "p1", State: "complete"},
			{ExternalMatchID: "m5", ParticipantA: "p1", State: "complete"},
			{ExternalMatchID: "m6", ParticipantA: "p2", ParticipantB: "p3", State: "open"},
			{ExternalMatchID: "m1", ParticipantA: "p1", ParticipantB: "p2", WinnerID: "p1", State: "complete"},
		},
	}
}

func TestImportBatch_Classifies(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	summary, err := env.importer.ImportBatch(ctx, cupBatch())
	require.NoError(t, err)

	want := &domain.ImportSummary{
		SourceID:                "spring-cup",
		Processed:               2,
		NewlyRegistered:         3,
		SkippedUnfinished:       3,
		SkippedUnmapped:         1,
		SkippedAlreadyProcessed: 1,
		Lines: []string{
			"Alice - Bob: +20 / -20  (1200->1220 | 1200->1180)",
			"Bob - Carol: +21 / -21  (1180->1201 | 1200->1179)",
		},
	}
	if diff := cmp.Diff(want, summary); diff != "" {
		t.Errorf("summary mismatch (-want +got):\n%s", diff)
	}

	m1, err := env.matches.GetMatch(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, baseTime.Add(-time.Hour), m1.Timestamp)
	assert.Equal(t, "import", m1.Source)

	m2, err := env.matches.GetMatch(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, baseTime, m2.Timestamp)

	batches, err := env.rankings.CountBatches(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, batches)
}

func TestImportBatch_Idempotent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.importer.ImportBatch(ctx, cupBatch())
	require.NoError(t, err)
	ratings := map[string]int{
		"alice": env.rating(t, "alice"),
		"bob":   env.rating(t, "bob"),
		"carol": env.rating(t, "carol"),
	}

	env.clock.Advance(time.Hour)
	again, err := env.importer.ImportBatch(ctx, cupBatch())
	require.NoError(t, err)

	assert.Equal(t, 0, again.Processed)
	assert.Equal(t, 0, again.NewlyRegistered)
	assert.Equal(t, 3, again.SkippedAlreadyProcessed)
	assert.Equal(t, 3, again.SkippedUnfinished)
	assert.Equal(t, 1, again.SkippedUnmapped)
	assert.Empty(t, again.Lines)

	for id, rating := range ratings {
		assert.Equal(t, rating, env.rating(t, id), id)
	}

	batches, err := env.rankings.CountBatches(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, batches)
}

func TestImportBatch_TieNeverRecorded(t *testing.T) {
	env := newTestEnv(t)

	summary, err := env.importer.ImportBatch(context.Background(), domain.ImportBatch{
		SourceID:   "cup",
		Identities: map[string]string{"a": "alice", "b": "bob"},
		Matches: []domain.MatchDescriptor{
			{ExternalMatchID: "x", ParticipantA: "a", ParticipantB: "b", Scores: "2-1,1-2", State: "complete"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 0, summary.Processed)
	assert.Equal(t, 1, summary.SkippedUnfinished)

	_, err = env.players.Get(context.Background(), "alice")
	assert.ErrorIs(t, err, domain.ErrUnknownPlayer)
}

func TestImportBatch_SameIdentityOnBothSides(t *testing.T) {
	env := newTestEnv(t)

	summary, err := env.importer.ImportBatch(context.Background(), domain.ImportBatch{
		SourceID:   "cup",
		Identities: map[string]string{"a": "alice", "b": "alice"},
		Matches: []domain.MatchDescriptor{
			{ExternalMatchID: "x", ParticipantA: "a", ParticipantB: "b", WinnerID: "a", State: "complete"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, summary.SkippedUnmapped)
}

func TestImportBatch_StorageFailureReturnsPartialSummary(t *testing.T) {
	env := newTestEnv(t)
	require.NoError(t, env.sqlDB.Close())

	summary, err := env.importer.ImportBatch(context.Background(), domain.ImportBatch{
		SourceID:   "cup",
		Identities: map[string]string{"a": "alice", "b": "bob"},
		Matches: []domain.MatchDescriptor{
			{ExternalMatchID: "open", ParticipantA: "a", ParticipantB: "b", State: "open"},
			{ExternalMatchID: "done", ParticipantA: "a", ParticipantB: "b", WinnerID: "a", State: "complete"},
		},
	})
	var storageErr *domain.StorageError
	require.ErrorAs(t, err, &storageErr)
	require.NotNil(t, summary)
	assert.Equal(t, 1, summary.SkippedUnfinished)
	assert.Equal(t, 0, summary.Processed)
}

func TestResolveWinner(t *testing.T) {
	tests := []struct {
		name   string
		d      domain.MatchDescriptor
		aWon   bool
		winner bool
	}{
		{"explicit A", domain.MatchDescriptor{ParticipantA: "1", ParticipantB: "2", WinnerID: "1", Scores: "0-3"}, true, true},
		{"explicit B", domain.MatchDescriptor{ParticipantA: "1", ParticipantB: "2", WinnerID: "2"}, false, true},
		{"foreign winner", domain.MatchDescriptor{ParticipantA: "1", ParticipantB: "2", WinnerID: "9"}, false, false},
		{"scores favour A", domain.MatchDescriptor{ParticipantA: "1", ParticipantB: "2", Scores: "3-1, 2-2"}, true, true},
		{"scores favour B", domain.MatchDescriptor{ParticipantA: "1", ParticipantB: "2", Scores: "0-2"}, false, true},
		{"tie", domain.MatchDescriptor{ParticipantA: "1", ParticipantB: "2", Scores: "1-1"}, false, false},
		{"malformed", domain.MatchDescriptor{ParticipantA: "1", ParticipantB: "2", Scores: "3:1"}, false, false},
		{"non numeric", domain.MatchDescriptor{ParticipantA: "1", ParticipantB: "2", Scores: "a-b"}, false, false},
		{"empty", domain.MatchDescriptor{ParticipantA: "1", ParticipantB: "2"}, false, false},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			aWon, ok := resolveWinner(test.d)
			assert.Equal(t, test.winner, ok)
			if ok {
				assert.Equal(t, test.aWon, aWon)
			}
		})
	}
}

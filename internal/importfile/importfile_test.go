package importfile

import (
	"elo-ladder/internal/domain"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const yamlBatch = `sourceId: league-week-3
identities:
  p1: alice
  p2: bob
matches:
  - externalMatchId: w3-1
    participantA: p1
    participantB: p2
    winnerId: p1
    state: complete
    completedAt: 2026-10-01T18:30:00Z
  - externalMatchId: w3-2
    participantA: p2
    participantB: p1
    scores: 2-1,2-0
`

const jsonBatch = `{
  "sourceId": "league-week-3",
  "identities": {"p1": "alice", "p2": "bob"},
  "matches": [
    {"externalMatchId": "w3-1", "participantA": "p1", "participantB": "p2",
     "winnerId": "p1", "state": "complete", "completedAt": "2026-10-01T18:30:00Z"},
    {"externalMatchId": "w3-2", "participantA": "p2", "participantB": "p1", "scores": "2-1,2-0"}
  ]
}`

func expectedBatch() *domain.ImportBatch {
	completed := time.Date(2026, 10, 1, 18, 30, 0, 0, time.UTC)
	return &domain.ImportBatch{
		SourceID:   "league-week-3",
		Identities: map[string]string{"p1": "alice", "p2": "bob"},
		Matches: []domain.MatchDescriptor{
			{ExternalMatchID: "w3-1", ParticipantA: "p1", ParticipantB: "p2", WinnerID: "p1", State: "complete", CompletedAt: &completed},
			{ExternalMatchID: "w3-2", ParticipantA: "p2", ParticipantB: "p1", Scores: "2-1,2-0"},
		},
	}
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
	}{
		{"yaml", "batch.yaml", yamlBatch},
		{"yml", "batch.yml", yamlBatch},
		{"json", "batch.json", jsonBatch},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got, err := Load(writeFile(t, test.file, test.content))
			require.NoError(t, err)
			if diff := cmp.Diff(expectedBatch(), got); diff != "" {
				t.Errorf("batch mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestLoad_Rejects(t *testing.T) {
	_, err := Load(writeFile(t, "batch.csv", "a,b"))
	assert.ErrorContains(t, err, "unsupported")

	_, err = Load(writeFile(t, "batch.json", `{"matches": []}`))
	assert.ErrorContains(t, err, "sourceId")

	_, err = Load(writeFile(t, "batch.json", `{"sourceId": "x", "tournament": 1}`))
	assert.Error(t, err)

	_, err = Load(writeFile(t, "batch.yaml", "sourceId: x\nextra: true\n"))
	assert.Error(t, err)

	_, err = Load(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestDecodeYAML_DefaultsIdentities(t *testing.T) {
	batch, err := DecodeYAML([]byte("sourceId: x\n"))
	require.NoError(t, err)
	assert.NotNil(t, batch.Identities)
	assert.Empty(t, batch.Matches)
}

package api

import (
	"context"
	"elo-ladder/internal/config"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const participantsJSON = `[
  {"participant": {"id": 11, "name": "Alice", "misc": "1001"}},
  {"participant": {"id": 12, "name": "Bob", "misc": null}}
]`

const matchesJSON = `[
  {"match": {"id": 501, "player1_id": 11, "player2_id": 12, "winner_id": 11,
             "scores_csv": "3-1", "completed_at": "2026-09-30T20:00:00-04:00", "state": "complete"}},
  {"match": {"id": 502, "player1_id": 12, "player2_id": null, "winner_id": null,
             "scores_csv": "", "completed_at": null, "state": "pending"}}
]`

func newTestServer(t *testing.T) (*httptest.Server, *[]string) {
	t.Helper()
	var seen []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = append(seen, r.URL.Path)
		if r.URL.Query().Get("api_key") != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/v1/tournaments/spring-cup/participants.json":
			w.Write([]byte(participantsJSON))
		case "/v1/tournaments/spring-cup/matches.json":
			w.Write([]byte(matchesJSON))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(srv.Close)
	return srv, &seen
}

func TestChallongeClient_GetParticipants(t *testing.T) {
	srv, seen := newTestServer(t)
	client := NewChallongeClient(&config.Config{ChallongeAPIToken: "secret", ChallongeBaseURL: srv.URL + "/v1/"})

	participants, err := client.GetParticipants(context.Background(), "spring-cup")
	require.NoError(t, err)
	require.Len(t, participants, 2)
	assert.Equal(t, Participant{ID: 11, Name: "Alice", Misc: "1001"}, participants[0])
	assert.Equal(t, "", participants[1].Misc)
	assert.Equal(t, []string{"/v1/tournaments/spring-cup/participants.json"}, *seen)
}

func TestChallongeClient_GetMatches(t *testing.T) {
	srv, _ := newTestServer(t)
	client := NewChallongeClient(&config.Config{ChallongeAPIToken: "secret", ChallongeBaseURL: srv.URL + "/v1"})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	matches, err := client.GetMatches(ctx, "spring-cup")
	require.NoError(t, err)
	require.Len(t, matches, 2)

	first := matches[0]
	assert.Equal(t, int64(501), first.ID)
	require.NotNil(t, first.WinnerID)
	assert.Equal(t, int64(11), *first.WinnerID)
	require.NotNil(t, first.CompletedAt)
	assert.True(t, first.CompletedAt.Equal(time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)))

	second := matches[1]
	assert.Nil(t, second.Player2ID)
	assert.Nil(t, second.CompletedAt)
	assert.Equal(t, "pending", second.State)
}

func TestChallongeClient_Errors(t *testing.T) {
	srv, _ := newTestServer(t)

	noToken := NewChallongeClient(&config.Config{ChallongeBaseURL: srv.URL + "/v1"})
	_, err := noToken.GetMatches(context.Background(), "spring-cup")
	assert.ErrorIs(t, err, ErrMissingAPIToken)

	wrongToken := NewChallongeClient(&config.Config{ChallongeAPIToken: "nope", ChallongeBaseURL: srv.URL + "/v1"})
	_, err = wrongToken.GetMatches(context.Background(), "spring-cup")
	assert.ErrorContains(t, err, "401")

	client := NewChallongeClient(&config.Config{ChallongeAPIToken: "secret", ChallongeBaseURL: srv.URL + "/v1"})
	_, err = client.GetParticipants(context.Background(), "missing")
	assert.ErrorContains(t, err, "404")
}

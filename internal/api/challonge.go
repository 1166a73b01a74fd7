package api

import (
	"context"
	"elo-ladder/internal/config"
	"elo-ladder/internal/constants"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/valyala/fasthttp"
)

var ErrMissingAPIToken = errors.New("challonge api token is not configured")

// ChallongeClient reads tournaments from the Challonge v1 REST API.
type ChallongeClient struct {
	apiKey  string
	baseURL string
	client  *fasthttp.Client
}

func NewChallongeClient(cfg *config.Config) *ChallongeClient {
	return &ChallongeClient{
		apiKey:  cfg.ChallongeAPIToken,
		baseURL: strings.TrimRight(cfg.ChallongeBaseURL, "/"),
		client: &fasthttp.Client{
			MaxConnsPerHost:     16,
			ReadTimeout:         constants.ExternalAPITimeout,
			WriteTimeout:        constants.ExternalAPITimeout,
			MaxIdleConnDuration: 1 * time.Minute,
		},
	}
}

type Participant struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	// Misc holds the ladder player id when the organiser filled it in.
	Misc string `json:"misc"`
}

type Match struct {
	ID          int64      `json:"id"`
	Player1ID   *int64     `json:"player1_id"`
	Player2ID   *int64     `json:"player2_id"`
	WinnerID    *int64     `json:"winner_id"`
	ScoresCSV   string     `json:"scores_csv"`
	CompletedAt *time.Time `json:"completed_at"`
	State       string     `json:"state"`
}

type participantEnvelope struct {
	Participant Participant `json:"participant"`
}

type matchEnvelope struct {
	Match Match `json:"match"`
}

func (c *ChallongeClient) GetParticipants(ctx context.Context, tournamentID string) ([]Participant, error) {
	envelopes, err := doRequest[[]participantEnvelope](ctx, c, c.endpoint(tournamentID, "participants"))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch participants of %s: %w", tournamentID, err)
	}
	result := make([]Participant, len(*envelopes))
	for i, e := range *envelopes {
		result[i] = e.Participant
	}
	return result, nil
}

func (c *ChallongeClient) GetMatches(ctx context.Context, tournamentID string) ([]Match, error) {
	envelopes, err := doRequest[[]matchEnvelope](ctx, c, c.endpoint(tournamentID, "matches"))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch matches of %s: %w", tournamentID, err)
	}
	result := make([]Match, len(*envelopes))
	for i, e := range *envelopes {
		result[i] = e.Match
	}
	return result, nil
}

func (c *ChallongeClient) endpoint(tournamentID, resource string) string {
	q := url.Values{}
	q.Set("api_key", c.apiKey)
	return fmt.Sprintf("%s/tournaments/%s/%s.json?%s", c.baseURL, url.PathEscape(tournamentID), resource, q.Encode())
}

func doRequest[T any](ctx context.Context, client *ChallongeClient, url string) (*T, error) {
	if client.apiKey == "" {
		return nil, ErrMissingAPIToken
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(url)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set("Accept", "application/json")

	deadline, ok := ctx.Deadline()
	if ok {
		if err := client.client.DoDeadline(req, resp, deadline); err != nil {
			return nil, err
		}
	} else {
		if err := client.client.Do(req, resp); err != nil {
			return nil, err
		}
	}

	if resp.StatusCode() != fasthttp.StatusOK {
		return nil, fmt.Errorf("API error: %d", resp.StatusCode())
	}

	var result T
	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		return nil, err
	}
	return &result, nil
}

package server

import (
	"elo-ladder/internal/domain"
	"time"
)

type RecordMatchRequest struct {
	WinnerID string     `json:"winnerId"`
	LoserID  string     `json:"loserId"`
	PlayedAt *time.Time `json:"playedAt,omitempty"`
}

type RecordMatchResponse struct {
	MatchID          int64 `json:"matchId"`
	WinnerOld        int   `json:"winnerOld"`
	WinnerNew        int   `json:"winnerNew"`
	LoserOld         int   `json:"loserOld"`
	LoserNew         int   `json:"loserNew"`
	RatingDelta      int   `json:"ratingDelta"`
	Multiplier       int   `json:"multiplier"`
	WinnerRegistered bool  `json:"winnerRegistered"`
	LoserRegistered  bool  `json:"loserRegistered"`
}

type UndoMatchRequest struct {
	MatchID int64 `json:"matchId"`
}

type UndoMatchResponse struct {
	Match        Match `json:"match"`
	WinnerRating int   `json:"winnerRating"`
	LoserRating  int   `json:"loserRating"`
}

type GetMatchRequest struct {
	MatchID int64 `json:"matchId"`
}

type Match struct {
	MatchID            int64     `json:"matchId"`
	Timestamp          time.Time `json:"timestamp"`
	WinnerID           string    `json:"winnerId"`
	LoserID            string    `json:"loserId"`
	RatingDelta        int       `json:"ratingDelta"`
	Multiplier         int       `json:"multiplier"`
	WinnerRatingBefore int       `json:"winnerRatingBefore"`
	WinnerRatingAfter  int       `json:"winnerRatingAfter"`
	LoserRatingBefore  int       `json:"loserRatingBefore"`
	LoserRatingAfter   int       `json:"loserRatingAfter"`
	Source             string    `json:"source"`
}

type PlayerRequest struct {
	PlayerID string `json:"playerId"`
}

type Player struct {
	PlayerID   string `json:"playerId"`
	Rating     int    `json:"rating"`
	PeakRating *int   `json:"peakRating"`
	Active     bool   `json:"active"`
}

type RegisterPlayerResponse struct {
	Player  Player `json:"player"`
	Created bool   `json:"created"`
}

type SetRatingRequest struct {
	PlayerID string `json:"playerId"`
	Rating   int    `json:"rating"`
}

type SetActiveRequest struct {
	PlayerID string `json:"playerId"`
	Active   bool   `json:"active"`
}

type ListInactiveRequest struct{}

type ListInactiveResponse struct {
	Players []Player `json:"players"`
}

type ResetRatingsRequest struct{}

type ResetRatingsResponse struct {
	Players int `json:"players"`
}

type ToggleMultiplierRequest struct{}

type MultiplierResponse struct {
	Enabled bool `json:"enabled"`
}

type ImportBatchRequest struct {
	Batch domain.ImportBatch `json:"batch"`
}

type ImportTournamentRequest struct {
	TournamentID string `json:"tournamentId"`
}

type ImportSummaryResponse struct {
	SourceID                string   `json:"sourceId"`
	Processed               int      `json:"processed"`
	NewlyRegistered         int      `json:"newlyRegistered"`
	SkippedUnfinished       int      `json:"skippedUnfinished"`
	SkippedUnmapped         int      `json:"skippedUnmapped"`
	SkippedAlreadyProcessed int      `json:"skippedAlreadyProcessed"`
	Lines                   []string `json:"lines"`
}

type LeaderboardRequest struct {
	Mode    string `json:"mode"`
	Days    int    `json:"days,omitempty"`
	MatchID int64  `json:"matchId,omitempty"`
	Limit   int    `json:"limit,omitempty"`
}

type LeaderboardEntry struct {
	Rank     int    `json:"rank"`
	PlayerID string `json:"playerId"`
	Rating   int    `json:"rating"`
	Movement string `json:"movement,omitempty"`
	Streak   int    `json:"streak"`
	Badge    string `json:"badge,omitempty"`
}

type LeaderboardResponse struct {
	GeneratedAt time.Time          `json:"generatedAt"`
	Entries     []LeaderboardEntry `json:"entries"`
}

func toMatch(m domain.Match) Match {
	return Match{
		MatchID:            m.MatchID,
		Timestamp:          m.Timestamp,
		WinnerID:           m.WinnerID,
		LoserID:            m.LoserID,
		RatingDelta:        m.RatingDelta,
		Multiplier:         m.Multiplier,
		WinnerRatingBefore: m.WinnerRatingBefore(),
		WinnerRatingAfter:  m.WinnerRatingAfter,
		LoserRatingBefore:  m.LoserRatingBefore(),
		LoserRatingAfter:   m.LoserRatingAfter,
		Source:             m.Source,
	}
}

func toPlayer(p domain.Player) Player {
	return Player{
		PlayerID:   p.ID,
		Rating:     p.Rating,
		PeakRating: p.PeakRating,
		Active:     p.Active,
	}
}

func toSummary(s *domain.ImportSummary) *ImportSummaryResponse {
	return &ImportSummaryResponse{
		SourceID:                s.SourceID,
		Processed:               s.Processed,
		NewlyRegistered:         s.NewlyRegistered,
		SkippedUnfinished:       s.SkippedUnfinished,
		SkippedUnmapped:         s.SkippedUnmapped,
		SkippedAlreadyProcessed: s.SkippedAlreadyProcessed,
		Lines:                   s.Lines,
	}
}

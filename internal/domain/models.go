package domain

import (
	"time"
)

type Player struct {
	ID         string
	Rating     int
	PeakRating *int // nil until the first match
	Active     bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Match is a ledger entry. RatingDelta is the winner's gain before the
// multiplier, which is also exactly what the loser lost.
type Match struct {
	MatchID           int64
	Timestamp         time.Time
	WinnerID          string
	LoserID           string
	RatingDelta       int
	WinnerRatingAfter int
	LoserRatingAfter  int
	Multiplier        int // 1 or 2
	Source            string
}

func (m Match) WinnerRatingBefore() int {
	return m.WinnerRatingAfter - m.RatingDelta*m.Multiplier
}

func (m Match) LoserRatingBefore() int {
	return m.LoserRatingAfter + m.RatingDelta
}

func (m Match) WinnerGain() int {
	return m.RatingDelta * m.Multiplier
}

type RankingSnapshot struct {
	BatchID   string
	PlayerID  string
	Timestamp time.Time
	Rank      int
}

type ExternalImportRecord struct {
	ExternalMatchID string
	SourceID        string
	ProcessedAt     time.Time
}

type LedgerReversal struct {
	ID          int64
	MatchID     int64
	WinnerID    string
	LoserID     string
	RatingDelta int
	Multiplier  int
	ReversedAt  time.Time
}

// MatchResult is what a recorded match reports back to the caller.
type MatchResult struct {
	Match             Match
	WinnerOld         int
	WinnerNew         int
	LoserOld          int
	LoserNew          int
	WinnerRegistered  bool
	LoserRegistered   bool
	MultiplierApplied bool
}

type UndoResult struct {
	Match        Match
	WinnerRating int
	LoserRating  int
}

// MatchDescriptor is one externally sourced match, as handed to the importer.
type MatchDescriptor struct {
	ExternalMatchID string     `json:"externalMatchId" yaml:"externalMatchId"`
	ParticipantA    string     `json:"participantA" yaml:"participantA"`
	ParticipantB    string     `json:"participantB" yaml:"participantB"`
	WinnerID        string     `json:"winnerId,omitempty" yaml:"winnerId,omitempty"`
	Scores          string     `json:"scores,omitempty" yaml:"scores,omitempty"` // "a-b,c-d"
	CompletedAt     *time.Time `json:"completedAt,omitempty" yaml:"completedAt,omitempty"`
	State           string     `json:"state,omitempty" yaml:"state,omitempty"`
	NameA           string     `json:"nameA,omitempty" yaml:"nameA,omitempty"`
	NameB           string     `json:"nameB,omitempty" yaml:"nameB,omitempty"`
}

// ImportBatch carries the descriptors of one source together with the
// external participant id -> player id mapping for that source.
type ImportBatch struct {
	SourceID   string            `json:"sourceId" yaml:"sourceId"`
	Matches    []MatchDescriptor `json:"matches" yaml:"matches"`
	Identities map[string]string `json:"identities" yaml:"identities"`
}

type ImportSummary struct {
	SourceID                string
	Processed               int
	NewlyRegistered         int
	SkippedUnfinished       int
	SkippedUnmapped         int
	SkippedAlreadyProcessed int
	Lines                   []string
}

type FilterMode string

const (
	FilterAll            FilterMode = "all"
	FilterActivityWindow FilterMode = "activityWindow"
	FilterSinceMatchID   FilterMode = "sinceMatchId"
)

type LeaderboardFilter struct {
	Mode    FilterMode
	Days    int
	MatchID int64
}

type Movement string

const (
	MovementNone Movement = ""
	MovementUp   Movement = "up"
	MovementDown Movement = "down"
)

type StreakBadge string

const (
	BadgeNone   StreakBadge = ""
	BadgeFire   StreakBadge = "fire"
	BadgeBoom   StreakBadge = "boom"
	BadgeMetal  StreakBadge = "metal"
	BadgeRocket StreakBadge = "rocket"
	BadgeTrophy StreakBadge = "trophy"
	BadgeCrown  StreakBadge = "crown"
	BadgeMage   StreakBadge = "mage"
	BadgeGoat   StreakBadge = "goat"
)

type LeaderboardEntry struct {
	Rank     int
	PlayerID string
	Rating   int
	Movement Movement
	Streak   int
	Badge    StreakBadge
}

type Leaderboard struct {
	Filter      LeaderboardFilter
	GeneratedAt time.Time
	Entries     []LeaderboardEntry
}

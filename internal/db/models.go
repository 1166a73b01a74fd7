package db

import "database/sql"

type Player struct {
	ID         string
	Rating     int64
	PeakRating sql.NullInt64
	Active     bool
	CreatedAt  int64
	UpdatedAt  int64
}

type Match struct {
	MatchID           int64
	Timestamp         int64
	WinnerID          string
	LoserID           string
	RatingDelta       int64
	WinnerRatingAfter int64
	LoserRatingAfter  int64
	Multiplier        int64
	Source            string
}

type RankingSnapshot struct {
	ID        int64
	BatchID   string
	PlayerID  string
	Timestamp int64
	Rank      int64
}

type ExternalImportRecord struct {
	ExternalMatchID string
	SourceID        string
	ProcessedAt     int64
}

type LedgerReversal struct {
	ID          int64
	MatchID     int64
	WinnerID    string
	LoserID     string
	RatingDelta int64
	Multiplier  int64
	ReversedAt  int64
}

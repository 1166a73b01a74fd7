package db

import (
	"context"
)

const insertMatch = `INSERT INTO matches (
    timestamp, winner_id, loser_id, rating_delta,
    winner_rating_after, loser_rating_after, multiplier, source
) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

type InsertMatchParams struct {
	Timestamp         int64
	WinnerID          string
	LoserID           string
	RatingDelta       int64
	WinnerRatingAfter int64
	LoserRatingAfter  int64
	Multiplier        int64
	Source            string
}

func (q *Queries) InsertMatch(ctx context.Context, arg InsertMatchParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, insertMatch,
		arg.Timestamp,
		arg.WinnerID,
		arg.LoserID,
		arg.RatingDelta,
		arg.WinnerRatingAfter,
		arg.LoserRatingAfter,
		arg.Multiplier,
		arg.Source,
	)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

const getMatch = `SELECT match_id, timestamp, winner_id, loser_id, rating_delta,
    winner_rating_after, loser_rating_after, multiplier, source
FROM matches WHERE match_id = ?`

func (q *Queries) GetMatch(ctx context.Context, matchID int64) (Match, error) {
	row := q.db.QueryRowContext(ctx, getMatch, matchID)
	var i Match
	err := row.Scan(
		&i.MatchID,
		&i.Timestamp,
		&i.WinnerID,
		&i.LoserID,
		&i.RatingDelta,
		&i.WinnerRatingAfter,
		&i.LoserRatingAfter,
		&i.Multiplier,
		&i.Source,
	)
	return i, err
}

const deleteMatch = `DELETE FROM matches WHERE match_id = ?`

func (q *Queries) DeleteMatch(ctx context.Context, matchID int64) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteMatch, matchID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const lastMatchTimes = `SELECT player_id, MAX(timestamp) AS last_at FROM (
    SELECT winner_id AS player_id, timestamp FROM matches
    UNION ALL
    SELECT loser_id AS player_id, timestamp FROM matches
)
GROUP BY player_id`

type LastMatchTimeRow struct {
	PlayerID string
	LastAt   int64
}

func (q *Queries) LastMatchTimes(ctx context.Context) ([]LastMatchTimeRow, error) {
	rows, err := q.db.QueryContext(ctx, lastMatchTimes)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []LastMatchTimeRow
	for rows.Next() {
		var i LastMatchTimeRow
		if err := rows.Scan(&i.PlayerID, &i.LastAt); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const playerRatingsSince = `SELECT player_id, match_id, timestamp, rating_after FROM (
    SELECT winner_id AS player_id, match_id, timestamp, winner_rating_after AS rating_after
    FROM matches WHERE timestamp >= ?1
    UNION ALL
    SELECT loser_id AS player_id, match_id, timestamp, loser_rating_after AS rating_after
    FROM matches WHERE timestamp >= ?1
)
ORDER BY player_id ASC, timestamp ASC, match_id ASC`

type PlayerRatingRow struct {
	PlayerID    string
	MatchID     int64
	Timestamp   int64
	RatingAfter int64
}

// PlayerRatingsSince lists each player's post-match rating for every match
// at or after since, oldest first per player.
func (q *Queries) PlayerRatingsSince(ctx context.Context, since int64) ([]PlayerRatingRow, error) {
	rows, err := q.db.QueryContext(ctx, playerRatingsSince, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []PlayerRatingRow
	for rows.Next() {
		var i PlayerRatingRow
		if err := rows.Scan(&i.PlayerID, &i.MatchID, &i.Timestamp, &i.RatingAfter); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const listMatchResultsDesc = `SELECT match_id, winner_id, loser_id, timestamp
FROM matches
ORDER BY timestamp DESC, match_id DESC`

type MatchResultRow struct {
	MatchID   int64
	WinnerID  string
	LoserID   string
	Timestamp int64
}

func (q *Queries) ListMatchResultsDesc(ctx context.Context) ([]MatchResultRow, error) {
	rows, err := q.db.QueryContext(ctx, listMatchResultsDesc)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []MatchResultRow
	for rows.Next() {
		var i MatchResultRow
		if err := rows.Scan(&i.MatchID, &i.WinnerID, &i.LoserID, &i.Timestamp); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

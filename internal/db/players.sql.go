package db

import (
	"context"
)

const playerColumns = `id, rating, peak_rating, active, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanPlayer(row rowScanner) (Player, error) {
	var i Player
	err := row.Scan(
		&i.ID,
		&i.Rating,
		&i.PeakRating,
		&i.Active,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

func (q *Queries) collectPlayers(ctx context.Context, query string, args ...interface{}) ([]Player, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Player
	for rows.Next() {
		i, err := scanPlayer(rows)
		if err != nil {
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

const getPlayer = `SELECT ` + playerColumns + ` FROM players WHERE id = ?`

func (q *Queries) GetPlayer(ctx context.Context, id string) (Player, error) {
	row := q.db.QueryRowContext(ctx, getPlayer, id)
	return scanPlayer(row)
}

const insertPlayer = `INSERT INTO players (id, rating, active, created_at, updated_at)
VALUES (?, ?, 1, ?, ?)
ON CONFLICT(id) DO NOTHING`

type InsertPlayerParams struct {
	ID        string
	Rating    int64
	CreatedAt int64
	UpdatedAt int64
}

// InsertPlayer reports 0 rows when the player already exists.
func (q *Queries) InsertPlayer(ctx context.Context, arg InsertPlayerParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, insertPlayer,
		arg.ID,
		arg.Rating,
		arg.CreatedAt,
		arg.UpdatedAt,
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const updatePlayerRating = `UPDATE players SET rating = ?, updated_at = ? WHERE id = ?`

type UpdatePlayerRatingParams struct {
	Rating    int64
	UpdatedAt int64
	ID        string
}

func (q *Queries) UpdatePlayerRating(ctx context.Context, arg UpdatePlayerRatingParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, updatePlayerRating, arg.Rating, arg.UpdatedAt, arg.ID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const raisePeakRating = `UPDATE players SET peak_rating = ?1
WHERE id = ?2 AND (peak_rating IS NULL OR peak_rating < ?1)`

type RaisePeakRatingParams struct {
	Rating int64
	ID     string
}

func (q *Queries) RaisePeakRating(ctx context.Context, arg RaisePeakRatingParams) error {
	_, err := q.db.ExecContext(ctx, raisePeakRating, arg.Rating, arg.ID)
	return err
}

const setPlayerActive = `UPDATE players SET active = ?, updated_at = ? WHERE id = ?`

type SetPlayerActiveParams struct {
	Active    bool
	UpdatedAt int64
	ID        string
}

func (q *Queries) SetPlayerActive(ctx context.Context, arg SetPlayerActiveParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, setPlayerActive, arg.Active, arg.UpdatedAt, arg.ID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const resetAllRatings = `UPDATE players SET rating = ?, updated_at = ?`

func (q *Queries) ResetAllRatings(ctx context.Context, rating, updatedAt int64) (int64, error) {
	result, err := q.db.ExecContext(ctx, resetAllRatings, rating, updatedAt)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const listPlayersByRating = `SELECT ` + playerColumns + ` FROM players ORDER BY rating DESC, id ASC`

func (q *Queries) ListPlayersByRating(ctx context.Context) ([]Player, error) {
	return q.collectPlayers(ctx, listPlayersByRating)
}

const listInactivePlayers = `SELECT ` + playerColumns + ` FROM players WHERE active = 0 ORDER BY id ASC`

func (q *Queries) ListInactivePlayers(ctx context.Context) ([]Player, error) {
	return q.collectPlayers(ctx, listInactivePlayers)
}

const listActivePlayersByRating = `SELECT ` + playerColumns + ` FROM players
WHERE active = 1
ORDER BY rating DESC, id ASC`

func (q *Queries) ListActivePlayersByRating(ctx context.Context) ([]Player, error) {
	return q.collectPlayers(ctx, listActivePlayersByRating)
}

const listActivePlayersSince = `SELECT ` + playerColumns + ` FROM players
WHERE active = 1 AND id IN (
    SELECT winner_id FROM matches WHERE timestamp >= ?1
    UNION
    SELECT loser_id FROM matches WHERE timestamp >= ?1
)
ORDER BY rating DESC, id ASC`

// ListActivePlayersSince returns active players with a match at or after since.
func (q *Queries) ListActivePlayersSince(ctx context.Context, since int64) ([]Player, error) {
	return q.collectPlayers(ctx, listActivePlayersSince, since)
}

const listActivePlayersSinceMatch = `SELECT ` + playerColumns + ` FROM players
WHERE active = 1 AND id IN (
    SELECT winner_id FROM matches WHERE match_id >= ?1
    UNION
    SELECT loser_id FROM matches WHERE match_id >= ?1
)
ORDER BY rating DESC, id ASC`

func (q *Queries) ListActivePlayersSinceMatch(ctx context.Context, matchID int64) ([]Player, error) {
	return q.collectPlayers(ctx, listActivePlayersSinceMatch, matchID)
}

package db

import (
	"context"
)

const insertRankingSnapshot = `INSERT INTO ranking_snapshots (batch_id, player_id, timestamp, rank)
VALUES (?, ?, ?, ?)`

type InsertRankingSnapshotParams struct {
	BatchID   string
	PlayerID  string
	Timestamp int64
	Rank      int64
}

func (q *Queries) InsertRankingSnapshot(ctx context.Context, arg InsertRankingSnapshotParams) error {
	_, err := q.db.ExecContext(ctx, insertRankingSnapshot, arg.BatchID, arg.PlayerID, arg.Timestamp, arg.Rank)
	return err
}

const listRankingSnapshotsByPlayer = `SELECT id, batch_id, player_id, timestamp, rank
FROM ranking_snapshots
WHERE player_id = ?
ORDER BY id DESC
LIMIT ?`

type ListRankingSnapshotsByPlayerParams struct {
	PlayerID string
	Limit    int64
}

func (q *Queries) ListRankingSnapshotsByPlayer(ctx context.Context, arg ListRankingSnapshotsByPlayerParams) ([]RankingSnapshot, error) {
	return q.collectSnapshots(ctx, listRankingSnapshotsByPlayer, arg.PlayerID, arg.Limit)
}

const listLatestRankingSnapshot = `SELECT id, batch_id, player_id, timestamp, rank
FROM ranking_snapshots
WHERE batch_id = (SELECT batch_id FROM ranking_snapshots ORDER BY id DESC LIMIT 1)
ORDER BY rank ASC`

func (q *Queries) ListLatestRankingSnapshot(ctx context.Context) ([]RankingSnapshot, error) {
	return q.collectSnapshots(ctx, listLatestRankingSnapshot)
}

const countRankingSnapshotBatches = `SELECT COUNT(DISTINCT batch_id) FROM ranking_snapshots`

func (q *Queries) CountRankingSnapshotBatches(ctx context.Context) (int64, error) {
	row := q.db.QueryRowContext(ctx, countRankingSnapshotBatches)
	var count int64
	err := row.Scan(&count)
	return count, err
}

func (q *Queries) collectSnapshots(ctx context.Context, query string, args ...interface{}) ([]RankingSnapshot, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []RankingSnapshot
	for rows.Next() {
		var i RankingSnapshot
		if err := rows.Scan(&i.ID, &i.BatchID, &i.PlayerID, &i.Timestamp, &i.Rank); err != nil {
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

const importRecordExists = `SELECT EXISTS(SELECT 1 FROM external_import_records WHERE external_match_id = ?)`

func (q *Queries) ImportRecordExists(ctx context.Context, externalMatchID string) (bool, error) {
	row := q.db.QueryRowContext(ctx, importRecordExists, externalMatchID)
	var exists bool
	err := row.Scan(&exists)
	return exists, err
}

const insertImportRecord = `INSERT INTO external_import_records (external_match_id, source_id, processed_at)
VALUES (?, ?, ?)`

type InsertImportRecordParams struct {
	ExternalMatchID string
	SourceID        string
	ProcessedAt     int64
}

func (q *Queries) InsertImportRecord(ctx context.Context, arg InsertImportRecordParams) error {
	_, err := q.db.ExecContext(ctx, insertImportRecord, arg.ExternalMatchID, arg.SourceID, arg.ProcessedAt)
	return err
}

const getSetting = `SELECT value FROM settings WHERE name = ?`

func (q *Queries) GetSetting(ctx context.Context, name string) (string, error) {
	row := q.db.QueryRowContext(ctx, getSetting, name)
	var value string
	err := row.Scan(&value)
	return value, err
}

const upsertSetting = `INSERT INTO settings (name, value) VALUES (?, ?)
ON CONFLICT(name) DO UPDATE SET value = excluded.value`

func (q *Queries) UpsertSetting(ctx context.Context, name, value string) error {
	_, err := q.db.ExecContext(ctx, upsertSetting, name, value)
	return err
}

const insertLedgerReversal = `INSERT INTO ledger_reversals (
    match_id, winner_id, loser_id, rating_delta, multiplier, reversed_at
) VALUES (?, ?, ?, ?, ?, ?)`

type InsertLedgerReversalParams struct {
	MatchID     int64
	WinnerID    string
	LoserID     string
	RatingDelta int64
	Multiplier  int64
	ReversedAt  int64
}

func (q *Queries) InsertLedgerReversal(ctx context.Context, arg InsertLedgerReversalParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, insertLedgerReversal,
		arg.MatchID,
		arg.WinnerID,
		arg.LoserID,
		arg.RatingDelta,
		arg.Multiplier,
		arg.ReversedAt,
	)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

const listLedgerReversals = `SELECT id, match_id, winner_id, loser_id, rating_delta, multiplier, reversed_at
FROM ledger_reversals
ORDER BY id DESC
LIMIT ?`

func (q *Queries) ListLedgerReversals(ctx context.Context, limit int64) ([]LedgerReversal, error) {
	rows, err := q.db.QueryContext(ctx, listLedgerReversals, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []LedgerReversal
	for rows.Next() {
		var i LedgerReversal
		if err := rows.Scan(
			&i.ID,
			&i.MatchID,
			&i.WinnerID,
			&i.LoserID,
			&i.RatingDelta,
			&i.Multiplier,
			&i.ReversedAt,
		); err != nil {
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

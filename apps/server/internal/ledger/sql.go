package ledger

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// sqlService is shared by the sqlite and postgres backends. Queries are written
// with ? placeholders and rebound per dialect.
type sqlService struct {
	db       *sql.DB
	numbered bool // $1, $2, ... placeholders
}

func (s *sqlService) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *sqlService) rebind(query string) string {
	if !s.numbered {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			fmt.Fprintf(&b, "$%d", n)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (s *sqlService) AppendEvents(ctx context.Context, events []EventRecord) error {
	if len(events) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, s.rebind(`
INSERT INTO ledger_game_events (game_id, round, seq, kind, payload_json, recorded_at_ms)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT (game_id, round, seq) DO NOTHING
`))
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, ev := range events {
		payload := ev.Payload
		if len(payload) == 0 {
			payload = json.RawMessage("null")
		}
		if _, err := stmt.ExecContext(ctx, ev.GameID, ev.Round, ev.Seq, ev.Kind, string(payload), ev.RecordedAt.UTC().UnixMilli()); err != nil {
			logFailure("append event", ev.GameID, err)
			return err
		}
	}
	return tx.Commit()
}

func (s *sqlService) RecordResult(ctx context.Context, result ResultRecord) error {
	players, err := json.Marshal(result.Players)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, s.rebind(`
INSERT INTO ledger_game_results (game_id, round, winner, players_json, finished_at_ms)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT (game_id, round) DO NOTHING
`), result.GameID, result.Round, result.Winner, string(players), result.FinishedAt.UTC().UnixMilli())
	if err != nil {
		logFailure("record result", result.GameID, err)
	}
	return err
}

func (s *sqlService) ListEvents(ctx context.Context, gameID string, limit int) ([]EventRecord, error) {
	rows, err := s.db.QueryContext(ctx, s.rebind(`
SELECT game_id, round, seq, kind, payload_json, recorded_at_ms
FROM (
    SELECT game_id, round, seq, kind, payload_json, recorded_at_ms
    FROM ledger_game_events
    WHERE game_id = ?
    ORDER BY round DESC, seq DESC
    LIMIT ?
) recent
ORDER BY round ASC, seq ASC
`), gameID, clampLimit(limit))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []EventRecord{}
	for rows.Next() {
		var (
			ev         EventRecord
			payload    string
			recordedAt int64
		)
		if err := rows.Scan(&ev.GameID, &ev.Round, &ev.Seq, &ev.Kind, &payload, &recordedAt); err != nil {
			return nil, err
		}
		ev.Payload = json.RawMessage(payload)
		ev.RecordedAt = time.UnixMilli(recordedAt).UTC()
		out = append(out, ev)
	}
	return out, rows.Err()
}

func (s *sqlService) ListResults(ctx context.Context, gameID string, limit int) ([]ResultRecord, error) {
	rows, err := s.db.QueryContext(ctx, s.rebind(`
SELECT game_id, round, winner, players_json, finished_at_ms
FROM (
    SELECT game_id, round, winner, players_json, finished_at_ms
    FROM ledger_game_results
    WHERE game_id = ?
    ORDER BY round DESC
    LIMIT ?
) recent
ORDER BY round ASC
`), gameID, clampLimit(limit))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []ResultRecord{}
	for rows.Next() {
		var (
			r          ResultRecord
			players    string
			finishedAt int64
		)
		if err := rows.Scan(&r.GameID, &r.Round, &r.Winner, &players, &finishedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(players), &r.Players); err != nil {
			return nil, fmt.Errorf("decode players of %s round %d: %w", r.GameID, r.Round, err)
		}
		r.FinishedAt = time.UnixMilli(finishedAt).UTC()
		out = append(out, r)
	}
	return out, rows.Err()
}

func ensureSchema(ctx context.Context, db *sql.DB, statements []string) error {
	for _, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

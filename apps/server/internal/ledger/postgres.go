package ledger

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/lib/pq"
)

var postgresSchema = []string{
	`
CREATE TABLE IF NOT EXISTS ledger_game_events (
    id BIGSERIAL PRIMARY KEY,
    game_id TEXT NOT NULL,
    round INTEGER NOT NULL,
    seq INTEGER NOT NULL,
    kind TEXT NOT NULL,
    payload_json TEXT NOT NULL DEFAULT 'null',
    recorded_at_ms BIGINT NOT NULL,
    UNIQUE (game_id, round, seq)
)`,
	`CREATE INDEX IF NOT EXISTS idx_ledger_game_events_recent ON ledger_game_events(game_id, round DESC, seq DESC)`,
	`
CREATE TABLE IF NOT EXISTS ledger_game_results (
    id BIGSERIAL PRIMARY KEY,
    game_id TEXT NOT NULL,
    round INTEGER NOT NULL,
    winner TEXT NOT NULL,
    players_json TEXT NOT NULL DEFAULT '[]',
    finished_at_ms BIGINT NOT NULL,
    UNIQUE (game_id, round)
)`,
}

type PostgresService struct {
	sqlService
}

func NewPostgresService(dsn string) (*PostgresService, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := ensureSchema(ctx, db, postgresSchema); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &PostgresService{sqlService{db: db, numbered: true}}, nil
}

// Package ledger is the append-only audit log of finished and running games.
// It is written by tables and read back only through the HTTP API.
package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"slices"
	"sync"
	"time"

	"chancellery/apps/server/internal/config"
)

const (
	defaultListLimit = 200
	maxListLimit     = 1000
)

// EventRecord is one history event of one round of a game.
type EventRecord struct {
	GameID     string          `json:"game_id"`
	Round      int             `json:"round"`
	Seq        int             `json:"seq"`
	Kind       string          `json:"kind"`
	Payload    json.RawMessage `json:"payload"`
	RecordedAt time.Time       `json:"recorded_at"`
}

type ResultPlayer struct {
	ID   string `json:"id"`
	Role string `json:"role"`
}

// ResultRecord is written once per round when a faction wins.
type ResultRecord struct {
	GameID     string         `json:"game_id"`
	Round      int            `json:"round"`
	Winner     string         `json:"winner"`
	Players    []ResultPlayer `json:"players"`
	FinishedAt time.Time      `json:"finished_at"`
}

type Service interface {
	Close() error
	// AppendEvents is idempotent on (game, round, seq).
	AppendEvents(ctx context.Context, events []EventRecord) error
	RecordResult(ctx context.Context, result ResultRecord) error
	ListEvents(ctx context.Context, gameID string, limit int) ([]EventRecord, error)
	ListResults(ctx context.Context, gameID string, limit int) ([]ResultRecord, error)
}

// NewService opens the backend selected by cfg.LedgerMode and reports its name.
func NewService(cfg config.Config) (Service, string, error) {
	switch cfg.LedgerMode {
	case config.LedgerMemory, "":
		return NewMemoryService(), config.LedgerMemory, nil
	case config.LedgerSQLite:
		s, err := NewSQLiteService(cfg.SQLitePath)
		if err != nil {
			return nil, "", err
		}
		return s, config.LedgerSQLite, nil
	case config.LedgerPostgres:
		s, err := NewPostgresService(cfg.DatabaseDSN)
		if err != nil {
			return nil, "", err
		}
		return s, config.LedgerPostgres, nil
	default:
		return nil, "", fmt.Errorf("invalid ledger mode %q", cfg.LedgerMode)
	}
}

type eventKey struct {
	gameID string
	round  int
	seq    int
}

// MemoryService keeps the log in process. It is lost on restart.
type MemoryService struct {
	mu      sync.RWMutex
	events  []EventRecord
	seen    map[eventKey]struct{}
	results []ResultRecord
}

func NewMemoryService() *MemoryService {
	return &MemoryService{seen: make(map[eventKey]struct{})}
}

func (m *MemoryService) Close() error { return nil }

func (m *MemoryService) AppendEvents(_ context.Context, events []EventRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, ev := range events {
		k := eventKey{ev.GameID, ev.Round, ev.Seq}
		if _, dup := m.seen[k]; dup {
			continue
		}
		m.seen[k] = struct{}{}
		m.events = append(m.events, ev)
	}
	return nil
}

func (m *MemoryService) RecordResult(_ context.Context, result ResultRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.results {
		if r.GameID == result.GameID && r.Round == result.Round {
			return nil
		}
	}
	m.results = append(m.results, result)
	return nil
}

func (m *MemoryService) ListEvents(_ context.Context, gameID string, limit int) ([]EventRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []EventRecord{}
	for _, ev := range m.events {
		if ev.GameID == gameID {
			out = append(out, ev)
		}
	}
	slices.SortStableFunc(out, func(a, b EventRecord) int {
		if a.Round != b.Round {
			return a.Round - b.Round
		}
		return a.Seq - b.Seq
	})
	return tail(out, clampLimit(limit)), nil
}

func (m *MemoryService) ListResults(_ context.Context, gameID string, limit int) ([]ResultRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []ResultRecord{}
	for _, r := range m.results {
		if r.GameID == gameID {
			out = append(out, r)
		}
	}
	return tail(out, clampLimit(limit)), nil
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return defaultListLimit
	}
	return min(limit, maxListLimit)
}

// tail keeps the newest n entries.
func tail[T any](s []T, n int) []T {
	if len(s) > n {
		return s[len(s)-n:]
	}
	return s
}

func logFailure(op, gameID string, err error) {
	log.Printf("[Ledger] %s failed: game=%s err=%v", op, gameID, err)
}

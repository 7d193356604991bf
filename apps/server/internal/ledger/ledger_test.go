package ledger

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"chancellery/apps/server/internal/config"
)

func sampleEvents(gameID string, round, n int) []EventRecord {
	out := make([]EventRecord, n)
	for i := range out {
		out[i] = EventRecord{
			GameID:     gameID,
			Round:      round,
			Seq:        i,
			Kind:       "Vote",
			Payload:    json.RawMessage(`{"seq":` + string(rune('0'+i)) + `}`),
			RecordedAt: time.UnixMilli(1_700_000_000_000 + int64(i)).UTC(),
		}
	}
	return out
}

func exerciseService(t *testing.T, s Service) {
	t.Helper()
	ctx := context.Background()

	if err := s.AppendEvents(ctx, sampleEvents("001", 1, 3)); err != nil {
		t.Fatalf("AppendEvents: %v", err)
	}
	// duplicates are ignored
	if err := s.AppendEvents(ctx, sampleEvents("001", 1, 4)); err != nil {
		t.Fatalf("AppendEvents again: %v", err)
	}
	if err := s.AppendEvents(ctx, sampleEvents("001", 2, 2)); err != nil {
		t.Fatalf("AppendEvents round 2: %v", err)
	}
	if err := s.AppendEvents(ctx, sampleEvents("other", 1, 5)); err != nil {
		t.Fatalf("AppendEvents other: %v", err)
	}

	events, err := s.ListEvents(ctx, "001", 0)
	if err != nil {
		t.Fatalf("ListEvents: %v", err)
	}
	if len(events) != 6 {
		t.Fatalf("expected 6 events, got %d", len(events))
	}
	if events[0].Round != 1 || events[0].Seq != 0 || events[5].Round != 2 || events[5].Seq != 1 {
		t.Fatalf("events out of order: %+v", events)
	}
	if string(events[2].Payload) != `{"seq":2}` {
		t.Fatalf("payload not preserved: %s", events[2].Payload)
	}

	recent, err := s.ListEvents(ctx, "001", 2)
	if err != nil {
		t.Fatalf("ListEvents limit: %v", err)
	}
	if len(recent) != 2 || recent[0].Round != 2 || recent[0].Seq != 0 {
		t.Fatalf("expected the two newest events, got %+v", recent)
	}

	result := ResultRecord{
		GameID:     "001",
		Round:      1,
		Winner:     "Liberal",
		Players:    []ResultPlayer{{ID: "ada", Role: "Liberal"}, {ID: "bob", Role: "FascistLeader"}},
		FinishedAt: time.UnixMilli(1_700_000_100_000).UTC(),
	}
	if err := s.RecordResult(ctx, result); err != nil {
		t.Fatalf("RecordResult: %v", err)
	}
	if err := s.RecordResult(ctx, result); err != nil {
		t.Fatalf("RecordResult again: %v", err)
	}
	results, err := s.ListResults(ctx, "001", 10)
	if err != nil {
		t.Fatalf("ListResults: %v", err)
	}
	if len(results) != 1 || results[0].Winner != "Liberal" || len(results[0].Players) != 2 {
		t.Fatalf("unexpected results: %+v", results)
	}
	if !results[0].FinishedAt.Equal(result.FinishedAt) {
		t.Fatalf("finished_at: got %v want %v", results[0].FinishedAt, result.FinishedAt)
	}
}

func TestMemoryService(t *testing.T) {
	exerciseService(t, NewMemoryService())
}

func TestSQLiteService(t *testing.T) {
	s, err := NewSQLiteService(filepath.Join(t.TempDir(), "ledger", "test.db"))
	if err != nil {
		t.Fatalf("NewSQLiteService: %v", err)
	}
	defer s.Close()
	exerciseService(t, s)
}

func TestNewServiceModes(t *testing.T) {
	s, mode, err := NewService(config.Config{LedgerMode: config.LedgerMemory})
	if err != nil || mode != config.LedgerMemory {
		t.Fatalf("memory: mode=%s err=%v", mode, err)
	}
	_ = s.Close()

	s, mode, err = NewService(config.Config{LedgerMode: config.LedgerSQLite, SQLitePath: filepath.Join(t.TempDir(), "x.db")})
	if err != nil || mode != config.LedgerSQLite {
		t.Fatalf("sqlite: mode=%s err=%v", mode, err)
	}
	_ = s.Close()

	if _, _, err := NewService(config.Config{LedgerMode: "redis"}); err == nil {
		t.Fatalf("expected unknown mode to fail")
	}
}

func TestPostgresRebind(t *testing.T) {
	s := &sqlService{numbered: true}
	got := s.rebind(`SELECT a FROM t WHERE b = ? AND c = ? LIMIT ?`)
	if got != `SELECT a FROM t WHERE b = $1 AND c = $2 LIMIT $3` {
		t.Fatalf("rebind: %s", got)
	}
}

func TestHTTPHistory(t *testing.T) {
	s := NewMemoryService()
	if err := s.AppendEvents(context.Background(), sampleEvents("001", 1, 3)); err != nil {
		t.Fatalf("AppendEvents: %v", err)
	}
	mux := http.NewServeMux()
	NewHTTPHandler(s, func(id string) bool { return id == "001" }).RegisterRoutes(mux)
	srv := httptest.NewServer(mux)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/tables/001/history?limit=2")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var body struct {
		GameID  string         `json:"game_id"`
		Events  []EventRecord  `json:"events"`
		Results []ResultRecord `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.GameID != "001" || len(body.Events) != 2 || body.Events[1].Seq != 2 || body.Results == nil {
		t.Fatalf("unexpected body: %+v", body)
	}

	for path, status := range map[string]int{
		"/api/tables/404/history": http.StatusNotFound,
		"/api/tables/001":         http.StatusNotFound,
		"/api/tables/001/other":   http.StatusNotFound,
	} {
		resp, err := http.Get(srv.URL + path)
		if err != nil {
			t.Fatalf("GET %s: %v", path, err)
		}
		resp.Body.Close()
		if resp.StatusCode != status {
			t.Fatalf("GET %s: expected %d, got %d", path, status, resp.StatusCode)
		}
	}

	resp, err = http.Post(srv.URL+"/api/tables/001/history", "application/json", nil)
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", resp.StatusCode)
	}
}

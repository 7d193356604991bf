package table

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"chancellery/apps/server/internal/ledger"
	"chancellery/game"
	"chancellery/game/npc"
)

func newTestTable(t *testing.T, opts Options) *Table {
	t.Helper()
	if opts.Game.ID == "" {
		opts.Game.ID = "t1"
	}
	if opts.Game.Seed == 0 {
		opts.Game.Seed = 42
	}
	tbl, err := New(opts)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(tbl.Stop)
	return tbl
}

func registerN(t *testing.T, tbl *Table, n int) []game.PlayerID {
	t.Helper()
	ids := make([]game.PlayerID, n)
	for i := range ids {
		p, _, err := tbl.Register(context.Background(), game.User{Name: fmt.Sprintf("p%d", i)})
		if err != nil {
			t.Fatalf("Register: %v", err)
		}
		ids[i] = p.ID
	}
	return ids
}

// waitFor polls cond until it holds or the deadline passes.
func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func TestStateFrameCachedPerVersion(t *testing.T) {
	tbl := newTestTable(t, Options{ViewCacheSize: 8})
	ids := registerN(t, tbl, 5)

	first, ok, err := tbl.StateFrame(ids[0])
	if err != nil || !ok {
		t.Fatalf("StateFrame: ok=%v err=%v", ok, err)
	}
	again, _, _ := tbl.StateFrame(ids[0])
	if &first[0] != &again[0] {
		t.Fatalf("expected the cached frame for an unchanged version")
	}

	if err := tbl.Apply(context.Background(), ids[0], game.StartGame{}); err != nil {
		t.Fatalf("start: %v", err)
	}
	after, _, _ := tbl.StateFrame(ids[0])
	if bytes.Equal(first, after) {
		t.Fatalf("expected a new frame after the game started")
	}
	if !bytes.Contains(after, []byte(`"type":"State"`)) {
		t.Fatalf("unexpected frame: %s", after)
	}

	if _, ok, _ := tbl.StateFrame("nobody"); ok {
		t.Fatalf("expected no frame for an unknown observer")
	}
}

func TestApplyRejectionReturned(t *testing.T) {
	tbl := newTestTable(t, Options{})
	ids := registerN(t, tbl, 5)
	if err := tbl.Apply(context.Background(), ids[0], game.StartGame{}); err != nil {
		t.Fatalf("start: %v", err)
	}
	before := tbl.Version()
	err := tbl.Apply(context.Background(), ids[0], game.CastVote{Yes: true})
	if !errors.Is(err, game.ErrInvalidAction) {
		t.Fatalf("expected ErrInvalidAction, got %v", err)
	}
	if tbl.Version() != before {
		t.Fatalf("rejected action must not change the version")
	}
}

func TestBotsPlayToTheEndAndLedgerRecordsIt(t *testing.T) {
	store := ledger.NewMemoryService()
	bots := npc.NewManager(npc.DefaultRegistry(), 7, 0)
	tbl := newTestTable(t, Options{Ledger: store, NPCs: bots})

	if err := tbl.FillNPCs(6); err != nil {
		t.Fatalf("FillNPCs: %v", err)
	}
	starter := bots.Instances()[0].PlayerID
	if err := tbl.Apply(context.Background(), starter, game.StartGame{}); err != nil {
		t.Fatalf("start: %v", err)
	}

	waitFor(t, "a winner", func() bool {
		_, over := tbl.game.Winner()
		return over
	})
	waitFor(t, "the ledger result", func() bool {
		results, _ := store.ListResults(context.Background(), "t1", 10)
		return len(results) == 1
	})

	snap := tbl.Snapshot()
	events, err := store.ListEvents(context.Background(), "t1", 1000)
	if err != nil {
		t.Fatalf("ListEvents: %v", err)
	}
	if len(events) != len(snap.History) {
		t.Fatalf("ledger has %d events, history has %d", len(events), len(snap.History))
	}
	for i, ev := range events {
		if ev.Round != 1 || ev.Seq != snap.History[i].Seq || ev.Kind != string(snap.History[i].Kind) {
			t.Fatalf("event %d mismatch: %+v vs %+v", i, ev, snap.History[i])
		}
	}
	results, _ := store.ListResults(context.Background(), "t1", 10)
	if len(results[0].Players) != 6 {
		t.Fatalf("expected 6 players in the result, got %+v", results[0])
	}
}

func TestRestartStartsNewLedgerRound(t *testing.T) {
	store := ledger.NewMemoryService()
	bots := npc.NewManager(npc.DefaultRegistry(), 3, 0)
	tbl := newTestTable(t, Options{Ledger: store, NPCs: bots, Game: game.Config{ID: "t1", Seed: 3, SkipVotes: true}})
	if err := tbl.FillNPCs(5); err != nil {
		t.Fatalf("FillNPCs: %v", err)
	}
	starter := bots.Instances()[0].PlayerID
	for round := 1; round <= 2; round++ {
		if err := tbl.Apply(context.Background(), starter, game.StartGame{}); err != nil {
			t.Fatalf("start round %d: %v", round, err)
		}
		waitFor(t, fmt.Sprintf("result of round %d", round), func() bool {
			results, _ := store.ListResults(context.Background(), "t1", 10)
			return len(results) == round
		})
	}
	results, _ := store.ListResults(context.Background(), "t1", 10)
	if results[0].Round != 1 || results[1].Round != 2 {
		t.Fatalf("unexpected rounds: %+v", results)
	}
}

func TestStoppedTableRejects(t *testing.T) {
	tbl := newTestTable(t, Options{})
	tbl.Stop()
	if !tbl.IsClosed() {
		t.Fatalf("expected closed table")
	}
	if _, _, err := tbl.Register(context.Background(), game.User{Name: "late"}); !errors.Is(err, ErrTableClosed) {
		t.Fatalf("expected ErrTableClosed, got %v", err)
	}
	if err := tbl.Apply(context.Background(), "late", game.StartGame{}); !errors.Is(err, ErrTableClosed) {
		t.Fatalf("expected ErrTableClosed, got %v", err)
	}
}

package table

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"chancellery/apps/server/internal/codec"
	"chancellery/apps/server/internal/ledger"
	"chancellery/game"
	"chancellery/game/npc"
)

const (
	defaultViewCacheSize = 256
	ledgerWriteTimeout   = 3 * time.Second
)

var ErrTableClosed = errors.New("table closed")

// Options configures a Table. Ledger and NPCs may be nil.
type Options struct {
	Game          game.Config
	Ledger        ledger.Service
	ViewCacheSize int
	NPCs          *npc.Manager
}

type viewKey struct {
	player  game.PlayerID
	version uint64
}

// Table is the session coordinator around one shared game. Player operations
// go straight to the game; the actor loop reacts to every committed change by
// flushing history to the ledger and waking bots.
type Table struct {
	ID string

	game   *game.Game
	ledger ledger.Service
	npcs   *npc.Manager
	views  *lru.Cache[viewKey, []byte]
	tracer trace.Tracer

	mu       sync.Mutex
	closed   bool
	stopOnce sync.Once
	// ledger progress of the actor loop
	flushedRound int
	nextSeq      int
	// bots with a decision in flight
	pending map[game.PlayerID]bool

	nudge chan struct{}
	done  chan struct{}
	idle  chan struct{}
}

func New(opts Options) (*Table, error) {
	g, err := game.NewGame(opts.Game)
	if err != nil {
		return nil, err
	}
	size := opts.ViewCacheSize
	if size <= 0 {
		size = defaultViewCacheSize
	}
	views, err := lru.New[viewKey, []byte](size)
	if err != nil {
		return nil, err
	}
	l := opts.Ledger
	if l == nil {
		l = ledger.NewMemoryService()
	}
	t := &Table{
		ID:      g.ID(),
		game:    g,
		ledger:  l,
		npcs:    opts.NPCs,
		views:   views,
		tracer:  otel.Tracer("chancellery/table"),
		pending: make(map[game.PlayerID]bool),
		nudge:   make(chan struct{}, 1),
		done:    make(chan struct{}),
		idle:    make(chan struct{}),
	}

	go t.run(g.Changed())

	log.Printf("[Table %s] Created (skip_votes=%v)", t.ID, opts.Game.SkipVotes)
	return t, nil
}

// run is the actor loop. changed must be taken before any mutation it should observe.
func (t *Table) run(changed <-chan struct{}) {
	defer close(t.idle)
	for {
		select {
		case <-changed:
			changed = t.game.Changed()
			t.flushLedger()
			t.driveNPCs()
		case <-t.nudge:
			t.driveNPCs()
		case <-t.done:
			t.flushLedger()
			log.Printf("[Table %s] Actor stopped", t.ID)
			return
		}
	}
}

func (t *Table) startSpan(ctx context.Context, op string, player game.PlayerID, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	attrs = append(attrs,
		attribute.String("game.id", t.ID),
		attribute.String("player.id", string(player)),
	)
	return t.tracer.Start(ctx, "table."+op, trace.WithAttributes(attrs...))
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func (t *Table) isClosed() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.closed
}

func (t *Table) Register(ctx context.Context, u game.User) (p game.Player, key string, err error) {
	_, span := t.startSpan(ctx, "register", game.PlayerID(u.Name))
	defer func() { endSpan(span, err) }()
	if t.isClosed() {
		return game.Player{}, "", ErrTableClosed
	}
	return t.game.Register(u)
}

func (t *Table) Reconnect(ctx context.Context, key string) (p game.Player, err error) {
	_, span := t.startSpan(ctx, "reconnect", "")
	defer func() { endSpan(span, err) }()
	if t.isClosed() {
		return game.Player{}, ErrTableClosed
	}
	p, err = t.game.Reconnect(key)
	if err == nil {
		span.SetAttributes(attribute.String("player.id", string(p.ID)))
	}
	return p, err
}

func (t *Table) Disconnect(ctx context.Context, id game.PlayerID) {
	_, span := t.startSpan(ctx, "disconnect", id)
	defer span.End()
	t.game.Disconnect(id)
}

// Apply submits action for actor. Rejections are logged here and returned to
// the caller for reporting to the submitter only.
func (t *Table) Apply(ctx context.Context, actor game.PlayerID, action game.Action) (err error) {
	_, span := t.startSpan(ctx, "apply", actor, attribute.String("action.kind", string(action.Kind())))
	defer func() { endSpan(span, err) }()
	if t.isClosed() {
		return ErrTableClosed
	}
	if err = t.game.Apply(actor, action); err != nil {
		log.Printf("[Table %s] rejected %s from %q: %v", t.ID, action.Kind(), actor, err)
	}
	return err
}

// StateFrame returns the encoded State message for observer, cached per game version.
func (t *Table) StateFrame(observer game.PlayerID) ([]byte, bool, error) {
	if frame, ok := t.views.Get(viewKey{observer, t.game.Version()}); ok {
		return frame, true, nil
	}
	view, ok := t.game.View(observer)
	if !ok {
		return nil, false, nil
	}
	frame, err := codec.EncodeState(view)
	if err != nil {
		return nil, false, err
	}
	t.views.Add(viewKey{observer, view.Version}, frame)
	return frame, true, nil
}

func (t *Table) View(observer game.PlayerID) (game.View, bool) {
	return t.game.View(observer)
}

func (t *Table) Changed() <-chan struct{} { return t.game.Changed() }

func (t *Table) Version() uint64 { return t.game.Version() }

// Snapshot is unredacted; never send it to players.
func (t *Table) Snapshot() game.Snapshot { return t.game.Snapshot() }

// FillNPCs seats bots until the roster holds want players.
func (t *Table) FillNPCs(want int) error {
	if t.npcs == nil {
		return fmt.Errorf("NPC manager not available")
	}
	spawned, err := t.npcs.Fill(t.game, want)
	log.Printf("[Table %s] seated %d NPCs", t.ID, len(spawned))
	return err
}

func (t *Table) NPCManager() *npc.Manager {
	return t.npcs
}

// Stop shuts down the actor loop after a final ledger flush.
func (t *Table) Stop() {
	t.mu.Lock()
	t.closed = true
	t.mu.Unlock()
	t.stopOnce.Do(func() {
		close(t.done)
	})
	<-t.idle
}

func (t *Table) IsClosed() bool { return t.isClosed() }

// flushLedger appends history events the ledger has not seen and records the
// result once the round's GameOver event appears.
func (t *Table) flushLedger() {
	snap := t.game.Snapshot()

	t.mu.Lock()
	if snap.Round != t.flushedRound {
		t.flushedRound = snap.Round
		t.nextSeq = 0
	}
	from := t.nextSeq
	t.mu.Unlock()

	var (
		records []ledger.EventRecord
		over    *game.Event
	)
	now := time.Now().UTC()
	for i := range snap.History {
		ev := snap.History[i]
		if ev.Seq < from {
			continue
		}
		payload, err := json.Marshal(ev)
		if err != nil {
			log.Printf("[Table %s] marshal event seq=%d failed: %v", t.ID, ev.Seq, err)
			return
		}
		records = append(records, ledger.EventRecord{
			GameID:     t.ID,
			Round:      snap.Round,
			Seq:        ev.Seq,
			Kind:       string(ev.Kind),
			Payload:    payload,
			RecordedAt: now,
		})
		if ev.Kind == game.EventGameOver {
			over = &ev
		}
	}
	if len(records) == 0 {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), ledgerWriteTimeout)
	defer cancel()
	if err := t.ledger.AppendEvents(ctx, records); err != nil {
		log.Printf("[Table %s] ledger append failed: round=%d from=%d err=%v", t.ID, snap.Round, from, err)
		return
	}
	t.mu.Lock()
	if t.flushedRound == snap.Round {
		t.nextSeq = records[len(records)-1].Seq + 1
	}
	t.mu.Unlock()

	if over == nil {
		return
	}
	result := ledger.ResultRecord{
		GameID:     t.ID,
		Round:      snap.Round,
		Winner:     over.Winner.String(),
		FinishedAt: now,
	}
	for _, p := range snap.Players {
		result.Players = append(result.Players, ledger.ResultPlayer{ID: string(p.ID), Role: p.Role.String()})
	}
	if err := t.ledger.RecordResult(ctx, result); err != nil {
		log.Printf("[Table %s] ledger result failed: round=%d err=%v", t.ID, snap.Round, err)
	}
}

// driveNPCs schedules a decision for every bot that has a task and none in flight.
func (t *Table) driveNPCs() {
	if t.npcs == nil {
		return
	}
	for _, inst := range t.npcs.Instances() {
		if t.isClosed() {
			return
		}
		view, ok := t.game.View(inst.PlayerID)
		if !ok || view.Task == nil {
			continue
		}
		t.mu.Lock()
		busy := t.pending[inst.PlayerID]
		t.pending[inst.PlayerID] = true
		t.mu.Unlock()
		if !busy {
			t.scheduleNPCAction(inst)
		}
	}
}

// scheduleNPCAction decides after the bot's think delay from a fresh view and
// submits through Apply like any player.
func (t *Table) scheduleNPCAction(inst *npc.NPCInstance) {
	thinkDelay := t.npcs.GetThinkDelay(inst.PlayerID)
	go func() {
		defer func() {
			t.mu.Lock()
			delete(t.pending, inst.PlayerID)
			t.mu.Unlock()
			select {
			case t.nudge <- struct{}{}:
			default:
			}
		}()

		select {
		case <-time.After(thinkDelay):
		case <-t.done:
			return
		}

		view, ok := t.game.View(inst.PlayerID)
		if !ok || view.Task == nil {
			return
		}
		action := t.npcs.OnTurn(view)
		if action == nil {
			return
		}
		_ = t.Apply(context.Background(), inst.PlayerID, action)
	}()
}

package lobby

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"chancellery/apps/server/internal/ledger"
	"chancellery/apps/server/internal/table"
	"chancellery/game"
	"chancellery/game/npc"
)

const maxTables = 64

var ErrTooManyTables = errors.New("too many tables")

// Options are the defaults applied to every table the lobby opens.
type Options struct {
	DefaultID     string
	SkipVotes     bool
	Seed          int64
	Credentials   game.Credentials
	Ledger        ledger.Service
	ViewCacheSize int

	Personas *npc.PersonaRegistry
	NPCThink time.Duration
	// NPCFill seats bots in the default table until it holds this many players.
	NPCFill int
}

// Lobby manages all tables. The default table always exists.
type Lobby struct {
	mu     sync.RWMutex
	tables map[string]*table.Table
	opts   Options
}

// New creates a lobby and opens its default table.
func New(opts Options) (*Lobby, error) {
	if opts.Personas == nil {
		opts.Personas = npc.DefaultRegistry()
	}
	l := &Lobby{
		tables: make(map[string]*table.Table),
		opts:   opts,
	}
	t, err := l.open(opts.DefaultID, opts.Seed)
	if err != nil {
		return nil, err
	}
	if opts.NPCFill > 0 {
		if err := t.FillNPCs(opts.NPCFill); err != nil {
			t.Stop()
			return nil, fmt.Errorf("fill default table: %w", err)
		}
	}
	l.tables[t.ID] = t
	log.Printf("[Lobby] default table %s ready", t.ID)
	return l, nil
}

func (l *Lobby) open(id string, seed int64) (*table.Table, error) {
	return table.New(table.Options{
		Game: game.Config{
			ID:          id,
			SkipVotes:   l.opts.SkipVotes,
			Seed:        seed,
			Credentials: l.opts.Credentials,
		},
		Ledger:        l.opts.Ledger,
		ViewCacheSize: l.opts.ViewCacheSize,
		NPCs:          npc.NewManager(l.opts.Personas, seed, l.opts.NPCThink),
	})
}

// CreateTable opens a new table under a random id.
func (l *Lobby) CreateTable() (*table.Table, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.tables) >= maxTables {
		return nil, ErrTooManyTables
	}
	t, err := l.open(uuid.NewString(), 0)
	if err != nil {
		return nil, err
	}
	l.tables[t.ID] = t
	log.Printf("[Lobby] created table %s (%d open)", t.ID, len(l.tables))
	return t, nil
}

func (l *Lobby) Default() *table.Table {
	return l.GetTable(l.opts.DefaultID)
}

// GetTable returns a table by ID, or nil.
func (l *Lobby) GetTable(tableID string) *table.Table {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.tables[tableID]
}

func (l *Lobby) Known(tableID string) bool {
	return l.GetTable(tableID) != nil
}

// ListTables returns all table IDs, sorted.
func (l *Lobby) ListTables() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	ids := make([]string, 0, len(l.tables))
	for id := range l.tables {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Close stops every table.
func (l *Lobby) Close(ctx context.Context) {
	l.mu.Lock()
	tables := make([]*table.Table, 0, len(l.tables))
	for _, t := range l.tables {
		tables = append(tables, t)
	}
	l.mu.Unlock()

	for _, t := range tables {
		if ctx.Err() != nil {
			return
		}
		t.Stop()
	}
}

package game

import (
	"bytes"
	"fmt"
	"log"
	"math/rand"
	"strings"
	"sync"
	"time"

	"chancellery/law"
)

// Game is one shared game instance. Reads take the shared lock; every mutation
// validates and commits under the exclusive lock and then wakes all watchers.
type Game struct {
	cfg   Config
	creds Credentials

	mu sync.RWMutex

	board board
	phase Phase

	// GameOver has been appended to the history for the current game
	gameOverRecorded bool
	// number of games started on this instance
	round int

	notifier *Notifier
}

func NewGame(cfg Config) (*Game, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	creds := cfg.Credentials
	if creds == nil {
		creds = plainTokens{}
	}
	return &Game{
		cfg:      cfg,
		creds:    creds,
		board:    board{rng: rand.New(rand.NewSource(seed))},
		phase:    Uninitialized{},
		notifier: NewNotifier(),
	}, nil
}

func (g *Game) ID() string { return g.cfg.ID }

// Changed returns a channel closed on the next committed mutation.
func (g *Game) Changed() <-chan struct{} { return g.notifier.Changed() }

// Version counts committed mutations.
func (g *Game) Version() uint64 { return g.notifier.Version() }

// Register adds a player before the game starts and returns the access key
// needed to reconnect later.
func (g *Game) Register(u User) (Player, string, error) {
	if strings.TrimSpace(u.Name) == "" {
		return Player{}, "", ErrInvalidProfile
	}
	key, verifier, err := g.creds.Issue()
	if err != nil {
		return Player{}, "", fmt.Errorf("issue access key: %w", err)
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if g.phase.Kind() != PhaseUninitialized {
		return Player{}, "", ErrGameInProgress
	}
	id := playerIDFor(u)
	if g.board.player(id) != nil {
		return Player{}, "", ErrDuplicateRegistration
	}
	if len(g.board.players) >= MaxPlayers {
		return Player{}, "", ErrRosterFull
	}
	p := newPlayer(u, verifier)
	g.board.players = append(g.board.players, p)
	log.Printf("[Game %s] player %q joined (%d registered)", g.cfg.ID, p.ID, len(g.board.players))

	g.notifier.Broadcast()
	return p.public(), key, nil
}

// Reconnect resumes the session of a disconnected player holding key.
// Verifiers are checked without holding the game lock.
func (g *Game) Reconnect(key string) (Player, error) {
	type candidate struct {
		id       PlayerID
		verifier []byte
	}
	g.mu.RLock()
	candidates := make([]candidate, 0, len(g.board.players))
	for _, p := range g.board.players {
		candidates = append(candidates, candidate{p.ID, p.verifier})
	}
	g.mu.RUnlock()

	for _, c := range candidates {
		if !g.creds.Verify(c.verifier, key) {
			continue
		}
		return g.resume(c.id, c.verifier)
	}
	return Player{}, ErrUnknownCredential
}

func (g *Game) resume(id PlayerID, verifier []byte) (Player, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	p := g.board.player(id)
	if p == nil || !bytes.Equal(p.verifier, verifier) {
		return Player{}, ErrUnknownCredential
	}
	if p.Connected {
		return Player{}, ErrAlreadyConnected
	}
	p.Connected = true
	log.Printf("[Game %s] player %q reconnected", g.cfg.ID, p.ID)
	g.notifier.Broadcast()
	return p.public(), nil
}

// Disconnect removes the player before the game starts; afterwards it only
// marks them as disconnected.
func (g *Game) Disconnect(id PlayerID) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	i := g.board.index(id)
	if i < 0 {
		return false
	}
	if g.phase.Kind() == PhaseUninitialized {
		g.board.players = removeAt(g.board.players, i)
		log.Printf("[Game %s] player %q left before start", g.cfg.ID, id)
	} else {
		g.board.players[i].Connected = false
		log.Printf("[Game %s] player %q disconnected", g.cfg.ID, id)
	}
	g.notifier.Broadcast()
	return true
}

// Apply runs action on behalf of actor. Rejected actions leave the game untouched
// and fire no notification.
func (g *Game) Apply(actor PlayerID, action Action) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	p := g.board.player(actor)
	if p == nil {
		return ErrUnknownPlayer
	}

	if _, ok := action.(StartGame); ok {
		if err := g.startLocked(); err != nil {
			return err
		}
		log.Printf("[Game %s] started by %q with %d players, president %q",
			g.cfg.ID, actor, len(g.board.players), g.board.currentPresident)
		g.notifier.Broadcast()
		return nil
	}

	if _, over := g.winnerLocked(); over {
		return ErrGameOver
	}
	if !p.Alive {
		return ErrDeadPlayer
	}

	next, err := g.transitionLocked(p, action)
	if err != nil {
		return err
	}
	g.phase = next

	if w, over := g.winnerLocked(); over && !g.gameOverRecorded {
		g.board.record(Event{Kind: EventGameOver, Winner: w})
		g.gameOverRecorded = true
		log.Printf("[Game %s] game over, %s win", g.cfg.ID, w)
	}
	g.notifier.Broadcast()
	return nil
}

func (g *Game) startLocked() error {
	if g.phase.Kind() != PhaseUninitialized {
		if _, over := g.winnerLocked(); !over {
			return ErrGameInProgress
		}
	}
	n := len(g.board.players)
	slots, err := ExecutiveActionsFor(n)
	if err != nil {
		return err
	}

	b := &g.board
	roles := g.cfg.RoleOverride
	if roles == nil {
		roles = RolesFor(n, b.rng)
	} else if len(roles) != n {
		return fmt.Errorf("%w: roles set for %d players, %d registered", ErrPlayerCount, len(roles), n)
	}
	for i, role := range roles {
		b.players[i].Role = role
		b.players[i].Alive = true
	}
	b.executiveActions = slots
	if g.cfg.DeckOverride != nil {
		b.drawPile.Init(g.cfg.DeckOverride)
	} else {
		b.drawPile.Init(law.FullDeck())
		b.drawPile.Shuffle(b.rng)
	}
	b.discardPile = nil
	b.votingResult = nil
	b.passedFascist = 0
	b.passedLiberal = 0
	b.noGovernmentCounter = 0
	b.previousPresident = ""
	b.previousChancellor = ""
	b.nextPresidentByRules = ""
	b.history = nil
	b.nextSeq = 0
	b.reveal = nil
	g.gameOverRecorded = false
	g.round++

	first := b.players[b.rng.Intn(n)].ID
	if forced := g.cfg.FirstPresident; forced != "" && b.player(forced) != nil {
		first = forced
	}
	g.phase = b.openNomination(first)
	return nil
}

// Winner reports the winning faction once a win condition holds.
func (g *Game) Winner() (Faction, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.winnerLocked()
}

// Round counts games started on this instance; history Seq restarts with each round.
func (g *Game) Round() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.round
}

func (g *Game) Phase() PhaseKind {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.phase.Kind()
}

// Player returns a copy of a roster entry.
func (g *Game) Player(id PlayerID) (Player, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	p := g.board.player(id)
	if p == nil {
		return Player{}, false
	}
	return p.public(), true
}

// History returns public events with Seq >= from.
func (g *Game) History(from int) []Event {
	g.mu.RLock()
	defer g.mu.RUnlock()
	var out []Event
	for _, ev := range g.board.history {
		if ev.Seq >= from {
			out = append(out, ev.clone())
		}
	}
	return out
}

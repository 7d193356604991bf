package game

import (
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestRegister_Roster(t *testing.T) {
	g, err := NewGame(Config{ID: "001", Seed: 1})
	if err != nil {
		t.Fatalf("NewGame err: %v", err)
	}
	p, key, err := g.Register(User{Name: "  alice ", Color: "#f00"})
	if err != nil {
		t.Fatalf("Register err: %v", err)
	}
	if p.ID != "alice" {
		t.Fatalf("expected trimmed id alice, got %q", p.ID)
	}
	if key == "" {
		t.Fatal("expected access key")
	}
	if !p.Connected || !p.Alive {
		t.Fatalf("new player should be alive and connected: %+v", p)
	}

	if _, _, err := g.Register(User{Name: "alice"}); !errors.Is(err, ErrDuplicateRegistration) {
		t.Fatalf("expected ErrDuplicateRegistration, got %v", err)
	}
	if _, _, err := g.Register(User{Name: "   "}); !errors.Is(err, ErrInvalidProfile) {
		t.Fatalf("expected ErrInvalidProfile, got %v", err)
	}
	for i := 2; i <= MaxPlayers; i++ {
		if _, _, err := g.Register(User{Name: fmt.Sprintf("p%d", i)}); err != nil {
			t.Fatalf("Register p%d err: %v", i, err)
		}
	}
	if _, _, err := g.Register(User{Name: "late"}); !errors.Is(err, ErrRosterFull) {
		t.Fatalf("expected ErrRosterFull, got %v", err)
	}
}

func TestRegister_AfterStartRejected(t *testing.T) {
	g := startTestGame(t, 5)
	if _, _, err := g.Register(User{Name: "late"}); !errors.Is(err, ErrGameInProgress) {
		t.Fatalf("expected ErrGameInProgress, got %v", err)
	}
}

func TestNewGame_RequiresID(t *testing.T) {
	if _, err := NewGame(Config{}); err == nil {
		t.Fatal("expected error for empty id")
	}
}

func TestDisconnect_BeforeStartRemoves(t *testing.T) {
	g := newTestGame(t, 5, Config{})
	if !g.Disconnect("p3") {
		t.Fatal("expected p3 to be found")
	}
	if _, ok := g.Player("p3"); ok {
		t.Fatal("p3 should be removed before start")
	}
	if g.Disconnect("p3") {
		t.Fatal("second disconnect should not find p3")
	}
	// four players left
	if err := g.Apply("p1", StartGame{}); !errors.Is(err, ErrPlayerCount) {
		t.Fatalf("expected ErrPlayerCount, got %v", err)
	}
}

func TestDisconnect_AfterStartKeepsSeat(t *testing.T) {
	g := startTestGame(t, 5)
	before := g.Snapshot()

	g.Disconnect("p2")

	p, ok := g.Player("p2")
	if !ok {
		t.Fatal("p2 must stay on the roster")
	}
	if p.Connected {
		t.Fatal("p2 should be disconnected")
	}
	if !p.Alive {
		t.Fatal("disconnect must not kill")
	}
	after := g.Snapshot()
	if after.CurrentPresident != before.CurrentPresident || after.Phase.Kind() != before.Phase.Kind() {
		t.Fatal("disconnect must not change turn order")
	}
}

func TestReconnect(t *testing.T) {
	g, err := NewGame(Config{ID: "001", Seed: 1})
	if err != nil {
		t.Fatal(err)
	}
	_, key, err := g.Register(User{Name: "bob"})
	if err != nil {
		t.Fatal(err)
	}

	if _, err := g.Reconnect(key); !errors.Is(err, ErrAlreadyConnected) {
		t.Fatalf("expected ErrAlreadyConnected, got %v", err)
	}
	if _, err := g.Reconnect("not-a-key"); !errors.Is(err, ErrUnknownCredential) {
		t.Fatalf("expected ErrUnknownCredential, got %v", err)
	}

	for i := 2; i <= 5; i++ {
		if _, _, err := g.Register(User{Name: fmt.Sprintf("p%d", i)}); err != nil {
			t.Fatal(err)
		}
	}
	if err := g.Apply("bob", StartGame{}); err != nil {
		t.Fatal(err)
	}
	g.Disconnect("bob")

	p, err := g.Reconnect(key)
	if err != nil {
		t.Fatalf("Reconnect err: %v", err)
	}
	if p.ID != "bob" || !p.Connected {
		t.Fatalf("unexpected player after reconnect: %+v", p)
	}
}

type countingCredentials struct {
	issued int
}

func (c *countingCredentials) Issue() (string, []byte, error) {
	c.issued++
	key := fmt.Sprintf("key-%d", c.issued)
	return key, []byte("v:" + key), nil
}

func (c *countingCredentials) Verify(verifier []byte, key string) bool {
	return string(verifier) == "v:"+key
}

func TestRegister_UsesConfiguredCredentials(t *testing.T) {
	creds := &countingCredentials{}
	g, err := NewGame(Config{ID: "001", Credentials: creds})
	if err != nil {
		t.Fatal(err)
	}
	_, key, err := g.Register(User{Name: "carol"})
	if err != nil {
		t.Fatal(err)
	}
	if key != "key-1" {
		t.Fatalf("expected key-1, got %q", key)
	}
	g.Disconnect("carol") // removed: not started
	if _, err := g.Reconnect(key); !errors.Is(err, ErrUnknownCredential) {
		t.Fatalf("expected ErrUnknownCredential after leaving, got %v", err)
	}
}

func TestRound_CountsStarts(t *testing.T) {
	g := newTestGame(t, 5, Config{})
	if g.Round() != 0 {
		t.Fatalf("expected round 0 before start, got %d", g.Round())
	}
	if err := g.Apply("p1", StartGame{}); err != nil {
		t.Fatalf("start err: %v", err)
	}
	if err := g.Apply("p1", StartGame{}); !errors.Is(err, ErrGameInProgress) {
		t.Fatalf("expected ErrGameInProgress, got %v", err)
	}
	if g.Round() != 1 || g.Snapshot().Round != 1 {
		t.Fatalf("expected round 1, got %d", g.Round())
	}
}

// gatedCreds parks every Verify call until release is closed.
type gatedCreds struct {
	plainTokens
	entered chan struct{}
	release chan struct{}
}

func (c *gatedCreds) Verify(verifier []byte, key string) bool {
	select {
	case c.entered <- struct{}{}:
	default:
	}
	<-c.release
	return c.plainTokens.Verify(verifier, key)
}

func TestReconnect_VerifiesOutsideLock(t *testing.T) {
	creds := &gatedCreds{entered: make(chan struct{}, 1), release: make(chan struct{})}
	g := newTestGame(t, 5, Config{Credentials: creds})

	done := make(chan error, 1)
	go func() {
		_, err := g.Reconnect("unknown-key")
		done <- err
	}()
	<-creds.entered

	viewed := make(chan struct{})
	go func() {
		g.View("p1")
		g.Disconnect("p2")
		close(viewed)
	}()
	select {
	case <-viewed:
	case <-time.After(2 * time.Second):
		t.Fatal("game locked while a key was being verified")
	}

	close(creds.release)
	if err := <-done; !errors.Is(err, ErrUnknownCredential) {
		t.Fatalf("expected ErrUnknownCredential, got %v", err)
	}
}

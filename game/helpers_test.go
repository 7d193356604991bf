package game

import (
	"fmt"
	"slices"
	"testing"

	"github.com/stretchr/testify/require"

	"chancellery/law"
)

func newTestGame(t *testing.T, n int, cfg Config) *Game {
	t.Helper()
	if cfg.ID == "" {
		cfg.ID = "test"
	}
	if cfg.Seed == 0 {
		cfg.Seed = 42
	}
	g, err := NewGame(cfg)
	require.NoError(t, err)
	for i := 1; i <= n; i++ {
		_, _, err := g.Register(User{Name: fmt.Sprintf("p%d", i)})
		require.NoError(t, err)
	}
	return g
}

func startTestGame(t *testing.T, n int) *Game {
	t.Helper()
	g := newTestGame(t, n, Config{})
	require.NoError(t, g.Apply("p1", StartGame{}))
	return g
}

// rigDraw moves the given laws to the front of the draw pile, keeping the deck intact.
func rigDraw(t *testing.T, g *Game, front ...law.Law) {
	t.Helper()
	rest := slices.Clone([]law.Law(g.board.drawPile))
	for _, l := range front {
		i := slices.Index(rest, l)
		require.GreaterOrEqual(t, i, 0, "draw pile has no %s left", l)
		rest = slices.Delete(rest, i, i+1)
	}
	g.board.drawPile = append(slices.Clone(front), rest...)
}

// setPassed puts laws on the board straight from the draw pile.
func setPassed(t *testing.T, g *Game, fascist, liberal int) {
	t.Helper()
	take := func(l law.Law, n int) {
		for ; n > 0; n-- {
			i := slices.Index([]law.Law(g.board.drawPile), l)
			require.GreaterOrEqual(t, i, 0)
			g.board.drawPile = slices.Delete(g.board.drawPile, i, i+1)
		}
	}
	take(law.Fascist, fascist-g.board.passedFascist)
	take(law.Liberal, liberal-g.board.passedLiberal)
	g.board.passedFascist = fascist
	g.board.passedLiberal = liberal
}

func withRole(g *Game, role Role) []PlayerID {
	var ids []PlayerID
	for _, p := range g.board.players {
		if p.Role == role {
			ids = append(ids, p.ID)
		}
	}
	return ids
}

func leaderID(g *Game) PlayerID { return withRole(g, RoleFascistLeader)[0] }

// forcePresident reopens the nomination with id as president.
func forcePresident(g *Game, id PlayerID) {
	g.phase = g.board.openNomination(id)
}

// otherLiberal returns a living liberal that is not in exclude.
func otherLiberal(t *testing.T, g *Game, exclude ...PlayerID) PlayerID {
	t.Helper()
	for _, id := range withRole(g, RoleLiberal) {
		if !slices.Contains(exclude, id) && g.board.player(id).Alive {
			return id
		}
	}
	t.Fatalf("no liberal left outside %v", exclude)
	return ""
}

// elect nominates candidate and has every living player vote yes.
func elect(t *testing.T, g *Game, candidate PlayerID) {
	t.Helper()
	president := g.board.currentPresident
	require.NoError(t, g.Apply(president, NominateChancellor{Candidate: candidate}))
	voteAll(t, g, true)
}

func voteAll(t *testing.T, g *Game, yes bool) {
	t.Helper()
	for _, p := range g.board.players {
		if p.Alive {
			require.NoError(t, g.Apply(p.ID, CastVote{Yes: yes}))
		}
	}
}

func requireDeckIntact(t *testing.T, g *Game) {
	t.Helper()
	require.Equal(t, law.DeckSize, g.Snapshot().LawsAccountedFor(), "deck invariant")
}

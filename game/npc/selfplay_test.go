package npc

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"chancellery/game"
	"chancellery/law"
)

// playOut lets NPCs drive g until somebody wins, checking the deck after every step.
func playOut(t *testing.T, g *game.Game, m *Manager) game.Faction {
	t.Helper()
	for step := 0; step < 2000; step++ {
		if w, over := g.Winner(); over {
			return w
		}
		acted := false
		for _, p := range g.Snapshot().Players {
			view, ok := g.View(p.ID)
			require.True(t, ok)
			action := m.OnTurn(view)
			if action == nil {
				continue
			}
			require.NoError(t, g.Apply(p.ID, action), "step %d: %s by %s", step, action.Kind(), p.ID)
			require.Equal(t, law.DeckSize, g.Snapshot().LawsAccountedFor(), "deck invariant at step %d", step)
			acted = true
			break
		}
		require.True(t, acted, "nobody had a task in phase %s", g.Phase())
	}
	t.Fatal("game did not finish")
	return 0
}

func TestSelfPlay_AllTableSizes(t *testing.T) {
	for n := game.MinPlayers; n <= game.MaxPlayers; n++ {
		for seed := int64(1); seed <= 5; seed++ {
			t.Run(fmt.Sprintf("n=%d/seed=%d", n, seed), func(t *testing.T) {
				g, err := game.NewGame(game.Config{ID: "selfplay", Seed: seed})
				require.NoError(t, err)
				m := NewManager(DefaultRegistry(), seed, 0)
				spawned, err := m.Fill(g, n)
				require.NoError(t, err)
				require.Len(t, spawned, n)

				require.NoError(t, g.Apply(spawned[0].PlayerID, game.StartGame{}))
				w := playOut(t, g, m)

				snap := g.Snapshot()
				last := snap.History[len(snap.History)-1]
				require.Equal(t, game.EventGameOver, last.Kind)
				require.Equal(t, w, last.Winner)
				living := 0
				for _, p := range snap.Players {
					if p.Alive {
						living++
					}
				}
				require.GreaterOrEqual(t, living, n-2)
			})
		}
	}
}

func TestManager_FillReportsShortRegistry(t *testing.T) {
	g, err := game.NewGame(game.Config{ID: "short", Seed: 1})
	require.NoError(t, err)
	r := NewRegistry()
	require.NoError(t, r.LoadFromJSON([]byte(`[{"id":"solo","name":"Solo"},{"id":"","name":"skipped"}]`)))
	require.Equal(t, 1, r.Count())

	m := NewManager(r, 1, 0)
	_, err = m.Fill(g, 5)
	require.Error(t, err)
	require.True(t, m.IsNPC("Solo"))
}

package game

import (
	"maps"
	"slices"

	"chancellery/law"
)

// Snapshot is an unredacted copy of the whole game, for audits and tests.
// It must never be sent to players.
type Snapshot struct {
	ID      string
	Version uint64
	Round   int
	Phase   Phase

	Players []Player

	DrawPile    []law.Law
	DiscardPile []law.Law

	ExecutiveActions     [ExecutiveSlots]ExecutiveAction
	VotingResult         map[PlayerID]bool
	PassedFascist        int
	PassedLiberal        int
	NoGovernmentCounter  int
	PreviousPresident    PlayerID
	PreviousChancellor   PlayerID
	CurrentPresident     PlayerID
	NextPresidentByRules PlayerID

	History []Event
	Reveal  *Reveal
}

// HeldLaws returns the laws sitting in the current phase, outside both piles.
func (s Snapshot) HeldLaws() []law.Law {
	return s.Phase.heldLaws()
}

// LawsAccountedFor counts every law in the piles, the phase and on the board.
func (s Snapshot) LawsAccountedFor() int {
	return len(s.DrawPile) + len(s.DiscardPile) + len(s.HeldLaws()) + s.PassedFascist + s.PassedLiberal
}

func (g *Game) Snapshot() Snapshot {
	g.mu.RLock()
	defer g.mu.RUnlock()

	b := &g.board
	players := make([]Player, len(b.players))
	for i, p := range b.players {
		players[i] = p.public()
	}
	history := make([]Event, len(b.history))
	for i, ev := range b.history {
		history[i] = ev.clone()
	}
	var reveal *Reveal
	if b.reveal != nil {
		r := *b.reveal
		reveal = &r
	}
	return Snapshot{
		ID:                   g.cfg.ID,
		Version:              g.notifier.Version(),
		Round:                g.round,
		Phase:                g.phase.clone(),
		Players:              players,
		DrawPile:             slices.Clone([]law.Law(b.drawPile)),
		DiscardPile:          slices.Clone([]law.Law(b.discardPile)),
		ExecutiveActions:     b.executiveActions,
		VotingResult:         maps.Clone(b.votingResult),
		PassedFascist:        b.passedFascist,
		PassedLiberal:        b.passedLiberal,
		NoGovernmentCounter:  b.noGovernmentCounter,
		PreviousPresident:    b.previousPresident,
		PreviousChancellor:   b.previousChancellor,
		CurrentPresident:     b.currentPresident,
		NextPresidentByRules: b.nextPresidentByRules,
		History:              history,
		Reveal:               reveal,
	}
}

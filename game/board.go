package game

import (
	"math/rand"

	"chancellery/law"
)

// Reveal records the faction a president learned through RevealFaction.
// Only the observer sees it.
type Reveal struct {
	Observer PlayerID
	Target   PlayerID
	Faction  Faction
}

// board is the authoritative game data outside the current phase.
type board struct {
	rng *rand.Rand

	// registration order is the seating order
	players []*Player

	drawPile    law.LawList
	discardPile law.LawList

	executiveActions [ExecutiveSlots]ExecutiveAction
	votingResult     map[PlayerID]bool

	passedFascist       int
	passedLiberal       int
	noGovernmentCounter int

	previousPresident    PlayerID
	previousChancellor   PlayerID
	currentPresident     PlayerID
	nextPresidentByRules PlayerID

	history []Event
	nextSeq int

	reveal *Reveal
}

func (b *board) player(id PlayerID) *Player {
	if i := b.index(id); i >= 0 {
		return b.players[i]
	}
	return nil
}

func (b *board) index(id PlayerID) int {
	for i, p := range b.players {
		if p.ID == id {
			return i
		}
	}
	return -1
}

func (b *board) livingPlayer(id PlayerID) *Player {
	p := b.player(id)
	if p == nil || !p.Alive {
		return nil
	}
	return p
}

func (b *board) livingCount() int {
	n := 0
	for _, p := range b.players {
		if p.Alive {
			n++
		}
	}
	return n
}

func (b *board) leader() *Player {
	for _, p := range b.players {
		if p.Role == RoleFascistLeader {
			return p
		}
	}
	return nil
}

// ensureDrawable moves the discard pile back under the draw pile, shuffled,
// when fewer than n laws are left to draw.
func (b *board) ensureDrawable(n int) {
	if b.drawPile.Count() >= n {
		return
	}
	b.drawPile.Add(b.discardPile.Drain()...)
	b.drawPile.Shuffle(b.rng)
}

func (b *board) draw(n int) ([]law.Law, error) {
	b.ensureDrawable(n)
	laws, ok := b.drawPile.PopLaws(n)
	if !ok {
		return nil, InvalidStateError("law deck exhausted")
	}
	return laws, nil
}

func (b *board) peek(n int) []law.Law {
	b.ensureDrawable(n)
	return b.drawPile.Peek(n)
}

func (b *board) record(ev Event) {
	ev.Seq = b.nextSeq
	b.nextSeq++
	b.history = append(b.history, ev)
}

// rotatePresident consumes the president saved by a special election, otherwise
// picks the next living player clockwise from the current president.
func (b *board) rotatePresident() PlayerID {
	if next := b.nextPresidentByRules; next != "" {
		b.nextPresidentByRules = ""
		if b.livingPlayer(next) != nil {
			return next
		}
	}
	n := len(b.players)
	start := b.index(b.currentPresident)
	for step := 1; step <= n; step++ {
		p := b.players[(start+step+n)%n]
		if p.Alive {
			return p.ID
		}
	}
	return b.currentPresident
}

// openNomination makes president current and lists the chancellors they may nominate.
// Term limits relax when they would leave nobody to choose.
func (b *board) openNomination(president PlayerID) ChooseChancellor {
	b.currentPresident = president

	eligible := func(excludePrevPresident, excludePrevChancellor bool) []PlayerID {
		var ids []PlayerID
		for _, p := range b.players {
			switch {
			case !p.Alive, p.ID == president:
				continue
			case excludePrevPresident && p.ID == b.previousPresident:
				continue
			case excludePrevChancellor && p.ID == b.previousChancellor:
				continue
			}
			ids = append(ids, p.ID)
		}
		return ids
	}

	options := eligible(true, true)
	if len(options) == 0 {
		options = eligible(false, true)
	}
	if len(options) == 0 {
		options = eligible(false, false)
	}
	return ChooseChancellor{Options: options}
}

func (b *board) nextNomination() Phase {
	return b.openNomination(b.rotatePresident())
}

// enactLaw places a law on the board. chancellor is empty for a forced enactment,
// which never grants an executive action.
func (b *board) enactLaw(l law.Law, chancellor PlayerID) Phase {
	b.record(Event{
		Kind:       EventPlayedLaw,
		President:  b.currentPresident,
		Chancellor: chancellor,
		Law:        l,
	})
	if chancellor == "" {
		b.noGovernmentCounter = 0
	}

	if l == law.Liberal {
		b.passedLiberal++
		return b.nextNomination()
	}

	b.passedFascist++
	if chancellor == "" || b.passedFascist > ExecutiveSlots {
		return b.nextNomination()
	}
	action := b.executiveActions[b.passedFascist-1]
	if action == ActionNone {
		return b.nextNomination()
	}
	task := ExecutiveTask{Action: action}
	if action == ActionRevealNextCards {
		task.NextLaws = b.peek(PeekSize)
	}
	return ExecutiveActionPending{Chancellor: chancellor, Task: task}
}

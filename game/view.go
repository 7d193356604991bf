package game

import (
	"encoding/json"
	"maps"
	"slices"
)

// PlayerView is a roster entry as one observer may see it. Role and Faction are
// nil when hidden from that observer.
type PlayerView struct {
	ID        PlayerID `json:"id"`
	User      User     `json:"user"`
	Alive     bool     `json:"alive"`
	Connected bool     `json:"connected"`
	Role      *Role    `json:"role"`
	Faction   *Faction `json:"faction"`
}

type BoardView struct {
	Players             []PlayerView                    `json:"players"`
	DrawPile            int                             `json:"draw_pile"`
	DiscardPile         int                             `json:"discard_pile"`
	ExecutiveActions    [ExecutiveSlots]ExecutiveAction `json:"executive_actions"`
	VotingResult        map[PlayerID]bool               `json:"voting_result"`
	PassedFascist       int                             `json:"passed_fascist_laws"`
	PassedLiberal       int                             `json:"passed_liberal_laws"`
	NoGovernmentCounter int                             `json:"no_government_counter"`
	PreviousPresident   *PlayerID                       `json:"previous_president"`
	PreviousChancellor  *PlayerID                       `json:"previous_chancellor"`
	CurrentPresident    *PlayerID                       `json:"current_president"`
	NextPresident       *PlayerID                       `json:"next_president_by_rules"`
	History             []Event                         `json:"history"`
	Winner              *Faction                        `json:"winner"`
}

// PhaseView is the public part of the current phase. Laws and individual ballots
// never appear here.
type PhaseView struct {
	Kind       PhaseKind
	Options    []PlayerID
	Candidate  PlayerID
	Voted      []PlayerID
	Chancellor PlayerID
	CanAskVeto bool
	Action     ExecutiveAction
}

func (v PhaseView) MarshalJSON() ([]byte, error) {
	var value any
	switch v.Kind {
	case PhaseChooseChancellor:
		value = struct {
			Options []PlayerID `json:"options"`
		}{nonNil(v.Options)}
	case PhaseVoteChancellor:
		value = struct {
			Chancellor PlayerID   `json:"chancellor"`
			Voted      []PlayerID `json:"voted"`
		}{v.Candidate, nonNil(v.Voted)}
	case PhasePresidentChooseLaws, PhaseAskVeto:
		value = struct {
			Chancellor PlayerID `json:"chancellor"`
		}{v.Chancellor}
	case PhaseChancellorChooseLaws:
		value = struct {
			Chancellor PlayerID `json:"chancellor"`
			CanAskVeto bool     `json:"can_ask_veto"`
		}{v.Chancellor, v.CanAskVeto}
	case PhaseExecutiveAction:
		value = struct {
			Chancellor PlayerID        `json:"chancellor"`
			Action     ExecutiveAction `json:"action"`
		}{v.Chancellor, v.Action}
	}
	return json.Marshal(struct {
		Type  PhaseKind `json:"type"`
		Value any       `json:"value,omitempty"`
	}{v.Kind, value})
}

// View is everything one observer is allowed to know right now.
type View struct {
	Me      PlayerID  `json:"me"`
	Version uint64    `json:"version"`
	Board   BoardView `json:"board"`
	Phase   PhaseView `json:"state"`
	Task    *Task     `json:"task"`
}

// View projects the game for observer. ok is false when observer is not on the roster.
func (g *Game) View(observer PlayerID) (View, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	me := g.board.player(observer)
	if me == nil {
		return View{}, false
	}
	return View{
		Me:      me.ID,
		Version: g.notifier.Version(),
		Board:   g.boardViewLocked(me),
		Phase:   g.phaseViewLocked(),
		Task:    g.taskLocked(me),
	}, true
}

// Task returns the decision observer owes the game, if any.
func (g *Game) Task(observer PlayerID) (*Task, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	me := g.board.player(observer)
	if me == nil {
		return nil, false
	}
	return g.taskLocked(me), true
}

// canSee reports whether observer may learn target's role.
func (g *Game) canSeeLocked(observer, target *Player) bool {
	if observer.ID == target.ID {
		return true
	}
	if g.phase.Kind() == PhaseUninitialized {
		return false
	}
	if _, over := g.winnerLocked(); over {
		return true
	}
	switch observer.Role {
	case RoleFascist:
		return true
	case RoleFascistLeader:
		return len(g.board.players) < LeaderKnowsTeamBelow
	}
	return false
}

func (g *Game) boardViewLocked(me *Player) BoardView {
	b := &g.board
	started := g.phase.Kind() != PhaseUninitialized

	players := make([]PlayerView, 0, len(b.players))
	for _, p := range b.players {
		pv := PlayerView{ID: p.ID, User: p.User, Alive: p.Alive, Connected: p.Connected}
		if started && g.canSeeLocked(me, p) {
			role, faction := p.Role, p.Role.Faction()
			pv.Role, pv.Faction = &role, &faction
		} else if r := b.reveal; started && r != nil && r.Observer == me.ID && r.Target == p.ID {
			faction := r.Faction
			pv.Faction = &faction
		}
		players = append(players, pv)
	}

	history := make([]Event, len(b.history))
	for i, ev := range b.history {
		history[i] = ev.clone()
	}

	bv := BoardView{
		Players:             players,
		DrawPile:            b.drawPile.Count(),
		DiscardPile:         b.discardPile.Count(),
		ExecutiveActions:    b.executiveActions,
		VotingResult:        maps.Clone(b.votingResult),
		PassedFascist:       b.passedFascist,
		PassedLiberal:       b.passedLiberal,
		NoGovernmentCounter: b.noGovernmentCounter,
		PreviousPresident:   optionalID(b.previousPresident),
		PreviousChancellor:  optionalID(b.previousChancellor),
		NextPresident:       optionalID(b.nextPresidentByRules),
		History:             history,
	}
	if started {
		bv.CurrentPresident = optionalID(b.currentPresident)
	}
	if w, over := g.winnerLocked(); over {
		bv.Winner = &w
	}
	return bv
}

func (g *Game) phaseViewLocked() PhaseView {
	switch ph := g.phase.(type) {
	case ChooseChancellor:
		return PhaseView{Kind: ph.Kind(), Options: slices.Clone(ph.Options)}
	case VoteChancellor:
		var voted []PlayerID
		for _, p := range g.board.players {
			if v, ok := ph.Ballot[p.ID]; ok && v != BallotUndecided {
				voted = append(voted, p.ID)
			}
		}
		return PhaseView{Kind: ph.Kind(), Candidate: ph.Candidate, Voted: voted}
	case PresidentChooseLaws:
		return PhaseView{Kind: ph.Kind(), Chancellor: ph.Chancellor}
	case ChancellorChooseLaws:
		return PhaseView{Kind: ph.Kind(), Chancellor: ph.Chancellor, CanAskVeto: ph.CanAskVeto}
	case ExecutiveActionPending:
		return PhaseView{Kind: ph.Kind(), Chancellor: ph.Chancellor, Action: ph.Task.Action}
	case AskVeto:
		return PhaseView{Kind: ph.Kind(), Chancellor: ph.Chancellor}
	}
	return PhaseView{Kind: PhaseUninitialized}
}

func (g *Game) taskLocked(me *Player) *Task {
	if _, over := g.winnerLocked(); over || !me.Alive {
		return nil
	}
	president := g.board.currentPresident

	switch ph := g.phase.(type) {
	case ChooseChancellor:
		if me.ID == president {
			return &Task{Kind: TaskChooseChancellor, Options: slices.Clone(ph.Options)}
		}
	case VoteChancellor:
		if v, ok := ph.Ballot[me.ID]; ok && v == BallotUndecided {
			return &Task{Kind: TaskVote, President: president, Chancellor: ph.Candidate}
		}
	case PresidentChooseLaws:
		if me.ID == president {
			return &Task{Kind: TaskPickLaws, Laws: slices.Clone(ph.Laws[:])}
		}
	case ChancellorChooseLaws:
		if me.ID == ph.Chancellor {
			return &Task{Kind: TaskPickLaws, Laws: slices.Clone(ph.Laws[:]), CanVeto: ph.CanAskVeto}
		}
	case AskVeto:
		if me.ID == president {
			return &Task{Kind: TaskConfirmVeto, Chancellor: ph.Chancellor, Laws: slices.Clone(ph.Laws[:])}
		}
	case ExecutiveActionPending:
		if me.ID == president {
			return &Task{
				Kind:     TaskExecutiveAction,
				Action:   ph.Task.Action,
				NextLaws: slices.Clone(ph.Task.NextLaws),
			}
		}
	}
	return nil
}

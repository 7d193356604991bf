package game

import (
	"maps"
	"slices"

	"chancellery/law"
)

// transitionLocked validates action against the current phase and returns the next phase.
// Board mutations happen only after every check for the matched arm has passed.
func (g *Game) transitionLocked(actor *Player, action Action) (Phase, error) {
	switch ph := g.phase.(type) {
	case ChooseChancellor:
		if a, ok := action.(NominateChancellor); ok {
			return g.nominateLocked(actor, ph, a)
		}
	case VoteChancellor:
		if a, ok := action.(CastVote); ok {
			return g.voteLocked(actor, ph, a)
		}
	case PresidentChooseLaws:
		if a, ok := action.(PickLaws); ok {
			return g.presidentDiscardLocked(actor, ph, a)
		}
	case ChancellorChooseLaws:
		switch a := action.(type) {
		case PickLaws:
			return g.chancellorEnactLocked(actor, ph, a)
		case RequestVeto:
			return g.requestVetoLocked(actor, ph, a)
		}
	case AskVeto:
		if a, ok := action.(RequestVeto); ok {
			return g.answerVetoLocked(actor, ph, a)
		}
	case ExecutiveActionPending:
		if a, ok := action.(ExecuteAction); ok {
			return g.executeLocked(actor, ph, a)
		}
	case Uninitialized:
	}
	return nil, rejectf("%s is not accepted during %s", action.Kind(), g.phase.Kind())
}

func (g *Game) requirePresident(actor *Player) error {
	if actor.ID != g.board.currentPresident {
		return ErrNotYourTurn
	}
	return nil
}

func (g *Game) nominateLocked(actor *Player, ph ChooseChancellor, a NominateChancellor) (Phase, error) {
	if err := g.requirePresident(actor); err != nil {
		return nil, err
	}
	if !slices.Contains(ph.Options, a.Candidate) {
		return nil, rejectf("%q cannot be nominated", a.Candidate)
	}

	b := &g.board
	if g.cfg.SkipVotes {
		laws, err := b.draw(LawsPerDraw)
		if err != nil {
			return nil, err
		}
		b.record(Event{Kind: EventChooseChancellor, President: actor.ID, Chancellor: a.Candidate})
		b.votingResult = nil
		b.noGovernmentCounter = 0
		return PresidentChooseLaws{Laws: [LawsPerDraw]law.Law(laws), Chancellor: a.Candidate}, nil
	}

	b.record(Event{Kind: EventChooseChancellor, President: actor.ID, Chancellor: a.Candidate})
	b.votingResult = nil
	ballot := make(map[PlayerID]Ballot, len(b.players))
	for _, p := range b.players {
		if p.Alive {
			ballot[p.ID] = BallotUndecided
		}
	}
	return VoteChancellor{Candidate: a.Candidate, Ballot: ballot}, nil
}

func (g *Game) voteLocked(actor *Player, ph VoteChancellor, a CastVote) (Phase, error) {
	if _, ok := ph.Ballot[actor.ID]; !ok {
		return nil, rejectf("%q has no vote in this election", actor.ID)
	}
	b := &g.board

	ballot := maps.Clone(ph.Ballot)
	if a.Yes {
		ballot[actor.ID] = BallotYes
	} else {
		ballot[actor.ID] = BallotNo
	}

	var yes, no int
	for _, v := range ballot {
		switch v {
		case BallotYes:
			yes++
		case BallotNo:
			no++
		}
	}
	if yes+no < len(ballot) {
		return VoteChancellor{Candidate: ph.Candidate, Ballot: ballot}, nil
	}

	success := yes > no || (yes == no && ballot[b.currentPresident] == BallotYes)
	if success {
		laws, err := b.draw(LawsPerDraw)
		if err != nil {
			return nil, err
		}
		g.recordVoteLocked(ph.Candidate, ballot, true)
		b.noGovernmentCounter = 0
		return PresidentChooseLaws{Laws: [LawsPerDraw]law.Law(laws), Chancellor: ph.Candidate}, nil
	}

	if b.noGovernmentCounter+1 >= FailedElectionLimit {
		forced, err := b.draw(1)
		if err != nil {
			return nil, err
		}
		g.recordVoteLocked(ph.Candidate, ballot, false)
		b.noGovernmentCounter++
		return b.enactLaw(forced[0], ""), nil
	}
	g.recordVoteLocked(ph.Candidate, ballot, false)
	b.noGovernmentCounter++
	return b.nextNomination(), nil
}

func (g *Game) recordVoteLocked(candidate PlayerID, ballot map[PlayerID]Ballot, success bool) {
	votes := make(map[PlayerID]bool, len(ballot))
	for id, v := range ballot {
		votes[id] = v == BallotYes
	}
	g.board.votingResult = votes
	g.board.record(Event{
		Kind:       EventVote,
		President:  g.board.currentPresident,
		Chancellor: candidate,
		Votes:      maps.Clone(votes),
		Success:    success,
	})
}

// checkPick verifies kept+discarded is exactly the laws on offer.
func checkPick(offered []law.Law, a PickLaws, keep int) error {
	if len(a.Kept) != keep {
		return rejectf("expected %d kept laws, got %d", keep, len(a.Kept))
	}
	picked := append(slices.Clone(a.Kept), a.Discarded)
	if !law.SameMultiset(picked, offered) {
		return rejectf("picked laws do not match the laws on offer")
	}
	return nil
}

func (g *Game) presidentDiscardLocked(actor *Player, ph PresidentChooseLaws, a PickLaws) (Phase, error) {
	if err := g.requirePresident(actor); err != nil {
		return nil, err
	}
	if err := checkPick(ph.Laws[:], a, 2); err != nil {
		return nil, err
	}
	b := &g.board
	b.discardPile.Add(a.Discarded)
	b.votingResult = nil
	return ChancellorChooseLaws{
		Laws:       [2]law.Law{a.Kept[0], a.Kept[1]},
		Chancellor: ph.Chancellor,
		CanAskVeto: b.passedFascist >= VetoUnlockFascistLaws,
	}, nil
}

func (g *Game) chancellorEnactLocked(actor *Player, ph ChancellorChooseLaws, a PickLaws) (Phase, error) {
	if actor.ID != ph.Chancellor {
		return nil, ErrNotYourTurn
	}
	if err := checkPick(ph.Laws[:], a, 1); err != nil {
		return nil, err
	}
	b := &g.board
	b.discardPile.Add(a.Discarded)
	b.previousPresident = b.currentPresident
	b.previousChancellor = ph.Chancellor
	return b.enactLaw(a.Kept[0], ph.Chancellor), nil
}

func (g *Game) requestVetoLocked(actor *Player, ph ChancellorChooseLaws, a RequestVeto) (Phase, error) {
	if actor.ID != ph.Chancellor {
		return nil, ErrNotYourTurn
	}
	if !a.Accept {
		return nil, rejectf("a veto request must ask for the veto")
	}
	if !ph.CanAskVeto {
		return nil, rejectf("veto is not available")
	}
	return AskVeto{Laws: ph.Laws, Chancellor: ph.Chancellor}, nil
}

func (g *Game) answerVetoLocked(actor *Player, ph AskVeto, a RequestVeto) (Phase, error) {
	if err := g.requirePresident(actor); err != nil {
		return nil, err
	}
	if !a.Accept {
		return ChancellorChooseLaws{Laws: ph.Laws, Chancellor: ph.Chancellor, CanAskVeto: false}, nil
	}
	b := &g.board
	b.record(Event{Kind: EventVeto, President: b.currentPresident, Chancellor: ph.Chancellor})
	b.discardPile.Add(ph.Laws[:]...)
	b.previousPresident = b.currentPresident
	b.previousChancellor = ph.Chancellor
	return b.nextNomination(), nil
}

func (g *Game) executeLocked(actor *Player, ph ExecutiveActionPending, a ExecuteAction) (Phase, error) {
	if err := g.requirePresident(actor); err != nil {
		return nil, err
	}
	if a.Action != ph.Task.Action {
		return nil, rejectf("pending action is %s, got %s", ph.Task.Action, a.Action)
	}
	b := &g.board

	var target *Player
	if a.Action != ActionRevealNextCards {
		target = b.livingPlayer(a.Target)
		if target == nil {
			return nil, rejectf("%q is not a living player", a.Target)
		}
		if target.ID == actor.ID {
			return nil, rejectf("the president cannot target themselves")
		}
	}

	ev := Event{Kind: EventExecutiveAction, President: actor.ID, Action: a.Action}
	if target != nil {
		ev.Target = target.ID
	}
	b.record(ev)

	switch a.Action {
	case ActionKill:
		target.kill()
	case ActionRevealFaction:
		b.reveal = &Reveal{Observer: actor.ID, Target: target.ID, Faction: target.Role.Faction()}
	case ActionDeterminePresident:
		// the player next in line presides after the target's round
		b.nextPresidentByRules = b.rotatePresident()
		return b.openNomination(target.ID), nil
	case ActionRevealNextCards:
	}
	return b.nextNomination(), nil
}

package game

// winnerLocked evaluates the win conditions in order: six fascist laws, five liberal
// laws, the leader elected chancellor after three fascist laws, then no living leader.
func (g *Game) winnerLocked() (Faction, bool) {
	if g.phase.Kind() == PhaseUninitialized {
		return 0, false
	}
	b := &g.board
	if b.passedFascist >= FascistLawsToWin {
		return FactionFascist, true
	}
	if b.passedLiberal >= LiberalLawsToWin {
		return FactionLiberal, true
	}
	leader := b.leader()
	if leader != nil && leader.Alive && b.passedFascist >= LeaderElectionDanger {
		if chancellor, ok := electedChancellor(g.phase); ok && chancellor == leader.ID {
			return FactionFascist, true
		}
	}
	if leader == nil || !leader.Alive {
		return FactionLiberal, true
	}
	return 0, false
}

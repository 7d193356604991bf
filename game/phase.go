package game

import (
	"maps"
	"slices"

	"chancellery/law"
)

type PhaseKind string

const (
	PhaseUninitialized        PhaseKind = "Uninit"
	PhaseChooseChancellor     PhaseKind = "ChooseChancellor"
	PhaseVoteChancellor       PhaseKind = "VoteChancellor"
	PhasePresidentChooseLaws  PhaseKind = "PresidentChooseLaws"
	PhaseChancellorChooseLaws PhaseKind = "ChancellorChooseLaws"
	PhaseExecutiveAction      PhaseKind = "ExecutiveAction"
	PhaseAskVeto              PhaseKind = "AskVeto"
)

// Phase is the closed set of game states. Values are immutable once committed;
// transitions build a new value.
type Phase interface {
	Kind() PhaseKind
	// laws held outside the piles while in this phase
	heldLaws() []law.Law
	clone() Phase
}

type Ballot byte

const (
	BallotUndecided Ballot = iota
	BallotYes
	BallotNo
)

type Uninitialized struct{}

type ChooseChancellor struct {
	Options []PlayerID
}

type VoteChancellor struct {
	Candidate PlayerID
	// living players only
	Ballot map[PlayerID]Ballot
}

type PresidentChooseLaws struct {
	Laws       [LawsPerDraw]law.Law
	Chancellor PlayerID
}

type ChancellorChooseLaws struct {
	Laws       [2]law.Law
	Chancellor PlayerID
	CanAskVeto bool
}

type ExecutiveActionPending struct {
	Chancellor PlayerID
	Task       ExecutiveTask
}

type AskVeto struct {
	Laws       [2]law.Law
	Chancellor PlayerID
}

// ExecutiveTask is the privilege the president must use. NextLaws is only set for RevealNextCards.
type ExecutiveTask struct {
	Action   ExecutiveAction
	NextLaws []law.Law
}

func (Uninitialized) Kind() PhaseKind          { return PhaseUninitialized }
func (ChooseChancellor) Kind() PhaseKind       { return PhaseChooseChancellor }
func (VoteChancellor) Kind() PhaseKind         { return PhaseVoteChancellor }
func (PresidentChooseLaws) Kind() PhaseKind    { return PhasePresidentChooseLaws }
func (ChancellorChooseLaws) Kind() PhaseKind   { return PhaseChancellorChooseLaws }
func (ExecutiveActionPending) Kind() PhaseKind { return PhaseExecutiveAction }
func (AskVeto) Kind() PhaseKind                { return PhaseAskVeto }

func (Uninitialized) heldLaws() []law.Law          { return nil }
func (ChooseChancellor) heldLaws() []law.Law       { return nil }
func (VoteChancellor) heldLaws() []law.Law         { return nil }
func (p PresidentChooseLaws) heldLaws() []law.Law  { return p.Laws[:] }
func (p ChancellorChooseLaws) heldLaws() []law.Law { return p.Laws[:] }
func (ExecutiveActionPending) heldLaws() []law.Law { return nil }
func (p AskVeto) heldLaws() []law.Law              { return p.Laws[:] }

func (p Uninitialized) clone() Phase { return p }
func (p ChooseChancellor) clone() Phase {
	return ChooseChancellor{Options: slices.Clone(p.Options)}
}
func (p VoteChancellor) clone() Phase {
	return VoteChancellor{Candidate: p.Candidate, Ballot: maps.Clone(p.Ballot)}
}
func (p PresidentChooseLaws) clone() Phase  { return p }
func (p ChancellorChooseLaws) clone() Phase { return p }
func (p ExecutiveActionPending) clone() Phase {
	p.Task.NextLaws = slices.Clone(p.Task.NextLaws)
	return p
}
func (p AskVeto) clone() Phase { return p }

// electedChancellor is the chancellor of a government that has been voted in and
// still holds laws.
func electedChancellor(p Phase) (PlayerID, bool) {
	switch ph := p.(type) {
	case PresidentChooseLaws:
		return ph.Chancellor, true
	case ChancellorChooseLaws:
		return ph.Chancellor, true
	case AskVeto:
		return ph.Chancellor, true
	}
	return "", false
}

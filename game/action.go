package game

import "chancellery/law"

type ActionKind string

const (
	ActionKindStart            ActionKind = "Start"
	ActionKindChooseChancellor ActionKind = "ChooseChancellor"
	ActionKindVote             ActionKind = "Vote"
	ActionKindPickedLaws       ActionKind = "PickedLaws"
	ActionKindVeto             ActionKind = "Veto"
	ActionKindExecuteAction    ActionKind = "ExecuteAction"
)

// Action is something a player asks the game to do.
type Action interface {
	Kind() ActionKind
}

type StartGame struct{}

type NominateChancellor struct {
	Candidate PlayerID
}

type CastVote struct {
	Yes bool
}

// PickLaws is used by both the president (two kept) and the chancellor (one kept).
type PickLaws struct {
	Kept      []law.Law
	Discarded law.Law
}

// RequestVeto: the chancellor asks with Accept=true; the president answers.
type RequestVeto struct {
	Accept bool
}

// ExecuteAction carries a target for Kill, RevealFaction and DeterminePresident.
type ExecuteAction struct {
	Action ExecutiveAction
	Target PlayerID
}

func (StartGame) Kind() ActionKind          { return ActionKindStart }
func (NominateChancellor) Kind() ActionKind { return ActionKindChooseChancellor }
func (CastVote) Kind() ActionKind           { return ActionKindVote }
func (PickLaws) Kind() ActionKind           { return ActionKindPickedLaws }
func (RequestVeto) Kind() ActionKind        { return ActionKindVeto }
func (ExecuteAction) Kind() ActionKind      { return ActionKindExecuteAction }

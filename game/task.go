package game

import (
	"encoding/json"

	"chancellery/law"
)

type TaskKind string

const (
	TaskChooseChancellor TaskKind = "ChooseChancellor"
	TaskVote             TaskKind = "Vote"
	TaskPickLaws         TaskKind = "PickLaws"
	TaskExecutiveAction  TaskKind = "ExecutiveAction"
	TaskConfirmVeto      TaskKind = "ConfirmVeto"
)

// Task is the decision the game is waiting on from one observer.
type Task struct {
	Kind TaskKind

	Options    []PlayerID // ChooseChancellor
	President  PlayerID   // Vote
	Chancellor PlayerID   // Vote, ConfirmVeto
	Laws       []law.Law  // PickLaws, ConfirmVeto
	CanVeto    bool       // PickLaws (chancellor only)

	Action   ExecutiveAction // ExecutiveAction
	NextLaws []law.Law       // RevealNextCards only
}

// MarshalJSON encodes tasks as {"type": kind, "value": payload}.
func (t Task) MarshalJSON() ([]byte, error) {
	var value any
	switch t.Kind {
	case TaskChooseChancellor:
		value = struct {
			Options []PlayerID `json:"options"`
		}{nonNil(t.Options)}
	case TaskVote:
		value = struct {
			President  PlayerID `json:"president"`
			Chancellor PlayerID `json:"chancellor"`
		}{t.President, t.Chancellor}
	case TaskPickLaws:
		value = struct {
			Laws    []law.Law `json:"laws"`
			CanVeto bool      `json:"can_veto"`
		}{t.Laws, t.CanVeto}
	case TaskExecutiveAction:
		exec := struct {
			Type  string    `json:"type"`
			Value []law.Law `json:"value,omitempty"`
		}{Type: t.Action.String()}
		if t.Action == ActionRevealNextCards {
			exec.Value = t.NextLaws
		}
		value = exec
	case TaskConfirmVeto:
		value = struct {
			Chancellor PlayerID  `json:"chancellor"`
			Laws       []law.Law `json:"laws"`
		}{t.Chancellor, t.Laws}
	}
	return json.Marshal(struct {
		Type  TaskKind `json:"type"`
		Value any      `json:"value"`
	}{t.Kind, value})
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

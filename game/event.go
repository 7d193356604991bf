package game

import (
	"encoding/json"
	"maps"

	"chancellery/law"
)

type EventKind string

const (
	EventChooseChancellor EventKind = "ChooseChancellor"
	EventVote             EventKind = "Vote"
	EventPlayedLaw        EventKind = "PlayedLaw"
	EventVeto             EventKind = "Veto"
	EventExecutiveAction  EventKind = "ExecutiveAction"
	EventGameOver         EventKind = "GameOver"
)

// Event is one public history entry. Which fields are meaningful depends on Kind.
type Event struct {
	Seq  int
	Kind EventKind

	President  PlayerID
	Chancellor PlayerID // empty for a forced enactment
	Votes      map[PlayerID]bool
	Success    bool
	Law        law.Law
	Action     ExecutiveAction
	Target     PlayerID
	Winner     Faction
}

func (e Event) clone() Event {
	e.Votes = maps.Clone(e.Votes)
	return e
}

func optionalID(id PlayerID) *PlayerID {
	if id == "" {
		return nil
	}
	return &id
}

// MarshalJSON encodes events tagged by kind, e.g. {"seq":3,"Vote":{...}}.
func (e Event) MarshalJSON() ([]byte, error) {
	var body any
	switch e.Kind {
	case EventChooseChancellor:
		body = struct {
			President  PlayerID `json:"president"`
			Chancellor PlayerID `json:"chancellor"`
		}{e.President, e.Chancellor}
	case EventVote:
		body = struct {
			President  PlayerID          `json:"president"`
			Chancellor PlayerID          `json:"chancellor"`
			Votes      map[PlayerID]bool `json:"votes"`
			Success    bool              `json:"success"`
		}{e.President, e.Chancellor, e.Votes, e.Success}
	case EventPlayedLaw:
		body = struct {
			President  PlayerID  `json:"president"`
			Chancellor *PlayerID `json:"chancellor"`
			Law        law.Law   `json:"law"`
		}{e.President, optionalID(e.Chancellor), e.Law}
	case EventVeto:
		body = struct {
			President  PlayerID `json:"president"`
			Chancellor PlayerID `json:"chancellor"`
		}{e.President, e.Chancellor}
	case EventExecutiveAction:
		body = struct {
			President PlayerID        `json:"president"`
			Action    ExecutiveAction `json:"action"`
			Target    *PlayerID       `json:"target"`
		}{e.President, e.Action, optionalID(e.Target)}
	case EventGameOver:
		body = struct {
			Winner Faction `json:"winner"`
		}{e.Winner}
	}
	return json.Marshal(map[string]any{
		"seq":          e.Seq,
		string(e.Kind): body,
	})
}

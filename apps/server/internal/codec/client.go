package codec

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"chancellery/game"
	"chancellery/law"
)

type ClientKind string

const (
	ClientAuthenticate ClientKind = "Authenticate"
	ClientGetState     ClientKind = "GetState"
	ClientTask         ClientKind = "Task"
)

var ErrMalformed = errors.New("malformed message")

// Authenticate registers User when set, otherwise reconnects with AccessKey.
type Authenticate struct {
	User      *game.User `json:"user"`
	AccessKey *string    `json:"access_key"`
}

// ClientMessage is one decoded inbound frame. Auth is set for Authenticate and
// Action for Task.
type ClientMessage struct {
	Kind   ClientKind
	Auth   *Authenticate
	Action game.Action
}

// DecodeClient parses an externally tagged JSON frame: "GetState",
// {"Authenticate":{...}} or {"Task":{"type":...,"value":...}}.
func DecodeClient(data []byte) (ClientMessage, error) {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var unit string
		if err := json.Unmarshal(data, &unit); err != nil {
			return ClientMessage{}, malformed(err)
		}
		if ClientKind(unit) != ClientGetState {
			return ClientMessage{}, fmt.Errorf("%w: unknown message %q", ErrMalformed, unit)
		}
		return ClientMessage{Kind: ClientGetState}, nil
	}

	var tagged map[ClientKind]json.RawMessage
	if err := json.Unmarshal(data, &tagged); err != nil {
		return ClientMessage{}, malformed(err)
	}
	if len(tagged) != 1 {
		return ClientMessage{}, fmt.Errorf("%w: expected exactly one tag", ErrMalformed)
	}
	var kind ClientKind
	var body json.RawMessage
	for kind, body = range tagged { // exactly one entry
	}
	switch kind {
	case ClientGetState:
		return ClientMessage{Kind: ClientGetState}, nil
	case ClientAuthenticate:
		var auth Authenticate
		if err := json.Unmarshal(body, &auth); err != nil {
			return ClientMessage{}, malformed(err)
		}
		if auth.User == nil && auth.AccessKey == nil {
			return ClientMessage{}, fmt.Errorf("%w: authenticate needs a user or an access key", ErrMalformed)
		}
		return ClientMessage{Kind: ClientAuthenticate, Auth: &auth}, nil
	case ClientTask:
		action, err := decodeAction(body)
		if err != nil {
			return ClientMessage{}, err
		}
		return ClientMessage{Kind: ClientTask, Action: action}, nil
	default:
		return ClientMessage{}, fmt.Errorf("%w: unknown message %q", ErrMalformed, kind)
	}
}

type tagged struct {
	Type  string          `json:"type"`
	Value json.RawMessage `json:"value"`
}

func decodeAction(body []byte) (game.Action, error) {
	var t tagged
	if err := json.Unmarshal(body, &t); err != nil {
		return nil, malformed(err)
	}
	switch game.ActionKind(t.Type) {
	case game.ActionKindStart:
		return game.StartGame{}, nil
	case game.ActionKindChooseChancellor:
		var id game.PlayerID
		if err := decodeValue(t.Value, &id); err != nil {
			return nil, err
		}
		return game.NominateChancellor{Candidate: id}, nil
	case game.ActionKindVote:
		var yes bool
		if err := decodeValue(t.Value, &yes); err != nil {
			return nil, err
		}
		return game.CastVote{Yes: yes}, nil
	case game.ActionKindPickedLaws:
		var pair []json.RawMessage
		if err := decodeValue(t.Value, &pair); err != nil {
			return nil, err
		}
		if len(pair) != 2 {
			return nil, fmt.Errorf("%w: PickedLaws expects [kept, discarded]", ErrMalformed)
		}
		var pick game.PickLaws
		if err := json.Unmarshal(pair[0], &pick.Kept); err != nil {
			return nil, malformed(err)
		}
		if err := json.Unmarshal(pair[1], &pick.Discarded); err != nil {
			return nil, malformed(err)
		}
		return pick, nil
	case game.ActionKindVeto:
		var accept bool
		if err := decodeValue(t.Value, &accept); err != nil {
			return nil, err
		}
		return game.RequestVeto{Accept: accept}, nil
	case game.ActionKindExecuteAction:
		var inner tagged
		if err := decodeValue(t.Value, &inner); err != nil {
			return nil, err
		}
		action, err := game.ParseExecutiveAction(inner.Type)
		if err != nil {
			return nil, malformed(err)
		}
		exec := game.ExecuteAction{Action: action}
		if action != game.ActionRevealNextCards {
			if err := decodeValue(inner.Value, &exec.Target); err != nil {
				return nil, err
			}
		}
		return exec, nil
	default:
		return nil, fmt.Errorf("%w: unknown task %q", ErrMalformed, t.Type)
	}
}

func decodeValue(raw json.RawMessage, v any) error {
	if len(raw) == 0 {
		return fmt.Errorf("%w: missing value", ErrMalformed)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return malformed(err)
	}
	return nil
}

func malformed(err error) error {
	return fmt.Errorf("%w: %v", ErrMalformed, err)
}

// EncodeAction is the inverse of the Task part of DecodeClient. Bots and tests use it.
func EncodeAction(a game.Action) ([]byte, error) {
	var value any
	switch a := a.(type) {
	case game.StartGame:
	case game.NominateChancellor:
		value = a.Candidate
	case game.CastVote:
		value = a.Yes
	case game.PickLaws:
		kept := a.Kept
		if kept == nil {
			kept = []law.Law{}
		}
		value = []any{kept, a.Discarded}
	case game.RequestVeto:
		value = a.Accept
	case game.ExecuteAction:
		inner := map[string]any{"type": a.Action.String()}
		if a.Action != game.ActionRevealNextCards {
			inner["value"] = a.Target
		}
		value = inner
	default:
		return nil, fmt.Errorf("unsupported action %T", a)
	}
	body := map[string]any{"type": string(a.Kind())}
	if value != nil {
		body["value"] = value
	}
	return json.Marshal(map[string]any{string(ClientTask): body})
}

package codec

import (
	"encoding/json"
	"errors"

	"chancellery/game"
)

type ServerKind string

const (
	ServerState         ServerKind = "State"
	ServerAuthenticated ServerKind = "Authenticated"
	ServerError         ServerKind = "Error"
)

// Wire error kinds.
const (
	KindDuplicateRegistration = "DuplicateRegistration"
	KindUnknownCredential     = "UnknownCredential"
	KindAlreadyConnected      = "AlreadyConnected"
	KindInvalidAction         = "InvalidAction"
	KindGameInProgress        = "GameInProgress"
	KindRosterFull            = "RosterFull"
	KindInvalidProfile        = "InvalidProfile"
	KindMalformed             = "Malformed"
	KindUnauthenticated       = "Unauthenticated"
	KindInternal              = "Internal"
)

var ErrUnauthenticated = errors.New("authenticate first")

type envelope struct {
	Type  ServerKind `json:"type"`
	Value any        `json:"value"`
}

type StatePayload struct {
	GameState game.View  `json:"game_state"`
	Task      *game.Task `json:"task"`
}

type ErrorPayload struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

func EncodeState(view game.View) ([]byte, error) {
	return json.Marshal(envelope{ServerState, StatePayload{GameState: view, Task: view.Task}})
}

func EncodeAuthenticated(accessKey string) ([]byte, error) {
	return json.Marshal(envelope{ServerAuthenticated, struct {
		AccessKey string `json:"access_key"`
	}{accessKey}})
}

func EncodeError(err error) ([]byte, error) {
	return json.Marshal(envelope{ServerError, ErrorPayload{Kind: ErrorKind(err), Message: err.Error()}})
}

// ErrorKind maps an error to its wire kind.
func ErrorKind(err error) string {
	switch {
	case errors.Is(err, game.ErrDuplicateRegistration):
		return KindDuplicateRegistration
	case errors.Is(err, game.ErrUnknownCredential):
		return KindUnknownCredential
	case errors.Is(err, game.ErrAlreadyConnected):
		return KindAlreadyConnected
	case errors.Is(err, game.ErrInvalidAction), errors.Is(err, game.ErrPlayerCount):
		return KindInvalidAction
	case errors.Is(err, game.ErrGameInProgress):
		return KindGameInProgress
	case errors.Is(err, game.ErrRosterFull):
		return KindRosterFull
	case errors.Is(err, game.ErrInvalidProfile):
		return KindInvalidProfile
	case errors.Is(err, ErrMalformed):
		return KindMalformed
	case errors.Is(err, ErrUnauthenticated):
		return KindUnauthenticated
	default:
		return KindInternal
	}
}

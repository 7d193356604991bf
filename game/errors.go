package game

import (
	"errors"
	"fmt"
)

var (
	ErrDuplicateRegistration = errors.New("player already registered")
	ErrUnknownCredential     = errors.New("unknown access key")
	ErrAlreadyConnected      = errors.New("player already connected")
	ErrInvalidAction         = errors.New("invalid action")

	ErrGameInProgress = errors.New("game already in progress")
	ErrRosterFull     = errors.New("roster is full")
	ErrInvalidProfile = errors.New("invalid user profile")
	ErrPlayerCount    = errors.New("unsupported player count")
)

// InvalidActionError describes why an action was refused. It matches ErrInvalidAction.
type InvalidActionError string

func (e InvalidActionError) Error() string { return "invalid action: " + string(e) }

func (e InvalidActionError) Is(target error) bool { return target == ErrInvalidAction }

const (
	ErrGameOver      InvalidActionError = "game is over"
	ErrNotYourTurn   InvalidActionError = "not your turn"
	ErrUnknownPlayer InvalidActionError = "unknown player"
	ErrDeadPlayer    InvalidActionError = "dead players cannot act"
)

func rejectf(format string, args ...any) error {
	return InvalidActionError(fmt.Sprintf(format, args...))
}

// InvalidStateError reports a broken internal invariant; it never results from user input.
type InvalidStateError string

func (e InvalidStateError) Error() string { return "invalid state: " + string(e) }

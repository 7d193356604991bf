package scenario

import "chancellery/game"

// Spec is a scripted game: a roster, optional fixed randomness and the actions to play.
type Spec struct {
	ID        string       `json:"id" yaml:"id"`
	Seed      int64        `json:"seed" yaml:"seed"`
	SkipVotes bool         `json:"skip_votes" yaml:"skip_votes"`
	Players   []PlayerSpec `json:"players" yaml:"players"`

	// Optional draw pile, front first, e.g. ["L", "F", ...]. Must be the full deck.
	Deck []string `json:"deck,omitempty" yaml:"deck,omitempty"`
	// Optional first president.
	FirstPresident string `json:"first_president,omitempty" yaml:"first_president,omitempty"`

	Steps []StepSpec `json:"steps" yaml:"steps"`
	// Let rule-based NPCs finish the game after the scripted steps.
	Autoplay bool        `json:"autoplay,omitempty" yaml:"autoplay,omitempty"`
	Expect   *ExpectSpec `json:"expect,omitempty" yaml:"expect,omitempty"`
}

type PlayerSpec struct {
	Name  string `json:"name" yaml:"name"`
	Image string `json:"image,omitempty" yaml:"image,omitempty"`
	Color string `json:"color,omitempty" yaml:"color,omitempty"`
	// Optional role; set it for every player or for none.
	Role string `json:"role,omitempty" yaml:"role,omitempty"`
}

// StepSpec is one action. Which fields matter depends on Type.
type StepSpec struct {
	Actor string `json:"actor" yaml:"actor"`
	// Optional phase the game must be in before the step.
	Phase string `json:"phase,omitempty" yaml:"phase,omitempty"`
	Type  string `json:"type" yaml:"type"`

	Target    string   `json:"target,omitempty" yaml:"target,omitempty"`
	Yes       bool     `json:"yes,omitempty" yaml:"yes,omitempty"`
	Kept      []string `json:"kept,omitempty" yaml:"kept,omitempty"`
	Discarded string   `json:"discarded,omitempty" yaml:"discarded,omitempty"`
	Executive string   `json:"executive,omitempty" yaml:"executive,omitempty"`

	// The step must be refused by the game.
	Reject bool `json:"reject,omitempty" yaml:"reject,omitempty"`
}

// ExpectSpec is checked after the last step.
type ExpectSpec struct {
	Phase         string `json:"phase,omitempty" yaml:"phase,omitempty"`
	Winner        string `json:"winner,omitempty" yaml:"winner,omitempty"`
	PassedFascist *int   `json:"passed_fascist,omitempty" yaml:"passed_fascist,omitempty"`
	PassedLiberal *int   `json:"passed_liberal,omitempty" yaml:"passed_liberal,omitempty"`
}

// Result is the final state of a played scenario.
type Result struct {
	ID      string                      `json:"id"`
	Steps   int                         `json:"steps"`
	Phase   game.PhaseKind              `json:"phase"`
	Winner  *game.Faction               `json:"winner"`
	History []game.Event                `json:"history"`
	Views   map[game.PlayerID]game.View `json:"views"`
}

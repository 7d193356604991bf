package scenario

import (
	"fmt"

	"chancellery/game"
)

// ScenarioError reports why a scenario could not be played. StepIndex is -1 for
// problems found before the first step.
type ScenarioError struct {
	StepIndex int            `json:"step_index" yaml:"step_index"`
	Reason    string         `json:"reason" yaml:"reason"`
	Message   string         `json:"message" yaml:"message"`
	Expected  *ExpectedState `json:"expected,omitempty" yaml:"expected,omitempty"`
}

// ExpectedState describes what the game was waiting for when a step failed.
type ExpectedState struct {
	Phase  string          `json:"phase,omitempty" yaml:"phase,omitempty"`
	Actors []game.PlayerID `json:"actors,omitempty" yaml:"actors,omitempty"`
}

func (e *ScenarioError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("scenario error(step=%d reason=%s): %s", e.StepIndex, e.Reason, e.Message)
}

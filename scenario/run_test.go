package scenario

import (
	"errors"
	"reflect"
	"testing"

	"chancellery/game"
)

func TestRun_LiberalSweepFile(t *testing.T) {
	spec, err := Load("testdata/liberal_sweep.yaml")
	if err != nil {
		t.Fatalf("Load err: %v", err)
	}
	res, err := Run(spec)
	if err != nil {
		t.Fatalf("Run err: %v", err)
	}
	if res.Winner == nil || *res.Winner != game.FactionLiberal {
		t.Fatalf("expected liberal winner, got %v", res.Winner)
	}
	if len(res.Views) != 5 {
		t.Fatalf("expected 5 views, got %d", len(res.Views))
	}
	last := res.History[len(res.History)-1]
	if last.Kind != game.EventGameOver {
		t.Fatalf("expected GameOver last, got %s", last.Kind)
	}
	// game over: everyone sees every role
	for id, v := range res.Views {
		for _, p := range v.Board.Players {
			if p.Role == nil {
				t.Fatalf("%s cannot see %s after game over", id, p.ID)
			}
		}
	}
}

func TestRun_IsDeterministic(t *testing.T) {
	spec := baseSpec()
	a, err := Run(spec)
	if err != nil {
		t.Fatalf("Run A failed: %v", err)
	}
	b, err := Run(spec)
	if err != nil {
		t.Fatalf("Run B failed: %v", err)
	}
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("expected identical results for the same spec")
	}
	if a.Phase != game.PhaseChooseChancellor {
		t.Fatalf("expected ChooseChancellor after a failed vote, got %s", a.Phase)
	}
}

func TestRun_OutOfTurnReportsExpectedActor(t *testing.T) {
	spec := baseSpec()
	spec.Steps[1].Actor = "bob"

	_, err := Run(spec)
	var se *ScenarioError
	if !errors.As(err, &se) {
		t.Fatalf("expected ScenarioError, got %T %v", err, err)
	}
	if se.Reason != "out_of_turn" || se.StepIndex != 1 {
		t.Fatalf("unexpected error: %+v", se)
	}
	if se.Expected == nil || !reflect.DeepEqual(se.Expected.Actors, []game.PlayerID{"alice"}) {
		t.Fatalf("expected alice as the only actor, got %+v", se.Expected)
	}
}

func TestRun_PhaseMismatch(t *testing.T) {
	spec := baseSpec()
	spec.Steps[1].Phase = "VoteChancellor"

	_, err := Run(spec)
	var se *ScenarioError
	if !errors.As(err, &se) || se.Reason != "phase_mismatch" {
		t.Fatalf("expected phase_mismatch, got %v", err)
	}
	if se.Expected.Phase != string(game.PhaseChooseChancellor) {
		t.Fatalf("unexpected expected phase %q", se.Expected.Phase)
	}
}

func TestRun_UnexpectedAccept(t *testing.T) {
	spec := baseSpec()
	spec.Steps[1].Reject = true

	_, err := Run(spec)
	var se *ScenarioError
	if !errors.As(err, &se) || se.Reason != "unexpected_accept" {
		t.Fatalf("expected unexpected_accept, got %v", err)
	}
}

func TestNormalize_RejectsBadSpecs(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Spec)
		reason string
	}{
		{"too few players", func(s *Spec) { s.Players = s.Players[:4] }, "invalid_players"},
		{"partial roles", func(s *Spec) { s.Players[0].Role = "Liberal" }, "invalid_roles"},
		{"short deck", func(s *Spec) { s.Deck = []string{"L", "F"} }, "invalid_deck"},
		{"bad law", func(s *Spec) { s.Deck = []string{"X"} }, "invalid_deck"},
		{"bad step", func(s *Spec) { s.Steps[1].Type = "Bribe" }, "invalid_step"},
		{"bad executive", func(s *Spec) { s.Steps[1] = StepSpec{Actor: "alice", Type: "ExecuteAction", Executive: "Exile"} }, "invalid_step"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec := baseSpec()
			tt.mutate(&spec)
			_, err := Run(spec)
			var se *ScenarioError
			if !errors.As(err, &se) {
				t.Fatalf("expected ScenarioError, got %v", err)
			}
			if se.Reason != tt.reason {
				t.Fatalf("expected %s, got %s (%s)", tt.reason, se.Reason, se.Message)
			}
		})
	}
}

func TestParse_JSON(t *testing.T) {
	spec, err := Parse([]byte(`{"id":"j","players":[{"name":"a"}],"steps":[{"actor":"a","type":"Start"}]}`))
	if err != nil {
		t.Fatalf("Parse err: %v", err)
	}
	if spec.ID != "j" || len(spec.Players) != 1 || spec.Steps[0].Type != "Start" {
		t.Fatalf("unexpected spec %+v", spec)
	}
}

func baseSpec() Spec {
	return Spec{
		ID:             "base",
		Seed:           42,
		FirstPresident: "alice",
		Players: []PlayerSpec{
			{Name: "alice"}, {Name: "bob"}, {Name: "carol"}, {Name: "dave"}, {Name: "erin"},
		},
		Steps: []StepSpec{
			{Actor: "alice", Type: "Start"},
			{Actor: "alice", Phase: "ChooseChancellor", Type: "ChooseChancellor", Target: "carol"},
			{Actor: "alice", Type: "Vote", Yes: true},
			{Actor: "bob", Type: "Vote", Yes: false},
			{Actor: "carol", Type: "Vote", Yes: true},
			{Actor: "dave", Type: "Vote", Yes: false},
			{Actor: "erin", Type: "Vote", Yes: false},
		},
	}
}

func TestRun_AutoplayFinishesGame(t *testing.T) {
	spec := baseSpec()
	spec.Autoplay = true

	res, err := Run(spec)
	if err != nil {
		t.Fatalf("Run err: %v", err)
	}
	if res.Winner == nil {
		t.Fatal("expected a winner after autoplay")
	}
	if res.Steps <= len(spec.Steps) {
		t.Fatalf("expected autoplay steps, got %d", res.Steps)
	}
}

func TestRun_AutoplayNeedsStart(t *testing.T) {
	spec := baseSpec()
	spec.Steps = nil
	spec.Autoplay = true

	_, err := Run(spec)
	var se *ScenarioError
	if !errors.As(err, &se) || se.Reason != "autoplay_not_started" {
		t.Fatalf("expected autoplay_not_started, got %v", err)
	}
}

package scenario

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"chancellery/game"
	"chancellery/game/npc"
)

const autoplayLimit = 5000

// Load reads a scenario from a YAML (or JSON) file.
func Load(path string) (Spec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Spec{}, fmt.Errorf("read scenario: %w", err)
	}
	return Parse(data)
}

func Parse(data []byte) (Spec, error) {
	var spec Spec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return Spec{}, fmt.Errorf("parse scenario: %w", err)
	}
	return spec, nil
}

// Run plays spec against a fresh game and returns the final state.
func Run(spec Spec) (*Result, error) {
	ns, err := normalizeSpec(spec)
	if err != nil {
		return nil, err
	}
	g, err := game.NewGame(ns.cfg)
	if err != nil {
		return nil, &ScenarioError{StepIndex: -1, Reason: "engine_init_failed", Message: err.Error()}
	}
	for _, u := range ns.users {
		if _, _, err := g.Register(u); err != nil {
			return nil, &ScenarioError{StepIndex: -1, Reason: "register_failed", Message: fmt.Sprintf("%s: %v", u.Name, err)}
		}
	}

	for i, step := range ns.steps {
		if err := playStep(g, i, step); err != nil {
			return nil, err
		}
	}

	steps := len(ns.steps)
	if ns.autoplay {
		played, err := autoplay(g, ns.cfg.Seed, steps)
		if err != nil {
			return nil, err
		}
		steps += played
	}

	if err := checkExpect(g, steps, ns.expect); err != nil {
		return nil, err
	}
	return buildResult(g, steps), nil
}

// autoplay gives every player a rule-based brain and plays until someone wins.
func autoplay(g *game.Game, seed int64, offset int) (int, error) {
	if g.Phase() == game.PhaseUninitialized {
		return 0, &ScenarioError{StepIndex: offset, Reason: "autoplay_not_started", Message: "autoplay needs a started game"}
	}
	players := g.Snapshot().Players
	personas := npc.DefaultRegistry().All()
	brains := make(map[game.PlayerID]npc.BrainDecider, len(players))
	for i, p := range players {
		brains[p.ID] = npc.NewRuleBrain(personas[i%len(personas)], seed+int64(i))
	}

	for played := 0; played < autoplayLimit; played++ {
		if _, over := g.Winner(); over {
			return played, nil
		}
		acted := false
		for _, p := range players {
			view, _ := g.View(p.ID)
			action := brains[p.ID].Decide(view)
			if action == nil {
				continue
			}
			if err := g.Apply(p.ID, action); err != nil {
				return played, &ScenarioError{StepIndex: offset + played, Reason: "autoplay_rejected", Message: err.Error(), Expected: expectedState(g)}
			}
			acted = true
			break
		}
		if !acted {
			return played, &ScenarioError{StepIndex: offset + played, Reason: "autoplay_stalled", Message: "no player has a task", Expected: expectedState(g)}
		}
	}
	return autoplayLimit, &ScenarioError{StepIndex: offset + autoplayLimit, Reason: "autoplay_limit", Message: "game did not finish"}
}

func playStep(g *game.Game, i int, step normalizedStep) error {
	if step.phase != "" && g.Phase() != step.phase {
		return &ScenarioError{
			StepIndex: i,
			Reason:    "phase_mismatch",
			Message:   fmt.Sprintf("expected phase %s, got %s", step.phase, g.Phase()),
			Expected:  expectedState(g),
		}
	}

	err := g.Apply(step.actor, step.action)
	switch {
	case step.reject && err == nil:
		return &ScenarioError{
			StepIndex: i,
			Reason:    "unexpected_accept",
			Message:   fmt.Sprintf("%s by %s was expected to be rejected", step.action.Kind(), step.actor),
		}
	case step.reject:
		return nil
	case errors.Is(err, game.ErrNotYourTurn):
		return &ScenarioError{
			StepIndex: i,
			Reason:    "out_of_turn",
			Message:   fmt.Sprintf("%s cannot act now", step.actor),
			Expected:  expectedState(g),
		}
	case err != nil:
		return &ScenarioError{
			StepIndex: i,
			Reason:    "action_rejected",
			Message:   err.Error(),
			Expected:  expectedState(g),
		}
	}
	return nil
}

// expectedState lists the players that currently have a task.
func expectedState(g *game.Game) *ExpectedState {
	out := &ExpectedState{Phase: string(g.Phase())}
	for _, p := range g.Snapshot().Players {
		if task, ok := g.Task(p.ID); ok && task != nil {
			out.Actors = append(out.Actors, p.ID)
		}
	}
	return out
}

func checkExpect(g *game.Game, steps int, expect *ExpectSpec) error {
	if expect == nil {
		return nil
	}
	fail := func(reason, format string, args ...any) error {
		return &ScenarioError{StepIndex: steps, Reason: reason, Message: fmt.Sprintf(format, args...), Expected: expectedState(g)}
	}
	if expect.Phase != "" {
		want, err := parsePhaseName(expect.Phase)
		if err != nil {
			return fail("invalid_expect", "%v", err)
		}
		if got := g.Phase(); got != want {
			return fail("phase_mismatch", "expected final phase %s, got %s", want, got)
		}
	}
	snap := g.Snapshot()
	if expect.Winner != "" {
		w, over := g.Winner()
		if !over || w.String() != expect.Winner {
			got := "none"
			if over {
				got = w.String()
			}
			return fail("winner_mismatch", "expected %s to win, got %s", expect.Winner, got)
		}
	}
	if expect.PassedFascist != nil && *expect.PassedFascist != snap.PassedFascist {
		return fail("count_mismatch", "expected %d fascist laws, got %d", *expect.PassedFascist, snap.PassedFascist)
	}
	if expect.PassedLiberal != nil && *expect.PassedLiberal != snap.PassedLiberal {
		return fail("count_mismatch", "expected %d liberal laws, got %d", *expect.PassedLiberal, snap.PassedLiberal)
	}
	return nil
}

func buildResult(g *game.Game, steps int) *Result {
	snap := g.Snapshot()
	res := &Result{
		ID:      snap.ID,
		Steps:   steps,
		Phase:   snap.Phase.Kind(),
		History: snap.History,
		Views:   make(map[game.PlayerID]game.View, len(snap.Players)),
	}
	if w, over := g.Winner(); over {
		res.Winner = &w
	}
	for _, p := range snap.Players {
		if v, ok := g.View(p.ID); ok {
			res.Views[p.ID] = v
		}
	}
	return res
}

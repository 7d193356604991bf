package scenario

import (
	"fmt"
	"strings"

	"chancellery/game"
	"chancellery/law"
)

type normalizedStep struct {
	actor  game.PlayerID
	phase  game.PhaseKind
	action game.Action
	reject bool
}

type normalizedSpec struct {
	cfg      game.Config
	users    []game.User
	steps    []normalizedStep
	autoplay bool
	expect   *ExpectSpec
}

const defaultScenarioID = "scenario_local"

func normalizeSpec(spec Spec) (normalizedSpec, error) {
	var out normalizedSpec
	out.expect = spec.Expect
	out.autoplay = spec.Autoplay
	out.cfg = game.Config{
		ID:             strings.TrimSpace(spec.ID),
		Seed:           spec.Seed,
		SkipVotes:      spec.SkipVotes,
		FirstPresident: strings.TrimSpace(spec.FirstPresident),
	}
	if out.cfg.ID == "" {
		out.cfg.ID = defaultScenarioID
	}
	if out.cfg.Seed == 0 {
		out.cfg.Seed = 1
	}

	if len(spec.Players) < game.MinPlayers || len(spec.Players) > game.MaxPlayers {
		return out, &ScenarioError{StepIndex: -1, Reason: "invalid_players",
			Message: fmt.Sprintf("%d players, need %d to %d", len(spec.Players), game.MinPlayers, game.MaxPlayers)}
	}
	withRole := 0
	var roles []game.Role
	for i, p := range spec.Players {
		name := strings.TrimSpace(p.Name)
		if name == "" {
			return out, &ScenarioError{StepIndex: -1, Reason: "invalid_players", Message: fmt.Sprintf("player %d has no name", i)}
		}
		out.users = append(out.users, game.User{Name: name, Image: p.Image, Color: p.Color})
		if p.Role == "" {
			continue
		}
		withRole++
		role, err := parseRole(p.Role)
		if err != nil {
			return out, &ScenarioError{StepIndex: -1, Reason: "invalid_roles", Message: err.Error()}
		}
		roles = append(roles, role)
	}
	switch withRole {
	case 0:
	case len(spec.Players):
		out.cfg.RoleOverride = roles
	default:
		return out, &ScenarioError{StepIndex: -1, Reason: "invalid_roles", Message: "roles must be set for every player or none"}
	}

	if len(spec.Deck) > 0 {
		deck, err := parseLaws(spec.Deck)
		if err != nil {
			return out, &ScenarioError{StepIndex: -1, Reason: "invalid_deck", Message: err.Error()}
		}
		if !law.SameMultiset(deck, law.FullDeck()) {
			return out, &ScenarioError{StepIndex: -1, Reason: "invalid_deck",
				Message: fmt.Sprintf("deck must hold %d liberal and %d fascist laws", law.LiberalCount, law.FascistCount)}
		}
		out.cfg.DeckOverride = deck
	}

	out.steps = make([]normalizedStep, 0, len(spec.Steps))
	for i, s := range spec.Steps {
		step, err := normalizeStep(s)
		if err != nil {
			return out, &ScenarioError{StepIndex: i, Reason: "invalid_step", Message: err.Error()}
		}
		out.steps = append(out.steps, step)
	}
	return out, nil
}

func normalizeStep(s StepSpec) (normalizedStep, error) {
	step := normalizedStep{actor: strings.TrimSpace(s.Actor), reject: s.Reject}
	if step.actor == "" {
		return step, fmt.Errorf("step has no actor")
	}
	if s.Phase != "" {
		phase, err := parsePhaseName(s.Phase)
		if err != nil {
			return step, err
		}
		step.phase = phase
	}

	switch strings.ToLower(strings.TrimSpace(s.Type)) {
	case "start":
		step.action = game.StartGame{}
	case "choosechancellor", "nominate":
		step.action = game.NominateChancellor{Candidate: strings.TrimSpace(s.Target)}
	case "vote":
		step.action = game.CastVote{Yes: s.Yes}
	case "pickedlaws", "picklaws":
		kept, err := parseLaws(s.Kept)
		if err != nil {
			return step, err
		}
		discarded, err := law.Parse(s.Discarded)
		if err != nil {
			return step, err
		}
		step.action = game.PickLaws{Kept: kept, Discarded: discarded}
	case "veto":
		step.action = game.RequestVeto{Accept: s.Yes}
	case "executeaction", "execute":
		action, err := game.ParseExecutiveAction(strings.TrimSpace(s.Executive))
		if err != nil {
			return step, err
		}
		step.action = game.ExecuteAction{Action: action, Target: strings.TrimSpace(s.Target)}
	default:
		return step, fmt.Errorf("unknown step type %q", s.Type)
	}
	return step, nil
}

func parseLaws(names []string) ([]law.Law, error) {
	out := make([]law.Law, 0, len(names))
	for _, n := range names {
		l, err := law.Parse(n)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, nil
}

func parseRole(s string) (game.Role, error) {
	for r, name := range game.RoleDictionary {
		if strings.EqualFold(name, strings.TrimSpace(s)) {
			return r, nil
		}
	}
	return 0, fmt.Errorf("unknown role %q", s)
}

func parsePhaseName(s string) (game.PhaseKind, error) {
	for _, k := range []game.PhaseKind{
		game.PhaseUninitialized,
		game.PhaseChooseChancellor,
		game.PhaseVoteChancellor,
		game.PhasePresidentChooseLaws,
		game.PhaseChancellorChooseLaws,
		game.PhaseExecutiveAction,
		game.PhaseAskVeto,
	} {
		if strings.EqualFold(string(k), strings.TrimSpace(s)) {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown phase %q", s)
}

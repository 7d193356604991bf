package npc

import (
	"math/rand"
	"slices"

	"chancellery/game"
	"chancellery/law"
)

// RuleBrain makes decisions based on a PersonalityProfile and what its view reveals.
type RuleBrain struct {
	Persona *NPCPersona
	rng     *rand.Rand
}

func NewRuleBrain(persona *NPCPersona, seed int64) *RuleBrain {
	return &RuleBrain{
		Persona: persona,
		rng:     rand.New(rand.NewSource(seed)),
	}
}

func (b *RuleBrain) Name() string { return b.Persona.Name }

// knowledge is what the NPC can infer from its own view.
type knowledge struct {
	me      game.PlayerID
	faction game.Faction
	living  []game.PlayerID
	allies  map[game.PlayerID]bool
	enemies map[game.PlayerID]bool
}

func readView(view game.View) knowledge {
	k := knowledge{
		me:      view.Me,
		faction: game.FactionLiberal,
		allies:  map[game.PlayerID]bool{},
		enemies: map[game.PlayerID]bool{},
	}
	for _, p := range view.Board.Players {
		if p.ID == view.Me && p.Role != nil {
			k.faction = p.Role.Faction()
		}
	}
	for _, p := range view.Board.Players {
		if !p.Alive {
			continue
		}
		if p.ID != view.Me {
			k.living = append(k.living, p.ID)
		}
		if p.Faction == nil || p.ID == view.Me {
			continue
		}
		if *p.Faction == k.faction {
			k.allies[p.ID] = true
		} else {
			k.enemies[p.ID] = true
		}
	}
	// fascists know every liberal by elimination
	if k.faction == game.FactionFascist {
		for _, id := range k.living {
			if !k.allies[id] {
				k.enemies[id] = true
			}
		}
	}
	return k
}

// Decide implements BrainDecider.
func (b *RuleBrain) Decide(view game.View) game.Action {
	t := view.Task
	if t == nil {
		return nil
	}
	k := readView(view)
	p := b.Persona.Brain

	switch t.Kind {
	case game.TaskChooseChancellor:
		return game.NominateChancellor{Candidate: b.pickPreferring(t.Options, k.allies, k.enemies, p.Loyalty)}

	case game.TaskVote:
		yes := b.rng.Float64() < p.Trust
		switch {
		case k.enemies[t.Chancellor]:
			yes = false
		case k.allies[t.Chancellor], t.President == k.me, t.Chancellor == k.me:
			yes = true
		}
		if b.rng.Float64() < p.Randomness*0.2 {
			yes = !yes
		}
		return game.CastVote{Yes: yes}

	case game.TaskPickLaws:
		if t.CanVeto && allAgainst(t.Laws, k.faction) && b.rng.Float64() < p.Loyalty {
			return game.RequestVeto{Accept: true}
		}
		return b.pickLaws(t.Laws, k.faction, p)

	case game.TaskConfirmVeto:
		return game.RequestVeto{Accept: allAgainst(t.Laws, k.faction)}

	case game.TaskExecutiveAction:
		a := game.ExecuteAction{Action: t.Action}
		switch t.Action {
		case game.ActionKill, game.ActionRevealFaction:
			a.Target = b.pickPreferring(k.living, k.enemies, k.allies, p.Loyalty)
		case game.ActionDeterminePresident:
			a.Target = b.pickPreferring(k.living, k.allies, k.enemies, p.Loyalty)
		}
		return a
	}
	return nil
}

// pickPreferring picks from options, favouring prefer and avoiding avoid with probability loyalty.
func (b *RuleBrain) pickPreferring(options []game.PlayerID, prefer, avoid map[game.PlayerID]bool, loyalty float64) game.PlayerID {
	if len(options) == 0 {
		return ""
	}
	if b.rng.Float64() < loyalty {
		var preferred, neutral []game.PlayerID
		for _, id := range options {
			switch {
			case prefer[id]:
				preferred = append(preferred, id)
			case !avoid[id]:
				neutral = append(neutral, id)
			}
		}
		if len(preferred) > 0 {
			return preferred[b.rng.Intn(len(preferred))]
		}
		if len(neutral) > 0 {
			return neutral[b.rng.Intn(len(neutral))]
		}
	}
	return options[b.rng.Intn(len(options))]
}

// pickLaws discards a law of the other faction when it can, keeping the rest.
func (b *RuleBrain) pickLaws(laws []law.Law, mine game.Faction, p PersonalityProfile) game.PickLaws {
	discard := b.rng.Intn(len(laws))
	if b.rng.Float64() < p.Loyalty {
		if i := slices.IndexFunc(laws, func(l law.Law) bool { return l != mine }); i >= 0 {
			discard = i
		}
	}
	kept := slices.Clone(laws)
	kept = slices.Delete(kept, discard, discard+1)
	return game.PickLaws{Kept: kept, Discarded: laws[discard]}
}

func allAgainst(laws []law.Law, mine game.Faction) bool {
	for _, l := range laws {
		if l == mine {
			return false
		}
	}
	return len(laws) > 0
}

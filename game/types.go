package game

import (
	"encoding/json"
	"fmt"
	"math/rand"

	"chancellery/law"
)

type PlayerID = string

// Faction 阵营：与 law.Law 使用同一表示
type Faction = law.Law

const (
	FactionLiberal = law.Liberal
	FactionFascist = law.Fascist
)

// Game size and rule thresholds.
const (
	MinPlayers = 5
	MaxPlayers = 10

	LiberalLawsToWin      = 5
	FascistLawsToWin      = 6
	FailedElectionLimit   = 3
	VetoUnlockFascistLaws = 5
	LeaderElectionDanger  = 3
	LeaderKnowsTeamBelow  = 7

	ExecutiveSlots = 6
	LawsPerDraw    = 3
	PeekSize       = 3
)

// Role 身份
type Role byte

const (
	RoleLiberal Role = iota + 1
	RoleFascist
	RoleFascistLeader
)

var RoleDictionary = map[Role]string{
	RoleLiberal:       "Liberal",
	RoleFascist:       "Fascist",
	RoleFascistLeader: "FascistLeader",
}

func (r Role) String() string {
	if s, ok := RoleDictionary[r]; ok {
		return s
	}
	return "Unknown"
}

func (r Role) Faction() Faction {
	if r == RoleLiberal {
		return FactionLiberal
	}
	return FactionFascist
}

func (r Role) MarshalJSON() ([]byte, error) {
	if _, ok := RoleDictionary[r]; !ok {
		return nil, fmt.Errorf("invalid role %d", byte(r))
	}
	return json.Marshal(r.String())
}

// RolesFor deals one leader, ((n-5)/2)+1 fascists and liberals for the rest.
func RolesFor(n int, rng *rand.Rand) []Role {
	fascists := (n-5)/2 + 1
	roles := make([]Role, 0, n)
	roles = append(roles, RoleFascistLeader)
	for i := 0; i < fascists; i++ {
		roles = append(roles, RoleFascist)
	}
	for len(roles) < n {
		roles = append(roles, RoleLiberal)
	}
	rng.Shuffle(len(roles), func(i, j int) { roles[i], roles[j] = roles[j], roles[i] })
	return roles
}

// ExecutiveAction 总统特权
type ExecutiveAction byte

const (
	ActionNone ExecutiveAction = iota
	ActionKill
	ActionRevealFaction
	ActionDeterminePresident
	ActionRevealNextCards
)

var ExecutiveActionDictionary = map[ExecutiveAction]string{
	ActionKill:               "Kill",
	ActionRevealFaction:      "RevealFaction",
	ActionDeterminePresident: "DeterminePresident",
	ActionRevealNextCards:    "RevealNextCards",
}

func (a ExecutiveAction) String() string {
	if s, ok := ExecutiveActionDictionary[a]; ok {
		return s
	}
	return "None"
}

// MarshalJSON encodes ActionNone as null so the slot table reads as optional entries.
func (a ExecutiveAction) MarshalJSON() ([]byte, error) {
	if a == ActionNone {
		return []byte("null"), nil
	}
	return json.Marshal(a.String())
}

func ParseExecutiveAction(s string) (ExecutiveAction, error) {
	for k, v := range ExecutiveActionDictionary {
		if v == s {
			return k, nil
		}
	}
	return ActionNone, fmt.Errorf("unknown executive action %q", s)
}

// ExecutiveActionsFor returns the slot table indexed by fascist laws passed minus one.
func ExecutiveActionsFor(n int) ([ExecutiveSlots]ExecutiveAction, error) {
	switch {
	case n == 5 || n == 6:
		return [ExecutiveSlots]ExecutiveAction{
			ActionNone, ActionNone, ActionRevealNextCards, ActionKill, ActionKill, ActionNone,
		}, nil
	case n == 7 || n == 8:
		return [ExecutiveSlots]ExecutiveAction{
			ActionNone, ActionRevealFaction, ActionDeterminePresident, ActionKill, ActionKill, ActionNone,
		}, nil
	case n == 9 || n == 10:
		return [ExecutiveSlots]ExecutiveAction{
			ActionRevealFaction, ActionRevealFaction, ActionDeterminePresident, ActionKill, ActionKill, ActionNone,
		}, nil
	}
	return [ExecutiveSlots]ExecutiveAction{}, fmt.Errorf("%w: %d", ErrPlayerCount, n)
}

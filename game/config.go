package game

import (
	"fmt"
	"strings"

	"chancellery/law"
)

type Config struct {
	// ID names the game in traces and audit rows.
	ID string

	// SkipVotes goes straight from nomination to law drawing.
	SkipVotes bool

	// RNG seed (0 => time-based)
	Seed int64

	// Credentials issues and checks reconnection keys (nil => random tokens).
	Credentials Credentials

	// Optional: fixed draw pile for every start, front first. Must be the full deck.
	DeckOverride []law.Law
	// Optional: roles by registration order instead of dealing them.
	RoleOverride []Role
	// Optional: first president instead of a random pick.
	FirstPresident PlayerID
}

func (c Config) validate() error {
	if strings.TrimSpace(c.ID) == "" {
		return fmt.Errorf("game ID must not be empty")
	}
	if c.DeckOverride != nil && !law.SameMultiset(c.DeckOverride, law.FullDeck()) {
		return fmt.Errorf("deck override must hold %d liberal and %d fascist laws", law.LiberalCount, law.FascistCount)
	}
	if c.RoleOverride != nil {
		if err := validateRoles(c.RoleOverride); err != nil {
			return err
		}
	}
	return nil
}

func validateRoles(roles []Role) error {
	n := len(roles)
	if n < MinPlayers || n > MaxPlayers {
		return fmt.Errorf("%w: role override for %d players", ErrPlayerCount, n)
	}
	counts := map[Role]int{}
	for _, r := range roles {
		counts[r]++
	}
	if counts[RoleFascistLeader] != 1 || counts[RoleFascist] != (n-5)/2+1 || counts[RoleLiberal] != n-1-counts[RoleFascist] {
		return fmt.Errorf("role override does not match a %d player game", n)
	}
	return nil
}

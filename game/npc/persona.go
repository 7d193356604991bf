package npc

// PersonalityProfile defines the tunable parameters for a RuleBrain.
type PersonalityProfile struct {
	Loyalty    float64 `json:"loyalty"`    // 0.0–1.0: how reliably the NPC plays for its own faction
	Trust      float64 `json:"trust"`      // 0.0–1.0: tendency to vote yes on unknown governments
	Randomness float64 `json:"randomness"` // 0.0–1.0: decision noise
}

// NPCPersona defines a named NPC character.
type NPCPersona struct {
	ID    string             `json:"id"`
	Name  string             `json:"name"`
	Image string             `json:"image"`
	Color string             `json:"color"`
	Brain PersonalityProfile `json:"brain"`
}

package npc

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"sync"
)

// PersonaRegistry holds all NPC persona definitions.
type PersonaRegistry struct {
	mu       sync.RWMutex
	personas map[string]*NPCPersona
}

func NewRegistry() *PersonaRegistry {
	return &PersonaRegistry{
		personas: make(map[string]*NPCPersona),
	}
}

// DefaultRegistry holds the built-in personas.
func DefaultRegistry() *PersonaRegistry {
	r := NewRegistry()
	for _, p := range []*NPCPersona{
		{ID: "clerk", Name: "Clerk", Color: "#7a8b99", Brain: PersonalityProfile{Loyalty: 0.9, Trust: 0.7, Randomness: 0.1}},
		{ID: "whip", Name: "Whip", Color: "#b03a2e", Brain: PersonalityProfile{Loyalty: 1.0, Trust: 0.4, Randomness: 0.05}},
		{ID: "delegate", Name: "Delegate", Color: "#2e86c1", Brain: PersonalityProfile{Loyalty: 0.8, Trust: 0.6, Randomness: 0.3}},
		{ID: "envoy", Name: "Envoy", Color: "#1e8449", Brain: PersonalityProfile{Loyalty: 0.7, Trust: 0.8, Randomness: 0.2}},
		{ID: "scribe", Name: "Scribe", Color: "#d4ac0d", Brain: PersonalityProfile{Loyalty: 0.85, Trust: 0.5, Randomness: 0.15}},
		{ID: "usher", Name: "Usher", Color: "#6c3483", Brain: PersonalityProfile{Loyalty: 0.6, Trust: 0.9, Randomness: 0.4}},
		{ID: "notary", Name: "Notary", Color: "#a04000", Brain: PersonalityProfile{Loyalty: 0.95, Trust: 0.3, Randomness: 0.1}},
		{ID: "herald", Name: "Herald", Color: "#148f77", Brain: PersonalityProfile{Loyalty: 0.75, Trust: 0.65, Randomness: 0.25}},
		{ID: "steward", Name: "Steward", Color: "#5d6d7e", Brain: PersonalityProfile{Loyalty: 0.9, Trust: 0.55, Randomness: 0.2}},
		{ID: "bailiff", Name: "Bailiff", Color: "#922b21", Brain: PersonalityProfile{Loyalty: 0.8, Trust: 0.45, Randomness: 0.3}},
	} {
		r.personas[p.ID] = p
	}
	return r
}

// LoadFromFile loads NPC personas from a JSON file.
func (r *PersonaRegistry) LoadFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read personas file: %w", err)
	}
	return r.LoadFromJSON(data)
}

// LoadFromJSON loads NPC personas from raw JSON bytes.
func (r *PersonaRegistry) LoadFromJSON(data []byte) error {
	var list []*NPCPersona
	if err := json.Unmarshal(data, &list); err != nil {
		return fmt.Errorf("parse personas JSON: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range list {
		if p.ID == "" || p.Name == "" {
			continue
		}
		r.personas[p.ID] = p
	}
	return nil
}

func (r *PersonaRegistry) Get(id string) *NPCPersona {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.personas[id]
}

// All returns every persona ordered by ID.
func (r *PersonaRegistry) All() []*NPCPersona {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*NPCPersona, 0, len(r.personas))
	for _, p := range r.personas {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r *PersonaRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.personas)
}

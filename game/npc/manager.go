package npc

import (
	"errors"
	"fmt"
	"log"
	"math/rand"
	"sync"
	"time"

	"chancellery/game"
)

// NPCInstance represents an NPC registered in a game.
type NPCInstance struct {
	PlayerID   game.PlayerID
	Persona    *NPCPersona
	Brain      BrainDecider
	ThinkDelay time.Duration
}

// Manager manages NPC lifecycle and decision-making for one or more games.
type Manager struct {
	registry  *PersonaRegistry
	instances map[game.PlayerID]*NPCInstance
	mu        sync.RWMutex
	rng       *rand.Rand
	baseDelay time.Duration
}

// NewManager creates an NPC manager. seed 0 means time-based; baseDelay 0 makes NPCs act at once.
func NewManager(registry *PersonaRegistry, seed int64, baseDelay time.Duration) *Manager {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Manager{
		registry:  registry,
		instances: make(map[game.PlayerID]*NPCInstance),
		rng:       rand.New(rand.NewSource(seed)),
		baseDelay: baseDelay,
	}
}

func (m *Manager) Registry() *PersonaRegistry {
	return m.registry
}

// SpawnNPC registers an NPC in g. Registration happens without holding m.mu.
func (m *Manager) SpawnNPC(g *game.Game, persona *NPCPersona) (*NPCInstance, error) {
	m.mu.Lock()
	seed := m.rng.Int63()
	var thinkDelay time.Duration
	if m.baseDelay > 0 {
		jitter := time.Duration(m.rng.Int63n(int64(m.baseDelay)))
		thinkDelay = m.baseDelay + time.Duration(persona.Brain.Randomness*float64(m.baseDelay)) + jitter
	}
	m.mu.Unlock()

	p, _, err := g.Register(game.User{Name: persona.Name, Image: persona.Image, Color: persona.Color})
	if err != nil {
		return nil, fmt.Errorf("spawn NPC %s: %w", persona.Name, err)
	}

	inst := &NPCInstance{
		PlayerID:   p.ID,
		Persona:    persona,
		Brain:      NewRuleBrain(persona, seed),
		ThinkDelay: thinkDelay,
	}
	m.mu.Lock()
	m.instances[p.ID] = inst
	m.mu.Unlock()

	log.Printf("[NPC] Spawned %s in game %s", persona.Name, g.ID())
	return inst, nil
}

// Fill spawns personas until the roster of g holds want players.
func (m *Manager) Fill(g *game.Game, want int) ([]*NPCInstance, error) {
	var spawned []*NPCInstance
	for _, persona := range m.registry.All() {
		if len(g.Snapshot().Players) >= want {
			break
		}
		inst, err := m.SpawnNPC(g, persona)
		if errors.Is(err, game.ErrDuplicateRegistration) {
			continue
		}
		if err != nil {
			return spawned, err
		}
		spawned = append(spawned, inst)
	}
	if n := len(g.Snapshot().Players); n < want {
		return spawned, fmt.Errorf("only %d of %d seats filled", n, want)
	}
	return spawned, nil
}

// OnTurn asks the NPC's brain what to do with view. It returns nil when the view has no task.
func (m *Manager) OnTurn(view game.View) game.Action {
	inst := m.GetInstance(view.Me)
	if inst == nil {
		log.Printf("[NPC] OnTurn called for unknown player %q", view.Me)
		return nil
	}
	action := inst.Brain.Decide(view)
	if action != nil {
		log.Printf("[NPC] %s decides: %s %+v", inst.Persona.Name, action.Kind(), action)
	}
	return action
}

func (m *Manager) GetInstance(id game.PlayerID) *NPCInstance {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.instances[id]
}

func (m *Manager) IsNPC(id game.PlayerID) bool {
	return m.GetInstance(id) != nil
}

// Instances returns every tracked NPC.
func (m *Manager) Instances() []*NPCInstance {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*NPCInstance, 0, len(m.instances))
	for _, inst := range m.instances {
		out = append(out, inst)
	}
	return out
}

func (m *Manager) DespawnNPC(id game.PlayerID) {
	m.mu.Lock()
	inst := m.instances[id]
	delete(m.instances, id)
	m.mu.Unlock()

	if inst != nil {
		log.Printf("[NPC] Despawned %s", inst.Persona.Name)
	}
}

func (m *Manager) GetThinkDelay(id game.PlayerID) time.Duration {
	if inst := m.GetInstance(id); inst != nil {
		return inst.ThinkDelay
	}
	return time.Second
}

package npc

import "chancellery/game"

// BrainDecider is the core interface all NPC types implement.
type BrainDecider interface {
	// Decide is called whenever the NPC's view carries a task. It returns nil
	// when there is nothing to do.
	Decide(view game.View) game.Action
	// Name returns a human-readable identifier for debugging.
	Name() string
}

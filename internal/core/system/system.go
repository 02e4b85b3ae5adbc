package system

import "time"

// Phase defines execution ordering within a single simulation tick.
type Phase int

const (
	PhaseEvents  Phase = iota // 0: swap + dispatch last tick's events
	PhaseDriver               // 1: idle characters pick up queued goals
	PhaseAnimate              // 2: advance animation bands, commit finished actions
	PhaseRegen                // 3: regeneration, spell timers, stat refresh
	PhasePersist              // 4: batch save dirty characters
	PhaseCleanup              // 5: reap dead characters, expire ground items
)

// System is the interface every tick system implements.
type System interface {
	Phase() Phase
	Update(dt time.Duration)
}

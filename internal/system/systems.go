package system

import (
	"time"

	"go.uber.org/zap"

	coresys "github.com/mercia/server/internal/core/system"
	"github.com/mercia/server/internal/world"
)

// EventSystem opens the tick: it advances the tick counter and delivers
// everything emitted during the previous tick.
type EventSystem struct {
	game *Game
}

func NewEventSystem(g *Game) *EventSystem { return &EventSystem{game: g} }

func (s *EventSystem) Phase() coresys.Phase { return coresys.PhaseEvents }

func (s *EventSystem) Update(_ time.Duration) {
	s.game.S.Tick++
	s.game.S.Bus.Swap()
	s.game.S.Bus.Dispatch()
}

// DriverSystem runs the goal dispatcher for every idle character.
type DriverSystem struct {
	game *Game
}

func NewDriverSystem(g *Game) *DriverSystem { return &DriverSystem{game: g} }

func (s *DriverSystem) Phase() coresys.Phase { return coresys.PhaseDriver }

func (s *DriverSystem) Update(_ time.Duration) {
	g := s.game
	g.S.EachChar(func(cn int, _ *world.Character) {
		g.Driver(cn)
	})
}

// RegenSystem runs the per-tick upkeep on every character. A full
// derived-value rebuild is spread over the population, one sixtieth of
// a second apart per character, to catch drift without paying for a
// rebuild on every tick.
type RegenSystem struct {
	game *Game
}

func NewRegenSystem(g *Game) *RegenSystem { return &RegenSystem{game: g} }

func (s *RegenSystem) Phase() coresys.Phase { return coresys.PhaseRegen }

func (s *RegenSystem) Update(_ time.Duration) {
	g := s.game
	g.S.EachChar(func(cn int, _ *world.Character) {
		g.Regenerate(cn)
		if (g.S.Tick+cn)%(world.Ticks*60) == 0 {
			g.UpdateChar(cn)
		}
	})
}

// CleanupSystem closes the tick: dead respawning NPCs count down and
// come back at their spawn point, and dropped items rot away.
type CleanupSystem struct {
	game *Game
}

func NewCleanupSystem(g *Game) *CleanupSystem { return &CleanupSystem{game: g} }

func (s *CleanupSystem) Phase() coresys.Phase { return coresys.PhaseCleanup }

func (s *CleanupSystem) Update(_ time.Duration) {
	g := s.game
	if n := g.S.AgeGroundItems(); n > 0 {
		g.Log.Debug("ground items expired", zap.Int("count", n))
	}
	g.S.EachChar(func(cn int, ch *world.Character) {
		if ch.Data[world.DataRespawn] == 0 {
			return
		}
		ch.Data[world.DataRespawn]--
		if ch.Data[world.DataRespawn] > 0 {
			return
		}
		g.respawn(cn)
	})
}

// respawn puts a dead NPC back on the map at its spawn point, healed
// and with a clean slate.
func (g *Game) respawn(cn int) {
	ch := g.S.Ch(cn)
	x, y := ch.Data[world.DataSpawnX], ch.Data[world.DataSpawnY]
	if !g.S.Map.TileFree(g.S, x, y) {
		// Spawn blocked: try again in a second.
		ch.Data[world.DataRespawn] = world.Ticks
		return
	}
	ch.AHP = ch.HP.Value() * world.PointScale
	ch.AEnd = ch.End.Value() * world.PointScale
	ch.AMana = ch.Mana.Value() * world.PointScale
	ch.ClearGoals()
	for i := range ch.Enemy {
		ch.Enemy[i] = 0
		ch.Data[world.DataEnemy+i] = 0
	}
	ch.Status = 0
	ch.Dir = world.DxDown
	ch.Stunned = 0
	ch.EscapeTimer = 0
	if !g.S.PlaceChar(cn, x, y) {
		ch.Data[world.DataRespawn] = world.Ticks
		return
	}
	g.UpdateChar(cn)
	g.Log.Debug("npc respawned",
		zap.Int("cn", cn), zap.Int("x", x), zap.Int("y", y))
}

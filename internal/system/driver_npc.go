package system

import (
	"go.uber.org/zap"

	"github.com/mercia/server/internal/core/event"
	"github.com/mercia/server/internal/world"
)

// How long an NPC keeps hunting an enemy it can no longer see, and how
// far it scans when answering a help shout.
const (
	enemyMemory = world.Ticks * 30
	helpRange   = 12
	chaseRange  = 14
)

// frustOff spreads repeated approaches to the same tile, so an NPC that
// cannot reach its goal circles it instead of ramming the same wall.
var frustOff = [5]int{0, 1, -1, 2, -2}

func frustXOff(f int) int { return frustOff[f%5] }
func frustYOff(f int) int { return frustOff[(f/5)%5] }

// npcDriver picks the next goal for an idle NPC: fight remembered
// enemies, chase the last place one was seen, rest when hurt, shut
// doors, walk the patrol, or drift home.
func (g *Game) npcDriver(cn int) {
	ch := g.S.Ch(cn)

	switch ch.LastAction {
	case world.OutcomeSuccess:
		ch.Data[world.DataFrust] = 0
	case world.OutcomeFailed:
		ch.Data[world.DataFrust]++
	}
	ch.LastAction = world.OutcomeNone

	if co := g.npcPickEnemy(cn); co != 0 {
		ch.AttackCn = co
		ch.GotoX = 0
		return
	}

	// Head for the last spot an enemy was seen at, nudged by the
	// frustration counter so repeated failures probe around it.
	if ch.Data[world.DataFrustX] != 0 {
		f := ch.Data[world.DataFrust]
		if f > 20 {
			ch.Data[world.DataFrustX] = 0
			ch.Data[world.DataFrustY] = 0
			ch.Data[world.DataFrust] = 0
		} else {
			x, y := g.clampMap(
				ch.Data[world.DataFrustX]+frustXOff(f),
				ch.Data[world.DataFrustY]+frustYOff(f))
			if x == ch.X && y == ch.Y {
				ch.Data[world.DataFrustX] = 0
				ch.Data[world.DataFrustY] = 0
			} else {
				ch.GotoX, ch.GotoY = x, y
				return
			}
		}
	}

	// Hurt NPCs stay put and let regeneration work.
	if ch.AHP < ch.HP.Value()*750 {
		return
	}

	if g.npcCloseDoor(cn) {
		return
	}

	if ch.Data[world.DataPatrolBase] != 0 {
		g.npcPatrol(cn)
		return
	}

	// Nothing to do: drift back to the resting spot.
	if sx, sy := ch.Data[world.DataSpawnX], ch.Data[world.DataSpawnY]; sx != 0 &&
		(ch.X != sx || ch.Y != sy) {
		ch.GotoX, ch.GotoY = sx, sy
	}
}

// npcPickEnemy returns the closest live remembered enemy in chase
// range, dropping stale and dead entries on the way.
func (g *Game) npcPickEnemy(cn int) int {
	ch := g.S.Ch(cn)
	best, bestDist := 0, chaseRange+1
	for i, co := range ch.Enemy {
		if co == 0 {
			continue
		}
		en := g.S.Ch(co)
		if !en.Used || en.Data[world.DataRespawn] > 0 ||
			ch.Data[world.DataEnemy+i] < g.S.Tick {
			ch.Enemy[i] = 0
			ch.Data[world.DataEnemy+i] = 0
			continue
		}
		if d := chebyshev(ch.X, ch.Y, en.X, en.Y); d < bestDist {
			best, bestDist = co, d
		}
	}
	return best
}

// npcCloseDoor shuts the door the NPC is standing next to, if it is
// open and nobody is in the frame.
func (g *Game) npcCloseDoor(cn int) bool {
	ch := g.S.Ch(cn)
	for _, d := range [4][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}} {
		x, y := ch.X+d[0], ch.Y+d[1]
		t := g.S.Map.Tile(x, y)
		if t == nil || t.It == 0 || t.Ch != 0 || t.ToCh != 0 {
			continue
		}
		it := g.S.It(t.It)
		if it.Driver != world.DrvDoor || it.Active == world.UseEmpty {
			continue
		}
		ch.MiscAction = world.DrUse
		ch.MiscTarget1 = x
		ch.MiscTarget2 = y
		ch.GotoX = 0
		return true
	}
	return false
}

// npcPatrol walks the waypoint ring stored on the character sheet.
func (g *Game) npcPatrol(cn int) {
	ch := g.S.Ch(cn)
	idx := ch.Data[world.DataPatrol]
	if idx < 0 || idx >= 8 {
		idx = 0
	}
	wx := ch.Data[world.DataPatrolBase+idx*2]
	wy := ch.Data[world.DataPatrolBase+idx*2+1]
	if wx == 0 {
		idx = 0
		wx = ch.Data[world.DataPatrolBase]
		wy = ch.Data[world.DataPatrolBase+1]
		if wx == 0 {
			return
		}
	}

	f := ch.Data[world.DataFrust]
	if f > 20 || absInt(ch.X-wx)+absInt(ch.Y-wy) < 4 {
		// Reached or gave up: advance to the next waypoint.
		idx++
		if idx >= 8 || ch.Data[world.DataPatrolBase+idx*2] == 0 {
			idx = 0
		}
		ch.Data[world.DataPatrol] = idx
		ch.Data[world.DataFrust] = 0
		return
	}

	x, y := g.clampMap(wx+frustXOff(f), wy+frustYOff(f))
	ch.GotoX, ch.GotoY = x, y
	ch.Data[world.DataPatrol] = idx
}

// npcGotHit is the NPC reaction to taking damage: remember the
// attacker, fight back, and call for help.
func (g *Game) npcGotHit(cn, co int) {
	ch := g.S.Ch(cn)
	ch.Data[world.DataRegenTimer] = world.Ticks * 60
	if co == 0 {
		return
	}
	at := g.S.Ch(co)
	if !at.Used {
		return
	}

	g.npcRemember(cn, co)
	if ch.AttackCn == 0 {
		ch.AttackCn = co
		ch.GotoX = 0
	}
	ch.Data[world.DataFrustX] = at.X
	ch.Data[world.DataFrustY] = at.Y
	ch.Data[world.DataFrust] = 0

	if group := ch.Data[world.DataHelpGroup]; group != 0 &&
		ch.AHP < ch.HP.Value()*666 {
		g.npcShoutHelp(cn, co, group)
	}
}

// npcRemember puts co into the enemy list with a fresh timeout,
// evicting the oldest entry when the list is full.
func (g *Game) npcRemember(cn, co int) {
	ch := g.S.Ch(cn)
	expiry := g.S.Tick + enemyMemory
	for i, en := range ch.Enemy {
		if en == co {
			ch.Data[world.DataEnemy+i] = expiry
			return
		}
	}
	for i, en := range ch.Enemy {
		if en == 0 {
			ch.Enemy[i] = co
			ch.Data[world.DataEnemy+i] = expiry
			return
		}
	}
	copy(ch.Enemy[:], ch.Enemy[1:])
	copy(ch.Data[world.DataEnemy:world.DataEnemy+3],
		ch.Data[world.DataEnemy+1:world.DataEnemy+4])
	ch.Enemy[len(ch.Enemy)-1] = co
	ch.Data[world.DataEnemy+3] = expiry
}

// npcShoutHelp alerts every NPC of the same help group in earshot.
func (g *Game) npcShoutHelp(cn, co, group int) {
	ch := g.S.Ch(cn)
	event.Emit(g.S.Bus, event.Shout{Cn: cn, Text: ch.Name + " shouts for help!"})
	g.Log.Debug("npc shouts for help",
		zap.Int("cn", cn), zap.Int("attacker", co), zap.Int("group", group))

	g.S.EachCharNear(ch.X, ch.Y, helpRange, func(on int, other *world.Character) {
		if on == cn || other.IsPlayer() ||
			other.Data[world.DataHelpGroup] != group {
			return
		}
		g.npcRemember(on, co)
		if other.AttackCn == 0 {
			other.AttackCn = co
			other.GotoX = 0
		}
	})
}

package system

import (
	"time"

	"go.uber.org/zap"

	"github.com/mercia/server/internal/core/event"
	coresys "github.com/mercia/server/internal/core/system"
	"github.com/mercia/server/internal/world"
)

// AnimateSystem advances every character's animation band once per tick
// and commits the action when the band runs out. Phase 2. The speed
// gate makes slow characters skip frames: a character loses Speed out
// of every Ticks frames, phase-shifted by its index so the skips spread
// across the population.
type AnimateSystem struct {
	game *Game
}

func NewAnimateSystem(g *Game) *AnimateSystem {
	return &AnimateSystem{game: g}
}

func (s *AnimateSystem) Phase() coresys.Phase { return coresys.PhaseAnimate }

func (s *AnimateSystem) Update(_ time.Duration) {
	g := s.game
	g.S.EachChar(func(cn int, ch *world.Character) {
		if ch.Status <= world.StatusIdleMax {
			return
		}
		if (g.S.Tick+cn)%world.Ticks < ch.Speed {
			return
		}
		base := world.BaseStatus(ch.Status)
		ch.Status++
		if ch.Status >= base+world.BandFrames(base) {
			g.commit(cn, base)
		}
	})
}

// commit resolves a finished animation band and re-enters the driver so
// a queued goal continues without losing a tick.
func (g *Game) commit(cn, base int) {
	ch := g.S.Ch(cn)
	switch {
	case base >= world.StatusWalkUp && base < world.StatusTurnMin:
		g.commitWalk(cn)
	case base >= world.StatusTurnMin && base <= world.StatusTurnMax:
		ch.Dir = world.TurnTarget(base)
		ch.Status = 0
	case base >= world.StatusActUp:
		g.commitAct(cn)
	default:
		g.Log.Warn("commit of unknown band", zap.Int("cn", cn), zap.Int("base", base))
		ch.Status = 0
	}
	if ch.Idle() {
		g.Driver(cn)
	}
}

// commitWalk moves the character onto its reserved destination.
func (g *Game) commitWalk(cn int) {
	ch := g.S.Ch(cn)
	if t := g.S.Map.Tile(ch.X, ch.Y); t != nil && t.Ch == cn {
		t.Ch = 0
	}
	if ch.Light != 0 {
		g.S.AddLight(ch.X, ch.Y, -ch.Light)
	}
	g.S.ReleaseWalk(cn)
	ch.X, ch.Y = ch.ToX, ch.ToY
	if t := g.S.Map.Tile(ch.X, ch.Y); t != nil {
		t.Ch = cn
	}
	if ch.Light != 0 {
		g.S.AddLight(ch.X, ch.Y, ch.Light)
	}
	ch.Status = 0
}

func (g *Game) commitAct(cn int) {
	ch := g.S.Ch(cn)
	act := ch.Status2
	target := ch.ActTarget
	ch.Status = 0
	ch.Status2 = 0
	ch.ActTarget = 0

	switch act {
	case world.ActAttack0, world.ActAttack1, world.ActAttack2:
		g.DoAttack(cn, target)
	case world.ActPickup:
		g.commitPickup(cn, target)
	case world.ActDrop:
		g.commitDrop(cn)
	case world.ActGive:
		g.commitGive(cn, target)
	case world.ActUse:
		g.commitUse(cn, target)
	case world.ActSkill:
		g.commitSkill(cn, target)
	case world.ActBow, world.ActWave:
		// Pure gestures; the goal already resolved when the band began.
	default:
		g.Log.Warn("commit of unknown act", zap.Int("cn", cn), zap.Int("act", act))
	}
}

// finishMisc resolves the pending misc goal after its act played.
func (g *Game) finishMisc(cn int, out world.Outcome) {
	ch := g.S.Ch(cn)
	ch.MiscAction = world.DrIdle
	ch.MiscTarget1, ch.MiscTarget2 = 0, 0
	ch.LastAction = out
}

func (g *Game) commitPickup(cn, in int) {
	ch := g.S.Ch(cn)
	it := g.S.It(in)
	t := g.S.Map.Tile(it.X, it.Y)
	if in == 0 || !it.Used || it.Carried != 0 || t == nil || t.It != in || ch.Citem != 0 {
		g.finishMisc(cn, world.OutcomeFailed)
		return
	}
	t.It = 0
	if it.Light[0] != 0 {
		g.S.AddLight(it.X, it.Y, -it.Light[0])
	}
	it.Carried = cn
	ch.Citem = in
	g.finishMisc(cn, world.OutcomeSuccess)
}

func (g *Game) commitDrop(cn int) {
	ch := g.S.Ch(cn)
	dx, dy := world.DirOffset(ch.Dir)
	x, y := ch.X+dx, ch.Y+dy
	t := g.S.Map.Tile(x, y)
	if ch.Citem == 0 || t == nil || t.It != 0 {
		g.finishMisc(cn, world.OutcomeFailed)
		return
	}
	in := ch.Citem
	ch.Citem = 0
	g.DropItem(in, x, y)
	g.finishMisc(cn, world.OutcomeSuccess)
}

func (g *Game) commitGive(cn, co int) {
	ch := g.S.Ch(cn)
	other := g.S.Ch(co)
	if ch.Citem == 0 || co == 0 || !other.Used ||
		chebyshev(ch.X, ch.Y, other.X, other.Y) > 1 {
		g.finishMisc(cn, world.OutcomeFailed)
		return
	}
	in := ch.Citem
	if other.Citem == 0 {
		other.Citem = in
	} else if !g.invAdd(other, in) {
		g.S.Message(cn, event.ColorRed, other.Name+" can't carry any more.")
		g.finishMisc(cn, world.OutcomeFailed)
		return
	}
	ch.Citem = 0
	g.S.It(in).Carried = co
	g.S.Message(co, event.ColorBlue, ch.Name+" gives you a "+g.S.It(in).Name+".")
	g.finishMisc(cn, world.OutcomeSuccess)
}

// commitUse flips an item's use state. Doors additionally open or close
// their tile; a continuing-use item keeps the goal queued so the driver
// fires it again.
func (g *Game) commitUse(cn, in int) {
	ch := g.S.Ch(cn)
	it := g.S.It(in)
	if in == 0 || !it.Used {
		if ch.MiscAction == world.DrUse {
			g.finishMisc(cn, world.OutcomeFailed)
		} else {
			ch.LastAction = world.OutcomeFailed
		}
		return
	}

	switch {
	case it.Driver == world.DrvDoor:
		g.useDoor(in)
	case it.Flags&world.IfUseActivate != 0 && it.Active == world.UseEmpty:
		it.Active = world.UseActive
		it.Duration = 0
	case it.Flags&world.IfUseDeactivate != 0 && it.Active != world.UseEmpty:
		it.Active = world.UseEmpty
	case it.Flags&world.IfUseDestroy != 0:
		g.destroyItem(cn, in)
	}

	if ch.MiscAction == world.DrUse && it.Driver != world.DrvLever {
		g.finishMisc(cn, world.OutcomeSuccess)
	} else {
		ch.LastAction = world.OutcomeSuccess
	}
	g.UpdateChar(cn)
}

// useDoor toggles a door between open and closed, moving the block
// flags with it.
func (g *Game) useDoor(in int) {
	it := g.S.It(in)
	t := g.S.Map.Tile(it.X, it.Y)
	if t == nil {
		return
	}
	// Never close a door on someone standing in it.
	if it.Active != world.UseEmpty && (t.Ch != 0 || t.ToCh != 0) {
		return
	}
	if it.Active == world.UseEmpty {
		it.Active = world.UseActive
		it.Flags &^= world.IfMoveBlock | world.IfSightBlock
	} else {
		it.Active = world.UseEmpty
		it.Flags |= world.IfMoveBlock | world.IfSightBlock
	}
}

// destroyItem removes a consumed item from its owner.
func (g *Game) destroyItem(cn, in int) {
	ch := g.S.Ch(cn)
	if ch.Citem == in {
		ch.Citem = 0
	}
	for i := range ch.Item {
		if ch.Item[i] == in {
			ch.Item[i] = 0
		}
	}
	for i := range ch.Worn {
		if ch.Worn[i] == in {
			ch.Worn[i] = 0
		}
	}
	g.S.FreeItem(in)
}

// commitSkill resolves a latched skill act: endurance cost and the
// notification. Spell construction itself lives outside the core.
func (g *Game) commitSkill(cn, target int) {
	ch := g.S.Ch(cn)
	nr := ch.SkillTarget2
	ch.SkillTarget2 = 0
	if nr <= 0 || nr >= world.MaxSkill || ch.Skill[nr].Base() == 0 {
		ch.LastAction = world.OutcomeFailed
		return
	}
	cost := g.Lua.SpellCost(nr, ch.Skill[nr].Value()) * world.PointScale
	if ch.AEnd < cost {
		g.S.Message(cn, event.ColorRed, "You are too exhausted.")
		ch.LastAction = world.OutcomeFailed
		return
	}
	ch.AEnd -= cost
	g.S.Fight(world.NtSee, cn, target, 0, ch.X, ch.Y)
	ch.LastAction = world.OutcomeSuccess
}

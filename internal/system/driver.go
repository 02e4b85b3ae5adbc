package system

import (
	"go.uber.org/zap"

	"github.com/mercia/server/internal/core/event"
	"github.com/mercia/server/internal/world"
)

// The action driver runs once per tick for every idle character and
// converts queued goals into animation bands. Primitive act* functions
// start a band and succeed or refuse; chr* helpers walk a goal to
// completion across ticks; drv* wrappers map the tri-state progress
// onto goal clearing and LastAction.
//
// Tri-state convention, kept from the old server: -1 the goal is
// impossible, 0 the goal is still in progress, 1 the goal is done.

// Driver dispatches one idle character's queued goals by priority.
func (g *Game) Driver(cn int) {
	ch := g.S.Ch(cn)
	if !ch.Used || !ch.Idle() || ch.Stunned > 0 || ch.HasFlag(world.CfStunned) {
		return
	}
	if ch.Data[world.DataRespawn] > 0 {
		return
	}

	if ch.UseNr != 0 {
		g.drvUse(cn)
		return
	}
	if ch.SkillNr != 0 {
		g.drvSkill(cn)
		return
	}
	if ch.IsPlayer() && g.Lua != nil &&
		g.Lua.PlayerTickHook(cn, ch.X, ch.Y, ch.Status) {
		return
	}
	if ch.GotoX != 0 {
		g.drvMoveto(cn)
		return
	}
	if ch.AttackCn != 0 {
		g.drvAttackChar(cn)
		return
	}
	if ch.MiscAction != world.DrIdle {
		g.drvMisc(cn)
		return
	}
	if !ch.IsPlayer() {
		g.npcDriver(cn)
	}
}

func (g *Game) drvMisc(cn int) {
	ch := g.S.Ch(cn)
	switch ch.MiscAction {
	case world.DrDrop:
		g.drvWrap(cn, g.chrDropTo(cn, ch.MiscTarget1, ch.MiscTarget2))
	case world.DrPickup:
		g.drvWrap(cn, g.chrPickupTo(cn, ch.MiscTarget1, ch.MiscTarget2))
	case world.DrGive:
		g.drvWrap(cn, g.chrGiveTo(cn, ch.MiscTarget1))
	case world.DrUse:
		g.drvUseTo(cn)
	case world.DrBow:
		g.drvGesture(cn, world.ActBow)
	case world.DrWave:
		g.drvGesture(cn, world.ActWave)
	case world.DrTurn:
		g.drvTurn(cn)
	default:
		g.Log.Warn("unknown misc action",
			zap.Int("cn", cn), zap.Int("action", ch.MiscAction))
		ch.MiscAction = world.DrIdle
	}
}

// drvWrap applies the tri-state convention to a misc goal.
func (g *Game) drvWrap(cn, ret int) {
	ch := g.S.Ch(cn)
	switch ret {
	case -1:
		ch.MiscAction = world.DrIdle
		ch.MiscTarget1, ch.MiscTarget2 = 0, 0
		ch.LastAction = world.OutcomeFailed
	case 1:
		ch.MiscAction = world.DrIdle
		ch.MiscTarget1, ch.MiscTarget2 = 0, 0
		ch.LastAction = world.OutcomeSuccess
	}
}

// ── primitives ──────────────────────────────────────────────────────

// actTurn plays one rotation step toward dir. False when already facing.
func (g *Game) actTurn(cn, dir int) bool {
	ch := g.S.Ch(cn)
	_, status, ok := world.RotateStep(ch.Dir, dir)
	if !ok {
		return false
	}
	ch.Status = status
	ch.Status2 = 0
	return true
}

// actMove starts a walk band. Straight moves need the destination free;
// diagonal moves also reserve the two tiles the sprite passes over.
func (g *Game) actMove(cn, dir int) bool {
	ch := g.S.Ch(cn)
	dx, dy := world.DirOffset(dir)
	if dx == 0 && dy == 0 {
		return false
	}
	nx, ny := ch.X+dx, ch.Y+dy
	if !g.S.Map.TileFree(g.S, nx, ny) {
		return false
	}
	if world.IsDiagonal(dir) {
		if !g.S.Map.TileFree(g.S, ch.X+dx, ch.Y) || !g.S.Map.TileFree(g.S, ch.X, ch.Y+dy) {
			return false
		}
		g.S.Map.Reserve(ch.X+dx, ch.Y, cn)
		g.S.Map.Reserve(ch.X, ch.Y+dy, cn)
	}
	g.S.Map.Reserve(nx, ny, cn)
	ch.ToX, ch.ToY = nx, ny
	ch.Dir = dir
	base, _ := world.WalkStatus(dir)
	ch.Status = base
	ch.Status2 = 0
	return true
}

// actAttack starts a swing at co, who must be in the facing tile.
func (g *Game) actAttack(cn, co int) {
	ch := g.S.Ch(cn)
	v := g.S.Rand(3)
	if v == ch.LastAttack {
		v = (v + 1) % 3
	}
	ch.LastAttack = v
	if v == 0 {
		ch.Status2 = world.ActAttack0
	} else {
		ch.Status2 = v + 4 // ActAttack1 / ActAttack2
	}
	ch.Status = world.ActStatus(world.SquareOff(ch.Dir))
	ch.ActTarget = co
}

// actGesture starts a non-combat act band (pickup, drop, give, use,
// bow, wave, skill) on the current facing.
func (g *Game) actGesture(cn, act, target int) {
	ch := g.S.Ch(cn)
	ch.Status = world.ActStatus(world.SquareOff(ch.Dir))
	ch.Status2 = act
	ch.ActTarget = target
}

// ── walking ─────────────────────────────────────────────────────────

// chrMoveTo walks one step toward (x,y). Returns 1 on arrival, 0 while
// under way, -1 when the goal is unreachable.
func (g *Game) chrMoveTo(cn, x, y int) int {
	ch := g.S.Ch(cn)
	if ch.X == x && ch.Y == y {
		return 1
	}
	if ch.Unreach > 0 && ch.UnreachX == x && ch.UnreachY == y {
		return -1
	}
	if !g.S.Map.InBounds(x, y) {
		return -1
	}

	dir := world.OffsetDir(x-ch.X, y-ch.Y)

	// Closed doors on the way are used, not bypassed. Cardinal only:
	// a door never opens for someone slipping past its corner.
	if !world.IsDiagonal(dir) {
		dx, dy := world.DirOffset(dir)
		if t := g.S.Map.Tile(ch.X+dx, ch.Y+dy); t != nil && t.It != 0 {
			it := g.S.It(t.It)
			if it.Driver == world.DrvDoor && it.Active == world.UseEmpty {
				if g.actTurn(cn, dir) {
					return 0
				}
				g.actGesture(cn, world.ActUse, t.It)
				return 0
			}
		}
	}

	for _, d := range stepCandidates(dir) {
		ndx, ndy := world.DirOffset(d)
		// Only steps that do not fall further behind.
		if chebyshev(ch.X+ndx, ch.Y+ndy, x, y) > chebyshev(ch.X, ch.Y, x, y) {
			continue
		}
		if g.actMove(cn, d) {
			return 0
		}
	}

	// Nothing moved. Remember the tile as unreachable for a moment so
	// the driver does not grind against a wall every tick.
	ch.UnreachX, ch.UnreachY = x, y
	ch.Unreach = world.Ticks
	return -1
}

// stepCandidates orders the directions to try for a desired heading:
// the heading itself, then its components or flanking diagonals.
func stepCandidates(dir int) [3]int {
	switch dir {
	case world.DxLeftUp:
		return [3]int{dir, world.DxLeft, world.DxUp}
	case world.DxLeftDown:
		return [3]int{dir, world.DxLeft, world.DxDown}
	case world.DxRightUp:
		return [3]int{dir, world.DxRight, world.DxUp}
	case world.DxRightDown:
		return [3]int{dir, world.DxRight, world.DxDown}
	case world.DxUp:
		return [3]int{dir, world.DxLeftUp, world.DxRightUp}
	case world.DxDown:
		return [3]int{dir, world.DxLeftDown, world.DxRightDown}
	case world.DxLeft:
		return [3]int{dir, world.DxLeftUp, world.DxLeftDown}
	case world.DxRight:
		return [3]int{dir, world.DxRightUp, world.DxRightDown}
	}
	return [3]int{}
}

func (g *Game) drvMoveto(cn int) {
	ch := g.S.Ch(cn)
	switch g.chrMoveTo(cn, ch.GotoX, ch.GotoY) {
	case 1:
		ch.GotoX, ch.GotoY = 0, 0
		ch.LastAction = world.OutcomeSuccess
	case -1:
		ch.GotoX, ch.GotoY = 0, 0
		ch.LastAction = world.OutcomeFailed
	}
}

// ── interaction goals ───────────────────────────────────────────────

// chrReach positions cn adjacent to (x,y) facing it. Returns 1 when in
// position and facing, 0 while moving or turning, -1 when unreachable.
func (g *Game) chrReach(cn, x, y int) int {
	ch := g.S.Ch(cn)
	if chebyshev(ch.X, ch.Y, x, y) > 1 {
		gx, gy, ok := g.nearestAdjacent(cn, x, y)
		if !ok {
			return -1
		}
		if ret := g.chrMoveTo(cn, gx, gy); ret != 1 {
			return ret
		}
	}
	dir := world.OffsetDir(x-ch.X, y-ch.Y)
	if dir != 0 && g.actTurn(cn, dir) {
		return 0
	}
	if dir != 0 {
		ch.Dir = dir
	}
	return 1
}

// nearestAdjacent picks the closest enterable tile out of the eight
// around (x,y) plus the tile itself.
func (g *Game) nearestAdjacent(cn, x, y int) (int, int, bool) {
	ch := g.S.Ch(cn)
	best, bx, by := 1<<30, 0, 0
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			tx, ty := x+dx, y+dy
			if tx == ch.X && ty == ch.Y {
				return tx, ty, true
			}
			if dx == 0 && dy == 0 {
				continue
			}
			if !g.S.Map.TileFree(g.S, tx, ty) {
				continue
			}
			if d := chebyshev(ch.X, ch.Y, tx, ty); d < best {
				best, bx, by = d, tx, ty
			}
		}
	}
	if best == 1<<30 {
		return 0, 0, false
	}
	return bx, by, true
}

func (g *Game) chrDropTo(cn, x, y int) int {
	ch := g.S.Ch(cn)
	if ch.Citem == 0 {
		return -1
	}
	if t := g.S.Map.Tile(x, y); t == nil || t.It != 0 {
		return -1
	}
	if ret := g.chrReach(cn, x, y); ret != 1 {
		return ret
	}
	g.actGesture(cn, world.ActDrop, 0)
	return 0
}

func (g *Game) chrPickupTo(cn, x, y int) int {
	t := g.S.Map.Tile(x, y)
	if t == nil || t.It == 0 {
		return -1
	}
	if g.S.It(t.It).Flags&world.IfTake == 0 {
		g.S.Message(cn, event.ColorRed, "You can't take that.")
		return -1
	}
	if g.S.Ch(cn).Citem != 0 {
		return -1
	}
	if ret := g.chrReach(cn, x, y); ret != 1 {
		return ret
	}
	g.actGesture(cn, world.ActPickup, t.It)
	return 0
}

func (g *Game) chrGiveTo(cn, co int) int {
	ch := g.S.Ch(cn)
	target := g.S.Ch(co)
	if co == 0 || !target.Used || ch.Citem == 0 {
		return -1
	}
	if ret := g.chrReach(cn, target.X, target.Y); ret != 1 {
		return ret
	}
	g.actGesture(cn, world.ActGive, co)
	return 0
}

// drvUse handles carried-item use: worn slots below 20, inventory above.
func (g *Game) drvUse(cn int) {
	ch := g.S.Ch(cn)
	nr := ch.UseNr
	ch.UseNr = 0

	var in int
	if nr < 20 {
		in = ch.Worn[nr]
	} else if nr-20 < world.InvSlots {
		in = ch.Item[nr-20]
	}
	if in == 0 || g.S.It(in).Flags&world.IfUse == 0 {
		ch.LastAction = world.OutcomeFailed
		return
	}
	g.actGesture(cn, world.ActUse, in)
}

// drvUseTo handles using an item on the ground.
func (g *Game) drvUseTo(cn int) {
	ch := g.S.Ch(cn)
	x, y := ch.MiscTarget1, ch.MiscTarget2
	t := g.S.Map.Tile(x, y)
	if t == nil || t.It == 0 || g.S.It(t.It).Flags&world.IfUse == 0 {
		g.drvWrap(cn, -1)
		return
	}
	ret := g.chrReach(cn, x, y)
	if ret != 1 {
		g.drvWrap(cn, ret)
		return
	}
	g.actGesture(cn, world.ActUse, t.It)
}

// drvGesture plays bow and wave. Diagonal facings square off first. The
// goal resolves as soon as the band starts.
func (g *Game) drvGesture(cn, act int) {
	ch := g.S.Ch(cn)
	if world.IsDiagonal(ch.Dir) {
		if g.actTurn(cn, world.SquareOff(ch.Dir)) {
			return
		}
	}
	g.actGesture(cn, act, 0)
	ch.MiscAction = world.DrIdle
	ch.MiscTarget1, ch.MiscTarget2 = 0, 0
	ch.LastAction = world.OutcomeSuccess
}

func (g *Game) drvTurn(cn int) {
	ch := g.S.Ch(cn)
	if ch.MiscDir == 0 || ch.Dir == ch.MiscDir {
		ch.MiscAction = world.DrIdle
		ch.LastAction = world.OutcomeSuccess
		return
	}
	if !g.actTurn(cn, ch.MiscDir) {
		ch.MiscAction = world.DrIdle
		ch.LastAction = world.OutcomeSuccess
	}
}

// drvSkill latches the queued skill into an act band. A character
// target is faced first.
func (g *Game) drvSkill(cn int) {
	ch := g.S.Ch(cn)
	if ch.SkillTarget1 != 0 {
		co := g.S.Ch(ch.SkillTarget1)
		if !co.Used {
			ch.SkillNr = 0
			ch.LastAction = world.OutcomeFailed
			return
		}
		dir := world.OffsetDir(co.X-ch.X, co.Y-ch.Y)
		if dir != 0 && g.actTurn(cn, dir) {
			return
		}
	}
	if world.IsDiagonal(ch.Dir) {
		if g.actTurn(cn, world.SquareOff(ch.Dir)) {
			return
		}
	}
	ch.SkillTarget2 = ch.SkillNr
	ch.SkillNr = 0
	g.actGesture(cn, world.ActSkill, ch.SkillTarget1)
}

// ── attack pursuit ──────────────────────────────────────────────────

// leadMult scales target prediction with distance: the further away the
// chaser, the further ahead it aims.
func leadMult(dist int) int {
	switch {
	case dist > 20:
		return 8
	case dist > 10:
		return 5
	case dist > 5:
		return 3
	case dist > 3:
		return 2
	case dist > 2:
		return 1
	}
	return 0
}

// cardinalTo returns the facing from (x,y) onto an orthogonally
// adjacent (tx,ty), or 0 when not cardinal-adjacent.
func cardinalTo(x, y, tx, ty int) int {
	if absInt(tx-x)+absInt(ty-y) != 1 {
		return 0
	}
	return world.OffsetDir(tx-x, ty-y)
}

func (g *Game) drvAttackChar(cn int) {
	ch := g.S.Ch(cn)
	co := ch.AttackCn
	target := g.S.Ch(co)
	if co == cn || !target.Used || target.AHP < world.DeathFloor ||
		target.HasFlag(world.CfBody) || target.HasFlag(world.CfStoned) {
		ch.AttackCn = 0
		ch.LastAction = world.OutcomeFailed
		return
	}

	// A swing lands only from the four cardinal neighbors, judged
	// against the victim's tile or its walk destination. Diagonal
	// adjacency steps around the corner instead of cutting across it.
	if absInt(target.X-ch.X) == 1 && absInt(target.Y-ch.Y) == 1 {
		if g.chrMoveTo(cn, target.X, target.Y) == -1 {
			ch.Data[world.DataFrustX] = target.X
			ch.Data[world.DataFrustY] = target.Y
			ch.Data[world.DataFrust]++
			ch.AttackCn = 0
			ch.LastAction = world.OutcomeFailed
		}
		return
	}
	dir := cardinalTo(ch.X, ch.Y, target.X, target.Y)
	if dir == 0 && target.ToX != 0 {
		dir = cardinalTo(ch.X, ch.Y, target.ToX, target.ToY)
	}
	if dir != 0 {
		if g.actTurn(cn, dir) {
			return
		}
		ch.Dir = dir
		g.actAttack(cn, co)
		return
	}

	tx, ty := target.X, target.Y
	if world.BaseStatus(target.Status) >= world.StatusWalkUp &&
		world.BaseStatus(target.Status) < world.StatusTurnMin {
		tx, ty = target.ToX, target.ToY
		mult := leadMult(chebyshev(ch.X, ch.Y, tx, ty))
		dx, dy := world.DirOffset(target.Dir)
		tx += dx * mult
		ty += dy * mult
		tx, ty = g.clampMap(tx, ty)
	}
	if g.chrMoveTo(cn, tx, ty) == -1 {
		// Remember where the trail went cold for the frustration search.
		ch.Data[world.DataFrustX] = target.X
		ch.Data[world.DataFrustY] = target.Y
		ch.Data[world.DataFrust]++
		ch.AttackCn = 0
		ch.LastAction = world.OutcomeFailed
	}
}

func (g *Game) clampMap(x, y int) (int, int) {
	if x < 0 {
		x = 0
	}
	if y < 0 {
		y = 0
	}
	if x >= g.S.Map.Width {
		x = g.S.Map.Width - 1
	}
	if y >= g.S.Map.Height {
		y = g.S.Map.Height - 1
	}
	return x, y
}

func chebyshev(x1, y1, x2, y2 int) int {
	dx, dy := absInt(x1-x2), absInt(y1-y2)
	if dx > dy {
		return dx
	}
	return dy
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

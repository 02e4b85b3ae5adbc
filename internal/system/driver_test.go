package system

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mercia/server/internal/world"
)

// runTicks drives the event, driver and animate phases like the game
// loop does, without regeneration noise.
func runTicks(g *Game, n int) {
	ev := NewEventSystem(g)
	drv := NewDriverSystem(g)
	anim := NewAnimateSystem(g)
	for i := 0; i < n; i++ {
		ev.Update(0)
		drv.Update(0)
		anim.Update(0)
	}
}

func TestWalkGoalArrives(t *testing.T) {
	g := newTestGame(t)
	cn := newFighter(t, g, 10, 10, true)
	ch := g.S.Ch(cn)
	ch.GotoX, ch.GotoY = 13, 10

	runTicks(g, 100)
	assert.Equal(t, 13, ch.X)
	assert.Equal(t, 10, ch.Y)
	assert.Zero(t, ch.GotoX, "arrival clears the goal")
	assert.Equal(t, world.OutcomeSuccess, ch.LastAction)
	assert.Equal(t, cn, g.S.Map.Tile(13, 10).Ch)
	assert.Zero(t, g.S.Map.Tile(10, 10).Ch)
}

func TestWalkReservesDestination(t *testing.T) {
	g := newTestGame(t)
	cn := newFighter(t, g, 10, 10, true)
	ch := g.S.Ch(cn)
	ch.GotoX, ch.GotoY = 11, 10

	g.Driver(cn)
	require.Greater(t, ch.Status, world.StatusIdleMax, "the walk band is playing")
	assert.Equal(t, cn, g.S.Map.Tile(11, 10).ToCh)
	assert.False(t, g.S.Map.TileFree(g.S, 11, 10))
}

func TestWalkAroundObstacle(t *testing.T) {
	g := newTestGame(t)
	cn := newFighter(t, g, 10, 10, true)
	ch := g.S.Ch(cn)
	g.S.Map.Tile(11, 10).Flags |= world.MfMoveBlock
	ch.GotoX, ch.GotoY = 11, 11

	runTicks(g, 200)
	assert.Equal(t, 11, ch.X)
	assert.Equal(t, 11, ch.Y)
}

func TestUnreachableGoalCached(t *testing.T) {
	g := newTestGame(t)
	cn := newFighter(t, g, 10, 10, true)
	ch := g.S.Ch(cn)
	// Wall off the whole column in front.
	for y := 8; y <= 12; y++ {
		g.S.Map.Tile(11, y).Flags |= world.MfMoveBlock
	}
	ch.GotoX, ch.GotoY = 12, 10

	g.Driver(cn)
	assert.Equal(t, world.OutcomeFailed, ch.LastAction)
	assert.Zero(t, ch.GotoX)
	assert.Equal(t, 12, ch.UnreachX)
	assert.Equal(t, world.Ticks, ch.Unreach)

	// While the cache holds, the same goal fails without moving.
	ch.GotoX, ch.GotoY = 12, 10
	g.Driver(cn)
	assert.Equal(t, world.OutcomeFailed, ch.LastAction)
	assert.True(t, ch.Idle())
}

func TestTurnGoalConverges(t *testing.T) {
	g := newTestGame(t)
	cn := newFighter(t, g, 10, 10, true)
	ch := g.S.Ch(cn)
	ch.Dir = world.DxDown
	ch.MiscAction = world.DrTurn
	ch.MiscDir = world.DxUp

	runTicks(g, 100)
	assert.Equal(t, world.DxUp, ch.Dir)
	assert.Equal(t, world.DrIdle, ch.MiscAction)
	assert.Equal(t, world.OutcomeSuccess, ch.LastAction)
}

func TestBowGestureResolvesAtStart(t *testing.T) {
	g := newTestGame(t)
	cn := newFighter(t, g, 10, 10, true)
	ch := g.S.Ch(cn)
	ch.Dir = world.DxDown
	ch.MiscAction = world.DrBow

	g.Driver(cn)
	assert.Equal(t, world.StatusActDown, ch.Status)
	assert.Equal(t, world.ActBow, ch.Status2)
	assert.Equal(t, world.DrIdle, ch.MiscAction)
	assert.Equal(t, world.OutcomeSuccess, ch.LastAction)
}

func TestAttackStartsSwing(t *testing.T) {
	g := newTestGame(t)
	cn := newFighter(t, g, 10, 10, true)
	co := newFighter(t, g, 11, 10, false)
	ch := g.S.Ch(cn)
	ch.Dir = world.DxRight
	ch.AttackCn = co

	g.Driver(cn)
	assert.Equal(t, world.StatusActRight, ch.Status)
	assert.Contains(t, []int{world.ActAttack0, world.ActAttack1, world.ActAttack2}, ch.Status2)
	assert.Equal(t, co, ch.ActTarget)

	runTicks(g, 50)
	assert.Contains(t, g.S.Ch(co).Enemy, cn, "the victim remembers the attacker")
}

func TestAttackTurnsToFaceFirst(t *testing.T) {
	g := newTestGame(t)
	cn := newFighter(t, g, 10, 10, true)
	co := newFighter(t, g, 11, 10, false)
	ch := g.S.Ch(cn)
	ch.Dir = world.DxLeft
	ch.AttackCn = co

	g.Driver(cn)
	assert.GreaterOrEqual(t, ch.Status, world.StatusTurnMin)
	assert.LessOrEqual(t, ch.Status, world.StatusTurnMax)
}

func TestAttackNeverSwingsDiagonally(t *testing.T) {
	g := newTestGame(t)
	cn := newFighter(t, g, 10, 10, true)
	co := newFighter(t, g, 11, 11, false)
	ch := g.S.Ch(cn)
	ch.Dir = world.DxRightDown
	ch.AttackCn = co

	// Diagonal adjacency steps around the corner instead of swinging
	// across it.
	g.Driver(cn)
	assert.Less(t, ch.Status, world.StatusActUp, "no act band from a diagonal tile")
	assert.GreaterOrEqual(t, ch.Status, world.StatusWalkUp)

	runTicks(g, 60)
	assert.Contains(t, g.S.Ch(co).Enemy, cn, "the swing lands eventually")
	assert.Equal(t, 1, absInt(ch.X-11)+absInt(ch.Y-11),
		"from a cardinal neighbor")
}

func TestAttackGoalDropsCorpseTargets(t *testing.T) {
	g := newTestGame(t)
	cn := newFighter(t, g, 10, 10, true)
	co := newFighter(t, g, 11, 10, false)
	g.S.Ch(co).Flags |= world.CfBody
	ch := g.S.Ch(cn)
	ch.AttackCn = co

	g.Driver(cn)
	assert.Zero(t, ch.AttackCn)
	assert.Equal(t, world.OutcomeFailed, ch.LastAction)
}

func TestStunnedCharacterDoesNothing(t *testing.T) {
	g := newTestGame(t)
	cn := newFighter(t, g, 10, 10, true)
	ch := g.S.Ch(cn)
	ch.Stunned = 10
	ch.GotoX, ch.GotoY = 12, 10

	g.Driver(cn)
	assert.True(t, ch.Idle())
	assert.Equal(t, 12, ch.GotoX, "the goal stays queued")
}

func TestDoorOpensOnTheWay(t *testing.T) {
	g := newTestGame(t)
	cn := newFighter(t, g, 10, 10, true)
	ch := g.S.Ch(cn)
	ch.Dir = world.DxRight

	door := g.S.AllocItem()
	it := g.S.It(door)
	it.Name = "wooden door"
	it.Driver = world.DrvDoor
	it.Active = world.UseEmpty
	it.Flags = world.IfMoveBlock | world.IfSightBlock
	it.X, it.Y = 11, 10
	g.S.Map.Tile(11, 10).It = door

	ch.GotoX, ch.GotoY = 13, 10
	runTicks(g, 200)

	assert.Equal(t, world.UseActive, it.Active, "the door was opened in passing")
	assert.Zero(t, it.Flags&world.IfMoveBlock)
	assert.Equal(t, 13, ch.X)
}

func TestSpeedGateSlowsAnimation(t *testing.T) {
	g := newTestGame(t)
	fast := newFighter(t, g, 10, 10, true)
	slow := newFighter(t, g, 10, 12, true)
	g.S.Ch(fast).Mode = world.ModeFast
	g.S.Ch(slow).Mode = world.ModeSlow
	g.UpdateChar(fast)
	g.UpdateChar(slow)
	g.S.Ch(fast).GotoX, g.S.Ch(fast).GotoY = 20, 10
	g.S.Ch(slow).GotoX, g.S.Ch(slow).GotoY = 20, 12

	for i := 0; i < 400 && g.S.Ch(fast).X != 20; i++ {
		runTicks(g, 1)
	}
	require.Equal(t, 20, g.S.Ch(fast).X)
	assert.Less(t, g.S.Ch(slow).X, 20, "the slow walker is still under way")
}

func TestPickupGoal(t *testing.T) {
	g := newTestGame(t)
	cn := newFighter(t, g, 10, 10, true)
	ch := g.S.Ch(cn)

	in := g.S.AllocItem()
	it := g.S.It(in)
	it.Name = "coin"
	it.Flags = world.IfTake
	require.True(t, g.DropItem(in, 12, 10))

	ch.MiscAction = world.DrPickup
	ch.MiscTarget1, ch.MiscTarget2 = 12, 10
	runTicks(g, 200)

	assert.Equal(t, in, ch.Citem)
	assert.Equal(t, cn, it.Carried)
	assert.Zero(t, g.S.Map.Tile(12, 10).It)
	assert.Equal(t, world.OutcomeSuccess, ch.LastAction)
}

func TestPickupRefusesFixedItems(t *testing.T) {
	g := newTestGame(t)
	cn := newFighter(t, g, 10, 10, true)
	ch := g.S.Ch(cn)

	in := g.S.AllocItem()
	require.True(t, g.DropItem(in, 11, 10)) // no IfTake flag

	ch.MiscAction = world.DrPickup
	ch.MiscTarget1, ch.MiscTarget2 = 11, 10
	g.Driver(cn)
	assert.Equal(t, world.OutcomeFailed, ch.LastAction)
	assert.Equal(t, world.DrIdle, ch.MiscAction)
}

func TestDropGoal(t *testing.T) {
	g := newTestGame(t)
	cn := newFighter(t, g, 10, 10, true)
	ch := g.S.Ch(cn)

	in := g.S.AllocItem()
	g.S.It(in).Name = "coin"
	g.S.It(in).Carried = cn
	ch.Citem = in

	ch.MiscAction = world.DrDrop
	ch.MiscTarget1, ch.MiscTarget2 = 12, 10
	runTicks(g, 200)

	assert.Zero(t, ch.Citem)
	assert.Equal(t, in, g.S.Map.Tile(12, 10).It)
	assert.Equal(t, world.OutcomeSuccess, ch.LastAction)
}

func TestGiveGoal(t *testing.T) {
	g := newTestGame(t)
	cn := newFighter(t, g, 10, 10, true)
	co := newFighter(t, g, 11, 10, true)
	ch := g.S.Ch(cn)

	in := g.S.AllocItem()
	g.S.It(in).Name = "coin"
	g.S.It(in).Carried = cn
	ch.Citem = in

	ch.MiscAction = world.DrGive
	ch.MiscTarget1 = co
	runTicks(g, 100)

	assert.Zero(t, ch.Citem)
	assert.Equal(t, in, g.S.Ch(co).Citem)
	assert.Equal(t, co, g.S.It(in).Carried)
}

func TestNPCPatrolAdvancesWaypoints(t *testing.T) {
	g := newTestGame(t)
	cn := newFighter(t, g, 10, 10, false)
	ch := g.S.Ch(cn)
	ch.Data[world.DataPatrolBase] = 20
	ch.Data[world.DataPatrolBase+1] = 10
	ch.Data[world.DataPatrolBase+2] = 20
	ch.Data[world.DataPatrolBase+3] = 20

	runTicks(g, 2000)
	assert.Equal(t, 20, ch.X, "the patrol route runs along x=20")
}

func TestNPCDriftsBackToSpawn(t *testing.T) {
	g := newTestGame(t)
	cn := newFighter(t, g, 10, 10, false)
	ch := g.S.Ch(cn)
	ch.Data[world.DataSpawnX] = 10
	ch.Data[world.DataSpawnY] = 10
	require.True(t, g.S.Teleport(cn, 15, 10))

	runTicks(g, 300)
	assert.Equal(t, 10, ch.X)
	assert.Equal(t, 10, ch.Y)
}

func TestNPCRemembersAttackers(t *testing.T) {
	g := newTestGame(t)
	npc := newFighter(t, g, 10, 10, false)
	at := newFighter(t, g, 11, 10, true)
	ch := g.S.Ch(npc)

	g.npcGotHit(npc, at)
	assert.Equal(t, at, ch.Enemy[0])
	assert.Equal(t, g.S.Tick+enemyMemory, ch.Data[world.DataEnemy])
	assert.Equal(t, at, ch.AttackCn, "the NPC fights back")

	// Stale memories expire: pretend a month of ticks passed.
	ch.AttackCn = 0
	ch.Data[world.DataEnemy] = -1
	assert.Zero(t, g.npcPickEnemy(npc))
	assert.Zero(t, ch.Enemy[0])
}

func TestNPCHelpShoutAlertsGroup(t *testing.T) {
	g := newTestGame(t)
	victim := newFighter(t, g, 10, 10, false)
	buddy := newFighter(t, g, 14, 10, false)
	loner := newFighter(t, g, 15, 10, false)
	attacker := newFighter(t, g, 11, 10, true)

	g.S.Ch(victim).Data[world.DataHelpGroup] = 3
	g.S.Ch(buddy).Data[world.DataHelpGroup] = 3
	g.S.Ch(victim).AHP = 1000 // hurt badly enough to shout

	g.npcGotHit(victim, attacker)
	assert.Equal(t, attacker, g.S.Ch(buddy).AttackCn)
	assert.Zero(t, g.S.Ch(loner).AttackCn)
}

func TestNPCClosesOpenDoor(t *testing.T) {
	g := newTestGame(t)
	cn := newFighter(t, g, 10, 10, false)
	ch := g.S.Ch(cn)
	ch.Data[world.DataSpawnX] = 10
	ch.Data[world.DataSpawnY] = 10

	door := g.S.AllocItem()
	it := g.S.It(door)
	it.Name = "wooden door"
	it.Driver = world.DrvDoor
	it.Active = world.UseActive
	it.Flags = world.IfUse
	it.X, it.Y = 11, 10
	g.S.Map.Tile(11, 10).It = door

	runTicks(g, 200)
	assert.Equal(t, world.UseEmpty, it.Active, "the guard shut the door")
	assert.NotZero(t, it.Flags&world.IfMoveBlock)
}

func TestRespawnCountdown(t *testing.T) {
	g := newTestGame(t)
	cn := newFighter(t, g, 10, 10, true)
	co := newFighter(t, g, 11, 10, false)
	victim := g.S.Ch(co)
	victim.Flags |= world.CfRespawn
	victim.Data[world.DataRespawnTime] = 5
	victim.Data[world.DataSpawnX] = 11
	victim.Data[world.DataSpawnY] = 10
	victim.AHP = 600

	g.DoHurt(cn, co, 600, HurtPure)
	require.Equal(t, 5, victim.Data[world.DataRespawn])

	cleanup := NewCleanupSystem(g)
	for i := 0; i < 10; i++ {
		cleanup.Update(0)
	}
	assert.Zero(t, victim.Data[world.DataRespawn])
	assert.Equal(t, co, g.S.Map.Tile(11, 10).Ch)
	assert.Equal(t, victim.HP.Value()*world.PointScale, victim.AHP)
}

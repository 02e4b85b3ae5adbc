package system

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mercia/server/internal/core/event"
	"github.com/mercia/server/internal/world"
)

func TestUpdateCharIdempotent(t *testing.T) {
	g := newTestGame(t)
	cn := newFighter(t, g, 10, 10, true)
	ch := g.S.Ch(cn)

	first := *ch
	g.UpdateChar(cn)
	assert.Equal(t, first, *ch)
}

func TestUpdateCharSkillBonus(t *testing.T) {
	g := newTestGame(t)
	cn := newFighter(t, g, 10, 10, true)
	ch := g.S.Ch(cn)

	// (agility + strength + intuition) / 5 on top of the trained base.
	bonus := (50 + 50 + 50) / 5
	assert.Equal(t, 30+bonus, ch.Skill[world.SkSword].Value())
	assert.Equal(t, bonus, ch.Skill[world.SkBlast].Value(),
		"even unlearned skills carry the attribute contribution")
}

func TestUpdateCharUnlearnedSkillFloorsAtOne(t *testing.T) {
	g := newTestGame(t)
	cn := newFighter(t, g, 10, 10, true)
	ch := g.S.Ch(cn)
	for z := range ch.Attrib {
		ch.Attrib[z][0] = 1
	}
	g.UpdateChar(cn)
	assert.Equal(t, 1, ch.Skill[world.SkBlast].Value())
}

func TestUpdateCharSpellGrantsArmorAndWeapon(t *testing.T) {
	g := newTestGame(t)
	cn := newFighter(t, g, 10, 10, true)
	ch := g.S.Ch(cn)

	in := g.S.AllocItem()
	it := g.S.It(in)
	it.Flags = world.IfSpell
	it.Temp = world.SkMShield
	it.Active = 40960
	it.Armor[1] = it.Active/1024 + 1
	it.Weapon[1] = 3
	ch.Spell[0] = in

	g.UpdateChar(cn)
	assert.Equal(t, 41, ch.Armor, "a shield spell is worth its charge in armor")
	assert.Equal(t, 3, ch.Weapon)
}

func TestUpdateCharGethitFromWornAndBonus(t *testing.T) {
	g := newTestGame(t)
	cn := newFighter(t, g, 10, 10, true)
	ch := g.S.Ch(cn)
	ch.GethitBonus = 4

	in := g.S.AllocItem()
	it := g.S.It(in)
	it.GethitDam = [2]int{6, 15}
	ch.Worn[world.WnBody] = in

	g.UpdateChar(cn)
	assert.Equal(t, 10, ch.GethitDam)

	it.Active = 100
	g.UpdateChar(cn)
	assert.Equal(t, 19, ch.GethitDam)
}

func TestUpdateCharSpeedByMode(t *testing.T) {
	g := newTestGame(t)
	cn := newFighter(t, g, 10, 10, true)
	ch := g.S.Ch(cn)

	// pace = (agil+stren)/50 + mode base; speed counts skipped frames.
	assert.Equal(t, 4, ch.Speed)
	ch.Mode = world.ModeFast
	g.UpdateChar(cn)
	assert.Equal(t, 2, ch.Speed)
	ch.Mode = world.ModeSlow
	g.UpdateChar(cn)
	assert.Equal(t, 6, ch.Speed)
}

func TestUpdateCharWornTiers(t *testing.T) {
	g := newTestGame(t)
	cn := newFighter(t, g, 10, 10, true)
	ch := g.S.Ch(cn)

	in := g.S.AllocItem()
	it := g.S.It(in)
	it.Armor = [2]int{3, 8}
	ch.Worn[world.WnBody] = in

	g.UpdateChar(cn)
	assert.Equal(t, 3, ch.Armor)

	it.Active = 100 // activated gear uses the second tier
	g.UpdateChar(cn)
	assert.Equal(t, 8, ch.Armor)
}

func TestUpdateCharWeaponTakesBest(t *testing.T) {
	g := newTestGame(t)
	cn := newFighter(t, g, 10, 10, true)
	ch := g.S.Ch(cn)

	a := g.S.AllocItem()
	g.S.It(a).Weapon[0] = 12
	b := g.S.AllocItem()
	g.S.It(b).Weapon[0] = 30
	ch.Worn[world.WnRHand] = b
	ch.Worn[world.WnLHand] = a
	g.UpdateChar(cn)
	assert.Equal(t, 30, ch.Weapon)
}

func TestUpdateCharStunSpellSetsFlag(t *testing.T) {
	g := newTestGame(t)
	cn := newFighter(t, g, 10, 10, true)
	ch := g.S.Ch(cn)

	in := g.S.AllocItem()
	it := g.S.It(in)
	it.Flags = world.IfSpell
	it.Temp = world.SkStun
	it.Active = 100
	ch.Spell[0] = in

	g.UpdateChar(cn)
	assert.True(t, ch.HasFlag(world.CfStunned))

	ch.Spell[0] = 0
	g.UpdateChar(cn)
	assert.False(t, ch.HasFlag(world.CfStunned))
}

func TestNoMagicGroundPurgesSpells(t *testing.T) {
	g := newTestGame(t)
	cn := newFighter(t, g, 10, 10, true)
	ch := g.S.Ch(cn)

	in := g.S.AllocItem()
	it := g.S.It(in)
	it.Flags = world.IfSpell
	it.HP[1] = 20
	it.Active = 100
	ch.Spell[0] = in
	g.UpdateChar(cn)
	require.Equal(t, 120, ch.HP.Value())

	g.S.Map.Tile(10, 10).Flags |= world.MfNoMagic
	g.UpdateChar(cn)
	assert.True(t, ch.HasFlag(world.CfNoMagic))
	assert.Zero(t, ch.Spell[0])
	assert.Equal(t, 100, ch.HP.Value())

	g.S.Map.Tile(10, 10).Flags &^= world.MfNoMagic
	g.UpdateChar(cn)
	assert.False(t, ch.HasFlag(world.CfNoMagic))
}

func TestUpdateCharCapsLiveResources(t *testing.T) {
	g := newTestGame(t)
	cn := newFighter(t, g, 10, 10, true)
	ch := g.S.Ch(cn)
	ch.AHP = 1 << 30
	g.UpdateChar(cn)
	assert.Equal(t, ch.HP.Value()*world.PointScale, ch.AHP)
}

func TestRegenerateIdleRestores(t *testing.T) {
	g := newTestGame(t)
	cn := newFighter(t, g, 10, 10, true)
	ch := g.S.Ch(cn)
	ch.AHP -= 10000
	ch.AEnd -= 10000
	ch.AMana -= 10000

	hp, end, mana := ch.AHP, ch.AEnd, ch.AMana
	g.Regenerate(cn)
	assert.Equal(t, hp+40, ch.AHP)   // 2 × moonmult
	assert.Equal(t, end+80, ch.AEnd) // 4 × moonmult
	assert.Equal(t, mana, ch.AMana, "mana stands still without meditation")
}

func TestRegenerateManaNeedsMeditation(t *testing.T) {
	g := newTestGame(t)
	cn := newFighter(t, g, 10, 10, true)
	ch := g.S.Ch(cn)
	ch.Skill[world.SkMeditate] = world.Stat{30, 0, 250, 2, 0, 0}
	g.UpdateChar(cn)
	ch.AMana -= 10000

	mana := ch.AMana
	g.Regenerate(cn)
	want := 20 + ch.Skill[world.SkMeditate].Value()*20/30
	assert.Equal(t, mana+want, ch.AMana)
}

func TestRegenerateAnkhWorksWhileWalking(t *testing.T) {
	g := newTestGame(t)
	cn := newFighter(t, g, 10, 10, true)
	ch := g.S.Ch(cn)
	ch.Skill[world.SkRegen] = world.Stat{30, 0, 250, 2, 0, 0}
	ch.Status = world.StatusWalkUp

	ankh := g.S.AllocItem()
	g.S.It(ankh).Template = world.TmplAnkh
	ch.Worn[world.WnNeck] = ankh
	g.UpdateChar(cn)
	ch.AHP -= 10000

	hp := ch.AHP
	g.Regenerate(cn)
	assert.Equal(t, hp+ch.Skill[world.SkRegen].Value()*20/60, ch.AHP,
		"the ankh pays out even mid-stride")
}

func TestRegenerateFullMoonDoubles(t *testing.T) {
	g := newTestGame(t)
	cn := newFighter(t, g, 10, 10, true)
	ch := g.S.Ch(cn)
	g.S.FullMoon = true
	ch.AHP -= 10000
	hp := ch.AHP
	g.Regenerate(cn)
	assert.Equal(t, hp+80, ch.AHP)
}

func TestRegenerateFastWalkDrains(t *testing.T) {
	g := newTestGame(t)
	cn := newFighter(t, g, 10, 10, true)
	ch := g.S.Ch(cn)
	ch.Mode = world.ModeFast
	ch.Status = world.StatusWalkUp + 2
	ch.AEnd = 50000
	g.Regenerate(cn)
	assert.Equal(t, 50000-25, ch.AEnd)
}

func TestRegenerateAttackCostsByMode(t *testing.T) {
	g := newTestGame(t)
	cn := newFighter(t, g, 10, 10, true)
	ch := g.S.Ch(cn)
	ch.Status = world.StatusActUp + 1
	ch.Status2 = world.ActAttack0
	ch.AEnd = 50000
	g.Regenerate(cn)
	assert.Equal(t, 50000-12, ch.AEnd)
}

func TestRegenerateExhaustionForcesSlow(t *testing.T) {
	g := newTestGame(t)
	cn := newFighter(t, g, 10, 10, true)
	ch := g.S.Ch(cn)
	ch.Mode = world.ModeFast
	ch.AEnd = 1000
	g.Regenerate(cn)
	assert.Equal(t, world.ModeSlow, ch.Mode)
}

func TestRegenerateSkipsStoned(t *testing.T) {
	g := newTestGame(t)
	cn := newFighter(t, g, 10, 10, true)
	ch := g.S.Ch(cn)
	ch.Flags |= world.CfStoned
	ch.AHP = 1000
	g.Regenerate(cn)
	assert.Equal(t, 1000, ch.AHP)
}

func TestRegenerateCountsDownTimers(t *testing.T) {
	g := newTestGame(t)
	cn := newFighter(t, g, 10, 10, true)
	ch := g.S.Ch(cn)
	ch.EscapeTimer = 3
	ch.Stunned = 2
	ch.Unreach = 1
	g.Regenerate(cn)
	assert.Equal(t, 2, ch.EscapeTimer)
	assert.Equal(t, 1, ch.Stunned)
	assert.Zero(t, ch.Unreach)
}

func TestTimedSpellExpires(t *testing.T) {
	g := newTestGame(t)
	cn := newFighter(t, g, 10, 10, true)
	ch := g.S.Ch(cn)

	in := g.S.AllocItem()
	it := g.S.It(in)
	it.Name = "bless"
	it.Flags = world.IfSpell
	it.Temp = world.SkBless
	it.Active = 2
	ch.Spell[0] = in

	g.Regenerate(cn)
	assert.Equal(t, in, ch.Spell[0])
	g.Regenerate(cn)
	assert.Zero(t, ch.Spell[0])
	assert.False(t, g.S.It(in).Used)
}

func TestSpellFadeWarnsCompanionMaster(t *testing.T) {
	g := newTestGame(t)
	master := newFighter(t, g, 10, 10, true)
	pet := newFighter(t, g, 12, 10, false)
	ch := g.S.Ch(pet)
	ch.Data[world.DataMaster] = master

	in := g.S.AllocItem()
	it := g.S.It(in)
	it.Name = "bless"
	it.Flags = world.IfSpell
	it.Temp = world.SkBless
	it.Active = world.Ticks*30 + 1
	ch.Spell[0] = in

	g.Regenerate(pet)
	shouts := event.Drain[event.Shout](g.S.Bus)
	require.Len(t, shouts, 1)
	assert.Equal(t, pet, shouts[0].Cn)
	assert.Contains(t, shouts[0].Text, g.S.Ch(master).Name)
}

func TestRecallSpellTeleportsOnExpiry(t *testing.T) {
	g := newTestGame(t)
	cn := newFighter(t, g, 10, 10, true)
	ch := g.S.Ch(cn)

	in := g.S.AllocItem()
	it := g.S.It(in)
	it.Name = "recall"
	it.Flags = world.IfSpell
	it.Temp = world.SkRecall
	it.Active = 1
	it.Data[0], it.Data[1] = 30, 30
	ch.Spell[0] = in

	g.Regenerate(cn)
	assert.Equal(t, 30, ch.X)
	assert.Equal(t, 30, ch.Y)
}

func TestPermSpellDeactivatesBeforeDraining(t *testing.T) {
	g := newTestGame(t)
	cn := newFighter(t, g, 10, 10, true)
	ch := g.S.Ch(cn)
	ch.Status = world.StatusWalkUp // no idle regen in the way
	ch.AMana = world.DeathFloor + 10

	in := g.S.AllocItem()
	it := g.S.It(in)
	it.Flags = world.IfSpell | world.IfPermSpell
	it.Temp = world.SkLight
	it.HPDelta, it.EndDelta = -1, -1
	it.ManaDelta = -20
	ch.Spell[0] = in

	g.Regenerate(cn)
	assert.Zero(t, ch.Spell[0], "a spell never kills its own caster by upkeep")
	assert.False(t, g.S.It(in).Used)
}

func TestUnderwaterDrains(t *testing.T) {
	g := newTestGame(t)
	cn := newFighter(t, g, 10, 10, true)
	ch := g.S.Ch(cn)
	g.S.Map.Tile(10, 10).Flags |= world.MfUWater

	hp := ch.AHP
	g.Regenerate(cn)
	// The drain carries the 40 HP regained while idle, so resting in
	// the water never breaks even.
	assert.Equal(t, hp-250-40, ch.AHP)
}

func TestUnderwaterSparesNPCs(t *testing.T) {
	g := newTestGame(t)
	cn := newFighter(t, g, 10, 10, false)
	ch := g.S.Ch(cn)
	g.S.Map.Tile(10, 10).Flags |= world.MfUWater
	hp := ch.AHP
	g.Regenerate(cn)
	assert.Equal(t, hp, ch.AHP)
}

func TestUndeadBonusRegeneration(t *testing.T) {
	g := newTestGame(t)
	cn := newFighter(t, g, 10, 10, false)
	ch := g.S.Ch(cn)
	ch.Flags |= world.CfUndead
	ch.AHP = 1000
	ch.Status = world.StatusWalkUp // walking, no idle regen
	g.Regenerate(cn)
	assert.Equal(t, 1650, ch.AHP)
}

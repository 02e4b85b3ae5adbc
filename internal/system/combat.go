package system

import (
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/mercia/server/internal/core/event"
	"github.com/mercia/server/internal/world"
)

// FightSkill returns the skill value a character fights with: the worn
// weapon's class skill, or the better of karate and brawling when the
// weapon hand is empty or holds something strange.
func (g *Game) FightSkill(cn int) int {
	ch := g.S.Ch(cn)
	unarmed := ch.Skill[world.SkKarate].Value()
	if h := ch.Skill[world.SkHand].Value(); h > unarmed {
		unarmed = h
	}
	in := ch.Worn[world.WnRHand]
	if in == 0 {
		return unarmed
	}
	sk := g.S.It(in).WeaponSkill()
	if sk < 0 {
		return unarmed
	}
	return ch.Skill[sk].Value()
}

// hitTable maps the skill differential (attacker minus defender) onto a
// d20 hit threshold and a flat damage bonus.
func hitTable(diff int) (chance, bonus int) {
	switch {
	case diff < -40:
		return 1, -16
	case diff < -36:
		return 2, -8
	case diff < -32:
		return 3, -4
	case diff < -28:
		return 4, -2
	case diff < -24:
		return 5, -1
	case diff < -20:
		return 6, 0
	case diff < -16:
		return 7, 0
	case diff < -12:
		return 8, 0
	case diff < -8:
		return 9, 0
	case diff < -4:
		return 10, 0
	case diff < 0:
		return 11, 0
	case diff == 0:
		return 12, 0
	case diff < 4:
		return 13, 0
	case diff < 8:
		return 14, 0
	case diff < 12:
		return 15, 0
	case diff < 16:
		return 16, 1
	case diff < 20:
		return 17, 2
	case diff < 24:
		return 18, 3
	case diff < 28:
		return 19, 4
	case diff < 32:
		return 19, 5
	case diff < 36:
		return 19, 10
	case diff < 40:
		return 19, 15
	default:
		return 19, 20
	}
}

// attackSkills resolves the effective fight skills for one swing of cn
// against co, modifiers included.
func (g *Game) attackSkills(cn, co int) (s1, s2 int) {
	ch, target := g.S.Ch(cn), g.S.Ch(co)
	s1 = g.FightSkill(cn)
	s2 = g.FightSkill(co)
	if g.S.Mayhem {
		if !ch.IsPlayer() {
			s1 += 10
		}
		if !target.IsPlayer() {
			s2 += 10
		}
	}
	// Bad luck weighs on players only.
	if ch.IsPlayer() && ch.Luck < 0 {
		s1 += ch.Luck/250 - 1
	}
	if target.IsPlayer() && target.Luck < 0 {
		s2 += target.Luck/250 - 1
	}
	if !g.isFacing(co, cn) {
		s2 -= 10
	}
	if g.isBack(co, cn) {
		s2 -= 10
	}
	// A defender who is stunned, or busy with no swing of its own, is
	// easier to hit.
	if target.Stunned > 0 || target.HasFlag(world.CfStunned) || target.AttackCn == 0 {
		s2 -= 10
	}
	return s1, s2
}

// isFacing reports whether co's facing covers cn's tile.
func (g *Game) isFacing(co, cn int) bool {
	a, b := g.S.Ch(co), g.S.Ch(cn)
	dir := world.OffsetDir(b.X-a.X, b.Y-a.Y)
	return dir != 0 && world.TurnDistance(a.Dir, dir) <= 1
}

// isBack reports whether cn stands behind co.
func (g *Game) isBack(co, cn int) bool {
	a, b := g.S.Ch(co), g.S.Ch(cn)
	dir := world.OffsetDir(b.X-a.X, b.Y-a.Y)
	return dir != 0 && world.TurnDistance(a.Dir, dir) >= 3
}

// DoAttack resolves one swing of cn against co.
func (g *Game) DoAttack(cn, co int) {
	ch := g.S.Ch(cn)
	target := g.S.Ch(co)
	if co == 0 || !target.Used || target.AHP < world.DeathFloor {
		ch.AttackCn = 0
		ch.LastAction = world.OutcomeFailed
		return
	}
	if !g.mayAttack(cn, co) {
		ch.AttackCn = 0
		ch.LastAction = world.OutcomeFailed
		return
	}

	if ch.CurrentEnemy != co {
		ch.CurrentEnemy = co
		g.S.Message(cn, event.ColorYellow, "You attack "+target.Name+".")
	}
	g.addEnemy(co, cn)
	g.rememberPvP(cn, co)

	s1, s2 := g.attackSkills(cn, co)
	chance, bonus := hitTable(s1 - s2)
	die := g.S.Rand(20) + 1
	if die > chance {
		g.S.Sound(2, ch.X, ch.Y)
		g.S.Fight(world.NtSeeMiss, cn, co, 0, ch.X, ch.Y)
		g.S.Fight(world.NtGotMiss, co, cn, 0, target.X, target.Y)
		g.S.Fight(world.NtDidMiss, cn, co, 0, ch.X, ch.Y)
		return
	}

	dam := ch.Weapon + g.S.Rand(6) + 1
	if str := ch.Attrib[world.AtStrength].Value(); str > 3 {
		dam += g.S.Rand(str / 2)
	}
	switch die {
	case 2:
		dam += g.S.Rand(6) + 1
	case 1:
		dam += g.S.Rand(6) + g.S.Rand(6) + 2
	}
	odam := dam
	dam += bonus

	if ch.IsPlayer() && ch.Worn[world.WnRHand] != 0 {
		g.itemDamageWeapon(cn, dam)
	}

	g.S.Sound(1, ch.X, ch.Y)
	g.DoHurt(cn, co, dam, 0)

	// Fighters trained to hold a surrounded position strike back at
	// everyone else piling onto them.
	if ch.Skill[world.SkSurround].Base() != 0 {
		for _, d := range [4]int{world.DxUp, world.DxDown, world.DxLeft, world.DxRight} {
			dx, dy := world.DirOffset(d)
			t := g.S.Map.Tile(ch.X+dx, ch.Y+dy)
			if t == nil || t.Ch == 0 || t.Ch == co {
				continue
			}
			co2 := t.Ch
			if g.S.Ch(co2).AttackCn != cn {
				continue
			}
			if ch.Skill[world.SkSurround].Value()+g.S.Rand(20) > g.FightSkill(co2) {
				g.DoHurt(cn, co2, odam-odam/4, 0)
			}
		}
	}
}

// Damage types for DoHurt.
const (
	HurtMelee   = 0 // reduced by armor, counter-damage applies
	HurtSilent  = 1 // no tile injury
	HurtNoExp   = 2 // never awards experience or a kill
	HurtPure    = 3 // ignores armor and shields' armor, full scale
)

// DoHurt runs the damage pipeline and returns the damage applied, in
// display points.
func (g *Game) DoHurt(cn, co, dam, typ int) int {
	target := g.S.Ch(co)
	if !target.Used || target.HasFlag(world.CfBody) {
		return 0
	}
	var attacker *world.Character
	if cn != 0 {
		attacker = g.S.Ch(cn)
	}

	// Every hit grinds a player's armor, whether or not it penetrates.
	if target.IsPlayer() {
		g.itemDamageArmor(co, dam)
	}

	noexp := target.IsPlayer()
	if attacker != nil && !attacker.IsPlayer() && attacker.Data[world.DataMaster] == co {
		noexp = true
	}

	// Magic shields soak the hit before armor math. Charge burn grows
	// with the damage the shield has to stop.
	for i := 0; i < world.SpellSlots; i++ {
		in := target.Spell[i]
		if in == 0 {
			continue
		}
		it := g.S.It(in)
		if it.Temp != world.SkMShield {
			continue
		}
		soak := it.Active/1024 + 1
		burn := (dam + soak - target.Armor) * 5
		if burn <= 0 {
			continue
		}
		if burn >= it.Active {
			target.Spell[i] = 0
			g.S.FreeItem(in)
			g.S.Message(co, event.ColorRed, "Your magic shield collapses!")
			g.S.Effect(event.FXShieldBreak, target.X, target.Y)
		} else {
			it.Active -= burn
			it.Armor[1] = it.Active/1024 + 1
			it.Power = it.Active / 256
		}
		g.UpdateChar(co)
	}

	switch typ {
	case HurtPure:
		dam *= world.PointScale
	case HurtMelee:
		dam -= target.Armor
		if dam < 0 {
			dam = 0
		}
		dam *= 250
	default:
		dam -= target.Armor
		if dam < 0 {
			dam = 0
		}
		dam *= 750
	}
	if target.HasFlag(world.CfImmortal) {
		return 0
	}

	if typ != HurtPure {
		g.S.Fight(world.NtSeeHit, cn, co, dam/world.PointScale, target.X, target.Y)
		g.S.Fight(world.NtGotHit, co, cn, dam/world.PointScale, target.X, target.Y)
		g.S.Fight(world.NtDidHit, cn, co, dam/world.PointScale, target.X, target.Y)
	}
	if dam < 1 {
		return 0
	}

	if typ != HurtNoExp && typ != HurtPure && !noexp && cn != 0 {
		g.GiveExp(cn, g.ScaleExps(cn, Points2Rank(target.PointsTot), dam/4000))
	}

	if typ != HurtSilent {
		if t := g.S.Map.Tile(target.X, target.Y); t != nil {
			t.AddInjury(dam)
		}
		g.S.Effect(event.FXInjured, target.X, target.Y)
	}

	tile := g.S.Map.Tile(target.X, target.Y)
	arena := tile != nil && tile.Flags&world.MfArena != 0

	// The gods sometimes catch a favored soul on the way down.
	if target.AHP-dam < world.DeathFloor && target.Luck >= 100 && !arena &&
		g.S.Rand(10000) < 5000+target.Luck {
		target.AHP = target.HP.Value() * world.DeathFloor
		target.Luck /= 2
		target.Data[world.DataGodSaves]++
		g.S.Message(co, event.ColorGreen, "The gods saved you!")
		if cn != 0 {
			g.S.Message(cn, event.ColorYellow, "The gods saved "+target.Name+"!")
			g.S.Fight(world.NtDidKill, cn, co, 0, target.X, target.Y)
		}
		g.S.Fight(world.NtSeeKill, cn, co, 0, target.X, target.Y)
		g.S.Teleport(co, target.Data[world.DataTempleX], target.Data[world.DataTempleY])
		return dam / world.PointScale
	}

	target.AHP -= dam
	if target.AHP >= world.DeathFloor && target.AHP < 8000 {
		g.S.Message(co, event.ColorRed, "You are almost dead!")
	}

	if target.AHP < world.DeathFloor {
		if cn != 0 {
			g.S.Message(cn, event.ColorYellow, "You killed "+target.Name+".")
			g.S.Fight(world.NtDidKill, cn, co, 0, target.X, target.Y)
		}
		g.S.Fight(world.NtSeeKill, cn, co, 0, target.X, target.Y)
		if typ != HurtNoExp && cn != 0 && cn != co && !arena && !noexp {
			rank := Points2Rank(target.PointsTot)
			g.GiveExp(cn, g.ScaleExps(cn, rank, charScore(target)))
		}
		g.characterKilled(cn, co)
		if attacker != nil {
			attacker.LastAction = world.OutcomeSuccess
		}
		return dam / world.PointScale
	}

	if attacker != nil {
		attacker.LastAction = world.OutcomeSuccess
	}
	if !target.IsPlayer() {
		g.npcGotHit(co, cn)
	}
	if typ == HurtMelee && target.GethitDam > 0 && cn != 0 {
		g.DoHurt(co, cn, g.S.Rand(target.GethitDam)+1, HurtPure)
	}
	return dam / world.PointScale
}

// charScore derives the kill reward from a victim's lifetime points.
func charScore(ch *world.Character) int {
	pts := ch.PointsTot
	if pts < 0 {
		pts = 0
	}
	return int(math.Sqrt(float64(pts)))/7 + 7
}

// ScaleExps scales a raw experience amount by the rank gap between the
// earner and a victim rank.
func (g *Game) ScaleExps(cn, victimRank, exp int) int {
	diff := victimRank - Points2Rank(g.S.Ch(cn).PointsTot)
	return int(float64(exp) * g.Lua.ExpScale(diff))
}

// GiveExp credits experience points, spendable and lifetime both, and
// checks for a new rank.
func (g *Game) GiveExp(cn, exp int) {
	if exp <= 0 {
		return
	}
	ch := g.S.Ch(cn)
	ch.Points += exp
	ch.PointsTot += exp
	g.CheckNewLevel(cn)
}

// CanFlee checks whether cn may break away from combat. On failure the
// escape timer pins the character for a second.
func (g *Game) CanFlee(cn int) bool {
	ch := g.S.Ch(cn)

	// Reconcile first: an entry only pins when the relationship is still
	// mutual, so anyone whose tracked enemy or attack target has moved
	// on is dropped before judging.
	for i := range ch.Enemy {
		if en := ch.Enemy[i]; en != 0 && g.S.Ch(en).CurrentEnemy != cn {
			ch.Enemy[i] = 0
		}
	}
	for i := range ch.Enemy {
		if en := ch.Enemy[i]; en != 0 && g.S.Ch(en).AttackCn != cn {
			ch.Enemy[i] = 0
		}
	}

	empty := true
	per := 0
	for _, en := range ch.Enemy {
		if en != 0 {
			empty = false
			per += g.S.Ch(en).Skill[world.SkPercept].Value()
		}
	}
	if empty {
		return true
	}
	if ch.EscapeTimer != 0 {
		return false
	}

	chance := 0
	if per != 0 {
		chance = ch.Skill[world.SkStealth].Value() * 15 / per
	}
	if chance > 18 {
		chance = 18
	}
	if g.S.Rand(20) <= chance {
		for i := range ch.Enemy {
			ch.Enemy[i] = 0
		}
		ch.CurrentEnemy = 0
		g.removeEnemy(cn)
		g.S.Message(cn, event.ColorGreen, "You escaped!")
		return true
	}
	ch.EscapeTimer = world.Ticks
	g.S.Message(cn, event.ColorRed, "You cannot escape!")
	return false
}

// mayAttack enforces the attack permission rules, messaging refusals.
func (g *Game) mayAttack(cn, co int) bool {
	ch, target := g.S.Ch(cn), g.S.Ch(co)
	if cn == co || !ch.Used || !target.Used {
		return false
	}
	if target.HasFlag(world.CfBody) || target.HasFlag(world.CfStoned) {
		return false
	}
	if ch.HasFlag(world.CfGod) || target.HasFlag(world.CfGod) {
		return true
	}
	t1 := g.S.Map.Tile(ch.X, ch.Y)
	t2 := g.S.Map.Tile(target.X, target.Y)
	if (t1 != nil && t1.Flags&world.MfNoFight != 0) ||
		(t2 != nil && t2.Flags&world.MfNoFight != 0) {
		g.S.Message(cn, event.ColorRed, "You can't fight here!")
		return false
	}
	if !ch.IsPlayer() || !target.IsPlayer() {
		return true
	}
	if t1 != nil && t1.Flags&world.MfArena != 0 &&
		t2 != nil && t2.Flags&world.MfArena != 0 {
		return true
	}
	r1 := Points2Rank(ch.PointsTot)
	r2 := Points2Rank(target.PointsTot)
	diff := r1 - r2
	if diff < 0 {
		diff = -diff
	}
	if diff > world.AttackRange {
		g.S.Message(cn, event.ColorRed, fmt.Sprintf(
			"%s is beyond your reach. The gods frown on such a fight.", target.Name))
		return false
	}
	return true
}

// rememberPvP records who attacked whom outside the arena, for the
// guards and the karma bookkeeping downstream.
func (g *Game) rememberPvP(cn, co int) {
	ch, target := g.S.Ch(cn), g.S.Ch(co)
	if !ch.IsPlayer() || !target.IsPlayer() {
		return
	}
	if t := g.S.Map.Tile(target.X, target.Y); t != nil && t.Flags&world.MfArena != 0 {
		return
	}
	ch.Data[world.DataAttackTime] = g.S.Tick
	ch.Data[world.DataAttackVict] = co
}

// addEnemy inserts cn into co's enemy list, evicting the oldest entry
// when full.
func (g *Game) addEnemy(co, cn int) {
	ch := g.S.Ch(co)
	for _, en := range ch.Enemy {
		if en == cn {
			return
		}
	}
	for i := range ch.Enemy {
		if ch.Enemy[i] == 0 {
			ch.Enemy[i] = cn
			return
		}
	}
	copy(ch.Enemy[:], ch.Enemy[1:])
	ch.Enemy[len(ch.Enemy)-1] = cn
}

// removeEnemy erases co from every character's enemy bookkeeping.
func (g *Game) removeEnemy(co int) {
	g.S.EachChar(func(_ int, ch *world.Character) {
		for i := range ch.Enemy {
			if ch.Enemy[i] == co {
				ch.Enemy[i] = 0
			}
		}
		if ch.CurrentEnemy == co {
			ch.CurrentEnemy = 0
		}
		if ch.AttackCn == co {
			ch.AttackCn = 0
		}
	})
}

// characterKilled settles a death: events, cleanup, respawn or temple.
func (g *Game) characterKilled(killer, cn int) {
	ch := g.S.Ch(cn)
	g.Log.Info("character killed",
		zap.Int("cn", cn), zap.String("name", ch.Name), zap.Int("killer", killer))
	event.Emit(g.S.Bus, event.CharacterDied{Cn: cn, Killer: killer})
	g.S.Effect(event.FXDeath, ch.X, ch.Y)

	g.removeEnemy(cn)
	ch.ClearGoals()
	ch.Status = 0
	ch.CurrentEnemy = 0
	for i := range ch.Enemy {
		ch.Enemy[i] = 0
	}

	if ch.IsPlayer() {
		// Players wake up at the temple, barely alive.
		g.S.Message(cn, event.ColorRed, "You die...")
		g.S.Teleport(cn, ch.Data[world.DataTempleX], ch.Data[world.DataTempleY])
		ch.AHP = ch.HP.Value() * world.PointScale / 10
		if ch.AHP < world.DeathFloor {
			ch.AHP = world.DeathFloor
		}
		return
	}

	g.S.RemoveChar(cn)
	if ch.HasFlag(world.CfRespawn) {
		ch.AHP = ch.HP.Value() * world.PointScale
		ch.Data[world.DataRespawn] = ch.Data[world.DataRespawnTime]
		if ch.Data[world.DataRespawn] == 0 {
			ch.Data[world.DataRespawn] = world.Ticks * 30
		}
		return
	}
	*ch = world.Character{}
}

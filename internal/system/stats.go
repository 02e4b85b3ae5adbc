package system

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/mercia/server/internal/core/event"
	"github.com/mercia/server/internal/scripting"
	"github.com/mercia/server/internal/world"
)

// UpdateChar rebuilds every derived value on a character sheet from the
// bases, the worn items and the active spells. It is idempotent: the
// scratch slots are zeroed first, so calling it twice changes nothing.
func (g *Game) UpdateChar(cn int) {
	ch := g.S.Ch(cn)
	if !ch.Used {
		return
	}
	oldLight := ch.Light

	ch.NoHPReg, ch.NoEndReg, ch.NoManaReg = false, false, false
	ch.SpriteOverride = 0

	nomagic := g.noMagicGround(cn)
	wasNoMagic := ch.HasFlag(world.CfNoMagic)
	if nomagic && !wasNoMagic {
		ch.Flags |= world.CfNoMagic
		g.purgeSpells(cn)
		g.S.Message(cn, event.ColorRed, "You feel your magic drain away.")
		g.Log.Debug("entered no-magic ground", zap.Int("cn", cn))
	} else if !nomagic && wasNoMagic {
		ch.Flags &^= world.CfNoMagic
		g.S.Message(cn, event.ColorGreen, "You feel your magic return.")
		g.Log.Debug("left no-magic ground", zap.Int("cn", cn))
	}

	for z := 0; z < world.AttribCount; z++ {
		ch.Attrib[z][4] = 0
	}
	ch.HP[4], ch.End[4], ch.Mana[4] = 0, 0, 0
	for z := 0; z < world.MaxSkill; z++ {
		ch.Skill[z][4] = 0
	}
	ch.Armor, ch.Weapon, ch.Light = 0, 0, 0
	ch.GethitDam = ch.GethitBonus
	sublight := 0
	stunned := false
	infra := 0

	// Worn items. Magical bonuses need working magic; steel and leather
	// do not care.
	for _, in := range ch.Worn {
		if in == 0 {
			continue
		}
		it := g.S.It(in)
		tier := 0
		if it.Active != 0 {
			tier = 1
		}
		if !nomagic {
			for z := 0; z < world.AttribCount; z++ {
				ch.Attrib[z][4] += it.Attrib[z][tier]
			}
			ch.HP[4] += it.HP[tier]
			ch.End[4] += it.End[tier]
			ch.Mana[4] += it.Mana[tier]
			for z := 0; z < world.MaxSkill; z++ {
				ch.Skill[z][4] += it.Skill[z][tier]
			}
		}
		ch.Armor += it.Armor[tier]
		if it.Weapon[tier] > ch.Weapon {
			ch.Weapon = it.Weapon[tier]
		}
		ch.GethitDam += it.GethitDam[tier]
		if l := it.Light[tier]; l > ch.Light {
			ch.Light = l
		} else if l < 0 {
			sublight -= l
		}
	}

	// Active spells always use the active tier.
	for _, in := range ch.Spell {
		if in == 0 {
			continue
		}
		it := g.S.It(in)
		for z := 0; z < world.AttribCount; z++ {
			ch.Attrib[z][4] += it.Attrib[z][1]
		}
		ch.HP[4] += it.HP[1]
		ch.End[4] += it.End[1]
		ch.Mana[4] += it.Mana[1]
		for z := 0; z < world.MaxSkill; z++ {
			ch.Skill[z][4] += it.Skill[z][1]
		}
		ch.Armor += it.Armor[1]
		ch.Weapon += it.Weapon[1]
		if l := it.Light[1]; l > ch.Light {
			ch.Light = l
		} else if l < 0 {
			sublight -= l
		}
		if it.Temp == world.SkStun || it.Temp == world.TmplStunSpell {
			stunned = true
		}
		if it.HP[0] < 0 {
			ch.NoHPReg = true
		}
		if it.End[0] < 0 {
			ch.NoEndReg = true
		}
		if it.Mana[0] < 0 {
			ch.NoManaReg = true
		}
		if it.SpriteOverride != 0 {
			ch.SpriteOverride = it.SpriteOverride
		}
		switch it.Temp {
		case world.TmplInfraA:
			infra |= 1
		case world.TmplInfraB:
			infra |= 2
		case world.TmplInfraC:
			infra |= 4
		case world.TmplInfraD:
			infra |= 8
		}
	}

	if stunned {
		ch.Flags |= world.CfStunned
	} else {
		ch.Flags &^= world.CfStunned
	}
	if infra == 15 {
		ch.Flags |= world.CfInfrared
	} else if !ch.HasFlag(world.CfGod) {
		ch.Flags &^= world.CfInfrared
	}

	for z := 0; z < world.AttribCount; z++ {
		ch.Attrib[z][5] = clamp(ch.Attrib[z][0]+ch.Attrib[z][1]+ch.Attrib[z][4], 1, 250)
	}
	ch.HP[5] = clamp(ch.HP[0]+ch.HP[1]+ch.HP[4], 10, 999)
	ch.End[5] = clamp(ch.End[0]+ch.End[1]+ch.End[4], 10, 999)
	ch.Mana[5] = clamp(ch.Mana[0]+ch.Mana[1]+ch.Mana[4], 10, 999)

	attribBonus := (ch.Attrib[world.AtAgility][5] +
		ch.Attrib[world.AtStrength][5] +
		ch.Attrib[world.AtIntuition][5]) / 5
	for z := 0; z < world.MaxSkill; z++ {
		ch.Skill[z][5] = clamp(ch.Skill[z][0]+ch.Skill[z][1]+ch.Skill[z][4]+attribBonus, 1, 250)
	}

	ch.Armor = clamp(ch.Armor, 0, 250)
	ch.Weapon = clamp(ch.Weapon, 0, 250)
	ch.GethitDam = clamp(ch.GethitDam, 0, 250)
	ch.Light = clamp(ch.Light-sublight, 0, 250)

	// Speed is the count of skipped animation frames out of every
	// twenty; zero is fastest.
	modeBase := [3]int{12, 14, 16}[ch.Mode]
	pace := (ch.Attrib[world.AtAgility][5]+ch.Attrib[world.AtStrength][5])/50 +
		ch.SpeedMod + modeBase
	ch.Speed = 20 - clamp(pace, 1, 20)

	if ch.AHP > ch.HP[5]*world.PointScale {
		ch.AHP = ch.HP[5] * world.PointScale
	}
	if ch.AEnd > ch.End[5]*world.PointScale {
		ch.AEnd = ch.End[5] * world.PointScale
	}
	if ch.AMana > ch.Mana[5]*world.PointScale {
		ch.AMana = ch.Mana[5] * world.PointScale
	}

	if ch.Light != oldLight {
		if t := g.S.Map.Tile(ch.X, ch.Y); t != nil && t.Ch == cn {
			g.S.AddLight(ch.X, ch.Y, ch.Light-oldLight)
		}
	}
}

func (g *Game) noMagicGround(cn int) bool {
	ch := g.S.Ch(cn)
	t := g.S.Map.Tile(ch.X, ch.Y)
	if t == nil || t.Flags&world.MfNoMagic == 0 {
		return false
	}
	for _, in := range ch.Worn {
		if in == 0 {
			continue
		}
		switch g.S.It(in).Template {
		case world.TmplNoMagicBypassA, world.TmplNoMagicBypassB:
			return false
		}
	}
	return true
}

// purgeSpells silently strips every active spell.
func (g *Game) purgeSpells(cn int) {
	ch := g.S.Ch(cn)
	for i := range ch.Spell {
		if ch.Spell[i] != 0 {
			g.S.FreeItem(ch.Spell[i])
			ch.Spell[i] = 0
		}
	}
}

// Regenerate runs one character's per-tick upkeep: resource recovery or
// drain by activity, spell timers, underwater damage.
func (g *Game) Regenerate(cn int) {
	ch := g.S.Ch(cn)
	if !ch.Used || ch.HasFlag(world.CfStoned) || ch.Data[world.DataRespawn] > 0 {
		return
	}

	moonmult := 20
	if ch.IsPlayer() {
		if g.S.Mayhem {
			moonmult = 10
		} else if g.S.FullMoon {
			moonmult = 40
		}
	}

	gothp := 0
	if ch.Stunned == 0 && !ch.HasFlag(world.CfStunned) {
		gothp = g.regenByActivity(cn, moonmult)
	}
	if ch.HasFlag(world.CfUndead) {
		ch.AHP += 650
		gothp += 650
	}

	// An ankh at the neck boosts regeneration whatever the wearer is
	// doing, at half the skill rate.
	if neck := ch.Worn[world.WnNeck]; neck != 0 &&
		g.S.It(neck).Template == world.TmplAnkh {
		if ch.Skill[world.SkRegen][0] != 0 {
			ch.AHP += ch.Skill[world.SkRegen].Value() * moonmult / 60
		}
		if ch.Skill[world.SkRest][0] != 0 {
			ch.AEnd += ch.Skill[world.SkRest].Value() * moonmult / 60
		}
		if ch.Skill[world.SkMeditate][0] != 0 {
			ch.AMana += ch.Skill[world.SkMeditate].Value() * moonmult / 60
		}
	}

	g.capResources(ch)

	if ch.AHP < ch.HP[5]*world.PointScale*9/10 {
		ch.Data[world.DataRegenTimer] = world.Ticks * 60
	} else if ch.Data[world.DataRegenTimer] > 0 {
		ch.Data[world.DataRegenTimer]--
	}

	if ch.AEnd < 1500 && ch.Mode != world.ModeSlow {
		ch.Mode = world.ModeSlow
		g.S.Message(cn, event.ColorRed, "You are exhausted.")
		g.UpdateChar(cn)
	}

	if ch.EscapeTimer > 0 {
		ch.EscapeTimer--
	}
	if ch.Stunned > 0 {
		ch.Stunned--
	}
	if ch.Unreach > 0 {
		ch.Unreach--
	}

	g.tickSpells(cn)
	g.tickUnderwater(cn, gothp)
}

// regenByActivity applies the status-dependent resource flow and
// returns the HP regained, which the drowning check must outpace.
func (g *Game) regenByActivity(cn, moonmult int) int {
	ch := g.S.Ch(cn)
	gothp := 0

	base := world.BaseStatus(ch.Status)
	switch {
	case base == 0:
		if !ch.NoEndReg {
			endPlus := moonmult * 4
			if ch.Skill[world.SkRest][0] != 0 {
				endPlus += ch.Skill[world.SkRest].Value() * moonmult / 30
			}
			ch.AEnd += endPlus
		}
		if !ch.NoHPReg {
			hpPlus := moonmult * 2
			if ch.Skill[world.SkRegen][0] != 0 {
				hpPlus += ch.Skill[world.SkRegen].Value() * moonmult / 30
			}
			ch.AHP += hpPlus
			gothp += hpPlus
		}
		// Mana flows back only for the meditation-trained.
		if !ch.NoManaReg && ch.Skill[world.SkMeditate][0] != 0 {
			ch.AMana += moonmult +
				ch.Skill[world.SkMeditate].Value()*moonmult/30
		}

	case base >= world.StatusWalkUp && base < world.StatusActUp:
		// Walking and turning: fast movement costs, resting pace pays.
		switch ch.Mode {
		case world.ModeFast:
			ch.AEnd -= 25
		case world.ModeSlow:
			if !ch.NoEndReg {
				ch.AEnd += 25
			}
		}

	case base >= world.StatusActUp:
		switch ch.Status2 {
		case world.ActAttack0, world.ActAttack1, world.ActAttack2:
			switch ch.Mode {
			case world.ModeNormal:
				ch.AEnd -= 12
			case world.ModeFast:
				ch.AEnd -= 50
			}
		default:
			switch ch.Mode {
			case world.ModeFast:
				ch.AEnd -= 25
			case world.ModeSlow:
				if !ch.NoEndReg {
					ch.AEnd += 25
				}
			}
		}

	default:
		g.Log.Warn("regen saw unknown status",
			zap.Int("cn", cn), zap.Int("status", ch.Status))
	}
	return gothp
}

func (g *Game) capResources(ch *world.Character) {
	if ch.AHP > ch.HP[5]*world.PointScale {
		ch.AHP = ch.HP[5] * world.PointScale
	}
	if ch.AEnd > ch.End[5]*world.PointScale {
		ch.AEnd = ch.End[5] * world.PointScale
	}
	if ch.AEnd < 0 {
		ch.AEnd = 0
	}
	if ch.AMana > ch.Mana[5]*world.PointScale {
		ch.AMana = ch.Mana[5] * world.PointScale
	}
	if ch.AMana < 0 {
		ch.AMana = 0
	}
}

// tickSpells counts down every active spell and applies the permanent
// ones' continuous deltas.
func (g *Game) tickSpells(cn int) {
	ch := g.S.Ch(cn)
	changed := false

	for i := 0; i < world.SpellSlots; i++ {
		in := ch.Spell[i]
		if in == 0 {
			continue
		}
		it := g.S.It(in)

		if it.Flags&world.IfPermSpell != 0 {
			if it.HPDelta != -1 {
				ch.AHP += it.HPDelta
				if ch.AHP < world.DeathFloor {
					g.characterKilled(0, cn)
					return
				}
			}
			if it.EndDelta != -1 {
				if ch.AEnd+it.EndDelta < world.DeathFloor {
					ch.Spell[i] = 0
					g.S.FreeItem(in)
					changed = true
					continue
				}
				ch.AEnd += it.EndDelta
			}
			if it.ManaDelta != -1 {
				if ch.AMana+it.ManaDelta < world.DeathFloor {
					ch.Spell[i] = 0
					g.S.FreeItem(in)
					changed = true
					continue
				}
				ch.AMana += it.ManaDelta
			}
			continue
		}

		it.Active--
		if it.Active == world.Ticks*30 {
			g.spellFadeWarning(cn, it)
		}
		if it.Temp == world.SkMShield {
			it.Armor[1] = it.Active/1024 + 1
			it.Power = it.Active / 256
		}
		if it.Active <= 0 {
			if it.Temp == world.SkRecall {
				g.S.Effect(event.FXSpellExpire, ch.X, ch.Y)
				g.S.Teleport(cn, it.Data[0], it.Data[1])
			} else {
				g.S.Message(cn, event.ColorYellow, "The "+it.Name+" ran out.")
			}
			ch.Spell[i] = 0
			g.S.FreeItem(in)
			changed = true
		}
	}
	if changed {
		g.UpdateChar(cn)
	}
}

// spellFadeWarning fires at the fixed remaining-duration checkpoint.
// Companions carrying a beneficial spell warn the master who cast it;
// everyone else hears about their own spells directly.
func (g *Game) spellFadeWarning(cn int, it *world.Item) {
	ch := g.S.Ch(cn)
	if ch.IsPlayer() {
		g.S.Message(cn, event.ColorYellow, it.Name+" is wearing off.")
		return
	}
	master := ch.Data[world.DataMaster]
	if master == 0 || !g.S.Ch(master).Used || !g.S.Ch(master).IsPlayer() {
		return
	}
	switch it.Temp {
	case world.SkBless, world.SkProtect, world.SkEnhance:
		event.Emit(g.S.Bus, event.Shout{Cn: cn, Text: fmt.Sprintf(
			"My spell %s is running out, %s.", it.Name, g.S.Ch(master).Name)})
	}
}

// tickUnderwater drowns air-breathers. The base drain carries this
// tick's HP regain on top so regeneration never outpaces drowning.
func (g *Game) tickUnderwater(cn, gothp int) {
	ch := g.S.Ch(cn)
	if !ch.IsPlayer() || ch.HasFlag(world.CfImmortal) {
		return
	}
	t := g.S.Map.Tile(ch.X, ch.Y)
	if t == nil || t.Flags&world.MfUWater == 0 {
		return
	}
	for _, in := range ch.Spell {
		if in != 0 && g.S.It(in).Temp == world.TmplWaterBreath {
			return
		}
	}
	ch.AHP -= 250 + gothp
	if ch.AHP < world.DeathFloor {
		g.S.Message(cn, event.ColorRed, "You drown.")
		g.characterKilled(0, cn)
	}
}

// ── raising and lowering ────────────────────────────────────────────

func (g *Game) RaiseAttrib(cn, z int) bool {
	ch := g.S.Ch(cn)
	if z < 0 || z >= world.AttribCount {
		return false
	}
	st := &ch.Attrib[z]
	if st[0] >= st[2] {
		g.S.Message(cn, event.ColorRed, "Your "+world.AttribName[z]+" is at its maximum.")
		return false
	}
	cost := AttribNeeded(st[0], st[3])
	if ch.Points < cost {
		g.S.Message(cn, event.ColorRed, fmt.Sprintf("You need %d points.", cost))
		return false
	}
	ch.Points -= cost
	st[0]++
	g.UpdateChar(cn)
	return true
}

func (g *Game) RaiseHP(cn int) bool {
	return g.raiseResource(cn, &g.S.Ch(cn).HP, HPNeeded)
}

func (g *Game) RaiseEnd(cn int) bool {
	return g.raiseResource(cn, &g.S.Ch(cn).End, EndNeeded)
}

func (g *Game) RaiseMana(cn int) bool {
	return g.raiseResource(cn, &g.S.Ch(cn).Mana, ManaNeeded)
}

func (g *Game) raiseResource(cn int, st *world.Stat, needed func(v, diff int) int) bool {
	ch := g.S.Ch(cn)
	if st[0] >= st[2] {
		return false
	}
	cost := needed(st[0], st[3])
	if ch.Points < cost {
		return false
	}
	ch.Points -= cost
	st[0]++
	g.UpdateChar(cn)
	return true
}

func (g *Game) RaiseSkill(cn, nr int) bool {
	ch := g.S.Ch(cn)
	if nr < 0 || nr >= world.MaxSkill {
		return false
	}
	st := &ch.Skill[nr]
	if st[0] == 0 || st[0] >= st[2] {
		return false
	}
	cost := SkillNeeded(st[0], st[3])
	if ch.Points < cost {
		return false
	}
	ch.Points -= cost
	st[0]++
	g.UpdateChar(cn)
	return true
}

// LowerHP shrinks the HP base, as the death penalties do. The base
// never drops below 11 and the lost training leaves the lifetime score.
func (g *Game) LowerHP(cn int) bool {
	ch := g.S.Ch(cn)
	if ch.HP[0] <= 11 {
		return false
	}
	ch.HP[0]--
	ch.PointsTot -= ch.HP[0]/10 + 1
	g.UpdateChar(cn)
	return true
}

// LowerMana is LowerHP for mana.
func (g *Game) LowerMana(cn int) bool {
	ch := g.S.Ch(cn)
	if ch.Mana[0] <= 11 {
		return false
	}
	ch.Mana[0]--
	ch.PointsTot -= ch.Mana[0]/10 + 1
	g.UpdateChar(cn)
	return true
}

// ── ranks ───────────────────────────────────────────────────────────

func kindredName(kindred uint64) string {
	switch {
	case kindred&world.KinArchTemplar != 0:
		return "arch_templar"
	case kindred&world.KinArchHarakim != 0:
		return "arch_harakim"
	case kindred&world.KinTemplar != 0:
		return "templar"
	case kindred&world.KinHarakim != 0:
		return "harakim"
	case kindred&world.KinSorcerer != 0:
		return "sorcerer"
	case kindred&world.KinWarrior != 0:
		return "warrior"
	case kindred&world.KinSeyanDu != 0:
		return "seyan_du"
	case kindred&world.KinMercenary != 0:
		return "mercenary"
	}
	return "unknown"
}

// CheckNewLevel promotes a player whose lifetime points crossed a rank
// threshold: permanent bonuses, the announcement, the herald shout.
func (g *Game) CheckNewLevel(cn int) {
	ch := g.S.Ch(cn)
	if !ch.IsPlayer() {
		return
	}
	rank := Points2Rank(ch.PointsTot)
	if ch.Data[world.DataRank] >= rank {
		return
	}
	ch.Data[world.DataRank] = rank

	gain := g.Lua.RankGain(
		scripting.RankGainContext{Kindred: kindredName(ch.Kindred), Rank: rank},
		scripting.RankGainResult(world.KindredGain(ch.Kindred)),
	)
	ch.HP[1] = gain.HP * rank
	ch.End[1] = gain.End * rank
	ch.Mana[1] = gain.Mana * rank

	name := RankName(rank)
	g.S.Message(cn, event.ColorBlue, "You have attained the rank of "+name+"!")
	event.Emit(g.S.Bus, event.Shout{Cn: cn, Text: fmt.Sprintf(
		"Hear ye, hear ye! %s has attained the rank of %s!", ch.Name, name)})
	event.Emit(g.S.Bus, event.RankAttained{Cn: cn, Rank: rank})
	g.Log.Info("rank attained",
		zap.Int("cn", cn), zap.String("name", ch.Name), zap.Int("rank", rank))
	g.UpdateChar(cn)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

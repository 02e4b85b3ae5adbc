package data

import (
	"fmt"

	"github.com/mercia/server/internal/world"
)

// YAML data files name flags as strings; these tables translate them to
// the world bit masks.

var kindredByName = map[string]uint64{
	"male":          world.KinMale,
	"female":        world.KinFemale,
	"purple":        world.KinPurple,
	"templar":       world.KinTemplar,
	"mercenary":     world.KinMercenary,
	"harakim":       world.KinHarakim,
	"sorcerer":      world.KinSorcerer,
	"warrior":       world.KinWarrior,
	"seyan_du":      world.KinSeyanDu,
	"arch_harakim":  world.KinArchHarakim,
	"arch_templar":  world.KinArchTemplar,
	"monster":       world.KinMonster,
}

var charFlagByName = map[string]uint64{
	"body":        world.CfBody,
	"immortal":    world.CfImmortal,
	"god":         world.CfGod,
	"stoned":      world.CfStoned,
	"undead":      world.CfUndead,
	"no_sleep":    world.CfNoSleep,
	"infrared":    world.CfInfrared,
	"no_magic":    world.CfNoMagic,
	"thrall":      world.CfThrall,
	"simple":      world.CfSimple,
	"respawn":     world.CfRespawn,
	"immovable":   world.CfImmovable,
	"invisible":   world.CfInvisible,
	"spellignore": world.CfSpellIgnore,
}

var itemFlagByName = map[string]uint64{
	"spell":          world.IfSpell,
	"take":           world.IfTake,
	"move_block":     world.IfMoveBlock,
	"sight_block":    world.IfSightBlock,
	"use":            world.IfUse,
	"use_activate":   world.IfUseActivate,
	"use_deactivate": world.IfUseDeactivate,
	"use_special":    world.IfUseSpecial,
	"use_destroy":    world.IfUseDestroy,
	"weapon":         world.IfWeapon,
	"wp_sword":       world.IfWpSword,
	"wp_dagger":      world.IfWpDagger,
	"wp_axe":         world.IfWpAxe,
	"wp_staff":       world.IfWpStaff,
	"wp_twohand":     world.IfWpTwoHand,
	"armor":          world.IfArmor,
	"shield":         world.IfShield,
	"wear":           world.IfWear,
	"magic":          world.IfMagic,
	"no_expire":      world.IfNoExpire,
	"perm_spell":     world.IfPermSpell,
	"no_repair":      world.IfNoRepair,
	"labyrinth":      world.IfLabyrinth,
}

var mapFlagByName = map[string]uint64{
	"move_block":  world.MfMoveBlock,
	"sight_block": world.MfSightBlock,
	"indoors":     world.MfIndoors,
	"underwater":  world.MfUWater,
	"no_magic":    world.MfNoMagic,
	"no_lag":      world.MfNoLag,
	"arena":       world.MfArena,
	"no_fight":    world.MfNoFight,
	"bank":        world.MfBank,
	"tavern":      world.MfTavern,
	"no_monst":    world.MfNoMonst,
	"death_trap":  world.MfDeathTrap,
	"no_expire":   world.MfNoExpire,
}

func parseFlags(names []string, table map[string]uint64, kind string) (uint64, error) {
	var mask uint64
	for _, n := range names {
		bit, ok := table[n]
		if !ok {
			return 0, fmt.Errorf("unknown %s flag %q", kind, n)
		}
		mask |= bit
	}
	return mask, nil
}

package system

import (
	"github.com/mercia/server/internal/core/event"
	"github.com/mercia/server/internal/world"
)

// Equipment wear. Every swing grinds the attacker's weapon and every
// hit grinds the defender's armor pieces; an item with MaxDamage 0
// never wears out.

// itemDamageWorn ages one worn slot. Warns at half wear, destroys the
// item when the wear budget is spent.
func (g *Game) itemDamageWorn(cn, slot, dam int) {
	ch := g.S.Ch(cn)
	in := ch.Worn[slot]
	if in == 0 {
		return
	}
	it := g.S.It(in)
	if it.MaxDamage == 0 {
		return
	}
	before := it.CurrentDamage
	it.CurrentDamage += dam
	if it.CurrentDamage >= it.MaxDamage {
		ch.Worn[slot] = 0
		g.S.Message(cn, event.ColorYellow, "Your "+it.Name+" was destroyed.")
		g.S.FreeItem(in)
		g.UpdateChar(cn)
		return
	}
	if before < it.MaxDamage/2 && it.CurrentDamage >= it.MaxDamage/2 {
		g.S.Message(cn, event.ColorRed, "Your "+it.Name+" is showing signs of use.")
	}
}

// itemDamageArmor spreads wear over the armor slots, sparing the hands.
// Each piece has a two-in-three chance of taking this hit's share.
func (g *Game) itemDamageArmor(cn, dam int) {
	for slot := 0; slot < world.WornSlots; slot++ {
		if slot == world.WnRHand || slot == world.WnLHand {
			continue
		}
		if g.S.Rand(3) != 0 {
			g.itemDamageWorn(cn, slot, dam/4+1)
		}
	}
}

// itemDamageWeapon ages the weapon hand.
func (g *Game) itemDamageWeapon(cn, dam int) {
	g.itemDamageWorn(cn, world.WnRHand, dam/4+1)
}

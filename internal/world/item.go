package world

// Item is one item instance, carried or on the ground. Two-value bonus
// arrays hold the inactive tier in [0] and the active tier in [1]; the
// stat engine picks the tier by Active.
type Item struct {
	Used bool
	Name string

	Template int
	Flags    uint64

	// Ground position when not carried. Carried holds the owning
	// character index, 0 when on the ground. Decay is the remaining
	// ground lifetime in ticks.
	X, Y    int
	Carried int
	Decay   int

	Armor     [2]int
	Weapon    [2]int
	GethitDam [2]int
	Light     [2]int // negative values darken

	// Wear. MaxDamage 0 means the item never wears out.
	MaxDamage     int
	CurrentDamage int

	Attrib [AttribCount][2]int
	HP     [2]int
	End    [2]int
	Mana   [2]int
	Skill  [MaxSkill][2]int

	// Spell payload: Temp selects the skill a spell slot item powers,
	// Power its strength, Active its remaining charge or duration.
	// PermSpell items apply continuous resource deltas instead of
	// counting down; a delta of -1 means "leave alone".
	Active   int
	Duration int
	Temp     int
	Power    int
	HPDelta  int
	EndDelta int
	ManaDelta int

	Sprite         int
	SpriteOverride int

	// Driver selects special use behavior (2 = door, 25 = continuing
	// use). Data is driver scratch; doors keep their open/closed pair,
	// recall spells their target tile.
	Driver int
	Data   [10]int
	Value  int
}

// IsSpell reports whether the item lives in a spell slot.
func (it *Item) IsSpell() bool { return it.Flags&IfSpell != 0 }

// WeaponSkill maps a weapon's class flag onto the skill that wields it,
// or -1 for flagless weapons.
func (it *Item) WeaponSkill() int {
	switch {
	case it.Flags&IfWpSword != 0:
		return SkSword
	case it.Flags&IfWpDagger != 0:
		return SkDagger
	case it.Flags&IfWpAxe != 0:
		return SkAxe
	case it.Flags&IfWpStaff != 0:
		return SkStaff
	case it.Flags&IfWpTwoHand != 0:
		return SkTwoHand
	}
	return -1
}

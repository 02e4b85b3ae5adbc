package world

// Attribute indices.
const (
	AtBraveness = iota
	AtWillpower
	AtIntuition
	AtAgility
	AtStrength
	AttribCount
)

// AttribName maps attribute indices to display names.
var AttribName = [AttribCount]string{
	"Braveness", "Willpower", "Intuition", "Agility", "Strength",
}

// Stat is the six-value bookkeeping tuple every raisable value uses:
//
//	[0] trained base
//	[1] permanent bonus (rank gains, quest rewards)
//	[2] racial maximum for the base
//	[3] cost difficulty
//	[4] per-update scratch (worn items, spells)
//	[5] final effective value after clamping
type Stat [6]int

// Base, Max and Value read the conventional tuple slots.
func (s *Stat) Base() int  { return s[0] }
func (s *Stat) Max() int   { return s[2] }
func (s *Stat) Value() int { return s[5] }

// Character is one live entity in the simulation, player or NPC. The
// whole sheet is plain data; all behavior lives in the systems that get
// handed the State.
type Character struct {
	Used bool
	Name string

	Kindred uint64
	Flags   uint64

	// Position and animation.
	X, Y       int
	ToX, ToY   int // walk destination while a walk band plays
	Dir        int
	Status     int
	Status2    int
	LastAttack int // last attack swing variant, to avoid repeats

	// Queued goals, consumed by the driver in priority order.
	UseNr        int
	SkillNr      int
	SkillTarget1 int
	SkillTarget2 int
	GotoX, GotoY int
	AttackCn     int
	MiscAction   int
	MiscTarget1  int
	MiscTarget2  int
	MiscDir      int // target facing for DrTurn
	LastAction   Outcome

	// ActTarget is the character or item the currently playing act band
	// resolves against when it commits.
	ActTarget int

	// Unreachable-goal cache: while Unreach>0 the driver refuses to path
	// to (UnreachX,UnreachY) again.
	UnreachX, UnreachY int
	Unreach            int

	// Stats.
	Attrib [AttribCount]Stat
	HP     Stat
	End    Stat
	Mana   Stat
	Skill  [MaxSkill]Stat

	// Live resources, fixed point (PointScale per displayed point).
	AHP, AEnd, AMana int

	// Derived each update pass. GethitBonus is the character's innate
	// counter-damage, added to whatever the worn items carry.
	Armor, Weapon int
	GethitDam     int
	GethitBonus   int
	Light         int
	Speed         int
	Stunned       int
	SpeedMod      int

	// Regeneration modifiers set by the update pass.
	NoHPReg, NoEndReg, NoManaReg bool
	SpriteOverride               int

	Mode        int // ModeSlow / ModeNormal / ModeFast
	EscapeTimer int

	// Inventory. Values are item indices, 0 = empty. Citem is the item
	// on the cursor.
	Worn  [WornSlots]int
	Item  [InvSlots]int
	Spell [SpellSlots]int
	Citem int

	// Combat bookkeeping.
	Enemy        [EnemySlots]int
	CurrentEnemy int

	Luck      int
	Points    int // spendable
	PointsTot int // lifetime, drives rank

	Data [100]int
}

// IsPlayer reports whether the character is player controlled.
func (c *Character) IsPlayer() bool { return c.Kindred&KinPurple != 0 }

// Idle reports whether the character is between animation bands and may
// accept driver work.
func (c *Character) Idle() bool { return c.Status <= StatusIdleMax }

// HasFlag tests a character flag.
func (c *Character) HasFlag(f uint64) bool { return c.Flags&f != 0 }

// ClearGoals drops every queued goal, as after a forced teleport.
func (c *Character) ClearGoals() {
	c.UseNr = 0
	c.SkillNr = 0
	c.GotoX, c.GotoY = 0, 0
	c.AttackCn = 0
	c.MiscAction = DrIdle
	c.MiscTarget1, c.MiscTarget2 = 0, 0
}

// RankGain is the per-rank hp/end/mana bonus for a kindred.
type RankGain struct {
	HP, End, Mana int
}

// KindredGain returns the level-up gains for a character's kindred.
func KindredGain(kindred uint64) RankGain {
	switch {
	case kindred&(KinTemplar|KinArchTemplar) != 0:
		return RankGain{HP: 15, End: 10, Mana: 5}
	case kindred&(KinHarakim|KinArchHarakim) != 0:
		return RankGain{HP: 5, End: 10, Mana: 15}
	default:
		return RankGain{HP: 10, End: 10, Mana: 10}
	}
}

// He returns the subject pronoun for log messages.
func (c *Character) He() string {
	if c.Kindred&KinMale != 0 {
		return "He"
	}
	return "She"
}

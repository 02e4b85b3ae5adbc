package world

// Core simulation constants. One tick is 1/TICKS of a game second; the
// outer loop decides how fast game seconds pass in wall time.
const (
	Ticks    = 20
	MaxChars = 8192
	MaxItems = 32768
	MaxSkill = 50

	// Inventory geometry.
	WornSlots  = 20
	InvSlots   = 40
	SpellSlots = 20
	EnemySlots = 4

	// Fixed-point resources carry 1000 per displayed point. A character
	// whose HP drops below DeathFloor is dead.
	PointScale = 1000
	DeathFloor = 500

	// Largest rank difference at which a player may attack another.
	AttackRange = 3
)

// Directions. Zero is "no direction"; the client sprite sheets dictate
// the numbering.
const (
	DxRight = 1 + iota
	DxLeft
	DxUp
	DxDown
	DxLeftUp
	DxLeftDown
	DxRightUp
	DxRightDown
)

// Outcome reports how a character's last queued action ended. It replaces
// the old errno-style field that doubled as a scripting return channel.
type Outcome int

const (
	OutcomeNone Outcome = iota
	OutcomeSuccess
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeNone:
		return "none"
	case OutcomeSuccess:
		return "success"
	case OutcomeFailed:
		return "failed"
	}
	return "unknown"
}

// Misc actions queued on a character, consumed by the driver.
const (
	DrIdle = iota
	DrDrop
	DrPickup
	DrGive
	DrUse
	DrBow
	DrWave
	DrTurn
)

// Use states for activatable items.
const (
	UseEmpty  = 0
	UseActive = 1
)

// Item driver numbers. Doors toggle their own blocking flags; levers
// keep the use goal alive so the actor works them repeatedly.
const (
	DrvDoor  = 2
	DrvLever = 25
)

// Worn slot indices.
const (
	WnHead  = 0
	WnNeck  = 1
	WnBody  = 2
	WnArms  = 3
	WnBelt  = 4
	WnLegs  = 5
	WnFeet  = 6
	WnLHand = 7 // shield
	WnRHand = 8 // weapon
	WnCloak = 9
	WnRing1 = 10
	WnRing2 = 11
)

// Skill indices. Only the ones the simulation core reads by number are
// named; the rest come from the skill table.
const (
	SkHand     = 0
	SkKarate   = 1
	SkDagger   = 2
	SkSword    = 3
	SkAxe      = 4
	SkStaff    = 5
	SkTwoHand  = 6
	SkLockpick = 7
	SkStealth  = 8
	SkPercept  = 9
	SkSwim     = 10
	SkMShield  = 11
	SkBartering = 12
	SkRepair   = 13
	SkLight    = 14
	SkRecall   = 15
	SkStun     = 17
	SkCurse    = 18
	SkBless    = 19
	SkIdentify = 20
	SkBlast    = 21
	SkDispel   = 22
	SkHeal     = 23
	SkGhost    = 24
	SkRegen    = 28
	SkRest     = 29
	SkMeditate = 30
	SkProtect  = 31
	SkEnhance  = 32
	SkSurround = 33
	SkWarcry   = 34
)

// Fight notification types carried on the event bus.
const (
	NtGotHit = 1 + iota
	NtGotMiss
	NtDidHit
	NtDidMiss
	NtDidKill
	NtGotKill
	NtSeeHit
	NtSeeMiss
	NtSeeKill
	NtHitMe
	NtMissMe
	NtSee
)

// Character flags.
const (
	CfBody uint64 = 1 << iota
	CfImmortal
	CfGod
	CfStoned
	CfUndead
	CfNoSleep
	CfInfrared
	CfNoMagic
	CfStunned
	CfThrall
	CfSimple
	CfRespawn
	CfImmovable
	CfInvisible
	CfUsurp
	CfSpellIgnore
)

// Kindred flags. Purple marks a player character.
const (
	KinMale uint64 = 1 << iota
	KinFemale
	KinPurple
	KinTemplar
	KinMercenary
	KinHarakim
	KinSorcerer
	KinWarrior
	KinSeyanDu
	KinArchHarakim
	KinArchTemplar
	KinMonster
)

// Map tile flags.
const (
	MfMoveBlock uint64 = 1 << iota
	MfSightBlock
	MfIndoors
	MfUWater
	MfNoMagic
	MfNoLag
	MfArena
	MfNoFight
	MfBank
	MfTavern
	MfNoMonst
	MfDeathTrap
	MfNoExpire
	MfGfxInjured
	MfGfxInjured1
	MfGfxInjured2
)

// Item flags.
const (
	IfUsed uint64 = 1 << iota
	IfSpell
	IfTake
	IfMoveBlock
	IfSightBlock
	IfUse
	IfUseActivate
	IfUseDeactivate
	IfUseSpecial
	IfUseDestroy
	IfWeapon
	IfWpSword
	IfWpDagger
	IfWpAxe
	IfWpStaff
	IfWpTwoHand
	IfArmor
	IfShield
	IfWear
	IfMagic
	IfNoExpire
	IfPermSpell
	IfNoRepair
	IfLabyrinth
)

// Well-known item template numbers the stat engine special-cases.
const (
	TmplNoMagicBypassA = 466 // amulets that keep working on no-magic ground
	TmplNoMagicBypassB = 481
	TmplAnkh           = 768 // neck item boosting regeneration skills
	TmplWaterBreath    = 649 // spell granting underwater breathing
	TmplInfraA         = 635 // the four infravision component spells
	TmplInfraB         = 637
	TmplInfraC         = 639
	TmplInfraD         = 641
	TmplStunSpell      = 59
)

// Data slot indices on Character.Data. The drivers and the stat engine
// treat these as named registers, same as the legacy server did.
const (
	DataPatrolBase  = 10 // 8 pairs of patrol waypoints
	DataPatrolEnd   = 26
	DataSpawnX      = 29 // resting position
	DataSpawnY      = 30
	DataGodSaves    = 44 // times the gods intervened
	DataRank        = 45 // last rank the level checker saw
	DataTempleX     = 46 // respawn temple
	DataTempleY     = 47
	DataMaster      = 63 // controlling character; hurting it pays no exp
	DataEnemy       = 80 // 4 pairs: enemy cn, timeout
	DataEnemyEnd    = 88
	DataFrust       = 90 // pursuit frustration counter
	DataPatrol      = 91 // current patrol waypoint index
	DataRegenTimer  = 92 // ticks left in the "regenerating" display state
	DataAttackTime  = 93 // pvp memory
	DataAttackVict  = 94
	DataHelpGroup   = 95 // npcs sharing this group answer help shouts
	DataRespawn     = 96 // ticks until a dead respawning npc returns
	DataRespawnTime = 97 // configured respawn delay
	DataTemplate    = 98 // template the character was spawned from
	DataFrustX      = 88 // last tile a lost enemy was seen on
	DataFrustY      = 89
)

// Character modes. Fast movement burns endurance, slow recovers it.
const (
	ModeSlow = iota
	ModeNormal
	ModeFast
)

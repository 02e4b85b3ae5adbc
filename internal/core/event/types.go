package event

// Message colors, matching the classic client log window.
const (
	ColorRed = iota
	ColorGreen
	ColorBlue
	ColorYellow
)

// CharMessage is a log line addressed to one character.
type CharMessage struct {
	Cn    int
	Color int
	Text  string
}

// Fight is a combat notification. Type is one of the world.Nt* codes;
// Cn is the actor, Co the other party (0 for area notifications), Dam
// the applied damage in display points.
type Fight struct {
	Type int
	Cn   int
	Co   int
	Dam  int
	X, Y int
}

// Effect is a visual effect spawned at a tile.
type Effect struct {
	FX   int
	X, Y int
}

// Visual effect numbers the simulation emits.
const (
	FXInjured = 1 + iota
	FXTeleport
	FXDeath
	FXShieldBreak
	FXSpellExpire
)

// Shout is a broadcast line, e.g. the rank herald.
type Shout struct {
	Cn   int
	Text string
}

// Sound is a positional sound cue.
type Sound struct {
	Nr   int
	X, Y int
}

// CharacterDied fires after the death bookkeeping settles. Killer is 0
// for environmental deaths.
type CharacterDied struct {
	Cn     int
	Killer int
}

// RankAttained fires when a player's lifetime points cross a rank
// threshold.
type RankAttained struct {
	Cn   int
	Rank int
}

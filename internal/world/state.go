package world

import (
	"math/rand"

	"go.uber.org/zap"

	"github.com/mercia/server/internal/core/event"
)

// State is the whole simulation: map, characters, items, clock and dice.
// Exactly one goroutine (the game loop) touches it — no locks. Every
// system receives it explicitly; there is no package-level world.
type State struct {
	Map   *Grid
	chars []Character
	items []Item

	Tick int
	RNG  *rand.Rand
	Log  *zap.Logger
	Bus  *event.Bus

	// Moon phase scales player regeneration.
	Mayhem   bool
	FullMoon bool
}

// NewState builds an empty world of the given geometry. Character and
// item slot 0 are reserved as "none".
func NewState(width, height int, seed int64, log *zap.Logger) *State {
	if log == nil {
		log = zap.NewNop()
	}
	return &State{
		Map:   NewGrid(width, height),
		chars: make([]Character, MaxChars),
		items: make([]Item, MaxItems),
		Tick:  0,
		RNG:   rand.New(rand.NewSource(seed)),
		Log:   log,
		Bus:   event.NewBus(),
	}
}

// Ch returns the character with index cn. Index 0 is the reserved empty
// slot; callers check Used where it matters.
func (s *State) Ch(cn int) *Character {
	return &s.chars[cn]
}

// It returns the item with index in.
func (s *State) It(in int) *Item {
	return &s.items[in]
}

// CharCount returns the number of live characters.
func (s *State) CharCount() int {
	n := 0
	for i := 1; i < len(s.chars); i++ {
		if s.chars[i].Used {
			n++
		}
	}
	return n
}

// EachChar calls fn for every live character index, ascending.
func (s *State) EachChar(fn func(cn int, ch *Character)) {
	for i := 1; i < len(s.chars); i++ {
		if s.chars[i].Used {
			fn(i, &s.chars[i])
		}
	}
}

// EachCharNear calls fn for every live character within Chebyshev
// radius of (x,y), walking the map tiles rather than the character
// table so the cost scales with the area, not the population.
func (s *State) EachCharNear(x, y, radius int, fn func(cn int, ch *Character)) {
	for ty := y - radius; ty <= y+radius; ty++ {
		for tx := x - radius; tx <= x+radius; tx++ {
			t := s.Map.Tile(tx, ty)
			if t == nil || t.Ch == 0 {
				continue
			}
			ch := &s.chars[t.Ch]
			if ch.Used && ch.X == tx && ch.Y == ty {
				fn(t.Ch, ch)
			}
		}
	}
}

// Rand rolls a uniform integer in [0,n). n<=0 yields 0.
func (s *State) Rand(n int) int {
	if n <= 0 {
		return 0
	}
	return s.RNG.Intn(n)
}

// AllocChar finds a free character slot. Returns 0 when full.
func (s *State) AllocChar() int {
	for i := 1; i < len(s.chars); i++ {
		if !s.chars[i].Used {
			s.chars[i] = Character{Used: true}
			return i
		}
	}
	return 0
}

// AllocItem finds a free item slot. Returns 0 when full.
func (s *State) AllocItem() int {
	for i := 1; i < len(s.items); i++ {
		if !s.items[i].Used {
			s.items[i] = Item{Used: true}
			return i
		}
	}
	return 0
}

// FreeItem releases an item slot.
func (s *State) FreeItem(in int) {
	s.items[in] = Item{}
}

// PlaceChar drops a character onto a tile. Fails when the tile is taken.
func (s *State) PlaceChar(cn, x, y int) bool {
	t := s.Map.Tile(x, y)
	if t == nil || t.Ch != 0 || t.ToCh != 0 || s.Map.MoveBlocked(s, x, y) {
		return false
	}
	ch := s.Ch(cn)
	ch.X, ch.Y = x, y
	ch.ToX, ch.ToY = x, y
	t.Ch = cn
	if ch.Light != 0 {
		s.AddLight(x, y, ch.Light)
	}
	return true
}

// RemoveChar takes a character off the map and drops its reservations.
func (s *State) RemoveChar(cn int) {
	ch := s.Ch(cn)
	if t := s.Map.Tile(ch.X, ch.Y); t != nil && t.Ch == cn {
		t.Ch = 0
	}
	s.ReleaseWalk(cn)
	if ch.Light != 0 {
		s.AddLight(ch.X, ch.Y, -ch.Light)
	}
}

// ReleaseWalk clears every reservation cn holds around its current
// position, as after an aborted move.
func (s *State) ReleaseWalk(cn int) {
	ch := s.Ch(cn)
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			s.Map.Release(ch.X+dx, ch.Y+dy, cn)
		}
	}
}

// Teleport moves a character instantly, clearing goals and facing it
// down, the way a temple recall does.
func (s *State) Teleport(cn, x, y int) bool {
	ch := s.Ch(cn)
	fromX, fromY := ch.X, ch.Y
	s.RemoveChar(cn)
	if !s.PlaceChar(cn, x, y) {
		// Put the character back rather than lose it off-map.
		s.PlaceChar(cn, fromX, fromY)
		return false
	}
	ch.Status = 0
	ch.Dir = DxDown
	ch.ClearGoals()
	ch.LastAction = OutcomeNone
	event.Emit(s.Bus, event.Effect{FX: event.FXTeleport, X: fromX, Y: fromY})
	event.Emit(s.Bus, event.Effect{FX: event.FXTeleport, X: x, Y: y})
	return true
}

// lightRadius bounds light propagation.
const lightRadius = 6

// AddLight adds (or with negative delta, removes) a light source's
// contribution around a tile. Falloff is linear in Chebyshev distance.
func (s *State) AddLight(x, y, delta int) {
	if delta == 0 {
		return
	}
	for dy := -lightRadius; dy <= lightRadius; dy++ {
		for dx := -lightRadius; dx <= lightRadius; dx++ {
			t := s.Map.Tile(x+dx, y+dy)
			if t == nil {
				continue
			}
			d := dx
			if d < 0 {
				d = -d
			}
			if dy > d {
				d = dy
			} else if -dy > d {
				d = -dy
			}
			t.Light += delta * (lightRadius + 1 - d) / (lightRadius + 1)
		}
	}
}

// Message emits a log line to one character.
func (s *State) Message(cn, color int, text string) {
	if cn == 0 {
		return
	}
	event.Emit(s.Bus, event.CharMessage{Cn: cn, Color: color, Text: text})
}

// Fight emits a combat notification.
func (s *State) Fight(typ, cn, co, dam, x, y int) {
	event.Emit(s.Bus, event.Fight{Type: typ, Cn: cn, Co: co, Dam: dam, X: x, Y: y})
}

// Effect spawns a visual effect.
func (s *State) Effect(fx, x, y int) {
	event.Emit(s.Bus, event.Effect{FX: fx, X: x, Y: y})
}

// Sound emits a positional sound cue.
func (s *State) Sound(nr, x, y int) {
	event.Emit(s.Bus, event.Sound{Nr: nr, X: x, Y: y})
}

// Exhausted reports whether a character is too drained to move fast.
func (s *State) Exhausted(cn int) bool {
	return s.Ch(cn).AEnd < 1500
}

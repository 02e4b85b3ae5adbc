package world

// Tile is one map cell. Ch is the character standing here, ToCh a
// reservation held by a character walking in. It is the item lying on
// the ground.
type Tile struct {
	Flags  uint64
	Ch     int
	ToCh   int
	It     int
	Sprite int
	Light  int
}

// Grid is the world map, a dense width×height tile array.
type Grid struct {
	Width, Height int
	tiles         []Tile
}

func NewGrid(width, height int) *Grid {
	return &Grid{
		Width:  width,
		Height: height,
		tiles:  make([]Tile, width*height),
	}
}

// InBounds reports whether a coordinate lies on the map.
func (g *Grid) InBounds(x, y int) bool {
	return x >= 0 && y >= 0 && x < g.Width && y < g.Height
}

// Tile returns the cell at (x,y), or nil off-map.
func (g *Grid) Tile(x, y int) *Tile {
	if !g.InBounds(x, y) {
		return nil
	}
	return &g.tiles[x+y*g.Width]
}

// MoveBlocked reports whether a character can never enter (x,y):
// off-map, terrain-blocked, or blocked by a ground item.
func (g *Grid) MoveBlocked(s *State, x, y int) bool {
	t := g.Tile(x, y)
	if t == nil || t.Flags&MfMoveBlock != 0 {
		return true
	}
	if t.It != 0 && s.It(t.It).Flags&IfMoveBlock != 0 {
		return true
	}
	return false
}

// TileFree reports whether (x,y) can be entered right now: not blocked,
// not occupied, not reserved.
func (g *Grid) TileFree(s *State, x, y int) bool {
	t := g.Tile(x, y)
	if t == nil {
		return false
	}
	return !g.MoveBlocked(s, x, y) && t.Ch == 0 && t.ToCh == 0
}

// Reserve marks (x,y) as walk-target of cn. Reservations on occupied or
// already reserved tiles are a caller bug.
func (g *Grid) Reserve(x, y, cn int) {
	if t := g.Tile(x, y); t != nil {
		t.ToCh = cn
	}
}

// Release drops cn's reservation on (x,y) if it still holds one.
func (g *Grid) Release(x, y, cn int) {
	if t := g.Tile(x, y); t != nil && t.ToCh == cn {
		t.ToCh = 0
	}
}

// AddInjury accumulates blood-splatter flags on a tile. The tier grows
// with the total damage dealt there.
func (t *Tile) AddInjury(dam int) {
	switch {
	case dam < 10000:
		t.Flags |= MfGfxInjured
	case dam < 30000:
		t.Flags |= MfGfxInjured | MfGfxInjured1
	case dam < 50000:
		t.Flags |= MfGfxInjured | MfGfxInjured2
	default:
		t.Flags |= MfGfxInjured | MfGfxInjured1 | MfGfxInjured2
	}
}

package world

// Animation status bands. A status value is base+frame; the frame advances
// once per animation tick and the action commits when it runs off the band.
const (
	StatusIdleMax = 7

	StatusWalkUp        = 16
	StatusWalkDown      = 24
	StatusWalkLeft      = 32
	StatusWalkRight     = 40
	StatusWalkLeftUp    = 48
	StatusWalkLeftDown  = 60
	StatusWalkRightUp   = 72
	StatusWalkRightDown = 84

	StatusTurnMin = 96
	StatusTurnMax = 156

	StatusActUp    = 160
	StatusActDown  = 168
	StatusActLeft  = 176
	StatusActRight = 184

	WalkFrames     = 8
	DiagWalkFrames = 12
	TurnFrames     = 4
	ActFrames      = 8
)

// Act variants carried in Status2 while an act band plays.
const (
	ActAttack0 = 0
	ActPickup  = 1
	ActDrop    = 2
	ActGive    = 3
	ActUse     = 4
	ActAttack1 = 5
	ActAttack2 = 6
	ActBow     = 7
	ActWave    = 8
	ActSkill   = 9
)

// ring orders the eight directions clockwise starting at up, so that one
// rotation step is one ring neighbor.
var ring = [8]int{DxUp, DxRightUp, DxRight, DxRightDown, DxDown, DxLeftDown, DxLeft, DxLeftUp}

var ringIndex = map[int]int{
	DxUp: 0, DxRightUp: 1, DxRight: 2, DxRightDown: 3,
	DxDown: 4, DxLeftDown: 5, DxLeft: 6, DxLeftUp: 7,
}

// turnStatus holds the animation band for rotating from one direction to
// an adjacent one. Keys are from*16+to; the codes match the client's
// sprite sheets and are not contiguous per target direction.
var turnStatus = map[int]int{
	DxLeftUp<<4 | DxUp:        132,
	DxRightUp<<4 | DxUp:       148,
	DxLeftDown<<4 | DxDown:    140,
	DxRightDown<<4 | DxDown:   156,
	DxLeftUp<<4 | DxLeft:      100,
	DxLeftDown<<4 | DxLeft:    116,
	DxRightUp<<4 | DxRight:    108,
	DxRightDown<<4 | DxRight:  124,
	DxUp<<4 | DxLeftUp:        96,
	DxLeft<<4 | DxLeftUp:      128,
	DxDown<<4 | DxLeftDown:    112,
	DxLeft<<4 | DxLeftDown:    136,
	DxUp<<4 | DxRightUp:       104,
	DxRight<<4 | DxRightUp:    144,
	DxDown<<4 | DxRightDown:   120,
	DxRight<<4 | DxRightDown:  152,
}

// turnTarget inverts turnStatus: band base → the facing it ends on.
var turnTarget = func() map[int]int {
	m := make(map[int]int, len(turnStatus))
	for k, st := range turnStatus {
		m[st] = k & 0xf
	}
	return m
}()

// TurnTarget returns the facing a turn band ends on, or 0 for a status
// outside the turn bands.
func TurnTarget(base int) int {
	return turnTarget[base]
}

// RotateStep advances facing one step along the shorter arc toward want
// and returns the new facing plus the turn animation status to play.
// ok is false when from==want or either direction is invalid. A full
// half-circle resolves clockwise.
func RotateStep(from, want int) (next, status int, ok bool) {
	fi, okF := ringIndex[from]
	wi, okW := ringIndex[want]
	if !okF || !okW || fi == wi {
		return from, 0, false
	}
	d := (wi - fi + 8) % 8
	if d <= 4 {
		next = ring[(fi+1)%8]
	} else {
		next = ring[(fi+7)%8]
	}
	status, ok = turnStatus[from<<4|next]
	return next, status, ok
}

// TurnDistance reports how many RotateStep calls separate two facings.
func TurnDistance(from, want int) int {
	fi, okF := ringIndex[from]
	wi, okW := ringIndex[want]
	if !okF || !okW {
		return 0
	}
	d := (wi - fi + 8) % 8
	if d > 4 {
		d = 8 - d
	}
	return d
}

// DirOffset returns the tile delta for a direction.
func DirOffset(dir int) (dx, dy int) {
	switch dir {
	case DxRight:
		return 1, 0
	case DxLeft:
		return -1, 0
	case DxUp:
		return 0, -1
	case DxDown:
		return 0, 1
	case DxLeftUp:
		return -1, -1
	case DxLeftDown:
		return -1, 1
	case DxRightUp:
		return 1, -1
	case DxRightDown:
		return 1, 1
	}
	return 0, 0
}

// OffsetDir maps a tile delta's signs onto a direction. Zero delta gives
// zero.
func OffsetDir(dx, dy int) int {
	sx, sy := sign(dx), sign(dy)
	switch {
	case sx > 0 && sy == 0:
		return DxRight
	case sx < 0 && sy == 0:
		return DxLeft
	case sx == 0 && sy < 0:
		return DxUp
	case sx == 0 && sy > 0:
		return DxDown
	case sx < 0 && sy < 0:
		return DxLeftUp
	case sx < 0 && sy > 0:
		return DxLeftDown
	case sx > 0 && sy < 0:
		return DxRightUp
	case sx > 0 && sy > 0:
		return DxRightDown
	}
	return 0
}

// IsDiagonal reports whether a direction moves on both axes.
func IsDiagonal(dir int) bool {
	switch dir {
	case DxLeftUp, DxLeftDown, DxRightUp, DxRightDown:
		return true
	}
	return false
}

// SquareOff returns the nearest cardinal direction for a diagonal facing.
// Acts and skills only play on cardinal facings.
func SquareOff(dir int) int {
	switch dir {
	case DxLeftUp, DxRightUp:
		return DxUp
	case DxLeftDown, DxRightDown:
		return DxDown
	}
	return dir
}

// WalkStatus returns the walk band base and frame count for a direction.
func WalkStatus(dir int) (base, frames int) {
	switch dir {
	case DxUp:
		return StatusWalkUp, WalkFrames
	case DxDown:
		return StatusWalkDown, WalkFrames
	case DxLeft:
		return StatusWalkLeft, WalkFrames
	case DxRight:
		return StatusWalkRight, WalkFrames
	case DxLeftUp:
		return StatusWalkLeftUp, DiagWalkFrames
	case DxLeftDown:
		return StatusWalkLeftDown, DiagWalkFrames
	case DxRightUp:
		return StatusWalkRightUp, DiagWalkFrames
	case DxRightDown:
		return StatusWalkRightDown, DiagWalkFrames
	}
	return 0, 0
}

// ActStatus returns the act band base for a cardinal facing.
func ActStatus(dir int) int {
	switch dir {
	case DxUp:
		return StatusActUp
	case DxDown:
		return StatusActDown
	case DxLeft:
		return StatusActLeft
	case DxRight:
		return StatusActRight
	}
	return 0
}

// BaseStatus coarsens a status value to the start of its band.
func BaseStatus(status int) int {
	switch {
	case status <= StatusIdleMax:
		return 0
	case status < StatusWalkDown:
		return StatusWalkUp
	case status < StatusWalkLeft:
		return StatusWalkDown
	case status < StatusWalkRight:
		return StatusWalkLeft
	case status < StatusWalkLeftUp:
		return StatusWalkRight
	case status < StatusWalkLeftDown:
		return StatusWalkLeftUp
	case status < StatusWalkRightUp:
		return StatusWalkLeftDown
	case status < StatusWalkRightDown:
		return StatusWalkRightUp
	case status < StatusTurnMin:
		return StatusWalkRightDown
	case status < StatusActUp:
		return StatusTurnMin + (status-StatusTurnMin)/TurnFrames*TurnFrames
	case status < StatusActDown:
		return StatusActUp
	case status < StatusActLeft:
		return StatusActDown
	case status < StatusActRight:
		return StatusActLeft
	default:
		return StatusActRight
	}
}

// BandFrames returns how many frames the band starting at base plays.
func BandFrames(base int) int {
	switch {
	case base == 0:
		return 0
	case base >= StatusWalkLeftUp && base < StatusTurnMin:
		return DiagWalkFrames
	case base >= StatusTurnMin && base <= StatusTurnMax:
		return TurnFrames
	default:
		return WalkFrames // cardinal walks and acts both run 8 frames
	}
}

func sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}

package world

// GroundDecay is how long a dropped item lies around before it rots
// away, in ticks.
const GroundDecay = Ticks * 60 * 5

// AgeGroundItems counts down the decay timer of every item lying on
// open ground and frees the expired ones. Items on tiles flagged
// MfNoExpire, and items flagged IfNoExpire themselves, last forever.
// Returns how many items expired.
func (s *State) AgeGroundItems() int {
	removed := 0
	for in := 1; in < MaxItems; in++ {
		it := &s.items[in]
		if !it.Used || it.Carried != 0 {
			continue
		}
		if it.Flags&IfNoExpire != 0 {
			continue
		}
		t := s.Map.Tile(it.X, it.Y)
		if t == nil || t.Flags&MfNoExpire != 0 {
			continue
		}
		it.Decay--
		if it.Decay > 0 {
			continue
		}
		if t.It == in {
			t.It = 0
		}
		s.FreeItem(in)
		removed++
	}
	return removed
}

package event

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEmitDeliversNextSwap(t *testing.T) {
	b := NewBus()
	var got []CharMessage
	Subscribe(b, func(ev CharMessage) { got = append(got, ev) })

	Emit(b, CharMessage{Cn: 1, Text: "hello"})
	b.Dispatch()
	assert.Empty(t, got, "events wait behind the buffer swap")

	b.Swap()
	b.Dispatch()
	assert.Len(t, got, 1)
	assert.Equal(t, "hello", got[0].Text)
}

func TestSwapClearsDelivered(t *testing.T) {
	b := NewBus()
	n := 0
	Subscribe(b, func(Effect) { n++ })

	Emit(b, Effect{FX: 1})
	b.Swap()
	b.Dispatch()
	b.Swap()
	b.Dispatch()
	assert.Equal(t, 1, n, "an event is delivered exactly once")
}

func TestTypesAreIndependent(t *testing.T) {
	b := NewBus()
	var sounds, shouts int
	Subscribe(b, func(Sound) { sounds++ })
	Subscribe(b, func(Shout) { shouts++ })

	Emit(b, Sound{Nr: 1})
	Emit(b, Sound{Nr: 2})
	Emit(b, Shout{Cn: 1})
	b.Swap()
	b.Dispatch()
	assert.Equal(t, 2, sounds)
	assert.Equal(t, 1, shouts)
}

func TestDrain(t *testing.T) {
	b := NewBus()
	Emit(b, Fight{Type: 3, Dam: 7})
	b.Swap()
	Emit(b, Fight{Type: 4, Dam: 9})

	got := Drain[Fight](b)
	assert.Len(t, got, 2, "both buffers drain")
	assert.Empty(t, Drain[Fight](b))
}

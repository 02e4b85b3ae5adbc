package system

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type recordingSystem struct {
	phase Phase
	name  string
	log   *[]string
}

func (s *recordingSystem) Phase() Phase { return s.phase }

func (s *recordingSystem) Update(time.Duration) {
	*s.log = append(*s.log, s.name)
}

func TestRunnerOrdersByPhase(t *testing.T) {
	var log []string
	r := NewRunner()
	r.Register(&recordingSystem{phase: PhaseCleanup, name: "cleanup", log: &log})
	r.Register(&recordingSystem{phase: PhaseEvents, name: "events", log: &log})
	r.Register(&recordingSystem{phase: PhaseDriver, name: "driver", log: &log})

	r.Tick(0)
	assert.Equal(t, []string{"events", "driver", "cleanup"}, log)
}

func TestRunnerStableWithinPhase(t *testing.T) {
	var log []string
	r := NewRunner()
	r.Register(&recordingSystem{phase: PhaseDriver, name: "first", log: &log})
	r.Register(&recordingSystem{phase: PhaseDriver, name: "second", log: &log})

	r.Tick(0)
	r.Tick(0)
	assert.Equal(t, []string{"first", "second", "first", "second"}, log)
}

func TestRunnerLateRegistration(t *testing.T) {
	var log []string
	r := NewRunner()
	r.Register(&recordingSystem{phase: PhaseDriver, name: "driver", log: &log})
	r.Tick(0)
	r.Register(&recordingSystem{phase: PhaseEvents, name: "events", log: &log})
	log = log[:0]

	r.Tick(0)
	assert.Equal(t, []string{"events", "driver"}, log)
}

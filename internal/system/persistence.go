package system

import (
	"context"
	"time"

	"go.uber.org/zap"

	coresys "github.com/mercia/server/internal/core/system"
	"github.com/mercia/server/internal/persist"
	"github.com/mercia/server/internal/world"
)

// PersistenceSystem periodically writes every player's character sheet
// back to the database. Phase 4. NPCs come from the spawn tables and
// are never saved.
type PersistenceSystem struct {
	game      *Game
	charRepo  *persist.CharacterRepo
	log       *zap.Logger
	tickCount int
	interval  int // auto-save every N ticks
}

func NewPersistenceSystem(g *Game, charRepo *persist.CharacterRepo, log *zap.Logger, intervalTicks int) *PersistenceSystem {
	return &PersistenceSystem{
		game:     g,
		charRepo: charRepo,
		log:      log,
		interval: intervalTicks,
	}
}

func (s *PersistenceSystem) Phase() coresys.Phase { return coresys.PhasePersist }

func (s *PersistenceSystem) Update(_ time.Duration) {
	s.tickCount++
	if s.tickCount < s.interval {
		return
	}
	s.tickCount = 0
	s.SaveAllPlayers()
}

// SaveAllPlayers persists every player immediately. Also called on
// graceful shutdown.
func (s *PersistenceSystem) SaveAllPlayers() {
	if s.charRepo == nil {
		return
	}
	count := 0
	s.game.S.EachChar(func(cn int, ch *world.Character) {
		if !ch.IsPlayer() {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		row := persist.NewSheetRow(ch)
		if err := s.charRepo.Save(ctx, row); err != nil {
			s.log.Error("save character sheet",
				zap.String("name", ch.Name), zap.Error(err))
			return
		}
		count++
	})
	if count > 0 {
		s.log.Debug("auto-saved players", zap.Int("count", count))
	}
}

package system

import (
	"time"

	"go.uber.org/zap"

	"github.com/arenaworks/server/internal/core/event"
	coresys "github.com/arenaworks/server/internal/core/system"
)

// EventDispatchSystem delivers events emitted since the previous tick.
// Phase 0 (Input), registered first.
type EventDispatchSystem struct {
	bus *event.Bus
}

func NewEventDispatchSystem(bus *event.Bus) *EventDispatchSystem {
	return &EventDispatchSystem{bus: bus}
}

func (s *EventDispatchSystem) Phase() coresys.Phase { return coresys.PhaseInput }

func (s *EventDispatchSystem) Update(_ time.Duration) {
	s.bus.SwapBuffers()
	s.bus.DispatchAll()
}

// SubscribeLogging logs gameplay events as they are dispatched.
func SubscribeLogging(bus *event.Bus, log *zap.Logger) {
	event.Subscribe(bus, func(ev event.EnemySpawned) {
		log.Info("enemy spawned", zap.Uint64("enemy", ev.EnemyID), zap.String("name", ev.Name), zap.Int("health", ev.Health))
	})
	event.Subscribe(bus, func(ev event.EnemyDamaged) {
		log.Info("player hit enemy",
			zap.Uint64("player", ev.PlayerID),
			zap.Uint64("enemy", ev.EnemyID),
			zap.Int("damage", ev.Damage),
			zap.Int("health", ev.Health),
		)
	})
	event.Subscribe(bus, func(ev event.EnemyDefeated) {
		log.Info("enemy defeated", zap.Uint64("enemy", ev.EnemyID), zap.Uint64("player", ev.PlayerID))
	})
	event.Subscribe(bus, func(ev event.ChatPosted) {
		log.Debug("chat", zap.Uint64("player", ev.PlayerID), zap.String("message", ev.Message))
	})
}

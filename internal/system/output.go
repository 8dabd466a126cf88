package system

import (
	"time"

	coresys "github.com/arenaworks/server/internal/core/system"
	"github.com/arenaworks/server/internal/handler"
)

// OutputSystem broadcasts the roster when it changed since the last send.
// Phase 4 (Output).
type OutputSystem struct {
	broadcaster *handler.StateBroadcaster
}

func NewOutputSystem(b *handler.StateBroadcaster) *OutputSystem {
	return &OutputSystem{broadcaster: b}
}

func (s *OutputSystem) Phase() coresys.Phase { return coresys.PhaseOutput }

func (s *OutputSystem) Update(_ time.Duration) {
	s.broadcaster.PublishIfChanged()
}

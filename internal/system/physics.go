package system

import (
	"time"

	coresys "github.com/arenaworks/server/internal/core/system"
	"github.com/arenaworks/server/internal/physics"
)

// PhysicsSystem advances the physics world by one fixed step per tick.
// Phase 1 (Step).
type PhysicsSystem struct {
	physics *physics.Adapter
}

func NewPhysicsSystem(p *physics.Adapter) *PhysicsSystem {
	return &PhysicsSystem{physics: p}
}

func (s *PhysicsSystem) Phase() coresys.Phase { return coresys.PhaseStep }

func (s *PhysicsSystem) Update(_ time.Duration) {
	s.physics.Step()
}

package system

import (
	"time"

	coresys "github.com/arenaworks/server/internal/core/system"
	"github.com/arenaworks/server/internal/physics"
	"github.com/arenaworks/server/internal/world"
)

// TransformSyncSystem copies body poses and velocities into the roster.
// Phase 3 (Sync).
type TransformSyncSystem struct {
	world   *world.State
	physics *physics.Adapter
}

func NewTransformSyncSystem(ws *world.State, p *physics.Adapter) *TransformSyncSystem {
	return &TransformSyncSystem{world: ws, physics: p}
}

func (s *TransformSyncSystem) Phase() coresys.Phase { return coresys.PhaseSync }

func (s *TransformSyncSystem) Update(_ time.Duration) {
	for _, p := range s.world.AllPlayers() {
		if st, ok := s.physics.BodyState(p.ID); ok {
			p.Position, p.Rotation, p.Velocity = st.Position, st.Rotation, st.Velocity
		}
	}
	for _, e := range s.world.AllEnemies() {
		if st, ok := s.physics.BodyState(e.ID); ok {
			e.Position, e.Rotation, e.Velocity = st.Position, st.Rotation, st.Velocity
		}
	}
}

// ActionExpirySystem clears actions whose display time has run out.
// Phase 3 (Sync), after transforms.
type ActionExpirySystem struct {
	world *world.State
	now   func() time.Time
}

func NewActionExpirySystem(ws *world.State, now func() time.Time) *ActionExpirySystem {
	if now == nil {
		now = time.Now
	}
	return &ActionExpirySystem{world: ws, now: now}
}

func (s *ActionExpirySystem) Phase() coresys.Phase { return coresys.PhaseSync }

func (s *ActionExpirySystem) Update(_ time.Duration) {
	s.world.ExpireActions(s.now())
}

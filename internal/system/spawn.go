package system

import (
	"time"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/arenaworks/server/internal/core/event"
	coresys "github.com/arenaworks/server/internal/core/system"
	"github.com/arenaworks/server/internal/data"
	"github.com/arenaworks/server/internal/physics"
	"github.com/arenaworks/server/internal/world"
)

type scheduledSpawn struct {
	entry data.SpawnEntry
	due   time.Time
	done  bool
}

// SpawnSystem creates enemies when their scheduled time arrives.
// Phase 0 (Input).
type SpawnSystem struct {
	world    *world.State
	physics  *physics.Adapter
	bus      *event.Bus
	now      func() time.Time
	schedule []scheduledSpawn
	anchored bool
}

// NewSpawnSystem schedules every entry relative to start. A zero start
// anchors the schedule at the first Update, i.e. the loop's first tick.
func NewSpawnSystem(ws *world.State, p *physics.Adapter, bus *event.Bus, table *data.SpawnTable, start time.Time, now func() time.Time) *SpawnSystem {
	if now == nil {
		now = time.Now
	}
	s := &SpawnSystem{world: ws, physics: p, bus: bus, now: now}
	for _, e := range table.Entries() {
		s.schedule = append(s.schedule, scheduledSpawn{entry: e})
	}
	if !start.IsZero() {
		s.anchor(start)
	}
	return s
}

func (s *SpawnSystem) anchor(start time.Time) {
	for i := range s.schedule {
		s.schedule[i].due = start.Add(s.schedule[i].entry.Delay)
	}
	s.anchored = true
}

func (s *SpawnSystem) Phase() coresys.Phase { return coresys.PhaseInput }

func (s *SpawnSystem) Update(_ time.Duration) {
	now := s.now()
	if !s.anchored {
		s.anchor(now)
	}
	for i := range s.schedule {
		sc := &s.schedule[i]
		if sc.done || now.Before(sc.due) {
			continue
		}
		s.Spawn(sc.entry)
		if sc.entry.Interval > 0 {
			// one spawn per tick at most; a stalled loop does not burst
			for !sc.due.After(now) {
				sc.due = sc.due.Add(sc.entry.Interval)
			}
		} else {
			sc.done = true
		}
	}
}

// Spawn creates a kinematic sensor body for entry and registers the enemy.
func (s *SpawnSystem) Spawn(entry data.SpawnEntry) *world.Enemy {
	rot := mgl64.QuatIdent()
	if r := entry.Rotation; len(r) == 4 {
		rot = mgl64.Quat{W: r[3], V: mgl64.Vec3{r[0], r[1], r[2]}}
	}
	h := s.physics.CreateBody(physics.Kinematic,
		physics.Shape{HalfExtents: toVec3(entry.HalfExtents), Sensor: true, ReportContacts: true},
		physics.Transform{Position: toVec3(entry.Position), Rotation: rot},
	)
	st, _ := s.physics.BodyState(h)
	e := &world.Enemy{
		ID:       h,
		Name:     entry.Name,
		Position: st.Position,
		Rotation: st.Rotation,
		Velocity: st.Velocity,
		Health:   entry.Health,
	}
	s.world.AddEnemy(e)
	event.Emit(s.bus, event.EnemySpawned{EnemyID: uint64(h), Name: entry.Name, Health: entry.Health})
	return e
}

// Pending returns how many schedule entries may still spawn.
func (s *SpawnSystem) Pending() int {
	n := 0
	for _, sc := range s.schedule {
		if !sc.done {
			n++
		}
	}
	return n
}

func toVec3(v []float64) mgl64.Vec3 {
	if len(v) != 3 {
		return mgl64.Vec3{}
	}
	return mgl64.Vec3{v[0], v[1], v[2]}
}

package system

import (
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/arenaworks/server/internal/core/event"
	"github.com/arenaworks/server/internal/data"
	"github.com/arenaworks/server/internal/persist"
	"github.com/arenaworks/server/internal/physics"
	"github.com/arenaworks/server/internal/world"
)

type env struct {
	world   *world.State
	physics *physics.Adapter
	bus     *event.Bus
}

func newEnv(t *testing.T) *env {
	t.Helper()
	p, err := physics.NewAdapter(mgl64.Vec3{}, 1.0/60)
	require.NoError(t, err)
	return &env{world: world.NewState(0), physics: p, bus: event.NewBus()}
}

func (e *env) addPlayer(at mgl64.Vec3) *world.Player {
	h := e.physics.CreateBody(physics.Dynamic, physics.Shape{HalfExtents: mgl64.Vec3{1, 1, 1}},
		physics.Transform{Position: at, Rotation: mgl64.QuatIdent()})
	p := &world.Player{ID: h, Position: at}
	e.world.AddPlayer(p)
	return p
}

func (e *env) addEnemy(t *testing.T, health int) *world.Enemy {
	t.Helper()
	entry := data.DefaultSpawnTable().Entries()[0]
	entry.Health = health
	sp := NewSpawnSystem(e.world, e.physics, e.bus, data.DefaultSpawnTable(), time.Now(), nil)
	return sp.Spawn(entry)
}

func emittedOf[T any](bus *event.Bus) []T {
	var got []T
	event.Subscribe(bus, func(ev T) { got = append(got, ev) })
	bus.SwapBuffers()
	bus.DispatchAll()
	return got
}

func started(a, b physics.Handle) physics.CollisionEvent {
	return physics.CollisionEvent{A: a, B: b, Started: true}
}

// --- combat ---

func TestContactDamagesEnemyInEitherOrder(t *testing.T) {
	e := newEnv(t)
	p := e.addPlayer(mgl64.Vec3{100, 0, 0})
	en := e.addEnemy(t, 100)
	r := NewCombatResolver(e.world, e.physics, e.bus, FixedDamage(10), zap.NewNop())

	assert.Equal(t, 2, r.Resolve([]physics.CollisionEvent{started(p.ID, en.ID), started(en.ID, p.ID)}))
	assert.Equal(t, 80, en.Health)

	dmg := emittedOf[event.EnemyDamaged](e.bus)
	require.Len(t, dmg, 2)
	assert.Equal(t, 90, dmg[0].Health)
	assert.Equal(t, 80, dmg[1].Health)
}

func TestStopAndNonCombatEventsIgnored(t *testing.T) {
	e := newEnv(t)
	p1 := e.addPlayer(mgl64.Vec3{100, 0, 0})
	p2 := e.addPlayer(mgl64.Vec3{200, 0, 0})
	en := e.addEnemy(t, 100)
	r := NewCombatResolver(e.world, e.physics, e.bus, FixedDamage(10), zap.NewNop())

	hits := r.Resolve([]physics.CollisionEvent{
		{A: p1.ID, B: en.ID, Started: false},
		started(p1.ID, p2.ID),
		started(en.ID, en.ID),
		started(physics.Handle(999), en.ID),
	})
	assert.Zero(t, hits)
	assert.Equal(t, 100, en.Health)
}

func TestEnemyDiesOnTenthHit(t *testing.T) {
	e := newEnv(t)
	p := e.addPlayer(mgl64.Vec3{100, 0, 0})
	en := e.addEnemy(t, 100)
	r := NewCombatResolver(e.world, e.physics, e.bus, FixedDamage(10), zap.NewNop())

	for i := 0; i < 9; i++ {
		r.Resolve([]physics.CollisionEvent{started(p.ID, en.ID)})
	}
	require.NotNil(t, e.world.GetEnemy(en.ID))
	assert.Equal(t, 10, en.Health)

	r.Resolve([]physics.CollisionEvent{started(p.ID, en.ID)})
	assert.Nil(t, e.world.GetEnemy(en.ID))
	_, ok := e.physics.BodyState(en.ID)
	assert.False(t, ok)

	defeated := emittedOf[event.EnemyDefeated](e.bus)
	require.Len(t, defeated, 1)
	assert.Equal(t, uint64(en.ID), defeated[0].EnemyID)
}

func TestEventsAfterDeathInSameDrainIgnored(t *testing.T) {
	e := newEnv(t)
	p := e.addPlayer(mgl64.Vec3{100, 0, 0})
	en := e.addEnemy(t, 10)
	r := NewCombatResolver(e.world, e.physics, e.bus, FixedDamage(10), zap.NewNop())

	hits := r.Resolve([]physics.CollisionEvent{started(p.ID, en.ID), started(p.ID, en.ID)})
	assert.Equal(t, 1, hits)
	assert.Equal(t, 0, en.Health)
	assert.Len(t, emittedOf[event.EnemyDefeated](e.bus), 1)
}

type recordingDamager struct{ speeds []float64 }

func (d *recordingDamager) ContactDamage(_ *world.Player, _ *world.Enemy, speed float64) int {
	d.speeds = append(d.speeds, speed)
	return 25
}

func TestDamagerSeesPlayerSpeed(t *testing.T) {
	e := newEnv(t)
	p := e.addPlayer(mgl64.Vec3{100, 0, 0})
	e.physics.SetVelocity(p.ID, mgl64.Vec3{3, 4, 0})
	en := e.addEnemy(t, 100)
	d := &recordingDamager{}
	r := NewCombatResolver(e.world, e.physics, e.bus, d, zap.NewNop())

	r.Resolve([]physics.CollisionEvent{started(p.ID, en.ID)})
	require.Len(t, d.speeds, 1)
	assert.InDelta(t, 5.0, d.speeds[0], 1e-9)
	assert.Equal(t, 75, en.Health)
}

func TestCombatSystemResolvesStepContacts(t *testing.T) {
	e := newEnv(t)
	en := e.addEnemy(t, 100) // cube at (0,10,0), half extents 5
	p := e.addPlayer(mgl64.Vec3{0, 6, 0})

	NewPhysicsSystem(e.physics).Update(0)
	NewCombatSystem(e.physics, NewCombatResolver(e.world, e.physics, e.bus, FixedDamage(10), zap.NewNop())).Update(0)
	assert.Equal(t, 90, en.Health)

	// staying inside does not hit again
	NewPhysicsSystem(e.physics).Update(0)
	NewCombatSystem(e.physics, NewCombatResolver(e.world, e.physics, e.bus, FixedDamage(10), zap.NewNop())).Update(0)
	assert.Equal(t, 90, en.Health)
	assert.NotNil(t, e.world.GetPlayer(p.ID))
}

// --- sync ---

func TestTransformSyncCopiesBodyState(t *testing.T) {
	e := newEnv(t)
	p := e.addPlayer(mgl64.Vec3{})
	e.physics.SetVelocity(p.ID, mgl64.Vec3{60, 0, 0})

	NewPhysicsSystem(e.physics).Update(0)
	NewTransformSyncSystem(e.world, e.physics).Update(0)
	assert.InDelta(t, 1.0, p.Position.X(), 1e-9)
	assert.Equal(t, mgl64.Vec3{60, 0, 0}, p.Velocity)
}

func TestActionExpirySystem(t *testing.T) {
	e := newEnv(t)
	p := e.addPlayer(mgl64.Vec3{})
	now := time.Unix(50, 0)
	e.world.SetAction(p.ID, "wave", now.Add(time.Second))

	sys := NewActionExpirySystem(e.world, func() time.Time { return now })
	sys.Update(0)
	assert.Equal(t, "wave", p.CurrentAction)
	now = now.Add(time.Second)
	sys.Update(0)
	assert.Empty(t, p.CurrentAction)
}

// --- spawning ---

func TestDefaultScheduleSpawnsOnceAfterTenSeconds(t *testing.T) {
	e := newEnv(t)
	start := time.Unix(0, 0)
	now := start
	sp := NewSpawnSystem(e.world, e.physics, e.bus, data.DefaultSpawnTable(), start, func() time.Time { return now })

	now = start.Add(9999 * time.Millisecond)
	sp.Update(0)
	assert.Zero(t, e.world.EnemyCount())

	now = start.Add(10 * time.Second)
	sp.Update(0)
	require.Equal(t, 1, e.world.EnemyCount())
	en := e.world.AllEnemies()[0]
	assert.Equal(t, 100, en.Health)
	assert.Empty(t, en.CurrentAction)
	assert.Equal(t, mgl64.Vec3{0, 10, 0}, en.Position)

	now = start.Add(time.Hour)
	sp.Update(0)
	assert.Equal(t, 1, e.world.EnemyCount())
	assert.Zero(t, sp.Pending())

	spawned := emittedOf[event.EnemySpawned](e.bus)
	require.Len(t, spawned, 1)
	assert.Equal(t, "cube", spawned[0].Name)
}

func TestSpawnedEnemyDoesNotMove(t *testing.T) {
	e := newEnv(t)
	en := e.addEnemy(t, 100)
	for i := 0; i < 10; i++ {
		e.physics.Step()
	}
	st, ok := e.physics.BodyState(en.ID)
	require.True(t, ok)
	assert.Equal(t, mgl64.Vec3{0, 10, 0}, st.Position)
}

// --- archive ---

type fakeSink struct{ batches [][]persist.ChatRow }

func (s *fakeSink) Enqueue(rows []persist.ChatRow) bool {
	s.batches = append(s.batches, rows)
	return true
}

func TestChatArchiveFlushesEveryInterval(t *testing.T) {
	bus := event.NewBus()
	sink := &fakeSink{}
	sys := NewChatArchiveSystem(bus, sink, 3)

	event.Emit(bus, event.ChatPosted{PlayerID: 1, Message: "a", SentAt: time.Unix(1, 0)})
	event.Emit(bus, event.ChatPosted{PlayerID: 2, Message: "b", SentAt: time.Unix(2, 0)})
	bus.SwapBuffers()
	bus.DispatchAll()

	sys.Update(0)
	sys.Update(0)
	assert.Empty(t, sink.batches)
	sys.Update(0)
	require.Len(t, sink.batches, 1)
	require.Len(t, sink.batches[0], 2)
	assert.Equal(t, "a", sink.batches[0][0].Message)
	assert.NotEqual(t, sink.batches[0][0].ID, sink.batches[0][1].ID)

	sys.Update(0)
	sys.Update(0)
	sys.Update(0)
	assert.Len(t, sink.batches, 1, "nothing new to flush")
}

func TestZeroStartAnchorsScheduleAtFirstTick(t *testing.T) {
	e := newEnv(t)
	firstTick := time.Date(2024, 3, 1, 12, 0, 30, 900_000_000, time.UTC)
	now := firstTick
	sp := NewSpawnSystem(e.world, e.physics, e.bus, data.DefaultSpawnTable(), time.Time{}, func() time.Time { return now })

	sp.Update(0)
	assert.Zero(t, e.world.EnemyCount())

	now = firstTick.Add(9999 * time.Millisecond)
	sp.Update(0)
	assert.Zero(t, e.world.EnemyCount())

	now = firstTick.Add(10 * time.Second)
	sp.Update(0)
	assert.Equal(t, 1, e.world.EnemyCount())
}

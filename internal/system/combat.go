package system

import (
	"time"

	"go.uber.org/zap"

	"github.com/arenaworks/server/internal/core/event"
	coresys "github.com/arenaworks/server/internal/core/system"
	"github.com/arenaworks/server/internal/physics"
	"github.com/arenaworks/server/internal/scripting"
	"github.com/arenaworks/server/internal/world"
)

// ContactDamager decides how much health an enemy loses when a player starts
// touching it.
type ContactDamager interface {
	ContactDamage(p *world.Player, e *world.Enemy, playerSpeed float64) int
}

// FixedDamage deals the same damage on every contact.
type FixedDamage int

func (d FixedDamage) ContactDamage(*world.Player, *world.Enemy, float64) int { return int(d) }

// ScriptedDamage asks the Lua engine, with Base as the fallback.
type ScriptedDamage struct {
	Engine *scripting.Engine
	Base   int
}

func (d ScriptedDamage) ContactDamage(_ *world.Player, e *world.Enemy, playerSpeed float64) int {
	return d.Engine.CalcContactDamage(scripting.ContactContext{
		BaseDamage:  d.Base,
		EnemyName:   e.Name,
		EnemyHealth: e.Health,
		PlayerSpeed: playerSpeed,
	})
}

// CombatResolver turns contact-begin events between a player and an enemy
// into damage, removing enemies whose health runs out.
type CombatResolver struct {
	world   *world.State
	physics *physics.Adapter
	bus     *event.Bus
	damage  ContactDamager
	log     *zap.Logger
}

func NewCombatResolver(ws *world.State, p *physics.Adapter, bus *event.Bus, damage ContactDamager, log *zap.Logger) *CombatResolver {
	return &CombatResolver{world: ws, physics: p, bus: bus, damage: damage, log: log}
}

// Resolve applies events in order and returns the number of hits landed.
// A defeated enemy is gone before the next event is looked at, so later
// events naming it are ignored.
func (r *CombatResolver) Resolve(events []physics.CollisionEvent) int {
	hits := 0
	for _, ev := range events {
		if !ev.Started {
			continue
		}
		player, enemy := r.pair(ev.A, ev.B)
		if player == nil || enemy == nil {
			continue
		}

		var speed float64
		if st, ok := r.physics.BodyState(player.ID); ok {
			speed = st.Velocity.Len()
		}
		dmg := r.damage.ContactDamage(player, enemy, speed)
		enemy.Health -= dmg
		hits++

		event.Emit(r.bus, event.EnemyDamaged{
			EnemyID:  uint64(enemy.ID),
			PlayerID: uint64(player.ID),
			Damage:   dmg,
			Health:   enemy.Health,
		})

		if enemy.Health <= 0 {
			r.physics.RemoveBody(enemy.ID)
			r.world.RemoveEnemy(enemy.ID)
			event.Emit(r.bus, event.EnemyDefeated{EnemyID: uint64(enemy.ID), PlayerID: uint64(player.ID)})
		}
	}
	return hits
}

// pair returns the player and enemy of a contact in either handle order, or
// nils unless exactly one side is each.
func (r *CombatResolver) pair(a, b physics.Handle) (*world.Player, *world.Enemy) {
	if p, e := r.world.GetPlayer(a), r.world.GetEnemy(b); p != nil && e != nil {
		return p, e
	}
	if p, e := r.world.GetPlayer(b), r.world.GetEnemy(a); p != nil && e != nil {
		return p, e
	}
	return nil, nil
}

// CombatSystem drains the step's collision events into the resolver.
// Phase 2 (Resolve).
type CombatSystem struct {
	physics  *physics.Adapter
	resolver *CombatResolver
}

func NewCombatSystem(p *physics.Adapter, resolver *CombatResolver) *CombatSystem {
	return &CombatSystem{physics: p, resolver: resolver}
}

func (s *CombatSystem) Phase() coresys.Phase { return coresys.PhaseResolve }

func (s *CombatSystem) Update(_ time.Duration) {
	s.resolver.Resolve(s.physics.DrainCollisionEvents())
}

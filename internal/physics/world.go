package physics

import (
	"errors"
	"math"
	"sort"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/arenaworks/server/internal/core/arena"
)

var ErrInvalidTimestep = errors.New("physics: timestep must be positive and finite")

type pairKey struct {
	a, b Handle // a < b
}

func makePair(a, b Handle) pairKey {
	if b < a {
		a, b = b, a
	}
	return pairKey{a: a, b: b}
}

// World integrates rigid bodies with a fixed timestep and tracks contacts
// between their colliders. It is not safe for concurrent use.
type World struct {
	gravity  mgl64.Vec3
	timestep float64
	handles  *arena.Pool
	bodies   *arena.Store[RigidBody]
	// contacts maps every touching pair to whether it reports events.
	contacts map[pairKey]bool
}

func NewWorld(gravity mgl64.Vec3, timestep float64) (*World, error) {
	if timestep <= 0 || math.IsInf(timestep, 0) || math.IsNaN(timestep) {
		return nil, ErrInvalidTimestep
	}
	for _, g := range gravity {
		if math.IsInf(g, 0) || math.IsNaN(g) {
			return nil, errors.New("physics: gravity must be finite")
		}
	}
	return &World{
		gravity:  gravity,
		timestep: timestep,
		handles:  arena.NewPool(),
		bodies:   arena.NewStore[RigidBody](),
		contacts: make(map[pairKey]bool),
	}, nil
}

func (w *World) Timestep() float64 { return w.timestep }

func (w *World) CreateRigidBody(desc *RigidBodyDesc) *RigidBody {
	b := &RigidBody{
		handle:      w.handles.Acquire(),
		kind:        desc.kind,
		translation: desc.translation,
		rotation:    desc.rotation,
		linvel:      desc.linvel,
	}
	w.bodies.Set(b.handle, b)
	return b
}

func (w *World) CreateCollider(desc *ColliderDesc, body *RigidBody) *Collider {
	c := &Collider{
		body:        body,
		halfExtents: desc.halfExtents,
		sensor:      desc.sensor,
		events:      desc.events,
	}
	body.colliders = append(body.colliders, c)
	return c
}

// GetRigidBody returns nil, false for handles that were removed.
func (w *World) GetRigidBody(h Handle) (*RigidBody, bool) {
	if !w.handles.Alive(h) {
		return nil, false
	}
	return w.bodies.Get(h)
}

// RemoveRigidBody drops the body, its colliders and any contact it was part of.
// Removed contacts do not produce stop events.
func (w *World) RemoveRigidBody(b *RigidBody) {
	if b == nil {
		return
	}
	if _, ok := w.bodies.Remove(b.handle); !ok {
		return
	}
	w.handles.Release(b.handle)
	for key := range w.contacts {
		if key.a == b.handle || key.b == b.handle {
			delete(w.contacts, key)
		}
	}
}

func (w *World) BodyCount() int { return w.bodies.Len() }

// Step advances the world by one timestep and pushes contact transitions
// for event-enabled colliders into q.
func (w *World) Step(q *EventQueue) {
	dt := w.timestep
	w.bodies.Each(func(_ Handle, b *RigidBody) {
		if b.kind == Dynamic {
			b.linvel = b.linvel.Add(w.gravity.Mul(dt))
		}
		b.translation = b.translation.Add(b.linvel.Mul(dt))
	})

	handles := w.bodies.Handles()
	current := make(map[pairKey]bool, len(w.contacts))
	for i := 0; i < len(handles); i++ {
		bi, _ := w.bodies.Get(handles[i])
		for j := i + 1; j < len(handles); j++ {
			bj, _ := w.bodies.Get(handles[j])
			if bi.kind != Dynamic && bj.kind != Dynamic {
				continue
			}
			w.collide(bi, bj, current, q)
		}
	}

	var ended []pairKey
	for key, reports := range w.contacts {
		if _, still := current[key]; !still && reports {
			ended = append(ended, key)
		}
	}
	sort.Slice(ended, func(i, j int) bool {
		if ended[i].a != ended[j].a {
			return ended[i].a < ended[j].a
		}
		return ended[i].b < ended[j].b
	})
	for _, key := range ended {
		q.push(CollisionEvent{A: key.a, B: key.b, Started: false})
	}
	w.contacts = current
}

func (w *World) collide(a, b *RigidBody, current map[pairKey]bool, q *EventQueue) {
	key := makePair(a.handle, b.handle)
	for _, ca := range a.colliders {
		for _, cb := range b.colliders {
			aMin, aMax := ca.bounds()
			bMin, bMax := cb.bounds()
			normal, depth, ok := overlap(aMin, aMax, bMin, bMax)
			if !ok {
				continue
			}
			reports := (ca.events|cb.events)&ActiveEventsCollision != 0
			if _, seen := current[key]; !seen {
				current[key] = reports
				if _, was := w.contacts[key]; !was && reports {
					q.push(CollisionEvent{A: a.handle, B: b.handle, Started: true})
				}
			}
			if !ca.IsSensor() && !cb.IsSensor() {
				separate(a, b, normal, depth)
			}
		}
	}
}

// separate pushes dynamic bodies out of a solid contact and removes the
// velocity component driving them into each other.
func separate(a, b *RigidBody, normal mgl64.Vec3, depth float64) {
	aDyn, bDyn := a.kind == Dynamic, b.kind == Dynamic
	switch {
	case aDyn && bDyn:
		a.translation = a.translation.Sub(normal.Mul(depth / 2))
		b.translation = b.translation.Add(normal.Mul(depth / 2))
	case aDyn:
		a.translation = a.translation.Sub(normal.Mul(depth))
	case bDyn:
		b.translation = b.translation.Add(normal.Mul(depth))
	}
	if aDyn {
		if v := a.linvel.Dot(normal); v > 0 {
			a.linvel = a.linvel.Sub(normal.Mul(v))
		}
	}
	if bDyn {
		if v := b.linvel.Dot(normal); v < 0 {
			b.linvel = b.linvel.Sub(normal.Mul(v))
		}
	}
}

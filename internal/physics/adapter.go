package physics

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
)

// Shape is the collision volume of a body created through the Adapter.
type Shape struct {
	HalfExtents mgl64.Vec3
	Sensor      bool
	// ReportContacts enables collision events for pairs involving this shape.
	ReportContacts bool
}

// Transform is a body pose.
type Transform struct {
	Position mgl64.Vec3
	Rotation mgl64.Quat
}

// BodyState is the pose and velocity of a body after the latest step.
type BodyState struct {
	Position mgl64.Vec3
	Rotation mgl64.Quat
	Velocity mgl64.Vec3
}

// Adapter is the narrow surface the game loop uses to drive the physics world:
// body lifecycle, instantaneous velocity/rotation changes, one fixed step per
// tick and draining of contact events.
type Adapter struct {
	world *World
	queue *EventQueue
	steps uint64
}

func NewAdapter(gravity mgl64.Vec3, timestep float64) (*Adapter, error) {
	w, err := NewWorld(gravity, timestep)
	if err != nil {
		return nil, fmt.Errorf("init physics world: %w", err)
	}
	return &Adapter{world: w, queue: NewEventQueue()}, nil
}

func (a *Adapter) CreateBody(kind BodyKind, shape Shape, at Transform) Handle {
	var desc *RigidBodyDesc
	if kind == Kinematic {
		desc = NewKinematicBody()
	} else {
		desc = NewDynamicBody()
	}
	desc.SetTranslation(at.Position).SetRotation(at.Rotation)
	body := a.world.CreateRigidBody(desc)

	col := Cuboid(shape.HalfExtents.X(), shape.HalfExtents.Y(), shape.HalfExtents.Z()).SetSensor(shape.Sensor)
	if shape.ReportContacts {
		col.SetActiveEvents(ActiveEventsCollision)
	}
	a.world.CreateCollider(col, body)
	return body.Handle()
}

// RemoveBody reports whether a live body was removed.
func (a *Adapter) RemoveBody(h Handle) bool {
	b, ok := a.world.GetRigidBody(h)
	if !ok {
		return false
	}
	a.world.RemoveRigidBody(b)
	return true
}

// BodyState returns false when h no longer refers to a live body.
func (a *Adapter) BodyState(h Handle) (BodyState, bool) {
	b, ok := a.world.GetRigidBody(h)
	if !ok {
		return BodyState{}, false
	}
	return BodyState{
		Position: b.Translation(),
		Rotation: b.Rotation(),
		Velocity: b.Linvel(),
	}, true
}

func (a *Adapter) SetVelocity(h Handle, v mgl64.Vec3) bool {
	b, ok := a.world.GetRigidBody(h)
	if !ok {
		return false
	}
	b.SetLinvel(v)
	return true
}

func (a *Adapter) SetRotation(h Handle, q mgl64.Quat) bool {
	b, ok := a.world.GetRigidBody(h)
	if !ok {
		return false
	}
	b.SetRotation(q)
	return true
}

// Step advances the world by exactly one fixed timestep.
func (a *Adapter) Step() {
	a.world.Step(a.queue)
	a.steps++
}

// Steps returns how many times Step has run.
func (a *Adapter) Steps() uint64 { return a.steps }

// DrainCollisionEvents returns every event queued since the previous drain.
func (a *Adapter) DrainCollisionEvents() []CollisionEvent {
	out := make([]CollisionEvent, 0, a.queue.Len())
	a.queue.DrainCollisionEvents(func(x, y Handle, started bool) {
		out = append(out, CollisionEvent{A: x, B: y, Started: started})
	})
	return out
}

func (a *Adapter) BodyCount() int { return a.world.BodyCount() }

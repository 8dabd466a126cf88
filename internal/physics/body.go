package physics

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/arenaworks/server/internal/core/arena"
)

// Handle identifies a rigid body. It doubles as the public entity id.
type Handle = arena.Handle

// BodyKind selects how the integrator treats a body.
type BodyKind int

const (
	// Dynamic bodies are affected by gravity and pushed out of solid contacts.
	Dynamic BodyKind = iota
	// Kinematic bodies move only by their own velocity and are never pushed.
	Kinematic
)

func (k BodyKind) String() string {
	switch k {
	case Dynamic:
		return "dynamic"
	case Kinematic:
		return "kinematic"
	default:
		return "unknown"
	}
}

// RigidBodyDesc describes a body before it is inserted into a World.
type RigidBodyDesc struct {
	kind        BodyKind
	translation mgl64.Vec3
	rotation    mgl64.Quat
	linvel      mgl64.Vec3
}

func NewDynamicBody() *RigidBodyDesc {
	return &RigidBodyDesc{kind: Dynamic, rotation: mgl64.QuatIdent()}
}

func NewKinematicBody() *RigidBodyDesc {
	return &RigidBodyDesc{kind: Kinematic, rotation: mgl64.QuatIdent()}
}

func (d *RigidBodyDesc) SetTranslation(v mgl64.Vec3) *RigidBodyDesc {
	d.translation = v
	return d
}

func (d *RigidBodyDesc) SetRotation(q mgl64.Quat) *RigidBodyDesc {
	d.rotation = normalizeQuat(q)
	return d
}

func (d *RigidBodyDesc) SetLinvel(v mgl64.Vec3) *RigidBodyDesc {
	d.linvel = v
	return d
}

// RigidBody is a simulated body owned by a World.
type RigidBody struct {
	handle      Handle
	kind        BodyKind
	translation mgl64.Vec3
	rotation    mgl64.Quat
	linvel      mgl64.Vec3
	colliders   []*Collider
}

func (b *RigidBody) Handle() Handle          { return b.handle }
func (b *RigidBody) Kind() BodyKind          { return b.kind }
func (b *RigidBody) Translation() mgl64.Vec3 { return b.translation }
func (b *RigidBody) Rotation() mgl64.Quat    { return b.rotation }
func (b *RigidBody) Linvel() mgl64.Vec3      { return b.linvel }

func (b *RigidBody) SetLinvel(v mgl64.Vec3)      { b.linvel = v }
func (b *RigidBody) SetRotation(q mgl64.Quat)    { b.rotation = normalizeQuat(q) }
func (b *RigidBody) SetTranslation(v mgl64.Vec3) { b.translation = v }

// normalizeQuat falls back to identity for degenerate input.
func normalizeQuat(q mgl64.Quat) mgl64.Quat {
	if q.Len() < 1e-12 {
		return mgl64.QuatIdent()
	}
	return q.Normalize()
}

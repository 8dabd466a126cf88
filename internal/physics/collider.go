package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// ActiveEvents flags which events a collider reports.
type ActiveEvents uint8

const (
	ActiveEventsNone      ActiveEvents = 0
	ActiveEventsCollision ActiveEvents = 1 << 0
)

// ColliderDesc describes a cuboid collider.
type ColliderDesc struct {
	halfExtents mgl64.Vec3
	sensor      bool
	events      ActiveEvents
}

// Cuboid describes a box with the given half extents.
func Cuboid(hx, hy, hz float64) *ColliderDesc {
	return &ColliderDesc{halfExtents: mgl64.Vec3{math.Abs(hx), math.Abs(hy), math.Abs(hz)}}
}

// SetSensor makes the collider report overlaps without pushing bodies apart.
func (d *ColliderDesc) SetSensor(sensor bool) *ColliderDesc {
	d.sensor = sensor
	return d
}

func (d *ColliderDesc) SetActiveEvents(e ActiveEvents) *ColliderDesc {
	d.events = e
	return d
}

// Collider is a cuboid attached to a body.
type Collider struct {
	body        *RigidBody
	halfExtents mgl64.Vec3
	sensor      bool
	events      ActiveEvents
}

func (c *Collider) HalfExtents() mgl64.Vec3 { return c.halfExtents }
func (c *Collider) IsSensor() bool          { return c.sensor }

// bounds returns the world-space axis-aligned box enclosing the rotated cuboid.
func (c *Collider) bounds() (lo, hi mgl64.Vec3) {
	center := c.body.translation
	var ext mgl64.Vec3
	for j, axis := range [3]mgl64.Vec3{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}} {
		col := c.body.rotation.Rotate(axis)
		for i := 0; i < 3; i++ {
			ext[i] += math.Abs(col[i]) * c.halfExtents[j]
		}
	}
	return center.Sub(ext), center.Add(ext)
}

// overlap reports whether two boxes intersect with positive depth, returning
// the axis of least penetration and its depth. normal points from a to b.
func overlap(aMin, aMax, bMin, bMax mgl64.Vec3) (normal mgl64.Vec3, depth float64, ok bool) {
	depth = math.Inf(1)
	axis := -1
	for i := 0; i < 3; i++ {
		d := math.Min(aMax[i]-bMin[i], bMax[i]-aMin[i])
		if d <= 0 {
			return mgl64.Vec3{}, 0, false
		}
		if d < depth {
			depth = d
			axis = i
		}
	}
	aCenter := aMin.Add(aMax).Mul(0.5)
	bCenter := bMin.Add(bMax).Mul(0.5)
	normal[axis] = 1
	if bCenter[axis] < aCenter[axis] {
		normal[axis] = -1
	}
	return normal, depth, true
}

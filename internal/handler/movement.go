package handler

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"go.uber.org/zap"

	"github.com/arenaworks/server/internal/net/protocol"
	"github.com/arenaworks/server/internal/physics"
)

// Camera-space reference axes.
var (
	axisForward = mgl64.Vec3{0, 0, -1}
	axisRight   = mgl64.Vec3{1, 0, 0}
	axisUp      = mgl64.Vec3{0, 1, 0}
)

// MovementIntent maps a direction key and camera orientation to a world
// velocity of the given speed and the facing that points the body's +Z along
// it. turning is false for stop, which leaves the rotation alone.
func MovementIntent(dir string, camera mgl64.Quat, speed float64) (vel mgl64.Vec3, facing mgl64.Quat, turning bool) {
	forward := camera.Rotate(axisForward)
	right := camera.Rotate(axisRight)
	up := camera.Rotate(axisUp)

	var move mgl64.Vec3
	switch dir {
	case protocol.DirForward:
		move = forward
	case protocol.DirBackward:
		move = forward.Mul(-1)
	case protocol.DirLeft:
		move = right.Mul(-1)
	case protocol.DirRight:
		move = right
	default:
		return mgl64.Vec3{}, mgl64.QuatIdent(), false
	}
	if move.Len() == 0 {
		return mgl64.Vec3{}, mgl64.QuatIdent(), false
	}
	move = move.Normalize()
	return move.Mul(speed), lookRotation(move, up), true
}

// lookRotation builds the rotation whose local +Z points along dir, using up
// to fix the roll.
func lookRotation(dir, up mgl64.Vec3) mgl64.Quat {
	z := dir.Normalize()
	x := up.Cross(z)
	if x.Len() < 1e-9 {
		// up parallel to dir: nudge dir off the degenerate axis
		if math.Abs(up.Z()) == 1 {
			z[0] += 1e-4
		} else {
			z[2] += 1e-4
		}
		z = z.Normalize()
		x = up.Cross(z)
	}
	x = x.Normalize()
	y := z.Cross(x)
	return mgl64.Mat4ToQuat(mgl64.Mat3FromCols(x, y, z).Mat4()).Normalize()
}

// HandlePlayerMovement applies a movement command to the player's body right
// away. Commands for unknown players are dropped.
func HandlePlayerMovement(m protocol.PlayerMovement, deps *Deps) {
	id := physics.Handle(m.ID)
	if deps.World.GetPlayer(id) == nil {
		deps.Log.Debug("movement for unknown player", zap.Uint64("player", m.ID))
		return
	}

	if m.Action == protocol.DirStop {
		if !deps.Physics.SetVelocity(id, mgl64.Vec3{}) {
			deps.Log.Warn("movement: player body not found", zap.Uint64("player", m.ID))
		}
		return
	}

	vel, facing, turning := MovementIntent(m.Action, m.Camera(), deps.Config.Game.MoveSpeed)
	if !deps.Physics.SetVelocity(id, vel) {
		deps.Log.Warn("movement: player body not found", zap.Uint64("player", m.ID))
		return
	}
	if turning {
		deps.Physics.SetRotation(id, facing)
	}
}

package handler

import (
	"errors"

	"github.com/go-gl/mathgl/mgl64"
	"go.uber.org/zap"

	"github.com/arenaworks/server/internal/core/event"
	"github.com/arenaworks/server/internal/net"
	"github.com/arenaworks/server/internal/net/protocol"
	"github.com/arenaworks/server/internal/physics"
	"github.com/arenaworks/server/internal/world"
)

// ErrServerFull is returned by Admit when the roster is at capacity.
var ErrServerFull = errors.New("server is full")

// ConnectionRegistry admits and removes players as connections come and go.
type ConnectionRegistry struct {
	deps *Deps
}

func NewConnectionRegistry(deps *Deps) *ConnectionRegistry {
	return &ConnectionRegistry{deps: deps}
}

// Admit gives conn a body and a roster slot. A full server sends serverFull,
// closes conn and leaves the world untouched.
func (r *ConnectionRegistry) Admit(conn net.Conn) (*world.Player, error) {
	d := r.deps
	if d.World.PlayerCount() >= d.Config.Game.MaxPlayers {
		conn.Send(protocol.MustEncode(protocol.TypeServerFull, protocol.ServerFullReason))
		conn.Close()
		d.Log.Info("connection rejected: server is full",
			zap.Uint64("session", conn.ID()),
			zap.Int("players", d.World.PlayerCount()),
		)
		return nil, ErrServerFull
	}

	pc := d.Config.Physics
	h := d.Physics.CreateBody(physics.Dynamic,
		physics.Shape{HalfExtents: vec3(pc.PlayerHalfExtents)},
		physics.Transform{Position: vec3(pc.PlayerSpawn), Rotation: mgl64.QuatIdent()},
	)
	st, _ := d.Physics.BodyState(h)
	p := &world.Player{
		ID:       h,
		Position: st.Position,
		Rotation: st.Rotation,
		Velocity: st.Velocity,
		Conn:     conn,
	}
	d.World.AddPlayer(p)

	conn.Send(protocol.MustEncode(protocol.TypeID, uint64(h)))
	conn.Send(protocol.MustEncode(protocol.TypeChatLog, ChatLogPayload(d.World)))
	d.Broadcaster.Publish()

	event.Emit(d.Bus, event.PlayerJoined{PlayerID: uint64(h), SessionID: conn.ID()})
	d.Log.Info("player joined",
		zap.Uint64("session", conn.ID()),
		zap.Uint64("player", uint64(h)),
		zap.Int("players", d.World.PlayerCount()),
	)
	return p, nil
}

// Remove drops the player bound to conn, if any, and broadcasts the new
// roster immediately.
func (r *ConnectionRegistry) Remove(conn net.Conn) bool {
	d := r.deps
	p := d.World.GetByConn(conn)
	if p == nil {
		return false
	}
	if !d.Physics.RemoveBody(p.ID) {
		d.Log.Warn("player body already gone", zap.Uint64("player", uint64(p.ID)))
	}
	d.World.RemovePlayer(p.ID)
	d.Broadcaster.Publish()

	event.Emit(d.Bus, event.PlayerLeft{PlayerID: uint64(p.ID), SessionID: conn.ID()})
	d.Log.Info("player left",
		zap.Uint64("session", conn.ID()),
		zap.Uint64("player", uint64(p.ID)),
		zap.Int("players", d.World.PlayerCount()),
	)
	return true
}

func vec3(v []float64) mgl64.Vec3 {
	if len(v) != 3 {
		return mgl64.Vec3{}
	}
	return mgl64.Vec3{v[0], v[1], v[2]}
}

// Admitted reports whether conn currently owns a player.
func (r *ConnectionRegistry) Admitted(conn net.Conn) bool {
	return r.deps.World.GetByConn(conn) != nil
}

// Package world holds the authoritative roster of players, enemies and chat.
// It is accessed only from the game loop goroutine, so nothing here locks.
package world

import (
	"time"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/arenaworks/server/internal/core/arena"
	"github.com/arenaworks/server/internal/net"
	"github.com/arenaworks/server/internal/physics"
)

// Player is a connected participant. ID is the handle of its physics body.
type Player struct {
	ID            physics.Handle
	Position      mgl64.Vec3
	Rotation      mgl64.Quat
	Velocity      mgl64.Vec3
	CurrentAction string
	ChatBubble    string
	Conn          net.Conn

	actionSeq uint64 // bumps on every SetAction; stale expiries compare against it
}

// Enemy is a server-spawned target. ID is the handle of its physics body.
type Enemy struct {
	ID            physics.Handle
	Name          string
	Position      mgl64.Vec3
	Rotation      mgl64.Quat
	Velocity      mgl64.Vec3
	Health        int
	CurrentAction string
}

type ChatMessage struct {
	PlayerID  physics.Handle
	Message   string
	Timestamp time.Time
}

type pendingClear struct {
	player   physics.Handle
	seq      uint64
	deadline time.Time
}

// State is the in-memory world.
type State struct {
	players *arena.Store[Player]
	enemies *arena.Store[Enemy]

	chatLog   []ChatMessage
	chatLimit int // 0 = unbounded

	clears []pendingClear // ordered by deadline
	seq    uint64
}

func NewState(chatLimit int) *State {
	return &State{
		players:   arena.NewStore[Player](),
		enemies:   arena.NewStore[Enemy](),
		chatLimit: chatLimit,
	}
}

// --- players ---

func (s *State) AddPlayer(p *Player) {
	s.players.Set(p.ID, p)
}

// RemovePlayer drops the player. Pending action expiries for it become no-ops.
func (s *State) RemovePlayer(id physics.Handle) (*Player, bool) {
	return s.players.Remove(id)
}

func (s *State) GetPlayer(id physics.Handle) *Player {
	p, _ := s.players.Get(id)
	return p
}

// GetByConn finds the player bound to conn by connection identity.
func (s *State) GetByConn(conn net.Conn) *Player {
	var found *Player
	s.players.Each(func(_ physics.Handle, p *Player) {
		if found == nil && p.Conn == conn {
			found = p
		}
	})
	return found
}

func (s *State) PlayerCount() int { return s.players.Len() }

// AllPlayers returns players in join order.
func (s *State) AllPlayers() []*Player {
	out := make([]*Player, 0, s.players.Len())
	s.players.Each(func(_ physics.Handle, p *Player) { out = append(out, p) })
	return out
}

// --- enemies ---

func (s *State) AddEnemy(e *Enemy) {
	s.enemies.Set(e.ID, e)
}

func (s *State) RemoveEnemy(id physics.Handle) (*Enemy, bool) {
	return s.enemies.Remove(id)
}

func (s *State) GetEnemy(id physics.Handle) *Enemy {
	e, _ := s.enemies.Get(id)
	return e
}

func (s *State) EnemyCount() int { return s.enemies.Len() }

// AllEnemies returns enemies in spawn order.
func (s *State) AllEnemies() []*Enemy {
	out := make([]*Enemy, 0, s.enemies.Len())
	s.enemies.Each(func(_ physics.Handle, e *Enemy) { out = append(out, e) })
	return out
}

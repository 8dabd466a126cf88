package world

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arenaworks/server/internal/core/arena"
	"github.com/arenaworks/server/internal/net/nettest"
)

func TestPlayersKeepJoinOrder(t *testing.T) {
	s := NewState(0)
	for i := uint32(0); i < 3; i++ {
		s.AddPlayer(&Player{ID: arena.NewHandle(i, 0), Conn: nettest.NewConn()})
	}
	s.RemovePlayer(arena.NewHandle(1, 0))

	ids := []arena.Handle{}
	for _, p := range s.AllPlayers() {
		ids = append(ids, p.ID)
	}
	assert.Equal(t, []arena.Handle{arena.NewHandle(0, 0), arena.NewHandle(2, 0)}, ids)
	assert.Equal(t, 2, s.PlayerCount())
}

func TestGetByConnUsesIdentity(t *testing.T) {
	s := NewState(0)
	a, b := nettest.NewConn(), nettest.NewConn()
	s.AddPlayer(&Player{ID: arena.NewHandle(0, 0), Conn: a})
	s.AddPlayer(&Player{ID: arena.NewHandle(1, 0), Conn: b})

	require.NotNil(t, s.GetByConn(b))
	assert.Equal(t, arena.NewHandle(1, 0), s.GetByConn(b).ID)
	assert.Nil(t, s.GetByConn(nettest.NewConn()))
}

func TestEnemyRoster(t *testing.T) {
	s := NewState(0)
	h := arena.NewHandle(4, 1)
	s.AddEnemy(&Enemy{ID: h, Health: 100})
	require.NotNil(t, s.GetEnemy(h))
	assert.Equal(t, 1, s.EnemyCount())

	_, ok := s.RemoveEnemy(h)
	assert.True(t, ok)
	_, ok = s.RemoveEnemy(h)
	assert.False(t, ok)
	assert.Nil(t, s.GetEnemy(h))
	assert.Empty(t, s.AllEnemies())
}

func TestChatLogUnboundedByDefault(t *testing.T) {
	s := NewState(0)
	for i := 0; i < 500; i++ {
		s.AppendChat(ChatMessage{Message: "x"})
	}
	assert.Len(t, s.ChatLog(), 500)
}

func TestChatLogLimitEvictsOldest(t *testing.T) {
	s := NewState(2)
	s.AppendChat(ChatMessage{Message: "a"})
	s.AppendChat(ChatMessage{Message: "b"})
	s.AppendChat(ChatMessage{Message: "c"})

	log := s.ChatLog()
	require.Len(t, log, 2)
	assert.Equal(t, "b", log[0].Message)
	assert.Equal(t, "c", log[1].Message)
}

func TestRestoreChatPrependsHistory(t *testing.T) {
	s := NewState(3)
	s.AppendChat(ChatMessage{Message: "live"})
	s.RestoreChat([]ChatMessage{{Message: "old1"}, {Message: "old2"}, {Message: "old3"}})

	var msgs []string
	for _, m := range s.ChatLog() {
		msgs = append(msgs, m.Message)
	}
	assert.Equal(t, []string{"old2", "old3", "live"}, msgs)
}

func TestChatLogIsACopy(t *testing.T) {
	s := NewState(0)
	s.AppendChat(ChatMessage{Message: "a"})
	log := s.ChatLog()
	log[0].Message = "changed"
	assert.Equal(t, "a", s.ChatLog()[0].Message)
}

func TestActionExpires(t *testing.T) {
	s := NewState(0)
	id := arena.NewHandle(0, 0)
	s.AddPlayer(&Player{ID: id})
	t0 := time.Unix(1000, 0)

	require.True(t, s.SetAction(id, "wave", t0.Add(1500*time.Millisecond)))
	assert.Equal(t, "wave", s.GetPlayer(id).CurrentAction)

	assert.Zero(t, s.ExpireActions(t0.Add(time.Second)))
	assert.Equal(t, "wave", s.GetPlayer(id).CurrentAction)

	assert.Equal(t, 1, s.ExpireActions(t0.Add(1500*time.Millisecond)))
	assert.Empty(t, s.GetPlayer(id).CurrentAction)
	assert.Zero(t, s.PendingActions())
}

func TestNewerActionSupersedesOlderExpiry(t *testing.T) {
	s := NewState(0)
	id := arena.NewHandle(0, 0)
	s.AddPlayer(&Player{ID: id})
	t0 := time.Unix(1000, 0)

	s.SetAction(id, "wave", t0.Add(1500*time.Millisecond))
	s.SetAction(id, "dance", t0.Add(2500*time.Millisecond))

	s.ExpireActions(t0.Add(2 * time.Second))
	assert.Equal(t, "dance", s.GetPlayer(id).CurrentAction)
	s.ExpireActions(t0.Add(3 * time.Second))
	assert.Empty(t, s.GetPlayer(id).CurrentAction)
}

func TestActionForRemovedPlayerIsNoop(t *testing.T) {
	s := NewState(0)
	id := arena.NewHandle(0, 0)
	s.AddPlayer(&Player{ID: id})
	t0 := time.Unix(1000, 0)
	s.SetAction(id, "wave", t0)

	s.RemovePlayer(id)
	assert.Zero(t, s.ExpireActions(t0.Add(time.Hour)))
	assert.False(t, s.SetAction(id, "wave", t0))
}

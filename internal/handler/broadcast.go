package handler

import (
	"encoding/json"

	"go.uber.org/zap"
	"golang.org/x/crypto/blake2b"

	"github.com/arenaworks/server/internal/net/protocol"
	"github.com/arenaworks/server/internal/world"
)

// StateBroadcaster sends roster snapshots to every player, skipping a tick's
// snapshot when it is identical to the last one sent.
type StateBroadcaster struct {
	world *world.State
	log   *zap.Logger

	last    [blake2b.Size256]byte
	hasLast bool
	sent    uint64
}

func NewStateBroadcaster(ws *world.State, log *zap.Logger) *StateBroadcaster {
	return &StateBroadcaster{world: ws, log: log}
}

// Snapshot serializes the roster. Transport handles are not part of it.
func (b *StateBroadcaster) Snapshot() protocol.State {
	st := protocol.State{
		Players: make([]protocol.PlayerState, 0, b.world.PlayerCount()),
		Enemies: make([]protocol.EnemyState, 0, b.world.EnemyCount()),
	}
	for _, p := range b.world.AllPlayers() {
		st.Players = append(st.Players, protocol.PlayerState{
			ID:            uint64(p.ID),
			Position:      protocol.FromVec3(p.Position),
			Rotation:      protocol.FromQuat(p.Rotation),
			Velocity:      protocol.FromVec3(p.Velocity),
			CurrentAction: p.CurrentAction,
			ChatBubble:    p.ChatBubble,
		})
	}
	for _, e := range b.world.AllEnemies() {
		st.Enemies = append(st.Enemies, protocol.EnemyState{
			ID:            uint64(e.ID),
			Position:      protocol.FromVec3(e.Position),
			Rotation:      protocol.FromQuat(e.Rotation),
			Velocity:      protocol.FromVec3(e.Velocity),
			Health:        e.Health,
			CurrentAction: e.CurrentAction,
		})
	}
	return st
}

// PublishIfChanged broadcasts the snapshot only when it differs from the
// previous one. It reports whether anything was sent.
func (b *StateBroadcaster) PublishIfChanged() bool {
	payload, digest := b.encode()
	if payload == nil || (b.hasLast && digest == b.last) {
		return false
	}
	return b.send(payload, digest)
}

// Publish broadcasts the snapshot unconditionally, e.g. after a roster change.
func (b *StateBroadcaster) Publish() {
	payload, digest := b.encode()
	b.send(payload, digest)
}

// BroadcastChatLog sends the full chat log to every player.
func (b *StateBroadcaster) BroadcastChatLog() {
	b.sendAll(protocol.MustEncode(protocol.TypeChatLog, ChatLogPayload(b.world)))
}

// Sent returns how many state broadcasts have gone out.
func (b *StateBroadcaster) Sent() uint64 { return b.sent }

func (b *StateBroadcaster) encode() ([]byte, [blake2b.Size256]byte) {
	payload, err := json.Marshal(b.Snapshot())
	if err != nil {
		// all snapshot fields are plain values; this only fires on NaN positions
		b.log.Error("encode state snapshot", zap.Error(err))
		return nil, b.last
	}
	return payload, blake2b.Sum256(payload)
}

// send reports whether the snapshot went out.
func (b *StateBroadcaster) send(payload []byte, digest [blake2b.Size256]byte) bool {
	if payload == nil {
		return false
	}
	msg, err := json.Marshal(protocol.Envelope{Type: protocol.TypeState, Payload: payload})
	if err != nil {
		b.log.Error("encode state envelope", zap.Error(err))
		return false
	}
	b.last, b.hasLast = digest, true
	b.sent++
	b.sendAll(msg)
	return true
}

func (b *StateBroadcaster) sendAll(msg []byte) {
	for _, p := range b.world.AllPlayers() {
		if p.Conn == nil || !p.Conn.IsOpen() {
			continue
		}
		p.Conn.Send(msg)
	}
}

// ChatLogPayload converts the chat log to its wire form, oldest first.
func ChatLogPayload(ws *world.State) []protocol.ChatEntry {
	log := ws.ChatLog()
	out := make([]protocol.ChatEntry, 0, len(log))
	for _, m := range log {
		out = append(out, protocol.ChatEntry{
			PlayerID:  uint64(m.PlayerID),
			Message:   m.Message,
			Timestamp: m.Timestamp.UnixMilli(),
		})
	}
	return out
}

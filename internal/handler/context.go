package handler

import (
	"time"

	"go.uber.org/zap"

	"github.com/arenaworks/server/internal/config"
	"github.com/arenaworks/server/internal/core/event"
	"github.com/arenaworks/server/internal/net/protocol"
	"github.com/arenaworks/server/internal/physics"
	"github.com/arenaworks/server/internal/world"
)

// Deps holds shared dependencies injected into all message handlers.
type Deps struct {
	Config      *config.Config
	Log         *zap.Logger
	World       *world.State
	Physics     *physics.Adapter
	Bus         *event.Bus
	Broadcaster *StateBroadcaster
	Now         func() time.Time
}

func (d *Deps) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}

// RegisterAll registers all inbound message handlers into the registry.
func RegisterAll(reg *protocol.Registry, deps *Deps) {
	protocol.Register(reg, protocol.TypePlayerMovement, func(m protocol.PlayerMovement) {
		HandlePlayerMovement(m, deps)
	})
	protocol.Register(reg, protocol.TypeChatMessage, func(m protocol.ChatMessage) {
		HandleChatMessage(m, deps)
	})
	protocol.Register(reg, protocol.TypeAction, func(m protocol.Action) {
		HandleAction(m, deps)
	})
}

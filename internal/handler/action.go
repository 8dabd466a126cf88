package handler

import (
	"strings"

	"go.uber.org/zap"

	"github.com/arenaworks/server/internal/net/protocol"
	"github.com/arenaworks/server/internal/physics"
)

// HandleAction sets the player's current action; it clears itself after the
// configured duration.
func HandleAction(m protocol.Action, deps *Deps) {
	action := strings.TrimSpace(m.Action)
	if action == "" {
		return
	}
	deadline := deps.now().Add(deps.Config.Game.ActionDuration)
	if !deps.World.SetAction(physics.Handle(m.PlayerID), action, deadline) {
		deps.Log.Debug("action for unknown player", zap.Uint64("player", m.PlayerID))
	}
}

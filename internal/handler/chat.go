package handler

import (
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"
	"golang.org/x/text/unicode/norm"

	"github.com/arenaworks/server/internal/core/event"
	"github.com/arenaworks/server/internal/net/protocol"
	"github.com/arenaworks/server/internal/physics"
	"github.com/arenaworks/server/internal/world"
)

func HandleChatMessage(m protocol.ChatMessage, deps *Deps) {
	SubmitChat(physics.Handle(m.PlayerID), m.Message, deps)
}

// SubmitChat appends a message to the chat log, shows it over the sender's
// head and broadcasts the full log. Blank messages are dropped. It reports
// whether the message was accepted.
func SubmitChat(playerID physics.Handle, text string, deps *Deps) bool {
	text = norm.NFC.String(text)
	if strings.TrimSpace(text) == "" {
		deps.Log.Debug("blank chat message dropped", zap.Uint64("player", uint64(playerID)))
		return false
	}
	if limit := deps.Config.Game.ChatMessageMaxLen; limit > 0 && utf8.RuneCountInString(text) > limit {
		text = string([]rune(text)[:limit])
	}

	msg := world.ChatMessage{PlayerID: playerID, Message: text, Timestamp: deps.now()}
	deps.World.AppendChat(msg)

	if p := deps.World.GetPlayer(playerID); p != nil {
		p.ChatBubble = text
	} else {
		deps.Log.Debug("chat from unknown player", zap.Uint64("player", uint64(playerID)))
	}

	deps.Broadcaster.BroadcastChatLog()
	event.Emit(deps.Bus, event.ChatPosted{
		PlayerID: uint64(playerID),
		Message:  text,
		SentAt:   msg.Timestamp,
	})
	return true
}

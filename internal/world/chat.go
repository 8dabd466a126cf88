package world

// AppendChat adds msg to the log, evicting the oldest entries once a limit
// is configured and exceeded.
func (s *State) AppendChat(msg ChatMessage) {
	s.chatLog = append(s.chatLog, msg)
	if s.chatLimit > 0 && len(s.chatLog) > s.chatLimit {
		drop := len(s.chatLog) - s.chatLimit
		s.chatLog = append(s.chatLog[:0:0], s.chatLog[drop:]...)
	}
}

// ChatLog returns a copy of the log, oldest first.
func (s *State) ChatLog() []ChatMessage {
	out := make([]ChatMessage, len(s.chatLog))
	copy(out, s.chatLog)
	return out
}

// RestoreChat seeds the log with archived history. Existing entries are kept
// after the restored ones.
func (s *State) RestoreChat(history []ChatMessage) {
	merged := make([]ChatMessage, 0, len(history)+len(s.chatLog))
	merged = append(merged, history...)
	merged = append(merged, s.chatLog...)
	s.chatLog = nil
	for _, m := range merged {
		s.AppendChat(m)
	}
}

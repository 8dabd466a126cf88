package net

// Conn is the game loop's view of a client connection. Implementations must
// make Send non-blocking and safe to call after Close.
type Conn interface {
	ID() uint64
	Send(data []byte)
	IsOpen() bool
	Close()
}

// EventKind distinguishes transport events delivered to the game loop.
type EventKind int

const (
	EventConnected EventKind = iota
	EventMessage
	EventClosed
)

func (k EventKind) String() string {
	switch k {
	case EventConnected:
		return "connected"
	case EventMessage:
		return "message"
	case EventClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Event is one transport callback: a connect, an inbound message or a close.
type Event struct {
	Kind EventKind
	Conn Conn
	Data []byte
}

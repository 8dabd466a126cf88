// Package nettest provides an in-memory net.Conn for handler and loop tests.
package nettest

import (
	"encoding/json"
	"sync"
	"sync/atomic"
)

var lastID atomic.Uint64

// Conn records everything sent to it.
type Conn struct {
	id     uint64
	mu     sync.Mutex
	sent   [][]byte
	closed bool
}

func NewConn() *Conn {
	return &Conn{id: lastID.Add(1)}
}

func (c *Conn) ID() uint64 { return c.id }

func (c *Conn) Send(data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.sent = append(c.sent, append([]byte(nil), data...))
}

func (c *Conn) IsOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return !c.closed
}

func (c *Conn) Close() {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
}

// Sent returns a copy of every message received so far.
func (c *Conn) Sent() [][]byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([][]byte, len(c.sent))
	copy(out, c.sent)
	return out
}

// Reset forgets recorded messages.
func (c *Conn) Reset() {
	c.mu.Lock()
	c.sent = nil
	c.mu.Unlock()
}

// Types returns the "type" field of each recorded message, in order.
func (c *Conn) Types() []string {
	var types []string
	for _, msg := range c.Sent() {
		var env struct {
			Type string `json:"type"`
		}
		if json.Unmarshal(msg, &env) == nil {
			types = append(types, env.Type)
		}
	}
	return types
}

// Last returns the most recent message of the given type.
func (c *Conn) Last(msgType string) ([]byte, bool) {
	sent := c.Sent()
	for i := len(sent) - 1; i >= 0; i-- {
		var env struct {
			Type string `json:"type"`
		}
		if json.Unmarshal(sent[i], &env) == nil && env.Type == msgType {
			return sent[i], true
		}
	}
	return nil, false
}

// Count returns how many messages of the given type were recorded.
func (c *Conn) Count(msgType string) int {
	n := 0
	for _, t := range c.Types() {
		if t == msgType {
			n++
		}
	}
	return n
}

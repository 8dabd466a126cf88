// Package protocol defines the JSON messages exchanged with clients. Every
// frame is an Envelope: {"type": ..., "payload": ...}.
package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Inbound message types.
const (
	TypePlayerMovement = "playerMovement"
	TypeChatMessage    = "chatMessage"
	TypeAction         = "action"
)

// Outbound message types.
const (
	TypeID         = "id"
	TypeState      = "state"
	TypeChatLog    = "chatLog"
	TypeServerFull = "serverFull"
)

// ServerFullReason is the payload of a serverFull message.
const ServerFullReason = "Server is full"

var (
	ErrUnknownType    = errors.New("unknown message type")
	ErrInvalidPayload = errors.New("invalid payload")
)

type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Movement directions.
const (
	DirForward  = "w"
	DirBackward = "s"
	DirLeft     = "a"
	DirRight    = "d"
	DirStop     = "stop"
)

// PlayerMovement asks the server to drive a player's body relative to the
// client's camera orientation.
type PlayerMovement struct {
	ID             uint64    `json:"id"`
	Action         string    `json:"action" jsonschema:"enum=w,enum=s,enum=a,enum=d,enum=stop"`
	CameraRotation []float64 `json:"cameraRotation" jsonschema:"minItems=4,maxItems=4"`
}

func (PlayerMovement) requiredKeys() []string { return []string{"id", "action"} }

func (m PlayerMovement) Validate() error {
	switch m.Action {
	case DirForward, DirBackward, DirLeft, DirRight, DirStop:
	default:
		return fmt.Errorf("%w: direction %q", ErrInvalidPayload, m.Action)
	}
	if m.Action == DirStop {
		return nil
	}
	if len(m.CameraRotation) != 4 {
		return fmt.Errorf("%w: cameraRotation needs 4 components, got %d", ErrInvalidPayload, len(m.CameraRotation))
	}
	var sq float64
	for _, c := range m.CameraRotation {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return fmt.Errorf("%w: cameraRotation is not finite", ErrInvalidPayload)
		}
		sq += c * c
	}
	if sq == 0 {
		return fmt.Errorf("%w: cameraRotation is zero", ErrInvalidPayload)
	}
	return nil
}

// Camera returns the camera rotation as a unit quaternion. The wire order is
// [x, y, z, w]. Call Validate first.
func (m PlayerMovement) Camera() mgl64.Quat {
	if len(m.CameraRotation) != 4 {
		return mgl64.QuatIdent()
	}
	r := m.CameraRotation
	return mgl64.Quat{W: r[3], V: mgl64.Vec3{r[0], r[1], r[2]}}.Normalize()
}

type ChatMessage struct {
	PlayerID uint64 `json:"playerId"`
	Message  string `json:"message"`
}

func (ChatMessage) requiredKeys() []string { return []string{"playerId", "message"} }

func (m ChatMessage) Validate() error { return nil }

type Action struct {
	PlayerID uint64 `json:"playerId"`
	Action   string `json:"action"`
}

func (Action) requiredKeys() []string { return []string{"playerId", "action"} }

func (m Action) Validate() error { return nil }

type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

func FromVec3(v mgl64.Vec3) Vec3 { return Vec3{X: v.X(), Y: v.Y(), Z: v.Z()} }

type Quat struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
	W float64 `json:"w"`
}

func FromQuat(q mgl64.Quat) Quat { return Quat{X: q.X(), Y: q.Y(), Z: q.Z(), W: q.W} }

type PlayerState struct {
	ID            uint64 `json:"id"`
	Position      Vec3   `json:"position"`
	Rotation      Quat   `json:"rotation"`
	Velocity      Vec3   `json:"velocity"`
	CurrentAction string `json:"currentAction"`
	ChatBubble    string `json:"chatBubble"`
}

type EnemyState struct {
	ID            uint64 `json:"id"`
	Position      Vec3   `json:"position"`
	Rotation      Quat   `json:"rotation"`
	Velocity      Vec3   `json:"velocity"`
	Health        int    `json:"health"`
	CurrentAction string `json:"currentAction"`
}

// State is the payload of a state broadcast. Both slices are always non-nil
// so they encode as [] rather than null.
type State struct {
	Players []PlayerState `json:"players"`
	Enemies []EnemyState  `json:"enemies"`
}

type ChatEntry struct {
	PlayerID  uint64 `json:"playerId"`
	Message   string `json:"message"`
	Timestamp int64  `json:"timestamp"` // unix milliseconds
}

// Catalog lists every message payload keyed by its envelope type. It exists
// for schema generation; nothing is ever encoded as a Catalog.
type Catalog struct {
	PlayerMovement PlayerMovement `json:"playerMovement" jsonschema:"description=client to server"`
	ChatMessage    ChatMessage    `json:"chatMessage" jsonschema:"description=client to server"`
	Action         Action         `json:"action" jsonschema:"description=client to server"`
	ID             uint64         `json:"id" jsonschema:"description=server to client: the receiver's player id"`
	State          State          `json:"state" jsonschema:"description=server to client"`
	ChatLog        []ChatEntry    `json:"chatLog" jsonschema:"description=server to client"`
	ServerFull     string         `json:"serverFull" jsonschema:"description=server to client before closing"`
}

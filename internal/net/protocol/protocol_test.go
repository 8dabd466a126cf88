package protocol

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestEncodeProducesEnvelope(t *testing.T) {
	b, err := Encode(TypeServerFull, ServerFullReason)
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"serverFull","payload":"Server is full"}`, string(b))

	_, err = Encode("", 1)
	assert.Error(t, err)
}

func TestEmptyStateEncodesArrays(t *testing.T) {
	b := MustEncode(TypeState, State{Players: []PlayerState{}, Enemies: []EnemyState{}})
	assert.JSONEq(t, `{"type":"state","payload":{"players":[],"enemies":[]}}`, string(b))
}

func TestPlayerStateFieldNames(t *testing.T) {
	ps := PlayerState{
		ID:       3,
		Position: FromVec3(mgl64.Vec3{1, 2, 3}),
		Rotation: FromQuat(mgl64.QuatIdent()),
	}
	b, err := json.Marshal(ps)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"id": 3,
		"position": {"x": 1, "y": 2, "z": 3},
		"rotation": {"x": 0, "y": 0, "z": 0, "w": 1},
		"velocity": {"x": 0, "y": 0, "z": 0},
		"currentAction": "",
		"chatBubble": ""
	}`, string(b))
}

func TestDecodeEnvelopeRejectsGarbage(t *testing.T) {
	for _, in := range []string{"", "not json", `{"payload":{}}`, `[1,2]`} {
		_, err := DecodeEnvelope([]byte(in))
		assert.ErrorIs(t, err, ErrInvalidPayload, "input %q", in)
	}
}

func TestPlayerMovementValidate(t *testing.T) {
	ok := PlayerMovement{ID: 1, Action: "w", CameraRotation: []float64{0, 0, 0, 1}}
	assert.NoError(t, ok.Validate())

	stop := PlayerMovement{ID: 1, Action: "stop"}
	assert.NoError(t, stop.Validate())

	cases := map[string]PlayerMovement{
		"bad direction": {Action: "jump", CameraRotation: []float64{0, 0, 0, 1}},
		"short camera":  {Action: "w", CameraRotation: []float64{0, 0, 1}},
		"zero camera":   {Action: "a", CameraRotation: []float64{0, 0, 0, 0}},
		"nan camera":    {Action: "d", CameraRotation: []float64{math.NaN(), 0, 0, 1}},
	}
	for name, m := range cases {
		t.Run(name, func(t *testing.T) {
			assert.ErrorIs(t, m.Validate(), ErrInvalidPayload)
		})
	}
}

func TestCameraIsNormalized(t *testing.T) {
	m := PlayerMovement{Action: "w", CameraRotation: []float64{0, 0, 0, 3}}
	q := m.Camera()
	assert.InDelta(t, 1.0, q.W, 1e-12)
	assert.InDelta(t, 1.0, q.Len(), 1e-12)
}

func TestRegistryDispatch(t *testing.T) {
	reg := NewRegistry(zap.NewNop())
	var got []ChatMessage
	Register(reg, TypeChatMessage, func(m ChatMessage) { got = append(got, m) })

	require.NoError(t, reg.Dispatch([]byte(`{"type":"chatMessage","payload":{"playerId":4,"message":"hi"}}`)))
	require.Len(t, got, 1)
	assert.Equal(t, ChatMessage{PlayerID: 4, Message: "hi"}, got[0])

	err := reg.Dispatch([]byte(`{"type":"teleport","payload":{}}`))
	assert.ErrorIs(t, err, ErrUnknownType)
	assert.True(t, IsProtocolError(err))

	err = reg.Dispatch([]byte(`{"type":"chatMessage","payload":{"playerId":"four"}}`))
	assert.ErrorIs(t, err, ErrInvalidPayload)

	err = reg.Dispatch([]byte(`{"type":"chatMessage"}`))
	assert.ErrorIs(t, err, ErrInvalidPayload)
	assert.Len(t, got, 1)
}

func TestRegistryRecoversHandlerPanic(t *testing.T) {
	reg := NewRegistry(zap.NewNop())
	Register(reg, TypeAction, func(Action) { panic("boom") })

	err := reg.Dispatch([]byte(`{"type":"action","payload":{"playerId":1,"action":"wave"}}`))
	require.Error(t, err)
	assert.False(t, IsProtocolError(err))
	assert.Contains(t, err.Error(), "boom")
}

func TestMovementValidationRunsBeforeHandler(t *testing.T) {
	reg := NewRegistry(zap.NewNop())
	called := false
	Register(reg, TypePlayerMovement, func(PlayerMovement) { called = true })

	err := reg.Dispatch([]byte(`{"type":"playerMovement","payload":{"id":1,"action":"x","cameraRotation":[0,0,0,1]}}`))
	assert.ErrorIs(t, err, ErrInvalidPayload)
	assert.False(t, called)
}

func TestPayloadWithoutPlayerIDIsRejected(t *testing.T) {
	reg := NewRegistry(zap.NewNop())
	calls := 0
	Register(reg, TypePlayerMovement, func(PlayerMovement) { calls++ })
	Register(reg, TypeChatMessage, func(ChatMessage) { calls++ })
	Register(reg, TypeAction, func(Action) { calls++ })

	frames := map[string]string{
		"movement without id":   `{"type":"playerMovement","payload":{"action":"w","cameraRotation":[0,0,0,1]}}`,
		"movement with null id": `{"type":"playerMovement","payload":{"id":null,"action":"stop"}}`,
		"chat without playerId": `{"type":"chatMessage","payload":{"message":"spoof"}}`,
		"chat without message":  `{"type":"chatMessage","payload":{"playerId":0}}`,
		"action without id":     `{"type":"action","payload":{"action":"wave"}}`,
	}
	for name, frame := range frames {
		t.Run(name, func(t *testing.T) {
			err := reg.Dispatch([]byte(frame))
			assert.ErrorIs(t, err, ErrInvalidPayload)
			assert.True(t, IsProtocolError(err))
		})
	}
	assert.Zero(t, calls)

	require.NoError(t, reg.Dispatch([]byte(`{"type":"action","payload":{"playerId":0,"action":"wave"}}`)))
	assert.Equal(t, 1, calls)
}

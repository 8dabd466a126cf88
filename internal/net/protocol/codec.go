package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Encode wraps payload in an envelope of the given type.
func Encode(msgType string, payload any) ([]byte, error) {
	if msgType == "" {
		return nil, errors.New("encode: empty message type")
	}
	pb, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", msgType, err)
	}
	return json.Marshal(Envelope{Type: msgType, Payload: pb})
}

// MustEncode is Encode for payloads that cannot fail to marshal.
func MustEncode(msgType string, payload any) []byte {
	b, err := Encode(msgType, payload)
	if err != nil {
		panic(err)
	}
	return b
}

func DecodeEnvelope(b []byte) (Envelope, error) {
	if len(b) == 0 {
		return Envelope{}, fmt.Errorf("%w: empty frame", ErrInvalidPayload)
	}
	var env Envelope
	if err := json.Unmarshal(b, &env); err != nil {
		return Envelope{}, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	if env.Type == "" {
		return Envelope{}, fmt.Errorf("%w: missing type", ErrInvalidPayload)
	}
	return env, nil
}

// DecodePayload unmarshals and validates an envelope's payload.
func DecodePayload[T Payload](env Envelope) (T, error) {
	var out T
	if len(env.Payload) == 0 || string(env.Payload) == "null" {
		return out, fmt.Errorf("%w: empty payload for %q", ErrInvalidPayload, env.Type)
	}
	if err := json.Unmarshal(env.Payload, &out); err != nil {
		return out, fmt.Errorf("%w: %s: %v", ErrInvalidPayload, env.Type, err)
	}
	if err := checkRequired(any(out), env); err != nil {
		return out, err
	}
	if err := out.Validate(); err != nil {
		return out, err
	}
	return out, nil
}

// requiredKeys is implemented by payloads whose zero values are meaningful
// and so must be present on the wire. A missing id would otherwise decode
// to 0, which is a live handle.
type requiredKeys interface {
	requiredKeys() []string
}

func checkRequired(v any, env Envelope) error {
	r, ok := v.(requiredKeys)
	if !ok {
		return nil
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(env.Payload, &fields); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidPayload, env.Type, err)
	}
	for _, key := range r.requiredKeys() {
		if raw, ok := fields[key]; !ok || string(raw) == "null" {
			return fmt.Errorf("%w: %s: missing %q", ErrInvalidPayload, env.Type, key)
		}
	}
	return nil
}

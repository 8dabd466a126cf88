package protocol

import (
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// Payload is implemented by every inbound message body.
type Payload interface {
	Validate() error
}

// HandlerFunc receives the raw envelope; Register wraps typed handlers.
type HandlerFunc func(env Envelope) error

// Registry maps inbound message types to handlers. The set of accepted
// messages is closed: anything not registered is rejected.
type Registry struct {
	handlers map[string]HandlerFunc
	log      *zap.Logger
}

func NewRegistry(log *zap.Logger) *Registry {
	return &Registry{
		handlers: make(map[string]HandlerFunc),
		log:      log,
	}
}

// Register binds msgType to fn, decoding and validating the payload first.
func Register[T Payload](reg *Registry, msgType string, fn func(T)) {
	reg.handlers[msgType] = func(env Envelope) error {
		msg, err := DecodePayload[T](env)
		if err != nil {
			return err
		}
		fn(msg)
		return nil
	}
}

// Dispatch decodes one frame and runs its handler. Malformed frames and
// unknown types are returned as errors wrapping ErrInvalidPayload or
// ErrUnknownType; the caller decides how loudly to report them.
func (reg *Registry) Dispatch(data []byte) error {
	env, err := DecodeEnvelope(data)
	if err != nil {
		return err
	}
	reg.log.Debug("message received", zap.String("type", env.Type), zap.Int("size", len(data)))

	fn, ok := reg.handlers[env.Type]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownType, env.Type)
	}
	return reg.safeCall(fn, env)
}

// IsProtocolError reports whether err came from a bad client frame rather
// than from a handler failure.
func IsProtocolError(err error) bool {
	return errors.Is(err, ErrInvalidPayload) || errors.Is(err, ErrUnknownType)
}

// safeCall executes a handler with panic recovery so one bad message cannot
// take down the game loop.
func (reg *Registry) safeCall(fn HandlerFunc, env Envelope) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			reg.log.Error("handler panic recovered",
				zap.String("type", env.Type),
				zap.Any("panic", rec),
			)
			err = fmt.Errorf("handler panic for %q: %v", env.Type, rec)
		}
	}()
	return fn(env)
}

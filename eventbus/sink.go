// Package eventbus bridges the engine's lifecycle events onto an
// asaskevich/EventBus bus for in-process pub/sub consumers.
package eventbus

import (
	"context"

	evbus "github.com/asaskevich/EventBus"

	"github.com/sessionkit/guard"
)

// Sink publishes each [guard.Event] to the topic "<prefix>.<event name>",
// e.g. "auth.login". Subscribers receive the Event value as the single
// argument.
type Sink struct {
	bus    evbus.Bus
	prefix string
}

// NewSink creates a Sink publishing under the given topic prefix; an empty
// prefix defaults to "auth".
func NewSink(bus evbus.Bus, prefix string) *Sink {
	if prefix == "" {
		prefix = "auth"
	}
	return &Sink{
		bus:    bus,
		prefix: prefix,
	}
}

// Emit describes the emit operation and its observable behavior.
func (s *Sink) Emit(_ context.Context, event guard.Event) {
	s.bus.Publish(s.prefix+"."+event.Name, event)
}

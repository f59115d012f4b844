package guard

import (
	"context"
	"encoding/json"
	"io"
	"sync"
	"time"
)

// Lifecycle event names emitted by the engine.
const (
	// EventLogin fires after a session has been established.
	EventLogin = "login"
	// EventLogout fires after a session has been torn down.
	EventLogout = "logout"
	// EventFailedLogin fires after a rejected credential attempt.
	EventFailedLogin = "failedLoginAttempt"
)

// Event is a lifecycle notification. Emission is fire-and-forget: no sink
// return value is consumed and a slow sink never blocks authentication.
type Event struct {
	Timestamp  time.Time `json:"timestamp"`
	Name       string    `json:"name"`
	UserID     string    `json:"user_id,omitempty"`
	Identifier string    `json:"identifier,omitempty"`
	IP         string    `json:"ip,omitempty"`
	Remember   bool      `json:"remember,omitempty"`
}

// EventSink receives [Event] values from the engine's dispatcher.
type EventSink interface {
	Emit(ctx context.Context, event Event)
}

// NoOpSink is an [EventSink] that silently discards all events.
type NoOpSink struct{}

// Emit describes the emit operation and its observable behavior.
func (NoOpSink) Emit(context.Context, Event) {}

// ChannelSink is a buffered channel-based [EventSink], convenient for tests
// and in-process consumers.
type ChannelSink struct {
	events chan Event
}

// NewChannelSink creates a [ChannelSink] with the given buffer capacity.
func NewChannelSink(buffer int) *ChannelSink {
	if buffer <= 0 {
		buffer = 1
	}
	return &ChannelSink{
		events: make(chan Event, buffer),
	}
}

// Emit describes the emit operation and its observable behavior.
func (s *ChannelSink) Emit(ctx context.Context, event Event) {
	select {
	case s.events <- event:
	case <-ctx.Done():
	}
}

// Events returns the receive side of the sink's channel.
func (s *ChannelSink) Events() <-chan Event {
	return s.events
}

// JSONWriterSink is an [EventSink] that writes JSON-encoded events to an
// [io.Writer], one per line.
type JSONWriterSink struct {
	writer io.Writer
	mu     sync.Mutex
}

// NewJSONWriterSink creates a [JSONWriterSink] that writes to w.
func NewJSONWriterSink(w io.Writer) *JSONWriterSink {
	return &JSONWriterSink{
		writer: w,
	}
}

// Emit describes the emit operation and its observable behavior.
func (s *JSONWriterSink) Emit(ctx context.Context, event Event) {
	if s == nil || s.writer == nil {
		return
	}
	data, err := json.Marshal(event)
	if err != nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, _ = s.writer.Write(data)
	_, _ = s.writer.Write([]byte("\n"))
}

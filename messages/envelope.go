package messages

import (
	"time"

	"github.com/go-openapi/strfmt"
	"github.com/google/uuid"
	"github.com/weft-ai/weft/pkg/uuidx"
)

// Message is the envelope contract shared by commands and events. Concrete
// types satisfy it by embedding CommandEnvelope or EventEnvelope and declaring
// a Kind.
type Message interface {
	// Kind returns the stable identifier handlers register under. Kinds must
	// be unique per concrete type across the application.
	Kind() string
	// MessageID returns the unique id minted when the envelope was created.
	MessageID() uuid.UUID
	// OccurredAt returns the envelope creation time.
	OccurredAt() strfmt.DateTime
	// Session returns the owning session id, or "" for global messages.
	Session() string
	// Metadata returns the free-form metadata map, which may be nil.
	Metadata() map[string]any
}

// Command is a single-handler request/response message.
type Command interface {
	Message
	command()
}

// Event is a multi-handler fire-and-forget notification.
type Event interface {
	Message
	event()
}

// Envelope carries the metadata common to every message on the bus. It is
// not embedded directly; concrete types embed CommandEnvelope or
// EventEnvelope instead.
type Envelope struct {
	ID        uuid.UUID       `json:"id"`
	Timestamp strfmt.DateTime `json:"timestamp"`
	SessionID string          `json:"session_id,omitempty"`
	Meta      map[string]any  `json:"metadata,omitempty"`
}

// NewEnvelope returns an envelope stamped with a fresh UUIDv7 id and the
// current time.
func NewEnvelope() Envelope {
	return Envelope{
		ID:        uuidx.New(),
		Timestamp: strfmt.DateTime(time.Now()),
	}
}

func (e Envelope) MessageID() uuid.UUID        { return e.ID }
func (e Envelope) OccurredAt() strfmt.DateTime { return e.Timestamp }
func (e Envelope) Session() string             { return e.SessionID }
func (e Envelope) Metadata() map[string]any    { return e.Meta }

// CommandEnvelope marks the embedding type as a Command.
type CommandEnvelope struct {
	Envelope
}

func (CommandEnvelope) command() {}

// NewCommand returns a command envelope with a fresh id and timestamp.
func NewCommand() CommandEnvelope {
	return CommandEnvelope{Envelope: NewEnvelope()}
}

// NewSessionCommand returns a command envelope stamped with the given
// session id.
func NewSessionCommand(sessionID string) CommandEnvelope {
	env := NewEnvelope()
	env.SessionID = sessionID
	return CommandEnvelope{Envelope: env}
}

// EventEnvelope marks the embedding type as an Event.
type EventEnvelope struct {
	Envelope
}

func (EventEnvelope) event() {}

// NewEvent returns an event envelope with a fresh id and timestamp.
func NewEvent() EventEnvelope {
	return EventEnvelope{Envelope: NewEnvelope()}
}

// NewSessionEvent returns an event envelope stamped with the given session id.
func NewSessionEvent(sessionID string) EventEnvelope {
	env := NewEnvelope()
	env.SessionID = sessionID
	return EventEnvelope{Envelope: env}
}

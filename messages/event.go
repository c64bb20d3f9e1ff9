package messages

import "github.com/google/uuid"

// Kinds of the events the bus itself publishes.
const (
	KindCommandResult = "command_result"
	KindCommandError  = "command_error"
	KindSessionStart  = "session_start"
	KindSessionEnd    = "session_end"
)

// CommandResultEvent is published after every command execution, success or
// failure, so health monitors can observe command throughput uniformly.
type CommandResultEvent struct {
	EventEnvelope
	CommandKind string    `json:"command_kind"`
	CommandID   uuid.UUID `json:"command_id"`
	Success     bool      `json:"success"`
	Error       string    `json:"error,omitempty"`
	DurationMS  float64   `json:"execution_time_ms"`
}

func (CommandResultEvent) Kind() string { return KindCommandResult }

// CommandErrorEvent is published when a command handler returns an error or
// panics. The failure also reaches the caller as CommandResult data; this
// event exists for subscribers that watch failures across all commands.
type CommandErrorEvent struct {
	EventEnvelope
	CommandKind string    `json:"command_kind"`
	CommandID   uuid.UUID `json:"command_id"`
	Error       string    `json:"error"`
	Stack       string    `json:"stack_trace,omitempty"`
}

func (CommandErrorEvent) Kind() string { return KindCommandError }

// SessionStartEvent marks the creation of a bus session.
type SessionStartEvent struct {
	EventEnvelope
}

func (SessionStartEvent) Kind() string { return KindSessionStart }

// SessionEndEvent marks the teardown of a bus session. All handler
// registrations owned by the session are already swept when it is published.
type SessionEndEvent struct {
	EventEnvelope
	Error string `json:"error,omitempty"`
}

func (SessionEndEvent) Kind() string { return KindSessionEnd }

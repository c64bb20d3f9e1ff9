package weft

import (
	"errors"
	"fmt"

	"github.com/weft-ai/weft/internal/registry"
)

// State captures the bus lifecycle: CREATED until Start, STARTED while the
// dispatcher runs, STOPPED permanently after Stop. A stopped bus cannot be
// restarted; each bus lifetime owns exactly one journal file.
type State int

const (
	StateCreated State = iota
	StateStarted
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StateStarted:
		return "started"
	case StateStopped:
		return "stopped"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// LifecycleError reports an operation attempted outside the STARTED state.
// It is a distinct type so callers can tell "my command failed" apart from
// "the bus isn't running".
type LifecycleError struct {
	Op    string
	State State
}

func (e *LifecycleError) Error() string {
	return fmt.Sprintf("cannot %s: bus is %s", e.Op, e.State)
}

// DuplicateHandlerError is returned when a second command handler is
// registered for a kind that already has one.
type DuplicateHandlerError = registry.DuplicateHandlerError

// ErrSessionEnded is returned by session operations after the session has
// been torn down.
var ErrSessionEnded = errors.New("session has ended")

// ErrQueueFull is returned by Publish when the dispatcher queue stays full
// past the publish timeout.
var ErrQueueFull = errors.New("queue full")

// Package registry keeps the type-keyed handler tables for the bus: one
// command handler per kind, an ordered list of event handlers per kind, and
// the session ownership needed to sweep registrations when a session ends.
package registry

import (
	"context"
	"fmt"
	"sync"

	"github.com/alphadose/haxmap"
	orderedmap "github.com/wk8/go-ordered-map/v2"
	"github.com/weft-ai/weft/messages"
	"github.com/weft-ai/weft/pkg/uuidx"
)

// CommandHandler is the erased form command handlers are stored in. The
// generic registration layer wraps typed handlers into this shape.
type CommandHandler func(context.Context, messages.Command) (messages.CommandResult, error)

// EventHandler is the erased form event handlers are stored in.
type EventHandler func(context.Context, messages.Event) error

// CommandEntry binds a command kind to its single handler and owning session.
type CommandEntry struct {
	Kind      string
	SessionID string
	Handler   CommandHandler
}

// EventEntry is one element of a kind's ordered handler list.
type EventEntry struct {
	ID        string
	Kind      string
	SessionID string
	Handler   EventHandler
}

// DuplicateHandlerError is returned when a second command handler is
// registered for a kind that already has one. The first registration stays
// bound.
type DuplicateHandlerError struct {
	Kind string
}

func (e *DuplicateHandlerError) Error() string {
	return fmt.Sprintf("command handler for %q is already registered", e.Kind)
}

// Registry stores handler registrations. Lookups run lock-free on haxmap;
// a small mutex serializes the read-modify-write updates of the ordered
// event-handler lists and the duplicate check on the command side.
type Registry struct {
	mu       sync.Mutex
	commands *haxmap.Map[string, CommandEntry]
	events   *haxmap.Map[string, *orderedmap.OrderedMap[string, EventEntry]]
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{
		commands: haxmap.New[string, CommandEntry](),
		events:   haxmap.New[string, *orderedmap.OrderedMap[string, EventEntry]](),
	}
}

// AddCommand binds a handler to a command kind. It fails fast with
// *DuplicateHandlerError when the kind is already bound.
func (r *Registry) AddCommand(kind, sessionID string, handler CommandHandler) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.commands.Get(kind); ok {
		return &DuplicateHandlerError{Kind: kind}
	}
	r.commands.Set(kind, CommandEntry{Kind: kind, SessionID: sessionID, Handler: handler})
	return nil
}

// Command returns the handler entry for a kind.
func (r *Registry) Command(kind string) (CommandEntry, bool) {
	return r.commands.Get(kind)
}

// RemoveCommand unbinds a command kind. No-op when absent.
func (r *Registry) RemoveCommand(kind string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.commands.Del(kind)
}

// AddEvent appends a handler to the kind's ordered list and returns the
// registration id used to remove it later. The same handler value may be
// registered twice; it will then be invoked twice per event.
func (r *Registry) AddEvent(kind, sessionID string, handler EventHandler) string {
	r.mu.Lock()
	defer r.mu.Unlock()

	list, _ := r.events.GetOrCompute(kind, func() *orderedmap.OrderedMap[string, EventEntry] {
		return orderedmap.New[string, EventEntry]()
	})

	id := uuidx.NewString()
	list.Set(id, EventEntry{ID: id, Kind: kind, SessionID: sessionID, Handler: handler})
	return id
}

// RemoveEvent removes one event registration by id. No-op when absent.
func (r *Registry) RemoveEvent(kind, id string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if list, ok := r.events.Get(kind); ok {
		list.Delete(id)
	}
}

// Events returns a snapshot of the handlers for a kind in registration
// order, empty when none are registered.
func (r *Registry) Events(kind string) []EventEntry {
	r.mu.Lock()
	defer r.mu.Unlock()

	list, ok := r.events.Get(kind)
	if !ok {
		return nil
	}

	entries := make([]EventEntry, 0, list.Len())
	for pair := list.Oldest(); pair != nil; pair = pair.Next() {
		entries = append(entries, pair.Value)
	}
	return entries
}

// RemoveSession sweeps every registration owned by the session, command and
// event side alike. No-op for unknown sessions.
func (r *Registry) RemoveSession(sessionID string) {
	if sessionID == "" {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	var staleCommands []string
	r.commands.ForEach(func(kind string, entry CommandEntry) bool {
		if entry.SessionID == sessionID {
			staleCommands = append(staleCommands, kind)
		}
		return true
	})
	for _, kind := range staleCommands {
		r.commands.Del(kind)
	}

	r.events.ForEach(func(kind string, list *orderedmap.OrderedMap[string, EventEntry]) bool {
		var stale []string
		for pair := list.Oldest(); pair != nil; pair = pair.Next() {
			if pair.Value.SessionID == sessionID {
				stale = append(stale, pair.Key)
			}
		}
		for _, id := range stale {
			list.Delete(id)
		}
		return true
	})
}

package weft

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/weft-ai/weft/internal/registry"
	"github.com/weft-ai/weft/messages"
	"github.com/weft-ai/weft/pkg/stdx"
)

// CommandHandlerFunc handles one concrete command type. Returning an error
// (or panicking) marks the execution failed; the bus converts either into
// CommandResult data plus a CommandErrorEvent.
type CommandHandlerFunc[C messages.Command] func(context.Context, C) (messages.CommandResult, error)

// EventHandlerFunc handles one concrete event type. A returned error is
// logged; it never reaches the publisher or the other handlers.
type EventHandlerFunc[E messages.Event] func(context.Context, E) error

// Subscription is the handle returned by event registration. Unsubscribe
// removes the registration; it is safe to call more than once.
type Subscription interface {
	ID() string
	Unsubscribe()
}

// HandleCommand binds handler as the single global handler for the command
// kind C. It fails with *DuplicateHandlerError when the kind is already
// bound, and the first registration stays in place.
func HandleCommand[C messages.Command](b *Bus, handler CommandHandlerFunc[C]) error {
	return handleCommand(b, "", handler)
}

// UnregisterCommand unbinds the handler for the command kind C, making the
// kind available for a new registration. No-op when the kind is not bound.
func UnregisterCommand[C messages.Command](b *Bus) {
	b.registry.RemoveCommand(stdx.Zero[C]().Kind())
}

// SubscribeEvent appends handler to the global handler list for the event
// kind E. The same handler may be subscribed twice; it then runs twice per
// event.
func SubscribeEvent[E messages.Event](b *Bus, handler EventHandlerFunc[E]) (Subscription, error) {
	return subscribeEvent(b, "", handler)
}

func handleCommand[C messages.Command](b *Bus, sessionID string, handler CommandHandlerFunc[C]) error {
	if handler == nil {
		return errors.New("handler is required")
	}

	kind := stdx.Zero[C]().Kind()
	wrapped := func(ctx context.Context, cmd messages.Command) (messages.CommandResult, error) {
		typed, ok := cmd.(C)
		if !ok {
			return messages.CommandResult{}, fmt.Errorf("command %q arrived as %T", kind, cmd)
		}
		return handler(ctx, typed)
	}
	return b.registry.AddCommand(kind, sessionID, wrapped)
}

func subscribeEvent[E messages.Event](b *Bus, sessionID string, handler EventHandlerFunc[E]) (Subscription, error) {
	if handler == nil {
		return nil, errors.New("handler is required")
	}

	kind := stdx.Zero[E]().Kind()
	wrapped := func(ctx context.Context, event messages.Event) error {
		typed, ok := event.(E)
		if !ok {
			return fmt.Errorf("event %q arrived as %T", kind, event)
		}
		return handler(ctx, typed)
	}

	id := b.registry.AddEvent(kind, sessionID, wrapped)
	return &eventSubscription{id: id, kind: kind, registry: b.registry}, nil
}

type eventSubscription struct {
	id       string
	kind     string
	registry *registry.Registry
	once     sync.Once
}

func (s *eventSubscription) ID() string { return s.id }

func (s *eventSubscription) Unsubscribe() {
	s.once.Do(func() {
		s.registry.RemoveEvent(s.kind, s.id)
	})
}

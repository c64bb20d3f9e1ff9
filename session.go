package weft

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/weft-ai/weft/messages"
	"github.com/weft-ai/weft/pkg/uuidx"
)

// Session is a revocable group of handler registrations tied to one id.
// Registrations made through a session are swept atomically when it ends,
// and the end is announced with a SessionEndEvent. A typical consumer is a
// UI that subscribes per conversation and relies on teardown being
// automatic when the conversation closes.
type Session struct {
	id     string
	bus    *Bus
	active atomic.Bool
	end    sync.Once
}

// CreateSession mints a session with a fresh id and announces it with a
// SessionStartEvent. The bus must be started.
func (b *Bus) CreateSession(ctx context.Context) (*Session, error) {
	if state := b.State(); state != StateStarted {
		return nil, &LifecycleError{Op: "create session", State: state}
	}

	s := &Session{id: uuidx.NewString(), bus: b}
	s.active.Store(true)

	if err := b.Publish(ctx, messages.SessionStartEvent{
		EventEnvelope: messages.NewSessionEvent(s.id),
	}); err != nil {
		return nil, err
	}
	return s, nil
}

// RunSession creates a session, runs fn with it, and guarantees teardown on
// every exit path: normal return, error return, and panic (the panic is
// re-raised after the sweep). The context passed to fn carries the session
// id, so commands executed and events published inside inherit it.
func (b *Bus) RunSession(ctx context.Context, fn func(context.Context, *Session) error) error {
	s, err := b.CreateSession(ctx)
	if err != nil {
		return err
	}

	ctx = WithSession(ctx, s.id)
	defer func() {
		if r := recover(); r != nil {
			_ = s.endWith(ctx, fmt.Errorf("panic: %v", r))
			panic(r)
		}
	}()

	runErr := fn(ctx, s)
	endErr := s.endWith(ctx, runErr)
	if runErr != nil {
		return runErr
	}
	return endErr
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// Active reports whether the session can still register handlers and
// execute commands.
func (s *Session) Active() bool { return s.active.Load() }

// Execute stamps the session id onto the execution context and delegates to
// the bus, preserving trace and journal correlation for the command and
// everything it publishes.
func (s *Session) Execute(ctx context.Context, cmd messages.Command) (messages.CommandResult, error) {
	if !s.active.Load() {
		return messages.CommandResult{}, ErrSessionEnded
	}
	return s.bus.Execute(WithSession(ctx, s.id), cmd)
}

// Publish delegates to the bus with the session id on the context.
func (s *Session) Publish(ctx context.Context, event messages.Event) error {
	if !s.active.Load() {
		return ErrSessionEnded
	}
	return s.bus.Publish(WithSession(ctx, s.id), event)
}

// End sweeps every registration owned by the session and publishes a
// SessionEndEvent. Idempotent; later calls are no-ops.
func (s *Session) End(ctx context.Context) error {
	return s.endWith(ctx, nil)
}

func (s *Session) endWith(ctx context.Context, cause error) error {
	var err error
	s.end.Do(func() {
		s.active.Store(false)
		s.bus.registry.RemoveSession(s.id)

		event := messages.SessionEndEvent{EventEnvelope: messages.NewSessionEvent(s.id)}
		if cause != nil {
			event.Error = cause.Error()
		}
		err = s.bus.Publish(ctx, event)
	})
	return err
}

// HandleSessionCommand binds handler as the handler for the command kind C,
// owned by the session. A duplicate registration fails but leaves the
// session usable for further registrations.
func HandleSessionCommand[C messages.Command](s *Session, handler CommandHandlerFunc[C]) error {
	if !s.active.Load() {
		return ErrSessionEnded
	}
	return handleCommand(s.bus, s.id, handler)
}

// SubscribeSessionEvent appends handler to the handler list for the event
// kind E, owned by the session. The registration disappears when the
// session ends; the returned Subscription allows removing it earlier.
func SubscribeSessionEvent[E messages.Event](s *Session, handler EventHandlerFunc[E]) (Subscription, error) {
	if !s.active.Load() {
		return nil, ErrSessionEnded
	}
	return subscribeEvent(s.bus, s.id, handler)
}

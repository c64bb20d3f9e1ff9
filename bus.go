package weft

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fogfish/opts"
	"github.com/google/uuid"
	"github.com/weft-ai/weft/internal/registry"
	"github.com/weft-ai/weft/messages"
	"github.com/weft-ai/weft/observability"
	"github.com/weft-ai/weft/pkg/slogx"
)

const (
	defaultQueueSize      = 256
	defaultPublishTimeout = 5 * time.Second
)

// delivery is one unit of work for the dispatcher. Handlers are snapshotted
// at publish time, so registrations made after Publish returns are not
// retroactive and a swept session can never be invoked again.
type delivery struct {
	event   messages.Event
	session string
	entries []registry.EventEntry
}

// Bus is the message bus runtime. It owns the handler registry, the JSONL
// journal, and the single dispatcher goroutine that journals and delivers
// published events in FIFO order per publisher.
//
// A Bus must be constructed with New and passes through the lifecycle
// CREATED → STARTED → STOPPED. Execute and Publish only work while STARTED.
type Bus struct {
	mu    sync.RWMutex
	state State

	logDir         string
	logFilename    string
	queueSize      int
	publishTimeout time.Duration
	consoleMetrics bool
	consoleTraces  bool
	metricsOut     io.Writer
	tracesOut      io.Writer
	log            *slog.Logger

	tracing  atomic.Bool
	registry *registry.Registry
	journal  *observability.Journal
	queue    chan delivery
	pending  sync.WaitGroup
	done     chan struct{}
	metrics  *observability.MetricReporter
	traces   *observability.TraceReporter
}

// New constructs a bus in the CREATED state. Tracing is enabled by default.
func New(options ...opts.Option[Bus]) (*Bus, error) {
	b := &Bus{
		queueSize:      defaultQueueSize,
		publishTimeout: defaultPublishTimeout,
		metricsOut:     os.Stdout,
		tracesOut:      os.Stdout,
		log:            slog.Default(),
		registry:       registry.New(),
	}
	b.tracing.Store(true)

	if err := opts.Apply(b, options); err != nil {
		return nil, err
	}
	return b, nil
}

// Start opens the journal and launches the dispatcher. Calling Start on a
// started bus is a no-op; starting a stopped bus fails, each bus lifetime
// owns exactly one journal file.
func (b *Bus) Start() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case StateStarted:
		return nil
	case StateStopped:
		return &LifecycleError{Op: "start", State: b.state}
	}

	journal, err := observability.OpenJournal(b.logDir, b.logFilename)
	if err != nil {
		return err
	}

	b.journal = journal
	b.queue = make(chan delivery, b.queueSize)
	b.done = make(chan struct{})
	b.metrics = observability.NewMetricReporter(b.metricsOut)
	b.traces = observability.NewTraceReporter(b.tracesOut)
	b.state = StateStarted

	go b.dispatch()

	b.log.Info("bus started", slog.String("journal", journal.Path()))
	return nil
}

// Stop drains the queue, delivering every already-published event and
// awaiting in-flight handler invocations, then halts the dispatcher and
// closes the journal. Idempotent; a bus that was never started just moves
// to STOPPED.
func (b *Bus) Stop() error {
	b.mu.Lock()
	if b.state != StateStarted {
		b.state = StateStopped
		b.mu.Unlock()
		return nil
	}
	b.state = StateStopped
	b.mu.Unlock()

	// All publishers observe the state flip under the read lock before
	// touching the queue, so closing here cannot race a send.
	close(b.queue)
	<-b.done

	err := b.journal.Close()
	b.log.Info("bus stopped")
	return err
}

// JournalPath returns the location of the journal file, empty before Start.
func (b *Bus) JournalPath() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.journal == nil {
		return ""
	}
	return b.journal.Path()
}

// State returns the current lifecycle state.
func (b *Bus) State() State {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.state
}

// TracingEnabled reports whether command executions open trace spans.
func (b *Bus) TracingEnabled() bool { return b.tracing.Load() }

// EnableTracing turns span publication back on.
func (b *Bus) EnableTracing() { b.tracing.Store(true) }

// DisableTracing suppresses span publication. Journal and lifecycle events
// are unaffected.
func (b *Bus) DisableTracing() { b.tracing.Store(false) }

// Execute runs the single handler registered for the command's kind and
// returns its result. A missing handler and a failing handler both surface
// as CommandResult data, never as a returned error; the error return is
// reserved for lifecycle violations.
//
// The execution is wrapped in a trace span whose start and end are
// published as TraceEvents. Handler failures additionally publish a
// CommandErrorEvent; every execution publishes a CommandResultEvent.
func (b *Bus) Execute(ctx context.Context, cmd messages.Command) (messages.CommandResult, error) {
	if state := b.State(); state != StateStarted {
		return messages.CommandResult{}, &LifecycleError{Op: "execute", State: state}
	}

	kind := cmd.Kind()
	session := cmd.Session()
	if session == "" {
		session = SessionFromContext(ctx)
	}
	if session != "" {
		ctx = WithSession(ctx, session)
	}

	entry, ok := b.registry.Command(kind)
	if !ok {
		b.log.Error("no handler registered for command", slogx.Kind(kind), slogx.SessionID(session))
		return messages.Failure(cmd, fmt.Sprintf("no handler registered for command %q", kind)), nil
	}

	spanName := "command:" + kind
	traced := b.tracing.Load()
	start := time.Now()

	var span observability.SpanContext
	if traced {
		var parent *observability.SpanContext
		if current, ok := SpanFromContext(ctx); ok {
			parent = &current
		}
		span = observability.NewSpan(parent)
		ctx = withSpan(ctx, span)

		b.publishInternal(ctx, observability.TraceEvent{
			EventEnvelope: messages.NewSessionEvent(session),
			Name:          spanName,
			Span:          span,
			StartTime:     start.Format(time.RFC3339Nano),
			Attributes: map[string]any{
				"command_id":   cmd.MessageID().String(),
				"command_type": kind,
				"session_id":   session,
			},
			Source: "bus.execute",
		})
	}

	b.log.Debug("executing command", slogx.Kind(kind), slogx.SessionID(session))
	result, stack, err := b.invokeCommand(ctx, entry.Handler, cmd)
	durationMS := float64(time.Since(start)) / float64(time.Millisecond)

	if err != nil {
		b.log.Error("command handler failed", slogx.Kind(kind), slogx.Error(err))
		if traced {
			b.endSpan(ctx, span, spanName, session, observability.StatusError, durationMS, map[string]any{
				"error": err.Error(),
			})
		}
		b.publishInternal(ctx, messages.CommandErrorEvent{
			EventEnvelope: messages.NewSessionEvent(session),
			CommandKind:   kind,
			CommandID:     cmd.MessageID(),
			Error:         err.Error(),
			Stack:         stack,
		})
		b.publishInternal(ctx, messages.CommandResultEvent{
			EventEnvelope: messages.NewSessionEvent(session),
			CommandKind:   kind,
			CommandID:     cmd.MessageID(),
			Error:         err.Error(),
			DurationMS:    durationMS,
		})
		return messages.Fail(cmd, err), nil
	}

	result = normalize(result, cmd)

	status := observability.StatusOK
	if !result.Success {
		status = observability.StatusError
	}
	if traced {
		attrs := map[string]any{
			"result_success":    result.Success,
			"execution_time_ms": durationMS,
		}
		if result.Error != "" {
			attrs["error"] = result.Error
		}
		b.endSpan(ctx, span, spanName, session, status, durationMS, attrs)
	}
	b.publishInternal(ctx, messages.CommandResultEvent{
		EventEnvelope: messages.NewSessionEvent(session),
		CommandKind:   kind,
		CommandID:     cmd.MessageID(),
		Success:       result.Success,
		Error:         result.Error,
		DurationMS:    durationMS,
	})

	return result, nil
}

// Publish appends the event to the dispatcher queue. The dispatcher journals
// the event and then delivers it to the handlers that were registered when
// Publish was called, in registration order, isolating each handler failure.
// Delivery is FIFO per publisher; Publish blocks only while the queue is
// full, or returns ctx.Err if the context expires first.
func (b *Bus) Publish(ctx context.Context, event messages.Event) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.state != StateStarted {
		return &LifecycleError{Op: "publish", State: b.state}
	}

	session := event.Session()
	if session == "" {
		session = SessionFromContext(ctx)
	}

	b.pending.Add(1)
	d := delivery{
		event:   event,
		session: session,
		entries: b.registry.Events(event.Kind()),
	}
	select {
	case b.queue <- d:
		return nil
	default:
	}

	// Queue full. Wait with a bound: a handler publishing from inside the
	// dispatcher would otherwise block the very goroutine that drains the
	// queue.
	timer := time.NewTimer(b.publishTimeout)
	defer timer.Stop()
	select {
	case b.queue <- d:
		return nil
	case <-ctx.Done():
		b.pending.Done()
		return ctx.Err()
	case <-timer.C:
		b.pending.Done()
		return fmt.Errorf("publish %q: %w after %s", event.Kind(), ErrQueueFull, b.publishTimeout)
	}
}

// Drain blocks until every event published so far has been journaled and
// delivered, or until ctx expires.
func (b *Bus) Drain(ctx context.Context) error {
	settled := make(chan struct{})
	go func() {
		b.pending.Wait()
		close(settled)
	}()

	select {
	case <-settled:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// EmitMetric publishes a single measurement as a MetricEvent.
func (b *Bus) EmitMetric(ctx context.Context, name string, value float64, unit string, tags map[string]string) error {
	return b.Publish(ctx, observability.MetricEvent{
		EventEnvelope: messages.NewSessionEvent(SessionFromContext(ctx)),
		Metrics:       []observability.Metric{{Name: name, Value: value, Unit: unit, Tags: tags}},
		Source:        "bus.emit_metric",
	})
}

// Log publishes a structured LogEvent. The record lands in the journal like
// any other event and reaches subscribers registered for the log kind.
func (b *Bus) Log(ctx context.Context, level observability.LogLevel, message string, fields map[string]any) error {
	return b.Publish(ctx, observability.LogEvent{
		EventEnvelope: messages.NewSessionEvent(SessionFromContext(ctx)),
		Level:         level,
		Message:       message,
		Context:       fields,
	})
}

// dispatch is the bus's delivery loop. It runs on a single goroutine, so the
// journal sees events in queue order and handlers for one event never run
// concurrently with handlers for the next.
func (b *Bus) dispatch() {
	defer close(b.done)

	for d := range b.queue {
		b.deliver(d)
		b.pending.Done()
	}
}

func (b *Bus) deliver(d delivery) {
	// Journal first: the audit trail covers every published event whether or
	// not anyone handles it.
	if err := b.journal.Write(d.event, d.session); err != nil {
		b.log.Error("journal write failed", slogx.Kind(d.event.Kind()), slogx.Error(err))
	}

	ctx := context.Background()
	if d.session != "" {
		ctx = WithSession(ctx, d.session)
	}

	for _, entry := range d.entries {
		b.invokeEvent(ctx, entry, d.event)
	}

	switch event := d.event.(type) {
	case observability.MetricEvent:
		if b.consoleMetrics {
			b.metrics.Report(event)
		}
	case observability.TraceEvent:
		if b.consoleTraces {
			b.traces.Report(event)
		}
	}
}

// invokeEvent runs one handler, trapping both error returns and panics so a
// misbehaving handler cannot block delivery to the handlers after it.
func (b *Bus) invokeEvent(ctx context.Context, entry registry.EventEntry, event messages.Event) {
	defer func() {
		if r := recover(); r != nil {
			b.log.Error("event handler panicked",
				slogx.Kind(entry.Kind),
				slogx.SessionID(entry.SessionID),
				slog.Any("panic", r),
			)
		}
	}()

	if err := entry.Handler(ctx, event); err != nil {
		b.log.Error("event handler failed",
			slogx.Kind(entry.Kind),
			slogx.SessionID(entry.SessionID),
			slogx.Error(err),
		)
	}
}

func (b *Bus) invokeCommand(ctx context.Context, handler registry.CommandHandler, cmd messages.Command) (result messages.CommandResult, stack string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
			stack = string(debug.Stack())
		}
	}()
	result, err = handler(ctx, cmd)
	return
}

func (b *Bus) endSpan(ctx context.Context, span observability.SpanContext, name, session, status string, durationMS float64, attrs map[string]any) {
	b.publishInternal(ctx, observability.TraceEvent{
		EventEnvelope: messages.NewSessionEvent(session),
		Name:          name,
		Span:          span,
		EndTime:       time.Now().Format(time.RFC3339Nano),
		DurationMS:    durationMS,
		Status:        status,
		Attributes:    attrs,
		Source:        "bus.execute",
	})
}

// publishInternal publishes bus-minted telemetry. A failure here means the
// bus stopped mid-flight; the event is dropped and noted, nothing more.
func (b *Bus) publishInternal(ctx context.Context, event messages.Event) {
	if err := b.Publish(ctx, event); err != nil {
		b.log.Debug("dropping internal event", slogx.Kind(event.Kind()), slogx.Error(err))
	}
}

// normalize stamps the command id on handler-built results and enforces the
// success/error exclusivity invariant at the bus boundary.
func normalize(result messages.CommandResult, cmd messages.Command) messages.CommandResult {
	if result.CommandID == uuid.Nil {
		result.CommandID = cmd.MessageID()
	}
	if result.Success {
		result.Error = ""
	} else {
		result.Result = nil
	}
	return result
}

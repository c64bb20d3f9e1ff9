// Package weft provides an in-process asynchronous message bus for
// applications built from independently developed components: conversation
// engines, tool executors, user interfaces, loggers. Every side effect that
// crosses a component boundary travels over the bus as either a Command
// (request/response, exactly one handler) or an Event (fire-and-forget, zero
// or more handlers).
//
// Key concepts:
//   - Bus: the runtime. It owns the handler registry, the JSONL journal, and
//     the dispatcher goroutine that delivers events in FIFO order per
//     publisher. Buses are constructed explicitly and passed around; there is
//     no process-wide instance, so tests can run isolated buses side by side.
//   - Commands: executed synchronously through Execute. A handler failure is
//     captured into the CommandResult and emitted as a CommandErrorEvent; it
//     never propagates to the caller as an error return.
//   - Events: published through Publish onto an internal queue. Each handler
//     failure is isolated: it is logged and the remaining handlers still run.
//   - Sessions: revocable registration groups. When a session ends, every
//     handler it registered is swept atomically and a SessionEndEvent is
//     published.
//   - Observability: built in and mandatory. Every published event lands as
//     one line in an append-only JSONL journal, every command execution is
//     wrapped in a trace span published as TraceEvents, and console
//     reporters can mirror metrics and traces live.
//
// Example usage:
//
//	bus, err := weft.New(weft.WithLogDir("logs"))
//	if err != nil {
//	    return err
//	}
//	if err := bus.Start(); err != nil {
//	    return err
//	}
//	defer bus.Stop()
//
//	weft.HandleCommand(bus, func(ctx context.Context, cmd Greet) (messages.CommandResult, error) {
//	    return messages.Succeed(cmd, "hello, "+cmd.Name), nil
//	})
//
//	result, err := bus.Execute(ctx, Greet{CommandEnvelope: messages.NewCommand(), Name: "World"})
//
// Handlers run inside the bus's delivery machinery and should not block for
// long stretches; a slow event handler delays every event queued behind it.
package weft

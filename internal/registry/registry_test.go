package registry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/weft-ai/weft/messages"
)

func commandHandler(tag string, calls *[]string) CommandHandler {
	return func(ctx context.Context, cmd messages.Command) (messages.CommandResult, error) {
		*calls = append(*calls, tag)
		return messages.CommandResult{Success: true}, nil
	}
}

func eventHandler(tag string, calls *[]string) EventHandler {
	return func(ctx context.Context, evt messages.Event) error {
		*calls = append(*calls, tag)
		return nil
	}
}

func TestAddCommand_DuplicateFailsFast(t *testing.T) {
	reg := New()
	var calls []string

	require.NoError(t, reg.AddCommand("greet", "", commandHandler("first", &calls)))

	err := reg.AddCommand("greet", "", commandHandler("second", &calls))
	var dup *DuplicateHandlerError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "greet", dup.Kind)

	// The first registration stays bound.
	entry, ok := reg.Command("greet")
	require.True(t, ok)
	_, _ = entry.Handler(context.Background(), nil)
	assert.Equal(t, []string{"first"}, calls)
}

func TestCommand_UnknownKind(t *testing.T) {
	reg := New()
	_, ok := reg.Command("missing")
	assert.False(t, ok)
}

func TestRemoveCommand(t *testing.T) {
	reg := New()
	var calls []string
	require.NoError(t, reg.AddCommand("greet", "", commandHandler("first", &calls)))

	reg.RemoveCommand("greet")
	reg.RemoveCommand("greet") // no-op when absent

	_, ok := reg.Command("greet")
	assert.False(t, ok)
}

func TestAddEvent_PreservesRegistrationOrder(t *testing.T) {
	reg := New()
	var calls []string

	reg.AddEvent("ping", "", eventHandler("a", &calls))
	reg.AddEvent("ping", "", eventHandler("b", &calls))
	reg.AddEvent("ping", "", eventHandler("c", &calls))

	for _, entry := range reg.Events("ping") {
		_ = entry.Handler(context.Background(), nil)
	}
	assert.Equal(t, []string{"a", "b", "c"}, calls)
}

func TestAddEvent_DuplicateHandlerInvokedTwice(t *testing.T) {
	reg := New()
	var calls []string
	handler := eventHandler("dup", &calls)

	reg.AddEvent("ping", "", handler)
	reg.AddEvent("ping", "", handler)

	entries := reg.Events("ping")
	require.Len(t, entries, 2)
	for _, entry := range entries {
		_ = entry.Handler(context.Background(), nil)
	}
	assert.Equal(t, []string{"dup", "dup"}, calls)
}

func TestRemoveEvent(t *testing.T) {
	reg := New()
	var calls []string

	keep := reg.AddEvent("ping", "", eventHandler("keep", &calls))
	drop := reg.AddEvent("ping", "", eventHandler("drop", &calls))

	reg.RemoveEvent("ping", drop)
	reg.RemoveEvent("ping", "unknown") // no-op
	reg.RemoveEvent("other", keep)     // no-op for unknown kind

	entries := reg.Events("ping")
	require.Len(t, entries, 1)
	assert.Equal(t, keep, entries[0].ID)
}

func TestEvents_EmptyForUnknownKind(t *testing.T) {
	reg := New()
	assert.Empty(t, reg.Events("nobody-home"))
}

func TestRemoveSession(t *testing.T) {
	reg := New()
	var calls []string

	require.NoError(t, reg.AddCommand("greet", "sess-1", commandHandler("cmd", &calls)))
	require.NoError(t, reg.AddCommand("farewell", "", commandHandler("global-cmd", &calls)))
	reg.AddEvent("ping", "sess-1", eventHandler("scoped", &calls))
	reg.AddEvent("ping", "", eventHandler("global", &calls))

	reg.RemoveSession("sess-1")

	_, ok := reg.Command("greet")
	assert.False(t, ok, "session command handlers are swept")
	_, ok = reg.Command("farewell")
	assert.True(t, ok, "global command handlers survive")

	entries := reg.Events("ping")
	require.Len(t, entries, 1)
	assert.Empty(t, entries[0].SessionID)
}

func TestRemoveSession_EmptyIDIsNoOp(t *testing.T) {
	reg := New()
	var calls []string
	require.NoError(t, reg.AddCommand("greet", "", commandHandler("cmd", &calls)))

	reg.RemoveSession("")

	_, ok := reg.Command("greet")
	assert.True(t, ok)
}

package observability

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/weft-ai/weft/messages"
)

type tickEvent struct {
	messages.EventEnvelope
	Sequence int `json:"sequence"`
}

func (tickEvent) Kind() string { return "tick" }

func TestOpenJournal_DerivesFilename(t *testing.T) {
	dir := t.TempDir()

	journal, err := OpenJournal(dir, "")
	require.NoError(t, err)
	defer journal.Close()

	base := filepath.Base(journal.Path())
	assert.True(t, strings.HasPrefix(base, "events_"), "derived name: %s", base)
	assert.True(t, strings.HasSuffix(base, ".jsonl"))
}

func TestOpenJournal_CreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "logs")

	journal, err := OpenJournal(dir, "bus.jsonl")
	require.NoError(t, err)
	defer journal.Close()

	_, err = os.Stat(dir)
	assert.NoError(t, err)
}

func TestJournal_WriteProducesOneLinePerEvent(t *testing.T) {
	journal, err := OpenJournal(t.TempDir(), "bus.jsonl")
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		require.NoError(t, journal.Write(tickEvent{EventEnvelope: messages.NewEvent(), Sequence: i}, ""))
	}
	require.NoError(t, journal.Close())

	records, err := ReadJournal(journal.Path())
	require.NoError(t, err)
	require.Len(t, records, 3)

	for i, record := range records {
		assert.Equal(t, "tick", record.Get("event_type").String())
		assert.Equal(t, int64(i), record.Get("sequence").Int(), "records keep write order")
		assert.True(t, record.Get("id").Exists())
		assert.True(t, record.Get("timestamp").Exists())
	}
}

func TestJournal_SessionStamping(t *testing.T) {
	journal, err := OpenJournal(t.TempDir(), "bus.jsonl")
	require.NoError(t, err)

	require.NoError(t, journal.Write(tickEvent{EventEnvelope: messages.NewEvent()}, ""))
	require.NoError(t, journal.Write(tickEvent{EventEnvelope: messages.NewSessionEvent("sess-1")}, ""))
	require.NoError(t, journal.Write(tickEvent{EventEnvelope: messages.NewEvent()}, "sess-2"))
	require.NoError(t, journal.Write(tickEvent{EventEnvelope: messages.NewSessionEvent("sess-1")}, "sess-2"))
	require.NoError(t, journal.Close())

	records, err := ReadJournal(journal.Path())
	require.NoError(t, err)
	require.Len(t, records, 4)

	assert.Equal(t, "global", records[0].Get("session_id").String())
	assert.Equal(t, "sess-1", records[1].Get("session_id").String())
	assert.Equal(t, "sess-2", records[2].Get("session_id").String(), "bus-resolved session applies when the envelope has none")
	assert.Equal(t, "sess-1", records[3].Get("session_id").String(), "the envelope's own session wins")
}

func TestJournal_WriteAfterClose(t *testing.T) {
	journal, err := OpenJournal(t.TempDir(), "bus.jsonl")
	require.NoError(t, err)
	require.NoError(t, journal.Close())
	require.NoError(t, journal.Close(), "close is idempotent")

	err = journal.Write(tickEvent{EventEnvelope: messages.NewEvent()}, "")
	assert.Error(t, err)
}

func TestReadJournal_RejectsCorruptLine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.jsonl")
	require.NoError(t, os.WriteFile(path, []byte("{\"ok\":true}\nnot json\n"), 0o644))

	_, err := ReadJournal(path)
	assert.ErrorContains(t, err, "line 2")
}

package observability

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	json "github.com/goccy/go-json"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
	"github.com/weft-ai/weft/messages"
)

// globalSession is recorded on journal lines for messages that carry no
// session id, so every line satisfies the viewer contract unconditionally.
const globalSession = "global"

// Journal is the append-only JSONL audit trail of a bus. Exactly one line is
// written per published event. Writes are flushed immediately, bounding data
// loss on crash to the record being written.
type Journal struct {
	mu   sync.Mutex
	path string
	file *os.File
	w    *bufio.Writer
}

// OpenJournal creates the log directory if needed and opens the journal file
// for appending. An empty filename derives one from the current time,
// events_20060102_150405.jsonl style, giving each bus lifetime its own file.
func OpenJournal(dir, filename string) (*Journal, error) {
	if dir == "" {
		dir = "logs"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create log directory %q: %w", dir, err)
	}
	if filename == "" {
		filename = "events_" + time.Now().Format("20060102_150405") + ".jsonl"
	}

	path := filepath.Join(dir, filename)
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open journal %q: %w", path, err)
	}

	return &Journal{
		path: path,
		file: file,
		w:    bufio.NewWriter(file),
	}, nil
}

// Path returns the location of the journal file.
func (j *Journal) Path() string { return j.path }

// Write appends one line for the given event. The session argument is the
// bus-resolved session id; it applies when the event's own envelope carries
// none. Serialization problems degrade to a stub record rather than losing
// the line: the trail stays append-only and complete even when a payload
// refuses to marshal.
func (j *Journal) Write(event messages.Event, session string) error {
	line := encodeRecord(event, session)

	j.mu.Lock()
	defer j.mu.Unlock()
	if j.file == nil {
		return fmt.Errorf("journal %q is closed", j.path)
	}
	if _, err := j.w.Write(line); err != nil {
		return fmt.Errorf("append journal record: %w", err)
	}
	if err := j.w.WriteByte('\n'); err != nil {
		return fmt.Errorf("append journal record: %w", err)
	}
	return j.w.Flush()
}

// Close flushes and closes the journal file. Idempotent.
func (j *Journal) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.file == nil {
		return nil
	}
	flushErr := j.w.Flush()
	closeErr := j.file.Close()
	j.file = nil
	if flushErr != nil {
		return flushErr
	}
	return closeErr
}

// encodeRecord renders an event as a self-contained journal line containing
// at minimum id, timestamp, event_type, and session_id alongside the
// type-specific payload fields.
func encodeRecord(event messages.Event, session string) []byte {
	payload, err := json.Marshal(event)
	if err != nil {
		payload = fallbackRecord(event, err)
	}

	if line, err := sjson.SetBytes(payload, "event_type", event.Kind()); err == nil {
		payload = line
	}

	resolved := event.Session()
	if resolved == "" {
		resolved = session
	}
	if resolved == "" {
		resolved = globalSession
	}
	if line, err := sjson.SetBytes(payload, "session_id", resolved); err == nil {
		payload = line
	}
	return bytes.TrimSpace(payload)
}

func fallbackRecord(event messages.Event, cause error) []byte {
	record := []byte(`{}`)
	record, _ = sjson.SetBytes(record, "id", event.MessageID().String())
	record, _ = sjson.SetBytes(record, "timestamp", event.OccurredAt().String())
	record, _ = sjson.SetBytes(record, "serialization_error", cause.Error())
	return record
}

// ReadJournal parses a journal file read-only, returning one result per
// line. Blank lines are skipped; an invalid line fails the read, since an
// append-only trail should never contain one.
func ReadJournal(path string) ([]gjson.Result, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read journal %q: %w", path, err)
	}

	var records []gjson.Result
	for i, line := range bytes.Split(raw, []byte{'\n'}) {
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}
		if !gjson.ValidBytes(line) {
			return nil, fmt.Errorf("journal %q: invalid record on line %d", path, i+1)
		}
		records = append(records, gjson.ParseBytes(line))
	}
	return records, nil
}

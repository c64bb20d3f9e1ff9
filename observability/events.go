package observability

import (
	"github.com/weft-ai/weft/messages"
	"github.com/weft-ai/weft/pkg/uuidx"
)

// Kinds of the observability events.
const (
	KindMetric = "metric"
	KindTrace  = "trace"
	KindLog    = "log"
)

// Span status values recorded on trace end events.
const (
	StatusOK    = "OK"
	StatusError = "ERROR"
)

// LogLevel grades LogEvent severity.
type LogLevel string

const (
	LevelDebug    LogLevel = "debug"
	LevelInfo     LogLevel = "info"
	LevelWarning  LogLevel = "warning"
	LevelError    LogLevel = "error"
	LevelCritical LogLevel = "critical"
)

// SpanContext identifies a span within a trace. ParentSpanID is empty for
// root spans.
type SpanContext struct {
	TraceID      string `json:"trace_id"`
	SpanID       string `json:"span_id"`
	ParentSpanID string `json:"parent_span_id,omitempty"`
}

// Root reports whether the span has no parent.
func (s SpanContext) Root() bool { return s.ParentSpanID == "" }

// NewSpan mints a span context. A nil parent starts a new trace; otherwise
// the trace id is inherited and the parent span id recorded.
func NewSpan(parent *SpanContext) SpanContext {
	span := SpanContext{SpanID: uuidx.NewString()}
	if parent == nil {
		span.TraceID = uuidx.NewString()
		return span
	}
	span.TraceID = parent.TraceID
	span.ParentSpanID = parent.SpanID
	return span
}

// Metric is a single measurement.
type Metric struct {
	Name  string            `json:"name"`
	Value float64           `json:"value"`
	Unit  string            `json:"unit,omitempty"`
	Tags  map[string]string `json:"tags,omitempty"`
}

// MetricEvent carries one or more measurements onto the bus.
type MetricEvent struct {
	messages.EventEnvelope
	Metrics []Metric `json:"metrics"`
	Source  string   `json:"source,omitempty"`
}

func (MetricEvent) Kind() string { return KindMetric }

// TraceEvent records one end of a span. A span produces two trace events:
// one with StartTime set and one with EndTime, Status, and DurationMS set.
type TraceEvent struct {
	messages.EventEnvelope
	Name       string         `json:"name"`
	Span       SpanContext    `json:"span_context"`
	StartTime  string         `json:"start_time,omitempty"`
	EndTime    string         `json:"end_time,omitempty"`
	DurationMS float64        `json:"duration_ms,omitempty"`
	Status     string         `json:"status,omitempty"`
	Attributes map[string]any `json:"attributes,omitempty"`
	Source     string         `json:"source,omitempty"`
}

func (TraceEvent) Kind() string { return KindTrace }

// Start reports whether the event marks the opening of its span.
func (t TraceEvent) Start() bool { return t.StartTime != "" && t.EndTime == "" }

// LogEvent is a structured log record published on the bus.
type LogEvent struct {
	messages.EventEnvelope
	Level   LogLevel       `json:"level"`
	Message string         `json:"message"`
	Context map[string]any `json:"context,omitempty"`
}

func (LogEvent) Kind() string { return KindLog }

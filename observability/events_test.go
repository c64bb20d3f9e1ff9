package observability

import (
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
	"github.com/weft-ai/weft/messages"
)

func TestNewSpan_Root(t *testing.T) {
	span := NewSpan(nil)

	assert.NotEmpty(t, span.TraceID)
	assert.NotEmpty(t, span.SpanID)
	assert.Empty(t, span.ParentSpanID)
	assert.True(t, span.Root())
}

func TestNewSpan_Child(t *testing.T) {
	parent := NewSpan(nil)
	child := NewSpan(&parent)

	assert.Equal(t, parent.TraceID, child.TraceID, "children stay in the parent's trace")
	assert.Equal(t, parent.SpanID, child.ParentSpanID)
	assert.NotEqual(t, parent.SpanID, child.SpanID)
	assert.False(t, child.Root())
}

func TestTraceEvent_Start(t *testing.T) {
	start := TraceEvent{StartTime: "2026-08-30T10:00:00Z"}
	end := TraceEvent{StartTime: "2026-08-30T10:00:00Z", EndTime: "2026-08-30T10:00:01Z"}

	assert.True(t, start.Start())
	assert.False(t, end.Start())
}

func TestTraceEvent_JSONShape(t *testing.T) {
	span := NewSpan(nil)
	event := TraceEvent{
		EventEnvelope: messages.NewEvent(),
		Name:          "greet",
		Span:          span,
		EndTime:       "2026-08-30T10:00:01Z",
		Status:        StatusOK,
		Attributes:    map[string]any{"command_id": "c-1"},
	}

	raw, err := json.Marshal(event)
	require.NoError(t, err)

	assert.Equal(t, span.TraceID, gjson.GetBytes(raw, "span_context.trace_id").String())
	assert.Equal(t, span.SpanID, gjson.GetBytes(raw, "span_context.span_id").String())
	assert.False(t, gjson.GetBytes(raw, "span_context.parent_span_id").Exists(), "root spans omit the parent id")
	assert.Equal(t, StatusOK, gjson.GetBytes(raw, "status").String())
	assert.Equal(t, "c-1", gjson.GetBytes(raw, "attributes.command_id").String())
}

func TestMetricEvent_JSONShape(t *testing.T) {
	event := MetricEvent{
		EventEnvelope: messages.NewEvent(),
		Metrics: []Metric{
			{Name: "command_execution_time", Value: 12.5, Unit: "ms", Tags: map[string]string{"command_type": "greet"}},
		},
		Source: "bus",
	}

	raw, err := json.Marshal(event)
	require.NoError(t, err)

	assert.Equal(t, "command_execution_time", gjson.GetBytes(raw, "metrics.0.name").String())
	assert.Equal(t, 12.5, gjson.GetBytes(raw, "metrics.0.value").Float())
	assert.Equal(t, "ms", gjson.GetBytes(raw, "metrics.0.unit").String())
	assert.Equal(t, "greet", gjson.GetBytes(raw, "metrics.0.tags.command_type").String())
}

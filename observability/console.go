package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

// MetricReporter renders metric events for a human console sink.
type MetricReporter struct {
	out   io.Writer
	label *color.Color
	value *color.Color
}

// NewMetricReporter returns a reporter writing to out.
func NewMetricReporter(out io.Writer) *MetricReporter {
	return &MetricReporter{
		out:   out,
		label: color.New(color.FgCyan, color.Bold),
		value: color.New(color.FgWhite),
	}
}

// Report prints one line per measurement: METRIC name=value unit tag=val.
// It never fails; rendering problems are swallowed.
func (r *MetricReporter) Report(event MetricEvent) {
	defer func() { _ = recover() }()

	for _, metric := range event.Metrics {
		parts := []string{fmt.Sprintf("%s=%v", metric.Name, metric.Value)}
		if metric.Unit != "" {
			parts = append(parts, metric.Unit)
		}
		for k, v := range metric.Tags {
			parts = append(parts, fmt.Sprintf("%s=%s", k, v))
		}

		_, _ = r.label.Fprint(r.out, "METRIC ")
		_, _ = r.value.Fprintln(r.out, strings.Join(parts, " "))
	}
}

// TraceReporter renders trace events for a human console sink.
type TraceReporter struct {
	out    io.Writer
	label  *color.Color
	okTint *color.Color
	bad    *color.Color
}

// NewTraceReporter returns a reporter writing to out.
func NewTraceReporter(out io.Writer) *TraceReporter {
	return &TraceReporter{
		out:    out,
		label:  color.New(color.FgMagenta, color.Bold),
		okTint: color.New(color.FgGreen),
		bad:    color.New(color.FgRed),
	}
}

// Report prints a one-line summary of a span boundary. It never fails.
func (r *TraceReporter) Report(event TraceEvent) {
	defer func() { _ = recover() }()

	ids := fmt.Sprintf("[trace=%s] [span=%s]", shortID(event.Span.TraceID), shortID(event.Span.SpanID))

	if event.Start() {
		_, _ = r.label.Fprint(r.out, "TRACE START ")
		_, _ = fmt.Fprintf(r.out, "%s %s\n", event.Name, ids)
		return
	}

	tint := r.okTint
	if event.Status != StatusOK {
		tint = r.bad
	}
	_, _ = r.label.Fprint(r.out, "TRACE END ")
	_, _ = fmt.Fprintf(r.out, "%s %s ", event.Name, ids)
	if event.DurationMS > 0 {
		_, _ = tint.Fprintf(r.out, "%s (%.2fms)\n", event.Status, event.DurationMS)
		return
	}
	_, _ = tint.Fprintln(r.out, event.Status)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

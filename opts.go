package weft

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/fogfish/opts"
)

// WithLogDir sets the directory the journal file is created in.
// Defaults to "logs".
func WithLogDir(dir string) opts.Option[Bus] {
	return opts.Type[Bus](func(b *Bus) error {
		b.logDir = dir
		return nil
	})
}

// WithLogFilename pins the journal filename instead of deriving a
// timestamped one.
func WithLogFilename(name string) opts.Option[Bus] {
	return opts.Type[Bus](func(b *Bus) error {
		b.logFilename = name
		return nil
	})
}

// WithConsoleMetrics toggles live rendering of MetricEvents to the metrics
// output. Disabled by default.
func WithConsoleMetrics(enabled bool) opts.Option[Bus] {
	return opts.Type[Bus](func(b *Bus) error {
		b.consoleMetrics = enabled
		return nil
	})
}

// WithConsoleTraces toggles live rendering of TraceEvents to the traces
// output. Disabled by default.
func WithConsoleTraces(enabled bool) opts.Option[Bus] {
	return opts.Type[Bus](func(b *Bus) error {
		b.consoleTraces = enabled
		return nil
	})
}

// WithMetricsOutput redirects console metric rendering, mainly for tests.
func WithMetricsOutput(out io.Writer) opts.Option[Bus] {
	return opts.Type[Bus](func(b *Bus) error {
		b.metricsOut = out
		return nil
	})
}

// WithTracesOutput redirects console trace rendering, mainly for tests.
func WithTracesOutput(out io.Writer) opts.Option[Bus] {
	return opts.Type[Bus](func(b *Bus) error {
		b.tracesOut = out
		return nil
	})
}

// WithQueueSize sets the dispatcher queue capacity.
func WithQueueSize(size int) opts.Option[Bus] {
	return opts.Type[Bus](func(b *Bus) error {
		if size <= 0 {
			return fmt.Errorf("queue size must be positive, got %d", size)
		}
		b.queueSize = size
		return nil
	})
}

// WithPublishTimeout bounds how long Publish waits on a full queue before
// giving up with ErrQueueFull.
func WithPublishTimeout(d time.Duration) opts.Option[Bus] {
	return opts.Type[Bus](func(b *Bus) error {
		if d <= 0 {
			return fmt.Errorf("publish timeout must be positive, got %s", d)
		}
		b.publishTimeout = d
		return nil
	})
}

// WithLogger sets the slog logger the bus reports its own operation with.
// This is the bus's diagnostic logging, separate from the event journal.
func WithLogger(log *slog.Logger) opts.Option[Bus] {
	return opts.Type[Bus](func(b *Bus) error {
		b.log = log
		return nil
	})
}

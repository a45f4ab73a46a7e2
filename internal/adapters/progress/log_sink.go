package progress

import (
	"context"
	"log/slog"

	"github.com/trebuchet-org/weekvote/internal/usecase"
)

// LogSink turns progress events into debug log records. The scheduler uses it
// since nobody watches a spinner in a long-running process.
type LogSink struct {
	log *slog.Logger
}

// NewLogSink creates a sink logging to log
func NewLogSink(log *slog.Logger) *LogSink {
	return &LogSink{log: log.With("component", "progress")}
}

func (s *LogSink) OnProgress(ctx context.Context, event usecase.ProgressEvent) {
	s.log.DebugContext(ctx, event.Message, "stage", event.Stage, "current", event.Current, "total", event.Total)
}

func (s *LogSink) Info(message string) {
	s.log.Info(message)
}

func (s *LogSink) Error(message string) {
	s.log.Error(message)
}

var _ usecase.ProgressSink = (*LogSink)(nil)

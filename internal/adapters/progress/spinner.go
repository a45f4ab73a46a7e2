package progress

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/trebuchet-org/weekvote/internal/usecase"
)

// SpinnerSink shows progress events on a terminal spinner. When the output is
// not interactive it prints one line per stage instead.
type SpinnerSink struct {
	out         io.Writer
	interactive bool

	mu        sync.Mutex
	spinner   *spinner.Spinner
	lastStage string
	startTime time.Time
}

// NewSpinnerSink creates a spinner sink writing to out
func NewSpinnerSink(out io.Writer, interactive bool) *SpinnerSink {
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(out))
	s.HideCursor = false
	_ = s.Color("cyan", "bold")

	return &SpinnerSink{
		out:         out,
		interactive: interactive,
		spinner:     s,
		startTime:   time.Now(),
	}
}

// OnProgress handles progress events
func (s *SpinnerSink) OnProgress(ctx context.Context, event usecase.ProgressEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.interactive {
		if event.Message != "" && event.Stage != s.lastStage {
			fmt.Fprintln(s.out, event.Message)
		}
		s.lastStage = event.Stage
		return
	}
	s.lastStage = event.Stage

	if event.Spinner {
		msg := event.Message
		if event.Total > 0 && event.Current > 0 {
			msg = fmt.Sprintf("[%d/%d] %s", event.Current, event.Total, msg)
		}
		s.spinner.Suffix = " " + msg
		if !s.spinner.Active() {
			s.spinner.Start()
		}
		return
	}
	if s.spinner.Active() {
		s.spinner.Stop()
	}

	if event.Stage == "complete" {
		color.New(color.FgGreen).Fprintf(s.out, "✓ %s in %s\n", event.Message, time.Since(s.startTime).Round(time.Millisecond))
	}
}

// Info prints an info message
func (s *SpinnerSink) Info(message string) {
	s.print(color.New(color.FgCyan), message)
}

// Error prints an error message
func (s *SpinnerSink) Error(message string) {
	s.print(color.New(color.FgRed), message)
}

// Stop clears the spinner line
func (s *SpinnerSink) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.spinner.Active() {
		s.spinner.Stop()
	}
}

func (s *SpinnerSink) print(c *color.Color, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Stop spinner temporarily
	wasActive := s.spinner.Active()
	if wasActive {
		s.spinner.Stop()
	}

	c.Fprintln(s.out, message)

	if wasActive {
		s.spinner.Start()
	}
}

var _ usecase.ProgressSink = (*SpinnerSink)(nil)

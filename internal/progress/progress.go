// Package progress renders commit traversal progress on a terminal.
package progress

import (
	"io"
	"time"

	"github.com/jedib0t/go-pretty/v6/progress"

	"github.com/metaconscious/CodeModificationAnalyzer/internal/contract"
)

// DefaultMessage labels the commit traversal tracker.
const DefaultMessage = "Processing commits"

// Bar is a contract.ProgressReporter backed by a go-pretty progress writer.
type Bar struct {
	out     io.Writer
	message string
	writer  progress.Writer
	tracker *progress.Tracker
}

var _ contract.ProgressReporter = &Bar{} // Compile-time check

// NewBar returns a bar that renders to out once Start is called.
func NewBar(out io.Writer, message string) *Bar {
	if message == "" {
		message = DefaultMessage
	}
	return &Bar{out: out, message: message}
}

// Start implements the ProgressReporter interface. A total of zero renders an
// indeterminate tracker.
func (b *Bar) Start(total int) {
	pw := progress.NewWriter()
	pw.SetOutputWriter(b.out)
	pw.SetAutoStop(false)
	pw.SetTrackerLength(30)
	pw.SetStyle(progress.StyleDefault)
	pw.SetUpdateFrequency(100 * time.Millisecond)
	pw.Style().Visibility.ETA = true
	pw.Style().Visibility.Percentage = total > 0

	b.tracker = &progress.Tracker{Message: b.message, Total: int64(total), Units: progress.UnitsDefault}
	pw.AppendTracker(b.tracker)
	b.writer = pw
	go pw.Render()
	// Stop is ignored until rendering has begun.
	for !pw.IsRenderInProgress() {
		time.Sleep(time.Millisecond)
	}
}

// Increment implements the ProgressReporter interface.
func (b *Bar) Increment() {
	if b.tracker != nil {
		b.tracker.Increment(1)
	}
}

// Done implements the ProgressReporter interface and waits for the final render.
func (b *Bar) Done() {
	if b.writer == nil {
		return
	}
	b.tracker.MarkAsDone()
	b.writer.Stop()
	for b.writer.IsRenderInProgress() {
		time.Sleep(time.Millisecond)
	}
	b.writer, b.tracker = nil, nil
}

// Noop discards progress.
type Noop struct{}

var _ contract.ProgressReporter = Noop{} // Compile-time check

// Start implements the ProgressReporter interface.
func (Noop) Start(int) {}

// Increment implements the ProgressReporter interface.
func (Noop) Increment() {}

// Done implements the ProgressReporter interface.
func (Noop) Done() {}

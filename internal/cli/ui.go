//go:generate mockgen -source=ui.go -destination=mocks/mock_ui.go -package=mocks

package cli

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/briandowns/spinner"

	"github.com/agbru/funnelcalc/internal/funnel"
	"github.com/agbru/funnelcalc/internal/orchestration"
	"github.com/agbru/funnelcalc/internal/ui"
)

// SpinnerRefreshRate defines the refresh frequency of the spinner.
const SpinnerRefreshRate = 200 * time.Millisecond

// Spinner is an interface that abstracts the behavior of a terminal spinner.
// It decouples the watch and batch displays from a specific spinner
// implementation, which keeps them testable.
type Spinner interface {
	// Start begins the spinner animation.
	Start()
	// Stop halts the spinner animation.
	Stop()
	// UpdateSuffix sets the text that is displayed after the spinner.
	UpdateSuffix(suffix string)
}

// realSpinner adapts spinner.Spinner to the Spinner interface.
type realSpinner struct {
	s *spinner.Spinner
}

// Start begins the spinner animation.
func (rs *realSpinner) Start() {
	rs.s.Start()
}

// Stop halts the spinner animation.
func (rs *realSpinner) Stop() {
	rs.s.Stop()
}

// UpdateSuffix sets the text that is displayed after the spinner.
func (rs *realSpinner) UpdateSuffix(suffix string) {
	rs.s.Lock()
	rs.s.Suffix = suffix
	rs.s.Unlock()
}

var newSpinner = func(options ...spinner.Option) Spinner {
	s := spinner.New(spinner.CharSets[11], SpinnerRefreshRate, options...)
	return &realSpinner{s}
}

// WatchDisplay prints a fresh report every time the watched plan changes and
// keeps a spinner running while it waits for the next change.
type WatchDisplay struct {
	mu      sync.Mutex
	out     io.Writer
	path    string
	details bool
	spinner Spinner
	running bool
}

// NewWatchDisplay creates a display for the plan file at path.
func NewWatchDisplay(out io.Writer, path string, details bool) *WatchDisplay {
	return newWatchDisplay(out, path, details, newSpinner(spinner.WithWriter(out)))
}

func newWatchDisplay(out io.Writer, path string, details bool, s Spinner) *WatchDisplay {
	return &WatchDisplay{out: out, path: path, details: details, spinner: s}
}

// Show replaces the spinner with the report of the latest plan, or with the
// validation error, then resumes waiting.
func (w *WatchDisplay) Show(report funnel.Report, err error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.running {
		w.spinner.Stop()
		w.running = false
	}

	fmt.Fprintf(w.out, "\n%s[%s]%s %s\n", ui.ColorMuted(), time.Now().Format(time.TimeOnly), ui.ColorReset(), w.path)
	if err != nil {
		DisplayError(w.out, err)
	} else {
		DisplayReport(w.out, report, w.details)
	}

	w.spinner.UpdateSuffix(fmt.Sprintf(" waiting for changes to %s (Ctrl+C to quit)", w.path))
	w.spinner.Start()
	w.running = true
}

// Stop halts the spinner. Show may not be called afterwards.
func (w *WatchDisplay) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		w.spinner.Stop()
		w.running = false
	}
}

// CLIProgressReporter implements orchestration.ProgressReporter with a
// spinner showing how many plans of the batch are done.
type CLIProgressReporter struct{}

// Verify that CLIProgressReporter implements orchestration.ProgressReporter.
var _ orchestration.ProgressReporter = CLIProgressReporter{}

// DisplayProgress shows a spinner until progressChan is closed.
func (CLIProgressReporter) DisplayProgress(wg *sync.WaitGroup, progressChan <-chan orchestration.ProgressUpdate, total int, out io.Writer) {
	displayProgress(wg, progressChan, total, newSpinner(spinner.WithWriter(out)))
}

func displayProgress(wg *sync.WaitGroup, progressChan <-chan orchestration.ProgressUpdate, total int, s Spinner) {
	defer wg.Done()
	s.UpdateSuffix(fmt.Sprintf(" Computing plans 0/%d", total))
	s.Start()
	defer s.Stop()

	for update := range progressChan {
		s.UpdateSuffix(fmt.Sprintf(" Computing plans %d/%d (%.0f%%)", update.Done, total, update.Fraction(total)*100))
	}
}

package orchestration

import (
	"io"
	"sync"
	"time"

	"github.com/agbru/funnelcalc/internal/funnel"
)

// PlanResult encapsulates the outcome of a single plan in a batch.
// It is the shared domain type between orchestration and presentation layers.
type PlanResult struct {
	// Name identifies the plan (from the plans file, or "plan-N").
	Name string
	// Input is the resolved input the plan was computed from.
	Input funnel.Input
	// Report is the projection. It is the zero value if Err is set.
	Report funnel.Report
	// Duration is the time taken to compute the plan.
	Duration time.Duration
	// Err is the validation or cancellation error of the plan, if any.
	Err error
}

// ProgressReporter displays batch progress. DisplayProgress is run in its
// own goroutine and must call wg.Done once progressChan is closed.
type ProgressReporter interface {
	DisplayProgress(wg *sync.WaitGroup, progressChan <-chan ProgressUpdate, total int, out io.Writer)
}

// ProgressReporterFunc is a function adapter that implements ProgressReporter.
type ProgressReporterFunc func(wg *sync.WaitGroup, progressChan <-chan ProgressUpdate, total int, out io.Writer)

// DisplayProgress calls the underlying function.
func (f ProgressReporterFunc) DisplayProgress(wg *sync.WaitGroup, progressChan <-chan ProgressUpdate, total int, out io.Writer) {
	f(wg, progressChan, total, out)
}

// NullProgressReporter drains the progress channel without displaying
// anything. Used in quiet mode, for machine-readable formats and in tests.
type NullProgressReporter struct{}

// DisplayProgress drains the channel without output.
func (NullProgressReporter) DisplayProgress(wg *sync.WaitGroup, progressChan <-chan ProgressUpdate, _ int, _ io.Writer) {
	defer wg.Done()
	DrainChannel(progressChan)
}

// ResultPresenter presents batch results. Implementations choose the layout;
// the orchestration layer only decides what is shown and the exit code.
type ResultPresenter interface {
	// PresentPlanTable displays one summary row per plan, in input order.
	PresentPlanTable(results []PlanResult, out io.Writer)

	// PresentReport displays the full report of a single successful plan.
	PresentReport(result PlanResult, details bool, out io.Writer)
}

// ErrorHandler reports an error and maps it to an exit code.
type ErrorHandler interface {
	HandleError(err error, out io.Writer) int
}

package orchestration

import (
	"context"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/agbru/funnelcalc/internal/config"
	apperrors "github.com/agbru/funnelcalc/internal/errors"
	"github.com/agbru/funnelcalc/internal/funnel"
)

// ExecutePlans computes every plan with at most limit plans in flight.
//
// Results keep the order of plans. A plan that fails validation records its
// error in the result and does not stop the others. Plans not yet started
// when ctx is done record the context error, and ExecutePlans returns it.
//
// Parameters:
//   - ctx: The context for managing cancellation and deadlines.
//   - calc: The calculator applied to each plan.
//   - plans: The named inputs to compute.
//   - limit: The maximum number of concurrent computations (values < 1 mean 1).
//   - progressReporter: Displays completion progress (use NullProgressReporter to disable).
//   - out: The io.Writer for progress output.
//
// Returns:
//   - []PlanResult: One result per plan, in input order.
//   - error: The context error if the batch was interrupted.
func ExecutePlans(ctx context.Context, calc funnel.Calculator, plans []config.Plan, limit int, progressReporter ProgressReporter, out io.Writer) ([]PlanResult, error) {
	if limit < 1 {
		limit = 1
	}
	results := make([]PlanResult, len(plans))
	progressChan := make(chan ProgressUpdate, len(plans))

	var displayWg sync.WaitGroup
	displayWg.Add(1)
	go progressReporter.DisplayProgress(&displayWg, progressChan, len(plans), out)

	var g errgroup.Group
	g.SetLimit(limit)
	var done atomic.Int64

	for i, plan := range plans {
		i, plan := i, plan
		g.Go(func() error {
			res := PlanResult{Name: plan.Name, Input: plan.Input}
			if err := ctx.Err(); err != nil {
				res.Err = err
			} else {
				start := time.Now()
				res.Report, res.Err = calc.Compute(plan.Input)
				res.Duration = time.Since(start)
			}
			results[i] = res
			progressChan <- ProgressUpdate{Index: i, Name: plan.Name, Done: int(done.Add(1)), Failed: res.Err != nil}
			return nil
		})
	}

	_ = g.Wait()
	close(progressChan)
	displayWg.Wait()

	return results, ctx.Err()
}

// AnalyzePlanResults presents a batch and derives the exit code.
//
// The plan table is always shown. With details, the full report of every
// successful plan follows. If no plan succeeded, the first error is handed
// to the error handler, whose exit code is returned.
//
// Parameters:
//   - results: The batch results, in input order.
//   - details: Whether to present the full report of each plan.
//   - presenter: The result presenter for display formatting.
//   - errHandler: Maps the failure of a fully failed batch to an exit code.
//   - out: The io.Writer for the summary report.
//
// Returns:
//   - int: An exit code indicating success (0) or the type of failure.
func AnalyzePlanResults(results []PlanResult, details bool, presenter ResultPresenter, errHandler ErrorHandler, out io.Writer) int {
	var firstError error
	successCount := 0
	for _, res := range results {
		if res.Err != nil {
			if firstError == nil {
				firstError = res.Err
			}
			continue
		}
		successCount++
	}

	presenter.PresentPlanTable(results, out)

	if len(results) == 0 {
		fmt.Fprintf(out, "\nGlobal Status: Failure. The batch contains no plans.\n")
		return apperrors.ExitErrorConfig
	}
	if successCount == 0 {
		fmt.Fprintf(out, "\nGlobal Status: Failure. No plan could be computed.\n")
		return errHandler.HandleError(firstError, out)
	}

	if successCount < len(results) {
		fmt.Fprintf(out, "\nGlobal Status: Partial. %d of %d plans computed.\n", successCount, len(results))
	} else {
		fmt.Fprintf(out, "\nGlobal Status: Success. %d plans computed.\n", successCount)
	}

	if details {
		for _, res := range results {
			if res.Err == nil {
				presenter.PresentReport(res, true, out)
			}
		}
	}
	return apperrors.ExitSuccess
}

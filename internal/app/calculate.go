package app

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/agbru/funnelcalc/internal/cli"
	"github.com/agbru/funnelcalc/internal/config"
	apperrors "github.com/agbru/funnelcalc/internal/errors"
	"github.com/agbru/funnelcalc/internal/funnel"
	"github.com/agbru/funnelcalc/internal/logging"
	"github.com/agbru/funnelcalc/internal/orchestration"
	"github.com/agbru/funnelcalc/internal/ui"
)

// checkedCalculator applies the form bounds before delegating, so plans read
// from files get the same budget and rate checks as flags.
func checkedCalculator(calc funnel.Calculator) funnel.Calculator {
	return funnel.CalculatorFunc(func(in funnel.Input) (funnel.Report, error) {
		if err := config.CheckInput(in); err != nil {
			return funnel.Report{}, err
		}
		return calc.Compute(in)
	})
}

// runCalculate computes the configured input once and displays it.
func (a *Application) runCalculate(out io.Writer) int {
	report, err := a.Calculator.Compute(a.Config.Input)
	if err != nil {
		cli.DisplayError(a.ErrWriter, err)
		return apperrors.ExitCodeFor(err)
	}

	if err := cli.DisplayReportWithConfig(out, report, a.outputConfig()); err != nil {
		cli.DisplayError(a.ErrWriter, err)
		return apperrors.ExitErrorGeneric
	}
	return apperrors.ExitSuccess
}

func (a *Application) outputConfig() cli.OutputConfig {
	return cli.OutputConfig{
		Format:     a.Config.Format,
		OutputFile: a.Config.OutputFile,
		Quiet:      a.Config.Quiet,
		Details:    a.Config.Details,
	}
}

// runBatch computes every plan of the batch file within the configured
// timeout.
func (a *Application) runBatch(ctx context.Context, out io.Writer) int {
	plans, err := config.LoadPlans(a.Config.BatchFile, a.Config.Input)
	if err != nil {
		cli.DisplayError(a.ErrWriter, apperrors.WrapError(err, "batch %s", a.Config.BatchFile))
		return apperrors.ExitErrorConfig
	}

	ctx, cancelTimeout := context.WithTimeout(ctx, a.Config.Timeout)
	defer cancelTimeout()

	textOutput := a.Config.Format == config.DefaultFormat && !a.Config.Quiet
	var progressReporter orchestration.ProgressReporter = orchestration.NullProgressReporter{}
	progressOut := io.Discard
	if textOutput {
		progressReporter = cli.CLIProgressReporter{}
		progressOut = out
	}

	a.Logger.Debug("batch started",
		logging.String("file", a.Config.BatchFile),
		logging.Int("plans", len(plans)),
		logging.Int("concurrency", a.Config.Concurrency))

	results, err := orchestration.ExecutePlans(ctx, checkedCalculator(a.Calculator), plans, a.Config.Concurrency, progressReporter, progressOut)
	if apperrors.IsContextError(err) {
		if errors.Is(err, context.DeadlineExceeded) {
			err = apperrors.TimeoutError{Operation: "batch", Limit: a.Config.Timeout}
		}
		a.Logger.Error("batch interrupted", err, logging.String("file", a.Config.BatchFile))
		cli.DisplayError(a.ErrWriter, err)
		return apperrors.ExitCodeFor(err)
	}

	var exitCode int
	switch {
	case a.Config.Quiet:
		for _, res := range results {
			if res.Err != nil {
				fmt.Fprintf(out, "%s error: %v\n", res.Name, res.Err)
				continue
			}
			fmt.Fprintf(out, "%s %s\n", res.Name, cli.FormatQuietReport(res.Report))
		}
		exitCode = batchExitCode(results)
	case textOutput:
		exitCode = orchestration.AnalyzePlanResults(results, a.Config.Details, cli.CLIResultPresenter{}, cli.CLIResultPresenter{}, out)
	default:
		if err := cli.WritePlanResults(out, results, a.Config.Format); err != nil {
			cli.DisplayError(a.ErrWriter, err)
			return apperrors.ExitErrorGeneric
		}
		exitCode = batchExitCode(results)
	}

	if a.Config.OutputFile != "" {
		if err := cli.WritePlanResultsToFile(a.Config.OutputFile, results, a.Config.Format); err != nil {
			cli.DisplayError(a.ErrWriter, err)
			return apperrors.ExitErrorGeneric
		}
		if textOutput {
			fmt.Fprintf(out, "\n%s✓ Results saved to: %s%s%s\n",
				ui.ScenarioColor(funnel.Optimistic), ui.ColorPrimary(), a.Config.OutputFile, ui.ColorReset())
		}
	}
	return exitCode
}

// batchExitCode mirrors the exit codes of AnalyzePlanResults for outputs
// that do not print the status lines.
func batchExitCode(results []orchestration.PlanResult) int {
	if len(results) == 0 {
		return apperrors.ExitErrorConfig
	}
	var firstErr error
	for _, res := range results {
		if res.Err == nil {
			return apperrors.ExitSuccess
		}
		if firstErr == nil {
			firstErr = res.Err
		}
	}
	return apperrors.ExitCodeFor(firstErr)
}

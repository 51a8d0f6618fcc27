package app

import (
	"context"
	"io"

	"github.com/agbru/funnelcalc/internal/cli"
	"github.com/agbru/funnelcalc/internal/config"
	apperrors "github.com/agbru/funnelcalc/internal/errors"
	"github.com/agbru/funnelcalc/internal/logging"
	"github.com/agbru/funnelcalc/internal/server"
)

// runWatch shows the report of the -config plan and recomputes it every time
// the file changes, until ctx is canceled.
func (a *Application) runWatch(ctx context.Context, out io.Writer) int {
	calc := checkedCalculator(a.Calculator)
	display := cli.NewWatchDisplay(out, a.Config.ConfigFile, a.Config.Details)
	defer display.Stop()

	display.Show(calc.Compute(a.Config.Input))

	err := config.Watch(ctx, a.Config.ConfigFile, a.Logger, func(plan config.PlanFile) {
		in := plan.Merge(a.Config.Input, a.Config.Pinned)
		a.Logger.Debug("plan reloaded", logging.String("file", a.Config.ConfigFile))
		display.Show(calc.Compute(in))
	})
	if err != nil {
		a.Logger.Error("watch failed", err, logging.String("file", a.Config.ConfigFile))
		return apperrors.ExitErrorGeneric
	}
	return apperrors.ExitSuccess
}

// runServer serves the HTTP API until ctx is canceled.
func (a *Application) runServer(ctx context.Context) int {
	srv := server.NewServer(a.Config.Serve, a.Calculator, a.Logger)
	if err := srv.ListenAndServe(ctx); err != nil {
		a.Logger.Error("server stopped", err, logging.String("addr", a.Config.Serve))
		return apperrors.ExitErrorGeneric
	}
	return apperrors.ExitSuccess
}

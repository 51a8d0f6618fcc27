package app

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/agbru/funnelcalc/internal/cli"
	"github.com/agbru/funnelcalc/internal/config"
	apperrors "github.com/agbru/funnelcalc/internal/errors"
	"github.com/agbru/funnelcalc/internal/funnel"
	"github.com/agbru/funnelcalc/internal/logging"
	"github.com/agbru/funnelcalc/internal/tui"
	"github.com/agbru/funnelcalc/internal/ui"
)

// DotEnvFile is loaded from the working directory before flags are parsed.
const DotEnvFile = ".env"

// Application represents the funnelcalc application instance.
type Application struct {
	Config     config.AppConfig
	Calculator funnel.Calculator
	Logger     logging.Logger
	ErrWriter  io.Writer
	Stdin      io.Reader
}

// AppOption configures an Application during construction.
type AppOption func(*Application)

// WithCalculator replaces the default calculator.
func WithCalculator(c funnel.Calculator) AppOption {
	return func(a *Application) { a.Calculator = c }
}

// WithLogger replaces the console logger built from the configuration.
func WithLogger(l logging.Logger) AppOption {
	return func(a *Application) { a.Logger = l }
}

// WithStdin sets the reader of the interactive prompt.
func WithStdin(r io.Reader) AppOption {
	return func(a *Application) { a.Stdin = r }
}

// New creates a new Application instance by parsing command-line arguments.
// args[0] is the program name.
func New(args []string, errWriter io.Writer, opts ...AppOption) (*Application, error) {
	app := &Application{ErrWriter: errWriter, Stdin: os.Stdin}
	for _, opt := range opts {
		opt(app)
	}
	if app.Calculator == nil {
		app.Calculator = funnel.Default
	}

	if err := config.LoadDotEnv(DotEnvFile); err != nil {
		return nil, apperrors.NewConfigError("load %s: %v", DotEnvFile, err)
	}

	programName := "funnelcalc"
	var cmdArgs []string
	if len(args) > 0 {
		programName = args[0]
		cmdArgs = args[1:]
	}

	cfg, err := config.ParseConfig(programName, cmdArgs, errWriter)
	if err != nil {
		return nil, err
	}
	app.Config = cfg

	if app.Logger == nil {
		app.Logger = logging.NewConsoleLogger(errWriter, "funnelcalc", cfg.NoColor)
	}
	return app, nil
}

// Run executes the application based on the configured mode.
func (a *Application) Run(ctx context.Context, out io.Writer) int {
	if a.Config.Completion != "" {
		return a.runCompletion(out)
	}

	level, err := logging.ParseLevel(a.Config.LogLevel)
	if err != nil {
		cli.DisplayError(a.ErrWriter, err)
		return apperrors.ExitErrorConfig
	}
	zerolog.SetGlobalLevel(level)
	ui.InitTheme(a.Config.NoColor)
	a.Logger.Debug("configuration resolved", logging.String("input", a.Config.String()))

	ctx, stopSignals := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stopSignals()

	switch {
	case a.Config.Serve != "":
		return a.runServer(ctx)
	case a.Config.BatchFile != "":
		return a.runBatch(ctx, out)
	case a.Config.Watch:
		return a.runWatch(ctx, out)
	case a.Config.TUI:
		return a.runTUI(ctx)
	case a.Config.Interactive:
		return a.runInteractive(out)
	default:
		return a.runCalculate(out)
	}
}

// runCompletion generates shell completion scripts.
func (a *Application) runCompletion(out io.Writer) int {
	if err := cli.GenerateCompletion(out, a.Config.Completion); err != nil {
		fmt.Fprintf(a.ErrWriter, "Error generating completion: %v\n", err)
		return apperrors.ExitErrorConfig
	}
	return apperrors.ExitSuccess
}

// runTUI launches the interactive form.
func (a *Application) runTUI(ctx context.Context) int {
	return tui.Run(ctx, a.Calculator, a.Config.Input, Version)
}

// runInteractive starts the line-oriented prompt.
func (a *Application) runInteractive(out io.Writer) int {
	repl := cli.NewREPL(a.Calculator, cli.REPLConfig{Initial: a.Config.Input, Details: a.Config.Details})
	repl.SetInput(a.Stdin)
	repl.SetOutput(out)
	repl.Start()
	return apperrors.ExitSuccess
}

// IsHelpError checks if the error is a help flag error (--help was used).
func IsHelpError(err error) bool {
	return errors.Is(err, flag.ErrHelp)
}

// StartupExitCode reports an error returned by New on w and returns the
// process exit code. Flag parse errors were already printed with the usage.
func StartupExitCode(err error, w io.Writer) int {
	if err == nil || IsHelpError(err) {
		return apperrors.ExitSuccess
	}
	var cfgErr apperrors.ConfigError
	if errors.As(err, &cfgErr) {
		cli.DisplayError(w, err)
	}
	return apperrors.ExitErrorConfig
}

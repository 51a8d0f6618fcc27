package config

import (
	"flag"
	"fmt"
	"io"
	"slices"
	"time"

	apperrors "github.com/agbru/funnelcalc/internal/errors"
	"github.com/agbru/funnelcalc/internal/funnel"
	"github.com/agbru/funnelcalc/internal/logging"
)

// EnvPrefix is prepended to every environment variable name.
const EnvPrefix = "FUNNELCALC_"

// Default input values, taken from the initial state of the input form.
const (
	DefaultDesiredRevenue = 150_000.00
	DefaultMediaBudget    = 25_000.00
	DefaultAverageTicket  = 247.90
	DefaultConversionRate = 4.00
)

const (
	DefaultFormat   = "text"
	DefaultTimeout  = time.Minute
	DefaultLogLevel = "info"
)

// Formats lists the accepted report formats.
var Formats = []string{"text", "json", "csv", "markdown", "html"}

// Shells lists the shells supported by -completion.
var Shells = []string{"bash", "zsh", "fish", "powershell"}

// AppConfig aggregates the application's configuration parameters.
type AppConfig struct {
	// Input holds the four funnel inputs.
	Input funnel.Input
	// Pinned records the input fields (by funnel.Field* key) set explicitly
	// through a flag or an environment variable. Plan files never override them.
	Pinned map[string]bool

	// ConfigFile is a YAML plan file providing input values.
	ConfigFile string
	// BatchFile is a YAML or CSV file listing several named plans.
	BatchFile string

	// Format selects the report format for stdout and -output.
	Format string
	// OutputFile, when set, receives a copy of the report.
	OutputFile string
	Quiet      bool
	Details    bool
	NoColor    bool

	TUI         bool
	Interactive bool
	Watch       bool
	// Serve is the listen address of the HTTP API; empty disables it.
	Serve string

	Completion  string
	LogLevel    string
	Concurrency int
	Timeout     time.Duration
}

// ParseConfig parses the command-line arguments, applies plan-file values and
// environment overrides, and validates the result.
//
// Priority: flags > FUNNELCALC_* environment variables > plan file > defaults.
//
// Parameters:
//   - programName: The name used in usage output.
//   - args: The arguments without the program name.
//   - errWriter: Receives usage and parse errors.
//
// Returns:
//   - AppConfig: The resolved configuration.
//   - error: flag.ErrHelp when -h was requested, a ConfigError otherwise.
func ParseConfig(programName string, args []string, errWriter io.Writer) (AppConfig, error) {
	fs := flag.NewFlagSet(programName, flag.ContinueOnError)
	fs.SetOutput(errWriter)

	cfg := AppConfig{Pinned: map[string]bool{}}
	fs.Float64Var(&cfg.Input.DesiredRevenue, "revenue", DefaultDesiredRevenue, "Desired revenue (currency units).")
	fs.Float64Var(&cfg.Input.MediaBudget, "budget", DefaultMediaBudget, "Media budget for paid traffic (currency units).")
	fs.Float64Var(&cfg.Input.AverageTicket, "ticket", DefaultAverageTicket, "Average ticket per sale (currency units).")
	fs.Float64Var(&cfg.Input.BaselineConversionRate, "rate", DefaultConversionRate, "Realistic lead-to-sale conversion rate in percent (0.1 to 100).")
	fs.StringVar(&cfg.ConfigFile, "config", "", "YAML plan file providing input values.")
	fs.StringVar(&cfg.BatchFile, "batch", "", "YAML or CSV file with several named plans to project.")
	fs.StringVar(&cfg.Format, "format", DefaultFormat, "Report format: text, json, csv, markdown, html.")
	fs.StringVar(&cfg.Format, "f", DefaultFormat, "Report format (shorthand).")
	fs.StringVar(&cfg.OutputFile, "output", "", "Also write the report to this file.")
	fs.StringVar(&cfg.OutputFile, "o", "", "Output file (shorthand).")
	fs.BoolVar(&cfg.Quiet, "quiet", false, "Print a single result line for scripts.")
	fs.BoolVar(&cfg.Quiet, "q", false, "Quiet mode (shorthand).")
	fs.BoolVar(&cfg.Details, "details", false, "Show the detailed scenario table.")
	fs.BoolVar(&cfg.Details, "d", false, "Show details (shorthand).")
	fs.BoolVar(&cfg.NoColor, "no-color", false, "Disable colored output.")
	fs.BoolVar(&cfg.TUI, "tui", false, "Launch the interactive dashboard.")
	fs.BoolVar(&cfg.Interactive, "interactive", false, "Start the interactive prompt.")
	fs.BoolVar(&cfg.Interactive, "i", false, "Interactive prompt (shorthand).")
	fs.BoolVar(&cfg.Watch, "watch", false, "Recompute whenever the -config file changes.")
	fs.BoolVar(&cfg.Watch, "w", false, "Watch mode (shorthand).")
	fs.StringVar(&cfg.Serve, "serve", "", "Serve the HTTP API on this address (e.g. :8080).")
	fs.StringVar(&cfg.Completion, "completion", "", "Generate a completion script: bash, zsh, fish, powershell.")
	fs.StringVar(&cfg.LogLevel, "log-level", DefaultLogLevel, "Log level: debug, info, warn, error.")
	fs.IntVar(&cfg.Concurrency, "concurrency", 4, "Maximum plans computed concurrently in batch mode.")
	fs.DurationVar(&cfg.Timeout, "timeout", DefaultTimeout, "Maximum duration of a batch run.")

	if err := fs.Parse(args); err != nil {
		return AppConfig{}, err
	}
	if fs.NArg() > 0 {
		return AppConfig{}, apperrors.NewConfigError("unexpected arguments: %v", fs.Args())
	}

	for _, f := range InputFields {
		if isFlagSet(fs, f.Flag) {
			cfg.Pinned[f.Key] = true
		}
	}

	if !isFlagSet(fs, "config") {
		cfg.ConfigFile = getEnvString("CONFIG", cfg.ConfigFile)
	}
	applyEnvOverrides(&cfg, fs)

	if cfg.ConfigFile != "" {
		plan, err := LoadPlan(cfg.ConfigFile)
		if err != nil {
			return AppConfig{}, apperrors.NewConfigError("%v", err)
		}
		cfg.Input = plan.Merge(cfg.Input, cfg.Pinned)
	}

	if err := cfg.Validate(); err != nil {
		return AppConfig{}, err
	}
	return cfg, nil
}

// Validate checks the constraints owned by the caller rather than the
// calculator: a non-negative budget, a conversion rate within the form
// bounds, and consistent mode flags. Revenue and ticket are left to the
// calculator, which rejects them with InvalidInput.
func (c AppConfig) Validate() error {
	if err := CheckInput(c.Input); err != nil {
		return err
	}
	if !slices.Contains(Formats, c.Format) {
		return apperrors.NewConfigError("unknown format %q (accepted values: %v)", c.Format, Formats)
	}
	if c.Completion != "" && !slices.Contains(Shells, c.Completion) {
		return apperrors.NewConfigError("unsupported shell %q (accepted values: %v)", c.Completion, Shells)
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return apperrors.NewConfigError("%v", err)
	}
	if c.Concurrency < 1 {
		return apperrors.NewConfigError("concurrency must be >= 1, got %d", c.Concurrency)
	}
	if c.Timeout <= 0 {
		return apperrors.NewConfigError("timeout must be positive, got %s", c.Timeout)
	}
	if c.Watch && c.ConfigFile == "" {
		return apperrors.NewConfigError("-watch requires -config")
	}

	modes := 0
	for _, on := range []bool{c.TUI, c.Interactive, c.Watch, c.Serve != "", c.BatchFile != ""} {
		if on {
			modes++
		}
	}
	if modes > 1 {
		return apperrors.NewConfigError("-tui, -interactive, -watch, -serve and -batch are mutually exclusive")
	}
	return nil
}

// String summarizes the inputs for log lines.
func (c AppConfig) String() string {
	return fmt.Sprintf("revenue=%.2f budget=%.2f ticket=%.2f rate=%.2f",
		c.Input.DesiredRevenue, c.Input.MediaBudget, c.Input.AverageTicket, c.Input.BaselineConversionRate)
}

package app

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	apperrors "github.com/agbru/funnelcalc/internal/errors"
	"github.com/agbru/funnelcalc/internal/funnel"
	"github.com/agbru/funnelcalc/internal/logging"
	"github.com/agbru/funnelcalc/internal/orchestration"
)

// nopLogger discards everything.
type nopLogger struct{}

func (nopLogger) Info(string, ...logging.Field)         {}
func (nopLogger) Error(string, error, ...logging.Field) {}
func (nopLogger) Debug(string, ...logging.Field)        {}
func (nopLogger) Printf(string, ...any)                 {}
func (nopLogger) Println(...any)                        {}

// run builds the application from args and runs it, returning the exit code
// with stdout and stderr.
func run(t *testing.T, ctx context.Context, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	application, err := New(append([]string{"funnelcalc", "-no-color"}, args...), &stderr, WithLogger(nopLogger{}))
	if err != nil {
		return StartupExitCode(err, &stderr), stdout.String(), stderr.String()
	}
	code := application.Run(ctx, &stdout)
	return code, stdout.String(), stderr.String()
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestNew_Defaults(t *testing.T) {
	application, err := New([]string{"funnelcalc"}, &bytes.Buffer{})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	want := funnel.Input{DesiredRevenue: 150000, MediaBudget: 25000, AverageTicket: 247.90, BaselineConversionRate: 4}
	if application.Config.Input != want {
		t.Errorf("Input = %+v, want %+v", application.Config.Input, want)
	}
	if application.Calculator == nil || application.Logger == nil || application.Stdin == nil {
		t.Error("New() should fill in the calculator, logger and stdin")
	}
}

func TestNew_CustomCalculator(t *testing.T) {
	called := false
	calc := funnel.CalculatorFunc(func(in funnel.Input) (funnel.Report, error) {
		called = true
		return funnel.Compute(in)
	})
	application, err := New([]string{"funnelcalc", "-q"}, &bytes.Buffer{}, WithCalculator(calc), WithLogger(nopLogger{}))
	if err != nil {
		t.Fatal(err)
	}
	if code := application.Run(context.Background(), &bytes.Buffer{}); code != apperrors.ExitSuccess {
		t.Errorf("exit code = %d", code)
	}
	if !called {
		t.Error("custom calculator was not used")
	}
}

func TestStartupErrors(t *testing.T) {
	tests := []struct {
		name       string
		args       []string
		wantCode   int
		wantStderr string
	}{
		{"help", []string{"-h"}, apperrors.ExitSuccess, "-revenue"},
		{"unknown flag", []string{"-nope"}, apperrors.ExitErrorConfig, "flag provided but not defined"},
		{"rate out of range", []string{"-rate", "150"}, apperrors.ExitErrorConfig, "Error: baseline_conversion_rate must be between 0.1 and 100"},
		{"negative budget", []string{"-budget", "-1"}, apperrors.ExitErrorConfig, "Error: media_budget must be at least 0"},
		{"bad log level", []string{"-log-level", "loud"}, apperrors.ExitErrorConfig, "unknown log level"},
		{"two modes", []string{"-tui", "-interactive"}, apperrors.ExitErrorConfig, "mutually exclusive"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _, stderr := run(t, context.Background(), tt.args...)
			if code != tt.wantCode {
				t.Errorf("exit code = %d, want %d", code, tt.wantCode)
			}
			if !strings.Contains(stderr, tt.wantStderr) {
				t.Errorf("stderr = %q, want containing %q", stderr, tt.wantStderr)
			}
		})
	}
}

func TestIsHelpError(t *testing.T) {
	_, err := New([]string{"funnelcalc", "-help"}, &bytes.Buffer{})
	if !IsHelpError(err) {
		t.Errorf("IsHelpError(%v) = false", err)
	}
	if IsHelpError(errors.New("other")) {
		t.Error("IsHelpError(other) = true")
	}
}

func TestRun_Calculate(t *testing.T) {
	code, out, _ := run(t, context.Background())
	if code != apperrors.ExitSuccess {
		t.Fatalf("exit code = %d", code)
	}
	for _, want := range []string{"Realistic summary", "15.150", "R$ 1,65", "6,00x", "Pessimistic", "21.643", "Optimistic", "11.654"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q", want)
		}
	}
}

func TestRun_Quiet(t *testing.T) {
	code, out, _ := run(t, context.Background(), "-q")
	if code != apperrors.ExitSuccess {
		t.Fatalf("exit code = %d", code)
	}
	if out != "606 15150 1.65 6.00\n" {
		t.Errorf("quiet output = %q", out)
	}

	_, out, _ = run(t, context.Background(), "-q", "-budget", "0")
	if out != "606 15150 0.00 -\n" {
		t.Errorf("quiet output without budget = %q", out)
	}
}

func TestRun_InvalidInput(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{"zero ticket", []string{"-ticket", "0"}, "average_ticket must be positive"},
		{"ticket before revenue", []string{"-ticket", "0", "-revenue", "0"}, "average_ticket must be positive"},
		{"zero revenue", []string{"-revenue", "0"}, "desired_revenue must be positive"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, out, stderr := run(t, context.Background(), tt.args...)
			if code != apperrors.ExitErrorInvalidInput {
				t.Errorf("exit code = %d, want %d", code, apperrors.ExitErrorInvalidInput)
			}
			if !strings.Contains(stderr, "Error: "+tt.wantErr) {
				t.Errorf("stderr = %q", stderr)
			}
			if out != "" {
				t.Errorf("no report expected, got %q", out)
			}
		})
	}
}

func TestRun_JSONAndOutputFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reports", "plan.json")
	code, out, _ := run(t, context.Background(), "-format", "json", "-o", path)
	if code != apperrors.ExitSuccess {
		t.Fatalf("exit code = %d", code)
	}
	jsonPart := out[:strings.LastIndex(out, "}")+1]
	var report funnel.Report
	if err := json.Unmarshal([]byte(jsonPart), &report); err != nil {
		t.Fatalf("stdout is not a JSON report: %v", err)
	}
	if report.Summary.RequiredSales != 606 {
		t.Errorf("sales = %d", report.Summary.RequiredSales)
	}
	if !strings.Contains(out, "Report saved to: "+path) {
		t.Errorf("missing save notice in %q", out)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("output file: %v", err)
	}
	if !strings.Contains(string(data), `"required_leads": 15150`) {
		t.Errorf("file content = %s", data)
	}
}

const batchYAML = `plans:
  - name: base
  - name: premium
    average_ticket: 495.8
  - name: broken
    average_ticket: 0
`

func TestRun_Batch(t *testing.T) {
	path := writeFile(t, "plans.yaml", batchYAML)
	code, out, _ := run(t, context.Background(), "-batch", path)
	if code != apperrors.ExitSuccess {
		t.Fatalf("exit code = %d\n%s", code, out)
	}
	for _, want := range []string{"Batch Summary", "base", "premium", "broken", "average_ticket must be positive", "Global Status: Partial. 2 of 3 plans computed."} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q", want)
		}
	}
}

func TestRun_BatchQuiet(t *testing.T) {
	path := writeFile(t, "plans.yaml", batchYAML)
	code, out, _ := run(t, context.Background(), "-batch", path, "-q")
	if code != apperrors.ExitSuccess {
		t.Fatalf("exit code = %d", code)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines: %q", len(lines), out)
	}
	if lines[0] != "base 606 15150 1.65 6.00" {
		t.Errorf("line 0 = %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "premium 303 ") {
		t.Errorf("line 1 = %q", lines[1])
	}
	if lines[2] != "broken error: average_ticket must be positive" {
		t.Errorf("line 2 = %q", lines[2])
	}
}

func TestRun_BatchJSONToFile(t *testing.T) {
	path := writeFile(t, "plans.csv", "name,desired_revenue,media_budget,average_ticket,conversion_rate\nq1,150000,25000,247.90,4\nq2,300000,,247.90,4\n")
	outFile := filepath.Join(t.TempDir(), "batch.json")
	code, out, _ := run(t, context.Background(), "-batch", path, "-format", "json", "-o", outFile)
	if code != apperrors.ExitSuccess {
		t.Fatalf("exit code = %d", code)
	}
	var plans []struct {
		Name   string         `json:"name"`
		Report *funnel.Report `json:"report"`
	}
	if err := json.Unmarshal([]byte(out), &plans); err != nil {
		t.Fatalf("stdout is not JSON: %v\n%s", err, out)
	}
	if len(plans) != 2 || plans[1].Name != "q2" || plans[1].Report.Summary.RequiredSales != 1211 {
		t.Errorf("plans = %+v", plans)
	}
	if _, err := os.Stat(outFile); err != nil {
		t.Errorf("output file not written: %v", err)
	}
}

func TestRun_BatchFailures(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		wantCode int
	}{
		{"all invalid", "plans:\n  - name: a\n    average_ticket: 0\n", apperrors.ExitErrorInvalidInput},
		{"budget below form bound", "plans:\n  - name: a\n    media_budget: -10\n", apperrors.ExitErrorConfig},
		{"no plans", "plans: []\n", apperrors.ExitErrorConfig},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, "plans.yaml", tt.content)
			code, _, _ := run(t, context.Background(), "-batch", path)
			if code != tt.wantCode {
				t.Errorf("exit code = %d, want %d", code, tt.wantCode)
			}
		})
	}

	code, _, stderr := run(t, context.Background(), "-batch", filepath.Join(t.TempDir(), "missing.yaml"))
	if code != apperrors.ExitErrorConfig || !strings.Contains(stderr, "Error:") {
		t.Errorf("missing file: code %d, stderr %q", code, stderr)
	}
}

func TestRun_BatchCanceled(t *testing.T) {
	path := writeFile(t, "plans.yaml", batchYAML)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	code, _, _ := run(t, ctx, "-batch", path)
	if code != apperrors.ExitErrorCanceled {
		t.Errorf("exit code = %d, want %d", code, apperrors.ExitErrorCanceled)
	}
}

func TestRun_Interactive(t *testing.T) {
	var stdout bytes.Buffer
	application, err := New([]string{"funnelcalc", "-no-color", "-i"}, &bytes.Buffer{},
		WithLogger(nopLogger{}), WithStdin(strings.NewReader("budget 0\nexit\n")))
	if err != nil {
		t.Fatal(err)
	}
	if code := application.Run(context.Background(), &stdout); code != apperrors.ExitSuccess {
		t.Errorf("exit code = %d", code)
	}
	out := stdout.String()
	if !strings.Contains(out, "Goodbye!") || !strings.Contains(out, "no media budget") {
		t.Errorf("unexpected transcript:\n%s", out)
	}
}

func TestRun_Completion(t *testing.T) {
	code, out, _ := run(t, context.Background(), "-completion", "bash")
	if code != apperrors.ExitSuccess {
		t.Fatalf("exit code = %d", code)
	}
	if !strings.Contains(out, "complete -F _funnelcalc_completions funnelcalc") {
		t.Error("bash completion script not generated")
	}
}

func TestRun_Server(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	code, _, _ := run(t, ctx, "-serve", "127.0.0.1:0")
	if code != apperrors.ExitSuccess {
		t.Errorf("exit code = %d", code)
	}
}

func TestRun_Watch(t *testing.T) {
	path := writeFile(t, "plan.yaml", "desired_revenue: 300000\n")
	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	code, out, _ := run(t, ctx, "-config", path, "-watch")
	if code != apperrors.ExitSuccess {
		t.Errorf("exit code = %d", code)
	}
	if !strings.Contains(out, path) || !strings.Contains(out, "30.275") {
		t.Errorf("watch output missing the initial report:\n%s", out)
	}
}

func TestCheckedCalculator(t *testing.T) {
	calc := checkedCalculator(funnel.Default)
	in := funnel.Input{DesiredRevenue: 1000, MediaBudget: -1, AverageTicket: 10, BaselineConversionRate: 4}
	var cfgErr apperrors.ConfigError
	if _, err := calc.Compute(in); !errors.As(err, &cfgErr) {
		t.Errorf("negative budget: err = %v, want ConfigError", err)
	}
	in.MediaBudget = 0
	if _, err := calc.Compute(in); err != nil {
		t.Errorf("valid input: err = %v", err)
	}
}

func TestBatchExitCode(t *testing.T) {
	invalid := apperrors.NewValidationError("average_ticket", "must be positive")
	tests := []struct {
		name    string
		results []orchestration.PlanResult
		want    int
	}{
		{"empty", nil, apperrors.ExitErrorConfig},
		{"all ok", []orchestration.PlanResult{{}}, apperrors.ExitSuccess},
		{"partial", []orchestration.PlanResult{{Err: invalid}, {}}, apperrors.ExitSuccess},
		{"all failed", []orchestration.PlanResult{{Err: invalid}, {Err: context.DeadlineExceeded}}, apperrors.ExitErrorInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := batchExitCode(tt.results); got != tt.want {
				t.Errorf("batchExitCode() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestRun_BatchTimeout(t *testing.T) {
	path := writeFile(t, "plans.yaml", batchYAML)
	code, _, stderr := run(t, context.Background(), "-batch", path, "-timeout", "1ns")
	if code != apperrors.ExitErrorTimeout {
		t.Errorf("exit code = %d, want %d", code, apperrors.ExitErrorTimeout)
	}
	if !strings.Contains(stderr, `operation "batch" timed out after 1ns`) {
		t.Errorf("stderr = %q", stderr)
	}
}

package cli

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	apperrors "github.com/agbru/funnelcalc/internal/errors"
	"github.com/agbru/funnelcalc/internal/format"
	"github.com/agbru/funnelcalc/internal/funnel"
	"github.com/agbru/funnelcalc/internal/orchestration"
	"github.com/agbru/funnelcalc/internal/ui"
)

const (
	labelWidth  = 17
	columnWidth = 16
)

// DisplayReport writes the report to out in the current color theme: the
// realistic summary, then one column per scenario. With details, the inputs
// and scenario multipliers are shown as well.
func DisplayReport(out io.Writer, report funnel.Report, details bool) {
	renderText(out, report, details, ui.GetCurrentTheme())
}

// DisplayError writes a rejected input or failure message.
func DisplayError(out io.Writer, err error) {
	fmt.Fprintf(out, "%sError: %v%s\n", ui.ColorRed(), err, ui.ColorReset())
}

func renderText(out io.Writer, r funnel.Report, details bool, t ui.Theme) {
	heading := func(title string) {
		fmt.Fprintf(out, "\n%s%s--- %s ---%s\n", t.Bold, t.Primary, title, t.Reset)
	}
	line := func(label, value string) {
		fmt.Fprintf(out, "  %s%s%s%s\n", t.Muted, padRight(label, labelWidth), t.Reset, value)
	}

	if details {
		heading("Inputs")
		line("Desired revenue", format.FormatCurrency(r.Input.DesiredRevenue))
		line("Media budget", format.FormatCurrency(r.Input.MediaBudget))
		line("Average ticket", format.FormatCurrency(r.Input.AverageTicket))
		line("Conversion rate", format.FormatPercent(r.Input.BaselineConversionRate))
	}

	heading("Realistic summary")
	line("Required sales", t.Bold+format.FormatCount(r.Summary.RequiredSales)+t.Reset)
	line("Required leads", t.Bold+format.FormatCount(r.Summary.RequiredLeads)+t.Reset)
	line("Max CPL", t.Bold+format.FormatCurrency(r.Summary.MaxCPL)+t.Reset)
	roas := format.FormatROAS(r.Summary.ROAS, r.Summary.ROASDefined)
	if !r.Summary.ROASDefined {
		roas += " (no media budget)"
	}
	line("ROAS", t.Bold+roas+t.Reset)

	heading("Scenarios")
	fmt.Fprintf(out, "  %s", padRight("", labelWidth))
	for _, row := range r.Scenarios {
		fmt.Fprint(out, colorCell(row.Scenario.String(), t.Bold+scenarioColor(t, row.Scenario), t.Reset))
	}
	fmt.Fprintln(out)

	rows := []scenarioRow{
		{"Conversion rate", func(s funnel.ScenarioResult) string { return format.FormatPercent(s.ConversionRatePct) }},
		{"Sales", func(s funnel.ScenarioResult) string { return format.FormatCount(s.RequiredSales) }},
		{"Leads", func(s funnel.ScenarioResult) string { return format.FormatCount(s.RequiredLeads) }},
		{"Max CPL", func(s funnel.ScenarioResult) string { return format.FormatCurrency(s.MaxCPL) }},
	}
	if details {
		multipliers := funnel.Scenarios()
		rows = append(rows, scenarioRow{"Multiplier", func(s funnel.ScenarioResult) string {
			return "x" + format.FormatDecimal(multipliers[s.Scenario].Multiplier)
		}})
	}

	for _, row := range rows {
		fmt.Fprintf(out, "  %s%s%s", t.Muted, padRight(row.label, labelWidth), t.Reset)
		for _, s := range r.Scenarios {
			fmt.Fprint(out, colorCell(row.cell(s), scenarioColor(t, s.Scenario), t.Reset))
		}
		fmt.Fprintln(out)
	}
}

// scenarioRow is one labeled line of the scenario table.
type scenarioRow struct {
	label string
	cell  func(funnel.ScenarioResult) string
}

// colorCell pads text to the column width before coloring it, so escape
// codes do not count towards alignment.
func colorCell(text, color, reset string) string {
	return color + text + reset + padRight("", columnWidth-utf8.RuneCountInString(text))
}

func scenarioColor(t ui.Theme, kind funnel.ScenarioKind) string {
	switch kind {
	case funnel.Pessimistic:
		return t.Pessimistic
	case funnel.Optimistic:
		return t.Optimistic
	default:
		return t.Realistic
	}
}

// padRight pads s with spaces to a visible width of length.
func padRight(s string, length int) string {
	n := length - utf8.RuneCountInString(s)
	if n <= 0 {
		return s
	}
	return s + strings.Repeat(" ", n)
}

// CLIResultPresenter implements orchestration.ResultPresenter for CLI output.
type CLIResultPresenter struct{}

// Verify interface compliance.
var (
	_ orchestration.ResultPresenter = CLIResultPresenter{}
	_ orchestration.ErrorHandler    = CLIResultPresenter{}
)

// PresentPlanTable displays one row per plan with the realistic summary and
// status. Uses manual padding to correctly handle ANSI color codes.
func (CLIResultPresenter) PresentPlanTable(results []orchestration.PlanResult, out io.Writer) {
	fmt.Fprintf(out, "\n--- Batch Summary ---\n")

	headers := []string{"Plan", "Sales", "Leads", "Max CPL", "ROAS", "Time"}
	cells := make([][]string, len(results))
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = utf8.RuneCountInString(h)
	}
	for i, res := range results {
		row := []string{res.Name, "", "", "", "", ""}
		if res.Err == nil {
			s := res.Report.Summary
			row[1] = format.FormatCount(s.RequiredSales)
			row[2] = format.FormatCount(s.RequiredLeads)
			row[3] = format.FormatCurrency(s.MaxCPL)
			row[4] = format.FormatROAS(s.ROAS, s.ROASDefined)
			row[5] = format.FormatExecutionDuration(res.Duration)
		}
		for j, c := range row {
			widths[j] = max(widths[j], utf8.RuneCountInString(c))
		}
		cells[i] = row
	}

	for i, h := range headers {
		fmt.Fprintf(out, "%s%s%s%s   ", ui.ColorUnderline(), h, ui.ColorReset(), padRight("", widths[i]-utf8.RuneCountInString(h)))
	}
	fmt.Fprintf(out, "%sStatus%s\n", ui.ColorUnderline(), ui.ColorReset())

	for i, res := range results {
		fmt.Fprintf(out, "%s%s%s   ", ui.ColorPrimary(), padRight(cells[i][0], widths[0]), ui.ColorReset())
		for j := 1; j < len(headers); j++ {
			fmt.Fprintf(out, "%s   ", padRight(cells[i][j], widths[j]))
		}
		if res.Err != nil {
			fmt.Fprintf(out, "%s❌ %v%s\n", ui.ColorRed(), res.Err, ui.ColorReset())
		} else {
			fmt.Fprintf(out, "%s✅ OK%s\n", ui.ScenarioColor(funnel.Optimistic), ui.ColorReset())
		}
	}
}

// PresentReport displays the full report of one plan under its name.
func (CLIResultPresenter) PresentReport(result orchestration.PlanResult, details bool, out io.Writer) {
	fmt.Fprintf(out, "\n%s=== %s ===%s\n", ui.ColorBold(), result.Name, ui.ColorReset())
	DisplayReport(out, result.Report, details)
}

// HandleError displays err and returns the matching exit code.
func (CLIResultPresenter) HandleError(err error, out io.Writer) int {
	DisplayError(out, err)
	return apperrors.ExitCodeFor(err)
}

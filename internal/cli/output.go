// # Naming Conventions
//
// Functions in this package follow consistent naming patterns based on their behavior:
//
//   - Display* functions write formatted, colorized output to an [io.Writer].
//     Examples: [DisplayReport], [DisplayQuietReport], [DisplayError].
//
//   - Format* functions return a formatted string without performing I/O.
//     Examples: [FormatQuietReport], [FormatMarkdownReport].
//
//   - Write* functions write uncolored data in a selectable format, to a
//     writer or to a file.
//     Examples: [WriteReport], [WriteReportToFile], [WritePlanResults].

package cli

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/agbru/funnelcalc/internal/format"
	"github.com/agbru/funnelcalc/internal/funnel"
	"github.com/agbru/funnelcalc/internal/orchestration"
	"github.com/agbru/funnelcalc/internal/ui"
)

// OutputConfig holds configuration for report output.
type OutputConfig struct {
	// Format is one of text, json, csv, markdown, html.
	Format string
	// OutputFile is the path to save the report (empty for no file output).
	OutputFile string
	// Quiet prints a single line instead of the full report.
	Quiet bool
	// Details adds the inputs and multipliers to text reports.
	Details bool
}

var markdownRenderer = goldmark.New(goldmark.WithExtensions(extension.Table))

// FormatQuietReport formats the realistic summary as a single line for
// scripts: sales, leads, max CPL and ROAS separated by spaces, with plain
// decimal points. An undefined ROAS is printed as "-".
func FormatQuietReport(report funnel.Report) string {
	s := report.Summary
	roas := "-"
	if s.ROASDefined {
		roas = plainDecimal(s.ROAS)
	}
	return fmt.Sprintf("%d %d %s %s", s.RequiredSales, s.RequiredLeads, plainDecimal(s.MaxCPL), roas)
}

// DisplayQuietReport outputs a report in quiet mode.
func DisplayQuietReport(out io.Writer, report funnel.Report) {
	fmt.Fprintln(out, FormatQuietReport(report))
}

// DisplayReportWithConfig displays a report according to cfg and saves it to
// cfg.OutputFile when set. Non-text formats are written uncolored to out.
func DisplayReportWithConfig(out io.Writer, report funnel.Report, cfg OutputConfig) error {
	switch {
	case cfg.Quiet:
		DisplayQuietReport(out, report)
	case cfg.Format == "" || cfg.Format == "text":
		DisplayReport(out, report, cfg.Details)
	default:
		if err := WriteReport(out, report, cfg.Format, cfg.Details); err != nil {
			return err
		}
	}

	if cfg.OutputFile != "" {
		if err := WriteReportToFile(cfg.OutputFile, report, cfg.Format, cfg.Details); err != nil {
			return err
		}
		if !cfg.Quiet {
			fmt.Fprintf(out, "\n%s✓ Report saved to: %s%s%s\n",
				ui.ScenarioColor(funnel.Optimistic), ui.ColorPrimary(), cfg.OutputFile, ui.ColorReset())
		}
	}
	return nil
}

// WriteReport writes the report to w in the given format.
//
// Parameters:
//   - w: The destination writer.
//   - report: The report to write.
//   - formatName: One of text, json, csv, markdown, html.
//   - details: Whether text output includes inputs and multipliers.
//
// Returns:
//   - error: An error for an unknown format or a failed write.
func WriteReport(w io.Writer, report funnel.Report, formatName string, details bool) error {
	switch formatName {
	case "", "text":
		renderText(w, report, details, ui.NoColorTheme)
		return nil
	case "json":
		return writeJSON(w, report)
	case "csv":
		return writeReportCSV(w, report)
	case "markdown":
		_, err := io.WriteString(w, FormatMarkdownReport(report))
		return err
	case "html":
		return writeHTML(w, "Funnel projection", FormatMarkdownReport(report))
	default:
		return fmt.Errorf("unknown report format %q", formatName)
	}
}

// WriteReportToFile writes the report to path, creating parent directories.
func WriteReportToFile(path string, report funnel.Report, formatName string, details bool) error {
	return writeFile(path, func(w io.Writer) error {
		return WriteReport(w, report, formatName, details)
	})
}

// WritePlanResults writes batch results to w. The text and markdown formats
// both produce a markdown table.
func WritePlanResults(w io.Writer, results []orchestration.PlanResult, formatName string) error {
	switch formatName {
	case "json":
		type planJSON struct {
			Name   string         `json:"name"`
			Input  funnel.Input   `json:"input"`
			Report *funnel.Report `json:"report,omitempty"`
			Error  string         `json:"error,omitempty"`
		}
		out := make([]planJSON, len(results))
		for i, res := range results {
			res := res
			out[i] = planJSON{Name: res.Name, Input: res.Input}
			if res.Err != nil {
				out[i].Error = res.Err.Error()
			} else {
				out[i].Report = &res.Report
			}
		}
		return writeJSON(w, out)
	case "csv":
		return writePlanCSV(w, results)
	case "", "text", "markdown":
		_, err := io.WriteString(w, FormatMarkdownPlans(results))
		return err
	case "html":
		return writeHTML(w, "Funnel batch", FormatMarkdownPlans(results))
	default:
		return fmt.Errorf("unknown report format %q", formatName)
	}
}

// WritePlanResultsToFile writes batch results to path, creating parent
// directories.
func WritePlanResultsToFile(path string, results []orchestration.PlanResult, formatName string) error {
	return writeFile(path, func(w io.Writer) error {
		return WritePlanResults(w, results, formatName)
	})
}

// FormatMarkdownReport renders the report as a markdown document with an
// inputs table, a summary table and a scenario table.
func FormatMarkdownReport(r funnel.Report) string {
	var b strings.Builder
	b.WriteString("# Funnel projection\n\n## Inputs\n\n| Field | Value |\n|---|---|\n")
	fmt.Fprintf(&b, "| Desired revenue | %s |\n", format.FormatCurrency(r.Input.DesiredRevenue))
	fmt.Fprintf(&b, "| Media budget | %s |\n", format.FormatCurrency(r.Input.MediaBudget))
	fmt.Fprintf(&b, "| Average ticket | %s |\n", format.FormatCurrency(r.Input.AverageTicket))
	fmt.Fprintf(&b, "| Conversion rate | %s |\n", format.FormatPercent(r.Input.BaselineConversionRate))

	b.WriteString("\n## Realistic summary\n\n| Metric | Value |\n|---|---|\n")
	fmt.Fprintf(&b, "| Required sales | %s |\n", format.FormatCount(r.Summary.RequiredSales))
	fmt.Fprintf(&b, "| Required leads | %s |\n", format.FormatCount(r.Summary.RequiredLeads))
	fmt.Fprintf(&b, "| Max CPL | %s |\n", format.FormatCurrency(r.Summary.MaxCPL))
	fmt.Fprintf(&b, "| ROAS | %s |\n", format.FormatROAS(r.Summary.ROAS, r.Summary.ROASDefined))

	b.WriteString("\n## Scenarios\n\n| Scenario | Conversion rate | Sales | Leads | Max CPL |\n|---|--:|--:|--:|--:|\n")
	for _, s := range r.Scenarios {
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s |\n", s.Scenario,
			format.FormatPercent(s.ConversionRatePct), format.FormatCount(s.RequiredSales),
			format.FormatCount(s.RequiredLeads), format.FormatCurrency(s.MaxCPL))
	}
	return b.String()
}

// FormatMarkdownPlans renders batch results as a markdown table of realistic
// summaries.
func FormatMarkdownPlans(results []orchestration.PlanResult) string {
	var b strings.Builder
	b.WriteString("# Funnel batch\n\n| Plan | Sales | Leads | Max CPL | ROAS | Status |\n|---|--:|--:|--:|--:|---|\n")
	for _, res := range results {
		if res.Err != nil {
			fmt.Fprintf(&b, "| %s | | | | | %s |\n", res.Name, res.Err)
			continue
		}
		s := res.Report.Summary
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s | OK |\n", res.Name,
			format.FormatCount(s.RequiredSales), format.FormatCount(s.RequiredLeads),
			format.FormatCurrency(s.MaxCPL), format.FormatROAS(s.ROAS, s.ROASDefined))
	}
	return b.String()
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeReportCSV(w io.Writer, r funnel.Report) error {
	cw := csv.NewWriter(w)
	records := [][]string{{"scenario", "conversion_rate_pct", "required_sales", "required_leads", "max_cpl", "roas"}}
	for _, s := range r.Scenarios {
		records = append(records, []string{
			s.Scenario.String(), plainDecimal(s.ConversionRatePct),
			strconv.FormatInt(s.RequiredSales, 10), strconv.FormatInt(s.RequiredLeads, 10),
			plainDecimal(s.MaxCPL), "",
		})
	}
	roas := ""
	if r.Summary.ROASDefined {
		roas = plainDecimal(r.Summary.ROAS)
	}
	records = append(records, []string{
		"Summary", "",
		strconv.FormatInt(r.Summary.RequiredSales, 10), strconv.FormatInt(r.Summary.RequiredLeads, 10),
		plainDecimal(r.Summary.MaxCPL), roas,
	})
	return cw.WriteAll(records)
}

func writePlanCSV(w io.Writer, results []orchestration.PlanResult) error {
	cw := csv.NewWriter(w)
	records := [][]string{{"plan", "required_sales", "required_leads", "max_cpl", "roas", "error"}}
	for _, res := range results {
		if res.Err != nil {
			records = append(records, []string{res.Name, "", "", "", "", res.Err.Error()})
			continue
		}
		s := res.Report.Summary
		roas := ""
		if s.ROASDefined {
			roas = plainDecimal(s.ROAS)
		}
		records = append(records, []string{
			res.Name, strconv.FormatInt(s.RequiredSales, 10), strconv.FormatInt(s.RequiredLeads, 10),
			plainDecimal(s.MaxCPL), roas, "",
		})
	}
	return cw.WriteAll(records)
}

// writeHTML converts markdown to a standalone HTML page.
func writeHTML(w io.Writer, title, markdown string) error {
	var body bytes.Buffer
	if err := markdownRenderer.Convert([]byte(markdown), &body); err != nil {
		return fmt.Errorf("rendering html: %w", err)
	}
	_, err := fmt.Fprintf(w, "<!DOCTYPE html>\n<html lang=\"pt-BR\">\n<head>\n<meta charset=\"utf-8\">\n<title>%s</title>\n</head>\n<body>\n%s</body>\n</html>\n", title, body.String())
	return err
}

func writeFile(path string, write func(io.Writer) error) error {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	if err := write(file); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

func plainDecimal(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

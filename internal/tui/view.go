package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/agbru/funnelcalc/internal/config"
	"github.com/agbru/funnelcalc/internal/format"
	"github.com/agbru/funnelcalc/internal/funnel"
)

// View renders the form, then either the results or the error line.
func (m Model) View() string {
	sections := []string{m.header.View(), m.formView()}
	if m.err != nil {
		sections = append(sections, errorStyle.Render("Error: "+m.err.Error()))
	} else {
		sections = append(sections, m.summaryView(), m.scenariosView())
	}
	sections = append(sections, m.help.View(m.keymap))
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) formView() string {
	rows := make([]string, len(config.InputFields))
	for i, field := range config.InputFields {
		style := labelStyle
		if i == m.focus {
			style = focusedLabelStyle
		}
		rows[i] = style.Render(field.Label) + m.inputs[i].View()
	}
	return "\n" + strings.Join(rows, "\n") + "\n"
}

func (m Model) summaryView() string {
	s := m.report.Summary
	metric := func(label, value string) string {
		return metricLabelStyle.Render(label+" ") + metricValueStyle.Render(value)
	}
	line := strings.Join([]string{
		metric("Sales", format.FormatCount(s.RequiredSales)),
		metric("Leads", format.FormatCount(s.RequiredLeads)),
		metric("Max CPL", format.FormatCurrency(s.MaxCPL)),
		metric("ROAS", format.FormatROAS(s.ROAS, s.ROASDefined)),
	}, "   ")
	return summaryStyle.Render(metricLabelStyle.Render("Realistic summary") + "\n" + line)
}

func (m Model) scenariosView() string {
	cols := make([]string, len(m.report.Scenarios))
	for i, row := range m.report.Scenarios {
		cols[i] = scenarioColumn(row)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cols...)
}

func scenarioColumn(row funnel.ScenarioResult) string {
	lines := []string{
		columnTitleStyles[row.Scenario].Render(row.Scenario.String()),
		metricLabelStyle.Render("Rate    ") + format.FormatPercent(row.ConversionRatePct),
		metricLabelStyle.Render("Sales   ") + format.FormatCount(row.RequiredSales),
		metricLabelStyle.Render("Leads   ") + format.FormatCount(row.RequiredLeads),
		metricLabelStyle.Render("Max CPL ") + format.FormatCurrency(row.MaxCPL),
	}
	return columnStyles[row.Scenario].Render(strings.Join(lines, "\n"))
}

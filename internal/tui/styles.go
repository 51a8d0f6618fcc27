package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/agbru/funnelcalc/internal/funnel"
	"github.com/agbru/funnelcalc/internal/ui"
)

// Style variables for the form.
// Initialized from the ui theme system via initTUIStyles().
var (
	headerStyle       lipgloss.Style
	titleStyle        lipgloss.Style
	versionStyle      lipgloss.Style
	labelStyle        lipgloss.Style
	focusedLabelStyle lipgloss.Style
	summaryStyle      lipgloss.Style
	metricLabelStyle  lipgloss.Style
	metricValueStyle  lipgloss.Style
	errorStyle        lipgloss.Style
	columnStyles      [3]lipgloss.Style
	columnTitleStyles [3]lipgloss.Style
)

func init() {
	initTUIStyles()
}

// initTUIStyles rebuilds all styles from the current ui theme.
// Called at package init and again from Run() after InitTheme has been invoked.
func initTUIStyles() {
	t := ui.GetCurrentTUITheme()

	headerStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(t.Accent).
		Padding(0, 1)

	titleStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(t.Accent)

	versionStyle = lipgloss.NewStyle().
		Foreground(t.Dim)

	labelStyle = lipgloss.NewStyle().
		Foreground(t.Dim).
		Width(labelWidth)

	focusedLabelStyle = lipgloss.NewStyle().
		Foreground(t.Accent).
		Bold(true).
		Width(labelWidth)

	summaryStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.Border).
		Foreground(t.Text).
		Padding(0, 1)

	metricLabelStyle = lipgloss.NewStyle().
		Foreground(t.Dim)

	metricValueStyle = lipgloss.NewStyle().
		Foreground(t.Accent).
		Bold(true)

	errorStyle = lipgloss.NewStyle().
		Foreground(t.Error).
		Bold(true)

	for _, sc := range funnel.Scenarios() {
		c := t.ScenarioColor(sc.Kind)
		columnStyles[sc.Kind] = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(c).
			Foreground(t.Text).
			Padding(0, 1).
			Width(columnWidth)
		columnTitleStyles[sc.Kind] = lipgloss.NewStyle().
			Foreground(c).
			Bold(true)
	}
}

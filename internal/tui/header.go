package tui

import "github.com/charmbracelet/lipgloss"

// HeaderModel renders the top bar: title and version.
type HeaderModel struct {
	version string
	width   int
}

// NewHeaderModel creates a new header.
func NewHeaderModel(version string) HeaderModel {
	return HeaderModel{version: version}
}

// SetWidth updates the available width.
func (h *HeaderModel) SetWidth(w int) {
	h.width = w
}

// View renders the header.
func (h HeaderModel) View() string {
	row := titleStyle.Render("Reverse Funnel Calculator")
	if h.version != "" && h.version != "dev" {
		row += versionStyle.Render(" " + h.version)
	}
	gap := h.width - 2 - lipgloss.Width(row)
	return headerStyle.Render(row + spaces(gap))
}

// spaces returns a string of n space characters.
func spaces(n int) string {
	if n <= 0 {
		return ""
	}
	b := make([]byte, n)
	for i := range b {
		b[i] = ' '
	}
	return string(b)
}

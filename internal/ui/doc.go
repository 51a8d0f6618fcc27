// Package ui provides theme and color support for funnelcalc's presentation
// layers. It maps the three projection scenarios to consistent colors in both
// the ANSI CLI output and the lipgloss-based dashboard.
package ui

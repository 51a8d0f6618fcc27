package ui

import (
	"os"
	"sync"

	"github.com/charmbracelet/lipgloss"

	"github.com/agbru/funnelcalc/internal/funnel"
)

// Theme defines a color scheme for ANSI CLI output.
// Each field contains an ANSI escape code for the corresponding category.
type Theme struct {
	// Name is the identifier of the theme.
	Name string
	// Primary is the accent color for headings.
	Primary string
	// Muted is used for labels and secondary text.
	Muted string
	// Pessimistic, Realistic and Optimistic color the scenario columns.
	Pessimistic string
	Realistic   string
	Optimistic  string
	// Error indicates rejected input or failures.
	Error string
	// Bold is the escape code for bold text.
	Bold string
	// Underline is the escape code for underlined text.
	Underline string
	// Reset clears all formatting.
	Reset string
}

var (
	// DarkTheme is optimized for dark terminal backgrounds.
	DarkTheme = Theme{
		Name:        "dark",
		Primary:     "\033[38;5;39m",
		Muted:       "\033[38;5;245m",
		Pessimistic: "\033[38;5;196m",
		Realistic:   "\033[38;5;220m",
		Optimistic:  "\033[38;5;82m",
		Error:       "\033[38;5;196m",
		Bold:        "\033[1m",
		Underline:   "\033[4m",
		Reset:       "\033[0m",
	}

	// LightTheme uses darker tones for light terminal backgrounds.
	LightTheme = Theme{
		Name:        "light",
		Primary:     "\033[38;5;27m",
		Muted:       "\033[38;5;240m",
		Pessimistic: "\033[38;5;124m",
		Realistic:   "\033[38;5;130m",
		Optimistic:  "\033[38;5;28m",
		Error:       "\033[38;5;124m",
		Bold:        "\033[1m",
		Underline:   "\033[4m",
		Reset:       "\033[0m",
	}

	// NoColorTheme disables all color output.
	// Used when NO_COLOR is set or -no-color is provided.
	NoColorTheme = Theme{Name: "none"}

	currentTheme = DarkTheme
	themeMutex   sync.RWMutex
)

// TUITheme defines lipgloss colors for the dashboard.
type TUITheme struct {
	Text        lipgloss.TerminalColor
	Border      lipgloss.TerminalColor
	Accent      lipgloss.TerminalColor
	Dim         lipgloss.TerminalColor
	Error       lipgloss.TerminalColor
	Pessimistic lipgloss.TerminalColor
	Realistic   lipgloss.TerminalColor
	Optimistic  lipgloss.TerminalColor
}

var (
	// DarkTUITheme is the default dashboard palette.
	DarkTUITheme = TUITheme{
		Text:        lipgloss.Color("#E0E0E0"),
		Border:      lipgloss.Color("#4488FF"),
		Accent:      lipgloss.Color("#7AA2F7"),
		Dim:         lipgloss.Color("#666666"),
		Error:       lipgloss.Color("#FF4444"),
		Pessimistic: lipgloss.Color("#F7768E"),
		Realistic:   lipgloss.Color("#E0AF68"),
		Optimistic:  lipgloss.Color("#9ECE6A"),
	}

	// NoColorTUITheme renders with the terminal's default colors.
	NoColorTUITheme = TUITheme{
		Text:        lipgloss.NoColor{},
		Border:      lipgloss.NoColor{},
		Accent:      lipgloss.NoColor{},
		Dim:         lipgloss.NoColor{},
		Error:       lipgloss.NoColor{},
		Pessimistic: lipgloss.NoColor{},
		Realistic:   lipgloss.NoColor{},
		Optimistic:  lipgloss.NoColor{},
	}
)

// ScenarioColor returns the dashboard color of a scenario.
func (t TUITheme) ScenarioColor(kind funnel.ScenarioKind) lipgloss.TerminalColor {
	switch kind {
	case funnel.Pessimistic:
		return t.Pessimistic
	case funnel.Optimistic:
		return t.Optimistic
	default:
		return t.Realistic
	}
}

// GetCurrentTUITheme returns the dashboard palette matching the active theme.
func GetCurrentTUITheme() TUITheme {
	themeMutex.RLock()
	defer themeMutex.RUnlock()

	if currentTheme.Name == NoColorTheme.Name {
		return NoColorTUITheme
	}
	return DarkTUITheme
}

// GetCurrentTheme returns the currently active theme.
func GetCurrentTheme() Theme {
	themeMutex.RLock()
	defer themeMutex.RUnlock()
	return currentTheme
}

// SetCurrentTheme replaces the active theme. Tests use it to restore state.
func SetCurrentTheme(t Theme) {
	themeMutex.Lock()
	defer themeMutex.Unlock()
	currentTheme = t
}

// SetTheme changes the active theme by name ("dark", "light", "none").
// Unknown names select the dark theme.
func SetTheme(name string) {
	themeMutex.Lock()
	defer themeMutex.Unlock()

	switch name {
	case LightTheme.Name:
		currentTheme = LightTheme
	case NoColorTheme.Name:
		currentTheme = NoColorTheme
	default:
		currentTheme = DarkTheme
	}
}

// InitTheme initializes the theme from the -no-color flag and the NO_COLOR
// environment variable (https://no-color.org/).
func InitTheme(noColor bool) {
	themeMutex.Lock()
	defer themeMutex.Unlock()

	if noColor {
		currentTheme = NoColorTheme
		return
	}
	if _, exists := os.LookupEnv("NO_COLOR"); exists {
		currentTheme = NoColorTheme
		return
	}
	currentTheme = DarkTheme
}

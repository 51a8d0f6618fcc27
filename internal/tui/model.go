package tui

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/agbru/funnelcalc/internal/config"
	apperrors "github.com/agbru/funnelcalc/internal/errors"
	"github.com/agbru/funnelcalc/internal/format"
	"github.com/agbru/funnelcalc/internal/funnel"
)

// Layout constants for the form.
const (
	labelWidth  = 32
	columnWidth = 24
	inputWidth  = 16
)

// numericRunes are the only characters accepted by the input fields.
const numericRunes = "0123456789.,"

// Model is the root bubbletea model: a four-field form whose report is
// recomputed on every keystroke.
type Model struct {
	header HeaderModel
	inputs []textinput.Model
	focus  int

	calc    funnel.Calculator
	initial funnel.Input
	report  funnel.Report
	err     error

	keymap KeyMap
	help   help.Model
	width  int
}

// NewModel creates a form prefilled with initial and computes its report.
func NewModel(calc funnel.Calculator, initial funnel.Input, version string) Model {
	m := Model{
		header:  NewHeaderModel(version),
		inputs:  make([]textinput.Model, len(config.InputFields)),
		calc:    calc,
		initial: initial,
		keymap:  DefaultKeyMap(),
		help:    help.New(),
	}
	for i := range config.InputFields {
		ti := textinput.New()
		ti.Prompt = "› "
		ti.CharLimit = 20
		ti.Width = inputWidth
		m.inputs[i] = ti
	}
	m.setValues(initial)
	m.inputs[0].Focus()
	m.recompute()
	return m
}

// Init returns the initial command.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles all incoming messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.header.SetWidth(msg.Width)
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keymap.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keymap.Help):
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		case key.Matches(msg, m.keymap.Next):
			return m, m.setFocus((m.focus + 1) % len(m.inputs))
		case key.Matches(msg, m.keymap.Prev):
			return m, m.setFocus((m.focus + len(m.inputs) - 1) % len(m.inputs))
		case key.Matches(msg, m.keymap.Up):
			m.stepFocused(1)
			return m, nil
		case key.Matches(msg, m.keymap.Down):
			m.stepFocused(-1)
			return m, nil
		case key.Matches(msg, m.keymap.Reset):
			m.setValues(m.initial)
			m.recompute()
			return m, nil
		}
		if msg.Type == tea.KeyRunes && !isNumeric(msg.Runes) {
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	if _, ok := msg.(tea.KeyMsg); ok {
		m.recompute()
	}
	return m, cmd
}

// Input parses the form into a funnel input. Budget and rate are held to
// the form bounds; revenue and ticket are left for the calculator to check.
func (m Model) Input() (funnel.Input, error) {
	var in funnel.Input
	for i, field := range config.InputFields {
		v, err := format.ParseNumber(m.inputs[i].Value())
		if err != nil {
			return funnel.Input{}, apperrors.NewValidationError(field.Key, "is not a number")
		}
		if err := field.CheckRange(v); err != nil {
			return funnel.Input{}, err
		}
		field.Set(&in, v)
	}
	return in, nil
}

// Report returns the report of the current values, or the error that
// replaces it.
func (m Model) Report() (funnel.Report, error) {
	return m.report, m.err
}

// Focused returns the index of the focused field in config.InputFields.
func (m Model) Focused() int {
	return m.focus
}

func (m *Model) setFocus(i int) tea.Cmd {
	m.inputs[m.focus].Blur()
	m.focus = i
	return m.inputs[i].Focus()
}

func (m *Model) setValues(in funnel.Input) {
	for i, field := range config.InputFields {
		m.inputs[i].SetValue(formatValue(field.Get(in)))
		m.inputs[i].CursorEnd()
	}
}

// stepFocused moves the focused value by n steps within the field bounds.
// An unparsable value restarts from the field minimum.
func (m *Model) stepFocused(n int) {
	field := config.InputFields[m.focus]
	v, err := format.ParseNumber(m.inputs[m.focus].Value())
	if err != nil {
		v = field.Min
	}
	m.inputs[m.focus].SetValue(formatValue(field.StepBy(v, n)))
	m.inputs[m.focus].CursorEnd()
	m.recompute()
}

func (m *Model) recompute() {
	in, err := m.Input()
	if err == nil {
		m.report, err = m.calc.Compute(in)
	}
	m.err = err
}

func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func isNumeric(runes []rune) bool {
	for _, r := range runes {
		if !strings.ContainsRune(numericRunes, r) {
			return false
		}
	}
	return true
}

// Run is the public entry point for the TUI mode.
// It creates the bubbletea program, runs it, and returns the exit code.
func Run(ctx context.Context, calc funnel.Calculator, initial funnel.Input, version string) int {
	// Rebuild styles from the current ui theme (set by app.Run via InitTheme).
	initTUIStyles()

	p := tea.NewProgram(NewModel(calc, initial, version), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		if ctx.Err() != nil || errors.Is(err, tea.ErrProgramKilled) {
			return apperrors.ExitErrorCanceled
		}
		return apperrors.ExitErrorGeneric
	}
	return apperrors.ExitSuccess
}

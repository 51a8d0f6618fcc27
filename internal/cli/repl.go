package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/agbru/funnelcalc/internal/config"
	"github.com/agbru/funnelcalc/internal/format"
	"github.com/agbru/funnelcalc/internal/funnel"
	"github.com/agbru/funnelcalc/internal/ui"
)

// REPLConfig holds configuration for the REPL session.
type REPLConfig struct {
	// Initial is the input the session starts from and returns to on reset.
	Initial funnel.Input
	// Details shows the inputs and multipliers with every report.
	Details bool
}

// REPL is an interactive session that edits the four inputs one command at
// a time and prints a fresh report after every change.
type REPL struct {
	config REPLConfig
	calc   funnel.Calculator
	input  funnel.Input
	in     io.Reader
	out    io.Writer
}

// replCommands maps each input command and its alias to the field it edits.
var replCommands = map[string]config.InputField{
	"revenue": config.RevenueField, "rev": config.RevenueField,
	"budget": config.BudgetField, "b": config.BudgetField,
	"ticket": config.TicketField, "t": config.TicketField,
	"rate": config.RateField, "r": config.RateField,
}

// NewREPL creates a new REPL instance.
//
// Parameters:
//   - calc: The calculator used after every change.
//   - config: REPL configuration.
//
// Returns:
//   - *REPL: A new REPL instance reading stdin and writing stdout.
func NewREPL(calc funnel.Calculator, config REPLConfig) *REPL {
	return &REPL{
		config: config,
		calc:   calc,
		input:  config.Initial,
		in:     os.Stdin,
		out:    os.Stdout,
	}
}

// SetInput sets a custom input reader (useful for testing).
func (r *REPL) SetInput(in io.Reader) {
	r.in = in
}

// SetOutput sets a custom output writer (useful for testing).
func (r *REPL) SetOutput(out io.Writer) {
	r.out = out
}

// Input returns the current input.
func (r *REPL) Input() funnel.Input {
	return r.input
}

// Start runs the session until the user exits or EOF is reached.
func (r *REPL) Start() {
	r.printBanner()
	r.printHelp()
	r.show()

	reader := bufio.NewReader(r.in)

	for {
		fmt.Fprint(r.out, ui.ColorPrimary()+"funnel> "+ui.ColorReset())

		line, err := reader.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			fmt.Fprintf(r.out, "%sRead error: %v%s\n", ui.ColorRed(), err, ui.ColorReset())
			return
		}
		eof := errors.Is(err, io.EOF)

		if line = strings.TrimSpace(line); line != "" {
			if !r.processCommand(line) {
				return
			}
		}
		if eof {
			fmt.Fprintln(r.out, "\nGoodbye!")
			return
		}
	}
}

func (r *REPL) printBanner() {
	fmt.Fprintf(r.out, "\n%s╔══════════════════════════════════════════════════════════╗%s\n", ui.ColorPrimary(), ui.ColorReset())
	fmt.Fprintf(r.out, "%s║%s     %sReverse Funnel Calculator - Interactive Mode%s         %s║%s\n",
		ui.ColorPrimary(), ui.ColorReset(), ui.ColorBold(), ui.ColorReset(), ui.ColorPrimary(), ui.ColorReset())
	fmt.Fprintf(r.out, "%s╚══════════════════════════════════════════════════════════╝%s\n\n", ui.ColorPrimary(), ui.ColorReset())
}

func (r *REPL) printHelp() {
	fmt.Fprintf(r.out, "%sAvailable commands:%s\n", ui.ColorBold(), ui.ColorReset())
	fmt.Fprintf(r.out, "  %srevenue <v>%s   - Set the desired revenue\n", ui.ColorPrimary(), ui.ColorReset())
	fmt.Fprintf(r.out, "  %sbudget <v>%s    - Set the media budget (0 for none)\n", ui.ColorPrimary(), ui.ColorReset())
	fmt.Fprintf(r.out, "  %sticket <v>%s    - Set the average ticket\n", ui.ColorPrimary(), ui.ColorReset())
	fmt.Fprintf(r.out, "  %srate <v>%s      - Set the realistic conversion rate in percent\n", ui.ColorPrimary(), ui.ColorReset())
	fmt.Fprintf(r.out, "  %sshow%s          - Display the current projection\n", ui.ColorPrimary(), ui.ColorReset())
	fmt.Fprintf(r.out, "  %sdetails%s       - Toggle inputs and multipliers in reports\n", ui.ColorPrimary(), ui.ColorReset())
	fmt.Fprintf(r.out, "  %sreset%s         - Restore the initial values\n", ui.ColorPrimary(), ui.ColorReset())
	fmt.Fprintf(r.out, "  %shelp%s          - Display this help\n", ui.ColorPrimary(), ui.ColorReset())
	fmt.Fprintf(r.out, "  %sexit%s / %squit%s   - Exit interactive mode\n", ui.ColorPrimary(), ui.ColorReset(), ui.ColorPrimary(), ui.ColorReset())
	fmt.Fprintf(r.out, "Values accept either decimal separator: %s247,90%s or %s247.90%s.\n",
		ui.ColorMuted(), ui.ColorReset(), ui.ColorMuted(), ui.ColorReset())
}

// processCommand parses and executes a user command.
// Returns false if the REPL should exit.
func (r *REPL) processCommand(line string) bool {
	parts := strings.Fields(line)
	cmd := strings.ToLower(parts[0])
	args := parts[1:]

	if field, ok := replCommands[cmd]; ok {
		r.cmdSet(field, args)
		return true
	}

	switch cmd {
	case "show", "s":
		r.show()
	case "details", "d":
		r.config.Details = !r.config.Details
		status := "disabled"
		if r.config.Details {
			status = "enabled"
		}
		fmt.Fprintf(r.out, "Details: %s%s%s\n", ui.ColorPrimary(), status, ui.ColorReset())
	case "reset":
		r.input = r.config.Initial
		r.show()
	case "help", "h", "?":
		r.printHelp()
	case "exit", "quit", "q":
		fmt.Fprintln(r.out, "Goodbye!")
		return false
	default:
		fmt.Fprintf(r.out, "%sUnknown command: %s%s\n", ui.ColorRed(), cmd, ui.ColorReset())
		fmt.Fprintf(r.out, "Type %shelp%s to see available commands.\n", ui.ColorPrimary(), ui.ColorReset())
	}
	return true
}

// cmdSet updates one field and recomputes. Budget and rate are held to the
// form bounds; revenue and ticket are left for the calculator to reject.
func (r *REPL) cmdSet(field config.InputField, args []string) {
	if len(args) != 1 {
		fmt.Fprintf(r.out, "%sUsage: %s <value>%s\n", ui.ColorRed(), field.Flag, ui.ColorReset())
		return
	}

	v, err := format.ParseNumber(args[0])
	if err != nil {
		fmt.Fprintf(r.out, "%sInvalid value: %s%s\n", ui.ColorRed(), args[0], ui.ColorReset())
		return
	}
	if err := field.CheckRange(v); err != nil {
		DisplayError(r.out, err)
		return
	}

	field.Set(&r.input, v)
	r.show()
}

// show computes and displays the current input.
func (r *REPL) show() {
	report, err := r.calc.Compute(r.input)
	if err != nil {
		DisplayError(r.out, err)
		return
	}
	DisplayReport(r.out, report, r.config.Details)
	fmt.Fprintln(r.out)
}

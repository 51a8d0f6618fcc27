package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/agbru/funnelcalc/internal/config"
)

// FlagCompletion describes a CLI flag for shell completion generation.
// All shell completion functions generate from this registry, so adding
// a new flag only requires appending to flagRegistry.
type FlagCompletion struct {
	Long      string   // long flag name without "--" (e.g., "help")
	Short     string   // short flag without "-" (e.g., "h")
	Help      string   // description text
	Values    []string // suggested completion values (nil = boolean/no suggestions)
	ValueName string   // label for the value in zsh (e.g., "amount", "duration")
	IsFile    bool     // true if the flag takes a file path
	Section   string   // fish comment section the flag is listed under
}

// flagRegistry is the central list of all CLI flags for completion generation.
var flagRegistry = []FlagCompletion{
	{Long: "help", Short: "h", Help: "Show help message", Section: "Help and version"},
	{Long: "version", Short: "V", Help: "Show version information", Section: "Help and version"},
	{Long: "revenue", Help: "Desired revenue", ValueName: "amount", Section: "Inputs"},
	{Long: "budget", Help: "Media budget", ValueName: "amount", Section: "Inputs"},
	{Long: "ticket", Help: "Average ticket", ValueName: "amount", Section: "Inputs"},
	{Long: "rate", Help: "Realistic conversion rate in percent", Values: []string{"1", "2", "4", "8"}, ValueName: "percent", Section: "Inputs"},
	{Long: "config", Help: "YAML plan file", IsFile: true, ValueName: "file", Section: "Inputs"},
	{Long: "format", Short: "f", Help: "Report format", Values: config.Formats, ValueName: "format", Section: "Output options"},
	{Long: "output", Short: "o", Help: "Output file path", IsFile: true, ValueName: "file", Section: "Output options"},
	{Long: "quiet", Short: "q", Help: "Quiet mode for scripts", Section: "Output options"},
	{Long: "details", Short: "d", Help: "Show inputs and multipliers", Section: "Output options"},
	{Long: "no-color", Help: "Disable colored output", Section: "Output options"},
	{Long: "tui", Help: "Launch the interactive dashboard", Section: "Modes"},
	{Long: "interactive", Short: "i", Help: "Start the interactive prompt", Section: "Modes"},
	{Long: "watch", Short: "w", Help: "Recompute when the plan file changes", Section: "Modes"},
	{Long: "batch", Help: "YAML or CSV file with several plans", IsFile: true, ValueName: "file", Section: "Modes"},
	{Long: "serve", Help: "Serve the HTTP API on an address", Values: []string{":8080", "127.0.0.1:8080"}, ValueName: "address", Section: "Modes"},
	{Long: "concurrency", Help: "Plans computed concurrently in batch mode", Values: []string{"1", "2", "4", "8"}, ValueName: "number", Section: "Tuning"},
	{Long: "timeout", Help: "Maximum duration of a batch run", Values: []string{"30s", "1m", "5m"}, ValueName: "duration", Section: "Tuning"},
	{Long: "log-level", Help: "Log level", Values: []string{"debug", "info", "warn", "error"}, ValueName: "level", Section: "Tuning"},
	{Long: "completion", Help: "Generate completion script", Values: config.Shells, ValueName: "shell", Section: "Completion"},
}

// fishSections is the order in which fish sections are written.
var fishSections = []string{"Help and version", "Inputs", "Output options", "Modes", "Tuning", "Completion"}

// GenerateCompletion generates a shell completion script for the specified shell.
//
// Parameters:
//   - out: The writer to output the completion script.
//   - shell: The shell type ("bash", "zsh", "fish", "powershell").
//
// Returns:
//   - error: An error if the shell is not supported.
func GenerateCompletion(out io.Writer, shell string) error {
	switch shell {
	case "bash":
		return generateBashCompletion(out)
	case "zsh":
		return generateZshCompletion(out)
	case "fish":
		return generateFishCompletion(out)
	case "powershell", "ps":
		return generatePowerShellCompletion(out)
	default:
		return fmt.Errorf("unsupported shell: %s (accepted values: bash, zsh, fish, powershell)", shell)
	}
}

// generateBashCompletion generates a Bash completion script.
func generateBashCompletion(out io.Writer) error {
	var opts []string
	for _, f := range flagRegistry {
		if f.Long != "" {
			opts = append(opts, "--"+f.Long)
		}
		if f.Short != "" {
			opts = append(opts, "-"+f.Short)
		}
	}

	type caseEntry struct {
		patterns []string
		body     string
	}
	var cases []caseEntry

	// File completion flags share one case.
	var filePatterns []string
	for _, f := range flagRegistry {
		if f.IsFile {
			filePatterns = append(filePatterns, flagPatterns(f)...)
		}
	}
	if len(filePatterns) > 0 {
		cases = append(cases, caseEntry{
			patterns: filePatterns,
			body: `# File/directory completion
            COMPREPLY=( $(compgen -f -- "${cur}") )`,
		})
	}

	for _, f := range flagRegistry {
		if !f.IsFile && len(f.Values) > 0 {
			cases = append(cases, caseEntry{
				patterns: flagPatterns(f),
				body:     fmt.Sprintf(`COMPREPLY=( $(compgen -W "%s" -- "${cur}") )`, strings.Join(f.Values, " ")),
			})
		}
	}

	var caseBody strings.Builder
	for _, c := range cases {
		caseBody.WriteString("        ")
		caseBody.WriteString(strings.Join(c.patterns, "|"))
		caseBody.WriteString(")\n")
		caseBody.WriteString("            ")
		caseBody.WriteString(c.body)
		caseBody.WriteString("\n            return 0\n            ;;\n")
	}

	script := fmt.Sprintf(`# Bash completion script for funnelcalc
# Add this to your ~/.bashrc or ~/.bash_completion

_funnelcalc_completions() {
    local cur prev opts
    COMPREPLY=()
    cur="${COMP_WORDS[COMP_CWORD]}"
    prev="${COMP_WORDS[COMP_CWORD-1]}"

    # Main options
    opts="%s"

    case "${prev}" in
%s    esac

    if [[ "${cur}" == -* ]]; then
        COMPREPLY=( $(compgen -W "${opts}" -- "${cur}") )
        return 0
    fi
}

complete -F _funnelcalc_completions funnelcalc
`, strings.Join(opts, " "), caseBody.String())

	if _, err := fmt.Fprint(out, script); err != nil {
		return fmt.Errorf("completion bash generation failed: %w", err)
	}
	return nil
}

// flagPatterns returns the bash case patterns of a flag, long form first.
func flagPatterns(f FlagCompletion) []string {
	var patterns []string
	if f.Long != "" {
		patterns = append(patterns, "--"+f.Long)
	}
	if f.Short != "" {
		patterns = append(patterns, "-"+f.Short)
	}
	return patterns
}

// generateZshCompletion generates a Zsh completion script.
func generateZshCompletion(out io.Writer) error {
	var args []string
	for _, f := range flagRegistry {
		args = append(args, zshArgEntry(f))
	}

	script := fmt.Sprintf(`#compdef funnelcalc

# Zsh completion script for funnelcalc
# Add this to your ~/.zshrc or place in $fpath

_funnelcalc() {
    _arguments -s \
%s
}

_funnelcalc "$@"
`, strings.Join(args, " \\\n"))

	if _, err := fmt.Fprint(out, script); err != nil {
		return fmt.Errorf("completion zsh generation failed: %w", err)
	}
	return nil
}

// zshArgEntry formats a single FlagCompletion as a zsh _arguments entry.
func zshArgEntry(f FlagCompletion) string {
	valueSuffix := ""
	switch {
	case f.IsFile:
		valueSuffix = fmt.Sprintf(":%s:_files", f.ValueName)
	case len(f.Values) > 0:
		valueSuffix = fmt.Sprintf(":%s:(%s)", f.ValueName, strings.Join(f.Values, " "))
	case f.ValueName != "":
		valueSuffix = fmt.Sprintf(":%s:", f.ValueName)
	}

	if f.Short != "" {
		return fmt.Sprintf("        '(-%s --%s)'{-%s,--%s}'[%s]%s'",
			f.Short, f.Long, f.Short, f.Long, f.Help, valueSuffix)
	}
	return fmt.Sprintf("        '--%s[%s]%s'", f.Long, f.Help, valueSuffix)
}

// generateFishCompletion generates a Fish completion script.
func generateFishCompletion(out io.Writer) error {
	lines := []string{
		"# Fish completion script for funnelcalc",
		"# Add this to ~/.config/fish/completions/funnelcalc.fish",
		"",
		"# Disable file completion by default",
		"complete -c funnelcalc -f",
		"",
	}

	for _, section := range fishSections {
		lines = append(lines, "# "+section)
		for _, f := range flagRegistry {
			if f.Section == section {
				lines = append(lines, fishCompleteLine(f))
			}
		}
		lines = append(lines, "")
	}

	if _, err := fmt.Fprint(out, strings.Join(lines, "\n")); err != nil {
		return fmt.Errorf("completion fish generation failed: %w", err)
	}
	return nil
}

// fishCompleteLine formats a single FlagCompletion as a fish complete command.
func fishCompleteLine(f FlagCompletion) string {
	parts := []string{"complete -c funnelcalc"}
	if f.Short != "" {
		parts = append(parts, "-s "+f.Short)
	}
	parts = append(parts, "-l "+f.Long, fmt.Sprintf("-d '%s'", f.Help))

	switch {
	case f.IsFile:
		parts = append(parts, "-rF")
	case len(f.Values) > 0:
		parts = append(parts, fmt.Sprintf("-xa '%s'", strings.Join(f.Values, " ")))
	case f.ValueName != "":
		parts = append(parts, "-x")
	}
	return strings.Join(parts, " ")
}

// generatePowerShellCompletion generates a PowerShell completion script.
func generatePowerShellCompletion(out io.Writer) error {
	var optionEntries []string
	for _, f := range flagRegistry {
		if f.Short != "" {
			optionEntries = append(optionEntries, fmt.Sprintf(
				"        @{Name = '-%s'; Description = '%s' }", f.Short, f.Help))
		}
		optionEntries = append(optionEntries, fmt.Sprintf(
			"        @{Name = '--%s'; Description = '%s' }", f.Long, f.Help))
	}

	var switchEntries []string
	for _, f := range flagRegistry {
		if f.IsFile || len(f.Values) == 0 {
			continue
		}
		quoted := make([]string, len(f.Values))
		for i, v := range f.Values {
			quoted[i] = fmt.Sprintf("'%s'", v)
		}
		switchEntries = append(switchEntries, fmt.Sprintf(`        '--%s' {
            @(%s) | Where-Object { $_ -like "$wordToComplete*" } | ForEach-Object {
                [System.Management.Automation.CompletionResult]::new($_, $_, 'ParameterValue', $_)
            }
            return
        }`, f.Long, strings.Join(quoted, ", ")))
	}

	script := fmt.Sprintf(`# PowerShell completion script for funnelcalc
# Add this to your $PROFILE

Register-ArgumentCompleter -CommandName 'funnelcalc' -Native -ScriptBlock {
    param($wordToComplete, $commandAst, $cursorPosition)

    $options = @(
%s
    )

    $elements = $commandAst.CommandElements
    $prevElement = if ($elements.Count -gt 2) { $elements[-2].ToString() } else { '' }

    # Context-aware completions
    switch ($prevElement) {
%s
    }

    # Default: show options
    $options | Where-Object { $_.Name -like "$wordToComplete*" } | ForEach-Object {
        [System.Management.Automation.CompletionResult]::new($_.Name, $_.Name, 'ParameterName', $_.Description)
    }
}
`, strings.Join(optionEntries, "\n"), strings.Join(switchEntries, "\n"))

	_, err := fmt.Fprint(out, script)
	return err
}

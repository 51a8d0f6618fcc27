package cli

import (
	"bytes"
	"strings"
	"testing"
)

func TestGenerateCompletion(t *testing.T) {
	t.Parallel()
	tests := []struct {
		shell    string
		contains []string
	}{
		{"bash", []string{"_funnelcalc_completions", "complete -F _funnelcalc_completions funnelcalc", "--revenue", "--config|--output|-o|--batch)", `compgen -W "text json csv markdown html"`}},
		{"zsh", []string{"#compdef funnelcalc", "'(-f --format)'{-f,--format}'[Report format]:format:(text json csv markdown html)'", "'--config[YAML plan file]:file:_files'", "'--revenue[Desired revenue]:amount:'"}},
		{"fish", []string{"complete -c funnelcalc -f", "# Modes", "complete -c funnelcalc -s w -l watch", "complete -c funnelcalc -l batch -d 'YAML or CSV file with several plans' -rF"}},
		{"powershell", []string{"Register-ArgumentCompleter -CommandName 'funnelcalc'", "'--log-level' {", "@{Name = '-q'; Description = 'Quiet mode for scripts' }"}},
		{"ps", []string{"Register-ArgumentCompleter"}},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.shell, func(t *testing.T) {
			t.Parallel()
			var buf bytes.Buffer
			if err := GenerateCompletion(&buf, tt.shell); err != nil {
				t.Fatalf("GenerateCompletion(%s) error = %v", tt.shell, err)
			}
			for _, s := range tt.contains {
				if !strings.Contains(buf.String(), s) {
					t.Errorf("%s script missing %q", tt.shell, s)
				}
			}
		})
	}
}

func TestGenerateCompletion_Unsupported(t *testing.T) {
	t.Parallel()
	err := GenerateCompletion(&bytes.Buffer{}, "tcsh")
	if err == nil || !strings.Contains(err.Error(), "unsupported shell: tcsh") {
		t.Errorf("error = %v", err)
	}
}

func TestFlagRegistry_EveryFlagListedInFishSection(t *testing.T) {
	t.Parallel()
	sections := map[string]bool{}
	for _, s := range fishSections {
		sections[s] = true
	}
	for _, f := range flagRegistry {
		if !sections[f.Section] {
			t.Errorf("flag %s has unknown section %q", f.Long, f.Section)
		}
	}
}

package cli

import (
	"os"
	"testing"

	"github.com/agbru/funnelcalc/internal/ui"
)

func TestMain(m *testing.M) {
	// Plain output keeps string assertions independent of escape codes.
	ui.InitTheme(true)
	os.Exit(m.Run())
}

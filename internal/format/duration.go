package format

import (
	"fmt"
	"time"
)

// FormatExecutionDuration formats a duration for the batch table: whole
// microseconds below a millisecond, whole milliseconds below a second, and
// time.Duration's own form above.
func FormatExecutionDuration(d time.Duration) string {
	switch {
	case d < time.Millisecond:
		return fmt.Sprintf("%d\u00b5s", d.Microseconds())
	case d < time.Second:
		return fmt.Sprintf("%dms", d.Milliseconds())
	default:
		return d.String()
	}
}

package durfmt

import (
	"fmt"
	"math"
	"time"
)

// Format renders seconds as "X min Y sec", dropping the minutes when zero.
// Fractions of a second are truncated.
func Format(seconds float64) string {
	if seconds < 0 || math.IsNaN(seconds) {
		seconds = 0
	}
	total := int64(seconds)
	minutes := total / 60
	rest := total % 60

	if minutes > 0 {
		return fmt.Sprintf("%d min %d sec", minutes, rest)
	}
	return fmt.Sprintf("%d sec", rest)
}

// FormatElapsed is Format for a time.Duration.
func FormatElapsed(d time.Duration) string {
	return Format(d.Seconds())
}

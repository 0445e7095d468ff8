package analysis

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// maxDurationSeconds caps SplitDuration so the int conversion never overflows
const maxDurationSeconds = math.MaxInt32

// SplitDuration breaks elapsed seconds into hours, minutes and seconds.
// Fractional seconds are truncated. NaN and negative input are treated as
// zero; anything above maxDurationSeconds, +Inf included, is clamped.
func SplitDuration(seconds float64) (hours, minutes, secs int) {
	if math.IsNaN(seconds) || seconds <= 0 {
		return 0, 0, 0
	}
	total := int(min(seconds, maxDurationSeconds))
	return total / 3600, (total % 3600) / 60, total % 60
}

// FormatClock formats a duration as H:MM:SS
func FormatClock(hours, minutes, secs int) string {
	return fmt.Sprintf("%d:%02d:%02d", hours, minutes, secs)
}

// FormatDuration formats elapsed seconds as H:MM:SS
func FormatDuration(seconds float64) string {
	return FormatClock(SplitDuration(seconds))
}

// MinutesFromSeconds returns whole minutes, truncating leftover seconds
func MinutesFromSeconds(seconds float64) int {
	h, m, _ := SplitDuration(seconds)
	return h*60 + m
}

// ParseDurationMinutes parses "H:MM" (or "H:MM:SS") into total minutes.
// Seconds are accepted but dropped, matching minute-precision storage.
func ParseDurationMinutes(s string) (int, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, fmt.Errorf("duration %q: want H:MM", s)
	}

	hours, err := strconv.Atoi(parts[0])
	if err != nil || hours < 0 {
		return 0, fmt.Errorf("duration %q: bad hours", s)
	}
	minutes, err := strconv.Atoi(parts[1])
	if err != nil || minutes < 0 || minutes > 59 {
		return 0, fmt.Errorf("duration %q: bad minutes", s)
	}
	if len(parts) == 3 {
		secs, err := strconv.Atoi(parts[2])
		if err != nil || secs < 0 || secs > 59 {
			return 0, fmt.Errorf("duration %q: bad seconds", s)
		}
	}

	return hours*60 + minutes, nil
}

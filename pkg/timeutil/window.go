package timeutil

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"
)

// DefaultWindow is used by report and ICS import when no window is given.
const DefaultWindow = "30d"

const day = 24 * time.Hour

// windowUnits is ordered largest first; FormatWindow relies on that.
var windowUnits = []struct {
	size    time.Duration
	names   []string
	display string
}{
	{7 * day, []string{"w", "wk", "wks", "week", "weeks"}, "w"},
	{day, []string{"d", "day", "days"}, "d"},
	{time.Hour, []string{"h", "hr", "hrs", "hour", "hours"}, "h"},
	{time.Minute, []string{"m", "min", "mins", "minute", "minutes"}, "m"},
}

func unitSize(name string) (time.Duration, bool) {
	for _, u := range windowUnits {
		for _, n := range u.names {
			if n == name {
				return u.size, true
			}
		}
	}
	return 0, false
}

// ParseWindow reads a window such as "1w", "3 days" or "2d12h" and returns it
// with its compact label. Empty input means DefaultWindow.
func ParseWindow(input string) (time.Duration, string, error) {
	s := strings.ToLower(strings.TrimSpace(input))
	if s == "" {
		s = DefaultWindow
	}

	var total time.Duration
	for s != "" {
		i := strings.IndexFunc(s, func(r rune) bool { return !unicode.IsDigit(r) })
		if i <= 0 {
			return 0, "", fmt.Errorf("invalid window %q: expected a number", input)
		}
		n, err := strconv.Atoi(s[:i])
		if err != nil {
			return 0, "", fmt.Errorf("invalid window %q: %w", input, err)
		}
		s = strings.TrimLeft(s[i:], " ")

		j := strings.IndexFunc(s, func(r rune) bool { return !unicode.IsLetter(r) })
		if j < 0 {
			j = len(s)
		}
		size, ok := unitSize(s[:j])
		if !ok {
			return 0, "", fmt.Errorf("invalid window %q: unknown unit %q", input, s[:j])
		}
		total += time.Duration(n) * size
		s = strings.TrimLeft(s[j:], " ")
	}

	if total <= 0 {
		return 0, "", fmt.Errorf("invalid window %q: must be positive", input)
	}
	return total, FormatWindow(total), nil
}

// FormatWindow renders d with the largest units first, for example "4w2d".
func FormatWindow(d time.Duration) string {
	var b strings.Builder
	for _, u := range windowUnits {
		if d < u.size {
			continue
		}
		n := d / u.size
		d -= n * u.size
		fmt.Fprintf(&b, "%d%s", n, u.display)
	}
	if b.Len() == 0 {
		return "0m"
	}
	return b.String()
}

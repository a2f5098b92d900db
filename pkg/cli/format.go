// Package cli provides shared formatting helpers for the netauto CLI.
package cli

import (
	"os"
	"strings"
)

// colorEnabled is false when NO_COLOR env var is set (per no-color.org).
var colorEnabled = os.Getenv("NO_COLOR") == ""

// Green wraps s in ANSI green. Returns s unchanged when NO_COLOR is set.
func Green(s string) string {
	if !colorEnabled {
		return s
	}
	return "\033[32m" + s + "\033[0m"
}

// Yellow wraps s in ANSI yellow. Returns s unchanged when NO_COLOR is set.
func Yellow(s string) string {
	if !colorEnabled {
		return s
	}
	return "\033[33m" + s + "\033[0m"
}

// Red wraps s in ANSI red. Returns s unchanged when NO_COLOR is set.
func Red(s string) string {
	if !colorEnabled {
		return s
	}
	return "\033[31m" + s + "\033[0m"
}

// Cyan wraps s in ANSI cyan. Returns s unchanged when NO_COLOR is set.
func Cyan(s string) string {
	if !colorEnabled {
		return s
	}
	return "\033[36m" + s + "\033[0m"
}

// Bold wraps s in ANSI bold. Returns s unchanged when NO_COLOR is set.
func Bold(s string) string {
	if !colorEnabled {
		return s
	}
	return "\033[1m" + s + "\033[0m"
}

// Dim wraps s in ANSI dim. Returns s unchanged when NO_COLOR is set.
func Dim(s string) string {
	if !colorEnabled {
		return s
	}
	return "\033[2m" + s + "\033[0m"
}

// Status colors a per-device result status: SUCCESS green, FAILED red,
// SKIPPED yellow, anything else unchanged.
func Status(status string) string {
	switch status {
	case "SUCCESS":
		return Green(status)
	case "FAILED":
		return Red(status)
	case "SKIPPED":
		return Yellow(status)
	default:
		return status
	}
}

// ColorDiff colorizes a device config diff: added lines green, removed
// lines red, session banner lines dim.
func ColorDiff(diff string) string {
	if diff == "" {
		return diff
	}
	lines := strings.Split(diff, "\n")
	for i, line := range lines {
		switch {
		case strings.HasPrefix(line, "+"):
			lines[i] = Green(line)
		case strings.HasPrefix(line, "-"):
			lines[i] = Red(line)
		case strings.HasPrefix(line, "@@"):
			lines[i] = Dim(line)
		}
	}
	return strings.Join(lines, "\n")
}

package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ParseWindow parses a Go duration, or a whole number of days ("1d") or
// weeks ("1w").
func ParseWindow(input string) (time.Duration, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return 0, fmt.Errorf("empty window")
	}

	unit := time.Duration(0)
	switch input[len(input)-1] {
	case 'd':
		unit = 24 * time.Hour
	case 'w':
		unit = 7 * 24 * time.Hour
	}
	if unit != 0 {
		n, err := strconv.Atoi(input[:len(input)-1])
		if err == nil {
			if n <= 0 {
				return 0, fmt.Errorf("window must be positive: %s", input)
			}
			return time.Duration(n) * unit, nil
		}
	}

	window, err := time.ParseDuration(input)
	if err != nil {
		return 0, fmt.Errorf("invalid window %q: %w", input, err)
	}
	if window <= 0 {
		return 0, fmt.Errorf("window must be positive: %s", input)
	}
	return window, nil
}

// FormatWindow renders a window the way ParseWindow reads it back.
func FormatWindow(window time.Duration) string {
	const (
		day  = 24 * time.Hour
		week = 7 * day
	)
	switch {
	case window >= week && window%week == 0:
		return fmt.Sprintf("%dw", window/week)
	case window >= day && window%day == 0:
		return fmt.Sprintf("%dd", window/day)
	default:
		return window.String()
	}
}

package workload

import (
	"fmt"
	"strings"
	"time"
)

// Pattern names one benchmark pattern.
type Pattern string

const (
	PatternBulk   Pattern = "bulk"
	PatternSingle Pattern = "single"
	PatternMixed  Pattern = "mixed"
	PatternRange  Pattern = "range"
)

// AllPatterns lists the patterns in execution order.
var AllPatterns = []Pattern{PatternBulk, PatternSingle, PatternMixed, PatternRange}

// ParsePattern resolves a pattern name.
func ParsePattern(input string) (Pattern, error) {
	p := Pattern(strings.ToLower(strings.TrimSpace(input)))
	for _, known := range AllPatterns {
		if p == known {
			return p, nil
		}
	}
	return "", fmt.Errorf("unknown pattern: %s", input)
}

// Config is everything the engine needs for one run. Driver and Protocol are
// labels copied into the report.
type Config struct {
	Driver   string
	Protocol string

	Bulk       BulkConfig
	Single     Pass
	Mixed      Pass
	WriteRatio float64
	ReadRatio  float64
	Windows    []time.Duration

	// Seed drives operation generation and record sampling; 0 derives one
	// from the clock, which is then reported.
	Seed     uint64
	Patterns []Pattern

	// SampleResources records process CPU, memory and I/O per pattern.
	SampleResources bool
}

func DefaultConfig() Config {
	return Config{
		Bulk:       BulkConfig{Strategy: FixedSize(1000), Limit: 100_000},
		Single:     Pass{Name: string(PatternSingle), Steps: 2500, FanOut: 4},
		Mixed:      Pass{Name: string(PatternMixed), Steps: 50_000, FanOut: 1},
		WriteRatio: 0.8,
		ReadRatio:  0.2,
		Windows:    []time.Duration{time.Hour, 24 * time.Hour, 7 * 24 * time.Hour},
		Patterns:   append([]Pattern(nil), AllPatterns...),
	}
}

// Validate reports the first invalid setting as a *ConfigError.
func (c Config) Validate() error {
	if err := validateStrategy(c.Bulk.Strategy); err != nil {
		return err
	}
	if c.Bulk.Limit < 0 {
		return configErrorf("bulk-limit", "must be non-negative, got %d", c.Bulk.Limit)
	}
	for _, pass := range []Pass{c.Single, c.Mixed} {
		if pass.Steps < 0 {
			return configErrorf(pass.Name+"-steps", "must be non-negative, got %d", pass.Steps)
		}
		if pass.FanOut < 1 {
			return configErrorf(pass.Name+"-fanout", "must be positive, got %d", pass.FanOut)
		}
	}
	if err := c.mixture().Validate(); err != nil {
		return err
	}
	for _, window := range c.Windows {
		if window <= 0 {
			return configErrorf("windows", "window %s must be positive", window)
		}
	}
	if len(c.Patterns) == 0 {
		return configErrorf("patterns", "no pattern selected")
	}
	for _, p := range c.Patterns {
		if _, err := ParsePattern(string(p)); err != nil {
			return configErrorf("patterns", "%v", err)
		}
	}
	return nil
}

func (c Config) mixture() Mixture {
	return Mixed(c.WriteRatio, c.ReadRatio)
}

func (c Config) selected(p Pattern) bool {
	for _, s := range c.Patterns {
		if s == p {
			return true
		}
	}
	return false
}

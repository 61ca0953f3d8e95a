// Package policy turns triaged findings and scan errors into a
// deterministic pass/fail verdict. Evaluate is a pure function of its
// inputs: no clock, no I/O, no randomness, so identical inputs always
// produce byte-identical serialized results.
package policy

import (
	"encoding/json"
	"fmt"

	"github.com/gatehound/gatehound/internal/types"
)

// Exit codes for the overall run.
const (
	ExitPass      = 0
	ExitViolation = 1
	ExitScanError = 2
)

// Unbounded disables a max_<severity> ceiling.
const Unbounded = -1

// Config holds the per-severity gate thresholds. FailOn* blocks on any
// finding of that severity; Max* is an integer ceiling with Unbounded (-1)
// meaning no limit. Defaults are deny-biased: zero tolerance for critical
// and high, lower severities non-blocking.
type Config struct {
	FailOnCritical bool `json:"fail_on_critical" yaml:"fail_on_critical"`
	FailOnHigh     bool `json:"fail_on_high" yaml:"fail_on_high"`
	FailOnMedium   bool `json:"fail_on_medium" yaml:"fail_on_medium"`
	FailOnLow      bool `json:"fail_on_low" yaml:"fail_on_low"`
	FailOnInfo     bool `json:"fail_on_info" yaml:"fail_on_info"`
	FailOnUnknown  bool `json:"fail_on_unknown" yaml:"fail_on_unknown"`

	MaxCritical int `json:"max_critical" yaml:"max_critical"`
	MaxHigh     int `json:"max_high" yaml:"max_high"`
	MaxMedium   int `json:"max_medium" yaml:"max_medium"`
	MaxLow      int `json:"max_low" yaml:"max_low"`
	MaxInfo     int `json:"max_info" yaml:"max_info"`
	MaxUnknown  int `json:"max_unknown" yaml:"max_unknown"`

	MaxTotal int `json:"max_total" yaml:"max_total"`
}

// DefaultConfig is the deny-biased default policy.
func DefaultConfig() Config {
	return Config{
		FailOnCritical: true,
		FailOnHigh:     true,
		MaxCritical:    0,
		MaxHigh:        0,
		MaxMedium:      Unbounded,
		MaxLow:         Unbounded,
		MaxInfo:        Unbounded,
		MaxUnknown:     Unbounded,
		MaxTotal:       Unbounded,
	}
}

func (c Config) failOn(s types.Severity) bool {
	switch s {
	case types.SevCritical:
		return c.FailOnCritical
	case types.SevHigh:
		return c.FailOnHigh
	case types.SevMedium:
		return c.FailOnMedium
	case types.SevLow:
		return c.FailOnLow
	case types.SevInfo:
		return c.FailOnInfo
	default:
		return c.FailOnUnknown
	}
}

func (c Config) max(s types.Severity) int {
	switch s {
	case types.SevCritical:
		return c.MaxCritical
	case types.SevHigh:
		return c.MaxHigh
	case types.SevMedium:
		return c.MaxMedium
	case types.SevLow:
		return c.MaxLow
	case types.SevInfo:
		return c.MaxInfo
	default:
		return c.MaxUnknown
	}
}

// Violation records one exceeded threshold.
type Violation struct {
	Severity  string `json:"severity"`
	Count     int    `json:"count"`
	Threshold int    `json:"threshold"`
	Message   string `json:"message"`
}

// Result is the verdict. Counts always contains all six severity buckets,
// including zeroes, so consumers can rely on the key set.
type Result struct {
	Passed     bool              `json:"passed"`
	ExitCode   int               `json:"exit_code"`
	Violations []Violation       `json:"violations"`
	Counts     map[string]int    `json:"counts"`
	ScanErrors []types.ScanError `json:"scan_errors"`
}

// JSON serializes the result with stable formatting. Map keys are emitted
// sorted by encoding/json, so equal results are byte-identical.
func (r Result) JSON() ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}

// Evaluate applies the policy to post-triage findings. Scan errors outrank
// policy violations: any infrastructure failure forces exit code 2 so
// callers can tell "found real issues" from "the scan itself broke".
func Evaluate(findings []types.Finding, cfg Config, scanErrors []types.ScanError) Result {
	counts := map[string]int{}
	for _, s := range types.SeveritiesDescending() {
		counts[s.String()] = 0
	}
	total := 0
	for _, f := range findings {
		counts[f.Severity.String()]++
		total++
	}

	violations := []Violation{}
	for _, s := range types.SeveritiesDescending() {
		count := counts[s.String()]
		switch {
		case cfg.failOn(s) && count > 0:
			violations = append(violations, Violation{
				Severity:  s.String(),
				Count:     count,
				Threshold: 0,
				Message:   fmt.Sprintf("%d %s finding(s), fail_on_%s is set", count, s, s),
			})
		case cfg.max(s) >= 0 && count > cfg.max(s):
			violations = append(violations, Violation{
				Severity:  s.String(),
				Count:     count,
				Threshold: cfg.max(s),
				Message:   fmt.Sprintf("%d %s finding(s) exceed max_%s=%d", count, s, s, cfg.max(s)),
			})
		}
	}
	if cfg.MaxTotal >= 0 && total > cfg.MaxTotal {
		violations = append(violations, Violation{
			Severity:  "total",
			Count:     total,
			Threshold: cfg.MaxTotal,
			Message:   fmt.Sprintf("%d finding(s) exceed max_total=%d", total, cfg.MaxTotal),
		})
	}

	res := Result{
		Violations: violations,
		Counts:     counts,
		ScanErrors: scanErrors,
	}
	if res.ScanErrors == nil {
		res.ScanErrors = []types.ScanError{}
	}

	switch {
	case len(scanErrors) > 0:
		res.Passed = false
		res.ExitCode = ExitScanError
	case len(violations) > 0:
		res.Passed = false
		res.ExitCode = ExitViolation
	default:
		res.Passed = true
		res.ExitCode = ExitPass
	}
	return res
}

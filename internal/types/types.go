package types

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	xxhash "github.com/cespare/xxhash/v2"
)

// Severity is a normalized risk level for a finding. The zero value is
// SevUnknown so that findings with unmapped tool vocabularies sort last
// rather than masquerading as real severities.
type Severity int

const (
	SevUnknown Severity = iota
	SevInfo
	SevLow
	SevMedium
	SevHigh
	SevCritical
)

var severityNames = map[Severity]string{
	SevUnknown:  "unknown",
	SevInfo:     "info",
	SevLow:      "low",
	SevMedium:   "medium",
	SevHigh:     "high",
	SevCritical: "critical",
}

func (s Severity) String() string {
	if name, ok := severityNames[s]; ok {
		return name
	}
	return "unknown"
}

// MarshalJSON emits the lowercase severity name.
func (s Severity) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON accepts any case; unrecognized values become SevUnknown.
func (s *Severity) UnmarshalJSON(b []byte) error {
	var raw string
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	*s = ParseSeverity(raw)
	return nil
}

// ParseSeverity maps a free-form tool string to a Severity. Matching is
// case-insensitive and never fails: unrecognized input yields SevUnknown.
func ParseSeverity(raw string) Severity {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "critical":
		return SevCritical
	case "high":
		return SevHigh
	case "medium", "moderate":
		return SevMedium
	case "low":
		return SevLow
	case "info", "informational", "negligible":
		return SevInfo
	default:
		return SevUnknown
	}
}

// SeveritiesDescending returns all severities from critical down to unknown.
// Policy counts and report sections iterate in this order so output is stable.
func SeveritiesDescending() []Severity {
	return []Severity{SevCritical, SevHigh, SevMedium, SevLow, SevInfo, SevUnknown}
}

// Finding is one normalized security observation produced by a scanner
// adapter. Findings are immutable value objects: adapters create them fully
// populated and nothing downstream mutates them.
type Finding struct {
	Scanner     string   `json:"scanner"`
	Title       string   `json:"title"`
	Severity    Severity `json:"severity"`
	Description string   `json:"description,omitempty"`
	FilePath    string   `json:"file_path,omitempty"`
	Line        int      `json:"line,omitempty"` // 1-based
	RuleID      string   `json:"rule_id,omitempty"`
	CVE         string   `json:"cve,omitempty"`
	CWE         string   `json:"cwe,omitempty"`
}

// DedupeHash is the stable identity of a finding for deduplication and
// triage. Two findings with the same scanner, rule (or title when the tool
// has no rule IDs), path and line are the same occurrence even when the
// free-text description differs between tool versions.
func (f Finding) DedupeHash() string {
	ruleOrTitle := f.RuleID
	if ruleOrTitle == "" {
		ruleOrTitle = f.Title
	}
	h := xxhash.New()
	// Field separator avoids ambiguity between adjacent fields.
	_, _ = h.WriteString(f.Scanner)
	_, _ = h.WriteString("\x00")
	_, _ = h.WriteString(ruleOrTitle)
	_, _ = h.WriteString("\x00")
	_, _ = h.WriteString(f.FilePath)
	_, _ = h.WriteString("\x00")
	_, _ = h.WriteString(strconv.Itoa(f.Line))
	return strconv.FormatUint(h.Sum64(), 16)
}

// Validate reports whether the finding satisfies the model invariants.
// Adapters are expected to only emit valid findings; this exists for tests
// and defensive checks at package boundaries.
func (f Finding) Validate() error {
	if strings.TrimSpace(f.Scanner) == "" {
		return fmt.Errorf("finding has empty scanner")
	}
	if strings.TrimSpace(f.Title) == "" {
		return fmt.Errorf("finding from %s has empty title", f.Scanner)
	}
	if f.Line < 0 {
		return fmt.Errorf("finding from %s has negative line %d", f.Scanner, f.Line)
	}
	return nil
}

// ScanError records a failed tool execution: missing binary, unavailable
// container engine, timeout, non-zero exit or unparseable output. It is an
// expected outcome that flows into the policy result and run manifest, not
// an exceptional condition.
type ScanError struct {
	Tool     string `json:"tool"`
	ExitCode int    `json:"exit_code"`
	Message  string `json:"message"`
	TimedOut bool   `json:"timed_out,omitempty"`
}

func (e ScanError) Error() string {
	if e.TimedOut {
		return fmt.Sprintf("%s: timed out (exit code %d)", e.Tool, e.ExitCode)
	}
	return fmt.Sprintf("%s: %s (exit code %d)", e.Tool, e.Message, e.ExitCode)
}

// Dedupe removes findings whose DedupeHash was already seen, preserving the
// first occurrence and input order.
func Dedupe(findings []Finding) []Finding {
	seen := make(map[string]bool, len(findings))
	out := make([]Finding, 0, len(findings))
	for _, f := range findings {
		key := f.DedupeHash()
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, f)
	}
	return out
}

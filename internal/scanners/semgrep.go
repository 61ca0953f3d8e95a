package scanners

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/gatehound/gatehound/internal/backend"
	"github.com/gatehound/gatehound/internal/scan"
	"github.com/gatehound/gatehound/internal/types"
)

// Semgrep adapts the Semgrep semantic code-pattern scanner.
type Semgrep struct{}

func (Semgrep) Name() string     { return "semgrep" }
func (Semgrep) ScanType() string { return "code patterns" }

func (Semgrep) Command(sc scan.Context, kind backend.Kind) (string, []string) {
	return "semgrep", []string{
		"scan",
		"--config", "auto",
		"--json",
		"--quiet",
		targetPath(kind),
	}
}

func (Semgrep) DefaultContainer() backend.ContainerConfig {
	cfg := backend.DefaultContainerConfig("semgrep/semgrep:1.97.0")
	// Rule packs are fetched at scan time with --config auto.
	cfg.NetworkDisabled = false
	return cfg
}

// semgrepSeverities maps semgrep's three-level vocabulary. ERROR is a
// high-class finding by convention, not critical: semgrep rules have no
// notion of exploitability.
var semgrepSeverities = map[string]types.Severity{
	"ERROR":   types.SevHigh,
	"WARNING": types.SevMedium,
	"INFO":    types.SevInfo,
}

func semgrepSeverity(s string) types.Severity {
	if sev, ok := semgrepSeverities[strings.ToUpper(strings.TrimSpace(s))]; ok {
		return sev
	}
	return types.SevUnknown
}

type semgrepReport struct {
	Results []struct {
		CheckID string `json:"check_id"`
		Path    string `json:"path"`
		Start   struct {
			Line int `json:"line"`
		} `json:"start"`
		Extra struct {
			Message  string `json:"message"`
			Severity string `json:"severity"`
			Metadata struct {
				// cwe arrives as string, []string, or absent.
				CWE any `json:"cwe"`
			} `json:"metadata"`
		} `json:"extra"`
	} `json:"results"`
}

// Parse normalizes a semgrep JSON report into findings.
func (s Semgrep) Parse(raw []byte) ([]types.Finding, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("empty semgrep output")
	}
	var doc semgrepReport
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("malformed semgrep JSON: %w", err)
	}

	out := make([]types.Finding, 0, len(doc.Results))
	for _, r := range doc.Results {
		title := r.CheckID
		if idx := strings.LastIndex(title, "."); idx >= 0 && idx < len(title)-1 {
			title = title[idx+1:]
		}
		out = append(out, types.Finding{
			Scanner:     s.Name(),
			Title:       title,
			Severity:    semgrepSeverity(r.Extra.Severity),
			Description: r.Extra.Message,
			FilePath:    r.Path,
			Line:        r.Start.Line,
			RuleID:      r.CheckID,
			CWE:         firstCWE(r.Extra.Metadata.CWE),
		})
	}
	return out, nil
}

// firstCWE extracts the first CWE identifier from semgrep metadata, which
// nests it as a bare string or a list.
func firstCWE(v any) string {
	switch t := v.(type) {
	case string:
		return cweID(t)
	case []any:
		for _, e := range t {
			if s, ok := e.(string); ok && s != "" {
				return cweID(s)
			}
		}
	}
	return ""
}

// cweID trims semgrep's long form ("CWE-798: Use of Hard-coded
// Credentials") down to the identifier.
func cweID(s string) string {
	if idx := strings.Index(s, ":"); idx > 0 {
		return strings.TrimSpace(s[:idx])
	}
	return strings.TrimSpace(s)
}

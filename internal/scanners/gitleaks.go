package scanners

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/gatehound/gatehound/internal/backend"
	"github.com/gatehound/gatehound/internal/scan"
	"github.com/gatehound/gatehound/internal/types"
)

// Gitleaks adapts the Gitleaks secret scanner. The adapter carries a hard
// contract: the raw matched secret value never appears in a normalized
// finding. Masking here is not best-effort redaction, it is the only way
// secret material is ever rendered.
type Gitleaks struct{}

func (Gitleaks) Name() string     { return "gitleaks" }
func (Gitleaks) ScanType() string { return "secrets" }

func (Gitleaks) Command(sc scan.Context, kind backend.Kind) (string, []string) {
	return "gitleaks", []string{
		"detect",
		"--no-git",
		"--source", targetPath(kind),
		"--report-format", "json",
		"--report-path", "/dev/stdout",
		"--log-level", "error",
		"--exit-code", "0",
	}
}

func (Gitleaks) DefaultContainer() backend.ContainerConfig {
	// Gitleaks runs fully offline; every hardening default stays on.
	return backend.DefaultContainerConfig("zricethezav/gitleaks:v8.21.2")
}

// criticalRules are leak classes where possession equals compromise; they
// outrank the entropy-based severity below.
var criticalRules = map[string]bool{
	"aws-access-token":        true,
	"private-key":             true,
	"github-pat":              true,
	"github-fine-grained-pat": true,
	"gcp-service-account":     true,
	"stripe-access-token":     true,
}

type gitleaksFinding struct {
	Description string  `json:"Description"`
	RuleID      string  `json:"RuleID"`
	Match       string  `json:"Match"`
	Secret      string  `json:"Secret"`
	StartLine   int     `json:"StartLine"`
	File        string  `json:"File"`
	Entropy     float64 `json:"Entropy"`
}

// Parse normalizes gitleaks JSON output. An empty report is the tool's way
// of saying "no leaks", so unlike the other adapters an empty blob is valid.
func (g Gitleaks) Parse(raw []byte) ([]types.Finding, error) {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "[]" {
		return nil, nil
	}
	var leaks []gitleaksFinding
	if err := json.Unmarshal([]byte(trimmed), &leaks); err != nil {
		return nil, fmt.Errorf("malformed gitleaks JSON: %w", err)
	}

	out := make([]types.Finding, 0, len(leaks))
	for _, leak := range leaks {
		title := leak.Description
		if title == "" {
			title = leak.RuleID
		}
		desc := fmt.Sprintf("Potential %s leak (value: %s)", leak.RuleID, maskSecret(leak.Secret))
		out = append(out, types.Finding{
			Scanner:     g.Name(),
			Title:       title,
			Severity:    gitleaksSeverity(leak),
			Description: desc,
			FilePath:    leak.File,
			Line:        leak.StartLine,
			RuleID:      leak.RuleID,
		})
	}
	return out, nil
}

func gitleaksSeverity(leak gitleaksFinding) types.Severity {
	if criticalRules[leak.RuleID] {
		return types.SevCritical
	}
	if leak.Entropy > 4.5 {
		return types.SevHigh
	}
	return types.SevMedium
}

// maskSecret renders a secret safely: short values are fully starred, long
// values keep a four-character prefix for identification.
func maskSecret(s string) string {
	if len(s) <= 8 {
		return "********"
	}
	return s[:4] + "****"
}

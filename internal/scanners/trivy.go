package scanners

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/gatehound/gatehound/internal/backend"
	"github.com/gatehound/gatehound/internal/scan"
	"github.com/gatehound/gatehound/internal/types"
)

// Trivy adapts the Trivy filesystem scanner: dependency and container
// vulnerabilities plus IaC misconfigurations.
type Trivy struct{}

func (Trivy) Name() string     { return "trivy" }
func (Trivy) ScanType() string { return "dependency/container vulnerabilities" }

func (Trivy) Command(sc scan.Context, kind backend.Kind) (string, []string) {
	return "trivy", []string{
		"fs",
		"--scanners", "vuln,misconfig",
		"--format", "json",
		"--quiet",
		"--exit-code", "0",
		targetPath(kind),
	}
}

func (Trivy) DefaultContainer() backend.ContainerConfig {
	cfg := backend.DefaultContainerConfig("aquasec/trivy:0.58.1")
	// Trivy needs its vulnerability DB; callers scanning offline should
	// pre-populate the cache or relax this explicitly.
	cfg.NetworkDisabled = false
	return cfg
}

// trivySeverities is the explicit tool-vocabulary mapping. Anything not
// listed becomes SevUnknown.
var trivySeverities = map[string]types.Severity{
	"CRITICAL": types.SevCritical,
	"HIGH":     types.SevHigh,
	"MEDIUM":   types.SevMedium,
	"LOW":      types.SevLow,
	"UNKNOWN":  types.SevUnknown,
}

func trivySeverity(s string) types.Severity {
	if sev, ok := trivySeverities[strings.ToUpper(strings.TrimSpace(s))]; ok {
		return sev
	}
	return types.SevUnknown
}

type trivyReport struct {
	Results []struct {
		Target          string `json:"Target"`
		Vulnerabilities []struct {
			VulnerabilityID  string `json:"VulnerabilityID"`
			PkgName          string `json:"PkgName"`
			InstalledVersion string `json:"InstalledVersion"`
			FixedVersion     string `json:"FixedVersion"`
			Severity         string `json:"Severity"`
			Title            string `json:"Title"`
			Description      string `json:"Description"`
		} `json:"Vulnerabilities"`
		Misconfigurations []struct {
			ID            string `json:"ID"`
			Title         string `json:"Title"`
			Description   string `json:"Description"`
			Severity      string `json:"Severity"`
			CauseMetadata struct {
				StartLine int `json:"StartLine"`
			} `json:"CauseMetadata"`
		} `json:"Misconfigurations"`
	} `json:"Results"`
}

// Parse normalizes a trivy JSON report. Each result carries zero or more
// vulnerabilities (CVE-backed) and misconfigurations (rule-backed).
func (t Trivy) Parse(raw []byte) ([]types.Finding, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("empty trivy output")
	}
	var doc trivyReport
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("malformed trivy JSON: %w", err)
	}

	var out []types.Finding
	for _, r := range doc.Results {
		for _, v := range r.Vulnerabilities {
			title := v.Title
			if title == "" {
				title = fmt.Sprintf("%s in %s %s", v.VulnerabilityID, v.PkgName, v.InstalledVersion)
			}
			desc := v.Description
			if v.FixedVersion != "" {
				desc = strings.TrimSpace(desc + "\nFixed in: " + v.FixedVersion)
			}
			cve := ""
			if strings.HasPrefix(v.VulnerabilityID, "CVE-") {
				cve = v.VulnerabilityID
			}
			out = append(out, types.Finding{
				Scanner:     t.Name(),
				Title:       title,
				Severity:    trivySeverity(v.Severity),
				Description: desc,
				FilePath:    r.Target,
				RuleID:      v.VulnerabilityID,
				CVE:         cve,
			})
		}
		for _, m := range r.Misconfigurations {
			title := m.Title
			if title == "" {
				title = m.ID
			}
			out = append(out, types.Finding{
				Scanner:     t.Name(),
				Title:       title,
				Severity:    trivySeverity(m.Severity),
				Description: m.Description,
				FilePath:    r.Target,
				Line:        m.CauseMetadata.StartLine,
				RuleID:      m.ID,
			})
		}
	}
	return out, nil
}

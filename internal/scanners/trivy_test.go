package scanners

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gatehound/gatehound/internal/backend"
	"github.com/gatehound/gatehound/internal/scan"
	"github.com/gatehound/gatehound/internal/types"
)

const trivyFixture = `{
  "Results": [
    {
      "Target": "go.mod",
      "Vulnerabilities": [
        {
          "VulnerabilityID": "CVE-2024-24786",
          "PkgName": "google.golang.org/protobuf",
          "InstalledVersion": "1.31.0",
          "FixedVersion": "1.33.0",
          "Severity": "HIGH",
          "Title": "infinite loop in protojson.Unmarshal",
          "Description": "The protojson.Unmarshal function can enter an infinite loop."
        },
        {
          "VulnerabilityID": "GHSA-xxxx-yyyy",
          "PkgName": "some/pkg",
          "InstalledVersion": "0.1.0",
          "Severity": "WEIRD"
        }
      ]
    },
    {
      "Target": "Dockerfile",
      "Misconfigurations": [
        {
          "ID": "DS002",
          "Title": "Image runs as root",
          "Description": "Specify a non-root user.",
          "Severity": "MEDIUM",
          "CauseMetadata": {"StartLine": 3}
        }
      ]
    }
  ]
}`

func TestTrivyParse(t *testing.T) {
	findings, err := Trivy{}.Parse([]byte(trivyFixture))
	require.NoError(t, err)
	require.Len(t, findings, 3)

	vuln := findings[0]
	assert.Equal(t, "trivy", vuln.Scanner)
	assert.Equal(t, types.SevHigh, vuln.Severity)
	assert.Equal(t, "CVE-2024-24786", vuln.CVE)
	assert.Equal(t, "CVE-2024-24786", vuln.RuleID)
	assert.Equal(t, "go.mod", vuln.FilePath)
	assert.Contains(t, vuln.Description, "Fixed in: 1.33.0")

	// Non-CVE rule IDs don't populate the CVE field; unknown severity
	// strings map to unknown.
	ghsa := findings[1]
	assert.Equal(t, "", ghsa.CVE)
	assert.Equal(t, "GHSA-xxxx-yyyy", ghsa.RuleID)
	assert.Equal(t, types.SevUnknown, ghsa.Severity)
	assert.NotEmpty(t, ghsa.Title)

	misconf := findings[2]
	assert.Equal(t, "DS002", misconf.RuleID)
	assert.Equal(t, types.SevMedium, misconf.Severity)
	assert.Equal(t, 3, misconf.Line)
	assert.Equal(t, "Dockerfile", misconf.FilePath)
}

func TestTrivyParseEmptyResults(t *testing.T) {
	findings, err := Trivy{}.Parse([]byte(`{"Results": null}`))
	require.NoError(t, err)
	assert.Empty(t, findings)
}

func TestTrivyParseFailsClosed(t *testing.T) {
	_, err := Trivy{}.Parse(nil)
	assert.Error(t, err)
	_, err = Trivy{}.Parse([]byte("panic: runtime error"))
	assert.Error(t, err)
}

func TestTrivyCommandTargets(t *testing.T) {
	sc := scan.Context{RepoPath: "/repo"}
	tool, args := Trivy{}.Command(sc, backend.KindNative)
	assert.Equal(t, "trivy", tool)
	assert.Equal(t, ".", args[len(args)-1])

	_, args = Trivy{}.Command(sc, backend.KindContainer)
	assert.Equal(t, "/src", args[len(args)-1])
}

func TestTrivyFindingsValidate(t *testing.T) {
	findings, err := Trivy{}.Parse([]byte(trivyFixture))
	require.NoError(t, err)
	for _, f := range findings {
		assert.NoError(t, f.Validate())
	}
}

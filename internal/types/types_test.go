package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseSeverity(t *testing.T) {
	cases := map[string]Severity{
		"CRITICAL":  SevCritical,
		"critical":  SevCritical,
		" High ":    SevHigh,
		"Medium":    SevMedium,
		"moderate":  SevMedium,
		"low":       SevLow,
		"INFO":      SevInfo,
		"negligible": SevInfo,
		"banana":    SevUnknown,
		"":          SevUnknown,
	}
	for in, want := range cases {
		if got := ParseSeverity(in); got != want {
			t.Fatalf("ParseSeverity(%q)=%v want %v", in, got, want)
		}
	}
}

func TestSeverityOrdering(t *testing.T) {
	if !(SevCritical > SevHigh && SevHigh > SevMedium && SevMedium > SevLow && SevLow > SevInfo && SevInfo > SevUnknown) {
		t.Fatal("severity ordering broken")
	}
}

func TestDedupeHashStable(t *testing.T) {
	a := Finding{Scanner: "trivy", RuleID: "CVE-2024-1234", FilePath: "go.sum", Line: 10, Title: "x"}
	b := Finding{Scanner: "trivy", RuleID: "CVE-2024-1234", FilePath: "go.sum", Line: 10, Title: "x", Description: "different text"}
	assert.Equal(t, a.DedupeHash(), b.DedupeHash())

	for _, other := range []Finding{
		{Scanner: "semgrep", RuleID: "CVE-2024-1234", FilePath: "go.sum", Line: 10, Title: "x"},
		{Scanner: "trivy", RuleID: "CVE-2024-9999", FilePath: "go.sum", Line: 10, Title: "x"},
		{Scanner: "trivy", RuleID: "CVE-2024-1234", FilePath: "go.mod", Line: 10, Title: "x"},
		{Scanner: "trivy", RuleID: "CVE-2024-1234", FilePath: "go.sum", Line: 11, Title: "x"},
	} {
		assert.NotEqual(t, a.DedupeHash(), other.DedupeHash())
	}
}

func TestDedupeHashFallsBackToTitle(t *testing.T) {
	a := Finding{Scanner: "gitleaks", Title: "aws-access-key", FilePath: ".env", Line: 3}
	b := Finding{Scanner: "gitleaks", Title: "github-pat", FilePath: ".env", Line: 3}
	assert.NotEqual(t, a.DedupeHash(), b.DedupeHash())
}

func TestDedupe(t *testing.T) {
	in := []Finding{
		{Scanner: "trivy", RuleID: "A", Title: "a"},
		{Scanner: "trivy", RuleID: "A", Title: "a", Description: "dup"},
		{Scanner: "trivy", RuleID: "B", Title: "b"},
	}
	out := Dedupe(in)
	assert.Len(t, out, 2)
	assert.Equal(t, "A", out[0].RuleID)
	assert.Equal(t, "B", out[1].RuleID)
}

func TestFindingValidate(t *testing.T) {
	assert.Error(t, Finding{Title: "t"}.Validate())
	assert.Error(t, Finding{Scanner: "s"}.Validate())
	assert.Error(t, Finding{Scanner: "s", Title: "t", Line: -1}.Validate())
	assert.NoError(t, Finding{Scanner: "s", Title: "t"}.Validate())
}

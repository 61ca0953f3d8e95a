// Package report renders a run's outcome for humans (terminal table) and
// machines (policy JSON, SARIF).
package report

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/olekukonko/tablewriter"
	"golang.org/x/term"

	"github.com/gatehound/gatehound/internal/ignore"
	"github.com/gatehound/gatehound/internal/policy"
	"github.com/gatehound/gatehound/internal/types"
)

// PrintOptions controls terminal rendering.
type PrintOptions struct {
	NoColor  bool
	Duration time.Duration
	// ShowSuppressed lists triaged-away findings under the table.
	ShowSuppressed bool
}

// IsTTY reports whether w is an interactive terminal. Color is enabled only
// for real terminals so piped output stays clean.
func IsTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}

// PrintTable renders findings and the policy verdict to w. Findings are
// expected pre-sorted (the orchestrator sorts severity-first).
func PrintTable(w io.Writer, findings []types.Finding, suppressed []ignore.Suppressed, verdict policy.Result, opts PrintOptions) {
	if len(findings) == 0 {
		fmt.Fprintln(w, "No findings.")
	} else {
		table := tablewriter.NewWriter(w)
		table.Header("SEVERITY", "SCANNER", "RULE", "LOCATION", "TITLE")
		for _, f := range findings {
			sev := f.Severity.String()
			if !opts.NoColor {
				sev = colorSeverity(f.Severity)
			}
			_ = table.Append([]string{sev, f.Scanner, ruleOf(f), location(f), truncate(f.Title, 60)})
		}
		_ = table.Render()
	}

	if opts.ShowSuppressed && len(suppressed) > 0 {
		fmt.Fprintf(w, "\nSuppressed (%d):\n", len(suppressed))
		for _, s := range suppressed {
			fmt.Fprintf(w, "  %s %s  matched %q", s.Finding.Scanner, location(s.Finding), s.Pattern)
			if s.Comment != "" {
				fmt.Fprintf(w, "  # %s", s.Comment)
			}
			fmt.Fprintln(w)
		}
	}

	printSummary(w, verdict, opts)
}

func printSummary(w io.Writer, verdict policy.Result, opts PrintOptions) {
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Findings: %d (critical: %d, high: %d, medium: %d, low: %d)\n",
		totalOf(verdict.Counts),
		verdict.Counts["critical"], verdict.Counts["high"],
		verdict.Counts["medium"], verdict.Counts["low"])
	if opts.Duration > 0 {
		fmt.Fprintf(w, "Scan duration: %.2fs\n", opts.Duration.Seconds())
	}
	for _, v := range verdict.Violations {
		fmt.Fprintf(w, "Policy violation: %s\n", v.Message)
	}
	for _, e := range verdict.ScanErrors {
		fmt.Fprintf(w, "Scan error: %s\n", e.Error())
	}
	switch {
	case verdict.ExitCode == policy.ExitScanError:
		fmt.Fprintln(w, "Result: ERROR")
	case verdict.Passed:
		fmt.Fprintln(w, "Result: PASS")
	default:
		fmt.Fprintln(w, "Result: FAIL")
	}
}

func totalOf(counts map[string]int) int {
	n := 0
	for _, c := range counts {
		n += c
	}
	return n
}

func ruleOf(f types.Finding) string {
	if f.RuleID != "" {
		return f.RuleID
	}
	if f.CVE != "" {
		return f.CVE
	}
	return "-"
}

func location(f types.Finding) string {
	if f.FilePath == "" {
		return "-"
	}
	if f.Line > 0 {
		return fmt.Sprintf("%s:%d", f.FilePath, f.Line)
	}
	return f.FilePath
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}

func colorSeverity(s types.Severity) string {
	switch s {
	case types.SevCritical:
		return "\x1b[35mcritical\x1b[0m" // magenta
	case types.SevHigh:
		return "\x1b[31mhigh\x1b[0m" // red
	case types.SevMedium:
		return "\x1b[33mmedium\x1b[0m" // yellow
	case types.SevLow:
		return "\x1b[36mlow\x1b[0m" // cyan
	default:
		return s.String()
	}
}

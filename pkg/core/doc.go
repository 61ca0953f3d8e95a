// Package core provides a small, stable facade over gatehound's internal
// orchestrator for external integrations. It deliberately re-exports a
// narrow API surface so other programs can embed a scan-and-gate run
// without depending on internal packages.
//
// Example:
//
//	out, err := core.Scan(ctx, core.Options{RepoPath: "."})
//	if err != nil { /* handle */ }
//	_ = core.MarshalFindings(os.Stdout, out.Findings)
//	os.Exit(out.Policy.ExitCode)
package core

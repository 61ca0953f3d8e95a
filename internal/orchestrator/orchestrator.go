// Package orchestrator drives one scan-and-gate run: it executes the
// configured scanner runners in parallel, deduplicates and triages their
// findings, evaluates the severity policy, and leaves a write-once manifest
// plus an audit record behind.
package orchestrator

import (
	"context"
	"fmt"
	"path/filepath"
	"runtime"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/gatehound/gatehound/internal/audit"
	"github.com/gatehound/gatehound/internal/ignore"
	"github.com/gatehound/gatehound/internal/manifest"
	"github.com/gatehound/gatehound/internal/policy"
	"github.com/gatehound/gatehound/internal/scan"
	"github.com/gatehound/gatehound/internal/scanners"
	"github.com/gatehound/gatehound/internal/types"
)

// Config assembles everything one run needs besides the scan context.
type Config struct {
	Runners []*scanners.Runner
	Policy  policy.Config
	Ignore  ignore.File
	// RunsDir is the base directory; the run owns RunsDir/<run_id>.
	RunsDir string
	// Workers bounds scanner parallelism; 0 means GOMAXPROCS capped at
	// the number of runners.
	Workers int
	// Audit receives the run record when set.
	Audit *audit.Log
	Log   *zap.SugaredLogger
}

// Outcome is the result of one orchestration run.
type Outcome struct {
	Findings     []types.Finding // surviving, deduplicated, sorted
	Suppressed   []ignore.Suppressed
	Policy       policy.Result
	Manifest     manifest.RunManifest
	ManifestPath string
	Duration     time.Duration
}

// Run executes every configured scanner, gates the result, and persists the
// manifest. Scanner failures never abort the run: they surface as scan
// errors in the policy result and failed steps in the manifest. Run itself
// fails only on invariant violations (manifest construction, I/O).
func Run(ctx context.Context, sc scan.Context, cfg Config) (Outcome, error) {
	log := cfg.Log
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	started := time.Now()

	results := executeAll(ctx, sc, cfg.Runners, cfg.Workers, log)

	var merged []types.Finding
	var scanErrors []types.ScanError
	steps := make([]manifest.StepResult, 0, len(results))
	for _, res := range results {
		steps = append(steps, stepFor(res))
		if res.Err != nil {
			log.Warnw("scanner failed", "scanner", res.Scanner, "exit_code", res.Err.ExitCode, "timed_out", res.Err.TimedOut)
			scanErrors = append(scanErrors, *res.Err)
			continue
		}
		log.Infow("scanner completed", "scanner", res.Scanner, "findings", len(res.Findings), "backend", res.BackendUsed)
		merged = append(merged, res.Findings...)
	}

	deduped := types.Dedupe(merged)
	kept, suppressed := cfg.Ignore.Filter(deduped)
	sortFindings(kept)

	verdict := policy.Evaluate(kept, cfg.Policy, scanErrors)
	status := statusFor(verdict.ExitCode)
	finished := time.Now()

	runDir := filepath.Join(cfg.RunsDir, sc.RunID)
	m, err := manifest.Build(sc.RunID, sc.RepoPath, runDir, started, finished, status, steps)
	if err != nil {
		return Outcome{}, fmt.Errorf("assemble manifest: %w", err)
	}
	manifestPath, err := m.Write()
	if err != nil {
		return Outcome{}, err
	}

	outcome := Outcome{
		Findings:     kept,
		Suppressed:   suppressed,
		Policy:       verdict,
		Manifest:     m,
		ManifestPath: manifestPath,
		Duration:     finished.Sub(started),
	}

	if cfg.Audit != nil {
		rec := audit.NewRunRecord(sc.RunID, sc.RepoPath, status, verdict.ExitCode, kept, suppressed, scanErrors, outcome.Duration)
		if err := cfg.Audit.Append(rec); err != nil {
			// Audit is supplementary; the manifest already holds the
			// authoritative record.
			log.Warnw("audit append failed", "error", err)
		}
	}
	return outcome, nil
}

// executeAll runs every runner through a bounded worker pool. Results keep
// the configured scanner order regardless of completion order, and one
// scanner timing out never cancels its siblings: each backend owns its own
// deadline.
func executeAll(ctx context.Context, sc scan.Context, runners []*scanners.Runner, workers int, log *zap.SugaredLogger) []scanners.Result {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > len(runners) {
		workers = len(runners)
	}
	if workers < 1 {
		workers = 1
	}

	results := make([]scanners.Result, len(runners))
	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				r := runners[idx]
				log.Debugw("scanner starting", "scanner", r.Adapter.Name())
				results[idx] = r.Run(ctx, sc)
			}
		}()
	}
	for idx := range runners {
		jobs <- idx
	}
	close(jobs)
	wg.Wait()
	return results
}

func statusFor(exitCode int) string {
	switch exitCode {
	case policy.ExitPass:
		return manifest.StatusSuccess
	case policy.ExitViolation:
		return manifest.StatusFailure
	default:
		return manifest.StatusError
	}
}

// stepFor converts one scanner result into its manifest step. The literal
// invocation (tool plus argument vector) is preserved for audit.
func stepFor(res scanners.Result) manifest.StepResult {
	return manifest.StepResult{
		Args:       append([]string{res.Tool}, res.Args...),
		DurationMS: res.Exec.Duration.Milliseconds(),
		ExitCode:   res.Exec.ExitCode,
		Name:       res.Scanner,
		Stderr:     res.Exec.Stderr,
		Stdout:     res.Exec.Stdout,
		TimedOut:   res.Exec.TimedOut,
	}
}

// sortFindings orders by severity (critical first), then scanner, path,
// line, rule so reports and serialized results are deterministic.
func sortFindings(findings []types.Finding) {
	sort.SliceStable(findings, func(i, j int) bool {
		a, b := findings[i], findings[j]
		if a.Severity != b.Severity {
			return a.Severity > b.Severity
		}
		if a.Scanner != b.Scanner {
			return a.Scanner < b.Scanner
		}
		if a.FilePath != b.FilePath {
			return a.FilePath < b.FilePath
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		return a.RuleID < b.RuleID
	})
}

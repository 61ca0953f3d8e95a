package core

import (
	"context"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/gatehound/gatehound/internal/backend"
	"github.com/gatehound/gatehound/internal/config"
	"github.com/gatehound/gatehound/internal/ignore"
	"github.com/gatehound/gatehound/internal/orchestrator"
	"github.com/gatehound/gatehound/internal/policy"
	"github.com/gatehound/gatehound/internal/scan"
	"github.com/gatehound/gatehound/internal/scanners"
	"github.com/gatehound/gatehound/internal/types"
)

// Re-export selected internal types as a stable public API surface. These
// are type aliases so external consumers can depend on a stable path.
type (
	Finding  = types.Finding
	Severity = types.Severity
	Policy   = policy.Config
	Verdict  = policy.Result
	Outcome  = orchestrator.Outcome
)

// Exit codes of a run, mirrored from the policy gate.
const (
	ExitPass      = policy.ExitPass
	ExitViolation = policy.ExitViolation
	ExitScanError = policy.ExitScanError
)

// Options configures one embedded run. Zero values pick the same defaults
// the CLI uses.
type Options struct {
	// RepoPath is the repository to scan. Required.
	RepoPath string
	// Scanners names the tools to run; empty means trivy, semgrep, gitleaks.
	Scanners []string
	// Backend is "auto", "docker" or "native".
	Backend string
	// Timeout bounds each scanner individually.
	Timeout time.Duration
	// Policy overrides the default severity gate.
	Policy *Policy
	// IgnoreFile points at a triage list; empty resolves the repository's
	// .gatehoundignore then the global one.
	IgnoreFile string
	// RunsDir overrides where run artifacts land.
	RunsDir string
	// RunID names the run; empty generates one.
	RunID string
	// Log receives structured progress output when set.
	Log *zap.SugaredLogger
}

// Scan is the stable entrypoint for other programs: it runs the configured
// scanners against opts.RepoPath, triages and gates the findings, and
// persists the run manifest. The returned error covers setup and invariant
// failures only; scanner failures surface inside Outcome.Policy.
func Scan(ctx context.Context, opts Options) (Outcome, error) {
	runID := opts.RunID
	if runID == "" {
		runID = scan.NewRunID()
	}
	runsDir := opts.RunsDir
	if runsDir == "" {
		runsDir = config.RunsDir()
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = scan.DefaultTimeout
	}

	sc, err := scan.NewContext(opts.RepoPath, filepath.Join(runsDir, runID), runID, timeout)
	if err != nil {
		return Outcome{}, err
	}

	adapters, err := scanners.Resolve(opts.Scanners)
	if err != nil {
		return Outcome{}, err
	}
	selector := backend.NewDefaultSelector(config.BinDir())
	pref := backend.ParsePreference(opts.Backend)
	runners := make([]*scanners.Runner, 0, len(adapters))
	for _, a := range adapters {
		runners = append(runners, &scanners.Runner{
			Adapter:    a,
			Selector:   selector,
			Preference: pref,
			Log:        opts.Log,
		})
	}

	pol := policy.DefaultConfig()
	if opts.Policy != nil {
		pol = *opts.Policy
	}

	ignorePath := opts.IgnoreFile
	if ignorePath == "" {
		ignorePath = config.IgnorePath(sc.RepoPath)
	}
	ign, err := ignore.Load(ignorePath)
	if err != nil {
		return Outcome{}, err
	}

	return orchestrator.Run(ctx, sc, orchestrator.Config{
		Runners: runners,
		Policy:  pol,
		Ignore:  ign,
		RunsDir: runsDir,
		Log:     opts.Log,
	})
}

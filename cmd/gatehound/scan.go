package gatehound

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/gatehound/gatehound/internal/audit"
	"github.com/gatehound/gatehound/internal/backend"
	"github.com/gatehound/gatehound/internal/config"
	"github.com/gatehound/gatehound/internal/gitmeta"
	"github.com/gatehound/gatehound/internal/ignore"
	"github.com/gatehound/gatehound/internal/orchestrator"
	"github.com/gatehound/gatehound/internal/policy"
	"github.com/gatehound/gatehound/internal/report"
	"github.com/gatehound/gatehound/internal/scan"
	"github.com/gatehound/gatehound/internal/scanners"
	"github.com/gatehound/gatehound/internal/types"
	"github.com/gatehound/gatehound/internal/update"
)

var (
	flagPath           string
	flagScanners       string
	flagBackend        string
	flagTimeout        string
	flagIgnoreFile     string
	flagRunID          string
	flagWorkers        int
	flagFailOn         string
	flagMaxCritical    int
	flagMaxHigh        int
	flagMaxMedium      int
	flagMaxLow         int
	flagMaxTotal       int
	flagShowSuppressed bool
	flagNoAudit        bool
)

func init() {
	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Scan a repository and gate on the findings",
		RunE:  runScan,
	}
	rootCmd.AddCommand(cmd)

	cmd.Flags().StringVarP(&flagPath, "path", "p", ".", "repository to scan")
	cmd.Flags().StringVar(&flagScanners, "scanners", "", "comma-separated subset of trivy,semgrep,gitleaks (default: all)")
	cmd.Flags().StringVar(&flagBackend, "backend", "", "execution backend: auto | docker | native")
	cmd.Flags().StringVar(&flagTimeout, "timeout", "", "per-tool wall-clock budget (e.g. 10m)")
	cmd.Flags().StringVar(&flagIgnoreFile, "ignore-file", "", "triage list (default: repo .gatehoundignore, then global)")
	cmd.Flags().StringVar(&flagRunID, "run-id", "", "run identifier (default: generated)")
	cmd.Flags().IntVar(&flagWorkers, "workers", 0, "scanner parallelism (0 = GOMAXPROCS)")
	cmd.Flags().StringVar(&flagFailOn, "fail-on", "", "fail on findings at or above: critical|high|medium|low|none")
	cmd.Flags().IntVar(&flagMaxCritical, "max-critical", 0, "critical finding ceiling (-1 = unbounded)")
	cmd.Flags().IntVar(&flagMaxHigh, "max-high", 0, "high finding ceiling (-1 = unbounded)")
	cmd.Flags().IntVar(&flagMaxMedium, "max-medium", 0, "medium finding ceiling (-1 = unbounded)")
	cmd.Flags().IntVar(&flagMaxLow, "max-low", 0, "low finding ceiling (-1 = unbounded)")
	cmd.Flags().IntVar(&flagMaxTotal, "max-total", 0, "total finding ceiling (-1 = unbounded)")
	cmd.Flags().BoolVar(&flagShowSuppressed, "show-suppressed", false, "list triaged-away findings")
	cmd.Flags().BoolVar(&flagNoAudit, "no-audit", false, "do not append to the repository audit log")
}

// jsonReport is the machine-readable scan output shape.
type jsonReport struct {
	Findings   []types.Finding     `json:"findings"`
	Policy     policy.Result       `json:"policy"`
	RunID      string              `json:"run_id"`
	Suppressed []ignore.Suppressed `json:"suppressed"`
}

func runScan(cmd *cobra.Command, _ []string) error {
	log := newLogger()
	abs, _ := filepath.Abs(flagPath)

	// Config precedence: CLI > repo-local > global.
	var gcfg, lcfg config.FileConfig
	if c, err := config.LoadGlobal(); err == nil {
		gcfg = c
	}
	if c, err := config.LoadLocal(abs); err == nil {
		lcfg = c
	}

	var timeout time.Duration
	if flagTimeout != "" {
		d, err := parseTimeout(flagTimeout)
		if err != nil {
			return err
		}
		timeout = d
	} else {
		timeout = pickDuration(lcfg.Timeout, gcfg.Timeout, scan.DefaultTimeout)
	}

	runID := flagRunID
	if runID == "" {
		runID = scan.NewRunID()
	}
	runsDir := config.RunsDir()

	sc, err := scan.NewContext(abs, filepath.Join(runsDir, runID), runID, timeout)
	if err != nil {
		return err
	}
	if meta := gitmeta.Resolve(sc.RepoPath); meta.CommitSHA != "" {
		sc = sc.WithCommit(meta.CommitSHA)
		log.Debugw("resolved git metadata", "commit", meta.CommitSHA, "branch", meta.Branch, "dirty", meta.Dirty)
	}

	names := splitList(pickString(flagScanners, lcfg.Scanners, gcfg.Scanners))
	adapters, err := scanners.Resolve(names)
	if err != nil {
		return err
	}

	pref := backend.ParsePreference(pickString(flagBackend, lcfg.Backend, gcfg.Backend))
	selector := backend.NewDefaultSelector(config.BinDir())

	runners := make([]*scanners.Runner, 0, len(adapters))
	for _, a := range adapters {
		r := &scanners.Runner{
			Adapter:    a,
			Selector:   selector,
			Preference: pref,
			Log:        log,
		}
		if cc := containerOverride(a, lcfg, gcfg); cc != nil {
			r.Container = cc
		}
		runners = append(runners, r)
	}

	pol := policyFromFlags(cmd, lcfg, gcfg)

	ignorePath := pickString(flagIgnoreFile, lcfg.IgnoreFile, gcfg.IgnoreFile)
	if ignorePath == "" {
		ignorePath = config.IgnorePath(sc.RepoPath)
	}
	ign, err := ignore.Load(ignorePath)
	if err != nil {
		return fmt.Errorf("load ignore file: %w", err)
	}

	if !flagJSON && !flagSARIF && !flagNoUpdateCheck && !pickBool(false, lcfg.NoUpdateCheck, gcfg.NoUpdateCheck) {
		if latest, newer, _ := update.Check(version, false); newer && latest != "" {
			fmt.Fprintf(os.Stderr, "(new version available: v%s)  run 'gatehound update' to upgrade\n", latest)
		}
	}

	ocfg := orchestrator.Config{
		Runners: runners,
		Policy:  pol,
		Ignore:  ign,
		RunsDir: runsDir,
		Workers: flagWorkers,
		Log:     log,
	}
	if !flagNoAudit {
		ocfg.Audit = audit.New(sc.RepoPath)
	}

	out, err := orchestrator.Run(cmd.Context(), sc, ocfg)
	if err != nil {
		return err
	}

	switch {
	case flagSARIF:
		if err := report.WriteSARIF(os.Stdout, out.Findings, version); err != nil {
			return fmt.Errorf("sarif error: %w", err)
		}
	case flagJSON:
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		rep := jsonReport{
			Findings:   out.Findings,
			Policy:     out.Policy,
			RunID:      sc.RunID,
			Suppressed: out.Suppressed,
		}
		if rep.Findings == nil {
			rep.Findings = []types.Finding{}
		}
		if rep.Suppressed == nil {
			rep.Suppressed = []ignore.Suppressed{}
		}
		if err := enc.Encode(rep); err != nil {
			return err
		}
	default:
		noColor := flagNoColor || !report.IsTTY(os.Stdout)
		report.PrintTable(os.Stdout, out.Findings, out.Suppressed, out.Policy, report.PrintOptions{
			NoColor:        noColor,
			Duration:       out.Duration,
			ShowSuppressed: flagShowSuppressed,
		})
		fmt.Fprintf(os.Stderr, "Run manifest: %s\n", out.ManifestPath)
	}

	if out.Policy.ExitCode != policy.ExitPass {
		os.Exit(out.Policy.ExitCode)
	}
	return nil
}

// policyFromFlags layers policy settings: defaults, then global and local
// config, then explicit CLI flags.
func policyFromFlags(cmd *cobra.Command, lcfg, gcfg config.FileConfig) policy.Config {
	pol := gcfg.Policy.Apply(policy.DefaultConfig())
	pol = lcfg.Policy.Apply(pol)

	if cmd.Flags().Changed("fail-on") {
		applyFailOn(&pol, flagFailOn)
	}
	if cmd.Flags().Changed("max-critical") {
		pol.MaxCritical = flagMaxCritical
	}
	if cmd.Flags().Changed("max-high") {
		pol.MaxHigh = flagMaxHigh
	}
	if cmd.Flags().Changed("max-medium") {
		pol.MaxMedium = flagMaxMedium
	}
	if cmd.Flags().Changed("max-low") {
		pol.MaxLow = flagMaxLow
	}
	if cmd.Flags().Changed("max-total") {
		pol.MaxTotal = flagMaxTotal
	}
	return pol
}

// applyFailOn treats the flag as a threshold: fail on the named severity
// and everything above it.
func applyFailOn(pol *policy.Config, level string) {
	threshold := types.ParseSeverity(level)
	if threshold == types.SevUnknown {
		threshold = types.SevCritical + 1 // "none" or unrecognized: nothing blocks
	}
	pol.FailOnCritical = types.SevCritical >= threshold
	pol.FailOnHigh = types.SevHigh >= threshold
	pol.FailOnMedium = types.SevMedium >= threshold
	pol.FailOnLow = types.SevLow >= threshold
	pol.FailOnInfo = types.SevInfo >= threshold
	pol.FailOnUnknown = false
}

// containerOverride merges per-scanner sandbox overrides, local config
// winning over global.
func containerOverride(a scanners.Adapter, lcfg, gcfg config.FileConfig) *backend.ContainerConfig {
	base := a.DefaultContainer()
	applied := false
	if cf, ok := gcfg.Containers[a.Name()]; ok {
		base = cf.Apply(base)
		applied = true
	}
	if cf, ok := lcfg.Containers[a.Name()]; ok {
		base = cf.Apply(base)
		applied = true
	}
	if !applied {
		return nil
	}
	return &base
}

func parseTimeout(s string) (timeout time.Duration, err error) {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid --timeout %q", s)
	}
	return d, nil
}

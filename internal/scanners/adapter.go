// Package scanners contains the adapters that know how to invoke each
// supported third-party tool through an execution backend and normalize its
// output into Findings. The tools themselves are trusted black boxes; the
// adapters own the command line, the severity mapping, and the fail-closed
// parse of their JSON output.
package scanners

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/gatehound/gatehound/internal/backend"
	"github.com/gatehound/gatehound/internal/scan"
	"github.com/gatehound/gatehound/internal/types"
)

// stderrTailLimit caps how much tool stderr is carried into a scan error.
const stderrTailLimit = 2000

// Adapter is implemented once per supported tool. Implementations are
// stateless: everything per-run arrives via scan.Context.
type Adapter interface {
	// Name is the canonical tool name recorded on findings and steps.
	Name() string
	// ScanType is the human label for reports ("dependency/container
	// vulnerabilities", "code patterns", "secrets").
	ScanType() string
	// Command builds the tool argv for the given backend kind. The target
	// path differs between kinds because the container backend mounts the
	// repository at a fixed path.
	Command(sc scan.Context, kind backend.Kind) (tool string, args []string)
	// DefaultContainer is the sandbox policy used when the container
	// backend runs this tool and the caller did not override it.
	DefaultContainer() backend.ContainerConfig
	// Parse converts successful tool output into findings. It must fail
	// closed: malformed output is an error, never an empty result.
	Parse(raw []byte) ([]types.Finding, error)
}

// targetPath returns the scan target as seen by the tool under the given
// backend: the repository root natively, the fixed mount in a container.
func targetPath(kind backend.Kind) string {
	if kind == backend.KindContainer {
		return "/src"
	}
	return "."
}

// Result is the outcome of running one adapter: findings on success, a
// ScanError otherwise, plus the raw execution record for the manifest.
type Result struct {
	Scanner     string
	ScanType    string
	BackendUsed backend.Kind
	Tool        string
	Args        []string
	Exec        backend.Result
	Findings    []types.Finding
	Err         *types.ScanError
}

// Resolver picks a backend for a preference. *backend.Selector is the real
// implementation; tests substitute fakes.
type Resolver interface {
	Resolve(backend.Preference) backend.Backend
}

// Runner binds an adapter to a backend selection. One Runner per configured
// scanner per run.
type Runner struct {
	Adapter    Adapter
	Selector   Resolver
	Preference backend.Preference
	Container  *backend.ContainerConfig // optional override
	Log        *zap.SugaredLogger

	backendUsed backend.Kind
}

// BackendUsed reports which backend executed the tool. Valid after the
// first Run; recorded for audit and test inspection.
func (r *Runner) BackendUsed() backend.Kind { return r.backendUsed }

// Run executes the adapter's tool through the resolved backend and parses
// its output. Every failure mode becomes a ScanError in the Result; Run
// itself never fails.
func (r *Runner) Run(ctx context.Context, sc scan.Context) Result {
	be := r.Selector.Resolve(r.Preference)
	r.backendUsed = be.Kind()

	tool, args := r.Adapter.Command(sc, be.Kind())
	cc := r.Adapter.DefaultContainer()
	if r.Container != nil {
		cc = *r.Container
	}
	spec := backend.ExecSpec{
		Tool:       tool,
		Args:       args,
		RepoPath:   sc.RepoPath,
		OutputPath: sc.OutputDir,
		Timeout:    sc.Timeout,
		Container:  cc,
	}

	res := Result{
		Scanner:     r.Adapter.Name(),
		ScanType:    r.Adapter.ScanType(),
		BackendUsed: be.Kind(),
		Tool:        tool,
		Args:        args,
	}

	if r.Log != nil {
		r.Log.Debugw("running scanner", "scanner", res.Scanner, "backend", be.Kind(), "tool", tool)
	}
	res.Exec = be.Execute(ctx, spec)

	if !res.Exec.OK() {
		// A killed process may have emitted partial JSON; it is never
		// safe to parse.
		res.Err = &types.ScanError{
			Tool:     r.Adapter.Name(),
			ExitCode: res.Exec.ExitCode,
			Message:  stderrTail(res.Exec.Stderr),
			TimedOut: res.Exec.TimedOut,
		}
		return res
	}

	findings, err := r.Adapter.Parse([]byte(res.Exec.Stdout))
	if err != nil {
		// Fail closed: a broken scanner must not masquerade as a clean one.
		res.Err = &types.ScanError{
			Tool:     r.Adapter.Name(),
			ExitCode: res.Exec.ExitCode,
			Message:  fmt.Sprintf("output parse failed: %v", err),
		}
		return res
	}
	res.Findings = findings
	return res
}

// stderrTail returns a sanitized tail of tool stderr for scan error
// messages: bounded length, no control characters beyond newlines.
func stderrTail(stderr string) string {
	s := strings.TrimSpace(stderr)
	if s == "" {
		return "tool exited with failure and no stderr"
	}
	if len(s) > stderrTailLimit {
		s = s[len(s)-stderrTailLimit:]
	}
	var b strings.Builder
	for _, r := range s {
		if r == '\n' || r == '\t' || r >= 0x20 {
			b.WriteRune(r)
		}
	}
	return b.String()
}

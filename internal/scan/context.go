// Package scan defines the per-run execution context shared by every
// scanner adapter.
package scan

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/gatehound/gatehound/internal/validate"
)

// DefaultTimeout is the per-tool wall-clock budget when the caller does not
// set one.
const DefaultTimeout = 10 * time.Minute

// Context carries the per-run parameters shared by all scanners. It is
// created once per invocation via NewContext and read-only afterward.
type Context struct {
	RepoPath  string // absolute, validated
	OutputDir string // absolute, created if missing
	RunID     string
	CommitSHA string // optional, best-effort
	Timeout   time.Duration
}

// NewContext validates inputs and builds a Context. Invalid run IDs and
// unreadable repo paths are rejected here, before any tool runs.
func NewContext(repoPath, outputDir, runID string, timeout time.Duration) (Context, error) {
	if err := validate.RunID(runID); err != nil {
		return Context{}, err
	}
	absRepo, err := validate.RepoPath(repoPath)
	if err != nil {
		return Context{}, err
	}
	absOut, err := validate.OutputDir(outputDir)
	if err != nil {
		return Context{}, err
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return Context{
		RepoPath:  absRepo,
		OutputDir: absOut,
		RunID:     runID,
		Timeout:   timeout,
	}, nil
}

// WithCommit returns a copy of the context carrying the resolved commit SHA.
func (c Context) WithCommit(sha string) Context {
	c.CommitSHA = sha
	return c
}

// NewRunID generates a fresh run identifier that always satisfies
// validate.RunID.
func NewRunID() string {
	return fmt.Sprintf("gh-%s", strings.ReplaceAll(uuid.NewString(), "-", "")[:12])
}

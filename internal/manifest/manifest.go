// Package manifest assembles the immutable audit record of one
// orchestration run. A manifest is built once, after every step has
// completed or failed, then serialized to the run directory and never
// mutated. Serialization is byte-stable: struct fields are declared in
// alphabetical JSON key order and the field set is part of the
// compatibility contract.
package manifest

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gatehound/gatehound/internal/validate"
)

// Run statuses.
const (
	StatusSuccess = "success" // clean pass
	StatusFailure = "failure" // policy violation
	StatusError   = "error"   // scan infrastructure error
)

// StepResult records one executed step: the literal invocation and its
// outcome, including failed and timed-out steps.
type StepResult struct {
	Args       []string `json:"args"`
	DurationMS int64    `json:"duration_ms"`
	ExitCode   int      `json:"exit_code"`
	Name       string   `json:"name"`
	Stderr     string   `json:"stderr"`
	Stdout     string   `json:"stdout"`
	TimedOut   bool     `json:"timed_out"`
}

// RunManifest is the durable audit artifact for a run. Existing fields
// must not be renamed or removed without a version bump.
type RunManifest struct {
	FinishedAt string       `json:"finished_at"`
	RepoPath   string       `json:"repo_path"`
	RunDir     string       `json:"run_dir"`
	RunID      string       `json:"run_id"`
	StartedAt  string       `json:"started_at"`
	Status     string       `json:"status"`
	Steps      []StepResult `json:"steps"`
}

// Build validates inputs and assembles a manifest. The repo path is
// canonicalized to an absolute path so manifests are comparable across
// invocations from different working directories. Malformed inputs here
// are programming errors, reported as plain errors before anything is
// written.
func Build(runID, repoPath, runDir string, startedAt, finishedAt time.Time, status string, steps []StepResult) (RunManifest, error) {
	if err := validate.RunID(runID); err != nil {
		return RunManifest{}, fmt.Errorf("build manifest: %w", err)
	}
	absRepo, err := validate.RepoPath(repoPath)
	if err != nil {
		return RunManifest{}, fmt.Errorf("build manifest: %w", err)
	}
	switch status {
	case StatusSuccess, StatusFailure, StatusError:
	default:
		return RunManifest{}, fmt.Errorf("build manifest: invalid status %q", status)
	}
	if steps == nil {
		steps = []StepResult{}
	}
	return RunManifest{
		FinishedAt: startedOrFinished(finishedAt),
		RepoPath:   absRepo,
		RunDir:     runDir,
		RunID:      runID,
		StartedAt:  startedOrFinished(startedAt),
		Status:     status,
		Steps:      steps,
	}, nil
}

// startedOrFinished renders a timestamp as ISO-8601 UTC.
func startedOrFinished(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// Marshal serializes the manifest with stable formatting. Identical
// manifests produce byte-identical output; snapshot tests rely on it.
func (m RunManifest) Marshal() ([]byte, error) {
	return json.MarshalIndent(m, "", "  ")
}

// Write persists the manifest as manifest.json under its run directory.
// One run directory is owned by one run_id, so the write needs no
// cross-process coordination.
func (m RunManifest) Write() (string, error) {
	if err := os.MkdirAll(m.RunDir, 0o755); err != nil {
		return "", fmt.Errorf("create run dir: %w", err)
	}
	b, err := m.Marshal()
	if err != nil {
		return "", err
	}
	path := filepath.Join(m.RunDir, "manifest.json")
	if err := os.WriteFile(path, append(b, '\n'), 0o644); err != nil {
		return "", fmt.Errorf("write manifest: %w", err)
	}
	return path, nil
}

// Load reads a previously-written manifest, for the runs listing command.
func Load(path string) (RunManifest, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return RunManifest{}, err
	}
	var m RunManifest
	if err := json.Unmarshal(b, &m); err != nil {
		return RunManifest{}, fmt.Errorf("malformed manifest %s: %w", path, err)
	}
	return m, nil
}

// Package audit keeps an append-only JSONL history of orchestration runs,
// including which findings were suppressed by the ignore list and why.
// Suppression does not affect the exit code, but it must stay attributable.
package audit

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gatehound/gatehound/internal/ignore"
	"github.com/gatehound/gatehound/internal/types"
)

// RunRecord is one line of the audit log.
type RunRecord struct {
	Timestamp       time.Time           `json:"timestamp"`
	RunID           string              `json:"run_id"`
	RepoPath        string              `json:"repo_path"`
	Status          string              `json:"status"`
	ExitCode        int                 `json:"exit_code"`
	TotalFindings   int                 `json:"total_findings"`
	SuppressedCount int                 `json:"suppressed_count"`
	SeverityCounts  map[string]int      `json:"severity_counts"`
	ScanErrors      []types.ScanError   `json:"scan_errors,omitempty"`
	Duration        string              `json:"duration"`
	Suppressed      []ignore.Suppressed `json:"suppressed,omitempty"`
}

// Log appends run records to a single audit file.
type Log struct {
	path string
}

// New returns an audit log rooted at the given repository: records land in
// .git/gatehound_audit.jsonl when the repo is a git checkout, else in a
// dot-file at the repo root.
func New(root string) *Log {
	gitDir := filepath.Join(root, ".git")
	path := filepath.Join(root, ".gatehound_audit.jsonl")
	if st, err := os.Stat(gitDir); err == nil && st.IsDir() {
		path = filepath.Join(gitDir, "gatehound_audit.jsonl")
	}
	return &Log{path: path}
}

// NewAt returns an audit log writing to an explicit file path.
func NewAt(path string) *Log { return &Log{path: path} }

// Path returns where records are written.
func (l *Log) Path() string { return l.path }

// Append writes one record. The log file is owner-only: it names files and
// rules that were deliberately not fixed.
func (l *Log) Append(record RunRecord) error {
	if record.Timestamp.IsZero() {
		record.Timestamp = time.Now().UTC()
	}
	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("open audit log: %w", err)
	}
	defer f.Close()

	if err := json.NewEncoder(f).Encode(record); err != nil {
		return fmt.Errorf("write audit record: %w", err)
	}
	return nil
}

// History returns all records, newest first. Corrupt lines are skipped:
// a damaged log should not block new runs from being audited.
func (l *Log) History() ([]RunRecord, error) {
	f, err := os.Open(l.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("open audit log: %w", err)
	}
	defer f.Close()

	var records []RunRecord
	dec := json.NewDecoder(f)
	for dec.More() {
		var rec RunRecord
		if err := dec.Decode(&rec); err != nil {
			break
		}
		records = append(records, rec)
	}
	for i, j := 0, len(records)-1; i < j; i, j = i+1, j-1 {
		records[i], records[j] = records[j], records[i]
	}
	return records, nil
}

// NewRunRecord assembles a record from one orchestration outcome.
func NewRunRecord(runID, repoPath, status string, exitCode int, findings []types.Finding, suppressed []ignore.Suppressed, scanErrors []types.ScanError, duration time.Duration) RunRecord {
	counts := map[string]int{}
	for _, f := range findings {
		counts[f.Severity.String()]++
	}
	return RunRecord{
		Timestamp:       time.Now().UTC(),
		RunID:           runID,
		RepoPath:        repoPath,
		Status:          status,
		ExitCode:        exitCode,
		TotalFindings:   len(findings),
		SuppressedCount: len(suppressed),
		SeverityCounts:  counts,
		ScanErrors:      scanErrors,
		Duration:        duration.String(),
		Suppressed:      suppressed,
	}
}

package manifest

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	start  = time.Date(2026, 8, 25, 10, 0, 0, 0, time.UTC)
	finish = start.Add(42 * time.Second)
)

func sampleSteps() []StepResult {
	return []StepResult{
		{Name: "trivy", Args: []string{"fs", "--format", "json", "."}, ExitCode: 0, DurationMS: 1200, Stdout: "{}", Stderr: ""},
		{Name: "semgrep", Args: []string{"scan", "--json", "."}, ExitCode: 124, DurationMS: 30000, TimedOut: true},
	}
}

func TestBuildValidates(t *testing.T) {
	repo := t.TempDir()

	_, err := Build("", repo, "/runs/x", start, finish, StatusSuccess, nil)
	assert.Error(t, err)

	_, err = Build("bad id!", repo, "/runs/x", start, finish, StatusSuccess, nil)
	assert.Error(t, err)

	_, err = Build("run-1", filepath.Join(repo, "missing"), "/runs/x", start, finish, StatusSuccess, nil)
	assert.Error(t, err)

	_, err = Build("run-1", repo, "/runs/x", start, finish, "partial", nil)
	assert.Error(t, err)

	m, err := Build("run-1", repo, "/runs/x", start, finish, StatusFailure, sampleSteps())
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(m.RepoPath))
	assert.Equal(t, "2026-08-25T10:00:00Z", m.StartedAt)
	assert.Equal(t, "2026-08-25T10:00:42Z", m.FinishedAt)
}

func TestMarshalIsByteStable(t *testing.T) {
	repo := t.TempDir()
	a, err := Build("run-1", repo, "/runs/run-1", start, finish, StatusSuccess, sampleSteps())
	require.NoError(t, err)
	b, err := Build("run-1", repo, "/runs/run-1", start, finish, StatusSuccess, sampleSteps())
	require.NoError(t, err)

	ba, err := a.Marshal()
	require.NoError(t, err)
	bb, err := b.Marshal()
	require.NoError(t, err)
	assert.Equal(t, ba, bb)
}

func TestMarshalKeyOrderSorted(t *testing.T) {
	repo := t.TempDir()
	m, err := Build("run-1", repo, "/runs/run-1", start, finish, StatusSuccess, sampleSteps())
	require.NoError(t, err)
	b, err := m.Marshal()
	require.NoError(t, err)

	// Top-level keys arrive in sorted order.
	idx := func(key string) int {
		return indexOf(string(b), `"`+key+`"`)
	}
	order := []string{"finished_at", "repo_path", "run_dir", "run_id", "started_at", "status", "steps"}
	last := -1
	for _, key := range order {
		pos := idx(key)
		require.GreaterOrEqual(t, pos, 0, "missing key %s", key)
		assert.Greater(t, pos, last, "key %s out of order", key)
		last = pos
	}
}

func indexOf(haystack, needle string) int {
	for i := 0; i+len(needle) <= len(haystack); i++ {
		if haystack[i:i+len(needle)] == needle {
			return i
		}
	}
	return -1
}

func TestWriteAndLoadRoundTrip(t *testing.T) {
	repo := t.TempDir()
	runDir := filepath.Join(t.TempDir(), "runs", "run-1")
	m, err := Build("run-1", repo, runDir, start, finish, StatusError, sampleSteps())
	require.NoError(t, err)

	path, err := m.Write()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(runDir, "manifest.json"), path)

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, m, loaded)

	// Identical rebuild writes identical bytes (snapshot stability).
	again, err := Build("run-1", repo, runDir, start, finish, StatusError, sampleSteps())
	require.NoError(t, err)
	b1, _ := m.Marshal()
	b2, _ := again.Marshal()
	assert.Equal(t, b1, b2)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, string(append(b1, '\n')), string(raw))
}

func TestBuildNilStepsBecomesEmptyList(t *testing.T) {
	m, err := Build("run-1", t.TempDir(), "/runs/run-1", start, finish, StatusSuccess, nil)
	require.NoError(t, err)
	b, err := m.Marshal()
	require.NoError(t, err)
	assert.Contains(t, string(b), `"steps": []`)
}

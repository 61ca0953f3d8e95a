package audit

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gatehound/gatehound/internal/ignore"
	"github.com/gatehound/gatehound/internal/types"
)

func TestNewPrefersGitDir(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(root, ".git"), 0o755))
	l := New(root)
	assert.Equal(t, filepath.Join(root, ".git", "gatehound_audit.jsonl"), l.Path())

	plain := t.TempDir()
	assert.Equal(t, filepath.Join(plain, ".gatehound_audit.jsonl"), New(plain).Path())
}

func TestAppendAndHistory(t *testing.T) {
	l := NewAt(filepath.Join(t.TempDir(), "audit.jsonl"))

	for _, id := range []string{"run-1", "run-2"} {
		rec := NewRunRecord(id, "/repo", "failure", 1,
			[]types.Finding{{Scanner: "trivy", Title: "x", Severity: types.SevHigh}},
			[]ignore.Suppressed{{Finding: types.Finding{Scanner: "gitleaks", Title: "y"}, Pattern: "gitleaks:*:tests/**"}},
			nil, 3*time.Second)
		require.NoError(t, l.Append(rec))
	}

	records, err := l.History()
	require.NoError(t, err)
	require.Len(t, records, 2)
	// Newest first.
	assert.Equal(t, "run-2", records[0].RunID)
	assert.Equal(t, 1, records[0].SuppressedCount)
	assert.Equal(t, "gitleaks:*:tests/**", records[0].Suppressed[0].Pattern)
	assert.Equal(t, 1, records[0].SeverityCounts["high"])
}

func TestHistorySkipsCorruptTail(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.jsonl")
	l := NewAt(path)
	require.NoError(t, l.Append(RunRecord{RunID: "run-1"}))

	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o600)
	require.NoError(t, err)
	_, _ = f.WriteString("{corrupt\n")
	_ = f.Close()

	records, err := l.History()
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "run-1", records[0].RunID)
}

func TestAppendFileMode(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.jsonl")
	require.NoError(t, NewAt(path).Append(RunRecord{RunID: "run-1"}))
	st, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), st.Mode().Perm())
}

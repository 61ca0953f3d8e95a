package scan

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/gatehound/gatehound/internal/validate"
	"github.com/stretchr/testify/require"
)

func TestNewContext(t *testing.T) {
	repo := t.TempDir()
	out := filepath.Join(t.TempDir(), "out")

	ctx, err := NewContext(repo, out, "run-1", 30*time.Second)
	require.NoError(t, err)
	require.True(t, filepath.IsAbs(ctx.RepoPath))
	require.True(t, filepath.IsAbs(ctx.OutputDir))
	require.Equal(t, 30*time.Second, ctx.Timeout)
}

func TestNewContextRejectsBadRunID(t *testing.T) {
	_, err := NewContext(t.TempDir(), t.TempDir(), "bad run id!", 0)
	require.Error(t, err)
}

func TestNewContextRejectsMissingRepo(t *testing.T) {
	_, err := NewContext(filepath.Join(t.TempDir(), "nope"), t.TempDir(), "run-1", 0)
	require.Error(t, err)
}

func TestNewContextDefaultTimeout(t *testing.T) {
	ctx, err := NewContext(t.TempDir(), t.TempDir(), "run-1", 0)
	require.NoError(t, err)
	require.Equal(t, DefaultTimeout, ctx.Timeout)
}

func TestNewRunIDIsValid(t *testing.T) {
	for i := 0; i < 10; i++ {
		id := NewRunID()
		require.NoError(t, validate.RunID(id), "generated id %q", id)
	}
}

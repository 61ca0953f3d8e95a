package core

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gatehound/gatehound/internal/config"
	"github.com/gatehound/gatehound/internal/types"
)

func TestScanRejectsBadOptions(t *testing.T) {
	t.Setenv(config.HomeEnv, t.TempDir())

	_, err := Scan(context.Background(), Options{RepoPath: "/does/not/exist"})
	require.Error(t, err)

	_, err = Scan(context.Background(), Options{RepoPath: t.TempDir(), Scanners: []string{"nope"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown scanner")
}

func TestMarshalRoundtrip(t *testing.T) {
	in := []Finding{
		{Scanner: "trivy", Title: "x", Severity: types.SevHigh, FilePath: "go.mod"},
	}
	var buf bytes.Buffer
	require.NoError(t, MarshalFindings(&buf, in))
	assert.Contains(t, buf.String(), `"severity": "high"`)

	out, err := UnmarshalFindings(&buf)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, in[0], out[0])
}

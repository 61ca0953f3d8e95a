package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gatehound/gatehound/internal/backend"
	"github.com/gatehound/gatehound/internal/policy"
)

func TestLoadLocal(t *testing.T) {
	dir := t.TempDir()
	content := `scanners: trivy,gitleaks
backend: native
timeout: 5m
policy:
  fail_on_medium: true
  max_total: 100
containers:
  trivy:
    image: mirror.internal/trivy
    digest: sha256:9f86d081884c7d659a2feaa0c55ad015a3bf4f1b2b0b822cd15d6c15b0f00a08
    network_disabled: true
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".gatehound.yml"), []byte(content), 0o644))

	cfg, err := LoadLocal(dir)
	require.NoError(t, err)
	require.NotNil(t, cfg.Scanners)
	assert.Equal(t, "trivy,gitleaks", *cfg.Scanners)
	assert.Equal(t, "native", *cfg.Backend)

	pc := cfg.Policy.Apply(policy.DefaultConfig())
	assert.True(t, pc.FailOnMedium)
	assert.True(t, pc.FailOnCritical, "defaults survive overlay")
	assert.Equal(t, 100, pc.MaxTotal)
	assert.Equal(t, 0, pc.MaxCritical)

	cc := cfg.Containers["trivy"].Apply(backend.DefaultContainerConfig("aquasec/trivy:0.58.1"))
	assert.Equal(t, "mirror.internal/trivy", cc.Image)
	assert.True(t, cc.NetworkDisabled)
	assert.True(t, cc.ReadOnly, "unset fields keep defaults")
}

func TestLoadLocalMissing(t *testing.T) {
	_, err := LoadLocal(t.TempDir())
	assert.Error(t, err)
}

func TestPolicyFileNilApply(t *testing.T) {
	var p *PolicyFile
	got := p.Apply(policy.DefaultConfig())
	assert.Equal(t, policy.DefaultConfig(), got)
}

func TestHomeDirHonorsOverride(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(HomeEnv, dir)
	assert.Equal(t, dir, HomeDir())
	assert.Equal(t, filepath.Join(dir, "runs"), RunsDir())
	assert.Equal(t, filepath.Join(dir, "bin"), BinDir())
}

func TestHomeDirFallsBackToXDG(t *testing.T) {
	t.Setenv(HomeEnv, "")
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	assert.Equal(t, filepath.Join("/tmp/xdg", "gatehound"), HomeDir())
}

func TestIgnorePathPrefersRepoLocal(t *testing.T) {
	home := t.TempDir()
	t.Setenv(HomeEnv, home)

	repo := t.TempDir()
	assert.Equal(t, filepath.Join(home, "ignore"), IgnorePath(repo))

	local := filepath.Join(repo, ".gatehoundignore")
	require.NoError(t, os.WriteFile(local, []byte("trivy\n"), 0o644))
	assert.Equal(t, local, IgnorePath(repo))
}

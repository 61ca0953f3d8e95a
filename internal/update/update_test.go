package update

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gatehound/gatehound/internal/config"
)

func TestCheckSkipsInCI(t *testing.T) {
	t.Setenv("CI", "1")
	latest, newer, err := Check("1.0.0", false)
	require.NoError(t, err)
	assert.Empty(t, latest)
	assert.False(t, newer)
}

func TestCheckSkipsWhenNoNetwork(t *testing.T) {
	t.Setenv("CI", "")
	latest, newer, err := Check("1.0.0", true)
	require.NoError(t, err)
	assert.Empty(t, latest)
	assert.False(t, newer)
}

func TestCheckUsesFreshCache(t *testing.T) {
	t.Setenv("CI", "")
	home := t.TempDir()
	t.Setenv(config.HomeEnv, home)

	c := cache{LastChecked: time.Now(), Latest: "1.2.3"}
	b, _ := json.Marshal(c)
	require.NoError(t, os.WriteFile(filepath.Join(home, cacheFileName), b, 0o644))

	latest, newer, err := Check("1.2.2", false)
	require.NoError(t, err)
	assert.Equal(t, "1.2.3", latest)
	assert.True(t, newer)

	latest, newer, err = Check("1.2.3", false)
	require.NoError(t, err)
	assert.Equal(t, "1.2.3", latest)
	assert.False(t, newer)
}

func TestCheckToleratesUnparseableVersions(t *testing.T) {
	t.Setenv("CI", "")
	home := t.TempDir()
	t.Setenv(config.HomeEnv, home)

	c := cache{LastChecked: time.Now(), Latest: "1.2.3"}
	b, _ := json.Marshal(c)
	require.NoError(t, os.WriteFile(filepath.Join(home, cacheFileName), b, 0o644))

	latest, newer, err := Check("dev", false)
	require.NoError(t, err)
	assert.Equal(t, "1.2.3", latest)
	assert.False(t, newer)
}

func TestApplyRefusesDevBuild(t *testing.T) {
	_, err := Apply("dev")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "development build")
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "1.2.3", normalize(" v1.2.3 "))
	assert.Equal(t, "1.2.3", normalize("1.2.3"))
}

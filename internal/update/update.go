// Package update checks for and applies new gatehound releases. Checks are
// rate-limited through a 24h on-disk cache and disabled entirely in CI.
package update

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/blang/semver"
	"github.com/rhysd/go-github-selfupdate/selfupdate"

	"github.com/gatehound/gatehound/internal/config"
)

const (
	repoSlug      = "gatehound/gatehound"
	cacheFileName = "update.json"
)

type cache struct {
	LastChecked time.Time `json:"last_checked"`
	Latest      string    `json:"latest"`
}

func cachePath() string {
	dir := config.HomeDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, cacheFileName)
}

func loadCache() (cache, error) {
	var c cache
	path := cachePath()
	if path == "" {
		return c, errors.New("no config dir")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return c, err
	}
	_ = json.Unmarshal(b, &c)
	return c, nil
}

func saveCache(c cache) {
	path := cachePath()
	if path == "" {
		return
	}
	_ = os.MkdirAll(filepath.Dir(path), 0o755)
	b, _ := json.MarshalIndent(c, "", "  ")
	_ = os.WriteFile(path, b, 0o644)
}

func latestVersionOnline() (string, error) {
	latest, found, err := selfupdate.DetectLatest(repoSlug)
	if err != nil {
		return "", err
	}
	if !found {
		return "", errors.New("no release found")
	}
	return latest.Version.String(), nil
}

// Check returns (latest, isNewer, error). It uses a 24h cache and skips in CI.
func Check(current string, noNetwork bool) (string, bool, error) {
	if os.Getenv("CI") != "" || noNetwork {
		return "", false, nil
	}
	current = normalize(current)
	c, _ := loadCache()
	latest := c.Latest
	if time.Since(c.LastChecked) > 24*time.Hour || latest == "" {
		if v, err := latestVersionOnline(); err == nil {
			latest = normalize(v)
			c.Latest = latest
			c.LastChecked = time.Now()
			saveCache(c)
		}
	}
	if latest == "" || current == "" {
		return latest, false, nil
	}
	lv, errL := semver.ParseTolerant(latest)
	cv, errC := semver.ParseTolerant(current)
	if errL != nil || errC != nil {
		return latest, false, nil
	}
	return latest, lv.GT(cv), nil
}

// Apply replaces the running binary with the latest release. Development
// builds refuse to update.
func Apply(current string) (string, error) {
	cv, err := semver.ParseTolerant(normalize(current))
	if err != nil {
		return "", fmt.Errorf("cannot self-update a development build (version %q)", current)
	}
	latest, err := selfupdate.UpdateSelf(cv, repoSlug)
	if err != nil {
		return "", fmt.Errorf("self-update: %w", err)
	}
	return latest.Version.String(), nil
}

func normalize(v string) string {
	v = strings.TrimSpace(v)
	return strings.TrimPrefix(v, "v")
}

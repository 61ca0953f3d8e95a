// Package validate holds input validation for values that cross the process
// boundary before any scanner runs. Rejections here are hard failures, not
// scan errors: nothing has executed yet and the caller gets a plain error.
package validate

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// Run IDs end up in directory names and manifest files, so they are
// restricted to a conservative identifier alphabet.
var runIDPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_-]{0,63}$`)

// RunID reports whether id is a safe run identifier: alphanumeric start,
// alphanumeric/dash/underscore body, at most 64 characters.
func RunID(id string) error {
	if id == "" {
		return fmt.Errorf("run id is empty")
	}
	if !runIDPattern.MatchString(id) {
		return fmt.Errorf("invalid run id %q: must match %s", id, runIDPattern.String())
	}
	return nil
}

// RepoPath validates that path exists, is a directory, and is readable.
// It returns the cleaned absolute path so downstream records are comparable
// across invocations from different working directories.
func RepoPath(path string) (string, error) {
	if strings.ContainsRune(path, 0) {
		return "", fmt.Errorf("invalid path: contains null byte")
	}
	abs, err := filepath.Abs(filepath.Clean(path))
	if err != nil {
		return "", fmt.Errorf("invalid path %q: %w", path, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("cannot access repo path %q: %w", path, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("repo path is not a directory: %s", path)
	}
	if f, err := os.Open(abs); err != nil {
		return "", fmt.Errorf("repo path not readable: %w", err)
	} else {
		_ = f.Close()
	}
	return abs, nil
}

// OutputDir ensures dir exists and is writable, creating it if needed.
func OutputDir(dir string) (string, error) {
	abs, err := filepath.Abs(filepath.Clean(dir))
	if err != nil {
		return "", fmt.Errorf("invalid output dir %q: %w", dir, err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return "", fmt.Errorf("cannot create output dir %q: %w", dir, err)
	}
	probe := filepath.Join(abs, ".gatehound-write-probe")
	if err := os.WriteFile(probe, nil, 0o600); err != nil {
		return "", fmt.Errorf("output dir not writable: %w", err)
	}
	_ = os.Remove(probe)
	return abs, nil
}

package backend

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"
)

// Native runs tools directly on the host. It resolves binaries via PATH
// with an optional fallback install directory, and enforces the wall-clock
// timeout by killing the child process.
type Native struct {
	// FallbackDir is searched when PATH resolution fails, e.g.
	// ~/.gatehound/bin for tools installed by the user out of band.
	FallbackDir string

	// lookPath is swappable for tests.
	lookPath func(string) (string, error)
}

// NewNative returns a native backend with the given fallback install dir
// (empty disables the fallback).
func NewNative(fallbackDir string) *Native {
	return &Native{FallbackDir: fallbackDir, lookPath: exec.LookPath}
}

func (n *Native) Kind() Kind { return KindNative }

// Available is unconditionally true: spawning a process needs no engine.
func (n *Native) Available() bool { return true }

// Resolve locates a tool binary via PATH, then the fallback dir.
func (n *Native) Resolve(tool string) (string, error) {
	look := n.lookPath
	if look == nil {
		look = exec.LookPath
	}
	if path, err := look(tool); err == nil {
		return path, nil
	}
	if n.FallbackDir != "" {
		candidate := filepath.Join(n.FallbackDir, tool)
		if st, err := os.Stat(candidate); err == nil && !st.IsDir() && st.Mode()&0o111 != 0 {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("tool %q not found in PATH or %s", tool, n.FallbackDir)
}

// Execute resolves and spawns the tool. A missing binary is a reportable
// scan error (exit 127), not a program fault.
func (n *Native) Execute(ctx context.Context, spec ExecSpec) Result {
	path, err := n.Resolve(spec.Tool)
	if err != nil {
		return Result{ExitCode: ExitNotFound, Stderr: err.Error()}
	}
	return runCommand(ctx, spec.Timeout, path, spec.Args, spec.RepoPath)
}

// runCommand spawns argv under a deadline and maps the outcome to a Result.
// Shared with the container backend, whose argv is the engine CLI.
func runCommand(ctx context.Context, timeout time.Duration, bin string, args []string, dir string) Result {
	if timeout <= 0 {
		timeout = 10 * time.Minute
	}
	cctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(cctx, bin, args...)
	if dir != "" {
		cmd.Dir = dir
	}
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	started := time.Now()
	err := cmd.Run()
	elapsed := time.Since(started)

	res := Result{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Duration: elapsed,
	}

	if cctx.Err() == context.DeadlineExceeded {
		// The child was killed; its reported exit status is meaningless.
		res.TimedOut = true
		res.ExitCode = ExitTimeout
		return res
	}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			res.ExitCode = exitErr.ExitCode()
		} else {
			res.ExitCode = ExitNotFound
			if res.Stderr == "" {
				res.Stderr = err.Error()
			}
		}
		return res
	}
	res.ExitCode = 0
	return res
}

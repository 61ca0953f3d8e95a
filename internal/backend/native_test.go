package backend

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"
)

func TestNativeToolNotFound(t *testing.T) {
	n := NewNative("")
	n.lookPath = func(string) (string, error) { return "", errors.New("no such binary") }

	res := n.Execute(context.Background(), ExecSpec{Tool: "definitely-missing-tool"})
	if res.ExitCode != ExitNotFound {
		t.Fatalf("exit code = %d, want %d", res.ExitCode, ExitNotFound)
	}
	if !strings.Contains(res.Stderr, "not found") {
		t.Fatalf("stderr %q does not mention not found", res.Stderr)
	}
	if res.TimedOut {
		t.Fatal("not-found must not be reported as timeout")
	}
}

func TestNativeFallbackDir(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("unix permissions")
	}
	dir := t.TempDir()
	bin := filepath.Join(dir, "mytool")
	if err := os.WriteFile(bin, []byte("#!/bin/sh\nexit 0\n"), 0o755); err != nil {
		t.Fatal(err)
	}
	n := NewNative(dir)
	n.lookPath = func(string) (string, error) { return "", errors.New("not in PATH") }

	path, err := n.Resolve("mytool")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if path != bin {
		t.Fatalf("resolved %q, want %q", path, bin)
	}
}

func TestNativeCapturesOutputAndExitCode(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("requires sh")
	}
	n := NewNative("")
	res := n.Execute(context.Background(), ExecSpec{
		Tool:    "sh",
		Args:    []string{"-c", "echo out; echo err 1>&2; exit 3"},
		Timeout: 10 * time.Second,
	})
	if res.ExitCode != 3 {
		t.Fatalf("exit code = %d, want 3", res.ExitCode)
	}
	if strings.TrimSpace(res.Stdout) != "out" || strings.TrimSpace(res.Stderr) != "err" {
		t.Fatalf("unexpected capture: stdout=%q stderr=%q", res.Stdout, res.Stderr)
	}
	if res.Duration <= 0 {
		t.Fatal("duration not recorded")
	}
}

func TestNativeTimeout(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("requires sleep")
	}
	n := NewNative("")
	res := n.Execute(context.Background(), ExecSpec{
		Tool:    "sleep",
		Args:    []string{"30"},
		Timeout: 100 * time.Millisecond,
	})
	if !res.TimedOut {
		t.Fatal("expected timeout")
	}
	if res.ExitCode != ExitTimeout {
		t.Fatalf("exit code = %d, want %d", res.ExitCode, ExitTimeout)
	}
}

func TestNativeAlwaysAvailable(t *testing.T) {
	if !NewNative("").Available() {
		t.Fatal("native backend must always be available")
	}
}

// Package backend runs third-party scanner binaries under a uniform
// "execute, capture output, enforce timeout" contract. Two implementations
// exist: Native spawns the tool directly, Container runs it inside a
// hardened container. Expected failures (missing tool, timeout, engine
// unavailable) are encoded in the Result, never returned as errors.
package backend

import (
	"context"
	"time"
)

// Kind identifies which sandboxing strategy executed a tool.
type Kind string

const (
	KindNative    Kind = "native"
	KindContainer Kind = "container"
)

// Conventional exit codes carried in Results for failures that happen
// before or instead of the tool itself exiting.
const (
	// ExitTimeout mirrors coreutils timeout(1).
	ExitTimeout = 124
	// ExitEngineUnavailable mirrors docker's own "engine error" code.
	ExitEngineUnavailable = 125
	// ExitNotFound mirrors the shell's command-not-found code.
	ExitNotFound = 127
)

// ExecSpec describes one tool invocation. Args is always passed as an
// argument vector, never joined into a shell string.
type ExecSpec struct {
	Tool       string
	Args       []string
	RepoPath   string
	OutputPath string
	Timeout    time.Duration

	// Container is consulted only by the container backend.
	Container ContainerConfig
}

// Result is the outcome of one tool invocation. TimedOut implies ExitCode
// is ExitTimeout regardless of what the killed process reported.
type Result struct {
	ExitCode int
	Stdout   string
	Stderr   string
	Duration time.Duration
	TimedOut bool
}

// OK reports whether the invocation completed cleanly.
func (r Result) OK() bool {
	return r.ExitCode == 0 && !r.TimedOut
}

// Backend executes tools under one sandboxing strategy.
type Backend interface {
	Kind() Kind
	// Available reports whether this backend can run tools at all.
	// The native backend is unconditionally available.
	Available() bool
	Execute(ctx context.Context, spec ExecSpec) Result
}

package backend

import (
	"context"
	"fmt"

	"github.com/google/go-containerregistry/pkg/name"
)

// ContainerConfig is the per-scanner sandbox policy. The zero value is not
// useful; construct via DefaultContainerConfig so the least-privilege
// defaults apply. Callers may relax individual flags explicitly, but the
// backend never escalates privilege on its own.
type ContainerConfig struct {
	Image           string
	ImageDigest     string // pin by content hash when set, else tag
	ReadOnly        bool
	NetworkDisabled bool
	NoNewPrivileges bool
	MemoryLimit     string
	CPULimit        string
}

// DefaultContainerConfig returns the least-privilege sandbox policy for the
// given image: read-only root fs, no network, no new privileges, 2g/2 CPU
// ceiling.
func DefaultContainerConfig(image string) ContainerConfig {
	return ContainerConfig{
		Image:           image,
		ReadOnly:        true,
		NetworkDisabled: true,
		NoNewPrivileges: true,
		MemoryLimit:     "2g",
		CPULimit:        "2",
	}
}

// Reference returns the validated image reference to run. When ImageDigest
// is set the image is pinned by content hash, otherwise the tag is used.
func (c ContainerConfig) Reference() (string, error) {
	if c.Image == "" {
		return "", fmt.Errorf("container image is empty")
	}
	if c.ImageDigest != "" {
		ref := fmt.Sprintf("%s@%s", c.Image, c.ImageDigest)
		if _, err := name.NewDigest(ref); err != nil {
			return "", fmt.Errorf("invalid image digest reference %q: %w", ref, err)
		}
		return ref, nil
	}
	if _, err := name.ParseReference(c.Image); err != nil {
		return "", fmt.Errorf("invalid image reference %q: %w", c.Image, err)
	}
	return c.Image, nil
}

// Mount points inside the scan container. The repository is always mounted
// read-only; scanner output lands in the writable output mount.
const (
	containerRepoMount   = "/src"
	containerOutputMount = "/out"
)

// Container runs tools inside a hardened container via the discovered
// engine CLI (docker or podman).
type Container struct {
	probe *EngineProbe
}

// NewContainer returns a container backend using the given engine probe.
func NewContainer(probe *EngineProbe) *Container {
	return &Container{probe: probe}
}

func (c *Container) Kind() Kind { return KindContainer }

// Available reports whether a container engine was discovered. The probe
// caches the answer; call probe.Refresh to re-discover.
func (c *Container) Available() bool { return c.probe.Available() }

// buildArgs constructs the engine argv for one invocation. Every hardening
// flag from the config is applied here; tests assert on this output.
func (c *Container) buildArgs(spec ExecSpec, ref string) []string {
	args := []string{"run", "--rm", "--cap-drop", "ALL"}
	cfg := spec.Container
	if cfg.ReadOnly {
		args = append(args, "--read-only")
	}
	if cfg.NetworkDisabled {
		args = append(args, "--network", "none")
	}
	if cfg.NoNewPrivileges {
		args = append(args, "--security-opt", "no-new-privileges")
	}
	if cfg.MemoryLimit != "" {
		args = append(args, "--memory", cfg.MemoryLimit)
	}
	if cfg.CPULimit != "" {
		args = append(args, "--cpus", cfg.CPULimit)
	}
	args = append(args,
		"-v", fmt.Sprintf("%s:%s:ro", spec.RepoPath, containerRepoMount),
	)
	if spec.OutputPath != "" {
		args = append(args, "-v", fmt.Sprintf("%s:%s:rw", spec.OutputPath, containerOutputMount))
	}
	args = append(args, "-w", containerRepoMount, ref, spec.Tool)
	args = append(args, spec.Args...)
	return args
}

// Execute runs the tool in a container. If no engine is reachable it fails
// fast with a descriptive result rather than hanging.
func (c *Container) Execute(ctx context.Context, spec ExecSpec) Result {
	engine, ok := c.probe.Engine()
	if !ok {
		return Result{
			ExitCode: ExitEngineUnavailable,
			Stderr:   "no container engine available (tried docker, podman); install one or use the native backend",
		}
	}
	ref, err := spec.Container.Reference()
	if err != nil {
		return Result{ExitCode: ExitEngineUnavailable, Stderr: err.Error()}
	}
	return runCommand(ctx, spec.Timeout, engine, c.buildArgs(spec, ref), "")
}

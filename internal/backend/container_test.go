package backend

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func probeWith(engines map[string]bool) *EngineProbe {
	p := NewEngineProbe()
	p.lookPath = func(name string) (string, error) {
		if engines[name] {
			return "/usr/bin/" + name, nil
		}
		return "", errors.New("not found")
	}
	return p
}

func TestContainerHardeningFlagsAlwaysPresent(t *testing.T) {
	c := NewContainer(probeWith(map[string]bool{"docker": true}))
	spec := ExecSpec{
		Tool:       "trivy",
		Args:       []string{"fs", "--format", "json", "."},
		RepoPath:   "/repo",
		OutputPath: "/tmp/out",
		Container:  DefaultContainerConfig("aquasec/trivy:0.55.0"),
	}
	args := c.buildArgs(spec, "aquasec/trivy:0.55.0")
	joined := strings.Join(args, " ")

	for _, want := range []string{
		"--read-only",
		"--network none",
		"--cap-drop ALL",
		"--security-opt no-new-privileges",
		"--memory 2g",
		"--cpus 2",
		"-v /repo:/src:ro",
		"-v /tmp/out:/out:rw",
	} {
		assert.Contains(t, joined, want)
	}
	// Tool and its args come after the image reference.
	assert.Contains(t, joined, "aquasec/trivy:0.55.0 trivy fs --format json .")
}

func TestContainerExplicitRelaxation(t *testing.T) {
	cfg := DefaultContainerConfig("img:latest")
	cfg.NetworkDisabled = false
	c := NewContainer(probeWith(map[string]bool{"docker": true}))
	args := c.buildArgs(ExecSpec{Tool: "t", RepoPath: "/r", Container: cfg}, "img:latest")
	joined := strings.Join(args, " ")
	assert.NotContains(t, joined, "--network none")
	// Other hardening flags stay on.
	assert.Contains(t, joined, "--read-only")
	assert.Contains(t, joined, "--cap-drop ALL")
}

func TestContainerEngineUnavailableFailsFast(t *testing.T) {
	c := NewContainer(probeWith(nil))
	res := c.Execute(context.Background(), ExecSpec{
		Tool:      "trivy",
		RepoPath:  "/repo",
		Container: DefaultContainerConfig("img:latest"),
	})
	assert.Equal(t, ExitEngineUnavailable, res.ExitCode)
	assert.Contains(t, res.Stderr, "no container engine available")
}

func TestContainerConfigReference(t *testing.T) {
	cfg := DefaultContainerConfig("aquasec/trivy:0.55.0")
	ref, err := cfg.Reference()
	require.NoError(t, err)
	assert.Equal(t, "aquasec/trivy:0.55.0", ref)

	cfg.ImageDigest = "sha256:9f86d081884c7d659a2feaa0c55ad015a3bf4f1b2b0b822cd15d6c15b0f00a08"
	ref, err = cfg.Reference()
	require.NoError(t, err)
	assert.Equal(t, "aquasec/trivy:0.55.0@sha256:9f86d081884c7d659a2feaa0c55ad015a3bf4f1b2b0b822cd15d6c15b0f00a08", ref)

	cfg.ImageDigest = "sha256:nothex"
	_, err = cfg.Reference()
	assert.Error(t, err)

	_, err = ContainerConfig{}.Reference()
	assert.Error(t, err)
}

func TestEngineProbeCachesAndRefreshes(t *testing.T) {
	calls := 0
	p := NewEngineProbe()
	p.lookPath = func(name string) (string, error) {
		calls++
		return "", errors.New("nope")
	}

	assert.False(t, p.Available())
	first := calls
	assert.False(t, p.Available())
	assert.Equal(t, first, calls, "second Available must hit the cache")

	p.lookPath = func(name string) (string, error) {
		if name == "podman" {
			return "/usr/bin/podman", nil
		}
		return "", errors.New("nope")
	}
	assert.True(t, p.Refresh())
	engine, ok := p.Engine()
	assert.True(t, ok)
	assert.Equal(t, "podman", engine)
}

func TestSelectorResolve(t *testing.T) {
	probe := probeWith(map[string]bool{"docker": true})
	sel := NewSelector(NewNative(""), NewContainer(probe), probe)

	assert.Equal(t, KindContainer, sel.Resolve(PreferAuto).Kind())
	assert.Equal(t, KindNative, sel.Resolve(PreferNative).Kind())
	assert.Equal(t, KindContainer, sel.Resolve(PreferContainer).Kind())

	noEngine := probeWith(nil)
	sel = NewSelector(NewNative(""), NewContainer(noEngine), noEngine)
	assert.Equal(t, KindNative, sel.Resolve(PreferAuto).Kind())
	// Explicit container choice is honored even without an engine.
	assert.Equal(t, KindContainer, sel.Resolve(PreferContainer).Kind())
}

func TestParsePreference(t *testing.T) {
	assert.Equal(t, PreferContainer, ParsePreference("docker"))
	assert.Equal(t, PreferNative, ParsePreference("native"))
	assert.Equal(t, PreferAuto, ParsePreference("auto"))
	assert.Equal(t, PreferAuto, ParsePreference("weird"))
}

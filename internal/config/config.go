package config

import (
	"errors"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/gatehound/gatehound/internal/backend"
	"github.com/gatehound/gatehound/internal/policy"
)

// HomeEnv overrides where run manifests, the audit log, the native tool
// fallback dir, and the global config live.
const HomeEnv = "GATEHOUND_HOME"

// FileConfig is the on-disk YAML configuration shape. Pointer fields
// distinguish "unset" from zero values so CLI > local > global precedence
// works.
type FileConfig struct {
	Scanners      *string `yaml:"scanners"` // comma-separated subset of trivy,semgrep,gitleaks
	Backend       *string `yaml:"backend"`  // auto | docker | native
	Timeout       *string `yaml:"timeout"`  // per-tool budget, e.g. "10m"
	IgnoreFile    *string `yaml:"ignore_file"`
	NoUpdateCheck *bool   `yaml:"no_update_check"`

	Policy *PolicyFile `yaml:"policy"`

	// Containers overrides the sandbox policy per scanner name.
	Containers map[string]ContainerFile `yaml:"containers"`
}

// PolicyFile mirrors policy.Config with optional fields.
type PolicyFile struct {
	FailOnCritical *bool `yaml:"fail_on_critical"`
	FailOnHigh     *bool `yaml:"fail_on_high"`
	FailOnMedium   *bool `yaml:"fail_on_medium"`
	FailOnLow      *bool `yaml:"fail_on_low"`
	FailOnInfo     *bool `yaml:"fail_on_info"`
	FailOnUnknown  *bool `yaml:"fail_on_unknown"`

	MaxCritical *int `yaml:"max_critical"`
	MaxHigh     *int `yaml:"max_high"`
	MaxMedium   *int `yaml:"max_medium"`
	MaxLow      *int `yaml:"max_low"`
	MaxInfo     *int `yaml:"max_info"`
	MaxUnknown  *int `yaml:"max_unknown"`

	MaxTotal *int `yaml:"max_total"`
}

// Apply overlays set fields onto base.
func (p *PolicyFile) Apply(base policy.Config) policy.Config {
	if p == nil {
		return base
	}
	setBool := func(dst *bool, src *bool) {
		if src != nil {
			*dst = *src
		}
	}
	setInt := func(dst *int, src *int) {
		if src != nil {
			*dst = *src
		}
	}
	setBool(&base.FailOnCritical, p.FailOnCritical)
	setBool(&base.FailOnHigh, p.FailOnHigh)
	setBool(&base.FailOnMedium, p.FailOnMedium)
	setBool(&base.FailOnLow, p.FailOnLow)
	setBool(&base.FailOnInfo, p.FailOnInfo)
	setBool(&base.FailOnUnknown, p.FailOnUnknown)
	setInt(&base.MaxCritical, p.MaxCritical)
	setInt(&base.MaxHigh, p.MaxHigh)
	setInt(&base.MaxMedium, p.MaxMedium)
	setInt(&base.MaxLow, p.MaxLow)
	setInt(&base.MaxInfo, p.MaxInfo)
	setInt(&base.MaxUnknown, p.MaxUnknown)
	setInt(&base.MaxTotal, p.MaxTotal)
	return base
}

// ContainerFile overrides individual sandbox fields for one scanner. Only
// set fields are applied; everything else keeps the adapter's default.
type ContainerFile struct {
	Image           *string `yaml:"image"`
	Digest          *string `yaml:"digest"`
	ReadOnly        *bool   `yaml:"read_only"`
	NetworkDisabled *bool   `yaml:"network_disabled"`
	NoNewPrivileges *bool   `yaml:"no_new_privileges"`
	MemoryLimit     *string `yaml:"memory_limit"`
	CPULimit        *string `yaml:"cpu_limit"`
}

// Apply overlays set fields onto the adapter's default sandbox policy.
func (c ContainerFile) Apply(base backend.ContainerConfig) backend.ContainerConfig {
	if c.Image != nil && *c.Image != "" {
		base.Image = *c.Image
	}
	if c.Digest != nil {
		base.ImageDigest = *c.Digest
	}
	if c.ReadOnly != nil {
		base.ReadOnly = *c.ReadOnly
	}
	if c.NetworkDisabled != nil {
		base.NetworkDisabled = *c.NetworkDisabled
	}
	if c.NoNewPrivileges != nil {
		base.NoNewPrivileges = *c.NoNewPrivileges
	}
	if c.MemoryLimit != nil {
		base.MemoryLimit = *c.MemoryLimit
	}
	if c.CPULimit != nil {
		base.CPULimit = *c.CPULimit
	}
	return base
}

// LoadFile reads a YAML config file from the provided path.
func LoadFile(path string) (FileConfig, error) {
	var cfg FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// LoadLocal searches for a repo-local config file in the given root.
// It supports .gatehound.yml/.yaml and gatehound.yml/.yaml.
func LoadLocal(repoRoot string) (FileConfig, error) {
	var cfg FileConfig
	for _, name := range []string{".gatehound.yml", ".gatehound.yaml", "gatehound.yml", "gatehound.yaml"} {
		p := filepath.Join(repoRoot, name)
		if _, err := os.Stat(p); err == nil {
			return LoadFile(p)
		}
	}
	return cfg, errors.New("no local config")
}

// LoadGlobal loads the global config file from the gatehound home dir.
func LoadGlobal() (FileConfig, error) {
	var cfg FileConfig
	dir := HomeDir()
	if dir == "" {
		return cfg, errors.New("no config dir")
	}
	p := filepath.Join(dir, "config.yml")
	if _, err := os.Stat(p); err == nil {
		return LoadFile(p)
	}
	return cfg, errors.New("no global config")
}

// HomeDir resolves the gatehound home: GATEHOUND_HOME when set, else the
// XDG config dir, else ~/.config/gatehound.
func HomeDir() string {
	if dir := os.Getenv(HomeEnv); dir != "" {
		return dir
	}
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, _ := os.UserHomeDir()
		if home == "" {
			return ""
		}
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, "gatehound")
}

// RunsDir is where per-run directories (and their manifests) live.
func RunsDir() string {
	return filepath.Join(HomeDir(), "runs")
}

// BinDir is the native backend's fallback install directory for tools not
// on PATH.
func BinDir() string {
	return filepath.Join(HomeDir(), "bin")
}

// IgnorePath returns the ignore file for a repository: the repo-local
// .gatehoundignore when present, else the home-level default.
func IgnorePath(repoRoot string) string {
	local := filepath.Join(repoRoot, ".gatehoundignore")
	if _, err := os.Stat(local); err == nil {
		return local
	}
	return filepath.Join(HomeDir(), "ignore")
}

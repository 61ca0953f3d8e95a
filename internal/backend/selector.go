package backend

// Preference is a scanner's requested backend: an explicit choice is always
// honored, AUTO picks the container backend when an engine is reachable.
type Preference string

const (
	PreferAuto      Preference = "auto"
	PreferContainer Preference = "docker"
	PreferNative    Preference = "native"
)

// ParsePreference maps a config/flag string to a Preference, defaulting to
// AUTO for anything unrecognized.
func ParsePreference(s string) Preference {
	switch Preference(s) {
	case PreferContainer, PreferNative:
		return Preference(s)
	default:
		return PreferAuto
	}
}

// Selector resolves a Preference to a concrete backend. One selector is
// shared per run so the engine probe is paid once.
type Selector struct {
	native    *Native
	container *Container
	probe     *EngineProbe
}

// NewSelector wires a selector from its parts.
func NewSelector(native *Native, container *Container, probe *EngineProbe) *Selector {
	return &Selector{native: native, container: container, probe: probe}
}

// NewDefaultSelector builds a selector with a fresh probe and the given
// native fallback dir.
func NewDefaultSelector(fallbackDir string) *Selector {
	probe := NewEngineProbe()
	return NewSelector(NewNative(fallbackDir), NewContainer(probe), probe)
}

// Probe exposes the engine probe for explicit cache invalidation.
func (s *Selector) Probe() *EngineProbe { return s.probe }

// Resolve picks the backend for one scanner. Explicit preferences are never
// overridden, even when the chosen backend is unavailable: that surfaces as
// a scan error at execution time rather than a silent substitution.
func (s *Selector) Resolve(pref Preference) Backend {
	switch pref {
	case PreferNative:
		return s.native
	case PreferContainer:
		return s.container
	default:
		if s.probe.Available() {
			return s.container
		}
		return s.native
	}
}

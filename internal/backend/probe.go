package backend

import (
	"os/exec"
	"sync"
)

// enginesTried lists engine CLIs in preference order.
var enginesTried = []string{"docker", "podman"}

// EngineProbe discovers a working container engine and caches the answer,
// since discovery is mildly expensive. The cache is explicit and owned by
// the backend selector; tests can force a re-probe via Refresh.
type EngineProbe struct {
	mu        sync.Mutex
	checked   bool
	engine    string
	available bool

	// lookPath is swappable for tests.
	lookPath func(string) (string, error)
}

// NewEngineProbe returns an unprobed EngineProbe.
func NewEngineProbe() *EngineProbe {
	return &EngineProbe{lookPath: exec.LookPath}
}

// Available reports whether any engine was found, probing on first call.
func (p *EngineProbe) Available() bool {
	_, ok := p.Engine()
	return ok
}

// Engine returns the discovered engine CLI name, probing on first call.
func (p *EngineProbe) Engine() (string, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.checked {
		p.probeLocked()
	}
	return p.engine, p.available
}

// Refresh discards the cached answer and probes again.
func (p *EngineProbe) Refresh() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.probeLocked()
	return p.available
}

func (p *EngineProbe) probeLocked() {
	look := p.lookPath
	if look == nil {
		look = exec.LookPath
	}
	p.checked = true
	p.available = false
	p.engine = ""
	for _, candidate := range enginesTried {
		if _, err := look(candidate); err == nil {
			p.engine = candidate
			p.available = true
			return
		}
	}
}

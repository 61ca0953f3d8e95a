package scanners

import (
	"fmt"
	"strings"
)

// DefaultNames is the scanner set used when configuration names none.
var DefaultNames = []string{"trivy", "semgrep", "gitleaks"}

// ByName returns the adapter for a configured scanner name.
func ByName(name string) (Adapter, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "trivy":
		return Trivy{}, nil
	case "semgrep":
		return Semgrep{}, nil
	case "gitleaks":
		return Gitleaks{}, nil
	default:
		return nil, fmt.Errorf("unknown scanner %q (supported: %s)", name, strings.Join(DefaultNames, ", "))
	}
}

// Resolve maps a list of configured names to adapters, rejecting unknown
// names and duplicates.
func Resolve(names []string) ([]Adapter, error) {
	if len(names) == 0 {
		names = DefaultNames
	}
	seen := make(map[string]bool, len(names))
	adapters := make([]Adapter, 0, len(names))
	for _, n := range names {
		a, err := ByName(n)
		if err != nil {
			return nil, err
		}
		if seen[a.Name()] {
			return nil, fmt.Errorf("scanner %q listed twice", a.Name())
		}
		seen[a.Name()] = true
		adapters = append(adapters, a)
	}
	return adapters, nil
}

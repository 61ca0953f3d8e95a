package gatehound

import (
	"strings"
	"time"
)

// pickString resolves CLI > local > global precedence for string settings.
func pickString(cli string, local, global *string) string {
	if cli != "" {
		return cli
	}
	if local != nil && *local != "" {
		return *local
	}
	if global != nil && *global != "" {
		return *global
	}
	return ""
}

func pickBool(cli bool, local, global *bool) bool {
	if cli {
		return true
	}
	if local != nil {
		return *local
	}
	if global != nil {
		return *global
	}
	return false
}

// pickDuration parses local-then-global duration strings, keeping fallback
// when neither parses.
func pickDuration(local, global *string, fallback time.Duration) time.Duration {
	for _, s := range []*string{local, global} {
		if s == nil {
			continue
		}
		if d, err := time.ParseDuration(*s); err == nil && d > 0 {
			return d
		}
	}
	return fallback
}

// splitList turns a comma-separated flag/config value into trimmed parts.
func splitList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

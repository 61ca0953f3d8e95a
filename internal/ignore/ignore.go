// Package ignore implements the triage engine: a persistent, versioned
// allow-list of previously-accepted findings. Patterns take the form
// scanner[:rule[:path-glob]]; a matched finding is suppressed before policy
// evaluation but retained for audit attribution.
package ignore

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	doublestar "github.com/bmatcuk/doublestar/v4"

	"github.com/gatehound/gatehound/internal/types"
)

// Entry is one parsed ignore pattern. Absent segments match everything at
// that position, as does a literal "*".
type Entry struct {
	Scanner string
	Rule    string // empty = segment absent
	Path    string // empty = segment absent
	Comment string
	Line    int // 1-based line in the source file, for attribution
}

// Pattern reconstructs the canonical pattern text.
func (e Entry) Pattern() string {
	switch {
	case e.Path != "":
		return fmt.Sprintf("%s:%s:%s", e.Scanner, e.Rule, e.Path)
	case e.Rule != "":
		return fmt.Sprintf("%s:%s", e.Scanner, e.Rule)
	default:
		return e.Scanner
	}
}

// Matches reports whether this entry suppresses a finding from the given
// scanner with the given rule and path. Scanner equality is exact; the rule
// segment is exact or "*"; the path segment is a doublestar glob where "*"
// stays within a path segment and "**" crosses separators.
func (e Entry) Matches(scanner, rule, path string) bool {
	if e.Scanner != scanner {
		return false
	}
	if e.Rule != "" && e.Rule != "*" && e.Rule != rule {
		return false
	}
	if e.Path != "" && e.Path != "*" {
		ok, err := doublestar.Match(e.Path, path)
		if err != nil || !ok {
			return false
		}
	}
	return true
}

// File is a loaded ignore list. Entries preserve file order; matching is
// order-independent since any match suppresses.
type File struct {
	Entries []Entry
}

// Load reads an ignore file from disk. A missing file is an empty list,
// not an error: absence means nothing is suppressed.
func Load(path string) (File, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return File{}, nil
		}
		return File{}, fmt.Errorf("open ignore file: %w", err)
	}
	defer f.Close()
	return parse(f)
}

func parse(f *os.File) (File, error) {
	var out File
	sc := bufio.NewScanner(f)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		entry, ok := parseLine(sc.Text(), lineNo)
		if ok {
			out.Entries = append(out.Entries, entry)
		}
	}
	if err := sc.Err(); err != nil {
		return File{}, fmt.Errorf("read ignore file: %w", err)
	}
	return out, nil
}

// parseLine handles full-line comments, blank lines, and trailing inline
// comments after a pattern.
func parseLine(line string, lineNo int) (Entry, bool) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" || strings.HasPrefix(trimmed, "#") {
		return Entry{}, false
	}
	comment := ""
	if idx := strings.Index(trimmed, " #"); idx >= 0 {
		comment = strings.TrimSpace(strings.TrimPrefix(trimmed[idx+2:], " "))
		trimmed = strings.TrimSpace(trimmed[:idx])
	}
	parts := strings.SplitN(trimmed, ":", 3)
	entry := Entry{Scanner: parts[0], Comment: comment, Line: lineNo}
	if entry.Scanner == "" {
		return Entry{}, false
	}
	if len(parts) > 1 {
		entry.Rule = parts[1]
	}
	if len(parts) > 2 {
		entry.Path = parts[2]
	}
	return entry, true
}

// Match returns the first entry suppressing the given triple. Which entry
// wins is unspecified by contract; first-in-file keeps attribution stable.
func (f File) Match(scanner, rule, path string) (Entry, bool) {
	for _, e := range f.Entries {
		if e.Matches(scanner, rule, path) {
			return e, true
		}
	}
	return Entry{}, false
}

// Suppressed pairs a triaged-away finding with the entry that matched it.
type Suppressed struct {
	Finding types.Finding `json:"finding"`
	Pattern string        `json:"pattern"`
	Comment string        `json:"comment,omitempty"`
}

// Filter splits findings into kept and suppressed. Only kept findings count
// toward policy; suppressed ones survive solely for the audit trail.
func (f File) Filter(findings []types.Finding) (kept []types.Finding, suppressed []Suppressed) {
	for _, finding := range findings {
		entry, ok := f.Match(finding.Scanner, finding.RuleID, finding.FilePath)
		if ok {
			suppressed = append(suppressed, Suppressed{
				Finding: finding,
				Pattern: entry.Pattern(),
				Comment: entry.Comment,
			})
			continue
		}
		kept = append(kept, finding)
	}
	return kept, suppressed
}

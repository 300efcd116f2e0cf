package walker

import (
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// DefaultExcludes are directory and file names never collected.
var DefaultExcludes = []string{
	".git",
	"node_modules",
	"vendor",
	"__pycache__",
	".docchat",
	".venv",
	".idea",
	".vscode",
	".DS_Store",
}

func excludedName(name string) bool {
	for _, excl := range DefaultExcludes {
		if strings.EqualFold(name, excl) {
			return true
		}
	}
	return false
}

// lockFile reports editor lock files such as "~$report.docx".
func lockFile(name string) bool {
	return strings.HasPrefix(name, "~$")
}

// Filter selects documents by glob. Patterns use doublestar syntax and
// match case-insensitively against the slash-separated path or its base
// name, so "*.pdf" accepts "scans/SCAN.PDF". An empty Include accepts
// everything.
type Filter struct {
	Include []string
	Exclude []string
}

// Match reports whether relPath is included and not excluded.
func (f Filter) Match(relPath string) bool {
	if len(f.Include) > 0 && !matchesAny(relPath, f.Include) {
		return false
	}
	return !matchesAny(relPath, f.Exclude)
}

func matchesAny(relPath string, patterns []string) bool {
	normalized := strings.ToLower(filepath.ToSlash(relPath))
	base := filepath.Base(normalized)

	for _, pattern := range patterns {
		pattern = strings.ToLower(filepath.ToSlash(pattern))
		if ok, err := doublestar.Match(pattern, normalized); err == nil && ok {
			return true
		}
		if ok, err := doublestar.Match(pattern, base); err == nil && ok {
			return true
		}
	}
	return false
}

package walker

import (
	"os"
	"path/filepath"
	"strings"
)

// ignoreRule is one parsed .gitignore line.
type ignoreRule struct {
	pattern  string
	negate   bool // "!pattern" re-includes a path
	dirOnly  bool // "pattern/" matches directories only
	anchored bool // a slash before the end ties the pattern to the root
}

// ignoreRules are applied in file order; the last matching rule wins.
type ignoreRules []ignoreRule

// loadGitignore parses the .gitignore at path. A missing file yields no
// rules.
func loadGitignore(path string) ignoreRules {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	return parseGitignore(string(data))
}

func parseGitignore(data string) ignoreRules {
	var rules ignoreRules
	for _, line := range strings.Split(data, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		var r ignoreRule
		if strings.HasPrefix(line, "!") {
			r.negate = true
			line = line[1:]
		}
		if strings.HasSuffix(line, "/") {
			r.dirOnly = true
			line = strings.TrimSuffix(line, "/")
		}
		if strings.Contains(line, "/") {
			r.anchored = true
			line = strings.TrimPrefix(line, "/")
		}
		if line == "" {
			continue
		}
		r.pattern = line
		rules = append(rules, r)
	}
	return rules
}

// ignored reports whether the file at relPath is excluded, either
// directly or through one of its parent directories.
func (rules ignoreRules) ignored(relPath string) bool {
	if len(rules) == 0 {
		return false
	}

	parts := strings.Split(filepath.ToSlash(relPath), "/")
	ignored := false
	for _, r := range rules {
		if r.matches(parts) {
			ignored = !r.negate
		}
	}
	return ignored
}

func (r ignoreRule) matches(parts []string) bool {
	last := len(parts) - 1

	if r.anchored {
		// Match the rule against every prefix of the path; prefixes
		// shorter than the full path are directories.
		for i := range parts {
			if r.dirOnly && i == last {
				break
			}
			if ok, _ := filepath.Match(r.pattern, strings.Join(parts[:i+1], "/")); ok {
				return true
			}
		}
		return false
	}

	for i, part := range parts {
		if r.dirOnly && i == last {
			break
		}
		if ok, _ := filepath.Match(r.pattern, part); ok {
			return true
		}
	}
	return false
}

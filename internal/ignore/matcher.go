package ignore

import (
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

type rule struct {
	pattern string
	negated bool
}

// Matcher applies gitignore-like rules with "last rule wins" behavior.
// Patterns are doublestar globs relative to the documentation root.
type Matcher struct {
	rules []rule
}

// NewMatcher builds a matcher from config and .issuelistignore lines.
// Default excludes are prepended and can be overridden by user negation rules.
func NewMatcher(userRules []string) *Matcher {
	defaultRules := []string{
		".git/",
		"_build/",
		"node_modules/",
	}

	all := make([]string, 0, len(defaultRules)+len(userRules))
	all = append(all, defaultRules...)
	all = append(all, userRules...)

	rules := make([]rule, 0, len(all))
	for _, line := range all {
		if parsed, ok := parseRule(line); ok {
			rules = append(rules, parsed)
		}
	}

	return &Matcher{rules: rules}
}

// ShouldIgnore returns true when the file at relPath should be left alone.
func (m *Matcher) ShouldIgnore(relPath string) bool {
	relPath = normalizePath(relPath)
	ignored := false
	for _, rule := range m.rules {
		if ok, err := doublestar.Match(rule.pattern, relPath); err == nil && ok {
			ignored = !rule.negated
		}
	}
	return ignored
}

func parseRule(line string) (rule, bool) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return rule{}, false
	}

	parsed := rule{}
	if strings.HasPrefix(line, "!") {
		parsed.negated = true
		line = strings.TrimPrefix(line, "!")
	}
	anchored := strings.HasPrefix(line, "/")
	line = strings.TrimPrefix(line, "/")
	if strings.HasSuffix(line, "/") {
		line = strings.TrimSuffix(line, "/") + "/**"
	}

	line = normalizePath(line)
	if line == "" || line == "/**" {
		return rule{}, false
	}
	// Patterns without a separator match at any depth, like gitignore.
	if !anchored && !strings.Contains(strings.TrimSuffix(line, "/**"), "/") {
		line = "**/" + line
	}
	if !doublestar.ValidatePattern(line) {
		return rule{}, false
	}
	parsed.pattern = line
	return parsed, true
}

func normalizePath(path string) string {
	path = filepath.ToSlash(path)
	path = strings.TrimPrefix(path, "./")
	path = strings.TrimPrefix(path, "/")
	return path
}

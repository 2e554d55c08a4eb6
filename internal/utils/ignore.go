package utils

import (
	"strings"

	"github.com/go-git/go-git/v5/plumbing/format/gitignore"
)

// IgnoreMatcher evaluates gitignore-style patterns against paths relative to a scan root.
// Later patterns win, so a "!pattern" re-includes what an earlier one excluded.
type IgnoreMatcher struct {
	matcher gitignore.Matcher
}

// NewIgnoreMatcher compiles patterns. Blank patterns and comments are skipped.
func NewIgnoreMatcher(patterns []string) *IgnoreMatcher {
	compiled := make([]gitignore.Pattern, 0, len(patterns))
	for _, pattern := range patterns {
		trimmed := strings.TrimSpace(strings.ReplaceAll(pattern, "\\", "/"))
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		compiled = append(compiled, gitignore.ParsePattern(trimmed, nil))
	}
	return &IgnoreMatcher{matcher: gitignore.NewMatcher(compiled)}
}

// Match reports whether relativePath is ignored. Ignore files themselves always match.
func (ignoreMatcher *IgnoreMatcher) Match(relativePath string, isDirectory bool) bool {
	segments := strings.Split(strings.Trim(strings.ReplaceAll(relativePath, "\\", "/"), "/"), "/")
	switch segments[len(segments)-1] {
	case IgnoreFileName, GitIgnoreFileName:
		return true
	}
	return ignoreMatcher.matcher.Match(segments, isDirectory)
}

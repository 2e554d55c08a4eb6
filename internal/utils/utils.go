// Package utils contains general helper functions used across ctxpick.
package utils

import "path/filepath"

// Ignore file constants used across the project.
const (
	// IgnoreFileName is the name of the project's ignore file.
	IgnoreFileName = ".ignore"
	// GitIgnoreFileName is the name of the Git ignore file.
	GitIgnoreFileName = ".gitignore"
	// GitDirectoryName is the name of the Git repository directory.
	GitDirectoryName = ".git"
)

// DeduplicatePatterns returns patterns without repeats, keeping first occurrences in order.
func DeduplicatePatterns(patterns []string) []string {
	seen := make(map[string]struct{}, len(patterns))
	unique := make([]string, 0, len(patterns))
	for _, pattern := range patterns {
		if _, duplicate := seen[pattern]; duplicate {
			continue
		}
		seen[pattern] = struct{}{}
		unique = append(unique, pattern)
	}
	return unique
}

// RelativePathOrSelf returns fullPath relative to root in slash form. Both
// paths are made absolute first. The result is "." when they name the same
// directory and the cleaned absolute fullPath when no relative form exists.
func RelativePathOrSelf(fullPath, root string) string {
	target := filepath.Clean(fullPath)
	if absoluteTarget, absoluteError := filepath.Abs(target); absoluteError == nil {
		target = absoluteTarget
	}
	base, baseError := filepath.Abs(root)
	if baseError != nil {
		return target
	}
	relative, relativeError := filepath.Rel(base, target)
	if relativeError != nil {
		return target
	}
	return filepath.ToSlash(relative)
}

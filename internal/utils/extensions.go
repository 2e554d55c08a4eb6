package utils

import (
	"path/filepath"
	"strings"
)

// DefaultAllowedExtensions lists the file extensions eligible for selection
// when no configuration overrides them.
var DefaultAllowedExtensions = []string{".js", ".ts", ".jsx", ".tsx", ".vue"}

// NormalizeExtensions lower-cases extensions, adds a leading dot where missing,
// drops empty values, and removes duplicates while preserving order.
func NormalizeExtensions(extensions []string) []string {
	normalized := make([]string, 0, len(extensions))
	for _, extension := range extensions {
		trimmed := strings.ToLower(strings.TrimSpace(extension))
		if trimmed == "" || trimmed == "." {
			continue
		}
		if !strings.HasPrefix(trimmed, ".") {
			trimmed = "." + trimmed
		}
		normalized = append(normalized, trimmed)
	}
	return DeduplicatePatterns(normalized)
}

// ExtensionSet converts normalized extensions into a lookup set.
func ExtensionSet(extensions []string) map[string]struct{} {
	set := make(map[string]struct{}, len(extensions))
	for _, extension := range NormalizeExtensions(extensions) {
		set[extension] = struct{}{}
	}
	return set
}

// HasAllowedExtension reports whether name carries an extension from the set.
// The comparison is case-insensitive.
func HasAllowedExtension(name string, allowed map[string]struct{}) bool {
	extension := strings.ToLower(filepath.Ext(name))
	if extension == "" {
		return false
	}
	_, ok := allowed[extension]
	return ok
}

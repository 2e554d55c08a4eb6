// Package config loads ctxpick configuration and parses ignore files into slices of patterns.
package config

import (
	"bufio"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/temirov/ctxpick/internal/utils"
)

const (
	// gitDirectoryPattern represents the pattern that matches the Git directory.
	gitDirectoryPattern = utils.GitDirectoryName + "/"
	// binarySectionHeader identifies a section whose patterns ctxpick does not use.
	binarySectionHeader = "[binary]"
	// ignoreSectionHeader identifies the section listing ignore patterns.
	ignoreSectionHeader = "[ignore]"

	warningLoadIgnoreFileMessage = "skipping unreadable ignore file"
)

// IgnoreOptions selects which ignore sources contribute patterns.
type IgnoreOptions struct {
	ExclusionPatterns []string
	UseGitignore      bool
	UseIgnoreFile     bool
	IncludeGit        bool
	Logger            *zap.Logger
}

// Patterns loads the patterns in effect under rootDirectoryPath. It matches the
// pattern loader signature of commands.TreeBuilder, so every rebuild rereads the ignore files.
func (options IgnoreOptions) Patterns(fileSystem afero.Fs, rootDirectoryPath string) ([]string, error) {
	return LoadRecursiveIgnorePatterns(fileSystem, rootDirectoryPath, options)
}

// LoadIgnoreFilePatterns reads a specified ignore file and returns its ignore patterns.
// A missing file yields no patterns and no error.
func LoadIgnoreFilePatterns(fileSystem afero.Fs, ignoreFilePath string) ([]string, error) {
	fileHandle, openFileError := fileSystem.Open(ignoreFilePath)
	if openFileError != nil {
		if os.IsNotExist(openFileError) {
			return nil, nil
		}
		return nil, openFileError
	}
	defer fileHandle.Close()

	var ignorePatterns []string
	currentSectionHeader := ignoreSectionHeader
	scanner := bufio.NewScanner(fileHandle)
	for scanner.Scan() {
		trimmedLine := strings.TrimSpace(scanner.Text())
		if trimmedLine == "" || strings.HasPrefix(trimmedLine, "#") {
			continue
		}
		if strings.EqualFold(trimmedLine, binarySectionHeader) {
			currentSectionHeader = binarySectionHeader
			continue
		}
		if strings.EqualFold(trimmedLine, ignoreSectionHeader) {
			currentSectionHeader = ignoreSectionHeader
			continue
		}
		if currentSectionHeader == binarySectionHeader {
			continue
		}
		ignorePatterns = append(ignorePatterns, trimmedLine)
	}
	if scanError := scanner.Err(); scanError != nil {
		return nil, scanError
	}
	return ignorePatterns, nil
}

// scopePattern rewrites a pattern read from a nested ignore file so that it applies below prefix only.
// Unanchored patterns keep matching at any depth beneath the directory.
func scopePattern(prefix string, pattern string) string {
	if prefix == "" {
		return pattern
	}
	negation := ""
	if trimmed, isNegated := strings.CutPrefix(pattern, "!"); isNegated {
		negation = "!"
		pattern = trimmed
	}
	if anchored, isAnchored := strings.CutPrefix(pattern, "/"); isAnchored {
		return negation + prefix + anchored
	}
	if strings.Contains(strings.TrimSuffix(pattern, "/"), "/") {
		return negation + prefix + pattern
	}
	return negation + prefix + "**/" + pattern
}

// LoadRecursiveIgnorePatterns walks rootDirectoryPath and aggregates ignore patterns.
// Patterns from utils.IgnoreFileName and utils.GitIgnoreFileName in each nested directory are prefixed with that
// directory's path relative to rootDirectoryPath. The directory named utils.GitDirectoryName is ignored unless
// options.IncludeGit is true. Exclusion patterns are appended last. Directories that cannot be walked and ignore
// files that cannot be read are logged and skipped.
func LoadRecursiveIgnorePatterns(fileSystem afero.Fs, rootDirectoryPath string, options IgnoreOptions) ([]string, error) {
	var aggregatedPatterns []string
	logger := utils.LoggerOrNop(options.Logger)

	walkFunction := func(currentDirectoryPath string, fileInfo os.FileInfo, walkError error) error {
		if walkError != nil {
			if fileInfo != nil && fileInfo.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if !fileInfo.IsDir() {
			return nil
		}
		if !options.IncludeGit && fileInfo.Name() == utils.GitDirectoryName {
			return filepath.SkipDir
		}

		relativeDirectory := utils.RelativePathOrSelf(currentDirectoryPath, rootDirectoryPath)
		prefix := ""
		if relativeDirectory != "." {
			prefix = relativeDirectory + "/"
		}

		var sources []string
		if options.UseIgnoreFile {
			sources = append(sources, utils.IgnoreFileName)
		}
		if options.UseGitignore {
			sources = append(sources, utils.GitIgnoreFileName)
		}
		for _, sourceName := range sources {
			ignoreFilePath := filepath.Join(currentDirectoryPath, sourceName)
			patterns, loadError := LoadIgnoreFilePatterns(fileSystem, ignoreFilePath)
			if loadError != nil {
				logger.Warn(warningLoadIgnoreFileMessage, zap.String("path", ignoreFilePath), zap.Error(loadError))
				continue
			}
			for _, pattern := range patterns {
				aggregatedPatterns = append(aggregatedPatterns, scopePattern(prefix, pattern))
			}
		}
		return nil
	}

	if walkError := afero.Walk(fileSystem, rootDirectoryPath, walkFunction); walkError != nil && !errors.Is(walkError, filepath.SkipDir) {
		return nil, walkError
	}

	if !options.IncludeGit {
		aggregatedPatterns = append(aggregatedPatterns, gitDirectoryPattern)
	}

	deduplicatedPatterns := utils.DeduplicatePatterns(aggregatedPatterns)

	for _, pattern := range options.ExclusionPatterns {
		trimmedPattern := strings.TrimSpace(pattern)
		if trimmedPattern == "" {
			continue
		}
		if !slices.Contains(deduplicatedPatterns, trimmedPattern) {
			deduplicatedPatterns = append(deduplicatedPatterns, trimmedPattern)
		}
	}

	return deduplicatedPatterns, nil
}

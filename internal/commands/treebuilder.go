// Package commands contains the data collection logic behind each ctxpick command.
package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/temirov/ctxpick/internal/types"
	"github.com/temirov/ctxpick/internal/utils"
)

const (
	errorAbsolutePathFormat = "getting absolute path for %s: %w"
	errorIgnorePatterns     = "loading ignore patterns for %s: %w"

	warningReadDirectoryMessage = "skipping unreadable directory"
	warningStatPathMessage      = "skipping entry with unreadable metadata"
	debugSymlinkDirectory       = "skipping symlinked directory"
)

// PatternLoader returns the ignore patterns in effect under root.
type PatternLoader func(fileSystem afero.Fs, root string) ([]string, error)

// TreeBuilder scans a directory and produces the ordered tree of eligible files.
// IgnorePatterns are fixed; LoadIgnorePatterns, when set, runs on every Build and
// its patterns are added after them.
type TreeBuilder struct {
	FileSystem         afero.Fs
	AllowedExtensions  []string
	IgnorePatterns     []string
	LoadIgnorePatterns PatternLoader
	Logger             *zap.Logger
}

// NewTreeBuilder returns a builder over the operating system filesystem using the default extensions.
func NewTreeBuilder(logger *zap.Logger) *TreeBuilder {
	return &TreeBuilder{
		FileSystem:        afero.NewOsFs(),
		AllowedExtensions: utils.DefaultAllowedExtensions,
		Logger:            logger,
	}
}

// Build returns the eligible children of rootPath. Directories precede files and
// entries of the same kind are ordered by case-insensitive name. Directories
// without eligible descendants are omitted. Unreadable directories and entries
// are logged and skipped.
func (treeBuilder *TreeBuilder) Build(rootPath string) ([]*types.TreeNode, error) {
	absoluteRootPath, absolutePathError := filepath.Abs(rootPath)
	if absolutePathError != nil {
		return nil, fmt.Errorf(errorAbsolutePathFormat, rootPath, absolutePathError)
	}
	absoluteRootPath = filepath.Clean(absoluteRootPath)

	fileSystem := treeBuilder.FileSystem
	if fileSystem == nil {
		fileSystem = afero.NewOsFs()
	}
	logger := utils.LoggerOrNop(treeBuilder.Logger)
	extensions := treeBuilder.AllowedExtensions
	if len(extensions) == 0 {
		extensions = utils.DefaultAllowedExtensions
	}
	allowedExtensions := utils.ExtensionSet(extensions)
	ignorePatterns := treeBuilder.IgnorePatterns
	if treeBuilder.LoadIgnorePatterns != nil {
		loadedPatterns, loadError := treeBuilder.LoadIgnorePatterns(fileSystem, absoluteRootPath)
		if loadError != nil {
			return nil, fmt.Errorf(errorIgnorePatterns, absoluteRootPath, loadError)
		}
		ignorePatterns = append(append([]string{}, ignorePatterns...), loadedPatterns...)
	}
	ignoreMatcher := utils.NewIgnoreMatcher(ignorePatterns)

	rootNode := &types.TreeNode{Path: absoluteRootPath, Name: filepath.Base(absoluteRootPath), Kind: types.KindDirectory}

	// visitOrder lists directories in pre-order, so walking it backwards
	// finalizes every directory after all of its subdirectories.
	var visitOrder []*types.TreeNode
	pending := []*types.TreeNode{rootNode}
	for len(pending) > 0 {
		directoryNode := pending[len(pending)-1]
		pending = pending[:len(pending)-1]
		visitOrder = append(visitOrder, directoryNode)

		entries, readDirectoryError := afero.ReadDir(fileSystem, directoryNode.Path)
		if readDirectoryError != nil {
			logger.Warn(warningReadDirectoryMessage, zap.String("path", directoryNode.Path), zap.Error(readDirectoryError))
			continue
		}

		for _, entryInfo := range entries {
			childPath := filepath.Join(directoryNode.Path, entryInfo.Name())
			relativeChildPath := utils.RelativePathOrSelf(childPath, absoluteRootPath)
			if ignoreMatcher.Match(relativeChildPath, entryInfo.IsDir()) {
				continue
			}

			if entryInfo.Mode()&os.ModeSymlink != 0 {
				targetInfo, statError := fileSystem.Stat(childPath)
				if statError != nil {
					logger.Warn(warningStatPathMessage, zap.String("path", childPath), zap.Error(statError))
					continue
				}
				if targetInfo.IsDir() {
					logger.Debug(debugSymlinkDirectory, zap.String("path", childPath))
					continue
				}
				entryInfo = targetInfo
			}

			if entryInfo.IsDir() {
				childDirectory := &types.TreeNode{Path: childPath, Name: entryInfo.Name(), Kind: types.KindDirectory}
				directoryNode.Children = append(directoryNode.Children, childDirectory)
				pending = append(pending, childDirectory)
				continue
			}
			if !utils.HasAllowedExtension(entryInfo.Name(), allowedExtensions) {
				continue
			}
			directoryNode.Children = append(directoryNode.Children, &types.TreeNode{
				Path: childPath,
				Name: filepath.Base(childPath),
				Kind: types.KindFile,
			})
		}
	}

	for index := len(visitOrder) - 1; index >= 0; index-- {
		directoryNode := visitOrder[index]
		directoryNode.Children = pruneEmptyDirectories(directoryNode.Children)
		sortTreeNodes(directoryNode.Children)
	}

	return rootNode.Children, nil
}

func pruneEmptyDirectories(children []*types.TreeNode) []*types.TreeNode {
	kept := children[:0]
	for _, child := range children {
		if child.IsDir() && len(child.Children) == 0 {
			continue
		}
		kept = append(kept, child)
	}
	if len(kept) == 0 {
		return nil
	}
	return kept
}

func sortTreeNodes(nodes []*types.TreeNode) {
	sort.SliceStable(nodes, func(left, right int) bool {
		leftNode, rightNode := nodes[left], nodes[right]
		if leftNode.IsDir() != rightNode.IsDir() {
			return leftNode.IsDir()
		}
		leftName, rightName := strings.ToLower(leftNode.Name), strings.ToLower(rightNode.Name)
		if leftName != rightName {
			return leftName < rightName
		}
		return leftNode.Name < rightNode.Name
	})
}

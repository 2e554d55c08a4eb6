// Package selection maintains the tri-state selection tree over a scanned project.
//
// Nodes live in a flat arena and refer to their parent and children by NodeID.
// Toggling a node cascades its new state to every descendant and recomputes
// every ancestor up to the root, so after each call a directory is Selected
// when all of its children are Selected, Unselected when none are selected,
// and Partial otherwise. A Tree is not safe for concurrent use.
package selection

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/temirov/ctxpick/internal/types"
)

// NodeID identifies a node within one Tree. IDs are invalidated by Refresh.
type NodeID int

// NoParent is the parent of every root node.
const NoParent NodeID = -1

const (
	errorBuildTreeFormat    = "building tree for %s: %w"
	errorAbsolutePathFormat = "getting absolute path for %s: %w"
)

var (
	// ErrUnknownNode is returned when a NodeID does not belong to the tree.
	ErrUnknownNode = errors.New("node does not belong to the selection tree")
	// ErrNoBuilder is returned by Refresh on a tree created without a builder.
	ErrNoBuilder = errors.New("selection tree has no builder to refresh from")
)

// Builder produces the ordered node sequence for a root directory.
type Builder interface {
	Build(rootPath string) ([]*types.TreeNode, error)
}

// Node is a read-only view of one entry of the tree.
type Node struct {
	ID       NodeID
	Path     string
	Name     string
	Kind     types.NodeKind
	State    types.SelectionState
	Parent   NodeID
	Children []NodeID
	Depth    int
}

// IsDir reports whether the node is a directory.
func (node Node) IsDir() bool {
	return node.Kind == types.KindDirectory
}

type arenaEntry struct {
	path     string
	name     string
	kind     types.NodeKind
	state    types.SelectionState
	parent   NodeID
	children []NodeID
	depth    int
}

// Tree owns the selection state of a scanned project.
type Tree struct {
	rootPath string
	builder  Builder
	entries  []arenaEntry
	roots    []NodeID
	byPath   map[string]NodeID
}

// New wraps already built nodes. Every node starts unselected.
func New(roots []*types.TreeNode) *Tree {
	tree := &Tree{}
	tree.load(roots)
	return tree
}

// Open builds the tree for rootPath and wraps it. The builder is retained for Refresh.
func Open(rootPath string, builder Builder) (*Tree, error) {
	absoluteRootPath, absolutePathError := filepath.Abs(rootPath)
	if absolutePathError != nil {
		return nil, fmt.Errorf(errorAbsolutePathFormat, rootPath, absolutePathError)
	}
	tree := &Tree{rootPath: filepath.Clean(absoluteRootPath), builder: builder}
	if refreshError := tree.Refresh(); refreshError != nil {
		return nil, refreshError
	}
	return tree, nil
}

// Refresh rebuilds the tree from the builder. All selection state is discarded.
func (tree *Tree) Refresh() error {
	if tree.builder == nil {
		return ErrNoBuilder
	}
	roots, buildError := tree.builder.Build(tree.rootPath)
	if buildError != nil {
		return fmt.Errorf(errorBuildTreeFormat, tree.rootPath, buildError)
	}
	tree.load(roots)
	return nil
}

func (tree *Tree) load(roots []*types.TreeNode) {
	tree.entries = tree.entries[:0]
	tree.roots = nil
	tree.byPath = make(map[string]NodeID)

	type pendingNode struct {
		source *types.TreeNode
		parent NodeID
		depth  int
	}
	// Children are appended in reverse so they pop in their original order.
	stack := make([]pendingNode, 0, len(roots))
	for index := len(roots) - 1; index >= 0; index-- {
		stack = append(stack, pendingNode{source: roots[index], parent: NoParent})
	}
	for len(stack) > 0 {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if current.source == nil {
			continue
		}
		id := NodeID(len(tree.entries))
		tree.entries = append(tree.entries, arenaEntry{
			path:   current.source.Path,
			name:   current.source.Name,
			kind:   current.source.Kind,
			state:  types.Unselected,
			parent: current.parent,
			depth:  current.depth,
		})
		tree.byPath[filepath.Clean(current.source.Path)] = id
		if current.parent == NoParent {
			tree.roots = append(tree.roots, id)
		} else {
			tree.entries[current.parent].children = append(tree.entries[current.parent].children, id)
		}
		for index := len(current.source.Children) - 1; index >= 0; index-- {
			stack = append(stack, pendingNode{source: current.source.Children[index], parent: id, depth: current.depth + 1})
		}
	}
}

// RootPath returns the absolute directory the tree was opened on, or an empty string for trees built with New.
func (tree *Tree) RootPath() string {
	return tree.rootPath
}

// Roots returns the top-level nodes in display order.
func (tree *Tree) Roots() []NodeID {
	return append([]NodeID(nil), tree.roots...)
}

// Len returns the number of nodes in the tree.
func (tree *Tree) Len() int {
	return len(tree.entries)
}

func (tree *Tree) contains(id NodeID) bool {
	return id >= 0 && int(id) < len(tree.entries)
}

// Node returns a view of the node identified by id.
func (tree *Tree) Node(id NodeID) (Node, bool) {
	if !tree.contains(id) {
		return Node{}, false
	}
	entry := tree.entries[id]
	return Node{
		ID:       id,
		Path:     entry.path,
		Name:     entry.name,
		Kind:     entry.kind,
		State:    entry.state,
		Parent:   entry.parent,
		Children: append([]NodeID(nil), entry.children...),
		Depth:    entry.depth,
	}, true
}

// Lookup resolves an absolute path, or a path relative to the root directory, to a node.
func (tree *Tree) Lookup(path string) (NodeID, bool) {
	candidate := filepath.FromSlash(path)
	if !filepath.IsAbs(candidate) && tree.rootPath != "" {
		candidate = filepath.Join(tree.rootPath, candidate)
	}
	id, found := tree.byPath[filepath.Clean(candidate)]
	return id, found
}

// RelativePath returns the node path relative to the root directory using forward slashes.
func (tree *Tree) RelativePath(id NodeID) string {
	if !tree.contains(id) {
		return ""
	}
	return relativeTo(tree.rootPath, tree.entries[id].path)
}

func relativeTo(rootPath, path string) string {
	if rootPath == "" {
		return filepath.ToSlash(path)
	}
	relativePath, relativeError := filepath.Rel(rootPath, path)
	if relativeError != nil {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(relativePath)
}

// State returns the tri-state selection of a node. Unknown nodes report Unselected.
func (tree *Tree) State(id NodeID) types.SelectionState {
	if !tree.contains(id) {
		return types.Unselected
	}
	return tree.entries[id].state
}

// IsSelected reports whether the node is fully selected. A partially selected
// directory reports false.
func (tree *Tree) IsSelected(id NodeID) bool {
	return tree.State(id) == types.Selected
}

// Toggle flips the selection of a node. A Partial directory counts as not
// selected, so toggling it selects its whole subtree.
func (tree *Tree) Toggle(id NodeID) error {
	if !tree.contains(id) {
		return ErrUnknownNode
	}
	target := types.Selected
	if tree.entries[id].state == types.Selected {
		target = types.Unselected
	}
	tree.setSubtree(id, target)
	tree.recomputeAncestors(id)
	return nil
}

// SetAll selects or clears every node.
func (tree *Tree) SetAll(selected bool) {
	target := types.Unselected
	if selected {
		target = types.Selected
	}
	for index := range tree.entries {
		tree.entries[index].state = target
	}
}

func (tree *Tree) setSubtree(id NodeID, state types.SelectionState) {
	stack := []NodeID{id}
	for len(stack) > 0 {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		tree.entries[current].state = state
		stack = append(stack, tree.entries[current].children...)
	}
}

func (tree *Tree) recomputeAncestors(id NodeID) {
	for ancestor := tree.entries[id].parent; ancestor != NoParent; ancestor = tree.entries[ancestor].parent {
		tree.entries[ancestor].state = tree.derivedState(ancestor)
	}
}

func (tree *Tree) derivedState(id NodeID) types.SelectionState {
	var selectedChildren, unselectedChildren int
	for _, child := range tree.entries[id].children {
		switch tree.entries[child].state {
		case types.Selected:
			selectedChildren++
		case types.Unselected:
			unselectedChildren++
		}
	}
	childCount := len(tree.entries[id].children)
	switch {
	case childCount == 0:
		return tree.entries[id].state
	case selectedChildren == childCount:
		return types.Selected
	case unselectedChildren == childCount:
		return types.Unselected
	default:
		return types.Partial
	}
}

// SelectedFiles returns the paths of selected files in depth-first display
// order. Files under a selected directory are collected without consulting
// their own state.
func (tree *Tree) SelectedFiles() []string {
	var selectedPaths []string
	for _, id := range tree.selectedFileIDs() {
		selectedPaths = append(selectedPaths, tree.entries[id].path)
	}
	return selectedPaths
}

// SelectedRelativeFiles returns SelectedFiles relative to the root directory.
func (tree *Tree) SelectedRelativeFiles() []string {
	var selectedPaths []string
	for _, id := range tree.selectedFileIDs() {
		selectedPaths = append(selectedPaths, tree.RelativePath(id))
	}
	return selectedPaths
}

func (tree *Tree) selectedFileIDs() []NodeID {
	type pendingVisit struct {
		id      NodeID
		collect bool
	}
	var collected []NodeID
	stack := make([]pendingVisit, 0, len(tree.roots))
	for index := len(tree.roots) - 1; index >= 0; index-- {
		stack = append(stack, pendingVisit{id: tree.roots[index]})
	}
	for len(stack) > 0 {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		entry := tree.entries[current.id]
		collect := current.collect || entry.state == types.Selected
		if entry.kind == types.KindFile {
			if collect {
				collected = append(collected, current.id)
			}
			continue
		}
		for index := len(entry.children) - 1; index >= 0; index-- {
			stack = append(stack, pendingVisit{id: entry.children[index], collect: collect})
		}
	}
	return collected
}

// Counts returns the number of selected files and the total number of files.
func (tree *Tree) Counts() (selectedFiles int, totalFiles int) {
	for _, entry := range tree.entries {
		if entry.kind != types.KindFile {
			continue
		}
		totalFiles++
		if entry.state == types.Selected {
			selectedFiles++
		}
	}
	return selectedFiles, totalFiles
}

// Visit walks the tree depth-first in display order. Returning false from
// visitor skips the children of the visited node.
func (tree *Tree) Visit(visitor func(node Node) bool) {
	stack := make([]NodeID, 0, len(tree.roots))
	for index := len(tree.roots) - 1; index >= 0; index-- {
		stack = append(stack, tree.roots[index])
	}
	for len(stack) > 0 {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		node, _ := tree.Node(current)
		if !visitor(node) {
			continue
		}
		for index := len(node.Children) - 1; index >= 0; index-- {
			stack = append(stack, node.Children[index])
		}
	}
}

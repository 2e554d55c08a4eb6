package selection_test

import (
	"math/rand"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/temirov/ctxpick/internal/selection"
	"github.com/temirov/ctxpick/internal/types"
)

const projectRoot = "/project"

func file(relativePath string) *types.TreeNode {
	return &types.TreeNode{
		Path: filepath.Join(projectRoot, relativePath),
		Name: filepath.Base(relativePath),
		Kind: types.KindFile,
	}
}

func directory(relativePath string, children ...*types.TreeNode) *types.TreeNode {
	return &types.TreeNode{
		Path:     filepath.Join(projectRoot, relativePath),
		Name:     filepath.Base(relativePath),
		Kind:     types.KindDirectory,
		Children: children,
	}
}

// sampleRoots models:
//
//	src/
//	  components/
//	    button.tsx
//	    card.tsx
//	  index.ts
//	  util.ts
//	main.js
func sampleRoots() []*types.TreeNode {
	return []*types.TreeNode{
		directory("src",
			directory("src/components",
				file("src/components/button.tsx"),
				file("src/components/card.tsx"),
			),
			file("src/index.ts"),
			file("src/util.ts"),
		),
		file("main.js"),
	}
}

type staticBuilder struct {
	builds int
	roots  func() []*types.TreeNode
}

func (builder *staticBuilder) Build(rootPath string) ([]*types.TreeNode, error) {
	builder.builds++
	return builder.roots(), nil
}

func mustLookup(t *testing.T, tree *selection.Tree, relativePath string) selection.NodeID {
	t.Helper()
	id, found := tree.Lookup(relativePath)
	require.Truef(t, found, "lookup %s", relativePath)
	return id
}

func openSample(t *testing.T) *selection.Tree {
	t.Helper()
	tree, err := selection.Open(projectRoot, &staticBuilder{roots: sampleRoots})
	require.NoError(t, err)
	return tree
}

func snapshot(tree *selection.Tree) []types.SelectionState {
	states := make([]types.SelectionState, tree.Len())
	for index := range states {
		states[index] = tree.State(selection.NodeID(index))
	}
	return states
}

// requireConsistent checks every directory state against its direct children.
func requireConsistent(t *testing.T, tree *selection.Tree) {
	t.Helper()
	tree.Visit(func(node selection.Node) bool {
		if !node.IsDir() {
			assert.NotEqual(t, types.Partial, node.State, "file %s is partial", node.Path)
			return true
		}
		var selectedChildren, unselectedChildren int
		for _, child := range node.Children {
			switch tree.State(child) {
			case types.Selected:
				selectedChildren++
			case types.Unselected:
				unselectedChildren++
			}
		}
		expected := types.Partial
		if selectedChildren == len(node.Children) {
			expected = types.Selected
		} else if unselectedChildren == len(node.Children) {
			expected = types.Unselected
		}
		require.Equalf(t, expected, node.State, "directory %s", node.Path)
		require.Equal(t, selectedChildren == len(node.Children), tree.IsSelected(node.ID))
		return true
	})
}

func TestNewPreservesOrderAndParents(t *testing.T) {
	tree := selection.New(sampleRoots())
	require.Equal(t, 7, tree.Len())
	require.Len(t, tree.Roots(), 2)

	var visited []string
	tree.Visit(func(node selection.Node) bool {
		visited = append(visited, node.Name)
		return true
	})
	assert.Equal(t, []string{"src", "components", "button.tsx", "card.tsx", "index.ts", "util.ts", "main.js"}, visited)

	button, found := tree.Lookup(filepath.Join(projectRoot, "src/components/button.tsx"))
	require.True(t, found)
	buttonNode, ok := tree.Node(button)
	require.True(t, ok)
	assert.Equal(t, 2, buttonNode.Depth)
	parentNode, ok := tree.Node(buttonNode.Parent)
	require.True(t, ok)
	assert.Equal(t, "components", parentNode.Name)

	rootNode, ok := tree.Node(tree.Roots()[0])
	require.True(t, ok)
	assert.Equal(t, selection.NoParent, rootNode.Parent)
}

func TestToggleSingleFileRoundTrip(t *testing.T) {
	tree := openSample(t)
	mainFile := mustLookup(t, tree, "main.js")

	require.NoError(t, tree.Toggle(mainFile))
	assert.Equal(t, []string{filepath.Join(projectRoot, "main.js")}, tree.SelectedFiles())

	require.NoError(t, tree.Toggle(mainFile))
	assert.Empty(t, tree.SelectedFiles())
}

func TestToggleDirectoryCascades(t *testing.T) {
	tree := openSample(t)
	source := mustLookup(t, tree, "src")

	require.NoError(t, tree.Toggle(source))
	assert.Equal(t, []string{
		"src/components/button.tsx",
		"src/components/card.tsx",
		"src/index.ts",
		"src/util.ts",
	}, tree.SelectedRelativeFiles())
	assert.Equal(t, types.Selected, tree.State(mustLookup(t, tree, "src/components")))
	assert.False(t, tree.IsSelected(mustLookup(t, tree, "main.js")))
	requireConsistent(t, tree)
}

func TestToggleRecomputesAncestors(t *testing.T) {
	tree := openSample(t)
	components := mustLookup(t, tree, "src/components")
	button := mustLookup(t, tree, "src/components/button.tsx")
	card := mustLookup(t, tree, "src/components/card.tsx")
	source := mustLookup(t, tree, "src")

	require.NoError(t, tree.Toggle(button))
	assert.Equal(t, types.Partial, tree.State(components))
	assert.False(t, tree.IsSelected(components))
	assert.Equal(t, types.Partial, tree.State(source))

	require.NoError(t, tree.Toggle(card))
	assert.True(t, tree.IsSelected(components))
	assert.Equal(t, types.Partial, tree.State(source))

	require.NoError(t, tree.Toggle(button))
	assert.False(t, tree.IsSelected(components))
	assert.Equal(t, types.Partial, tree.State(components))

	require.NoError(t, tree.Toggle(card))
	assert.Equal(t, types.Unselected, tree.State(components))
	assert.Equal(t, types.Unselected, tree.State(source))
}

func TestToggleClimbsToRoot(t *testing.T) {
	tree := openSample(t)
	source := mustLookup(t, tree, "src")
	for _, relativePath := range []string{"src/components/button.tsx", "src/components/card.tsx", "src/index.ts", "src/util.ts"} {
		require.NoError(t, tree.Toggle(mustLookup(t, tree, relativePath)))
	}
	assert.Equal(t, types.Selected, tree.State(source))
}

func TestTogglePartialDirectorySelectsAll(t *testing.T) {
	tree := openSample(t)
	source := mustLookup(t, tree, "src")
	require.NoError(t, tree.Toggle(mustLookup(t, tree, "src/index.ts")))
	require.Equal(t, types.Partial, tree.State(source))

	require.NoError(t, tree.Toggle(source))
	assert.Equal(t, types.Selected, tree.State(source))
	assert.Len(t, tree.SelectedFiles(), 4)
}

func TestToggleTwiceRestoresState(t *testing.T) {
	tree := openSample(t)
	require.NoError(t, tree.Toggle(mustLookup(t, tree, "src/components/card.tsx")))
	require.NoError(t, tree.Toggle(mustLookup(t, tree, "main.js")))

	for index := 0; index < tree.Len(); index++ {
		id := selection.NodeID(index)
		node, ok := tree.Node(id)
		require.True(t, ok)
		// A partial directory toggles to fully selected, so restoring it takes a different path.
		if node.State == types.Partial {
			continue
		}
		before := snapshot(tree)
		require.NoError(t, tree.Toggle(id))
		require.NoError(t, tree.Toggle(id))
		assert.Equalf(t, before, snapshot(tree), "double toggle of %s", node.Path)
	}
}

func TestToggleUnknownNode(t *testing.T) {
	tree := openSample(t)
	require.NoError(t, tree.Toggle(mustLookup(t, tree, "src/index.ts")))
	before := snapshot(tree)

	for _, id := range []selection.NodeID{selection.NoParent, selection.NodeID(tree.Len()), 1000} {
		assert.ErrorIs(t, tree.Toggle(id), selection.ErrUnknownNode)
	}
	assert.Equal(t, before, snapshot(tree))
}

func TestInvariantHoldsForRandomToggles(t *testing.T) {
	randomSource := rand.New(rand.NewSource(7))
	tree := openSample(t)
	for step := 0; step < 500; step++ {
		id := selection.NodeID(randomSource.Intn(tree.Len()))
		require.NoError(t, tree.Toggle(id))
		requireConsistent(t, tree)
	}
}

func TestSelectedFilesHasNoDuplicates(t *testing.T) {
	tree := openSample(t)
	require.NoError(t, tree.Toggle(mustLookup(t, tree, "src/components")))
	require.NoError(t, tree.Toggle(mustLookup(t, tree, "src/util.ts")))
	require.NoError(t, tree.Toggle(mustLookup(t, tree, "main.js")))

	assert.Equal(t, []string{
		"src/components/button.tsx",
		"src/components/card.tsx",
		"src/util.ts",
		"main.js",
	}, tree.SelectedRelativeFiles())
}

func TestRefreshResetsSelection(t *testing.T) {
	builder := &staticBuilder{roots: sampleRoots}
	tree, err := selection.Open(projectRoot, builder)
	require.NoError(t, err)
	require.NoError(t, tree.Toggle(mustLookup(t, tree, "src")))
	require.NotEmpty(t, tree.SelectedFiles())

	require.NoError(t, tree.Refresh())
	assert.Empty(t, tree.SelectedFiles())
	assert.Equal(t, 2, builder.builds)
	assert.Equal(t, 7, tree.Len())
}

func TestRefreshWithoutBuilder(t *testing.T) {
	tree := selection.New(sampleRoots())
	assert.ErrorIs(t, tree.Refresh(), selection.ErrNoBuilder)
}

func TestSetAllAndCounts(t *testing.T) {
	tree := openSample(t)
	selectedFiles, totalFiles := tree.Counts()
	assert.Equal(t, 0, selectedFiles)
	assert.Equal(t, 5, totalFiles)

	tree.SetAll(true)
	selectedFiles, _ = tree.Counts()
	assert.Equal(t, 5, selectedFiles)
	requireConsistent(t, tree)

	require.NoError(t, tree.Toggle(mustLookup(t, tree, "main.js")))
	selectedFiles, _ = tree.Counts()
	assert.Equal(t, 4, selectedFiles)

	tree.SetAll(false)
	assert.Empty(t, tree.SelectedFiles())
	requireConsistent(t, tree)
}

func TestVisitSkipsChildren(t *testing.T) {
	tree := openSample(t)
	var visited []string
	tree.Visit(func(node selection.Node) bool {
		visited = append(visited, node.Name)
		return node.Name != "components"
	})
	assert.Equal(t, []string{"src", "components", "index.ts", "util.ts", "main.js"}, visited)
}

func TestLookupAcceptsRelativeAndAbsolutePaths(t *testing.T) {
	tree := openSample(t)
	relativeID, found := tree.Lookup("src/index.ts")
	require.True(t, found)
	absoluteID, found := tree.Lookup(filepath.Join(projectRoot, "src", "index.ts"))
	require.True(t, found)
	assert.Equal(t, relativeID, absoluteID)
	assert.Equal(t, "src/index.ts", tree.RelativePath(relativeID))

	_, found = tree.Lookup("src/missing.ts")
	assert.False(t, found)
}

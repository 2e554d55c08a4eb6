package commands

import (
	"fmt"

	"github.com/temirov/ctxpick/internal/selection"
	"github.com/temirov/ctxpick/internal/types"
)

const (
	errorUnknownSelectionFormat = "selecting %s: %w"
)

// GetTreeData converts the selection tree into renderable nodes carrying each node's state.
func GetTreeData(tree *selection.Tree) []*types.TreeOutputNode {
	var roots []*types.TreeOutputNode
	outputByID := make(map[selection.NodeID]*types.TreeOutputNode, tree.Len())
	tree.Visit(func(node selection.Node) bool {
		outputNode := &types.TreeOutputNode{
			Path:  node.Path,
			Name:  node.Name,
			Type:  node.Kind.String(),
			State: node.State.String(),
		}
		outputByID[node.ID] = outputNode
		if parentNode, hasParent := outputByID[node.Parent]; hasParent {
			parentNode.Children = append(parentNode.Children, outputNode)
		} else {
			roots = append(roots, outputNode)
		}
		return true
	})
	return roots
}

// ApplySelections toggles each path in order. Paths are absolute or relative to the tree root.
func ApplySelections(tree *selection.Tree, paths []string) error {
	for _, path := range paths {
		id, found := tree.Lookup(path)
		if !found {
			return fmt.Errorf(errorUnknownSelectionFormat, path, selection.ErrUnknownNode)
		}
		if toggleError := tree.Toggle(id); toggleError != nil {
			return fmt.Errorf(errorUnknownSelectionFormat, path, toggleError)
		}
	}
	return nil
}

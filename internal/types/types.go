// Package types defines every cross‑package data structure used by the ctxpick CLI.
package types

import "encoding/xml"

const (
	NodeTypeFile      = "file"
	NodeTypeDirectory = "directory"

	CommandTree   = "tree"
	CommandConcat = "concat"
	CommandBrowse = "browse"
	CommandInit   = "init"

	FormatRaw  = "raw"
	FormatJSON = "json"
	FormatXML  = "xml"
	FormatYAML = "yaml"
)

// NodeKind distinguishes files from directories in a scanned tree.
type NodeKind int

const (
	KindFile NodeKind = iota
	KindDirectory
)

// String returns the node type label used by renderers.
func (kind NodeKind) String() string {
	if kind == KindDirectory {
		return NodeTypeDirectory
	}
	return NodeTypeFile
}

// SelectionState is the tri-state selection of a node. Files are only ever
// Unselected or Selected; directories derive their state from their children.
type SelectionState int

const (
	Unselected SelectionState = iota
	Selected
	Partial
)

// String returns the lower-case state name.
func (state SelectionState) String() string {
	switch state {
	case Selected:
		return "selected"
	case Partial:
		return "partial"
	default:
		return "unselected"
	}
}

// Marker returns the checkbox marker displayed for the state.
func (state SelectionState) Marker() string {
	switch state {
	case Selected:
		return "[x]"
	case Partial:
		return "[-]"
	default:
		return "[ ]"
	}
}

// TreeNode is a scanned file-system entry. Children is populated only for
// directories and is never empty for a directory that made it into a tree.
type TreeNode struct {
	Path     string
	Name     string
	Kind     NodeKind
	Children []*TreeNode
}

// IsDir reports whether the node is a directory.
func (node *TreeNode) IsDir() bool {
	return node != nil && node.Kind == KindDirectory
}

// ValidatedPath is an absolute input path that already passed existence checks.
type ValidatedPath struct {
	AbsolutePath string
	IsDir        bool
}

// TreeOutputNode represents a node of a selection tree returned by the tree command.
type TreeOutputNode struct {
	XMLName  xml.Name          `json:"-" xml:"node" yaml:"-"`
	Path     string            `json:"path" xml:"path" yaml:"path"`
	Name     string            `json:"name" xml:"name" yaml:"name"`
	Type     string            `json:"type" xml:"type" yaml:"type"`
	State    string            `json:"state" xml:"state" yaml:"state"`
	Children []*TreeOutputNode `json:"children,omitempty" xml:"children>node,omitempty" yaml:"children,omitempty"`
}

// FileOutput represents one concatenated file.
type FileOutput struct {
	Path      string `json:"path" xml:"path"`
	Content   string `json:"content" xml:"content"`
	SizeBytes int64  `json:"sizeBytes" xml:"sizeBytes"`
	Tokens    int    `json:"tokens,omitempty" xml:"tokens,omitempty"`
}

// OutputSummary captures aggregate information about rendered files.
type OutputSummary struct {
	TotalFiles  int    `json:"totalFiles" xml:"totalFiles"`
	TotalSize   string `json:"totalSize" xml:"totalSize"`
	TotalTokens int    `json:"totalTokens,omitempty" xml:"totalTokens,omitempty"`
	Model       string `json:"model,omitempty" xml:"model,omitempty"`
}

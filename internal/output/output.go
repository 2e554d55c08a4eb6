// Package output renders selection trees and concatenated file content.
package output

import (
	"bytes"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/temirov/ctxpick/internal/types"
	"github.com/temirov/ctxpick/internal/utils"
)

const (
	indentPrefix = ""
	indentSpacer = "  "

	// DefaultHeaderFormat is the per-file header; %s is replaced by the path relative to the root.
	DefaultHeaderFormat = "// File: %s"
	separatorWidth      = 80
	headerPathVerb      = "%s"

	xmlHeader = xml.Header

	treeBranchConnector = "├── "
	treeLastConnector   = "└── "
	treeBranchPadding   = "│   "
	treeLastPadding     = "    "

	directorySuffix = "/"

	errorUnsupportedTreeFormat = "unsupported tree format %q"
)

var separatorLine = strings.Repeat("-", separatorWidth)

// FormatFileHeader renders the header line for relativePath. A format without
// a %s verb gets the path appended after a space.
func FormatFileHeader(headerFormat, relativePath string) string {
	if headerFormat == "" {
		headerFormat = DefaultHeaderFormat
	}
	if !strings.Contains(headerFormat, headerPathVerb) {
		return headerFormat + " " + relativePath
	}
	return strings.Replace(headerFormat, headerPathVerb, relativePath, 1)
}

// WriteConcatenatedFile writes one file block: a blank line, the header, the
// raw content, a blank line, the separator, and a blank line.
func WriteConcatenatedFile(writer io.Writer, header string, content string) error {
	_, err := fmt.Fprintf(writer, "\n%s\n%s\n\n%s\n\n", header, content, separatorLine)
	return err
}

// RenderConcatenation returns the concatenated blob for files, whose paths are made relative to root.
func RenderConcatenation(root string, files []types.FileOutput, headerFormat string) string {
	var buffer bytes.Buffer
	for _, file := range files {
		header := FormatFileHeader(headerFormat, utils.RelativePathOrSelf(file.Path, root))
		_ = WriteConcatenatedFile(&buffer, header, file.Content)
	}
	return buffer.String()
}

// RenderTree renders selection tree nodes in the requested format.
func RenderTree(format string, root string, nodes []*types.TreeOutputNode) (string, error) {
	switch format {
	case "", types.FormatRaw:
		var buffer bytes.Buffer
		WriteTreeRaw(&buffer, root, nodes)
		return buffer.String(), nil
	case types.FormatJSON:
		return RenderTreeJSON(nodes)
	case types.FormatXML:
		return RenderTreeXML(nodes)
	case types.FormatYAML:
		return RenderTreeYAML(nodes)
	default:
		return "", fmt.Errorf(errorUnsupportedTreeFormat, format)
	}
}

// RenderTreeJSON marshals nodes as an indented JSON array.
func RenderTreeJSON(nodes []*types.TreeOutputNode) (string, error) {
	if nodes == nil {
		nodes = []*types.TreeOutputNode{}
	}
	encoded, jsonEncodeError := json.MarshalIndent(nodes, indentPrefix, indentSpacer)
	return string(encoded), jsonEncodeError
}

// RenderTreeXML marshals nodes under a single tree element.
func RenderTreeXML(nodes []*types.TreeOutputNode) (string, error) {
	wrapper := struct {
		XMLName xml.Name                `xml:"tree"`
		Nodes   []*types.TreeOutputNode `xml:"node"`
	}{Nodes: nodes}
	encoded, xmlMarshalError := xml.MarshalIndent(wrapper, indentPrefix, indentSpacer)
	if xmlMarshalError != nil {
		return "", xmlMarshalError
	}
	return xmlHeader + string(encoded), nil
}

// RenderTreeYAML marshals nodes as a YAML sequence.
func RenderTreeYAML(nodes []*types.TreeOutputNode) (string, error) {
	if nodes == nil {
		nodes = []*types.TreeOutputNode{}
	}
	var buffer bytes.Buffer
	encoder := yaml.NewEncoder(&buffer)
	encoder.SetIndent(len(indentSpacer))
	if encodeError := encoder.Encode(nodes); encodeError != nil {
		return "", encodeError
	}
	if closeError := encoder.Close(); closeError != nil {
		return "", closeError
	}
	return buffer.String(), nil
}

func treeNodeLinePrefix(prefix string, isLast bool) (string, string) {
	if isLast {
		return prefix + treeLastConnector, prefix + treeLastPadding
	}
	return prefix + treeBranchConnector, prefix + treeBranchPadding
}

// WriteTreeRaw prints the root path followed by a connector tree where every
// node carries its selection marker.
func WriteTreeRaw(writer io.Writer, root string, nodes []*types.TreeOutputNode) {
	fmt.Fprintln(writer, root)
	type pendingLine struct {
		node   *types.TreeOutputNode
		prefix string
		isLast bool
	}
	stack := make([]pendingLine, 0, len(nodes))
	for index := len(nodes) - 1; index >= 0; index-- {
		stack = append(stack, pendingLine{node: nodes[index], isLast: index == len(nodes)-1})
	}
	for len(stack) > 0 {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if current.node == nil {
			continue
		}
		linePrefix, childPrefix := treeNodeLinePrefix(current.prefix, current.isLast)
		name := current.node.Name
		if current.node.Type == types.NodeTypeDirectory {
			name += directorySuffix
		}
		fmt.Fprintf(writer, "%s%s %s\n", linePrefix, stateMarker(current.node.State), name)
		children := current.node.Children
		for index := len(children) - 1; index >= 0; index-- {
			stack = append(stack, pendingLine{node: children[index], prefix: childPrefix, isLast: index == len(children)-1})
		}
	}
}

func stateMarker(state string) string {
	switch state {
	case types.Selected.String():
		return types.Selected.Marker()
	case types.Partial.String():
		return types.Partial.Marker()
	default:
		return types.Unselected.Marker()
	}
}

// FormatSummaryLine formats an OutputSummary into the raw summary line.
func FormatSummaryLine(summary *types.OutputSummary) string {
	if summary == nil {
		summary = &types.OutputSummary{}
	}
	label := "files"
	if summary.TotalFiles == 1 {
		label = "file"
	}
	extra := ""
	if summary.TotalTokens > 0 {
		extra = fmt.Sprintf(", %d tokens", summary.TotalTokens)
	}
	modelSuffix := ""
	if summary.Model != "" {
		modelSuffix = fmt.Sprintf(" (model: %s)", summary.Model)
	}
	return fmt.Sprintf("Summary: %d %s, %s%s%s", summary.TotalFiles, label, summary.TotalSize, extra, modelSuffix)
}

// Package ui implements the interactive selection browser.
package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"
	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/temirov/ctxpick/internal/commands"
	"github.com/temirov/ctxpick/internal/selection"
	"github.com/temirov/ctxpick/internal/services/clipboard"
	"github.com/temirov/ctxpick/internal/services/sink"
	"github.com/temirov/ctxpick/internal/tokenizer"
	"github.com/temirov/ctxpick/internal/types"
	"github.com/temirov/ctxpick/internal/utils"
)

const (
	titleFormat             = "ctxpick %s"
	countsFormat            = "%d/%d files selected"
	tokensFormat            = ", %s tokens"
	concatenatedFormat      = "Concatenated %d files into %s"
	copiedFormat            = "Copied %d files to the clipboard"
	noSelectionMessage      = "No files selected."
	emptyTreeMessage        = "No eligible files found."
	cancelledMessage        = "Concatenation cancelled."
	refreshedMessage        = "Tree refreshed."
	clipboardMissingMessage = "Clipboard is not available."
	workingMessage          = "Working..."
	promptLabel             = "Save to: "

	indentUnit        = "  "
	expandedMarker    = "▾ "
	collapsedMarker   = "▸ "
	fileMarkerPadding = "  "
	directorySuffix   = "/"

	// reservedLines covers the title, status, message, prompt, and help lines.
	reservedLines = 5

	warningTokenTotalMessage = "failed to total selected tokens"
)

type browserMode int

const (
	modeBrowse browserMode = iota
	modePrompt
)

// Options configures the browser.
type Options struct {
	Tree         *selection.Tree
	FileSystem   afero.Fs
	HeaderFormat string
	Destination  string
	TokenCache   *tokenizer.FileCache
	Copier       clipboard.Copier
	Logger       *zap.Logger
}

type concatenationFinishedMsg struct {
	destination string
	files       int
	err         error
}

type copyFinishedMsg struct {
	files int
	err   error
}

// Model is the Bubble Tea model of the browser.
type Model struct {
	options   Options
	keys      keyMap
	styles    styles
	help      help.Model
	input     textinput.Model
	mode      browserMode
	rows      []selection.Node
	collapsed map[selection.NodeID]bool
	cursor    int
	offset    int
	height    int
	tokens    int
	message   string
	isError   bool
	busy      bool
}

// NewModel creates a browser over options.Tree with every directory expanded.
func NewModel(options Options) Model {
	if options.FileSystem == nil {
		options.FileSystem = afero.NewOsFs()
	}
	options.Logger = utils.LoggerOrNop(options.Logger)
	input := textinput.New()
	input.Prompt = promptLabel
	model := Model{
		options:   options,
		keys:      defaultKeyMap(),
		styles:    defaultStyles(),
		help:      help.New(),
		input:     input,
		collapsed: map[selection.NodeID]bool{},
	}
	model.rebuildRows()
	if len(model.rows) == 0 {
		model.message = emptyTreeMessage
	}
	return model
}

// Run starts the browser in the alternate screen and blocks until it exits.
func Run(options Options) error {
	program := tea.NewProgram(NewModel(options), tea.WithAltScreen())
	_, err := program.Run()
	return err
}

func (model Model) Init() tea.Cmd {
	return nil
}

func (model Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch typed := msg.(type) {
	case tea.WindowSizeMsg:
		model.height = typed.Height
		model.help.Width = typed.Width
		model.input.Width = typed.Width - len(promptLabel) - 1
		model.ensureCursorVisible()
		return model, nil
	case concatenationFinishedMsg:
		model.busy = false
		if typed.err != nil {
			model.setError(typed.err)
			return model, nil
		}
		model.setMessage(fmt.Sprintf(concatenatedFormat, typed.files, typed.destination))
		return model, nil
	case copyFinishedMsg:
		model.busy = false
		if typed.err != nil {
			model.setError(typed.err)
			return model, nil
		}
		model.setMessage(fmt.Sprintf(copiedFormat, typed.files))
		return model, nil
	case tea.KeyMsg:
		if model.mode == modePrompt {
			return model.updatePrompt(typed)
		}
		return model.updateBrowse(typed)
	}
	return model, nil
}

func (model Model) updatePrompt(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, model.keys.Confirm):
		model.mode = modeBrowse
		model.input.Blur()
		destination := sink.ResolveDestination(model.options.Tree.RootPath(), strings.TrimSpace(model.input.Value()))
		paths := model.options.Tree.SelectedFiles()
		model.busy = true
		model.setMessage(workingMessage)
		return model, model.concatenateCmd(destination, paths)
	case key.Matches(msg, model.keys.Cancel):
		model.mode = modeBrowse
		model.input.Blur()
		model.setMessage(cancelledMessage)
		return model, nil
	}
	var cmd tea.Cmd
	model.input, cmd = model.input.Update(msg)
	return model, cmd
}

func (model Model) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, model.keys.Quit):
		return model, tea.Quit
	case key.Matches(msg, model.keys.Help):
		model.help.ShowAll = !model.help.ShowAll
	case key.Matches(msg, model.keys.Up):
		model.moveCursor(-1)
	case key.Matches(msg, model.keys.Down):
		model.moveCursor(1)
	case key.Matches(msg, model.keys.Collapse):
		model.collapseCurrent()
	case key.Matches(msg, model.keys.Expand):
		if node, ok := model.currentNode(); ok && node.IsDir() {
			delete(model.collapsed, node.ID)
			model.rebuildRows()
		}
	case key.Matches(msg, model.keys.CollapseAll):
		model.collapseAll()
	case key.Matches(msg, model.keys.ExpandAll):
		model.collapsed = map[selection.NodeID]bool{}
		model.rebuildRows()
	case key.Matches(msg, model.keys.Toggle):
		if node, ok := model.currentNode(); ok {
			if err := model.options.Tree.Toggle(node.ID); err != nil {
				model.setError(err)
				break
			}
			model.clearMessage()
			model.rebuildRows()
		}
	case key.Matches(msg, model.keys.ToggleAll):
		selectedFiles, totalFiles := model.options.Tree.Counts()
		model.options.Tree.SetAll(selectedFiles != totalFiles)
		model.clearMessage()
		model.rebuildRows()
	case key.Matches(msg, model.keys.Refresh):
		if err := model.options.Tree.Refresh(); err != nil {
			model.setError(err)
			break
		}
		model.collapsed = map[selection.NodeID]bool{}
		model.cursor = 0
		model.offset = 0
		model.rebuildRows()
		model.setMessage(refreshedMessage)
	case key.Matches(msg, model.keys.Concatenate):
		if model.busy {
			break
		}
		if len(model.options.Tree.SelectedFiles()) == 0 {
			model.setMessage(noSelectionMessage)
			break
		}
		model.mode = modePrompt
		model.input.SetValue(sink.ResolveDestination(model.options.Tree.RootPath(), model.options.Destination))
		model.input.CursorEnd()
		return model, model.input.Focus()
	case key.Matches(msg, model.keys.Copy):
		if model.busy {
			break
		}
		if model.options.Copier == nil {
			model.setMessage(clipboardMissingMessage)
			break
		}
		paths := model.options.Tree.SelectedFiles()
		if len(paths) == 0 {
			model.setMessage(noSelectionMessage)
			break
		}
		model.busy = true
		model.setMessage(workingMessage)
		return model, model.copyCmd(paths)
	}
	return model, nil
}

func (model Model) concatOptions(paths []string) commands.ConcatOptions {
	return commands.ConcatOptions{
		Root:       model.options.Tree.RootPath(),
		Paths:      paths,
		FileSystem: model.options.FileSystem,
		Logger:     model.options.Logger,
	}
}

func (model Model) concatenateCmd(destination string, paths []string) tea.Cmd {
	concatOptions := model.concatOptions(paths)
	headerFormat := model.options.HeaderFormat
	fileSystem := model.options.FileSystem
	return func() tea.Msg {
		blob, err := commands.ConcatenateToString(context.Background(), concatOptions, headerFormat)
		if err == nil {
			err = sink.WriteFile(fileSystem, destination, blob)
		}
		return concatenationFinishedMsg{destination: destination, files: len(paths), err: err}
	}
}

func (model Model) copyCmd(paths []string) tea.Cmd {
	concatOptions := model.concatOptions(paths)
	headerFormat := model.options.HeaderFormat
	copier := model.options.Copier
	return func() tea.Msg {
		blob, err := commands.ConcatenateToString(context.Background(), concatOptions, headerFormat)
		if err == nil {
			err = copier.Copy(blob)
		}
		return copyFinishedMsg{files: len(paths), err: err}
	}
}

func (model *Model) setMessage(message string) {
	model.message = message
	model.isError = false
}

func (model *Model) setError(err error) {
	model.message = err.Error()
	model.isError = true
}

func (model *Model) clearMessage() {
	model.message = ""
	model.isError = false
}

func (model *Model) currentNode() (selection.Node, bool) {
	if model.cursor < 0 || model.cursor >= len(model.rows) {
		return selection.Node{}, false
	}
	return model.rows[model.cursor], true
}

func (model *Model) moveCursor(delta int) {
	model.cursor += delta
	if model.cursor >= len(model.rows) {
		model.cursor = len(model.rows) - 1
	}
	if model.cursor < 0 {
		model.cursor = 0
	}
	model.ensureCursorVisible()
}

// collapseCurrent folds an expanded directory, or moves to the parent of anything else.
func (model *Model) collapseCurrent() {
	node, ok := model.currentNode()
	if !ok {
		return
	}
	if node.IsDir() && !model.collapsed[node.ID] {
		model.collapsed[node.ID] = true
		model.rebuildRows()
		return
	}
	if node.Parent == selection.NoParent {
		return
	}
	for index, row := range model.rows {
		if row.ID == node.Parent {
			model.cursor = index
			model.ensureCursorVisible()
			return
		}
	}
}

// collapseAll folds every directory and keeps the cursor on the top-level entry containing it.
func (model *Model) collapseAll() {
	tree := model.options.Tree
	anchor := selection.NoParent
	if node, ok := model.currentNode(); ok {
		for node.Parent != selection.NoParent {
			parent, found := tree.Node(node.Parent)
			if !found {
				break
			}
			node = parent
		}
		anchor = node.ID
	}
	tree.Visit(func(node selection.Node) bool {
		if node.IsDir() {
			model.collapsed[node.ID] = true
		}
		return true
	})
	model.rebuildRows()
	for index, row := range model.rows {
		if row.ID == anchor {
			model.cursor = index
			model.ensureCursorVisible()
			return
		}
	}
}

func (model *Model) rebuildRows() {
	tree := model.options.Tree
	model.rows = model.rows[:0]
	tree.Visit(func(node selection.Node) bool {
		model.rows = append(model.rows, node)
		return !model.collapsed[node.ID]
	})
	if model.cursor >= len(model.rows) {
		model.cursor = len(model.rows) - 1
	}
	if model.cursor < 0 {
		model.cursor = 0
	}
	model.ensureCursorVisible()
	model.recountTokens()
}

func (model *Model) recountTokens() {
	model.tokens = 0
	if model.options.TokenCache == nil {
		return
	}
	total, err := model.options.TokenCache.Total(model.options.Tree.SelectedFiles())
	if err != nil {
		model.options.Logger.Warn(warningTokenTotalMessage, zap.Error(err))
		model.setError(err)
		return
	}
	model.tokens = total
}

func (model *Model) visibleRowCount() int {
	if model.height <= reservedLines {
		return len(model.rows)
	}
	return model.height - reservedLines
}

func (model *Model) ensureCursorVisible() {
	visible := model.visibleRowCount()
	if model.cursor < model.offset {
		model.offset = model.cursor
	}
	if model.cursor >= model.offset+visible {
		model.offset = model.cursor - visible + 1
	}
	if model.offset < 0 {
		model.offset = 0
	}
}

func (model Model) renderRow(index int, node selection.Node) string {
	var builder strings.Builder
	builder.WriteString(strings.Repeat(indentUnit, node.Depth))
	switch {
	case !node.IsDir():
		builder.WriteString(fileMarkerPadding)
	case model.collapsed[node.ID]:
		builder.WriteString(collapsedMarker)
	default:
		builder.WriteString(expandedMarker)
	}

	marker := node.State.Marker()
	switch node.State {
	case types.Selected:
		marker = model.styles.Selected.Render(marker)
	case types.Partial:
		marker = model.styles.Partial.Render(marker)
	}
	builder.WriteString(marker)
	builder.WriteString(" ")

	if node.IsDir() {
		builder.WriteString(model.styles.Directory.Render(node.Name + directorySuffix))
	} else {
		builder.WriteString(model.styles.File.Render(node.Name))
	}

	line := builder.String()
	if index == model.cursor {
		return model.styles.Cursor.Render(line)
	}
	return line
}

func (model Model) View() string {
	var builder strings.Builder
	builder.WriteString(model.styles.Title.Render(fmt.Sprintf(titleFormat, model.options.Tree.RootPath())))
	builder.WriteString("\n")

	end := model.offset + model.visibleRowCount()
	if end > len(model.rows) {
		end = len(model.rows)
	}
	for index := model.offset; index < end; index++ {
		builder.WriteString(model.renderRow(index, model.rows[index]))
		builder.WriteString("\n")
	}

	selectedFiles, totalFiles := model.options.Tree.Counts()
	status := fmt.Sprintf(countsFormat, selectedFiles, totalFiles)
	if model.options.TokenCache != nil {
		status += fmt.Sprintf(tokensFormat, humanize.Comma(int64(model.tokens)))
	}
	builder.WriteString(model.styles.Status.Render(status))
	builder.WriteString("\n")

	if model.message != "" {
		if model.isError {
			builder.WriteString(model.styles.Error.Render(model.message))
		} else {
			builder.WriteString(model.styles.Message.Render(model.message))
		}
		builder.WriteString("\n")
	}
	if model.mode == modePrompt {
		builder.WriteString(model.styles.Prompt.Render(model.input.View()))
		builder.WriteString("\n")
	}
	builder.WriteString(model.help.View(model.keys))
	return builder.String()
}

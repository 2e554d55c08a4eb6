package commands_test

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/temirov/ctxpick/internal/commands"
	"github.com/temirov/ctxpick/internal/selection"
)

// TestConcatenateSelectedTree covers build, toggle, and concatenation together.
func TestConcatenateSelectedTree(testingHandle *testing.T) {
	fileSystem := newProjectFs(testingHandle, map[string]string{
		"a.ts":       "hello",
		"src/b.ts":   "world",
		"src/c.md":   "skipped",
		"src/d.tsx":  "<D />",
		"README.txt": "skipped",
	})
	builder := &commands.TreeBuilder{FileSystem: fileSystem}
	tree, openError := selection.Open(projectRoot, builder)
	if openError != nil {
		testingHandle.Fatalf("Open error: %v", openError)
	}
	if selectError := commands.ApplySelections(tree, []string{"a.ts", "src"}); selectError != nil {
		testingHandle.Fatalf("ApplySelections error: %v", selectError)
	}

	blob, concatError := commands.ConcatenateToString(context.Background(), commands.ConcatOptions{
		Root:       projectRoot,
		Paths:      tree.SelectedFiles(),
		FileSystem: fileSystem,
	}, "")
	if concatError != nil {
		testingHandle.Fatalf("ConcatenateToString error: %v", concatError)
	}

	separator := strings.Repeat("-", 80)
	expected := "\n// File: src/b.ts\nworld\n\n" + separator + "\n\n" +
		"\n// File: src/d.tsx\n<D />\n\n" + separator + "\n\n" +
		"\n// File: a.ts\nhello\n\n" + separator + "\n\n"
	if blob != expected {
		testingHandle.Fatalf("unexpected blob:\n%q\nwant:\n%q", blob, expected)
	}
}

func TestConcatenateToStringRejectsEmptySelection(testingHandle *testing.T) {
	_, concatError := commands.ConcatenateToString(context.Background(), commands.ConcatOptions{Root: projectRoot}, "")
	if !errors.Is(concatError, commands.ErrNoSelection) {
		testingHandle.Fatalf("expected ErrNoSelection, got %v", concatError)
	}
}

func TestConcatenateToStringSurfacesReadError(testingHandle *testing.T) {
	fileSystem := newProjectFs(testingHandle, map[string]string{"a.ts": "hello"})
	_, concatError := commands.ConcatenateToString(context.Background(), commands.ConcatOptions{
		Root:       projectRoot,
		Paths:      []string{projectRoot + "/a.ts", projectRoot + "/deleted.ts"},
		FileSystem: fileSystem,
	}, "")
	if !errors.Is(concatError, os.ErrNotExist) {
		testingHandle.Fatalf("expected not-exist error, got %v", concatError)
	}
}

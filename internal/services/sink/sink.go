// Package sink writes concatenated output to its destination.
package sink

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/temirov/ctxpick/internal/utils"
)

const (
	errorCreateDirectoryFormat = "create directory %s: %w"
	errorWriteFileFormat       = "write %s: %w"

	outputFilePermissions      = 0o644
	outputDirectoryPermissions = 0o755
)

var errEmptyDestination = errors.New("sink: destination path is empty")

// DefaultDestination returns the file offered for a concatenation of root.
func DefaultDestination(root string) string {
	return filepath.Join(root, utils.DefaultOutputFileName)
}

// ResolveDestination makes destination absolute relative to root. An empty
// destination resolves to DefaultDestination(root).
func ResolveDestination(root, destination string) string {
	if destination == "" {
		return DefaultDestination(root)
	}
	if filepath.IsAbs(destination) {
		return filepath.Clean(destination)
	}
	return filepath.Join(root, destination)
}

// WriteFile stores text at destination, creating missing parent directories.
func WriteFile(fileSystem afero.Fs, destination string, text string) error {
	if destination == "" {
		return errEmptyDestination
	}
	parentDirectory := filepath.Dir(destination)
	if err := fileSystem.MkdirAll(parentDirectory, outputDirectoryPermissions); err != nil {
		return fmt.Errorf(errorCreateDirectoryFormat, parentDirectory, err)
	}
	if err := afero.WriteFile(fileSystem, destination, []byte(text), outputFilePermissions); err != nil {
		return fmt.Errorf(errorWriteFileFormat, destination, err)
	}
	return nil
}

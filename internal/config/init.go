package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/temirov/ctxpick/internal/output"
	"github.com/temirov/ctxpick/internal/tokenizer"
	"github.com/temirov/ctxpick/internal/types"
	"github.com/temirov/ctxpick/internal/utils"
)

// InitTarget identifies where configuration should be initialized.
type InitTarget string

const (
	// InitTargetLocal writes configuration into the working directory.
	InitTargetLocal InitTarget = "local"
	// InitTargetGlobal writes configuration into the global configuration directory.
	InitTargetGlobal InitTarget = "global"

	errorUnsupportedTargetFormat = "unsupported init target %q"
	errorHomeDirectoryFormat     = "resolve home directory for configuration: %w"
	errorCreateDirectoryFormat   = "create configuration directory %s: %w"
	errorExistsFormat            = "configuration file already exists at %s"
	errorInspectFormat           = "inspect configuration path %s: %w"
	errorEncodeFormat            = "encode default configuration: %w"
	errorWriteFormat             = "write configuration to %s: %w"
)

// InitOptions controls how configuration initialization behaves.
type InitOptions struct {
	FileSystem       afero.Fs
	Target           InitTarget
	Force            bool
	WorkingDirectory string
	HomeDirectory    string
}

// DefaultConfiguration returns the settings written by InitializeConfiguration.
func DefaultConfiguration() ApplicationConfiguration {
	pathDefaults := func() PathConfiguration {
		return PathConfiguration{
			UseGitignore:  boolPointer(true),
			UseIgnoreFile: boolPointer(true),
			IncludeGit:    boolPointer(false),
		}
	}
	extensions := func() []string {
		return append([]string{}, utils.DefaultAllowedExtensions...)
	}
	return ApplicationConfiguration{
		Tree: CommandConfiguration{
			Format:     types.FormatRaw,
			Extensions: extensions(),
			Paths:      pathDefaults(),
		},
		Concat: CommandConfiguration{
			Format:     types.FormatRaw,
			Extensions: extensions(),
			Header:     output.DefaultHeaderFormat,
			Clipboard:  boolPointer(false),
			Tokens:     TokenConfiguration{Enabled: boolPointer(false), Model: tokenizer.DefaultModel},
			Paths:      pathDefaults(),
		},
		Browse: CommandConfiguration{
			Extensions: extensions(),
			Output:     utils.DefaultOutputFileName,
			Header:     output.DefaultHeaderFormat,
			Tokens:     TokenConfiguration{Enabled: boolPointer(true), Model: tokenizer.DefaultModel},
			Paths:      pathDefaults(),
		},
	}
}

// InitializeConfiguration writes DefaultConfiguration as YAML to the requested target and returns its path.
func InitializeConfiguration(options InitOptions) (string, error) {
	fileSystem := options.FileSystem
	if fileSystem == nil {
		fileSystem = afero.NewOsFs()
	}
	destinationDirectory, directoryError := initDirectory(options)
	if directoryError != nil {
		return "", directoryError
	}
	if mkdirError := fileSystem.MkdirAll(destinationDirectory, 0o755); mkdirError != nil {
		return "", fmt.Errorf(errorCreateDirectoryFormat, destinationDirectory, mkdirError)
	}
	destinationPath := filepath.Join(destinationDirectory, utils.ConfigFileName)

	_, statError := fileSystem.Stat(destinationPath)
	switch {
	case statError == nil && !options.Force:
		return "", fmt.Errorf(errorExistsFormat, destinationPath)
	case statError != nil && !errors.Is(statError, fs.ErrNotExist):
		return "", fmt.Errorf(errorInspectFormat, destinationPath, statError)
	}

	document, encodeError := yaml.Marshal(DefaultConfiguration())
	if encodeError != nil {
		return "", fmt.Errorf(errorEncodeFormat, encodeError)
	}
	if writeError := afero.WriteFile(fileSystem, destinationPath, document, 0o600); writeError != nil {
		return "", fmt.Errorf(errorWriteFormat, destinationPath, writeError)
	}
	return destinationPath, nil
}

func initDirectory(options InitOptions) (string, error) {
	switch options.Target {
	case "", InitTargetLocal:
		if options.WorkingDirectory != "" {
			return options.WorkingDirectory, nil
		}
		return os.Getwd()
	case InitTargetGlobal:
		homeDirectory := options.HomeDirectory
		if homeDirectory == "" {
			resolved, homeError := os.UserHomeDir()
			if homeError != nil {
				return "", fmt.Errorf(errorHomeDirectoryFormat, homeError)
			}
			homeDirectory = resolved
		}
		return filepath.Join(homeDirectory, utils.GlobalConfigDirectoryName), nil
	default:
		return "", fmt.Errorf(errorUnsupportedTargetFormat, options.Target)
	}
}

func boolPointer(value bool) *bool {
	return &value
}

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
	"github.com/spf13/viper"

	"github.com/temirov/ctxpick/internal/utils"
)

const (
	errorWorkingDirectoryFormat = "determine working directory: %w"
	errorStatFormat             = "stat configuration %s: %w"
	errorDirectoryFormat        = "configuration path %s is a directory"
	errorReadFormat             = "read configuration from %s: %w"
	errorDecodeFormat           = "decode configuration from %s: %w"
)

// LoadOptions controls where configuration layers are looked up.
// Empty fields fall back to the operating system file system, the process
// working directory and the user home directory.
type LoadOptions struct {
	FileSystem       afero.Fs
	WorkingDirectory string
	HomeDirectory    string
	ExplicitFilePath string
}

// ApplicationConfiguration holds per-command defaults.
type ApplicationConfiguration struct {
	Tree   CommandConfiguration `mapstructure:"tree" yaml:"tree,omitempty"`
	Concat CommandConfiguration `mapstructure:"concat" yaml:"concat,omitempty"`
	Browse CommandConfiguration `mapstructure:"browse" yaml:"browse,omitempty"`
}

// CommandConfiguration lists the settings a command section may carry.
// Pointer fields distinguish an explicit false from an absent key.
type CommandConfiguration struct {
	Format     string             `mapstructure:"format" yaml:"format,omitempty"`
	Extensions []string           `mapstructure:"extensions" yaml:"extensions,omitempty"`
	Output     string             `mapstructure:"output" yaml:"output,omitempty"`
	Header     string             `mapstructure:"header" yaml:"header,omitempty"`
	Clipboard  *bool              `mapstructure:"clipboard" yaml:"clipboard,omitempty"`
	Tokens     TokenConfiguration `mapstructure:"tokens" yaml:"tokens,omitempty"`
	Paths      PathConfiguration  `mapstructure:"paths" yaml:"paths,omitempty"`
}

// TokenConfiguration is the tokens block of a command section.
type TokenConfiguration struct {
	Enabled *bool  `mapstructure:"enabled" yaml:"enabled,omitempty"`
	Model   string `mapstructure:"model" yaml:"model,omitempty"`
}

// PathConfiguration is the paths block of a command section.
type PathConfiguration struct {
	Exclude       []string `mapstructure:"exclude" yaml:"exclude,omitempty"`
	UseGitignore  *bool    `mapstructure:"use_gitignore" yaml:"use_gitignore,omitempty"`
	UseIgnoreFile *bool    `mapstructure:"use_ignore" yaml:"use_ignore,omitempty"`
	IncludeGit    *bool    `mapstructure:"include_git" yaml:"include_git,omitempty"`
}

// LoadApplicationConfiguration reads the global layer and then the local
// layer, letting keys present in the later file win.
func LoadApplicationConfiguration(options LoadOptions) (ApplicationConfiguration, error) {
	fileSystem := options.FileSystem
	if fileSystem == nil {
		fileSystem = afero.NewOsFs()
	}
	layers, layerError := configurationLayers(options)
	if layerError != nil {
		return ApplicationConfiguration{}, layerError
	}

	var combined ApplicationConfiguration
	for _, layerPath := range layers {
		layer, readError := readConfigurationLayer(fileSystem, layerPath)
		if readError != nil {
			return ApplicationConfiguration{}, readError
		}
		combined = combined.Merge(layer)
	}
	for _, section := range combined.sections() {
		section.Paths.Exclude = utils.DeduplicatePatterns(section.Paths.Exclude)
	}
	return combined, nil
}

// configurationLayers returns candidate files in increasing precedence.
func configurationLayers(options LoadOptions) ([]string, error) {
	var layers []string

	homeDirectory := options.HomeDirectory
	if homeDirectory == "" {
		homeDirectory, _ = os.UserHomeDir()
	}
	if homeDirectory != "" {
		layers = append(layers, filepath.Join(homeDirectory, utils.GlobalConfigDirectoryName, utils.ConfigFileName))
	}

	workingDirectory := options.WorkingDirectory
	if workingDirectory == "" {
		currentDirectory, getwdError := os.Getwd()
		if getwdError != nil {
			return nil, fmt.Errorf(errorWorkingDirectoryFormat, getwdError)
		}
		workingDirectory = currentDirectory
	}
	switch {
	case options.ExplicitFilePath == "":
		layers = append(layers, filepath.Join(workingDirectory, utils.ConfigFileName))
	case filepath.IsAbs(options.ExplicitFilePath):
		layers = append(layers, options.ExplicitFilePath)
	default:
		layers = append(layers, filepath.Join(workingDirectory, options.ExplicitFilePath))
	}
	return layers, nil
}

// readConfigurationLayer decodes one YAML file. A missing file is an empty layer.
func readConfigurationLayer(fileSystem afero.Fs, layerPath string) (ApplicationConfiguration, error) {
	var layer ApplicationConfiguration
	layerInfo, statError := fileSystem.Stat(layerPath)
	switch {
	case errors.Is(statError, fs.ErrNotExist):
		return layer, nil
	case statError != nil:
		return layer, fmt.Errorf(errorStatFormat, layerPath, statError)
	case layerInfo.IsDir():
		return layer, fmt.Errorf(errorDirectoryFormat, layerPath)
	}

	reader := viper.New()
	reader.SetFs(fileSystem)
	reader.SetConfigFile(layerPath)
	if readError := reader.ReadInConfig(); readError != nil {
		return layer, fmt.Errorf(errorReadFormat, layerPath, readError)
	}
	if decodeError := reader.Unmarshal(&layer); decodeError != nil {
		return layer, fmt.Errorf(errorDecodeFormat, layerPath, decodeError)
	}
	return layer, nil
}

func (configuration *ApplicationConfiguration) sections() []*CommandConfiguration {
	return []*CommandConfiguration{&configuration.Tree, &configuration.Concat, &configuration.Browse}
}

// Merge returns configuration with every value set in override applied on top.
func (configuration ApplicationConfiguration) Merge(override ApplicationConfiguration) ApplicationConfiguration {
	merged := configuration
	overrides := override.sections()
	for index, section := range merged.sections() {
		section.overlay(*overrides[index])
	}
	return merged
}

func (section *CommandConfiguration) overlay(override CommandConfiguration) {
	overlayString(&section.Format, override.Format)
	overlayString(&section.Output, override.Output)
	overlayString(&section.Header, override.Header)
	overlayString(&section.Tokens.Model, override.Tokens.Model)
	overlayBool(&section.Clipboard, override.Clipboard)
	overlayBool(&section.Tokens.Enabled, override.Tokens.Enabled)
	overlayBool(&section.Paths.UseGitignore, override.Paths.UseGitignore)
	overlayBool(&section.Paths.UseIgnoreFile, override.Paths.UseIgnoreFile)
	overlayBool(&section.Paths.IncludeGit, override.Paths.IncludeGit)
	if len(override.Extensions) > 0 {
		section.Extensions = utils.NormalizeExtensions(override.Extensions)
	}
	if len(override.Paths.Exclude) > 0 {
		section.Paths.Exclude = utils.DeduplicatePatterns(override.Paths.Exclude)
	}
}

func overlayString(target *string, value string) {
	if value != "" {
		*target = value
	}
}

func overlayBool(target **bool, value *bool) {
	if value != nil {
		copied := *value
		*target = &copied
	}
}

// BoolValue dereferences value, returning fallback when it is unset.
func BoolValue(value *bool, fallback bool) bool {
	if value == nil {
		return fallback
	}
	return *value
}

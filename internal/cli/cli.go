// Package cli provides the command line interface.
package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/ctxpick/internal/config"
	"github.com/temirov/ctxpick/internal/services/clipboard"
	"github.com/temirov/ctxpick/internal/tokenizer"
	"github.com/temirov/ctxpick/internal/types"
	"github.com/temirov/ctxpick/internal/ui"
	"github.com/temirov/ctxpick/internal/utils"
)

const (
	exclusionFlagName    = "e"
	noGitignoreFlagName  = "no-gitignore"
	noIgnoreFlagName     = "no-ignore"
	includeGitFlagName   = "git"
	extensionFlagName    = "ext"
	formatFlagName       = "format"
	selectFlagName       = "select"
	allFlagName          = "all"
	outputFlagName       = "output"
	headerFlagName       = "header"
	summaryFlagName      = "summary"
	tokensFlagName       = "tokens"
	modelFlagName        = "model"
	globalFlagName       = "global"
	forceFlagName        = "force"
	copyFlagName         = "copy"
	configFlagName       = "config"
	logLevelFlagName     = "log-level"
	versionFlagName      = "version"
	versionTemplate      = "ctxpick version: %s\n"
	defaultPath          = "."
	standardOutputMarker = "-"
	rootUse              = "ctxpick"
	rootShortDescription = "pick source files from a project tree and concatenate them"
	rootLongDescription  = `ctxpick scans a project for JavaScript, TypeScript, and Vue sources.
It renders the filtered tree, concatenates selected files into one text blob, and offers an interactive browser for picking files.
Use --config to point at a configuration file, --log-level to adjust logging, and --version to print the application version.`

	treeUse                = types.CommandTree + " [path]"
	concatUse              = types.CommandConcat + " [path]"
	browseUse              = types.CommandBrowse + " [path]"
	initUse                = types.CommandInit
	treeAlias              = "t"
	concatAlias            = "c"
	browseAlias            = "b"
	treeShortDescription   = "display the filtered project tree (" + treeAlias + ")"
	concatShortDescription = "concatenate selected files (" + concatAlias + ")"
	browseShortDescription = "pick files interactively (" + browseAlias + ")"
	initShortDescription   = "write a default configuration file"
	treeLongDescription    = `List the eligible source files under a directory.
Directories without eligible files are omitted. Use --select to preview selection markers and --format to select raw, json, xml, or yaml output.`
	treeUsageExample = `  # Render the tree as YAML
  ctxpick tree --format yaml ./web

  # Preview which files a selection covers
  ctxpick tree --select src --select index.ts`
	concatLongDescription = `Concatenate the selected files into a single text blob.
Each file is written as a header line naming its path relative to the project root, the file content, and a separator line.
Selecting a directory selects every eligible file beneath it.`
	concatUsageExample = `  # Concatenate everything under src into a file
  ctxpick concat --select src --output bundle.txt

  # Copy all eligible files to the clipboard with token counts
  ctxpick concat --all --copy --tokens`
	browseLongDescription = `Open an interactive tree browser.
Space toggles the highlighted entry, c writes the selection to a file, y copies it to the clipboard, and r rescans the project.`
	initLongDescription = `Write a default config.yaml into the working directory or, with --global, into ~/.ctxpick.`

	exclusionFlagDescription        = "exclude path pattern"
	disableGitignoreFlagDescription = "do not use .gitignore"
	disableIgnoreFlagDescription    = "do not use .ignore"
	includeGitFlagDescription       = "include git directory"
	extensionFlagDescription        = "eligible file extensions"
	treeFormatFlagDescription       = "output format (raw, json, xml, yaml)"
	concatFormatFlagDescription     = "output format (raw, json)"
	selectFlagDescription           = "select a file or directory relative to the root"
	allFlagDescription              = "select every eligible file"
	outputFlagDescription           = "destination file, or - for standard output"
	headerFlagDescription           = "file header format; %s is replaced by the relative path"
	summaryFlagDescription          = "print a summary line to standard error"
	tokensFlagDescription           = "include token counts"
	modelFlagDescription            = "tokenizer model to use for token counting"
	globalFlagDescription           = "write the global configuration"
	forceFlagDescription            = "overwrite an existing configuration"
	copyFlagDescription             = "copy the output to the clipboard"
	configFlagDescription           = "configuration file path"
	logLevelFlagDescription         = "log level (debug, info, warn, error)"
	versionFlagDescription          = "display application version"

	invalidFormatMessage         = "invalid format value '%s'"
	errorAbsolutePathFormat      = "abs failed for '%s': %w"
	errorPathMissingFormat       = "path '%s' does not exist"
	errorStatFormat              = "stat failed for '%s': %w"
	errorNotDirectoryFormat      = "path '%s' is not a directory"
	errorLoadConfigurationFormat = "loading configuration: %w"
	errorCopyFormat              = "copying to clipboard: %w"
	concatenatedMessageFormat    = "Concatenated %d files into %s\n"
	copiedMessageFormat          = "Copied %d files to the clipboard\n"
	configurationWrittenFormat   = "Configuration written to %s\n"
)

// counterFactory creates a tokenizer counter for a model.
type counterFactory func(tokenizer.Config) (tokenizer.Counter, string, error)

// application carries the dependencies shared by all commands.
type application struct {
	logger           *zap.Logger
	fileSystem       afero.Fs
	stdout           io.Writer
	stderr           io.Writer
	workingDirectory string
	copier           clipboard.Copier
	newCounter       counterFactory
	runBrowser       func(ui.Options) error
	configuration    config.ApplicationConfiguration
}

func newApplication(logger *zap.Logger) *application {
	workingDirectory, workingDirectoryError := os.Getwd()
	if workingDirectoryError != nil {
		workingDirectory = defaultPath
	}
	var copier clipboard.Copier
	if clipboard.Available() {
		copier = clipboard.NewService()
	}
	return &application{
		logger:           utils.LoggerOrNop(logger),
		fileSystem:       afero.NewOsFs(),
		stdout:           os.Stdout,
		stderr:           os.Stderr,
		workingDirectory: workingDirectory,
		copier:           copier,
		newCounter:       tokenizer.NewCounter,
		runBrowser:       ui.Run,
	}
}

// Execute runs the ctxpick application with the process arguments.
func Execute(logger *zap.Logger) error {
	app := newApplication(logger)
	rootCommand := createRootCommand(app)
	rootCommand.SetArgs(normalizeToggleArguments(rootCommand, os.Args[1:]))
	return rootCommand.Execute()
}

// createRootCommand builds the root Cobra command.
func createRootCommand(app *application) *cobra.Command {
	var showVersion bool
	var configurationPath string
	var logLevel string

	rootCommand := &cobra.Command{
		Use:          rootUse,
		Short:        rootShortDescription,
		Long:         rootLongDescription,
		SilenceUsage: true,
		RunE: func(command *cobra.Command, arguments []string) error {
			return command.Help()
		},
		PersistentPreRunE: func(command *cobra.Command, arguments []string) error {
			if showVersion {
				fmt.Fprintf(app.stdout, versionTemplate, utils.GetApplicationVersion())
				os.Exit(0)
			}
			if command.Flags().Changed(logLevelFlagName) {
				logger, loggerError := utils.NewApplicationLoggerWithLevel(logLevel)
				if loggerError != nil {
					return loggerError
				}
				app.logger = logger
			}
			if command.Name() == types.CommandInit {
				return nil
			}
			configuration, configurationError := config.LoadApplicationConfiguration(config.LoadOptions{
				WorkingDirectory: app.workingDirectory,
				ExplicitFilePath: configurationPath,
			})
			if configurationError != nil {
				return fmt.Errorf(errorLoadConfigurationFormat, configurationError)
			}
			app.configuration = configuration
			return nil
		},
	}
	rootCommand.SetOut(app.stdout)
	rootCommand.SetErr(app.stderr)
	rootCommand.PersistentFlags().BoolVar(&showVersion, versionFlagName, false, versionFlagDescription)
	rootCommand.PersistentFlags().StringVar(&configurationPath, configFlagName, "", configFlagDescription)
	rootCommand.PersistentFlags().StringVar(&logLevel, logLevelFlagName, utils.DefaultLogLevel, logLevelFlagDescription)
	rootCommand.AddCommand(
		createTreeCommand(app),
		createConcatCommand(app),
		createBrowseCommand(app),
		createInitCommand(app),
	)
	rootCommand.InitDefaultHelpCmd()
	rootCommand.InitDefaultCompletionCmd()
	return rootCommand
}

// pathOptions stores configuration for path-related flags.
type pathOptions struct {
	exclusionPatterns []string
	disableGitignore  bool
	disableIgnoreFile bool
	includeGit        bool
	extensions        []string
}

// addPathFlags registers path-related flags on the command.
func addPathFlags(command *cobra.Command, options *pathOptions) {
	command.Flags().StringArrayVarP(&options.exclusionPatterns, exclusionFlagName, exclusionFlagName, nil, exclusionFlagDescription)
	registerToggleFlag(command.Flags(), &options.disableGitignore, noGitignoreFlagName, false, disableGitignoreFlagDescription)
	registerToggleFlag(command.Flags(), &options.disableIgnoreFile, noIgnoreFlagName, false, disableIgnoreFlagDescription)
	registerToggleFlag(command.Flags(), &options.includeGit, includeGitFlagName, false, includeGitFlagDescription)
	command.Flags().StringSliceVar(&options.extensions, extensionFlagName, nil, extensionFlagDescription)
}

// selectionOptions stores the flags that preselect files.
type selectionOptions struct {
	paths     []string
	selectAll bool
}

func addSelectionFlags(command *cobra.Command, options *selectionOptions) {
	command.Flags().StringArrayVar(&options.paths, selectFlagName, nil, selectFlagDescription)
	registerToggleFlag(command.Flags(), &options.selectAll, allFlagName, false, allFlagDescription)
}

type tokenOptions struct {
	enabled bool
	model   string
}

func addTokenFlags(command *cobra.Command, options *tokenOptions) {
	registerToggleFlag(command.Flags(), &options.enabled, tokensFlagName, false, tokensFlagDescription)
	command.Flags().StringVar(&options.model, modelFlagName, tokenizer.DefaultModel, modelFlagDescription)
}

// resolvedPaths holds path settings after flags are merged over configuration.
type resolvedPaths struct {
	ignore     config.IgnoreOptions
	extensions []string
}

func resolvePathOptions(command *cobra.Command, options pathOptions, configured config.CommandConfiguration) resolvedPaths {
	flags := command.Flags()
	exclusions := append(append([]string{}, configured.Paths.Exclude...), options.exclusionPatterns...)
	ignore := config.IgnoreOptions{
		ExclusionPatterns: utils.DeduplicatePatterns(exclusions),
		UseGitignore:      config.BoolValue(configured.Paths.UseGitignore, true),
		UseIgnoreFile:     config.BoolValue(configured.Paths.UseIgnoreFile, true),
		IncludeGit:        config.BoolValue(configured.Paths.IncludeGit, false),
	}
	if flags.Changed(noGitignoreFlagName) {
		ignore.UseGitignore = !options.disableGitignore
	}
	if flags.Changed(noIgnoreFlagName) {
		ignore.UseIgnoreFile = !options.disableIgnoreFile
	}
	if flags.Changed(includeGitFlagName) {
		ignore.IncludeGit = options.includeGit
	}

	extensions := utils.DefaultAllowedExtensions
	if len(configured.Extensions) > 0 {
		extensions = utils.NormalizeExtensions(configured.Extensions)
	}
	if flags.Changed(extensionFlagName) {
		extensions = utils.NormalizeExtensions(options.extensions)
	}
	return resolvedPaths{ignore: ignore, extensions: extensions}
}

func resolveTokenOptions(command *cobra.Command, options tokenOptions, configured config.CommandConfiguration) tokenOptions {
	resolved := tokenOptions{
		enabled: config.BoolValue(configured.Tokens.Enabled, false),
		model:   stringSetting(command, modelFlagName, options.model, configured.Tokens.Model, tokenizer.DefaultModel),
	}
	if command.Flags().Changed(tokensFlagName) {
		resolved.enabled = options.enabled
	}
	return resolved
}

// stringSetting prefers an explicitly set flag, then configuration, then the fallback.
func stringSetting(command *cobra.Command, flagName string, flagValue string, configured string, fallback string) string {
	if command.Flags().Changed(flagName) {
		return flagValue
	}
	if strings.TrimSpace(configured) != "" {
		return configured
	}
	return fallback
}

func boolSetting(command *cobra.Command, flagName string, flagValue bool, configured *bool, fallback bool) bool {
	if command.Flags().Changed(flagName) {
		return flagValue
	}
	return config.BoolValue(configured, fallback)
}

// resolveAndValidateRoot converts the optional path argument to an absolute directory path.
func (app *application) resolveAndValidateRoot(arguments []string) (types.ValidatedPath, error) {
	inputPath := defaultPath
	if len(arguments) > 0 && strings.TrimSpace(arguments[0]) != "" {
		inputPath = arguments[0]
	}
	absolutePath := inputPath
	if !filepath.IsAbs(absolutePath) {
		absolutePath = filepath.Join(app.workingDirectory, absolutePath)
	}
	absolutePath, absolutePathError := filepath.Abs(absolutePath)
	if absolutePathError != nil {
		return types.ValidatedPath{}, fmt.Errorf(errorAbsolutePathFormat, inputPath, absolutePathError)
	}
	info, fileStatusError := app.fileSystem.Stat(absolutePath)
	if fileStatusError != nil {
		if os.IsNotExist(fileStatusError) {
			return types.ValidatedPath{}, fmt.Errorf(errorPathMissingFormat, inputPath)
		}
		return types.ValidatedPath{}, fmt.Errorf(errorStatFormat, inputPath, fileStatusError)
	}
	if !info.IsDir() {
		return types.ValidatedPath{}, fmt.Errorf(errorNotDirectoryFormat, inputPath)
	}
	return types.ValidatedPath{AbsolutePath: absolutePath, IsDir: true}, nil
}

// resolveOutputPath maps an output setting to an absolute file path. Empty and "-" mean standard output.
func (app *application) resolveOutputPath(outputSetting string) (string, bool) {
	trimmed := strings.TrimSpace(outputSetting)
	if trimmed == "" || trimmed == standardOutputMarker {
		return "", false
	}
	if filepath.IsAbs(trimmed) {
		return filepath.Clean(trimmed), true
	}
	return filepath.Join(app.workingDirectory, trimmed), true
}

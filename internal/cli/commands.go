package cli

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/temirov/ctxpick/internal/commands"
	"github.com/temirov/ctxpick/internal/config"
	"github.com/temirov/ctxpick/internal/output"
	"github.com/temirov/ctxpick/internal/selection"
	"github.com/temirov/ctxpick/internal/services/clipboard"
	"github.com/temirov/ctxpick/internal/services/sink"
	"github.com/temirov/ctxpick/internal/tokenizer"
	"github.com/temirov/ctxpick/internal/types"
	"github.com/temirov/ctxpick/internal/ui"
)

// isSupportedTreeFormat reports whether the tree command can render format.
func isSupportedTreeFormat(format string) bool {
	switch format {
	case types.FormatRaw, types.FormatJSON, types.FormatXML, types.FormatYAML:
		return true
	default:
		return false
	}
}

func isSupportedConcatFormat(format string) bool {
	return format == types.FormatRaw || format == types.FormatJSON
}

// createTreeCommand returns the tree subcommand.
func createTreeCommand(app *application) *cobra.Command {
	var pathConfiguration pathOptions
	var selectionConfiguration selectionOptions
	var outputFormat string
	var copyEnabled bool

	treeCommand := &cobra.Command{
		Use:     treeUse,
		Aliases: []string{treeAlias},
		Short:   treeShortDescription,
		Long:    treeLongDescription,
		Example: treeUsageExample,
		Args:    cobra.MaximumNArgs(1),
		RunE: func(command *cobra.Command, arguments []string) error {
			configured := app.configuration.Tree
			format := strings.ToLower(stringSetting(command, formatFlagName, outputFormat, configured.Format, types.FormatRaw))
			if !isSupportedTreeFormat(format) {
				return fmt.Errorf(invalidFormatMessage, format)
			}
			root, rootError := app.resolveAndValidateRoot(arguments)
			if rootError != nil {
				return rootError
			}
			tree, treeError := app.openTree(root.AbsolutePath, resolvePathOptions(command, pathConfiguration, configured))
			if treeError != nil {
				return treeError
			}
			if selectionError := applySelectionOptions(tree, selectionConfiguration); selectionError != nil {
				return selectionError
			}
			rendered, renderError := output.RenderTree(format, root.AbsolutePath, commands.GetTreeData(tree))
			if renderError != nil {
				return renderError
			}
			fmt.Fprintln(app.stdout, strings.TrimRight(rendered, "\n"))
			if boolSetting(command, copyFlagName, copyEnabled, configured.Clipboard, false) {
				return app.copyText(rendered)
			}
			return nil
		},
	}

	addPathFlags(treeCommand, &pathConfiguration)
	addSelectionFlags(treeCommand, &selectionConfiguration)
	treeCommand.Flags().StringVar(&outputFormat, formatFlagName, types.FormatRaw, treeFormatFlagDescription)
	registerToggleFlag(treeCommand.Flags(), &copyEnabled, copyFlagName, false, copyFlagDescription)
	return treeCommand
}

// createConcatCommand returns the concat subcommand.
func createConcatCommand(app *application) *cobra.Command {
	var pathConfiguration pathOptions
	var selectionConfiguration selectionOptions
	var tokenConfiguration tokenOptions
	var outputFormat string
	var outputDestination string
	var headerFormat string
	var summaryEnabled bool
	var copyEnabled bool

	concatCommand := &cobra.Command{
		Use:     concatUse,
		Aliases: []string{concatAlias},
		Short:   concatShortDescription,
		Long:    concatLongDescription,
		Example: concatUsageExample,
		Args:    cobra.MaximumNArgs(1),
		RunE: func(command *cobra.Command, arguments []string) error {
			configured := app.configuration.Concat
			format := strings.ToLower(stringSetting(command, formatFlagName, outputFormat, configured.Format, types.FormatRaw))
			if !isSupportedConcatFormat(format) {
				return fmt.Errorf(invalidFormatMessage, format)
			}
			root, rootError := app.resolveAndValidateRoot(arguments)
			if rootError != nil {
				return rootError
			}
			tree, treeError := app.openTree(root.AbsolutePath, resolvePathOptions(command, pathConfiguration, configured))
			if treeError != nil {
				return treeError
			}
			if selectionError := applySelectionOptions(tree, selectionConfiguration); selectionError != nil {
				return selectionError
			}
			selectedPaths := tree.SelectedFiles()
			if len(selectedPaths) == 0 {
				return commands.ErrNoSelection
			}

			concatOptions := commands.ConcatOptions{
				Root:       root.AbsolutePath,
				Paths:      selectedPaths,
				FileSystem: app.fileSystem,
				Logger:     app.logger,
			}
			tokens := resolveTokenOptions(command, tokenConfiguration, configured)
			if tokens.enabled {
				counter, model, counterError := app.newCounter(tokenizer.Config{Model: tokens.model})
				if counterError != nil {
					return counterError
				}
				concatOptions.TokenCounter = counter
				concatOptions.TokenModel = model
			}

			header := stringSetting(command, headerFlagName, headerFormat, configured.Header, output.DefaultHeaderFormat)
			var buffer bytes.Buffer
			var renderer output.StreamRenderer
			if format == types.FormatJSON {
				renderer = output.NewJSONStreamRenderer(&buffer)
			} else {
				renderer = output.NewRawStreamRenderer(&buffer, app.stderr, header, summaryEnabled)
			}
			if concatError := commands.Concatenate(context.Background(), concatOptions, renderer); concatError != nil {
				return concatError
			}

			destination, writesFile := app.resolveOutputPath(stringSetting(command, outputFlagName, outputDestination, configured.Output, standardOutputMarker))
			if writesFile {
				if writeError := sink.WriteFile(app.fileSystem, destination, buffer.String()); writeError != nil {
					return writeError
				}
				fmt.Fprintf(app.stderr, concatenatedMessageFormat, len(selectedPaths), destination)
			} else if _, writeError := app.stdout.Write(buffer.Bytes()); writeError != nil {
				return writeError
			}

			if boolSetting(command, copyFlagName, copyEnabled, configured.Clipboard, false) {
				if copyError := app.copyText(buffer.String()); copyError != nil {
					return copyError
				}
				fmt.Fprintf(app.stderr, copiedMessageFormat, len(selectedPaths))
			}
			return nil
		},
	}

	addPathFlags(concatCommand, &pathConfiguration)
	addSelectionFlags(concatCommand, &selectionConfiguration)
	addTokenFlags(concatCommand, &tokenConfiguration)
	concatCommand.Flags().StringVar(&outputFormat, formatFlagName, types.FormatRaw, concatFormatFlagDescription)
	concatCommand.Flags().StringVarP(&outputDestination, outputFlagName, "o", standardOutputMarker, outputFlagDescription)
	concatCommand.Flags().StringVar(&headerFormat, headerFlagName, output.DefaultHeaderFormat, headerFlagDescription)
	registerToggleFlag(concatCommand.Flags(), &summaryEnabled, summaryFlagName, true, summaryFlagDescription)
	registerToggleFlag(concatCommand.Flags(), &copyEnabled, copyFlagName, false, copyFlagDescription)
	return concatCommand
}

// createBrowseCommand returns the interactive browse subcommand.
func createBrowseCommand(app *application) *cobra.Command {
	var pathConfiguration pathOptions
	var selectionConfiguration selectionOptions
	var tokenConfiguration tokenOptions
	var outputDestination string
	var headerFormat string

	browseCommand := &cobra.Command{
		Use:     browseUse,
		Aliases: []string{browseAlias},
		Short:   browseShortDescription,
		Long:    browseLongDescription,
		Args:    cobra.MaximumNArgs(1),
		RunE: func(command *cobra.Command, arguments []string) error {
			configured := app.configuration.Browse
			root, rootError := app.resolveAndValidateRoot(arguments)
			if rootError != nil {
				return rootError
			}
			tree, treeError := app.openTree(root.AbsolutePath, resolvePathOptions(command, pathConfiguration, configured))
			if treeError != nil {
				return treeError
			}
			if selectionError := applySelectionOptions(tree, selectionConfiguration); selectionError != nil {
				return selectionError
			}

			browserOptions := ui.Options{
				Tree:         tree,
				FileSystem:   app.fileSystem,
				HeaderFormat: stringSetting(command, headerFlagName, headerFormat, configured.Header, output.DefaultHeaderFormat),
				Destination:  stringSetting(command, outputFlagName, outputDestination, configured.Output, ""),
				Copier:       app.copier,
				Logger:       app.logger,
			}
			tokens := resolveTokenOptions(command, tokenConfiguration, configured)
			if tokens.enabled {
				counter, _, counterError := app.newCounter(tokenizer.Config{Model: tokens.model})
				if counterError != nil {
					return counterError
				}
				cache, cacheError := tokenizer.NewFileCache(counter, app.fileSystem, tokenizer.DefaultFileCacheSize)
				if cacheError != nil {
					return cacheError
				}
				browserOptions.TokenCache = cache
			}
			return app.runBrowser(browserOptions)
		},
	}

	addPathFlags(browseCommand, &pathConfiguration)
	addSelectionFlags(browseCommand, &selectionConfiguration)
	addTokenFlags(browseCommand, &tokenConfiguration)
	browseCommand.Flags().StringVarP(&outputDestination, outputFlagName, "o", "", outputFlagDescription)
	browseCommand.Flags().StringVar(&headerFormat, headerFlagName, output.DefaultHeaderFormat, headerFlagDescription)
	return browseCommand
}

// createInitCommand returns the configuration bootstrap subcommand.
func createInitCommand(app *application) *cobra.Command {
	var globalTarget bool
	var forceOverwrite bool

	initCommand := &cobra.Command{
		Use:   initUse,
		Short: initShortDescription,
		Long:  initLongDescription,
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, arguments []string) error {
			target := config.InitTargetLocal
			if globalTarget {
				target = config.InitTargetGlobal
			}
			destination, initError := config.InitializeConfiguration(config.InitOptions{
				Target:           target,
				Force:            forceOverwrite,
				WorkingDirectory: app.workingDirectory,
			})
			if initError != nil {
				return initError
			}
			fmt.Fprintf(app.stdout, configurationWrittenFormat, destination)
			return nil
		},
	}

	registerToggleFlag(initCommand.Flags(), &globalTarget, globalFlagName, false, globalFlagDescription)
	registerToggleFlag(initCommand.Flags(), &forceOverwrite, forceFlagName, false, forceFlagDescription)
	return initCommand
}

// openTree scans root with the resolved extensions. Ignore files are reread on every refresh.
func (app *application) openTree(root string, paths resolvedPaths) (*selection.Tree, error) {
	ignoreOptions := paths.ignore
	ignoreOptions.Logger = app.logger
	builder := commands.NewTreeBuilder(app.logger)
	builder.FileSystem = app.fileSystem
	builder.AllowedExtensions = paths.extensions
	builder.LoadIgnorePatterns = ignoreOptions.Patterns
	return selection.Open(root, builder)
}

func applySelectionOptions(tree *selection.Tree, options selectionOptions) error {
	if options.selectAll {
		tree.SetAll(true)
	}
	return commands.ApplySelections(tree, options.paths)
}

func (app *application) copyText(text string) error {
	if app.copier == nil {
		return fmt.Errorf(errorCopyFormat, clipboard.ErrUnavailable)
	}
	if copyError := app.copier.Copy(text); copyError != nil {
		return fmt.Errorf(errorCopyFormat, copyError)
	}
	return nil
}

// Package cli provides the command line interface.
package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/temirov/ctxpack/internal/config"
	"github.com/temirov/ctxpack/internal/minify"
	"github.com/temirov/ctxpack/internal/pipeline"
	"github.com/temirov/ctxpack/internal/services/clipboard"
	"github.com/temirov/ctxpack/internal/tokenizer"
	"github.com/temirov/ctxpack/internal/utils"
)

const (
	outputFlagName    = "output"
	outputShorthand   = "o"
	excludeFlagName   = "exclude"
	excludeShorthand  = "e"
	minifyFlagName    = "minify"
	minifyShorthand   = "m"
	tokensFlagName    = "tokens"
	modelFlagName     = "model"
	workersFlagName   = "workers"
	clipboardFlagName = "clipboard"
	configFlagName    = "config"
	quietFlagName     = "quiet"
	quietShorthand    = "q"
	verboseFlagName   = "verbose"
	verboseShorthand  = "v"
	versionFlagName   = "version"

	defaultPath           = "."
	defaultOutputPath     = "project_context.txt"
	standardOutputPath    = "-"
	outputFilePermissions = 0o644

	rootUse              = utils.ApplicationName + " [directory]"
	rootShortDescription = "pack a source tree into one LLM context document"
	rootLongDescription  = `ctxpack walks a directory, skips paths excluded by built-in rules,
.gitignore files and --exclude patterns, and writes a single document holding
the directory structure and the content of every supported source file.
Use --minify to shrink JSON, CSS, SCSS, JavaScript, TypeScript, HTML, Svelte
and Markdown content and to append reduction statistics.`
	rootUsageExample = `  # Pack the current directory into project_context.txt
  ctxpack

  # Minify content, count tokens and print the document
  ctxpack --minify --tokens -o - ./web

  # Exclude generated code and fixtures
  ctxpack -e 'dist/' -e '*.snap' .`

	outputFlagDescription    = "output file path, - for standard output"
	excludeFlagDescription   = "exclude path pattern in .gitignore syntax (repeatable)"
	minifyFlagDescription    = "minify content and include reduction statistics"
	tokensFlagDescription    = "include token counts"
	modelFlagDescription     = "tokenizer model to use for token counting"
	workersFlagDescription   = "number of files processed in parallel"
	clipboardFlagDescription = "copy the document to the clipboard"
	configFlagDescription    = "configuration file replacing ./" + utils.ConfigFileName
	quietFlagDescription     = "disable the progress bar and summary"
	verboseFlagDescription   = "enable debug logging"
	versionFlagDescription   = "display application version"

	versionTemplate          = utils.ApplicationName + " version: %s\n"
	summaryTemplate          = "Wrote %s (%s, %d files)\n"
	summaryTokensTemplate    = "Wrote %s (%s, %d files, %d tokens, model: %s)\n"
	standardOutputLabel      = "standard output"
	loadConfigurationFormat  = "load configuration: %w"
	createLoggerFormat       = utils.LoggerInitializationFailedMessageFormat
	createTokenizerFormat    = "create tokenizer: %w"
	writeOutputFormat        = "write output %s: %w"
	workingDirectoryFormat   = "unable to determine working directory: %w"
	clipboardFailedMessage   = "clipboard copy failed"
	diagnosticsSummaryFormat = "completed with %d diagnostics"
)

// dependencies are the process level collaborators of a command run.
type dependencies struct {
	stdout           io.Writer
	stderr           io.Writer
	workingDirectory string
	copier           clipboard.Copier
	newLogger        func(verbose bool) (*zap.Logger, error)
	isTerminal       func() bool
}

func defaultDependencies() dependencies {
	return dependencies{
		stdout:     os.Stdout,
		stderr:     os.Stderr,
		copier:     clipboard.NewService(),
		newLogger:  utils.NewApplicationLogger,
		isTerminal: func() bool { return term.IsTerminal(int(os.Stderr.Fd())) },
	}
}

// Execute runs the ctxpack application.
func Execute() error {
	return createRootCommand(defaultDependencies()).Execute()
}

// packOptions stores flag values of the root command.
type packOptions struct {
	outputPath      string
	excludePatterns []string
	minify          bool
	tokens          bool
	model           string
	workers         int
	clipboard       bool
	configPath      string
	quiet           bool
	verbose         bool
	showVersion     bool
}

// createRootCommand builds the root Cobra command.
func createRootCommand(runtimeDependencies dependencies) *cobra.Command {
	options := packOptions{
		outputPath: defaultOutputPath,
		model:      tokenizer.DefaultModel,
		workers:    runtime.NumCPU(),
	}

	rootCommand := &cobra.Command{
		Use:          rootUse,
		Short:        rootShortDescription,
		Long:         rootLongDescription,
		Example:      rootUsageExample,
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		RunE: func(command *cobra.Command, arguments []string) error {
			if options.showVersion {
				fmt.Fprintf(runtimeDependencies.stdout, versionTemplate, utils.ApplicationVersion())
				return nil
			}
			root := defaultPath
			if len(arguments) == 1 {
				root = arguments[0]
			}
			return runPack(command, root, options, runtimeDependencies)
		},
	}

	flags := rootCommand.Flags()
	flags.StringVarP(&options.outputPath, outputFlagName, outputShorthand, defaultOutputPath, outputFlagDescription)
	flags.StringArrayVarP(&options.excludePatterns, excludeFlagName, excludeShorthand, nil, excludeFlagDescription)
	flags.BoolVarP(&options.minify, minifyFlagName, minifyShorthand, false, minifyFlagDescription)
	flags.BoolVar(&options.tokens, tokensFlagName, false, tokensFlagDescription)
	flags.StringVar(&options.model, modelFlagName, tokenizer.DefaultModel, modelFlagDescription)
	flags.IntVar(&options.workers, workersFlagName, runtime.NumCPU(), workersFlagDescription)
	flags.BoolVar(&options.clipboard, clipboardFlagName, false, clipboardFlagDescription)
	flags.StringVar(&options.configPath, configFlagName, "", configFlagDescription)
	flags.BoolVarP(&options.quiet, quietFlagName, quietShorthand, false, quietFlagDescription)
	flags.BoolVarP(&options.verbose, verboseFlagName, verboseShorthand, false, verboseFlagDescription)
	flags.BoolVar(&options.showVersion, versionFlagName, false, versionFlagDescription)

	rootCommand.SetOut(runtimeDependencies.stdout)
	rootCommand.SetErr(runtimeDependencies.stderr)
	rootCommand.AddCommand(createInitCommand(runtimeDependencies))
	rootCommand.InitDefaultHelpCmd()
	rootCommand.InitDefaultCompletionCmd()
	return rootCommand
}

// resolvedSettings are the flag values after configuration files were applied.
type resolvedSettings struct {
	outputPath      string
	excludePatterns []string
	minify          bool
	tokens          bool
	model           string
	workers         int
	clipboard       bool
	quiet           bool
}

// resolveSettings applies configuration values for every flag the user did not set.
func resolveSettings(command *cobra.Command, options packOptions, configuration config.ApplicationConfiguration) resolvedSettings {
	flags := command.Flags()
	settings := resolvedSettings{
		outputPath: options.outputPath,
		minify:     options.minify,
		tokens:     options.tokens,
		model:      options.model,
		workers:    options.workers,
		clipboard:  options.clipboard,
		quiet:      options.quiet,
	}
	if !flags.Changed(outputFlagName) && configuration.Output != "" {
		settings.outputPath = configuration.Output
	}
	if !flags.Changed(minifyFlagName) {
		settings.minify = config.BoolValue(configuration.Minify, settings.minify)
	}
	if !flags.Changed(tokensFlagName) {
		settings.tokens = config.BoolValue(configuration.Tokens.Enabled, settings.tokens)
	}
	if !flags.Changed(modelFlagName) && configuration.Tokens.Model != "" {
		settings.model = configuration.Tokens.Model
	}
	if !flags.Changed(workersFlagName) {
		settings.workers = config.IntValue(configuration.Workers, settings.workers)
	}
	if !flags.Changed(clipboardFlagName) {
		settings.clipboard = config.BoolValue(configuration.Clipboard, settings.clipboard)
	}
	if !flags.Changed(quietFlagName) {
		settings.quiet = config.BoolValue(configuration.Quiet, settings.quiet)
	}
	combined := append(append([]string{}, configuration.Paths.Exclude...), options.excludePatterns...)
	settings.excludePatterns = utils.DeduplicatePatterns(combined)
	return settings
}

func runPack(command *cobra.Command, root string, options packOptions, runtimeDependencies dependencies) error {
	workingDirectory := runtimeDependencies.workingDirectory
	if workingDirectory == "" {
		currentDirectory, err := os.Getwd()
		if err != nil {
			return fmt.Errorf(workingDirectoryFormat, err)
		}
		workingDirectory = currentDirectory
	}
	configuration, configurationError := config.LoadApplicationConfiguration(config.LoadOptions{
		WorkingDirectory: workingDirectory,
		ExplicitFilePath: options.configPath,
	})
	if configurationError != nil {
		return fmt.Errorf(loadConfigurationFormat, configurationError)
	}
	settings := resolveSettings(command, options, configuration)

	logger, loggerError := runtimeDependencies.newLogger(options.verbose)
	if loggerError != nil {
		return fmt.Errorf(createLoggerFormat, loggerError)
	}
	defer func() { _ = logger.Sync() }()

	if !filepath.IsAbs(root) {
		root = filepath.Join(workingDirectory, root)
	}
	excludePatterns := settings.excludePatterns
	toStandardOutput := settings.outputPath == standardOutputPath
	var outputPath string
	if !toStandardOutput {
		outputPath = settings.outputPath
		if !filepath.IsAbs(outputPath) {
			outputPath = filepath.Join(workingDirectory, outputPath)
		}
		if pattern, inside := outputExclusionPattern(root, outputPath); inside {
			excludePatterns = append(excludePatterns, pattern)
		}
	}

	pipelineOptions := pipeline.Options{
		Root:            root,
		ExcludePatterns: excludePatterns,
		Minify:          settings.minify,
		Workers:         settings.workers,
		Verifier:        minify.NewSyntaxVerifier(),
	}
	tokenModel := ""
	if settings.tokens {
		counter, model, counterError := tokenizer.NewCounter(tokenizer.Config{Model: settings.model})
		if counterError != nil {
			return fmt.Errorf(createTokenizerFormat, counterError)
		}
		pipelineOptions.TokenCounter = counter
		tokenModel = model
	}
	if !settings.quiet && runtimeDependencies.isTerminal() {
		pipelineOptions.Progress = newProgressReporter(runtimeDependencies.stderr)
	}
	logger.Debug("starting run",
		zap.String("root", root),
		zap.Strings("exclude", excludePatterns),
		zap.Bool("minify", settings.minify),
		zap.Int("workers", settings.workers))

	result, runError := pipeline.Run(command.Context(), pipelineOptions, logger)
	if runError != nil {
		return runError
	}
	if len(result.Diagnostics) > 0 {
		logger.Debug(fmt.Sprintf(diagnosticsSummaryFormat, len(result.Diagnostics)))
	}

	destinationLabel := standardOutputLabel
	if toStandardOutput {
		if _, err := io.WriteString(runtimeDependencies.stdout, result.Document); err != nil {
			return fmt.Errorf(writeOutputFormat, standardOutputLabel, err)
		}
	} else {
		if err := os.WriteFile(outputPath, []byte(result.Document), outputFilePermissions); err != nil {
			return fmt.Errorf(writeOutputFormat, outputPath, err)
		}
		destinationLabel = outputPath
	}

	if settings.clipboard {
		if err := runtimeDependencies.copier.Copy(result.Document); err != nil {
			logger.Warn(clipboardFailedMessage, zap.Error(err))
		}
	}

	if !settings.quiet && !toStandardOutput {
		documentSize := utils.FormatFileSize(int64(len(result.Document)))
		if settings.tokens {
			fmt.Fprintf(runtimeDependencies.stderr, summaryTokensTemplate, destinationLabel, documentSize, result.Statistics.TotalFiles, result.Statistics.TotalTokens, tokenModel)
		} else {
			fmt.Fprintf(runtimeDependencies.stderr, summaryTemplate, destinationLabel, documentSize, result.Statistics.TotalFiles)
		}
	}
	return nil
}

// outputExclusionPattern returns an anchored pattern for an output file that
// lives inside root, so later runs do not pack their own previous output.
func outputExclusionPattern(root string, outputPath string) (string, bool) {
	absoluteRoot, rootError := filepath.Abs(root)
	if rootError != nil {
		return "", false
	}
	relativePath, relativeError := filepath.Rel(absoluteRoot, outputPath)
	if relativeError != nil {
		return "", false
	}
	relativePath = filepath.ToSlash(relativePath)
	if relativePath == "." || relativePath == ".." || strings.HasPrefix(relativePath, "../") {
		return "", false
	}
	return "/" + escapePattern(relativePath), true
}

func escapePattern(relativePath string) string {
	var builder strings.Builder
	for _, character := range relativePath {
		switch character {
		case '*', '?', '[', '\\':
			builder.WriteRune('\\')
		}
		builder.WriteRune(character)
	}
	return builder.String()
}

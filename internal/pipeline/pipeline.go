// Package pipeline runs one end-to-end pass: walk the root, classify and read
// every included file, optionally minify and count it, then assemble the
// document in traversal order.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/temirov/ctxpack/internal/assembler"
	"github.com/temirov/ctxpack/internal/classify"
	"github.com/temirov/ctxpack/internal/ignore"
	"github.com/temirov/ctxpack/internal/minify"
	"github.com/temirov/ctxpack/internal/tokenizer"
	"github.com/temirov/ctxpack/internal/types"
	"github.com/temirov/ctxpack/internal/utils"
	"github.com/temirov/ctxpack/internal/walker"
)

// ErrInvalidRoot is returned before traversal when the root directory is
// missing, unreadable or not a directory.
var ErrInvalidRoot = errors.New("invalid root directory")

const (
	binaryContentMessage   = "binary content"
	diagnosticLogMessage   = "file diagnostic"
	tokenCountFailedLog    = "token counting failed"
	invalidRootErrorFormat = "%w %s: %v"
	notDirectoryMessage    = "not a directory"
)

// Progress observes per-file processing. Advance may be called from several
// goroutines at once.
type Progress interface {
	Start(total int)
	Advance(relativePath string)
	Finish()
}

// Options configure a run.
type Options struct {
	Root            string
	ExcludePatterns []string
	Minify          bool
	// Workers bounds parallel file processing; zero or less uses runtime.NumCPU.
	Workers int
	// TokenCounter enables token counting when non-nil.
	TokenCounter tokenizer.Counter
	// Defaults replaces the built-in exclusion rules when non-nil.
	Defaults []types.ExclusionRule
	Progress Progress
	// Verifier checks minified scripts; nil disables the check.
	Verifier minify.Verifier
}

// Result is the outcome of a successful run.
type Result struct {
	Document    string
	Statistics  types.Statistics
	Entries     []types.FileEntry
	Paths       []types.WalkEntry
	Diagnostics []types.Diagnostic
}

type fileOutcome struct {
	entry       *types.FileEntry
	diagnostics []types.Diagnostic
}

// Run executes the pipeline. Only an invalid root or a cancelled context
// produces an error; every file level problem becomes a diagnostic.
func Run(ctx context.Context, options Options, logger *zap.Logger) (Result, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	root, rootError := validateRoot(options.Root)
	if rootError != nil {
		return Result{}, rootError
	}

	// The engine and the walker log their own warnings.
	var diagnostics []types.Diagnostic
	collect := func(diagnostic types.Diagnostic) {
		diagnostics = append(diagnostics, diagnostic)
	}

	defaults := options.Defaults
	if defaults == nil {
		defaults = ignore.DefaultRules()
	}
	engine := ignore.New(defaults, options.ExcludePatterns,
		ignore.WithLogger(logger),
		ignore.WithPatternErrorHandler(collect))

	pathWalker := walker.New(root, engine,
		walker.WithLogger(logger),
		walker.WithErrorHandler(func(path string, err error) {
			collect(types.Diagnostic{Kind: types.DiagnosticReadError, Path: path, Message: err.Error()})
		}))

	var paths []types.WalkEntry
	var files []types.WalkEntry
	for entry := range pathWalker.Walk() {
		if err := ctx.Err(); err != nil {
			return Result{}, fmt.Errorf("walk %s: %w", root, err)
		}
		paths = append(paths, entry)
		if entry.IsDirectory || entry.IsSymlink {
			continue
		}
		if classify.IsSupported(classify.Classify(entry.RelativePath)) {
			files = append(files, entry)
		}
	}
	logger.Debug("walk finished", zap.Int("paths", len(paths)), zap.Int("candidates", len(files)))

	outcomes, processError := processFiles(ctx, files, options, logger)
	if processError != nil {
		return Result{}, processError
	}

	documentAssembler := assembler.New(filepath.Base(root), options.Minify)
	for _, path := range paths {
		documentAssembler.AddPath(path)
	}
	for _, outcome := range outcomes {
		for _, diagnostic := range outcome.diagnostics {
			logger.Warn(diagnosticLogMessage,
				zap.String("kind", diagnostic.Kind.String()),
				zap.String("path", diagnostic.Path),
				zap.String("message", diagnostic.Message))
			collect(diagnostic)
		}
		if outcome.entry != nil {
			documentAssembler.AddEntry(*outcome.entry)
		}
	}

	return Result{
		Document:    documentAssembler.Document(),
		Statistics:  documentAssembler.Statistics(),
		Entries:     documentAssembler.Entries(),
		Paths:       paths,
		Diagnostics: diagnostics,
	}, nil
}

func validateRoot(root string) (string, error) {
	absoluteRoot, absoluteError := filepath.Abs(root)
	if absoluteError != nil {
		return "", fmt.Errorf(invalidRootErrorFormat, ErrInvalidRoot, root, absoluteError)
	}
	info, statError := os.Stat(absoluteRoot)
	if statError != nil {
		return "", fmt.Errorf(invalidRootErrorFormat, ErrInvalidRoot, root, statError)
	}
	if !info.IsDir() {
		return "", fmt.Errorf(invalidRootErrorFormat, ErrInvalidRoot, root, notDirectoryMessage)
	}
	directory, openError := os.Open(absoluteRoot)
	if openError != nil {
		return "", fmt.Errorf(invalidRootErrorFormat, ErrInvalidRoot, root, openError)
	}
	defer directory.Close()
	if _, readError := directory.Readdirnames(1); readError != nil && !errors.Is(readError, io.EOF) {
		return "", fmt.Errorf(invalidRootErrorFormat, ErrInvalidRoot, root, readError)
	}
	return absoluteRoot, nil
}

func processFiles(ctx context.Context, files []types.WalkEntry, options Options, logger *zap.Logger) ([]fileOutcome, error) {
	workers := options.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	minifierOptions := []minify.Option{minify.WithLogger(logger)}
	if options.Verifier != nil {
		minifierOptions = append(minifierOptions, minify.WithVerifier(options.Verifier))
	}
	minifier := minify.New(minifierOptions...)

	if options.Progress != nil {
		options.Progress.Start(len(files))
		defer options.Progress.Finish()
	}

	outcomes := make([]fileOutcome, len(files))
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(workers)
	for fileIndex, file := range files {
		group.Go(func() error {
			if err := groupCtx.Err(); err != nil {
				return err
			}
			outcomes[fileIndex] = processFile(file, options, minifier, logger)
			if options.Progress != nil {
				options.Progress.Advance(file.RelativePath)
			}
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, fmt.Errorf("process files: %w", err)
	}
	return outcomes, nil
}

func processFile(file types.WalkEntry, options Options, minifier *minify.Minifier, logger *zap.Logger) fileOutcome {
	data, readError := os.ReadFile(file.AbsolutePath)
	if readError != nil {
		return fileOutcome{diagnostics: []types.Diagnostic{{
			Kind:    types.DiagnosticReadError,
			Path:    file.RelativePath,
			Message: readError.Error(),
		}}}
	}
	contentType := classify.ClassifyContent(file.RelativePath, utils.SniffPrefix(data))
	if !classify.IsSupported(contentType) {
		return fileOutcome{diagnostics: []types.Diagnostic{{
			Kind:    types.DiagnosticReadError,
			Path:    file.RelativePath,
			Message: binaryContentMessage,
		}}}
	}

	content := string(data)
	entry := types.FileEntry{
		RelativePath: file.RelativePath,
		Type:         contentType,
		SizeBefore:   len(data),
		SizeAfter:    len(data),
		Content:      content,
	}
	var outcome fileOutcome
	if options.Minify {
		minified, minifyError := minifier.Minify(content, contentType)
		if minifyError != nil {
			outcome.diagnostics = append(outcome.diagnostics, types.Diagnostic{
				Kind:    types.DiagnosticParseError,
				Path:    file.RelativePath,
				Message: minifyError.Error(),
			})
		}
		entry.Content = minified
		entry.SizeAfter = len(minified)
	}
	if options.TokenCounter != nil {
		tokens, countError := tokenizer.Count(options.TokenCounter, file.RelativePath, entry.Content)
		if countError != nil {
			logger.Warn(tokenCountFailedLog, zap.String("path", file.RelativePath), zap.Error(countError))
		}
		entry.Tokens = tokens
	}
	outcome.entry = &entry
	return outcome
}

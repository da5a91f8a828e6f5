// Package walker enumerates the files and directories under a root directory in
// a deterministic depth-first order, skipping excluded paths.
package walker

import (
	"io/fs"
	"iter"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/temirov/ctxpack/internal/ignore"
	"github.com/temirov/ctxpack/internal/types"
	"github.com/temirov/ctxpack/internal/utils"
)

// ErrorHandler receives paths that could not be read during traversal.
type ErrorHandler func(path string, err error)

// Option customizes a Walker.
type Option func(walker *Walker)

// WithLogger attaches a logger for traversal warnings and debug tracing.
func WithLogger(logger *zap.Logger) Option {
	return func(walker *Walker) {
		if logger != nil {
			walker.logger = logger
		}
	}
}

// WithErrorHandler registers a callback for unreadable directories and ignore files.
func WithErrorHandler(handler ErrorHandler) Option {
	return func(walker *Walker) {
		walker.onError = handler
	}
}

// Walker traverses a directory tree. Children are visited in sorted name order,
// excluded directories are pruned and symbolic links are reported but never followed.
type Walker struct {
	root    string
	engine  *ignore.Engine
	logger  *zap.Logger
	onError ErrorHandler
}

// New constructs a Walker rooted at root using engine for exclusion decisions.
func New(root string, engine *ignore.Engine, options ...Option) *Walker {
	walker := &Walker{
		root:   filepath.Clean(root),
		engine: engine,
		logger: zap.NewNop(),
	}
	if walker.engine == nil {
		walker.engine = ignore.Compile(nil)
	}
	for _, option := range options {
		option(walker)
	}
	return walker
}

// Walk returns a lazy, single-pass sequence of every included path below the
// root. The root itself is not yielded.
func (walker *Walker) Walk() iter.Seq[types.WalkEntry] {
	return func(yield func(types.WalkEntry) bool) {
		rootEngine := walker.scopeEngine(walker.engine, walker.root, "")
		walker.walkDirectory(walker.root, "", rootEngine, yield)
	}
}

func (walker *Walker) walkDirectory(absoluteDirectory string, relativeDirectory string, engine *ignore.Engine, yield func(types.WalkEntry) bool) bool {
	directoryEntries, readError := os.ReadDir(absoluteDirectory)
	if readError != nil {
		walker.report(absoluteDirectory, readError)
		return true
	}
	for _, directoryEntry := range directoryEntries {
		relativePath := utils.JoinRelativePath(relativeDirectory, directoryEntry.Name())
		absolutePath := filepath.Join(absoluteDirectory, directoryEntry.Name())
		isSymlink := directoryEntry.Type()&fs.ModeSymlink != 0
		isDirectory := directoryEntry.IsDir() && !isSymlink

		if engine.ShouldExclude(relativePath, isDirectory) {
			walker.logger.Debug("excluded", zap.String("path", relativePath), zap.Bool("directory", isDirectory))
			continue
		}
		walkEntry := types.WalkEntry{
			RelativePath: relativePath,
			AbsolutePath: absolutePath,
			IsDirectory:  isDirectory,
			IsSymlink:    isSymlink,
		}
		if !yield(walkEntry) {
			return false
		}
		if !isDirectory {
			continue
		}
		childEngine := walker.scopeEngine(engine, absolutePath, relativePath)
		if !walker.walkDirectory(absolutePath, relativePath, childEngine, yield) {
			return false
		}
	}
	return true
}

// scopeEngine extends engine with the .gitignore found directly in the directory.
func (walker *Walker) scopeEngine(engine *ignore.Engine, absoluteDirectory string, relativeDirectory string) *ignore.Engine {
	gitIgnorePath := filepath.Join(absoluteDirectory, utils.GitIgnoreFileName)
	fileInformation, statError := os.Lstat(gitIgnorePath)
	if statError != nil || !fileInformation.Mode().IsRegular() {
		return engine
	}
	lines, readError := ignore.ReadFile(gitIgnorePath)
	if readError != nil {
		walker.report(gitIgnorePath, readError)
		return engine
	}
	return engine.WithGitIgnore(relativeDirectory, lines)
}

func (walker *Walker) report(path string, err error) {
	walker.logger.Warn("skipping unreadable path", zap.String("path", path), zap.Error(err))
	if walker.onError != nil {
		walker.onError(path, err)
	}
}

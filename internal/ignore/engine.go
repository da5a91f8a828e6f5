package ignore

import (
	"path"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/ctxpack/internal/types"
	"github.com/temirov/ctxpack/internal/utils"
)

// PatternErrorHandler receives patterns that failed to compile.
type PatternErrorHandler func(diagnostic types.Diagnostic)

// Option customizes an Engine.
type Option func(engine *Engine)

// WithLogger attaches a logger used for pattern warnings and debug tracing.
func WithLogger(logger *zap.Logger) Option {
	return func(engine *Engine) {
		if logger != nil {
			engine.logger = logger
		}
	}
}

// WithPatternErrorHandler registers a callback for patterns that cannot be compiled.
func WithPatternErrorHandler(handler PatternErrorHandler) Option {
	return func(engine *Engine) {
		engine.onPatternError = handler
	}
}

type compiledRule struct {
	rule     types.ExclusionRule
	anchored bool
	matcher  matcher
}

// matches reports whether the rule applies to a slash-separated path relative to the root.
func (compiled compiledRule) matches(relativePath string, isDirectory bool) bool {
	if compiled.rule.IsDirectoryOnly && !isDirectory {
		return false
	}
	candidate := relativePath
	if baseDirectory := compiled.rule.BaseDirectory; baseDirectory != "" {
		if !strings.HasPrefix(relativePath, baseDirectory+"/") {
			return false
		}
		candidate = relativePath[len(baseDirectory)+1:]
	}
	if !compiled.anchored {
		candidate = path.Base(candidate)
	}
	return compiled.matcher.Match(candidate)
}

// Engine is an immutable, ordered set of compiled exclusion rules. Rules are
// layered as defaults, then .gitignore rules from root to leaf, then user
// patterns, and the last matching rule decides.
type Engine struct {
	defaultRules   []compiledRule
	gitIgnoreRules []compiledRule
	userRules      []compiledRule
	logger         *zap.Logger
	onPatternError PatternErrorHandler
}

// New compiles the default rules followed by user patterns written in gitignore syntax.
func New(defaultRules []types.ExclusionRule, userPatterns []string, options ...Option) *Engine {
	rules := append([]types.ExclusionRule{}, defaultRules...)
	rules = append(rules, ParseLines(userPatterns, types.RuleOriginUserFlag, "")...)
	return Compile(rules, options...)
}

// Compile builds an Engine from already parsed rules. Rules are grouped by origin
// while keeping their relative order inside each group.
func Compile(rules []types.ExclusionRule, options ...Option) *Engine {
	engine := &Engine{logger: zap.NewNop()}
	for _, option := range options {
		option(engine)
	}
	for _, rule := range rules {
		compiled, ok := engine.compile(rule)
		if !ok {
			continue
		}
		switch rule.Origin {
		case types.RuleOriginGitIgnore:
			engine.gitIgnoreRules = append(engine.gitIgnoreRules, compiled)
		case types.RuleOriginUserFlag:
			engine.userRules = append(engine.userRules, compiled)
		default:
			engine.defaultRules = append(engine.defaultRules, compiled)
		}
	}
	return engine
}

// WithGitIgnore returns a new Engine that additionally applies the lines of a
// .gitignore file located in baseDirectory. The receiver is left unchanged.
func (engine *Engine) WithGitIgnore(baseDirectory string, lines []string) *Engine {
	normalizedBase := utils.NormalizeRelativePath(baseDirectory)
	parsedRules := ParseLines(lines, types.RuleOriginGitIgnore, normalizedBase)
	if len(parsedRules) == 0 {
		return engine
	}
	extended := &Engine{
		defaultRules:   engine.defaultRules,
		gitIgnoreRules: append([]compiledRule{}, engine.gitIgnoreRules...),
		userRules:      engine.userRules,
		logger:         engine.logger,
		onPatternError: engine.onPatternError,
	}
	for _, rule := range parsedRules {
		if compiled, ok := extended.compile(rule); ok {
			extended.gitIgnoreRules = append(extended.gitIgnoreRules, compiled)
		}
	}
	engine.logger.Debug("loaded gitignore rules",
		zap.String("directory", normalizedBase),
		zap.Int("rules", len(parsedRules)))
	return extended
}

// RuleCount reports the number of compiled rules across every layer.
func (engine *Engine) RuleCount() int {
	return len(engine.defaultRules) + len(engine.gitIgnoreRules) + len(engine.userRules)
}

// ShouldExclude reports whether the path relative to the root is excluded.
// A path below an excluded directory is excluded regardless of later negations.
func (engine *Engine) ShouldExclude(relativePath string, isDirectory bool) bool {
	normalizedPath := utils.NormalizeRelativePath(relativePath)
	if normalizedPath == "" {
		return false
	}
	for _, parentDirectory := range utils.ParentDirectories(normalizedPath) {
		if engine.decide(parentDirectory, true) {
			return true
		}
	}
	return engine.decide(normalizedPath, isDirectory)
}

func (engine *Engine) decide(relativePath string, isDirectory bool) bool {
	excluded := false
	for _, layer := range [][]compiledRule{engine.defaultRules, engine.gitIgnoreRules, engine.userRules} {
		for _, compiled := range layer {
			if compiled.matches(relativePath, isDirectory) {
				excluded = !compiled.rule.IsNegation
			}
		}
	}
	return excluded
}

func (engine *Engine) compile(rule types.ExclusionRule) (compiledRule, bool) {
	anchored := isAnchored(rule)
	body := strings.TrimPrefix(rule.Pattern, anchorPrefix)
	compiledMatcher, compileError := compileMatcher(body)
	if compileError != nil {
		engine.logger.Warn("skipping exclusion pattern",
			zap.String("pattern", rule.Pattern),
			zap.String("origin", rule.Origin.String()),
			zap.Error(compileError))
		if engine.onPatternError != nil {
			engine.onPatternError(types.Diagnostic{
				Kind:    types.DiagnosticPatternError,
				Path:    rule.BaseDirectory,
				Message: compileError.Error(),
			})
		}
		return compiledRule{}, false
	}
	return compiledRule{rule: rule, anchored: anchored, matcher: compiledMatcher}, true
}

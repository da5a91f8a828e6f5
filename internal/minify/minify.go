// Package minify shrinks source text per content type without touching the
// contents of string, regex or template literals.
package minify

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/temirov/ctxpack/internal/types"
)

// ParseError reports content that could not be parsed for minification. The
// caller keeps the original content.
type ParseError struct {
	ContentType types.ContentType
	Err         error
}

func (parseError *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %v", parseError.ContentType, parseError.Err)
}

func (parseError *ParseError) Unwrap() error {
	return parseError.Err
}

// Verifier rejects script output that no longer parses as cleanly as its input.
type Verifier interface {
	Accepts(contentType types.ContentType, original string, minified string) bool
}

// Option customizes a Minifier.
type Option func(minifier *Minifier)

// WithVerifier enables syntax verification of JavaScript and TypeScript output.
func WithVerifier(verifier Verifier) Option {
	return func(minifier *Minifier) {
		minifier.verifier = verifier
	}
}

// WithLogger attaches a logger for rejected or unparsable content.
func WithLogger(logger *zap.Logger) Option {
	return func(minifier *Minifier) {
		if logger != nil {
			minifier.logger = logger
		}
	}
}

// Minifier applies the per-type transforms. It holds no mutable state and is
// safe for concurrent use.
type Minifier struct {
	verifier Verifier
	logger   *zap.Logger
}

// New constructs a Minifier.
func New(options ...Option) *Minifier {
	minifier := &Minifier{logger: zap.NewNop()}
	for _, option := range options {
		option(minifier)
	}
	return minifier
}

// Minify returns the reduced content. The result is never longer than the input
// and minifying it again returns it unchanged. A non-nil error is always a
// *ParseError and comes with the original content.
func (minifier *Minifier) Minify(content string, contentType types.ContentType) (string, error) {
	var minified string
	switch contentType {
	case types.ContentTypeJSON:
		compacted, compactError := minifyJSON(content)
		if compactError != nil {
			return content, &ParseError{ContentType: contentType, Err: compactError}
		}
		minified = compacted
	case types.ContentTypeCSS:
		minified = minifyStylesheet(content, false)
	case types.ContentTypeSCSS:
		minified = minifyStylesheet(content, true)
	case types.ContentTypeJavaScript, types.ContentTypeTypeScript:
		minified = minifyScript(content)
		if minifier.verifier != nil && minified != content && !minifier.verifier.Accepts(contentType, content, minified) {
			minifier.logger.Debug("syntax check rejected minified script", zap.String("type", contentType.String()))
			return content, nil
		}
	case types.ContentTypeHTML:
		minified = minifyMarkup(content, false)
	case types.ContentTypeSvelte:
		minified = minifyMarkup(content, true)
	case types.ContentTypeMarkdown:
		minified = minifyMarkdown(content)
	default:
		return content, nil
	}
	if len(minified) > len(content) {
		return content, nil
	}
	return minified, nil
}

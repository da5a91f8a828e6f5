//go:build cgo

package minify

import (
	"context"

	sitter "github.com/smacker/go-tree-sitter"
	javascript "github.com/smacker/go-tree-sitter/javascript"
	typescript "github.com/smacker/go-tree-sitter/typescript/typescript"

	"github.com/temirov/ctxpack/internal/types"
)

// syntaxVerifier parses scripts with tree-sitter grammars. A parser is created
// per call because tree-sitter parsers are not safe for concurrent use.
type syntaxVerifier struct{}

// NewSyntaxVerifier returns a Verifier backed by tree-sitter.
func NewSyntaxVerifier() Verifier {
	return syntaxVerifier{}
}

// Accepts rejects minified output that contains syntax errors the original did not have.
func (syntaxVerifier) Accepts(contentType types.ContentType, original string, minified string) bool {
	language := scriptLanguage(contentType)
	if language == nil {
		return true
	}
	if !hasSyntaxError(language, minified) {
		return true
	}
	return hasSyntaxError(language, original)
}

func scriptLanguage(contentType types.ContentType) *sitter.Language {
	switch contentType {
	case types.ContentTypeJavaScript:
		return javascript.GetLanguage()
	case types.ContentTypeTypeScript:
		return typescript.GetLanguage()
	default:
		return nil
	}
}

func hasSyntaxError(language *sitter.Language, source string) bool {
	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(language)
	tree, parseError := parser.ParseCtx(context.Background(), nil, []byte(source))
	if parseError != nil || tree == nil {
		return true
	}
	defer tree.Close()
	return tree.RootNode().HasError()
}

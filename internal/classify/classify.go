// Package classify maps files to the content types ctxpack knows how to render.
package classify

import (
	"path/filepath"
	"strings"

	"github.com/temirov/ctxpack/internal/types"
	"github.com/temirov/ctxpack/internal/utils"
)

var extensionContentTypes = map[string]types.ContentType{
	".svelte":   types.ContentTypeSvelte,
	".ts":       types.ContentTypeTypeScript,
	".mts":      types.ContentTypeTypeScript,
	".cts":      types.ContentTypeTypeScript,
	".js":       types.ContentTypeJavaScript,
	".mjs":      types.ContentTypeJavaScript,
	".cjs":      types.ContentTypeJavaScript,
	".css":      types.ContentTypeCSS,
	".scss":     types.ContentTypeSCSS,
	".json":     types.ContentTypeJSON,
	".md":       types.ContentTypeMarkdown,
	".markdown": types.ContentTypeMarkdown,
	".html":     types.ContentTypeHTML,
	".htm":      types.ContentTypeHTML,
}

// Classify resolves a content type from the file extension alone.
func Classify(path string) types.ContentType {
	extension := strings.ToLower(filepath.Ext(path))
	if contentType, known := extensionContentTypes[extension]; known {
		return contentType
	}
	return types.ContentTypeUnsupported
}

// ClassifyContent resolves the content type and downgrades it to Unsupported when
// the sniffed head of the file looks binary.
func ClassifyContent(path string, head []byte) types.ContentType {
	contentType := Classify(path)
	if contentType == types.ContentTypeUnsupported {
		return contentType
	}
	if utils.IsBinaryPrefix(head) {
		return types.ContentTypeUnsupported
	}
	return contentType
}

// IsSupported reports whether files of the content type are rendered.
func IsSupported(contentType types.ContentType) bool {
	return contentType != types.ContentTypeUnsupported
}

// Package types defines every cross‑package data structure used by the ctxpack CLI.
package types

import "strings"

// ContentType identifies the language family of a file.
type ContentType int

const (
	ContentTypeUnsupported ContentType = iota
	ContentTypeSvelte
	ContentTypeTypeScript
	ContentTypeJavaScript
	ContentTypeCSS
	ContentTypeSCSS
	ContentTypeJSON
	ContentTypeMarkdown
	ContentTypeHTML
)

var contentTypeNames = map[ContentType]string{
	ContentTypeUnsupported: "unsupported",
	ContentTypeSvelte:      "svelte",
	ContentTypeTypeScript:  "typescript",
	ContentTypeJavaScript:  "javascript",
	ContentTypeCSS:         "css",
	ContentTypeSCSS:        "scss",
	ContentTypeJSON:        "json",
	ContentTypeMarkdown:    "markdown",
	ContentTypeHTML:        "html",
}

// String returns the stable lower-case name used in rendered documents.
func (contentType ContentType) String() string {
	if name, known := contentTypeNames[contentType]; known {
		return name
	}
	return contentTypeNames[ContentTypeUnsupported]
}

// ParseContentType resolves a name produced by String back to its ContentType.
func ParseContentType(name string) ContentType {
	normalized := strings.ToLower(strings.TrimSpace(name))
	for contentType, contentTypeName := range contentTypeNames {
		if contentTypeName == normalized {
			return contentType
		}
	}
	return ContentTypeUnsupported
}

// RuleOrigin records where an exclusion rule came from.
type RuleOrigin int

const (
	RuleOriginDefault RuleOrigin = iota
	RuleOriginGitIgnore
	RuleOriginUserFlag
)

func (origin RuleOrigin) String() string {
	switch origin {
	case RuleOriginGitIgnore:
		return "gitignore"
	case RuleOriginUserFlag:
		return "user"
	default:
		return "default"
	}
}

// ExclusionRule is one gitignore-style pattern line after parsing.
// BaseDirectory is the slash-separated directory that scopes a .gitignore rule,
// empty for default and user rules.
type ExclusionRule struct {
	Pattern         string
	IsNegation      bool
	IsDirectoryOnly bool
	Origin          RuleOrigin
	BaseDirectory   string
}

// WalkEntry is a single path produced by the walker.
type WalkEntry struct {
	RelativePath string
	AbsolutePath string
	IsDirectory  bool
	IsSymlink    bool
}

// FileEntry is an included, non-binary file ready for rendering.
type FileEntry struct {
	RelativePath string
	Type         ContentType
	SizeBefore   int
	SizeAfter    int
	Content      string
	Tokens       int
}

// PercentReduction reports how much smaller the content became.
func (entry FileEntry) PercentReduction() float64 {
	return percentReduction(entry.SizeBefore, entry.SizeAfter)
}

// Statistics aggregates totals over every FileEntry of a run.
type Statistics struct {
	TotalFiles      int
	TotalSizeBefore int
	TotalSizeAfter  int
	TotalTokens     int
}

// Add accumulates the entry into the totals.
func (statistics *Statistics) Add(entry FileEntry) {
	statistics.TotalFiles++
	statistics.TotalSizeBefore += entry.SizeBefore
	statistics.TotalSizeAfter += entry.SizeAfter
	statistics.TotalTokens += entry.Tokens
}

// PercentReduction is (1 - after/before) * 100, or zero when nothing was read.
func (statistics Statistics) PercentReduction() float64 {
	return percentReduction(statistics.TotalSizeBefore, statistics.TotalSizeAfter)
}

func percentReduction(before int, after int) float64 {
	if before == 0 {
		return 0
	}
	return (1 - float64(after)/float64(before)) * 100
}

// DirectoryNode is one node of the rendered directory structure.
type DirectoryNode struct {
	Name     string
	Children []*DirectoryNode
	IsFile   bool
}

// DiagnosticKind classifies non-fatal conditions reported during a run.
type DiagnosticKind int

const (
	DiagnosticReadError DiagnosticKind = iota
	DiagnosticParseError
	DiagnosticPatternError
)

func (kind DiagnosticKind) String() string {
	switch kind {
	case DiagnosticParseError:
		return "parse"
	case DiagnosticPatternError:
		return "pattern"
	default:
		return "read"
	}
}

// Diagnostic describes a skipped file, an unminified file or a dropped pattern.
type Diagnostic struct {
	Kind    DiagnosticKind
	Path    string
	Message string
}

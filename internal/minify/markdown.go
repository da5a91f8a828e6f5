package minify

import (
	"sort"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// maximumBlankRun is the longest run of blank lines kept unchanged; longer runs
// collapse to a single blank line.
const maximumBlankRun = 2

// minifyMarkdown collapses long runs of blank lines outside code blocks and
// leaves every other line untouched.
func minifyMarkdown(content string) string {
	lines := strings.SplitAfter(content, "\n")
	protected := protectedMarkdownLines(content, lines)

	var output strings.Builder
	output.Grow(len(content))
	var blankRun []string
	flushBlankRun := func() {
		if len(blankRun) > maximumBlankRun {
			blankRun = blankRun[:1]
		}
		for _, blankLine := range blankRun {
			output.WriteString(blankLine)
		}
		blankRun = blankRun[:0]
	}
	for lineIndex, line := range lines {
		if line == "" {
			continue
		}
		if strings.TrimSpace(line) == "" && !protected[lineIndex] {
			blankRun = append(blankRun, line)
			continue
		}
		flushBlankRun()
		output.WriteString(line)
	}
	flushBlankRun()
	return output.String()
}

// protectedMarkdownLines marks the lines that belong to code and raw HTML blocks.
func protectedMarkdownLines(content string, lines []string) map[int]bool {
	lineStarts := make([]int, len(lines))
	offset := 0
	for lineIndex, line := range lines {
		lineStarts[lineIndex] = offset
		offset += len(line)
	}

	source := []byte(content)
	document := goldmark.DefaultParser().Parse(text.NewReader(source))
	protected := make(map[int]bool)
	_ = ast.Walk(document, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch node.(type) {
		case *ast.FencedCodeBlock, *ast.CodeBlock, *ast.HTMLBlock:
		default:
			return ast.WalkContinue, nil
		}
		segments := node.Lines()
		for segmentIndex := 0; segmentIndex < segments.Len(); segmentIndex++ {
			segment := segments.At(segmentIndex)
			lineIndex := sort.Search(len(lineStarts), func(candidate int) bool {
				return lineStarts[candidate] > segment.Start
			}) - 1
			if lineIndex >= 0 {
				protected[lineIndex] = true
			}
		}
		return ast.WalkSkipChildren, nil
	})
	return protected
}

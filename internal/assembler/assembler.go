// Package assembler renders the final context document: the directory
// structure, one block per included file and the reduction statistics.
package assembler

import (
	"fmt"
	"io"
	"strings"

	"github.com/temirov/ctxpack/internal/types"
	"github.com/temirov/ctxpack/internal/utils"
)

const (
	indentSpacer = "  "

	projectOpenTag     = "<project>"
	projectCloseTag    = "</project>"
	structureOpenTag   = "<structure>"
	structureCloseTag  = "</structure>"
	filesOpenTag       = "<files>"
	filesCloseTag      = "</files>"
	fileCloseTag       = "</file>"
	statisticsOpenTag  = "<statistics>"
	statisticsCloseTag = "</statistics>"

	directoryLineFormat = "%s- %s/\n"
	fileLineFormat      = "%s- %s\n"

	fileOpenFormat       = "<file path=%q type=%q"
	fileSizesFormat      = " original_size=\"%d\" minified_size=\"%d\" reduction=\"%s\""
	fileTokensFormat     = " tokens=\"%d\""
	fenceCharacter       = "`"
	minimumFenceLength   = 3
	statisticsFilesLine  = "Total files: %s\n"
	statisticsBeforeLine = "Total original size: %s bytes\n"
	statisticsAfterLine  = "Total minified size: %s bytes\n"
	statisticsRatioLine  = "Overall reduction: %s\n"
	statisticsTokenLine  = "Total tokens: %s\n"
)

// Assembler accumulates walked paths and file entries of one run.
// It has a single writer and is not safe for concurrent use.
type Assembler struct {
	statisticsEnabled bool
	root              *types.DirectoryNode
	nodes             map[string]*types.DirectoryNode
	entries           []types.FileEntry
	statistics        types.Statistics
	tokensCounted     bool
}

// New creates an empty assembler for the named root directory.
func New(rootName string, statisticsEnabled bool) *Assembler {
	return &Assembler{
		statisticsEnabled: statisticsEnabled,
		root:              &types.DirectoryNode{Name: rootName},
		nodes:             map[string]*types.DirectoryNode{},
	}
}

// AddPath records a walked path in the structure tree. Missing ancestors are
// created as directories; a path that was already added is ignored.
func (assembler *Assembler) AddPath(entry types.WalkEntry) {
	relativePath := utils.NormalizeRelativePath(entry.RelativePath)
	if relativePath == "" {
		return
	}
	if _, exists := assembler.nodes[relativePath]; exists {
		return
	}
	parent := assembler.root
	for _, ancestor := range utils.ParentDirectories(relativePath) {
		parent = assembler.ensureNode(parent, ancestor, false)
	}
	assembler.ensureNode(parent, relativePath, !entry.IsDirectory)
}

func (assembler *Assembler) ensureNode(parent *types.DirectoryNode, relativePath string, isFile bool) *types.DirectoryNode {
	if node, exists := assembler.nodes[relativePath]; exists {
		return node
	}
	name := relativePath[strings.LastIndex(relativePath, "/")+1:]
	node := &types.DirectoryNode{Name: name, IsFile: isFile}
	parent.Children = append(parent.Children, node)
	assembler.nodes[relativePath] = node
	return node
}

// AddEntry appends a file block and folds it into the statistics.
func (assembler *Assembler) AddEntry(entry types.FileEntry) {
	assembler.entries = append(assembler.entries, entry)
	assembler.statistics.Add(entry)
	if entry.Tokens > 0 {
		assembler.tokensCounted = true
	}
}

// Statistics returns the totals over every added entry.
func (assembler *Assembler) Statistics() types.Statistics {
	return assembler.statistics
}

// Entries returns the added entries in insertion order.
func (assembler *Assembler) Entries() []types.FileEntry {
	return append([]types.FileEntry(nil), assembler.entries...)
}

// Tree returns the root of the structure tree.
func (assembler *Assembler) Tree() *types.DirectoryNode {
	return assembler.root
}

// Render writes the document to writer.
func (assembler *Assembler) Render(writer io.Writer) error {
	var builder strings.Builder
	builder.WriteString(projectOpenTag + "\n\n")

	builder.WriteString(structureOpenTag + "\n")
	for _, child := range assembler.root.Children {
		renderTreeNode(&builder, child, "")
	}
	builder.WriteString(structureCloseTag + "\n\n")

	builder.WriteString(filesOpenTag + "\n")
	for _, entry := range assembler.entries {
		assembler.renderEntry(&builder, entry)
	}
	builder.WriteString(filesCloseTag + "\n")

	if assembler.statisticsEnabled {
		builder.WriteString("\n" + statisticsOpenTag + "\n")
		assembler.renderStatistics(&builder)
		builder.WriteString(statisticsCloseTag + "\n")
	}
	builder.WriteString(projectCloseTag + "\n")

	if _, err := io.WriteString(writer, builder.String()); err != nil {
		return fmt.Errorf("write document: %w", err)
	}
	return nil
}

// Document returns the rendered document as a string.
func (assembler *Assembler) Document() string {
	var builder strings.Builder
	_ = assembler.Render(&builder)
	return builder.String()
}

func renderTreeNode(builder *strings.Builder, node *types.DirectoryNode, indent string) {
	if node.IsFile {
		fmt.Fprintf(builder, fileLineFormat, indent, node.Name)
		return
	}
	fmt.Fprintf(builder, directoryLineFormat, indent, node.Name)
	for _, child := range node.Children {
		renderTreeNode(builder, child, indent+indentSpacer)
	}
}

func (assembler *Assembler) renderEntry(builder *strings.Builder, entry types.FileEntry) {
	fmt.Fprintf(builder, fileOpenFormat, entry.RelativePath, entry.Type.String())
	if assembler.statisticsEnabled {
		fmt.Fprintf(builder, fileSizesFormat, entry.SizeBefore, entry.SizeAfter, utils.FormatPercent(entry.PercentReduction()))
	}
	if entry.Tokens > 0 {
		fmt.Fprintf(builder, fileTokensFormat, entry.Tokens)
	}
	builder.WriteString(">\n")

	fence := codeFence(entry.Content)
	builder.WriteString(fence + entry.Type.String() + "\n")
	builder.WriteString(entry.Content)
	if !strings.HasSuffix(entry.Content, "\n") {
		builder.WriteString("\n")
	}
	builder.WriteString(fence + "\n")
	builder.WriteString(fileCloseTag + "\n\n")
}

func (assembler *Assembler) renderStatistics(builder *strings.Builder) {
	statistics := assembler.statistics
	fmt.Fprintf(builder, statisticsFilesLine, utils.FormatGroupedInteger(statistics.TotalFiles))
	fmt.Fprintf(builder, statisticsBeforeLine, utils.FormatGroupedInteger(statistics.TotalSizeBefore))
	fmt.Fprintf(builder, statisticsAfterLine, utils.FormatGroupedInteger(statistics.TotalSizeAfter))
	fmt.Fprintf(builder, statisticsRatioLine, utils.FormatPercent(statistics.PercentReduction()))
	if assembler.tokensCounted {
		fmt.Fprintf(builder, statisticsTokenLine, utils.FormatGroupedInteger(statistics.TotalTokens))
	}
}

// codeFence returns a backtick fence longer than any backtick run in content
// so embedded Markdown fences cannot terminate the block early.
func codeFence(content string) string {
	longestRun := 0
	currentRun := 0
	for index := 0; index < len(content); index++ {
		if content[index] == '`' {
			currentRun++
			if currentRun > longestRun {
				longestRun = currentRun
			}
			continue
		}
		currentRun = 0
	}
	length := minimumFenceLength
	if longestRun >= length {
		length = longestRun + 1
	}
	return strings.Repeat(fenceCharacter, length)
}

// Assemble renders a document from a walked path set and ordered entries.
func Assemble(rootName string, paths []types.WalkEntry, entries []types.FileEntry, statisticsEnabled bool) string {
	assembler := New(rootName, statisticsEnabled)
	for _, path := range paths {
		assembler.AddPath(path)
	}
	for _, entry := range entries {
		assembler.AddEntry(entry)
	}
	return assembler.Document()
}

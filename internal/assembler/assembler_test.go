package assembler_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/temirov/ctxpack/internal/assembler"
	"github.com/temirov/ctxpack/internal/types"
)

func TestAssembleWithoutStatistics(t *testing.T) {
	paths := []types.WalkEntry{
		{RelativePath: "README.md"},
		{RelativePath: "logo.png"},
		{RelativePath: "src", IsDirectory: true},
		{RelativePath: "src/app.svelte"},
		{RelativePath: "src/lib", IsDirectory: true},
		{RelativePath: "src/lib/util.ts"},
	}
	entries := []types.FileEntry{
		{RelativePath: "README.md", Type: types.ContentTypeMarkdown, SizeBefore: 8, SizeAfter: 8, Content: "# Title\n"},
		{RelativePath: "src/app.svelte", Type: types.ContentTypeSvelte, SizeBefore: 9, SizeAfter: 9, Content: "<p>hi</p>"},
	}
	expected := strings.Join([]string{
		"<project>",
		"",
		"<structure>",
		"- README.md",
		"- logo.png",
		"- src/",
		"  - app.svelte",
		"  - lib/",
		"    - util.ts",
		"</structure>",
		"",
		"<files>",
		"<file path=\"README.md\" type=\"markdown\">",
		"```markdown",
		"# Title",
		"```",
		"</file>",
		"",
		"<file path=\"src/app.svelte\" type=\"svelte\">",
		"```svelte",
		"<p>hi</p>",
		"```",
		"</file>",
		"",
		"</files>",
		"</project>",
		"",
	}, "\n")

	document := assembler.Assemble("project", paths, entries, false)
	if document != expected {
		t.Fatalf("unexpected document:\n%s\nexpected:\n%s", document, expected)
	}
	if strings.Contains(document, "<statistics>") {
		t.Fatalf("statistics must be omitted when disabled")
	}
}

func TestAssembleWithStatistics(t *testing.T) {
	entries := []types.FileEntry{
		{RelativePath: "a.json", Type: types.ContentTypeJSON, SizeBefore: 1500, SizeAfter: 1000, Content: "{}"},
		{RelativePath: "b.css", Type: types.ContentTypeCSS, SizeBefore: 500, SizeAfter: 500, Content: "a{}", Tokens: 2},
	}
	paths := []types.WalkEntry{{RelativePath: "a.json"}, {RelativePath: "b.css"}}

	document := assembler.Assemble("project", paths, entries, true)

	expectedFragments := []string{
		"<file path=\"a.json\" type=\"json\" original_size=\"1500\" minified_size=\"1000\" reduction=\"33.3%\">",
		"<file path=\"b.css\" type=\"css\" original_size=\"500\" minified_size=\"500\" reduction=\"0.0%\" tokens=\"2\">",
		"</files>\n\n<statistics>\n",
		"Total files: 2\n",
		"Total original size: 2,000 bytes\n",
		"Total minified size: 1,500 bytes\n",
		"Overall reduction: 25.0%\n",
		"Total tokens: 2\n",
		"</statistics>\n</project>\n",
	}
	for _, fragment := range expectedFragments {
		if !strings.Contains(document, fragment) {
			t.Errorf("document is missing %q:\n%s", fragment, document)
		}
	}
}

func TestStatisticsMatchEntrySums(t *testing.T) {
	documentAssembler := assembler.New("root", true)
	entries := []types.FileEntry{
		{RelativePath: "a.js", Type: types.ContentTypeJavaScript, SizeBefore: 10, SizeAfter: 7},
		{RelativePath: "b.js", Type: types.ContentTypeJavaScript, SizeBefore: 30, SizeAfter: 21},
		{RelativePath: "c.js", Type: types.ContentTypeJavaScript},
	}
	sumBefore, sumAfter := 0, 0
	for _, entry := range entries {
		documentAssembler.AddEntry(entry)
		sumBefore += entry.SizeBefore
		sumAfter += entry.SizeAfter
	}
	statistics := documentAssembler.Statistics()
	if statistics.TotalFiles != len(entries) || statistics.TotalSizeBefore != sumBefore || statistics.TotalSizeAfter != sumAfter {
		t.Fatalf("statistics %+v do not match sums %d/%d", statistics, sumBefore, sumAfter)
	}
	if len(documentAssembler.Entries()) != len(entries) {
		t.Fatalf("expected %d entries", len(entries))
	}
}

func TestEmptyRunReportsZeroReduction(t *testing.T) {
	document := assembler.Assemble("root", nil, nil, true)
	if !strings.Contains(document, "Overall reduction: 0.0%\n") {
		t.Fatalf("expected zero reduction for an empty run:\n%s", document)
	}
	if strings.Contains(document, "Total tokens") {
		t.Fatalf("token totals must be omitted when nothing was counted")
	}
}

func TestTreeCreatesMissingAncestors(t *testing.T) {
	documentAssembler := assembler.New("root", false)
	documentAssembler.AddPath(types.WalkEntry{RelativePath: "a/b/c.txt"})
	documentAssembler.AddPath(types.WalkEntry{RelativePath: "a/b/c.txt"})
	documentAssembler.AddPath(types.WalkEntry{RelativePath: "a/d.txt"})

	tree := documentAssembler.Tree()
	if tree.Name != "root" || len(tree.Children) != 1 {
		t.Fatalf("unexpected root %+v", tree)
	}
	directoryA := tree.Children[0]
	if directoryA.IsFile || directoryA.Name != "a" || len(directoryA.Children) != 2 {
		t.Fatalf("unexpected node a: %+v", directoryA)
	}
	directoryB := directoryA.Children[0]
	if directoryB.Name != "b" || len(directoryB.Children) != 1 || !directoryB.Children[0].IsFile {
		t.Fatalf("unexpected node b: %+v", directoryB)
	}
}

func TestFenceOutgrowsEmbeddedBackticks(t *testing.T) {
	content := "text\n```go\nfmt.Println()\n```\n"
	document := assembler.Assemble("root", nil, []types.FileEntry{
		{RelativePath: "doc.md", Type: types.ContentTypeMarkdown, Content: content},
	}, false)
	if !strings.Contains(document, "````markdown\n"+content+"````\n") {
		t.Fatalf("expected a four backtick fence:\n%s", document)
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, bytes.ErrTooLarge
}

func TestRenderReportsWriteErrors(t *testing.T) {
	documentAssembler := assembler.New("root", false)
	if err := documentAssembler.Render(failingWriter{}); err == nil {
		t.Fatalf("expected write error")
	}
}

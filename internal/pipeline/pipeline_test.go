package pipeline_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"go.uber.org/zap"

	"github.com/temirov/ctxpack/internal/minify"
	"github.com/temirov/ctxpack/internal/pipeline"
	"github.com/temirov/ctxpack/internal/types"
)

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for relativePath, content := range files {
		absolutePath := filepath.Join(root, filepath.FromSlash(relativePath))
		if err := os.MkdirAll(filepath.Dir(absolutePath), 0o755); err != nil {
			t.Fatalf("create directory for %s: %v", relativePath, err)
		}
		if err := os.WriteFile(absolutePath, []byte(content), 0o600); err != nil {
			t.Fatalf("write %s: %v", relativePath, err)
		}
	}
}

func svelteComponent() string {
	return "<p>" + strings.Repeat("a", 93) + "</p>"
}

func TestRunExcludesDefaultAndGitIgnoredPaths(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"src/app.svelte":    svelteComponent(),
		"node_modules/x.js": "module.exports = 1;",
		".gitignore":        "*.log\n",
		"debug.log":         strings.Repeat("l", 50),
	})

	result, err := pipeline.Run(context.Background(), pipeline.Options{Root: root}, zap.NewNop())
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if !strings.Contains(result.Document, "<file path=\"src/app.svelte\" type=\"svelte\">") {
		t.Fatalf("expected src/app.svelte in document:\n%s", result.Document)
	}
	if !strings.Contains(result.Document, "- src/\n  - app.svelte\n") {
		t.Fatalf("expected src/app.svelte in structure:\n%s", result.Document)
	}
	for _, forbidden := range []string{"node_modules", "x.js", "debug.log"} {
		if strings.Contains(result.Document, forbidden) {
			t.Fatalf("document must not mention %s:\n%s", forbidden, result.Document)
		}
	}
	if len(result.Entries) != 1 || result.Entries[0].SizeBefore != 100 {
		t.Fatalf("unexpected entries %+v", result.Entries)
	}
	if strings.Contains(result.Document, "<statistics>") {
		t.Fatalf("statistics must be omitted without minification")
	}
}

func TestRunMinifiesAndReportsDiagnostics(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"config.json":    `{"a": 1,   "b": [1,2, 3]}`,
		"broken.json":    "{oops",
		"blob.js":        "abc\x00def",
		"src/app.svelte": svelteComponent(),
		"notes.txt":      "plain text",
	})

	result, err := pipeline.Run(context.Background(), pipeline.Options{
		Root:            root,
		Minify:          true,
		ExcludePatterns: []string{"[unterminated"},
		Verifier:        minify.NewSyntaxVerifier(),
	}, zap.NewNop())
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}

	entriesByPath := map[string]types.FileEntry{}
	for _, entry := range result.Entries {
		entriesByPath[entry.RelativePath] = entry
	}
	if entry := entriesByPath["config.json"]; entry.Content != `{"a":1,"b":[1,2,3]}` {
		t.Fatalf("unexpected minified json %q", entry.Content)
	}
	if entry := entriesByPath["broken.json"]; entry.Content != "{oops" || entry.SizeAfter != entry.SizeBefore {
		t.Fatalf("invalid json must keep its content, got %+v", entry)
	}
	if _, present := entriesByPath["blob.js"]; present {
		t.Fatalf("binary file must not be embedded")
	}
	if _, present := entriesByPath["notes.txt"]; present {
		t.Fatalf("unsupported file must not be embedded")
	}
	if !strings.Contains(result.Document, "- blob.js\n") || !strings.Contains(result.Document, "- notes.txt\n") {
		t.Fatalf("skipped files must stay in the structure:\n%s", result.Document)
	}

	expectedDiagnostics := []types.DiagnosticKind{
		types.DiagnosticPatternError,
		types.DiagnosticReadError,
		types.DiagnosticParseError,
	}
	if len(result.Diagnostics) != len(expectedDiagnostics) {
		t.Fatalf("expected %d diagnostics, got %+v", len(expectedDiagnostics), result.Diagnostics)
	}
	for index, kind := range expectedDiagnostics {
		if result.Diagnostics[index].Kind != kind {
			t.Fatalf("diagnostic %d: expected %s, got %+v", index, kind, result.Diagnostics[index])
		}
	}
	if result.Diagnostics[1].Path != "blob.js" || result.Diagnostics[2].Path != "broken.json" {
		t.Fatalf("unexpected diagnostic paths %+v", result.Diagnostics)
	}

	sumBefore, sumAfter := 0, 0
	for _, entry := range result.Entries {
		if entry.SizeAfter > entry.SizeBefore {
			t.Fatalf("%s grew from %d to %d", entry.RelativePath, entry.SizeBefore, entry.SizeAfter)
		}
		sumBefore += entry.SizeBefore
		sumAfter += entry.SizeAfter
	}
	if result.Statistics.TotalSizeBefore != sumBefore || result.Statistics.TotalSizeAfter != sumAfter {
		t.Fatalf("statistics %+v do not match sums %d/%d", result.Statistics, sumBefore, sumAfter)
	}
	if !strings.Contains(result.Document, "<statistics>\nTotal files: 3\n") {
		t.Fatalf("expected statistics block:\n%s", result.Document)
	}
}

func TestRunIsDeterministicAcrossWorkerCounts(t *testing.T) {
	root := t.TempDir()
	files := map[string]string{}
	for _, name := range []string{"a", "b", "c", "d", "e", "f", "g", "h"} {
		files["pkg/"+name+".js"] = "const " + name + " = 1;   // value\n"
		files[name+"/style.css"] = "." + name + " {  color : red ; }\n"
	}
	writeTree(t, root, files)

	var documents []string
	for _, workers := range []int{1, 3, 16} {
		result, err := pipeline.Run(context.Background(), pipeline.Options{Root: root, Minify: true, Workers: workers}, zap.NewNop())
		if err != nil {
			t.Fatalf("Run error with %d workers: %v", workers, err)
		}
		documents = append(documents, result.Document)
	}
	for index := 1; index < len(documents); index++ {
		if documents[index] != documents[0] {
			t.Fatalf("document differs between worker counts")
		}
	}
}

type recordingProgress struct {
	mutex    sync.Mutex
	total    int
	advanced []string
	finished bool
}

func (progress *recordingProgress) Start(total int) {
	progress.total = total
}

func (progress *recordingProgress) Advance(relativePath string) {
	progress.mutex.Lock()
	defer progress.mutex.Unlock()
	progress.advanced = append(progress.advanced, relativePath)
}

func (progress *recordingProgress) Finish() {
	progress.finished = true
}

type characterCounter struct{}

func (characterCounter) Name() string { return "characters" }

func (characterCounter) CountString(input string) (int, error) { return len(input), nil }

func TestRunReportsProgressAndTokens(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"a.md":      "# a\n",
		"b.ts":      "let b = 1;\n",
		"image.bin": "\x00\x01",
	})
	progress := &recordingProgress{}

	result, err := pipeline.Run(context.Background(), pipeline.Options{
		Root:         root,
		Progress:     progress,
		TokenCounter: characterCounter{},
	}, nil)
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if progress.total != 2 || len(progress.advanced) != 2 || !progress.finished {
		t.Fatalf("unexpected progress %+v", progress)
	}
	if result.Statistics.TotalTokens != len("# a\n")+len("let b = 1;\n") {
		t.Fatalf("unexpected token total %d", result.Statistics.TotalTokens)
	}
	if !strings.Contains(result.Document, "tokens=\"4\"") {
		t.Fatalf("expected per-file token attribute:\n%s", result.Document)
	}
}

func TestRunRejectsInvalidRoots(t *testing.T) {
	directory := t.TempDir()
	regularFile := filepath.Join(directory, "file.txt")
	if err := os.WriteFile(regularFile, []byte("x"), 0o600); err != nil {
		t.Fatalf("write file: %v", err)
	}
	testCases := []struct {
		name string
		root string
	}{
		{name: "missing", root: filepath.Join(directory, "missing")},
		{name: "regular file", root: regularFile},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			_, err := pipeline.Run(context.Background(), pipeline.Options{Root: testCase.root}, zap.NewNop())
			if !errors.Is(err, pipeline.ErrInvalidRoot) {
				t.Fatalf("expected ErrInvalidRoot, got %v", err)
			}
		})
	}
}

func TestRunHonorsCancellation(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"a.js": "let a = 1;"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := pipeline.Run(ctx, pipeline.Options{Root: root}, zap.NewNop())
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

package ignore_test

import (
	"testing"

	"github.com/temirov/ctxpack/internal/ignore"
	"github.com/temirov/ctxpack/internal/types"
)

type pathExpectation struct {
	path        string
	isDirectory bool
	excluded    bool
}

func assertExpectations(t *testing.T, engine *ignore.Engine, expectations []pathExpectation) {
	t.Helper()
	for _, expectation := range expectations {
		if actual := engine.ShouldExclude(expectation.path, expectation.isDirectory); actual != expectation.excluded {
			t.Errorf("path %q (directory=%t): expected excluded=%t, got %t", expectation.path, expectation.isDirectory, expectation.excluded, actual)
		}
	}
}

func TestDefaultRules(t *testing.T) {
	engine := ignore.New(ignore.DefaultRules(), nil)
	assertExpectations(t, engine, []pathExpectation{
		{path: "node_modules", isDirectory: true, excluded: true},
		{path: "packages/web/node_modules", isDirectory: true, excluded: true},
		{path: "node_modules/pkg/index.js", excluded: true},
		{path: "node_modules", isDirectory: false, excluded: false},
		{path: "package.json", excluded: true},
		{path: "src/.DS_Store", excluded: true},
		{path: "static/logo.PNG", excluded: false},
		{path: "static/logo.png", excluded: true},
		{path: "src/App.svelte", excluded: false},
		{path: ".git", isDirectory: true, excluded: true},
		{path: "", isDirectory: true, excluded: false},
	})
}

func TestWildcardSemantics(t *testing.T) {
	engine := ignore.New(nil, []string{
		"*.log",
		"/root-only.txt",
		"docs/*.md",
		"**/fixtures",
		"a/**/z.js",
		"logs/**",
		"file?.css",
		"[abc]x.js",
		"[^0-9]y.js",
	})
	assertExpectations(t, engine, []pathExpectation{
		{path: "debug.log", excluded: true},
		{path: "deep/nested/error.log", excluded: true},
		{path: "root-only.txt", excluded: true},
		{path: "sub/root-only.txt", excluded: false},
		{path: "docs/readme.md", excluded: true},
		{path: "docs/api/readme.md", excluded: false},
		{path: "other/docs/readme.md", excluded: false},
		{path: "fixtures", isDirectory: true, excluded: true},
		{path: "test/unit/fixtures", isDirectory: true, excluded: true},
		{path: "a/z.js", excluded: true},
		{path: "a/b/c/z.js", excluded: true},
		{path: "b/z.js", excluded: false},
		{path: "logs", isDirectory: true, excluded: false},
		{path: "logs/2024/app.txt", excluded: true},
		{path: "file1.css", excluded: true},
		{path: "file12.css", excluded: false},
		{path: "ax.js", excluded: true},
		{path: "dx.js", excluded: false},
		{path: "ay.js", excluded: true},
		{path: "1y.js", excluded: false},
	})
}

func TestDoubleStarSpansAnyNumberOfDirectories(t *testing.T) {
	engine := ignore.New(nil, []string{
		"x/**/y/**/z/**/w/**/v/**/u",
		"a/**/**/b",
		"**/gen/**/*.js",
	})
	assertExpectations(t, engine, []pathExpectation{
		{path: "x/y/z/w/v/u", excluded: true},
		{path: "x/1/y/2/3/z/w/4/v/u", excluded: true},
		{path: "x/y/z/w/v", excluded: false},
		{path: "x/y/z/w/v/u2", excluded: false},
		{path: "a/b", excluded: true},
		{path: "a/c/d/b", excluded: true},
		{path: "gen/out.js", excluded: true},
		{path: "src/gen/deep/out.js", excluded: true},
		{path: "src/gen/out.ts", excluded: false},
	})
}

func TestBracesAreLiteral(t *testing.T) {
	engine := ignore.New(nil, []string{"{a,b}.js"})
	assertExpectations(t, engine, []pathExpectation{
		{path: "{a,b}.js", excluded: true},
		{path: "a.js", excluded: false},
	})
}

func TestLastMatchWinsWithNegation(t *testing.T) {
	engine := ignore.New(nil, []string{"*.log", "!keep.log"})
	assertExpectations(t, engine, []pathExpectation{
		{path: "drop.log", excluded: true},
		{path: "keep.log", excluded: false},
		{path: "nested/keep.log", excluded: false},
	})

	reversed := ignore.New(nil, []string{"!keep.log", "*.log"})
	assertExpectations(t, reversed, []pathExpectation{
		{path: "keep.log", excluded: true},
	})
}

func TestLayerPrecedence(t *testing.T) {
	base := ignore.New(ignore.DefaultRules(), []string{"package.json"})
	withGitIgnore := base.WithGitIgnore("", []string{"!package.json", "!yarn.lock"})
	assertExpectations(t, withGitIgnore, []pathExpectation{
		{path: "package.json", excluded: true},
		{path: "yarn.lock", excluded: false},
	})

	withoutUser := ignore.New(ignore.DefaultRules(), nil).WithGitIgnore("", []string{"!package.json"})
	assertExpectations(t, withoutUser, []pathExpectation{
		{path: "package.json", excluded: false},
	})
}

func TestExcludedDirectoryCannotBeReincluded(t *testing.T) {
	engine := ignore.New(nil, []string{"vendor/"}).WithGitIgnore("vendor", []string{"!keep.js"})
	assertExpectations(t, engine, []pathExpectation{
		{path: "vendor", isDirectory: true, excluded: true},
		{path: "vendor/keep.js", excluded: true},
		{path: "vendor/lib/deep.js", excluded: true},
	})
}

func TestGitIgnoreScopedToDirectory(t *testing.T) {
	root := ignore.New(nil, nil)
	scoped := root.WithGitIgnore("packages/app", []string{"*.gen.ts", "/local.ts"})
	assertExpectations(t, scoped, []pathExpectation{
		{path: "packages/app/types.gen.ts", excluded: true},
		{path: "packages/app/src/api.gen.ts", excluded: true},
		{path: "packages/other/types.gen.ts", excluded: false},
		{path: "types.gen.ts", excluded: false},
		{path: "packages/app/local.ts", excluded: true},
		{path: "packages/app/src/local.ts", excluded: false},
	})
	assertExpectations(t, root, []pathExpectation{
		{path: "packages/app/types.gen.ts", excluded: false},
	})
}

func TestPatternErrorsAreSkipped(t *testing.T) {
	var diagnostics []types.Diagnostic
	engine := ignore.New(nil, []string{"[unterminated", "*.tmp"},
		ignore.WithPatternErrorHandler(func(diagnostic types.Diagnostic) {
			diagnostics = append(diagnostics, diagnostic)
		}))
	if len(diagnostics) != 1 {
		t.Fatalf("expected one pattern diagnostic, got %d", len(diagnostics))
	}
	if diagnostics[0].Kind != types.DiagnosticPatternError {
		t.Fatalf("expected pattern error kind, got %s", diagnostics[0].Kind)
	}
	if engine.RuleCount() != 1 {
		t.Fatalf("expected the valid rule to survive, got %d rules", engine.RuleCount())
	}
	assertExpectations(t, engine, []pathExpectation{
		{path: "scratch.tmp", excluded: true},
		{path: "[unterminated", excluded: false},
	})
}

func TestShouldExcludeIsPure(t *testing.T) {
	engine := ignore.New(ignore.DefaultRules(), []string{"*.snap"})
	for attempt := 0; attempt < 3; attempt++ {
		if !engine.ShouldExclude("tests/__snapshots__/a.snap", false) {
			t.Fatalf("attempt %d: expected snapshot to be excluded", attempt)
		}
	}
}

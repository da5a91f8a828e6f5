package minify_test

import (
	"testing"

	"github.com/temirov/ctxpack/internal/minify"
	"github.com/temirov/ctxpack/internal/types"
)

var propertyCorpus = []struct {
	contentType types.ContentType
	input       string
}{
	{types.ContentTypeJSON, "{\n  \"name\": \"app\",\n  \"list\": [1, 2,\n 3]\n}\n"},
	{types.ContentTypeJSON, "not json at all"},
	{types.ContentTypeCSS, "/* a */ .x  >  .y { margin : 0 auto ; }\n\n\n.z{}"},
	{types.ContentTypeCSS, "@media (min-width: 10px) and (max-width: 20px) {\n  a { color: red }\n}"},
	{types.ContentTypeCSS, "a::after { content: '\\'}'; }"},
	{types.ContentTypeCSS, "a { b: c } /* unterminated"},
	{types.ContentTypeCSS, ".a\\\"b { color: red; }\n.c  .d { x: y }"},
	{types.ContentTypeJSON, "  \n"},
	{types.ContentTypeSCSS, "@mixin m($a) { width: $a * 2; } // done\n.a { @include m(1px); &:hover { color: blue; } }"},
	{types.ContentTypeJavaScript, "import x from 'y';\n\nexport default function () {\n  return x // comment\n}\n"},
	{types.ContentTypeJavaScript, "const a = b\n++c\nconst d = e\n(f)\n"},
	{types.ContentTypeJavaScript, "const r = /[/]+/.test(s) ? 1 : 2 / 3"},
	{types.ContentTypeJavaScript, "const t = `outer ${ `inner ${ a + b } x` } y`;\n"},
	{types.ContentTypeJavaScript, "a = 'unterminated\nb = 2"},
	{types.ContentTypeJavaScript, "let x = 1 .toString(); let y = a - -b + +c"},
	{types.ContentTypeJavaScript, "/* only a comment */"},
	{types.ContentTypeJavaScript, "const v = {} / 2\n); y = s.replace(/a  b/, '')\n"},
	{types.ContentTypeJavaScript, "s = \"a\\\r\n  b  c\";\r\nx = 'd\\\r\n  e'\r\n"},
	{types.ContentTypeJavaScript, "m = [/[a\n], 'b\n} \"x  y\"; z = /q  r/"},
	{types.ContentTypeTypeScript, "interface A {\n  b: string; // field\n  c?: number;\n}\nconst f = <T,>(v: T): T => v;\n"},
	{types.ContentTypeTypeScript, "class C { #secret = 1; static #count = 0; @dec method() {} }"},
	{types.ContentTypeHTML, "<div>\n  <span>  a </span>\n  <!-- x -->  <b>b</b>\n</div>\n"},
	{types.ContentTypeHTML, "<p>1 < 2 and 3 > 2</p>"},
	{types.ContentTypeHTML, "<script>\n  if (a < b) { run(); }\n</script>"},
	{types.ContentTypeHTML, "<script>\n  x = 'open\n  ) <a href=\"x  y\">\n</script>\n<p>  after  </p>"},
	{types.ContentTypeSvelte, "{#if items.length > 0}\n  {#each items as item}\n    <li>{item.name}</li>\n  {/each}\n{:else}\n  <p>none</p>\n{/if}\n"},
	{types.ContentTypeSvelte, "<input bind:value={text} placeholder=\"  type  here \" />"},
	{types.ContentTypeMarkdown, "Intro\n\n\n\n    indented code\n\n\n\n    still code\n\n\n\nOutro\n"},
	{types.ContentTypeMarkdown, "- a\n\n\n\n- b\n\n~~~js\nx\n\n\n\ny\n~~~\n"},
}

func TestMinifyIsIdempotentAndNeverGrows(t *testing.T) {
	minifier := minify.New()
	for _, sample := range propertyCorpus {
		once, _ := minifier.Minify(sample.input, sample.contentType)
		twice, _ := minifier.Minify(once, sample.contentType)
		if twice != once {
			t.Errorf("%s not idempotent for %q\n once: %q\ntwice: %q", sample.contentType, sample.input, once, twice)
		}
		if len(once) > len(sample.input) {
			t.Errorf("%s grew %q to %q", sample.contentType, sample.input, once)
		}
	}
}

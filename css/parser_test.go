package css_test

import (
	"strings"
	"testing"

	"go.uber.org/zap"

	"cssbust/css"
)

func parse(t *testing.T, input string) *css.Document {
	t.Helper()
	return css.NewParser(zap.NewNop()).Parse([]byte(input), t.Name())
}

func TestParser_RoundTrip(t *testing.T) {
	inputs := []string{
		``,
		`p { text-indent: 1em; }`,
		"@charset \"utf-8\";\n@import url(\"base.css\") screen;\n\n/* comment */\nbody{background:url(img/a.png) no-repeat}\n",
		`@media (min-width: 10px) { .a { src: url('a.woff') format("woff"), url(b.ttf); } }`,
		`a:hover { color: red !important; } :root { --main: { x: 1 }; --other: url(x.png) }`,
		"<!-- .x { color: blue } -->",
		`.broken { background: url(unterminated.png`,
		`.semi { content: ";{}"; background-image: image-set(url(a.png) 1x, url(b.png) 2x) }`,
		"\ufeffbody { color: red }",
		`@font-face{font-family:X;src:url(data:font/woff2;base64,AAAA)}`,
	}
	for _, in := range inputs {
		doc := parse(t, in)
		if got := doc.String(); got != in {
			t.Errorf("round trip mismatch\n got: %q\nwant: %q", got, in)
		}
	}
}

func TestParser_Declarations(t *testing.T) {
	doc := parse(t, `body { background : url(a.png) no-repeat ; color:red }
.x{src:url("b.woff")}`)

	decls := doc.Declarations()
	if len(decls) != 3 {
		t.Fatalf("expected 3 declarations, got %d", len(decls))
	}

	want := []css.Declaration{
		{Prop: "background", Value: "url(a.png) no-repeat"},
		{Prop: "color", Value: "red"},
		{Prop: "src", Value: `url("b.woff")`},
	}
	for i, w := range want {
		if *decls[i] != w {
			t.Errorf("declaration %d = %+v, want %+v", i, *decls[i], w)
		}
	}
}

func TestParser_SelectorsAreNotDeclarations(t *testing.T) {
	doc := parse(t, `.a { a:hover { color: red } b:focus{} }`)

	decls := doc.Declarations()
	if len(decls) != 1 {
		t.Fatalf("expected 1 declaration, got %d", len(decls))
	}
	if decls[0].Prop != "color" {
		t.Errorf("expected color declaration, got %q", decls[0].Prop)
	}
}

func TestParser_TopLevelIsNotDeclaration(t *testing.T) {
	doc := parse(t, `background: url(a.png);`)
	if n := len(doc.Declarations()); n != 0 {
		t.Errorf("expected no declarations outside of blocks, got %d", n)
	}
}

func TestParser_NestedDeclarations(t *testing.T) {
	doc := parse(t, `@media print { @supports (display: grid) { .a { background-image: url(p.png) } } }`)

	decls := doc.Declarations()
	if len(decls) != 1 {
		t.Fatalf("expected 1 declaration, got %d", len(decls))
	}
	if decls[0].Value != "url(p.png)" {
		t.Errorf("unexpected value %q", decls[0].Value)
	}

	rules := doc.AtRules()
	if len(rules) != 2 {
		t.Fatalf("expected 2 at-rules, got %d", len(rules))
	}
	if rules[0].Name != "media" || rules[0].Params != "print" {
		t.Errorf("unexpected first at-rule %+v", *rules[0])
	}
	if rules[1].Name != "supports" || rules[1].Params != "(display: grid)" {
		t.Errorf("unexpected second at-rule %+v", *rules[1])
	}
}

func TestParser_WalkAtRulesByName(t *testing.T) {
	doc := parse(t, `@import url(a.css);
@IMPORT "b.css" print;
@media screen { @import url(c.css); }
@namespace svg url(http://www.w3.org/2000/svg);`)

	var params []string
	doc.WalkAtRules("import", func(r *css.AtRule) {
		params = append(params, r.Params)
	})

	want := []string{`url(a.css)`, `"b.css" print`, `url(c.css)`}
	if len(params) != len(want) {
		t.Fatalf("got %d imports (%v), want %d", len(params), params, len(want))
	}
	for i := range want {
		if params[i] != want[i] {
			t.Errorf("import %d params = %q, want %q", i, params[i], want[i])
		}
	}
}

func TestParser_CustomProperty(t *testing.T) {
	doc := parse(t, `:root { --hero: url(hero.png); }`)

	decls := doc.Declarations()
	if len(decls) != 1 {
		t.Fatalf("expected 1 declaration, got %d", len(decls))
	}
	if decls[0].Prop != "--hero" || decls[0].Value != "url(hero.png)" {
		t.Errorf("unexpected declaration %+v", *decls[0])
	}
}

func TestDocument_Mutation(t *testing.T) {
	in := `@import url("a.css") screen;
body {
  background: url(a.png) no-repeat; /* keep */
  color: red
}
`
	doc := parse(t, in)

	doc.WalkAtRules("import", func(r *css.AtRule) {
		r.Params = strings.Replace(r.Params, "a.css", "a.css?v1", 1)
	})
	doc.WalkDecls(func(d *css.Declaration) {
		if d.Prop == "background" {
			d.Value = "url(a.png?v2) no-repeat"
		}
	})

	want := `@import url("a.css?v1") screen;
body {
  background: url(a.png?v2) no-repeat; /* keep */
  color: red
}
`
	if got := doc.String(); got != want {
		t.Errorf("mutated document mismatch\n got: %q\nwant: %q", got, want)
	}
}

func TestDocument_WriteTo(t *testing.T) {
	in := `a { src: url(x.woff) }`
	doc := parse(t, in)

	var sb strings.Builder
	n, err := doc.WriteTo(&sb)
	if err != nil {
		t.Fatalf("WriteTo() error = %v", err)
	}
	if n != int64(len(in)) {
		t.Errorf("WriteTo() wrote %d bytes, want %d", n, len(in))
	}
	if sb.String() != in {
		t.Errorf("WriteTo() = %q, want %q", sb.String(), in)
	}
}

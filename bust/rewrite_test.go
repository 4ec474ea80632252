package bust

import (
	"crypto/md5"
	"encoding/hex"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"

	"cssbust/css"
)

type collector struct {
	mu    sync.Mutex
	diags []Diagnostic
}

func (c *collector) Report(d Diagnostic) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.diags = append(c.diags, d)
}

// project lays out <tmp>/proj/css/app.css and <tmp>/proj/img/logo.png and
// returns project root, document path and marker of logo.png.
func project(t *testing.T) (string, string, string) {
	t.Helper()
	root := filepath.Join(t.TempDir(), "proj")
	mtime := time.UnixMilli(1712345678901)
	writeAsset(t, root, "img/logo.png", []byte("logo"), mtime)
	writeAsset(t, root, "img/a b.png", []byte("spaced"), mtime)
	writeAsset(t, root, "css/img/a.png", []byte("local"), mtime)
	writeAsset(t, root, "css/fonts.css", []byte("@font-face{}"), mtime)
	return root, filepath.Join(root, "css", "app.css"), strconv.FormatInt(mtime.UnixMilli(), 16)
}

func newTestRewriter(t *testing.T, cfg Config, sink DiagnosticSink) *Rewriter {
	t.Helper()
	opts, err := NewOptions(cfg)
	if err != nil {
		t.Fatalf("NewOptions() error = %v", err)
	}
	return NewRewriter(opts, NewCache(), sink, zaptest.NewLogger(t))
}

func TestRewriter_DocumentEndToEnd(t *testing.T) {
	_, document, marker := project(t)
	r := newTestRewriter(t, Config{}, nil)

	doc := css.NewParser(zaptest.NewLogger(t)).Parse([]byte("body {\n  background: url(../img/logo.png);\n  color: red;\n}\n"), document)
	st := r.Process(doc, document)

	want := "body {\n  background: url(../img/logo.png?v" + marker + ");\n  color: red;\n}\n"
	if got := doc.String(); got != want {
		t.Errorf("Process() produced\n%s\nwant\n%s", got, want)
	}
	if st.Tokens != 1 || st.Rewritten != 1 {
		t.Errorf("Stats = %+v", st)
	}
}

func TestRewriter_Declaration(t *testing.T) {
	root, document, marker := project(t)

	tests := []struct {
		name  string
		cfg   Config
		prop  string
		value string
		want  string
	}{
		{
			name:  "unquoted",
			prop:  "background-image",
			value: "url(img/a.png)",
			want:  "url(img/a.png?v" + marker + ")",
		},
		{
			name:  "quotes kept",
			prop:  "background",
			value: `url('img/a.png') no-repeat, url("../img/logo.png")`,
			want:  `url('img/a.png?v` + marker + `') no-repeat, url("../img/logo.png?v` + marker + `")`,
		},
		{
			name:  "query and fragment",
			prop:  "src",
			value: "url(img/a.png?foo=1#frag)",
			want:  "url(img/a.png?foo=1&v" + marker + "#frag)",
		},
		{
			name:  "param name",
			cfg:   Config{ParamName: "ver="},
			prop:  "src",
			value: "url(img/a.png)",
			want:  "url(img/a.png?ver=" + marker + ")",
		},
		{
			name:  "root relative",
			cfg:   Config{ImagesPath: root},
			prop:  "background",
			value: "url(/img/logo.png)",
			want:  "url(/img/logo.png?v" + marker + ")",
		},
		{
			name:  "css path",
			cfg:   Config{CSSPath: root},
			prop:  "background",
			value: "url(img/logo.png)",
			want:  "url(img/logo.png?v" + marker + ")",
		},
		{
			name:  "escaped path",
			prop:  "background",
			value: "url(../img/a%20b.png)",
			want:  "url(../img/a%20b.png?v" + marker + ")",
		},
		{
			name:  "ineligible",
			prop:  "background",
			value: "url(http://cdn.example.com/a.png), url(//cdn.example.com/a.png), url(data:image/png;base64,AAAA)",
			want:  "url(http://cdn.example.com/a.png), url(//cdn.example.com/a.png), url(data:image/png;base64,AAAA)",
		},
		{
			name:  "property not rewritable",
			prop:  "cursor",
			value: "url(img/a.png), auto",
			want:  "url(img/a.png), auto",
		},
		{
			name:  "additional property",
			cfg:   Config{AdditionalProps: []string{"cursor"}},
			prop:  "cursor",
			value: "url(img/a.png), auto",
			want:  "url(img/a.png?v" + marker + "), auto",
		},
		{
			name:  "no tokens",
			prop:  "background",
			value: "none",
			want:  "none",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestRewriter(t, tt.cfg, nil)
			if got := r.RewriteDeclaration(document, tt.prop, tt.value); got != tt.want {
				t.Errorf("RewriteDeclaration() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRewriter_Checksum(t *testing.T) {
	_, document, _ := project(t)
	r := newTestRewriter(t, Config{Type: "checksum"}, nil)

	sum := md5.Sum([]byte("logo"))
	want := "url(../img/logo.png?v" + hex.EncodeToString(sum[:]) + ")"
	if got := r.RewriteDeclaration(document, "background", "url(../img/logo.png)"); got != want {
		t.Errorf("RewriteDeclaration() = %q, want %q", got, want)
	}
}

func TestRewriter_MissingAsset(t *testing.T) {
	_, document, marker := project(t)

	core, logs := observer.New(zapcore.WarnLevel)
	sink := &collector{}
	opts, err := NewOptions(Config{})
	if err != nil {
		t.Fatal(err)
	}
	r := NewRewriter(opts, nil, sink, zap.New(core))

	value := "url(img/missing.png), url(img/a.png), url(img)"
	want := "url(img/missing.png), url(img/a.png?v" + marker + "), url(img)"

	doc := css.NewParser(nil).Parse([]byte("a{background:" + value + "}"), document)
	st := r.Process(doc, document)
	if got := doc.Declarations()[0].Value; got != want {
		t.Errorf("value = %q, want %q", got, want)
	}
	if st.Tokens != 3 || st.Rewritten != 1 || st.Unavailable != 2 {
		t.Errorf("Stats = %+v", st)
	}

	if len(sink.diags) != 2 {
		t.Fatalf("got %d diagnostics, want 2", len(sink.diags))
	}
	d := sink.diags[0]
	if d.Kind != DiagnosticKindUnresolvableAsset || d.Reference != "img/missing.png" || d.Document != document {
		t.Errorf("unexpected diagnostic %+v", d)
	}
	if want := filepath.Join(filepath.Dir(document), "img", "missing.png"); d.Path != want {
		t.Errorf("diagnostic path = %q, want %q", d.Path, want)
	}
	// "img" is a directory
	if sink.diags[1].Reference != "img" {
		t.Errorf("unexpected diagnostic %+v", sink.diags[1])
	}

	warnings := logs.FilterMessage("Cachebuster: file unreachable or not exists").All()
	if len(warnings) != 2 {
		t.Errorf("got %d warnings, want 2", len(warnings))
	}
}

func TestRewriter_Import(t *testing.T) {
	_, document, marker := project(t)

	tests := []struct {
		name   string
		params string
		want   string
	}{
		{
			name:   "unquoted gets double quotes",
			params: "url(fonts.css)",
			want:   `url("fonts.css?v` + marker + `")`,
		},
		{
			name:   "single quotes kept",
			params: "url('fonts.css')",
			want:   "url('fonts.css?v" + marker + "')",
		},
		{
			name:   "media kept",
			params: `url("fonts.css") screen and (min-width: 100px)`,
			want:   `url("fonts.css?v` + marker + `") screen and (min-width: 100px)`,
		},
		{
			name:   "only first target",
			params: "url(fonts.css) url(fonts.css)",
			want:   `url("fonts.css?v` + marker + `") url(fonts.css)`,
		},
		{
			name:   "plain string untouched",
			params: `"fonts.css"`,
			want:   `"fonts.css"`,
		},
		{
			name:   "absolute untouched",
			params: "url(https://fonts.example.com/css)",
			want:   "url(https://fonts.example.com/css)",
		},
		{
			name:   "missing untouched",
			params: "url(nope.css)",
			want:   "url(nope.css)",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestRewriter(t, Config{}, nil)
			if got := r.RewriteImport(document, tt.params); got != tt.want {
				t.Errorf("RewriteImport() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRewriter_ProcessImports(t *testing.T) {
	_, document, marker := project(t)
	r := newTestRewriter(t, Config{}, nil)

	src := "@import url(fonts.css) print;\n@IMPORT 'other.css';\n@media screen { a { src: url(img/a.png) } }\n"
	doc := css.NewParser(zaptest.NewLogger(t)).Parse([]byte(src), document)
	r.Process(doc, document)

	want := "@import url(\"fonts.css?v" + marker + "\") print;\n@IMPORT 'other.css';\n@media screen { a { src: url(img/a.png?v" + marker + ") } }\n"
	if got := doc.String(); got != want {
		t.Errorf("Process() produced\n%s\nwant\n%s", got, want)
	}
}

func TestRewriter_Custom(t *testing.T) {
	root, document, _ := project(t)

	var (
		mu      sync.Mutex
		origins []string
		assets  []string
	)
	fn := func(asset, origin string) (string, error) {
		mu.Lock()
		defer mu.Unlock()
		origins = append(origins, origin)
		assets = append(assets, asset)
		ext := filepath.Ext(origin)
		return strings.TrimSuffix(origin, ext) + ".abc" + ext, nil
	}
	r := newTestRewriter(t, Config{ImagesPath: root, Func: fn}, nil)

	got := r.RewriteDeclaration(document, "background", "url(../img/logo.png?x=1), url(/img/logo.png)")
	want := "url(../img/logo.abc.png?x=1), url(/img/logo.abc.png)"
	if got != want {
		t.Errorf("RewriteDeclaration() = %q, want %q", got, want)
	}
	if len(origins) != 2 || origins[0] != "../img/logo.png" || origins[1] != "/img/logo.png" {
		t.Errorf("origin paths = %q", origins)
	}
	if len(assets) != 2 || assets[0] != filepath.Join(root, "img", "logo.png") || assets[1] != assets[0] {
		t.Errorf("asset paths = %q", assets)
	}

	// marker is a path, param name must not show up
	if strings.Contains(got, "?v") {
		t.Errorf("custom strategy added query: %q", got)
	}
}

func TestRewriter_Malformed(t *testing.T) {
	_, document, _ := project(t)
	sink := &collector{}
	r := newTestRewriter(t, Config{}, sink)

	value := "url(http://[::1)"
	if got := r.RewriteDeclaration(document, "background", value); got != value {
		t.Errorf("RewriteDeclaration() = %q, want unchanged", got)
	}
	if len(sink.diags) != 1 || sink.diags[0].Kind != DiagnosticKindMalformedToken {
		t.Errorf("diagnostics = %+v", sink.diags)
	}
}

func TestRewriter_Options(t *testing.T) {
	r := newTestRewriter(t, Config{ParamName: "h=", AdditionalProps: []string{"cursor"}}, nil)

	opts := r.Options()
	if opts.ParamName != "h=" || opts.Strategy.Kind != StrategyKindMtime {
		t.Errorf("Options() = %+v", opts)
	}
	if !opts.Rewritable("cursor") || !opts.Rewritable("src") {
		t.Errorf("Props() = %v", opts.Props())
	}
}

package bust

import (
	"regexp"
	"strings"

	"go.uber.org/zap"

	"cssbust/css"
)

// urlPattern matches url() tokens: optional opening quote, reference,
// optional closing quote.
var urlPattern = regexp.MustCompile(`url\((['"])?([^'")]+)(['"])?\)`)

// Document is a stylesheet tree which lets rewriter mutate at-rule
// parameters and declaration values in place.
type Document interface {
	WalkAtRules(name string, fn func(*css.AtRule))
	WalkDecls(fn func(*css.Declaration))
}

// Stats counts url() tokens seen by a rewriter.
type Stats struct {
	Tokens      int // all matched tokens
	Rewritten   int
	Ineligible  int // remote, data or protocol-relative references
	Unavailable int // missing assets and malformed tokens
}

// Add accumulates counters of o.
func (s *Stats) Add(o Stats) {
	s.Tokens += o.Tokens
	s.Rewritten += o.Rewritten
	s.Ineligible += o.Ineligible
	s.Unavailable += o.Unavailable
}

// Rewriter adds cachebuster markers to asset references. It holds no per
// document state and may be used for several documents concurrently.
type Rewriter struct {
	opts *Options
	gen  *Generator
	sink DiagnosticSink
	log  *zap.Logger
}

// NewRewriter creates rewriter. cache may be shared by rewriters of the same
// run, sink may be nil.
func NewRewriter(opts *Options, cache *Cache, sink DiagnosticSink, log *zap.Logger) *Rewriter {
	if log == nil {
		log = zap.NewNop()
	}
	return &Rewriter{
		opts: opts,
		gen:  NewGenerator(opts.Strategy, cache),
		sink: sink,
		log:  log.Named("bust"),
	}
}

// Options returns configuration rewriter was created with.
func (r *Rewriter) Options() *Options {
	return r.opts
}

// Process rewrites @import targets and declarations of a document, document
// is the stylesheet path used to resolve relative references.
func (r *Rewriter) Process(doc Document, document string) Stats {
	var total Stats

	doc.WalkAtRules("import", func(rule *css.AtRule) {
		params, st := r.rewriteImport(document, rule.Params)
		rule.Params = params
		total.Add(st)
	})
	doc.WalkDecls(func(decl *css.Declaration) {
		if !r.opts.Rewritable(decl.Prop) {
			return
		}
		value, st := r.rewriteDeclaration(document, decl.Value)
		decl.Value = value
		total.Add(st)
	})

	r.log.Debug("Document processed", zap.String("document", document),
		zap.Int("tokens", total.Tokens), zap.Int("rewritten", total.Rewritten),
		zap.Int("ineligible", total.Ineligible), zap.Int("unavailable", total.Unavailable))
	return total
}

// RewriteImport rewrites the first url() token of @import parameters. Only
// one import target per at-rule is supported, parameters without url() are
// returned unchanged.
func (r *Rewriter) RewriteImport(document, params string) string {
	out, _ := r.rewriteImport(document, params)
	return out
}

// RewriteDeclaration rewrites every eligible url() token in value when prop
// is one of rewritable properties.
func (r *Rewriter) RewriteDeclaration(document, prop, value string) string {
	if !r.opts.Rewritable(prop) {
		return value
	}
	out, _ := r.rewriteDeclaration(document, value)
	return out
}

func (r *Rewriter) rewriteImport(document, params string) (string, Stats) {
	var st Stats

	m := urlPattern.FindStringSubmatchIndex(params)
	if m == nil {
		return params, st
	}
	st.Tokens++

	opening, closing := group(params, m, 1), group(params, m, 3)
	if len(opening) == 0 {
		opening = `"`
	}
	if len(closing) == 0 {
		closing = opening
	}

	ref, ok := r.parse(document, group(params, m, 2))
	if !ok {
		st.Unavailable++
		return params, st
	}
	// imports skip eligibility filter, but there is no local file behind an
	// absolute URL
	if ref.Absolute {
		st.Ineligible++
		return params, st
	}
	if !r.bust(document, ref) {
		st.Unavailable++
		return params, st
	}
	st.Rewritten++

	var sb strings.Builder
	sb.WriteString(params[:m[0]])
	sb.WriteString("url(" + opening + ref.String() + closing + ")")
	sb.WriteString(params[m[1]:])
	return sb.String(), st
}

func (r *Rewriter) rewriteDeclaration(document, value string) (string, Stats) {
	var st Stats

	matches := urlPattern.FindAllStringSubmatchIndex(value, -1)
	if len(matches) == 0 {
		return value, st
	}

	var sb strings.Builder
	last := 0
	for _, m := range matches {
		sb.WriteString(value[last:m[0]])
		last = m[1]
		st.Tokens++

		ref, ok := r.parse(document, group(value, m, 2))
		if !ok {
			st.Unavailable++
			sb.WriteString(value[m[0]:m[1]])
			continue
		}
		if !IsEligible(ref) {
			st.Ineligible++
			sb.WriteString(value[m[0]:m[1]])
			continue
		}
		if !r.bust(document, ref) {
			st.Unavailable++
			sb.WriteString(value[m[0]:m[1]])
			continue
		}
		st.Rewritten++
		sb.WriteString("url(" + group(value, m, 1) + ref.String() + group(value, m, 3) + ")")
	}
	sb.WriteString(value[last:])
	return sb.String(), st
}

func (r *Rewriter) parse(document, raw string) (*Reference, bool) {
	ref, err := ParseReference(raw)
	if err != nil {
		r.report(Diagnostic{Kind: DiagnosticKindMalformedToken, Document: document, Reference: raw, Err: err})
		return nil, false
	}
	return ref, true
}

// bust resolves reference, generates marker and applies it. Reference is not
// modified when marker is not available.
func (r *Rewriter) bust(document string, ref *Reference) bool {
	asset := Resolve(ref, document, r.opts)
	marker, err := r.gen.Generate(asset, ref.RawPath())
	if err != nil {
		r.report(Diagnostic{Kind: DiagnosticKindUnresolvableAsset, Document: document, Reference: ref.Original, Path: asset, Err: err})
		return false
	}
	r.gen.Apply(ref, r.opts.ParamName, marker)
	return true
}

func (r *Rewriter) report(d Diagnostic) {
	switch d.Kind {
	case DiagnosticKindMalformedToken:
		r.log.Warn("Cachebuster: unable to parse reference",
			zap.String("document", d.Document), zap.String("url", d.Reference), zap.Error(d.Err))
	default:
		r.log.Warn("Cachebuster: file unreachable or not exists",
			zap.String("document", d.Document), zap.String("url", d.Reference), zap.String("path", d.Path), zap.Error(d.Err))
	}
	if r.sink != nil {
		r.sink.Report(d)
	}
}

func group(s string, m []int, n int) string {
	if m[2*n] < 0 {
		return ""
	}
	return s[m[2*n]:m[2*n+1]]
}

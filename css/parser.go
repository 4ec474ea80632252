package css

import (
	"bytes"
	"errors"
	"io"
	"strings"

	parse "github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
	"go.uber.org/zap"
)

// Parser splits stylesheets into documents of verbatim text, at-rules and
// declarations. It does not validate CSS.
type Parser struct {
	log *zap.Logger
}

// NewParser creates a new CSS parser.
func NewParser(log *zap.Logger) *Parser {
	if log == nil {
		log = zap.NewNop()
	}
	return &Parser{log: log.Named("css-parser")}
}

type token struct {
	tt   css.TokenType
	text string
}

// Parse parses CSS text into a Document.
// The optional source parameter identifies what's being parsed (for debug logging).
func (p *Parser) Parse(data []byte, source ...string) *Document {
	var src string
	if len(source) > 0 {
		src = source[0]
	}
	if len(src) > 0 {
		p.log.Debug("Parsing CSS", zap.String("source", src), zap.Int("bytes", len(data)))
	}

	doc := &Document{}
	b := &builder{doc: doc}

	lexer := css.NewLexer(parse.NewInput(bytes.NewReader(data)))

	var (
		stmt     []token
		depth    int // parentheses and brackets
		blocks   int // curly braces
		consumed int
	)
	for {
		tt, text := lexer.Next()
		if tt == css.ErrorToken {
			if err := lexer.Err(); err != nil && !errors.Is(err, io.EOF) {
				doc.Warnings = append(doc.Warnings, err.Error())
				p.log.Debug("CSS lexer error", zap.String("source", src), zap.Error(err))
			}
			break
		}
		consumed += len(text)
		t := token{tt: tt, text: string(text)}

		switch tt {
		case css.FunctionToken, css.LeftParenthesisToken, css.LeftBracketToken:
			depth++
		case css.RightParenthesisToken, css.RightBracketToken:
			if depth > 0 {
				depth--
			}
		case css.SemicolonToken, css.LeftBraceToken, css.RightBraceToken:
			if depth > 0 {
				// unbalanced or odd content in parentheses, keep collecting
				break
			}
			b.statement(stmt, tt, blocks > 0)
			stmt = stmt[:0]
			b.raw(t.text)
			if tt == css.LeftBraceToken {
				blocks++
			} else if tt == css.RightBraceToken && blocks > 0 {
				blocks--
			}
			continue
		}
		stmt = append(stmt, t)
	}
	b.statement(stmt, css.ErrorToken, blocks > 0)
	if consumed < len(data) {
		b.raw(string(data[consumed:]))
	}
	b.flush()

	// Never hand out a document which would not reproduce its source.
	if doc.String() != string(data) {
		p.log.Warn("Unable to tokenize stylesheet without losses, leaving it as is", zap.String("source", src))
		return &Document{
			segments: []segment{{raw: string(data)}},
			Warnings: append(doc.Warnings, "stylesheet could not be tokenized without losses"),
		}
	}

	p.log.Debug("Parsed CSS", zap.String("source", src), zap.Int("segments", len(doc.segments)))
	return doc
}

// builder accumulates verbatim text between mutable nodes.
type builder struct {
	doc     *Document
	pending strings.Builder
}

func (b *builder) raw(text string) {
	b.pending.WriteString(text)
}

func (b *builder) flush() {
	if b.pending.Len() > 0 {
		b.doc.segments = append(b.doc.segments, segment{raw: b.pending.String()})
		b.pending.Reset()
	}
}

func (b *builder) node(s segment) {
	b.flush()
	b.doc.segments = append(b.doc.segments, s)
}

// statement emits tokens collected before terminator term. Statement is an
// at-rule when it starts with at-keyword and a declaration when it is inside
// of a block, looks like "name:" and is not followed by a nested block.
func (b *builder) statement(stmt []token, term css.TokenType, inBlock bool) {
	i := 0
	for i < len(stmt) && isTrivia(stmt[i].tt) {
		b.raw(stmt[i].text)
		i++
	}
	body := stmt[i:]
	if len(body) == 0 {
		return
	}
	j := len(body)
	for j > 0 && isTrivia(body[j-1].tt) {
		j--
	}
	body, trailing := body[:j], body[j:]

	switch {
	case body[0].tt == css.AtKeywordToken:
		b.raw(body[0].text)
		k := 1
		for k < len(body) && isTrivia(body[k].tt) {
			b.raw(body[k].text)
			k++
		}
		b.node(segment{atRule: &AtRule{
			Name:   strings.TrimPrefix(body[0].text, "@"),
			Params: join(body[k:]),
		}})

	case inBlock && term != css.LeftBraceToken && colonAt(body) > 0:
		colon := colonAt(body)
		for _, t := range body[:colon+1] {
			b.raw(t.text)
		}
		k := colon + 1
		for k < len(body) && isTrivia(body[k].tt) {
			b.raw(body[k].text)
			k++
		}
		b.node(segment{decl: &Declaration{
			Prop:  body[0].text,
			Value: join(body[k:]),
		}})

	default:
		for _, t := range body {
			b.raw(t.text)
		}
	}

	for _, t := range trailing {
		b.raw(t.text)
	}
}

// colonAt returns position of the colon which follows property name or -1.
func colonAt(body []token) int {
	if body[0].tt != css.IdentToken && body[0].tt != css.CustomPropertyNameToken {
		return -1
	}
	for k := 1; k < len(body); k++ {
		switch {
		case body[k].tt == css.ColonToken:
			return k
		case !isTrivia(body[k].tt):
			return -1
		}
	}
	return -1
}

func isTrivia(tt css.TokenType) bool {
	switch tt {
	case css.WhitespaceToken, css.CommentToken, css.CDOToken, css.CDCToken:
		return true
	}
	return false
}

func join(tokens []token) string {
	var sb strings.Builder
	for _, t := range tokens {
		sb.WriteString(t.text)
	}
	return sb.String()
}

// Package css keeps stylesheet text as a lossless document. At-rules and
// declarations are available in source order (AtRules, Declarations) or
// through walks (WalkAtRules, WalkDecls); their Params and Value may be
// replaced and String/WriteTo produce the updated text.
package css

import (
	"io"
	"strings"
)

// AtRule is an at-rule of a stylesheet. Params is the text between the
// at-keyword and terminating ";" or "{" with surrounding whitespace excluded
// and may be replaced.
type AtRule struct {
	Name   string // without "@"
	Params string
}

// Declaration is a property declaration inside of a block. Value is the text
// after ":" up to ";" or "}" with surrounding whitespace excluded and may be
// replaced.
type Declaration struct {
	Prop  string
	Value string
}

// segment is a piece of serialized document: either verbatim text or
// mutable part of an at-rule or declaration.
type segment struct {
	raw    string
	atRule *AtRule
	decl   *Declaration
}

// Document is a lossless representation of a stylesheet: serializing an
// unmodified document produces exactly the bytes it was parsed from.
type Document struct {
	segments []segment
	Warnings []string
}

// WalkAtRules calls fn for every at-rule with the given name (case
// insensitive, without "@") in source order. Empty name matches all at-rules.
func (d *Document) WalkAtRules(name string, fn func(*AtRule)) {
	for _, s := range d.segments {
		if s.atRule == nil {
			continue
		}
		if len(name) == 0 || strings.EqualFold(s.atRule.Name, name) {
			fn(s.atRule)
		}
	}
}

// WalkDecls calls fn for every declaration in source order, including
// declarations nested in at-rule blocks.
func (d *Document) WalkDecls(fn func(*Declaration)) {
	for _, s := range d.segments {
		if s.decl != nil {
			fn(s.decl)
		}
	}
}

// AtRules returns all at-rules in source order.
func (d *Document) AtRules() []*AtRule {
	var rules []*AtRule
	d.WalkAtRules("", func(r *AtRule) { rules = append(rules, r) })
	return rules
}

// Declarations returns all declarations in source order.
func (d *Document) Declarations() []*Declaration {
	var decls []*Declaration
	d.WalkDecls(func(decl *Declaration) { decls = append(decls, decl) })
	return decls
}

// WriteTo writes the document to w, implementing io.WriterTo.
func (d *Document) WriteTo(w io.Writer) (int64, error) {
	var total int64
	for _, s := range d.segments {
		var text string
		switch {
		case s.atRule != nil:
			text = s.atRule.Params
		case s.decl != nil:
			text = s.decl.Value
		default:
			text = s.raw
		}
		n, err := io.WriteString(w, text)
		total += int64(n)
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// String returns the CSS text of the document.
func (d *Document) String() string {
	var sb strings.Builder
	d.WriteTo(&sb) //nolint:errcheck
	return sb.String()
}

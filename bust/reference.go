package bust

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// placeholderBase lets net/url split relative references into path, query
// and fragment without a real origin. It never appears in formatted output.
const (
	placeholderBase = "http://localhost"
	placeholderHost = "localhost"
)

var (
	schemePattern       = regexp.MustCompile(`^[a-zA-Z][a-zA-Z\d+\-.]*:`)
	rootRelativePattern = regexp.MustCompile(`^/([^/]|$)`)
)

// Reference is a parsed URL-like token which remembers enough of its original
// shape to be formatted back after mutation.
type Reference struct {
	URL          *url.URL
	Absolute     bool   // has URI scheme
	RootRelative bool   // starts with a single "/"
	Original     string // verbatim source text

	dirty bool
}

// ParseReference classifies and parses raw reference text.
func ParseReference(text string) (*Reference, error) {
	ref := &Reference{
		Absolute:     schemePattern.MatchString(text),
		RootRelative: rootRelativePattern.MatchString(text),
		Original:     text,
	}

	var (
		u   *url.URL
		err error
	)
	switch {
	case ref.Absolute:
		ref.RootRelative = false
		u, err = url.Parse(text)
	case ref.RootRelative:
		u, err = url.Parse(placeholderBase + text)
	default:
		u, err = url.Parse(placeholderBase + "/" + text)
	}
	if err != nil {
		return nil, fmt.Errorf("unable to parse reference %q: %w", text, err)
	}
	ref.URL = u
	return ref, nil
}

// Local reports whether a relative reference stayed on the placeholder origin.
// Absolute references are never local.
func (r *Reference) Local() bool {
	return !r.Absolute && r.URL.Scheme == "http" && r.URL.Host == placeholderHost
}

// Path returns decoded path component as it appears in the reference:
// document-relative references have no leading separator.
func (r *Reference) Path() string {
	if r.Absolute || r.RootRelative {
		return r.URL.Path
	}
	return strings.TrimPrefix(r.URL.Path, "/")
}

// RawPath is like Path but keeps percent-escapes as written.
func (r *Reference) RawPath() string {
	p := r.URL.EscapedPath()
	if r.Absolute || r.RootRelative {
		return p
	}
	return strings.TrimPrefix(p, "/")
}

// SetPath replaces the path component.
func (r *Reference) SetPath(p string) {
	if !r.Absolute && !strings.HasPrefix(p, "/") {
		// keep placeholder separator, String strips exactly one byte
		p = "/" + p
	}
	r.URL.Path = p
	r.URL.RawPath = ""
	r.dirty = true
}

// AppendQuery adds "param+value" to the query string, joining with "&" when
// a non-empty query is already present.
func (r *Reference) AppendQuery(param, value string) {
	if len(r.URL.RawQuery) > 0 {
		r.URL.RawQuery = r.URL.RawQuery + "&" + param + value
	} else {
		r.URL.RawQuery = param + value
	}
	r.URL.ForceQuery = false
	r.dirty = true
}

// String formats reference back to text preserving its original shape.
func (r *Reference) String() string {
	if !r.dirty {
		return r.Original
	}
	if r.Absolute {
		return r.URL.String()
	}

	var sb strings.Builder
	sb.WriteString(r.URL.EscapedPath())
	if r.URL.ForceQuery || r.URL.RawQuery != "" {
		sb.WriteByte('?')
		sb.WriteString(r.URL.RawQuery)
	}
	if r.URL.Fragment != "" || r.URL.RawFragment != "" {
		sb.WriteByte('#')
		sb.WriteString(r.URL.EscapedFragment())
	}
	out := sb.String()
	if !r.RootRelative {
		out = strings.TrimPrefix(out, "/")
	}
	return out
}

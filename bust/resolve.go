package bust

import (
	"path/filepath"
)

// Resolve maps a relative reference to a filesystem path. Root-relative
// references are looked up under images base directory, document-relative
// ones under css base directory when configured or next to the document
// itself. Nothing is checked for existence here.
func Resolve(ref *Reference, document string, opts *Options) string {
	// net/url already percent-decoded the path
	p := filepath.FromSlash(ref.Path())

	if ref.RootRelative {
		return filepath.Join(opts.ImagesBaseDir, p)
	}
	base := opts.CSSBaseDir
	if len(base) == 0 {
		base = filepath.Dir(document)
	}
	return filepath.Join(base, p)
}

package bust

import (
	"strings"
)

// IsEligible reports whether reference points to a local, not inlined file.
// Absolute and protocol-relative URLs as well as base64 data are left alone.
func IsEligible(ref *Reference) bool {
	if ref.Absolute || !ref.Local() {
		return false
	}
	p := ref.Path()
	switch {
	case strings.HasPrefix(p, "//"):
		return false
	case strings.Contains(p, ";base64"):
		return false
	}
	return true
}

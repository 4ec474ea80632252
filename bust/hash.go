package bust

import (
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"fmt"
	"hash"
	"slices"
	"strings"

	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/blake2s"
	"golang.org/x/crypto/sha3"
)

var hashes = map[string]func() hash.Hash{
	"md5":        md5.New,
	"sha1":       sha1.New,
	"sha224":     sha256.New224,
	"sha256":     sha256.New,
	"sha384":     sha512.New384,
	"sha512":     sha512.New,
	"sha512-224": sha512.New512_224,
	"sha512-256": sha512.New512_256,
	"sha3-224":   func() hash.Hash { return sha3.New224() },
	"sha3-256":   func() hash.Hash { return sha3.New256() },
	"sha3-384":   func() hash.Hash { return sha3.New384() },
	"sha3-512":   func() hash.Hash { return sha3.New512() },
	"blake2b-256": func() hash.Hash {
		h, _ := blake2b.New256(nil) // unkeyed, cannot fail
		return h
	},
	"blake2b-512": func() hash.Hash {
		h, _ := blake2b.New512(nil)
		return h
	},
	"blake2s-256": func() hash.Hash {
		h, _ := blake2s.New256(nil)
		return h
	},
}

// NormalizeAlgorithm maps names like "SHA-256" or "sha_256" to registered
// algorithm names ("sha256"). Unknown names are returned lowercased.
func NormalizeAlgorithm(name string) string {
	n := strings.ToLower(strings.TrimSpace(name))
	if _, ok := hashes[n]; ok {
		return n
	}
	alt := strings.NewReplacer("_", "-").Replace(n)
	if _, ok := hashes[alt]; ok {
		return alt
	}
	// sha-256 -> sha256, but sha3-256 must keep its dash
	if strings.HasPrefix(alt, "sha-") {
		if _, ok := hashes["sha"+alt[4:]]; ok {
			return "sha" + alt[4:]
		}
	}
	return n
}

// SupportedAlgorithms lists hash algorithm names accepted by checksum strategy.
func SupportedAlgorithms() []string {
	names := make([]string, 0, len(hashes))
	for n := range hashes {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}

func newHash(algorithm string) (hash.Hash, error) {
	fn, ok := hashes[algorithm]
	if !ok {
		return nil, fmt.Errorf("unsupported hash algorithm %q", algorithm)
	}
	return fn(), nil
}

package bust

import (
	"errors"
	"fmt"
	"os"
	"strconv"
)

// errNotRegular is reported when reference resolves to a directory or device.
var errNotRegular = errors.New("not a regular file")

// Generator produces cachebuster values for resolved asset paths.
type Generator struct {
	strategy Strategy
	cache    *Cache
	stat     func(string) (os.FileInfo, error)
}

// NewGenerator returns generator for the given strategy. Checksums are
// memoized in cache, which may be shared between generators.
func NewGenerator(strategy Strategy, cache *Cache) *Generator {
	if cache == nil {
		cache = NewCache()
	}
	return &Generator{strategy: strategy, cache: cache, stat: os.Stat}
}

// Generate returns cachebuster marker for asset. When asset cannot be used
// marker is empty and error explains why. For custom strategy the marker is
// the replacement path.
func (g *Generator) Generate(assetPath, origin string) (string, error) {
	if g.strategy.Kind == StrategyKindCustom {
		marker, err := g.strategy.Func(assetPath, origin)
		if err != nil {
			return "", err
		}
		if len(marker) == 0 {
			return "", errors.New("custom function returned empty path")
		}
		return marker, nil
	}

	fi, err := g.stat(assetPath)
	if err != nil {
		return "", err
	}
	if !fi.Mode().IsRegular() {
		return "", errNotRegular
	}

	switch g.strategy.Kind {
	case StrategyKindChecksum:
		return g.cache.Checksum(assetPath, g.strategy.Algorithm)
	case StrategyKindMtime:
		return strconv.FormatInt(fi.ModTime().UnixMilli(), 16), nil
	default:
		// NewOptions never lets this through
		return "", fmt.Errorf("unexpected strategy %s", g.strategy.Kind)
	}
}

// Apply puts marker into reference: custom strategy replaces path, others
// append "param+marker" to query string.
func (g *Generator) Apply(ref *Reference, param, marker string) {
	if g.strategy.Kind == StrategyKindCustom {
		ref.SetPath(marker)
		return
	}
	ref.AppendQuery(param, marker)
}

package process

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"cssbust/state"
)

// buildOutputPath returns where processed stylesheet is written. src is
// absolute path of the stylesheet, rel is its path relative to the processed
// directory (just the file name when single file was requested). Empty dst
// means stylesheet is rewritten in place.
func buildOutputPath(src, rel, dst string, env *state.LocalEnv) string {
	switch {
	case len(dst) == 0:
		return src
	case env.NoDirs:
		return filepath.Join(dst, filepath.Base(rel))
	default:
		return filepath.Join(dst, rel)
	}
}

// assignOutputs fills in output paths and drops documents which would write
// to already taken destination, which may happen when directory structure
// is not kept.
func assignOutputs(docs []document, dst string, env *state.LocalEnv, log *zap.Logger) []document {
	taken := make(map[string]string, len(docs))
	out := docs[:0]
	for _, d := range docs {
		d.output = buildOutputPath(d.path, d.rel, dst, env)
		if prev, ok := taken[d.output]; ok {
			log.Warn("Skipping stylesheet, destination is already used",
				zap.String("file", d.path), zap.String("to", d.output), zap.String("by", prev))
			continue
		}
		taken[d.output] = d.path
		out = append(out, d)
	}
	return out
}

// prepareOutput checks that output may be written, creating its directory
// when necessary.
func prepareOutput(outputName string, overwrite bool, log *zap.Logger) error {
	_, err := os.Stat(outputName)
	switch {
	case err == nil:
		if !overwrite {
			return fmt.Errorf("output file already exists: %s", outputName)
		}
		log.Debug("Overwriting existing file", zap.String("file", outputName))
		return nil
	case !errors.Is(err, fs.ErrNotExist):
		return err
	}
	if err := os.MkdirAll(filepath.Dir(outputName), 0755); err != nil {
		return fmt.Errorf("unable to create output directory: %w", err)
	}
	return nil
}

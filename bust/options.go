package bust

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// DefaultSupportedProps lists declarations rewritten when no explicit list
// was configured.
var DefaultSupportedProps = []string{
	"background",
	"background-image",
	"border-image",
	"behavior",
	"src",
}

const (
	DefaultParamName     = "v"
	DefaultHashAlgorithm = "md5"
)

// CustomFunc produces replacement path for an asset. assetPath is the
// resolved filesystem path, originPath is the reference path as written in
// the stylesheet.
type CustomFunc func(assetPath, originPath string) (string, error)

// Config is a caller facing set of options, see NewOptions for defaults.
type Config struct {
	ImagesPath      string // base for root-relative references, relative to working directory
	CSSPath         string // overrides directory of every document when not empty
	Type            string // "mtime" or "checksum", ignored when Func is set
	Func            CustomFunc
	ParamName       string
	HashAlgorithm   string
	SupportedProps  []string // replaces DefaultSupportedProps when not nil
	AdditionalProps []string
}

// Strategy selects how cachebuster value is produced. Algorithm is only set
// for checksum, Func only for custom.
type Strategy struct {
	Kind      StrategyKind
	Algorithm string
	Func      CustomFunc
}

// Options is the validated immutable configuration of a rewrite pass.
type Options struct {
	ImagesBaseDir string
	CSSBaseDir    string
	Strategy      Strategy
	ParamName     string
	HashAlgorithm string

	props map[string]struct{}
}

// NewOptions validates cfg and fills in defaults. All errors wrap
// ErrConfiguration.
func NewOptions(cfg Config) (*Options, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("unable to get working directory: %w", err)
	}

	opts := &Options{
		ImagesBaseDir: wd,
		ParamName:     cfg.ParamName,
		HashAlgorithm: NormalizeAlgorithm(cfg.HashAlgorithm),
	}
	if len(cfg.ImagesPath) > 0 {
		opts.ImagesBaseDir = absFrom(wd, cfg.ImagesPath)
	}
	if len(cfg.CSSPath) > 0 {
		opts.CSSBaseDir = absFrom(wd, cfg.CSSPath)
	}
	if len(opts.ParamName) == 0 {
		opts.ParamName = DefaultParamName
	}
	if len(opts.HashAlgorithm) == 0 {
		opts.HashAlgorithm = DefaultHashAlgorithm
	}
	if _, ok := hashes[opts.HashAlgorithm]; !ok {
		return nil, &ConfigError{Field: "hashAlgorithm", Value: cfg.HashAlgorithm,
			Reason: "supported algorithms are " + strings.Join(SupportedAlgorithms(), ", ")}
	}

	if cfg.Func != nil {
		opts.Strategy = Strategy{Kind: StrategyKindCustom, Func: cfg.Func}
	} else {
		kind := StrategyKindMtime
		if len(cfg.Type) > 0 {
			if kind, err = ParseStrategyKind(strings.ToLower(cfg.Type)); err != nil {
				return nil, &ConfigError{Field: "type", Value: cfg.Type, Reason: "expected mtime, checksum or a function"}
			}
		}
		switch kind {
		case StrategyKindCustom:
			return nil, &ConfigError{Field: "type", Value: cfg.Type, Reason: "custom strategy requires a function"}
		case StrategyKindChecksum:
			opts.Strategy = Strategy{Kind: kind, Algorithm: opts.HashAlgorithm}
		default:
			opts.Strategy = Strategy{Kind: kind}
		}
	}

	supported := cfg.SupportedProps
	if supported == nil {
		supported = DefaultSupportedProps
	}
	opts.props = make(map[string]struct{}, len(supported)+len(cfg.AdditionalProps))
	for _, p := range slices.Concat(supported, cfg.AdditionalProps) {
		if p = strings.TrimSpace(p); len(p) > 0 {
			opts.props[p] = struct{}{}
		}
	}
	return opts, nil
}

// Rewritable reports whether declarations of property prop are candidates
// for rewriting.
func (o *Options) Rewritable(prop string) bool {
	_, ok := o.props[prop]
	return ok
}

// Props returns sorted list of rewritable properties.
func (o *Options) Props() []string {
	out := make([]string, 0, len(o.props))
	for p := range o.props {
		out = append(out, p)
	}
	slices.Sort(out)
	return out
}

func absFrom(wd, p string) string {
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(wd, p)
}

package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"slices"
	"strings"

	validator "github.com/go-playground/validator/v10"
	yaml "gopkg.in/yaml.v3"

	"github.com/rupor-github/gencfg"

	"cssbust/bust"
)

//go:embed config.yaml.tmpl
var ConfigTmpl []byte

type (
	TemplateFieldName string

	CachebusterConfig struct {
		ImagesPath      string       `yaml:"images_path"`
		CSSPath         string       `yaml:"css_path"`
		Type            StrategyType `yaml:"type"`
		ParamName       string       `yaml:"param_name" validate:"required"`
		HashAlgorithm   string       `yaml:"hash_algorithm" validate:"required"`
		PathTemplate    string       `yaml:"path_template"`
		SupportedProps  []string     `yaml:"supported_props" validate:"dive,required"`
		AdditionalProps []string     `yaml:"additional_props" validate:"dive,required"`
	}

	ProcessingConfig struct {
		Jobs       int      `yaml:"jobs" validate:"gte=0"`
		Extensions []string `yaml:"extensions" validate:"min=1,dive,startswith=."`
		Overwrite  bool     `yaml:"overwrite"`
		NoDirs     bool     `yaml:"nodirs"`
	}

	Config struct {
		Version     int               `yaml:"version" validate:"eq=1"`
		Cachebuster CachebusterConfig `yaml:"cachebuster"`
		Processing  ProcessingConfig  `yaml:"processing"`
		Logging     LoggingConfig     `yaml:"logging"`
		Reporting   ReporterConfig    `yaml:"reporting"`
	}
)

const (
	// NOTE: must match yaml field name above, value is a template expanded
	// for every asset and must be left alone by configuration processing
	PathTemplateFieldName TemplateFieldName = "path_template"
)

var requiredOptions = append([]func(*gencfg.ProcessingOptions){},
	gencfg.WithDoNotExpandField(string(PathTemplateFieldName)),
)

// additionalChecks covers what cannot be expressed with validation tags.
func additionalChecks(sl validator.StructLevel) {
	cfg, ok := sl.Current().Interface().(Config)
	if !ok {
		return
	}
	cb := cfg.Cachebuster
	if !slices.Contains(bust.SupportedAlgorithms(), bust.NormalizeAlgorithm(cb.HashAlgorithm)) {
		sl.ReportError(cb.HashAlgorithm, "Cachebuster.HashAlgorithm", "HashAlgorithm", "hash_algorithm", strings.Join(bust.SupportedAlgorithms(), " "))
	}
	if cb.Type == StrategyTypeTemplate && len(strings.TrimSpace(cb.PathTemplate)) == 0 {
		sl.ReportError(cb.PathTemplate, "Cachebuster.PathTemplate", "PathTemplate", "required_for_template", "")
	}
}

func unmarshalConfig(data []byte, cfg *Config, process bool) (*Config, error) {
	// We want to use only fields we defined so we cannot use yaml.Unmarshal
	// directly here
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode configuration data: %w", err)
	}
	if process {
		if err := gencfg.Sanitize(cfg); err != nil {
			return nil, err
		}
		if err := gencfg.Validate(cfg, gencfg.WithAdditionalChecks(additionalChecks)); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// LoadConfiguration reads the configuration from the file at the given path,
// superimposes its values on top of expanded configuration template to provide
// sane defaults and performs validation.
func LoadConfiguration(path string, options ...func(*gencfg.ProcessingOptions)) (*Config, error) {
	haveFile := len(path) > 0

	data, err := gencfg.Process(ConfigTmpl, append(requiredOptions, options...)...)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration template: %w", err)
	}
	cfg, err := unmarshalConfig(data, &Config{}, !haveFile)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration template: %w", err)
	}
	if !haveFile {
		return cfg, nil
	}

	data, err = os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	cfg, err = unmarshalConfig(data, cfg, haveFile)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration file: %w", err)
	}
	return cfg, nil
}

// Prepare generates configuration file from template and returns it as a byte
// slice.
func Prepare() ([]byte, error) {
	return gencfg.Process(ConfigTmpl, requiredOptions...)
}

func Dump(cfg *Config) ([]byte, error) {
	data, err := yaml.Marshal(*cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config to yaml: %v", err)
	}
	return data, nil
}

// BustConfig converts cachebuster section to engine configuration. For
// template strategy caller must set Func.
func (c *CachebusterConfig) BustConfig() bust.Config {
	return bust.Config{
		ImagesPath:      c.ImagesPath,
		CSSPath:         c.CSSPath,
		Type:            c.Type.Bust(),
		ParamName:       c.ParamName,
		HashAlgorithm:   c.HashAlgorithm,
		SupportedProps:  c.SupportedProps,
		AdditionalProps: c.AdditionalProps,
	}
}

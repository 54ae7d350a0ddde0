package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"time"

	yaml "gopkg.in/yaml.v3"

	"github.com/rupor-github/gencfg"

	"apx/common"
)

//go:embed config.yaml.tmpl
var ConfigTmpl []byte

type (
	ResolverConfig struct {
		FindExternal  bool                 `yaml:"find_external"`
		ModuleName    string               `yaml:"module_name" validate:"required"`
		ModulePath    string               `yaml:"module_path"`
		Policy        common.ResolvePolicy `yaml:"policy" validate:"gte=0"`
		GlobalPrefix  string               `yaml:"global_prefix"`
		PrefixCommand []string             `yaml:"prefix_command" validate:"min=1,dive,required"`
	}

	PrefixerConfig struct {
		Node     string        `yaml:"node" validate:"required"`
		Browsers []string      `yaml:"browsers" validate:"dive,required"`
		Ignore   []string      `yaml:"ignore" validate:"dive,required"`
		Timeout  time.Duration `yaml:"timeout" validate:"gte=0"`
	}

	Config struct {
		Version   int            `yaml:"version" validate:"eq=1"`
		Resolver  ResolverConfig `yaml:"resolver"`
		Prefixer  PrefixerConfig `yaml:"prefixer"`
		Logging   LoggingConfig  `yaml:"logging"`
		Reporting ReporterConfig `yaml:"reporting"`
	}
)

func unmarshalConfig(data []byte, cfg *Config, process bool) (*Config, error) {
	// only fields we know about are allowed
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode configuration data: %w", err)
	}
	if process {
		if err := gencfg.Sanitize(cfg); err != nil {
			return nil, err
		}
		if err := gencfg.Validate(cfg); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// LoadConfiguration expands embedded configuration template to get defaults
// and puts values from the file at the given path (if any) on top of them.
// Result is sanitized and validated.
func LoadConfiguration(path string, options ...func(*gencfg.ProcessingOptions)) (*Config, error) {
	haveFile := len(path) > 0

	data, err := gencfg.Process(ConfigTmpl, options...)
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
	return gencfg.Process(ConfigTmpl)
}

func Dump(cfg *Config) ([]byte, error) {
	data, err := yaml.Marshal(*cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config to yaml: %v", err)
	}
	return data, nil
}

package config

import (
	"errors"
	"fmt"
	"go/token"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultFile is the config file looked up in the working directory.
const DefaultFile = ".pgenum.yaml"

// Defaults applied to missing fields.
const (
	DefaultVersion  = "1"
	DefaultPattern  = "."
	DefaultFilename = "pgenum_gen.go"
	DefaultRuntime  = "pgenum-generator/pgenum"
)

// Config is the project configuration.
type Config struct {
	Version  string        `yaml:"version"`
	Patterns StringOrArray `yaml:"patterns,omitempty"`
	Tags     StringOrArray `yaml:"tags,omitempty"`
	Runtime  string        `yaml:"runtime,omitempty"`
	Output   Output        `yaml:"output,omitempty"`
}

// Output controls where generated code goes. An empty Dir selects
// per-package mode: one file next to the sources of every package.
type Output struct {
	Dir      string `yaml:"dir,omitempty"`
	Package  string `yaml:"package,omitempty"`
	Filename string `yaml:"filename,omitempty"`
}

// Consolidated reports whether all registrations go into a single file.
func (o Output) Consolidated() bool {
	return o.Dir != ""
}

// StringOrArray is a list of strings that may be written as a single
// scalar in YAML.
type StringOrArray []string

// UnmarshalYAML accepts either a single string or an array of strings.
func (s *StringOrArray) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		var str string
		if err := node.Decode(&str); err != nil {
			return err
		}

		if str != "" {
			*s = StringOrArray{str}
		} else {
			*s = StringOrArray{}
		}

		return nil

	case yaml.SequenceNode:
		var arr []string
		if err := node.Decode(&arr); err != nil {
			return err
		}

		*s = arr

		return nil

	default:
		return fmt.Errorf("line %d: expected string or list of strings", node.Line)
	}
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)

	return cfg
}

// LoadFile loads and parses a config file from the given path.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return cfg, nil
}

// Discover loads DefaultFile from dir, falling back to Default when the file
// does not exist.
func Discover(dir string) (*Config, error) {
	path := filepath.Join(dir, DefaultFile)

	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}

	return LoadFile(path)
}

// Parse parses YAML data into a Config and validates it.
func Parse(data []byte) (*Config, error) {
	var cfg Config

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config YAML: %w", err)
	}

	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// applyDefaults fills in default values for optional fields.
func applyDefaults(cfg *Config) {
	if cfg.Version == "" {
		cfg.Version = DefaultVersion
	}

	if len(cfg.Patterns) == 0 {
		cfg.Patterns = StringOrArray{DefaultPattern}
	}

	if cfg.Runtime == "" {
		cfg.Runtime = DefaultRuntime
	}

	if cfg.Output.Filename == "" {
		cfg.Output.Filename = DefaultFilename
	}
}

// Validate reports every problem found in the configuration.
func (c *Config) Validate() error {
	var errs []error

	if c.Version != DefaultVersion {
		errs = append(errs, fmt.Errorf("unsupported config version %q", c.Version))
	}

	if f := c.Output.Filename; !strings.HasSuffix(f, ".go") || strings.HasSuffix(f, "_test.go") ||
		filepath.Base(f) != f {
		errs = append(errs, fmt.Errorf("output filename %q must be a plain non-test .go file name", f))
	}

	if p := c.Output.Package; p != "" && (!token.IsIdentifier(p) || p == "_") {
		errs = append(errs, fmt.Errorf("output package %q is not a valid package name", p))
	}

	if c.Output.Package != "" && !c.Output.Consolidated() {
		errs = append(errs, errors.New("output package requires output dir"))
	}

	for _, p := range c.Patterns {
		if strings.TrimSpace(p) == "" {
			errs = append(errs, errors.New("patterns must not contain empty entries"))
			break
		}
	}

	return errors.Join(errs...)
}

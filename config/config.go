// Package config loads toolchain settings from a mojom.toml file.
//
// A minimal file:
//
//	dialect = "legacy"
//	import_paths = ["third_party/mojo", "."]
//	log_level = "debug"
//
//	[output]
//	format = "yaml"
//	color = "never"
package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"go.uber.org/zap/zapcore"

	"github.com/wippyai/mojom/errors"
	"github.com/wippyai/mojom/idl"
)

// FileName is the configuration file looked up in the working directory.
const FileName = "mojom.toml"

// Output format names.
const (
	FormatText = "text"
	FormatYAML = "yaml"
)

// Color modes.
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

type Config struct {
	Dialect     string   `toml:"dialect"`
	ImportPaths []string `toml:"import_paths"`
	LogLevel    string   `toml:"log_level"`
	Output      Output   `toml:"output"`
}

type Output struct {
	Format string `toml:"format"`
	Color  string `toml:"color"`
}

// Default returns the settings used when no file is present.
func Default() Config {
	return Config{
		Dialect:     "modern",
		ImportPaths: []string{"."},
		LogLevel:    "warn",
		Output: Output{
			Format: FormatText,
			Color:  ColorAuto,
		},
	}
}

// Load reads path over the defaults. Keys missing from the file keep their
// default values; unknown keys are rejected.
func Load(path string) (Config, error) {
	cfg := Default()
	if err := loadToml(path, &cfg); err != nil {
		return Config{}, err
	}
	cfg.normalize(filepath.Dir(path))
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Find loads FileName from dir when it exists and returns the defaults
// otherwise.
func Find(dir string) (Config, error) {
	path := filepath.Join(dir, FileName)
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return Config{}, loadErr(path, err)
	}
	return Load(path)
}

func loadToml(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return loadErr(path, err)
	}
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(out); err != nil {
		return errors.New(errors.PhaseConfig, errors.KindSyntax).
			Detail("config parse failed (%s)", path).
			Cause(err).
			Build()
	}
	return nil
}

func loadErr(path string, err error) error {
	return errors.New(errors.PhaseConfig, errors.KindNotFound).
		Detail("config load failed (%s)", path).
		Cause(err).
		Build()
}

// normalize lowercases enumerations and resolves relative import paths
// against the directory holding the file.
func (c *Config) normalize(base string) {
	c.Dialect = strings.ToLower(strings.TrimSpace(c.Dialect))
	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
	c.Output.Format = strings.ToLower(strings.TrimSpace(c.Output.Format))
	c.Output.Color = strings.ToLower(strings.TrimSpace(c.Output.Color))
	for i, p := range c.ImportPaths {
		if !filepath.IsAbs(p) {
			c.ImportPaths[i] = filepath.Join(base, p)
		}
	}
}

// Validate rejects unknown enumeration values.
func (c Config) Validate() error {
	if _, err := idl.ParseDialectName(c.Dialect); err != nil {
		return invalid("dialect", c.Dialect)
	}
	if _, err := c.Level(); err != nil {
		return invalid("log_level", c.LogLevel)
	}
	switch c.Output.Format {
	case FormatText, FormatYAML:
	default:
		return invalid("output.format", c.Output.Format)
	}
	switch c.Output.Color {
	case ColorAuto, ColorAlways, ColorNever:
	default:
		return invalid("output.color", c.Output.Color)
	}
	for i, p := range c.ImportPaths {
		if strings.TrimSpace(p) == "" {
			return errors.New(errors.PhaseConfig, errors.KindInvalidInput).
				Path("import_paths").
				Detail("entry %d is empty", i).
				Build()
		}
	}
	return nil
}

func invalid(key, value string) error {
	return errors.New(errors.PhaseConfig, errors.KindInvalidInput).
		Path(key).
		Value(value).
		Detail("unknown value %q", value).
		Build()
}

// ParsedDialect returns the configured grammar dialect.
func (c Config) ParsedDialect() idl.Dialect {
	d, _ := idl.ParseDialectName(c.Dialect)
	return d
}

// Level returns the configured log level.
func (c Config) Level() (zapcore.Level, error) {
	if c.LogLevel == "" {
		return zapcore.WarnLevel, nil
	}
	return zapcore.ParseLevel(c.LogLevel)
}

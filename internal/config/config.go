package config

import (
	"errors"
	"fmt"
	"go/token"
	"io"
	"os"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/xcono/oanda/internal/batch"
	"github.com/xcono/oanda/internal/parse"
)

// EnvPrefix prefixes every environment variable read by Load
const EnvPrefix = "OANDA_DOCGEN_"

// Config holds the settings of a docgen run
type Config struct {
	Input    string        `yaml:"input" env:"INPUT"`
	Output   string        `yaml:"output" env:"OUTPUT"`
	Package  string        `yaml:"package" env:"PACKAGE"`
	Workers  int           `yaml:"workers" env:"WORKERS"`
	Timeout  time.Duration `yaml:"timeout" env:"TIMEOUT"`
	Strict   bool          `yaml:"strict" env:"STRICT"`
	Go       bool          `yaml:"go" env:"GO"`
	OpenAPI  bool          `yaml:"openapi" env:"OPENAPI"`
	Bundle   bool          `yaml:"bundle" env:"BUNDLE"`
	Report   bool          `yaml:"report" env:"REPORT"`
	Samples  string        `yaml:"samples" env:"SAMPLES"`
	LogLevel string        `yaml:"log_level" env:"LOG_LEVEL"`

	Parse   parse.Options        `yaml:"parse"`
	Scanner batch.ScannerOptions `yaml:"scanner"`
}

// Default returns the configuration used when nothing else is set
func Default() *Config {
	return &Config{
		Output:   "gen",
		Package:  "v20",
		Workers:  4,
		Timeout:  30 * time.Second,
		Go:       true,
		OpenAPI:  true,
		Bundle:   true,
		Report:   true,
		LogLevel: "info",
		Parse:    parse.DefaultOptions(),
		Scanner:  *batch.DefaultScannerOptions(),
	}
}

// BindFlags registers a flag for every scalar setting, bound to c
func (c *Config) BindFlags(fs *pflag.FlagSet) {
	fs.StringVarP(&c.Output, "output", "o", c.Output, "output directory")
	fs.StringVarP(&c.Package, "package", "p", c.Package, "package name of the generated Go code")
	fs.IntVarP(&c.Workers, "workers", "w", c.Workers, "number of pages parsed concurrently")
	fs.DurationVar(&c.Timeout, "timeout", c.Timeout, "parse timeout per page")
	fs.BoolVar(&c.Strict, "strict", c.Strict, "fail a page on its first malformed definition")
	fs.BoolVar(&c.Go, "go", c.Go, "generate Go types")
	fs.BoolVar(&c.OpenAPI, "openapi", c.OpenAPI, "generate an OpenAPI document per page")
	fs.BoolVar(&c.Bundle, "bundle", c.Bundle, "bundle every page into one OpenAPI document")
	fs.BoolVar(&c.Report, "report", c.Report, "write batch_report.json")
	fs.StringVar(&c.Samples, "samples", c.Samples, "directory of <Definition>.json payloads to validate")
	fs.StringVar(&c.LogLevel, "log-level", c.LogLevel, "log level (debug, info, warn, error)")
}

// Load applies the YAML file at path (if any), then the environment, then
// the flags changed on fs. Flags must have been bound with BindFlags.
func (c *Config) Load(path string, fs *pflag.FlagSet) error {
	changed := make(map[string]string)
	if fs != nil {
		fs.Visit(func(f *pflag.Flag) {
			changed[f.Name] = f.Value.String()
		})
	}

	if path != "" {
		if err := c.loadFile(path); err != nil {
			return err
		}
	}

	if err := env.Parse(c, env.Options{Prefix: EnvPrefix}); err != nil {
		return fmt.Errorf("failed to parse environment: %w", err)
	}

	for name, value := range changed {
		if err := fs.Set(name, value); err != nil {
			return fmt.Errorf("failed to apply flag --%s: %w", name, err)
		}
	}

	return c.Validate()
}

func (c *Config) loadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open config: %w", err)
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return nil
}

// Validate reports the first invalid setting
func (c *Config) Validate() error {
	switch {
	case c.Workers <= 0:
		return fmt.Errorf("workers must be positive, got %d", c.Workers)
	case c.Timeout <= 0:
		return fmt.Errorf("timeout must be positive, got %s", c.Timeout)
	case !token.IsIdentifier(c.Package):
		return fmt.Errorf("invalid package name %q", c.Package)
	}
	if _, err := zap.ParseAtomicLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid log level %q: %w", c.LogLevel, err)
	}
	return nil
}

// BatchOptions converts the configuration for the batch processor
func (c *Config) BatchOptions(logger *zap.Logger) *batch.BatchOptions {
	parseOptions := c.Parse
	parseOptions.Strict = c.Strict || c.Parse.Strict
	scanner := c.Scanner

	return &batch.BatchOptions{
		MaxWorkers:      c.Workers,
		OutputDir:       c.Output,
		Package:         c.Package,
		GenerateGo:      c.Go,
		GenerateOpenAPI: c.OpenAPI,
		Bundle:          c.Bundle,
		SamplesDir:      c.Samples,
		GenerateReport:  c.Report,
		Timeout:         c.Timeout,
		Parse:           parseOptions,
		Scanner:         &scanner,
		Logger:          logger,
	}
}

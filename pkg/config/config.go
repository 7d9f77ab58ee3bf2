// Package config loads awsmp settings from flags, the environment and
// ~/.awsmp/config.yaml.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/scttfrdmn/awsmp/pkg/observability"
	"github.com/scttfrdmn/awsmp/pkg/output"
	"github.com/scttfrdmn/awsmp/pkg/regions"
)

const (
	configFileName = ".awsmp/config.yaml"

	defaultProfileFilter = ".*"
	defaultOutput        = "table"
)

// Config represents the awsmp configuration
type Config struct {
	Workers       int    `yaml:"workers"`
	UseProcesses  bool   `yaml:"use_processes"`
	ShowProgress  bool   `yaml:"show_progress"`
	ProfileFilter string `yaml:"profile_filter"`
	// Regions is a list of region names, or a string ("none" selects nothing).
	Regions       any                  `yaml:"regions"`
	Output        string               `yaml:"output"`
	Journal       string               `yaml:"journal"`
	Language      string               `yaml:"language"`
	Observability observability.Config `yaml:"observability"`

	selector regions.Selector
}

// Overrides carries values given on the command line. Nil fields were not set.
type Overrides struct {
	Workers       *int
	UseProcesses  *bool
	ShowProgress  *bool
	ProfileFilter *string
	Regions       []string
	Output        *string
	Journal       *string
	Language      *string
	MetricsPort   *int
	TraceExporter *string
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		ProfileFilter: defaultProfileFilter,
		Output:        defaultOutput,
		Observability: observability.DefaultConfig(),
		selector:      regions.None(),
	}
}

// DefaultPath returns ~/.awsmp/config.yaml.
func DefaultPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return configFileName
	}
	return filepath.Join(homeDir, configFileName)
}

// Load builds the configuration with precedence:
// 1. CLI flags (o)
// 2. Environment variables (AWSMP_*)
// 3. Config file at path (DefaultPath when empty; a missing file is fine)
// 4. Defaults
func Load(path string, o Overrides) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = DefaultPath()
	}
	if err := cfg.loadFile(path); err != nil {
		return nil, err
	}

	if err := cfg.loadEnv(); err != nil {
		return nil, err
	}

	cfg.apply(o)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Selector returns the region selector the configuration resolved to.
func (c *Config) Selector() regions.Selector {
	return c.selector
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	if c.Workers < 0 {
		return fmt.Errorf("workers must be >= 0, got %d", c.Workers)
	}
	valid := false
	for _, f := range output.Formats {
		if c.Output == f {
			valid = true
			break
		}
	}
	if !valid {
		return fmt.Errorf("invalid output format %q (want one of %s)", c.Output, strings.Join(output.Formats, ", "))
	}
	if c.Observability.Tracing.SamplingRate < 0 || c.Observability.Tracing.SamplingRate > 1 {
		return fmt.Errorf("tracing sampling_rate must be between 0 and 1, got %v", c.Observability.Tracing.SamplingRate)
	}
	return nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	if c.Regions != nil {
		c.selector = regions.FromValue(c.Regions)
	}
	return nil
}

func (c *Config) loadEnv() error {
	if v := os.Getenv("AWSMP_WORKERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid AWSMP_WORKERS %q: %w", v, err)
		}
		c.Workers = n
	}
	if v := os.Getenv("AWSMP_PROCESSES"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid AWSMP_PROCESSES %q: %w", v, err)
		}
		c.UseProcesses = b
	}
	if v := os.Getenv("AWSMP_PROGRESS"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid AWSMP_PROGRESS %q: %w", v, err)
		}
		c.ShowProgress = b
	}
	if v := os.Getenv("AWSMP_PROFILE_FILTER"); v != "" {
		c.ProfileFilter = v
	}
	if v := os.Getenv("AWSMP_REGIONS"); v != "" {
		c.setRegions([]string{v})
	}
	if v := os.Getenv("AWSMP_OUTPUT"); v != "" {
		c.Output = v
	}
	if v := os.Getenv("AWSMP_JOURNAL"); v != "" {
		c.Journal = v
	}
	if v := os.Getenv("AWSMP_LANG"); v != "" {
		c.Language = v
	}
	return nil
}

func (c *Config) apply(o Overrides) {
	if o.Workers != nil {
		c.Workers = *o.Workers
	}
	if o.UseProcesses != nil {
		c.UseProcesses = *o.UseProcesses
	}
	if o.ShowProgress != nil {
		c.ShowProgress = *o.ShowProgress
	}
	if o.ProfileFilter != nil {
		c.ProfileFilter = *o.ProfileFilter
	}
	if o.Regions != nil {
		c.setRegions(o.Regions)
	}
	if o.Output != nil {
		c.Output = *o.Output
	}
	if o.Journal != nil {
		c.Journal = *o.Journal
	}
	if o.Language != nil {
		c.Language = *o.Language
	}
	if o.MetricsPort != nil {
		c.Observability.Metrics.Enabled = *o.MetricsPort > 0
		if *o.MetricsPort > 0 {
			c.Observability.Metrics.Port = *o.MetricsPort
		}
	}
	if o.TraceExporter != nil {
		c.Observability.Tracing.Enabled = *o.TraceExporter != ""
		if *o.TraceExporter != "" {
			c.Observability.Tracing.Exporter = *o.TraceExporter
		}
	}
}

func (c *Config) setRegions(values []string) {
	c.selector = regions.ParseFlag(values)
	c.Regions = c.selector.Requested()
}

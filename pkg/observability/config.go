// Package observability holds the metrics and tracing settings shared by the
// metrics and tracing packages.
package observability

// Config holds observability configuration
type Config struct {
	Metrics MetricsConfig `yaml:"metrics"`
	Tracing TracingConfig `yaml:"tracing"`
}

// MetricsConfig holds metrics server configuration
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Port    int    `yaml:"port"`
	Path    string `yaml:"path"`
	Bind    string `yaml:"bind"`
}

// TracingConfig holds distributed tracing configuration
type TracingConfig struct {
	Enabled      bool    `yaml:"enabled"`
	Exporter     string  `yaml:"exporter"`
	SamplingRate float64 `yaml:"sampling_rate"`
	// Region is where the xray exporter sends segments.
	Region string `yaml:"region"`
}

// DefaultConfig returns default observability configuration
func DefaultConfig() Config {
	return Config{
		Metrics: MetricsConfig{
			Enabled: false,
			Port:    9090,
			Path:    "/metrics",
			Bind:    "localhost",
		},
		Tracing: TracingConfig{
			Enabled:      false,
			Exporter:     "stdout",
			SamplingRate: 1.0,
			Region:       "us-east-1",
		},
	}
}

package metrics

import (
	"runtime"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Registry is the set of collectors a metrics Server exposes.
type Registry struct {
	reg *prometheus.Registry
}

// NewRegistry creates a Registry carrying the Go runtime and process
// collectors.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return &Registry{reg: reg}
}

// Register adds a collector.
func (r *Registry) Register(c prometheus.Collector) error {
	return r.reg.Register(c)
}

// SetBuildInfo registers awsmp_build_info, a constant 1 labelled with the
// binary's version and commit.
func (r *Registry) SetBuildInfo(version, commit string) error {
	info := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "build_info",
		Help:      "Build information of the running binary",
		ConstLabels: prometheus.Labels{
			"version":    version,
			"commit":     commit,
			"go_version": runtime.Version(),
		},
	})
	info.Set(1)
	return r.reg.Register(info)
}

// Gatherer returns the registry as a prometheus.Gatherer.
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.reg
}

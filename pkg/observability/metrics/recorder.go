// Package metrics exposes Prometheus metrics for fan-out runs.
package metrics

import (
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "awsmp"

// Outcome label values.
const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
)

// Recorder records run and task metrics. A nil *Recorder is valid and
// records nothing.
type Recorder struct {
	runs               prometheus.Counter
	tasksSubmitted     prometheus.Counter
	tasks              *prometheus.CounterVec
	taskDuration       prometheus.Histogram
	tasksInFlight      prometheus.Gauge
	resolutionFailures *prometheus.CounterVec

	mu    sync.Mutex
	state RunState
}

// RunState is a snapshot of the most recent run, served on /state.
type RunState struct {
	Runs      int       `json:"runs"`
	Started   time.Time `json:"started,omitempty"`
	Submitted int       `json:"submitted"`
	InFlight  int       `json:"in_flight"`
	Succeeded int       `json:"succeeded"`
	Failed    int       `json:"failed"`
}

// NewRecorder creates a Recorder and registers its collectors with reg.
func NewRecorder(reg *Registry) (*Recorder, error) {
	r := &Recorder{
		runs: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Fan-out runs started",
		}),
		tasksSubmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tasks_submitted_total",
			Help:      "Tasks submitted to the worker pool",
		}),
		tasks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tasks_total",
			Help:      "Tasks completed, by outcome",
		}, []string{"outcome"}),
		taskDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "task_duration_seconds",
			Help:      "Wall time of a single task",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 10),
		}),
		tasksInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "tasks_in_flight",
			Help:      "Tasks currently executing",
		}),
		resolutionFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "resolution_failures_total",
			Help:      "Soft failures while selecting profiles and regions, by stage",
		}, []string{"stage"}),
	}

	for _, c := range []prometheus.Collector{
		r.runs, r.tasksSubmitted, r.tasks, r.taskDuration, r.tasksInFlight, r.resolutionFailures,
	} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("failed to register collector: %w", err)
		}
	}

	return r, nil
}

// RunStarted counts a run with its number of submitted tasks.
func (r *Recorder) RunStarted(tasks int) {
	if r == nil {
		return
	}
	r.runs.Inc()
	r.tasksSubmitted.Add(float64(tasks))

	r.mu.Lock()
	r.state = RunState{Runs: r.state.Runs + 1, Started: time.Now(), Submitted: tasks}
	r.mu.Unlock()
}

// TaskStarted marks a task as executing.
func (r *Recorder) TaskStarted() {
	if r == nil {
		return
	}
	r.tasksInFlight.Inc()

	r.mu.Lock()
	r.state.InFlight++
	r.mu.Unlock()
}

// TaskFinished records the outcome and duration of a task.
func (r *Recorder) TaskFinished(d time.Duration, err error) {
	if r == nil {
		return
	}
	r.tasksInFlight.Dec()
	r.taskDuration.Observe(d.Seconds())
	outcome := OutcomeSuccess
	if err != nil {
		outcome = OutcomeError
	}
	r.tasks.WithLabelValues(outcome).Inc()

	r.mu.Lock()
	defer r.mu.Unlock()
	r.state.InFlight--
	if err != nil {
		r.state.Failed++
	} else {
		r.state.Succeeded++
	}
}

// State returns a snapshot of the current or last run.
func (r *Recorder) State() RunState {
	if r == nil {
		return RunState{}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// ResolutionFailure counts a downgraded failure in stage ("profiles",
// "regions" or "region_lookup").
func (r *Recorder) ResolutionFailure(stage string) {
	if r == nil {
		return
	}
	r.resolutionFailures.WithLabelValues(stage).Inc()
}

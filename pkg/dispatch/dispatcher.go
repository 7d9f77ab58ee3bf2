// Package dispatch fans a task out over every (profile, region) pair and
// collects what each invocation returned or failed with.
//
// Results and errors are gathered in completion order, which depends on
// scheduling and is not stable between runs.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/go-logr/logr"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/scttfrdmn/awsmp/pkg/audit"
	"github.com/scttfrdmn/awsmp/pkg/matrix"
	"github.com/scttfrdmn/awsmp/pkg/observability/metrics"
	"github.com/scttfrdmn/awsmp/pkg/profiles"
	"github.com/scttfrdmn/awsmp/pkg/progress"
	"github.com/scttfrdmn/awsmp/pkg/regions"
)

// Config is fixed when the Dispatcher is built.
type Config struct {
	// UseProcesses runs each task in a child process instead of a goroutine.
	UseProcesses bool
	// MaxWorkers bounds concurrency. Zero or less selects DefaultWorkers.
	MaxWorkers int
	// ShowProgress blocks on the Reporter before results are collected.
	ShowProgress bool
}

// Reporter displays progress while tasks finish.
type Reporter interface {
	// Wait returns once every handle is closed.
	Wait(handles []<-chan struct{})
}

// ProfileListError reports that the profile set could not be determined.
type ProfileListError struct {
	Filter string
	Err    error
}

func (e *ProfileListError) Error() string {
	return fmt.Sprintf("failed to list profiles (filter %q): %v", e.Filter, e.Err)
}

func (e *ProfileListError) Unwrap() error { return e.Err }

// ErrNoReferenceProfile means no profile matched, so regions could not be resolved.
var ErrNoReferenceProfile = errors.New("no profile matched; cannot resolve regions")

// Dispatcher runs tasks over the profile x region matrix.
type Dispatcher struct {
	cfg Config

	store    profiles.Store
	lister   regions.Lister
	reporter Reporter
	runner   *ProcessRunner
	logger   logr.Logger
	recorder *metrics.Recorder
	tracer   trace.Tracer
	journal  *audit.Journal
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithProfileStore sets the credential store. Defaults to the shared credentials file.
func WithProfileStore(s profiles.Store) Option {
	return func(d *Dispatcher) { d.store = s }
}

// WithRegionLister sets the region lookup used to validate the selector.
func WithRegionLister(l regions.Lister) Option {
	return func(d *Dispatcher) { d.lister = l }
}

// WithReporter sets the progress display used when ShowProgress is on.
// Defaults to a progress.Counter on stderr.
func WithReporter(r Reporter) Option {
	return func(d *Dispatcher) { d.reporter = r }
}

// WithProcessRunner overrides how child processes are started.
func WithProcessRunner(r ProcessRunner) Option {
	return func(d *Dispatcher) { d.runner = &r }
}

// WithLogger sets the logger.
func WithLogger(l logr.Logger) Option {
	return func(d *Dispatcher) { d.logger = l }
}

// WithRecorder sets the metrics recorder.
func WithRecorder(r *metrics.Recorder) Option {
	return func(d *Dispatcher) { d.recorder = r }
}

// WithTracer sets the tracer for run and task spans.
func WithTracer(t trace.Tracer) Option {
	return func(d *Dispatcher) { d.tracer = t }
}

// WithJournal records every task outcome in j.
func WithJournal(j *audit.Journal) Option {
	return func(d *Dispatcher) { d.journal = j }
}

// New creates a Dispatcher.
func New(cfg Config, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		cfg:    cfg,
		logger: logr.Discard(),
		tracer: noop.NewTracerProvider().Tracer(""),
		runner: &ProcessRunner{},
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.store == nil {
		d.store = profiles.NewFileStore("")
	}
	if d.reporter == nil {
		d.reporter = progress.NewCounter(os.Stderr, progress.DefaultDesc)
	}
	return d
}

// Config returns the configuration the Dispatcher was built with.
func (d *Dispatcher) Config() Config { return d.cfg }

// ShowProgress reports whether Run displays progress.
func (d *Dispatcher) ShowProgress() bool { return d.cfg.ShowProgress }

// WithShowProgress returns a copy of d with the progress flag set to show.
func (d *Dispatcher) WithShowProgress(show bool) *Dispatcher {
	c := *d
	c.cfg.ShowProgress = show
	return &c
}

// Run calls task once for every matched profile and resolved region and
// returns the values and errors in completion order. Failures to list
// profiles or resolve regions are logged and shrink the matrix; they are
// never returned. Task failures come back in errs as *TaskError.
func (d *Dispatcher) Run(ctx context.Context, task Task, profileFilter string, sel regions.Selector) (results []any, errs []error) {
	ctx, span := d.tracer.Start(ctx, "awsmp.run", trace.WithAttributes(
		attribute.String("awsmp.task", task.Name),
		attribute.String("awsmp.profile_filter", profileFilter),
		attribute.String("awsmp.regions", sel.String()),
	))
	defer span.End()
	if d.journal != nil {
		ctx = audit.WithJournal(ctx, d.journal)
	}

	results, errs = []any{}, []error{}
	start := time.Now()

	profs := d.selectProfiles(ctx, profileFilter)
	if profs.Degraded() {
		d.logger.Error(profs.Err, "Error listing profiles", "filter", profileFilter)
		d.recorder.ResolutionFailure("profiles")
		span.RecordError(profs.Err)
	}

	regs := d.selectRegions(ctx, profs.Value, sel)
	if regs.Degraded() {
		d.logger.Error(regs.Err, "Error resolving regions", "selector", sel.String())
		d.recorder.ResolutionFailure("regions")
		span.RecordError(regs.Err)
	}

	params := matrix.Build(profs.Value, regs.Value)
	span.SetAttributes(attribute.Int("awsmp.tasks", len(params)))
	d.recorder.RunStarted(len(params))
	d.journal.RunStarted(task.Name, len(params))

	fn := task.Func
	if d.cfg.UseProcesses {
		fn = d.runner.Func(task.Name)
	}
	fn = d.instrument(task.Name, protect(task.Name, fn))

	workers := d.cfg.MaxWorkers
	if workers <= 0 {
		workers = DefaultWorkers(d.cfg.UseProcesses)
	}
	pool := NewPool(workers)

	futures := make([]*Future, 0, len(params))
	for _, p := range params {
		futures = append(futures, pool.Submit(ctx, fn, p))
	}
	pool.Shutdown()

	if d.cfg.ShowProgress {
		d.reporter.Wait(Handles(futures))
	}

	for f := range AsCompleted(futures) {
		v, err := f.Result()
		if err != nil {
			errs = append(errs, err)
			continue
		}
		results = append(results, v)
	}

	if len(errs) > 0 {
		span.SetStatus(codes.Error, fmt.Sprintf("%d of %d tasks failed", len(errs), len(futures)))
	}
	d.journal.RunFinished(task.Name, len(results), len(errs), time.Since(start))
	d.logger.V(1).Info("Run complete", "task", task.Name, "tasks", len(futures),
		"succeeded", len(results), "failed", len(errs), "workers", workers)

	return results, errs
}

func (d *Dispatcher) selectProfiles(ctx context.Context, filter string) Outcome[[]string] {
	all, err := d.store.ListProfiles(ctx)
	if err != nil {
		return Degrade([]string{}, &ProfileListError{Filter: filter, Err: err})
	}

	matched, err := profiles.Filter(all, filter)
	if err != nil {
		return Degrade([]string{}, &ProfileListError{Filter: filter, Err: err})
	}
	return Ok(matched)
}

// selectRegions resolves sel against the first profile only.
func (d *Dispatcher) selectRegions(ctx context.Context, profs []string, sel regions.Selector) Outcome[[]string] {
	if len(profs) == 0 {
		return Degrade([]string{}, ErrNoReferenceProfile)
	}

	resolver := regions.NewResolver(d.lister,
		regions.WithLogger(d.logger),
		regions.WithLookupErrorHook(func(string, error) {
			d.recorder.ResolutionFailure("region_lookup")
		}),
	)
	resolved, err := resolver.Resolve(ctx, profs[0], sel)
	return Recover(resolved, err, []string{})
}

func (d *Dispatcher) instrument(name string, fn Func) Func {
	return func(ctx context.Context, p matrix.Params) (any, error) {
		ctx, span := d.tracer.Start(ctx, "awsmp.task", trace.WithAttributes(
			attribute.String("awsmp.task", name),
			attribute.String("awsmp.profile", p.Profile),
			attribute.String("awsmp.region", p.Region),
		))
		defer span.End()

		d.recorder.TaskStarted()
		start := time.Now()
		v, err := fn(ctx, p)
		elapsed := time.Since(start)
		d.recorder.TaskFinished(elapsed, err)
		d.journal.LogTask(name, p.Profile, p.Region, elapsed, err)

		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			d.logger.V(1).Info("Task failed", "profile", p.Profile, "region", p.Region, "error", err.Error())
		} else {
			d.logger.V(1).Info("Task done", "profile", p.Profile, "region", p.Region, "duration", elapsed)
		}
		return v, err
	}
}

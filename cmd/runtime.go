package cmd

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/go-logr/logr"
	"github.com/go-logr/logr/funcr"
	"github.com/spf13/cobra"

	"github.com/scttfrdmn/awsmp/pkg/audit"
	awsclient "github.com/scttfrdmn/awsmp/pkg/aws"
	"github.com/scttfrdmn/awsmp/pkg/config"
	"github.com/scttfrdmn/awsmp/pkg/dispatch"
	"github.com/scttfrdmn/awsmp/pkg/i18n"
	"github.com/scttfrdmn/awsmp/pkg/observability/metrics"
	"github.com/scttfrdmn/awsmp/pkg/observability/tracing"
	"github.com/scttfrdmn/awsmp/pkg/output"
	"github.com/scttfrdmn/awsmp/pkg/profiles"
	"github.com/scttfrdmn/awsmp/pkg/progress"
)

// awsClient serves registered tasks. setup replaces it with an instrumented
// client when tracing is on; child processes keep the default.
var awsClient = awsclient.NewClient()

// runtime is what setup builds for one command invocation.
type runtime struct {
	cfg      *config.Config
	logger   logr.Logger
	useColor bool
	recorder *metrics.Recorder
	server   *metrics.Server
	tracer   *tracing.Tracer
	journal  *audit.Journal
}

var rt *runtime

func newLogger(verbose bool) logr.Logger {
	verbosity := 0
	if verbose {
		verbosity = 1
	}
	return funcr.New(func(prefix, args string) {
		if prefix != "" {
			log.Printf("%s: %s", prefix, args)
			return
		}
		log.Print(args)
	}, funcr.Options{Verbosity: verbosity})
}

func overrides(cmd *cobra.Command) config.Overrides {
	var o config.Overrides
	flags := cmd.Flags()

	if flags.Changed("workers") {
		o.Workers = &flagWorkers
	}
	if flags.Changed("processes") {
		o.UseProcesses = &flagProcesses
	}
	if flags.Changed("progress") {
		o.ShowProgress = &flagProgress
	}
	if flags.Changed("profile-filter") {
		o.ProfileFilter = &flagProfileFilter
	}
	if flags.Changed("regions") {
		o.Regions = flagRegions
		if o.Regions == nil {
			o.Regions = []string{}
		}
	}
	if flags.Changed("output") {
		o.Output = &outputFormat
	}
	if flags.Changed("journal") {
		o.Journal = &flagJournal
	}
	if flags.Changed("lang") {
		o.Language = &flagLang
	}
	if flags.Changed("metrics-port") {
		o.MetricsPort = &flagMetricsPort
	}
	if flags.Changed("trace") {
		o.TraceExporter = &flagTrace
	}
	return o
}

func setup(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := config.Load(flagConfig, overrides(cmd))
	if err != nil {
		return err
	}

	if cfg.Language != "" && !cmd.Flags().Changed("lang") {
		flagLang = cfg.Language
		initI18n()
	}

	r := &runtime{
		cfg:      cfg,
		logger:   newLogger(verbose),
		useColor: !noColor && !color.NoColor,
	}

	reg := metrics.NewRegistry()
	if err := reg.SetBuildInfo(Version, GitCommit); err != nil {
		return err
	}
	if r.recorder, err = metrics.NewRecorder(reg); err != nil {
		return err
	}
	if cfg.Observability.Metrics.Enabled {
		r.server = metrics.NewServer(cfg.Observability.Metrics, reg, r.recorder, r.logger)
		if err := r.server.Start(ctx); err != nil {
			return fmt.Errorf("failed to start metrics server: %w", err)
		}
	}

	r.tracer, err = tracing.NewTracer(ctx, cfg.Observability.Tracing, tracing.Options{
		ServiceName:    "awsmp",
		ServiceVersion: Version,
	})
	if err != nil {
		return err
	}
	if cfg.Observability.Tracing.Enabled {
		awsClient = awsclient.NewClient(awsclient.WithConfigHook(tracing.InstrumentAWSConfig))
	}

	if cfg.Journal != "" {
		if r.journal, err = audit.OpenJournal(cfg.Journal, ""); err != nil {
			return fmt.Errorf("failed to open journal: %w", err)
		}
		r.logger.V(1).Info("Journal opened", "path", cfg.Journal, "run_id", r.journal.RunID())
	}

	rt = r
	return nil
}

func teardown(ctx context.Context) error {
	if rt == nil {
		return nil
	}

	var firstErr error
	if rt.tracer != nil {
		if err := rt.tracer.Shutdown(ctx); err != nil {
			firstErr = err
		}
	}
	if rt.server != nil {
		if err := rt.server.Shutdown(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if err := rt.journal.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	rt = nil
	return firstErr
}

func (r *runtime) dispatcher() *dispatch.Dispatcher {
	return dispatch.New(
		dispatch.Config{
			UseProcesses: r.cfg.UseProcesses,
			MaxWorkers:   r.cfg.Workers,
			ShowProgress: r.cfg.ShowProgress,
		},
		dispatch.WithProfileStore(profiles.NewFileStore("")),
		dispatch.WithRegionLister(awsClient),
		dispatch.WithReporter(progress.NewCounter(os.Stderr, progress.DefaultDesc)),
		dispatch.WithLogger(r.logger),
		dispatch.WithRecorder(r.recorder),
		dispatch.WithTracer(r.tracer.Tracer()),
		dispatch.WithJournal(r.journal),
	)
}

// fanOut runs the registered task called name and prints its rows. It
// returns an error when any task failed so the process exits non-zero.
func fanOut(cmd *cobra.Command, name string) error {
	task, ok := dispatch.Lookup(name)
	if !ok {
		return fmt.Errorf("%w: %q (registered: %s)", dispatch.ErrUnknownTask, name, strings.Join(dispatch.Registered(), ", "))
	}

	results, errs := rt.dispatcher().Run(cmd.Context(), task, rt.cfg.ProfileFilter, rt.cfg.Selector())

	status := output.NewPrinter(cmd.ErrOrStderr(), rt.useColor)
	total := len(results) + len(errs)
	if total == 0 {
		status.Status(true, i18n.FormatStatus("info", i18n.T("awsmp.summary.none")))
		return nil
	}

	printer := output.NewPrinter(cmd.OutOrStdout(), rt.useColor)
	if err := printer.Print(rt.cfg.Output, output.Rows(results, errs)); err != nil {
		return err
	}

	summary := i18n.Tc("awsmp.summary.tasks", total, map[string]interface{}{
		"Succeeded": len(results),
		"Failed":    len(errs),
	})
	if len(errs) > 0 {
		status.Status(false, i18n.FormatStatus("warning", summary))
		return fmt.Errorf("%s", i18n.Tc("awsmp.error.tasks_failed", len(errs)))
	}
	status.Status(true, i18n.FormatStatus("success", summary))
	return nil
}

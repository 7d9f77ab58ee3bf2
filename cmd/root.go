package cmd

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/scttfrdmn/awsmp/pkg/i18n"
	"github.com/scttfrdmn/awsmp/pkg/output"
)

var (
	// Global flags
	flagConfig        string
	flagProfileFilter string
	flagRegions       []string
	flagWorkers       int
	flagProcesses     bool
	flagProgress      bool
	outputFormat      string
	noColor           bool
	verbose           bool
	flagJournal       string
	flagMetricsPort   int
	flagTrace         string
	flagLang          string
)

var rootCmd = &cobra.Command{
	Use:               "awsmp",
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
	// Short and Long are set after i18n initialization
}

// Execute runs the CLI and exits non-zero on error or when any task failed.
func Execute() {
	err := rootCmd.Execute()
	// cobra skips post-run hooks when RunE fails, so flush here
	if terr := teardown(context.Background()); terr != nil {
		log.Printf("Warning: shutdown: %v", terr)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, i18n.FormatStatus("error", err.Error()))
		os.Exit(1)
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&flagConfig, "config", "", "Config file (default ~/.awsmp/config.yaml)")
	flags.StringVarP(&flagProfileFilter, "profile-filter", "p", ".*", "Regular expression selecting credential profiles")
	flags.StringSliceVarP(&flagRegions, "regions", "r", nil, "Regions to run in (comma-separated, or \"none\")")
	flags.IntVarP(&flagWorkers, "workers", "w", 0, "Maximum concurrent tasks (0 = default)")
	flags.BoolVar(&flagProcesses, "processes", false, "Run each task in a child process")
	flags.BoolVar(&flagProgress, "progress", false, "Show a progress counter on stderr")
	flags.StringVarP(&outputFormat, "output", "o", "table", "Output format (table, json, yaml, csv)")
	flags.BoolVar(&noColor, "no-color", false, "Disable colorized output")
	flags.BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	flags.StringVar(&flagJournal, "journal", "", "Append a JSON-lines journal of task outcomes to this file")
	flags.IntVar(&flagMetricsPort, "metrics-port", 0, "Serve Prometheus metrics on this port while running")
	flags.StringVar(&flagTrace, "trace", "", "Enable tracing with this exporter (stdout, xray)")
	flags.StringVar(&flagLang, "lang", "", "Language for output (en, es)")

	cobra.OnInitialize(initI18n)

	rootCmd.RegisterFlagCompletionFunc("output", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return output.Formats, cobra.ShellCompDirectiveNoFileComp
	})
	rootCmd.RegisterFlagCompletionFunc("trace", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return []string{"stdout", "xray"}, cobra.ShellCompDirectiveNoFileComp
	})
	rootCmd.RegisterFlagCompletionFunc("regions", completeRegion)
	rootCmd.RegisterFlagCompletionFunc("profile-filter", completeProfile)
	rootCmd.RegisterFlagCompletionFunc("lang", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return i18n.SupportedLanguages(), cobra.ShellCompDirectiveNoFileComp
	})
}

func initI18n() {
	cfg := i18n.Config{
		Language: flagLang,
		Verbose:  verbose,
		NoEmoji:  noColor,
	}

	if err := i18n.Init(cfg); err != nil {
		log.Printf("Warning: failed to initialize i18n: %v", err)
	}

	updateCommandDescriptions()
}

func updateCommandDescriptions() {
	rootCmd.Short = i18n.T("awsmp.root.short")
	rootCmd.Long = i18n.T("awsmp.root.long")

	for _, name := range []string{"profiles", "regions", "whoami", "instances", "version"} {
		if cmd, _, err := rootCmd.Find([]string{name}); err == nil && cmd != nil && cmd != rootCmd {
			cmd.Short = i18n.T("awsmp." + name + ".short")
		}
	}
}

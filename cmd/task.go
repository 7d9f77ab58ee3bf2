package cmd

import (
	"github.com/spf13/cobra"

	"github.com/scttfrdmn/awsmp/pkg/dispatch"
)

// taskCmd is the child side of --processes.
var taskCmd = &cobra.Command{
	Use:    dispatch.ChildCommand + " <task> <profile> <region>",
	Hidden: true,
	Args:   cobra.ExactArgs(3),
	// Children write nothing but their result envelope.
	PersistentPreRunE:  func(cmd *cobra.Command, args []string) error { return nil },
	RunE: func(cmd *cobra.Command, args []string) error {
		return dispatch.ServeChild(cmd.Context(), args, cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(taskCmd)
}

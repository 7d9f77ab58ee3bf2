package cmd

import (
	"github.com/spf13/cobra"
)

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the caller identity for every profile and region",
	Long: `Call sts:GetCallerIdentity for every profile matching --profile-filter in
every region given with --regions.

Examples:
  awsmp whoami -r us-east-1
  awsmp whoami -p '^prod-' -r us-east-1,eu-west-1 -o json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return fanOut(cmd, "whoami")
	},
}

func init() {
	rootCmd.AddCommand(whoamiCmd)
}

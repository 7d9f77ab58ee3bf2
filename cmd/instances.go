package cmd

import (
	"github.com/spf13/cobra"
)

var instancesCmd = &cobra.Command{
	Use:   "instances",
	Short: "Count EC2 instances for every profile and region",
	Long: `Page through ec2:DescribeInstances for every profile matching
--profile-filter in every region given with --regions, and report the
instance count by state.

Examples:
  awsmp instances -r us-east-1,us-west-2 --progress
  awsmp instances -p dev --processes -w 4 -r eu-central-1 -o csv`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return fanOut(cmd, "instances")
	},
}

func init() {
	rootCmd.AddCommand(instancesCmd)
}

package cmd

import (
	"github.com/spf13/cobra"

	"github.com/scttfrdmn/awsmp/pkg/output"
)

var regionsProfile string

var regionsCmd = &cobra.Command{
	Use:   "regions",
	Short: "List the regions enabled for a profile",
	Long: `List the regions enabled for a profile, as reported by ec2:DescribeRegions
from us-east-1. Without --profile the first profile matching
--profile-filter is used, the same reference profile a fan-out validates
--regions against.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		profile := regionsProfile
		if profile == "" {
			matched, err := matchedProfiles(cmd)
			if err != nil {
				return err
			}
			profile = matched[0]
		}

		names, err := awsClient.ListRegions(cmd.Context(), profile)
		if err != nil {
			return err
		}
		return output.NewPrinter(cmd.OutOrStdout(), rt.useColor).PrintList(rt.cfg.Output, "Region", names)
	},
}

func init() {
	regionsCmd.Flags().StringVar(&regionsProfile, "profile", "", "Profile to list regions for")
	regionsCmd.RegisterFlagCompletionFunc("profile", completeProfile)
	rootCmd.AddCommand(regionsCmd)
}

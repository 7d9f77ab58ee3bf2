package cmd

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/scttfrdmn/awsmp/pkg/i18n"
	"github.com/scttfrdmn/awsmp/pkg/output"
	"github.com/scttfrdmn/awsmp/pkg/profiles"
)

var profilesCmd = &cobra.Command{
	Use:   "profiles",
	Short: "List credential profiles matching the filter",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		matched, err := matchedProfiles(cmd)
		if err != nil {
			return err
		}
		return output.NewPrinter(cmd.OutOrStdout(), rt.useColor).PrintList(rt.cfg.Output, "Profile", matched)
	},
}

func init() {
	rootCmd.AddCommand(profilesCmd)
}

func matchedProfiles(cmd *cobra.Command) ([]string, error) {
	all, err := profiles.NewFileStore("").ListProfiles(cmd.Context())
	if err != nil {
		return nil, err
	}
	matched, err := profiles.Filter(all, rt.cfg.ProfileFilter)
	if err != nil {
		return nil, err
	}
	if len(matched) == 0 {
		return nil, errors.New(i18n.T("awsmp.error.no_profile", map[string]interface{}{"Filter": rt.cfg.ProfileFilter}))
	}
	return matched, nil
}

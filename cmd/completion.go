package cmd

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/scttfrdmn/awsmp/pkg/profiles"
)

// completeRegion provides completion for AWS regions
func completeRegion(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	regions := []string{
		"none\tNo regions",
		"us-east-1\tUS East (N. Virginia)",
		"us-east-2\tUS East (Ohio)",
		"us-west-1\tUS West (N. California)",
		"us-west-2\tUS West (Oregon)",
		"af-south-1\tAfrica (Cape Town)",
		"ap-east-1\tAsia Pacific (Hong Kong)",
		"ap-south-1\tAsia Pacific (Mumbai)",
		"ap-northeast-1\tAsia Pacific (Tokyo)",
		"ap-northeast-2\tAsia Pacific (Seoul)",
		"ap-northeast-3\tAsia Pacific (Osaka)",
		"ap-southeast-1\tAsia Pacific (Singapore)",
		"ap-southeast-2\tAsia Pacific (Sydney)",
		"ca-central-1\tCanada (Central)",
		"eu-central-1\tEurope (Frankfurt)",
		"eu-west-1\tEurope (Ireland)",
		"eu-west-2\tEurope (London)",
		"eu-west-3\tEurope (Paris)",
		"eu-south-1\tEurope (Milan)",
		"eu-north-1\tEurope (Stockholm)",
		"me-south-1\tMiddle East (Bahrain)",
		"sa-east-1\tSouth America (São Paulo)",
	}

	// complete the last element of a comma-separated list
	prefix := ""
	if i := strings.LastIndex(toComplete, ","); i >= 0 {
		prefix, toComplete = toComplete[:i+1], toComplete[i+1:]
	}

	var filtered []string
	for _, region := range regions {
		if toComplete == "" || strings.HasPrefix(region, toComplete) {
			filtered = append(filtered, prefix+region)
		}
	}

	return filtered, cobra.ShellCompDirectiveNoFileComp | cobra.ShellCompDirectiveNoSpace
}

// completeProfile completes profile names from the shared credentials file
func completeProfile(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	names, err := profiles.NewFileStore("").ListProfiles(cmd.Context())
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}

	var filtered []string
	for _, name := range names {
		if strings.HasPrefix(name, toComplete) {
			filtered = append(filtered, name)
		}
	}
	return filtered, cobra.ShellCompDirectiveNoFileComp
}

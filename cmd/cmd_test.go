package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	awsclient "github.com/scttfrdmn/awsmp/pkg/aws"
	"github.com/scttfrdmn/awsmp/pkg/aws/mock"
	"github.com/scttfrdmn/awsmp/pkg/output"
)

const testCredentials = `[dev]
aws_access_key_id = AKIADEV
aws_secret_access_key = secret

[prod]
aws_access_key_id = AKIAPROD
aws_secret_access_key = secret
`

type testEnv struct {
	ec2 *mock.MockEC2Client
	sts *mock.MockSTSClient
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()

	home := t.TempDir()
	creds := filepath.Join(home, "credentials")
	require.NoError(t, os.WriteFile(creds, []byte(testCredentials), 0o600))

	t.Setenv("HOME", home)
	t.Setenv("AWS_SHARED_CREDENTIALS_FILE", creds)
	t.Setenv("AWSMP_LANG", "en")
	for _, key := range []string{"AWSMP_WORKERS", "AWSMP_PROCESSES", "AWSMP_PROGRESS", "AWSMP_PROFILE_FILTER", "AWSMP_REGIONS", "AWSMP_OUTPUT", "AWSMP_JOURNAL"} {
		t.Setenv(key, "")
	}

	env := &testEnv{
		ec2: mock.NewMockEC2Client(),
		sts: mock.NewMockSTSClient("123456789012", "arn:aws:iam::123456789012:user/tester"),
	}

	previous := awsClient
	awsClient = awsclient.NewClient(
		awsclient.WithConfigLoader(func(_ context.Context, _, region string) (aws.Config, error) {
			return aws.Config{Region: region}, nil
		}),
		awsclient.WithEC2(func(aws.Config) awsclient.EC2API { return env.ec2 }),
		awsclient.WithSTS(func(aws.Config) awsclient.STSAPI { return env.sts }),
	)
	t.Cleanup(func() {
		awsClient = previous
		resetFlags(rootCmd)
		resetFlags(regionsCmd)
		resetFlags(versionCmd)
	})
	return env
}

// resetFlags undoes flag values left over from a previous Execute.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	cmd.PersistentFlags().VisitAll(reset)
	cmd.Flags().VisitAll(reset)
}

func execute(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)

	err = rootCmd.Execute()
	require.NoError(t, teardown(context.Background()))
	return out.String(), errOut.String(), err
}

func TestWhoami(t *testing.T) {
	env := setupTestEnv(t)

	stdout, stderr, err := execute(t, "whoami", "-r", "us-east-1,eu-west-1", "-o", "json")
	require.NoError(t, err)

	var rows []output.Row
	require.NoError(t, json.Unmarshal([]byte(stdout), &rows))
	require.Len(t, rows, 4)

	var locations []string
	for _, row := range rows {
		assert.Empty(t, row.Error)
		value, ok := row.Value.(map[string]any)
		require.True(t, ok)
		assert.Equal(t, "123456789012", value["account"])
		locations = append(locations, row.Profile+"/"+row.Region)
	}
	assert.Equal(t, []string{"dev/eu-west-1", "dev/us-east-1", "prod/eu-west-1", "prod/us-east-1"}, locations)
	assert.Equal(t, 4, env.sts.GetCallerIdentityCalls)
	assert.Contains(t, stderr, "4 tasks: 4 succeeded, 0 failed")
}

func TestInstancesFailure(t *testing.T) {
	env := setupTestEnv(t)
	env.ec2.DescribeInstancesErr = errors.New("UnauthorizedOperation")

	stdout, stderr, err := execute(t, "instances", "-p", "^prod$", "-r", "us-west-2", "-o", "csv")
	require.Error(t, err)
	assert.Equal(t, "1 task failed", err.Error())
	assert.Contains(t, stdout, "prod,us-west-2,,")
	assert.Contains(t, stdout, "UnauthorizedOperation")
	assert.Contains(t, stderr, "1 task: 0 succeeded, 1 failed")
}

func TestInstancesJournalNote(t *testing.T) {
	env := setupTestEnv(t)
	env.ec2.AddInstance("i-1", types.InstanceStateNameRunning)
	env.ec2.AddInstance("i-2", types.InstanceStateNameStopped)
	path := filepath.Join(t.TempDir(), "journal.jsonl")

	stdout, _, err := execute(t, "instances", "-p", "^dev$", "-r", "eu-west-1", "-o", "json", "--journal", path)
	require.NoError(t, err)

	var rows []output.Row
	require.NoError(t, json.Unmarshal([]byte(stdout), &rows))
	require.Len(t, rows, 1)
	value := rows[0].Value.(map[string]any)
	assert.Equal(t, 2.0, value["total"])

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"result":"note"`)
	assert.Contains(t, string(data), `"by_state":{"running":1,"stopped":1}`)
}

func TestInvalidRegionRunsNothing(t *testing.T) {
	env := setupTestEnv(t)

	stdout, stderr, err := execute(t, "whoami", "-r", "us-east-1,moon-1")
	require.NoError(t, err)
	assert.Empty(t, stdout)
	assert.Contains(t, stderr, "No tasks ran")
	assert.Zero(t, env.sts.GetCallerIdentityCalls)
}

func TestNoRegionsRunsNothing(t *testing.T) {
	env := setupTestEnv(t)

	_, stderr, err := execute(t, "whoami")
	require.NoError(t, err)
	assert.Contains(t, stderr, "No tasks ran")
	assert.Zero(t, env.ec2.DescribeRegionsCalls)
}

func TestProfiles(t *testing.T) {
	setupTestEnv(t)

	stdout, _, err := execute(t, "profiles", "-o", "csv")
	require.NoError(t, err)
	assert.Equal(t, "profile\ndev\nprod\n", stdout)

	_, _, err = execute(t, "profiles", "-p", "^staging")
	assert.ErrorContains(t, err, "no profile matches ^staging")
}

func TestRegions(t *testing.T) {
	env := setupTestEnv(t)

	stdout, _, err := execute(t, "regions", "--profile", "prod", "-o", "json")
	require.NoError(t, err)
	assert.JSONEq(t, `["us-east-1","us-west-2","eu-west-1"]`, stdout)
	assert.Equal(t, 1, env.ec2.DescribeRegionsCalls)
}

func TestChildCommand(t *testing.T) {
	setupTestEnv(t)

	stdout, _, err := execute(t, "__awsmp-task", "whoami", "dev", "us-east-1")
	require.NoError(t, err)

	var env struct {
		Value map[string]any `json:"value"`
		Error string         `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &env))
	assert.Empty(t, env.Error)
	assert.Equal(t, "dev", env.Value["profile"])
	assert.Equal(t, "arn:aws:iam::123456789012:user/tester", env.Value["arn"])
}

func TestChildCommandDashProfile(t *testing.T) {
	setupTestEnv(t)

	stdout, _, err := execute(t, "__awsmp-task", "--", "whoami", "-dev", "us-east-1")
	require.NoError(t, err)

	var env struct {
		Value  map[string]any `json:"value"`
		Failed bool           `json:"failed"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &env))
	assert.False(t, env.Failed)
	assert.Equal(t, "-dev", env.Value["profile"])
}

func TestJournalFlag(t *testing.T) {
	setupTestEnv(t)
	path := filepath.Join(t.TempDir(), "journal.jsonl")

	_, _, err := execute(t, "whoami", "-p", "dev", "-r", "us-east-1", "--journal", path)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	// run started, one task, run finished
	assert.Equal(t, 3, bytes.Count(data, []byte("\n")))
	assert.Contains(t, string(data), `"operation":"whoami"`)
}

func TestVersion(t *testing.T) {
	setupTestEnv(t)

	stdout, _, err := execute(t, "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(stdout, "awsmp "+Version+" "))

	stdout, _, err = execute(t, "version", "--json")
	require.NoError(t, err)
	var info buildInfo
	require.NoError(t, json.Unmarshal([]byte(stdout), &info))
	assert.Equal(t, Version, info.Version)
	assert.NotEmpty(t, info.Platform)
}

func TestBadOutputFormat(t *testing.T) {
	setupTestEnv(t)

	_, _, err := execute(t, "whoami", "-r", "us-east-1", "-o", "xml")
	assert.ErrorContains(t, err, "invalid output format")
}

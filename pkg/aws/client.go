// Package aws talks to AWS on behalf of a single credential profile: it loads
// the profile's shared configuration, lists the regions the profile can use
// and runs the per-region calls the awsmp CLI fans out.
package aws

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"github.com/aws/smithy-go"
)

// BootstrapRegion is the region DescribeRegions is sent to.
const BootstrapRegion = "us-east-1"

// EC2API is the subset of the EC2 client used here.
type EC2API interface {
	DescribeRegions(ctx context.Context, params *ec2.DescribeRegionsInput, optFns ...func(*ec2.Options)) (*ec2.DescribeRegionsOutput, error)
	DescribeInstances(ctx context.Context, params *ec2.DescribeInstancesInput, optFns ...func(*ec2.Options)) (*ec2.DescribeInstancesOutput, error)
}

// STSAPI is the subset of the STS client used here.
type STSAPI interface {
	GetCallerIdentity(ctx context.Context, params *sts.GetCallerIdentityInput, optFns ...func(*sts.Options)) (*sts.GetCallerIdentityOutput, error)
}

// ConfigLoader loads the SDK configuration for a profile in a region.
type ConfigLoader func(ctx context.Context, profile, region string) (aws.Config, error)

// RegionLookupError reports a failed DescribeRegions call.
type RegionLookupError struct {
	Profile string
	// Code is the AWS error code when the failure came back from the API,
	// e.g. "UnauthorizedOperation". Empty for transport or config errors.
	Code string
	Err  error
}

func (e *RegionLookupError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("failed to describe regions for profile %s (%s): %v", e.Profile, e.Code, e.Err)
	}
	return fmt.Sprintf("failed to describe regions for profile %s: %v", e.Profile, e.Err)
}

func (e *RegionLookupError) Unwrap() error { return e.Err }

// Client wraps AWS SDK clients, building a fresh configuration per profile
// and region.
type Client struct {
	loadConfig ConfigLoader
	configHook ConfigHook
	newEC2     func(aws.Config) EC2API
	newSTS     func(aws.Config) STSAPI
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithConfigLoader replaces the shared-config loader.
func WithConfigLoader(loader ConfigLoader) ClientOption {
	return func(c *Client) { c.loadConfig = loader }
}

// ConfigHook adjusts the configuration loaded for profile.
type ConfigHook func(profile string, cfg *aws.Config)

// WithConfigHook runs fn on every loaded configuration before clients are
// built from it. Used to attach tracing middleware.
func WithConfigHook(fn ConfigHook) ClientOption {
	return func(c *Client) { c.configHook = fn }
}

// WithEC2 replaces the EC2 client constructor.
func WithEC2(fn func(aws.Config) EC2API) ClientOption {
	return func(c *Client) { c.newEC2 = fn }
}

// WithSTS replaces the STS client constructor.
func WithSTS(fn func(aws.Config) STSAPI) ClientOption {
	return func(c *Client) { c.newSTS = fn }
}

// NewClient creates a new AWS client
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		loadConfig: LoadConfig,
		newEC2:     func(cfg aws.Config) EC2API { return ec2.NewFromConfig(cfg) },
		newSTS:     func(cfg aws.Config) STSAPI { return sts.NewFromConfig(cfg) },
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// LoadConfig loads the shared configuration of profile pinned to region.
func LoadConfig(ctx context.Context, profile, region string) (aws.Config, error) {
	cfg, err := config.LoadDefaultConfig(ctx,
		config.WithSharedConfigProfile(profile),
		config.WithRegion(region),
	)
	if err != nil {
		return aws.Config{}, fmt.Errorf("unable to load AWS SDK config for profile %s: %w", profile, err)
	}
	return cfg, nil
}

// Config returns the configuration for profile in region, with the config
// hook applied.
func (c *Client) Config(ctx context.Context, profile, region string) (aws.Config, error) {
	cfg, err := c.loadConfig(ctx, profile, region)
	if err != nil {
		return aws.Config{}, err
	}
	if c.configHook != nil {
		c.configHook(profile, &cfg)
	}
	return cfg, nil
}

// ListRegions returns the regions enabled for the profile's account, as
// reported from BootstrapRegion.
func (c *Client) ListRegions(ctx context.Context, profile string) ([]string, error) {
	cfg, err := c.Config(ctx, profile, BootstrapRegion)
	if err != nil {
		return nil, &RegionLookupError{Profile: profile, Err: err}
	}

	result, err := c.newEC2(cfg).DescribeRegions(ctx, &ec2.DescribeRegionsInput{
		AllRegions: aws.Bool(false), // Only enabled regions
	})
	if err != nil {
		lookupErr := &RegionLookupError{Profile: profile, Err: err}
		var apiErr smithy.APIError
		if errors.As(err, &apiErr) {
			lookupErr.Code = apiErr.ErrorCode()
		}
		return nil, lookupErr
	}

	regions := make([]string, 0, len(result.Regions))
	for _, region := range result.Regions {
		if region.RegionName != nil {
			regions = append(regions, *region.RegionName)
		}
	}
	return regions, nil
}

// Identity is the caller identity of a profile as seen from one region.
type Identity struct {
	Profile string `json:"profile" yaml:"profile"`
	Region  string `json:"region" yaml:"region"`
	Account string `json:"account" yaml:"account"`
	ARN     string `json:"arn" yaml:"arn"`
	UserID  string `json:"user_id" yaml:"user_id"`
}

// CallerIdentity runs sts:GetCallerIdentity for profile in region.
func (c *Client) CallerIdentity(ctx context.Context, profile, region string) (*Identity, error) {
	cfg, err := c.Config(ctx, profile, region)
	if err != nil {
		return nil, err
	}

	out, err := c.newSTS(cfg).GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{})
	if err != nil {
		return nil, fmt.Errorf("failed to get caller identity: %w", err)
	}

	return &Identity{
		Profile: profile,
		Region:  region,
		Account: aws.ToString(out.Account),
		ARN:     aws.ToString(out.Arn),
		UserID:  aws.ToString(out.UserId),
	}, nil
}

// InstanceCount summarizes the EC2 instances of a profile in a region.
type InstanceCount struct {
	Profile string         `json:"profile" yaml:"profile"`
	Region  string         `json:"region" yaml:"region"`
	Total   int            `json:"total" yaml:"total"`
	ByState map[string]int `json:"by_state,omitempty" yaml:"by_state,omitempty"`
}

// CountInstances pages through DescribeInstances for profile in region.
func (c *Client) CountInstances(ctx context.Context, profile, region string) (*InstanceCount, error) {
	cfg, err := c.Config(ctx, profile, region)
	if err != nil {
		return nil, err
	}

	count := &InstanceCount{
		Profile: profile,
		Region:  region,
		ByState: make(map[string]int),
	}

	paginator := ec2.NewDescribeInstancesPaginator(c.newEC2(cfg), &ec2.DescribeInstancesInput{})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to describe instances in %s: %w", region, err)
		}
		for _, reservation := range page.Reservations {
			for _, inst := range reservation.Instances {
				count.Total++
				state := "unknown"
				if inst.State != nil {
					state = string(inst.State.Name)
				}
				count.ByState[state]++
			}
		}
	}

	return count, nil
}

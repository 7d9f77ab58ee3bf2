package mock

import (
	"context"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/ec2/types"
)

// MockEC2Client provides a mock implementation of EC2 operations for testing
type MockEC2Client struct {
	mu sync.Mutex

	// Mock data storage
	Regions   []types.Region
	Instances []types.Instance
	// PageSize splits DescribeInstances output into pages when > 0.
	PageSize int

	// Errors to return for specific operations (for error testing)
	DescribeRegionsErr   error
	DescribeInstancesErr error

	// Call tracking
	DescribeRegionsCalls   int
	DescribeInstancesCalls int
	LastAllRegions         *bool
}

// NewMockEC2Client creates a new mock EC2 client with default data
func NewMockEC2Client() *MockEC2Client {
	return &MockEC2Client{
		Regions: []types.Region{
			{RegionName: aws.String("us-east-1")},
			{RegionName: aws.String("us-west-2")},
			{RegionName: aws.String("eu-west-1")},
		},
	}
}

// AddInstance stores an instance in the given state.
func (m *MockEC2Client) AddInstance(id string, state types.InstanceStateName) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Instances = append(m.Instances, types.Instance{
		InstanceId: aws.String(id),
		State:      &types.InstanceState{Name: state},
	})
}

func (m *MockEC2Client) DescribeRegions(ctx context.Context, params *ec2.DescribeRegionsInput, optFns ...func(*ec2.Options)) (*ec2.DescribeRegionsOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DescribeRegionsCalls++
	m.LastAllRegions = params.AllRegions

	if m.DescribeRegionsErr != nil {
		return nil, m.DescribeRegionsErr
	}

	return &ec2.DescribeRegionsOutput{
		Regions: append([]types.Region(nil), m.Regions...),
	}, nil
}

func (m *MockEC2Client) DescribeInstances(ctx context.Context, params *ec2.DescribeInstancesInput, optFns ...func(*ec2.Options)) (*ec2.DescribeInstancesOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DescribeInstancesCalls++

	if m.DescribeInstancesErr != nil {
		return nil, m.DescribeInstancesErr
	}

	start := 0
	if params.NextToken != nil {
		for i, inst := range m.Instances {
			if aws.ToString(inst.InstanceId) == *params.NextToken {
				start = i
				break
			}
		}
	}

	end := len(m.Instances)
	var next *string
	if m.PageSize > 0 && start+m.PageSize < end {
		end = start + m.PageSize
		next = m.Instances[end].InstanceId
	}

	return &ec2.DescribeInstancesOutput{
		Reservations: []types.Reservation{
			{Instances: append([]types.Instance(nil), m.Instances[start:end]...)},
		},
		NextToken: next,
	}, nil
}

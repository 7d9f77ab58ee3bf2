package mock

import (
	"context"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sts"
)

// MockSTSClient provides a mock implementation of STS operations for testing
type MockSTSClient struct {
	mu sync.Mutex

	Account string
	ARN     string
	UserID  string

	GetCallerIdentityErr   error
	GetCallerIdentityCalls int
}

// NewMockSTSClient creates a mock STS client for a fixed identity
func NewMockSTSClient(account, arn string) *MockSTSClient {
	return &MockSTSClient{
		Account: account,
		ARN:     arn,
		UserID:  "AIDAMOCKUSER",
	}
}

func (m *MockSTSClient) GetCallerIdentity(ctx context.Context, params *sts.GetCallerIdentityInput, optFns ...func(*sts.Options)) (*sts.GetCallerIdentityOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.GetCallerIdentityCalls++

	if m.GetCallerIdentityErr != nil {
		return nil, m.GetCallerIdentityErr
	}

	return &sts.GetCallerIdentityOutput{
		Account: aws.String(m.Account),
		Arn:     aws.String(m.ARN),
		UserId:  aws.String(m.UserID),
	}, nil
}

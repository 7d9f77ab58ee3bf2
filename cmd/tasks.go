package cmd

import (
	"context"

	"github.com/scttfrdmn/awsmp/pkg/audit"
	"github.com/scttfrdmn/awsmp/pkg/dispatch"
	"github.com/scttfrdmn/awsmp/pkg/matrix"
)

// Tasks are registered by name so that --processes children can find them.
func init() {
	dispatch.Register(dispatch.Task{Name: "whoami", Func: whoami})
	dispatch.Register(dispatch.Task{Name: "instances", Func: instances})
}

func whoami(ctx context.Context, p matrix.Params) (any, error) {
	id, err := awsClient.CallerIdentity(ctx, p.Profile, p.Region)
	if err != nil {
		return nil, err
	}
	return id, nil
}

func instances(ctx context.Context, p matrix.Params) (any, error) {
	count, err := awsClient.CountInstances(ctx, p.Profile, p.Region)
	if err != nil {
		return nil, err
	}
	// Only in-process runs carry a journal; children have none.
	if count.Total > 0 {
		audit.FromContext(ctx).Note("instances", p.Profile, p.Region, map[string]interface{}{
			"by_state": count.ByState,
		})
	}
	return count, nil
}

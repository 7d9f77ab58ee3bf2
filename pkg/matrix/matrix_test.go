package matrix

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuild(t *testing.T) {
	tests := []struct {
		name     string
		profiles []string
		regions  []string
		expected []Params
	}{
		{
			name:     "two by two in product order",
			profiles: []string{"dev", "prod"},
			regions:  []string{"us-east-1", "eu-west-1"},
			expected: []Params{
				{Profile: "dev", Region: "us-east-1"},
				{Profile: "dev", Region: "eu-west-1"},
				{Profile: "prod", Region: "us-east-1"},
				{Profile: "prod", Region: "eu-west-1"},
			},
		},
		{
			name:     "single profile",
			profiles: []string{"dev"},
			regions:  []string{"us-west-2", "ap-south-1", "eu-central-1"},
			expected: []Params{
				{Profile: "dev", Region: "us-west-2"},
				{Profile: "dev", Region: "ap-south-1"},
				{Profile: "dev", Region: "eu-central-1"},
			},
		},
		{
			name:     "duplicates are kept",
			profiles: []string{"dev", "dev"},
			regions:  []string{"us-east-1"},
			expected: []Params{
				{Profile: "dev", Region: "us-east-1"},
				{Profile: "dev", Region: "us-east-1"},
			},
		},
		{
			name:     "no regions",
			profiles: []string{"dev", "prod"},
			regions:  nil,
			expected: []Params{},
		},
		{
			name:     "no profiles",
			profiles: []string{},
			regions:  []string{"us-east-1"},
			expected: []Params{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Build(tt.profiles, tt.regions)
			assert.Equal(t, tt.expected, got)
			assert.Len(t, got, len(tt.profiles)*len(tt.regions))
		})
	}
}

func TestBuildDistinctPairs(t *testing.T) {
	profiles := []string{"a", "b", "c"}
	regions := []string{"us-east-1", "us-west-2", "eu-west-1", "sa-east-1"}

	seen := make(map[Params]bool)
	for _, p := range Build(profiles, regions) {
		assert.False(t, seen[p], "duplicate pairing %s", p)
		seen[p] = true
	}
	assert.Len(t, seen, 12)
}

func TestParamsArgs(t *testing.T) {
	p := Params{Profile: "dev", Region: "us-east-1"}

	args := p.Args()
	assert.Len(t, args, 2)
	assert.Equal(t, "dev", args["profile"])
	assert.Equal(t, "us-east-1", args["region"])
	assert.Equal(t, "dev/us-east-1", p.String())
}

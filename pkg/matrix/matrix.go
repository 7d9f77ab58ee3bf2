// Package matrix builds the profile x region task matrix.
package matrix

import "fmt"

// Params is one point of the matrix: the two named arguments handed to a
// task function.
type Params struct {
	Profile string `json:"profile" yaml:"profile"`
	Region  string `json:"region" yaml:"region"`
}

// String returns "profile/region".
func (p Params) String() string {
	return fmt.Sprintf("%s/%s", p.Profile, p.Region)
}

// Args returns the parameter set as a keyword map with exactly the keys
// "profile" and "region".
func (p Params) Args() map[string]string {
	return map[string]string{
		"profile": p.Profile,
		"region":  p.Region,
	}
}

// Build returns the Cartesian product of profiles and regions, profiles in
// the outer loop and regions in the inner loop. Duplicates on either axis are
// kept. An empty axis yields an empty (non-nil) matrix.
func Build(profiles, regions []string) []Params {
	out := make([]Params, 0, len(profiles)*len(regions))
	for _, profile := range profiles {
		for _, region := range regions {
			out = append(out, Params{Profile: profile, Region: region})
		}
	}
	return out
}

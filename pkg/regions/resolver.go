// Package regions validates and normalizes region selectors against the
// regions a credential profile can reach.
package regions

import (
	"context"
	"fmt"

	"github.com/go-logr/logr"
)

// Lister returns the authoritative region list for a profile.
type Lister interface {
	ListRegions(ctx context.Context, profile string) ([]string, error)
}

// ListerFunc adapts a plain function to Lister.
type ListerFunc func(ctx context.Context, profile string) ([]string, error)

// ListRegions calls f.
func (f ListerFunc) ListRegions(ctx context.Context, profile string) ([]string, error) {
	return f(ctx, profile)
}

// ValidationError reports requested regions that are not in the
// authoritative list.
type ValidationError struct {
	Profile string
	Invalid []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid region(s) passed: %v", e.Invalid)
}

// Resolver turns a Selector into a validated region list.
type Resolver struct {
	lister        Lister
	logger        logr.Logger
	onLookupError func(profile string, err error)
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithLogger sets the logger used for soft-failure diagnostics.
func WithLogger(logger logr.Logger) Option {
	return func(r *Resolver) { r.logger = logger }
}

// WithLookupErrorHook registers fn to be called whenever the region lookup
// fails. The failure is still downgraded to an empty authoritative list.
func WithLookupErrorHook(fn func(profile string, err error)) Option {
	return func(r *Resolver) { r.onLookupError = fn }
}

// NewResolver creates a Resolver backed by lister.
func NewResolver(lister Lister, opts ...Option) *Resolver {
	r := &Resolver{
		lister: lister,
		logger: logr.Discard(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve validates sel against the regions known for profile and returns
// the normalized request. A lookup failure is logged and treated as an empty
// authoritative list, so any requested region then fails validation.
func (r *Resolver) Resolve(ctx context.Context, profile string, sel Selector) ([]string, error) {
	if sel.Ambiguous() {
		r.logger.Info("Region selector is a bare string and was split into single characters",
			"selector", sel.String())
	}

	requested := sel.Requested()
	if len(requested) == 0 {
		return []string{}, nil
	}

	known := r.authoritative(ctx, profile)

	var invalid []string
	for _, name := range requested {
		if !Contains(known, name) {
			invalid = append(invalid, name)
		}
	}
	if len(invalid) > 0 {
		return nil, &ValidationError{Profile: profile, Invalid: invalid}
	}

	return requested, nil
}

func (r *Resolver) authoritative(ctx context.Context, profile string) []string {
	if r.lister == nil {
		return nil
	}

	known, err := r.lister.ListRegions(ctx, profile)
	if err != nil {
		r.logger.Error(err, "Error getting regions", "profile", profile)
		if r.onLookupError != nil {
			r.onLookupError(profile, err)
		}
		return nil
	}
	return known
}

// Contains checks if a slice contains a string
func Contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}

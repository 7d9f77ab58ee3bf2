package audit

import "context"

type contextKey string

const journalKey contextKey = "awsmp_journal"

// WithJournal stores a journal in the context.
func WithJournal(ctx context.Context, j *Journal) context.Context {
	return context.WithValue(ctx, journalKey, j)
}

// FromContext returns the journal stored in ctx, or nil.
func FromContext(ctx context.Context) *Journal {
	if v := ctx.Value(journalKey); v != nil {
		if j, ok := v.(*Journal); ok {
			return j
		}
	}
	return nil
}

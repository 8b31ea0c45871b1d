package httpx

import "context"

type ctxKey string

const (
	CtxKeySubject ctxKey = "subject_id"
)

// SubjectFromContext returns the authenticated subject set by AuthnMiddleware.
func SubjectFromContext(ctx context.Context) (string, bool) {
	sub, ok := ctx.Value(CtxKeySubject).(string)
	return sub, ok && sub != ""
}

// WithSubject stores an authenticated subject in ctx.
func WithSubject(ctx context.Context, subjectID string) context.Context {
	return context.WithValue(ctx, CtxKeySubject, subjectID)
}

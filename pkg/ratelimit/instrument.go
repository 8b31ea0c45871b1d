package ratelimit

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
)

type instrumented struct {
	next      Limiter
	decisions *prometheus.CounterVec
}

// Instrumented counts every decision of next in decisions, labelled by class
// and outcome ("allowed", "denied" or "error").
func Instrumented(next Limiter, decisions *prometheus.CounterVec) Limiter {
	if decisions == nil {
		return next
	}
	return &instrumented{next: next, decisions: decisions}
}

func (i *instrumented) Admit(ctx context.Context, key string, class Class) (Decision, error) {
	d, err := i.next.Admit(ctx, key, class)
	outcome := "allowed"
	switch {
	case err != nil:
		outcome = "error"
	case !d.Allowed:
		outcome = "denied"
	}
	i.decisions.WithLabelValues(string(class), outcome).Inc()
	return d, err
}

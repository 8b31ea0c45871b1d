package platform

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aussiebroadwan/kaleidoscope/pkg/slogx"
	"github.com/prometheus/client_golang/prometheus"
)

// DefaultProviderTimeout bounds every provider call made through a SoftAdapter.
const DefaultProviderTimeout = 8 * time.Second

var errProviderPanic = errors.New("platform: provider panicked")

// SoftOptions configures a SoftAdapter. The zero value is usable.
type SoftOptions struct {
	// Timeout per call; DefaultProviderTimeout when zero
	Timeout time.Duration

	// Calls counts outcomes by platform, op and outcome. Optional.
	Calls *prometheus.CounterVec

	// Duration observes call latency by platform and op. Optional.
	Duration *prometheus.HistogramVec
}

// SoftAdapter turns a Provider into an Adapter. Errors, timeouts and panics
// are logged and counted, then collapsed into empty results.
type SoftAdapter struct {
	provider Provider
	opts     SoftOptions
}

var _ Adapter = (*SoftAdapter)(nil)

// NewSoftAdapter wraps p.
func NewSoftAdapter(p Provider, opts SoftOptions) *SoftAdapter {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultProviderTimeout
	}
	return &SoftAdapter{provider: p, opts: opts}
}

func (a *SoftAdapter) Platform() Platform { return a.provider.Platform() }

func (a *SoftAdapter) Search(ctx context.Context, query string, limit int) []Track {
	r := call(ctx, a, "search", func(ctx context.Context) ([]Track, error) {
		return a.provider.Search(ctx, query, limit)
	})
	if r.err != nil || r.value == nil {
		return []Track{}
	}
	return r.value
}

func (a *SoftAdapter) Track(ctx context.Context, id string) (Track, bool) {
	r := call(ctx, a, "track", func(ctx context.Context) (Track, error) {
		return a.provider.Track(ctx, id)
	})
	if r.err != nil || r.value.ID == "" {
		return Track{}, false
	}
	return r.value, true
}

func (a *SoftAdapter) Stream(ctx context.Context, id string) (Stream, bool) {
	r := call(ctx, a, "stream", func(ctx context.Context) (Stream, error) {
		return a.provider.Stream(ctx, id)
	})
	if r.err != nil || r.value.URL == "" {
		return Stream{}, false
	}
	return r.value, true
}

type result[T any] struct {
	value T
	err   error
}

// call runs fn under the adapter's timeout, recovering panics, then records
// the outcome.
func call[T any](ctx context.Context, a *SoftAdapter, op string, fn func(context.Context) (T, error)) result[T] {
	callCtx, cancel := context.WithTimeout(ctx, a.opts.Timeout)
	defer cancel()

	start := time.Now()
	r := func() (r result[T]) {
		defer func() {
			if p := recover(); p != nil {
				r = result[T]{err: fmt.Errorf("%w: %v", errProviderPanic, p)}
			}
		}()
		v, err := fn(callCtx)
		return result[T]{value: v, err: err}
	}()

	a.record(ctx, op, r.err, time.Since(start))
	return r
}

func (a *SoftAdapter) record(ctx context.Context, op string, err error, took time.Duration) {
	platform := a.provider.Platform().String()
	log := slogx.FromContext(ctx)

	outcome := "ok"
	switch {
	case err == nil:
	case errors.Is(err, ErrNotFound):
		outcome = "not_found"
		log.Debug("provider returned nothing", "platform", platform, "op", op, "err", err)
	default:
		outcome = "error"
		log.Warn("provider call failed", "platform", platform, "op", op, "err", err, "duration", took)
	}

	if a.opts.Calls != nil {
		a.opts.Calls.WithLabelValues(platform, op, outcome).Inc()
	}
	if a.opts.Duration != nil {
		a.opts.Duration.WithLabelValues(platform, op).Observe(took.Seconds())
	}
}

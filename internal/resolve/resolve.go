// Package resolve dispatches music lookups to platform adapters and runs the
// cross-platform stream fallback for Spotify tracks.
package resolve

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/aussiebroadwan/kaleidoscope/internal/platform"
	"github.com/aussiebroadwan/kaleidoscope/pkg/slogx"
)

const (
	DefaultSearchLimit = 20
	MaxSearchLimit     = 50

	// matchSearchLimit is how many candidates a fallback match considers.
	matchSearchLimit = 5

	soundCloudTolerance = 10 * time.Second
	youTubeTolerance    = 15 * time.Second
)

// Fallback step names, also used as metric labels.
const (
	StepSpotifyPreview  = "spotify-preview"
	StepSoundCloudMatch = "soundcloud-match"
	StepYouTubeMatch    = "youtube-match"
)

var (
	ErrUnsupportedPlatform = errors.New("resolve: unsupported platform")
	ErrTrackNotFound       = errors.New("resolve: track not found")
	ErrStreamNotFound      = errors.New("resolve: stream not found")
)

// Options configures a Resolver.
type Options struct {
	// FallbackSteps counts fallback step outcomes by step and outcome. Optional.
	FallbackSteps *prometheus.CounterVec
}

// Resolver routes requests to the adapter for a platform.
type Resolver struct {
	adapters map[platform.Platform]platform.Adapter
	steps    *prometheus.CounterVec
}

// New creates a Resolver over adapters, keyed by their Platform.
// Platforms without an adapter are reported as unsupported.
func New(adapters []platform.Adapter, opts Options) *Resolver {
	m := make(map[platform.Platform]platform.Adapter, len(adapters))
	for _, a := range adapters {
		m[a.Platform()] = a
	}
	return &Resolver{adapters: m, steps: opts.FallbackSteps}
}

func (r *Resolver) adapter(name string) (platform.Platform, platform.Adapter, bool) {
	p, ok := platform.Parse(name)
	if !ok {
		return "", nil, false
	}
	a, ok := r.adapters[p]
	return p, a, ok
}

// ClampLimit applies the search limit bounds; non-positive means default.
func ClampLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultSearchLimit
	case limit > MaxSearchLimit:
		return MaxSearchLimit
	}
	return limit
}

// Search runs query on one platform. An unsupported platform never reaches
// an adapter.
func (r *Resolver) Search(ctx context.Context, name, query string, limit int) ([]platform.Track, error) {
	_, a, ok := r.adapter(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedPlatform, name)
	}
	return a.Search(ctx, query, ClampLimit(limit)), nil
}

// Track looks up one track. Unknown platforms are reported as not found.
func (r *Resolver) Track(ctx context.Context, name, id string) (platform.Track, error) {
	_, a, ok := r.adapter(name)
	if !ok {
		return platform.Track{}, ErrTrackNotFound
	}
	t, ok := a.Track(ctx, id)
	if !ok {
		return platform.Track{}, ErrTrackNotFound
	}
	return t, nil
}

// Stream resolves a playable stream. SoundCloud and YouTube answer directly;
// Spotify tracks walk the fallback chain.
func (r *Resolver) Stream(ctx context.Context, name, id string) (platform.Stream, error) {
	p, a, ok := r.adapter(name)
	if !ok {
		return platform.Stream{}, fmt.Errorf("%w: %q", ErrUnsupportedPlatform, name)
	}

	if p != platform.Spotify {
		s, ok := a.Stream(ctx, id)
		if !ok {
			return platform.Stream{}, ErrStreamNotFound
		}
		return s, nil
	}

	s, step, ok := FirstStream(ctx, r.spotifyChain(ctx, a, id))
	if !ok {
		slogx.FromContext(ctx).Info("no stream for spotify track", "track_id", id)
		return platform.Stream{}, ErrStreamNotFound
	}
	slogx.FromContext(ctx).Debug("spotify stream resolved", "track_id", id, "step", step)
	return s, nil
}

// spotifyChain builds the ordered fallback for a Spotify track. The Spotify
// track is fetched at most once and shared by every step.
func (r *Resolver) spotifyChain(ctx context.Context, spotify platform.Adapter, id string) []Step {
	source := sync.OnceValues(func() (platform.Track, bool) {
		return spotify.Track(ctx, id)
	})

	steps := []Step{{
		Name: StepSpotifyPreview,
		Resolve: func(context.Context) (platform.Stream, bool) {
			t, ok := source()
			if !ok {
				return platform.Stream{}, false
			}
			return platform.PreviewStream(t)
		},
	}}
	if sc, ok := r.adapters[platform.SoundCloud]; ok {
		steps = append(steps, matchStep(StepSoundCloudMatch, source, sc, soundCloudQuery, soundCloudTolerance))
	}
	if yt, ok := r.adapters[platform.YouTube]; ok {
		steps = append(steps, matchStep(StepYouTubeMatch, source, yt, youTubeQuery, youTubeTolerance))
	}

	for i := range steps {
		steps[i] = r.counted(steps[i])
	}
	return steps
}

func (r *Resolver) counted(s Step) Step {
	if r.steps == nil {
		return s
	}
	resolve := s.Resolve
	s.Resolve = func(ctx context.Context) (platform.Stream, bool) {
		st, ok := resolve(ctx)
		outcome := "miss"
		if ok {
			outcome = "hit"
		}
		r.steps.WithLabelValues(s.Name, outcome).Inc()
		return st, ok
	}
	return s
}

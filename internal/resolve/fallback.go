package resolve

import (
	"context"
	"time"

	"github.com/aussiebroadwan/kaleidoscope/internal/platform"
)

// Step is one lazily evaluated attempt in a fallback chain.
type Step struct {
	Name    string
	Resolve func(ctx context.Context) (platform.Stream, bool)
}

// FirstStream runs steps in order and returns the first stream found along
// with the name of the step that found it. A cancelled context stops the
// chain before the next step.
func FirstStream(ctx context.Context, steps []Step) (platform.Stream, string, bool) {
	for _, s := range steps {
		if ctx.Err() != nil {
			return platform.Stream{}, "", false
		}
		if st, ok := s.Resolve(ctx); ok {
			return st, s.Name, true
		}
	}
	return platform.Stream{}, "", false
}

// matchStep searches target for the source track and streams the best match.
func matchStep(
	name string,
	source func() (platform.Track, bool),
	target platform.Adapter,
	query func(platform.Track) string,
	tolerance time.Duration,
) Step {
	return Step{
		Name: name,
		Resolve: func(ctx context.Context) (platform.Stream, bool) {
			src, ok := source()
			if !ok {
				return platform.Stream{}, false
			}
			candidates := target.Search(ctx, query(src), matchSearchLimit)
			best, ok := BestMatch(src, candidates, tolerance)
			if !ok {
				return platform.Stream{}, false
			}
			return target.Stream(ctx, best.ID)
		},
	}
}

func soundCloudQuery(t platform.Track) string {
	return leadArtist(t) + " " + t.Title
}

func youTubeQuery(t platform.Track) string {
	return leadArtist(t) + " - " + t.Title
}

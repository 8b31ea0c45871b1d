package resolve

import (
	"cmp"
	"math"
	"slices"
	"strings"
	"time"

	"github.com/aussiebroadwan/kaleidoscope/internal/platform"
)

// BestMatch picks the candidate that most likely is src. Candidates whose
// duration is known and off by more than tolerance are dropped. The rest
// rank by exact title, then artist containment, then duration distance,
// then their original order.
func BestMatch(src platform.Track, candidates []platform.Track, tolerance time.Duration) (platform.Track, bool) {
	type ranked struct {
		track  platform.Track
		title  bool
		artist bool
		diff   int
		index  int
	}

	tol := int(tolerance / time.Second)
	artists := artistNames(src)
	title := normalize(src.Title)

	pool := make([]ranked, 0, len(candidates))
	for i, c := range candidates {
		if c.ID == "" {
			continue
		}
		diff := math.MaxInt
		if src.Duration > 0 && c.Duration > 0 {
			diff = abs(src.Duration - c.Duration)
			if diff > tol {
				continue
			}
		}
		pool = append(pool, ranked{
			track:  c,
			title:  normalize(c.Title) == title,
			artist: containsAny(normalize(c.Artist)+" "+normalize(c.Title), artists),
			diff:   diff,
			index:  i,
		})
	}
	if len(pool) == 0 {
		return platform.Track{}, false
	}

	best := slices.MinFunc(pool, func(a, b ranked) int {
		return cmp.Or(
			compareBool(a.title, b.title),
			compareBool(a.artist, b.artist),
			cmp.Compare(a.diff, b.diff),
			cmp.Compare(a.index, b.index),
		)
	})
	return best.track, true
}

// compareBool orders true before false.
func compareBool(a, b bool) int {
	switch {
	case a == b:
		return 0
	case a:
		return -1
	}
	return 1
}

// leadArtist prefers the provider-ordered lead over the display string.
func leadArtist(t platform.Track) string {
	if t.LeadArtist != "" {
		return t.LeadArtist
	}
	first, _, _ := strings.Cut(t.Artist, ", ")
	return first
}

func artistNames(t platform.Track) []string {
	var names []string
	for _, name := range strings.Split(t.Artist, ",") {
		if n := normalize(name); n != "" && n != "unknown artist" {
			names = append(names, n)
		}
	}
	return names
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

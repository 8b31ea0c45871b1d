package soundcloud

import (
	"strconv"
	"strings"

	"github.com/aussiebroadwan/kaleidoscope/internal/platform"
)

type searchResponse struct {
	Collection []apiTrack `json:"collection"`
}

type apiTrack struct {
	ID           int64  `json:"id"`
	Title        string `json:"title"`
	Duration     int    `json:"duration"` // milliseconds
	Streamable   bool   `json:"streamable"`
	ArtworkURL   string `json:"artwork_url"`
	PermalinkURL string `json:"permalink_url"`
	User         struct {
		Username  string `json:"username"`
		AvatarURL string `json:"avatar_url"`
	} `json:"user"`
	Media struct {
		Transcodings []struct {
			URL    string `json:"url"`
			Format struct {
				Protocol string `json:"protocol"`
				MimeType string `json:"mime_type"`
			} `json:"format"`
		} `json:"transcodings"`
	} `json:"media"`
}

func (t apiTrack) progressiveURL() string {
	for _, tc := range t.Media.Transcodings {
		if tc.Format.Protocol == "progressive" && tc.URL != "" {
			return tc.URL
		}
	}
	return ""
}

// canonical maps t to a platform.Track. Tracks with nothing playable are dropped.
func (t apiTrack) canonical() (platform.Track, bool) {
	if t.ID == 0 {
		return platform.Track{}, false
	}
	if !t.Streamable && t.progressiveURL() == "" {
		return platform.Track{}, false
	}

	title := t.Title
	if title == "" {
		title = "Unknown Title"
	}
	artist := t.User.Username
	if artist == "" {
		artist = "Unknown Artist"
	}
	cover := artwork(t.ArtworkURL)
	if cover == "" {
		cover = artwork(t.User.AvatarURL)
	}

	seconds := t.Duration / 1000
	return platform.Track{
		ID:             strconv.FormatInt(t.ID, 10),
		Title:          title,
		Artist:         artist,
		Duration:       seconds,
		DurationString: platform.FormatDuration(seconds),
		CoverArt:       cover,
		Source:         platform.SoundCloud,
		PermalinkURL:   t.PermalinkURL,
	}, true
}

var smallArtwork = []string{"badge", "tiny", "small", "t67x67", "mini", "t120x120", "large", "t300x300", "crop"}

// artwork upgrades a SoundCloud image URL to the 500x500 variant.
func artwork(u string) string {
	if u == "" {
		return ""
	}
	if strings.Contains(u, "-"+artworkSize+".") || strings.Contains(u, "-original.") {
		return u
	}
	for _, size := range smallArtwork {
		marker := "-" + size + "."
		if strings.Contains(u, marker) {
			return strings.Replace(u, marker, "-"+artworkSize+".", 1)
		}
	}
	if strings.HasPrefix(u, "http") {
		return u
	}
	return ""
}

package resolve

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/kaleidoscope/internal/platform"
)

func TestBestMatch(t *testing.T) {
	t.Parallel()

	src := platform.Track{Title: "Get Lucky", Artist: "Daft Punk, Pharrell Williams", Duration: 369}

	tests := []struct {
		name       string
		candidates []platform.Track
		tolerance  time.Duration
		wantID     string
		wantOK     bool
	}{
		{
			name:   "no candidates",
			wantOK: false,
		},
		{
			name: "all outside tolerance",
			candidates: []platform.Track{
				{ID: "a", Title: "Get Lucky", Artist: "Daft Punk", Duration: 600},
			},
			tolerance: 10 * time.Second,
			wantOK:    false,
		},
		{
			name: "exact title beats closer duration",
			candidates: []platform.Track{
				{ID: "remix", Title: "Get Lucky (Remix)", Artist: "Daft Punk", Duration: 369},
				{ID: "orig", Title: "get lucky", Artist: "Someone", Duration: 375},
			},
			tolerance: 10 * time.Second,
			wantID:    "orig",
			wantOK:    true,
		},
		{
			name: "artist containment breaks title tie",
			candidates: []platform.Track{
				{ID: "cover", Title: "Get Lucky", Artist: "Cover Band", Duration: 369},
				{ID: "real", Title: "Get Lucky", Artist: "Daft Punk Official", Duration: 372},
			},
			tolerance: 10 * time.Second,
			wantID:    "real",
			wantOK:    true,
		},
		{
			name: "duration breaks remaining tie",
			candidates: []platform.Track{
				{ID: "far", Title: "Get Lucky", Artist: "Daft Punk", Duration: 378},
				{ID: "near", Title: "Get Lucky", Artist: "Daft Punk", Duration: 370},
			},
			tolerance: 10 * time.Second,
			wantID:    "near",
			wantOK:    true,
		},
		{
			name: "order breaks full tie",
			candidates: []platform.Track{
				{ID: "first", Title: "Get Lucky", Artist: "Daft Punk", Duration: 370},
				{ID: "second", Title: "Get Lucky", Artist: "Daft Punk", Duration: 368},
			},
			tolerance: 10 * time.Second,
			wantID:    "first",
			wantOK:    true,
		},
		{
			name: "unknown duration kept but ranked after known",
			candidates: []platform.Track{
				{ID: "unknown", Title: "Get Lucky", Artist: "Daft Punk"},
				{ID: "known", Title: "Get Lucky", Artist: "Daft Punk", Duration: 360},
			},
			tolerance: 15 * time.Second,
			wantID:    "known",
			wantOK:    true,
		},
		{
			name: "artist in uploader title",
			candidates: []platform.Track{
				{ID: "x", Title: "Lucky", Artist: "randomuser", Duration: 369},
				{ID: "y", Title: "Pharrell Williams - Lucky", Artist: "randomuser", Duration: 369},
			},
			tolerance: 10 * time.Second,
			wantID:    "y",
			wantOK:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := BestMatch(src, tt.candidates, tt.tolerance)
			require.Equal(t, tt.wantOK, ok)
			require.Equal(t, tt.wantID, got.ID)
		})
	}
}

func TestBestMatchDeterministic(t *testing.T) {
	t.Parallel()

	src := platform.Track{Title: "Song", Artist: "Band", Duration: 200}
	candidates := []platform.Track{
		{ID: "1", Title: "Song", Artist: "Band", Duration: 205},
		{ID: "2", Title: "Song", Artist: "Band", Duration: 195},
	}
	for range 20 {
		got, ok := BestMatch(src, candidates, 10*time.Second)
		require.True(t, ok)
		require.Equal(t, "1", got.ID)
	}
}

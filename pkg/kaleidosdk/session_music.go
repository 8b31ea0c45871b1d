package kaleidosdk

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
)

// Search looks up tracks on one platform. A limit of zero uses the server default.
func (s *Session) Search(ctx context.Context, platform, query string, limit int) ([]Track, error) {
	q := url.Values{"query": {query}}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}

	resp, err := s.doAuthRequest(ctx, http.MethodGet, "/search/"+url.PathEscape(platform)+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}

	var out SearchResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	if err := musicError(out.Error); err != nil {
		return nil, err
	}
	return out.Results, nil
}

// Track fetches a single track by platform id.
func (s *Session) Track(ctx context.Context, platform, id string) (*Track, error) {
	resp, err := s.doAuthRequest(ctx, http.MethodGet, "/track/"+url.PathEscape(platform)+"/"+url.PathEscape(id), nil)
	if err != nil {
		return nil, err
	}

	var out TrackResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	if err := musicError(out.Error); err != nil {
		return nil, err
	}
	return &out.Track, nil
}

// Stream resolves a playable stream for a track.
func (s *Session) Stream(ctx context.Context, platform, id string) (*Stream, error) {
	resp, err := s.doAuthRequest(ctx, http.MethodGet, "/track/"+url.PathEscape(platform)+"/"+url.PathEscape(id)+"/stream", nil)
	if err != nil {
		return nil, err
	}

	var out StreamResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	if err := musicError(out.Error); err != nil {
		return nil, err
	}
	return &out.Stream, nil
}

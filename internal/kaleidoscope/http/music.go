package http

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/aussiebroadwan/kaleidoscope/internal/platform"
	"github.com/aussiebroadwan/kaleidoscope/internal/resolve"
	"github.com/aussiebroadwan/kaleidoscope/pkg/httpx"
	"github.com/aussiebroadwan/kaleidoscope/pkg/kaleidosdk"
)

// MusicHandler serves search, track and stream lookups. Provider failures
// and unknown platforms are answered with a 200 and an "error" field, so
// players can treat every outcome the same way.
type MusicHandler struct {
	Resolver *resolve.Resolver
}

type searchBody struct {
	Results []platform.Track `json:"results"`
	Error   string           `json:"error,omitempty"`
}

type errorBody struct {
	Error string `json:"error"`
}

// HandleSearch searches one platform.
//
//	@Summary		Search tracks
//	@Tags			Music
//	@Security		BearerAuth
//	@Produce		json
//	@Param			platform	path		string	true	"soundcloud, youtube or spotify"
//	@Param			query		query		string	true	"Search terms"
//	@Param			limit		query		int		false	"1 to 50"	default(20)
//	@Success		200			{object}	kaleidosdk.SearchResponse
//	@Failure		400			{object}	kaleidosdk.ErrorResponse	"missing query"
//	@Failure		401			{object}	kaleidosdk.ErrorResponse
//	@Failure		429			{object}	kaleidosdk.ErrorResponse
//	@Router			/search/{platform} [get]
//	@Router			/search/{platform} [post]
func (h *MusicHandler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query := strings.TrimSpace(q.Get("query"))
	if query == "" {
		kaleidosdk.ErrMissingQuery.WriteError(w)
		return
	}

	limit := 0
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			kaleidosdk.NewAPIError(http.StatusBadRequest, kaleidosdk.ErrorCodeInvalidRequest, "limit must be an integer").WriteError(w)
			return
		}
		limit = n
	}

	results, err := h.Resolver.Search(r.Context(), r.PathValue("platform"), query, limit)
	if err != nil {
		if errors.Is(err, resolve.ErrUnsupportedPlatform) {
			httpx.WriteJSON(w, http.StatusOK, searchBody{Results: []platform.Track{}, Error: kaleidosdk.MsgUnsupportedPlatform})
			return
		}
		writeError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, searchBody{Results: results})
}

// HandleTrack fetches one track.
//
//	@Summary		Get track
//	@Tags			Music
//	@Security		BearerAuth
//	@Produce		json
//	@Param			platform	path		string	true	"soundcloud, youtube or spotify"
//	@Param			id			path		string	true	"Platform track id"
//	@Success		200			{object}	kaleidosdk.TrackResponse	"track, or {\"error\":\"Track not found\"}"
//	@Failure		401			{object}	kaleidosdk.ErrorResponse
//	@Router			/track/{platform}/{id} [get]
func (h *MusicHandler) HandleTrack(w http.ResponseWriter, r *http.Request) {
	t, err := h.Resolver.Track(r.Context(), r.PathValue("platform"), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, resolve.ErrTrackNotFound) {
			httpx.WriteJSON(w, http.StatusOK, errorBody{Error: kaleidosdk.MsgTrackNotFound})
			return
		}
		writeError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, t)
}

// HandleStream resolves a playable URL. Spotify tracks fall back to
// SoundCloud and YouTube matches when no preview exists.
//
//	@Summary		Get stream
//	@Tags			Music
//	@Security		BearerAuth
//	@Produce		json
//	@Param			platform	path		string	true	"soundcloud, youtube or spotify"
//	@Param			id			path		string	true	"Platform track id"
//	@Success		200			{object}	kaleidosdk.StreamResponse	"stream, or an error field"
//	@Failure		401			{object}	kaleidosdk.ErrorResponse
//	@Router			/track/{platform}/{id}/stream [get]
func (h *MusicHandler) HandleStream(w http.ResponseWriter, r *http.Request) {
	s, err := h.Resolver.Stream(r.Context(), r.PathValue("platform"), r.PathValue("id"))
	switch {
	case err == nil:
		httpx.WriteJSON(w, http.StatusOK, s)
	case errors.Is(err, resolve.ErrUnsupportedPlatform):
		httpx.WriteJSON(w, http.StatusOK, errorBody{Error: kaleidosdk.MsgUnsupportedPlatform})
	case errors.Is(err, resolve.ErrStreamNotFound):
		httpx.WriteJSON(w, http.StatusOK, errorBody{Error: kaleidosdk.MsgStreamNotAvailable})
	default:
		writeError(w, r, err)
	}
}

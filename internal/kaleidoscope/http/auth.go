package http

import (
	"net/http"
	"strings"

	"github.com/aussiebroadwan/kaleidoscope/internal/kaleidoscope/domain"
	"github.com/aussiebroadwan/kaleidoscope/internal/kaleidoscope/service"
	"github.com/aussiebroadwan/kaleidoscope/pkg/httpx"
	"github.com/aussiebroadwan/kaleidoscope/pkg/kaleidosdk"
	"github.com/aussiebroadwan/kaleidoscope/pkg/slogx"
)

type AuthHandler struct {
	Accounts *service.AccountService
	Tokens   *service.TokenService
}

func sessionMeta(r *http.Request) domain.SessionMeta {
	return domain.SessionMeta{
		UserAgent: r.UserAgent(),
		IPAddress: httpx.IPKeyExtractor(r),
	}
}

func tokenResponse(p domain.TokenPair) kaleidosdk.TokenResponse {
	return kaleidosdk.TokenResponse{
		AccessToken:  p.AccessToken,
		RefreshToken: p.RefreshToken,
		TokenType:    p.TokenType,
		ExpiresIn:    p.ExpiresIn,
	}
}

// HandleRegister creates an identity and signs it in.
//
//	@Summary		Register
//	@Description	Creates an account and returns a token pair. Handles may contain letters, numbers, underscores and dashes.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		kaleidosdk.RegisterRequest	true	"Registration details"
//	@Success		201		{object}	kaleidosdk.TokenResponse
//	@Failure		400		{object}	kaleidosdk.ErrorResponse	"invalid_request, email_taken, handle_taken or invalid_handle"
//	@Failure		429		{object}	kaleidosdk.ErrorResponse
//	@Router			/auth/register [post]
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req kaleidosdk.RegisterRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		kaleidosdk.ErrInvalidRequest.WriteError(w)
		return
	}

	id, err := h.Accounts.Register(r.Context(), req.Email, req.Password, req.Handle)
	if err != nil {
		writeError(w, r, err)
		return
	}

	pair, err := h.Tokens.Issue(r.Context(), id, sessionMeta(r))
	if err != nil {
		writeError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, tokenResponse(pair))
}

// HandleLogin authenticates with email and password.
//
//	@Summary		Login
//	@Description	Exchanges credentials for a token pair. Unknown email and wrong password give the same error.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		kaleidosdk.LoginRequest	true	"Credentials"
//	@Success		200		{object}	kaleidosdk.TokenResponse
//	@Failure		400		{object}	kaleidosdk.ErrorResponse
//	@Failure		401		{object}	kaleidosdk.ErrorResponse	"invalid_credentials"
//	@Failure		429		{object}	kaleidosdk.ErrorResponse
//	@Router			/auth/login [post]
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req kaleidosdk.LoginRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil || strings.TrimSpace(req.Email) == "" || req.Password == "" {
		kaleidosdk.ErrInvalidRequest.WriteError(w)
		return
	}

	id, err := h.Accounts.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}

	pair, err := h.Tokens.Issue(r.Context(), id, sessionMeta(r))
	if err != nil {
		writeError(w, r, err)
		return
	}

	slogx.FromContext(r.Context()).Info("login", "subject_id", id.ID)
	httpx.WriteJSON(w, http.StatusOK, tokenResponse(pair))
}

// HandleRefresh rotates a refresh token.
//
//	@Summary		Refresh
//	@Description	Exchanges a refresh token for a new pair. Each refresh token works once; presenting a used one revokes every token of that login.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		kaleidosdk.RefreshRequest	true	"Refresh token"
//	@Success		200		{object}	kaleidosdk.TokenResponse
//	@Failure		400		{object}	kaleidosdk.ErrorResponse
//	@Failure		401		{object}	kaleidosdk.ErrorResponse	"invalid_refresh_token, session_not_found or session_expired"
//	@Failure		429		{object}	kaleidosdk.ErrorResponse
//	@Router			/auth/refresh [post]
func (h *AuthHandler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	var req kaleidosdk.RefreshRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil || req.RefreshToken == "" {
		kaleidosdk.ErrInvalidRequest.WriteError(w)
		return
	}

	pair, err := h.Tokens.Refresh(r.Context(), req.RefreshToken, sessionMeta(r))
	if err != nil {
		writeError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, tokenResponse(pair))
}

// HandleLogout revokes one refresh token.
//
//	@Summary		Logout
//	@Description	Revokes the given refresh token. Logging out twice fails with session_not_found.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		kaleidosdk.RefreshRequest	true	"Refresh token"
//	@Success		200		{object}	map[string]string
//	@Failure		400		{object}	kaleidosdk.ErrorResponse
//	@Failure		401		{object}	kaleidosdk.ErrorResponse	"invalid_refresh_token or session_not_found"
//	@Router			/auth/logout [post]
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	var req kaleidosdk.RefreshRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil || req.RefreshToken == "" {
		kaleidosdk.ErrInvalidRequest.WriteError(w)
		return
	}

	if err := h.Tokens.Revoke(r.Context(), req.RefreshToken); err != nil {
		writeError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, struct{}{})
}

// HandleLogoutAll revokes every session of the caller.
//
//	@Summary		Logout everywhere
//	@Description	Revokes all refresh tokens of the authenticated user. Access tokens stay valid until they expire.
//	@Tags			Auth
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	kaleidosdk.LogoutAllResponse
//	@Failure		401	{object}	kaleidosdk.ErrorResponse
//	@Router			/auth/logout-all [post]
func (h *AuthHandler) HandleLogoutAll(w http.ResponseWriter, r *http.Request) {
	sub, ok := httpx.SubjectFromContext(r.Context())
	if !ok {
		kaleidosdk.ErrInvalidToken.WriteError(w)
		return
	}

	n, err := h.Tokens.RevokeAll(r.Context(), sub)
	if err != nil {
		writeError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, kaleidosdk.LogoutAllResponse{Revoked: n})
}

// HandleMe returns the authenticated identity.
//
//	@Summary		Current user
//	@Tags			Auth
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	kaleidosdk.MeResponse
//	@Failure		401	{object}	kaleidosdk.ErrorResponse
//	@Router			/auth/me [get]
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	sub, ok := httpx.SubjectFromContext(r.Context())
	if !ok {
		kaleidosdk.ErrInvalidToken.WriteError(w)
		return
	}

	id, err := h.Accounts.GetIdentity(r.Context(), sub)
	if err != nil {
		writeError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, kaleidosdk.MeResponse{
		ID:          id.ID,
		Email:       id.Email,
		Handle:      id.Handle,
		DisplayName: id.DisplayName,
	})
}

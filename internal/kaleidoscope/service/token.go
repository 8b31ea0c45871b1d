package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/kaleidoscope/internal/kaleidoscope/domain"
	"github.com/aussiebroadwan/kaleidoscope/internal/kaleidoscope/store"
	"github.com/aussiebroadwan/kaleidoscope/pkg/cryptox"
	"github.com/aussiebroadwan/kaleidoscope/pkg/idx"
	"github.com/aussiebroadwan/kaleidoscope/pkg/jwtx"
	"github.com/aussiebroadwan/kaleidoscope/pkg/slogx"
)

// TokenType is the token_type of every issued pair.
const TokenType = "bearer"

// TokenService issues access tokens and owns the refresh session lifecycle.
// Each login starts a chain; every refresh revokes the presented link and
// appends a new one. Presenting a revoked link revokes the whole chain.
type TokenService struct {
	KeyManager *jwtx.KeyManager
	Identities store.Identities
	Sessions   store.Sessions
	Issuer     string
	Audience   []string
	AccessTTL  time.Duration
	RefreshTTL time.Duration

	// Now defaults to time.Now.
	Now func() time.Time
}

func (s *TokenService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Issue starts a new refresh chain for id.
func (s *TokenService) Issue(ctx context.Context, id domain.Identity, meta domain.SessionMeta) (domain.TokenPair, error) {
	return s.issue(ctx, id, idx.New().String(), meta, s.now())
}

// VerifyAccess validates an access token and returns its subject. It does
// not touch any store.
func (s *TokenService) VerifyAccess(_ context.Context, token string) (string, error) {
	claims, err := s.KeyManager.Verifier.Verify(token)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if claims.Subject == "" {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}

// Refresh rotates a refresh token. Of any number of concurrent callers
// presenting the same token, exactly one gets a new pair; the rest are
// treated as replays.
func (s *TokenService) Refresh(ctx context.Context, refreshToken string, meta domain.SessionMeta) (domain.TokenPair, error) {
	now := s.now()
	l := slogx.FromContext(ctx)

	// 1. Shape check, so JWTs and junk never reach the store
	if !cryptox.IsTokenOfSize(refreshToken, cryptox.TokenSize256) {
		return domain.TokenPair{}, ErrInvalidRefreshToken
	}
	fp := cryptox.FingerprintToken(refreshToken)

	// 2. Lookup
	sess, err := s.Sessions.FindSession(ctx, fp)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.TokenPair{}, ErrSessionNotFound
		}
		return domain.TokenPair{}, err
	}

	// 3. Already rotated or logged out: replay
	if sess.Revoked {
		l.Warn("refresh token replay detected",
			slog.String("chain_id", sess.ChainID),
			slog.String("subject_id", sess.SubjectID),
		)
		s.revokeChain(ctx, sess.ChainID, now)
		return domain.TokenPair{}, ErrSessionNotFound
	}

	// 4. Expiry
	if sess.IsExpired(now) {
		return domain.TokenPair{}, ErrSessionExpired
	}

	// 5. Claim the link. Losing the swap means someone else rotated it
	// between our read and now.
	won, err := s.Sessions.MarkRevoked(ctx, fp, now)
	if err != nil {
		return domain.TokenPair{}, err
	}
	if !won {
		l.Warn("concurrent refresh lost rotation",
			slog.String("chain_id", sess.ChainID),
			slog.String("subject_id", sess.SubjectID),
		)
		s.revokeChain(ctx, sess.ChainID, now)
		return domain.TokenPair{}, ErrSessionNotFound
	}

	// 6. Next link in the same chain
	id, err := s.Identities.GetIdentityByID(ctx, sess.SubjectID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.TokenPair{}, ErrSessionNotFound
		}
		return domain.TokenPair{}, err
	}
	return s.issue(ctx, id, sess.ChainID, meta, now)
}

// Revoke logs out a single refresh token. A token that is unknown or already
// revoked yields ErrSessionNotFound without touching the rest of its chain.
func (s *TokenService) Revoke(ctx context.Context, refreshToken string) error {
	if !cryptox.IsTokenOfSize(refreshToken, cryptox.TokenSize256) {
		return ErrInvalidRefreshToken
	}
	ok, err := s.Sessions.MarkRevoked(ctx, cryptox.FingerprintToken(refreshToken), s.now())
	if err != nil {
		return err
	}
	if !ok {
		return ErrSessionNotFound
	}
	return nil
}

// RevokeAll revokes every session of subjectID and returns how many were live.
func (s *TokenService) RevokeAll(ctx context.Context, subjectID string) (int64, error) {
	n, err := s.Sessions.RevokeAllForSubject(ctx, subjectID, s.now())
	if err != nil {
		return 0, err
	}
	slogx.FromContext(ctx).Info("revoked all sessions", slog.String("subject_id", subjectID), slog.Int64("count", n))
	return n, nil
}

// revokeChain is best effort: the caller is already failing the request.
func (s *TokenService) revokeChain(ctx context.Context, chainID string, now time.Time) {
	n, err := s.Sessions.RevokeChain(ctx, chainID, now)
	if err != nil {
		slogx.FromContext(ctx).Error("failed to revoke refresh chain",
			slog.String("chain_id", chainID),
			slog.Any("error", err),
		)
		return
	}
	slogx.FromContext(ctx).Info("refresh chain revoked", slog.String("chain_id", chainID), slog.Int64("count", n))
}

func (s *TokenService) issue(
	ctx context.Context,
	id domain.Identity,
	chainID string,
	meta domain.SessionMeta,
	now time.Time,
) (domain.TokenPair, error) {
	signer := s.KeyManager.GetSigner()
	if signer == nil {
		return domain.TokenPair{}, errors.New("service: no signing key available")
	}

	claims := jwtx.NewAccessClaims(
		id.ID,      // subject
		chainID,    // session id
		id.Handle,  // handle
		s.AccessTTL,
		s.Issuer,
		s.Audience,
		now,
	)
	access, err := signer.Sign(claims)
	if err != nil {
		return domain.TokenPair{}, fmt.Errorf("sign access token: %w", err)
	}

	refresh, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		return domain.TokenPair{}, err
	}

	sess := domain.RefreshSession{
		ID:        idx.NewAt(now).String(),
		TokenHash: cryptox.FingerprintToken(refresh),
		SubjectID: id.ID,
		ChainID:   chainID,
		UserAgent: meta.UserAgent,
		IPAddress: meta.IPAddress,
		IssuedAt:  now,
		ExpiresAt: now.Add(s.RefreshTTL),
	}
	if err := s.Sessions.CreateSession(ctx, sess); err != nil {
		return domain.TokenPair{}, fmt.Errorf("create session: %w", err)
	}

	return domain.TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    TokenType,
		ExpiresIn:    int(s.AccessTTL / time.Second),
	}, nil
}

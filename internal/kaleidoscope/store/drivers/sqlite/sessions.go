package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/aussiebroadwan/kaleidoscope/internal/kaleidoscope/domain"
)

type sessionsRepo struct {
	db dbtx
}

func (r *sessionsRepo) CreateSession(ctx context.Context, s domain.RefreshSession) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO refresh_sessions (id, token_hash, subject_id, chain_id, user_agent, ip_address, issued_at, expires_at, revoked, revoked_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		s.ID,
		s.TokenHash,
		s.SubjectID,
		s.ChainID,
		s.UserAgent,
		s.IPAddress,
		toUnix(s.IssuedAt),
		toUnix(s.ExpiresAt),
		s.Revoked,
		toNullUnix(s.RevokedAt),
	)
	return mapConstraint(err)
}

func (r *sessionsRepo) FindSession(ctx context.Context, tokenHash string) (domain.RefreshSession, error) {
	var (
		s               domain.RefreshSession
		issued, expires int64
		revokedAt       sql.NullInt64
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT id, token_hash, subject_id, chain_id, user_agent, ip_address, issued_at, expires_at, revoked, revoked_at
		FROM refresh_sessions WHERE token_hash = ?`, tokenHash,
	).Scan(&s.ID, &s.TokenHash, &s.SubjectID, &s.ChainID, &s.UserAgent, &s.IPAddress, &issued, &expires, &s.Revoked, &revokedAt)
	if err != nil {
		return domain.RefreshSession{}, mapNotFound(err)
	}
	s.IssuedAt = fromUnix(issued)
	s.ExpiresAt = fromUnix(expires)
	s.RevokedAt = fromNullUnix(revokedAt)
	return s, nil
}

// MarkRevoked is a single conditional UPDATE, so two callers racing on the
// same hash cannot both see a row change.
func (r *sessionsRepo) MarkRevoked(ctx context.Context, tokenHash string, at time.Time) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE refresh_sessions SET revoked = 1, revoked_at = ? WHERE token_hash = ? AND revoked = 0`,
		toUnix(at), tokenHash,
	)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (r *sessionsRepo) RevokeChain(ctx context.Context, chainID string, at time.Time) (int64, error) {
	return r.exec(ctx,
		`UPDATE refresh_sessions SET revoked = 1, revoked_at = ? WHERE chain_id = ? AND revoked = 0`,
		toUnix(at), chainID,
	)
}

func (r *sessionsRepo) RevokeAllForSubject(ctx context.Context, subjectID string, at time.Time) (int64, error) {
	return r.exec(ctx,
		`UPDATE refresh_sessions SET revoked = 1, revoked_at = ? WHERE subject_id = ? AND revoked = 0`,
		toUnix(at), subjectID,
	)
}

func (r *sessionsRepo) DeleteExpiredSessions(ctx context.Context, before time.Time) (int64, error) {
	return r.exec(ctx, `DELETE FROM refresh_sessions WHERE expires_at < ?`, toUnix(before))
}

func (r *sessionsRepo) Ping(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `SELECT 1`)
	return err
}

func (r *sessionsRepo) exec(ctx context.Context, query string, args ...any) (int64, error) {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

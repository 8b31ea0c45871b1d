// Package redis stores refresh sessions in Redis. Identities stay in SQL;
// only the session store can be moved here.
package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/aussiebroadwan/kaleidoscope/internal/kaleidoscope/domain"
	"github.com/aussiebroadwan/kaleidoscope/internal/kaleidoscope/store"
)

const DefaultPrefix = "kaleidoscope"

// createScript writes the session hash and adds it to the chain and subject
// indexes. Index sets live as long as their longest-lived member.
//
// KEYS: session, chain set, subject set
// ARGV: token hash, ttl ms, field/value pairs...
var createScript = goredis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 1 then
	return 0
end
redis.call('HSET', KEYS[1], unpack(ARGV, 3))
redis.call('PEXPIRE', KEYS[1], ARGV[2])
local ttl = tonumber(ARGV[2])
for i = 2, 3 do
	redis.call('SADD', KEYS[i], ARGV[1])
	if redis.call('PTTL', KEYS[i]) < ttl then
		redis.call('PEXPIRE', KEYS[i], ttl)
	end
end
return 1
`)

// markRevokedScript flips revoked from 0 to 1. Returns 1 only for the caller
// that did the flip.
//
// KEYS: session
// ARGV: revoked_at
var markRevokedScript = goredis.NewScript(`
if redis.call('HGET', KEYS[1], 'revoked') == '0' then
	redis.call('HSET', KEYS[1], 'revoked', '1', 'revoked_at', ARGV[1])
	return 1
end
return 0
`)

// revokeSetScript revokes every live session listed in an index set.
//
// KEYS: chain or subject set
// ARGV: revoked_at, session key prefix
var revokeSetScript = goredis.NewScript(`
local n = 0
for _, h in ipairs(redis.call('SMEMBERS', KEYS[1])) do
	local k = ARGV[2] .. h
	if redis.call('HGET', k, 'revoked') == '0' then
		redis.call('HSET', k, 'revoked', '1', 'revoked_at', ARGV[1])
		n = n + 1
	end
end
return n
`)

type Sessions struct {
	client goredis.UniversalClient
	prefix string
	now    func() time.Time
}

var _ store.Sessions = (*Sessions)(nil)

// NewSessions returns a session store keeping its keys under prefix.
func NewSessions(client goredis.UniversalClient, prefix string) *Sessions {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &Sessions{client: client, prefix: prefix, now: time.Now}
}

func (s *Sessions) sessionKey(hash string) string { return s.prefix + ":session:" + hash }
func (s *Sessions) chainKey(id string) string     { return s.prefix + ":chain:" + id }
func (s *Sessions) subjectKey(id string) string   { return s.prefix + ":subject:" + id }

func (s *Sessions) CreateSession(ctx context.Context, sess domain.RefreshSession) error {
	// Kept past expiry so FindSession can still report it as expired.
	ttl := sess.ExpiresAt.Add(store.ExpiredSessionRetention).Sub(s.now())
	if ttl < time.Millisecond {
		ttl = time.Millisecond
	}

	revoked, revokedAt := "0", ""
	if sess.Revoked {
		revoked = "1"
	}
	if sess.RevokedAt != nil {
		revokedAt = strconv.FormatInt(sess.RevokedAt.Unix(), 10)
	}

	keys := []string{s.sessionKey(sess.TokenHash), s.chainKey(sess.ChainID), s.subjectKey(sess.SubjectID)}
	args := []any{
		sess.TokenHash, ttl.Milliseconds(),
		"id", sess.ID,
		"subject_id", sess.SubjectID,
		"chain_id", sess.ChainID,
		"user_agent", sess.UserAgent,
		"ip_address", sess.IPAddress,
		"issued_at", sess.IssuedAt.Unix(),
		"expires_at", sess.ExpiresAt.Unix(),
		"revoked", revoked,
		"revoked_at", revokedAt,
	}

	created, err := createScript.Run(ctx, s.client, keys, args...).Int()
	if err != nil {
		return fmt.Errorf("redis: create session: %w", err)
	}
	if created == 0 {
		return store.ErrAlreadyExists
	}
	return nil
}

func (s *Sessions) FindSession(ctx context.Context, tokenHash string) (domain.RefreshSession, error) {
	fields, err := s.client.HGetAll(ctx, s.sessionKey(tokenHash)).Result()
	if err != nil {
		return domain.RefreshSession{}, fmt.Errorf("redis: find session: %w", err)
	}
	if len(fields) == 0 {
		return domain.RefreshSession{}, store.ErrNotFound
	}
	return decodeSession(tokenHash, fields)
}

func (s *Sessions) MarkRevoked(ctx context.Context, tokenHash string, at time.Time) (bool, error) {
	n, err := markRevokedScript.Run(ctx, s.client, []string{s.sessionKey(tokenHash)}, at.Unix()).Int()
	if err != nil {
		return false, fmt.Errorf("redis: mark revoked: %w", err)
	}
	return n == 1, nil
}

func (s *Sessions) RevokeChain(ctx context.Context, chainID string, at time.Time) (int64, error) {
	return s.revokeSet(ctx, s.chainKey(chainID), at)
}

func (s *Sessions) RevokeAllForSubject(ctx context.Context, subjectID string, at time.Time) (int64, error) {
	return s.revokeSet(ctx, s.subjectKey(subjectID), at)
}

func (s *Sessions) revokeSet(ctx context.Context, setKey string, at time.Time) (int64, error) {
	n, err := revokeSetScript.Run(ctx, s.client, []string{setKey}, at.Unix(), s.prefix+":session:").Int64()
	if err != nil {
		return 0, fmt.Errorf("redis: revoke %s: %w", setKey, err)
	}
	return n, nil
}

// DeleteExpiredSessions prunes index entries whose session hash is gone.
// Key TTLs already removed the hashes, so before is not consulted. The count
// is the number of sessions dropped from subject indexes.
func (s *Sessions) DeleteExpiredSessions(ctx context.Context, _ time.Time) (int64, error) {
	var removed int64
	for _, pattern := range []string{s.subjectKey("*"), s.chainKey("*")} {
		iter := s.client.Scan(ctx, 0, pattern, 100).Iterator()
		for iter.Next(ctx) {
			n, err := s.prune(ctx, iter.Val())
			if err != nil {
				return removed, err
			}
			if pattern == s.subjectKey("*") {
				removed += n
			}
		}
		if err := iter.Err(); err != nil {
			return removed, fmt.Errorf("redis: scan %s: %w", pattern, err)
		}
	}
	return removed, nil
}

func (s *Sessions) prune(ctx context.Context, setKey string) (int64, error) {
	members, err := s.client.SMembers(ctx, setKey).Result()
	if err != nil {
		return 0, fmt.Errorf("redis: members %s: %w", setKey, err)
	}
	if len(members) == 0 {
		return 0, nil
	}

	pipe := s.client.Pipeline()
	exists := make([]*goredis.IntCmd, len(members))
	for i, h := range members {
		exists[i] = pipe.Exists(ctx, s.sessionKey(h))
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("redis: exists: %w", err)
	}

	var stale []any
	for i, cmd := range exists {
		if cmd.Val() == 0 {
			stale = append(stale, members[i])
		}
	}
	if len(stale) == 0 {
		return 0, nil
	}
	return s.client.SRem(ctx, setKey, stale...).Result()
}

func (s *Sessions) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

var errCorruptSession = errors.New("redis: corrupt session hash")

func decodeSession(tokenHash string, f map[string]string) (domain.RefreshSession, error) {
	issued, err1 := strconv.ParseInt(f["issued_at"], 10, 64)
	expires, err2 := strconv.ParseInt(f["expires_at"], 10, 64)
	if err := errors.Join(err1, err2); err != nil {
		return domain.RefreshSession{}, fmt.Errorf("%w: %w", errCorruptSession, err)
	}

	sess := domain.RefreshSession{
		ID:        f["id"],
		TokenHash: tokenHash,
		SubjectID: f["subject_id"],
		ChainID:   f["chain_id"],
		UserAgent: f["user_agent"],
		IPAddress: f["ip_address"],
		IssuedAt:  time.Unix(issued, 0).UTC(),
		ExpiresAt: time.Unix(expires, 0).UTC(),
		Revoked:   f["revoked"] == "1",
	}
	if v := f["revoked_at"]; v != "" {
		at, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return domain.RefreshSession{}, fmt.Errorf("%w: revoked_at: %w", errCorruptSession, err)
		}
		t := time.Unix(at, 0).UTC()
		sess.RevokedAt = &t
	}
	return sess, nil
}

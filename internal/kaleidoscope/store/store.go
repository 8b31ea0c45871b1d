package store

import (
	"context"
	"errors"
	"time"

	"github.com/aussiebroadwan/kaleidoscope/internal/kaleidoscope/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// ExpiredSessionRetention is how long a session is kept past its expiry, so
// a late refresh is reported as expired rather than unknown.
const ExpiredSessionRetention = 24 * time.Hour

// Store is the root data access interface. Concrete drivers implement it and
// expose sub-repositories, so a transaction-scoped Store can hand out the
// same repos without nesting transactions.
type Store interface {
	Identities() Identities
	Sessions() Sessions

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes fn within a transaction. If fn returns an error the
	// transaction is rolled back, otherwise it is committed.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

// Identities is the credential store. Email and handle lookups are exact
// matches on the normalised (lowercased) values.
type Identities interface {
	GetIdentityByID(ctx context.Context, id string) (domain.Identity, error)
	GetIdentityByEmail(ctx context.Context, email string) (domain.Identity, error)
	GetIdentityByHandle(ctx context.Context, handle string) (domain.Identity, error)

	// CreateIdentity returns ErrAlreadyExists when the email or handle is taken.
	CreateIdentity(ctx context.Context, id domain.Identity) error
}

// Sessions persists refresh sessions. Implementations may live in a
// different backend from Identities.
type Sessions interface {
	CreateSession(ctx context.Context, s domain.RefreshSession) error

	// FindSession returns ErrNotFound when no session has tokenHash.
	FindSession(ctx context.Context, tokenHash string) (domain.RefreshSession, error)

	// MarkRevoked revokes the session atomically, only if it is not revoked
	// yet. It reports whether this call did the revoking; false means the
	// session is absent or already revoked.
	MarkRevoked(ctx context.Context, tokenHash string, at time.Time) (bool, error)

	// RevokeChain revokes every session in a chain and returns how many changed.
	RevokeChain(ctx context.Context, chainID string, at time.Time) (int64, error)

	// RevokeAllForSubject revokes every session of a subject.
	RevokeAllForSubject(ctx context.Context, subjectID string, at time.Time) (int64, error)

	// DeleteExpiredSessions removes sessions that expired before before.
	// Callers pass a cutoff at least ExpiredSessionRetention in the past.
	DeleteExpiredSessions(ctx context.Context, before time.Time) (int64, error)

	// Ping verifies the backend is reachable.
	Ping(ctx context.Context) error
}

package sqlite

import (
	"context"
	"strings"

	"github.com/aussiebroadwan/kaleidoscope/internal/kaleidoscope/domain"
)

type identitiesRepo struct {
	db dbtx
}

const identityColumns = `id, email, handle, display_name, password_hash, created_at, updated_at`

func (r *identitiesRepo) get(ctx context.Context, where string, arg string) (domain.Identity, error) {
	var (
		id               domain.Identity
		created, updated int64
	)
	row := r.db.QueryRowContext(ctx, `SELECT `+identityColumns+` FROM identities WHERE `+where+` = ?`, arg)
	err := row.Scan(&id.ID, &id.Email, &id.Handle, &id.DisplayName, &id.PasswordHash, &created, &updated)
	if err != nil {
		return domain.Identity{}, mapNotFound(err)
	}
	id.CreatedAt = fromUnix(created)
	id.UpdatedAt = fromUnix(updated)
	return id, nil
}

func (r *identitiesRepo) GetIdentityByID(ctx context.Context, id string) (domain.Identity, error) {
	return r.get(ctx, "id", id)
}

func (r *identitiesRepo) GetIdentityByEmail(ctx context.Context, email string) (domain.Identity, error) {
	return r.get(ctx, "email_normalized", strings.ToLower(strings.TrimSpace(email)))
}

func (r *identitiesRepo) GetIdentityByHandle(ctx context.Context, handle string) (domain.Identity, error) {
	return r.get(ctx, "handle", strings.ToLower(handle))
}

func (r *identitiesRepo) CreateIdentity(ctx context.Context, id domain.Identity) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO identities (id, email, email_normalized, handle, display_name, password_hash, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		id.ID,
		id.Email,
		strings.ToLower(strings.TrimSpace(id.Email)),
		strings.ToLower(id.Handle),
		id.DisplayName,
		id.PasswordHash,
		toUnix(id.CreatedAt),
		toUnix(id.UpdatedAt),
	)
	return mapConstraint(err)
}

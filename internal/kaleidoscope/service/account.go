package service

import (
	"context"
	"errors"
	"log/slog"
	"net/mail"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/aussiebroadwan/kaleidoscope/internal/kaleidoscope/domain"
	"github.com/aussiebroadwan/kaleidoscope/internal/kaleidoscope/store"
	"github.com/aussiebroadwan/kaleidoscope/pkg/cryptox"
	"github.com/aussiebroadwan/kaleidoscope/pkg/slogx"
)

const (
	MinPasswordLength = 8
	MaxHandleLength   = 32
)

var handlePattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// AccountService registers and authenticates identities.
type AccountService struct {
	Store store.Store

	// Now defaults to time.Now.
	Now func() time.Time
}

// NormalizeEmail trims and lowercases an address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidateHandle checks the handle charset and length.
func ValidateHandle(handle string) error {
	if len(handle) == 0 || len(handle) > MaxHandleLength || !handlePattern.MatchString(handle) {
		return ErrInvalidHandle
	}
	return nil
}

func validateEmail(email string) error {
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email || !strings.Contains(email[strings.LastIndex(email, "@"):], ".") {
		return ErrInvalidEmail
	}
	return nil
}

// Register creates an identity. The email and handle checks and the insert
// run in one transaction.
func (s *AccountService) Register(ctx context.Context, email, password, handle string) (domain.Identity, error) {
	email = NormalizeEmail(email)
	handle = strings.TrimSpace(handle)

	if err := validateEmail(email); err != nil {
		return domain.Identity{}, err
	}
	if len(password) < MinPasswordLength {
		return domain.Identity{}, ErrWeakPassword
	}
	if err := ValidateHandle(handle); err != nil {
		return domain.Identity{}, err
	}

	// Hash outside the transaction; argon2 is deliberately slow.
	hash, err := cryptox.HashPassword(password)
	if err != nil {
		return domain.Identity{}, err
	}

	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	t := now().UTC()

	local, _, _ := strings.Cut(email, "@")
	id := domain.Identity{
		ID:           uuid.NewString(),
		Email:        email,
		Handle:       strings.ToLower(handle),
		DisplayName:  local,
		PasswordHash: hash,
		CreatedAt:    t,
		UpdatedAt:    t,
	}

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if _, err := tx.Identities().GetIdentityByEmail(ctx, email); err == nil {
			return ErrEmailTaken
		} else if !errors.Is(err, store.ErrNotFound) {
			return err
		}

		if _, err := tx.Identities().GetIdentityByHandle(ctx, handle); err == nil {
			return ErrHandleTaken
		} else if !errors.Is(err, store.ErrNotFound) {
			return err
		}

		if err := tx.Identities().CreateIdentity(ctx, id); err != nil {
			if errors.Is(err, store.ErrAlreadyExists) {
				return ErrEmailTaken
			}
			return err
		}
		return nil
	})
	if err != nil {
		return domain.Identity{}, err
	}

	slogx.FromContext(ctx).Info("identity registered", slog.String("subject_id", id.ID), slog.String("handle", id.Handle))
	return id, nil
}

// Authenticate checks an email and password pair. Unknown email and wrong
// password are indistinguishable to the caller.
func (s *AccountService) Authenticate(ctx context.Context, email, password string) (domain.Identity, error) {
	id, err := s.Store.Identities().GetIdentityByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Identity{}, ErrInvalidCredentials
		}
		return domain.Identity{}, err
	}

	if err := cryptox.VerifyPassword(password, id.PasswordHash); err != nil {
		if !errors.Is(err, cryptox.ErrPasswordMismatch) {
			slogx.FromContext(ctx).Error("password verification failed",
				slog.String("subject_id", id.ID),
				slog.Any("error", err),
			)
		}
		return domain.Identity{}, ErrInvalidCredentials
	}
	return id, nil
}

// GetIdentity fetches an identity by id.
func (s *AccountService) GetIdentity(ctx context.Context, id string) (domain.Identity, error) {
	out, err := s.Store.Identities().GetIdentityByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return domain.Identity{}, ErrIdentityNotFound
	}
	return out, err
}

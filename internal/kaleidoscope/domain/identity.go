package domain

import "time"

type Identity struct {
	ID           string // UUIDv4
	Email        string // trimmed and lowercased
	Handle       string // lowercased
	DisplayName  string
	PasswordHash string // argon2id PHC string, or legacy bcrypt
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

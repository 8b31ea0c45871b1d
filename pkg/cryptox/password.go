package cryptox

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/bcrypt"
)

// ErrPasswordMismatch is returned when a password does not match its hash.
var ErrPasswordMismatch = errors.New("password does not match")

var errHashFormat = errors.New("invalid hash format")

const saltLength = 16

// argonParams are the Argon2id cost settings recorded in a PHC string.
type argonParams struct {
	memory  uint32 // KiB
	time    uint32
	threads uint8
	keyLen  uint32
}

// defaultArgon is the OWASP minimum for Argon2id: 19 MiB, 2 passes.
var defaultArgon = argonParams{memory: 19 * 1024, time: 2, threads: 1, keyLen: 32}

func (p argonParams) derive(password string, salt []byte) []byte {
	return argon2.IDKey([]byte(password+GetPepper()), salt, p.time, p.memory, p.threads, p.keyLen)
}

// HashPassword returns an Argon2id PHC string for password:
// $argon2id$v=19$m=<mem>,t=<time>,p=<threads>$<salt>$<key>
func HashPassword(password string) (string, error) {
	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("cryptox: salt: %w", err)
	}

	p := defaultArgon
	enc := base64.RawStdEncoding
	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, p.memory, p.time, p.threads,
		enc.EncodeToString(salt), enc.EncodeToString(p.derive(password, salt)),
	), nil
}

// VerifyPassword checks password against a hash from HashPassword. Bcrypt
// hashes of imported accounts are also accepted; those carry no pepper.
func VerifyPassword(password, encoded string) error {
	if isBcrypt(encoded) {
		err := bcrypt.CompareHashAndPassword([]byte(encoded), []byte(password))
		switch {
		case err == nil:
			return nil
		case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
			return ErrPasswordMismatch
		default:
			return fmt.Errorf("%w: %w", errHashFormat, err)
		}
	}

	p, salt, want, err := decodeArgon(encoded)
	if err != nil {
		return err
	}
	if subtle.ConstantTimeCompare(p.derive(password, salt), want) != 1 {
		return ErrPasswordMismatch
	}
	return nil
}

func decodeArgon(encoded string) (argonParams, []byte, []byte, error) {
	var p argonParams

	fields := strings.Split(encoded, "$")
	if len(fields) != 6 || fields[0] != "" || fields[1] != "argon2id" {
		return p, nil, nil, fmt.Errorf("%w: not an argon2id PHC string", errHashFormat)
	}
	if fields[2] != fmt.Sprintf("v=%d", argon2.Version) {
		return p, nil, nil, fmt.Errorf("%w: unsupported version %q", errHashFormat, fields[2])
	}
	if _, err := fmt.Sscanf(fields[3], "m=%d,t=%d,p=%d", &p.memory, &p.time, &p.threads); err != nil {
		return p, nil, nil, fmt.Errorf("%w: parameters: %w", errHashFormat, err)
	}

	salt, err := base64.RawStdEncoding.DecodeString(fields[4])
	if err != nil {
		return p, nil, nil, fmt.Errorf("%w: salt: %w", errHashFormat, err)
	}
	key, err := base64.RawStdEncoding.DecodeString(fields[5])
	if err != nil || len(key) == 0 {
		return p, nil, nil, fmt.Errorf("%w: key", errHashFormat)
	}
	p.keyLen = uint32(len(key)) // #nosec G115

	return p, salt, key, nil
}

func isBcrypt(encoded string) bool {
	for _, prefix := range []string{"$2a$", "$2b$", "$2y$"} {
		if strings.HasPrefix(encoded, prefix) {
			return true
		}
	}
	return false
}

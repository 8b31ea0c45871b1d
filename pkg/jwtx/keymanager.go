package jwtx

import (
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/aussiebroadwan/kaleidoscope/pkg/cryptox"
)

// AlgorithmEdDSA is the only signing algorithm issued.
const AlgorithmEdDSA = "EdDSA"

// KeyIDPrefix prefixes every key id this package assigns.
const KeyIDPrefix = "kaleidoscope-"

const (
	defaultEphemeralKeys = 3
	maxEphemeralKeys     = 10
)

var errNoIssuer = errors.New("jwtx: Issuer is required")

// KeyManager holds the signing keys of one instance together with the
// KeySet and Verifier built over their public halves. Each signature uses a
// key picked at random. The signer list is fixed after construction.
type KeyManager struct {
	Verifier Verifier
	KeySet   *KeySet

	signers []Signer
}

// KeyManagerOptions configures the KeyManager.
type KeyManagerOptions struct {
	Issuer   string   // required; enforced on verify
	Audience []string // empty disables the audience check

	// NumKeys is the number of ephemeral keys, 3 when unset and at most 10.
	// File backed managers always hold one.
	NumKeys int
}

// NewEphemeralKeyManager generates keys that live only in memory, so access
// tokens do not survive a restart.
func NewEphemeralKeyManager(opts KeyManagerOptions) (*KeyManager, error) {
	n := opts.NumKeys
	switch {
	case n <= 0:
		n = defaultEphemeralKeys
	case n > maxEphemeralKeys:
		n = maxEphemeralKeys
	}

	signers := make([]Signer, 0, n)
	for i := range n {
		suffix, err := cryptox.GenerateToken(cryptox.TokenSize128)
		if err != nil {
			return nil, fmt.Errorf("jwtx: key id %d: %w", i, err)
		}
		pemBytes, err := cryptox.GenerateEd25519Key()
		if err != nil {
			return nil, fmt.Errorf("jwtx: key %d: %w", i, err)
		}
		s, err := NewSigner(KeyIDPrefix+suffix, pemBytes)
		if err != nil {
			return nil, err
		}
		signers = append(signers, s)
	}
	return newKeyManager(opts, signers)
}

// NewFileKeyManager uses the Ed25519 key at path, creating it on first start.
// The kid is taken from the key's thumbprint, so every process sharing the
// file signs under the same kid.
func NewFileKeyManager(path string, opts KeyManagerOptions) (*KeyManager, error) {
	pemBytes, err := cryptox.LoadOrGenerateEd25519Key(path)
	if err != nil {
		return nil, err
	}

	unnamed, err := NewSigner("", pemBytes)
	if err != nil {
		return nil, err
	}
	thumb, err := unnamed.PublicJWK().Thumbprint()
	if err != nil {
		return nil, err
	}
	s, err := NewSigner(KeyIDPrefix+thumb[:16], pemBytes)
	if err != nil {
		return nil, err
	}
	return newKeyManager(opts, []Signer{s})
}

func newKeyManager(opts KeyManagerOptions, signers []Signer) (*KeyManager, error) {
	if opts.Issuer == "" {
		return nil, errNoIssuer
	}

	keys := NewKeySet()
	for _, s := range signers {
		if err := keys.AddSigner(s); err != nil {
			return nil, fmt.Errorf("jwtx: publish %s: %w", s.KID(), err)
		}
	}
	return &KeyManager{
		Verifier: NewVerifier(keys, opts.Issuer, opts.Audience),
		KeySet:   keys,
		signers:  signers,
	}, nil
}

func (km *KeyManager) Algorithm() string { return AlgorithmEdDSA }

// IsReady reports whether the manager can both sign and verify.
func (km *KeyManager) IsReady() bool {
	return len(km.signers) > 0 && km.KeySet.IsReady()
}

// GetSigner returns one of the signing keys at random, or nil if there are none.
func (km *KeyManager) GetSigner() Signer {
	if len(km.signers) == 0 {
		return nil
	}
	return km.signers[rand.IntN(len(km.signers))]
}

// NumSigners returns the number of signing keys.
func (km *KeyManager) NumSigners() int { return len(km.signers) }

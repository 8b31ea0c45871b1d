package jwtx

import (
	"crypto/ed25519"
	"errors"
	"sync"
)

var ErrNoKey = errors.New("jwtx: key not found")

// KeySet is the set of public keys access tokens are checked against. The
// service publishes it as a JWKS and clients rebuild it from one.
type KeySet struct {
	mu    sync.RWMutex
	order []JWK
	keys  map[string]ed25519.PublicKey
}

// NewKeySet returns an empty KeySet.
func NewKeySet() *KeySet {
	return &KeySet{keys: make(map[string]ed25519.PublicKey)}
}

// AddSigner publishes the public half of s.
func (k *KeySet) AddSigner(s Signer) error {
	return k.AddJWK(s.PublicJWK())
}

// AddJWK adds j, replacing any key with the same kid in place.
func (k *KeySet) AddJWK(j JWK) error {
	pub, err := j.PublicKey()
	if err != nil {
		return err
	}

	k.mu.Lock()
	defer k.mu.Unlock()

	if _, ok := k.keys[j.Kid]; ok {
		for i := range k.order {
			if k.order[i].Kid == j.Kid {
				k.order[i] = j
			}
		}
	} else {
		k.order = append(k.order, j)
	}
	k.keys[j.Kid] = pub
	return nil
}

// ResetFromJWKS swaps the whole set for the keys in jwks. Nothing changes if
// any key is malformed.
func (k *KeySet) ResetFromJWKS(jwks JWKS) error {
	keys := make(map[string]ed25519.PublicKey, len(jwks.Keys))
	for _, j := range jwks.Keys {
		pub, err := j.PublicKey()
		if err != nil {
			return err
		}
		keys[j.Kid] = pub
	}

	k.mu.Lock()
	defer k.mu.Unlock()
	k.keys = keys
	k.order = append([]JWK(nil), jwks.Keys...)
	return nil
}

func (k *KeySet) Get(kid string) (ed25519.PublicKey, error) {
	k.mu.RLock()
	defer k.mu.RUnlock()

	pub, ok := k.keys[kid]
	if !ok {
		return nil, ErrNoKey
	}
	return pub, nil
}

// PublicJWKS returns a copy of the published keys.
func (k *KeySet) PublicJWKS() JWKS {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return JWKS{Keys: append([]JWK{}, k.order...)}
}

// IsReady reports whether at least one key is loaded.
func (k *KeySet) IsReady() bool {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return len(k.keys) > 0
}

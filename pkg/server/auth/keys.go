package auth

import (
	"crypto/sha256"
	"errors"
	"sync"
)

var (
	// ErrInvalidKey is returned for keys that are not configured.
	ErrInvalidKey = errors.New("invalid API key")

	// ErrKeyDisabled is returned for configured keys that are disabled.
	ErrKeyDisabled = errors.New("API key disabled")
)

// Key is an API key and the user its runs are recorded as.
type Key struct {
	Key      string
	UserName string
	Disabled bool
}

// Validator checks API keys against a configured set. Keys are held by their
// SHA-256 digest.
type Validator struct {
	mu   sync.RWMutex
	keys map[[sha256.Size]byte]Key
}

// NewValidator creates a validator for keys. Keys with an empty value are
// ignored.
func NewValidator(keys []Key) *Validator {
	v := &Validator{}
	v.Replace(keys)
	return v
}

// Validate returns the key matching raw.
func (v *Validator) Validate(raw string) (Key, error) {
	if raw == "" {
		return Key{}, ErrInvalidKey
	}
	v.mu.RLock()
	k, ok := v.keys[sha256.Sum256([]byte(raw))]
	v.mu.RUnlock()
	if !ok {
		return Key{}, ErrInvalidKey
	}
	if k.Disabled {
		return Key{}, ErrKeyDisabled
	}
	return k, nil
}

// Replace swaps the whole key set.
func (v *Validator) Replace(keys []Key) {
	m := make(map[[sha256.Size]byte]Key, len(keys))
	for _, k := range keys {
		if k.Key == "" {
			continue
		}
		m[sha256.Sum256([]byte(k.Key))] = k
	}
	v.mu.Lock()
	v.keys = m
	v.mu.Unlock()
}

// Len returns the number of configured keys.
func (v *Validator) Len() int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return len(v.keys)
}

package keys

import (
	"errors"
	"fmt"
	"strings"
)

// SecretStore holds named secrets that config values refer to.
type SecretStore interface {
	Get(name string) (string, error)
	Put(name, secret string) error
	Delete(name string) error
}

var ErrSecretNotFound = errors.New("secret not found")

// KeyringPrefix marks a config value that names a stored secret,
// e.g. auth.token = "keyring:admin".
const KeyringPrefix = "keyring:"

// Resolve returns raw unchanged unless it starts with KeyringPrefix, in
// which case the named secret is looked up in s.
func Resolve(s SecretStore, raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	name, ok := strings.CutPrefix(raw, KeyringPrefix)
	if !ok {
		return raw, nil
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("empty secret name in %q", raw)
	}
	if s == nil {
		return "", ErrSecretNotFound
	}
	val, err := s.Get(name)
	if err != nil {
		return "", fmt.Errorf("secret %q: %w", name, err)
	}
	return strings.TrimSpace(val), nil
}

// MapStore keeps secrets in memory.
type MapStore map[string]string

func (m MapStore) Get(name string) (string, error) {
	val, ok := m[name]
	if !ok || val == "" {
		return "", ErrSecretNotFound
	}
	return val, nil
}

func (m MapStore) Put(name, secret string) error {
	if m == nil {
		return errors.New("nil map store")
	}
	m[name] = secret
	return nil
}

func (m MapStore) Delete(name string) error {
	delete(m, name)
	return nil
}

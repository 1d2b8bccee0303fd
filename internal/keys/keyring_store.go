package keys

import (
	"errors"

	"github.com/zalando/go-keyring"
)

const DefaultKeyringService = "sheetsite"

// KeyringStore keeps secrets in the system keyring.
type KeyringStore struct {
	Service string
}

func (s *KeyringStore) Get(name string) (string, error) {
	val, err := keyring.Get(s.service(), name)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", ErrSecretNotFound
		}
		return "", err
	}
	return val, nil
}

func (s *KeyringStore) Put(name, secret string) error {
	return keyring.Set(s.service(), name, secret)
}

func (s *KeyringStore) Delete(name string) error {
	if err := keyring.Delete(s.service(), name); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return ErrSecretNotFound
		}
		return err
	}
	return nil
}

func (s *KeyringStore) service() string {
	if s == nil || s.Service == "" {
		return DefaultKeyringService
	}
	return s.Service
}

// Package keyring stores the model API key in the operating system keychain.
package keyring

import (
	"errors"
	"fmt"
	"strings"

	"github.com/liang/fanqie/internal/domain"
	gokeyring "github.com/zalando/go-keyring"
)

// Keychain entry identifiers.
const (
	Service = "com.liang.fanqie-todo"
	Account = "dashscope_api_key"
)

// Ensure Store implements domain.CredentialStore.
var _ domain.CredentialStore = (*Store)(nil)

// Store is a CredentialStore backed by the system keychain.
type Store struct {
	service string
	account string
}

// New creates a Store using the default keychain entry.
func New() *Store {
	return &Store{service: Service, account: Account}
}

// APIKey returns the stored key. ok is false when no key is stored.
func (s *Store) APIKey() (string, bool, error) {
	key, err := gokeyring.Get(s.service, s.account)
	if err != nil {
		if errors.Is(err, gokeyring.ErrNotFound) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("read api key from keychain: %w", err)
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return "", false, nil
	}
	return key, true, nil
}

// SetAPIKey stores key, replacing any previous value.
func (s *Store) SetAPIKey(key string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return domain.ErrEmptyAPIKey
	}
	if err := gokeyring.Set(s.service, s.account, key); err != nil {
		return fmt.Errorf("write api key to keychain: %w", err)
	}
	return nil
}

// DeleteAPIKey removes the stored key. Removing a missing key succeeds.
func (s *Store) DeleteAPIKey() error {
	if err := gokeyring.Delete(s.service, s.account); err != nil {
		if errors.Is(err, gokeyring.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("delete api key from keychain: %w", err)
	}
	return nil
}

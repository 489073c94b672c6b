// Package usecase contains application use cases.
package usecase

import (
	"fmt"

	"github.com/liang/fanqie/internal/domain"
)

// ModelAccess resolves the credentials for the remote language model.
type ModelAccess struct {
	credentials domain.CredentialStore
	settings    domain.SettingsStore
}

// NewModelAccess creates a new ModelAccess.
func NewModelAccess(credentials domain.CredentialStore, settings domain.SettingsStore) *ModelAccess {
	return &ModelAccess{
		credentials: credentials,
		settings:    settings,
	}
}

// Ready reports whether an API key is stored.
// Keychain errors count as not ready.
func (a *ModelAccess) Ready() bool {
	if a == nil || a.credentials == nil {
		return false
	}
	_, ok, err := a.credentials.APIKey()
	return err == nil && ok
}

// Credentials returns the stored key and the configured model name.
// Returns domain.ErrRemoteUnavailable if no key is stored.
func (a *ModelAccess) Credentials() (domain.ModelCredentials, error) {
	if a == nil || a.credentials == nil {
		return domain.ModelCredentials{}, domain.ErrRemoteUnavailable
	}
	key, ok, err := a.credentials.APIKey()
	if err != nil {
		return domain.ModelCredentials{}, fmt.Errorf("read api key: %w", err)
	}
	if !ok {
		return domain.ModelCredentials{}, domain.ErrRemoteUnavailable
	}

	model := domain.DefaultModel
	if a.settings != nil {
		settings, err := a.settings.Load()
		if err != nil {
			return domain.ModelCredentials{}, fmt.Errorf("load settings: %w", err)
		}
		if settings.Model != "" {
			model = settings.Model
		}
	}
	return domain.ModelCredentials{APIKey: key, Model: model}, nil
}

// persistenceError marks err as a store failure while keeping it matchable.
func persistenceError(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, domain.ErrPersistenceFailed, err)
}

package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/liang/fanqie/internal/domain"
)

// MigrateLegacyKeyOutput contains the result of the migration.
type MigrateLegacyKeyOutput struct {
	Migrated bool
}

// MigrateLegacyKey moves an API key found in the settings file into the
// credential store.
type MigrateLegacyKey struct {
	credentials domain.CredentialStore
	settings    domain.SettingsStore
	logger      domain.Logger
}

// NewMigrateLegacyKey creates a new MigrateLegacyKey use case.
func NewMigrateLegacyKey(credentials domain.CredentialStore, settings domain.SettingsStore, logger domain.Logger) *MigrateLegacyKey {
	return &MigrateLegacyKey{
		credentials: credentials,
		settings:    settings,
		logger:      logger,
	}
}

// Execute stores the legacy key securely and removes it from the file.
// The file is only rewritten after the key is stored. A blank legacy key
// is simply dropped.
func (uc *MigrateLegacyKey) Execute(_ context.Context) (*MigrateLegacyKeyOutput, error) {
	settings, err := uc.settings.Load()
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}
	if settings.LegacyAPIKey == "" {
		return &MigrateLegacyKeyOutput{}, nil
	}

	key := strings.TrimSpace(settings.LegacyAPIKey)
	if key != "" {
		if err := uc.credentials.SetAPIKey(key); err != nil {
			return nil, fmt.Errorf("store migrated api key: %w", err)
		}
	}

	settings.LegacyAPIKey = ""
	if err := uc.settings.Save(settings); err != nil {
		return nil, fmt.Errorf("save settings: %w", err)
	}

	if uc.logger != nil {
		uc.logger.Info("", "model", "migrated api key from settings file to keychain")
	}

	return &MigrateLegacyKeyOutput{Migrated: key != ""}, nil
}

package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/liang/fanqie/internal/domain"
)

// ShowModelStatusOutput describes the model configuration.
type ShowModelStatusOutput struct {
	Model     string
	Endpoint  string
	HasAPIKey bool // Model-ready
}

// ShowModelStatus reports whether the language model can be used.
type ShowModelStatus struct {
	credentials domain.CredentialStore
	settings    domain.SettingsStore
}

// NewShowModelStatus creates a new ShowModelStatus use case.
func NewShowModelStatus(credentials domain.CredentialStore, settings domain.SettingsStore) *ShowModelStatus {
	return &ShowModelStatus{
		credentials: credentials,
		settings:    settings,
	}
}

// Execute returns the model status.
func (uc *ShowModelStatus) Execute(_ context.Context) (*ShowModelStatusOutput, error) {
	settings, err := uc.settings.Load()
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}
	_, ok, err := uc.credentials.APIKey()
	if err != nil {
		return nil, fmt.Errorf("read api key: %w", err)
	}
	return &ShowModelStatusOutput{
		Model:     settings.Model,
		Endpoint:  settings.Endpoint,
		HasAPIKey: ok,
	}, nil
}

// ConfigureModelInput contains the parameters for configuring the model.
type ConfigureModelInput struct {
	APIKey *string // New key (nil = keep, empty = remove)
	Model  string  // Model name (empty = keep)
}

// ConfigureModel stores the model name and, optionally, the API key.
type ConfigureModel struct {
	credentials domain.CredentialStore
	settings    domain.SettingsStore
	logger      domain.Logger
}

// NewConfigureModel creates a new ConfigureModel use case.
func NewConfigureModel(credentials domain.CredentialStore, settings domain.SettingsStore, logger domain.Logger) *ConfigureModel {
	return &ConfigureModel{
		credentials: credentials,
		settings:    settings,
		logger:      logger,
	}
}

// Execute saves the settings first, then updates the credential store.
func (uc *ConfigureModel) Execute(ctx context.Context, in ConfigureModelInput) (*ShowModelStatusOutput, error) {
	settings, err := uc.settings.Load()
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}
	if model := strings.TrimSpace(in.Model); model != "" && model != settings.Model {
		settings.Model = model
		if err := uc.settings.Save(settings); err != nil {
			return nil, fmt.Errorf("save settings: %w", err)
		}
	}

	if in.APIKey != nil {
		key := strings.TrimSpace(*in.APIKey)
		if key == "" {
			err = uc.credentials.DeleteAPIKey()
		} else {
			err = uc.credentials.SetAPIKey(key)
		}
		if err != nil {
			return nil, fmt.Errorf("update api key: %w", err)
		}
	}

	if uc.logger != nil {
		uc.logger.Info("", "model", fmt.Sprintf("configured model %q", settings.Model))
	}

	return NewShowModelStatus(uc.credentials, uc.settings).Execute(ctx)
}

// ClearModelKey removes the stored API key.
type ClearModelKey struct {
	credentials domain.CredentialStore
	logger      domain.Logger
}

// NewClearModelKey creates a new ClearModelKey use case.
func NewClearModelKey(credentials domain.CredentialStore, logger domain.Logger) *ClearModelKey {
	return &ClearModelKey{
		credentials: credentials,
		logger:      logger,
	}
}

// Execute removes the key. Removing a missing key succeeds.
func (uc *ClearModelKey) Execute(_ context.Context) error {
	if err := uc.credentials.DeleteAPIKey(); err != nil {
		return fmt.Errorf("delete api key: %w", err)
	}
	if uc.logger != nil {
		uc.logger.Info("", "model", "api key removed")
	}
	return nil
}

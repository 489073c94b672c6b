// Package config provides settings persistence in TOML.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/liang/fanqie/internal/domain"
	"github.com/pelletier/go-toml/v2"
)

// Ensure Store implements domain.SettingsStore.
var _ domain.SettingsStore = (*Store)(nil)

// knownKeys lists the accepted keys per section ("" = top level).
var knownKeys = map[string]map[string]bool{
	"":    {"model": true, "endpoint": true, "api_key": true, "log": true},
	"log": {"level": true},
}

// Store reads and writes the settings file.
type Store struct {
	path string
}

// NewStore creates a Store for the given file path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the settings file path.
func (s *Store) Path() string {
	return s.path
}

// Load returns the saved settings merged over the defaults.
// A missing file yields the defaults. Unknown keys are reported in
// Settings.Warnings rather than failing the load.
func (s *Store) Load() (*domain.Settings, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return domain.NewDefaultSettings(), nil
		}
		return nil, fmt.Errorf("read settings: %w", err)
	}

	var settings domain.Settings
	if err := toml.Unmarshal(data, &settings); err != nil {
		return nil, fmt.Errorf("parse settings %s: %w", s.path, err)
	}

	var raw map[string]any
	if err := toml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse settings %s: %w", s.path, err)
	}
	settings.Warnings = unknownKeyWarnings(raw)

	settings.ApplyDefaults()
	return &settings, nil
}

// Save writes the settings file atomically.
func (s *Store) Save(settings *domain.Settings) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o750); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	content, err := toml.Marshal(settings)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	tmpPath := s.path + ".tmp"
	if err := os.WriteFile(tmpPath, content, 0o600); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}

func unknownKeyWarnings(raw map[string]any) []string {
	var warnings []string
	for key, value := range raw {
		if !knownKeys[""][key] {
			warnings = append(warnings, fmt.Sprintf("unknown key: %s", key))
			continue
		}
		section, ok := value.(map[string]any)
		if !ok {
			continue
		}
		allowed, isSection := knownKeys[key]
		if !isSection {
			continue
		}
		for sub := range section {
			if !allowed[sub] {
				warnings = append(warnings, fmt.Sprintf("unknown key in [%s]: %s", key, sub))
			}
		}
	}
	sort.Strings(warnings)
	return warnings
}

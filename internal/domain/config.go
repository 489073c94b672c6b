package domain

import (
	"os"
	"path/filepath"
)

// Default model settings.
const (
	DefaultModel    = "qwen-turbo"
	DefaultEndpoint = "https://dashscope.aliyuncs.com/compatible-mode/v1/chat/completions"
)

// File names used under the application directories.
const (
	AppName        = "fanqie"
	ConfigFileName = "config.toml"
	StoreFileName  = "tasks.json"
	LogFileName    = "fanqie.log"
)

// Settings holds non-sensitive configuration.
// Fields are ordered to minimize memory padding.
type Settings struct {
	Warnings []string  `toml:"-"` // Problems found while loading (unknown keys)
	Model    string    `toml:"model"`
	Endpoint string    `toml:"endpoint,omitempty"`
	Log      LogConfig `toml:"log"`

	// LegacyAPIKey is only read so that old files can be migrated
	// into the credential store.
	LegacyAPIKey string `toml:"api_key,omitempty"`
}

// LogConfig holds logging settings from [log] section.
type LogConfig struct {
	Level string `toml:"level,omitempty"` // Log level: debug, info, warn, error
}

// NewDefaultSettings returns settings with default values.
func NewDefaultSettings() *Settings {
	return &Settings{
		Model:    DefaultModel,
		Endpoint: DefaultEndpoint,
		Log:      LogConfig{Level: "info"},
	}
}

// ApplyDefaults fills empty fields with default values.
func (s *Settings) ApplyDefaults() {
	if s.Model == "" {
		s.Model = DefaultModel
	}
	if s.Endpoint == "" {
		s.Endpoint = DefaultEndpoint
	}
	if s.Log.Level == "" {
		s.Log.Level = "info"
	}
}

// Paths are the locations of the application's files.
type Paths struct {
	ConfigDir string
	DataDir   string
}

// ConfigPath returns the settings file path.
func (p Paths) ConfigPath() string {
	return filepath.Join(p.ConfigDir, ConfigFileName)
}

// StorePath returns the task store path.
func (p Paths) StorePath() string {
	return filepath.Join(p.DataDir, StoreFileName)
}

// LogPath returns the log file path.
func (p Paths) LogPath() string {
	return filepath.Join(p.DataDir, "logs", LogFileName)
}

// DefaultPaths resolves the application directories.
// FANQIE_HOME puts everything under one directory; otherwise the
// XDG base directories are used.
func DefaultPaths() (Paths, error) {
	if home := os.Getenv("FANQIE_HOME"); home != "" {
		return Paths{ConfigDir: home, DataDir: home}, nil
	}

	userHome, err := os.UserHomeDir()
	if err != nil {
		return Paths{}, err
	}

	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		configHome = filepath.Join(userHome, ".config")
	}
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		dataHome = filepath.Join(userHome, ".local", "share")
	}

	return Paths{
		ConfigDir: filepath.Join(configHome, AppName),
		DataDir:   filepath.Join(dataHome, AppName),
	}, nil
}

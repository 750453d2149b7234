package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/kastheco/playpen/log"
)

const (
	ConfigFileName = "config.json"
	defaultProgram = "/bin/sh"
)

// GetConfigDir returns the path to the application's configuration
// directory, XDG-compliant ~/.config/playpen/.
func GetConfigDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get config home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", "playpen"), nil
}

// Config represents the application configuration
type Config struct {
	// DefaultProgram is the program launched inside a scratch space when
	// no command is given on the command line.
	DefaultProgram string `json:"default_program"`
	// TelemetryEnabled controls whether crash reporting via Sentry is active.
	// Defaults to true when not set.
	TelemetryEnabled *bool `json:"telemetry_enabled,omitempty"`
	// HistoryEnabled controls whether sessions are recorded in the local
	// SQLite history database. Defaults to true when not set.
	HistoryEnabled *bool `json:"history_enabled,omitempty"`
	// Env holds variable overrides applied on every entry (set first,
	// then unset). The TOML config is the authority for this field.
	Env EnvPreset `json:"env,omitempty"`
}

// EnvPreset is a batch of environment overrides applied when entering a
// scratch space, before any --env/--unset flags.
type EnvPreset struct {
	Set   map[string]string `json:"set,omitempty"   toml:"set,omitempty"`
	Unset []string          `json:"unset,omitempty" toml:"unset,omitempty"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	program := os.Getenv("SHELL")
	if program == "" {
		program = defaultProgram
	}

	trueVal := true
	return &Config{
		DefaultProgram:   program,
		TelemetryEnabled: &trueVal,
		HistoryEnabled:   &trueVal,
	}
}

// IsTelemetryEnabled returns whether Sentry telemetry is enabled.
// Defaults to true when the field is not set.
func (c *Config) IsTelemetryEnabled() bool {
	if c.TelemetryEnabled == nil {
		return true
	}
	return *c.TelemetryEnabled
}

// IsHistoryEnabled returns whether session history recording is enabled.
// Defaults to true when the field is not set.
func (c *Config) IsHistoryEnabled() bool {
	if c.HistoryEnabled == nil {
		return true
	}
	return *c.HistoryEnabled
}

func LoadConfig() *Config {
	configDir, err := GetConfigDir()
	if err != nil {
		log.ErrorLog.Printf("failed to get config directory: %v", err)
		return DefaultConfig()
	}

	configPath := filepath.Join(configDir, ConfigFileName)
	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			// Create and save default config if file doesn't exist
			defaultCfg := DefaultConfig()
			if saveErr := saveConfig(defaultCfg); saveErr != nil {
				log.WarningLog.Printf("failed to save default config: %v", saveErr)
			}
			return applyTOMLOverlay(defaultCfg)
		}

		log.WarningLog.Printf("failed to get config file: %v", err)
		return DefaultConfig()
	}

	var config Config
	if err := json.Unmarshal(data, &config); err != nil {
		log.ErrorLog.Printf("failed to parse config file: %v", err)
		return DefaultConfig()
	}
	if config.DefaultProgram == "" {
		config.DefaultProgram = DefaultConfig().DefaultProgram
	}

	return applyTOMLOverlay(&config)
}

// applyTOMLOverlay overlays config.toml onto config if it exists. TOML is
// the authority for the Env preset and may also override the program and
// feature toggles.
func applyTOMLOverlay(config *Config) *Config {
	tomlResult, tomlErr := LoadTOMLConfig()
	if tomlErr != nil {
		log.WarningLog.Printf("failed to load TOML config: %v", tomlErr)
	} else if tomlResult != nil {
		if tomlResult.DefaultProgram != "" {
			config.DefaultProgram = tomlResult.DefaultProgram
		}
		if len(tomlResult.Env.Set) > 0 || len(tomlResult.Env.Unset) > 0 {
			config.Env = tomlResult.Env
		}
		if tomlResult.TelemetryEnabled != nil {
			config.TelemetryEnabled = tomlResult.TelemetryEnabled
		}
		if tomlResult.HistoryEnabled != nil {
			config.HistoryEnabled = tomlResult.HistoryEnabled
		}
	}
	return config
}

// saveConfig saves the configuration to disk
func saveConfig(config *Config) error {
	configDir, err := GetConfigDir()
	if err != nil {
		return fmt.Errorf("failed to get config directory: %w", err)
	}

	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	configPath := filepath.Join(configDir, ConfigFileName)
	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	return os.WriteFile(configPath, data, 0644)
}

// SaveConfig exports the saveConfig function for use by other packages
func SaveConfig(config *Config) error {
	return saveConfig(config)
}

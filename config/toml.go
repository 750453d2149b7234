package config

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// TOMLConfigFileName is the hand-edited overlay next to config.json.
const TOMLConfigFileName = "config.toml"

// TOMLConfig mirrors the subset of Config that config.toml may provide.
type TOMLConfig struct {
	DefaultProgram   string    `toml:"default_program,omitempty"`
	TelemetryEnabled *bool     `toml:"telemetry_enabled,omitempty"`
	HistoryEnabled   *bool     `toml:"history_enabled,omitempty"`
	Env              EnvPreset `toml:"env,omitempty"`
}

// LoadTOMLConfig loads config.toml from the config directory. Returns
// (nil, nil) when the file does not exist.
func LoadTOMLConfig() (*TOMLConfig, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return nil, err
	}
	return LoadTOMLConfigFrom(filepath.Join(configDir, TOMLConfigFileName))
}

// LoadTOMLConfigFrom loads a TOML config from an explicit path. Split out
// from LoadTOMLConfig for testing.
func LoadTOMLConfigFrom(path string) (*TOMLConfig, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, nil
	}

	var tc TOMLConfig
	if _, err := toml.DecodeFile(path, &tc); err != nil {
		return nil, err
	}
	return &tc, nil
}

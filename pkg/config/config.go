// Package config loads and saves the espcarve configuration file.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config represents the espcarve configuration.
type Config struct {
	OutputDir string  `yaml:"output_dir"`
	Records   Records `yaml:"records"`
	Server    Server  `yaml:"server"`
	Logging   Logging `yaml:"logging"`
}

// Records selects which entry states the decoders report.
type Records struct {
	IncludeWritten bool `yaml:"include_written"`
	IncludeErased  bool `yaml:"include_erased"`
}

// Server contains the decode service configuration.
type Server struct {
	Bind string `yaml:"bind"`
	Port int    `yaml:"port"`
}

// Logging contains logging configuration.
type Logging struct {
	Level string `yaml:"level"`
}

// DefaultConfig returns a default configuration: written entries only,
// output next to the input files, local-only server.
func DefaultConfig() *Config {
	return &Config{
		OutputDir: ".",
		Records: Records{
			IncludeWritten: true,
			IncludeErased:  false,
		},
		Server: Server{
			Bind: "127.0.0.1",
			Port: 9350,
		},
		Logging: Logging{
			Level: "info",
		},
	}
}

// LoadConfig loads configuration from the specified path.
func LoadConfig(configPath string) (*Config, error) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file does not exist: %s", configPath)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return &config, nil
}

// SaveConfig saves the configuration to the specified path.
func SaveConfig(config *Config, configPath string) error {
	configDir := filepath.Dir(configPath)
	if err := os.MkdirAll(configDir, 0750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// GetDefaultConfigPath returns the default configuration path for the
// current platform.
func GetDefaultConfigPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "./espcarve.yaml"
	}
	return filepath.Join(homeDir, ".config", "espcarve", "config.yaml")
}

// ConfigExists checks if a configuration file exists.
func ConfigExists(configPath string) bool {
	_, err := os.Stat(configPath)
	return !os.IsNotExist(err)
}

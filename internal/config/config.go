// Package config loads the analyzer's runtime configuration.
package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config represents the runtime configuration from getsready.yaml.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Store   StoreConfig   `yaml:"store"`
	AI      AIConfig      `yaml:"ai"`
	Upload  UploadConfig  `yaml:"upload"`
	Reports ReportsConfig `yaml:"reports"`
}

// ServerConfig defines the HTTP listener.
type ServerConfig struct {
	Port int `yaml:"port"`
}

// StoreConfig defines where the bbolt database lives.
type StoreConfig struct {
	Path string `yaml:"path"`
}

// AIConfig defines the suggestion collaborator. When disabled, close
// matches get deterministic template suggestions instead.
type AIConfig struct {
	Enabled        bool   `yaml:"enabled"`
	Token          string `yaml:"token"`
	Endpoint       string `yaml:"endpoint"`
	Model          string `yaml:"model"`
	FallbackModel  string `yaml:"fallback_model"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// UploadConfig bounds accepted uploads.
type UploadConfig struct {
	MaxBytes int64 `yaml:"max_bytes"`
}

// ReportsConfig defines report listing behavior.
type ReportsConfig struct {
	RecentLimit int `yaml:"recent_limit"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Port: 8080,
		},
		Store: StoreConfig{
			Path: "getsready.db",
		},
		AI: AIConfig{
			Enabled:        false,
			Model:          "Qwen/Qwen3-Next-80B-A3B-Instruct",
			FallbackModel:  "meta-llama/Llama-3.3-70B-Instruct",
			TimeoutSeconds: 5,
		},
		Upload: UploadConfig{
			MaxBytes: 5 * 1024 * 1024,
		},
		Reports: ReportsConfig{
			RecentLimit: 10,
		},
	}
}

// LoadConfig reads and parses a runtime config YAML file, with
// ${ENV_VAR} interpolation. Returns default config if the file doesn't
// exist.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}

	interpolated := interpolateEnvVars(string(data))

	if err := yaml.Unmarshal([]byte(interpolated), &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}

	return cfg, nil
}

// Validate reports configuration contradictions.
func (c Config) Validate() error {
	if c.AI.Enabled && c.AI.Token == "" {
		return fmt.Errorf("ai.token is required when ai.enabled is true")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	return nil
}

// envVarPattern matches ${VAR_NAME} patterns.
var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// interpolateEnvVars replaces ${VAR_NAME} patterns with environment variable values.
func interpolateEnvVars(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		varName := strings.TrimPrefix(strings.TrimSuffix(match, "}"), "${")
		if val, ok := os.LookupEnv(varName); ok {
			return val
		}
		return match // Leave unresolved if not set.
	})
}

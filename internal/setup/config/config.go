// Package config loads the TOML application configuration.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/knadh/koanf/parsers/toml/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

var (
	ErrConfigFileNotFound = errors.New("could not find config file in any config path")
	ErrTokenMissing       = errors.New("discord bot token is not configured")
)

// Config represents the entire application configuration.
type Config struct {
	Discord    Discord    `koanf:"discord"`
	PostgreSQL PostgreSQL `koanf:"postgresql"`
	OpenAI     OpenAI     `koanf:"openai"`
	API        API        `koanf:"api"`
	Storage    Storage    `koanf:"storage"`
	Debug      Debug      `koanf:"debug"`
}

// Discord contains the bot credentials.
type Discord struct {
	// Bot token.
	Token string `koanf:"token"`
}

// PostgreSQL contains the database connection settings. When Host is empty
// the application falls back to JSON-file storage.
type PostgreSQL struct {
	Host         string `koanf:"host"`
	Port         int    `koanf:"port"`
	User         string `koanf:"user"`
	Password     string `koanf:"password"`
	DBName       string `koanf:"db_name"`
	MaxOpenConns int    `koanf:"max_open_conns"`
	MaxIdleConns int    `koanf:"max_idle_conns"`
	// Connection lifetimes in minutes.
	MaxLifetime int `koanf:"max_lifetime"`
	MaxIdleTime int `koanf:"max_idle_time"`
}

// OpenAI contains the AI assistant settings. Leaving APIKey empty disables
// AI replies globally.
type OpenAI struct {
	APIKey string `koanf:"api_key"`
	Model  string `koanf:"model"`
	// Maximum tokens per completion.
	MaxTokens int64 `koanf:"max_tokens"`
	// Maximum concurrent completion requests.
	MaxConcurrent int64 `koanf:"max_concurrent"`
}

// API contains the dashboard HTTP server settings.
type API struct {
	Host string `koanf:"host"`
	Port int    `koanf:"port"`
}

// Storage contains JSON-file fallback settings.
type Storage struct {
	// Path of the JSON data file used when PostgreSQL is not configured.
	FilePath string `koanf:"file_path"`
}

// Debug contains development settings.
type Debug struct {
	// Log level: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`
	// Maximum log files to keep.
	MaxLogsToKeep int `koanf:"max_logs_to_keep"`
}

// LoadConfig loads config.toml from the usual search paths and returns the
// parsed configuration plus the directory it was found in.
func LoadConfig() (*Config, string, error) {
	k := koanf.New(".")

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, "", fmt.Errorf("failed to get home directory: %w", err)
	}

	configPaths := []string{
		".atendix",
		homeDir + "/.atendix/config",
		"/etc/atendix/config",
		"/app/config",
		"config",
		".",
	}

	var usedConfigPath string
	for _, path := range configPaths {
		configPath := fmt.Sprintf("%s/config.toml", path)
		if err := k.Load(file.Provider(configPath), toml.Parser()); err == nil {
			usedConfigPath = path
			break
		}
	}
	if usedConfigPath == "" {
		return nil, "", fmt.Errorf("%w: config.toml", ErrConfigFileNotFound)
	}

	config := defaultConfig()
	if err := k.Unmarshal("", config); err != nil {
		return nil, "", fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return config, usedConfigPath, nil
}

// RequireToken checks that the Discord bot token is set. Only the gateway
// process needs one; the API server and the migration tool run without it.
func (c *Config) RequireToken() error {
	if c.Discord.Token == "" {
		return ErrTokenMissing
	}
	return nil
}

func defaultConfig() *Config {
	return &Config{
		PostgreSQL: PostgreSQL{
			Port:         5432,
			MaxOpenConns: 8,
			MaxIdleConns: 4,
			MaxLifetime:  10,
			MaxIdleTime:  5,
		},
		OpenAI: OpenAI{
			Model:         "gpt-4o-mini",
			MaxTokens:     500,
			MaxConcurrent: 4,
		},
		API: API{
			Host: "0.0.0.0",
			Port: 5000,
		},
		Storage: Storage{
			FilePath: "data/storage.json",
		},
		Debug: Debug{
			LogLevel:      "info",
			MaxLogsToKeep: 10,
		},
	}
}

package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Auth      AuthConfig      `mapstructure:"auth"`
	Messenger MessengerConfig `mapstructure:"messenger"`
	Log       LogConfig       `mapstructure:"log"`
	Content   ContentConfig   `mapstructure:"content"`
	Modules   ModulesConfig   `mapstructure:"modules"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port int    `mapstructure:"port"`
	Mode string `mapstructure:"mode"` // "development" or "production"
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Driver          string `mapstructure:"driver"`            // "sqlite" or "postgres"
	DSN             string `mapstructure:"dsn"`               // Connection string
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`    // Maximum idle connections (Postgres)
	MaxOpenConns    int    `mapstructure:"max_open_conns"`    // Maximum open connections (Postgres)
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"` // Connection max lifetime in minutes (Postgres)
	LogLevel        string `mapstructure:"log_level"`         // GORM log level; empty follows log.level
}

// AuthConfig holds authentication configuration
type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret"` // Secret for JWT signing
}

// MessengerConfig selects where user-facing status messages are kept
// between a form submission and the next request that displays them.
type MessengerConfig struct {
	Type       string `mapstructure:"type"`        // "memory" or "valkey"
	ValkeyAddr string `mapstructure:"valkey_addr"` // Valkey address (if type=valkey), e.g., "localhost:6379"
}

// LogConfig holds logging configuration
type LogConfig struct {
	Format string `mapstructure:"format"` // "json" or "text"
	Level  string `mapstructure:"level"`  // "debug", "info", "warn", "error"
}

// ContentConfig holds settings for attribute content.
type ContentConfig struct {
	// DefaultOwnerID is assigned to any translation saved without a
	// resolvable owner.
	DefaultOwnerID  uint     `mapstructure:"default_owner_id"`
	DefaultLangcode string   `mapstructure:"default_langcode"`
	Languages       []string `mapstructure:"languages"`
	Timezone        string   `mapstructure:"timezone"`
	// TranslationsDir holds <langcode>.yaml interface catalogs loaded over
	// the built-in ones.
	TranslationsDir string `mapstructure:"translations_dir"`
}

// ModulesConfig lists optional subsystems that are switched on.
type ModulesConfig struct {
	Enabled []string `mapstructure:"enabled"`
}

// Exists reports whether the named module is enabled.
func (m ModulesConfig) Exists(name string) bool {
	for _, enabled := range m.Enabled {
		if enabled == name {
			return true
		}
	}
	return false
}

// Load reads configuration from file and environment variables
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	// Read from config file if exists
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("/etc/attributes/")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found, using defaults
	}

	return unmarshal(v)
}

// LoadFile reads configuration from an explicit file path, still honouring
// environment overrides.
func LoadFile(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", path, err)
	}

	return unmarshal(v)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8470)
	v.SetDefault("server.mode", "development")
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "./attributes.db")
	v.SetDefault("database.max_idle_conns", 10)
	v.SetDefault("database.max_open_conns", 100)
	v.SetDefault("database.conn_max_lifetime", 60) // 60 minutes
	v.SetDefault("database.log_level", "")
	v.SetDefault("auth.jwt_secret", "change-me-in-production")
	v.SetDefault("messenger.type", "memory")
	v.SetDefault("messenger.valkey_addr", "localhost:6379")
	v.SetDefault("log.format", "text")
	v.SetDefault("log.level", "info")
	v.SetDefault("content.default_owner_id", 1)
	v.SetDefault("content.default_langcode", "en")
	v.SetDefault("content.languages", []string{"en"})
	v.SetDefault("content.timezone", "UTC")
	v.SetDefault("content.translations_dir", "")
	v.SetDefault("modules.enabled", []string{"language", "content_translation"})
}

func unmarshal(v *viper.Viper) (*Config, error) {
	// Environment variables override
	v.SetEnvPrefix("ATTRIBUTES")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if cfg.Content.DefaultLangcode == "" {
		return nil, fmt.Errorf("content.default_langcode must not be empty")
	}
	if !contains(cfg.Content.Languages, cfg.Content.DefaultLangcode) {
		cfg.Content.Languages = append([]string{cfg.Content.DefaultLangcode}, cfg.Content.Languages...)
	}

	return &cfg, nil
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}

// Package config loads procflow settings from defaults, an optional config file,
// PROCFLOW_* environment variables and command-line flags, in that order of precedence.
package config

import (
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dewakar-s/procflow/pkg/action"
	"github.com/dewakar-s/procflow/pkg/domain"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override, e.g. PROCFLOW_STORE_BACKEND.
const EnvPrefix = "PROCFLOW"

// Store backends.
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendRedis  = "redis"
	BackendSQLite = "sqlite"
)

// Config is the resolved process configuration.
type Config struct {
	Log       LogConfig       `mapstructure:"log"`
	Server    ServerConfig    `mapstructure:"server"`
	Store     StoreConfig     `mapstructure:"store"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Actions   ActionsConfig   `mapstructure:"actions"`
	HTTP      HTTPConfig      `mapstructure:"http"`
	LLM       LLMConfig       `mapstructure:"llm"`
	Telegram  TelegramConfig  `mapstructure:"telegram"`
	Procedure ProcedureConfig `mapstructure:"procedure"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

type StoreConfig struct {
	Backend string        `mapstructure:"backend"`
	Path    string        `mapstructure:"path"`
	TTL     time.Duration `mapstructure:"ttl"`
	Prefix  string        `mapstructure:"prefix"`

	// EncryptionKey is a 32-byte key, hex or base64 encoded. Empty disables encryption.
	EncryptionKey string `mapstructure:"encryption_key"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type ActionsConfig struct {
	// Source is "file" (YAML/JSON document at Path), "sqlite" (database at Path)
	// or "loam" (one folder per action set under the directory at Path).
	Source string `mapstructure:"source"`
	Path   string `mapstructure:"path"`
	Set    string `mapstructure:"set"`
}

type HTTPConfig struct {
	Timeout       time.Duration `mapstructure:"timeout"`
	MaxConcurrent int           `mapstructure:"max_concurrent"`
}

type LLMConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Token   string `mapstructure:"token"`
	Model   string `mapstructure:"model"`
	BaseURL string `mapstructure:"base_url"`
}

type TelegramConfig struct {
	Token string `mapstructure:"token"`
}

type ProcedureConfig struct {
	Path string `mapstructure:"path"`
}

// SetDefaults registers the default value of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("store.backend", BackendFile)
	v.SetDefault("store.path", ".procflow/sessions")
	v.SetDefault("store.ttl", time.Duration(0))
	v.SetDefault("store.prefix", "procflow:session:")
	v.SetDefault("store.encryption_key", "")
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("actions.source", "file")
	v.SetDefault("actions.path", "actions.yaml")
	v.SetDefault("actions.set", "")
	v.SetDefault("http.timeout", action.DefaultTimeout)
	v.SetDefault("http.max_concurrent", 8)
	v.SetDefault("llm.enabled", false)
	v.SetDefault("llm.token", "")
	v.SetDefault("llm.model", "gpt-4o-mini")
	v.SetDefault("llm.base_url", "")
	v.SetDefault("telegram.token", "")
	v.SetDefault("procedure.path", "procedure.yaml")
}

// New returns a viper instance with defaults and environment binding installed.
func New() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads the config file (if any) and decodes v into a validated Config.
// With an empty file, procflow.{yaml,json,toml} is searched for in the working
// directory; not finding one is not an error.
func Load(v *viper.Viper, file string) (Config, error) {
	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("procflow")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks enumerations and ranges.
func (c Config) Validate() error {
	switch c.Store.Backend {
	case BackendMemory, BackendFile, BackendRedis, BackendSQLite:
	default:
		return &domain.ConfigurationError{Field: "store.backend", Reason: fmt.Sprintf("unknown backend %q", c.Store.Backend)}
	}
	switch c.Actions.Source {
	case "file", "sqlite", "loam":
	default:
		return &domain.ConfigurationError{Field: "actions.source", Reason: fmt.Sprintf("unknown source %q", c.Actions.Source)}
	}
	if c.HTTP.MaxConcurrent < 1 {
		return &domain.ConfigurationError{Field: "http.max_concurrent", Reason: "must be at least 1"}
	}
	if c.HTTP.Timeout <= 0 {
		return &domain.ConfigurationError{Field: "http.timeout", Reason: "must be positive"}
	}
	if c.Store.TTL < 0 {
		return &domain.ConfigurationError{Field: "store.ttl", Reason: "must not be negative"}
	}
	if _, err := c.Store.Key(); err != nil {
		return err
	}
	return nil
}

// Key decodes the encryption key. It returns nil when encryption is disabled.
func (s StoreConfig) Key() ([]byte, error) {
	raw := strings.TrimSpace(s.EncryptionKey)
	if raw == "" {
		return nil, nil
	}
	if key, err := hex.DecodeString(raw); err == nil && len(key) == 32 {
		return key, nil
	}
	if key, err := base64.StdEncoding.DecodeString(raw); err == nil && len(key) == 32 {
		return key, nil
	}
	return nil, &domain.ConfigurationError{Field: "store.encryption_key", Reason: "must be 32 bytes, hex or base64 encoded"}
}

// Package config loads service configuration from a YAML file with
// environment overrides for deploy-time secrets.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Defaults applied when the file or a field is absent.
const (
	DefaultListenAddr   = "127.0.0.1:8086"
	DefaultDatabasePath = "broker.db"

	defaultExpiryBuffer   = 60 * time.Second
	defaultRefreshTimeout = 8 * time.Second
	defaultRequestTimeout = 8 * time.Second
	defaultLeaseTTL       = 15 * time.Second
)

// Lock backends.
const (
	LockBackendMemory = "memory"
	LockBackendRedis  = "redis"
)

// Duration is a YAML-friendly time.Duration ("30s", "5m").
type Duration time.Duration

// UnmarshalYAML parses Go duration syntax.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("config: invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the plain time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Config is the full service configuration.
type Config struct {
	ListenAddr    string `yaml:"listen_addr"`
	DatabasePath  string `yaml:"database_path"`
	APIKey        string `yaml:"api_key"`        // empty disables the service guard
	EncryptionKey string `yaml:"encryption_key"` // hex, 32 bytes

	Lock     LockConfig     `yaml:"lock"`
	Provider ProviderConfig `yaml:"provider"`

	ExpiryBuffer   Duration `yaml:"expiry_buffer"`
	RefreshTimeout Duration `yaml:"refresh_timeout"`
	RequestTimeout Duration `yaml:"request_timeout"`
}

// LockConfig selects the keyed-lock backend. The broker never branches on
// this; main wires the chosen implementation.
type LockConfig struct {
	Backend       string   `yaml:"backend"` // "memory" or "redis"
	RedisAddr     string   `yaml:"redis_addr"`
	RedisPassword string   `yaml:"redis_password"`
	LeaseTTL      Duration `yaml:"lease_ttl"`
}

// ProviderConfig holds the upstream OAuth application credentials.
type ProviderConfig struct {
	ClientID     string `yaml:"client_id"`
	ClientSecret string `yaml:"client_secret"`
	TokenURL     string `yaml:"token_url"`    // empty uses the provider default
	APIBaseURL   string `yaml:"api_base_url"` // empty uses the provider default
}

// Load reads the file at path, applies env overrides and defaults, and
// validates required fields. A missing file is not an error; env and
// defaults alone can configure the service.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
		// fall through to env + defaults
	default:
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	applyEnv(cfg)
	applyDefaults(cfg)

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("BROKER_LISTEN_ADDR"); v != "" {
		cfg.ListenAddr = v
	}
	if v := os.Getenv("BROKER_API_KEY"); v != "" {
		cfg.APIKey = v
	}
	if v := os.Getenv("BROKER_ENCRYPTION_KEY"); v != "" {
		cfg.EncryptionKey = v
	}
	if v := os.Getenv("SPOTIFY_CLIENT_ID"); v != "" {
		cfg.Provider.ClientID = v
	}
	if v := os.Getenv("SPOTIFY_CLIENT_SECRET"); v != "" {
		cfg.Provider.ClientSecret = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Lock.RedisAddr = v
	}
}

func applyDefaults(cfg *Config) {
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = DefaultListenAddr
	}
	if cfg.DatabasePath == "" {
		cfg.DatabasePath = DefaultDatabasePath
	}
	if cfg.Lock.Backend == "" {
		cfg.Lock.Backend = LockBackendMemory
	}
	if cfg.Lock.LeaseTTL <= 0 {
		cfg.Lock.LeaseTTL = Duration(defaultLeaseTTL)
	}
	if cfg.ExpiryBuffer <= 0 {
		cfg.ExpiryBuffer = Duration(defaultExpiryBuffer)
	}
	if cfg.RefreshTimeout <= 0 {
		cfg.RefreshTimeout = Duration(defaultRefreshTimeout)
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = Duration(defaultRequestTimeout)
	}
}

func validate(cfg *Config) error {
	if cfg.EncryptionKey == "" {
		return errors.New("config: encryption_key is required")
	}
	if cfg.Provider.ClientID == "" || cfg.Provider.ClientSecret == "" {
		return errors.New("config: provider client_id and client_secret are required")
	}
	switch cfg.Lock.Backend {
	case LockBackendMemory:
	case LockBackendRedis:
		if cfg.Lock.RedisAddr == "" {
			return errors.New("config: lock.redis_addr is required for the redis backend")
		}
	default:
		return fmt.Errorf("config: unknown lock backend %q", cfg.Lock.Backend)
	}
	return nil
}

package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/rpggio/folio/internal/domain/discovery"
	"github.com/rpggio/folio/internal/domain/retention"
)

// Config defines server configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Transport TransportConfig `yaml:"transport"`
	DB        DBConfig        `yaml:"db"`
	Log       LogConfig       `yaml:"log"`
	Activity  ActivityConfig  `yaml:"activity"`
	Discovery DiscoveryConfig `yaml:"discovery"`
	Cache     CacheConfig     `yaml:"cache"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
	// BaseURL prefixes Change Discovery ids. Derived from the request when empty.
	BaseURL string `yaml:"base_url"`
}

type TransportConfig struct {
	Mode string `yaml:"mode"` // "http" or "stdio"
}

type DBConfig struct {
	Path string `yaml:"path"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	Path  string `yaml:"path"`
}

type ActivityConfig struct {
	MaxEntries     int    `yaml:"max_entries"`
	RetentionCount int    `yaml:"retention_count"`
	ActorName      string `yaml:"actor_name"`
}

type DiscoveryConfig struct {
	PageSize int    `yaml:"page_size"`
	Scope    string `yaml:"scope"`
}

type CacheConfig struct {
	RedisURL string        `yaml:"redis_url"`
	TTL      time.Duration `yaml:"ttl"`
}

// Default returns the configuration used when nothing overrides it.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Transport: TransportConfig{
			Mode: "http",
		},
		DB: DBConfig{
			Path: "folio.db",
		},
		Log: LogConfig{
			Level: "info",
		},
		Activity: ActivityConfig{
			MaxEntries:     retention.DefaultMaxEntries,
			RetentionCount: retention.DefaultRetentionCount,
		},
		Discovery: DiscoveryConfig{
			PageSize: discovery.DefaultPageSize,
			Scope:    string(discovery.ScopeFull),
		},
		Cache: CacheConfig{
			TTL: 5 * time.Minute,
		},
	}
}

// Load reads configuration from an optional YAML file and environment variables.
func Load() (Config, error) {
	cfg := Default()

	if path := os.Getenv("FOLIO_CONFIG_PATH"); path != "" {
		if err := loadFromFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	if host := os.Getenv("FOLIO_SERVER_HOST"); host != "" {
		cfg.Server.Host = host
	}
	if err := envInt("FOLIO_SERVER_PORT", &cfg.Server.Port); err != nil {
		return err
	}
	if baseURL := os.Getenv("FOLIO_BASE_URL"); baseURL != "" {
		cfg.Server.BaseURL = baseURL
	}
	if mode := os.Getenv("FOLIO_TRANSPORT_MODE"); mode != "" {
		cfg.Transport.Mode = mode
	}
	if dbPath := os.Getenv("FOLIO_DB_PATH"); dbPath != "" {
		cfg.DB.Path = dbPath
	}
	if level := os.Getenv("FOLIO_LOG_LEVEL"); level != "" {
		cfg.Log.Level = level
	}
	if logPath := os.Getenv("FOLIO_LOG_PATH"); logPath != "" {
		cfg.Log.Path = logPath
	}
	if err := envInt("FOLIO_MAX_ENTRIES", &cfg.Activity.MaxEntries); err != nil {
		return err
	}
	if err := envInt("FOLIO_RETENTION_COUNT", &cfg.Activity.RetentionCount); err != nil {
		return err
	}
	if name := os.Getenv("FOLIO_ACTOR_NAME"); name != "" {
		cfg.Activity.ActorName = name
	}
	if err := envInt("FOLIO_PAGE_SIZE", &cfg.Discovery.PageSize); err != nil {
		return err
	}
	if scope := os.Getenv("FOLIO_DISCOVERY_SCOPE"); scope != "" {
		cfg.Discovery.Scope = scope
	}
	if url := os.Getenv("FOLIO_REDIS_URL"); url != "" {
		cfg.Cache.RedisURL = url
	}
	if ttl := os.Getenv("FOLIO_CACHE_TTL"); ttl != "" {
		d, err := time.ParseDuration(ttl)
		if err != nil {
			return fmt.Errorf("invalid FOLIO_CACHE_TTL: %w", err)
		}
		cfg.Cache.TTL = d
	}
	return nil
}

func envInt(name string, dst *int) error {
	raw := os.Getenv(name)
	if raw == "" {
		return nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", name, err)
	}
	*dst = n
	return nil
}

// RetentionPolicy returns the configured thresholds.
func (c Config) RetentionPolicy() retention.Policy {
	return retention.Policy{
		MaxEntries:     c.Activity.MaxEntries,
		RetentionCount: c.Activity.RetentionCount,
	}
}

// Validate checks values that would otherwise fail later at runtime.
func (c Config) Validate() error {
	if err := c.RetentionPolicy().Validate(); err != nil {
		return err
	}
	if c.Discovery.PageSize <= 0 {
		return fmt.Errorf("discovery page size must be positive, got %d", c.Discovery.PageSize)
	}
	if _, err := discovery.ParseScope(c.Discovery.Scope); err != nil {
		return err
	}
	switch c.Transport.Mode {
	case "http", "stdio":
	default:
		return fmt.Errorf("unknown transport mode %q", c.Transport.Mode)
	}
	if c.Cache.TTL < 0 {
		return fmt.Errorf("cache ttl must not be negative")
	}
	return nil
}

func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// DefaultPath is where `arbor init` writes the configuration.
const DefaultPath = ".arbor/config.yaml"

// Supported store drivers.
const (
	DriverFile   = "file"
	DriverSQLite = "sqlite"
	DriverRedis  = "redis"
	DriverMemory = "memory"
)

// Config is the arbor configuration file.
type Config struct {
	Store StoreConfig `yaml:"store" mapstructure:"store"`
	Lock  LockConfig  `yaml:"lock" mapstructure:"lock"`
	Log   LogConfig   `yaml:"log" mapstructure:"log"`
	HTTP  HTTPConfig  `yaml:"http" mapstructure:"http"`

	// EncryptionKey enables body encryption at rest. It must decode (hex or
	// base64) to 32 bytes.
	EncryptionKey string `yaml:"encryption_key,omitempty" mapstructure:"encryption_key"`
	// RedactPatterns are regular expressions masked in titles and bodies before they are stored.
	RedactPatterns []string `yaml:"redact_patterns,omitempty" mapstructure:"redact_patterns"`
}

// StoreConfig selects and configures the task store.
type StoreConfig struct {
	Driver        string `yaml:"driver" mapstructure:"driver"`
	Path          string `yaml:"path,omitempty" mapstructure:"path"`
	RedisAddr     string `yaml:"redis_addr,omitempty" mapstructure:"redis_addr"`
	RedisPassword string `yaml:"redis_password,omitempty" mapstructure:"redis_password"`
	RedisDB       int    `yaml:"redis_db,omitempty" mapstructure:"redis_db"`
	Prefix        string `yaml:"prefix,omitempty" mapstructure:"prefix"`
}

// LockConfig configures the distributed lock used with the redis driver.
type LockConfig struct {
	TTL time.Duration `yaml:"ttl" mapstructure:"ttl"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level string `yaml:"level" mapstructure:"level"`
}

// HTTPConfig configures `arbor serve`.
type HTTPConfig struct {
	Addr string `yaml:"addr" mapstructure:"addr"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		Store: StoreConfig{Driver: DriverFile, Prefix: "arbor:"},
		Lock:  LockConfig{TTL: 30 * time.Second},
		Log:   LogConfig{Level: "warn"},
		HTTP:  HTTPConfig{Addr: ":8080"},
	}
}

// Load reads path (YAML, or JSON by extension) over the defaults, then applies
// environment overrides. A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
	case err != nil:
		return Config{}, fmt.Errorf("failed to read config: %w", err)
	default:
		raw := map[string]any{}
		if strings.ToLower(filepath.Ext(path)) == ".json" {
			err = json.Unmarshal(data, &raw)
		} else {
			err = yaml.Unmarshal(data, &raw)
		}
		if err != nil {
			return Config{}, fmt.Errorf("failed to parse %s: %w", path, err)
		}
		if err := decode(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("invalid config %s: %w", path, err)
		}
	}

	if err := applyEnv(&cfg, os.LookupEnv); err != nil {
		return Config{}, err
	}
	return cfg, cfg.Validate()
}

func decode(raw map[string]any, out *Config) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		Result:           out,
	})
	if err != nil {
		return err
	}
	return dec.Decode(raw)
}

// applyEnv overlays ARBOR_* variables.
func applyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	strs := map[string]*string{
		"ARBOR_STORE_DRIVER":   &cfg.Store.Driver,
		"ARBOR_STORE_PATH":     &cfg.Store.Path,
		"ARBOR_REDIS_ADDR":     &cfg.Store.RedisAddr,
		"ARBOR_REDIS_PASSWORD": &cfg.Store.RedisPassword,
		"ARBOR_LOG_LEVEL":      &cfg.Log.Level,
		"ARBOR_HTTP_ADDR":      &cfg.HTTP.Addr,
		"ARBOR_ENCRYPTION_KEY": &cfg.EncryptionKey,
	}
	for key, dst := range strs {
		if v, ok := lookup(key); ok {
			*dst = v
		}
	}
	if v, ok := lookup("ARBOR_REDIS_DB"); ok {
		db, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("ARBOR_REDIS_DB: %w", err)
		}
		cfg.Store.RedisDB = db
	}
	if v, ok := lookup("ARBOR_LOCK_TTL"); ok {
		ttl, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("ARBOR_LOCK_TTL: %w", err)
		}
		cfg.Lock.TTL = ttl
	}
	return nil
}

// Validate checks the values that cannot be defaulted.
func (c Config) Validate() error {
	switch c.Store.Driver {
	case DriverFile, DriverSQLite, DriverMemory:
	case DriverRedis:
		if c.Store.RedisAddr == "" {
			return fmt.Errorf("store.redis_addr is required for the redis driver")
		}
	default:
		return fmt.Errorf("unknown store driver %q", c.Store.Driver)
	}
	if c.Lock.TTL <= 0 {
		return fmt.Errorf("lock.ttl must be positive")
	}
	for _, p := range c.RedactPatterns {
		if _, err := regexp.Compile(p); err != nil {
			return fmt.Errorf("redact_patterns: %w", err)
		}
	}
	return nil
}

// Save writes cfg as YAML, creating parent directories.
func Save(path string, cfg Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

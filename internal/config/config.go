// Package config loads tmasync configuration from a YAML file, TMASYNC_*
// environment variables and command line flags.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/iudanet/tmasync/internal/client/badge"
	"github.com/iudanet/tmasync/internal/models"
)

// EnvPrefix префикс переменных окружения: backend.url -> TMASYNC_BACKEND_URL
const EnvPrefix = "TMASYNC"

// Storage drivers
const (
	DriverBolt   = "bolt"
	DriverSQLite = "sqlite"
)

// Badge stores
const (
	BadgeStoreLocal = "local"
	BadgeStoreRedis = "redis"
)

// Log formats
const (
	LogFormatText = "text"
	LogFormatJSON = "json"
)

// Config holds the configuration of the CLI client and the agent
type Config struct {
	Backend      BackendConfig      `mapstructure:"backend" yaml:"backend"`
	Storage      StorageConfig      `mapstructure:"storage" yaml:"storage"`
	Badge        BadgeConfig        `mapstructure:"badge" yaml:"badge"`
	Agent        AgentConfig        `mapstructure:"agent" yaml:"agent"`
	Log          LogConfig          `mapstructure:"log" yaml:"log"`
	Queue        QueueConfig        `mapstructure:"queue" yaml:"queue"`
	Connectivity ConnectivityConfig `mapstructure:"connectivity" yaml:"connectivity"`
}

// BackendConfig academy REST backend
type BackendConfig struct {
	URL            string        `mapstructure:"url" yaml:"url"`
	Token          string        `mapstructure:"token" yaml:"token"` // anon key, отправляется как apikey и Bearer
	RequestTimeout time.Duration `mapstructure:"request_timeout" yaml:"request_timeout"`
}

// StorageConfig durable queue store
type StorageConfig struct {
	Driver     string `mapstructure:"driver" yaml:"driver"` // bolt | sqlite
	Path       string `mapstructure:"path" yaml:"path"`
	Passphrase string `mapstructure:"passphrase" yaml:"passphrase,omitempty"` // пустая строка отключает шифрование payload
}

// QueueConfig retry policy of queued items
type QueueConfig struct {
	MaxRetries int           `mapstructure:"max_retries" yaml:"max_retries"`
	LeaseGrace time.Duration `mapstructure:"lease_grace" yaml:"lease_grace"`
}

// BadgeConfig badge display and persistence
type BadgeConfig struct {
	Notifier string `mapstructure:"notifier" yaml:"notifier"` // file | terminal | none
	File     string `mapstructure:"file" yaml:"file"`
	Store    string `mapstructure:"store" yaml:"store"` // local | redis
	RedisURL string `mapstructure:"redis_url" yaml:"redis_url,omitempty"`
}

// AgentConfig background replay agent
type AgentConfig struct {
	URL          string        `mapstructure:"url" yaml:"url"`
	Listen       string        `mapstructure:"listen" yaml:"listen"`
	PushSecret   string        `mapstructure:"push_secret" yaml:"push_secret,omitempty"`
	SyncInterval time.Duration `mapstructure:"sync_interval" yaml:"sync_interval"`
	RateLimit    int           `mapstructure:"rate_limit" yaml:"rate_limit"` // запросов в минуту к push и click
}

// ConnectivityConfig backend reachability probe
type ConnectivityConfig struct {
	ProbeInterval time.Duration `mapstructure:"probe_interval" yaml:"probe_interval"`
}

// LogConfig logging
type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`   // debug | info | warn | error
	Format string `mapstructure:"format" yaml:"format"` // text | json
}

// Default returns the configuration used when nothing is set
func Default() Config {
	dataDir := DefaultDataDir()

	return Config{
		Backend: BackendConfig{
			URL:            "http://localhost:54321",
			RequestTimeout: 30 * time.Second,
		},
		Storage: StorageConfig{
			Driver: DriverBolt,
			Path:   filepath.Join(dataDir, "queue.db"),
		},
		Queue: QueueConfig{
			MaxRetries: models.DefaultMaxRetries,
			LeaseGrace: 10 * time.Second,
		},
		Badge: BadgeConfig{
			Notifier: badge.NotifierFile,
			File:     filepath.Join(dataDir, "badge"),
			Store:    BadgeStoreLocal,
		},
		Agent: AgentConfig{
			URL:          "http://127.0.0.1:7475",
			Listen:       "127.0.0.1:7475",
			SyncInterval: time.Minute,
			RateLimit:    60,
		},
		Connectivity: ConnectivityConfig{
			ProbeInterval: 15 * time.Second,
		},
		Log: LogConfig{
			Level:  "info",
			Format: LogFormatText,
		},
	}
}

// DefaultDataDir returns the directory for the queue database and badge file
func DefaultDataDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "tmasync")
	}
	return ".tmasync"
}

// DefaultPath returns the default config file location
func DefaultPath() string {
	return filepath.Join(DefaultDataDir(), "config.yaml")
}

// setDefaults регистрирует значения по умолчанию, чтобы viper знал все ключи
// (без этого AutomaticEnv не видит переменные для ключей, которых нет в файле)
func setDefaults(v *viper.Viper) {
	d := Default()

	v.SetDefault("backend.url", d.Backend.URL)
	v.SetDefault("backend.token", d.Backend.Token)
	v.SetDefault("backend.request_timeout", d.Backend.RequestTimeout)
	v.SetDefault("storage.driver", d.Storage.Driver)
	v.SetDefault("storage.path", d.Storage.Path)
	v.SetDefault("storage.passphrase", d.Storage.Passphrase)
	v.SetDefault("queue.max_retries", d.Queue.MaxRetries)
	v.SetDefault("queue.lease_grace", d.Queue.LeaseGrace)
	v.SetDefault("badge.notifier", d.Badge.Notifier)
	v.SetDefault("badge.file", d.Badge.File)
	v.SetDefault("badge.store", d.Badge.Store)
	v.SetDefault("badge.redis_url", d.Badge.RedisURL)
	v.SetDefault("agent.url", d.Agent.URL)
	v.SetDefault("agent.listen", d.Agent.Listen)
	v.SetDefault("agent.push_secret", d.Agent.PushSecret)
	v.SetDefault("agent.sync_interval", d.Agent.SyncInterval)
	v.SetDefault("agent.rate_limit", d.Agent.RateLimit)
	v.SetDefault("connectivity.probe_interval", d.Connectivity.ProbeInterval)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
}

// Load reads configuration with the precedence flags > env > file > defaults.
// A missing file at path is not an error; flags maps config keys to bound flags.
func Load(path string, flags map[string]*pflag.Flag) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, flag := range flags {
		if flag == nil {
			continue
		}
		if err := v.BindPFlag(key, flag); err != nil {
			return nil, fmt.Errorf("bind flag %s: %w", key, err)
		}
	}

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			v.SetConfigFile(path)
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("read config file: %w", err)
			}
		} else if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("stat config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks the configuration for structural errors
func (c *Config) Validate() error {
	var errs []error

	if err := validateURL("backend.url", c.Backend.URL); err != nil {
		errs = append(errs, err)
	}
	if c.Backend.RequestTimeout <= 0 {
		errs = append(errs, errors.New("backend.request_timeout must be positive"))
	}

	switch c.Storage.Driver {
	case DriverBolt, DriverSQLite:
	default:
		errs = append(errs, fmt.Errorf("storage.driver must be %q or %q, got %q", DriverBolt, DriverSQLite, c.Storage.Driver))
	}
	if c.Storage.Path == "" {
		errs = append(errs, errors.New("storage.path is required"))
	}

	if c.Queue.MaxRetries < 0 {
		errs = append(errs, errors.New("queue.max_retries must not be negative"))
	}
	if c.Queue.LeaseGrace < 0 {
		errs = append(errs, errors.New("queue.lease_grace must not be negative"))
	}

	switch c.Badge.Notifier {
	case badge.NotifierFile:
		if c.Badge.File == "" {
			errs = append(errs, errors.New("badge.file is required for the file notifier"))
		}
	case badge.NotifierTerminal, badge.NotifierNone:
	default:
		errs = append(errs, fmt.Errorf("badge.notifier must be file, terminal or none, got %q", c.Badge.Notifier))
	}

	switch c.Badge.Store {
	case BadgeStoreLocal:
	case BadgeStoreRedis:
		if c.Badge.RedisURL == "" {
			errs = append(errs, errors.New("badge.redis_url is required for the redis badge store"))
		}
	default:
		errs = append(errs, fmt.Errorf("badge.store must be %q or %q, got %q", BadgeStoreLocal, BadgeStoreRedis, c.Badge.Store))
	}

	if err := validateURL("agent.url", c.Agent.URL); err != nil {
		errs = append(errs, err)
	}
	if c.Agent.Listen == "" {
		errs = append(errs, errors.New("agent.listen is required"))
	}
	if c.Agent.SyncInterval <= 0 {
		errs = append(errs, errors.New("agent.sync_interval must be positive"))
	}
	if c.Agent.RateLimit <= 0 {
		errs = append(errs, errors.New("agent.rate_limit must be positive"))
	}

	if c.Connectivity.ProbeInterval <= 0 {
		errs = append(errs, errors.New("connectivity.probe_interval must be positive"))
	}

	if _, err := ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, err)
	}
	switch c.Log.Format {
	case LogFormatText, LogFormatJSON:
	default:
		errs = append(errs, fmt.Errorf("log.format must be %q or %q, got %q", LogFormatText, LogFormatJSON, c.Log.Format))
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid configuration: %w", errors.Join(errs...))
	}
	return nil
}

func validateURL(key, raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%s must be an http(s) URL, got %q", key, raw)
	}
	if u.Host == "" {
		return fmt.Errorf("%s has no host", key)
	}
	return nil
}

// WriteDefault writes the default configuration to path.
// An existing file is left untouched unless force is set.
func WriteDefault(path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config file %s already exists", path)
		}
	}

	data, err := yaml.Marshal(Default())
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	// Файл может содержать токены, доступ только владельцу
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}

	return nil
}

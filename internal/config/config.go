package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Dictionary DictionaryConfig `mapstructure:"dictionary"`
	Remote     RemoteConfig     `mapstructure:"remote"`
	Fallback   FallbackConfig   `mapstructure:"fallback"`
	Sync       SyncConfig       `mapstructure:"sync"`
	Store      StoreConfig      `mapstructure:"store"`
	Channel    ChannelConfig    `mapstructure:"channel"`
}

type ServerConfig struct {
	Port int        `mapstructure:"port" validate:"min=1,max=65535"`
	CORS CORSConfig `mapstructure:"cors"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type DatabaseConfig struct {
	Host            string            `mapstructure:"host"`
	Port            int               `mapstructure:"port"`
	Database        string            `mapstructure:"database"`
	Username        string            `mapstructure:"username"`
	Password        string            `mapstructure:"password"`
	TLS             bool              `mapstructure:"tls"`
	Params          map[string]string `mapstructure:"params"`
	MaxOpenConns    int               `mapstructure:"max_open_conns"`
	MaxIdleConns    int               `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int               `mapstructure:"conn_max_lifetime_seconds"`
}

// DictionaryConfig points at the CSV file of the in-memory dictionary. An empty path means no dictionary.
type DictionaryConfig struct {
	Path string `mapstructure:"path" validate:"omitempty,file"`
}

type RemoteConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	BaseURL        string `mapstructure:"base_url" validate:"omitempty,url"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds" validate:"min=1"`
	RetryAttempts  uint   `mapstructure:"retry_attempts"`
}

func (c RemoteConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

type FallbackConfig struct {
	BaseURL        string              `mapstructure:"base_url" validate:"required,url"`
	LangPair       string              `mapstructure:"lang_pair" validate:"langpair"`
	TimeoutSeconds int                 `mapstructure:"timeout_seconds" validate:"min=1"`
	RetryAttempts  uint                `mapstructure:"retry_attempts"`
	Cache          FallbackCacheConfig `mapstructure:"cache"`
}

func (c FallbackConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// FallbackCacheConfig selects the cache of fallback translations.
// Redis is used when RedisURL is set, an in-memory cache otherwise.
type FallbackCacheConfig struct {
	RedisURL   string `mapstructure:"redis_url" validate:"omitempty,url"`
	TTLSeconds int    `mapstructure:"ttl_seconds" validate:"min=0"`
}

type SyncConfig struct {
	Enabled         bool `mapstructure:"enabled"`
	AutoSync        bool `mapstructure:"auto_sync"`
	IntervalSeconds int  `mapstructure:"interval_seconds" validate:"min=1"`
}

func (c SyncConfig) Interval() time.Duration {
	return time.Duration(c.IntervalSeconds) * time.Second
}

// SchedulerEnabled reports whether the background sync should run at all.
func (c SyncConfig) SchedulerEnabled() bool {
	return c.Enabled && c.AutoSync
}

type StoreConfig struct {
	Driver string `mapstructure:"driver" validate:"oneof=file sqlite"`
	Path   string `mapstructure:"path" validate:"required"`
}

type ChannelConfig struct {
	TimeoutSeconds int    `mapstructure:"timeout_seconds" validate:"min=1"`
	ListenAddress  string `mapstructure:"listen_address" validate:"required,hostname_port"`
}

func (c ChannelConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// URL returns the base URL the CLI uses to reach the daemon.
func (c ChannelConfig) URL() string {
	return "http://" + c.ListenAddress
}

type ConfigLoader struct {
	viper      *viper.Viper
	validator  *validator.Validate
	translator ut.Translator
}

func NewConfigLoader(configFile string) (*ConfigLoader, error) {
	validate, trans, err := newValidator()
	if err != nil {
		return nil, fmt.Errorf("failed to create new validator: %w", err)
	}

	v := viper.New()
	v.SetConfigType("yaml")
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/wordsync")
	}

	return &ConfigLoader{
		viper:      v,
		validator:  validate,
		translator: trans,
	}, nil
}

func (loader *ConfigLoader) Load() (*Config, error) {
	v := loader.viper

	v.SetDefault("server.port", 3366)
	v.SetDefault("server.cors.allowed_origins", []string{"http://localhost:3366"})
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 3306)
	v.SetDefault("database.database", "danci")
	v.SetDefault("database.username", "user")
	v.SetDefault("dictionary.path", "")
	v.SetDefault("remote.enabled", true)
	v.SetDefault("remote.base_url", "http://localhost:3366/api")
	v.SetDefault("remote.timeout_seconds", 10)
	v.SetDefault("remote.retry_attempts", 2)
	v.SetDefault("fallback.base_url", "https://api.mymemory.translated.net/get")
	v.SetDefault("fallback.lang_pair", "en|zh")
	v.SetDefault("fallback.timeout_seconds", 10)
	v.SetDefault("fallback.retry_attempts", 1)
	v.SetDefault("fallback.cache.ttl_seconds", 24*60*60)
	v.SetDefault("sync.enabled", true)
	v.SetDefault("sync.auto_sync", true)
	v.SetDefault("sync.interval_seconds", 20)
	v.SetDefault("store.driver", "file")
	v.SetDefault("store.path", filepath.Join("data", "store.yml"))
	v.SetDefault("channel.timeout_seconds", 5)
	v.SetDefault("channel.listen_address", "127.0.0.1:3367")

	// Bind secrets and deployment specific endpoints to environment variables
	if err := v.BindEnv("database.password", "DB_PASSWORD"); err != nil {
		return nil, fmt.Errorf("failed to bind DB_PASSWORD environment variable: %w", err)
	}
	if err := v.BindEnv("remote.base_url", "WORDSYNC_REMOTE_URL"); err != nil {
		return nil, fmt.Errorf("failed to bind WORDSYNC_REMOTE_URL environment variable: %w", err)
	}
	if err := v.BindEnv("fallback.cache.redis_url", "WORDSYNC_REDIS_URL"); err != nil {
		return nil, fmt.Errorf("failed to bind WORDSYNC_REDIS_URL environment variable: %w", err)
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("configuration file found but could not be read: %w. Please check the file format and permissions", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration format: %w", err)
	}

	if err := loader.validator.Struct(cfg); err != nil {
		validationErrors, ok := err.(validator.ValidationErrors)
		if !ok {
			return nil, fmt.Errorf("invalid configuration: %w", err)
		}
		var errorMsgs []string
		for _, e := range validationErrors {
			errorMsgs = append(errorMsgs, e.Translate(loader.translator))
		}
		return nil, fmt.Errorf("invalid configuration: %s", strings.Join(errorMsgs, ", "))
	}

	return &cfg, nil
}

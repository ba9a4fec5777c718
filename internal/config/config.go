package config

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the application configuration loaded from files and environment variables.
type Config struct {
	AppName  string `mapstructure:"app_name" validate:"required"`
	Env      string `mapstructure:"app_env"`
	LogLevel string `mapstructure:"log_level" validate:"omitempty,oneof=debug info warn warning error"`

	DirectoryBaseURL   string        `mapstructure:"directory_base_url" validate:"required,url"`
	DirectoryTimeoutMs int64         `mapstructure:"directory_timeout_ms" validate:"gt=0"`
	DirectoryTimeout   time.Duration `mapstructure:"-"`

	HubsFile       string `mapstructure:"hubs_file"`
	PublishersFile string `mapstructure:"publishers_file"`

	WatchIntervalSeconds int64         `mapstructure:"watch_interval" validate:"gt=0"`
	WatchInterval        time.Duration `mapstructure:"-"`
	WatchLimit           int           `mapstructure:"watch_limit" validate:"gt=0"`

	StorageType            string        `mapstructure:"storage_type" validate:"omitempty,oneof=none disabled bbolt redis"`
	BBoltPath              string        `mapstructure:"bbolt_path"`
	RedisAddr              string        `mapstructure:"redis_addr"`
	RedisPassword          string        `mapstructure:"redis_password"`
	RedisDB                int           `mapstructure:"redis_db"`
	StorageTTLSeconds      int64         `mapstructure:"storage_ttl_seconds" validate:"gt=0"`
	StorageCleanupSeconds  int64         `mapstructure:"storage_cleanup_interval_seconds" validate:"gt=0"`
	StorageTTL             time.Duration `mapstructure:"-"`
	StorageCleanupInterval time.Duration `mapstructure:"-"`
}

var validate = validator.New()

// Load reads configuration from environment variables and config files.
func Load() (*Config, error) {
	_ = godotenv.Load("configs/.env")

	v := viper.New()

	v.SetDefault("app_name", "handii-volunteer-directory")
	v.SetDefault("app_env", "development")
	v.SetDefault("log_level", "info")
	v.SetDefault("directory_base_url", "https://staging.codinnovations.com/voice-agent-api")
	v.SetDefault("directory_timeout_ms", 10000)
	v.SetDefault("hubs_file", "./configs/hubs.yaml")
	v.SetDefault("publishers_file", "./configs/publishers.yaml")
	v.SetDefault("watch_interval", 300) // seconds
	v.SetDefault("watch_limit", 500)
	v.SetDefault("storage_type", "bbolt")
	v.SetDefault("bbolt_path", "./data/volunteers.db")
	v.SetDefault("redis_addr", "localhost:6379")
	v.SetDefault("redis_password", "")
	v.SetDefault("redis_db", 0)
	v.SetDefault("storage_ttl_seconds", int64((7*24*time.Hour)/time.Second))
	v.SetDefault("storage_cleanup_interval_seconds", int64((12*time.Hour)/time.Second))

	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.finalize(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// finalize validates raw values and derives durations.
func (cfg *Config) finalize() error {
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if cfg.StorageType == "bbolt" && cfg.BBoltPath == "" {
		return fmt.Errorf("invalid config: bbolt_path is required for bbolt storage")
	}
	if cfg.StorageType == "redis" && cfg.RedisAddr == "" {
		return fmt.Errorf("invalid config: redis_addr is required for redis storage")
	}

	cfg.DirectoryTimeout = time.Duration(cfg.DirectoryTimeoutMs) * time.Millisecond
	cfg.WatchInterval = time.Duration(cfg.WatchIntervalSeconds) * time.Second
	cfg.StorageTTL = time.Duration(cfg.StorageTTLSeconds) * time.Second
	cfg.StorageCleanupInterval = time.Duration(cfg.StorageCleanupSeconds) * time.Second
	return nil
}

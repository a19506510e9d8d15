package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
	"github.com/xxxsen/common/logger"
)

const envPrefix = "DOCSHARE"

type Config struct {
	Port          int              `json:"port" validate:"required,gt=0,lt=65536"`
	JWTSecret     string           `json:"jwt_secret" validate:"required"`
	JWTTTLHours   int              `json:"jwt_ttl_hours" validate:"gte=0"`
	PublicBaseURL string           `json:"public_base_url" validate:"required,url"`
	LogConfig     logger.LogConfig `json:"log_config"`
	Database      DatabaseConfig   `json:"database"`
	ShareStore    ShareStoreConfig `json:"share_store"`
	FileStore     FileStoreConfig  `json:"file_store"`
	Share         ShareConfig      `json:"share"`
	Throttle      ThrottleConfig   `json:"throttle"`
	AccessLog     AccessLogConfig  `json:"access_log"`
	CORSAllowlist []string         `json:"cors_allowlist"`
	RateLimitMS   int              `json:"rate_limit_ms" validate:"gte=0"`
}

type DatabaseConfig struct {
	DSN          string `json:"dsn"`
	Host         string `json:"host"`
	Port         int    `json:"port"`
	User         string `json:"user"`
	Password     string `json:"password"`
	DBName       string `json:"dbname"`
	SSLMode      string `json:"sslmode"`
	MaxOpenConns int    `json:"max_open_conns" validate:"gte=0"`
	MaxIdleConns int    `json:"max_idle_conns" validate:"gte=0"`
}

type ShareStoreConfig struct {
	Type string `json:"type" validate:"oneof=postgres badger"`
	Dir  string `json:"dir" validate:"required_if=Type badger"`
}

type FileStoreConfig struct {
	Type string                 `json:"type" validate:"required"`
	Data map[string]interface{} `json:"data"`
}

type ShareConfig struct {
	MaxExpiresDays       int `json:"max_expires_days" validate:"gt=0"`
	MaxPasswordLen       int `json:"max_password_len" validate:"gt=0,lte=72"`
	LockoutThreshold     int `json:"lockout_threshold" validate:"gte=0"`
	LockoutWindowSeconds int `json:"lockout_window_seconds" validate:"gte=0"`
}

type ThrottleConfig struct {
	Type  string      `json:"type" validate:"oneof=memory redis"`
	Size  int         `json:"size" validate:"gte=0"`
	Redis RedisConfig `json:"redis"`
}

type RedisConfig struct {
	Addr     string `json:"addr"`
	Password string `json:"password"`
	DB       int    `json:"db"`
}

type AccessLogConfig struct {
	KeepDays    int    `json:"keep_days" validate:"gte=0"`
	CleanupCron string `json:"cleanup_cron"`
}

func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("json")
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	// AutomaticEnv only applies to keys viper already knows about.
	for _, key := range []string{"jwt_secret", "port", "public_base_url", "database.dsn", "database.password", "throttle.redis.password"} {
		_ = v.BindEnv(key)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "json"
	}); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	applyDefaults(&cfg, v.IsSet)
	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyDefaults fills zero values. Keys where an explicit 0 means "off" only
// get their default when isSet reports them absent.
func applyDefaults(cfg *Config, isSet func(key string) bool) {
	if cfg.JWTTTLHours == 0 {
		cfg.JWTTTLHours = 72
	}
	if cfg.LogConfig.Level == "" {
		cfg.LogConfig.Level = "info"
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.ShareStore.Type == "" {
		cfg.ShareStore.Type = "postgres"
	}
	if cfg.FileStore.Type == "" {
		cfg.FileStore.Type = "local"
	}
	if cfg.Share.MaxExpiresDays == 0 {
		cfg.Share.MaxExpiresDays = 365
	}
	if cfg.Share.MaxPasswordLen == 0 {
		cfg.Share.MaxPasswordLen = 72
	}
	if !isSet("share.lockout_threshold") {
		cfg.Share.LockoutThreshold = 5
	}
	if !isSet("share.lockout_window_seconds") {
		cfg.Share.LockoutWindowSeconds = 900
	}
	if cfg.Throttle.Type == "" {
		cfg.Throttle.Type = "memory"
	}
	if cfg.Throttle.Size == 0 {
		cfg.Throttle.Size = 10000
	}
	if !isSet("access_log.keep_days") {
		cfg.AccessLog.KeepDays = 90
	}
	if cfg.AccessLog.CleanupCron == "" {
		cfg.AccessLog.CleanupCron = "0 3 * * *"
	}
}

func Validate(cfg *Config) error {
	if err := validator.New().Struct(cfg); err != nil {
		return fmt.Errorf("validate config: %w", err)
	}
	if cfg.Database.DSN == "" && cfg.Database.Host == "" {
		return fmt.Errorf("database.dsn or database.host is required")
	}
	if cfg.Throttle.Type == "redis" && cfg.Throttle.Redis.Addr == "" {
		return fmt.Errorf("throttle.redis.addr is required for redis throttle")
	}
	return nil
}

package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Load reads config.yaml from the usual locations, merges EDCORE_ environment
// overrides, applies defaults and validates the result.
func Load() (*Config, error) {
	loadDotEnv()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath(".")
	return load(v, true)
}

// LoadFromFile reads one explicit config file; tests use this.
func LoadFromFile(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	return load(v, false)
}

func load(v *viper.Viper, fileOptional bool) (*Config, error) {
	v.SetEnvPrefix("EDCORE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindKeys(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !fileOptional || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	applyDefaults(&cfg)
	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func loadDotEnv() {
	for _, path := range []string{".env", "../.env"} {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
	}
}

// bindKeys registers every key with viper so AutomaticEnv can override
// values absent from the YAML file.
func bindKeys(v *viper.Viper) {
	for _, key := range []string{
		"app.name", "app.environment",
		"server.addr", "server.read_timeout", "server.write_timeout",
		"server.shutdown_timeout", "server.rate_limit_rps",
		"server.rate_limit_burst", "server.max_body_bytes",
		"database.host", "database.port", "database.name",
		"database.user", "database.password", "database.sslmode",
		"redis.enabled", "redis.address", "redis.password", "redis.db", "redis.ttl",
		"auth.token_ttl",
		"notify.sms_provider", "notify.sms_batch_cap", "notify.call_timeout",
		"notify.sns.region", "notify.sns.sender_id",
		"notify.msg91.auth_key", "notify.msg91.sender_id", "notify.msg91.base_url",
		"logging.level", "logging.format",
	} {
		_ = v.BindEnv(key)
	}
}

func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "edcore-api"
	}
	if cfg.App.Environment == "" {
		cfg.App.Environment = "development"
	}
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8080"
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 15
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 20
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 10
	}
	if cfg.Server.RateLimitRPS == 0 {
		cfg.Server.RateLimitRPS = 50
	}
	if cfg.Server.RateLimitBurst == 0 {
		cfg.Server.RateLimitBurst = 100
	}
	if cfg.Server.MaxBodyBytes == 0 {
		cfg.Server.MaxBodyBytes = 1 << 20
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Redis.TTL == 0 {
		cfg.Redis.TTL = 60
	}
	if cfg.Auth.TokenTTL == 0 {
		cfg.Auth.TokenTTL = 60
	}
	if cfg.Notify.SMSBatchCap == 0 {
		cfg.Notify.SMSBatchCap = 100
	}
	if cfg.Notify.CallTimeout == 0 {
		cfg.Notify.CallTimeout = 5
	}
	if cfg.Notify.MSG91.BaseURL == "" {
		cfg.Notify.MSG91.BaseURL = "https://api.msg91.com"
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
}

// validate fails fast on wiring a server cannot run without. Provider
// credentials are checked here rather than on first send.
func validate(cfg *Config) error {
	if cfg.Database.Host == "" {
		return fmt.Errorf("database.host is required")
	}
	if cfg.Database.Name == "" {
		return fmt.Errorf("database.name is required")
	}
	if cfg.Database.User == "" {
		return fmt.Errorf("database.user is required")
	}
	if cfg.Redis.Enabled && cfg.Redis.Address == "" {
		return fmt.Errorf("redis.address is required when redis is enabled")
	}
	switch cfg.Notify.SMSProvider {
	case "", "none":
	case "sns":
		if cfg.Notify.SNS.Region == "" {
			return fmt.Errorf("notify.sns.region is required for the sns provider")
		}
	case "msg91":
		if cfg.Notify.MSG91.AuthKey == "" {
			return fmt.Errorf("notify.msg91.auth_key is required for the msg91 provider")
		}
		if cfg.Notify.MSG91.SenderID == "" {
			return fmt.Errorf("notify.msg91.sender_id is required for the msg91 provider")
		}
	default:
		return fmt.Errorf("unknown sms provider %q", cfg.Notify.SMSProvider)
	}
	return nil
}

// Package config loads service configuration from a YAML file with
// environment overrides. Variables use the EDCORE_ prefix with dots replaced
// by underscores, e.g. notify.sms_provider becomes EDCORE_NOTIFY_SMS_PROVIDER.
package config

import "fmt"

// Config is the root service configuration.
type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Notify   NotifyConfig   `mapstructure:"notify"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
}

type ServerConfig struct {
	Addr            string `mapstructure:"addr"`
	ReadTimeout     int    `mapstructure:"read_timeout"`     // seconds
	WriteTimeout    int    `mapstructure:"write_timeout"`    // seconds
	ShutdownTimeout int    `mapstructure:"shutdown_timeout"` // seconds
	RateLimitRPS    int    `mapstructure:"rate_limit_rps"`
	RateLimitBurst  int    `mapstructure:"rate_limit_burst"`
	MaxBodyBytes    int64  `mapstructure:"max_body_bytes"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Name     string `mapstructure:"name"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	SSLMode  string `mapstructure:"sslmode"`
}

// DSN returns the PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode,
	)
}

type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	TTL      int    `mapstructure:"ttl"` // seconds
}

type AuthConfig struct {
	TokenTTL int `mapstructure:"token_ttl"` // minutes
}

// NotifyConfig selects and configures the SMS provider and the in-app
// delivery limits. SMSProvider is "sns", "msg91" or "" to disable SMS.
type NotifyConfig struct {
	SMSProvider string `mapstructure:"sms_provider"`
	SMSBatchCap int    `mapstructure:"sms_batch_cap"`
	CallTimeout int    `mapstructure:"call_timeout"` // seconds

	SNS struct {
		Region   string `mapstructure:"region"`
		SenderID string `mapstructure:"sender_id"`
	} `mapstructure:"sns"`

	MSG91 struct {
		AuthKey  string `mapstructure:"auth_key"`
		SenderID string `mapstructure:"sender_id"`
		BaseURL  string `mapstructure:"base_url"`
	} `mapstructure:"msg91"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

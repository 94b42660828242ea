package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all AgriConnect configuration.
type Config struct {
	Storage   StorageConfig   `mapstructure:"storage"`
	Server    ServerConfig    `mapstructure:"server"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Auth      AuthConfig      `mapstructure:"auth"`
	Directory DirectoryConfig `mapstructure:"directory"`
	Alerts    AlertsConfig    `mapstructure:"alerts"`
	Notify    NotifyConfig    `mapstructure:"notify"`
	Data      DataConfig      `mapstructure:"data"`
}

// StorageConfig defines database settings.
type StorageConfig struct {
	Path string `mapstructure:"path"`
}

// ServerConfig defines HTTP API settings.
type ServerConfig struct {
	Listen       string `mapstructure:"listen"`
	ReadTimeout  string `mapstructure:"read_timeout"`
	WriteTimeout string `mapstructure:"write_timeout"`
}

// LoggingConfig defines logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// AuthConfig defines login verification settings.
type AuthConfig struct {
	// DemoCode is the fixed one-time code the demo verifier accepts, a
	// placeholder for a real OTP backend.
	DemoCode string `mapstructure:"demo_code"`
}

// DirectoryConfig points at an optional farmer directory file.
type DirectoryConfig struct {
	Path string `mapstructure:"path"`
}

// AlertsConfig defines alert generation settings.
type AlertsConfig struct {
	DefaultDistrict string `mapstructure:"default_district"`
}

// NotifyConfig defines the notification gateways.
type NotifyConfig struct {
	Console ConsoleConfig `mapstructure:"console"`
	Webhook WebhookConfig `mapstructure:"webhook"`
	Kafka   KafkaConfig   `mapstructure:"kafka"`
}

// ConsoleConfig defines the demo console gateway.
type ConsoleConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// WebhookConfig defines the HTTP SMS-gateway webhook.
type WebhookConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	URL     string `mapstructure:"url"`
	Secret  string `mapstructure:"secret"`
}

// KafkaConfig defines the outbound-SMS topic producer.
type KafkaConfig struct {
	Enabled bool     `mapstructure:"enabled"`
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
}

// DataConfig defines the mock environmental data source settings.
type DataConfig struct {
	// Latency simulates remote API round-trip time, e.g. "250ms".
	Latency string `mapstructure:"latency"`
}

// ParseLatency returns the configured simulated latency, zero on bad input.
func (d DataConfig) ParseLatency() time.Duration {
	latency, err := time.ParseDuration(d.Latency)
	if err != nil || latency < 0 {
		return 0
	}
	return latency
}

// Load reads configuration from file and environment variables.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("find home directory: %w", err)
		}

		v.AddConfigPath(filepath.Join(home, ".agriconnect"))
		v.AddConfigPath(".")
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	// Defaults
	home, _ := os.UserHomeDir()
	v.SetDefault("storage.path", filepath.Join(home, ".agriconnect", "agriconnect.db"))
	v.SetDefault("server.listen", ":8080")
	v.SetDefault("server.read_timeout", "10s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("auth.demo_code", "123456")
	v.SetDefault("alerts.default_district", "Krishna")
	v.SetDefault("notify.console.enabled", true)
	v.SetDefault("notify.kafka.topic", "sms-outbound")
	v.SetDefault("data.latency", "250ms")

	// Environment variables
	v.SetEnvPrefix("AGRI")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file (ignore if not found)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.Notify.Webhook.Enabled && cfg.Notify.Webhook.URL == "" {
		return nil, fmt.Errorf("notify.webhook.enabled is true but notify.webhook.url is not set")
	}
	if cfg.Notify.Kafka.Enabled && len(cfg.Notify.Kafka.Brokers) == 0 {
		return nil, fmt.Errorf("notify.kafka.enabled is true but notify.kafka.brokers is not set")
	}

	return &cfg, nil
}

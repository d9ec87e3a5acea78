package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// ServerConfig holds the HTTP front end settings.
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	// RateLimit uses the limiter format, e.g. "100-M" for 100 req/min.
	RateLimit string `mapstructure:"rate_limit"`
}

// KafkaConfig holds the broker publisher settings.
type KafkaConfig struct {
	Enabled bool     `mapstructure:"enabled"`
	Brokers []string `mapstructure:"brokers"`
}

// ComplianceConfig holds rule thresholds.
type ComplianceConfig struct {
	MaxOrderQty float64 `mapstructure:"max_order_qty"`
}

// AnomalyConfig holds detector thresholds.
type AnomalyConfig struct {
	VolumeThreshold float64 `mapstructure:"volume_threshold"`
	MinTypeShare    float64 `mapstructure:"min_type_share"`
	MaxSeqGap       int     `mapstructure:"max_seq_gap"`
}

// Config is the application configuration.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Kafka      KafkaConfig      `mapstructure:"kafka"`
	Compliance ComplianceConfig `mapstructure:"compliance"`
	Anomaly    AnomalyConfig    `mapstructure:"anomaly"`
	Log        struct {
		Level string `mapstructure:"level"`
	} `mapstructure:"log"`
	History struct {
		MaxMessages int `mapstructure:"max_messages"`
	} `mapstructure:"history"`
}

// Load reads configuration from config.yaml (when present) and from
// FIXSENTRY_-prefixed environment variables, with defaults for every
// setting.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")
	v.SetEnvPrefix("FIXSENTRY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 10*time.Second)
	v.SetDefault("server.write_timeout", 10*time.Second)
	v.SetDefault("server.idle_timeout", 60*time.Second)
	v.SetDefault("server.shutdown_timeout", 15*time.Second)
	v.SetDefault("server.rate_limit", "100-M")
	v.SetDefault("log.level", "info")
	v.SetDefault("kafka.enabled", false)
	v.SetDefault("kafka.brokers", []string{"localhost:9092"})
	v.SetDefault("compliance.max_order_qty", 1_000_000.0)
	v.SetDefault("anomaly.volume_threshold", 2.0)
	v.SetDefault("anomaly.min_type_share", 0.01)
	v.SetDefault("anomaly.max_seq_gap", 10)
	v.SetDefault("history.max_messages", 10000)
}

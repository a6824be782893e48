// Package config reads the server configuration from the environment, an
// optional .env file and an optional config file.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"github.com/yeremiapane/restaurant-dashboard/store"
)

type Config struct {
	Port     string       `mapstructure:"port"`
	GinMode  string       `mapstructure:"gin_mode"`
	LogLevel logrus.Level `mapstructure:"log_level"`

	StoreDriver        string `mapstructure:"store_driver"`
	DBDSN              string `mapstructure:"db_dsn"`
	RedisAddr          string `mapstructure:"redis_addr"`
	RedisPassword      string `mapstructure:"redis_password"`
	RedisDB            int    `mapstructure:"redis_db"`
	StoreKeyPrefix     string `mapstructure:"store_key_prefix"`
	StoreMaxValueBytes int    `mapstructure:"store_max_value_bytes"`

	JWTSecret string        `mapstructure:"jwt_secret"`
	TokenTTL  time.Duration `mapstructure:"token_ttl"`

	CORSAllowedOrigins []string `mapstructure:"cors_allowed_origins"`
	RateLimitRPS       float64  `mapstructure:"rate_limit_rps"`
	RateLimitBurst     int      `mapstructure:"rate_limit_burst"`

	KafkaBrokers []string `mapstructure:"kafka_brokers"`
	KafkaTopic   string   `mapstructure:"kafka_topic"`

	RabbitMQURL      string `mapstructure:"rabbitmq_url"`
	RabbitMQExchange string `mapstructure:"rabbitmq_exchange"`

	ImageStorage  string `mapstructure:"image_storage"`
	UploadDir     string `mapstructure:"upload_dir"`
	PublicBaseURL string `mapstructure:"public_base_url"`
	S3Bucket      string `mapstructure:"s3_bucket"`
	S3Region      string `mapstructure:"s3_region"`
}

const devJWTSecret = "dev-secret-change-me"

var defaults = map[string]interface{}{
	"port":                  "8080",
	"gin_mode":              "debug",
	"log_level":             "info",
	"store_driver":          "sqlite",
	"db_dsn":                "restaurant_dashboard.db",
	"redis_addr":            "localhost:6379",
	"redis_password":        "",
	"redis_db":              0,
	"store_key_prefix":      "",
	"store_max_value_bytes": store.DefaultMaxValueBytes,
	"jwt_secret":            devJWTSecret,
	"token_ttl":             "24h",
	"cors_allowed_origins":  []string{},
	"rate_limit_rps":        20.0,
	"rate_limit_burst":      40,
	"kafka_brokers":         []string{},
	"kafka_topic":           "restaurant.orders",
	"rabbitmq_url":          "",
	"rabbitmq_exchange":     "restaurant.orders",
	"image_storage":         "local",
	"upload_dir":            "public/uploads",
	"public_base_url":       "http://localhost:8080",
	"s3_bucket":             "",
	"s3_region":             "ap-south-1",
}

// Load reads .env (when present), then cfgFile (when given), then the
// environment. Environment variables win.
func Load(cfgFile string) (*Config, error) {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	// log_level decodes through logrus.Level's UnmarshalText.
	decoderConfigOption := viper.DecoderConfigOption(func(dc *mapstructure.DecoderConfig) {
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			dc.DecodeHook,
			mapstructure.TextUnmarshallerHookFunc(),
		)
	})
	if err := v.Unmarshal(&cfg, decoderConfigOption); err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %w", err)
	}
	cfg.CORSAllowedOrigins = splitList(cfg.CORSAllowedOrigins)
	cfg.KafkaBrokers = splitList(cfg.KafkaBrokers)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// splitList trims entries and drops empty ones ("a, b," -> [a b]).
func splitList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, item := range in {
		for _, part := range strings.Split(item, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func (c *Config) Validate() error {
	switch c.StoreDriver {
	case "sqlite", "mysql", "postgres", "redis":
	default:
		return fmt.Errorf("STORE_DRIVER must be sqlite, mysql, postgres or redis, got %q", c.StoreDriver)
	}
	if c.StoreDriver != "redis" && c.DBDSN == "" {
		return fmt.Errorf("DB_DSN is required for STORE_DRIVER=%s", c.StoreDriver)
	}
	switch c.ImageStorage {
	case "local":
	case "s3":
		if c.S3Bucket == "" {
			return fmt.Errorf("S3_BUCKET is required when IMAGE_STORAGE=s3")
		}
	default:
		return fmt.Errorf("IMAGE_STORAGE must be local or s3, got %q", c.ImageStorage)
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("TOKEN_TTL must be positive")
	}
	if c.GinMode == "release" && (c.JWTSecret == "" || c.JWTSecret == devJWTSecret) {
		return fmt.Errorf("JWT_SECRET must be set in release mode")
	}
	return nil
}

func (c *Config) KafkaEnabled() bool {
	return len(c.KafkaBrokers) > 0
}

func (c *Config) RabbitMQEnabled() bool {
	return c.RabbitMQURL != ""
}

package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

type AppConfig struct {
	API      *APIConfig      `mapstructure:"api"`
	Gin      *GinConfig      `mapstructure:"gin"`
	Postgres *PostgresConfig `mapstructure:"postgres"`
	Redis    *RedisConfig    `mapstructure:"redis"`
	RabbitMQ *RabbitMQConfig `mapstructure:"rabbitmq"`
	CheckIn  *CheckInConfig  `mapstructure:"checkin"`
}

type APIConfig struct {
	Environment        string   `mapstructure:"environment"`
	Port               string   `mapstructure:"port"`
	BaseURL            string   `mapstructure:"base_url"`
	AllowedCORSDomains []string `mapstructure:"allowed_cors_domains"`
	JWTSigningKey      string   `mapstructure:"jwt_signing_key"`
	LogLevel           string   `mapstructure:"log_level"`
}

type GinConfig struct {
	Mode string `mapstructure:"mode"`
}

type PostgresConfig struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DB       string `mapstructure:"db"`
	SSLMode  string `mapstructure:"sslmode"`
}

func (c *PostgresConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DB, c.SSLMode,
	)
}

// RedisConfig is optional: an empty Addr disables the capacity cache.
type RedisConfig struct {
	Addr        string        `mapstructure:"addr"`
	Password    string        `mapstructure:"password"`
	DB          int           `mapstructure:"db"`
	CapacityTTL time.Duration `mapstructure:"capacity_ttl"`
}

// RabbitMQConfig is optional: an empty URL disables inventory event publishing.
type RabbitMQConfig struct {
	URL      string `mapstructure:"url"`
	Exchange string `mapstructure:"exchange"`
}

type CheckInConfig struct {
	SigningKey      string `mapstructure:"signing_key"`
	Issuer          string `mapstructure:"issuer"`
	FrontendBaseURL string `mapstructure:"frontend_base_url"`
}

// Load reads the YAML file at path and lets environment variables override it,
// e.g. API_PORT or POSTGRES_HOST.
func Load(path string) (*AppConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("v.ReadInConfig -> %w", err)
	}

	conf := &AppConfig{}
	if err := v.Unmarshal(conf); err != nil {
		return nil, fmt.Errorf("v.Unmarshal -> %w", err)
	}

	if err := conf.validate(); err != nil {
		return nil, err
	}

	current = v

	return conf, nil
}

var current *viper.Viper

// Watch calls onChange with the reloaded config whenever the file changes.
// Only settings that are safe to change at runtime should be read from it.
func Watch(onChange func(conf *AppConfig)) {
	if current == nil {
		return
	}

	v := current
	v.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}

		conf := &AppConfig{}
		if err := v.Unmarshal(conf); err != nil {
			return
		}
		onChange(conf)
	})
	v.WatchConfig()
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("api.environment", "development")
	v.SetDefault("api.port", "8080")
	v.SetDefault("api.base_url", "localhost:8080")
	v.SetDefault("api.log_level", "info")
	v.SetDefault("gin.mode", "debug")
	v.SetDefault("postgres.host", "localhost")
	v.SetDefault("postgres.port", "5432")
	v.SetDefault("postgres.sslmode", "disable")
	v.SetDefault("redis.capacity_ttl", 30*time.Second)
	v.SetDefault("rabbitmq.exchange", "stall.inventory")
	v.SetDefault("checkin.issuer", "stall-booking-api")

	// AutomaticEnv only sees keys viper already knows about.
	for _, key := range []string{
		"api.jwt_signing_key", "postgres.user", "postgres.password", "postgres.db",
		"redis.addr", "redis.password", "redis.db", "rabbitmq.url",
		"checkin.signing_key", "checkin.frontend_base_url",
	} {
		_ = v.BindEnv(key)
	}
}

func (c *AppConfig) validate() error {
	if c.API == nil || c.API.JWTSigningKey == "" {
		return fmt.Errorf("api.jwt_signing_key is required")
	}
	if c.CheckIn == nil || c.CheckIn.SigningKey == "" {
		return fmt.Errorf("checkin.signing_key is required")
	}
	if c.CheckIn.FrontendBaseURL == "" {
		return fmt.Errorf("checkin.frontend_base_url is required")
	}
	if c.Redis == nil {
		c.Redis = &RedisConfig{}
	}
	if c.RabbitMQ == nil {
		c.RabbitMQ = &RabbitMQConfig{}
	}

	return nil
}

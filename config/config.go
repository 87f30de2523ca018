package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/viper"
)

type ServerConfig struct {
	Port           int           `yaml:"port" envconfig:"SERVER_PORT"`
	ReadTimeout    time.Duration `yaml:"read_timeout"`
	WriteTimeout   time.Duration `yaml:"write_timeout"`
	MaxHeaderBytes int           `yaml:"max_header_bytes"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host" envconfig:"DB_HOST"`
	Port     int    `yaml:"port" envconfig:"DB_PORT"`
	User     string `yaml:"user" envconfig:"DB_USER"`
	Password string `yaml:"password" envconfig:"DB_PASSWORD"`
	Name     string `yaml:"name" envconfig:"DB_NAME"`
	SSLMode  string `yaml:"sslmode" envconfig:"DB_SSLMODE"`
}

type RedisConfig struct {
	URL string `yaml:"url" envconfig:"REDIS_URL"`
}

// AIConfig tunes the external text-generation service and the retry
// policy wrapped around it.
type AIConfig struct {
	Endpoint          string        `yaml:"endpoint" envconfig:"AI_ENDPOINT"`
	APIKey            string        `yaml:"api_key" envconfig:"AI_API_KEY"`
	Model             string        `yaml:"model" envconfig:"AI_MODEL"`
	Timeout           time.Duration `yaml:"timeout"`
	MaxRetries        int           `yaml:"max_retries"`
	BackoffBase       time.Duration `yaml:"backoff_base"`
	RequestsPerSecond float64       `yaml:"requests_per_second"`
}

// EscalationConfig configures where emergency assessments are sent.
type EscalationConfig struct {
	Enabled       bool   `yaml:"enabled"`
	Channel       string `yaml:"channel"`
	SMTPHost      string `yaml:"smtp_host" envconfig:"SMTP_HOST"`
	SMTPPort      int    `yaml:"smtp_port" envconfig:"SMTP_PORT"`
	SMTPUser      string `yaml:"smtp_user" envconfig:"SMTP_USER"`
	SMTPPassword  string `yaml:"smtp_password" envconfig:"SMTP_PASSWORD"`
	FromAddress   string `yaml:"from_address"`
	CareTeamEmail string `yaml:"care_team_email"`
}

type RateLimitConfig struct {
	Enabled           bool    `yaml:"enabled"`
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	Burst             int     `yaml:"burst"`
}

type CacheConfig struct {
	TTL             time.Duration `yaml:"ttl"`
	CleanupInterval time.Duration `yaml:"cleanup_interval"`
	EncryptionKey   string        `yaml:"encryption_key" envconfig:"CACHE_ENCRYPTION_KEY"`
}

type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Database   DatabaseConfig   `yaml:"database"`
	Redis      RedisConfig      `yaml:"redis"`
	AI         AIConfig         `yaml:"ai"`
	Escalation EscalationConfig `yaml:"escalation"`
	RateLimit  RateLimitConfig  `yaml:"rate_limit"`
	Cache      CacheConfig      `yaml:"cache"`
}

// LoadConfig reads config.yml from the usual locations, then lets
// environment variables override individual fields.
func LoadConfig() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AddConfigPath("/app")
	viper.AddConfigPath("/app/config")

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := envconfig.Process("portal", &config); err != nil {
		return nil, fmt.Errorf("failed to process environment overrides: %w", err)
	}

	config.applyDefaults()
	return &config, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 15 * time.Second
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 30 * time.Second
	}
	if c.AI.Timeout == 0 {
		c.AI.Timeout = 10 * time.Second
	}
	if c.AI.MaxRetries == 0 {
		c.AI.MaxRetries = 2
	}
	if c.AI.BackoffBase == 0 {
		c.AI.BackoffBase = time.Second
	}
	if c.Cache.TTL == 0 {
		c.Cache.TTL = 5 * time.Minute
	}
	if c.Cache.CleanupInterval == 0 {
		c.Cache.CleanupInterval = 10 * time.Minute
	}
	if c.RateLimit.RequestsPerSecond == 0 {
		c.RateLimit.RequestsPerSecond = 10
	}
	if c.RateLimit.Burst == 0 {
		c.RateLimit.Burst = 20
	}
}

// DSN renders the postgres connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

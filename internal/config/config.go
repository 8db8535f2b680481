package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/xxxsen/common/logger"
)

type Config struct {
	Port          int              `json:"port"`
	DevMode       bool             `json:"dev_mode"`
	BaseURL       string           `json:"base_url"`
	LogConfig     logger.LogConfig `json:"log_config"`
	Database      DatabaseConfig   `json:"database"`
	Cache         CacheConfig      `json:"cache"`
	Mail          MailConfig       `json:"mail"`
	Auth          AuthConfig       `json:"auth"`
	Janitor       JanitorConfig    `json:"janitor"`
	CORSAllowlist []string         `json:"cors_allowlist"`
}

type DatabaseConfig struct {
	Type         string `json:"type"`
	DSN          string `json:"dsn"`
	Host         string `json:"host"`
	Port         int    `json:"port"`
	User         string `json:"user"`
	Password     string `json:"password"`
	DBName       string `json:"dbname"`
	SSLMode      string `json:"sslmode"`
	MaxOpenConns int    `json:"max_open_conns"`
}

func (c DatabaseConfig) BuildDSN() string {
	if c.DSN != "" {
		return c.DSN
	}
	sslmode := c.SSLMode
	if sslmode == "" {
		sslmode = "disable"
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, sslmode)
}

type CacheConfig struct {
	Type  string      `json:"type"`
	Size  int         `json:"size"`
	Redis RedisConfig `json:"redis"`
}

type RedisConfig struct {
	Addr     string `json:"addr"`
	Password string `json:"password"`
	DB       int    `json:"db"`
}

type MailConfig struct {
	Type           string `json:"type"`
	From           string `json:"from"`
	Subject        string `json:"subject"`
	Host           string `json:"host"`
	Port           int    `json:"port"`
	Username       string `json:"username"`
	Password       string `json:"password"`
	ResendAPIKey   string `json:"resend_api_key"`
	ResendEndpoint string `json:"resend_endpoint"`
	TimeoutSeconds int    `json:"timeout_seconds"`
}

type AuthConfig struct {
	VerificationTTLMinutes int `json:"verification_ttl_minutes"`
	SessionTTLDays         int `json:"session_ttl_days"`
	RefreshIntervalMinutes int `json:"refresh_interval_minutes"`
	CacheTTLSeconds        int `json:"cache_ttl_seconds"`
	LoginRateLimitSeconds  int `json:"login_rate_limit_seconds"`
}

func (a AuthConfig) VerificationTTL() time.Duration {
	return time.Duration(a.VerificationTTLMinutes) * time.Minute
}

func (a AuthConfig) SessionTTL() time.Duration {
	return time.Duration(a.SessionTTLDays) * 24 * time.Hour
}

func (a AuthConfig) RefreshInterval() time.Duration {
	return time.Duration(a.RefreshIntervalMinutes) * time.Minute
}

func (a AuthConfig) CacheTTL() time.Duration {
	return time.Duration(a.CacheTTLSeconds) * time.Second
}

func (a AuthConfig) LoginRateLimit() time.Duration {
	return time.Duration(a.LoginRateLimitSeconds) * time.Second
}

type JanitorConfig struct {
	Spec           string `json:"spec"`
	Disabled       bool   `json:"disabled"`
	TimeoutSeconds int    `json:"timeout_seconds"`
}

func (j JanitorConfig) Timeout() time.Duration {
	return time.Duration(j.TimeoutSeconds) * time.Second
}

func Load(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	var cfg Config
	if err := json.NewDecoder(file).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) normalize() error {
	if c.Port == 0 {
		return fmt.Errorf("port is required")
	}
	if c.LogConfig.Level == "" {
		c.LogConfig.Level = "info"
	}
	c.BaseURL = strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
	if c.BaseURL != "" {
		u, err := url.Parse(c.BaseURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("base_url must be an absolute url")
		}
	}

	if c.Database.Type == "" {
		c.Database.Type = "postgres"
	}
	switch c.Database.Type {
	case "postgres":
		if c.Database.DSN == "" && (c.Database.Host == "" || c.Database.DBName == "") {
			return fmt.Errorf("database.dsn or database host/dbname are required for postgres")
		}
		if c.Database.Port == 0 {
			c.Database.Port = 5432
		}
	case "memory":
		if !c.DevMode {
			return fmt.Errorf("database.type memory is only allowed in dev_mode")
		}
	default:
		return fmt.Errorf("database.type must be postgres or memory")
	}

	if c.Cache.Type == "" {
		c.Cache.Type = "memory"
	}
	switch c.Cache.Type {
	case "memory":
		if c.Cache.Size <= 0 {
			c.Cache.Size = 10000
		}
	case "redis":
		if c.Cache.Redis.Addr == "" {
			return fmt.Errorf("cache.redis.addr is required for redis cache")
		}
	case "none":
	default:
		return fmt.Errorf("cache.type must be memory, redis or none")
	}

	if c.Mail.Type == "" {
		c.Mail.Type = "smtp"
	}
	if c.Mail.Subject == "" {
		c.Mail.Subject = "Sign in to your account"
	}
	if c.Mail.TimeoutSeconds <= 0 {
		c.Mail.TimeoutSeconds = 10
	}
	switch c.Mail.Type {
	case "smtp":
		if c.Mail.Host == "" || c.Mail.Port == 0 || c.Mail.From == "" {
			return fmt.Errorf("mail host/port/from are required for smtp")
		}
	case "resend":
		if c.Mail.ResendAPIKey == "" || c.Mail.From == "" {
			return fmt.Errorf("mail resend_api_key/from are required for resend")
		}
		if c.Mail.ResendEndpoint == "" {
			c.Mail.ResendEndpoint = "https://api.resend.com"
		}
	case "log":
		if !c.DevMode {
			return fmt.Errorf("mail.type log is only allowed in dev_mode")
		}
	default:
		return fmt.Errorf("mail.type must be smtp, resend or log")
	}

	if c.Auth.VerificationTTLMinutes <= 0 {
		c.Auth.VerificationTTLMinutes = 15
	}
	if c.Auth.SessionTTLDays <= 0 {
		c.Auth.SessionTTLDays = 30
	}
	if c.Auth.RefreshIntervalMinutes <= 0 {
		c.Auth.RefreshIntervalMinutes = 60
	}
	if c.Auth.CacheTTLSeconds <= 0 {
		c.Auth.CacheTTLSeconds = 600
	}
	if c.Auth.CacheTTL() >= c.Auth.SessionTTL() {
		return fmt.Errorf("auth.cache_ttl_seconds must be shorter than the session ttl")
	}
	if c.Auth.RefreshInterval() >= c.Auth.SessionTTL() {
		return fmt.Errorf("auth.refresh_interval_minutes must be shorter than the session ttl")
	}

	if c.Janitor.Spec == "" {
		c.Janitor.Spec = "*/30 * * * *"
	}
	if c.Janitor.TimeoutSeconds <= 0 {
		c.Janitor.TimeoutSeconds = 300
	}
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	if _, err := parser.Parse(c.Janitor.Spec); err != nil {
		return fmt.Errorf("janitor.spec: %w", err)
	}
	return nil
}

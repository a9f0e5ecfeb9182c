package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"call-rewind-go/internal/sipgate"
)

// Config holds application configuration. Values come from an optional YAML
// file (CONFIG_FILE) with environment variables taking precedence.
type Config struct {
	Port          string `yaml:"port"`
	Env           string `yaml:"env"`
	LogLevel      string `yaml:"log_level"`
	PublicBaseURL string `yaml:"public_base_url"`

	SipgateAPIURL string `yaml:"sipgate_api_url"`

	OAuthClientID     string `yaml:"oauth_client_id"`
	OAuthClientSecret string `yaml:"oauth_client_secret"`
	OAuthAuthURL      string `yaml:"oauth_auth_url"`
	OAuthTokenURL     string `yaml:"oauth_token_url"`
	OAuthUserinfoURL  string `yaml:"oauth_userinfo_url"`
	OAuthScope        string `yaml:"oauth_scope"`

	SessionSecret string        `yaml:"session_secret"`
	SessionTTL    time.Duration `yaml:"session_ttl"`

	ShareDBPath string `yaml:"share_db_path"`

	RedisAddr      string        `yaml:"redis_addr"`
	RedisPassword  string        `yaml:"redis_password"`
	ReviewCacheTTL time.Duration `yaml:"review_cache_ttl"`
}

func defaults() *Config {
	return &Config{
		Port:             "8080",
		Env:              "local",
		LogLevel:         "info",
		SipgateAPIURL:    sipgate.DefaultBaseURL,
		OAuthAuthURL:     "https://login.sipgate.com/auth/realms/third-party/protocol/openid-connect/auth",
		OAuthTokenURL:    "https://login.sipgate.com/auth/realms/third-party/protocol/openid-connect/token",
		OAuthUserinfoURL: "https://login.sipgate.com/auth/realms/third-party/protocol/openid-connect/userinfo",
		OAuthScope:       "history:read numbers:read",
		SessionTTL:       12 * time.Hour,
		ShareDBPath:      "shares.db",
		ReviewCacheTTL:   time.Hour,
	}
}

// Load builds the configuration: defaults, then YAML file, then environment.
func Load() (*Config, error) {
	cfg := defaults()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	cfg.Port = getEnv("PORT", cfg.Port)
	cfg.Env = getEnv("ENVIRONMENT", cfg.Env)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)
	cfg.PublicBaseURL = getEnv("PUBLIC_BASE_URL", cfg.PublicBaseURL)
	cfg.SipgateAPIURL = getEnv("SIPGATE_API_URL", cfg.SipgateAPIURL)
	cfg.OAuthClientID = getEnv("SIPGATE_CLIENT_ID", cfg.OAuthClientID)
	cfg.OAuthClientSecret = getEnv("SIPGATE_CLIENT_SECRET", cfg.OAuthClientSecret)
	cfg.OAuthAuthURL = getEnv("SIPGATE_OAUTH_AUTHORIZATION_URL", cfg.OAuthAuthURL)
	cfg.OAuthTokenURL = getEnv("SIPGATE_OAUTH_TOKEN_URL", cfg.OAuthTokenURL)
	cfg.OAuthUserinfoURL = getEnv("SIPGATE_OAUTH_USERINFO_URL", cfg.OAuthUserinfoURL)
	cfg.OAuthScope = getEnv("SIPGATE_OAUTH_SCOPE", cfg.OAuthScope)
	cfg.SessionSecret = getEnv("SESSION_SECRET", cfg.SessionSecret)
	cfg.SessionTTL = getEnvAsDuration("SESSION_TTL", cfg.SessionTTL)
	cfg.ShareDBPath = getEnv("SHARE_DB_PATH", cfg.ShareDBPath)
	cfg.RedisAddr = getEnv("REDIS_ADDR", cfg.RedisAddr)
	cfg.RedisPassword = getEnv("REDIS_PASSWORD", cfg.RedisPassword)
	cfg.ReviewCacheTTL = getEnvAsDuration("REVIEW_CACHE_TTL", cfg.ReviewCacheTTL)

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.OAuthClientID == "" {
		return fmt.Errorf("config: SIPGATE_CLIENT_ID is required")
	}
	if c.OAuthClientSecret == "" {
		return fmt.Errorf("config: SIPGATE_CLIENT_SECRET is required")
	}
	if c.SessionSecret == "" {
		return fmt.Errorf("config: SESSION_SECRET is required")
	}
	return nil
}

// RedirectURL is the OAuth callback endpoint under the public base URL.
func (c *Config) RedirectURL() string {
	base := c.PublicBaseURL
	if base == "" {
		base = "http://localhost:" + c.Port
	}
	return base + "/auth/callback"
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second
	}
	return fallback
}

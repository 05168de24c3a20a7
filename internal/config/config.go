// Package config loads process configuration from defaults, an optional YAML
// file and environment variables, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Session store backends.
const (
	SessionStoreMemory   = "memory"
	SessionStorePostgres = "postgres"
	SessionStoreRedis    = "redis"
)

var (
	// ErrMissingCredentials is returned when the Spotify client credentials are unset.
	ErrMissingCredentials = errors.New("missing SPOTIFY_ID or SPOTIFY_SECRET")

	// ErrMissingSecret is returned when SESSION_SECRET is unset outside development.
	ErrMissingSecret = errors.New("SESSION_SECRET must be set outside development")
)

const devSessionSecret = "moodify-dev-secret"

// Config covers process level configuration.
type Config struct {
	Environment string `yaml:"environment"`
	HTTPAddr    string `yaml:"http_addr"`
	ClientURL   string `yaml:"client_url"`
	DatabaseURL string `yaml:"database_url"`

	Spotify   SpotifyConfig   `yaml:"spotify"`
	Session   SessionConfig   `yaml:"session"`
	Redis     RedisConfig     `yaml:"redis"`
	Sentiment SentimentConfig `yaml:"sentiment"`
}

// SpotifyConfig holds the OAuth client and catalog settings.
type SpotifyConfig struct {
	ClientID     string `yaml:"client_id"`
	ClientSecret string `yaml:"client_secret"`
	RedirectURI  string `yaml:"redirect_uri"`
	Market       string `yaml:"market"`
}

// SessionConfig selects the session backend and the JWT signing secret.
type SessionConfig struct {
	Store  string `yaml:"store"`
	Secret string `yaml:"secret"`
}

// RedisConfig is used when Session.Store is redis.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// SentimentConfig configures the remote classifier. An empty APIKey disables
// it and every score comes from the word lists.
type SentimentConfig struct {
	APIKey   string        `yaml:"api_key"`
	ModelURL string        `yaml:"model_url"`
	Timeout  time.Duration `yaml:"timeout"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Environment: "development",
		HTTPAddr:    "127.0.0.1:5000",
		ClientURL:   "http://localhost:3000",
		Spotify: SpotifyConfig{
			RedirectURI: "http://127.0.0.1:5000/callback",
			Market:      "PH",
		},
		Session: SessionConfig{
			Store: SessionStoreMemory,
		},
		Redis: RedisConfig{
			Addr: "localhost:6379",
		},
		Sentiment: SentimentConfig{
			Timeout: 5 * time.Second,
		},
	}
}

// Load builds a Config from defaults, the YAML file at path (skipped when
// path is empty) and the environment.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	cfg.applyEnv()
	cfg.Session.Store = strings.ToLower(cfg.Session.Store)

	if cfg.Session.Secret == "" && cfg.IsDevelopment() {
		cfg.Session.Secret = devSessionSecret
	}

	return cfg, nil
}

func (c *Config) applyEnv() {
	c.Environment = getEnv("MOODIFY_ENV", c.Environment)
	c.HTTPAddr = getEnv("MOODIFY_HTTP_ADDR", c.HTTPAddr)
	c.ClientURL = getEnv("CLIENT_URL", c.ClientURL)
	c.DatabaseURL = getEnv("DATABASE_URL", c.DatabaseURL)

	c.Spotify.ClientID = getEnvAny([]string{"SPOTIFY_ID", "SPOTIFY_CLIENT_ID"}, c.Spotify.ClientID)
	c.Spotify.ClientSecret = getEnvAny([]string{"SPOTIFY_SECRET", "SPOTIFY_CLIENT_SECRET"}, c.Spotify.ClientSecret)
	c.Spotify.RedirectURI = getEnv("SPOTIFY_REDIRECT_URI", c.Spotify.RedirectURI)
	c.Spotify.Market = getEnv("SPOTIFY_MARKET", c.Spotify.Market)

	c.Session.Store = getEnv("SESSION_STORE", c.Session.Store)
	c.Session.Secret = getEnv("SESSION_SECRET", c.Session.Secret)

	c.Redis.Addr = getEnv("REDIS_ADDR", c.Redis.Addr)
	c.Redis.Password = getEnv("REDIS_PASSWORD", c.Redis.Password)
	c.Redis.DB = getEnvInt("REDIS_DB", c.Redis.DB)

	c.Sentiment.APIKey = getEnv("HUGGINGFACE_API_KEY", c.Sentiment.APIKey)
	c.Sentiment.ModelURL = getEnv("HUGGINGFACE_MODEL_URL", c.Sentiment.ModelURL)
	c.Sentiment.Timeout = getEnvDuration("SENTIMENT_TIMEOUT", c.Sentiment.Timeout)
}

// IsDevelopment reports whether the process runs in development mode.
func (c *Config) IsDevelopment() bool {
	return strings.EqualFold(c.Environment, "development")
}

// Validate checks the settings the HTTP server needs.
func (c *Config) Validate() error {
	if c.Spotify.ClientID == "" || c.Spotify.ClientSecret == "" {
		return ErrMissingCredentials
	}
	if c.Session.Secret == "" {
		return ErrMissingSecret
	}

	switch c.Session.Store {
	case SessionStoreMemory:
	case SessionStorePostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for the %s session store", c.Session.Store)
		}
	case SessionStoreRedis:
		if c.Redis.Addr == "" {
			return fmt.Errorf("REDIS_ADDR is required for the %s session store", c.Session.Store)
		}
	default:
		return fmt.Errorf("unsupported session store %q", c.Session.Store)
	}

	if c.Sentiment.Timeout <= 0 {
		return fmt.Errorf("sentiment timeout must be positive, got %s", c.Sentiment.Timeout)
	}
	return nil
}

func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

// getEnvAny returns the first non-empty environment variable value from keys, or def if none set.
func getEnvAny(keys []string, def string) string {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return def
}

func getEnvInt(key string, def int) int {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return def
}

// getEnvDuration accepts Go durations ("3s") or a bare number of milliseconds.
func getEnvDuration(key string, def time.Duration) time.Duration {
	val := os.Getenv(key)
	if val == "" {
		return def
	}
	if d, err := time.ParseDuration(val); err == nil {
		return d
	}
	if ms, err := strconv.Atoi(val); err == nil {
		return time.Duration(ms) * time.Millisecond
	}
	return def
}

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Cookbook backends
const (
	CookbookRedis    = "redis"
	CookbookDatabase = "database"
	CookbookMemory   = "memory"
)

// Config holds all configuration for the application
type Config struct {
	Environment Environment

	// Server configuration
	ServerPort string
	ServerHost string
	LogLevel   string
	LogFormat  string

	// Chat-completion API
	LLMAPIKey  string
	LLMAPIURL  string
	LLMModel   string
	LLMTimeout time.Duration

	// Cookbook storage
	CookbookStore string
	CookbookKey   string

	// Database configuration
	DBDriver   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string
	SQLitePath string

	// Redis configuration
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int
	RedisURL      string

	// Static bearer token for the JSON API. Empty disables the check.
	APIToken string

	CORSAllowedOrigins []string
	RateLimitPerHour   int

	// Export storage
	S3BucketName string
	AWSRegion    string
	ExportURLTTL time.Duration
}

// LoadConfig creates a new Config instance with values from environment variables or secrets
func LoadConfig() (*Config, error) {
	cfg := load()
	if err := ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// LoadDatabaseConfig loads the configuration and only validates the database settings
func LoadDatabaseConfig() (*Config, error) {
	cfg := load()
	if errs := validateDatabase(cfg); len(errs) > 0 {
		return nil, fmt.Errorf("configuration validation failed: %w", ValidationErrors(errs))
	}
	return cfg, nil
}

func load() *Config {
	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)

	cfg := &Config{
		Environment:   GetEnvironment(),
		ServerPort:    v.GetString("server_port"),
		ServerHost:    v.GetString("server_host"),
		LogLevel:      v.GetString("log_level"),
		LogFormat:     v.GetString("log_format"),
		LLMAPIURL:     v.GetString("llm_api_url"),
		LLMModel:      v.GetString("llm_model"),
		LLMTimeout:    v.GetDuration("llm_timeout"),
		CookbookStore: strings.ToLower(v.GetString("cookbook_store")),
		CookbookKey:   v.GetString("cookbook_key"),
		DBDriver:      strings.ToLower(v.GetString("db_driver")),
		DBHost:        v.GetString("db_host"),
		DBPort:        v.GetString("db_port"),
		DBUser:        v.GetString("db_user"),
		DBName:        v.GetString("db_name"),
		DBSSLMode:     v.GetString("db_ssl_mode"),
		SQLitePath:    v.GetString("sqlite_path"),
		RedisHost:     v.GetString("redis_host"),
		RedisPort:     v.GetString("redis_port"),
		RedisDB:       v.GetInt("redis_db"),
		RedisURL:      v.GetString("redis_url"),
		S3BucketName:  v.GetString("s3_bucket_name"),
		AWSRegion:     v.GetString("aws_region"),
		ExportURLTTL:  v.GetDuration("export_url_ttl"),

		RateLimitPerHour:   v.GetInt("rate_limit_per_hour"),
		CORSAllowedOrigins: splitList(v.GetString("cors_allowed_origins")),
	}

	// Sensitive values: environment first, then Docker secrets
	cfg.LLMAPIKey = envOrSecret(v, "llm_api_key")
	cfg.APIToken = envOrSecret(v, "api_token")
	cfg.DBPassword = envOrSecret(v, "db_password")
	cfg.RedisPassword = envOrSecret(v, "redis_password")

	if cfg.LLMAPIKey == "" {
		// Fallback to the usual OpenAI variable
		cfg.LLMAPIKey = v.GetString("openai_api_key")
	}

	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server_port", "8080")
	v.SetDefault("server_host", "0.0.0.0")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "")
	v.SetDefault("llm_api_url", "https://api.openai.com/v1/chat/completions")
	v.SetDefault("llm_model", "gpt-3.5-turbo")
	v.SetDefault("llm_timeout", "60s")
	v.SetDefault("cookbook_store", CookbookRedis)
	v.SetDefault("cookbook_key", "cookbook")
	v.SetDefault("db_driver", "sqlite")
	v.SetDefault("db_host", "localhost")
	v.SetDefault("db_port", "5432")
	v.SetDefault("db_user", "postgres")
	v.SetDefault("db_name", "recipe_remix")
	v.SetDefault("db_ssl_mode", "disable")
	v.SetDefault("sqlite_path", "recipe_remix.db")
	v.SetDefault("redis_host", "localhost")
	v.SetDefault("redis_port", "6379")
	v.SetDefault("redis_db", 0)
	v.SetDefault("cors_allowed_origins", "http://localhost:5173")
	v.SetDefault("rate_limit_per_hour", 30)
	v.SetDefault("export_url_ttl", "15m")
}

// Address returns the host:port the HTTP server listens on
func (c *Config) Address() string {
	return c.ServerHost + ":" + c.ServerPort
}

// PostgresDSN builds the connection string for the postgres driver
func (c *Config) PostgresDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode,
	)
}

// NeedsRedis reports whether any configured component talks to Redis
func (c *Config) NeedsRedis() bool {
	return c.CookbookStore == CookbookRedis || c.RateLimitPerHour > 0
}

func envOrSecret(v *viper.Viper, name string) string {
	if value := v.GetString(name); value != "" {
		return value
	}
	return readSecret(name)
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// readSecret reads a Docker secret from the secrets directory
func readSecret(name string) string {
	secretsDir := os.Getenv("SECRETS_DIR")
	if secretsDir == "" {
		secretsDir = "/run/secrets"
	}
	secretPath := filepath.Join(secretsDir, name)
	if data, err := os.ReadFile(secretPath); err == nil {
		return strings.TrimSpace(string(data))
	}
	return ""
}

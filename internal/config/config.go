package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	// Database
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// JWT
	JWTSecret          string
	JWTAccessExpiry    time.Duration
	RefreshTokenSecret string
	JWTRefreshExpiry   time.Duration

	// Credential encryption
	EncryptionKey string

	// Anthropic (PR summarization)
	AnthropicAPIKey    string
	AnthropicAPIURL    string
	AnthropicModel     string
	AnthropicMaxTokens int
	AITimeout          time.Duration

	// GitHub
	GitHubAPIURL  string
	GitHubTimeout time.Duration

	// Work journal
	JournalOrigin  string
	JournalTimeout time.Duration

	// Server
	Port        string
	CORSOrigins string

	// Development fixture: accept any @example.com login
	DemoLoginEnabled bool
}

func Load() *Config {
	return &Config{
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBName:     getEnv("DB_NAME", "gitjournal_db"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		JWTSecret:          getEnv("JWT_SECRET", ""),
		JWTAccessExpiry:    parseDuration(getEnv("JWT_ACCESS_EXPIRY", "15m"), 15*time.Minute),
		RefreshTokenSecret: getEnv("REFRESH_TOKEN_SECRET", getEnv("JWT_SECRET", "")),
		JWTRefreshExpiry:   parseDuration(getEnv("JWT_REFRESH_EXPIRY", "168h"), 168*time.Hour),

		EncryptionKey: getEnv("ENCRYPTION_KEY", ""),

		AnthropicAPIKey:    getEnv("ANTHROPIC_API_KEY", ""),
		AnthropicAPIURL:    getEnv("ANTHROPIC_API_URL", "https://api.anthropic.com"),
		AnthropicModel:     getEnv("ANTHROPIC_MODEL_NAME", "claude-3-opus-20240229"),
		AnthropicMaxTokens: parseInt(getEnv("ANTHROPIC_MAX_TOKENS", "1000"), 1000),
		AITimeout:          parseDuration(getEnv("AI_TIMEOUT", "60s"), 60*time.Second),

		GitHubAPIURL:  getEnv("GITHUB_API_URL", "https://api.github.com"),
		GitHubTimeout: parseDuration(getEnv("GITHUB_TIMEOUT", "30s"), 30*time.Second),

		JournalOrigin:  getEnv("JOURNAL_ORIGIN", "http://localhost:3002"),
		JournalTimeout: parseDuration(getEnv("JOURNAL_TIMEOUT", "30s"), 30*time.Second),

		Port:        getEnv("PORT", "8080"),
		CORSOrigins: getEnv("CORS_ORIGINS", "*"),

		DemoLoginEnabled: getEnv("DEMO_LOGIN_ENABLED", "true") == "true",
	}
}

func (c *Config) DSN() string {
	return "host=" + c.DBHost +
		" user=" + c.DBUser +
		" password=" + c.DBPassword +
		" dbname=" + c.DBName +
		" port=" + c.DBPort +
		" sslmode=" + c.DBSSLMode +
		" TimeZone=UTC"
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return fallback
	}
	return d
}

func parseInt(s string, fallback int) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return fallback
	}
	return n
}

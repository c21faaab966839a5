// internal/config/config.go
package config

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DatabaseMongo  = "mongo"
	DatabaseBadger = "badger"
)

// ServerConfig holds all server-related settings
type ServerConfig struct {
	Port           int
	Host           string
	MetricsEnabled bool
	RequestTimeout time.Duration
	PageSize       int
}

// DatabaseConfig holds database configuration settings
type DatabaseConfig struct {
	Type       string // "mongo" or "badger"
	URI        string
	Name       string
	BadgerPath string // empty means in-memory
}

// AuthConfig holds token and account settings
type AuthConfig struct {
	JWTSecret   string
	TokenTTL    time.Duration
	AdminEmails []string
}

// Config holds the complete application configuration
type Config struct {
	Server         *ServerConfig
	Database       *DatabaseConfig
	Auth           *AuthConfig
	AllowedOrigins []string
	Debug          bool
	LogLevel       string
}

// DefaultConfig provides default server settings
func DefaultConfig() *ServerConfig {
	return &ServerConfig{
		Port:           5000,
		Host:           "0.0.0.0",
		MetricsEnabled: true,
		RequestTimeout: 5 * time.Second,
		PageSize:       8,
	}
}

// DefaultDatabaseConfig provides default database settings
func DefaultDatabaseConfig() *DatabaseConfig {
	return &DatabaseConfig{
		Type: DatabaseMongo,
		URI:  "mongodb://127.0.0.1:27017",
		Name: "memories",
	}
}

// DefaultAuthConfig provides default token settings. There is deliberately no
// default secret.
func DefaultAuthConfig() *AuthConfig {
	return &AuthConfig{
		TokenTTL: 24 * time.Hour,
	}
}

// LoadConfig loads configuration from environment variables and applies defaults
func LoadConfig() (*Config, error) {
	// Try to load .env file from multiple possible locations
	envLocations := []string{
		".env",       // Current directory
		"../../.env", // Project root when running from cmd/server
	}
	for _, location := range envLocations {
		if err := godotenv.Load(location); err == nil {
			break
		}
	}

	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from a lookup function so tests can supply their
// own environment.
func FromEnv(getenv func(string) string) (*Config, error) {
	serverConfig := DefaultConfig()

	if portStr := getenv("PORT"); portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil || port <= 0 || port > 65535 {
			return nil, fmt.Errorf("invalid PORT %q", portStr)
		}
		serverConfig.Port = port
	}

	if host := getenv("HOST"); host != "" {
		serverConfig.Host = host
	}

	if metricsEnabled := getenv("METRICS_ENABLED"); metricsEnabled != "" {
		serverConfig.MetricsEnabled = metricsEnabled == "true"
	}

	if timeout := getenv("REQUEST_TIMEOUT"); timeout != "" {
		d, err := time.ParseDuration(timeout)
		if err != nil || d <= 0 {
			return nil, fmt.Errorf("invalid REQUEST_TIMEOUT %q", timeout)
		}
		serverConfig.RequestTimeout = d
	}

	if size := getenv("POSTS_PAGE_SIZE"); size != "" {
		n, err := strconv.Atoi(size)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("invalid POSTS_PAGE_SIZE %q", size)
		}
		serverConfig.PageSize = n
	}

	dbConfig := DefaultDatabaseConfig()
	if dbType := getenv("DB_TYPE"); dbType != "" {
		dbConfig.Type = strings.ToLower(dbType)
	}

	switch dbConfig.Type {
	case DatabaseMongo:
		if uri := getenv("MONGODB_URI"); uri != "" {
			dbConfig.URI = uri
		}
		dbConfig.Name = getEnvOrDefault(getenv, "DB_NAME", dbConfig.Name)
	case DatabaseBadger:
		dbConfig.BadgerPath = getenv("BADGER_PATH")
	default:
		return nil, fmt.Errorf("unsupported DB_TYPE %q (want %q or %q)", dbConfig.Type, DatabaseMongo, DatabaseBadger)
	}

	config := &Config{
		Server:         serverConfig,
		Database:       dbConfig,
		Auth:           DefaultAuthConfig(),
		AllowedOrigins: []string{"*"}, // Default to allow all origins
		Debug:          getenv("DEBUG") == "true",
		LogLevel:       getEnvOrDefault(getenv, "LOG_LEVEL", "info"),
	}

	if origins := getenv("ALLOWED_ORIGINS"); origins != "" {
		config.AllowedOrigins = splitList(origins)
	}

	if ttl := getenv("TOKEN_TTL"); ttl != "" {
		d, err := time.ParseDuration(ttl)
		if err != nil || d <= 0 {
			return nil, fmt.Errorf("invalid TOKEN_TTL %q", ttl)
		}
		config.Auth.TokenTTL = d
	}

	for _, email := range splitList(getenv("ADMIN_EMAILS")) {
		config.Auth.AdminEmails = append(config.Auth.AdminEmails, strings.ToLower(email))
	}

	config.Auth.JWTSecret = getenv("JWT_SECRET")
	if config.Auth.JWTSecret == "" {
		if !config.Debug {
			return nil, fmt.Errorf("JWT_SECRET environment variable is required")
		}
		secret, err := randomSecret()
		if err != nil {
			return nil, fmt.Errorf("failed to generate development secret: %w", err)
		}
		log.Printf("Warning: JWT_SECRET not set, using a random secret for this process; tokens will not survive a restart")
		config.Auth.JWTSecret = secret
	}

	return config, nil
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// IsAdminEmail reports whether a registering email is bootstrapped as admin.
func (c *AuthConfig) IsAdminEmail(email string) bool {
	email = strings.ToLower(strings.TrimSpace(email))
	for _, admin := range c.AdminEmails {
		if admin == email {
			return true
		}
	}
	return false
}

// Helper function to get environment variable with default fallback
func getEnvOrDefault(getenv func(string) string, key, defaultValue string) string {
	if value := getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func randomSecret() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

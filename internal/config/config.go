package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all configuration for the application
type Config struct {
	// Server configuration
	Server ServerConfig

	// Database configuration
	Database DatabaseConfig

	// OMDb metadata service configuration
	OMDb OMDbConfig

	// Media storage configuration
	Storage StorageConfig
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	HTTPPort       int
	Environment    string
	LogLevel       string
	ShutdownTime   time.Duration
	AllowedOrigins []string
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Driver       string // sqlite or postgres
	Path         string // sqlite file path
	Host         string
	Port         int
	User         string
	Password     string
	Database     string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
	MaxLifetime  time.Duration
}

// OMDbConfig holds external metadata service configuration
type OMDbConfig struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// StorageConfig holds media storage configuration
type StorageConfig struct {
	Type      string // local or s3
	LocalPath string
	BaseURL   string // public URL prefix for locally stored files
	S3        S3Config
}

// S3Config holds S3 configuration
type S3Config struct {
	Bucket string
	Prefix string
	Region string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			HTTPPort:       getEnvAsInt("HTTP_PORT", 8080),
			Environment:    getEnv("ENVIRONMENT", "development"),
			LogLevel:       getEnv("LOG_LEVEL", "info"),
			ShutdownTime:   getEnvAsDuration("SHUTDOWN_TIMEOUT", 30*time.Second),
			AllowedOrigins: []string{getEnv("CORS_ALLOWED_ORIGIN", "http://localhost:4200")},
		},
		Database: DatabaseConfig{
			Driver:       getEnv("DB_DRIVER", "sqlite"),
			Path:         getEnv("DB_PATH", "data/moviweb.db"),
			Host:         getEnv("DB_HOST", "localhost"),
			Port:         getEnvAsInt("DB_PORT", 5432),
			User:         getEnv("DB_USER", "moviweb"),
			Password:     getEnv("DB_PASSWORD", "moviweb"),
			Database:     getEnv("DB_NAME", "moviweb"),
			SSLMode:      getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns: getEnvAsInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns: getEnvAsInt("DB_MAX_IDLE_CONNS", 5),
			MaxLifetime:  getEnvAsDuration("DB_MAX_LIFETIME", 5*time.Minute),
		},
		OMDb: OMDbConfig{
			BaseURL: getEnv("OMDB_BASE_URL", "http://www.omdbapi.com/"),
			APIKey:  getEnv("OMDB_API_KEY", ""),
			Timeout: getEnvAsDuration("OMDB_TIMEOUT", 10*time.Second),
		},
		Storage: StorageConfig{
			Type:      getEnv("STORAGE_TYPE", "local"),
			LocalPath: getEnv("STORAGE_LOCAL_PATH", "data/media"),
			BaseURL:   getEnv("STORAGE_BASE_URL", "http://localhost:8080/media"),
			S3: S3Config{
				Bucket: getEnv("S3_BUCKET", "moviweb-media"),
				Prefix: getEnv("S3_PREFIX", "uploads"),
				Region: getEnv("S3_REGION", "us-east-1"),
			},
		},
	}

	return cfg, nil
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	strValue := getEnv(key, "")
	if strValue == "" {
		return defaultValue
	}
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if strValue == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(strValue); err == nil {
		return value
	}
	return defaultValue
}

// DSN returns the postgres connection string
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Database, d.SSLMode)
}

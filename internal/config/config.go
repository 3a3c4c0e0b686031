package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	DB       DBConfig
	Server   ServerConfig
	Geocoder GeocoderConfig
	Seeder   SeederConfig
}

// DBType represents database type
type DBType string

const (
	DBTypePostgreSQL DBType = "postgres"
	DBTypeMemory     DBType = "memory"
)

// DBConfig holds database configuration
type DBConfig struct {
	Type     DBType
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port        string
	CORSOrigins []string
}

// GeocoderConfig holds settings for the reverse-geocoding client
type GeocoderConfig struct {
	Endpoint          string
	Timeout           time.Duration
	CacheTTL          time.Duration
	RequestsPerSecond float64
}

// SeederConfig holds settings for importing a cities export
type SeederConfig struct {
	ExportPath string
}

// DSN returns the database connection string
func (c DBConfig) DSN() string {
	if c.Type == DBTypeMemory {
		// SQLite in-memory database
		if c.Name != "" && c.Name != "citymark" {
			return fmt.Sprintf("file:%s?mode=memory&cache=shared", c.Name)
		}
		return "file::memory:?cache=shared"
	}
	// PostgreSQL connection string
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Name, c.SSLMode,
	)
}

// IsMemory returns true if using in-memory database
func (c DBConfig) IsMemory() bool {
	return c.Type == DBTypeMemory
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	_ = godotenv.Load()

	dbType := DBType(getEnv("DB_TYPE", "memory"))
	if dbType != DBTypePostgreSQL && dbType != DBTypeMemory {
		dbType = DBTypeMemory
	}

	config := &Config{
		DB: DBConfig{
			Type:     dbType,
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "citymark"),
			Password: getEnv("DB_PASSWORD", "citymark_password"),
			Name:     getEnv("DB_NAME", "citymark"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Server: ServerConfig{
			Port:        getEnv("APP_PORT", "8080"),
			CORSOrigins: getEnvAsSlice("CORS_ORIGINS"),
		},
		Geocoder: GeocoderConfig{
			Endpoint:          getEnv("GEOCODER_ENDPOINT", "https://api.bigdatacloud.net/data/reverse-geocode-client"),
			Timeout:           time.Duration(getEnvAsInt("GEOCODER_TIMEOUT_SECONDS", 10)) * time.Second,
			CacheTTL:          time.Duration(getEnvAsInt("GEOCODER_CACHE_TTL_SECONDS", 3600)) * time.Second,
			RequestsPerSecond: getEnvAsFloat("GEOCODER_RPS", 1.0),
		},
		Seeder: SeederConfig{
			ExportPath: getEnv("SEEDER_EXPORT_PATH", "data/cities.json"),
		},
	}

	return config, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvAsSlice(key string) []string {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	var result []string
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

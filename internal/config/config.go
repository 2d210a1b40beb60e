package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	ServerPort string
	BaseURL    string

	DatabaseType         string
	DatabasePath         string
	DatabaseURL          string
	DatabaseMaxOpenConns int
	MigrationsPath       string

	CookieKey       string
	CookieMaxAge    time.Duration
	SessionsEnabled bool
	SessionSecret   string

	AdminUser         string
	AdminPassword     string
	AdminPasswordHash string

	FourByFourPuzzles []string
	AnagramPuzzles    []string
	SuccessThreshold  float64

	RegistrationRate   int
	RegistrationWindow time.Duration

	BackupS3Bucket    string
	BackupS3Region    string
	BackupS3Endpoint  string
	BackupS3Prefix    string
	BackupS3PathStyle bool
}

// Load reads configuration from environment variables with sensible defaults.
// A .env file in the working directory is applied first if present.
func Load() *Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Warning: failed to read .env file: %v", err)
	}

	return &Config{
		ServerPort:           getEnv("PORT", "8000"),
		BaseURL:              getEnv("BASE_URL", "http://localhost:8000"),
		DatabaseType:         getEnv("DB_TYPE", "sqlite"),
		DatabasePath:         getEnv("DB_PATH", "./scavenger_hunt.db"),
		DatabaseURL:          getEnv("DATABASE_URL", ""),
		DatabaseMaxOpenConns: getEnvInt("DB_MAX_OPEN_CONNS", 25),
		MigrationsPath:       getEnv("MIGRATIONS_PATH", ""),
		CookieKey:            getEnv("COOKIE_KEY", "SYNOD_SESSION"),
		CookieMaxAge:         time.Duration(getEnvInt("COOKIE_MAX_AGE", 86400)) * time.Second, // 24 hours
		SessionsEnabled:      getEnvBool("SESSIONS_ENABLED", true),
		SessionSecret:        getEnv("SESSION_SECRET", "change-me"),
		AdminUser:            getEnv("ADMIN_USER", "admin"),
		AdminPassword:        getEnv("ADMIN_PASSWORD", ""),
		AdminPasswordHash:    getEnv("ADMIN_PASSWORD_HASH", ""),
		FourByFourPuzzles:    getEnvList("FOURBYFOUR_PUZZLES", []string{"fourbyfour"}),
		AnagramPuzzles:       getEnvList("ANAGRAM_PUZZLES", []string{"shuffleanagram-crumpets", "shuffleanagram-probations", "shuffleanagram-reboots", "shuffleanagram-toerags"}),
		SuccessThreshold:     getEnvFloat("SUCCESS_THRESHOLD", 0.5),
		RegistrationRate:     getEnvInt("REGISTRATION_RATE", 10),
		RegistrationWindow:   time.Minute,
		BackupS3Bucket:       getEnv("BACKUP_S3_BUCKET", ""),
		BackupS3Region:       getEnv("BACKUP_S3_REGION", "us-east-1"),
		BackupS3Endpoint:     getEnv("BACKUP_S3_ENDPOINT", ""),
		BackupS3Prefix:       getEnv("BACKUP_S3_PREFIX", "backups/"),
		BackupS3PathStyle:    getEnvBool("BACKUP_S3_PATH_STYLE", false),
	}
}

// getEnv reads an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("Warning: invalid %s=%q, using %d", key, value, defaultValue)
		return defaultValue
	}
	return n
}

func getEnvFloat(key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		log.Printf("Warning: invalid %s=%q, using %v", key, value, defaultValue)
		return defaultValue
	}
	return f
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		log.Printf("Warning: invalid %s=%q, using %v", key, value, defaultValue)
		return defaultValue
	}
	return b
}

// getEnvList reads a comma separated list
func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

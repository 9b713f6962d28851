package config

import (
	"fmt"     // For DSN formatting
	"os"      // For environment variables
	"strconv" // For string to int conversion
	"strings" // For list splitting
	"time"    // For token and cache lifetimes

	"github.com/joho/godotenv" // For loading .env files
)

// Default values used when an option is not set
const (
	DefaultAppPort              = "8000"
	DefaultDBDriver             = "mysql"
	DefaultAccessTokenLifetime  = 600 * time.Minute
	DefaultRefreshTokenLifetime = 24 * time.Hour
	DefaultCacheTTL             = 15 * time.Minute
	DefaultEmailQueue           = "crowdfunding:emails"
	DefaultMockData             = "./mock_data.json"
)

// Config holds the application configuration
type Config struct {
	AppPort              string        // Application port
	DBDriver             string        // Database driver: mysql or postgres
	DBUser               string        // Database user
	DBPassword           string        // Database password
	DBHost               string        // Database host
	DBPort               string        // Database port
	DBName               string        // Database name
	JWTSecret            string        // JWT secret key
	AccessTokenLifetime  time.Duration // Access token lifetime
	RefreshTokenLifetime time.Duration // Refresh token lifetime
	RedisAddr            string        // Redis server address
	RedisPass            string        // Redis password
	RedisDB              int           // Redis database number
	CacheTTL             time.Duration // Read cache time-to-live
	EmailQueue           string        // Redis list used as the email job queue
	MailAPIURL           string        // HTTP mail API endpoint
	MailAPIKey           string        // HTTP mail API key
	FromEmail            string        // Sender address for outbound mail
	MailjetPublicKey     string        // Mailjet public API key
	MailjetPrivateKey    string        // Mailjet private API key
	AllowedHosts         []string      // Accepted Host header values, "*" allows all
	CORSOrigins          []string      // CORS origin allow-list
	Debug                bool          // Debug mode
	MockDataPath         string        // Path of the mock data file used by cmd/seed
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	_ = godotenv.Load() // Load .env file if present
	redisDB, _ := strconv.Atoi(os.Getenv("REDIS_DB"))
	return &Config{
		AppPort:              getEnv("APP_PORT", DefaultAppPort),
		DBDriver:             strings.ToLower(getEnv("DB_DRIVER", DefaultDBDriver)),
		DBUser:               os.Getenv("DB_USER"),
		DBPassword:           os.Getenv("DB_PASSWORD"),
		DBHost:               os.Getenv("DB_HOST"),
		DBPort:               os.Getenv("DB_PORT"),
		DBName:               os.Getenv("DB_NAME"),
		JWTSecret:            os.Getenv("JWT_SECRET"),
		AccessTokenLifetime:  getDuration("ACCESS_TOKEN_LIFETIME", DefaultAccessTokenLifetime),
		RefreshTokenLifetime: getDuration("REFRESH_TOKEN_LIFETIME", DefaultRefreshTokenLifetime),
		RedisAddr:            os.Getenv("REDIS_ADDR"),
		RedisPass:            os.Getenv("REDIS_PASS"),
		RedisDB:              redisDB,
		CacheTTL:             getDuration("CACHE_TTL", DefaultCacheTTL),
		EmailQueue:           getEnv("EMAIL_QUEUE", DefaultEmailQueue),
		MailAPIURL:           os.Getenv("MAIL_API_URL"),
		MailAPIKey:           os.Getenv("MAIL_API_KEY"),
		FromEmail:            os.Getenv("DEFAULT_FROM_EMAIL"),
		MailjetPublicKey:     os.Getenv("MAILJET_PUBLIC_KEY"),
		MailjetPrivateKey:    os.Getenv("MAILJET_PRIVATE_KEY"),
		AllowedHosts:         splitList(getEnv("ALLOWED_HOSTS", "*")),
		CORSOrigins:          splitList(os.Getenv("CORS_ALLOWED_ORIGINS")),
		Debug:                isTrue(os.Getenv("DEBUG")),
		MockDataPath:         getEnv("MOCK_DATA", DefaultMockData),
	}
}

// DSN returns the data source name for the configured driver
func (c *Config) DSN() string {
	if c.DBDriver == "postgres" {
		return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
			c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName)
	}
	return c.DBUser + ":" + c.DBPassword + "@tcp(" + c.DBHost + ":" + c.DBPort + ")/" + c.DBName + "?parseTime=true"
}

// getEnv returns the variable or def when it is unset or empty
func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// getDuration parses a Go duration ("600m", "24h"); invalid values fall back to def
func getDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return def
	}
	return d
}

// splitList splits a space or comma separated list
func splitList(v string) []string {
	return strings.FieldsFunc(v, func(r rune) bool {
		return r == ' ' || r == ','
	})
}

func isTrue(v string) bool {
	b, _ := strconv.ParseBool(v)
	return b
}

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Environment         string
	EncryptionKeyBase64 string
	GoogleClientID      string
	GoogleClientSecret  string
	GeminiAPIKey        string
	BaseURL             string
	GmailAccounts       []string
	CalendarID          string
	PollInterval        time.Duration
	DBHost              string
	DBPort              string
	DBUsername          string
	DBPassword          string
	DBName              string
	DBSSLMode           string
	Port                string
	Timezone            string
}

func NewConfig() (*Config, error) {
	env := os.Getenv("DOPAMINE_ENV")
	if env == "" {
		env = "development"
	}

	if env == "development" {
		if err := godotenv.Load(); err != nil {
			fmt.Println("Warning: .env file not found, using environment variables")
		}
	}

	config := &Config{
		Environment:         env,
		EncryptionKeyBase64: os.Getenv("DOPAMINE_ENCRYPTION_KEY_BASE64"),
		GoogleClientID:      os.Getenv("GOOGLE_CLIENT_ID"),
		GoogleClientSecret:  os.Getenv("GOOGLE_CLIENT_SECRET"),
		GeminiAPIKey:        os.Getenv("GEMINI_API_KEY"),
		BaseURL:             getEnvOrDefault("DOPAMINE_BASE_URL", "http://localhost:8080"),
		GmailAccounts:       splitAccounts(getEnvOrDefault("DOPAMINE_GMAIL_ACCOUNTS", "photography,personal")),
		CalendarID:          getEnvOrDefault("DOPAMINE_CALENDAR_ID", "primary"),
		PollInterval:        getEnvMinutes("DOPAMINE_POLL_INTERVAL_MINUTES", 5*time.Minute),
		DBHost:              os.Getenv("DOPAMINE_DB_HOST"),
		DBPort:              getEnvOrDefault("DOPAMINE_DB_PORT", "5432"),
		DBUsername:          getEnvOrDefault("DOPAMINE_DB_USER", "dopamine"),
		DBPassword:          os.Getenv("DOPAMINE_DB_PASSWORD"),
		DBName:              getEnvOrDefault("DOPAMINE_DB_NAME", "dopamine"),
		DBSSLMode:           getEnvOrDefault("DOPAMINE_DB_SSLMODE", "disable"),
		Port:                getEnvOrDefault("PORT", "8080"),
		Timezone:            getEnvOrDefault("TZ", "UTC"),
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func (c *Config) Validate() error {
	if c.EncryptionKeyBase64 == "" {
		return fmt.Errorf("DOPAMINE_ENCRYPTION_KEY_BASE64 is required")
	}

	if len(c.GmailAccounts) == 0 {
		return fmt.Errorf("DOPAMINE_GMAIL_ACCOUNTS must name at least one account")
	}

	return nil
}

// HasDatabase reports whether a Postgres backend is configured. Without one the
// server runs in local-only mode: every KV read returns nothing and every write
// is a silent no-op.
func (c *Config) HasDatabase() bool {
	return c.DBHost != ""
}

// HasGoogleCredentials reports whether the OAuth client credentials are set.
func (c *Config) HasGoogleCredentials() bool {
	return c.GoogleClientID != "" && c.GoogleClientSecret != ""
}

func (c *Config) GetDatabaseURL() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.DBUsername,
		c.DBPassword,
		c.DBHost,
		c.DBPort,
		c.DBName,
		c.DBSSLMode,
	)
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvMinutes(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	minutes, err := strconv.Atoi(value)
	if err != nil || minutes <= 0 {
		return defaultValue
	}
	return time.Duration(minutes) * time.Minute
}

func splitAccounts(value string) []string {
	var accounts []string
	for _, part := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			accounts = append(accounts, trimmed)
		}
	}
	return accounts
}

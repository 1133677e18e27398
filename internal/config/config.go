// Package config provides application configuration.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Store backend selectors.
const (
	StoreJSON   = "json"
	StoreSQLite = "sqlite"
)

// Instruction selector modes.
const (
	SelectorFixed      = "fixed"
	SelectorClassifier = "classifier"
)

// Config holds all application configuration.
type Config struct {
	Port        string
	FrontendURL string

	UserStore string // "json" or "sqlite"
	UsersPath string // JSON store file
	DBPath    string // SQLite store file

	OpenAIAPIKey  string
	OpenAIBaseURL string
	ChatModel     string
	ModelTimeout  time.Duration

	SessionTTL time.Duration

	SpeechEnabled bool
	SpeechModel   string

	InstructionSelector string // "fixed" or "classifier"

	ChatLogEnabled   bool
	ChatLogDir       string
	ChatLogQueueSize int
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		Port:                getEnv("PORT", "8080"),
		FrontendURL:         getEnv("FRONTEND_URL", ""),
		UserStore:           strings.ToLower(getEnv("USER_STORE", StoreJSON)),
		UsersPath:           getEnv("USERS_PATH", "./data/users.json"),
		DBPath:              getEnv("DB_PATH", "./data/lingochat.db"),
		OpenAIAPIKey:        os.Getenv("OPENAI_API_KEY"),
		OpenAIBaseURL:       getEnv("OPENAI_BASE_URL", ""),
		ChatModel:           getEnv("CHAT_MODEL", ""),
		ModelTimeout:        getEnvDuration("MODEL_TIMEOUT", 30*time.Second),
		SessionTTL:          getEnvDuration("SESSION_TTL", 60*time.Minute),
		SpeechEnabled:       getEnvBool("SPEECH_ENABLED", false),
		SpeechModel:         getEnv("SPEECH_MODEL", ""),
		InstructionSelector: strings.ToLower(getEnv("INSTRUCTION_SELECTOR", SelectorFixed)),
		ChatLogEnabled:      getEnvBool("CHAT_LOG_ENABLED", false),
		ChatLogDir:          getEnv("CHAT_LOG_DIR", "./data/chatlogs"),
		ChatLogQueueSize:    getEnvInt("CHAT_LOG_QUEUE_SIZE", 1000),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required configuration fields are set.
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT cannot be empty")
	}
	if c.OpenAIAPIKey == "" {
		return fmt.Errorf("OPENAI_API_KEY is not set")
	}
	switch c.UserStore {
	case StoreJSON:
		if c.UsersPath == "" {
			return fmt.Errorf("USERS_PATH cannot be empty")
		}
	case StoreSQLite:
		if c.DBPath == "" {
			return fmt.Errorf("DB_PATH cannot be empty")
		}
	default:
		return fmt.Errorf("USER_STORE must be %q or %q, got %q", StoreJSON, StoreSQLite, c.UserStore)
	}
	switch c.InstructionSelector {
	case SelectorFixed, SelectorClassifier:
	default:
		return fmt.Errorf("INSTRUCTION_SELECTOR must be %q or %q, got %q",
			SelectorFixed, SelectorClassifier, c.InstructionSelector)
	}
	if c.ModelTimeout <= 0 {
		return fmt.Errorf("MODEL_TIMEOUT must be > 0")
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be > 0")
	}
	if c.ChatLogEnabled && c.ChatLogDir == "" {
		return fmt.Errorf("CHAT_LOG_DIR cannot be empty when chat logging is enabled")
	}
	return nil
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.FrontendURL == "" ||
		strings.Contains(c.FrontendURL, "localhost") ||
		strings.Contains(c.FrontendURL, "127.0.0.1")
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return fallback
	}
}

func getEnvInt(key string, fallback int) int {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	if n, err := strconv.Atoi(strings.TrimSpace(value)); err == nil {
		return n
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	value = strings.TrimSpace(value)
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	// Bare numbers are read as seconds.
	if n, err := strconv.Atoi(value); err == nil {
		return time.Duration(n) * time.Second
	}
	return fallback
}

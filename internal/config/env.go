package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

func init() {
	// Load .env file if it exists (silently ignore if not found)
	_ = godotenv.Load()
}

type Config struct {
	// Generation backends, first configured one wins: Anthropic, Gemini, Ollama
	AnthropicAPIKey   string
	ClaudeModel       string
	ClaudeTemperature float64
	GeminiAPIKey      string
	GeminiModel       string
	OllamaHost        string
	OllamaModel       string
	OllamaEmbedModel  string

	// Google Calendar (optional)
	GoogleCredentialsFile string
	GoogleTokenFile       string
	CalendarID            string

	// Booking email (optional)
	ResendAPIKey      string
	EmailFrom         string
	AgencyNotifyEmail string

	// Telegram bot (optional)
	TelegramAPIID    int
	TelegramAPIHash  string
	TelegramBotToken string
	TelegramDBPath   string

	// Storage
	DBPath         string
	WhatsAppDBPath string
	RedisURL       string
	SessionTTL     int // hours, Redis only
	ManualPath     string

	// Scheduled listing import (optional)
	ImportListingsFile string
	ImportCron         string

	AgencyProfileFile string
	HTTPPort          int
	GenerationTimeout int
	Workers           int
	LogLevel          string
	DevMode           bool
}

func LoadFromEnv() *Config {
	cfg := &Config{
		AnthropicAPIKey:   os.Getenv("ANTHROPIC_API_KEY"),
		ClaudeModel:       getEnvOrDefault("CASA_CLAUDE_MODEL", "claude-sonnet-4-20250514"),
		ClaudeTemperature: getEnvAsFloatOrDefault("CASA_CLAUDE_TEMPERATURE", 0.3),
		GeminiAPIKey:      os.Getenv("GEMINI_API_KEY"),
		GeminiModel:       getEnvOrDefault("CASA_GEMINI_MODEL", "gemini-1.5-flash"),
		OllamaHost:        getEnvOrDefault("OLLAMA_HOST", "http://localhost:11434"),
		OllamaModel:       getEnvOrDefault("CASA_OLLAMA_MODEL", "llama3.2"),
		OllamaEmbedModel:  getEnvOrDefault("CASA_OLLAMA_EMBED_MODEL", "nomic-embed-text"),

		GoogleCredentialsFile: getEnvOrDefault("GOOGLE_CREDENTIALS_FILE", "./credentials.json"),
		GoogleTokenFile:       getEnvOrDefault("GOOGLE_TOKEN_FILE", "./token.json"),
		CalendarID:            getEnvOrDefault("CASA_CALENDAR_ID", "primary"),

		ResendAPIKey:      os.Getenv("RESEND_API_KEY"),
		EmailFrom:         getEnvOrDefault("CASA_EMAIL_FROM", "Inmobiliaria <bot@resend.dev>"),
		AgencyNotifyEmail: os.Getenv("AGENCY_NOTIFY_EMAIL"),

		TelegramAPIID:    getEnvAsIntOrDefault("CASA_TELEGRAM_API_ID", 0),
		TelegramAPIHash:  os.Getenv("CASA_TELEGRAM_API_HASH"),
		TelegramBotToken: os.Getenv("CASA_TELEGRAM_BOT_TOKEN"),
		TelegramDBPath:   getEnvOrDefault("CASA_TELEGRAM_SESSION", "./telegram_session.json"),

		DBPath:         getEnvOrDefault("CASA_DB_PATH", "./inmobiliaria.db"),
		WhatsAppDBPath: getEnvOrDefault("CASA_WHATSAPP_DB_PATH", "./whatsapp.db"),
		RedisURL:       os.Getenv("REDIS_URL"),
		SessionTTL:     getEnvAsIntOrDefault("CASA_SESSION_TTL_HOURS", 24),
		ManualPath:     os.Getenv("CASA_MANUAL_PATH"),

		ImportListingsFile: os.Getenv("IMPORT_LISTINGS_FILE"),
		ImportCron:         os.Getenv("IMPORT_CRON"),

		AgencyProfileFile: os.Getenv("AGENCY_PROFILE_FILE"),
		HTTPPort:          getEnvAsIntOrDefault("CASA_HTTP_PORT", 8080),
		GenerationTimeout: getEnvAsIntOrDefault("CASA_GENERATION_TIMEOUT_SECONDS", 60),
		Workers:           getEnvAsIntOrDefault("CASA_WORKERS", 4),
		LogLevel:          getEnvOrDefault("LOG_LEVEL", "info"),
		DevMode:           getEnvAsBoolOrDefault("CASA_DEV_MODE", false),
	}

	return cfg
}

// TelegramEnabled reports whether all Telegram bot settings are present.
func (c *Config) TelegramEnabled() bool {
	return c.TelegramAPIID != 0 && c.TelegramAPIHash != "" && c.TelegramBotToken != ""
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

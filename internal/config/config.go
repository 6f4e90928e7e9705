package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Text backends understood by PACK_TEXT_BACKEND.
const (
	BackendGemini = "gemini"
	BackendGroq   = "groq"
	BackendOpenAI = "openai"
)

// Config holds the configuration for the application.
type Config struct {
	GeminiAPIKey    string
	GoogleModelName string

	GroqAPIKey string
	GroqModel  string

	OpenAIAPIKey  string
	OpenAIBaseURL string
	OpenAIModel   string

	// TextBackend selects the plain generator used for lists and distribution.
	TextBackend string

	EnrichEnabled  bool
	EnrichAttempts int

	DatabasePath string
	LogMode      string

	// Telegram Config
	TelegramBotToken       string
	TelegramWebhookURL     string
	TelegramAllowedUserIDs []int64
	AdminTelegramID        int64
	Port                   string
}

// NewFromEnv creates a new Config object from environment variables.
// API keys are optional here; a backend without its key fails when called.
func NewFromEnv() (*Config, error) {
	cfg := &Config{
		GeminiAPIKey:       os.Getenv("GEMINI_API_KEY"),
		GoogleModelName:    getEnv("GOOGLE_MODEL_NAME", "gemini-2.5-flash"),
		GroqAPIKey:         os.Getenv("GROQ_API_KEY"),
		GroqModel:          getEnv("GROQ_MODEL", "llama-3.3-70b-versatile"),
		OpenAIAPIKey:       os.Getenv("OPENAI_API_KEY"),
		OpenAIBaseURL:      getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		OpenAIModel:        getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		TextBackend:        strings.ToLower(getEnv("PACK_TEXT_BACKEND", BackendGemini)),
		DatabasePath:       getEnv("DATABASE_PATH", "data/pack-planner.db"),
		LogMode:            getEnv("LOG_MODE", "dev"),
		TelegramBotToken:   os.Getenv("TELEGRAM_BOT_TOKEN"),
		TelegramWebhookURL: os.Getenv("TELEGRAM_WEBHOOK_URL"),
		Port:               getEnv("PORT", "8080"),
	}

	switch cfg.TextBackend {
	case BackendGemini, BackendGroq, BackendOpenAI:
	default:
		return nil, fmt.Errorf("PACK_TEXT_BACKEND must be one of gemini, groq, openai; got %q", cfg.TextBackend)
	}

	enrich, err := strconv.ParseBool(getEnv("PACK_ENRICH", "true"))
	if err != nil {
		return nil, fmt.Errorf("invalid PACK_ENRICH: %w", err)
	}
	cfg.EnrichEnabled = enrich

	attempts, err := strconv.Atoi(getEnv("PACK_ENRICH_ATTEMPTS", "3"))
	if err != nil {
		return nil, fmt.Errorf("invalid PACK_ENRICH_ATTEMPTS: %w", err)
	}
	if attempts < 1 {
		return nil, fmt.Errorf("PACK_ENRICH_ATTEMPTS must be at least 1, got %d", attempts)
	}
	cfg.EnrichAttempts = attempts

	if raw := os.Getenv("TELEGRAM_ALLOWED_USER_IDS"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			id, err := strconv.ParseInt(part, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("invalid TELEGRAM_ALLOWED_USER_IDS entry %q: %w", part, err)
			}
			cfg.TelegramAllowedUserIDs = append(cfg.TelegramAllowedUserIDs, id)
		}
	}

	if raw := os.Getenv("ADMIN_TELEGRAM_ID"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid ADMIN_TELEGRAM_ID: %w", err)
		}
		cfg.AdminTelegramID = id
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

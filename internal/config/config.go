package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// ErrMissingCredential is returned by Validate when the configured LLM provider
// needs an API key that is not set.
var ErrMissingCredential = errors.New("missing LLM API credential")

type Config struct {
	App     AppConfig
	Keys    APIKeys
	Ai      AIConfig
	Search  SearchConfig
	Session SessionConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string // optional, empty disables event export
	EventTopic         string
	OtelEnabled        bool
}

type APIKeys struct {
	Groq                 string
	HuggingFace          string
	SerpAPI              string
	GoogleAPI            string
	GoogleSearchEngineID string
}

type AIConfig struct {
	LLMProvider     string // "groq", "huggingface" or "ollama"
	LLMModel        string
	LLMBaseURL      string // override for OpenAI-compatible endpoints
	OllamaBaseURL   string
	OllamaKeepAlive string
	Temperature     float64
	MaxTokens       int
	RequestTimeout  time.Duration
}

type SearchConfig struct {
	Timeout     time.Duration
	ResultLimit int
	ScrapeDelay time.Duration
	ScrapePages []string
	InstantURL  string
	DisableLive bool // skip every live provider, canned results only
}

type SessionConfig struct {
	Backend     string // "memory" or "redis"
	RedisURL    string
	TTL         time.Duration
	ContextSize int // number of turns fed back to the LLM
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, using system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "8000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/assistant.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "*"),
			NatsURL:            getEnv("NATS_URL", ""),
			EventTopic:         getEnv("CHAT_EVENT_TOPIC", "CHAT_COMPLETED"),
			OtelEnabled:        getEnvAsBool("OTEL_ENABLED", false),
		},
		Keys: APIKeys{
			Groq:                 getEnv("GROQ_API_KEY", ""),
			HuggingFace:          getEnv("HUGGINGFACE_API_KEY", ""),
			SerpAPI:              getEnv("SERPAPI_KEY", ""),
			GoogleAPI:            getEnv("GOOGLE_API_KEY", ""),
			GoogleSearchEngineID: getEnv("GOOGLE_SEARCH_ENGINE_ID", ""),
		},
		Ai: AIConfig{
			LLMProvider:     getEnv("LLM_PROVIDER", "groq"),
			LLMModel:        getEnv("LLM_MODEL", "llama-3.3-70b-versatile"),
			LLMBaseURL:      getEnv("LLM_BASE_URL", ""),
			OllamaBaseURL:   getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			OllamaKeepAlive: getEnv("OLLAMA_KEEP_ALIVE", ""),
			Temperature:     getEnvAsFloat("LLM_TEMPERATURE", 0.1),
			MaxTokens:       getEnvAsInt("LLM_MAX_TOKENS", 1024),
			RequestTimeout:  getEnvAsDuration("LLM_TIMEOUT", 30*time.Second),
		},
		Search: SearchConfig{
			Timeout:     getEnvAsDuration("SEARCH_TIMEOUT", 30*time.Second),
			ResultLimit: getEnvAsInt("SEARCH_RESULT_LIMIT", 10),
			ScrapeDelay: getEnvAsDuration("SCRAPE_DELAY", time.Second),
			ScrapePages: getEnvAsList("SCRAPE_PAGES", []string{
				"https://www.apple.com/ipad/",
				"https://www.apple.com/ipad/compare/",
				"https://support.apple.com/ipad",
			}),
			InstantURL:  getEnv("INSTANT_ANSWER_URL", "https://api.duckduckgo.com/"),
			DisableLive: getEnvAsBool("SEARCH_OFFLINE", false),
		},
		Session: SessionConfig{
			Backend:     getEnv("SESSION_BACKEND", "memory"),
			RedisURL:    getEnv("REDIS_URL", "redis://localhost:6379"),
			TTL:         getEnvAsDuration("SESSION_TTL", 24*time.Hour),
			ContextSize: getEnvAsInt("SESSION_CONTEXT_TURNS", 6),
		},
	}
}

// Validate reports configuration problems that keep the assistant from
// answering. The server still starts and reports itself unhealthy.
func (c *Config) Validate() error {
	switch c.Ai.LLMProvider {
	case "groq":
		if c.Keys.Groq == "" {
			return fmt.Errorf("%w: GROQ_API_KEY is not set", ErrMissingCredential)
		}
	case "huggingface":
		if c.Keys.HuggingFace == "" {
			return fmt.Errorf("%w: HUGGINGFACE_API_KEY is not set", ErrMissingCredential)
		}
	case "ollama":
	default:
		return fmt.Errorf("unsupported LLM_PROVIDER %q", c.Ai.LLMProvider)
	}

	if c.Session.TTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be positive, got %s", c.Session.TTL)
	}
	return nil
}

// LLMKey returns the credential for the configured provider.
func (c *Config) LLMKey() string {
	switch c.Ai.LLMProvider {
	case "groq":
		return c.Keys.Groq
	case "huggingface":
		return c.Keys.HuggingFace
	}
	return ""
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsFloat(key string, fallback float64) float64 {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseFloat(strValue, 64); err == nil {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseBool(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if value, err := time.ParseDuration(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsList(key string, fallback []string) []string {
	strValue := getEnv(key, "")
	if strValue == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(strValue, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}

package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	GatewayBaseURL    string
	GatewayToken      string
	JournalPath       string
	LogLevel          string
	AudioPlayerCmd    string
	DictVoiceBaseURL  string
	SubmitWorkerCount int
	SubmitQueueSize   int

	// Dev gateway
	Addr       string
	LLMAPIKey  string
	LLMBaseURL string
	LLMModel   string
	QuizSize   int
}

// Load reads configuration from a .env file (if present) and environment
// variables, applying defaults when values are missing or invalid.
func Load() Config {
	// Ignore error so the binaries still start when .env is absent.
	_ = godotenv.Load()

	return Config{
		GatewayBaseURL:    envOr("GATEWAY_BASE_URL", "http://localhost:8000/api"),
		GatewayToken:      envOr("GATEWAY_TOKEN", ""),
		JournalPath:       envOr("JOURNAL_PATH", "file:lingoflash.db"),
		LogLevel:          envOr("LOG_LEVEL", "INFO"),
		AudioPlayerCmd:    envOr("AUDIO_PLAYER_CMD", "mpv"),
		DictVoiceBaseURL:  envOr("DICT_VOICE_BASE_URL", "https://dict.youdao.com/dictvoice"),
		SubmitWorkerCount: envIntOr("SUBMIT_WORKER_COUNT", 2),
		SubmitQueueSize:   envIntOr("SUBMIT_QUEUE_SIZE", 64),

		Addr:       envOr("ADDR", ":8000"),
		LLMAPIKey:  envOr("LLM_API_KEY", ""),
		LLMBaseURL: envOr("LLM_BASE_URL", "https://api.deepseek.com"),
		LLMModel:   envOr("LLM_MODEL", "deepseek-chat"),
		QuizSize:   envIntOr("QUIZ_SIZE", 5),
	}
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envIntOr(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
		log.Printf("invalid value for %s=%q, using default %d", key, v, def)
	}
	return def
}

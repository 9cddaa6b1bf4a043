package app

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

// Config описывает настройки запуска приложения. Все значения
// читаются из окружения, необязательные зависимости (Supabase, Redis,
// Kafka, вендор) остаются пустыми и отключают соответствующий слой.
type Config struct {
	// HTTPAddr — адрес публичного JSON API.
	HTTPAddr string
	// OpsAddr — адрес служебного сервера: метрики и health checks.
	OpsAddr string

	// SupabaseDBURL — DSN живого хранилища. Пустое значение сразу
	// переводит шлюз данных на in-memory fallback.
	SupabaseDBURL string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	KafkaBrokers   string
	AnalyticsTopic string

	VapiAPIKey      string
	VapiAssistantID string

	AssistantName string
	Language      string
	StoreName     string

	AllowedOrigins []string
	ProbeInterval  time.Duration
	LogLevel       string
}

// LoadConfig загружает конфигурацию из .env (если есть) и окружения.
func LoadConfig() Config {
	// .env удобен для локальной разработки, в бою его нет.
	_ = godotenv.Load()

	cfg := Config{
		HTTPAddr:           envOrDefault("VOICEDESK_HTTP_ADDR", ":8080"),
		OpsAddr:            envOrDefault("VOICEDESK_OPS_ADDR", ":9090"),
		SupabaseDBURL:      os.Getenv("SUPABASE_DB_URL"),
		RedisAddr:          os.Getenv("REDIS_ADDR"),
		RedisPassword:      os.Getenv("REDIS_PASSWORD"),
		RedisDB:            envIntOrDefault("REDIS_DB", 0),
		KafkaBrokers:       os.Getenv("KAFKA_BROKERS"),
		AnalyticsTopic:     os.Getenv("VOICEDESK_ANALYTICS_TOPIC"),
		VapiAPIKey:         os.Getenv("VAPI_API_KEY"),
		VapiAssistantID:    os.Getenv("VAPI_ASSISTANT_ID"),
		AssistantName:      envOrDefault("VOICEDESK_ASSISTANT_NAME", "Maria"),
		Language:           envOrDefault("VOICEDESK_LANGUAGE", "el"),
		StoreName:          envOrDefault("VOICEDESK_STORE_NAME", "TechStore Athens"),
		ProbeInterval:      envDurationOrDefault("VOICEDESK_PROBE_INTERVAL", 30*time.Second),
		LogLevel:           envOrDefault("VOICEDESK_LOG_LEVEL", "info"),
	}

	if origins := os.Getenv("VOICEDESK_ALLOWED_ORIGINS"); origins != "" {
		for _, origin := range strings.Split(origins, ",") {
			if trimmed := strings.TrimSpace(origin); trimmed != "" {
				cfg.AllowedOrigins = append(cfg.AllowedOrigins, trimmed)
			}
		}
	}

	return cfg
}

// WarnOnMissing пишет в лог предупреждения о незаполненных
// необязательных параметрах, чтобы деградация не была сюрпризом.
func (c Config) WarnOnMissing(logger *log.Entry) {
	if c.SupabaseDBURL == "" {
		logger.Warn("SUPABASE_DB_URL is not set, serving from in-memory fallback")
	}
	if c.RedisAddr == "" {
		logger.Info("REDIS_ADDR is not set, product search cache disabled")
	}
	if c.KafkaBrokers == "" {
		logger.Info("KAFKA_BROKERS is not set, analytics spooler disabled")
	}
	if c.VapiAPIKey == "" {
		logger.Info("VAPI_API_KEY is not set, vendor client disabled")
	}
}

func envOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func envIntOrDefault(key string, fallback int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}

func envDurationOrDefault(key string, fallback time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	value, err := time.ParseDuration(raw)
	if err != nil || value <= 0 {
		return fallback
	}
	return value
}

package app

import (
	"testing"
	"time"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg := LoadConfig()

	if cfg.HTTPAddr != ":8080" {
		t.Fatalf("unexpected http addr: %s", cfg.HTTPAddr)
	}
	if cfg.OpsAddr != ":9090" {
		t.Fatalf("unexpected ops addr: %s", cfg.OpsAddr)
	}
	if cfg.AssistantName != "Maria" {
		t.Fatalf("unexpected assistant name: %s", cfg.AssistantName)
	}
	if cfg.Language != "el" {
		t.Fatalf("unexpected language: %s", cfg.Language)
	}
	if cfg.ProbeInterval != 30*time.Second {
		t.Fatalf("unexpected probe interval: %s", cfg.ProbeInterval)
	}
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Setenv("VOICEDESK_HTTP_ADDR", ":8181")
	t.Setenv("SUPABASE_DB_URL", "postgres://example")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("KAFKA_BROKERS", "broker-1:9092,broker-2:9092")
	t.Setenv("VOICEDESK_PROBE_INTERVAL", "10s")
	t.Setenv("VOICEDESK_ALLOWED_ORIGINS", "https://shop.example.com, https://admin.example.com")

	cfg := LoadConfig()

	if cfg.HTTPAddr != ":8181" {
		t.Fatalf("unexpected http addr: %s", cfg.HTTPAddr)
	}
	if cfg.SupabaseDBURL != "postgres://example" {
		t.Fatalf("unexpected dsn: %s", cfg.SupabaseDBURL)
	}
	if cfg.RedisDB != 3 {
		t.Fatalf("unexpected redis db: %d", cfg.RedisDB)
	}
	if cfg.ProbeInterval != 10*time.Second {
		t.Fatalf("unexpected probe interval: %s", cfg.ProbeInterval)
	}
	if len(cfg.AllowedOrigins) != 2 || cfg.AllowedOrigins[1] != "https://admin.example.com" {
		t.Fatalf("unexpected origins: %v", cfg.AllowedOrigins)
	}
}

func TestLoadConfig_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("REDIS_DB", "many")
	t.Setenv("VOICEDESK_PROBE_INTERVAL", "-5s")

	cfg := LoadConfig()

	if cfg.RedisDB != 0 {
		t.Fatalf("expected default redis db, got %d", cfg.RedisDB)
	}
	if cfg.ProbeInterval != 30*time.Second {
		t.Fatalf("expected default probe interval, got %s", cfg.ProbeInterval)
	}
}

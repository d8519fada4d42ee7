package config

import (
	"os"
	"testing"
)

func TestLoad_DefaultsAndEnv(t *testing.T) {
	os.Setenv("HTTP_ADDRESS", "")
	os.Setenv("GROQ_MODEL", "")
	os.Setenv("CORS_ALLOW_ORIGINS", "")
	cfg := Load()
	if cfg.HTTPAddress == "" {
		t.Fatalf("expected default http address")
	}
	if cfg.GroqModel == "" {
		t.Fatalf("expected default groq model")
	}
	if cfg.TTSProvider != "elevenlabs" {
		t.Fatalf("expected default tts provider, got %q", cfg.TTSProvider)
	}
	if len(cfg.CORSOrigins) != 1 || cfg.CORSOrigins[0] != "*" {
		t.Fatalf("expected wildcard cors default, got %v", cfg.CORSOrigins)
	}
}

func TestSplitOrigins(t *testing.T) {
	got := splitOrigins(" http://a.example , ,http://b.example")
	if len(got) != 2 || got[0] != "http://a.example" || got[1] != "http://b.example" {
		t.Fatalf("unexpected origins: %v", got)
	}
	if got := splitOrigins(""); len(got) != 1 || got[0] != "*" {
		t.Fatalf("expected wildcard fallback, got %v", got)
	}
}

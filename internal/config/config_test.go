package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.AppAddr != ":8080" {
		t.Errorf("AppAddr: expected :8080, got %s", cfg.AppAddr)
	}
	if cfg.StoreBackend != StoreMemory {
		t.Errorf("StoreBackend: expected memory, got %s", cfg.StoreBackend)
	}
	if cfg.RestyleOnUpdate {
		t.Error("RestyleOnUpdate must default to false")
	}
	if cfg.FormTokenTTL != 12*time.Hour {
		t.Errorf("FormTokenTTL: expected 12h, got %v", cfg.FormTokenTTL)
	}
	if cfg.IsProduction() {
		t.Error("expected development by default")
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("STORE_BACKEND", "sqlite")
	t.Setenv("LEDGER_RESTYLE_ON_UPDATE", "true")
	t.Setenv("APP_REQUEST_TIMEOUT", "5s")
	t.Setenv("LOG_FORMAT", "json")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.StoreBackend != StoreSQLite || !cfg.RestyleOnUpdate || cfg.AppRequestTimeout != 5*time.Second || cfg.LogFormat != "json" {
		t.Errorf("unexpected config: %+v", cfg)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"unknown store", map[string]string{"STORE_BACKEND": "redis"}},
		{"unknown log format", map[string]string{"LOG_FORMAT": "xml"}},
		{"zero token ttl", map[string]string{"FORM_TOKEN_TTL": "0s"}},
		{"bad duration", map[string]string{"APP_READ_TIMEOUT": "soon"}},
		{"production without secret", map[string]string{"APP_ENV": "production"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			if _, err := Load(); err == nil {
				t.Error("expected error")
			}
		})
	}
}

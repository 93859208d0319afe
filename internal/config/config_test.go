package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadFileThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cfadesk.yaml")
	doc := `
api:
  url: https://cfa.example.org/api
  timeout: 5s
lang: en-US
gateway:
  upstream: http://backend:8000
  rate_burst: 5
`
	if err := os.WriteFile(path, []byte(doc), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Chdir(dir)
	t.Setenv("CFADESK_CONFIG", path)
	t.Setenv("CFADESK_TIMEOUT", "12s")
	t.Setenv("GATEWAY_ADDR", ":9000")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.API.URL != "https://cfa.example.org/api" || cfg.Lang != "en" {
		t.Fatalf("file values not applied: %+v", cfg)
	}
	if cfg.API.Timeout != 12*time.Second {
		t.Fatalf("env override lost: %v", cfg.API.Timeout)
	}
	if cfg.Gateway.Addr != ":9000" || cfg.Gateway.Upstream != "http://backend:8000" || cfg.Gateway.RateBurst != 5 {
		t.Fatalf("gateway = %+v", cfg.Gateway)
	}
	if cfg.Gateway.Prefix != "/api" || cfg.Gateway.RatePerSec != 20 {
		t.Fatalf("defaults not kept: %+v", cfg.Gateway)
	}
}

func TestDotEnv(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("CFADESK_API_URL=http://envfile:1/api\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Chdir(dir)
	t.Setenv("CFADESK_CONFIG", "")
	t.Setenv("CFADESK_API_URL", "")
	os.Unsetenv("CFADESK_API_URL")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.API.URL != "http://envfile:1/api" {
		t.Fatalf("api url = %q", cfg.API.URL)
	}
}

func TestApplyEnvErrors(t *testing.T) {
	t.Parallel()
	cases := map[string]string{
		"CFADESK_TIMEOUT":      "soon",
		"CFADESK_RATE":         "fast",
		"GATEWAY_RATE_PER_SEC": "x",
		"GATEWAY_RATE_BURST":   "1.5",
	}
	for key, val := range cases {
		cfg := Default()
		env := func(k string) string {
			if k == key {
				return val
			}
			return ""
		}
		if err := ApplyEnv(&cfg, env); err == nil {
			t.Fatalf("%s=%s: expected error", key, val)
		}
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()
	if err := Default().Validate(); err != nil {
		t.Fatalf("defaults invalid: %v", err)
	}
	cfg := Default()
	cfg.API.URL = "localhost:8000"
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected invalid api url")
	}
	cfg = Default()
	cfg.Gateway.Prefix = "api"
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected invalid prefix")
	}
}

func TestApplyEnvOrigins(t *testing.T) {
	t.Parallel()
	cfg := Default()
	env := func(k string) string {
		if k == "GATEWAY_ALLOWED_ORIGINS" {
			return "http://a:1, ,http://b:2"
		}
		return ""
	}
	if err := ApplyEnv(&cfg, env); err != nil {
		t.Fatalf("ApplyEnv: %v", err)
	}
	if len(cfg.Gateway.AllowedOrigins) != 2 || cfg.Gateway.AllowedOrigins[1] != "http://b:2" {
		t.Fatalf("origins = %v", cfg.Gateway.AllowedOrigins)
	}
}

func TestLangFallsBackToLocale(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("CFADESK_CONFIG", "")
	t.Setenv("CFADESK_LANG", "")

	t.Setenv("LANG", "en_GB.UTF-8")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Lang != "en" {
		t.Fatalf("lang = %q, want en from LANG", cfg.Lang)
	}

	t.Setenv("LANG", "")
	if cfg, err = Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Lang != "fr" {
		t.Fatalf("lang = %q, want fr default", cfg.Lang)
	}
}

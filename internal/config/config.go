// Package config loads cfadesk settings from defaults, an optional YAML file,
// an optional .env file and the environment, in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"cfadesk.org/internal/i18n"
)

// API configures the backend client.
type API struct {
	URL     string        `yaml:"url"`
	Timeout time.Duration `yaml:"timeout"`
	// Rate paces client calls per second; 0 disables pacing.
	Rate  float64 `yaml:"rate"`
	Burst int     `yaml:"burst"`
}

// Gateway configures the development gateway.
type Gateway struct {
	Addr           string   `yaml:"addr"`
	Upstream       string   `yaml:"upstream"`
	Prefix         string   `yaml:"prefix"`
	RatePerSec     float64  `yaml:"rate_per_sec"`
	RateBurst      int      `yaml:"rate_burst"`
	MaxBodyBytes   int64    `yaml:"max_body_bytes"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

type Config struct {
	API       API     `yaml:"api"`
	TokenFile string  `yaml:"token_file"`
	Lang      string  `yaml:"lang"`
	Gateway   Gateway `yaml:"gateway"`
}

// Default is the local development setup: the console talks to the gateway,
// which forwards /api to the backend on :8000.
func Default() Config {
	return Config{
		API: API{
			URL:     "http://localhost:5173/api",
			Timeout: 30 * time.Second,
			Burst:   1,
		},
		Gateway: Gateway{
			Addr:         ":5173",
			Upstream:     "http://localhost:8000",
			Prefix:       "/api",
			RatePerSec:   20,
			RateBurst:    40,
			MaxBodyBytes: 10 << 20,
			AllowedOrigins: []string{
				"http://localhost:5173",
				"http://127.0.0.1:5173",
			},
		},
	}
}

// Load reads .env (if present), then the YAML file named by CFADESK_CONFIG
// (if set), then environment overrides.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	cfg := Default()
	if path := os.Getenv("CFADESK_CONFIG"); path != "" {
		if err := LoadFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}
	if cfg.Lang != "" {
		cfg.Lang = i18n.DetectLanguage(cfg.Lang)
	}
	if err := ApplyEnv(&cfg, os.Getenv); err != nil {
		return Config{}, err
	}
	if cfg.Lang == "" {
		// DetectLanguage falls back to French when LANG is unset or unknown.
		cfg.Lang = i18n.DetectLanguage(os.Getenv("LANG"))
	}
	return cfg, cfg.Validate()
}

// LoadFile merges a YAML document into cfg. Keys absent from the file keep
// their current value.
func LoadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overrides cfg from environment variables read through getenv.
func ApplyEnv(cfg *Config, getenv func(string) string) error {
	if v := getenv("CFADESK_API_URL"); v != "" {
		cfg.API.URL = v
	}
	if v := getenv("CFADESK_TOKEN_FILE"); v != "" {
		cfg.TokenFile = v
	}
	if v := getenv("CFADESK_LANG"); v != "" {
		cfg.Lang = i18n.DetectLanguage(v)
	}
	if v := getenv("CFADESK_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("CFADESK_TIMEOUT: %w", err)
		}
		cfg.API.Timeout = d
	}
	if v := getenv("CFADESK_RATE"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("CFADESK_RATE: %w", err)
		}
		cfg.API.Rate = f
	}
	if v := getenv("GATEWAY_ADDR"); v != "" {
		cfg.Gateway.Addr = v
	}
	if v := getenv("GATEWAY_UPSTREAM"); v != "" {
		cfg.Gateway.Upstream = v
	}
	if v := getenv("GATEWAY_RATE_PER_SEC"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("GATEWAY_RATE_PER_SEC: %w", err)
		}
		cfg.Gateway.RatePerSec = f
	}
	if v := getenv("GATEWAY_RATE_BURST"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("GATEWAY_RATE_BURST: %w", err)
		}
		cfg.Gateway.RateBurst = n
	}
	if v := getenv("GATEWAY_ALLOWED_ORIGINS"); v != "" {
		var origins []string
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
		cfg.Gateway.AllowedOrigins = origins
	}
	return nil
}

// Validate checks the URLs and numeric bounds.
func (c Config) Validate() error {
	for name, raw := range map[string]string{"api.url": c.API.URL, "gateway.upstream": c.Gateway.Upstream} {
		u, err := url.Parse(raw)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("config: %s must be an http(s) URL, got %q", name, raw)
		}
	}
	if c.API.Timeout < 0 || c.API.Rate < 0 || c.Gateway.RatePerSec < 0 || c.Gateway.RateBurst < 0 {
		return errors.New("config: negative timeout or rate")
	}
	if c.Gateway.Prefix != "" && !strings.HasPrefix(c.Gateway.Prefix, "/") {
		return fmt.Errorf("config: gateway.prefix must start with /, got %q", c.Gateway.Prefix)
	}
	return nil
}

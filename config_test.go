package goFlow

import (
	"strings"
	"testing"
	"time"
)

func TestDefaultConfigValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.Routes.ForType(FlowVerification) != "/verify" || cfg.Routes.ForType("bogus") != "" {
		t.Fatalf("unexpected route mapping")
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"relative login route", func(c *Config) { c.Routes.Login = "sign-in" }, "Routes Login"},
		{"protocol relative redirect", func(c *Config) { c.Routes.DefaultRedirect = "//evil.example" }, "Routes DefaultRedirect"},
		{"empty query param", func(c *Config) { c.Routes.FlowQueryParam = "" }, "FlowQueryParam"},
		{"query param needs escaping", func(c *Config) { c.Routes.FlowQueryParam = "flow id" }, "FlowQueryParam"},
		{"relative app url", func(c *Config) { c.Routes.AppURL = "app.example.com" }, "AppURL"},
		{"bad locale", func(c *Config) { c.Messages.DefaultLocale = "not a locale" }, "DefaultLocale"},
		{"audit buffer", func(c *Config) { c.Audit.Enabled = true; c.Audit.BufferSize = 0 }, "Audit BufferSize"},
		{"generation prefix", func(c *Config) { c.Generation.Distributed = true; c.Generation.RedisPrefix = " " }, "RedisPrefix"},
		{"generation ttl", func(c *Config) { c.Generation.Distributed = true; c.Generation.TTL = 0 }, "Generation TTL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("error %q does not mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestLint(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		code   string
	}{
		{"app url", func(c *Config) {}, "app_url_unset"},
		{"redirect to login", func(c *Config) { c.Routes.DefaultRedirect = c.Routes.Login }, "default_redirect_is_login"},
		{"latency without metrics", func(c *Config) { c.Metrics.EnableLatencyHistograms = true }, "latency_without_metrics"},
		{"blocking audit", func(c *Config) { c.Audit.Enabled = true; c.Audit.DropIfFull = false }, "audit_blocking"},
		{"short generation ttl", func(c *Config) { c.Generation.Distributed = true; c.Generation.TTL = 10 * time.Second }, "generation_ttl_short"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			if !containsCode(cfg.Lint().Codes(), tt.code) {
				t.Fatalf("expected %s warning, got %v", tt.code, cfg.Lint().Codes())
			}
		})
	}
}

func TestLintCleanConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Routes.AppURL = "https://app.example.com"
	if ws := cfg.Lint(); len(ws) != 0 {
		t.Fatalf("expected no warnings, got %v", ws.Codes())
	}
}

func containsCode(codes []string, code string) bool {
	for _, c := range codes {
		if c == code {
			return true
		}
	}
	return false
}

package goFlow

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"golang.org/x/text/language"
)

// Config is the engine configuration. Build it from [DefaultConfig] and
// override the sections you need.
//
//	Docs: docs/config.md
type Config struct {
	Routes     RoutesConfig
	Messages   MessagesConfig
	Metrics    MetricsConfig
	Audit      AuditConfig
	Generation GenerationConfig
}

/*
====================================
ROUTES CONFIG
====================================
*/

// RoutesConfig holds the in-app routes of every flow page.
type RoutesConfig struct {
	Login           string
	Registration    string
	Recovery        string
	Verification    string
	Settings        string
	Error           string
	DefaultRedirect string

	// AppURL is the public origin of the application. Absolute redirect
	// targets on this host are treated as in-app routes.
	AppURL string

	// FlowQueryParam names the query parameter carrying the flow id.
	FlowQueryParam string
}

// ForType returns the route of the page rendering flows of kind.
func (r RoutesConfig) ForType(kind FlowType) string {
	switch kind {
	case FlowLogin:
		return r.Login
	case FlowRegistration:
		return r.Registration
	case FlowRecovery:
		return r.Recovery
	case FlowVerification:
		return r.Verification
	case FlowSettings:
		return r.Settings
	}
	return ""
}

func (r RoutesConfig) byType() map[FlowType]string {
	return map[FlowType]string{
		FlowLogin:        r.Login,
		FlowRegistration: r.Registration,
		FlowRecovery:     r.Recovery,
		FlowVerification: r.Verification,
		FlowSettings:     r.Settings,
	}
}

/*
====================================
MESSAGES CONFIG
====================================
*/

// MessagesConfig selects the translation catalogs.
type MessagesConfig struct {
	// DefaultLocale is a BCP 47 tag used when no requested locale matches.
	DefaultLocale string
	// CatalogDir optionally points at a directory of <locale>.yaml files
	// layered over the embedded catalogs.
	CatalogDir string
}

/*
====================================
METRICS / AUDIT CONFIG
====================================
*/

// MetricsConfig controls counter and histogram collection.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

// AuditConfig controls the asynchronous audit dispatcher.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

/*
====================================
GENERATION CONFIG
====================================
*/

// GenerationConfig controls how submissions of the same flow are ordered.
// Without Distributed, ordering is tracked per coordinator; with it, a
// Redis counter per flow id orders submissions across processes.
type GenerationConfig struct {
	Distributed bool
	RedisPrefix string
	TTL         time.Duration
}

/*
====================================
DEFAULT CONFIG
====================================
*/

// DefaultConfig returns the configuration used by [New].
func DefaultConfig() Config {
	return defaultConfig()
}

func defaultConfig() Config {
	return Config{
		Routes: RoutesConfig{
			Login:           "/sign-in",
			Registration:    "/sign-up",
			Recovery:        "/recovery",
			Verification:    "/verify",
			Settings:        "/settings",
			Error:           "/error",
			DefaultRedirect: "/dashboard",
			FlowQueryParam:  "flow",
		},
		Messages: MessagesConfig{
			DefaultLocale: "en",
		},
		Metrics: MetricsConfig{
			Enabled:                 false,
			EnableLatencyHistograms: false,
		},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 1024,
			DropIfFull: true,
		},
		Generation: GenerationConfig{
			Distributed: false,
			RedisPrefix: "gf:gen",
			TTL:         time.Hour,
		},
	}
}

/*
====================================
VALIDATION
====================================
*/

// Validate reports the first configuration error.
func (c *Config) Validate() error {
	routes := []struct {
		name  string
		value string
	}{
		{"Login", c.Routes.Login},
		{"Registration", c.Routes.Registration},
		{"Recovery", c.Routes.Recovery},
		{"Verification", c.Routes.Verification},
		{"Settings", c.Routes.Settings},
		{"Error", c.Routes.Error},
		{"DefaultRedirect", c.Routes.DefaultRedirect},
	}
	for _, r := range routes {
		if !strings.HasPrefix(r.value, "/") || strings.HasPrefix(r.value, "//") {
			return fmt.Errorf("Routes %s must be an absolute path", r.name)
		}
	}

	if c.Routes.FlowQueryParam == "" {
		return errors.New("Routes FlowQueryParam must not be empty")
	}
	if url.QueryEscape(c.Routes.FlowQueryParam) != c.Routes.FlowQueryParam {
		return errors.New("Routes FlowQueryParam must not need escaping")
	}

	if c.Routes.AppURL != "" {
		u, err := url.Parse(c.Routes.AppURL)
		if err != nil || !u.IsAbs() || u.Host == "" {
			return errors.New("Routes AppURL must be an absolute URL")
		}
	}

	if _, err := language.Parse(c.Messages.DefaultLocale); err != nil {
		return fmt.Errorf("Messages DefaultLocale is invalid: %w", err)
	}

	if c.Audit.Enabled && c.Audit.BufferSize <= 0 {
		return errors.New("Audit BufferSize must be > 0")
	}

	if c.Generation.Distributed {
		if strings.TrimSpace(c.Generation.RedisPrefix) == "" {
			return errors.New("Generation RedisPrefix must not be empty")
		}
		if c.Generation.TTL <= 0 {
			return errors.New("Generation TTL must be > 0")
		}
	}

	return nil
}

/*
====================================
LINT
====================================
*/

// LintWarning is a configuration that is valid but likely unintended.
type LintWarning struct {
	Code    string
	Message string
}

// LintWarnings is the ordered result of [Config.Lint].
type LintWarnings []LintWarning

// Codes returns the warning codes in order.
func (ws LintWarnings) Codes() []string {
	out := make([]string, 0, len(ws))
	for _, w := range ws {
		out = append(out, w.Code)
	}
	return out
}

// Lint reports valid but suspicious settings.
func (c *Config) Lint() LintWarnings {
	var ws LintWarnings
	add := func(code, msg string) {
		ws = append(ws, LintWarning{Code: code, Message: msg})
	}

	if c.Routes.AppURL == "" {
		add("app_url_unset", "every absolute redirect target is treated as external")
	}
	if c.Routes.DefaultRedirect == c.Routes.Login {
		add("default_redirect_is_login", "successful sign-in returns to the sign-in page")
	}
	if c.Metrics.EnableLatencyHistograms && !c.Metrics.Enabled {
		add("latency_without_metrics", "latency histograms are ignored while metrics are disabled")
	}
	if c.Audit.Enabled && !c.Audit.DropIfFull {
		add("audit_blocking", "submissions block while the audit buffer is full")
	}
	if c.Generation.Distributed && c.Generation.TTL < time.Minute {
		add("generation_ttl_short", "generation markers may expire while a submission is in flight")
	}
	return ws
}

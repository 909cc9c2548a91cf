package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	goFlow "github.com/MrEthical07/goFlow"
	"github.com/MrEthical07/goFlow/jwt"
)

// Configuration keys. Environment variables are the upper-cased key with
// dots replaced by underscores and the GOFLOW_ prefix.
const (
	keyListen   = "listen"
	keyLogLevel = "log_level"

	keyProviderURL        = "provider.url"
	keyProviderTimeout    = "provider.timeout"
	keyProviderMaxRetries = "provider.max_retries"

	keyRoutesLogin        = "routes.login"
	keyRoutesRegistration = "routes.registration"
	keyRoutesRecovery     = "routes.recovery"
	keyRoutesVerification = "routes.verification"
	keyRoutesSettings     = "routes.settings"
	keyRoutesError        = "routes.error"
	keyRoutesDefault      = "routes.default_redirect"
	keyRoutesAppURL       = "routes.app_url"
	keyRoutesFlowParam    = "routes.flow_query_param"

	keyMessagesLocale     = "messages.default_locale"
	keyMessagesCatalogDir = "messages.catalog_dir"

	keyMetricsEnabled = "metrics.enabled"
	keyMetricsLatency = "metrics.latency"

	keyAuditEnabled    = "audit.enabled"
	keyAuditBufferSize = "audit.buffer_size"
	keyAuditDropIfFull = "audit.drop_if_full"

	keyGenerationDistributed = "generation.distributed"
	keyGenerationRedisAddr   = "generation.redis_addr"
	keyGenerationPrefix      = "generation.redis_prefix"
	keyGenerationTTL         = "generation.ttl"
	keyGenerationEmbedded    = "generation.embedded_redis"

	keyThrottleEnabled = "throttle.enabled"
	keyThrottleMax     = "throttle.max_submissions"
	keyThrottleWindow  = "throttle.window"

	keySessionCookie    = "session.cookie"
	keySessionMethod    = "session.jwt_method"
	keySessionSecret    = "session.jwt_secret"
	keySessionPublicKey = "session.jwt_public_key_file"
	keySessionIssuer    = "session.issuer"
	keySessionAudience  = "session.audience"
)

var logLevels = map[string]slog.Level{
	"debug": slog.LevelDebug,
	"info":  slog.LevelInfo,
	"warn":  slog.LevelWarn,
	"error": slog.LevelError,
}

func setDefaults(v *viper.Viper) {
	d := goFlow.DefaultConfig()

	v.SetDefault(keyListen, ":4455")
	v.SetDefault(keyLogLevel, "info")

	v.SetDefault(keyProviderTimeout, 10*time.Second)
	v.SetDefault(keyProviderMaxRetries, 3)

	v.SetDefault(keyRoutesLogin, d.Routes.Login)
	v.SetDefault(keyRoutesRegistration, d.Routes.Registration)
	v.SetDefault(keyRoutesRecovery, d.Routes.Recovery)
	v.SetDefault(keyRoutesVerification, d.Routes.Verification)
	v.SetDefault(keyRoutesSettings, d.Routes.Settings)
	v.SetDefault(keyRoutesError, d.Routes.Error)
	v.SetDefault(keyRoutesDefault, d.Routes.DefaultRedirect)
	v.SetDefault(keyRoutesAppURL, d.Routes.AppURL)
	v.SetDefault(keyRoutesFlowParam, d.Routes.FlowQueryParam)

	v.SetDefault(keyMessagesLocale, d.Messages.DefaultLocale)
	v.SetDefault(keyMessagesCatalogDir, d.Messages.CatalogDir)

	v.SetDefault(keyMetricsEnabled, true)
	v.SetDefault(keyMetricsLatency, true)

	v.SetDefault(keyAuditEnabled, d.Audit.Enabled)
	v.SetDefault(keyAuditBufferSize, d.Audit.BufferSize)
	v.SetDefault(keyAuditDropIfFull, d.Audit.DropIfFull)

	v.SetDefault(keyGenerationDistributed, d.Generation.Distributed)
	v.SetDefault(keyGenerationRedisAddr, "")
	v.SetDefault(keyGenerationPrefix, d.Generation.RedisPrefix)
	v.SetDefault(keyGenerationTTL, d.Generation.TTL)
	v.SetDefault(keyGenerationEmbedded, false)

	v.SetDefault(keyThrottleEnabled, false)
	v.SetDefault(keyThrottleMax, 30)
	v.SetDefault(keyThrottleWindow, time.Minute)

	v.SetDefault(keySessionCookie, "")
	v.SetDefault(keySessionMethod, "")
	v.SetDefault(keySessionSecret, "")
	v.SetDefault(keySessionPublicKey, "")
	v.SetDefault(keySessionIssuer, "")
	v.SetDefault(keySessionAudience, "")
}

// engineConfig maps v onto the engine configuration and validates it.
func engineConfig(v *viper.Viper) (goFlow.Config, error) {
	cfg := goFlow.DefaultConfig()

	cfg.Routes = goFlow.RoutesConfig{
		Login:           v.GetString(keyRoutesLogin),
		Registration:    v.GetString(keyRoutesRegistration),
		Recovery:        v.GetString(keyRoutesRecovery),
		Verification:    v.GetString(keyRoutesVerification),
		Settings:        v.GetString(keyRoutesSettings),
		Error:           v.GetString(keyRoutesError),
		DefaultRedirect: v.GetString(keyRoutesDefault),
		AppURL:          v.GetString(keyRoutesAppURL),
		FlowQueryParam:  v.GetString(keyRoutesFlowParam),
	}
	cfg.Messages = goFlow.MessagesConfig{
		DefaultLocale: v.GetString(keyMessagesLocale),
		CatalogDir:    v.GetString(keyMessagesCatalogDir),
	}
	cfg.Metrics = goFlow.MetricsConfig{
		Enabled:                 v.GetBool(keyMetricsEnabled),
		EnableLatencyHistograms: v.GetBool(keyMetricsLatency),
	}
	cfg.Audit = goFlow.AuditConfig{
		Enabled:    v.GetBool(keyAuditEnabled),
		BufferSize: v.GetInt(keyAuditBufferSize),
		DropIfFull: v.GetBool(keyAuditDropIfFull),
	}
	cfg.Generation = goFlow.GenerationConfig{
		Distributed: v.GetBool(keyGenerationDistributed) || v.GetBool(keyGenerationEmbedded),
		RedisPrefix: v.GetString(keyGenerationPrefix),
		TTL:         v.GetDuration(keyGenerationTTL),
	}

	if err := cfg.Validate(); err != nil {
		return goFlow.Config{}, err
	}
	return cfg, nil
}

// verifierConfig returns the session token verifier settings, or false
// when tokenized sessions are not configured.
func verifierConfig(v *viper.Viper) (jwt.Config, bool, error) {
	method := strings.ToLower(strings.TrimSpace(v.GetString(keySessionMethod)))
	if method == "" {
		return jwt.Config{}, false, nil
	}

	cfg := jwt.Config{
		SigningMethod: jwt.SigningMethod(method),
		Issuer:        v.GetString(keySessionIssuer),
		Audience:      v.GetString(keySessionAudience),
		Leeway:        30 * time.Second,
	}
	switch cfg.SigningMethod {
	case jwt.MethodHS256:
		cfg.Secret = []byte(v.GetString(keySessionSecret))
	case jwt.MethodEd25519:
		path := v.GetString(keySessionPublicKey)
		if path == "" {
			return jwt.Config{}, false, errors.New("session.jwt_public_key_file is required for ed25519")
		}
		pem, err := os.ReadFile(path)
		if err != nil {
			return jwt.Config{}, false, fmt.Errorf("read session public key: %w", err)
		}
		cfg.PublicKey = pem
	default:
		return jwt.Config{}, false, fmt.Errorf("unsupported session.jwt_method %q", method)
	}
	return cfg, true, nil
}

func newLogger(level string) *slog.Logger {
	l, ok := logLevels[strings.ToLower(level)]
	if !ok {
		l = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: l}))
}

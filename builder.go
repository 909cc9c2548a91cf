package goFlow

import (
	"errors"
	"log/slog"

	"github.com/MrEthical07/goFlow/i18n"
	"github.com/MrEthical07/goFlow/internal/flows"
	"github.com/MrEthical07/goFlow/internal/stores"
	"github.com/redis/go-redis/v9"
)

// ErrorRule pairs a message predicate with a translation key. Rules are
// evaluated in order and the first match wins.
type ErrorRule = flows.ErrorRule

// PatternRule builds a case-insensitive regular expression rule.
func PatternRule(expr, key string) ErrorRule {
	return flows.PatternRule(expr, key)
}

// DefaultErrorRules returns a copy of the built-in classification rules.
func DefaultErrorRules() []ErrorRule {
	return append([]ErrorRule(nil), flows.DefaultErrorRules...)
}

// Builder assembles an [Engine]. A Builder is single-use.
//
//	Docs: docs/engine.md
type Builder struct {
	config Config
	redis  redis.UniversalClient

	provider   IdentityProviderClient
	translator Translator
	auditSink  AuditSink
	logger     *slog.Logger

	rules   []ErrorRule
	aliases map[string]string

	built bool
}

// New returns a Builder seeded with [DefaultConfig].
func New() *Builder {
	return &Builder{
		config: defaultConfig(),
	}
}

// WithConfig replaces the whole configuration.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cfg
	return b
}

// WithProvider sets the identity provider client. Required.
func (b *Builder) WithProvider(p IdentityProviderClient) *Builder {
	b.provider = p
	return b
}

// WithRedis sets the client backing distributed generation markers.
func (b *Builder) WithRedis(client redis.UniversalClient) *Builder {
	b.redis = client
	return b
}

// WithTranslator overrides the catalog-backed translator for every
// coordinator that does not bring its own.
func (b *Builder) WithTranslator(t Translator) *Builder {
	b.translator = t
	return b
}

// WithAuditSink sets the audit destination. Audit must also be enabled in
// the configuration.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// WithLogger sets the engine logger. Defaults to slog.Default().
func (b *Builder) WithLogger(logger *slog.Logger) *Builder {
	b.logger = logger
	return b
}

// WithErrorRules replaces the message classification rules.
func (b *Builder) WithErrorRules(rules []ErrorRule) *Builder {
	b.rules = append([]ErrorRule(nil), rules...)
	return b
}

// WithFieldAliases replaces the provider-to-UI field name aliases.
func (b *Builder) WithFieldAliases(aliases map[string]string) *Builder {
	b.aliases = make(map[string]string, len(aliases))
	for k, v := range aliases {
		b.aliases[k] = v
	}
	return b
}

// WithMetricsEnabled toggles counter collection.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// WithLatencyHistograms toggles the submit latency histogram.
func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.config.Metrics.EnableLatencyHistograms = enabled
	return b
}

// Build validates the configuration and returns a ready engine.
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := b.config
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if b.provider == nil {
		return nil, ErrProviderRequired
	}
	if cfg.Generation.Distributed && b.redis == nil {
		return nil, errors.New("Generation Distributed requires redis client")
	}

	bundle, err := i18n.New(cfg.Messages.DefaultLocale)
	if err != nil {
		return nil, err
	}
	if cfg.Messages.CatalogDir != "" {
		if err := bundle.LoadDir(cfg.Messages.CatalogDir); err != nil {
			return nil, err
		}
	}

	logger := b.logger
	if logger == nil {
		logger = slog.Default()
	}

	engine := &Engine{
		config:     cfg,
		provider:   b.provider,
		bundle:     bundle,
		translator: b.translator,
		classifier: flows.Classifier{Rules: b.rules, Aliases: b.aliases},
		logger:     logger,
	}

	if cfg.Generation.Distributed {
		engine.generations = stores.NewGenerationStore(b.redis, cfg.Generation.RedisPrefix, cfg.Generation.TTL)
	}
	engine.audit = newAuditDispatcher(cfg.Audit, b.auditSink)
	engine.metrics = NewMetrics(cfg.Metrics)

	b.built = true

	return engine, nil
}

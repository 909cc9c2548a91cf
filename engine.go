package goFlow

import (
	"context"
	"log/slog"
	"time"

	"github.com/MrEthical07/goFlow/i18n"
	internalaudit "github.com/MrEthical07/goFlow/internal/audit"
	"github.com/MrEthical07/goFlow/internal/flows"
	"github.com/MrEthical07/goFlow/pkg/log"
)

// Engine owns the collaborators shared by every flow: the provider client,
// translation catalogs, metrics, the audit dispatcher and the generation
// store. It is safe for concurrent use and mints one [Coordinator] per
// rendered flow.
//
//	Docs: docs/engine.md
type Engine struct {
	config      Config
	provider    IdentityProviderClient
	bundle      *i18n.Bundle
	translator  Translator
	classifier  flows.Classifier
	generations GenerationStore
	audit       *internalaudit.Dispatcher
	metrics     *Metrics
	logger      *slog.Logger
}

// Close stops the audit dispatcher after draining queued events.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	if e.audit != nil {
		e.audit.Close()
	}
}

// AuditDropped returns how many audit events were dropped because the
// buffer was full.
func (e *Engine) AuditDropped() uint64 {
	if e == nil || e.audit == nil {
		return 0
	}
	return e.audit.Dropped()
}

// MetricsSnapshot returns a copy of the current metric values.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil || e.metrics == nil {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}
	return e.metrics.Snapshot()
}

// Config returns the engine configuration.
func (e *Engine) Config() Config {
	if e == nil {
		return Config{}
	}
	return e.config
}

// Provider returns the identity provider client.
func (e *Engine) Provider() IdentityProviderClient {
	if e == nil {
		return nil
	}
	return e.provider
}

// Translator returns the translator for the best match of the given locale
// preferences (tags or Accept-Language values). A translator set with
// [Builder.WithTranslator] takes precedence.
func (e *Engine) Translator(preferences ...string) Translator {
	if e == nil {
		return TranslatorFunc(func(key string) string { return key })
	}
	if e.translator != nil {
		return e.translator
	}
	return e.bundle.Localizer(preferences...)
}

// Locales returns the locales with a loaded catalog.
func (e *Engine) Locales() []string {
	if e == nil || e.bundle == nil {
		return nil
	}
	return e.bundle.Locales()
}

// IsExternal reports whether target leaves the application, judged against
// Routes.AppURL.
func (e *Engine) IsExternal(target string) bool {
	return flows.IsExternalURL(target, e.config.Routes.AppURL)
}

// Logout ends the current provider session and sends nav to the login route.
// Provider failures are returned wrapped in [ErrLogoutFailed] and leave the
// browser where it is.
func (e *Engine) Logout(ctx context.Context, nav Navigator) error {
	if e == nil || e.provider == nil {
		return ErrEngineNotReady
	}
	if nav == nil {
		return ErrNavigatorRequired
	}

	err := flows.RunLogout(ctx, flows.LogoutDeps{
		Provider:   e.provider,
		LoginRoute: e.config.Routes.Login,
		Redirect: func(target string, external bool) {
			flows.RunRedirect(target, external, dispatchDeps(nav, e.config.Routes.FlowQueryParam))
		},
		ErrFailed: ErrLogoutFailed,
		MetricInc: e.metricIncInt,
		EmitAudit: e.emitAudit,
		Metrics: flows.LogoutMetrics{
			Success: int(MetricLogout),
			Failure: int(MetricLogoutFailure),
		},
		Events: flows.LogoutEvents{
			Logout: auditEventLogout,
		},
	})
	if err != nil {
		e.logger.WarnContext(ctx, "logout failed", log.Error(err))
	}
	return err
}

func (e *Engine) metricInc(id MetricID) {
	if e == nil || e.metrics == nil {
		return
	}
	e.metrics.Inc(id)
}

func (e *Engine) metricIncInt(id int) {
	e.metricInc(MetricID(id))
}

func dispatchDeps(nav Navigator, param string) flows.DispatchDeps {
	return flows.DispatchDeps{
		Assign:     nav.Assign,
		Push:       nav.Push,
		Replace:    nav.Replace,
		Refresh:    nav.Refresh,
		Location:   nav.Location,
		QueryParam: param,
	}
}

func (e *Engine) observeLatency(d time.Duration) {
	if e == nil || e.metrics == nil {
		return
	}
	e.metrics.Observe(MetricSubmitLatency, d)
}

package flows

import (
	"context"
	"errors"
	"fmt"

	"github.com/MrEthical07/goFlow/flow"
)

// LogoutProvider is the part of the identity provider logout needs.
type LogoutProvider interface {
	CreateLogoutFlow(ctx context.Context) (flow.LogoutFlow, error)
	SubmitLogout(ctx context.Context, token string) error
}

type LogoutMetrics struct {
	Success int
	Failure int
}

type LogoutEvents struct {
	Logout string
}

// LogoutDeps captures logout flow dependencies.
type LogoutDeps struct {
	Provider   LogoutProvider
	LoginRoute string
	Redirect   func(target string, external bool)
	ErrFailed  error

	MetricInc func(int)
	EmitAudit func(context.Context, string, bool, string, string, error, func() map[string]string)

	Metrics LogoutMetrics
	Events  LogoutEvents
}

func normalizeLogoutDeps(deps *LogoutDeps) {
	if deps.Redirect == nil {
		deps.Redirect = func(string, bool) {}
	}
	if deps.ErrFailed == nil {
		deps.ErrFailed = errors.New("logout failed")
	}
	if deps.LoginRoute == "" {
		deps.LoginRoute = "/"
	}
	if deps.MetricInc == nil {
		deps.MetricInc = func(int) {}
	}
	if deps.EmitAudit == nil {
		deps.EmitAudit = func(context.Context, string, bool, string, string, error, func() map[string]string) {}
	}
}

// RunLogout creates a browser logout flow, submits its token and sends the
// browser to the login route. Navigation only happens once the provider has
// accepted the logout.
func RunLogout(ctx context.Context, deps LogoutDeps) error {
	normalizeLogoutDeps(&deps)

	if deps.Provider == nil {
		return deps.ErrFailed
	}

	lf, err := deps.Provider.CreateLogoutFlow(ctx)
	if err == nil && lf.LogoutToken == "" {
		err = errors.New("provider returned an empty logout token")
	}
	if err == nil {
		err = deps.Provider.SubmitLogout(ctx, lf.LogoutToken)
	}
	if err != nil {
		deps.MetricInc(deps.Metrics.Failure)
		deps.EmitAudit(ctx, deps.Events.Logout, false, "", "", err, nil)
		return fmt.Errorf("%w: %w", deps.ErrFailed, err)
	}

	deps.MetricInc(deps.Metrics.Success)
	deps.EmitAudit(ctx, deps.Events.Logout, true, "", "", nil, nil)
	deps.Redirect(deps.LoginRoute, false)
	return nil
}

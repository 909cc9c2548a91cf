package flows

import (
	"net/url"

	"github.com/MrEthical07/goFlow/flow"
)

// ContinuationDeps wires the continuation resolver to the dispatcher.
type ContinuationDeps struct {
	Routes     map[flow.Type]string
	QueryParam string
	IsExternal func(string) bool
	Redirect   func(target string, external bool)
}

// Continuation is a resolved redirect target.
type Continuation struct {
	URL      string
	External bool
}

var continuationPriority = []string{
	flow.ActionRedirectBrowserTo,
	flow.ActionShowVerificationUI,
	flow.ActionShowSettingsUI,
	flow.ActionShowRecoveryUI,
}

// ResolveContinuation picks the directive that should drive navigation.
func ResolveContinuation(actions []flow.ContinueWith, deps ContinuationDeps) (Continuation, bool) {
	if len(actions) == 0 {
		return Continuation{}, false
	}
	if deps.IsExternal == nil {
		deps.IsExternal = func(string) bool { return false }
	}
	if deps.QueryParam == "" {
		deps.QueryParam = "flow"
	}

	for _, action := range continuationPriority {
		for _, item := range actions {
			if item.Action != action {
				continue
			}
			if action == flow.ActionRedirectBrowserTo {
				if item.RedirectBrowserTo == "" {
					continue
				}
				return Continuation{URL: item.RedirectBrowserTo, External: true}, true
			}
			if target, ok := uiTarget(item, deps); ok {
				return Continuation{URL: target, External: deps.IsExternal(target)}, true
			}
		}
	}
	return Continuation{}, false
}

// RunContinueWith dispatches the chosen continuation and reports whether the
// caller's default navigation must be skipped.
func RunContinueWith(actions []flow.ContinueWith, deps ContinuationDeps) bool {
	next, ok := ResolveContinuation(actions, deps)
	if !ok {
		return false
	}
	if deps.Redirect != nil {
		deps.Redirect(next.URL, next.External)
	}
	return true
}

func uiTarget(item flow.ContinueWith, deps ContinuationDeps) (string, bool) {
	if item.Flow == nil {
		return "", false
	}
	if item.Flow.URL != "" {
		return item.Flow.URL, true
	}
	if item.Flow.ID == "" {
		return "", false
	}

	var kind flow.Type
	switch item.Action {
	case flow.ActionShowVerificationUI:
		kind = flow.TypeVerification
	case flow.ActionShowRecoveryUI:
		kind = flow.TypeRecovery
	case flow.ActionShowSettingsUI:
		kind = flow.TypeSettings
	}
	route, ok := deps.Routes[kind]
	if !ok || route == "" {
		return "", false
	}
	return RestartPath(&url.URL{Path: route}, deps.QueryParam, item.Flow.ID), true
}

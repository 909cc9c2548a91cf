package flows

import (
	"net/url"
	"strings"
)

// DispatchDeps is the navigation surface the dispatcher drives.
type DispatchDeps struct {
	Assign     func(string)
	Push       func(string)
	Replace    func(string)
	Refresh    func()
	Location   func() *url.URL
	QueryParam string
}

func normalizeDispatchDeps(deps *DispatchDeps) {
	if deps.Assign == nil {
		deps.Assign = func(string) {}
	}
	if deps.Push == nil {
		deps.Push = func(string) {}
	}
	if deps.Replace == nil {
		deps.Replace = func(string) {}
	}
	if deps.Refresh == nil {
		deps.Refresh = func() {}
	}
	if deps.Location == nil {
		deps.Location = func() *url.URL { return &url.URL{Path: "/"} }
	}
	if deps.QueryParam == "" {
		deps.QueryParam = "flow"
	}
}

// RunRedirect performs a full page navigation for external targets and an
// in-app route change followed by a refresh otherwise.
func RunRedirect(target string, external bool, deps DispatchDeps) {
	normalizeDispatchDeps(&deps)

	if external {
		deps.Assign(target)
		return
	}
	deps.Push(target)
	deps.Refresh()
}

// RunRestart rewrites the flow query parameter of the current location and
// replaces the history entry with the result.
func RunRestart(newFlowID string, deps DispatchDeps) string {
	normalizeDispatchDeps(&deps)

	next := RestartPath(deps.Location(), deps.QueryParam, newFlowID)
	deps.Replace(next)
	deps.Refresh()
	return next
}

// RestartPath returns path+query of loc with param set to flowID, or with
// param removed when flowID is empty.
func RestartPath(loc *url.URL, param, flowID string) string {
	if loc == nil {
		loc = &url.URL{Path: "/"}
	}
	query := loc.Query()
	if flowID != "" {
		query.Set(param, flowID)
	} else {
		query.Del(param)
	}

	path := loc.EscapedPath()
	if path == "" {
		path = "/"
	}
	if encoded := query.Encode(); encoded != "" {
		return path + "?" + encoded
	}
	return path
}

// IsExternalURL reports whether target leaves the application. Relative
// targets never do; absolute ones do unless they share base's host.
func IsExternalURL(target, base string) bool {
	if target == "" || (strings.HasPrefix(target, "/") && !strings.HasPrefix(target, "//")) {
		return false
	}
	u, err := url.Parse(target)
	if err != nil {
		return true
	}
	if !u.IsAbs() && u.Host == "" {
		return false
	}
	if base == "" {
		return true
	}
	b, err := url.Parse(base)
	if err != nil {
		return true
	}
	return !strings.EqualFold(u.Host, b.Host)
}

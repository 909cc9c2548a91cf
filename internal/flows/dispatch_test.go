package flows

import (
	"net/url"
	"testing"
)

type navRecorder struct {
	assigned  []string
	pushed    []string
	replaced  []string
	refreshes int
	location  *url.URL
}

func (n *navRecorder) deps() DispatchDeps {
	return DispatchDeps{
		Assign:   func(u string) { n.assigned = append(n.assigned, u) },
		Push:     func(u string) { n.pushed = append(n.pushed, u) },
		Replace:  func(u string) { n.replaced = append(n.replaced, u) },
		Refresh:  func() { n.refreshes++ },
		Location: func() *url.URL { return n.location },
	}
}

func mustURL(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("parse %q: %v", raw, err)
	}
	return u
}

func TestRunRestartSetsFlowID(t *testing.T) {
	nav := &navRecorder{location: mustURL(t, "https://app.example.com/sign-in?flow=old")}
	got := RunRestart("new-id", nav.deps())
	if got != "/sign-in?flow=new-id" {
		t.Fatalf("unexpected restart path %q", got)
	}
	if len(nav.replaced) != 1 || nav.replaced[0] != "/sign-in?flow=new-id" {
		t.Fatalf("expected history replace, got %v", nav.replaced)
	}
	if nav.refreshes != 1 {
		t.Fatalf("expected one refresh, got %d", nav.refreshes)
	}
}

func TestRunRestartRemovesFlowID(t *testing.T) {
	nav := &navRecorder{location: mustURL(t, "/sign-in?flow=old")}
	if got := RunRestart("", nav.deps()); got != "/sign-in" {
		t.Fatalf("unexpected restart path %q", got)
	}
}

func TestRunRestartKeepsOtherParams(t *testing.T) {
	nav := &navRecorder{location: mustURL(t, "/recovery?return_to=%2Fdashboard&flow=old")}
	got := RunRestart("fresh", nav.deps())
	if got != "/recovery?flow=fresh&return_to=%2Fdashboard" {
		t.Fatalf("unexpected restart path %q", got)
	}
}

func TestRunRestartEmptyIDRemovesParam(t *testing.T) {
	nav := &navRecorder{location: mustURL(t, "/sign-in?flow=old")}
	if got := RunRestart("", nav.deps()); got != "/sign-in" {
		t.Fatalf("expected flow param removed, got %q", got)
	}
}

func TestRunRedirect(t *testing.T) {
	nav := &navRecorder{}
	RunRedirect("https://accounts.google.com/o/oauth2", true, nav.deps())
	if len(nav.assigned) != 1 || len(nav.pushed) != 0 || nav.refreshes != 0 {
		t.Fatalf("external redirect must only assign: %+v", nav)
	}

	RunRedirect("/dashboard", false, nav.deps())
	if len(nav.pushed) != 1 || nav.pushed[0] != "/dashboard" || nav.refreshes != 1 {
		t.Fatalf("internal redirect must push and refresh: %+v", nav)
	}
}

func TestIsExternalURL(t *testing.T) {
	base := "https://app.example.com"
	tests := []struct {
		target string
		want   bool
	}{
		{"/dashboard", false},
		{"", false},
		{"//evil.example.net/x", true},
		{"https://app.example.com/verify?flow=1", false},
		{"https://auth.example.com/self-service/methods/oidc", true},
	}
	for _, tt := range tests {
		if got := IsExternalURL(tt.target, base); got != tt.want {
			t.Fatalf("IsExternalURL(%q) = %v, want %v", tt.target, got, tt.want)
		}
	}
}

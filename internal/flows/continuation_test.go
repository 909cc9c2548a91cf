package flows

import (
	"testing"

	"github.com/MrEthical07/goFlow/flow"
)

func TestRunContinueWithRedirect(t *testing.T) {
	var gotURL string
	var gotExternal bool
	calls := 0
	deps := ContinuationDeps{Redirect: func(u string, ext bool) {
		calls++
		gotURL, gotExternal = u, ext
	}}

	handled := RunContinueWith([]flow.ContinueWith{
		{Action: flow.ActionSetOrySessionToken, OrySessionToken: "tok"},
		{Action: flow.ActionRedirectBrowserTo, RedirectBrowserTo: "https://app.example.com/welcome"},
	}, deps)
	if !handled || calls != 1 {
		t.Fatalf("expected handled redirect, handled=%v calls=%d", handled, calls)
	}
	if gotURL != "https://app.example.com/welcome" || !gotExternal {
		t.Fatalf("unexpected redirect %q external=%v", gotURL, gotExternal)
	}
}

func TestRunContinueWithNothingToDo(t *testing.T) {
	calls := 0
	deps := ContinuationDeps{Redirect: func(string, bool) { calls++ }}
	if RunContinueWith(nil, deps) {
		t.Fatal("expected unhandled for empty directives")
	}
	if RunContinueWith([]flow.ContinueWith{{Action: flow.ActionSetOrySessionToken}}, deps) {
		t.Fatal("session token directive must not be handled as navigation")
	}
	if calls != 0 {
		t.Fatalf("expected no redirect, got %d", calls)
	}
}

func TestResolveContinuationShowVerificationUI(t *testing.T) {
	deps := ContinuationDeps{
		Routes: map[flow.Type]string{flow.TypeVerification: "/verify"},
	}
	next, ok := ResolveContinuation([]flow.ContinueWith{
		{Action: flow.ActionShowVerificationUI, Flow: &flow.FlowPointer{ID: "vf-1"}},
	}, deps)
	if !ok {
		t.Fatal("expected verification continuation")
	}
	if next.URL != "/verify?flow=vf-1" || next.External {
		t.Fatalf("unexpected continuation %+v", next)
	}
}

func TestResolveContinuationPrefersBrowserRedirect(t *testing.T) {
	next, ok := ResolveContinuation([]flow.ContinueWith{
		{Action: flow.ActionShowVerificationUI, Flow: &flow.FlowPointer{ID: "vf-1", URL: "/verify?flow=vf-1"}},
		{Action: flow.ActionRedirectBrowserTo, RedirectBrowserTo: "https://example.com/after"},
	}, ContinuationDeps{})
	if !ok || next.URL != "https://example.com/after" {
		t.Fatalf("expected browser redirect to win, got %+v", next)
	}
}

package flows

import (
	"context"
	"errors"
	"testing"

	"github.com/MrEthical07/goFlow/flow"
)

type fakeLogoutProvider struct {
	createErr error
	submitErr error
	token     string
	submitted []string
}

func (p *fakeLogoutProvider) CreateLogoutFlow(context.Context) (flow.LogoutFlow, error) {
	if p.createErr != nil {
		return flow.LogoutFlow{}, p.createErr
	}
	return flow.LogoutFlow{LogoutToken: p.token}, nil
}

func (p *fakeLogoutProvider) SubmitLogout(_ context.Context, token string) error {
	p.submitted = append(p.submitted, token)
	return p.submitErr
}

func TestRunLogout(t *testing.T) {
	failed := errors.New("logout failed")
	tests := []struct {
		name       string
		provider   *fakeLogoutProvider
		wantErr    bool
		wantTarget string
	}{
		{name: "success", provider: &fakeLogoutProvider{token: "tok"}, wantTarget: "/sign-in"},
		{name: "create fails", provider: &fakeLogoutProvider{createErr: errors.New("down")}, wantErr: true},
		{name: "empty token", provider: &fakeLogoutProvider{}, wantErr: true},
		{name: "submit fails", provider: &fakeLogoutProvider{token: "tok", submitErr: errors.New("gone")}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var redirects []string
			err := RunLogout(context.Background(), LogoutDeps{
				Provider:   tt.provider,
				LoginRoute: "/sign-in",
				Redirect:   func(target string, _ bool) { redirects = append(redirects, target) },
				ErrFailed:  failed,
			})
			if tt.wantErr {
				if !errors.Is(err, failed) {
					t.Fatalf("expected wrapped logout failure, got %v", err)
				}
				if len(redirects) != 0 {
					t.Fatalf("failed logout must not navigate, got %v", redirects)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(redirects) != 1 || redirects[0] != tt.wantTarget {
				t.Fatalf("unexpected redirects %v", redirects)
			}
			if len(tt.provider.submitted) != 1 || tt.provider.submitted[0] != "tok" {
				t.Fatalf("expected token submission, got %v", tt.provider.submitted)
			}
		})
	}
}

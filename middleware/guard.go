package middleware

import (
	"net/http"
	"strings"

	goFlow "github.com/MrEthical07/goFlow"
	"github.com/MrEthical07/goFlow/jwt"
)

// DefaultCookieName is the cookie carrying a tokenized session when no
// Authorization header is present.
const DefaultCookieName = "goflow_session"

// Guard verifies the session token of each request and attaches the viewer
// to the request context. With required set, requests without a valid token
// are answered with 401; otherwise they pass through anonymously.
func Guard(verifier *jwt.Verifier, cookieName string, required bool) func(http.Handler) http.Handler {
	if cookieName == "" {
		cookieName = DefaultCookieName
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			viewer, ok := viewerFromRequest(verifier, r, cookieName)
			if !ok {
				if required {
					http.Error(w, "unauthorized", http.StatusUnauthorized)
					return
				}
				next.ServeHTTP(w, r)
				return
			}

			ctx := goFlow.WithViewer(r.Context(), viewer)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ViewerFromClaims maps verified session claims to a viewer.
func ViewerFromClaims(claims *jwt.SessionClaims) goFlow.Viewer {
	if claims == nil {
		return goFlow.Viewer{}
	}
	return goFlow.Viewer{
		IdentityID: claims.Subject,
		SessionID:  claims.SessionID,
		Email:      claims.Email,
		Name:       claims.Name,
		AvatarURL:  claims.Picture,
	}
}

func viewerFromRequest(verifier *jwt.Verifier, r *http.Request, cookieName string) (goFlow.Viewer, bool) {
	if verifier == nil {
		return goFlow.Viewer{}, false
	}

	token, ok := bearerToken(r.Header.Get("Authorization"))
	if !ok {
		c, err := r.Cookie(cookieName)
		if err != nil || c.Value == "" {
			return goFlow.Viewer{}, false
		}
		token = c.Value
	}

	claims, err := verifier.Verify(token)
	if err != nil {
		return goFlow.Viewer{}, false
	}
	return ViewerFromClaims(claims), true
}

func bearerToken(value string) (string, bool) {
	const bearer = "Bearer "
	if !strings.HasPrefix(value, bearer) {
		return "", false
	}

	token := strings.TrimSpace(value[len(bearer):])
	if token == "" {
		return "", false
	}

	return token, true
}

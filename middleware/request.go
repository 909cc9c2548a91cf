package middleware

import (
	"net"
	"net/http"
	"strings"

	goFlow "github.com/MrEthical07/goFlow"
	"github.com/google/uuid"
)

// RequestIDHeader is read for an inbound correlation id and echoed on the
// response.
const RequestIDHeader = "X-Request-Id"

// RequestContext copies the client IP, the user agent and a request id into
// the request context so audit events can carry them.
func RequestContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get(RequestIDHeader))
		if id == "" || len(id) > 128 {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)

		ctx := goFlow.WithRequestID(r.Context(), id)
		ctx = goFlow.WithUserAgent(ctx, r.UserAgent())
		ctx = goFlow.WithClientIP(ctx, clientIP(r))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

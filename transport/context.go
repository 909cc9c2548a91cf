package transport

import (
	"context"
	"net/http"
)

type cookieContextKey struct{}
type responseHeaderContextKey struct{}

// WithCookies attaches the browser's Cookie header to ctx. Every provider
// request made with ctx carries it.
func WithCookies(ctx context.Context, cookieHeader string) context.Context {
	return context.WithValue(ctx, cookieContextKey{}, cookieHeader)
}

// WithResponseHeader attaches h to ctx. Set-Cookie headers returned by the
// provider are appended to h so they can be relayed to the browser.
func WithResponseHeader(ctx context.Context, h http.Header) context.Context {
	return context.WithValue(ctx, responseHeaderContextKey{}, h)
}

func cookiesFromContext(ctx context.Context) string {
	v, _ := ctx.Value(cookieContextKey{}).(string)
	return v
}

func relayCookies(ctx context.Context, resp *http.Response) {
	h, ok := ctx.Value(responseHeaderContextKey{}).(http.Header)
	if !ok || h == nil {
		return
	}
	for _, c := range resp.Header.Values("Set-Cookie") {
		h.Add("Set-Cookie", c)
	}
}

package goFlow

import "context"

type clientIPContextKey struct{}
type userAgentContextKey struct{}
type requestIDContextKey struct{}
type viewerContextKey struct{}

// WithClientIP attaches the caller's IP address to ctx. The Engine copies it
// into audit events.
//
//	Docs: docs/audit.md
func WithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, clientIPContextKey{}, ip)
}

// WithUserAgent attaches the HTTP User-Agent string to ctx for audit events.
func WithUserAgent(ctx context.Context, userAgent string) context.Context {
	return context.WithValue(ctx, userAgentContextKey{}, userAgent)
}

// WithRequestID attaches a request correlation id to ctx. Audit events and
// coordinator log records carry it.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDContextKey{}, id)
}

// WithViewer attaches the signed-in identity to ctx.
func WithViewer(ctx context.Context, v Viewer) context.Context {
	return context.WithValue(ctx, viewerContextKey{}, v)
}

// ViewerFromContext returns the identity attached by [WithViewer].
func ViewerFromContext(ctx context.Context) (Viewer, bool) {
	if ctx == nil {
		return Viewer{}, false
	}
	v, ok := ctx.Value(viewerContextKey{}).(Viewer)
	return v, ok
}

func clientIPFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}

	ip, _ := ctx.Value(clientIPContextKey{}).(string)
	return ip
}

func userAgentFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}

	userAgent, _ := ctx.Value(userAgentContextKey{}).(string)
	return userAgent
}

func requestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}

	id, _ := ctx.Value(requestIDContextKey{}).(string)
	return id
}

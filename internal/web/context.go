package web

import (
	"context"
	"net/http"

	"github.com/Manjunath1607/Multi-Layer-Process-Log-Engine/internal/core"
)

// WithRequestMetadata adds the client IP and User-Agent to ctx so run logs
// can be traced back to a caller.
func WithRequestMetadata(ctx context.Context, r *http.Request) context.Context {
	ip := r.RemoteAddr // Already processed by middleware.TrustedRealIP
	ua := r.Header.Get("User-Agent")
	ctx = core.ContextWithIPAddress(ctx, ip)
	ctx = core.ContextWithUserAgent(ctx, ua)
	return ctx
}

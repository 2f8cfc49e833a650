package middleware

import (
	"net"

	"github.com/danielgtaylor/huma/v2"
)

// clientIP returns the caller address without its port. chi's RealIP
// middleware runs in front of huma, so proxy headers are already applied to
// the remote address.
func clientIP(ctx huma.Context) string {
	addr := ctx.RemoteAddr()

	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return addr
	}

	return host
}

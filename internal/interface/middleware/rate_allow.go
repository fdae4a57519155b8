package middleware

import (
	"net"

	"github.com/gin-gonic/gin"
)

// AllowPrivateIP bypasses limits for loopback and RFC 1918 callers, such as
// the in-cluster Prometheus scraper.
func AllowPrivateIP() AllowFunc {
	return func(c *gin.Context) bool {
		parsed := net.ParseIP(ipFromCtx(c))
		if parsed == nil {
			return false
		}
		return parsed.IsLoopback() || parsed.IsPrivate()
	}
}

// AllowAdmin bypasses limits for admin sessions. It must run after Auth.
func AllowAdmin() AllowFunc {
	return func(c *gin.Context) bool {
		return c.GetBool(CtxIsAdminKey)
	}
}

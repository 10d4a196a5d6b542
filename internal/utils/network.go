package utils

import (
	"net"
	"strings"

	"github.com/gin-gonic/gin"
)

// ClientIP returns the address of the caller behind any reverse proxies.
//
// X-Real-IP is preferred when it holds a public address, then the first public
// address in X-Forwarded-For, then gin's ClientIP (RemoteAddr).
func ClientIP(c *gin.Context) string {
	if realIP := strings.TrimSpace(c.GetHeader("X-Real-IP")); isPublicIP(realIP) {
		return realIP
	}

	if forwarded := c.GetHeader("X-Forwarded-For"); forwarded != "" {
		hops := strings.Split(forwarded, ",")
		for _, hop := range hops {
			if ip := strings.TrimSpace(hop); isPublicIP(ip) {
				return ip
			}
		}
		// every hop is private; the first one is still the closest guess
		if first := strings.TrimSpace(hops[0]); net.ParseIP(first) != nil {
			return first
		}
	}

	return c.ClientIP()
}

func isPublicIP(raw string) bool {
	ip := net.ParseIP(raw)
	if ip == nil {
		return false
	}
	return !ip.IsLoopback() && !ip.IsPrivate() && !ip.IsUnspecified()
}

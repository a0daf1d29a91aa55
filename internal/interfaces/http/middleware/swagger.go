package middleware

import (
	"net"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/storesync/backend/internal/interfaces/http/dto"
)

// SwaggerConfig controls access to the API documentation routes
type SwaggerConfig struct {
	Enabled    bool
	AllowedIPs []string // single IPs or CIDRs; empty allows every client
}

// SwaggerProtection guards the documentation routes. When disabled every
// request is answered 404, so the routes look absent. When AllowedIPs is
// set, clients outside the list get 403. Unparseable entries are ignored.
func SwaggerProtection(cfg SwaggerConfig) gin.HandlerFunc {
	var allowedNets []*net.IPNet
	var allowedIPs []net.IP
	for _, entry := range cfg.AllowedIPs {
		entry = strings.TrimSpace(entry)
		if strings.Contains(entry, "/") {
			if _, network, err := net.ParseCIDR(entry); err == nil {
				allowedNets = append(allowedNets, network)
			}
			continue
		}
		if ip := net.ParseIP(entry); ip != nil {
			allowedIPs = append(allowedIPs, ip)
		}
	}
	restricted := len(cfg.AllowedIPs) > 0

	return func(c *gin.Context) {
		if !cfg.Enabled {
			c.AbortWithStatusJSON(http.StatusNotFound, dto.NewErrorResponseWithRequestID(
				dto.ErrCodeNotFound,
				"API documentation is not available",
				GetRequestID(c),
			))
			return
		}

		if restricted && !isIPAllowed(clientIP(c), allowedIPs, allowedNets) {
			c.AbortWithStatusJSON(http.StatusForbidden, dto.NewErrorResponseWithRequestID(
				dto.ErrCodeForbidden,
				"Access to API documentation is restricted",
				GetRequestID(c),
			))
			return
		}

		c.Next()
	}
}

// clientIP prefers gin's proxy-aware ClientIP and falls back to RemoteAddr
func clientIP(c *gin.Context) net.IP {
	if ip := net.ParseIP(c.ClientIP()); ip != nil {
		return ip
	}
	host, _, err := net.SplitHostPort(c.Request.RemoteAddr)
	if err != nil {
		host = c.Request.RemoteAddr
	}
	return net.ParseIP(host)
}

func isIPAllowed(ip net.IP, allowedIPs []net.IP, allowedNets []*net.IPNet) bool {
	if ip == nil {
		return false
	}
	for _, allowed := range allowedIPs {
		if allowed.Equal(ip) {
			return true
		}
	}
	for _, network := range allowedNets {
		if network.Contains(ip) {
			return true
		}
	}
	return false
}

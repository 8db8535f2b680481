package handler

import "github.com/gin-gonic/gin"

// requestOrigin rebuilds scheme://host for the incoming request, honoring a
// reverse proxy's X-Forwarded-Proto.
func requestOrigin(c *gin.Context) string {
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	if proto := c.GetHeader("X-Forwarded-Proto"); proto == "https" || proto == "http" {
		scheme = proto
	}
	return scheme + "://" + c.Request.Host
}

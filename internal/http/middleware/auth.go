// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file provides bearer-token authentication for the partner API. The
// token itself is opaque to the middleware: a TokenParser (the services
// token issuer in production) validates it and yields the partner identity.
package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// partnerIDKey is the Gin context key under which the authenticated partner
// id is stored. Downstream middleware (rate limiting, logging) and handlers
// read it via PartnerIDFrom.
const partnerIDKey = "partnerID"

// TokenParser validates a bearer token and returns the partner id it was
// issued for.
type TokenParser func(token string) (partnerID string, err error)

// Auth returns a Gin middleware that requires a valid Authorization header
// of the form "Bearer <token>". On success the partner id is stored in the
// context; otherwise the request is aborted with 401 and a JSON error body.
func Auth(parse TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c.GetHeader("Authorization"))
		if token == "" {
			unauthorized(c, "missing bearer token")
			return
		}
		partnerID, err := parse(token)
		if err != nil {
			unauthorized(c, "invalid or expired token")
			return
		}
		c.Set(partnerIDKey, partnerID)
		c.Next()
	}
}

// PartnerIDFrom returns the authenticated partner id set by Auth, or ""
// when the request is unauthenticated.
func PartnerIDFrom(c *gin.Context) string {
	if v, ok := c.Get(partnerIDKey); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// bearerToken extracts the token from an Authorization header value.
// Returns "" for anything that is not a "Bearer <token>" pair.
func bearerToken(header string) string {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func unauthorized(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"request_id": c.Writer.Header().Get(requestIDHeader),
		"code":       "unauthorized",
		"message":    msg,
	})
}

package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/authgate/authgate/internal/tokens"
	"github.com/authgate/authgate/pkg/logger"
	"github.com/authgate/authgate/pkg/metrics"
)

// ClaimsKey is the gin context key verified session claims are stored under.
const ClaimsKey = "claims"

// Verifier is the minimal interface the gate depends on. Satisfied by
// *tokens.Codec and by test fakes.
type Verifier interface {
	Verify(raw string) *tokens.SessionClaims
}

// AuthMiddleware returns a Gin middleware that verifies Bearer tokens using
// the provided verifier. All failures map to a bodyless 401; the cause stays
// in logs and the rejection counter only.
func AuthMiddleware(ver Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := c.GetHeader("Authorization")
		if auth == "" {
			logger.Infof("auth gate: missing Authorization header path=%s", c.Request.URL.Path)
			metrics.AuthRejections.WithLabelValues("missing_header").Inc()
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}

		// Prefix stripping is best-effort: a value without "Bearer " is handed
		// to the verifier as-is and fails there unless it is itself a token.
		raw := strings.TrimPrefix(auth, "Bearer ")

		claims := ver.Verify(raw)
		if claims == nil {
			logger.Infof("auth gate: invalid or expired token path=%s", c.Request.URL.Path)
			metrics.AuthRejections.WithLabelValues("invalid_token").Inc()
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}

		c.Set(ClaimsKey, claims)
		c.Next()
	}
}

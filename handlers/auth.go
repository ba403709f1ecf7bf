package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/authgate/authgate/internal/config"
	"github.com/authgate/authgate/internal/oauth"
	"github.com/authgate/authgate/internal/tokens"
	"github.com/authgate/authgate/internal/users"
	"github.com/authgate/authgate/pkg/logger"
	"github.com/authgate/authgate/pkg/metrics"
	"github.com/authgate/authgate/pkg/middleware"
)

// AuthHandler holds dependencies
type AuthHandler struct {
	cfg      *config.Config
	oauth    *oauth.Client
	usersSvc *users.Service
	codec    *tokens.Codec
}

func NewAuthHandler(cfg *config.Config, oc *oauth.Client, u *users.Service, codec *tokens.Codec) *AuthHandler {
	return &AuthHandler{cfg: cfg, oauth: oc, usersSvc: u, codec: codec}
}

// Register mounts routes under /api/v1
func (h *AuthHandler) Register(rg *gin.RouterGroup) {
	v1 := rg.Group("/api/v1")
	v1.GET("/users/oauth/google", h.GoogleLogin)
	v1.GET("/whoami", middleware.AuthMiddleware(h.codec), h.WhoAmI)
}

// GoogleLogin exchanges the authorization code for a provider identity,
// reconciles it against the user store and answers with a signed session
// token. Exchange, validation, reconciliation and issuance failures all map
// to a null-body 500; the failing stage is recorded internally only.
func (h *AuthHandler) GoogleLogin(c *gin.Context) {
	code := c.Query("code")
	if code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "code query parameter is required"})
		return
	}

	identity, err := h.oauth.PerformLogin(c.Request.Context(), code)
	if err != nil {
		logger.Errorf("google login: exchange failed: %v", err)
		metrics.Logins.WithLabelValues("exchange_failed").Inc()
		c.JSON(http.StatusInternalServerError, nil)
		return
	}
	if err := identity.Validate(); err != nil {
		logger.Warnf("google login: identity rejected: %v", err)
		metrics.Logins.WithLabelValues("identity_rejected").Inc()
		c.JSON(http.StatusInternalServerError, nil)
		return
	}

	user, err := h.usersSvc.Reconcile(c.Request.Context(), identity)
	if err != nil {
		logger.Errorf("google login: reconciliation failed: %v", err)
		metrics.Logins.WithLabelValues("reconcile_failed").Inc()
		c.JSON(http.StatusInternalServerError, nil)
		return
	}

	access, err := h.codec.Issue(user)
	if err != nil {
		logger.Errorf("google login: token issuance failed: %v", err)
		metrics.Logins.WithLabelValues("issue_failed").Inc()
		c.JSON(http.StatusInternalServerError, nil)
		return
	}

	metrics.Logins.WithLabelValues("success").Inc()
	c.JSON(http.StatusOK, gin.H{"access_token": access})
}

// WhoAmI echoes the verified session claims attached by the gate.
func (h *AuthHandler) WhoAmI(c *gin.Context) {
	claims, ok := c.Get(middleware.ClaimsKey)
	if !ok {
		// unreachable behind the gate; kept as a guard
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}
	c.JSON(http.StatusOK, claims)
}

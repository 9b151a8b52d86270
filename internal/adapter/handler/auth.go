package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cartec/catalog/internal/core/domain"
)

const (
	sessionCookie = "token"
	stateCookie   = "oauth_state"
	stateTTL      = 10 * time.Minute

	identityKey   = "identity"
	capabilityKey = "capability"
)

// Login sends the browser to the identity provider.
func (h *HTTPHandler) Login(c *gin.Context) {
	state := uuid.NewString()
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(stateCookie, state, int(stateTTL.Seconds()), "/", "", h.secureCookies, true)
	c.Redirect(http.StatusFound, h.provider.AuthCodeURL(state))
}

func (h *HTTPHandler) Callback(c *gin.Context) {
	state, err := c.Cookie(stateCookie)
	if err != nil || state == "" || state != c.Query("state") {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "sign-in state mismatch", Back: "/"})
		return
	}
	c.SetCookie(stateCookie, "", -1, "/", "", h.secureCookies, true)

	id, err := h.provider.Exchange(c.Request.Context(), c.Query("code"))
	if err != nil {
		h.logger.Warn("sign-in failed", zap.Error(err))
		c.JSON(http.StatusBadGateway, ErrorResponse{Error: "sign-in failed", Back: "/"})
		return
	}

	token, err := h.sessions.Issue(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}

	h.logger.Info("user signed in", zap.String("uid", id.UID), zap.Bool("admin", h.policy.IsAdmin(id)))
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(sessionCookie, token, int(h.sessions.TTL().Seconds()), "/", "", h.secureCookies, true)
	c.Redirect(http.StatusFound, "/")
}

func (h *HTTPHandler) Logout(c *gin.Context) {
	if token := sessionToken(c); token != "" {
		if err := h.sessions.Revoke(c.Request.Context(), token); err != nil {
			h.logger.Debug("revoking session", zap.Error(err))
		}
	}
	c.SetCookie(sessionCookie, "", -1, "/", "", h.secureCookies, true)
	c.JSON(http.StatusOK, gin.H{"status": "signed out"})
}

// Me reports the signed-in user, or a null user for visitors.
func (h *HTTPHandler) Me(c *gin.Context) {
	id, ok := currentIdentity(c)
	if !ok {
		c.JSON(http.StatusOK, gin.H{"user": nil, "isAdmin": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": id, "isAdmin": h.policy.IsAdmin(id)})
}

// loadSession attaches the identity behind a valid session token, if any.
// Requests without one continue as visitors.
func (h *HTTPHandler) loadSession(c *gin.Context) {
	token := sessionToken(c)
	if token == "" {
		c.Next()
		return
	}

	id, err := h.sessions.Identity(c.Request.Context(), token)
	if err != nil {
		h.logger.Debug("ignoring session", zap.Error(err))
		c.Next()
		return
	}
	c.Set(identityKey, id)
	c.Next()
}

// requireAdmin admits only signed-in users on the allow-list and hands the
// capability to the handlers.
func (h *HTTPHandler) requireAdmin(c *gin.Context) {
	id, ok := currentIdentity(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: "sign in required"})
		return
	}

	capability, err := h.policy.Authorize(id)
	if err != nil {
		h.logger.Warn("admin access denied", zap.String("uid", id.UID), zap.String("email", id.Email))
		c.AbortWithStatusJSON(http.StatusForbidden, ErrorResponse{Error: "not authorized"})
		return
	}
	c.Set(capabilityKey, capability)
	c.Next()
}

func sessionToken(c *gin.Context) string {
	if token, err := c.Cookie(sessionCookie); err == nil && token != "" {
		return token
	}
	if token, ok := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer "); ok {
		return strings.TrimSpace(token)
	}
	return ""
}

func currentIdentity(c *gin.Context) (domain.Identity, bool) {
	v, ok := c.Get(identityKey)
	if !ok {
		return domain.Identity{}, false
	}
	id, ok := v.(domain.Identity)
	return id, ok
}

func currentCapability(c *gin.Context) domain.AdminCapability {
	v, _ := c.Get(capabilityKey)
	capability, _ := v.(domain.AdminCapability)
	return capability
}

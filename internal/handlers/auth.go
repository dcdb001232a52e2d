package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/myaralbdany4-glitch/MoodLens/internal/clients/identity"
	"github.com/myaralbdany4-glitch/MoodLens/internal/logger"
	"github.com/myaralbdany4-glitch/MoodLens/internal/services"
)

// sessionCookieMaxAge is 60 days, matching the identity service's own
// session lifetime.
const sessionCookieMaxAge = 60 * 24 * 60 * 60

type AuthHandler struct {
	log         *logger.Logger
	authService services.AuthService
}

func NewAuthHandler(log *logger.Logger, authService services.AuthService) *AuthHandler {
	return &AuthHandler{log: log.With("handler", "AuthHandler"), authService: authService}
}

func (ah *AuthHandler) GetRedirectURL(c *gin.Context) {
	url, err := ah.authService.RedirectURL(c.Request.Context())
	if err != nil {
		RespondAPIError(c, err, "redirect_url_failed")
		return
	}
	RespondOK(c, gin.H{"redirectUrl": url})
}

func (ah *AuthHandler) CreateSession(c *gin.Context) {
	var req struct {
		Code string `json:"code"`
	}
	// a missing or empty code is reported by the service, not the bind
	_ = c.ShouldBindJSON(&req)

	token, err := ah.authService.ExchangeCode(c.Request.Context(), req.Code)
	if err != nil {
		RespondAPIError(c, err, "session_create_failed")
		return
	}

	setSessionCookie(c, token, sessionCookieMaxAge)
	RespondOK(c, gin.H{"success": true})
}

func (ah *AuthHandler) Logout(c *gin.Context) {
	if token, err := c.Cookie(identity.SessionTokenCookieName); err == nil && token != "" {
		if err := ah.authService.Logout(c.Request.Context(), token); err != nil {
			ah.log.Warn("remote session delete failed", "error", err)
		}
	}
	setSessionCookie(c, "", -1)
	RespondOK(c, gin.H{"success": true})
}

// setSessionCookie writes the token as HttpOnly, Secure and SameSite=None so
// the cookie survives the cross-site OAuth redirect.
func setSessionCookie(c *gin.Context, token string, maxAge int) {
	c.SetSameSite(http.SameSiteNoneMode)
	c.SetCookie(identity.SessionTokenCookieName, token, maxAge, "/", "", true, true)
}

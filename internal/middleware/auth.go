package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/myaralbdany4-glitch/MoodLens/internal/apierr"
	"github.com/myaralbdany4-glitch/MoodLens/internal/clients/identity"
	"github.com/myaralbdany4-glitch/MoodLens/internal/logger"
	"github.com/myaralbdany4-glitch/MoodLens/internal/requestdata"
	"github.com/myaralbdany4-glitch/MoodLens/internal/services"
)

type AuthMiddleware struct {
	log            *logger.Logger
	authService    services.AuthService
	profileService services.ProfileService
}

func NewAuthMiddleware(log *logger.Logger, authService services.AuthService, profileService services.ProfileService) *AuthMiddleware {
	middlewareLog := log.With("middleware", "AuthMiddleware")
	return &AuthMiddleware{log: middlewareLog, authService: authService, profileService: profileService}
}

// RequireAuth resolves the session cookie against the identity service and
// puts the caller's identity on the request context. The profile row is
// bootstrapped here so every authenticated handler can assume it exists.
func (am *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, _ := c.Cookie(identity.SessionTokenCookieName)
		ident, err := am.authService.ResolveToken(c.Request.Context(), tokenString)
		if err != nil {
			// 401 only when the caller's identity is unresolvable; an
			// identity-service outage is not the caller's fault.
			if apiErr := apierr.From(err); apiErr != nil && apiErr.Status != http.StatusUnauthorized {
				am.log.Error("identity resolution failed", "error", err)
				c.AbortWithStatusJSON(apiErr.Status, gin.H{"error": "Internal server error"})
				return
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		if err := am.profileService.Bootstrap(c.Request.Context(), ident.ID); err != nil {
			am.log.Error("profile bootstrap failed", "user_id", ident.ID, "error", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}

		ctx := requestdata.WithRequestData(c.Request.Context(), &requestdata.RequestData{
			TokenString: tokenString,
			UserID:      ident.ID,
			Identity:    ident,
		})
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

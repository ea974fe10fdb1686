package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	"popcornhour/internal/apperr"
	"popcornhour/internal/microservices/http-api/service"
	"popcornhour/internal/pkg/logger"
	"popcornhour/internal/shared"
)

const (
	principalKey = "principal"
	tokenKey     = "sessionToken"
)

// SessionMiddleware resolves the session token, if any, into a principal.
// It never rejects a request: anonymous callers continue without a principal
// and each service operation applies its own guard.
func SessionMiddleware(authService service.AuthService, cookieName string, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c, cookieName)
		if token == "" {
			c.Next()
			return
		}
		c.Set(tokenKey, token)

		principal, err := authService.ResolveSession(c.Request.Context(), token)
		if err != nil {
			if !errors.Is(err, apperr.ErrAuthenticationRequired) {
				log.Error("failed to resolve session", "error", err)
			}
			c.Next()
			return
		}

		c.Set(principalKey, principal)

		c.Next()
	}
}

// extractToken prefers "Authorization: Bearer <token>" over the session cookie.
func extractToken(c *gin.Context, cookieName string) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2) // 0 is Bearer, 1 is token
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
	}
	if cookieName == "" {
		return ""
	}
	if cookie, err := c.Cookie(cookieName); err == nil {
		return cookie
	}
	return ""
}

// PrincipalFrom returns the caller's principal, nil when anonymous.
func PrincipalFrom(c *gin.Context) *shared.Principal {
	v, ok := c.Get(principalKey)
	if !ok {
		return nil
	}
	p, _ := v.(*shared.Principal)
	return p
}

// TokenFrom returns the raw session token presented with the request.
func TokenFrom(c *gin.Context) string {
	return c.GetString(tokenKey)
}

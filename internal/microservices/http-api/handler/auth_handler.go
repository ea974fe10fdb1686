package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"popcornhour/internal/microservices/http-api/dto"
	"popcornhour/internal/microservices/http-api/middleware"
	"popcornhour/internal/microservices/http-api/service"
	"popcornhour/internal/pkg/logger"
)

// CookieConfig controls the session cookie set at login.
type CookieConfig struct {
	Name   string
	Secure bool
}

type AuthHandler struct {
	authService service.AuthService
	cookie      CookieConfig
	log         *logger.Logger
}

func NewAuthHandler(authService service.AuthService, cookie CookieConfig, log *logger.Logger) *AuthHandler {
	return &AuthHandler{authService: authService, cookie: cookie, log: log}
}

func (h *AuthHandler) RegisterRoutes(rg *gin.RouterGroup) {
	auth := rg.Group("/auth")
	{
		auth.POST("/register", h.Register)
		auth.POST("/login", h.Login)
		auth.POST("/logout", h.Logout)
	}
}

// Register creates a standard account; the caller must log in afterwards.
// POST /api/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, h.log, badBody())
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	user, err := h.authService.Register(ctx, service.RegisterInput{
		Username:        req.Username,
		Email:           req.Email,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
	})
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	c.JSON(http.StatusCreated, dto.RegisterResponse{
		ID:       user.ID,
		Username: user.Username,
		Email:    user.Email,
		Role:     string(user.Role),
		Message:  "Registration successful, please log in",
	})
}

// Login opens a session and returns its token; the token is also set as a cookie.
// POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, h.log, badBody())
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	sess, err := h.authService.Login(ctx, req.Email, req.Password)
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	maxAge := int(time.Until(sess.ExpiresAt).Seconds())
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookie.Name, sess.Token, maxAge, "/", "", h.cookie.Secure, true)

	c.JSON(http.StatusOK, dto.LoginResponse{
		Token:     sess.Token,
		ExpiresAt: sess.ExpiresAt,
		UserID:    sess.Principal.UserID,
		Username:  sess.Principal.Username,
		Role:      string(sess.Principal.Role),
	})
}

// Logout always succeeds so a stale client can clear its state.
// POST /api/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.authService.Logout(ctx, middleware.TokenFrom(c)); err != nil {
		h.log.Warn("logout failed", "error", err)
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookie.Name, "", -1, "/", "", h.cookie.Secure, true)
	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/librarium/librarium/internal/auth"
	"github.com/librarium/librarium/internal/config"
)

type AuthController struct {
	service *auth.Service
	config  config.Auth
	log     *logrus.Logger
}

func NewAuthController(service *auth.Service, cfg config.Auth, log *logrus.Logger) *AuthController {
	return &AuthController{service: service, config: cfg, log: log}
}

// Login verifies credentials and sets the access-token cookie.
// POST /api/auth/login
func (ac *AuthController) Login(c *gin.Context) {
	var req struct {
		Login    string `json:"login" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "login and password are required")
		return
	}

	token, role, err := ac.service.Login(req.Login, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "invalid credentials"})
			return
		}
		respondInternalError(c, ac.log, err, "login")
		return
	}

	maxAge := int(ac.config.TokenLifetime.Seconds())
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(auth.CookieName, token, maxAge, "/", "", ac.config.SecureCookies, true)

	c.JSON(http.StatusOK, gin.H{"role": role})
}

// Logout clears the access-token cookie.
// POST /api/auth/logout
func (ac *AuthController) Logout(c *gin.Context) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(auth.CookieName, "", -1, "/", "", ac.config.SecureCookies, true)
	respondSuccess(c, "logged out")
}

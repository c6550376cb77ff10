package rest

import (
	"errors"
	"net/http"
	"time"

	"github.com/KevinKickass/OpenLaundryCore/internal/auth"
	"github.com/KevinKickass/OpenLaundryCore/internal/types"
	"github.com/gin-gonic/gin"
)

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"` // seconds
}

// POST /api/v1/auth/login
func (s *Server) login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, types.NewErrorResponse("AUTH_400", "Invalid request body", err.Error()))
		return
	}

	token, expiresAt, err := s.authService.Login(req.Username, req.Password, c.ClientIP())
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, types.NewErrorResponse(types.CodeUnauthorized, "Invalid credentials", nil))
			return
		}
		c.JSON(http.StatusInternalServerError, types.NewErrorResponse(types.CodeInternal, "Login failed", err.Error()))
		return
	}

	c.JSON(http.StatusOK, LoginResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int(time.Until(expiresAt).Seconds()),
	})
}

// GET /api/v1/auth/me
func (s *Server) getCurrentUser(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"username":    c.GetString(auth.ContextUsername),
		"role":        c.GetString(auth.ContextRole),
		"permissions": c.MustGet(auth.ContextPermissions),
	})
}

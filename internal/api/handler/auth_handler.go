package handler

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/emanuel-malungo/jomorais/internal/dto"
	"github.com/emanuel-malungo/jomorais/internal/service"
	apperrors "github.com/emanuel-malungo/jomorais/pkg/errors"
	"github.com/emanuel-malungo/jomorais/pkg/response"
)

// AuthHandler authentication endpoints.
type AuthHandler struct {
	authSvc service.AuthService
}

// NewAuthHandler creates an AuthHandler.
func NewAuthHandler(authSvc service.AuthService) *AuthHandler {
	return &AuthHandler{authSvc: authSvc}
}

// Login POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Indique um email válido e a palavra-passe")
		return
	}

	result, err := h.authSvc.Login(c.Request.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			response.Unauthorized(c, "Email ou palavra-passe incorrectos")
		case errors.Is(err, service.ErrUserInactive):
			response.Forbidden(c, "Utilizador desactivado")
		default:
			_ = c.Error(err)
			response.InternalError(c)
		}
		return
	}

	response.OK(c, result)
}

// Logout POST /api/auth/logout
// Revokes the presented token for the rest of its lifetime.
func (h *AuthHandler) Logout(c *gin.Context) {
	claims, ok := MustGetClaims(c)
	if !ok {
		return
	}

	var remaining time.Duration
	if claims.ExpiresAt != nil {
		remaining = time.Until(claims.ExpiresAt.Time)
	}
	if err := h.authSvc.Logout(c.Request.Context(), claims.ID, remaining); err != nil {
		_ = c.Error(err)
		response.InternalError(c)
		return
	}

	response.OKMessage(c, "Sessão terminada", nil)
}

// GetCurrentUser GET /api/auth/me
func (h *AuthHandler) GetCurrentUser(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	user, err := h.authSvc.GetCurrentUser(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			response.NotFound(c, "Utilizador não encontrado")
			return
		}
		_ = c.Error(err)
		response.InternalError(c)
		return
	}

	response.OK(c, user)
}

package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/emanuel-malungo/jomorais/internal/api/middleware"
	"github.com/emanuel-malungo/jomorais/pkg/jwt"
	"github.com/emanuel-malungo/jomorais/pkg/response"
)

// MustGetUserID extracts the authenticated user id. When JWTAuth did not run
// it writes a 401 and returns false; callers return immediately.
func MustGetUserID(c *gin.Context) (int64, bool) {
	v, exists := c.Get(middleware.CtxUserID)
	if !exists {
		response.Unauthorized(c, "Autenticação necessária")
		return 0, false
	}
	id, ok := v.(int64)
	if !ok || id <= 0 {
		response.Unauthorized(c, "Autenticação necessária")
		return 0, false
	}
	return id, true
}

// MustGetClaims extracts the parsed token claims.
func MustGetClaims(c *gin.Context) (*jwt.Claims, bool) {
	v, exists := c.Get(middleware.CtxClaims)
	if !exists {
		response.Unauthorized(c, "Autenticação necessária")
		return nil, false
	}
	claims, ok := v.(*jwt.Claims)
	if !ok || claims == nil {
		response.Unauthorized(c, "Autenticação necessária")
		return nil, false
	}
	return claims, true
}

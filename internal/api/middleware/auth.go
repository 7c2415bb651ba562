package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/emanuel-malungo/jomorais/pkg/jwt"
	"github.com/emanuel-malungo/jomorais/pkg/response"
)

// Context keys set by JWTAuth.
const (
	CtxUserID = "user_id"
	CtxPerfil = "perfil"
	CtxClaims = "claims"
)

// TokenBlacklist reports tokens revoked by logout. Nil disables the check.
type TokenBlacklist interface {
	IsBlacklisted(ctx context.Context, jti string) (bool, error)
}

// JWTAuth validates the Authorization: Bearer <token> header and injects the
// caller's identity into the context.
func JWTAuth(jwtMgr *jwt.Manager, blacklist TokenBlacklist) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Unauthorized(c, "Autenticação necessária")
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			response.Unauthorized(c, "Cabeçalho de autenticação inválido")
			c.Abort()
			return
		}

		claims, err := jwtMgr.ParseToken(parts[1])
		if err != nil {
			response.Unauthorized(c, "Sessão inválida ou expirada")
			c.Abort()
			return
		}

		// redis errors fail open, same as the rate limiter
		if blacklist != nil {
			if revoked, err := blacklist.IsBlacklisted(c.Request.Context(), claims.ID); err == nil && revoked {
				response.Unauthorized(c, "Sessão terminada")
				c.Abort()
				return
			}
		}

		c.Set(CtxUserID, claims.UserID)
		c.Set(CtxPerfil, claims.Perfil)
		c.Set(CtxClaims, claims)

		c.Next()
	}
}

// RoleAuth allows only callers whose perfil is one of allowed.
func RoleAuth(allowed ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		perfil := c.GetString(CtxPerfil)
		if perfil == "" {
			response.Unauthorized(c, "Autenticação necessária")
			c.Abort()
			return
		}

		for _, p := range allowed {
			if perfil == p {
				c.Next()
				return
			}
		}

		response.Forbidden(c, "Sem permissão para esta operação")
		c.Abort()
	}
}

package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/emanuel-malungo/jomorais/config"
	"github.com/emanuel-malungo/jomorais/internal/api/handler"
	"github.com/emanuel-malungo/jomorais/internal/api/middleware"
	"github.com/emanuel-malungo/jomorais/internal/model"
	"github.com/emanuel-malungo/jomorais/pkg/jwt"
	"github.com/emanuel-malungo/jomorais/pkg/redis"
)

const maxBodyBytes = 1 << 20

// Setup builds the API engine.
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, rdb *redis.Client, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	// a nil *redis.Client must not become a non-nil interface
	var (
		blacklist middleware.TokenBlacklist
		limiter   middleware.Limiter
	)
	if rdb != nil {
		blacklist = rdb
		limiter = rdb
	}

	r := gin.New()

	// ── global middleware ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.BodyLimit(maxBodyBytes))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")

	// ── auth (public) ──
	api.POST("/auth/login", middleware.RateLimit(limiter, 10, time.Minute), h.Auth.Login)

	authorized := api.Group("")
	authorized.Use(middleware.JWTAuth(jwtMgr, blacklist))

	authorized.POST("/auth/logout", h.Auth.Logout)
	authorized.GET("/auth/me", h.Auth.GetCurrentUser)

	secretaria := middleware.RoleAuth(model.PerfilAdmin, model.PerfilSecretaria)
	financeiro := middleware.RoleAuth(model.PerfilAdmin, model.PerfilFinanceiro)
	admin := middleware.RoleAuth(model.PerfilAdmin)

	// ── académico ──
	academico := authorized.Group("/academico")
	h.Curso.Register(academico.Group("/cursos"), secretaria)
	h.Disciplina.Register(academico.Group("/disciplinas"), secretaria)
	h.Classe.Register(academico.Group("/classes"), secretaria)
	turmas := academico.Group("/turmas")
	h.Turma.Register(turmas, secretaria)
	turmas.GET("/:id/lista.xlsx", h.Export.ExportRoster)
	h.Aluno.Register(academico.Group("/alunos"), secretaria)
	h.Professor.Register(academico.Group("/professores"), secretaria)

	// ── finanças ──
	financas := authorized.Group("/financas")
	h.Servico.Register(financas.Group("/servicos"), financeiro)
	h.Pagamento.Register(financas.Group("/pagamentos"), financeiro)
	h.NotaCredito.Register(financas.Group("/notas-credito"), financeiro)
	financas.GET("/saft", financeiro, h.Export.ExportSAFT)

	// ── utilizadores ──
	utilizadores := authorized.Group("/utilizadores", admin)
	h.Utilizador.Register(utilizadores.Group("/utilizadores"))

	return r
}

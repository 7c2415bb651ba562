// Package console is the server-rendered administration application. It
// reaches the data only through the REST API.
package console

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/emanuel-malungo/jomorais/config"
	"github.com/emanuel-malungo/jomorais/internal/api/middleware"
	"github.com/emanuel-malungo/jomorais/internal/client"
	"github.com/emanuel-malungo/jomorais/internal/document"
	"github.com/emanuel-malungo/jomorais/internal/model"
)

//go:embed templates/*.html
var templatesFS embed.FS

// Console serves the administration pages.
type Console struct {
	cfg      *config.Config
	api      *client.Client
	inst     document.Institution
	notifier Notifier
	logger   *zap.Logger
	now      func() time.Time
	operator string

	tmpl     *template.Template
	upgrader websocket.Upgrader
	nav      []navGroup
	res      resources
}

// Option customises a Console.
type Option func(*Console)

// WithNotifier replaces the flash-cookie notifier.
func WithNotifier(n Notifier) Option {
	return func(c *Console) { c.notifier = n }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(c *Console) { c.now = now }
}

// WithOperator sets the name printed as operator on receipts.
func WithOperator(name string) Option {
	return func(c *Console) { c.operator = name }
}

// New builds the console over an authenticated API client.
func New(cfg *config.Config, api *client.Client, inst document.Institution, logger *zap.Logger, opts ...Option) (*Console, error) {
	c := &Console{
		cfg:      cfg,
		api:      api,
		inst:     inst,
		notifier: FlashNotifier{},
		logger:   logger,
		now:      time.Now,
		res:      newResources(api),
	}
	for _, opt := range opts {
		opt(c)
	}

	tmpl, err := template.New("").Funcs(templateFuncs).ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	c.tmpl = tmpl
	return c, nil
}

var templateFuncs = template.FuncMap{
	"lower":     strings.ToLower,
	"pageSizes": func() []int { return []int{10, 25, 50, 100} },
}

// Engine wires middleware and every page.
func (c *Console) Engine() *gin.Engine {
	r := gin.New()
	r.SetHTMLTemplate(c.tmpl)
	c.nav = nil

	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(c.logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.BodyLimit(1 << 20))

	r.GET("/health", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/", func(ctx *gin.Context) {
		ctx.Redirect(http.StatusFound, "/academico/alunos")
	})

	// ── resources ──
	mount(c, r, c.cursoDef())
	mount(c, r, c.disciplinaDef())
	mount(c, r, c.classeDef())
	mount(c, r, c.turmaDef())
	mount(c, r, c.alunoDef())
	mount(c, r, c.professorDef())
	mount(c, r, c.servicoDef())
	mount(c, r, c.pagamentoDef())
	mount(c, r, c.notaCreditoDef())
	mount(c, r, c.utilizadorDef())

	// ── documents ──
	r.GET("/financas/pagamentos/:id/recibo", c.receiptHTML)
	r.GET("/financas/pagamentos/:id/recibo.pdf", c.receiptPDF)
	r.GET("/academico/turmas/:id/lista.pdf", c.rosterPDF)
	r.GET("/academico/turmas/:id/lista.xlsx", c.rosterXLSX)
	r.GET("/financas/saft", c.saft)

	r.NoRoute(func(ctx *gin.Context) {
		c.render(ctx, http.StatusNotFound, "notfound", c.page(ctx, "Página não encontrada", ""), gin.H{
			"Message": "A página pedida não existe.",
			"Back":    "/",
		})
	})

	return r
}

// ── rendering ──

type navLink struct {
	Label string
	Href  string
}

type navGroup struct {
	Label string
	Links []navLink
}

type pageData struct {
	Title     string
	Active    string
	Nav       []navGroup
	Flash     *Notification
	RequestID string
	Year      int
}

func (c *Console) page(ctx *gin.Context, title, active string) pageData {
	return pageData{
		Title:     title,
		Active:    active,
		Nav:       c.nav,
		Flash:     c.notifier.Pop(ctx),
		RequestID: ctx.GetString(middleware.CtxRequestID),
		Year:      c.now().Year(),
	}
}

// render executes a named page template with the layout data under .Page.
func (c *Console) render(ctx *gin.Context, status int, name string, p pageData, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	data["Page"] = p
	ctx.HTML(status, name, data)
}

// renderFragment executes a template into a string (websocket pushes).
func (c *Console) renderFragment(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := c.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func (c *Console) notFound(ctx *gin.Context, message, back string) {
	c.render(ctx, http.StatusNotFound, "notfound", c.page(ctx, "Não encontrado", back), gin.H{
		"Message": message,
		"Back":    back,
	})
}

func (c *Console) failure(ctx *gin.Context, err error, back string) {
	c.logger.Warn("console request failed",
		zap.String("path", ctx.Request.URL.Path),
		zap.String("request_id", ctx.GetString(middleware.CtxRequestID)),
		zap.Error(err),
	)
	c.render(ctx, http.StatusBadGateway, "error", c.page(ctx, "Erro", back), gin.H{
		"Message": client.Message(err),
		"Back":    back,
		"Retry":   ctx.Request.URL.RequestURI(),
	})
}

// ── typed API resources ──

type resources struct {
	cursos       *client.Resource[model.Curso]
	disciplinas  *client.Resource[model.Disciplina]
	classes      *client.Resource[model.Classe]
	turmas       *client.Resource[model.Turma]
	alunos       *client.Resource[model.Aluno]
	professores  *client.Resource[model.Professor]
	servicos     *client.Resource[model.Servico]
	pagamentos   *client.Resource[model.Pagamento]
	notasCredito *client.Resource[model.NotaCredito]
	utilizadores *client.Resource[model.Utilizador]
}

func newResources(api *client.Client) resources {
	return resources{
		cursos:       client.NewResource[model.Curso](api, "/api/academico/cursos"),
		disciplinas:  client.NewResource[model.Disciplina](api, "/api/academico/disciplinas"),
		classes:      client.NewResource[model.Classe](api, "/api/academico/classes"),
		turmas:       client.NewResource[model.Turma](api, "/api/academico/turmas"),
		alunos:       client.NewResource[model.Aluno](api, "/api/academico/alunos"),
		professores:  client.NewResource[model.Professor](api, "/api/academico/professores"),
		servicos:     client.NewResource[model.Servico](api, "/api/financas/servicos"),
		pagamentos:   client.NewResource[model.Pagamento](api, "/api/financas/pagamentos"),
		notasCredito: client.NewResource[model.NotaCredito](api, "/api/financas/notas-credito"),
		utilizadores: client.NewResource[model.Utilizador](api, "/api/utilizadores/utilizadores"),
	}
}

package handler

import (
	"io"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/emanuel-malungo/jomorais/internal/dto"
	"github.com/emanuel-malungo/jomorais/internal/service"
	"github.com/emanuel-malungo/jomorais/pkg/response"
)

// reserved list query keys; anything else is passed on as a column filter
var listParams = map[string]bool{"page": true, "limit": true, "search": true, "status": true}

// ResourceHandler serves the five CRUD endpoints of one resource.
type ResourceHandler[E any] struct {
	svc      service.ResourceService[E]
	notFound string
}

// NewResourceHandler creates a ResourceHandler. notFound is the 404 message
// ("Curso não encontrado").
func NewResourceHandler[E any](svc service.ResourceService[E], notFound string) *ResourceHandler[E] {
	return &ResourceHandler[E]{svc: svc, notFound: notFound}
}

// Register mounts the handler on a resource group.
func (h *ResourceHandler[E]) Register(g *gin.RouterGroup, writers ...gin.HandlerFunc) {
	g.GET("", h.List)
	g.GET("/:id", h.Get)
	g.POST("", append(writers, h.Create)...)
	g.PUT("/:id", append(writers, h.Update)...)
	g.DELETE("/:id", append(writers, h.Delete)...)
}

// List GET /api/<module>/<resource>?page=&limit=&search=&status=&<filter>=
func (h *ResourceHandler[E]) List(c *gin.Context) {
	var req dto.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "Parâmetros de pesquisa inválidos")
		return
	}
	req.Filters = make(map[string]string)
	for key, values := range c.Request.URL.Query() {
		if listParams[key] || len(values) == 0 {
			continue
		}
		if v := strings.TrimSpace(values[0]); v != "" {
			req.Filters[key] = v
		}
	}

	items, total, err := h.svc.List(c.Request.Context(), &req)
	if err != nil {
		handleServiceError(c, err, h.notFound)
		return
	}
	if items == nil {
		items = []E{}
	}

	response.OKPage(c, items, total, req.GetPage(), req.GetPageSize())
}

// Get GET /api/<module>/<resource>/:id
func (h *ResourceHandler[E]) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	e, err := h.svc.GetByID(c.Request.Context(), id)
	if err != nil {
		handleServiceError(c, err, h.notFound)
		return
	}
	response.OK(c, e)
}

// Create POST /api/<module>/<resource>
func (h *ResourceHandler[E]) Create(c *gin.Context) {
	body, ok := readBody(c)
	if !ok {
		return
	}

	e, err := h.svc.Create(c.Request.Context(), body)
	if err != nil {
		handleServiceError(c, err, h.notFound)
		return
	}
	response.Created(c, e)
}

// Update PUT /api/<module>/<resource>/:id
func (h *ResourceHandler[E]) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	body, ok := readBody(c)
	if !ok {
		return
	}

	e, err := h.svc.Update(c.Request.Context(), id, body)
	if err != nil {
		handleServiceError(c, err, h.notFound)
		return
	}
	response.OKMessage(c, "Registo actualizado com sucesso", e)
}

// Delete DELETE /api/<module>/<resource>/:id
// The data carries the delete report: kind and per-collection counts.
func (h *ResourceHandler[E]) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	report, err := h.svc.Delete(c.Request.Context(), id)
	if err != nil {
		handleServiceError(c, err, h.notFound)
		return
	}
	response.OKMessage(c, report.Message, report)
}

// ── helpers ──

func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.BadRequest(c, "Identificador inválido")
		return 0, false
	}
	return id, true
}

func readBody(c *gin.Context) ([]byte, bool) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		_ = c.Error(err)
		response.BadRequest(c, "Não foi possível ler o pedido")
		return nil, false
	}
	if len(body) == 0 {
		response.BadRequest(c, "Corpo do pedido vazio")
		return nil, false
	}
	return body, true
}

package handler

import (
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/emanuel-malungo/jomorais/internal/dto"
	"github.com/emanuel-malungo/jomorais/internal/service"
	apperrors "github.com/emanuel-malungo/jomorais/pkg/errors"
	"github.com/emanuel-malungo/jomorais/pkg/response"
)

// ExportHandler file downloads generated by the API.
type ExportHandler struct {
	exportSvc service.ExportService
}

// NewExportHandler creates an ExportHandler.
func NewExportHandler(exportSvc service.ExportService) *ExportHandler {
	return &ExportHandler{exportSvc: exportSvc}
}

// ExportSAFT GET /api/financas/saft?inicio=2024-01-01&fim=2024-01-31
func (h *ExportHandler) ExportSAFT(c *gin.Context) {
	var req dto.SAFTRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "Indique inicio e fim no formato AAAA-MM-DD")
		return
	}
	// formats were checked by the binding tags
	inicio, _ := time.Parse(time.DateOnly, req.Inicio)
	fim, _ := time.Parse(time.DateOnly, req.Fim)

	file, err := h.exportSvc.ExportSAFT(c.Request.Context(), inicio, fim)
	if err != nil {
		h.handleExportError(c, err)
		return
	}
	sendFile(c, file)
}

// ExportRoster GET /api/academico/turmas/:id/lista.xlsx
func (h *ExportHandler) ExportRoster(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	file, err := h.exportSvc.ExportRoster(c.Request.Context(), id)
	if err != nil {
		h.handleExportError(c, err)
		return
	}
	sendFile(c, file)
}

func (h *ExportHandler) handleExportError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrExportInvalidPeriod):
		response.BadRequest(c, "A data final deve ser igual ou posterior à inicial")
	case errors.Is(err, apperrors.ErrNotFound):
		response.NotFound(c, "Turma não encontrada")
	default:
		_ = c.Error(err)
		response.InternalError(c)
	}
}

func sendFile(c *gin.Context, file *service.ExportFile) {
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+url.PathEscape(file.Filename))
	c.Data(http.StatusOK, file.ContentType, file.Data)
}

package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/emanuel-malungo/jomorais/internal/service"
	apperrors "github.com/emanuel-malungo/jomorais/pkg/errors"
	"github.com/emanuel-malungo/jomorais/pkg/response"
)

// handleServiceError maps service errors onto the response envelope.
func handleServiceError(c *gin.Context, err error, notFound string) {
	var verr *service.ValidationError
	if errors.As(err, &verr) {
		fields := make([]response.FieldErr, 0, len(verr.Fields))
		for _, f := range verr.Fields {
			fields = append(fields, response.FieldErr{Field: f.Field, Message: f.Message})
		}
		status := http.StatusBadRequest
		msg := "Dados inválidos"
		if errors.Is(err, apperrors.ErrConflict) && len(fields) > 0 {
			status = http.StatusConflict
			msg = fields[0].Message
		}
		c.JSON(status, response.Response{Success: false, Message: msg, Errors: fields})
		return
	}

	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		response.NotFound(c, notFound)
	case errors.Is(err, apperrors.ErrConflict):
		response.Conflict(c, "Já existe um registo com estes dados")
	case errors.Is(err, apperrors.ErrInvalidReference):
		response.BadRequest(c, "Referência inválida")
	default:
		_ = c.Error(err)
		response.InternalError(c)
	}
}

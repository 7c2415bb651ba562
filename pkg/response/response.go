package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Response is the envelope every API endpoint answers with.
type Response struct {
	Success    bool        `json:"success"`
	Message    string      `json:"message,omitempty"`
	Data       interface{} `json:"data,omitempty"`
	Pagination *Pagination `json:"pagination,omitempty"`
	Errors     []FieldErr  `json:"errors,omitempty"`
}

// Pagination describes one page of a list response.
type Pagination struct {
	CurrentPage  int   `json:"currentPage"`
	TotalPages   int   `json:"totalPages"`
	TotalItems   int64 `json:"totalItems"`
	ItemsPerPage int   `json:"itemsPerPage"`
}

// FieldErr reports a validation failure for one payload field.
type FieldErr struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// TotalPages returns ceil(total / pageSize); zero items yield zero pages.
func TotalPages(total int64, pageSize int) int {
	if pageSize <= 0 || total <= 0 {
		return 0
	}
	pages := int(total / int64(pageSize))
	if total%int64(pageSize) > 0 {
		pages++
	}
	return pages
}

// ── success ──

// OK 200 with data.
func OK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{Success: true, Data: data})
}

// OKMessage 200 with data and a human message.
func OKMessage(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, Response{Success: true, Message: message, Data: data})
}

// Created 201.
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{Success: true, Message: "Registo criado com sucesso", Data: data})
}

// OKPage 200 with a page of items.
func OKPage(c *gin.Context, list interface{}, total int64, page, pageSize int) {
	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    list,
		Pagination: &Pagination{
			CurrentPage:  page,
			TotalPages:   TotalPages(total, pageSize),
			TotalItems:   total,
			ItemsPerPage: pageSize,
		},
	})
}

// ── errors ──

// Error generic failure.
func Error(c *gin.Context, httpStatus int, message string) {
	c.JSON(httpStatus, Response{Success: false, Message: message})
}

// ValidationError 400 with per-field messages.
func ValidationError(c *gin.Context, fields []FieldErr) {
	c.JSON(http.StatusBadRequest, Response{
		Success: false,
		Message: "Dados inválidos",
		Errors:  fields,
	})
}

// BadRequest 400.
func BadRequest(c *gin.Context, message string) {
	Error(c, http.StatusBadRequest, message)
}

// Unauthorized 401.
func Unauthorized(c *gin.Context, message string) {
	Error(c, http.StatusUnauthorized, message)
}

// Forbidden 403.
func Forbidden(c *gin.Context, message string) {
	Error(c, http.StatusForbidden, message)
}

// NotFound 404.
func NotFound(c *gin.Context, message string) {
	Error(c, http.StatusNotFound, message)
}

// Conflict 409.
func Conflict(c *gin.Context, message string) {
	Error(c, http.StatusConflict, message)
}

// InternalError 500.
func InternalError(c *gin.Context) {
	Error(c, http.StatusInternalServerError, "Erro interno do servidor")
}

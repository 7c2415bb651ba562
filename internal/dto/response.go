package dto

import "strings"

// ── list requests ──

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// ListRequest query string shared by every list endpoint:
// ?page=1&limit=10&search=...&status=Activo plus resource-specific filters.
type ListRequest struct {
	Page    int               `form:"page"   binding:"omitempty,min=1"`
	Limit   int               `form:"limit"  binding:"omitempty,min=1,max=100"`
	Search  string            `form:"search" binding:"omitempty,max=100"`
	Status  string            `form:"status" binding:"omitempty,oneof=Activo Inactivo"`
	Filters map[string]string `form:"-"`
}

// GetPage page number with default.
func (r *ListRequest) GetPage() int {
	if r.Page <= 0 {
		return 1
	}
	return r.Page
}

// GetPageSize page size with default and upper bound.
func (r *ListRequest) GetPageSize() int {
	switch {
	case r.Limit <= 0:
		return DefaultPageSize
	case r.Limit > MaxPageSize:
		return MaxPageSize
	default:
		return r.Limit
	}
}

// GetSearch trimmed search term.
func (r *ListRequest) GetSearch() string {
	return strings.TrimSpace(r.Search)
}

// ── SAF-T ──

// SAFTRequest GET /api/financas/saft?inicio=2024-01-01&fim=2024-01-31
type SAFTRequest struct {
	Inicio string `form:"inicio" binding:"required,datetime=2006-01-02"`
	Fim    string `form:"fim"    binding:"required,datetime=2006-01-02"`
}

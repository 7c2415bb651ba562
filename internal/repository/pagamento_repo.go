package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/emanuel-malungo/jomorais/internal/model"
)

// PagamentoRepository payment data access plus the queries billing needs.
type PagamentoRepository interface {
	ResourceRepository[model.Pagamento]
	// ListByPeriod returns active payments with inicio <= data_pagamento < fim, oldest first.
	ListByPeriod(ctx context.Context, inicio, fim time.Time) ([]model.Pagamento, error)
	// NextNumeroFatura reserves the next invoice number for the given year.
	NextNumeroFatura(ctx context.Context, year int) (string, error)
}

type pagamentoRepo struct {
	ResourceRepository[model.Pagamento]
	db *gorm.DB
}

// NewPagamentoRepo creates the PagamentoRepository.
func NewPagamentoRepo(db *gorm.DB) PagamentoRepository {
	return &pagamentoRepo{
		ResourceRepository: NewResourceRepo[model.Pagamento](db, ResourceSpec{
			SearchColumns: []string{"numero_fatura", "referencia", "operador"},
			FilterColumns: []string{"codigo_aluno", "forma_pagamento"},
			Preloads:      []string{"Aluno"},
			Order:         "data_pagamento DESC, id DESC",
			Delete:        pagamentoDelete,
		}),
		db: db,
	}
}

func (r *pagamentoRepo) ListByPeriod(ctx context.Context, inicio, fim time.Time) ([]model.Pagamento, error) {
	var items []model.Pagamento
	err := r.db.WithContext(ctx).
		Preload("Aluno").
		Where("data_pagamento >= ? AND data_pagamento < ?", inicio, fim).
		Where("status = ?", model.StatusActivo).
		Order("data_pagamento ASC, id ASC").
		Find(&items).Error
	return items, err
}

func (r *pagamentoRepo) NextNumeroFatura(ctx context.Context, year int) (string, error) {
	var seq int64
	if err := r.db.WithContext(ctx).Raw("SELECT nextval('fatura_seq')").Scan(&seq).Error; err != nil {
		return "", err
	}
	return fmt.Sprintf("FT JM%d/%06d", year, seq), nil
}

package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/emanuel-malungo/jomorais/internal/model"
)

// UtilizadorRepository user data access; login needs lookups by email.
type UtilizadorRepository interface {
	ResourceRepository[model.Utilizador]
	GetByEmail(ctx context.Context, email string) (*model.Utilizador, error)
}

type utilizadorRepo struct {
	ResourceRepository[model.Utilizador]
	db *gorm.DB
}

// NewUtilizadorRepo creates the UtilizadorRepository.
func NewUtilizadorRepo(db *gorm.DB) UtilizadorRepository {
	return &utilizadorRepo{
		ResourceRepository: NewResourceRepo[model.Utilizador](db, ResourceSpec{
			SearchColumns: []string{"nome", "email"},
			FilterColumns: []string{"perfil"},
			Order:         "nome ASC",
		}),
		db: db,
	}
}

func (r *utilizadorRepo) GetByEmail(ctx context.Context, email string) (*model.Utilizador, error) {
	var u model.Utilizador
	err := r.db.WithContext(ctx).
		Where("LOWER(email) = ?", strings.ToLower(strings.TrimSpace(email))).
		First(&u).Error
	if err != nil {
		return nil, err
	}
	return &u, nil
}

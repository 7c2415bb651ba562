package repository

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/emanuel-malungo/jomorais/internal/model"
	apperrors "github.com/emanuel-malungo/jomorais/pkg/errors"
)

// ListQuery is one page request against a resource table.
type ListQuery struct {
	Page     int
	PageSize int
	Search   string
	Status   string
	Filters  map[string]string
}

// Offset of the first row of the requested page.
func (q ListQuery) Offset() int {
	if q.Page <= 1 {
		return 0
	}
	return (q.Page - 1) * q.PageSize
}

// DeletePlan removes one record and whatever depends on it, inside tx.
type DeletePlan func(tx *gorm.DB, id int64) (*model.DeleteReport, error)

// ResourceSpec describes how a table is searched, filtered and deleted.
type ResourceSpec struct {
	SearchColumns []string
	FilterColumns []string
	Preloads      []string
	Order         string
	Delete        DeletePlan
}

// ResourceRepository generic data access for one entity table.
type ResourceRepository[E any] interface {
	List(ctx context.Context, q ListQuery) ([]E, int64, error)
	GetByID(ctx context.Context, id int64) (*E, error)
	Create(ctx context.Context, e *E) error
	Update(ctx context.Context, e *E) error
	Delete(ctx context.Context, id int64) (*model.DeleteReport, error)
	// Exists reports whether another row (id != excludeID) has column = value.
	Exists(ctx context.Context, column string, value any, excludeID int64) (bool, error)
}

// resourceRepo is the GORM implementation of ResourceRepository.
type resourceRepo[E any] struct {
	db   *gorm.DB
	spec ResourceSpec
}

// NewResourceRepo creates a ResourceRepository for E. A spec without a delete
// plan falls back to a plain hard delete.
func NewResourceRepo[E any](db *gorm.DB, spec ResourceSpec) ResourceRepository[E] {
	if spec.Delete == nil {
		spec.Delete = hardDelete[E]("Registo eliminado com sucesso")
	}
	if spec.Order == "" {
		spec.Order = "id DESC"
	}
	return &resourceRepo[E]{db: db, spec: spec}
}

func (r *resourceRepo[E]) filtered(ctx context.Context, q ListQuery) *gorm.DB {
	tx := r.db.WithContext(ctx).Model(new(E))

	if term := strings.TrimSpace(q.Search); term != "" && len(r.spec.SearchColumns) > 0 {
		like := "%" + term + "%"
		conds := make([]string, 0, len(r.spec.SearchColumns))
		args := make([]any, 0, len(r.spec.SearchColumns))
		for _, col := range r.spec.SearchColumns {
			conds = append(conds, col+" ILIKE ?")
			args = append(args, like)
		}
		tx = tx.Where("("+strings.Join(conds, " OR ")+")", args...)
	}

	if q.Status != "" {
		tx = tx.Where("status = ?", q.Status)
	}

	// only whitelisted columns reach the WHERE clause
	for _, col := range r.spec.FilterColumns {
		if v, ok := q.Filters[col]; ok && v != "" {
			tx = tx.Where(clause.Eq{Column: clause.Column{Name: col}, Value: filterValue(v)})
		}
	}
	return tx
}

func (r *resourceRepo[E]) List(ctx context.Context, q ListQuery) ([]E, int64, error) {
	var total int64
	if err := r.filtered(ctx, q).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	items := make([]E, 0, q.PageSize)
	if total == 0 {
		return items, 0, nil
	}

	tx := r.filtered(ctx, q)
	for _, p := range r.spec.Preloads {
		tx = tx.Preload(p)
	}
	err := tx.Order(r.spec.Order).
		Offset(q.Offset()).
		Limit(q.PageSize).
		Find(&items).Error
	return items, total, err
}

func (r *resourceRepo[E]) GetByID(ctx context.Context, id int64) (*E, error) {
	var e E
	tx := r.db.WithContext(ctx)
	for _, p := range r.spec.Preloads {
		tx = tx.Preload(p)
	}
	if err := tx.First(&e, id).Error; err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *resourceRepo[E]) Create(ctx context.Context, e *E) error {
	return translate(r.db.WithContext(ctx).Omit(clause.Associations).Create(e).Error)
}

func (r *resourceRepo[E]) Update(ctx context.Context, e *E) error {
	return translate(r.db.WithContext(ctx).Omit(clause.Associations).Save(e).Error)
}

func (r *resourceRepo[E]) Delete(ctx context.Context, id int64) (*model.DeleteReport, error) {
	var report *model.DeleteReport
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		report, err = r.spec.Delete(tx, id)
		return err
	})
	if err != nil {
		return nil, translate(err)
	}
	return report, nil
}

func (r *resourceRepo[E]) Exists(ctx context.Context, column string, value any, excludeID int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(new(E)).
		Where(clause.Eq{Column: clause.Column{Name: column}, Value: value}).
		Where("id <> ?", excludeID).
		Count(&count).Error
	return count > 0, err
}

// filterValue passes numeric ids as integers so they bind to bigint columns.
func filterValue(v string) any {
	if n, err := strconv.ParseInt(v, 10, 64); err == nil {
		return n
	}
	return v
}

// translate maps constraint violations onto domain errors.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return apperrors.ErrConflict
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return apperrors.ErrInvalidReference
	default:
		return err
	}
}

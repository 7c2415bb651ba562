package service

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/emanuel-malungo/jomorais/internal/dto"
	"github.com/emanuel-malungo/jomorais/internal/model"
	"github.com/emanuel-malungo/jomorais/internal/repository"
	apperrors "github.com/emanuel-malungo/jomorais/pkg/errors"
)

// ResourceService generic CRUD for one entity. Create and Update take the raw
// JSON body so that server-owned fields can be dropped before decoding.
type ResourceService[E any] interface {
	List(ctx context.Context, req *dto.ListRequest) ([]E, int64, error)
	GetByID(ctx context.Context, id int64) (*E, error)
	Create(ctx context.Context, payload []byte) (*E, error)
	Update(ctx context.Context, id int64, payload []byte) (*E, error)
	Delete(ctx context.Context, id int64) (*model.DeleteReport, error)
}

// UniqueKey a business key that must not repeat across rows.
type UniqueKey[E any] struct {
	Column  string
	Field   string
	Value   func(e *E) any
	Message string
}

// Reference a codigo_* field and the lookup that proves it points somewhere.
type Reference struct {
	Field   string
	ID      *int64
	Exists  func(ctx context.Context, id int64) (bool, error)
	Message string
}

// ResourceRules per-entity business rules layered over the generic CRUD.
type ResourceRules[E any] struct {
	Name       string
	Unique     []UniqueKey[E]
	References func(e *E) []Reference

	// ReadOnly payload keys the server computes for this entity.
	ReadOnly []string

	// BeforeSave runs after field validation; creating is false on update.
	BeforeSave func(ctx context.Context, e *E, creating bool) error
}

type resourceService[E any] struct {
	repo     repository.ResourceRepository[E]
	rules    ResourceRules[E]
	validate *validator.Validate
	logger   *zap.Logger
}

// NewResourceService creates a ResourceService over repo.
func NewResourceService[E any](repo repository.ResourceRepository[E], rules ResourceRules[E], logger *zap.Logger) ResourceService[E] {
	return &resourceService[E]{
		repo:     repo,
		rules:    rules,
		validate: newValidator(),
		logger:   logger.With(zap.String("resource", rules.Name)),
	}
}

// refTo builds an existence check against another resource.
func refTo[R any](repo repository.ResourceRepository[R]) func(ctx context.Context, id int64) (bool, error) {
	return func(ctx context.Context, id int64) (bool, error) {
		_, err := repo.GetByID(ctx, id)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return err == nil, err
	}
}

// ────────────────────── List ──────────────────────

func (s *resourceService[E]) List(ctx context.Context, req *dto.ListRequest) ([]E, int64, error) {
	items, total, err := s.repo.List(ctx, repository.ListQuery{
		Page:     req.GetPage(),
		PageSize: req.GetPageSize(),
		Search:   req.GetSearch(),
		Status:   req.Status,
		Filters:  req.Filters,
	})
	if err != nil {
		s.logger.Error("list failed", zap.Error(err))
		return nil, 0, err
	}
	return items, total, nil
}

// ────────────────────── GetByID ──────────────────────

func (s *resourceService[E]) GetByID(ctx context.Context, id int64) (*E, error) {
	e, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		s.logger.Error("get failed", zap.Int64("id", id), zap.Error(err))
		return nil, err
	}
	return e, nil
}

// ────────────────────── Create ──────────────────────

func (s *resourceService[E]) Create(ctx context.Context, payload []byte) (*E, error) {
	clean, err := sanitize(payload, s.rules.ReadOnly)
	if err != nil {
		return nil, err
	}

	e := new(E)
	if err := json.Unmarshal(clean, e); err != nil {
		return nil, fieldError("body", "JSON inválido: "+err.Error())
	}
	if st, ok := any(e).(interface{ EnsureStatus() }); ok {
		st.EnsureStatus()
	}

	if err := s.check(ctx, e, 0, true); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, e); err != nil {
		s.logger.Error("create failed", zap.Error(err))
		return nil, err
	}

	// reload so display associations are populated
	if ent, ok := any(e).(model.Entity); ok {
		if fresh, err := s.repo.GetByID(ctx, ent.GetID()); err == nil {
			return fresh, nil
		}
	}
	return e, nil
}

// ────────────────────── Update ──────────────────────

func (s *resourceService[E]) Update(ctx context.Context, id int64, payload []byte) (*E, error) {
	clean, err := sanitize(payload, s.rules.ReadOnly)
	if err != nil {
		return nil, err
	}

	e, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(clean, e); err != nil {
		return nil, fieldError("body", "JSON inválido: "+err.Error())
	}
	if st, ok := any(e).(interface{ EnsureStatus() }); ok {
		st.EnsureStatus()
	}

	if err := s.check(ctx, e, id, false); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, e); err != nil {
		s.logger.Error("update failed", zap.Int64("id", id), zap.Error(err))
		return nil, err
	}

	fresh, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return e, nil
	}
	return fresh, nil
}

// ────────────────────── Delete ──────────────────────

func (s *resourceService[E]) Delete(ctx context.Context, id int64) (*model.DeleteReport, error) {
	report, err := s.repo.Delete(ctx, id)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) || errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		s.logger.Error("delete failed", zap.Int64("id", id), zap.Error(err))
		return nil, err
	}
	s.logger.Info("deleted",
		zap.Int64("id", id),
		zap.String("kind", string(report.Kind)),
		zap.Any("counts", report.Counts),
	)
	return report, nil
}

// ── shared checks ──

// check runs field validation, reference lookups, uniqueness and the
// entity's own BeforeSave hook, in that order.
func (s *resourceService[E]) check(ctx context.Context, e *E, id int64, creating bool) error {
	if err := s.validate.Struct(e); err != nil {
		return translateValidation(err)
	}

	if s.rules.References != nil {
		for _, ref := range s.rules.References(e) {
			if ref.ID == nil || *ref.ID == 0 {
				continue
			}
			ok, err := ref.Exists(ctx, *ref.ID)
			if err != nil {
				s.logger.Error("reference lookup failed", zap.String("field", ref.Field), zap.Error(err))
				return err
			}
			if !ok {
				return referenceError(ref.Field, ref.Message)
			}
		}
	}

	for _, key := range s.rules.Unique {
		taken, err := s.repo.Exists(ctx, key.Column, key.Value(e), id)
		if err != nil {
			s.logger.Error("uniqueness check failed", zap.String("column", key.Column), zap.Error(err))
			return err
		}
		if taken {
			return &ValidationError{
				Fields: []FieldError{{Field: key.Field, Message: key.Message}},
				Cause:  apperrors.ErrConflict,
			}
		}
	}

	if s.rules.BeforeSave != nil {
		return s.rules.BeforeSave(ctx, e, creating)
	}
	return nil
}

// sanitize drops id, audit timestamps and the extra read-only keys from a
// JSON object body.
func sanitize(payload []byte, readOnly []string) ([]byte, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(payload, &fields); err != nil {
		return nil, fieldError("body", "JSON inválido")
	}
	for _, k := range model.ServerOwnedFields {
		delete(fields, k)
	}
	for _, k := range readOnly {
		delete(fields, k)
	}
	return json.Marshal(fields)
}

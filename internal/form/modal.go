package form

import (
	"context"
	"errors"

	"github.com/emanuel-malungo/jomorais/internal/client"
	"github.com/emanuel-malungo/jomorais/internal/model"
)

// ErrInvalid is returned by Submit when local validation fails.
var ErrInvalid = errors.New("o formulário contém erros")

// Saver persists an entity; satisfied by hook.Resource and client.Resource.
type Saver[E any] interface {
	Create(ctx context.Context, in *E) (*E, error)
	Update(ctx context.Context, id int64, in *E) (*E, error)
}

// Modal is the create/edit dialog of one entity type. One instance is reused
// across rows, so Data is reset on every closed→open transition.
type Modal[E model.Entity] struct {
	Schema    *Schema[E]
	OnSuccess func(saved *E)

	Visible bool
	Data    E
	Initial *E
	Errors  map[string]string
	Err     string

	saver Saver[E]
}

// NewModal creates a closed modal.
func NewModal[E model.Entity](schema *Schema[E], saver Saver[E], onSuccess func(*E)) *Modal[E] {
	return &Modal[E]{Schema: schema, saver: saver, OnSuccess: onSuccess}
}

// Open shows the modal for entity (edit) or with the schema defaults (create)
// when entity is nil. Opening an already open modal changes nothing.
func (m *Modal[E]) Open(entity *E) {
	if m.Visible {
		return
	}
	m.Visible = true
	m.Errors = nil
	m.Err = ""
	if entity != nil {
		initial := *entity
		m.Initial = &initial
		m.Data = *entity
	} else {
		m.Initial = nil
		m.Data = m.Schema.Defaults()
	}
}

// Close hides the modal without side effects.
func (m *Modal[E]) Close() {
	m.Visible = false
}

// IsOpen reports whether the modal is shown.
func (m *Modal[E]) IsOpen() bool { return m.Visible }

// Editing reports whether the modal edits an existing entity.
func (m *Modal[E]) Editing() bool { return m.Initial != nil }

// FieldError returns the message for one field, if any.
func (m *Modal[E]) FieldError(key string) string { return m.Errors[key] }

// Submit validates Data and, when valid, creates or updates it. Validation
// failures never reach the network. Server failures keep the modal open with
// the message in Err.
func (m *Modal[E]) Submit(ctx context.Context) (*E, error) {
	m.Err = ""
	m.Errors = m.Schema.Validate(&m.Data)
	if len(m.Errors) > 0 {
		return nil, ErrInvalid
	}

	var (
		saved *E
		err   error
	)
	if m.Initial != nil {
		saved, err = m.saver.Update(ctx, (*m.Initial).GetID(), &m.Data)
	} else {
		saved, err = m.saver.Create(ctx, &m.Data)
	}
	if err != nil {
		m.Err = client.Message(err)
		var apiErr *client.APIError
		if errors.As(err, &apiErr) && len(apiErr.Fields) > 0 {
			m.Errors = make(map[string]string, len(apiErr.Fields))
			for _, f := range apiErr.Fields {
				m.Errors[f.Field] = f.Message
			}
		}
		return nil, err
	}

	if m.OnSuccess != nil {
		m.OnSuccess(saved)
	}
	m.Close()
	return saved, nil
}

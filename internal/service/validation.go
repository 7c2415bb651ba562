package service

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	apperrors "github.com/emanuel-malungo/jomorais/pkg/errors"
)

// FieldError one rejected payload field, keyed by its JSON name.
type FieldError struct {
	Field   string
	Message string
}

// ValidationError carries per-field messages. It unwraps to ErrValidation, or
// to Cause when the failure is a dangling reference.
type ValidationError struct {
	Fields []FieldError
	Cause  error
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return "dados inválidos: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error {
	if e.Cause != nil {
		return e.Cause
	}
	return apperrors.ErrValidation
}

func fieldError(field, message string) *ValidationError {
	return &ValidationError{Fields: []FieldError{{Field: field, Message: message}}}
}

func referenceError(field, message string) *ValidationError {
	return &ValidationError{
		Fields: []FieldError{{Field: field, Message: message}},
		Cause:  apperrors.ErrInvalidReference,
	}
}

// newValidator checks the `binding` tags on models, reporting JSON field names.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.SetTagName("binding")
	v.RegisterTagNameFunc(jsonFieldName)
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := d.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
	return v
}

func jsonFieldName(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	if name == "" {
		return fld.Name
	}
	return name
}

// translateValidation turns validator output into a ValidationError.
func translateValidation(err error) error {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}
	out := &ValidationError{Fields: make([]FieldError, 0, len(verrs))}
	for _, fe := range verrs {
		out.Fields = append(out.Fields, FieldError{Field: fe.Field(), Message: ruleMessage(fe.Tag(), fe.Param())})
	}
	return out
}

// ruleMessage Portuguese message for a failed validator tag.
func ruleMessage(tag, param string) string {
	switch tag {
	case "required":
		return "Campo obrigatório"
	case "email":
		return "Email inválido"
	case "max":
		return fmt.Sprintf("Máximo de %s caracteres", param)
	case "min":
		return fmt.Sprintf("Mínimo de %s", param)
	case "gt":
		return fmt.Sprintf("Deve ser maior que %s", param)
	case "gte":
		return fmt.Sprintf("Deve ser maior ou igual a %s", param)
	case "oneof":
		return "Valor inválido; opções: " + strings.ReplaceAll(param, " ", ", ")
	default:
		return "Valor inválido"
	}
}

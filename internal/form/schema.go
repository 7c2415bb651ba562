// Package form binds, validates and submits the create/edit form of one entity.
package form

import (
	"fmt"
	"net/url"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// Kind is the input widget of a field.
type Kind string

const (
	KindText     Kind = "text"
	KindTextarea Kind = "textarea"
	KindNumber   Kind = "number"
	KindMoney    Kind = "money"
	KindDate     Kind = "date"
	KindEmail    Kind = "email"
	KindPassword Kind = "password"
	KindSelect   Kind = "select"
	// KindLines is a repeated group of item lines, decoded by Schema.Parse.
	KindLines    Kind = "lines"
)

// Option is one choice of a select field.
type Option struct {
	Value string
	Label string
}

// Field describes one form input. Key is the entity's json/form name.
type Field struct {
	Key         string
	Label       string
	Kind        Kind
	Options     []Option
	Placeholder string

	// set by NewSchema from the rule map
	Required bool
}

// Schema is the per-entity form descriptor: defaults, fields and a rule map
// (Go field name → validator tag) checked before anything is sent.
type Schema[E any] struct {
	Title    string
	Fields   []Field
	Rules    map[string]string
	defaults func() E

	// Parse runs after the generic form mapping for fields it cannot handle
	// (e.g. repeated payment lines).
	Parse func(values url.Values, e *E) error

	validate *validator.Validate
	kinds    map[string]reflect.Kind
	paths    map[string][]int
}

// NewSchema registers rules for E and marks required fields.
func NewSchema[E any](title string, defaults func() E, fields []Field, rules map[string]string) *Schema[E] {
	var zero E
	t := reflect.TypeOf(zero)

	v := validator.New()
	v.RegisterTagNameFunc(jsonName)
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := d.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
	v.RegisterStructValidationMapRules(rules, zero)

	s := &Schema[E]{
		Title:    title,
		Rules:    rules,
		defaults: defaults,
		validate: v,
		kinds:    make(map[string]reflect.Kind),
		paths:    make(map[string][]int),
	}
	indexFields(t, nil, s.kinds, s.paths)

	requiredKeys := make(map[string]bool)
	for goName, tag := range rules {
		if sf, ok := t.FieldByName(goName); ok && hasRule(tag, "required") {
			requiredKeys[jsonName(sf)] = true
		}
	}
	s.Fields = make([]Field, len(fields))
	for i, f := range fields {
		f.Required = requiredKeys[f.Key]
		s.Fields[i] = f
	}
	return s
}

// Defaults returns a fresh default entity.
func (s *Schema[E]) Defaults() E {
	if s.defaults == nil {
		var zero E
		return zero
	}
	return s.defaults()
}

// Validate checks e against the rule map. The result maps field key to a
// Portuguese message; empty means valid.
func (s *Schema[E]) Validate(e *E) map[string]string {
	err := s.validate.Struct(e)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return map[string]string{"_": err.Error()}
	}
	out := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		if _, seen := out[fe.Field()]; !seen {
			out[fe.Field()] = ruleMessage(fe.Tag(), fe.Param(), fe.Kind())
		}
	}
	return out
}

// Bind copies submitted form values onto e. An empty value clears a
// non-string field; missing keys leave e untouched.
func (s *Schema[E]) Bind(values url.Values, e *E) error {
	rv := reflect.ValueOf(e).Elem()
	mapped := make(map[string][]string, len(values))

	for key, vals := range values {
		kind, known := s.kinds[key]
		if !known {
			continue
		}
		if kind != reflect.String && (len(vals) == 0 || strings.TrimSpace(vals[0]) == "") {
			fv := rv.FieldByIndex(s.paths[key])
			fv.Set(reflect.Zero(fv.Type()))
			continue
		}
		mapped[key] = vals
	}

	if err := binding.MapFormWithTag(e, mapped, "form"); err != nil {
		return fmt.Errorf("bind form: %w", err)
	}
	if s.Parse != nil {
		return s.Parse(values, e)
	}
	return nil
}

// Values renders e's form fields as input strings keyed by form name.
func (s *Schema[E]) Values(e *E) map[string]string {
	rv := reflect.ValueOf(e).Elem()
	out := make(map[string]string, len(s.paths))
	for key, path := range s.paths {
		out[key] = inputValue(rv.FieldByIndex(path))
	}
	return out
}

func inputValue(v reflect.Value) string {
	if v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return ""
		}
		v = v.Elem()
	}
	switch x := v.Interface().(type) {
	case time.Time:
		if x.IsZero() {
			return ""
		}
		return x.Format(time.DateOnly)
	case decimal.Decimal:
		if x.IsZero() {
			return ""
		}
		return x.StringFixed(2)
	}
	switch v.Kind() {
	case reflect.String:
		return v.String()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if v.Int() == 0 {
			return ""
		}
		return strconv.FormatInt(v.Int(), 10)
	case reflect.Bool:
		return strconv.FormatBool(v.Bool())
	default:
		return fmt.Sprint(v.Interface())
	}
}

// indexFields records the kind and index path of every form-tagged field,
// descending into embedded structs.
func indexFields(t reflect.Type, prefix []int, kinds map[string]reflect.Kind, paths map[string][]int) {
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		path := append(append([]int(nil), prefix...), i)
		if sf.Anonymous && sf.Type.Kind() == reflect.Struct {
			indexFields(sf.Type, path, kinds, paths)
			continue
		}
		key := strings.SplitN(sf.Tag.Get("form"), ",", 2)[0]
		if key == "" || key == "-" || !sf.IsExported() {
			continue
		}
		kinds[key] = sf.Type.Kind()
		paths[key] = path
	}
}

func jsonName(sf reflect.StructField) string {
	name := strings.SplitN(sf.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	if name == "" {
		return sf.Name
	}
	return name
}

func hasRule(tag, rule string) bool {
	for _, part := range strings.Split(tag, ",") {
		if part == rule {
			return true
		}
	}
	return false
}

func ruleMessage(tag, param string, kind reflect.Kind) string {
	switch tag {
	case "required":
		return "Campo obrigatório"
	case "email":
		return "Email inválido"
	case "gt":
		return fmt.Sprintf("Deve ser maior que %s", param)
	case "gte":
		return fmt.Sprintf("Deve ser maior ou igual a %s", param)
	case "lte":
		return fmt.Sprintf("Deve ser menor ou igual a %s", param)
	case "min":
		if kind == reflect.String {
			return fmt.Sprintf("Mínimo de %s caracteres", param)
		}
		return fmt.Sprintf("Deve ser pelo menos %s", param)
	case "max":
		if kind == reflect.String {
			return fmt.Sprintf("Máximo de %s caracteres", param)
		}
		return fmt.Sprintf("Deve ser no máximo %s", param)
	case "oneof":
		return "Seleccione uma opção válida"
	default:
		return "Valor inválido"
	}
}

package console

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"unicode"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/emanuel-malungo/jomorais/internal/client"
	"github.com/emanuel-malungo/jomorais/internal/deletemodal"
	"github.com/emanuel-malungo/jomorais/internal/form"
	"github.com/emanuel-malungo/jomorais/internal/hook"
	"github.com/emanuel-malungo/jomorais/internal/listpage"
)

// resource describes how one entity type is listed, edited and deleted.
type resource[E listpage.Item] struct {
	Module   string // academico | financas | utilizadores
	Slug     string
	Title    string
	Singular string
	Feminine bool

	Columns  []listpage.Column[E]
	Schema   *form.Schema[E]
	Summary  func(E) string
	Warnings []string
	Filters  []filterDef
	Actions  []rowAction

	// Options loads select choices keyed by field key; filters reuse them.
	Options func(ctx context.Context) (map[string][]form.Option, error)
	// Lines returns the repeated item lines of an entity, for KindLines fields.
	Lines func(e *E) []itemLine

	api *client.Resource[E]
}

type filterDef struct {
	Key     string
	Label   string
	Options []form.Option
}

type rowAction struct {
	Label  string
	Suffix string
}

type itemLine struct {
	Servico    string
	Quantidade string
	Desconto   string
}

// blankLines is how many empty item lines a lines field offers.
const blankLines = 3

// resourceMeta is the non-generic part templates need.
type resourceMeta struct {
	Title    string
	Singular string
	Base     string
	Live     string
	Actions  []rowAction
}

type filterView struct {
	Key      string
	Label    string
	Options  []form.Option
	Selected string
}

type fieldView struct {
	form.Field
	Value   string
	Error   string
	Options []form.Option
	Lines   []itemLine
}

type formView struct {
	Title   string
	Action  string
	Back    string
	Editing bool
	Err     string
	Fields  []fieldView
}

type detailView struct {
	Title   string
	Base    string
	ID      int64
	Active  bool
	Fields  []detailField
	Actions []rowAction
}

type detailField struct {
	Label string
	Value string
}

type deleteView struct {
	Singular string
	Title    string
	Action   string
	Back     string
	Warnings []string
	Err      string
	Result   *client.DeleteResult
	Counts   []deletemodal.Count
}

func (r *resource[E]) base() string { return "/" + r.Module + "/" + r.Slug }

func (r *resource[E]) meta() resourceMeta {
	return resourceMeta{
		Title:    r.Title,
		Singular: r.Singular,
		Base:     r.base(),
		Live:     r.base() + "/ao-vivo",
		Actions:  r.Actions,
	}
}

func (r *resource[E]) filterKeys() []string {
	keys := make([]string, len(r.Filters))
	for i, f := range r.Filters {
		keys[i] = f.Key
	}
	return keys
}

// mount registers list, detail, form, delete and live routes for r.
func mount[E listpage.Item](c *Console, g gin.IRouter, r *resource[E]) {
	base := r.base()
	c.addNav(r.Module, r.Title, base)

	g.GET(base, r.list(c))
	g.GET(base+"/ao-vivo", r.live(c))
	g.GET(base+"/novo", r.createForm(c))
	g.POST(base+"/novo", r.create(c))
	g.GET(base+"/:id", r.detail(c))
	g.GET(base+"/:id/editar", r.editForm(c))
	g.POST(base+"/:id/editar", r.update(c))
	g.GET(base+"/:id/excluir", r.confirmDelete(c))
	g.POST(base+"/:id/excluir", r.delete(c))
}

// ── list ──

func (r *resource[E]) list(c *Console) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		f := listpage.ParseFilter(ctx.Request.URL.Query(), c.cfg.Console.PageSize, r.filterKeys()...)

		h := hook.New[E](r.api, hook.WithParams(f.Params()), hook.WithLogger(c.logger))
		defer h.Close()
		st := h.Refetch(ctx.Request.Context())

		view := listpage.NewView(r.Title, r.base(), r.Columns, st, f)
		c.render(ctx, http.StatusOK, "list", c.page(ctx, r.Title, r.base()), gin.H{
			"Res":     r.meta(),
			"View":    view,
			"Filters": r.filterViews(ctx.Request.Context(), c, f),
		})
	}
}

func (r *resource[E]) filterViews(ctx context.Context, c *Console, f listpage.Filter) []filterView {
	if len(r.Filters) == 0 {
		return nil
	}
	opts := r.loadOptions(ctx, c)
	out := make([]filterView, len(r.Filters))
	for i, fd := range r.Filters {
		options := fd.Options
		if options == nil {
			options = opts[fd.Key]
		}
		out[i] = filterView{Key: fd.Key, Label: fd.Label, Options: options, Selected: f.Extra[fd.Key]}
	}
	return out
}

// loadOptions never fails the page; missing choices only degrade the selects.
func (r *resource[E]) loadOptions(ctx context.Context, c *Console) map[string][]form.Option {
	if r.Options == nil {
		return nil
	}
	opts, err := r.Options(ctx)
	if err != nil {
		c.logger.Warn("load select options", zap.String("resource", r.Slug), zap.Error(err))
		return nil
	}
	return opts
}

// ── detail ──

func (r *resource[E]) detail(c *Console) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		e, ok := r.fetch(c, ctx)
		if !ok {
			return
		}
		values := r.Schema.Values(e)
		opts := r.loadOptions(ctx.Request.Context(), c)

		v := detailView{
			Title:   r.Singular,
			Base:    r.base(),
			ID:      (*e).GetID(),
			Active:  (*e).IsActive(),
			Actions: r.Actions,
		}
		for _, f := range r.Schema.Fields {
			if f.Kind == form.KindPassword || f.Kind == form.KindLines {
				continue
			}
			v.Fields = append(v.Fields, detailField{Label: f.Label, Value: displayValue(f, values[f.Key], opts[f.Key])})
		}
		c.render(ctx, http.StatusOK, "detail", c.page(ctx, r.Singular, r.base()), gin.H{"Detail": v})
	}
}

func displayValue(f form.Field, value string, dynamic []form.Option) string {
	options := f.Options
	if options == nil {
		options = dynamic
	}
	for _, o := range options {
		if o.Value == value {
			return o.Label
		}
	}
	if value == "" {
		return "—"
	}
	return value
}

// ── create / update ──

func (r *resource[E]) newModal(c *Console, ctx *gin.Context) *form.Modal[E] {
	return form.NewModal(r.Schema, form.Saver[E](r.api), func(*E) {
		c.notifier.Notify(ctx, Notification{Level: LevelSuccess, Message: r.Singular + r.agree(" guardado", " guardada") + " com sucesso"})
	})
}

func (r *resource[E]) createForm(c *Console) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		m := r.newModal(c, ctx)
		m.Open(nil)
		r.renderForm(c, ctx, http.StatusOK, m)
	}
}

func (r *resource[E]) create(c *Console) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		m := r.newModal(c, ctx)
		m.Open(nil)
		r.submit(c, ctx, m)
	}
}

func (r *resource[E]) editForm(c *Console) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		e, ok := r.fetch(c, ctx)
		if !ok {
			return
		}
		m := r.newModal(c, ctx)
		m.Open(e)
		r.renderForm(c, ctx, http.StatusOK, m)
	}
}

func (r *resource[E]) update(c *Console) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		e, ok := r.fetch(c, ctx)
		if !ok {
			return
		}
		m := r.newModal(c, ctx)
		m.Open(e)
		r.submit(c, ctx, m)
	}
}

func (r *resource[E]) submit(c *Console, ctx *gin.Context, m *form.Modal[E]) {
	if err := ctx.Request.ParseForm(); err != nil {
		m.Err = "Não foi possível ler o formulário"
		r.renderForm(c, ctx, http.StatusBadRequest, m)
		return
	}
	if err := r.Schema.Bind(ctx.Request.PostForm, &m.Data); err != nil {
		c.logger.Debug("bind form", zap.String("resource", r.Slug), zap.Error(err))
		m.Err = "Alguns campos têm valores inválidos"
		r.renderForm(c, ctx, http.StatusUnprocessableEntity, m)
		return
	}

	if _, err := m.Submit(ctx.Request.Context()); err != nil {
		status := http.StatusUnprocessableEntity
		var apiErr *client.APIError
		if errors.As(err, &apiErr) && apiErr.Status >= 400 {
			status = apiErr.Status
		} else if !errors.Is(err, form.ErrInvalid) {
			status = http.StatusBadGateway
		}
		r.renderForm(c, ctx, status, m)
		return
	}
	ctx.Redirect(http.StatusSeeOther, r.base())
}

func (r *resource[E]) renderForm(c *Console, ctx *gin.Context, status int, m *form.Modal[E]) {
	v := formView{
		Back:    r.base(),
		Editing: m.Editing(),
		Err:     m.Err,
		Action:  r.base() + "/novo",
		Title:   r.agree("Novo ", "Nova ") + lowerFirst(r.Singular),
	}
	if m.Editing() {
		v.Action = fmt.Sprintf("%s/%d/editar", r.base(), (*m.Initial).GetID())
		v.Title = "Editar " + lowerFirst(r.Singular)
	}

	values := r.Schema.Values(&m.Data)
	opts := r.loadOptions(ctx.Request.Context(), c)
	for _, f := range r.Schema.Fields {
		fv := fieldView{Field: f, Value: values[f.Key], Error: m.FieldError(f.Key), Options: f.Options}
		if fv.Options == nil {
			fv.Options = opts[f.Key]
		}
		switch f.Kind {
		case form.KindPassword:
			fv.Value = ""
		case form.KindLines:
			if r.Lines != nil {
				fv.Lines = r.Lines(&m.Data)
			}
			for i := 0; i < blankLines; i++ {
				fv.Lines = append(fv.Lines, itemLine{Quantidade: "1"})
			}
		}
		v.Fields = append(v.Fields, fv)
	}
	c.render(ctx, status, "form", c.page(ctx, v.Title, r.base()), gin.H{"Form": v})
}

// ── delete ──

func (r *resource[E]) newDeleteModal(c *Console, ctx *gin.Context) *deletemodal.Modal[E] {
	m := deletemodal.New[E](r.api, r.Summary, r.Warnings...)
	m.Labels = deleteLabels
	m.OnSuccess = func(res *client.DeleteResult) {
		msg := res.Message
		if msg == "" {
			msg = r.Singular + r.agree(" eliminado", " eliminada")
		}
		c.notifier.Notify(ctx, Notification{Level: LevelSuccess, Message: msg})
	}
	return m
}

func (r *resource[E]) confirmDelete(c *Console) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		e, ok := r.fetch(c, ctx)
		if !ok {
			return
		}
		m := r.newDeleteModal(c, ctx)
		m.Open(*e)
		r.renderDelete(c, ctx, http.StatusOK, m)
	}
}

func (r *resource[E]) delete(c *Console) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		e, ok := r.fetch(c, ctx)
		if !ok {
			return
		}
		m := r.newDeleteModal(c, ctx)
		m.Open(*e)
		if _, err := m.Confirm(ctx.Request.Context()); err != nil {
			status := http.StatusBadGateway
			var apiErr *client.APIError
			if errors.As(err, &apiErr) && apiErr.Status >= 400 {
				status = apiErr.Status
			}
			r.renderDelete(c, ctx, status, m)
			return
		}
		r.renderDelete(c, ctx, http.StatusOK, m)
	}
}

func (r *resource[E]) renderDelete(c *Console, ctx *gin.Context, status int, m *deletemodal.Modal[E]) {
	v := deleteView{
		Singular: r.Singular,
		Title:    m.Title(),
		Back:     r.base(),
		Warnings: m.Warnings,
		Err:      m.Err,
	}
	if m.Entity != nil {
		v.Action = fmt.Sprintf("%s/%d/excluir", r.base(), (*m.Entity).GetID())
	}
	if m.Phase() == deletemodal.PhaseResult {
		v.Result = m.Result
		v.Counts = m.Counts()
	}
	c.render(ctx, status, "delete", c.page(ctx, "Eliminar "+lowerFirst(r.Singular), r.base()), gin.H{"Delete": v})
}

// ── helpers ──

// fetch loads the entity named by :id, rendering the not-found or error page
// itself when it cannot.
func (r *resource[E]) fetch(c *Console, ctx *gin.Context) (*E, bool) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.notFound(ctx, r.Singular+r.agree(" não encontrado", " não encontrada"), r.base())
		return nil, false
	}
	e, err := r.api.Get(ctx.Request.Context(), id)
	if err != nil {
		c.failure(ctx, err, r.base())
		return nil, false
	}
	if e == nil {
		c.notFound(ctx, r.Singular+r.agree(" não encontrado", " não encontrada"), r.base())
		return nil, false
	}
	return e, true
}

// agree picks the masculine or feminine form for the entity's noun.
func (r *resource[E]) agree(masc, fem string) string {
	if r.Feminine {
		return fem
	}
	return masc
}

func (c *Console) addNav(module, title, href string) {
	label := moduleLabels[module]
	for i := range c.nav {
		if c.nav[i].Label == label {
			c.nav[i].Links = append(c.nav[i].Links, navLink{Label: title, Href: href})
			return
		}
	}
	c.nav = append(c.nav, navGroup{Label: label, Links: []navLink{{Label: title, Href: href}}})
}

var moduleLabels = map[string]string{
	"academico":    "Académico",
	"financas":     "Finanças",
	"utilizadores": "Utilizadores",
}

var deleteLabels = map[string]string{
	"disciplinas":           "Disciplinas eliminadas",
	"turmas":                "Turmas eliminadas",
	"alunos_desvinculados":  "Alunos sem turma",
	"pagamentos":            "Pagamentos eliminados",
	"pagamentos_referentes": "Pagamentos que usam o serviço",
	"notas_credito":         "Notas de crédito eliminadas",
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToLower(r)) + s[size:]
}

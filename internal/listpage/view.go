package listpage

import (
	"strconv"

	"github.com/emanuel-malungo/jomorais/internal/client"
	"github.com/emanuel-malungo/jomorais/internal/hook"
)

// Item is what a list row needs from an entity.
type Item interface {
	GetID() int64
	IsActive() bool
}

// ViewState selects which body the table renders.
type ViewState string

const (
	StateLoading ViewState = "loading"
	StateError   ViewState = "error"
	StateEmpty   ViewState = "empty"
	StateLoaded  ViewState = "loaded"
)

// Column is one fixed table column.
type Column[E any] struct {
	Header string
	Value  func(E) string
	Align  string // "", "right" or "center"
}

// StatCard is one summary card above the table.
type StatCard struct {
	Label string
	Value string
	Tone  string
}

// Row is a rendered table row.
type Row struct {
	ID     int64
	Active bool
	Cells  []Cell
}

// Cell is a rendered table cell.
type Cell struct {
	Text  string
	Align string
}

const (
	hintFiltered = "Nenhum resultado para os filtros actuais. Ajuste a pesquisa ou limpe os filtros."
	hintEmpty    = "Ainda não existem registos. Use o botão \"Novo\" para criar o primeiro."
)

// View is everything a list page template needs.
type View[E Item] struct {
	Title      string
	Base       string
	Columns    []Column[E]
	Items      []E
	State      ViewState
	Err        string
	Filter     Filter
	Pager      Pager
	Pagination client.Pagination
	Stats      []StatCard
	EmptyHint  string
}

// NewView builds the view of a hook snapshot under filter f. base is the
// list path used for links (e.g. "/academico/cursos").
func NewView[E Item](title, base string, cols []Column[E], st hook.State[E], f Filter) View[E] {
	v := View[E]{
		Title:      title,
		Base:       base,
		Columns:    cols,
		Items:      st.Items,
		Err:        st.Err,
		Filter:     f,
		Pagination: st.Pagination,
	}

	switch st.Status {
	case hook.Errored:
		v.State = StateError
	case hook.Loaded:
		if len(st.Items) == 0 {
			v.State = StateEmpty
		} else {
			v.State = StateLoaded
		}
	default:
		v.State = StateLoading
	}

	if f.Search != "" || f.Status != StatusAll || len(f.Extra) > 0 {
		v.EmptyHint = hintFiltered
	} else {
		v.EmptyHint = hintEmpty
	}

	v.Pager = Strip(st.Pagination.CurrentPage, st.Pagination.TotalPages)
	v.Stats = defaultStats(st)
	return v
}

func defaultStats[E Item](st hook.State[E]) []StatCard {
	var activos, inactivos int
	for _, it := range st.Items {
		if it.IsActive() {
			activos++
		} else {
			inactivos++
		}
	}
	return []StatCard{
		{Label: "Total de registos", Value: strconv.FormatInt(st.Pagination.TotalItems, 10), Tone: "primary"},
		{Label: "Activos nesta página", Value: strconv.Itoa(activos), Tone: "success"},
		{Label: "Inactivos nesta página", Value: strconv.Itoa(inactivos), Tone: "muted"},
		{Label: "Páginas", Value: strconv.Itoa(st.Pagination.TotalPages), Tone: "info"},
	}
}

// Headers returns the column titles.
func (v View[E]) Headers() []string {
	out := make([]string, len(v.Columns))
	for i, c := range v.Columns {
		out[i] = c.Header
	}
	return out
}

// Colspan is the number of columns including the actions column.
func (v View[E]) Colspan() int { return len(v.Columns) + 1 }

// Rows renders every item through the column set.
func (v View[E]) Rows() []Row {
	out := make([]Row, 0, len(v.Items))
	for _, it := range v.Items {
		row := Row{ID: it.GetID(), Active: it.IsActive(), Cells: make([]Cell, len(v.Columns))}
		for i, c := range v.Columns {
			row.Cells[i] = Cell{Text: c.Value(it), Align: c.Align}
		}
		out = append(out, row)
	}
	return out
}

// PageURL links to page n under the current filters.
func (v View[E]) PageURL(n int) string { return v.Filter.PageURL(v.Base, n) }

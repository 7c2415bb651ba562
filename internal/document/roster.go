package document

import (
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/image"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/page"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/extension"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/emanuel-malungo/jomorais/internal/model"
)

// Roster a turma with its enrolled students, as fetched by the caller.
type Roster struct {
	Institution Institution
	Turma       model.Turma
	Alunos      []model.Aluno
}

// RosterRow one printed student line.
type RosterRow struct {
	N              int
	Nome           string
	NumeroProcesso string
	Sexo           string
	Idade          string
	Encarregado    string
	Telefone       string
}

// RosterMeta the block printed under the institutional header.
type RosterMeta struct {
	Turma      string
	Classe     string
	Curso      string
	Sala       string
	Periodo    string
	AnoLectivo string
	Total      int
}

// RosterPage rows that fit on one page. The table header is printed on every
// page; the institutional header and metadata only on the first.
type RosterPage struct {
	Number int
	First  bool
	Rows   []RosterRow
}

// RosterLayout vertical budget of an A4 page, in millimetres.
type RosterLayout struct {
	PageHeight   float64
	MarginTop    float64
	MarginBottom float64
	Header       float64 // logo + institution lines
	Meta         float64
	TableHeader  float64
	Row          float64
	Footer       float64
}

// DefaultRosterLayout matches the rows emitted by RenderRosterPDF.
var DefaultRosterLayout = RosterLayout{
	PageHeight:   297,
	MarginTop:    12,
	MarginBottom: 12,
	Header:       42,
	Meta:         26,
	TableHeader:  8,
	Row:          7,
	Footer:       10,
}

// ItemsPerPage rows that fit below the fixed blocks; the first page also
// carries header and metadata.
func (l RosterLayout) ItemsPerPage(first bool) int {
	avail := l.PageHeight - l.MarginTop - l.MarginBottom - l.Footer - l.TableHeader
	if first {
		avail -= l.Header + l.Meta
	}
	n := int(avail / l.Row)
	if n < 1 {
		return 1
	}
	return n
}

// SortAlunos orders students by name with Portuguese collation, so accented
// names sort next to their unaccented neighbours.
func SortAlunos(alunos []model.Aluno) []model.Aluno {
	out := make([]model.Aluno, len(alunos))
	copy(out, alunos)
	c := collate.New(language.Portuguese, collate.IgnoreCase)
	sort.SliceStable(out, func(i, j int) bool {
		return c.CompareString(out[i].Nome, out[j].Nome) < 0
	})
	return out
}

// Meta describes the turma for the roster header.
func (r Roster) Meta() RosterMeta {
	m := RosterMeta{
		Turma:      r.Turma.Designacao,
		Sala:       dash(r.Turma.Sala),
		Periodo:    dash(r.Turma.Periodo),
		AnoLectivo: dash(r.Turma.AnoLectivo),
		Classe:     "-",
		Curso:      "-",
		Total:      len(r.Alunos),
	}
	if r.Turma.Classe != nil {
		m.Classe = r.Turma.Classe.Designacao
	}
	if r.Turma.Curso != nil {
		m.Curso = r.Turma.Curso.Designacao
	}
	return m
}

// Rows sorted and numbered, ages computed at now.
func (r Roster) Rows(now time.Time) []RosterRow {
	sorted := SortAlunos(r.Alunos)
	rows := make([]RosterRow, 0, len(sorted))
	for i, a := range sorted {
		rows = append(rows, RosterRow{
			N:              i + 1,
			Nome:           a.Nome,
			NumeroProcesso: dash(a.NumeroProcesso),
			Sexo:           dash(a.Sexo),
			Idade:          Age(a.DataNascimento, a.Idade, now),
			Encarregado:    dash(a.Encarregado),
			Telefone:       dash(a.Telefone),
		})
	}
	return rows
}

// PlanRoster splits the rows into pages. An empty roster still yields one page.
func PlanRoster(rows []RosterRow, layout RosterLayout) []RosterPage {
	pages := []RosterPage{}
	first := true
	for len(rows) > 0 || first {
		n := layout.ItemsPerPage(first)
		if n > len(rows) {
			n = len(rows)
		}
		pages = append(pages, RosterPage{Number: len(pages) + 1, First: first, Rows: rows[:n]})
		rows = rows[n:]
		first = false
	}
	return pages
}

// ── PDF ──

var rosterCols = []struct {
	title string
	size  int
	align align.Type
}{
	{"Nº", 1, align.Center},
	{"Nome completo", 5, align.Left},
	{"Nº processo", 2, align.Center},
	{"Sexo", 1, align.Center},
	{"Idade", 1, align.Center},
	{"Telefone", 2, align.Center},
}

// RenderRosterPDF renders the nominal list of a turma on A4 pages.
func RenderRosterPDF(r Roster, now time.Time) ([]byte, error) {
	layout := DefaultRosterLayout
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(12).
		WithTopMargin(layout.MarginTop).
		WithRightMargin(12).
		WithBottomMargin(layout.MarginBottom).
		Build()
	m := maroto.New(cfg)

	meta := r.Meta()
	plan := PlanRoster(r.Rows(now), layout)
	generated := now.Format("02/01/2006 15:04")

	for _, p := range plan {
		var rows []core.Row
		if p.First {
			rows = append(rows, rosterHeader(r.Institution, layout)...)
			rows = append(rows, rosterMeta(meta, layout)...)
		}
		rows = append(rows, rosterTableHeader(layout))
		for _, sr := range p.Rows {
			rows = append(rows, row.New(layout.Row).Add(
				text.NewCol(1, strconv.Itoa(sr.N), props.Text{Size: 8, Align: align.Center, Top: 1.5}),
				text.NewCol(5, sr.Nome, props.Text{Size: 8, Top: 1.5}),
				text.NewCol(2, sr.NumeroProcesso, props.Text{Size: 8, Align: align.Center, Top: 1.5}),
				text.NewCol(1, sr.Sexo, props.Text{Size: 8, Align: align.Center, Top: 1.5}),
				text.NewCol(1, sr.Idade, props.Text{Size: 8, Align: align.Center, Top: 1.5}),
				text.NewCol(2, sr.Telefone, props.Text{Size: 8, Align: align.Center, Top: 1.5}),
			))
		}
		if len(p.Rows) == 0 {
			rows = append(rows, text.NewRow(layout.Row, "Nenhum aluno matriculado nesta turma", props.Text{Size: 8, Style: fontstyle.Italic, Align: align.Center, Top: 1.5}))
		}
		rows = append(rows,
			row.New(2).Add(line.NewCol(12)),
			row.New(layout.Footer-2).Add(
				text.NewCol(8, "Gerado em "+generated, props.Text{Size: 7}),
				text.NewCol(4, fmt.Sprintf("Página %d de %d", p.Number, len(plan)), props.Text{Size: 7, Align: align.Right}),
			),
		)
		m.AddPages(page.New().Add(rows...))
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("generate roster pdf: %w", err)
	}
	return doc.GetBytes(), nil
}

func rosterHeader(inst Institution, l RosterLayout) []core.Row {
	rows := []core.Row{}
	used := 0.0
	if len(inst.Logo) > 0 {
		rows = append(rows, row.New(18).Add(col.New(12).Add(
			image.NewFromBytes(inst.Logo, extension.Png, props.Rect{Center: true, Percent: 100}),
		)))
		used += 18
	}
	rows = append(rows,
		text.NewRow(7, "REPÚBLICA DE ANGOLA", props.Text{Size: 9, Align: align.Center}),
		text.NewRow(7, inst.Name, props.Text{Size: 12, Style: fontstyle.Bold, Align: align.Center}),
		text.NewRow(6, "LISTA NOMINAL DE ALUNOS", props.Text{Size: 10, Style: fontstyle.Bold, Align: align.Center}),
	)
	used += 20
	if rest := l.Header - used; rest > 0 {
		rows = append(rows, row.New(rest))
	}
	return rows
}

func rosterMeta(m RosterMeta, l RosterLayout) []core.Row {
	label := props.Text{Size: 8, Style: fontstyle.Bold}
	value := props.Text{Size: 8}
	pair := func(k1, v1, k2, v2 string) core.Row {
		return row.New(6).Add(
			text.NewCol(2, k1, label), text.NewCol(4, v1, value),
			text.NewCol(2, k2, label), text.NewCol(4, v2, value),
		)
	}
	rows := []core.Row{
		pair("Turma:", m.Turma, "Classe:", m.Classe),
		pair("Curso:", m.Curso, "Sala:", m.Sala),
		pair("Período:", m.Periodo, "Ano lectivo:", m.AnoLectivo),
		row.New(l.Meta - 18).Add(text.NewCol(12, fmt.Sprintf("Total de alunos: %d", m.Total), label)),
	}
	return rows
}

func rosterTableHeader(l RosterLayout) core.Row {
	cols := make([]core.Col, 0, len(rosterCols))
	for _, c := range rosterCols {
		cols = append(cols, text.NewCol(c.size, c.title, props.Text{Size: 8, Style: fontstyle.Bold, Align: c.align, Top: 2}))
	}
	return row.New(l.TableHeader).Add(cols...)
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

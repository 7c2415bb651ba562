package document

import (
	"fmt"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emanuel-malungo/jomorais/internal/model"
)

func sampleRoster(n int) Roster {
	alunos := make([]model.Aluno, 0, n)
	for i := 0; i < n; i++ {
		alunos = append(alunos, model.Aluno{Nome: fmt.Sprintf("Aluno %03d", n-i)})
	}
	return Roster{
		Institution: testInstitution,
		Turma: model.Turma{
			Designacao: "10ª A",
			Sala:       "12",
			Periodo:    model.PeriodoManha,
			AnoLectivo: "2024/2025",
			Classe:     &model.Classe{Designacao: "10ª Classe"},
			Curso:      &model.Curso{Designacao: "Informática de Gestão"},
		},
		Alunos: alunos,
	}
}

func TestSortAlunos_PortugueseCollation(t *testing.T) {
	in := []model.Aluno{{Nome: "Zé Manuel"}, {Nome: "Ângela"}, {Nome: "André"}, {Nome: "ana"}}
	out := SortAlunos(in)

	names := make([]string, 0, len(out))
	for _, a := range out {
		names = append(names, a.Nome)
	}
	assert.Equal(t, []string{"ana", "André", "Ângela", "Zé Manuel"}, names)
	assert.Equal(t, "Zé Manuel", in[0].Nome, "input slice is left untouched")
}

func TestRosterRows_AgesAndNumbering(t *testing.T) {
	birth := time.Date(1990, time.May, 10, 0, 0, 0, 0, time.UTC)
	stored := 16
	r := Roster{Alunos: []model.Aluno{
		{Nome: "Carlos", DataNascimento: &birth},
		{Nome: "Beatriz", Idade: &stored},
		{Nome: "Afonso"},
	}}

	rows := r.Rows(time.Date(2024, time.May, 9, 12, 0, 0, 0, time.UTC))
	require.Len(t, rows, 3)
	assert.Equal(t, RosterRow{N: 1, Nome: "Afonso", NumeroProcesso: "-", Sexo: "-", Idade: "N/A", Encarregado: "-", Telefone: "-"}, rows[0])
	assert.Equal(t, "16", rows[1].Idade)
	assert.Equal(t, "33", rows[2].Idade)
	assert.Equal(t, 3, rows[2].N)
}

func TestRosterLayout_ItemsPerPage(t *testing.T) {
	l := DefaultRosterLayout
	first, next := l.ItemsPerPage(true), l.ItemsPerPage(false)
	assert.Equal(t, 26, first)
	assert.Equal(t, 36, next)

	tiny := RosterLayout{PageHeight: 50, Header: 40, Meta: 40, Row: 7}
	assert.Equal(t, 1, tiny.ItemsPerPage(true))
}

func TestPlanRoster(t *testing.T) {
	rows := func(n int) []RosterRow {
		out := make([]RosterRow, n)
		for i := range out {
			out[i].N = i + 1
		}
		return out
	}
	sizes := func(pages []RosterPage) []int {
		out := []int{}
		for _, p := range pages {
			out = append(out, len(p.Rows))
		}
		return out
	}

	cases := []struct {
		name string
		n    int
		want []int
	}{
		{"empty", 0, []int{0}},
		{"fits first page", 26, []int{26}},
		{"one over", 27, []int{26, 1}},
		{"three pages", 70, []int{26, 36, 8}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			pages := PlanRoster(rows(tc.n), DefaultRosterLayout)
			assert.Equal(t, tc.want, sizes(pages))
			for i, p := range pages {
				assert.Equal(t, i+1, p.Number)
				assert.Equal(t, i == 0, p.First)
			}
		})
	}
}

func TestRosterMeta(t *testing.T) {
	m := sampleRoster(3).Meta()
	assert.Equal(t, RosterMeta{
		Turma:      "10ª A",
		Classe:     "10ª Classe",
		Curso:      "Informática de Gestão",
		Sala:       "12",
		Periodo:    "Manhã",
		AnoLectivo: "2024/2025",
		Total:      3,
	}, m)

	bare := Roster{Turma: model.Turma{Designacao: "X"}}.Meta()
	assert.Equal(t, "-", bare.Classe)
	assert.Equal(t, "-", bare.Sala)
}

func TestRenderRosterPDF(t *testing.T) {
	r := sampleRoster(70)
	r.Institution.Logo = testPNG(t, 120, 120)

	pdf, err := RenderRosterPDF(r, time.Now())
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(pdf), "%PDF"))
}

// pdfPages counts page objects, leaving out the /Pages tree node.
var pdfPages = regexp.MustCompile(`/Type\s*/Page\b`)

func TestRenderRosterPDF_PageCountFollowsPlan(t *testing.T) {
	now := time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)
	for _, n := range []int{0, 26, 27, 70, 200} {
		t.Run(fmt.Sprintf("%d alunos", n), func(t *testing.T) {
			r := sampleRoster(n)
			pdf, err := RenderRosterPDF(r, now)
			require.NoError(t, err)

			want := len(PlanRoster(r.Rows(now), DefaultRosterLayout))
			assert.Equal(t, want, len(pdfPages.FindAll(pdf, -1)))
		})
	}
}

func TestRenderRosterPDF_Empty(t *testing.T) {
	pdf, err := RenderRosterPDF(sampleRoster(0), time.Now())
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(pdf), "%PDF"))
}

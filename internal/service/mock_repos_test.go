package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"gorm.io/gorm"

	"github.com/emanuel-malungo/jomorais/internal/model"
	"github.com/emanuel-malungo/jomorais/internal/repository"
)

// ── Mock ResourceRepository ──

// mockResourceRepo is an in-memory ResourceRepository keyed by id.
type mockResourceRepo[E any] struct {
	rows   map[int64]E
	nextID int64
	getID  func(e *E) int64
	setID  func(e *E, id int64)

	// columns maps a unique column name to the value it holds for a row
	columns map[string]func(e *E) any

	// filter decides whether a row matches ListQuery.Filters
	filter func(e *E, filters map[string]string) bool
	report *model.DeleteReport

	calls struct {
		create, update, delete int
	}
}

func newMockResourceRepo[E any](getID func(e *E) int64, setID func(e *E, id int64)) *mockResourceRepo[E] {
	return &mockResourceRepo[E]{
		rows:    make(map[int64]E),
		getID:   getID,
		setID:   setID,
		columns: make(map[string]func(e *E) any),
	}
}

func (m *mockResourceRepo[E]) seed(e E) *E {
	_ = m.Create(context.Background(), &e)
	return &e
}

func (m *mockResourceRepo[E]) List(_ context.Context, q repository.ListQuery) ([]E, int64, error) {
	ids := make([]int64, 0, len(m.rows))
	for id := range m.rows {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	var all []E
	for _, id := range ids {
		e := m.rows[id]
		if m.filter != nil && len(q.Filters) > 0 && !m.filter(&e, q.Filters) {
			continue
		}
		all = append(all, e)
	}
	total := int64(len(all))

	start := q.Offset()
	if start > len(all) {
		return nil, total, nil
	}
	end := start + q.PageSize
	if q.PageSize <= 0 || end > len(all) {
		end = len(all)
	}
	return all[start:end], total, nil
}

func (m *mockResourceRepo[E]) GetByID(_ context.Context, id int64) (*E, error) {
	e, ok := m.rows[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &e, nil
}

func (m *mockResourceRepo[E]) Create(_ context.Context, e *E) error {
	m.calls.create++
	m.nextID++
	m.setID(e, m.nextID)
	m.rows[m.nextID] = *e
	return nil
}

func (m *mockResourceRepo[E]) Update(_ context.Context, e *E) error {
	m.calls.update++
	id := m.getID(e)
	if _, ok := m.rows[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	m.rows[id] = *e
	return nil
}

func (m *mockResourceRepo[E]) Delete(_ context.Context, id int64) (*model.DeleteReport, error) {
	m.calls.delete++
	if _, ok := m.rows[id]; !ok {
		return nil, gorm.ErrRecordNotFound
	}
	delete(m.rows, id)
	if m.report != nil {
		return m.report, nil
	}
	return &model.DeleteReport{Kind: model.DeleteHard, Message: "Registo eliminado com sucesso"}, nil
}

func (m *mockResourceRepo[E]) Exists(_ context.Context, column string, value any, excludeID int64) (bool, error) {
	get, ok := m.columns[column]
	if !ok {
		return false, fmt.Errorf("mock: unknown column %q", column)
	}
	for id, e := range m.rows {
		if id == excludeID {
			continue
		}
		if get(&e) == value {
			return true, nil
		}
	}
	return false, nil
}

// ── Mock PagamentoRepository ──

type mockPagamentoRepo struct {
	*mockResourceRepo[model.Pagamento]
	seq int
}

func (m *mockPagamentoRepo) ListByPeriod(_ context.Context, inicio, fim time.Time) ([]model.Pagamento, error) {
	var out []model.Pagamento
	for _, p := range m.rows {
		if p.IsActive() && !p.DataPagamento.Before(inicio) && p.DataPagamento.Before(fim) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *mockPagamentoRepo) NextNumeroFatura(_ context.Context, year int) (string, error) {
	m.seq++
	return fmt.Sprintf("FT JM%d/%06d", year, m.seq), nil
}

// ── Mock UtilizadorRepository ──

type mockUtilizadorRepo struct {
	*mockResourceRepo[model.Utilizador]
}

func (m *mockUtilizadorRepo) GetByEmail(_ context.Context, email string) (*model.Utilizador, error) {
	for _, u := range m.rows {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

// ── test helpers ──

type mockRepos struct {
	curso       *mockResourceRepo[model.Curso]
	disciplina  *mockResourceRepo[model.Disciplina]
	classe      *mockResourceRepo[model.Classe]
	turma       *mockResourceRepo[model.Turma]
	aluno       *mockResourceRepo[model.Aluno]
	professor   *mockResourceRepo[model.Professor]
	servico     *mockResourceRepo[model.Servico]
	pagamento   *mockPagamentoRepo
	notaCredito *mockResourceRepo[model.NotaCredito]
	utilizador  *mockUtilizadorRepo
}

func newMockRepository() (*repository.Repository, *mockRepos) {
	m := &mockRepos{
		curso: newMockResourceRepo(
			func(e *model.Curso) int64 { return e.ID },
			func(e *model.Curso, id int64) { e.ID = id }),
		disciplina: newMockResourceRepo(
			func(e *model.Disciplina) int64 { return e.ID },
			func(e *model.Disciplina, id int64) { e.ID = id }),
		classe: newMockResourceRepo(
			func(e *model.Classe) int64 { return e.ID },
			func(e *model.Classe, id int64) { e.ID = id }),
		turma: newMockResourceRepo(
			func(e *model.Turma) int64 { return e.ID },
			func(e *model.Turma, id int64) { e.ID = id }),
		aluno: newMockResourceRepo(
			func(e *model.Aluno) int64 { return e.ID },
			func(e *model.Aluno, id int64) { e.ID = id }),
		professor: newMockResourceRepo(
			func(e *model.Professor) int64 { return e.ID },
			func(e *model.Professor, id int64) { e.ID = id }),
		servico: newMockResourceRepo(
			func(e *model.Servico) int64 { return e.ID },
			func(e *model.Servico, id int64) { e.ID = id }),
		pagamento: &mockPagamentoRepo{mockResourceRepo: newMockResourceRepo(
			func(e *model.Pagamento) int64 { return e.ID },
			func(e *model.Pagamento, id int64) { e.ID = id })},
		notaCredito: newMockResourceRepo(
			func(e *model.NotaCredito) int64 { return e.ID },
			func(e *model.NotaCredito, id int64) { e.ID = id }),
		utilizador: &mockUtilizadorRepo{mockResourceRepo: newMockResourceRepo(
			func(e *model.Utilizador) int64 { return e.ID },
			func(e *model.Utilizador, id int64) { e.ID = id })},
	}

	m.curso.columns["codigo"] = func(e *model.Curso) any { return e.Codigo }
	m.classe.columns["designacao"] = func(e *model.Classe) any { return e.Designacao }
	m.servico.columns["designacao"] = func(e *model.Servico) any { return e.Designacao }
	m.utilizador.columns["email"] = func(e *model.Utilizador) any { return e.Email }
	m.aluno.filter = func(e *model.Aluno, f map[string]string) bool {
		want, ok := f["codigo_turma"]
		if !ok {
			return true
		}
		return e.CodigoTurma != nil && fmt.Sprint(*e.CodigoTurma) == want
	}

	repo := &repository.Repository{
		Curso:       m.curso,
		Disciplina:  m.disciplina,
		Classe:      m.classe,
		Turma:       m.turma,
		Aluno:       m.aluno,
		Professor:   m.professor,
		Servico:     m.servico,
		Pagamento:   m.pagamento,
		NotaCredito: m.notaCredito,
		Utilizador:  m.utilizador,
	}
	return repo, m
}

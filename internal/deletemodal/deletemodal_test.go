package deletemodal

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emanuel-malungo/jomorais/internal/client"
	"github.com/emanuel-malungo/jomorais/internal/model"
)

type fakeDeleter struct {
	calls  []int64
	err    error
	result *client.DeleteResult
}

func (f *fakeDeleter) Delete(_ context.Context, id int64) (*client.DeleteResult, error) {
	f.calls = append(f.calls, id)
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func newCursoModal(d Deleter) *Modal[model.Curso] {
	m := New[model.Curso](d, func(c model.Curso) string { return c.Codigo + " · " + c.Designacao },
		"Disciplinas do curso", "Turmas do curso", "Alunos dessas turmas ficam sem turma")
	m.Labels = map[string]string{"disciplinas": "Disciplinas", "turmas": "Turmas"}
	return m
}

func curso() model.Curso {
	return model.Curso{BaseModel: model.BaseModel{ID: 5}, Codigo: "INF", Designacao: "Informática"}
}

func TestModal_ConfirmShowsResult(t *testing.T) {
	d := &fakeDeleter{result: &client.DeleteResult{
		Kind:    model.DeleteCascade,
		Counts:  map[string]int64{"turmas": 2, "disciplinas": 6, "alunos_desvinculados": 0},
		Message: "Curso eliminado com sucesso",
	}}
	m := newCursoModal(d)
	var reported *client.DeleteResult
	m.OnSuccess = func(r *client.DeleteResult) { reported = r }

	assert.Equal(t, PhaseClosed, m.Phase())
	m.Open(curso())
	assert.Equal(t, PhaseConfirm, m.Phase())
	assert.Equal(t, "INF · Informática", m.Title())
	assert.Len(t, m.Warnings, 3)

	res, err := m.Confirm(context.Background())
	require.NoError(t, err)
	assert.Equal(t, PhaseResult, m.Phase())
	assert.Same(t, res, reported)
	assert.Equal(t, []int64{5}, d.calls)
	assert.Equal(t, []Count{{Label: "Disciplinas", N: 6}, {Label: "Turmas", N: 2}}, m.Counts())
}

func TestModal_ConfirmInResultPhaseIsNoop(t *testing.T) {
	d := &fakeDeleter{result: &client.DeleteResult{Kind: model.DeleteHard, Message: "ok"}}
	m := newCursoModal(d)
	m.Open(curso())

	first, err := m.Confirm(context.Background())
	require.NoError(t, err)

	again, err := m.Confirm(context.Background())
	require.NoError(t, err)
	assert.Same(t, first, again)
	assert.Len(t, d.calls, 1)
	assert.Equal(t, PhaseResult, m.Phase())
}

func TestModal_FailureStaysInConfirm(t *testing.T) {
	d := &fakeDeleter{err: &client.APIError{Status: 500, Message: "Erro ao eliminar"}}
	m := newCursoModal(d)
	m.Open(curso())

	_, err := m.Confirm(context.Background())
	require.Error(t, err)
	assert.Equal(t, PhaseConfirm, m.Phase())
	assert.Equal(t, "Erro ao eliminar", m.Err)

	// confirm is re-enabled; no automatic retry happened
	assert.Len(t, d.calls, 1)
	d.err = nil
	d.result = &client.DeleteResult{Kind: model.DeleteHard}
	_, err = m.Confirm(context.Background())
	require.NoError(t, err)
	assert.Empty(t, m.Err)
	assert.Len(t, d.calls, 2)
}

func TestModal_CancelHasNoSideEffects(t *testing.T) {
	d := &fakeDeleter{}
	m := newCursoModal(d)
	m.Open(curso())
	m.Cancel()

	assert.Equal(t, PhaseClosed, m.Phase())
	res, err := m.Confirm(context.Background())
	assert.NoError(t, err)
	assert.Nil(t, res)
	assert.Empty(t, d.calls)
}

func TestModal_OpenResetsPreviousResult(t *testing.T) {
	d := &fakeDeleter{result: &client.DeleteResult{Kind: model.DeleteSoft}}
	m := newCursoModal(d)
	m.Open(curso())
	_, _ = m.Confirm(context.Background())

	next := curso()
	next.ID = 6
	m.Open(next)
	assert.Equal(t, PhaseConfirm, m.Phase())
	assert.Nil(t, m.Result)
	assert.Nil(t, m.Counts())
}

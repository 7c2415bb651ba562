package form

import (
	"context"
	"errors"
	"net/url"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emanuel-malungo/jomorais/internal/client"
	"github.com/emanuel-malungo/jomorais/internal/model"
)

type fakeSaver[E any] struct {
	creates int
	updates int
	lastID  int64
	err     error
	out     *E
}

func (f *fakeSaver[E]) Create(_ context.Context, in *E) (*E, error) {
	f.creates++
	if f.err != nil {
		return nil, f.err
	}
	if f.out != nil {
		return f.out, nil
	}
	return in, nil
}

func (f *fakeSaver[E]) Update(_ context.Context, id int64, in *E) (*E, error) {
	f.updates++
	f.lastID = id
	if f.err != nil {
		return nil, f.err
	}
	return in, nil
}

func turmaSchema() *Schema[model.Turma] {
	return NewSchema("Turma",
		func() model.Turma {
			return model.Turma{BaseModel: model.BaseModel{Status: model.StatusActivo}, Periodo: model.PeriodoManha, Capacidade: 40}
		},
		[]Field{
			{Key: "designacao", Label: "Designação", Kind: KindText},
			{Key: "codigo_classe", Label: "Classe", Kind: KindSelect},
			{Key: "codigo_curso", Label: "Curso", Kind: KindSelect},
			{Key: "sala", Label: "Sala", Kind: KindText},
			{Key: "capacidade", Label: "Capacidade", Kind: KindNumber},
		},
		map[string]string{
			"Designacao":   "required,max=100",
			"CodigoClasse": "required",
			"CodigoCurso":  "required",
			"Capacidade":   "gt=0",
		},
	)
}

func validTurma() model.Turma {
	return model.Turma{Designacao: "10A", CodigoClasse: 1, CodigoCurso: 2, Capacidade: 35}
}

// ── Schema ──

func TestSchema_MarksRequiredFields(t *testing.T) {
	s := turmaSchema()
	required := map[string]bool{}
	for _, f := range s.Fields {
		required[f.Key] = f.Required
	}
	assert.Equal(t, map[string]bool{
		"designacao":    true,
		"codigo_classe": true,
		"codigo_curso":  true,
		"sala":          false,
		"capacidade":    false,
	}, required)
}

func TestSchema_Validate(t *testing.T) {
	s := turmaSchema()

	ok := validTurma()
	assert.Empty(t, s.Validate(&ok))

	bad := validTurma()
	bad.Capacidade = 0
	bad.Designacao = ""
	errs := s.Validate(&bad)
	assert.Equal(t, map[string]string{
		"designacao": "Campo obrigatório",
		"capacidade": "Deve ser maior que 0",
	}, errs)
}

func TestSchema_ValidateDecimal(t *testing.T) {
	s := NewSchema[model.Servico]("Serviço", nil,
		[]Field{{Key: "preco", Label: "Preço", Kind: KindMoney}},
		map[string]string{"Designacao": "required", "Preco": "gt=0"},
	)

	svc := model.Servico{Designacao: "Propina", Preco: decimal.NewFromInt(25000)}
	assert.Empty(t, s.Validate(&svc))

	svc.Preco = decimal.Zero
	assert.Equal(t, map[string]string{"preco": "Deve ser maior que 0"}, s.Validate(&svc))
}

func TestSchema_Bind(t *testing.T) {
	s := NewSchema[model.Aluno]("Aluno", nil,
		[]Field{{Key: "nome", Label: "Nome", Kind: KindText}},
		map[string]string{"Nome": "required"},
	)
	turma := int64(4)
	idade := 15
	a := model.Aluno{Nome: "Antigo", Morada: "Luanda", CodigoTurma: &turma, Idade: &idade}

	values := url.Values{
		"nome":            {"Ana Silva"},
		"codigo_turma":    {""},
		"data_nascimento": {"2008-02-29"},
		"idade":           {""},
		"status":          {"Inactivo"},
		"id":              {"999"},
	}
	require.NoError(t, s.Bind(values, &a))

	assert.Equal(t, "Ana Silva", a.Nome)
	assert.Equal(t, "Luanda", a.Morada, "missing keys are left alone")
	assert.Nil(t, a.CodigoTurma, "empty reference clears the link")
	assert.Nil(t, a.Idade)
	require.NotNil(t, a.DataNascimento)
	assert.Equal(t, "2008-02-29", a.DataNascimento.Format("2006-01-02"))
	assert.Equal(t, model.StatusInactivo, a.Status)
	assert.Zero(t, a.ID, "id is not bindable")
}

func TestSchema_BindDecimal(t *testing.T) {
	s := NewSchema[model.Servico]("Serviço", nil, nil, map[string]string{})
	var svc model.Servico

	require.NoError(t, s.Bind(url.Values{"designacao": {"Propina"}, "preco": {"25000.50"}}, &svc))
	assert.True(t, decimal.RequireFromString("25000.50").Equal(svc.Preco))
}

// ── Modal ──

func TestModal_OpenResetsFromEntityOrDefaults(t *testing.T) {
	m := NewModal(turmaSchema(), &fakeSaver[model.Turma]{}, nil)

	row := validTurma()
	row.ID = 7
	m.Open(&row)
	assert.True(t, m.IsOpen())
	assert.True(t, m.Editing())
	assert.Equal(t, "10A", m.Data.Designacao)

	m.Data.Designacao = "alterado"
	m.Open(&row) // already open
	assert.Equal(t, "alterado", m.Data.Designacao)

	m.Close()
	m.Open(nil)
	assert.False(t, m.Editing())
	assert.Equal(t, 40, m.Data.Capacidade)
	assert.Equal(t, "", m.Data.Designacao)
}

func TestModal_RequiredFieldBlocksNetwork(t *testing.T) {
	saver := &fakeSaver[model.Turma]{}
	m := NewModal(turmaSchema(), saver, nil)

	m.Open(nil)
	m.Data = validTurma()
	m.Data.CodigoCurso = 0

	_, err := m.Submit(context.Background())
	assert.ErrorIs(t, err, ErrInvalid)
	assert.Equal(t, 0, saver.creates+saver.updates)
	assert.Equal(t, map[string]string{"codigo_curso": "Campo obrigatório"}, m.Errors)
	assert.True(t, m.IsOpen())
}

func TestModal_CreateSuccessClosesAndNotifies(t *testing.T) {
	saver := &fakeSaver[model.Turma]{}
	var notified *model.Turma
	m := NewModal(turmaSchema(), saver, func(saved *model.Turma) { notified = saved })

	m.Open(nil)
	m.Data = validTurma()

	saved, err := m.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, saver.creates)
	assert.Same(t, saved, notified)
	assert.False(t, m.IsOpen())
}

func TestModal_UpdateUsesInitialID(t *testing.T) {
	saver := &fakeSaver[model.Turma]{}
	m := NewModal(turmaSchema(), saver, nil)

	row := validTurma()
	row.ID = 12
	m.Open(&row)
	m.Data.ID = 99 // edited data cannot retarget the update

	_, err := m.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, saver.updates)
	assert.EqualValues(t, 12, saver.lastID)
}

func TestModal_ServerFailureKeepsOpen(t *testing.T) {
	saver := &fakeSaver[model.Turma]{err: &client.APIError{
		Status:  400,
		Message: "Dados inválidos",
		Fields:  []client.FieldError{{Field: "codigo_curso", Message: "Curso inexistente"}},
	}}
	called := false
	m := NewModal(turmaSchema(), saver, func(*model.Turma) { called = true })

	m.Open(nil)
	m.Data = validTurma()

	_, err := m.Submit(context.Background())
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrInvalid))
	assert.True(t, m.IsOpen())
	assert.False(t, called)
	assert.Equal(t, "Dados inválidos", m.Err)
	assert.Equal(t, "Curso inexistente", m.FieldError("codigo_curso"))
}

package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/emanuel-malungo/jomorais/internal/model"
	"github.com/emanuel-malungo/jomorais/internal/repository"
)

// ── académico ──

func cursoRules() ResourceRules[model.Curso] {
	return ResourceRules[model.Curso]{
		Name: "curso",
		Unique: []UniqueKey[model.Curso]{{
			Column:  "codigo",
			Field:   "codigo",
			Value:   func(e *model.Curso) any { return strings.TrimSpace(e.Codigo) },
			Message: "Já existe um curso com este código",
		}},
		BeforeSave: func(_ context.Context, e *model.Curso, _ bool) error {
			e.Codigo = strings.ToUpper(strings.TrimSpace(e.Codigo))
			e.Designacao = strings.TrimSpace(e.Designacao)
			return nil
		},
	}
}

func disciplinaRules(repo *repository.Repository) ResourceRules[model.Disciplina] {
	return ResourceRules[model.Disciplina]{
		Name: "disciplina",
		References: func(e *model.Disciplina) []Reference {
			return []Reference{
				{Field: "codigo_curso", ID: &e.CodigoCurso, Exists: refTo(repo.Curso), Message: "Curso não encontrado"},
			}
		},
	}
}

func classeRules() ResourceRules[model.Classe] {
	return ResourceRules[model.Classe]{
		Name: "classe",
		Unique: []UniqueKey[model.Classe]{{
			Column:  "designacao",
			Field:   "designacao",
			Value:   func(e *model.Classe) any { return strings.TrimSpace(e.Designacao) },
			Message: "Já existe uma classe com esta designação",
		}},
	}
}

func turmaRules(repo *repository.Repository) ResourceRules[model.Turma] {
	return ResourceRules[model.Turma]{
		Name: "turma",
		References: func(e *model.Turma) []Reference {
			return []Reference{
				{Field: "codigo_classe", ID: &e.CodigoClasse, Exists: refTo(repo.Classe), Message: "Classe não encontrada"},
				{Field: "codigo_curso", ID: &e.CodigoCurso, Exists: refTo(repo.Curso), Message: "Curso não encontrado"},
			}
		},
	}
}

func alunoRules(repo *repository.Repository) ResourceRules[model.Aluno] {
	return ResourceRules[model.Aluno]{
		Name: "aluno",
		References: func(e *model.Aluno) []Reference {
			return []Reference{
				{Field: "codigo_turma", ID: e.CodigoTurma, Exists: refTo(repo.Turma), Message: "Turma não encontrada"},
			}
		},
		BeforeSave: func(_ context.Context, e *model.Aluno, _ bool) error {
			if e.CodigoTurma != nil && *e.CodigoTurma == 0 {
				e.CodigoTurma = nil
			}
			return nil
		},
	}
}

func professorRules() ResourceRules[model.Professor] {
	return ResourceRules[model.Professor]{Name: "professor"}
}

// ── finanças ──

func servicoRules() ResourceRules[model.Servico] {
	return ResourceRules[model.Servico]{
		Name: "servico",
		Unique: []UniqueKey[model.Servico]{{
			Column:  "designacao",
			Field:   "designacao",
			Value:   func(e *model.Servico) any { return strings.TrimSpace(e.Designacao) },
			Message: "Já existe um serviço com esta designação",
		}},
	}
}

func pagamentoRules(repo *repository.Repository, now func() time.Time) ResourceRules[model.Pagamento] {
	return ResourceRules[model.Pagamento]{
		Name:     "pagamento",
		ReadOnly: []string{"numero_fatura", "total"},
		References: func(e *model.Pagamento) []Reference {
			return []Reference{
				{Field: "codigo_aluno", ID: &e.CodigoAluno, Exists: refTo(repo.Aluno), Message: "Aluno não encontrado"},
			}
		},
		BeforeSave: func(ctx context.Context, e *model.Pagamento, creating bool) error {
			if len(e.Itens) == 0 {
				return fieldError("itens", "Adicione pelo menos um serviço")
			}
			for i := range e.Itens {
				it := &e.Itens[i]
				servico, err := repo.Servico.GetByID(ctx, it.CodigoServico)
				if err != nil {
					if errors.Is(err, gorm.ErrRecordNotFound) {
						return referenceError("itens", "Serviço não encontrado")
					}
					return err
				}
				if it.Designacao == "" {
					it.Designacao = servico.Designacao
				}
				if it.Preco.IsZero() {
					it.Preco = servico.Preco
				}
				if it.Quantidade <= 0 {
					it.Quantidade = 1
				}
			}

			e.Total = e.ComputeTotal()
			if e.Total.IsNegative() {
				return fieldError("itens", "O desconto excede o valor dos serviços")
			}
			if e.ValorEntregue.IsZero() {
				e.ValorEntregue = e.Total
			}
			if e.ValorEntregue.LessThan(e.Total) {
				return fieldError("valor_entregue", "Valor entregue inferior ao total")
			}
			if e.DataPagamento.IsZero() {
				e.DataPagamento = now()
			}

			if creating {
				numero, err := repo.Pagamento.NextNumeroFatura(ctx, e.DataPagamento.Year())
				if err != nil {
					return err
				}
				e.NumeroFatura = numero
			}
			return nil
		},
	}
}

func notaCreditoRules(repo *repository.Repository, now func() time.Time) ResourceRules[model.NotaCredito] {
	return ResourceRules[model.NotaCredito]{
		Name: "nota_credito",
		References: func(e *model.NotaCredito) []Reference {
			return []Reference{
				{Field: "codigo_aluno", ID: &e.CodigoAluno, Exists: refTo(repo.Aluno), Message: "Aluno não encontrado"},
				{Field: "codigo_pagamento", ID: e.CodigoPagamento, Exists: refTo[model.Pagamento](repo.Pagamento), Message: "Pagamento não encontrado"},
			}
		},
		BeforeSave: func(_ context.Context, e *model.NotaCredito, _ bool) error {
			if e.CodigoPagamento != nil && *e.CodigoPagamento == 0 {
				e.CodigoPagamento = nil
			}
			if e.DataEmissao.IsZero() {
				e.DataEmissao = now()
			}
			return nil
		},
	}
}

// ── utilizadores ──

func utilizadorRules() ResourceRules[model.Utilizador] {
	return ResourceRules[model.Utilizador]{
		Name: "utilizador",
		Unique: []UniqueKey[model.Utilizador]{{
			Column:  "email",
			Field:   "email",
			Value:   func(e *model.Utilizador) any { return strings.ToLower(strings.TrimSpace(e.Email)) },
			Message: "Este email já está registado",
		}},
		BeforeSave: func(_ context.Context, e *model.Utilizador, creating bool) error {
			e.Email = strings.ToLower(strings.TrimSpace(e.Email))
			if e.Password == "" {
				if creating {
					return fieldError("password", "Campo obrigatório")
				}
				return nil
			}
			hash, err := bcrypt.GenerateFromPassword([]byte(e.Password), bcrypt.DefaultCost)
			if err != nil {
				return err
			}
			e.PasswordHash = string(hash)
			e.Password = ""
			return nil
		},
	}
}

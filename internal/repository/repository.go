package repository

import (
	"gorm.io/gorm"

	"github.com/emanuel-malungo/jomorais/internal/model"
)

// Repository is the aggregate of every repository the API uses.
type Repository struct {
	Curso       ResourceRepository[model.Curso]
	Disciplina  ResourceRepository[model.Disciplina]
	Classe      ResourceRepository[model.Classe]
	Turma       ResourceRepository[model.Turma]
	Aluno       ResourceRepository[model.Aluno]
	Professor   ResourceRepository[model.Professor]
	Servico     ResourceRepository[model.Servico]
	Pagamento   PagamentoRepository
	NotaCredito ResourceRepository[model.NotaCredito]
	Utilizador  UtilizadorRepository
}

// NewRepository wires the GORM repositories with their search, filter and delete rules.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		Curso: NewResourceRepo[model.Curso](db, ResourceSpec{
			SearchColumns: []string{"codigo", "designacao"},
			Order:         "designacao ASC",
			Delete:        cursoDelete,
		}),
		Disciplina: NewResourceRepo[model.Disciplina](db, ResourceSpec{
			SearchColumns: []string{"designacao"},
			FilterColumns: []string{"codigo_curso"},
			Preloads:      []string{"Curso"},
			Order:         "designacao ASC",
		}),
		Classe: NewResourceRepo[model.Classe](db, ResourceSpec{
			SearchColumns: []string{"designacao"},
			Order:         "nivel ASC, designacao ASC",
			Delete:        classeDelete,
		}),
		Turma: NewResourceRepo[model.Turma](db, ResourceSpec{
			SearchColumns: []string{"designacao", "sala", "ano_lectivo"},
			FilterColumns: []string{"codigo_classe", "codigo_curso", "periodo", "ano_lectivo"},
			Preloads:      []string{"Classe", "Curso"},
			Order:         "designacao ASC",
			Delete:        turmaDelete,
		}),
		Aluno: NewResourceRepo[model.Aluno](db, ResourceSpec{
			SearchColumns: []string{"nome", "numero_processo", "bi", "encarregado"},
			FilterColumns: []string{"codigo_turma", "sexo"},
			Preloads:      []string{"Turma"},
			Order:         "nome ASC",
			Delete:        alunoDelete,
		}),
		Professor: NewResourceRepo[model.Professor](db, ResourceSpec{
			SearchColumns: []string{"nome", "email", "especialidade"},
			Order:         "nome ASC",
		}),
		Servico: NewResourceRepo[model.Servico](db, ResourceSpec{
			SearchColumns: []string{"designacao", "tipo"},
			FilterColumns: []string{"tipo"},
			Order:         "designacao ASC",
			Delete:        servicoDelete,
		}),
		Pagamento: NewPagamentoRepo(db),
		NotaCredito: NewResourceRepo[model.NotaCredito](db, ResourceSpec{
			SearchColumns: []string{"motivo"},
			FilterColumns: []string{"codigo_aluno", "codigo_pagamento"},
			Preloads:      []string{"Aluno"},
			Order:         "data_emissao DESC, id DESC",
		}),
		Utilizador: NewUtilizadorRepo(db),
	}
}

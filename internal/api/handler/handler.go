package handler

import (
	"github.com/emanuel-malungo/jomorais/internal/model"
	"github.com/emanuel-malungo/jomorais/internal/service"
)

// Handler is the aggregate of every API handler.
type Handler struct {
	Auth   *AuthHandler
	Export *ExportHandler

	Curso       *ResourceHandler[model.Curso]
	Disciplina  *ResourceHandler[model.Disciplina]
	Classe      *ResourceHandler[model.Classe]
	Turma       *ResourceHandler[model.Turma]
	Aluno       *ResourceHandler[model.Aluno]
	Professor   *ResourceHandler[model.Professor]
	Servico     *ResourceHandler[model.Servico]
	Pagamento   *ResourceHandler[model.Pagamento]
	NotaCredito *ResourceHandler[model.NotaCredito]
	Utilizador  *ResourceHandler[model.Utilizador]
}

// NewHandler wires the handlers over the service aggregate.
func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		Auth:   NewAuthHandler(svc.Auth),
		Export: NewExportHandler(svc.Export),

		Curso:       NewResourceHandler(svc.Curso, "Curso não encontrado"),
		Disciplina:  NewResourceHandler(svc.Disciplina, "Disciplina não encontrada"),
		Classe:      NewResourceHandler(svc.Classe, "Classe não encontrada"),
		Turma:       NewResourceHandler(svc.Turma, "Turma não encontrada"),
		Aluno:       NewResourceHandler(svc.Aluno, "Aluno não encontrado"),
		Professor:   NewResourceHandler(svc.Professor, "Professor não encontrado"),
		Servico:     NewResourceHandler(svc.Servico, "Serviço não encontrado"),
		Pagamento:   NewResourceHandler(svc.Pagamento, "Pagamento não encontrado"),
		NotaCredito: NewResourceHandler(svc.NotaCredito, "Nota de crédito não encontrada"),
		Utilizador:  NewResourceHandler(svc.Utilizador, "Utilizador não encontrado"),
	}
}

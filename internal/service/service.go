package service

import (
	"time"

	"go.uber.org/zap"

	"github.com/emanuel-malungo/jomorais/config"
	"github.com/emanuel-malungo/jomorais/internal/model"
	"github.com/emanuel-malungo/jomorais/internal/repository"
	"github.com/emanuel-malungo/jomorais/pkg/jwt"
)

// Service is the aggregate of every service the API uses.
type Service struct {
	Auth   AuthService
	Export ExportService

	Curso       ResourceService[model.Curso]
	Disciplina  ResourceService[model.Disciplina]
	Classe      ResourceService[model.Classe]
	Turma       ResourceService[model.Turma]
	Aluno       ResourceService[model.Aluno]
	Professor   ResourceService[model.Professor]
	Servico     ResourceService[model.Servico]
	Pagamento   ResourceService[model.Pagamento]
	NotaCredito ResourceService[model.NotaCredito]
	Utilizador  ResourceService[model.Utilizador]
}

// NewService wires every service over the repository aggregate.
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	revoker TokenRevoker,
	logger *zap.Logger,
) *Service {
	now := time.Now
	return &Service{
		Auth:   NewAuthService(repo, jwtMgr, revoker, logger),
		Export: NewExportService(cfg, repo, logger),

		Curso:       NewResourceService(repo.Curso, cursoRules(), logger),
		Disciplina:  NewResourceService(repo.Disciplina, disciplinaRules(repo), logger),
		Classe:      NewResourceService(repo.Classe, classeRules(), logger),
		Turma:       NewResourceService(repo.Turma, turmaRules(repo), logger),
		Aluno:       NewResourceService(repo.Aluno, alunoRules(repo), logger),
		Professor:   NewResourceService(repo.Professor, professorRules(), logger),
		Servico:     NewResourceService(repo.Servico, servicoRules(), logger),
		Pagamento:   NewResourceService[model.Pagamento](repo.Pagamento, pagamentoRules(repo, now), logger),
		NotaCredito: NewResourceService(repo.NotaCredito, notaCreditoRules(repo, now), logger),
		Utilizador:  NewResourceService[model.Utilizador](repo.Utilizador, utilizadorRules(), logger),
	}
}

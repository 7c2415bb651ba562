package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/emanuel-malungo/jomorais/config"
	"github.com/emanuel-malungo/jomorais/internal/document"
	"github.com/emanuel-malungo/jomorais/internal/repository"
	apperrors "github.com/emanuel-malungo/jomorais/pkg/errors"
)

// ── export errors ──

var (
	ErrExportInvalidPeriod = errors.New("período inválido: a data final deve ser igual ou posterior à inicial")
	ErrExportGenerateFail  = errors.New("falha ao gerar o ficheiro")
)

// rosterLimit upper bound of students fetched for one turma.
const rosterLimit = 1000

// ExportFile a generated file ready to be streamed.
type ExportFile struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ExportService file exports served by the API.
type ExportService interface {
	// ExportSAFT builds the SAF-T (AO) XML for payments dated inicio..fim inclusive.
	ExportSAFT(ctx context.Context, inicio, fim time.Time) (*ExportFile, error)
	// ExportRoster builds the nominal list of a turma as a workbook.
	ExportRoster(ctx context.Context, turmaID int64) (*ExportFile, error)
}

type exportService struct {
	cfg    *config.Config
	repo   *repository.Repository
	logger *zap.Logger
	now    func() time.Time
}

// NewExportService creates the ExportService.
func NewExportService(cfg *config.Config, repo *repository.Repository, logger *zap.Logger) ExportService {
	return &exportService{cfg: cfg, repo: repo, logger: logger, now: time.Now}
}

// ────────────────────── SAF-T ──────────────────────

func (s *exportService) ExportSAFT(ctx context.Context, inicio, fim time.Time) (*ExportFile, error) {
	if fim.Before(inicio) {
		return nil, ErrExportInvalidPeriod
	}

	pagamentos, err := s.repo.Pagamento.ListByPeriod(ctx, inicio, fim.AddDate(0, 0, 1))
	if err != nil {
		s.logger.Error("list payments for saft failed", zap.Error(err))
		return nil, err
	}

	doc := s.cfg.Documents
	data, err := document.BuildSAFT(document.SAFTHeader{
		AuditID:                   uuid.New().String(),
		CompanyID:                 doc.NIF,
		TaxRegistrationNumber:     doc.NIF,
		CompanyName:               doc.InstitutionName,
		Address:                   doc.Address,
		Email:                     doc.Email,
		Telephone:                 doc.Phone,
		CurrencyCode:              doc.Currency,
		StartDate:                 inicio,
		EndDate:                   fim,
		DateCreated:               s.now(),
		SoftwareCertificateNumber: s.cfg.Export.SoftwareCertNum,
	}, pagamentos)
	if err != nil {
		s.logger.Error("build saft failed", zap.Error(err))
		return nil, ErrExportGenerateFail
	}

	s.logger.Info("saft exported",
		zap.String("inicio", inicio.Format("2006-01-02")),
		zap.String("fim", fim.Format("2006-01-02")),
		zap.Int("pagamentos", len(pagamentos)),
	)

	return &ExportFile{
		Filename:    fmt.Sprintf("SAFT_AO_%s_%s.xml", inicio.Format("20060102"), fim.Format("20060102")),
		ContentType: "application/xml",
		Data:        data,
	}, nil
}

// ────────────────────── Roster ──────────────────────

func (s *exportService) ExportRoster(ctx context.Context, turmaID int64) (*ExportFile, error) {
	turma, err := s.repo.Turma.GetByID(ctx, turmaID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		s.logger.Error("get turma failed", zap.Int64("id", turmaID), zap.Error(err))
		return nil, err
	}

	alunos, _, err := s.repo.Aluno.List(ctx, repository.ListQuery{
		Page:     1,
		PageSize: rosterLimit,
		Filters:  map[string]string{"codigo_turma": fmt.Sprint(turmaID)},
	})
	if err != nil {
		s.logger.Error("list alunos for roster failed", zap.Int64("turma", turmaID), zap.Error(err))
		return nil, err
	}

	data, err := document.RenderRosterXLSX(document.Roster{
		Institution: document.Institution{Name: s.cfg.Documents.InstitutionName},
		Turma:       *turma,
		Alunos:      alunos,
	}, s.now())
	if err != nil {
		s.logger.Error("render roster failed", zap.Error(err))
		return nil, ErrExportGenerateFail
	}

	return &ExportFile{
		Filename:    fmt.Sprintf("lista_nominal_%s.xlsx", turma.Designacao),
		ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		Data:        data,
	}, nil
}

package console

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/emanuel-malungo/jomorais/internal/client"
	"github.com/emanuel-malungo/jomorais/internal/document"
	"github.com/emanuel-malungo/jomorais/internal/model"
)

const (
	mimePDF  = "application/pdf"
	mimeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	mimeXML  = "application/xml"
)

// ── receipt ──

func (c *Console) receiptHTML(ctx *gin.Context) {
	r, ok := c.receipt(ctx)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := document.RenderReceiptHTML(&buf, r); err != nil {
		c.failure(ctx, err, "/financas/pagamentos")
		return
	}
	ctx.Data(http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
}

func (c *Console) receiptPDF(ctx *gin.Context) {
	r, ok := c.receipt(ctx)
	if !ok {
		return
	}
	data, err := document.RenderReceiptPDF(r)
	if err != nil {
		c.failure(ctx, err, "/financas/pagamentos")
		return
	}
	sendAttachment(ctx, "inline", "recibo-"+r.Numero+".pdf", mimePDF, data)
}

// receipt loads the payment and its student with turma; the payment list
// endpoint only embeds the student.
func (c *Console) receipt(ctx *gin.Context) (document.Receipt, bool) {
	const back = "/financas/pagamentos"
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.notFound(ctx, "Pagamento não encontrado", back)
		return document.Receipt{}, false
	}

	p, err := c.res.pagamentos.Get(ctx.Request.Context(), id)
	if err != nil {
		c.failure(ctx, err, back)
		return document.Receipt{}, false
	}
	if p == nil {
		c.notFound(ctx, "Pagamento não encontrado", back)
		return document.Receipt{}, false
	}

	if p.Aluno == nil || p.Aluno.Turma == nil {
		aluno, err := c.res.alunos.Get(ctx.Request.Context(), p.CodigoAluno)
		if err != nil {
			c.logger.Warn("load aluno for receipt", zap.Int64("pagamento", id), zap.Error(err))
		} else if aluno != nil {
			p.Aluno = aluno
		}
	}

	return document.BuildReceipt(*p, c.inst, c.operator, c.now()), true
}

// ── roster ──

func (c *Console) rosterPDF(ctx *gin.Context) {
	r, ok := c.roster(ctx)
	if !ok {
		return
	}
	data, err := document.RenderRosterPDF(r, c.now())
	if err != nil {
		c.failure(ctx, err, "/academico/turmas")
		return
	}
	sendAttachment(ctx, "attachment", "lista-"+r.Turma.Designacao+".pdf", mimePDF, data)
}

func (c *Console) rosterXLSX(ctx *gin.Context) {
	r, ok := c.roster(ctx)
	if !ok {
		return
	}
	data, err := document.RenderRosterXLSX(r, c.now())
	if err != nil {
		c.failure(ctx, err, "/academico/turmas")
		return
	}
	sendAttachment(ctx, "attachment", "lista-"+r.Turma.Designacao+".xlsx", mimeXLSX, data)
}

func (c *Console) roster(ctx *gin.Context) (document.Roster, bool) {
	const back = "/academico/turmas"
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.notFound(ctx, "Turma não encontrada", back)
		return document.Roster{}, false
	}

	t, err := c.res.turmas.Get(ctx.Request.Context(), id)
	if err != nil {
		c.failure(ctx, err, back)
		return document.Roster{}, false
	}
	if t == nil {
		c.notFound(ctx, "Turma não encontrada", back)
		return document.Roster{}, false
	}

	alunos, err := listAll(ctx.Request.Context(), c.res.alunos, map[string]string{"codigo_turma": strconv.FormatInt(id, 10)})
	if err != nil {
		c.failure(ctx, err, back)
		return document.Roster{}, false
	}
	return document.Roster{Institution: c.inst, Turma: *t, Alunos: alunos}, true
}

// ── SAF-T ──

type saftForm struct {
	Inicio string
	Fim    string
	Err    string
}

// saft downloads the SAF-T XML from the API. When the API cannot produce it
// (unreachable or 5xx) and the fallback is enabled, the file is assembled
// here from the payment list instead.
func (c *Console) saft(ctx *gin.Context) {
	f := saftForm{Inicio: ctx.Query("inicio"), Fim: ctx.Query("fim")}
	if f.Inicio == "" && f.Fim == "" {
		c.renderSAFT(ctx, http.StatusOK, f)
		return
	}

	inicio, err1 := time.Parse(time.DateOnly, f.Inicio)
	fim, err2 := time.Parse(time.DateOnly, f.Fim)
	if err1 != nil || err2 != nil {
		f.Err = "Indique as datas no formato AAAA-MM-DD"
		c.renderSAFT(ctx, http.StatusBadRequest, f)
		return
	}
	if fim.Before(inicio) {
		f.Err = "A data final deve ser igual ou posterior à inicial"
		c.renderSAFT(ctx, http.StatusBadRequest, f)
		return
	}

	q := url.Values{"inicio": {f.Inicio}, "fim": {f.Fim}}
	file, err := c.api.Download(ctx.Request.Context(), "/api/financas/saft", q, c.cfg.Export.SAFTTimeout)
	if err == nil {
		name := file.Name
		if name == "" {
			name = saftFilename(inicio, fim)
		}
		ct := file.ContentType
		if ct == "" {
			ct = mimeXML
		}
		sendAttachment(ctx, "attachment", name, ct, file.Data)
		return
	}

	if !c.cfg.Export.SAFTFallback || !serverSide(err) {
		f.Err = client.Message(err)
		status := http.StatusBadGateway
		var apiErr *client.APIError
		if errors.As(err, &apiErr) && apiErr.Status >= 400 && apiErr.Status < 500 {
			status = apiErr.Status
		}
		c.renderSAFT(ctx, status, f)
		return
	}

	c.logger.Warn("saft download failed, building locally", zap.Error(err))
	data, err := c.localSAFT(ctx.Request.Context(), inicio, fim)
	if err != nil {
		f.Err = "Não foi possível gerar o ficheiro SAF-T"
		c.logger.Error("local saft build failed", zap.Error(err))
		c.renderSAFT(ctx, http.StatusInternalServerError, f)
		return
	}
	sendAttachment(ctx, "attachment", saftFilename(inicio, fim), mimeXML, data)
}

func (c *Console) renderSAFT(ctx *gin.Context, status int, f saftForm) {
	c.render(ctx, status, "saft", c.page(ctx, "Exportar SAF-T", "/financas/saft"), gin.H{"SAFT": f})
}

// localSAFT lists payments through the API and keeps those dated within
// [inicio, fim]. A failing list yields an empty but well-formed file.
func (c *Console) localSAFT(ctx context.Context, inicio, fim time.Time) ([]byte, error) {
	all, err := listAll(ctx, c.res.pagamentos, nil)
	if err != nil {
		c.logger.Warn("list pagamentos for local saft", zap.Error(err))
		all = nil
	}
	end := fim.AddDate(0, 0, 1)
	pagamentos := make([]model.Pagamento, 0, len(all))
	for _, p := range all {
		if !p.DataPagamento.Before(inicio) && p.DataPagamento.Before(end) {
			pagamentos = append(pagamentos, p)
		}
	}

	return document.BuildSAFT(document.SAFTHeader{
		AuditID:                   uuid.New().String(),
		CompanyID:                 c.inst.NIF,
		TaxRegistrationNumber:     c.inst.NIF,
		CompanyName:               c.inst.Name,
		Address:                   c.inst.Address,
		Email:                     c.inst.Email,
		Telephone:                 c.inst.Phone,
		CurrencyCode:              c.inst.Currency,
		StartDate:                 inicio,
		EndDate:                   fim,
		DateCreated:               c.now(),
		SoftwareCertificateNumber: c.cfg.Export.SoftwareCertNum,
	}, pagamentos)
}

func saftFilename(inicio, fim time.Time) string {
	return fmt.Sprintf("SAFT_AO_%s_%s.xml", inicio.Format("20060102"), fim.Format("20060102"))
}

// serverSide reports failures the API could not recover from itself.
func serverSide(err error) bool {
	var apiErr *client.APIError
	if !errors.As(err, &apiErr) {
		return true
	}
	return apiErr.Status == 0 || apiErr.Status >= 500
}

func sendAttachment(ctx *gin.Context, disposition, name, contentType string, data []byte) {
	ctx.Header("Content-Disposition", disposition+"; filename*=UTF-8''"+url.PathEscape(name))
	ctx.Data(http.StatusOK, contentType, data)
}

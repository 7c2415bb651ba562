package console

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/emanuel-malungo/jomorais/config"
	"github.com/emanuel-malungo/jomorais/internal/client"
	"github.com/emanuel-malungo/jomorais/internal/document"
	"github.com/emanuel-malungo/jomorais/internal/model"
	"github.com/emanuel-malungo/jomorais/pkg/response"
)

var testNow = time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)

// fakeAPI serves the subset of the REST API the console tests touch.
type fakeAPI struct {
	mu         sync.Mutex
	cursos     map[int64]model.Curso
	nextID     int64
	creates    int
	lastUpdate *model.Curso
	failList   bool
	saftStatus int
}

func newFakeAPI(n int) *fakeAPI {
	f := &fakeAPI{cursos: make(map[int64]model.Curso), saftStatus: http.StatusOK}
	for i := 1; i <= n; i++ {
		f.nextID++
		f.cursos[f.nextID] = model.Curso{
			BaseModel:  model.BaseModel{ID: f.nextID, Status: model.StatusActivo},
			Codigo:     fmt.Sprintf("C%02d", i),
			Designacao: fmt.Sprintf("Curso %d", i),
		}
	}
	return f
}

var (
	fakeTurma = model.Turma{BaseModel: model.BaseModel{ID: 7, Status: model.StatusActivo}, Designacao: "10A", Sala: "12", Periodo: model.PeriodoManha, Capacidade: 30}
	fakeAluno = model.Aluno{BaseModel: model.BaseModel{ID: 3, Status: model.StatusActivo}, Nome: "Ana Bento", NumeroProcesso: "P-003", CodigoTurma: ptr(int64(7)), Turma: &fakeTurma}
)

func fakePagamento() model.Pagamento {
	aluno := fakeAluno
	aluno.Turma = nil
	return model.Pagamento{
		BaseModel:      model.BaseModel{ID: 11, Status: model.StatusActivo},
		NumeroFatura:   "FR 2024/11",
		CodigoAluno:    3,
		FormaPagamento: model.FormaDinheiro,
		DataPagamento:  time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC),
		Total:          decimal.NewFromInt(15000),
		ValorEntregue:  decimal.NewFromInt(20000),
		Itens: datatypes.JSONSlice[model.PagamentoItem]{
			{CodigoServico: 1, Designacao: "Propina Janeiro", Quantidade: 1, Preco: decimal.NewFromInt(15000)},
		},
		Aluno: &aluno,
	}
}

func ptr[T any](v T) *T { return &v }

func (f *fakeAPI) handler() http.Handler {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	g := r.Group("/api/academico/cursos")
	g.GET("", func(c *gin.Context) {
		f.mu.Lock()
		defer f.mu.Unlock()
		if f.failList {
			response.InternalError(c)
			return
		}
		page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
		limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
		search := strings.ToLower(c.Query("search"))

		ids := make([]int64, 0, len(f.cursos))
		for id, cur := range f.cursos {
			if search != "" && !strings.Contains(strings.ToLower(cur.Designacao), search) {
				continue
			}
			ids = append(ids, id)
		}
		sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

		items := []model.Curso{}
		for i := (page - 1) * limit; i < len(ids) && i < page*limit; i++ {
			items = append(items, f.cursos[ids[i]])
		}
		response.OKPage(c, items, int64(len(ids)), page, limit)
	})
	g.GET("/:id", func(c *gin.Context) {
		f.mu.Lock()
		defer f.mu.Unlock()
		id, _ := strconv.ParseInt(c.Param("id"), 10, 64)
		cur, ok := f.cursos[id]
		if !ok {
			response.NotFound(c, "Curso não encontrado")
			return
		}
		response.OK(c, cur)
	})
	g.POST("", func(c *gin.Context) {
		var in model.Curso
		_ = c.ShouldBindJSON(&in)
		f.mu.Lock()
		defer f.mu.Unlock()
		f.creates++
		for _, existing := range f.cursos {
			if existing.Codigo == in.Codigo {
				response.Conflict(c, "Já existe um curso com este código")
				return
			}
		}
		f.nextID++
		in.ID = f.nextID
		f.cursos[in.ID] = in
		response.Created(c, in)
	})
	g.PUT("/:id", func(c *gin.Context) {
		var in model.Curso
		_ = c.ShouldBindJSON(&in)
		f.mu.Lock()
		defer f.mu.Unlock()
		id, _ := strconv.ParseInt(c.Param("id"), 10, 64)
		in.ID = id
		f.cursos[id] = in
		f.lastUpdate = &in
		response.OK(c, in)
	})
	g.DELETE("/:id", func(c *gin.Context) {
		f.mu.Lock()
		defer f.mu.Unlock()
		id, _ := strconv.ParseInt(c.Param("id"), 10, 64)
		delete(f.cursos, id)
		report := model.DeleteReport{
			Kind:    model.DeleteCascade,
			Counts:  map[string]int64{"disciplinas": 4, "turmas": 2, "alunos_desvinculados": 0},
			Message: "Curso eliminado com sucesso",
		}
		response.OKMessage(c, report.Message, report)
	})

	r.GET("/api/financas/servicos/:id", func(c *gin.Context) {
		response.OK(c, model.Servico{BaseModel: model.BaseModel{ID: 1, Status: model.StatusActivo}, Designacao: "Propina", Preco: decimal.NewFromInt(15000)})
	})
	r.DELETE("/api/financas/servicos/:id", func(c *gin.Context) {
		report := model.DeleteReport{
			Kind:    model.DeleteSoft,
			Counts:  map[string]int64{"pagamentos_referentes": 3},
			Message: "Serviço usado em 3 pagamento(s); foi desactivado em vez de eliminado",
		}
		response.OKMessage(c, report.Message, report)
	})

	r.GET("/api/academico/turmas/:id", func(c *gin.Context) {
		if c.Param("id") != "7" {
			response.NotFound(c, "Turma não encontrada")
			return
		}
		response.OK(c, fakeTurma)
	})
	r.GET("/api/academico/alunos", func(c *gin.Context) {
		items := []model.Aluno{}
		if c.Query("codigo_turma") == "7" {
			items = append(items, fakeAluno, model.Aluno{BaseModel: model.BaseModel{ID: 4}, Nome: "Álvaro Costa", CodigoTurma: ptr(int64(7))})
		}
		response.OKPage(c, items, int64(len(items)), 1, 100)
	})
	r.GET("/api/academico/alunos/:id", func(c *gin.Context) {
		response.OK(c, fakeAluno)
	})
	r.GET("/api/financas/pagamentos", func(c *gin.Context) {
		response.OKPage(c, []model.Pagamento{fakePagamento()}, 1, 1, 100)
	})
	r.GET("/api/financas/pagamentos/:id", func(c *gin.Context) {
		if c.Param("id") != "11" {
			response.NotFound(c, "Pagamento não encontrado")
			return
		}
		response.OK(c, fakePagamento())
	})
	r.GET("/api/financas/saft", func(c *gin.Context) {
		f.mu.Lock()
		status := f.saftStatus
		f.mu.Unlock()
		if status != http.StatusOK {
			response.Error(c, status, "Serviço indisponível")
			return
		}
		c.Header("Content-Disposition", "attachment; filename*=UTF-8''SAFT_AO_remote.xml")
		c.Data(http.StatusOK, "application/xml", []byte("<AuditFile/>"))
	})
	return r
}

type harness struct {
	api     *fakeAPI
	engine  *gin.Engine
	cfg     *config.Config
	console *Console
}

func newHarness(t *testing.T, n int, tweak ...func(*config.Config)) *harness {
	t.Helper()
	f := newFakeAPI(n)
	apiSrv := httptest.NewServer(f.handler())
	t.Cleanup(apiSrv.Close)

	cfg := &config.Config{
		Console: config.ConsoleConfig{PageSize: 10, SearchDebounce: 20 * time.Millisecond},
		Export:  config.ExportConfig{SAFTTimeout: 5 * time.Second},
	}
	for _, fn := range tweak {
		fn(cfg)
	}

	api := client.New(apiSrv.URL, 5*time.Second, client.WithToken("tok-test"))
	inst := document.Institution{Name: "Colégio Jomorais", NIF: "5000000000", Currency: "AOA"}
	c, err := New(cfg, api, inst, zap.NewNop(), WithClock(func() time.Time { return testNow }), WithOperator("Operador Teste"))
	require.NoError(t, err)

	return &harness{api: f, engine: c.Engine(), cfg: cfg, console: c}
}

func (h *harness) do(method, target string, form url.Values, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req := httptest.NewRequest(method, target, body)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	h.engine.ServeHTTP(w, req)
	return w
}

// ── list ──

func TestList_RendersPageWithPager(t *testing.T) {
	h := newHarness(t, 23)

	w := h.do(http.MethodGet, "/academico/cursos?page=2", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "Curso 11")
	assert.Contains(t, body, "Curso 20")
	assert.NotContains(t, body, "Curso 21<")
	assert.Contains(t, body, "Página 2 de 3")
	assert.Contains(t, body, "/academico/cursos/11/editar")
}

func TestList_FilteredEmptyShowsHint(t *testing.T) {
	h := newHarness(t, 5)

	w := h.do(http.MethodGet, "/academico/cursos?search=inexistente", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Nenhum resultado para os filtros actuais")
}

func TestList_APIFailureShowsRetry(t *testing.T) {
	h := newHarness(t, 5)
	h.api.failList = true

	w := h.do(http.MethodGet, "/academico/cursos", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Tentar novamente")
}

// ── forms ──

func TestCreate_InvalidNeverReachesAPI(t *testing.T) {
	h := newHarness(t, 1)

	w := h.do(http.MethodPost, "/academico/cursos/novo", url.Values{"codigo": {""}, "designacao": {"Sem código"}})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "Campo obrigatório")
	assert.Contains(t, w.Body.String(), "Sem código")
	assert.Equal(t, 0, h.api.creates)
}

func TestCreate_SuccessRedirectsWithFlash(t *testing.T) {
	h := newHarness(t, 1)

	w := h.do(http.MethodPost, "/academico/cursos/novo", url.Values{
		"codigo": {"GES"}, "designacao": {"Gestão"}, "status": {"Activo"},
	})
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/academico/cursos", w.Header().Get("Location"))
	assert.Equal(t, 1, h.api.creates)

	var flash *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == flashCookie {
			flash = c
		}
	}
	require.NotNil(t, flash)

	next := h.do(http.MethodGet, "/academico/cursos", nil, flash)
	assert.Contains(t, next.Body.String(), "Curso guardado com sucesso")
	assert.Contains(t, next.Body.String(), "Gestão")
}

func TestCreate_ConflictKeepsFormOpen(t *testing.T) {
	h := newHarness(t, 1)

	w := h.do(http.MethodPost, "/academico/cursos/novo", url.Values{"codigo": {"C01"}, "designacao": {"Duplicado"}})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "Já existe um curso com este código")
	assert.Contains(t, w.Body.String(), "Duplicado")
}

func TestEdit_PrefillsAndUpdatesByID(t *testing.T) {
	h := newHarness(t, 3)

	w := h.do(http.MethodGet, "/academico/cursos/2/editar", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `value="C02"`)

	w = h.do(http.MethodPost, "/academico/cursos/2/editar", url.Values{"codigo": {"C02"}, "designacao": {"Curso renomeado"}})
	require.Equal(t, http.StatusSeeOther, w.Code)
	require.NotNil(t, h.api.lastUpdate)
	assert.Equal(t, int64(2), h.api.lastUpdate.ID)
	assert.Equal(t, "Curso renomeado", h.api.lastUpdate.Designacao)
}

func TestEdit_UnknownIDIsNotFound(t *testing.T) {
	h := newHarness(t, 1)

	w := h.do(http.MethodGet, "/academico/cursos/999/editar", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "Curso não encontrado")
}

// ── delete ──

func TestDelete_ConfirmThenReport(t *testing.T) {
	h := newHarness(t, 2)

	w := h.do(http.MethodGet, "/academico/cursos/1/excluir", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "C01 · Curso 1")
	assert.Contains(t, w.Body.String(), "Todas as turmas do curso serão eliminadas.")

	w = h.do(http.MethodPost, "/academico/cursos/1/excluir", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "Curso eliminado com sucesso")
	assert.Contains(t, body, "Disciplinas eliminadas")
	assert.Contains(t, body, "Turmas eliminadas")
	assert.NotContains(t, body, "Alunos sem turma")
}

func TestDelete_SoftReportKeepsPayments(t *testing.T) {
	h := newHarness(t, 0)

	w := h.do(http.MethodPost, "/financas/servicos/1/excluir", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "foi apenas marcado como inactivo")
	assert.Contains(t, body, "Pagamentos que usam o serviço")
	assert.NotContains(t, body, "Pagamentos eliminados")
}

// ── live ──

func readUntil(t *testing.T, conn *websocket.Conn, status string) liveUpdate {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(3*time.Second)))
	for {
		var u liveUpdate
		require.NoError(t, conn.ReadJSON(&u))
		if u.Status == status {
			return u
		}
	}
}

func TestLive_PushesRenderedTable(t *testing.T) {
	h := newHarness(t, 23)
	srv := httptest.NewServer(h.engine)
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/academico/cursos/ao-vivo"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	first := readUntil(t, conn, "loaded")
	assert.Contains(t, first.HTML, "Curso 1<")
	assert.Contains(t, first.HTML, "Página 1 de 3")

	require.NoError(t, conn.WriteJSON(liveCommand{Type: "page", Value: "3"}))
	third := readUntil(t, conn, "loaded")
	assert.Contains(t, third.HTML, "Curso 21")
	assert.Equal(t, "limit=10&page=3", third.Query)

	require.NoError(t, conn.WriteJSON(liveCommand{Type: "search", Value: "Curso 2"}))
	found := readUntil(t, conn, "loaded")
	assert.Contains(t, found.HTML, "Curso 20")
	assert.Contains(t, found.HTML, "Página 1 de 1")
}

// ── documents ──

func TestReceipt_LoadsTurmaFromAluno(t *testing.T) {
	h := newHarness(t, 0)

	w := h.do(http.MethodGet, "/financas/pagamentos/11/recibo", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "FR 2024/11")
	assert.Contains(t, body, "Ana Bento")
	assert.Contains(t, body, "10A")
	assert.Contains(t, body, "Operador Teste")
}

func TestReceipt_UnknownPayment(t *testing.T) {
	h := newHarness(t, 0)

	w := h.do(http.MethodGet, "/financas/pagamentos/99/recibo.pdf", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRoster_XLSXDownload(t *testing.T) {
	h := newHarness(t, 0)

	w := h.do(http.MethodGet, "/academico/turmas/7/lista.xlsx", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, mimeXLSX, w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "lista-10A.xlsx")
	assert.NotEmpty(t, w.Body.Bytes())
}

func TestSAFT_FormWithoutDates(t *testing.T) {
	h := newHarness(t, 0)

	w := h.do(http.MethodGet, "/financas/saft", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Exportar SAF-T")
}

func TestSAFT_InvalidPeriod(t *testing.T) {
	h := newHarness(t, 0)

	w := h.do(http.MethodGet, "/financas/saft?inicio=2024-02-01&fim=2024-01-01", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "posterior à inicial")
}

func TestSAFT_DownloadsFromAPI(t *testing.T) {
	h := newHarness(t, 0)

	w := h.do(http.MethodGet, "/financas/saft?inicio=2024-01-01&fim=2024-01-31", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "<AuditFile/>", w.Body.String())
	assert.Contains(t, w.Header().Get("Content-Disposition"), "SAFT_AO_remote.xml")
}

func TestSAFT_FallbackBuildsLocally(t *testing.T) {
	h := newHarness(t, 0, func(cfg *config.Config) { cfg.Export.SAFTFallback = true })
	h.api.saftStatus = http.StatusServiceUnavailable

	w := h.do(http.MethodGet, "/financas/saft?inicio=2024-01-01&fim=2024-01-31", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "SAFT_AO_20240101_20240131.xml")
	body := w.Body.String()
	assert.Contains(t, body, "<AuditFile")
	assert.Contains(t, body, "FR 2024/11")
	assert.Contains(t, body, "5000000000")
}

func TestSAFT_WithoutFallbackShowsError(t *testing.T) {
	h := newHarness(t, 0)
	h.api.saftStatus = http.StatusServiceUnavailable

	w := h.do(http.MethodGet, "/financas/saft?inicio=2024-01-01&fim=2024-01-31", nil)
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Contains(t, w.Body.String(), "Serviço indisponível")
}

// ── helpers ──

func TestParseItens(t *testing.T) {
	var p model.Pagamento
	err := parseItens(url.Values{
		"item_servico":    {"4", "", "9"},
		"item_quantidade": {"2", "1", ""},
		"item_desconto":   {"", "", "500,50"},
	}, &p)
	require.NoError(t, err)
	require.Len(t, p.Itens, 2)
	assert.Equal(t, model.PagamentoItem{CodigoServico: 4, Quantidade: 2}, p.Itens[0])
	assert.Equal(t, int64(9), p.Itens[1].CodigoServico)
	assert.Equal(t, 1, p.Itens[1].Quantidade)
	assert.Equal(t, "500.5", p.Itens[1].Desconto.String())

	err = parseItens(url.Values{"item_servico": {"x"}}, &p)
	assert.Error(t, err)
}

func TestFlashNotifier_PopClears(t *testing.T) {
	gin.SetMode(gin.TestMode)
	n := FlashNotifier{}

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	n.Notify(c, Notification{Level: LevelSuccess, Message: "Guardado"})
	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)

	w2 := httptest.NewRecorder()
	c2, _ := gin.CreateTestContext(w2)
	c2.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	c2.Request.AddCookie(cookies[0])
	got := n.Pop(c2)
	require.NotNil(t, got)
	assert.Equal(t, "Guardado", got.Message)
	require.Len(t, w2.Result().Cookies(), 1)
	assert.Equal(t, -1, w2.Result().Cookies()[0].MaxAge)
}

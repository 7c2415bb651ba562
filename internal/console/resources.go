package console

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"

	"github.com/emanuel-malungo/jomorais/internal/client"
	"github.com/emanuel-malungo/jomorais/internal/document"
	"github.com/emanuel-malungo/jomorais/internal/form"
	"github.com/emanuel-malungo/jomorais/internal/listpage"
	"github.com/emanuel-malungo/jomorais/internal/model"
)

const irreversivel = "Esta acção não pode ser desfeita."

var statusOptions = []form.Option{
	{Value: string(model.StatusActivo), Label: "Activo"},
	{Value: string(model.StatusInactivo), Label: "Inactivo"},
}

var statusField = form.Field{Key: "status", Label: "Estado", Kind: form.KindSelect, Options: statusOptions}

var periodoOptions = []form.Option{
	{Value: model.PeriodoManha, Label: model.PeriodoManha},
	{Value: model.PeriodoTarde, Label: model.PeriodoTarde},
	{Value: model.PeriodoNoite, Label: model.PeriodoNoite},
}

var sexoOptions = []form.Option{
	{Value: "M", Label: "Masculino"},
	{Value: "F", Label: "Feminino"},
}

var formaOptions = []form.Option{
	{Value: model.FormaDinheiro, Label: model.FormaDinheiro},
	{Value: model.FormaMulticaixa, Label: model.FormaMulticaixa},
	{Value: model.FormaTransferencia, Label: model.FormaTransferencia},
}

var tipoServicoOptions = []form.Option{
	{Value: "Propina", Label: "Propina"},
	{Value: "Emolumento", Label: "Emolumento"},
	{Value: "Material", Label: "Material"},
	{Value: "Outro", Label: "Outro"},
}

var perfilOptions = []form.Option{
	{Value: model.PerfilAdmin, Label: "Administrador"},
	{Value: model.PerfilSecretaria, Label: "Secretaria"},
	{Value: model.PerfilFinanceiro, Label: "Financeiro"},
}

func estado(s model.Status) string { return string(s) }

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "—"
	}
	return s
}

func optionLabel(options []form.Option, value string) string {
	for _, o := range options {
		if o.Value == value {
			return o.Label
		}
	}
	return orDash(value)
}

func withStatus() model.BaseModel { return model.BaseModel{Status: model.StatusActivo} }

// ── académico ──

func (c *Console) cursoDef() *resource[model.Curso] {
	return &resource[model.Curso]{
		Module:   "academico",
		Slug:     "cursos",
		Title:    "Cursos",
		Singular: "Curso",
		Columns: []listpage.Column[model.Curso]{
			{Header: "Código", Value: func(e model.Curso) string { return e.Codigo }},
			{Header: "Designação", Value: func(e model.Curso) string { return e.Designacao }},
			{Header: "Estado", Value: func(e model.Curso) string { return estado(e.Status) }},
		},
		Schema: form.NewSchema("Curso", func() model.Curso { return model.Curso{BaseModel: withStatus()} },
			[]form.Field{
				{Key: "codigo", Label: "Código", Kind: form.KindText, Placeholder: "INF"},
				{Key: "designacao", Label: "Designação", Kind: form.KindText},
				{Key: "descricao", Label: "Descrição", Kind: form.KindTextarea},
				statusField,
			},
			map[string]string{
				"Codigo":     "required,max=20",
				"Designacao": "required,max=150",
			}),
		Summary: func(e model.Curso) string { return e.Codigo + " · " + e.Designacao },
		Warnings: []string{
			"Todas as disciplinas do curso serão eliminadas.",
			"Todas as turmas do curso serão eliminadas.",
			"Os alunos dessas turmas ficam sem turma.",
		},
		api: c.res.cursos,
	}
}

func (c *Console) disciplinaDef() *resource[model.Disciplina] {
	return &resource[model.Disciplina]{
		Module:   "academico",
		Slug:     "disciplinas",
		Title:    "Disciplinas",
		Singular: "Disciplina",
		Feminine: true,
		Columns: []listpage.Column[model.Disciplina]{
			{Header: "Designação", Value: func(e model.Disciplina) string { return e.Designacao }},
			{Header: "Curso", Value: func(e model.Disciplina) string {
				if e.Curso == nil {
					return "—"
				}
				return e.Curso.Designacao
			}},
			{Header: "Carga horária", Align: "right", Value: func(e model.Disciplina) string { return strconv.Itoa(e.CargaHoraria) }},
			{Header: "Estado", Value: func(e model.Disciplina) string { return estado(e.Status) }},
		},
		Schema: form.NewSchema("Disciplina", func() model.Disciplina { return model.Disciplina{BaseModel: withStatus()} },
			[]form.Field{
				{Key: "designacao", Label: "Designação", Kind: form.KindText},
				{Key: "codigo_curso", Label: "Curso", Kind: form.KindSelect},
				{Key: "carga_horaria", Label: "Carga horária", Kind: form.KindNumber},
				statusField,
			},
			map[string]string{
				"Designacao":   "required,max=150",
				"CodigoCurso":  "required",
				"CargaHoraria": "min=0",
			}),
		Summary:  func(e model.Disciplina) string { return e.Designacao },
		Warnings: []string{irreversivel},
		Filters:  []filterDef{{Key: "codigo_curso", Label: "Curso"}},
		Options: func(ctx context.Context) (map[string][]form.Option, error) {
			cursos, err := c.cursoOptions(ctx)
			if err != nil {
				return nil, err
			}
			return map[string][]form.Option{"codigo_curso": cursos}, nil
		},
		api: c.res.disciplinas,
	}
}

func (c *Console) classeDef() *resource[model.Classe] {
	return &resource[model.Classe]{
		Module:   "academico",
		Slug:     "classes",
		Title:    "Classes",
		Singular: "Classe",
		Feminine: true,
		Columns: []listpage.Column[model.Classe]{
			{Header: "Designação", Value: func(e model.Classe) string { return e.Designacao }},
			{Header: "Nível", Align: "right", Value: func(e model.Classe) string { return strconv.Itoa(e.Nivel) }},
			{Header: "Estado", Value: func(e model.Classe) string { return estado(e.Status) }},
		},
		Schema: form.NewSchema("Classe", func() model.Classe { return model.Classe{BaseModel: withStatus()} },
			[]form.Field{
				{Key: "designacao", Label: "Designação", Kind: form.KindText, Placeholder: "10ª Classe"},
				{Key: "nivel", Label: "Nível", Kind: form.KindNumber},
				statusField,
			},
			map[string]string{
				"Designacao": "required,max=100",
				"Nivel":      "min=0",
			}),
		Summary: func(e model.Classe) string { return e.Designacao },
		Warnings: []string{
			"Todas as turmas desta classe serão eliminadas.",
			"Os alunos dessas turmas ficam sem turma.",
		},
		api: c.res.classes,
	}
}

func (c *Console) turmaDef() *resource[model.Turma] {
	return &resource[model.Turma]{
		Module:   "academico",
		Slug:     "turmas",
		Title:    "Turmas",
		Singular: "Turma",
		Feminine: true,
		Columns: []listpage.Column[model.Turma]{
			{Header: "Designação", Value: func(e model.Turma) string { return e.Designacao }},
			{Header: "Classe", Value: func(e model.Turma) string {
				if e.Classe == nil {
					return "—"
				}
				return e.Classe.Designacao
			}},
			{Header: "Curso", Value: func(e model.Turma) string {
				if e.Curso == nil {
					return "—"
				}
				return e.Curso.Designacao
			}},
			{Header: "Sala", Value: func(e model.Turma) string { return orDash(e.Sala) }},
			{Header: "Período", Value: func(e model.Turma) string { return orDash(e.Periodo) }},
			{Header: "Ano lectivo", Value: func(e model.Turma) string { return orDash(e.AnoLectivo) }},
			{Header: "Capacidade", Align: "right", Value: func(e model.Turma) string { return strconv.Itoa(e.Capacidade) }},
			{Header: "Estado", Value: func(e model.Turma) string { return estado(e.Status) }},
		},
		Schema: form.NewSchema("Turma", func() model.Turma { return model.Turma{BaseModel: withStatus(), Periodo: model.PeriodoManha} },
			[]form.Field{
				{Key: "designacao", Label: "Designação", Kind: form.KindText},
				{Key: "codigo_classe", Label: "Classe", Kind: form.KindSelect},
				{Key: "codigo_curso", Label: "Curso", Kind: form.KindSelect},
				{Key: "sala", Label: "Sala", Kind: form.KindText},
				{Key: "periodo", Label: "Período", Kind: form.KindSelect, Options: periodoOptions},
				{Key: "ano_lectivo", Label: "Ano lectivo", Kind: form.KindText, Placeholder: "2024/2025"},
				{Key: "capacidade", Label: "Capacidade", Kind: form.KindNumber},
				statusField,
			},
			map[string]string{
				"Designacao":   "required,max=100",
				"CodigoClasse": "required",
				"CodigoCurso":  "required",
				"Periodo":      "omitempty,oneof=Manhã Tarde Noite",
				"Capacidade":   "gt=0",
			}),
		Summary:  func(e model.Turma) string { return e.Designacao },
		Warnings: []string{"Os alunos desta turma ficam sem turma."},
		Filters: []filterDef{
			{Key: "codigo_classe", Label: "Classe"},
			{Key: "codigo_curso", Label: "Curso"},
			{Key: "periodo", Label: "Período", Options: periodoOptions},
		},
		Actions: []rowAction{
			{Label: "Lista (PDF)", Suffix: "lista.pdf"},
			{Label: "Lista (Excel)", Suffix: "lista.xlsx"},
		},
		Options: func(ctx context.Context) (map[string][]form.Option, error) {
			classes, err := c.classeOptions(ctx)
			if err != nil {
				return nil, err
			}
			cursos, err := c.cursoOptions(ctx)
			if err != nil {
				return nil, err
			}
			return map[string][]form.Option{"codigo_classe": classes, "codigo_curso": cursos}, nil
		},
		api: c.res.turmas,
	}
}

func (c *Console) alunoDef() *resource[model.Aluno] {
	return &resource[model.Aluno]{
		Module:   "academico",
		Slug:     "alunos",
		Title:    "Alunos",
		Singular: "Aluno",
		Columns: []listpage.Column[model.Aluno]{
			{Header: "Nº processo", Value: func(e model.Aluno) string { return orDash(e.NumeroProcesso) }},
			{Header: "Nome", Value: func(e model.Aluno) string { return e.Nome }},
			{Header: "Sexo", Value: func(e model.Aluno) string { return optionLabel(sexoOptions, e.Sexo) }},
			{Header: "Idade", Align: "right", Value: func(e model.Aluno) string { return document.Age(e.DataNascimento, e.Idade, c.now()) }},
			{Header: "Turma", Value: func(e model.Aluno) string {
				if e.Turma == nil {
					return "Sem turma"
				}
				return e.Turma.Designacao
			}},
			{Header: "Encarregado", Value: func(e model.Aluno) string { return orDash(e.Encarregado) }},
			{Header: "Telefone", Value: func(e model.Aluno) string { return orDash(e.Telefone) }},
			{Header: "Estado", Value: func(e model.Aluno) string { return estado(e.Status) }},
		},
		Schema: form.NewSchema("Aluno", func() model.Aluno { return model.Aluno{BaseModel: withStatus()} },
			[]form.Field{
				{Key: "nome", Label: "Nome completo", Kind: form.KindText},
				{Key: "numero_processo", Label: "Nº processo", Kind: form.KindText},
				{Key: "sexo", Label: "Sexo", Kind: form.KindSelect, Options: sexoOptions},
				{Key: "data_nascimento", Label: "Data de nascimento", Kind: form.KindDate},
				{Key: "idade", Label: "Idade (sem data de nascimento)", Kind: form.KindNumber},
				{Key: "bi", Label: "Nº do BI", Kind: form.KindText},
				{Key: "codigo_turma", Label: "Turma", Kind: form.KindSelect},
				{Key: "encarregado", Label: "Encarregado de educação", Kind: form.KindText},
				{Key: "telefone", Label: "Telefone", Kind: form.KindText},
				{Key: "email", Label: "Email", Kind: form.KindEmail},
				{Key: "morada", Label: "Morada", Kind: form.KindTextarea},
				statusField,
			},
			map[string]string{
				"Nome":  "required,max=150",
				"Sexo":  "omitempty,oneof=M F",
				"Idade": "omitempty,min=0,max=120",
				"Email": "omitempty,email",
			}),
		Summary: func(e model.Aluno) string {
			if e.NumeroProcesso == "" {
				return e.Nome
			}
			return e.Nome + " (" + e.NumeroProcesso + ")"
		},
		Warnings: []string{
			"Todos os pagamentos do aluno serão eliminados.",
			"Todas as notas de crédito do aluno serão eliminadas.",
		},
		Filters: []filterDef{
			{Key: "codigo_turma", Label: "Turma"},
			{Key: "sexo", Label: "Sexo", Options: sexoOptions},
		},
		Options: func(ctx context.Context) (map[string][]form.Option, error) {
			turmas, err := c.turmaOptions(ctx)
			if err != nil {
				return nil, err
			}
			return map[string][]form.Option{"codigo_turma": turmas}, nil
		},
		api: c.res.alunos,
	}
}

func (c *Console) professorDef() *resource[model.Professor] {
	return &resource[model.Professor]{
		Module:   "academico",
		Slug:     "professores",
		Title:    "Professores",
		Singular: "Professor",
		Columns: []listpage.Column[model.Professor]{
			{Header: "Nome", Value: func(e model.Professor) string { return e.Nome }},
			{Header: "Email", Value: func(e model.Professor) string { return orDash(e.Email) }},
			{Header: "Telefone", Value: func(e model.Professor) string { return orDash(e.Telefone) }},
			{Header: "Especialidade", Value: func(e model.Professor) string { return orDash(e.Especialidade) }},
			{Header: "Estado", Value: func(e model.Professor) string { return estado(e.Status) }},
		},
		Schema: form.NewSchema("Professor", func() model.Professor { return model.Professor{BaseModel: withStatus()} },
			[]form.Field{
				{Key: "nome", Label: "Nome", Kind: form.KindText},
				{Key: "email", Label: "Email", Kind: form.KindEmail},
				{Key: "telefone", Label: "Telefone", Kind: form.KindText},
				{Key: "especialidade", Label: "Especialidade", Kind: form.KindText},
				{Key: "formacao", Label: "Formação", Kind: form.KindText},
				statusField,
			},
			map[string]string{
				"Nome":  "required,max=150",
				"Email": "omitempty,email",
			}),
		Summary:  func(e model.Professor) string { return e.Nome },
		Warnings: []string{irreversivel},
		api:      c.res.professores,
	}
}

// ── finanças ──

func (c *Console) servicoDef() *resource[model.Servico] {
	return &resource[model.Servico]{
		Module:   "financas",
		Slug:     "servicos",
		Title:    "Serviços",
		Singular: "Serviço",
		Columns: []listpage.Column[model.Servico]{
			{Header: "Designação", Value: func(e model.Servico) string { return e.Designacao }},
			{Header: "Tipo", Value: func(e model.Servico) string { return orDash(e.Tipo) }},
			{Header: "Preço", Align: "right", Value: func(e model.Servico) string { return document.FormatKwanza(e.Preco) }},
			{Header: "IVA (%)", Align: "right", Value: func(e model.Servico) string { return e.TaxaIVA.StringFixed(2) }},
			{Header: "Estado", Value: func(e model.Servico) string { return estado(e.Status) }},
		},
		Schema: form.NewSchema("Serviço", func() model.Servico { return model.Servico{BaseModel: withStatus()} },
			[]form.Field{
				{Key: "designacao", Label: "Designação", Kind: form.KindText},
				{Key: "tipo", Label: "Tipo", Kind: form.KindSelect, Options: tipoServicoOptions},
				{Key: "preco", Label: "Preço", Kind: form.KindMoney},
				{Key: "taxa_iva", Label: "Taxa de IVA (%)", Kind: form.KindMoney},
				statusField,
			},
			map[string]string{
				"Designacao": "required,max=150",
				"Preco":      "gte=0",
				"TaxaIVA":    "gte=0,lte=100",
			}),
		Summary:  func(e model.Servico) string { return e.Designacao },
		Warnings: []string{"Se o serviço já foi facturado fica apenas inactivo; caso contrário é eliminado."},
		Filters:  []filterDef{{Key: "tipo", Label: "Tipo", Options: tipoServicoOptions}},
		api:      c.res.servicos,
	}
}

func (c *Console) pagamentoDef() *resource[model.Pagamento] {
	schema := form.NewSchema("Pagamento", func() model.Pagamento {
		return model.Pagamento{
			BaseModel:      withStatus(),
			FormaPagamento: model.FormaDinheiro,
			DataPagamento:  c.now(),
			Operador:       c.operator,
		}
	},
		[]form.Field{
			{Key: "codigo_aluno", Label: "Aluno", Kind: form.KindSelect},
			{Key: "itens", Label: "Serviços", Kind: form.KindLines},
			{Key: "forma_pagamento", Label: "Forma de pagamento", Kind: form.KindSelect, Options: formaOptions},
			{Key: "valor_entregue", Label: "Valor entregue", Kind: form.KindMoney, Placeholder: "Igual ao total"},
			{Key: "referencia", Label: "Referência", Kind: form.KindText},
			{Key: "data_pagamento", Label: "Data", Kind: form.KindDate},
			{Key: "operador", Label: "Operador", Kind: form.KindText},
			{Key: "observacao", Label: "Observação", Kind: form.KindTextarea},
			statusField,
		},
		map[string]string{
			"CodigoAluno":    "required",
			"Itens":          "required,min=1",
			"FormaPagamento": "required,oneof=Dinheiro Multicaixa Transferência",
			"ValorEntregue":  "gte=0",
		})
	schema.Parse = parseItens

	return &resource[model.Pagamento]{
		Module:   "financas",
		Slug:     "pagamentos",
		Title:    "Pagamentos",
		Singular: "Pagamento",
		Columns: []listpage.Column[model.Pagamento]{
			{Header: "Nº fatura", Value: func(e model.Pagamento) string { return orDash(e.NumeroFatura) }},
			{Header: "Aluno", Value: func(e model.Pagamento) string {
				if e.Aluno == nil {
					return "—"
				}
				return e.Aluno.Nome
			}},
			{Header: "Data", Value: func(e model.Pagamento) string { return e.DataPagamento.Format("02/01/2006") }},
			{Header: "Total", Align: "right", Value: func(e model.Pagamento) string { return document.FormatKwanza(e.Total) }},
			{Header: "Forma", Value: func(e model.Pagamento) string { return e.FormaPagamento }},
			{Header: "Estado", Value: func(e model.Pagamento) string { return estado(e.Status) }},
		},
		Schema: schema,
		Summary: func(e model.Pagamento) string {
			return orDash(e.NumeroFatura) + " · " + document.FormatKwanza(e.Total)
		},
		Warnings: []string{"As notas de crédito emitidas sobre este pagamento serão eliminadas."},
		Filters: []filterDef{
			{Key: "codigo_aluno", Label: "Aluno"},
			{Key: "forma_pagamento", Label: "Forma", Options: formaOptions},
		},
		Actions: []rowAction{
			{Label: "Recibo", Suffix: "recibo"},
			{Label: "Recibo (PDF)", Suffix: "recibo.pdf"},
		},
		Options: func(ctx context.Context) (map[string][]form.Option, error) {
			alunos, err := c.alunoOptions(ctx)
			if err != nil {
				return nil, err
			}
			servicos, err := c.servicoOptions(ctx)
			if err != nil {
				return nil, err
			}
			return map[string][]form.Option{"codigo_aluno": alunos, "itens": servicos}, nil
		},
		Lines: func(p *model.Pagamento) []itemLine {
			out := make([]itemLine, 0, len(p.Itens))
			for _, it := range p.Itens {
				l := itemLine{
					Servico:    strconv.FormatInt(it.CodigoServico, 10),
					Quantidade: strconv.Itoa(max(it.Quantidade, 1)),
				}
				if !it.Desconto.IsZero() {
					l.Desconto = it.Desconto.StringFixed(2)
				}
				out = append(out, l)
			}
			return out
		},
		api: c.res.pagamentos,
	}
}

// parseItens reads the repeated item_servico / item_quantidade / item_desconto
// inputs. Lines without a service are skipped; designação and preço are
// filled in by the server from the service.
func parseItens(values url.Values, p *model.Pagamento) error {
	servicos, ok := values["item_servico"]
	if !ok {
		return nil
	}
	quantidades := values["item_quantidade"]
	descontos := values["item_desconto"]

	var itens datatypes.JSONSlice[model.PagamentoItem]
	for i, raw := range servicos {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			return fmt.Errorf("linha %d: serviço inválido", i+1)
		}
		item := model.PagamentoItem{CodigoServico: id, Quantidade: 1}
		if i < len(quantidades) && strings.TrimSpace(quantidades[i]) != "" {
			q, err := strconv.Atoi(strings.TrimSpace(quantidades[i]))
			if err != nil || q <= 0 {
				return fmt.Errorf("linha %d: quantidade inválida", i+1)
			}
			item.Quantidade = q
		}
		if i < len(descontos) && strings.TrimSpace(descontos[i]) != "" {
			d, err := decimal.NewFromString(strings.ReplaceAll(strings.TrimSpace(descontos[i]), ",", "."))
			if err != nil || d.IsNegative() {
				return fmt.Errorf("linha %d: desconto inválido", i+1)
			}
			item.Desconto = d
		}
		itens = append(itens, item)
	}
	p.Itens = itens
	return nil
}

func (c *Console) notaCreditoDef() *resource[model.NotaCredito] {
	return &resource[model.NotaCredito]{
		Module:   "financas",
		Slug:     "notas-credito",
		Title:    "Notas de crédito",
		Singular: "Nota de crédito",
		Feminine: true,
		Columns: []listpage.Column[model.NotaCredito]{
			{Header: "Aluno", Value: func(e model.NotaCredito) string {
				if e.Aluno == nil {
					return "—"
				}
				return e.Aluno.Nome
			}},
			{Header: "Valor", Align: "right", Value: func(e model.NotaCredito) string { return document.FormatKwanza(e.Valor) }},
			{Header: "Motivo", Value: func(e model.NotaCredito) string { return e.Motivo }},
			{Header: "Data", Value: func(e model.NotaCredito) string { return e.DataEmissao.Format("02/01/2006") }},
			{Header: "Pagamento", Value: func(e model.NotaCredito) string {
				switch {
				case e.Pagamento != nil && e.Pagamento.NumeroFatura != "":
					return e.Pagamento.NumeroFatura
				case e.CodigoPagamento != nil:
					return "#" + strconv.FormatInt(*e.CodigoPagamento, 10)
				default:
					return "—"
				}
			}},
			{Header: "Estado", Value: func(e model.NotaCredito) string { return estado(e.Status) }},
		},
		Schema: form.NewSchema("Nota de crédito", func() model.NotaCredito {
			return model.NotaCredito{BaseModel: withStatus(), DataEmissao: c.now()}
		},
			[]form.Field{
				{Key: "codigo_aluno", Label: "Aluno", Kind: form.KindSelect},
				{Key: "codigo_pagamento", Label: "Pagamento", Kind: form.KindSelect},
				{Key: "valor", Label: "Valor", Kind: form.KindMoney},
				{Key: "motivo", Label: "Motivo", Kind: form.KindTextarea},
				{Key: "data_emissao", Label: "Data de emissão", Kind: form.KindDate},
				statusField,
			},
			map[string]string{
				"CodigoAluno": "required",
				"Valor":       "gt=0",
				"Motivo":      "required,max=255",
			}),
		Summary: func(e model.NotaCredito) string {
			return document.FormatKwanza(e.Valor) + " · " + e.Motivo
		},
		Warnings: []string{irreversivel},
		Filters:  []filterDef{{Key: "codigo_aluno", Label: "Aluno"}},
		Options: func(ctx context.Context) (map[string][]form.Option, error) {
			alunos, err := c.alunoOptions(ctx)
			if err != nil {
				return nil, err
			}
			pagamentos, err := c.pagamentoOptions(ctx)
			if err != nil {
				return nil, err
			}
			return map[string][]form.Option{"codigo_aluno": alunos, "codigo_pagamento": pagamentos}, nil
		},
		api: c.res.notasCredito,
	}
}

// ── utilizadores ──

func (c *Console) utilizadorDef() *resource[model.Utilizador] {
	return &resource[model.Utilizador]{
		Module:   "utilizadores",
		Slug:     "utilizadores",
		Title:    "Utilizadores",
		Singular: "Utilizador",
		Columns: []listpage.Column[model.Utilizador]{
			{Header: "Nome", Value: func(e model.Utilizador) string { return e.Nome }},
			{Header: "Email", Value: func(e model.Utilizador) string { return e.Email }},
			{Header: "Perfil", Value: func(e model.Utilizador) string { return optionLabel(perfilOptions, e.Perfil) }},
			{Header: "Estado", Value: func(e model.Utilizador) string { return estado(e.Status) }},
		},
		Schema: form.NewSchema("Utilizador", func() model.Utilizador {
			return model.Utilizador{BaseModel: withStatus(), Perfil: model.PerfilSecretaria}
		},
			[]form.Field{
				{Key: "nome", Label: "Nome", Kind: form.KindText},
				{Key: "email", Label: "Email", Kind: form.KindEmail},
				{Key: "perfil", Label: "Perfil", Kind: form.KindSelect, Options: perfilOptions},
				{Key: "password", Label: "Palavra-passe", Kind: form.KindPassword, Placeholder: "Deixe em branco para manter"},
				statusField,
			},
			map[string]string{
				"Nome":     "required,max=150",
				"Email":    "required,email",
				"Perfil":   "required,oneof=admin secretaria financeiro",
				"Password": "omitempty,min=8",
			}),
		Summary:  func(e model.Utilizador) string { return e.Nome + " <" + e.Email + ">" },
		Warnings: []string{irreversivel},
		Filters:  []filterDef{{Key: "perfil", Label: "Perfil", Options: perfilOptions}},
		api:      c.res.utilizadores,
	}
}

// ── select options ──

// optionsPageSize is the largest page the list endpoints serve.
const optionsPageSize = 100

// listAll walks every page of a filtered list.
func listAll[E any](ctx context.Context, res *client.Resource[E], filters map[string]string) ([]E, error) {
	p := client.ListParams{Page: 1, PageSize: optionsPageSize, Filters: filters}
	var out []E
	for {
		page, err := res.List(ctx, p)
		if err != nil {
			return nil, err
		}
		out = append(out, page.Items...)
		if len(page.Items) == 0 || p.Page >= page.Pagination.TotalPages {
			return out, nil
		}
		p.Page++
	}
}

func toOptions[E model.Entity](items []E, label func(E) string) []form.Option {
	out := make([]form.Option, len(items))
	for i, it := range items {
		out[i] = form.Option{Value: strconv.FormatInt(it.GetID(), 10), Label: label(it)}
	}
	return out
}

func (c *Console) cursoOptions(ctx context.Context) ([]form.Option, error) {
	items, err := listAll(ctx, c.res.cursos, nil)
	if err != nil {
		return nil, err
	}
	return toOptions(items, func(e model.Curso) string { return e.Codigo + " · " + e.Designacao }), nil
}

func (c *Console) classeOptions(ctx context.Context) ([]form.Option, error) {
	items, err := listAll(ctx, c.res.classes, nil)
	if err != nil {
		return nil, err
	}
	return toOptions(items, func(e model.Classe) string { return e.Designacao }), nil
}

func (c *Console) turmaOptions(ctx context.Context) ([]form.Option, error) {
	items, err := listAll(ctx, c.res.turmas, nil)
	if err != nil {
		return nil, err
	}
	return toOptions(items, func(e model.Turma) string {
		if e.AnoLectivo == "" {
			return e.Designacao
		}
		return e.Designacao + " (" + e.AnoLectivo + ")"
	}), nil
}

func (c *Console) alunoOptions(ctx context.Context) ([]form.Option, error) {
	items, err := listAll(ctx, c.res.alunos, nil)
	if err != nil {
		return nil, err
	}
	return toOptions(items, func(e model.Aluno) string {
		if e.NumeroProcesso == "" {
			return e.Nome
		}
		return e.Nome + " (" + e.NumeroProcesso + ")"
	}), nil
}

func (c *Console) servicoOptions(ctx context.Context) ([]form.Option, error) {
	items, err := listAll(ctx, c.res.servicos, nil)
	if err != nil {
		return nil, err
	}
	return toOptions(items, func(e model.Servico) string {
		return e.Designacao + " · " + document.FormatMoney(e.Preco, c.inst.Currency)
	}), nil
}

func (c *Console) pagamentoOptions(ctx context.Context) ([]form.Option, error) {
	items, err := listAll(ctx, c.res.pagamentos, nil)
	if err != nil {
		return nil, err
	}
	return toOptions(items, func(e model.Pagamento) string {
		return orDash(e.NumeroFatura) + " · " + e.DataPagamento.Format(time.DateOnly)
	}), nil
}

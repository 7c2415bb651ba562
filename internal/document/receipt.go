package document

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/image"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/extension"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"

	"github.com/emanuel-malungo/jomorais/internal/model"
)

//go:embed templates/*.html
var templatesFS embed.FS

var receiptTmpl = template.Must(template.ParseFS(templatesFS, "templates/receipt.html"))

// ReceiptLine one item row, amounts already formatted.
type ReceiptLine struct {
	Descricao  string
	Quantidade int
	Preco      string
	Desconto   string
	Total      string
}

// Receipt is a payment laid out for an 80 mm thermal printer.
type Receipt struct {
	Institution    Institution
	Numero         string
	Data           string
	Cliente        string
	NumeroProcesso string
	Turma          string
	Lines          []ReceiptLine
	Subtotal       string
	Desconto       string
	Total          string
	ValorEntregue  string
	Troco          string
	FormaPagamento string
	Referencia     string
	Operador       string
	EmitidoEm      string
	Stamp          string
}

// BuildReceipt lays out a payment. operador falls back to the operator stored
// on the payment; now stamps the footer.
func BuildReceipt(p model.Pagamento, inst Institution, operador string, now time.Time) Receipt {
	cur := inst.Currency
	r := Receipt{
		Institution:    inst,
		Numero:         p.NumeroFatura,
		Data:           p.DataPagamento.Format("02/01/2006"),
		FormaPagamento: p.FormaPagamento,
		Referencia:     p.Referencia,
		Operador:       operador,
		EmitidoEm:      now.Format("02/01/2006 15:04"),
		Stamp:          "PAGO",
	}
	if r.Numero == "" {
		r.Numero = fmt.Sprintf("%d", p.ID)
	}
	if r.Operador == "" {
		r.Operador = p.Operador
	}
	if p.Status == model.StatusInactivo {
		r.Stamp = "ANULADO"
	}
	if p.Aluno != nil {
		r.Cliente = p.Aluno.Nome
		r.NumeroProcesso = p.Aluno.NumeroProcesso
		if p.Aluno.Turma != nil {
			r.Turma = p.Aluno.Turma.Designacao
		}
	}
	if r.Cliente == "" {
		r.Cliente = "Consumidor final"
	}

	subtotal, desconto := decimal.Zero, decimal.Zero
	for _, it := range p.Itens {
		qty := it.Quantidade
		if qty <= 0 {
			qty = 1
		}
		gross := it.Preco.Mul(decimal.NewFromInt(int64(qty)))
		subtotal = subtotal.Add(gross)
		desconto = desconto.Add(it.Desconto)
		r.Lines = append(r.Lines, ReceiptLine{
			Descricao:  it.Designacao,
			Quantidade: qty,
			Preco:      FormatKwanza(it.Preco),
			Desconto:   FormatKwanza(it.Desconto),
			Total:      FormatKwanza(it.Subtotal()),
		})
	}

	total := p.Total
	if total.IsZero() {
		total = subtotal.Sub(desconto)
	}
	entregue := p.ValorEntregue
	if entregue.IsZero() {
		entregue = total
	}
	troco := entregue.Sub(total)
	if troco.IsNegative() {
		troco = decimal.Zero
	}

	r.Subtotal = FormatMoney(subtotal, cur)
	r.Desconto = FormatMoney(desconto, cur)
	r.Total = FormatMoney(total, cur)
	r.ValorEntregue = FormatMoney(entregue, cur)
	r.Troco = FormatMoney(troco, cur)
	return r
}

// RenderReceiptHTML writes a self-contained printable page. The page calls
// window.print() once loaded.
func RenderReceiptHTML(w io.Writer, r Receipt) error {
	return receiptTmpl.Execute(w, struct {
		Receipt
		Logo template.URL
	}{r, template.URL(r.Institution.logoDataURI())})
}

// ── PDF ──

const (
	receiptWidth  = 80.0
	receiptMargin = 4.0
)

// RenderReceiptPDF renders the receipt on a single 80 mm wide page whose
// height grows with the number of lines.
func RenderReceiptPDF(r Receipt) ([]byte, error) {
	height := 120.0 + float64(len(r.Lines))*9
	if len(r.Institution.Logo) > 0 {
		height += 22
	}

	cfg := config.NewBuilder().
		WithDimensions(receiptWidth, height).
		WithLeftMargin(receiptMargin).
		WithTopMargin(receiptMargin).
		WithRightMargin(receiptMargin).
		WithBottomMargin(receiptMargin).
		Build()
	m := maroto.New(cfg)

	center := func(size float64, s string, style fontstyle.Type) {
		m.AddRow(size*0.5+1.5, text.NewCol(12, s, props.Text{Size: size, Style: style, Align: align.Center}))
	}
	pair := func(label, value string, style fontstyle.Type) {
		m.AddRow(4,
			text.NewCol(6, label, props.Text{Size: 7, Style: style}),
			text.NewCol(6, value, props.Text{Size: 7, Style: style, Align: align.Right}),
		)
	}

	// header
	if len(r.Institution.Logo) > 0 {
		m.AddRow(20, col.New(12).Add(image.NewFromBytes(r.Institution.Logo, extension.Png, props.Rect{Center: true, Percent: 90})))
	}
	center(9, r.Institution.Name, fontstyle.Bold)
	if r.Institution.NIF != "" {
		center(6, "NIF: "+r.Institution.NIF, fontstyle.Normal)
	}
	if r.Institution.Address != "" {
		center(6, r.Institution.Address, fontstyle.Normal)
	}
	if r.Institution.Phone != "" {
		center(6, "Tel: "+r.Institution.Phone, fontstyle.Normal)
	}
	m.AddRow(3, line.NewCol(12))

	// customer
	center(8, "RECIBO Nº "+r.Numero, fontstyle.Bold)
	pair("Data", r.Data, fontstyle.Normal)
	pair("Aluno", r.Cliente, fontstyle.Normal)
	if r.NumeroProcesso != "" {
		pair("Nº processo", r.NumeroProcesso, fontstyle.Normal)
	}
	if r.Turma != "" {
		pair("Turma", r.Turma, fontstyle.Normal)
	}
	m.AddRow(3, line.NewCol(12))

	// items
	m.AddRow(4,
		text.NewCol(6, "Descrição", props.Text{Size: 7, Style: fontstyle.Bold}),
		text.NewCol(2, "Qtd", props.Text{Size: 7, Style: fontstyle.Bold, Align: align.Center}),
		text.NewCol(4, "Total", props.Text{Size: 7, Style: fontstyle.Bold, Align: align.Right}),
	)
	for _, l := range r.Lines {
		m.AddRow(8,
			text.NewCol(6, l.Descricao, props.Text{Size: 7}),
			text.NewCol(2, fmt.Sprintf("%d", l.Quantidade), props.Text{Size: 7, Align: align.Center}),
			text.NewCol(4, l.Total, props.Text{Size: 7, Align: align.Right}),
		)
	}
	m.AddRow(3, line.NewCol(12))

	// totals
	pair("Subtotal", r.Subtotal, fontstyle.Normal)
	pair("Desconto", r.Desconto, fontstyle.Normal)
	pair("TOTAL", r.Total, fontstyle.Bold)
	pair("Entregue", r.ValorEntregue, fontstyle.Normal)
	pair("Troco", r.Troco, fontstyle.Normal)
	pair("Forma de pagamento", r.FormaPagamento, fontstyle.Normal)
	if r.Referencia != "" {
		pair("Referência", r.Referencia, fontstyle.Normal)
	}
	m.AddRow(3, line.NewCol(12))

	// stamp and footer
	center(14, r.Stamp, fontstyle.Bold)
	center(6, "Operador: "+r.Operador, fontstyle.Normal)
	center(6, "Emitido em "+r.EmitidoEm, fontstyle.Normal)
	center(6, "Obrigado pela preferência", fontstyle.Italic)

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("generate receipt pdf: %w", err)
	}
	return doc.GetBytes(), nil
}

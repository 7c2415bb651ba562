package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// Servico: billable service (propina, emolumento, uniforme ...).
type Servico struct {
	BaseModel
	Designacao string          `gorm:"type:varchar(150);uniqueIndex;not null" json:"designacao" form:"designacao" binding:"required,max=150"`
	Tipo       string          `gorm:"type:varchar(30)"                       json:"tipo"       form:"tipo"`
	Preco      decimal.Decimal `gorm:"type:numeric(14,2);not null"            json:"preco"      form:"preco"      binding:"gte=0"`
	TaxaIVA    decimal.Decimal `gorm:"column:taxa_iva;type:numeric(5,2);not null;default:0" json:"taxa_iva" form:"taxa_iva"`
}

func (Servico) TableName() string { return "servicos" }

// Formas de pagamento accepted at the treasury desk.
const (
	FormaDinheiro      = "Dinheiro"
	FormaMulticaixa    = "Multicaixa"
	FormaTransferencia = "Transferência"
)

// PagamentoItem is one line of a payment, stored inline as JSON.
type PagamentoItem struct {
	CodigoServico int64           `json:"codigo_servico"`
	Designacao    string          `json:"designacao"`
	Quantidade    int             `json:"quantidade"`
	Preco         decimal.Decimal `json:"preco"`
	Desconto      decimal.Decimal `json:"desconto"`
}

// Subtotal is quantity × unit price minus the line discount.
func (i PagamentoItem) Subtotal() decimal.Decimal {
	q := i.Quantidade
	if q <= 0 {
		q = 1
	}
	return i.Preco.Mul(decimal.NewFromInt(int64(q))).Sub(i.Desconto)
}

// Pagamento: payment of one or more services by a student.
type Pagamento struct {
	BaseModel
	NumeroFatura   string                             `gorm:"type:varchar(40);uniqueIndex"  json:"numero_fatura"   form:"-"`
	CodigoAluno    int64                              `gorm:"not null;index"                json:"codigo_aluno"    form:"codigo_aluno"    binding:"required"`
	Itens          datatypes.JSONSlice[PagamentoItem] `gorm:"type:jsonb;not null"           json:"itens"           form:"-"`
	Total          decimal.Decimal                    `gorm:"type:numeric(14,2);not null"   json:"total"           form:"-"`
	ValorEntregue  decimal.Decimal                    `gorm:"type:numeric(14,2);not null;default:0" json:"valor_entregue" form:"valor_entregue" binding:"gte=0"`
	FormaPagamento string                             `gorm:"type:varchar(30);not null"     json:"forma_pagamento" form:"forma_pagamento" binding:"required,oneof=Dinheiro Multicaixa Transferência"`
	Referencia     string                             `gorm:"type:varchar(60)"              json:"referencia"      form:"referencia"`
	Operador       string                             `gorm:"type:varchar(150)"             json:"operador"        form:"operador"`
	DataPagamento  time.Time                          `gorm:"not null"                      json:"data_pagamento"  form:"data_pagamento"  time_format:"2006-01-02"`
	Observacao     string                             `gorm:"type:text"                     json:"observacao"      form:"observacao"`
	Aluno          *Aluno                             `gorm:"foreignKey:CodigoAluno"         json:"aluno,omitempty" form:"-"`
}

func (Pagamento) TableName() string { return "pagamentos" }

// ComputeTotal sums the item subtotals.
func (p *Pagamento) ComputeTotal() decimal.Decimal {
	total := decimal.Zero
	for _, it := range p.Itens {
		total = total.Add(it.Subtotal())
	}
	return total
}

// Troco is the change due to the customer; never negative.
func (p Pagamento) Troco() decimal.Decimal {
	change := p.ValorEntregue.Sub(p.Total)
	if change.IsNegative() {
		return decimal.Zero
	}
	return change
}

// NotaCredito: credit note issued to a student, optionally against a payment.
type NotaCredito struct {
	BaseModel
	CodigoAluno     int64           `gorm:"not null;index"               json:"codigo_aluno"               form:"codigo_aluno"     binding:"required"`
	CodigoPagamento *int64          `gorm:"index"                        json:"codigo_pagamento"           form:"codigo_pagamento"`
	Valor           decimal.Decimal `gorm:"type:numeric(14,2);not null"  json:"valor"                      form:"valor"            binding:"gt=0"`
	Motivo          string          `gorm:"type:varchar(255);not null"   json:"motivo"                     form:"motivo"           binding:"required,max=255"`
	DataEmissao     time.Time       `gorm:"not null"                     json:"data_emissao"               form:"data_emissao"     time_format:"2006-01-02"`
	Aluno           *Aluno          `gorm:"foreignKey:CodigoAluno"        json:"aluno,omitempty"            form:"-"`
	Pagamento       *Pagamento      `gorm:"foreignKey:CodigoPagamento"    json:"pagamento,omitempty"        form:"-"`
}

func (NotaCredito) TableName() string { return "notas_credito" }

package document

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/emanuel-malungo/jomorais/internal/model"
)

// SAF-T (AO) export. This is a demonstration file: structure and totals follow
// the AO 1.01_01 layout, but hashes, tax tables and certification data are
// placeholders.

const (
	saftNamespace = "urn:OECD:StandardAuditFile-Tax:AO_1.01_01"
	saftVersion   = "1.01_01"
	saftDate      = "2006-01-02"
	saftDateTime  = "2006-01-02T15:04:05"

	consumidorFinal = "999999999"
	desconhecido    = "Desconhecido"
)

// SAFTHeader identifies the company and the period being exported.
type SAFTHeader struct {
	AuditID                   string
	CompanyID                 string
	TaxRegistrationNumber     string
	CompanyName               string
	Address                   string
	City                      string
	Email                     string
	Telephone                 string
	CurrencyCode              string
	StartDate                 time.Time
	EndDate                   time.Time
	DateCreated               time.Time
	ProductID                 string
	ProductVersion            string
	SoftwareCertificateNumber string
}

type saftAuditFile struct {
	XMLName         xml.Name            `xml:"AuditFile"`
	Xmlns           string              `xml:"xmlns,attr"`
	Header          saftHeaderXML       `xml:"Header"`
	MasterFiles     saftMasterFiles     `xml:"MasterFiles"`
	SourceDocuments saftSourceDocuments `xml:"SourceDocuments"`
}

type saftAddress struct {
	AddressDetail string `xml:"AddressDetail"`
	City          string `xml:"City"`
	Country       string `xml:"Country"`
}

type saftHeaderXML struct {
	AuditFileVersion         string      `xml:"AuditFileVersion"`
	CompanyID                string      `xml:"CompanyID"`
	TaxRegistrationNumber    string      `xml:"TaxRegistrationNumber"`
	TaxAccountingBasis       string      `xml:"TaxAccountingBasis"`
	CompanyName              string      `xml:"CompanyName"`
	CompanyAddress           saftAddress `xml:"CompanyAddress"`
	FiscalYear               int         `xml:"FiscalYear"`
	StartDate                string      `xml:"StartDate"`
	EndDate                  string      `xml:"EndDate"`
	CurrencyCode             string      `xml:"CurrencyCode"`
	DateCreated              string      `xml:"DateCreated"`
	TaxEntity                string      `xml:"TaxEntity"`
	ProductCompanyTaxID      string      `xml:"ProductCompanyTaxID"`
	SoftwareValidationNumber string      `xml:"SoftwareValidationNumber"`
	ProductID                string      `xml:"ProductID"`
	ProductVersion           string      `xml:"ProductVersion"`
	HeaderComment            string      `xml:"HeaderComment,omitempty"`
	Telephone                string      `xml:"Telephone,omitempty"`
	Email                    string      `xml:"Email,omitempty"`
}

type saftMasterFiles struct {
	Customers []saftCustomer `xml:"Customer"`
}

type saftCustomer struct {
	CustomerID           string      `xml:"CustomerID"`
	AccountID            string      `xml:"AccountID"`
	CustomerTaxID        string      `xml:"CustomerTaxID"`
	CompanyName          string      `xml:"CompanyName"`
	BillingAddress       saftAddress `xml:"BillingAddress"`
	SelfBillingIndicator int         `xml:"SelfBillingIndicator"`
}

type saftSourceDocuments struct {
	SalesInvoices saftSalesInvoices `xml:"SalesInvoices"`
}

type saftSalesInvoices struct {
	NumberOfEntries int           `xml:"NumberOfEntries"`
	TotalDebit      string        `xml:"TotalDebit"`
	TotalCredit     string        `xml:"TotalCredit"`
	Invoices        []saftInvoice `xml:"Invoice"`
}

type saftInvoice struct {
	InvoiceNo       string             `xml:"InvoiceNo"`
	DocumentStatus  saftDocumentStatus `xml:"DocumentStatus"`
	Hash            string             `xml:"Hash"`
	HashControl     string             `xml:"HashControl"`
	InvoiceDate     string             `xml:"InvoiceDate"`
	InvoiceType     string             `xml:"InvoiceType"`
	SourceID        string             `xml:"SourceID"`
	SystemEntryDate string             `xml:"SystemEntryDate"`
	CustomerID      string             `xml:"CustomerID"`
	Lines           []saftLine         `xml:"Line"`
	DocumentTotals  saftTotals         `xml:"DocumentTotals"`
}

type saftDocumentStatus struct {
	InvoiceStatus     string `xml:"InvoiceStatus"`
	InvoiceStatusDate string `xml:"InvoiceStatusDate"`
	SourceID          string `xml:"SourceID"`
	SourceBilling     string `xml:"SourceBilling"`
}

type saftLine struct {
	LineNumber         int     `xml:"LineNumber"`
	ProductCode        string  `xml:"ProductCode"`
	ProductDescription string  `xml:"ProductDescription"`
	Quantity           int     `xml:"Quantity"`
	UnitOfMeasure      string  `xml:"UnitOfMeasure"`
	UnitPrice          string  `xml:"UnitPrice"`
	TaxPointDate       string  `xml:"TaxPointDate"`
	Description        string  `xml:"Description"`
	CreditAmount       string  `xml:"CreditAmount"`
	Tax                saftTax `xml:"Tax"`
	TaxExemptionReason string  `xml:"TaxExemptionReason"`
	TaxExemptionCode   string  `xml:"TaxExemptionCode"`
	SettlementAmount   string  `xml:"SettlementAmount"`
}

type saftTax struct {
	TaxType          string `xml:"TaxType"`
	TaxCountryRegion string `xml:"TaxCountryRegion"`
	TaxCode          string `xml:"TaxCode"`
	TaxPercentage    string `xml:"TaxPercentage"`
}

type saftTotals struct {
	TaxPayable string        `xml:"TaxPayable"`
	NetTotal   string        `xml:"NetTotal"`
	GrossTotal string        `xml:"GrossTotal"`
	Payment    []saftPayment `xml:"Payment"`
}

type saftPayment struct {
	PaymentMechanism string `xml:"PaymentMechanism"`
	PaymentAmount    string `xml:"PaymentAmount"`
	PaymentDate      string `xml:"PaymentDate"`
}

// BuildSAFT assembles the XML for the given payments. Cancelled (Inactivo)
// payments are listed with status "A" and left out of TotalCredit.
func BuildSAFT(h SAFTHeader, pagamentos []model.Pagamento) ([]byte, error) {
	currency := h.CurrencyCode
	if currency == "" {
		currency = "AOA"
	}
	file := saftAuditFile{
		Xmlns: saftNamespace,
		Header: saftHeaderXML{
			AuditFileVersion:      saftVersion,
			CompanyID:             orUnknown(h.CompanyID),
			TaxRegistrationNumber: orDefault(h.TaxRegistrationNumber, consumidorFinal),
			TaxAccountingBasis:    "F",
			CompanyName:           h.CompanyName,
			CompanyAddress: saftAddress{
				AddressDetail: orUnknown(h.Address),
				City:          orUnknown(h.City),
				Country:       "AO",
			},
			FiscalYear:               h.StartDate.Year(),
			StartDate:                h.StartDate.Format(saftDate),
			EndDate:                  h.EndDate.Format(saftDate),
			CurrencyCode:             currency,
			DateCreated:              h.DateCreated.Format(saftDate),
			TaxEntity:                "Global",
			ProductCompanyTaxID:      orDefault(h.TaxRegistrationNumber, consumidorFinal),
			SoftwareValidationNumber: orDefault(h.SoftwareCertificateNumber, "0"),
			ProductID:                orDefault(h.ProductID, "Jomorais/Jomorais"),
			ProductVersion:           orDefault(h.ProductVersion, "1.0"),
			HeaderComment:            h.AuditID,
			Telephone:                h.Telephone,
			Email:                    h.Email,
		},
	}

	seen := map[int64]bool{}
	totalCredit := decimal.Zero
	for _, p := range pagamentos {
		customerID := customerIDFor(p)
		if !seen[p.CodigoAluno] {
			seen[p.CodigoAluno] = true
			file.MasterFiles.Customers = append(file.MasterFiles.Customers, customerFor(p, customerID))
		}

		inv, net := invoiceFor(p, customerID)
		file.SourceDocuments.SalesInvoices.Invoices = append(file.SourceDocuments.SalesInvoices.Invoices, inv)
		if p.Status != model.StatusInactivo {
			totalCredit = totalCredit.Add(net)
		}
	}
	if len(file.MasterFiles.Customers) == 0 {
		file.MasterFiles.Customers = []saftCustomer{{
			CustomerID:     "CF",
			AccountID:      desconhecido,
			CustomerTaxID:  consumidorFinal,
			CompanyName:    "Consumidor final",
			BillingAddress: saftAddress{AddressDetail: desconhecido, City: desconhecido, Country: "AO"},
		}}
	}

	si := &file.SourceDocuments.SalesInvoices
	si.NumberOfEntries = len(si.Invoices)
	si.TotalDebit = amount(decimal.Zero)
	si.TotalCredit = amount(totalCredit)

	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")
	if err := enc.Encode(file); err != nil {
		return nil, fmt.Errorf("encode saft: %w", err)
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

func customerIDFor(p model.Pagamento) string {
	return "AL" + strconv.FormatInt(p.CodigoAluno, 10)
}

func customerFor(p model.Pagamento, id string) saftCustomer {
	c := saftCustomer{
		CustomerID:     id,
		AccountID:      desconhecido,
		CustomerTaxID:  consumidorFinal,
		CompanyName:    "Consumidor final",
		BillingAddress: saftAddress{AddressDetail: desconhecido, City: desconhecido, Country: "AO"},
	}
	if a := p.Aluno; a != nil {
		c.CompanyName = a.Nome
		if a.BI != "" {
			c.CustomerTaxID = a.BI
		}
		if a.Morada != "" {
			c.BillingAddress.AddressDetail = a.Morada
		}
	}
	return c
}

func invoiceFor(p model.Pagamento, customerID string) (saftInvoice, decimal.Decimal) {
	date := p.DataPagamento.Format(saftDate)
	status := "N"
	if p.Status == model.StatusInactivo {
		status = "A"
	}
	source := orDefault(p.Operador, "Sistema")
	numero := p.NumeroFatura
	if numero == "" {
		numero = "FR " + strconv.FormatInt(p.ID, 10)
	}

	inv := saftInvoice{
		InvoiceNo: numero,
		DocumentStatus: saftDocumentStatus{
			InvoiceStatus:     status,
			InvoiceStatusDate: p.UpdatedAt.Format(saftDateTime),
			SourceID:          source,
			SourceBilling:     "P",
		},
		Hash:            "0",
		HashControl:     "0",
		InvoiceDate:     date,
		InvoiceType:     "FR",
		SourceID:        source,
		SystemEntryDate: p.CreatedAt.Format(saftDateTime),
		CustomerID:      customerID,
	}

	net := decimal.Zero
	for i, it := range p.Itens {
		qty := it.Quantidade
		if qty <= 0 {
			qty = 1
		}
		sub := it.Subtotal()
		net = net.Add(sub)
		inv.Lines = append(inv.Lines, saftLine{
			LineNumber:         i + 1,
			ProductCode:        strconv.FormatInt(it.CodigoServico, 10),
			ProductDescription: it.Designacao,
			Quantity:           qty,
			UnitOfMeasure:      "UN",
			UnitPrice:          amount(it.Preco),
			TaxPointDate:       date,
			Description:        it.Designacao,
			CreditAmount:       amount(sub),
			Tax: saftTax{
				TaxType:          "IVA",
				TaxCountryRegion: "AO",
				TaxCode:          "ISE",
				TaxPercentage:    "0",
			},
			TaxExemptionReason: "Isento nos termos da alínea l) do nº1 do artigo 12.º do CIVA",
			TaxExemptionCode:   "M11",
			SettlementAmount:   amount(it.Desconto),
		})
	}

	inv.DocumentTotals = saftTotals{
		TaxPayable: amount(decimal.Zero),
		NetTotal:   amount(net),
		GrossTotal: amount(net),
		Payment: []saftPayment{{
			PaymentMechanism: paymentMechanism(p.FormaPagamento),
			PaymentAmount:    amount(net),
			PaymentDate:      date,
		}},
	}
	return inv, net
}

func paymentMechanism(forma string) string {
	switch forma {
	case model.FormaMulticaixa:
		return "CD"
	case model.FormaTransferencia:
		return "TB"
	default:
		return "NU"
	}
}

func amount(d decimal.Decimal) string { return d.StringFixed(2) }

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func orUnknown(s string) string { return orDefault(s, desconhecido) }

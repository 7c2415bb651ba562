package document

import (
	"bytes"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"
)

const rosterSheet = "Lista nominal"

// RenderRosterXLSX writes the roster as a single-sheet workbook: a title,
// the turma metadata block, then one row per student in collation order.
func RenderRosterXLSX(r Roster, now time.Time) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	idx, err := f.NewSheet(rosterSheet)
	if err != nil {
		return nil, fmt.Errorf("new sheet: %w", err)
	}
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	// column widths
	widths := []float64{6, 40, 16, 8, 8, 30, 16}
	for i, w := range widths {
		col := colName(i)
		f.SetColWidth(rosterSheet, col, col, w)
	}

	titleStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 13},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	labelStyle, _ := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#1F4E79"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	lastCol := colName(len(widths) - 1)

	// title
	f.SetCellValue(rosterSheet, "A1", r.Institution.Name)
	f.MergeCell(rosterSheet, "A1", cell(lastCol, 1))
	f.SetCellStyle(rosterSheet, "A1", "A1", titleStyle)
	f.SetCellValue(rosterSheet, "A2", "Lista nominal de alunos")
	f.MergeCell(rosterSheet, "A2", cell(lastCol, 2))
	f.SetCellStyle(rosterSheet, "A2", "A2", titleStyle)

	// metadata
	meta := r.Meta()
	pairs := [][2]string{
		{"Turma", meta.Turma},
		{"Classe", meta.Classe},
		{"Curso", meta.Curso},
		{"Sala", meta.Sala},
		{"Período", meta.Periodo},
		{"Ano lectivo", meta.AnoLectivo},
	}
	row := 4
	for _, p := range pairs {
		f.SetCellValue(rosterSheet, cell("A", row), p[0])
		f.MergeCell(rosterSheet, cell("A", row), cell("B", row))
		f.SetCellStyle(rosterSheet, cell("A", row), cell("A", row), labelStyle)
		f.SetCellValue(rosterSheet, cell("C", row), p[1])
		row++
	}

	// table header
	row++
	headers := []string{"Nº", "Nome completo", "Nº processo", "Sexo", "Idade", "Encarregado", "Telefone"}
	for i, h := range headers {
		f.SetCellValue(rosterSheet, cell(colName(i), row), h)
	}
	f.SetCellStyle(rosterSheet, cell("A", row), cell(lastCol, row), headerStyle)
	f.SetPanes(rosterSheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      row,
		TopLeftCell: cell("A", row+1),
		ActivePane:  "bottomLeft",
	})

	// data rows
	for _, sr := range r.Rows(now) {
		row++
		values := []interface{}{sr.N, sr.Nome, sr.NumeroProcesso, sr.Sexo, sr.Idade, sr.Encarregado, sr.Telefone}
		for i, v := range values {
			f.SetCellValue(rosterSheet, cell(colName(i), row), v)
		}
	}

	row += 2
	f.SetCellValue(rosterSheet, cell("A", row), fmt.Sprintf("Total de alunos: %d", meta.Total))
	f.SetCellValue(rosterSheet, cell("F", row), "Gerado em "+now.Format("02/01/2006 15:04"))

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		return nil, fmt.Errorf("write roster xlsx: %w", err)
	}
	return buf.Bytes(), nil
}

// ── helpers ──

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}

package document

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestRenderRosterXLSX(t *testing.T) {
	out, err := RenderRosterXLSX(sampleRoster(3), time.Date(2024, time.May, 9, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(out))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{rosterSheet}, f.GetSheetList())

	get := func(c string) string {
		v, err := f.GetCellValue(rosterSheet, c)
		require.NoError(t, err)
		return v
	}
	assert.Equal(t, "Instituto Jomorais", get("A1"))
	assert.Equal(t, "Turma", get("A4"))
	assert.Equal(t, "10ª A", get("C4"))
	assert.Equal(t, "Informática de Gestão", get("C6"))

	// header at row 11, students from row 12 in name order
	assert.Equal(t, "Nome completo", get("B11"))
	assert.Equal(t, "Aluno 001", get("B12"))
	assert.Equal(t, "Aluno 003", get("B14"))
	assert.Equal(t, "N/A", get("E12"))
	assert.Equal(t, "Total de alunos: 3", get("A16"))
}

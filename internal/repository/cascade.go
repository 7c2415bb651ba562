package repository

import (
	"encoding/json"
	"fmt"

	"gorm.io/gorm"

	"github.com/emanuel-malungo/jomorais/internal/model"
	apperrors "github.com/emanuel-malungo/jomorais/pkg/errors"
)

// ── delete plans ──
//
// Every plan runs inside the transaction opened by resourceRepo.Delete, so a
// failure at any step leaves the dependents untouched.

func hardDelete[E any](message string) DeletePlan {
	return func(tx *gorm.DB, id int64) (*model.DeleteReport, error) {
		if err := deleteRoot[E](tx, id); err != nil {
			return nil, err
		}
		return &model.DeleteReport{Kind: model.DeleteHard, Message: message}, nil
	}
}

func deleteRoot[E any](tx *gorm.DB, id int64) error {
	res := tx.Delete(new(E), id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// unlinkAlunos detaches the students of the given turmas.
func unlinkAlunos(tx *gorm.DB, turmaIDs []int64) (int64, error) {
	if len(turmaIDs) == 0 {
		return 0, nil
	}
	res := tx.Model(&model.Aluno{}).
		Where("codigo_turma IN ?", turmaIDs).
		Update("codigo_turma", nil)
	return res.RowsAffected, res.Error
}

// deleteTurmasWhere removes the turmas matching column = id after unlinking their students.
func deleteTurmasWhere(tx *gorm.DB, column string, id int64, counts map[string]int64) error {
	var turmaIDs []int64
	if err := tx.Model(&model.Turma{}).Where(column+" = ?", id).Pluck("id", &turmaIDs).Error; err != nil {
		return err
	}
	unlinked, err := unlinkAlunos(tx, turmaIDs)
	if err != nil {
		return err
	}
	counts["alunos_desvinculados"] = unlinked

	if len(turmaIDs) == 0 {
		counts["turmas"] = 0
		return nil
	}
	res := tx.Where("id IN ?", turmaIDs).Delete(&model.Turma{})
	if res.Error != nil {
		return res.Error
	}
	counts["turmas"] = res.RowsAffected
	return nil
}

func cursoDelete(tx *gorm.DB, id int64) (*model.DeleteReport, error) {
	counts := map[string]int64{}

	res := tx.Where("codigo_curso = ?", id).Delete(&model.Disciplina{})
	if res.Error != nil {
		return nil, res.Error
	}
	counts["disciplinas"] = res.RowsAffected

	if err := deleteTurmasWhere(tx, "codigo_curso", id, counts); err != nil {
		return nil, err
	}
	if err := deleteRoot[model.Curso](tx, id); err != nil {
		return nil, err
	}
	return &model.DeleteReport{
		Kind:   model.DeleteCascade,
		Counts: counts,
		Message: fmt.Sprintf("Curso eliminado com %d disciplina(s) e %d turma(s)",
			counts["disciplinas"], counts["turmas"]),
	}, nil
}

func classeDelete(tx *gorm.DB, id int64) (*model.DeleteReport, error) {
	counts := map[string]int64{}
	if err := deleteTurmasWhere(tx, "codigo_classe", id, counts); err != nil {
		return nil, err
	}
	if err := deleteRoot[model.Classe](tx, id); err != nil {
		return nil, err
	}
	return &model.DeleteReport{
		Kind:    model.DeleteCascade,
		Counts:  counts,
		Message: fmt.Sprintf("Classe eliminada com %d turma(s)", counts["turmas"]),
	}, nil
}

func turmaDelete(tx *gorm.DB, id int64) (*model.DeleteReport, error) {
	unlinked, err := unlinkAlunos(tx, []int64{id})
	if err != nil {
		return nil, err
	}
	if err := deleteRoot[model.Turma](tx, id); err != nil {
		return nil, err
	}
	return &model.DeleteReport{
		Kind:    model.DeleteCascade,
		Counts:  map[string]int64{"alunos_desvinculados": unlinked},
		Message: fmt.Sprintf("Turma eliminada; %d aluno(s) ficaram sem turma", unlinked),
	}, nil
}

func alunoDelete(tx *gorm.DB, id int64) (*model.DeleteReport, error) {
	counts := map[string]int64{}

	pagamentos := tx.Model(&model.Pagamento{}).Select("id").Where("codigo_aluno = ?", id)
	res := tx.Where("codigo_aluno = ? OR codigo_pagamento IN (?)", id, pagamentos).Delete(&model.NotaCredito{})
	if res.Error != nil {
		return nil, res.Error
	}
	counts["notas_credito"] = res.RowsAffected

	res = tx.Where("codigo_aluno = ?", id).Delete(&model.Pagamento{})
	if res.Error != nil {
		return nil, res.Error
	}
	counts["pagamentos"] = res.RowsAffected

	if err := deleteRoot[model.Aluno](tx, id); err != nil {
		return nil, err
	}
	return &model.DeleteReport{
		Kind:   model.DeleteCascade,
		Counts: counts,
		Message: fmt.Sprintf("Aluno eliminado com %d pagamento(s) e %d nota(s) de crédito",
			counts["pagamentos"], counts["notas_credito"]),
	}, nil
}

func pagamentoDelete(tx *gorm.DB, id int64) (*model.DeleteReport, error) {
	res := tx.Where("codigo_pagamento = ?", id).Delete(&model.NotaCredito{})
	if res.Error != nil {
		return nil, res.Error
	}
	notas := res.RowsAffected
	if err := deleteRoot[model.Pagamento](tx, id); err != nil {
		return nil, err
	}
	return &model.DeleteReport{
		Kind:    model.DeleteCascade,
		Counts:  map[string]int64{"notas_credito": notas},
		Message: fmt.Sprintf("Pagamento eliminado com %d nota(s) de crédito", notas),
	}, nil
}

// servicoDelete keeps services that appear on past payments, only marking them inactive.
func servicoDelete(tx *gorm.DB, id int64) (*model.DeleteReport, error) {
	probe, err := json.Marshal([]map[string]int64{{"codigo_servico": id}})
	if err != nil {
		return nil, err
	}
	var used int64
	if err := tx.Model(&model.Pagamento{}).Where("itens @> ?::jsonb", string(probe)).Count(&used).Error; err != nil {
		return nil, err
	}
	if used == 0 {
		if err := deleteRoot[model.Servico](tx, id); err != nil {
			return nil, err
		}
		return &model.DeleteReport{Kind: model.DeleteHard, Message: "Serviço eliminado com sucesso"}, nil
	}

	res := tx.Model(&model.Servico{}).Where("id = ?", id).Update("status", model.StatusInactivo)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, apperrors.ErrNotFound
	}
	return &model.DeleteReport{
		Kind:    model.DeleteSoft,
		Counts:  map[string]int64{"pagamentos_referentes": used},
		Message: fmt.Sprintf("Serviço usado em %d pagamento(s); foi desactivado em vez de eliminado", used),
	}, nil
}

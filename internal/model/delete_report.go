package model

// DeleteKind tells the console how a delete was carried out.
type DeleteKind string

const (
	DeleteCascade DeleteKind = "cascade"
	DeleteSoft    DeleteKind = "soft"
	DeleteHard    DeleteKind = "hard"
)

// DeleteReport is returned by every delete endpoint. Counts keys name the
// dependent collections touched (e.g. "turmas", "alunos_desvinculados").
type DeleteReport struct {
	Kind    DeleteKind       `json:"kind"`
	Counts  map[string]int64 `json:"counts,omitempty"`
	Message string           `json:"message"`
}

package model

import "time"

// Status lifecycle flag carried by every entity.
type Status string

const (
	StatusActivo   Status = "Activo"
	StatusInactivo Status = "Inactivo"
)

// Entity is anything addressed by a server-assigned integer id.
type Entity interface {
	GetID() int64
}

// BaseModel holds identity, status and audit timestamps (embedded by every model).
// ID and timestamps are owned by the server; payload values for them are ignored.
type BaseModel struct {
	ID        int64     `gorm:"primaryKey;autoIncrement"                    json:"id"         form:"-"`
	Status    Status    `gorm:"type:varchar(20);not null;default:'Activo'" json:"status"     form:"status" binding:"omitempty,oneof=Activo Inactivo"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime"                     json:"created_at" form:"-"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"                     json:"updated_at" form:"-"`
}

// GetID implements Entity.
func (b BaseModel) GetID() int64 { return b.ID }

// IsActive reports whether the record is in the Activo state.
func (b BaseModel) IsActive() bool { return b.Status == StatusActivo }

// ServerOwnedFields are stripped from create/update payloads before decoding.
var ServerOwnedFields = []string{"id", "created_at", "updated_at"}

// EnsureStatus defaults an unset status to Activo.
func (b *BaseModel) EnsureStatus() {
	if b.Status == "" {
		b.Status = StatusActivo
	}
}

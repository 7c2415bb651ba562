package model

// Perfis of console users.
const (
	PerfilAdmin      = "admin"
	PerfilSecretaria = "secretaria"
	PerfilFinanceiro = "financeiro"
)

// Utilizador: console/API user. Password is write-only: accepted on create
// and update, hashed before saving, never serialised back.
type Utilizador struct {
	BaseModel
	Nome         string `gorm:"type:varchar(150);not null"            json:"nome"               form:"nome"     binding:"required,max=150"`
	Email        string `gorm:"type:varchar(150);uniqueIndex;not null" json:"email"              form:"email"    binding:"required,email"`
	Perfil       string `gorm:"type:varchar(20);not null"             json:"perfil"             form:"perfil"   binding:"required,oneof=admin secretaria financeiro"`
	Password     string `gorm:"-"                                     json:"password,omitempty" form:"password" binding:"omitempty,min=8"`
	PasswordHash string `gorm:"type:varchar(100);not null"            json:"-"                  form:"-"`
}

func (Utilizador) TableName() string { return "utilizadores" }

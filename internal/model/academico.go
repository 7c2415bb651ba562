package model

import "time"

// Curso: academic course (e.g. Informática de Gestão).
type Curso struct {
	BaseModel
	Codigo     string `gorm:"type:varchar(20);uniqueIndex;not null" json:"codigo"     form:"codigo"     binding:"required,max=20"`
	Designacao string `gorm:"type:varchar(150);not null"            json:"designacao" form:"designacao" binding:"required,max=150"`
	Descricao  string `gorm:"type:text"                             json:"descricao"  form:"descricao"`
}

func (Curso) TableName() string { return "cursos" }

// Disciplina: subject taught within a course.
type Disciplina struct {
	BaseModel
	Designacao   string `gorm:"type:varchar(150);not null" json:"designacao"    form:"designacao"    binding:"required,max=150"`
	CodigoCurso  int64  `gorm:"not null;index"             json:"codigo_curso"  form:"codigo_curso"  binding:"required"`
	CargaHoraria int    `gorm:"not null;default:0"         json:"carga_horaria" form:"carga_horaria" binding:"omitempty,min=0"`
	Curso        *Curso `gorm:"foreignKey:CodigoCurso"      json:"curso,omitempty" form:"-"`
}

func (Disciplina) TableName() string { return "disciplinas" }

// Classe: grade level (10ª Classe, 11ª Classe, ...).
type Classe struct {
	BaseModel
	Designacao string `gorm:"type:varchar(100);uniqueIndex;not null" json:"designacao" form:"designacao" binding:"required,max=100"`
	Nivel      int    `gorm:"not null;default:0"                     json:"nivel"      form:"nivel"      binding:"omitempty,min=0"`
}

func (Classe) TableName() string { return "classes" }

// Periodos a turma can run in.
const (
	PeriodoManha = "Manhã"
	PeriodoTarde = "Tarde"
	PeriodoNoite = "Noite"
)

// Turma: a class group of one classe within one course, in one room and period.
type Turma struct {
	BaseModel
	Designacao   string  `gorm:"type:varchar(100);not null" json:"designacao"    form:"designacao"    binding:"required,max=100"`
	CodigoClasse int64   `gorm:"not null;index"             json:"codigo_classe" form:"codigo_classe" binding:"required"`
	CodigoCurso  int64   `gorm:"not null;index"             json:"codigo_curso"  form:"codigo_curso"  binding:"required"`
	Sala         string  `gorm:"type:varchar(50)"           json:"sala"          form:"sala"`
	Periodo      string  `gorm:"type:varchar(20)"           json:"periodo"       form:"periodo"       binding:"omitempty,oneof=Manhã Tarde Noite"`
	AnoLectivo   string  `gorm:"type:varchar(20)"           json:"ano_lectivo"   form:"ano_lectivo"`
	Capacidade   int     `gorm:"not null;default:0"         json:"capacidade"    form:"capacidade"    binding:"gt=0"`
	Classe       *Classe `gorm:"foreignKey:CodigoClasse"     json:"classe,omitempty" form:"-"`
	Curso        *Curso  `gorm:"foreignKey:CodigoCurso"      json:"curso,omitempty"  form:"-"`
}

func (Turma) TableName() string { return "turmas" }

// Aluno: enrolled student. The turma link is optional so deleting a turma
// leaves the student record in place.
type Aluno struct {
	BaseModel
	Nome           string     `gorm:"type:varchar(150);not null" json:"nome"                      form:"nome"            binding:"required,max=150"`
	NumeroProcesso string     `gorm:"type:varchar(30);index"     json:"numero_processo"           form:"numero_processo"`
	Sexo           string     `gorm:"type:varchar(1)"            json:"sexo"                      form:"sexo"            binding:"omitempty,oneof=M F"`
	DataNascimento *time.Time `gorm:"type:date"                  json:"data_nascimento"           form:"data_nascimento" time_format:"2006-01-02"`
	Idade          *int       `                                  json:"idade"                     form:"idade"           binding:"omitempty,min=0,max=120"`
	BI             string     `gorm:"column:bi;type:varchar(30)" json:"bi"                        form:"bi"`
	Encarregado    string     `gorm:"type:varchar(150)"          json:"encarregado"               form:"encarregado"`
	Telefone       string     `gorm:"type:varchar(30)"           json:"telefone"                  form:"telefone"`
	Email          string     `gorm:"type:varchar(150)"          json:"email"                     form:"email"           binding:"omitempty,email"`
	Morada         string     `gorm:"type:varchar(255)"          json:"morada"                    form:"morada"`
	CodigoTurma    *int64     `gorm:"index"                      json:"codigo_turma"              form:"codigo_turma"`
	Turma          *Turma     `gorm:"foreignKey:CodigoTurma"      json:"turma,omitempty"           form:"-"`
}

func (Aluno) TableName() string { return "alunos" }

// Professor: teacher.
type Professor struct {
	BaseModel
	Nome          string `gorm:"type:varchar(150);not null" json:"nome"          form:"nome"          binding:"required,max=150"`
	Email         string `gorm:"type:varchar(150)"          json:"email"         form:"email"         binding:"omitempty,email"`
	Telefone      string `gorm:"type:varchar(30)"           json:"telefone"      form:"telefone"`
	Especialidade string `gorm:"type:varchar(150)"          json:"especialidade" form:"especialidade"`
	Formacao      string `gorm:"type:varchar(150)"          json:"formacao"      form:"formacao"`
}

func (Professor) TableName() string { return "professores" }

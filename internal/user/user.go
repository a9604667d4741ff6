package user

import (
	"time"

	"github.com/rmacedo/prestacao-viagens/internal"
	"github.com/rmacedo/prestacao-viagens/internal/department"
)

// User mirrors the accounts table. Username doubles as the login email.
type User struct {
	ID           int64     `json:"id" gorm:"primaryKey"`
	Username     string    `json:"username" gorm:"uniqueIndex;not null"`
	Email        string    `json:"email"`
	FirstName    string    `json:"first_name" gorm:"column:first_name"`
	LastName     string    `json:"last_name" gorm:"column:last_name"`
	PasswordHash string    `json:"-" gorm:"column:password_hash;not null"`
	IsSuperuser  bool      `json:"is_superuser" gorm:"column:is_superuser"`
	IsActive     bool      `json:"is_active" gorm:"column:is_active;default:true"`
	Profile      *Profile  `json:"perfil,omitempty" gorm:"foreignKey:UserID"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// TableName returns the table name for GORM
func (User) TableName() string {
	return "users"
}

// Profile carries the role tag and department memberships that drive every
// visibility and approval rule.
type Profile struct {
	ID          int64                   `json:"-" gorm:"primaryKey"`
	UserID      int64                   `json:"-" gorm:"column:usuario_id;uniqueIndex;not null"`
	Role        string                  `json:"tipo" gorm:"column:tipo;default:COLABORADOR"`
	PhotoURL    *string                 `json:"foto_perfil,omitempty" gorm:"column:foto_perfil"`
	Departments []department.Department `json:"departamentos" gorm:"many2many:perfil_departamentos;joinForeignKey:PerfilID;joinReferences:DepartamentoID"`
}

func (Profile) TableName() string {
	return "perfis"
}

// Current-trip statuses reported on the self-profile endpoint.
const (
	TripStatusActive   = "ATIVA"
	TripStatusWaiting  = "AGUARDANDO"
	TripStatusFinished = "FINALIZADA"
)

// TripInfo is the compact "current trip" view on the self-profile endpoint.
type TripInfo struct {
	ID     int64  `json:"id"`
	Title  string `json:"titulo"`
	Status string `json:"status"`
}

var ErrUserNotFound = internal.NewNotFoundError("user not found", internal.ErrCodeUserNotFound)

package department

import (
	"github.com/rmacedo/prestacao-viagens/internal"
)

// Department groups collaborators under at most one manager at a time.
type Department struct {
	ID        int64  `json:"id" gorm:"primaryKey"`
	Name      string `json:"nome" gorm:"column:nome;not null"`
	ManagerID *int64 `json:"gestor,omitempty" gorm:"column:gestor_id"`
}

// TableName returns the table name for GORM
func (Department) TableName() string {
	return "departamentos"
}

var ErrDepartmentNotFound = internal.NewNotFoundError("department not found", internal.ErrCodeDepartmentNotFound)
